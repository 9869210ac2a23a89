package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/young626-jang/ltv-flask/internal/domain"
	"github.com/young626-jang/ltv-flask/internal/registry"
)

type analysisOutput struct {
	AnalysisID   string          `json:"analysisId"`
	PropertyID   string          `json:"propertyId"`
	SourceName   string          `json:"sourceName"`
	DocumentHash string          `json:"documentHash"`
	Cached       bool            `json:"cached"`
	Result       registry.Result `json:"result"`
}

func (c *cli) print(w io.Writer, a domain.Analysis) error {
	if c.asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(analysisOutput{
			AnalysisID:   a.ID,
			PropertyID:   a.PropertyID,
			SourceName:   a.SourceName,
			DocumentHash: a.DocumentHash,
			Cached:       a.Cached,
			Result:       a.Result,
		})
	}
	_, err := io.WriteString(w, summary(a))
	return err
}

func summary(a domain.Analysis) string {
	res := a.Result
	var b strings.Builder

	fmt.Fprintf(&b, "%s  %s\n", a.SourceName, a.PropertyID)
	if res.Document.Address != "" {
		fmt.Fprintf(&b, "  address      %s\n", res.Document.Address)
	}
	if res.Age.Known {
		stale := ""
		if res.Age.Stale {
			stale = " (stale)"
		}
		fmt.Fprintf(&b, "  viewed       %d days ago%s\n", res.Age.AgeDays, stale)
	}
	for _, o := range res.Owners {
		fmt.Fprintf(&b, "  owner        %s %d/%d\n", o.Name, o.Numerator, o.Denominator)
	}
	if t := res.Transfer; t != nil {
		fmt.Fprintf(&b, "  transfer     rank %s %s %s", t.Rank, t.Reason, t.Date)
		if t.Price != nil {
			fmt.Fprintf(&b, " price %s", groupDigits(*t.Price))
		}
		if res.RecentTransfer {
			b.WriteString(" (recent)")
		}
		b.WriteByte('\n')
	}

	fmt.Fprintf(&b, "  liens        %d, total ceiling %s\n", len(res.Liens), groupDigits(res.TotalCeiling()))
	for _, l := range res.Liens {
		fmt.Fprintf(&b, "    #%-4s %s %s", l.Rank, l.RightType, amountOf(l.Ceiling))
		if l.Creditor != "" {
			fmt.Fprintf(&b, " creditor %s", l.Creditor)
		}
		if l.Debtor != "" {
			fmt.Fprintf(&b, " debtor %s", l.Debtor)
		}
		b.WriteByte('\n')
	}

	fmt.Fprintf(&b, "  attachments  %d\n", len(res.Attachments))
	for _, r := range res.Attachments {
		fmt.Fprintf(&b, "    #%-4s %s %s", r.Rank, r.RightType, amountOf(r.Claim))
		if r.Creditor != "" {
			fmt.Fprintf(&b, " creditor %s", r.Creditor)
		}
		b.WriteByte('\n')
	}

	if len(res.Diagnostics) > 0 {
		fmt.Fprintf(&b, "  diagnostics  %d\n", len(res.Diagnostics))
		for _, d := range res.Diagnostics {
			fmt.Fprintf(&b, "    %s %s %s\n", d.Code, d.Section, d.Message)
		}
	}
	return b.String()
}

func amountOf(v *uint64) string {
	if v == nil {
		return "-"
	}
	return groupDigits(*v)
}

// groupDigits renders 50000000 as 50,000,000.
func groupDigits(v uint64) string {
	s := strconv.FormatUint(v, 10)
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String()
}
