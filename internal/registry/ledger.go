package registry

import (
	"fmt"
	"unicode/utf8"
)

// Reconstruct replays a section's entries. It returns the surviving rights of
// the kinds accepted by keep, sorted by rank, together with the section's
// cancellation set.
func Reconstruct(entries []Entry, keep func(Kind) bool) ([]ReconstructedRight, CancellationSet, []Diagnostic) {
	cancelled, diags := ResolveCancellations(entries)
	overrides, amendDiags := FoldAmendments(entries, cancelled)
	diags = append(diags, amendDiags...)

	rights := make([]ReconstructedRight, 0)
	seen := make(map[RankKey]struct{})
	for _, e := range entries {
		if !keep(e.Kind) || cancelled.Contains(e.Rank) {
			continue
		}
		if _, dup := seen[e.Rank]; dup {
			continue
		}
		seen[e.Rank] = struct{}{}

		right := ReconstructedRight{
			Rank:             e.Rank,
			Kind:             e.Kind,
			RightType:        e.RightType,
			Ceiling:          e.Ceiling,
			Claim:            e.Claim,
			Creditor:         e.Creditor,
			Debtor:           e.Debtor,
			RegistrationDate: e.Date,
		}
		if o, ok := overrides[e.Rank]; ok && e.Kind == KindRegistration {
			if o.Ceiling != nil {
				right.Ceiling = o.Ceiling
			}
			if o.Creditor != "" {
				right.Creditor = o.Creditor
			}
		}
		rights = append(rights, right)
	}
	sortRights(rights)
	return rights, cancelled, diags
}

func isLien(k Kind) bool { return k == KindRegistration }

func isAttachment(k Kind) bool {
	return k == KindAttachment || k == KindProvisionalAttachment
}

// SelectTransfer picks the ownership transfer with the greatest main rank that
// is not cancelled. Ties go to the later entry. Name changes are never
// candidates.
func SelectTransfer(entries []Entry, cancelled CancellationSet) (Entry, bool) {
	var (
		best  Entry
		found bool
	)
	for _, e := range entries {
		if e.Kind != KindOwnershipTransfer || cancelled.Contains(e.Rank) {
			continue
		}
		if !found || e.Rank.Main >= best.Rank.Main {
			best, found = e, true
		}
	}
	return best, found
}

func transferRecord(e Entry, grantees []ownerLine) *TransferRecord {
	rec := &TransferRecord{
		Rank:      e.Rank,
		Date:      e.Date,
		CauseDate: e.CauseDate,
		Reason:    e.Reason,
	}
	if rec.Reason == "" {
		rec.Reason = ReasonUnknown
	}
	if rec.Reason == ReasonSale {
		rec.Price = e.Price
	}
	for _, g := range grantees {
		rec.Grantees = append(rec.Grantees, g.name)
	}
	return rec
}

// backfillDebtors fills empty debtors from the detailed section text. The
// search starts at the right's own block and runs window runes past its end.
// A name found past the block is flagged as low confidence.
func (p *Patterns) backfillDebtors(rights []ReconstructedRight, seg Segmented, window int, section string, diags *diagnostics) {
	blocks := make(map[RankKey]Block, len(seg.Blocks))
	for _, b := range seg.Blocks {
		if b.AmendmentSeq != 0 {
			continue
		}
		if _, dup := blocks[b.Rank]; !dup {
			blocks[b.Rank] = b
		}
	}

	for i := range rights {
		if rights[i].Debtor != "" {
			continue
		}
		b, ok := blocks[rights[i].Rank]
		if !ok {
			continue
		}
		end := advanceRunes(seg.Text, b.Span.End, window)
		region := seg.Text[b.Span.Start:end]
		blockLen := b.Span.End - b.Span.Start

		for _, loc := range p.debtor.FindAllStringIndex(region, -1) {
			name := p.takeName(region[loc[1]:], false)
			if name == "" {
				continue
			}
			rights[i].Debtor = name
			rights[i].DebtorBackfilled = true
			if loc[0] >= blockLen {
				diags.add(DiagLowConfidenceBackfill, section, rights[i].Rank.String(),
					fmt.Sprintf("debtor %q found %d bytes past the block", name, loc[0]-blockLen))
			}
			break
		}
	}
}

func advanceRunes(s string, from, n int) int {
	i := from
	for ; n > 0 && i < len(s); n-- {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return i
}
