package registry

import (
	"fmt"
	"math/big"
	"strings"
)

type ownerLine struct {
	name     string
	birth    string
	num      int64
	den      int64
	explicit bool
}

// readSummaryOwners reads the compact owner listing of the summary, one
// "NAME (공유자) YYMMDD-******* N분의 M" group per owner.
func (p *Patterns) readSummaryOwners(text string) []ownerLine {
	text = p.collapse(text)
	matches := p.summaryOwner.FindAllStringSubmatchIndex(text, -1)
	lines := make([]ownerLine, 0, len(matches))
	for i, m := range matches {
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		rest := text[m[1]:end]
		line := ownerLine{name: text[m[2]:m[3]]}
		if b := p.birthPrefix.FindStringSubmatch(rest); b != nil {
			line.birth = b[1]
		}
		if f := p.shareFraction.FindStringSubmatch(rest); f != nil {
			line.den, line.num = int64(atoi(f[1])), int64(atoi(f[2]))
			line.explicit = line.den > 0
		}
		lines = append(lines, line)
	}
	return dedupeOwners(lines)
}

// transferOwners reads the grantees of an ownership transfer block. Each
// grantee is the name right before an ID number; the nearest preceding
// "N분의 M" is that grantee's share.
func (p *Patterns) transferOwners(body string) []ownerLine {
	loc := p.owner.FindStringIndex(body)
	if loc == nil {
		return nil
	}
	rest := body[loc[1]:]

	ids := p.idNumber.FindAllStringIndex(rest, -1)
	if len(ids) == 0 {
		if name := p.takeName(rest, false); name != "" {
			return []ownerLine{{name: name}}
		}
		return nil
	}

	var lines []ownerLine
	prev := 0
	for _, id := range ids {
		region := rest[prev:id[0]]
		prev = id[1]
		name := lastNameToken(region)
		if name == "" {
			continue
		}
		line := ownerLine{name: name}
		if b := p.birthPrefix.FindStringSubmatch(rest[id[0]:id[1]]); b != nil {
			line.birth = b[1]
		}
		if fs := p.shareFraction.FindAllStringSubmatch(region, -1); len(fs) > 0 {
			f := fs[len(fs)-1]
			line.den, line.num = int64(atoi(f[1])), int64(atoi(f[2]))
			line.explicit = line.den > 0
		}
		lines = append(lines, line)
	}
	return dedupeOwners(lines)
}

func lastNameToken(region string) string {
	tokens := strings.Fields(region)
	if len(tokens) == 0 {
		return ""
	}
	tok := strings.Trim(tokens[len(tokens)-1], ",;:")
	if tok == "" || isStopToken(tok) {
		return ""
	}
	return tok
}

func dedupeOwners(lines []ownerLine) []ownerLine {
	seen := make(map[string]struct{}, len(lines))
	out := lines[:0]
	for _, l := range lines {
		key := l.name + "|" + l.birth
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, l)
	}
	return out
}

// OwnerShares derives the current owners. The compact summary listing wins
// when it names anyone; otherwise the grantees of transferBlock are used.
// Source reports which one fed the result.
func (p *Patterns) OwnerShares(summaryListing, transferBlock string) ([]OwnerShare, Source, []Diagnostic) {
	var lines []ownerLine
	source := SourceNone
	if summaryListing != "" {
		lines = p.readSummaryOwners(summaryListing)
	}
	if len(lines) > 0 {
		source = SourceSummary
	} else if transferBlock != "" {
		if lines = p.transferOwners(transferBlock); len(lines) > 0 {
			source = SourceSections
		}
	}
	shares, diags := allocateShares(lines)
	return shares, source, diags
}

// allocateShares turns owner lines into shares. Without any printed fraction
// each of K owners holds 1/K. When only some fractions are printed the
// remainder is split equally among the rest. The arithmetic is exact; a
// remainder too fine for int64 terms is rounded and reported.
func allocateShares(lines []ownerLine) ([]OwnerShare, []Diagnostic) {
	shares := make([]OwnerShare, 0, len(lines))
	if len(lines) == 0 {
		return shares, nil
	}

	var diags diagnostics
	remainder := big.NewRat(1, 1)
	missing := 0
	for _, l := range lines {
		if l.explicit {
			remainder.Sub(remainder, big.NewRat(l.num, l.den))
		} else {
			missing++
		}
	}

	var fill *big.Rat
	switch {
	case missing == len(lines):
		fill = big.NewRat(1, int64(len(lines)))
	case missing > 0 && remainder.Sign() > 0:
		fill = new(big.Rat).Quo(remainder, big.NewRat(int64(missing), 1))
	case missing > 0:
		fill = big.NewRat(1, int64(len(lines)))
		diags.add(DiagShareRemainderMismatch, "owners", "",
			fmt.Sprintf("printed shares leave no remainder for %d owners", missing))
	}

	var fillNum, fillDen int64
	if fill != nil {
		var exact bool
		fillNum, fillDen, exact = int64Terms(fill)
		if !exact {
			diags.add(DiagShareRemainderMismatch, "owners", "",
				fmt.Sprintf("remainder share %s rounded to %d/%d", fill.RatString(), fillNum, fillDen))
		}
	}

	for _, l := range lines {
		share := OwnerShare{Name: l.name, BirthPrefix: l.birth, Explicit: l.explicit}
		if l.explicit {
			share.Numerator, share.Denominator = l.num, l.den
		} else {
			share.Numerator, share.Denominator = fillNum, fillDen
		}
		shares = append(shares, share)
	}
	return shares, diags
}

// shareScale is the denominator a share falls back to when its exact terms do
// not fit in int64.
const shareScale = 1_000_000_000_000

// int64Terms returns r in lowest terms, or rounded to the nearest multiple of
// 1/shareScale when either term overflows int64.
func int64Terms(r *big.Rat) (num, den int64, exact bool) {
	if r.Num().IsInt64() && r.Denom().IsInt64() {
		return r.Num().Int64(), r.Denom().Int64(), true
	}
	// round(r * scale) = floor((2 * n * scale + d) / (2 * d))
	n := new(big.Int).Mul(r.Num(), big.NewInt(2*shareScale))
	n.Add(n, r.Denom())
	n.Quo(n, new(big.Int).Mul(r.Denom(), big.NewInt(2)))
	rounded := new(big.Rat).SetFrac(n, big.NewInt(shareScale))
	return rounded.Num().Int64(), rounded.Denom().Int64(), false
}
