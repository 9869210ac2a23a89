package registry

import "strings"

// Subsection is one numbered table of the summary (주요 등기사항 요약).
type Subsection struct {
	Text  string
	Found bool
}

// Sections holds the legally distinct parts of a register document.
type Sections struct {
	Ownership        string
	Encumbrance      string
	Summary          string
	OwnershipFound   bool
	EncumbranceFound bool
	SummaryFound     bool

	SummaryOwners      Subsection
	SummaryOwnership   Subsection
	SummaryEncumbrance Subsection
}

// LocateSections isolates the ownership (갑구), encumbrance (을구) and summary
// sections. Missing sections come back empty with their Found flag unset.
func (p *Patterns) LocateSections(text string) Sections {
	var out Sections

	body := text
	if loc := p.summaryMarker.FindStringIndex(text); loc != nil {
		body = text[:loc[0]]
		out.Summary = text[loc[0]:]
		out.SummaryFound = true
	}

	ownStart := firstIndex(body, p.ownershipMarker.FindStringIndex, p.ownershipFallback.FindStringIndex)
	encStart := firstIndex(body, p.encumbranceMarker.FindStringIndex, p.encumbranceFallback.FindStringIndex)

	if ownStart >= 0 {
		end := len(body)
		if encStart > ownStart {
			end = encStart
		}
		if loc := p.endMarker.FindStringIndex(body[ownStart:end]); loc != nil {
			end = ownStart + loc[0]
		}
		out.Ownership = body[ownStart:end]
		out.OwnershipFound = true
	}

	if encStart >= 0 {
		end := len(body)
		if ownStart > encStart {
			end = ownStart
		}
		if loc := p.endMarker.FindStringIndex(body[encStart:end]); loc != nil {
			end = encStart + loc[0]
		}
		out.Encumbrance = body[encStart:end]
		out.EncumbranceFound = true
	}

	if out.SummaryFound {
		p.locateSummaryTables(&out)
	}
	return out
}

func (p *Patterns) locateSummaryTables(out *Sections) {
	summary := out.Summary
	limit := len(summary)
	if loc := p.summaryEnd.FindStringIndex(summary); loc != nil {
		limit = loc[0]
	}

	type header struct {
		target *Subsection
		start  int
		end    int
	}
	var headers []header
	for _, h := range []struct {
		target *Subsection
		find   func(string) []int
	}{
		{&out.SummaryOwners, p.summaryOwners.FindStringIndex},
		{&out.SummaryOwnership, p.summaryOwnership.FindStringIndex},
		{&out.SummaryEncumbrance, p.summaryEncumbrance.FindStringIndex},
	} {
		if loc := h.find(summary[:limit]); loc != nil {
			headers = append(headers, header{target: h.target, start: loc[0], end: loc[1]})
		}
	}

	for i, h := range headers {
		end := limit
		for j, other := range headers {
			if j != i && other.start > h.start && other.start < end {
				end = other.start
			}
		}
		text := summary[h.end:end]
		if p.noRecords.MatchString(text) {
			text = ""
		}
		*h.target = Subsection{Text: text, Found: true}
	}
}

func firstIndex(text string, finders ...func(string) []int) int {
	for _, find := range finders {
		if loc := find(text); loc != nil {
			return loc[0]
		}
	}
	return -1
}

var textReplacer = strings.NewReplacer(
	"\r\n", "\n",
	"\r", "\n",
	"\u00a0", " ",
	"\u3000", " ",
	"\u200b", "",
	"\ufeff", "",
)

// NormalizeText folds line endings and invisible characters so offsets are
// stable across the pipeline.
func NormalizeText(text string) string {
	return textReplacer.Replace(text)
}
