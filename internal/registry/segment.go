package registry

import (
	"strconv"
	"strings"
)

// Block is the text between one rank marker and the next.
type Block struct {
	Rank         RankKey
	AmendmentSeq int
	// Text is the whole block with whitespace collapsed, marker included.
	Text string
	// Body is Text without the leading marker.
	Body string
	Span Span
}

// Segmented is a section with page noise removed and split into blocks. Block
// spans index into Text.
type Segmented struct {
	Text   string
	Blocks []Block
}

// Segment splits a section into rank-marked blocks. Text ahead of the first
// marker is dropped, and a number that only opens a wrapped role line does not
// start a block.
func (p *Patterns) Segment(section string) Segmented {
	cleaned := p.noiseLine.ReplaceAllString(section, "")
	out := Segmented{Text: cleaned}

	var matches [][]int
	for _, m := range p.rankMarker.FindAllStringSubmatchIndex(cleaned, -1) {
		if p.continuation.MatchString(cleaned[m[1]:]) {
			continue
		}
		matches = append(matches, m)
	}
	for i, m := range matches {
		end := len(cleaned)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}

		main, err := strconv.Atoi(cleaned[m[2]:m[3]])
		if err != nil {
			continue
		}
		block := Block{
			Rank: RankKey{Main: main},
			Span: Span{Start: m[0], End: end},
		}
		if m[4] >= 0 {
			block.Rank.Variant, _ = strconv.Atoi(cleaned[m[4]:m[5]])
		}
		if m[6] >= 0 {
			block.AmendmentSeq, _ = strconv.Atoi(cleaned[m[6]:m[7]])
		}
		block.Text = p.collapse(cleaned[m[0]:end])
		block.Body = p.collapse(cleaned[m[1]:end])
		out.Blocks = append(out.Blocks, block)
	}
	return out
}

func (p *Patterns) collapse(s string) string {
	return strings.TrimSpace(p.whitespace.ReplaceAllString(s, " "))
}
