package registry

import (
	"fmt"
	"time"
)

// Source names where a part of the result was read from.
type Source string

const (
	SourceSummary  Source = "summary"
	SourceSections Source = "sections"
	SourceNone     Source = "none"
)

// Provenance records which part of the document fed each output.
type Provenance struct {
	Liens       Source `json:"liens"`
	Attachments Source `json:"attachments"`
	Owners      Source `json:"owners"`
}

// Options tune the heuristics of the engine.
type Options struct {
	// BackfillWindow is how many runes past a right's block the debtor search
	// may run.
	BackfillWindow       int
	StaleAfter           time.Duration
	RecentTransferWindow time.Duration
	Now                  func() time.Time
}

// DefaultOptions returns the production settings.
func DefaultOptions() Options {
	return Options{
		BackfillWindow:       120,
		StaleAfter:           30 * 24 * time.Hour,
		RecentTransferWindow: 90 * 24 * time.Hour,
		Now:                  time.Now,
	}
}

// Result is everything reconstructed from one document.
type Result struct {
	Document       DocumentInfo         `json:"document"`
	Liens          []ReconstructedRight `json:"liens"`
	Attachments    []ReconstructedRight `json:"attachments"`
	Transfer       *TransferRecord      `json:"transfer,omitempty"`
	Owners         []OwnerShare         `json:"owners"`
	Age            AgeCheck             `json:"age"`
	RecentTransfer bool                 `json:"recentTransfer"`
	Provenance     Provenance           `json:"provenance"`
	Diagnostics    []Diagnostic         `json:"diagnostics"`
}

// TotalCeiling sums the ceilings of the surviving liens.
func (r Result) TotalCeiling() uint64 {
	var total uint64
	for _, l := range r.Liens {
		if l.Ceiling != nil {
			total += *l.Ceiling
		}
	}
	return total
}

// Engine turns register text into a Result. It holds no mutable state and is
// safe for concurrent use.
type Engine struct {
	patterns *Patterns
	opts     Options
}

// NewEngine builds an engine. Zero option fields take their defaults.
func NewEngine(opts Options) *Engine {
	def := DefaultOptions()
	if opts.BackfillWindow <= 0 {
		opts.BackfillWindow = def.BackfillWindow
	}
	if opts.StaleAfter <= 0 {
		opts.StaleAfter = def.StaleAfter
	}
	if opts.RecentTransferWindow <= 0 {
		opts.RecentTransferWindow = def.RecentTransferWindow
	}
	if opts.Now == nil {
		opts.Now = def.Now
	}
	return &Engine{patterns: NewPatterns(), opts: opts}
}

const (
	sectionOwnership  = "ownership"
	sectionEncumbered = "encumbrance"
	sectionSummary    = "summary"
)

// Analyze reconstructs the document. It never fails: problems surface as
// diagnostics and an under-populated result.
func (e *Engine) Analyze(text string) (res Result) {
	res = Result{
		Document:    DocumentInfo{PropertyCategory: CategoryOther},
		Liens:       []ReconstructedRight{},
		Attachments: []ReconstructedRight{},
		Owners:      []OwnerShare{},
		Provenance:  Provenance{Liens: SourceNone, Attachments: SourceNone, Owners: SourceNone},
		Diagnostics: []Diagnostic{},
	}
	var diags diagnostics
	defer func() {
		if r := recover(); r != nil {
			diags.add(DiagRecovered, "", "", fmt.Sprintf("analysis aborted: %v", r))
		}
		res.Diagnostics = append(res.Diagnostics, diags...)
	}()

	p := e.patterns
	text = NormalizeText(text)
	now := e.opts.Now()

	res.Document = p.documentInfo(text)
	res.Age = ageCheck(res.Document.ViewedAt, now, e.opts.StaleAfter)

	sections := p.LocateSections(text)
	if !sections.OwnershipFound {
		diags.add(DiagSectionNotFound, sectionOwnership, "", "ownership section marker not found")
	}
	if !sections.EncumbranceFound {
		diags.add(DiagSectionNotFound, sectionEncumbered, "", "encumbrance section marker not found")
	}

	ownSeg := p.Segment(sections.Ownership)
	ownEntries := p.classifyAll(ownSeg, sectionOwnership, &diags)
	encSeg := p.Segment(sections.Encumbrance)
	encEntries := p.classifyAll(encSeg, sectionEncumbered, &diags)

	// Liens.
	var lienDiags []Diagnostic
	switch {
	case sections.SummaryEncumbrance.Found:
		entries := p.classifyAll(p.Segment(sections.SummaryEncumbrance.Text), sectionSummary, &diags)
		res.Liens, _, lienDiags = Reconstruct(entries, isLien)
		res.Provenance.Liens = SourceSummary
	case sections.EncumbranceFound:
		res.Liens, _, lienDiags = Reconstruct(encEntries, isLien)
		res.Provenance.Liens = SourceSections
	}
	diags = append(diags, tagSection(lienDiags, sectionEncumbered)...)
	p.backfillDebtors(res.Liens, encSeg, e.opts.BackfillWindow, sectionEncumbered, &diags)

	// Attachments and the ownership log.
	ownRights, ownCancelled, ownDiags := Reconstruct(ownEntries, isAttachment)
	diags = append(diags, tagSection(ownDiags, sectionOwnership)...)
	switch {
	case sections.SummaryOwnership.Found:
		entries := p.classifyAll(p.Segment(sections.SummaryOwnership.Text), sectionSummary, &diags)
		var sumDiags []Diagnostic
		res.Attachments, _, sumDiags = Reconstruct(entries, isAttachment)
		diags = append(diags, tagSection(sumDiags, sectionSummary)...)
		res.Provenance.Attachments = SourceSummary
	case sections.OwnershipFound:
		res.Attachments = ownRights
		res.Provenance.Attachments = SourceSections
	}

	var transferText string
	if t, ok := SelectTransfer(ownEntries, ownCancelled); ok {
		transferText = t.Text
		res.Transfer = transferRecord(t, p.transferOwners(t.Text))
		res.RecentTransfer = recentTransfer(res.Transfer, now, e.opts.RecentTransferWindow)
	}

	var listing string
	if sections.SummaryOwners.Found {
		listing = sections.SummaryOwners.Text
	}
	shares, source, shareDiags := p.OwnerShares(listing, transferText)
	res.Owners = shares
	res.Provenance.Owners = source
	diags = append(diags, shareDiags...)
	return res
}

func (p *Patterns) classifyAll(seg Segmented, section string, diags *diagnostics) []Entry {
	entries := make([]Entry, 0, len(seg.Blocks))
	for _, b := range seg.Blocks {
		entry, ok := p.Classify(b)
		if !ok {
			diags.add(DiagEntryUnparseable, section, b.Rank.String(), "block carries no tracked right")
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}

func tagSection(diags []Diagnostic, section string) []Diagnostic {
	for i := range diags {
		if diags[i].Section == "" {
			diags[i].Section = section
		}
	}
	return diags
}
