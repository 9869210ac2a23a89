package registry

// DiagnosticCode classifies a recoverable problem met while reading a document.
type DiagnosticCode string

const (
	DiagSectionNotFound        DiagnosticCode = "section_not_found"
	DiagEntryUnparseable       DiagnosticCode = "entry_unparseable"
	DiagAmbiguousTarget        DiagnosticCode = "ambiguous_target"
	DiagLowConfidenceBackfill  DiagnosticCode = "low_confidence_backfill"
	DiagShareRemainderMismatch DiagnosticCode = "share_remainder_mismatch"
	DiagRecovered              DiagnosticCode = "recovered"
)

// Diagnostic explains why part of the result may be incomplete. Diagnostics
// never abort an analysis.
type Diagnostic struct {
	Code    DiagnosticCode `json:"code"`
	Section string         `json:"section,omitempty"`
	Rank    string         `json:"rank,omitempty"`
	Message string         `json:"message"`
}

type diagnostics []Diagnostic

func (d *diagnostics) add(code DiagnosticCode, section, rank, msg string) {
	*d = append(*d, Diagnostic{Code: code, Section: section, Rank: rank, Message: msg})
}
