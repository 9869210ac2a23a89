package domain

import (
	"time"

	"github.com/young626-jang/ltv-flask/internal/registry"
)

// Analysis is one reconstruction of one document.
type Analysis struct {
	ID           string
	PropertyID   string
	DocumentHash string
	SourceName   string
	Result       registry.Result
	Parties      []PartyLink
	CreatedAt    time.Time
	// Cached is set when the result came from the cache instead of the engine.
	Cached bool
}

// AnalysisRecord is the history row kept for every analysis.
type AnalysisRecord struct {
	ID           string
	PropertyID   string
	DocumentHash string
	SourceName   string
	ResultJSON   []byte
	LienCount    int
	TotalCeiling int64
	Diagnostics  int
	CreatedAt    time.Time
}
