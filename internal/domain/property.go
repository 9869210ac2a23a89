package domain

import "time"

// Property categories.
const (
	CategoryApartment = "APT"
	CategoryOther     = "Non-APT"
)

// Property is the graph node for one registered property.
type Property struct {
	ID             string
	UniqueNumber   string
	Address        string
	Category       string
	Detail         string
	ExclusiveArea  float64
	LastAnalysisID string
	LastViewedAt   *time.Time
	Stale          bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
