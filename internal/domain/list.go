package domain

import "time"

// PropertySummary represents lightweight property information for list endpoints.
type PropertySummary struct {
	ID              string
	UniqueNumber    string
	Address         string
	Category        string
	LienCount       int
	AttachmentCount int
	OwnerCount      int
	TotalCeiling    int64
	Stale           bool
	LastAnalysisID  string
	UpdatedAt       time.Time
}

// PropertyListResult captures paginated property list results.
type PropertyListResult struct {
	Items []PropertySummary
	Total int64
}
