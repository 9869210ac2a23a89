package generator

// Config drives the synthetic register generator.
type Config struct {
	NumDocuments     int
	MaxSales         int
	MaxMortgages     int
	MaxAttachments   int
	AmendChance      float64
	CancelChance     float64
	AttachmentChance float64
	Seed             int64
}

// DefaultConfig returns settings that produce a mix of clean and heavily
// encumbered registers.
func DefaultConfig() Config {
	return Config{
		NumDocuments:     200,
		MaxSales:         3,
		MaxMortgages:     4,
		MaxAttachments:   2,
		AmendChance:      0.3,
		CancelChance:     0.4,
		AttachmentChance: 0.35,
		Seed:             42,
	}
}
