package domain

// RightLink is a surviving right attached to a property.
type RightLink struct {
	ID               string
	Rank             string
	Kind             string
	RightType        string
	Ceiling          int64
	Claim            int64
	RegistrationDate string
	DebtorBackfilled bool
	CreditorID       string
	Creditor         string
	DebtorID         string
	Debtor           string
}

// OwnerLink is an owner's share of a property.
type OwnerLink struct {
	PartyID     string
	Name        string
	BirthPrefix string
	Numerator   int64
	Denominator int64
}

// PropertyDetail is the consolidated graph view of one property.
type PropertyDetail struct {
	Property    Property
	Liens       []RightLink
	Attachments []RightLink
	Owners      []OwnerLink
	AnalysisIDs []string
}

// CreditorExposure aggregates the liens one creditor holds across properties.
type CreditorExposure struct {
	PartyID      string
	Name         string
	Properties   int64
	Rights       int64
	TotalCeiling int64
}
