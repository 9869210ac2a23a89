package domain

// Party kinds.
const (
	PartyPerson       = "PERSON"
	PartyOrganization = "ORGANIZATION"
)

// Party roles.
const (
	RoleOwner    = "OWNER"
	RoleCreditor = "CREDITOR"
	RoleDebtor   = "DEBTOR"
)

// Party is a person or organisation named in a register.
type Party struct {
	ID          string
	Name        string
	Kind        string
	BirthPrefix string
}

// PartyLink places a party in a role. RightID is empty for owners, whose
// share is carried by Numerator and Denominator.
type PartyLink struct {
	Party       Party
	Role        string
	RightID     string
	Numerator   int64
	Denominator int64
}
