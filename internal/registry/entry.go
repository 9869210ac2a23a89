package registry

import (
	"fmt"
	"math"
)

// Kind is the closed set of entry kinds decided once by the classifier.
type Kind int

const (
	KindRegistration Kind = iota + 1
	KindAmendment
	KindCancellation
	KindOwnershipTransfer
	KindNameChange
	KindAttachment
	KindProvisionalAttachment
)

var kindNames = map[Kind]string{
	KindRegistration:          "registration",
	KindAmendment:             "amendment",
	KindCancellation:          "cancellation",
	KindOwnershipTransfer:     "ownership_transfer",
	KindNameChange:            "name_change",
	KindAttachment:            "attachment",
	KindProvisionalAttachment: "provisional_attachment",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// MarshalText renders the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	name, ok := kindNames[k]
	if !ok {
		return nil, fmt.Errorf("unknown entry kind %d", int(k))
	}
	return []byte(name), nil
}

// UnmarshalText parses a kind name.
func (k *Kind) UnmarshalText(text []byte) error {
	for kind, name := range kindNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown entry kind %q", text)
}

// TransferReason is the legal cause (등기원인) of an ownership transfer.
type TransferReason string

const (
	ReasonSale                 TransferReason = "sale"
	ReasonInheritance          TransferReason = "inheritance"
	ReasonGift                 TransferReason = "gift"
	ReasonOriginalRegistration TransferReason = "original_registration"
	ReasonUnknown              TransferReason = "unknown"
)

// Span locates a block inside the section text it was cut from.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Entry is one classified block. Entries are produced once and never modified.
type Entry struct {
	Rank         RankKey        `json:"rank"`
	AmendmentSeq int            `json:"amendmentSeq,omitempty"`
	Kind         Kind           `json:"kind"`
	RightType    string         `json:"rightType,omitempty"`
	Reason       TransferReason `json:"reason,omitempty"`
	Text         string         `json:"text"`
	Date         string         `json:"date,omitempty"`
	CauseDate    string         `json:"causeDate,omitempty"`
	Ceiling      *uint64        `json:"ceiling,omitempty"`
	Claim        *uint64        `json:"claim,omitempty"`
	Price        *uint64        `json:"price,omitempty"`
	Creditor     string         `json:"creditor,omitempty"`
	Debtor       string         `json:"debtor,omitempty"`
	Target       *RankKey       `json:"target,omitempty"`
	References   []RankRef      `json:"references,omitempty"`
	Span         Span           `json:"span"`
}

// ReconstructedRight is a right still in force after replaying the section.
type ReconstructedRight struct {
	Rank             RankKey `json:"rank"`
	Kind             Kind    `json:"kind"`
	RightType        string  `json:"rightType"`
	Ceiling          *uint64 `json:"ceiling,omitempty"`
	Claim            *uint64 `json:"claim,omitempty"`
	Creditor         string  `json:"creditor,omitempty"`
	Debtor           string  `json:"debtor,omitempty"`
	RegistrationDate string  `json:"registrationDate,omitempty"`
	DebtorBackfilled bool    `json:"debtorBackfilled,omitempty"`
}

// TransferRecord is the latest ownership transfer.
type TransferRecord struct {
	Rank      RankKey        `json:"rank"`
	Date      string         `json:"date,omitempty"`
	CauseDate string         `json:"causeDate,omitempty"`
	Reason    TransferReason `json:"reason"`
	Price     *uint64        `json:"price,omitempty"`
	Grantees  []string       `json:"grantees,omitempty"`
}

// OwnerShare is one owner's fraction of the property.
type OwnerShare struct {
	Name        string `json:"name"`
	BirthPrefix string `json:"birthPrefix,omitempty"`
	Numerator   int64  `json:"numerator"`
	Denominator int64  `json:"denominator"`
	Explicit    bool   `json:"explicit"`
}

// Percent returns the share as a percentage rounded to one decimal.
func (s OwnerShare) Percent() float64 {
	if s.Denominator == 0 {
		return 0
	}
	return math.Round(float64(s.Numerator)/float64(s.Denominator)*1000) / 10
}

func u64(v uint64) *uint64 { return &v }
