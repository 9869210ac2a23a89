package service

import (
	"strings"

	"github.com/young626-jang/ltv-flask/internal/domain"
	"github.com/young626-jang/ltv-flask/internal/registry"
	"github.com/young626-jang/ltv-flask/internal/repository"
)

var organizationMarkers = []string{
	"주식회사", "(주)", "㈜", "유한회사", "은행", "조합", "금고", "캐피탈", "보험",
	"공사", "공단", "재단", "법인", "대부", "저축", "신탁", "세무서", "특별시", "광역시",
	"시청", "구청", "군청",
}

// DefaultPartyDeriver turns the names in a result into graph parties.
type DefaultPartyDeriver struct{}

// Derive links owners to the property and creditors and debtors to the rights
// they appear on. The same name and birth prefix always yields the same party.
func (DefaultPartyDeriver) Derive(propertyID string, res registry.Result) []domain.PartyLink {
	var links []domain.PartyLink

	for _, owner := range res.Owners {
		party, ok := newParty(owner.Name, owner.BirthPrefix)
		if !ok {
			continue
		}
		links = append(links, domain.PartyLink{
			Party:       party,
			Role:        domain.RoleOwner,
			Numerator:   owner.Numerator,
			Denominator: owner.Denominator,
		})
	}

	links = append(links, rightParties(propertyID, repository.GroupLien, res.Liens)...)
	links = append(links, rightParties(propertyID, repository.GroupAttachment, res.Attachments)...)
	return links
}

func rightParties(propertyID, group string, rights []registry.ReconstructedRight) []domain.PartyLink {
	var links []domain.PartyLink
	for _, right := range rights {
		rightID := repository.RightID(propertyID, group, right.Rank)
		if party, ok := newParty(right.Creditor, ""); ok {
			links = append(links, domain.PartyLink{Party: party, Role: domain.RoleCreditor, RightID: rightID})
		}
		if party, ok := newParty(right.Debtor, ""); ok {
			links = append(links, domain.PartyLink{Party: party, Role: domain.RoleDebtor, RightID: rightID})
		}
	}
	return links
}

func newParty(name, birthPrefix string) (domain.Party, bool) {
	name = sanitizeString(name)
	if name == "" {
		return domain.Party{}, false
	}
	kind := partyKind(name)
	// People are told apart by birth prefix; organisations by name alone.
	key := kind + "|" + name
	if kind == domain.PartyPerson && birthPrefix != "" {
		key += "|" + birthPrefix
	}
	return domain.Party{
		ID:          "PTY-" + hashValue(key)[:20],
		Name:        name,
		Kind:        kind,
		BirthPrefix: birthPrefix,
	}, true
}

func partyKind(name string) string {
	if name == "국" || name == "대한민국" {
		return domain.PartyOrganization
	}
	for _, marker := range organizationMarkers {
		if strings.Contains(name, marker) {
			return domain.PartyOrganization
		}
	}
	return domain.PartyPerson
}
