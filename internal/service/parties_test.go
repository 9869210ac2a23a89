package service

import (
	"testing"

	"github.com/young626-jang/ltv-flask/internal/domain"
	"github.com/young626-jang/ltv-flask/internal/registry"
)

func TestDefaultPartyDeriver(t *testing.T) {
	res := registry.Result{
		Owners: []registry.OwnerShare{
			{Name: "홍길동", BirthPrefix: "800101", Numerator: 1, Denominator: 2},
			{Name: "김영희", BirthPrefix: "820202", Numerator: 1, Denominator: 2},
			{Name: "  "},
		},
		Liens: []registry.ReconstructedRight{
			{Rank: registry.RankKey{Main: 2}, Creditor: "주식회사 에이은행", Debtor: "홍길동"},
		},
		Attachments: []registry.ReconstructedRight{
			{Rank: registry.RankKey{Main: 5, Variant: 1}, Creditor: "국"},
		},
	}

	links := DefaultPartyDeriver{}.Derive("P1", res)
	if len(links) != 5 {
		t.Fatalf("expected 5 links, got %d: %+v", len(links), links)
	}

	owner := links[0]
	if owner.Role != domain.RoleOwner || owner.Denominator != 2 || owner.Party.Kind != domain.PartyPerson {
		t.Errorf("unexpected owner link %+v", owner)
	}
	creditor := links[2]
	if creditor.Role != domain.RoleCreditor || creditor.RightID != "P1|lien|2" || creditor.Party.Kind != domain.PartyOrganization {
		t.Errorf("unexpected creditor link %+v", creditor)
	}
	debtor := links[3]
	if debtor.Role != domain.RoleDebtor || debtor.RightID != "P1|lien|2" {
		t.Errorf("unexpected debtor link %+v", debtor)
	}
	state := links[4]
	if state.RightID != "P1|attachment|5(1)" || state.Party.Kind != domain.PartyOrganization {
		t.Errorf("unexpected attachment creditor %+v", state)
	}

	// The owner carries a birth prefix, the debtor does not: distinct parties.
	if owner.Party.ID == debtor.Party.ID {
		t.Error("expected owner and bare-name debtor to be distinct parties")
	}
	again := DefaultPartyDeriver{}.Derive("P1", res)
	if again[2].Party.ID != creditor.Party.ID {
		t.Error("expected deterministic party ids")
	}
}

func TestPartyKind(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"주식회사 에이은행", domain.PartyOrganization},
		{"농협(주)", domain.PartyOrganization},
		{"서울특별시", domain.PartyOrganization},
		{"국", domain.PartyOrganization},
		{"신용협동조합", domain.PartyOrganization},
		{"홍길동", domain.PartyPerson},
	}
	for _, tc := range cases {
		if got := partyKind(tc.name); got != tc.want {
			t.Errorf("partyKind(%q) = %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestPropertyID(t *testing.T) {
	hash := hashValue("document")
	if got := PropertyID(registry.DocumentInfo{UniqueNumber: "1146-2019-012345"}, hash); got != "1146-2019-012345" {
		t.Fatalf("expected unique number, got %q", got)
	}
	byAddr := PropertyID(registry.DocumentInfo{UniqueNumber: "12", Address: "서울특별시  강남구"}, hash)
	if byAddr != PropertyID(registry.DocumentInfo{Address: "서울특별시 강남구"}, hash) || byAddr[:5] != "ADDR-" {
		t.Fatalf("expected address-derived id, got %q", byAddr)
	}
	if got := PropertyID(registry.DocumentInfo{}, hash); got != "DOC-"+hash[:16] {
		t.Fatalf("expected document-derived id, got %q", got)
	}
}

func TestDocumentHashIgnoresInvisibleCharacters(t *testing.T) {
	if DocumentHash("갑 구\r\n") != DocumentHash("\ufeff갑  구\n") {
		t.Fatal("expected equal hashes")
	}
}
