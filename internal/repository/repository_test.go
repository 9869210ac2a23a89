package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/young626-jang/ltv-flask/internal/domain"
	"github.com/young626-jang/ltv-flask/internal/graph"
	"github.com/young626-jang/ltv-flask/internal/registry"
)

func u64(v uint64) *uint64 { return &v }

func sampleAnalysis(now time.Time) domain.Analysis {
	viewed := now.Add(-48 * time.Hour)
	return domain.Analysis{
		ID:           "ANL-001",
		PropertyID:   "1146-2019-012345",
		DocumentHash: "hash-1",
		SourceName:   "register.txt",
		CreatedAt:    now,
		Result: registry.Result{
			Document: registry.DocumentInfo{
				Address:          "서울특별시 강남구 테헤란로 1",
				UniqueNumber:     "1146-2019-012345",
				ExclusiveArea:    84.99,
				PropertyCategory: registry.CategoryApartment,
				PropertyDetail:   "아파트",
				ViewedAt:         &viewed,
			},
			Liens: []registry.ReconstructedRight{
				{Rank: registry.RankKey{Main: 2}, Kind: registry.KindRegistration, RightType: "근저당권설정", Ceiling: u64(50_000_000), Creditor: "주식회사 에이은행", Debtor: "홍길동"},
				{Rank: registry.RankKey{Main: 3}, Kind: registry.KindRegistration, RightType: "근저당권설정", Ceiling: u64(30_000_000), Creditor: "주식회사 비은행"},
			},
			Attachments: []registry.ReconstructedRight{
				{Rank: registry.RankKey{Main: 4}, Kind: registry.KindAttachment, RightType: "압류", Creditor: "국"},
			},
			Owners: []registry.OwnerShare{
				{Name: "홍길동", Numerator: 1, Denominator: 1},
			},
			Transfer: &registry.TransferRecord{
				Rank:   registry.RankKey{Main: 2},
				Date:   "2020-01-15",
				Reason: registry.ReasonSale,
				Price:  u64(500_000_000),
			},
		},
		Parties: []domain.PartyLink{
			{Party: domain.Party{ID: "P-1", Name: "홍길동", Kind: domain.PartyPerson}, Role: domain.RoleOwner, Numerator: 1, Denominator: 1},
			{Party: domain.Party{ID: "P-2", Name: "주식회사 에이은행", Kind: domain.PartyOrganization}, Role: domain.RoleCreditor, RightID: "1146-2019-012345|lien|2"},
		},
	}
}

func TestRepository_SaveAnalysis(t *testing.T) {
	mem := graph.NewMemoryClient()
	repo := New(mem)

	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	a := sampleAnalysis(now)
	if err := repo.SaveAnalysis(context.Background(), a); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	batches := mem.Batches()
	if len(batches) != 1 {
		t.Fatalf("expected 1 batch, got %d", len(batches))
	}
	batch := batches[0]

	expected := []string{
		upsertPropertyCypher,
		upsertAnalysisCypher,
		clearCurrentStateCypher,
		createRightsCypher,
		linkPartiesCypher,
	}
	if len(batch) != len(expected) {
		t.Fatalf("expected %d statements, got %d", len(expected), len(batch))
	}
	for i, query := range expected {
		if batch[i].Query != query {
			t.Fatalf("statement %d mismatch\nexpected:\n%s\ngot:\n%s", i, query, batch[i].Query)
		}
		if batch[i].Params["propertyId"] != a.PropertyID {
			t.Errorf("statement %d: expected propertyId %s, got %v", i, a.PropertyID, batch[i].Params["propertyId"])
		}
	}

	props, ok := batch[0].Params["props"].(map[string]any)
	if !ok {
		t.Fatalf("expected props map, got %T", batch[0].Params["props"])
	}
	if props["category"] != registry.CategoryApartment {
		t.Errorf("category mismatch: got %v", props["category"])
	}
	if props["lienCount"] != 2 || props["attachmentCount"] != 1 || props["ownerCount"] != 1 {
		t.Errorf("unexpected counts %v %v %v", props["lienCount"], props["attachmentCount"], props["ownerCount"])
	}
	if props["totalCeiling"] != int64(80_000_000) {
		t.Errorf("expected total ceiling 80000000, got %v", props["totalCeiling"])
	}
	if props["updatedAt"] != now.Format(time.RFC3339Nano) {
		t.Errorf("unexpected updatedAt %v", props["updatedAt"])
	}

	analysisProps := batch[1].Params["props"].(map[string]any)
	if analysisProps["transferReason"] != "sale" || analysisProps["transferPrice"] != int64(500_000_000) {
		t.Errorf("unexpected transfer props %v", analysisProps)
	}

	rights, ok := batch[3].Params["rights"].([]map[string]any)
	if !ok || len(rights) != 3 {
		t.Fatalf("expected 3 rights, got %v", batch[3].Params["rights"])
	}
	if rights[0]["id"] != "1146-2019-012345|lien|2" || rights[2]["group"] != GroupAttachment {
		t.Errorf("unexpected rights %v", rights)
	}
	rightProps := rights[1]["props"].(map[string]any)
	if rightProps["ceiling"] != int64(30_000_000) || rightProps["claim"] != int64(0) {
		t.Errorf("unexpected right props %v", rightProps)
	}

	links, ok := batch[4].Params["links"].([]map[string]any)
	if !ok || len(links) != 2 {
		t.Fatalf("expected 2 party links, got %v", batch[4].Params["links"])
	}
	if links[1]["role"] != domain.RoleCreditor || links[1]["rightId"] != "1146-2019-012345|lien|2" {
		t.Errorf("unexpected creditor link %v", links[1])
	}
}

func TestRepository_SaveAnalysisValidation(t *testing.T) {
	repo := New(graph.NewMemoryClient())
	if err := repo.SaveAnalysis(context.Background(), domain.Analysis{PropertyID: "x"}); err == nil {
		t.Fatal("expected error for missing analysis id")
	}
	if err := repo.SaveAnalysis(context.Background(), domain.Analysis{ID: "x"}); err == nil {
		t.Fatal("expected error for missing property id")
	}

	boom := errors.New("boom")
	repo = New(graph.NewMemoryClient().WithError(boom))
	a := sampleAnalysis(time.Now())
	if err := repo.SaveAnalysis(context.Background(), a); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped graph error, got %v", err)
	}
}

func TestRepository_ListProperties(t *testing.T) {
	mem := graph.NewMemoryClient()
	repo := New(mem)

	updated := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	mem.PushReadResult(graph.Result{Records: []graph.Record{{
		"propertyId":      "1146-2019-012345",
		"uniqueNumber":    "1146-2019-012345",
		"address":         "서울특별시 강남구 테헤란로 1",
		"category":        "APT",
		"lienCount":       int64(2),
		"attachmentCount": int64(1),
		"ownerCount":      int64(1),
		"totalCeiling":    int64(80_000_000),
		"stale":           true,
		"lastAnalysisId":  "ANL-001",
		"updatedAt":       updated.Format(time.RFC3339Nano),
	}}})
	mem.PushReadResult(graph.Result{Records: []graph.Record{{"total": int64(12)}}})

	res, err := repo.ListProperties(context.Background(), ListPropertiesOptions{
		Limit:     500,
		Offset:    -3,
		Search:    "  강남구 ",
		Category:  "APT",
		SortField: "totalCeiling",
		SortOrder: "asc",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if res.Total != 12 || len(res.Items) != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
	item := res.Items[0]
	if item.LienCount != 2 || item.TotalCeiling != 80_000_000 || !item.Stale || !item.UpdatedAt.Equal(updated) {
		t.Errorf("unexpected item %+v", item)
	}

	calls := mem.ReadCalls()
	if len(calls) != 2 {
		t.Fatalf("expected 2 read calls, got %d", len(calls))
	}
	wantQuery := fmt.Sprintf(listPropertiesCypherTemplate, propertyFilterClause, "coalesce(p.totalCeiling, 0) ASC")
	if calls[0].Query != wantQuery {
		t.Fatalf("unexpected list query\nexpected:\n%s\ngot:\n%s", wantQuery, calls[0].Query)
	}
	if calls[0].Params["limit"] != 200 || calls[0].Params["skip"] != 0 {
		t.Errorf("expected clamped pagination, got limit=%v skip=%v", calls[0].Params["limit"], calls[0].Params["skip"])
	}
	if calls[0].Params["search"] != "강남구" {
		t.Errorf("expected trimmed search, got %q", calls[0].Params["search"])
	}
	if !strings.Contains(calls[1].Query, "count(p) AS total") {
		t.Errorf("expected count query, got %s", calls[1].Query)
	}
}

func TestPropertyOrderClause(t *testing.T) {
	cases := []struct {
		field, order, want string
	}{
		{"", "", "datetime(p.updatedAt) DESC"},
		{"address", "ASC", "p.address ASC"},
		{"lienCount", "desc", "coalesce(p.lienCount, 0) DESC"},
		{"uniqueNumber", "bogus", "p.uniqueNumber DESC"},
	}
	for _, tc := range cases {
		if got := propertyOrderClause(tc.field, tc.order); got != tc.want {
			t.Errorf("propertyOrderClause(%q, %q) = %q, want %q", tc.field, tc.order, got, tc.want)
		}
	}
}

func TestRepository_FetchProperty(t *testing.T) {
	mem := graph.NewMemoryClient().
		RespondTo("collect(a.analysisId)", graph.Result{Records: []graph.Record{{
			"propertyId":    "P1",
			"address":       "서울특별시 강남구 테헤란로 1",
			"category":      "APT",
			"exclusiveArea": 84.99,
			"lastViewedAt":  "2024-03-05T05:20:33Z",
			"analysisIds":   []any{"ANL-002", "ANL-001"},
		}}}).
		RespondTo("ENCUMBERED_BY]->(r:Right)", graph.Result{Records: []graph.Record{
			{"rightId": "P1|lien|2", "group": "lien", "rank": "2", "ceiling": int64(50_000_000), "creditor": "주식회사 에이은행", "debtor": "홍길동"},
			{"rightId": "P1|attachment|4", "group": "attachment", "rank": "4", "kind": "attachment"},
		}}).
		RespondTo("[o:OWNS]->", graph.Result{Records: []graph.Record{
			{"partyId": "PTY-1", "name": "홍길동", "numerator": int64(1), "denominator": int64(2)},
			{"partyId": "PTY-2", "name": "김영희", "numerator": int64(1), "denominator": int64(2)},
		}})
	repo := New(mem)

	detail, err := repo.FetchProperty(context.Background(), "P1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if detail.Property.ExclusiveArea != 84.99 || detail.Property.LastViewedAt == nil {
		t.Errorf("unexpected property %+v", detail.Property)
	}
	if len(detail.AnalysisIDs) != 2 || detail.AnalysisIDs[0] != "ANL-002" {
		t.Errorf("unexpected analysis ids %v", detail.AnalysisIDs)
	}
	if len(detail.Liens) != 1 || detail.Liens[0].Ceiling != 50_000_000 || detail.Liens[0].Debtor != "홍길동" {
		t.Errorf("unexpected liens %+v", detail.Liens)
	}
	if len(detail.Attachments) != 1 || detail.Attachments[0].Rank != "4" {
		t.Errorf("unexpected attachments %+v", detail.Attachments)
	}
	if len(detail.Owners) != 2 || detail.Owners[1].Denominator != 2 {
		t.Errorf("unexpected owners %+v", detail.Owners)
	}

	calls := mem.ReadCalls()
	if len(calls) != 3 || calls[0].Query != fetchPropertyCypher || calls[1].Query != propertyRightsCypher || calls[2].Query != propertyOwnersCypher {
		t.Fatalf("unexpected read sequence %+v", calls)
	}
}

func TestRepository_FetchPropertyNotFound(t *testing.T) {
	repo := New(graph.NewMemoryClient())
	if _, err := repo.FetchProperty(context.Background(), "missing"); !errors.Is(err, ErrPropertyNotFound) {
		t.Fatalf("expected ErrPropertyNotFound, got %v", err)
	}
	if _, err := repo.FetchProperty(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty id")
	}
}

func TestRepository_CreditorExposure(t *testing.T) {
	mem := graph.NewMemoryClient()
	mem.PushReadResult(graph.Result{Records: []graph.Record{
		{"partyId": "PTY-2", "name": "주식회사 에이은행", "properties": int64(3), "rights": int64(4), "totalCeiling": int64(260_000_000)},
	}})
	repo := New(mem)

	out, err := repo.CreditorExposure(context.Background(), 0)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(out) != 1 || out[0].TotalCeiling != 260_000_000 || out[0].Properties != 3 {
		t.Fatalf("unexpected exposure %+v", out)
	}
	call := mem.ReadCalls()[0]
	if call.Query != creditorExposureCypher || call.Params["limit"] != 50 {
		t.Fatalf("unexpected call %+v", call)
	}
}

func TestRepository_ExportProperties(t *testing.T) {
	mem := graph.NewMemoryClient()
	mem.PushReadResult(graph.Result{Records: []graph.Record{
		{"propertyId": "P1", "address": "a"},
		{"propertyId": "P2", "address": "b"},
	}})
	repo := New(mem)

	items, err := repo.ExportProperties(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(items) != 2 || items[1].ID != "P2" {
		t.Fatalf("unexpected export %+v", items)
	}
	if mem.ReadCalls()[0].Query != exportPropertiesCypher {
		t.Fatal("unexpected export query")
	}
}

func TestRightID(t *testing.T) {
	got := RightID("P1", GroupLien, registry.RankKey{Main: 2, Variant: 1})
	if got != "P1|lien|2(1)" {
		t.Fatalf("unexpected right id %q", got)
	}
}

func TestClampAmount(t *testing.T) {
	if clampAmount(1<<63) != 1<<63-1 {
		t.Fatal("expected clamp at max int64")
	}
	if amount(nil) != 0 || amount(u64(7)) != 7 {
		t.Fatal("unexpected amount conversion")
	}
}

func TestRepository_EnsureSchema(t *testing.T) {
	mem := graph.NewMemoryClient()
	repo := New(mem)

	if err := repo.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema returned error: %v", err)
	}
	writes := mem.WriteCalls()
	if len(writes) != len(schemaStatements) {
		t.Fatalf("expected %d schema statements, got %d", len(schemaStatements), len(writes))
	}
	for _, w := range writes {
		if !strings.Contains(w.Query, "IF NOT EXISTS") {
			t.Fatalf("expected idempotent constraint, got %q", w.Query)
		}
	}

	boom := errors.New("read-only replica")
	if err := New(graph.NewMemoryClient().WithError(boom)).EnsureSchema(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped graph error, got %v", err)
	}
}
