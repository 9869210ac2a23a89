package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/young626-jang/ltv-flask/internal/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	store, err := Open(ctx, DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	// Migrate must be repeatable.
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	return store
}

func record(id, property, hash string, at time.Time) domain.AnalysisRecord {
	return domain.AnalysisRecord{
		ID:           id,
		PropertyID:   property,
		DocumentHash: hash,
		SourceName:   id + ".txt",
		ResultJSON:   []byte(`{"liens":[]}`),
		LienCount:    2,
		TotalCeiling: 80_000_000,
		Diagnostics:  1,
		CreatedAt:    at,
	}
}

func TestStoreRecordAndGet(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	at := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

	want := record("A1", "P1", "h1", at)
	if err := store.Record(ctx, want); err != nil {
		t.Fatalf("record: %v", err)
	}
	// Duplicate ids are ignored.
	dup := want
	dup.LienCount = 9
	if err := store.Record(ctx, dup); err != nil {
		t.Fatalf("duplicate record: %v", err)
	}

	got, err := store.Get(ctx, "A1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.Record(ctx, domain.AnalysisRecord{}); err == nil {
		t.Fatal("expected error for empty id")
	}
}

func TestStoreFindByHashAndList(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

	for i, rec := range []domain.AnalysisRecord{
		record("A1", "P1", "h1", base),
		record("A2", "P1", "h2", base.Add(time.Hour)),
		record("A3", "P1", "h1", base.Add(2*time.Hour)),
		record("B1", "P2", "h3", base),
	} {
		if err := store.Record(ctx, rec); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}

	latest, err := store.FindByHash(ctx, "h1")
	if err != nil {
		t.Fatalf("find by hash: %v", err)
	}
	if latest.ID != "A3" {
		t.Fatalf("expected newest analysis A3, got %s", latest.ID)
	}
	if _, err := store.FindByHash(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	list, err := store.ListByProperty(ctx, "P1", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	ids := make([]string, 0, len(list))
	for _, rec := range list {
		ids = append(ids, rec.ID)
	}
	if diff := cmp.Diff([]string{"A3", "A2", "A1"}, ids); diff != "" {
		t.Fatalf("unexpected order (-want +got):\n%s", diff)
	}

	limited, err := store.ListByProperty(ctx, "P1", 1)
	if err != nil || len(limited) != 1 {
		t.Fatalf("expected one record, got %d (%v)", len(limited), err)
	}
	empty, err := store.ListByProperty(ctx, "P9", 10)
	if err != nil || len(empty) != 0 || empty == nil {
		t.Fatalf("expected empty non-nil list, got %v (%v)", empty, err)
	}
}

func TestRebind(t *testing.T) {
	pg := New(nil, DriverPostgres)
	if got := pg.rebind("a = ? AND b = ?"); got != "a = $1 AND b = $2" {
		t.Fatalf("unexpected postgres query %q", got)
	}
	lite := New(nil, DriverSQLite)
	if got := lite.rebind("a = ?"); got != "a = ?" {
		t.Fatalf("unexpected sqlite query %q", got)
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), "mysql", "x"); err == nil {
		t.Fatal("expected unsupported driver error")
	}
}
