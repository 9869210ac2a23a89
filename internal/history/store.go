// Package history keeps an append-only SQL log of every analysis run.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/young626-jang/ltv-flask/internal/domain"
)

// Supported drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// ErrNotFound is returned when no history row matches.
var ErrNotFound = errors.New("analysis record not found")

const schema = `
CREATE TABLE IF NOT EXISTS registry_analyses (
	id            TEXT PRIMARY KEY,
	property_id   TEXT NOT NULL,
	document_hash TEXT NOT NULL,
	source_name   TEXT NOT NULL DEFAULT '',
	result_json   TEXT NOT NULL,
	lien_count    INTEGER NOT NULL DEFAULT 0,
	total_ceiling BIGINT NOT NULL DEFAULT 0,
	diagnostics   INTEGER NOT NULL DEFAULT 0,
	created_at_ms BIGINT NOT NULL
)`

var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_registry_analyses_property ON registry_analyses (property_id, created_at_ms)`,
	`CREATE INDEX IF NOT EXISTS idx_registry_analyses_hash ON registry_analyses (document_hash, created_at_ms)`,
}

const insertRecordSQL = `
INSERT INTO registry_analyses
	(id, property_id, document_hash, source_name, result_json, lien_count, total_ceiling, diagnostics, created_at_ms)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO NOTHING`

const selectColumns = `id, property_id, document_hash, source_name, result_json, lien_count, total_ceiling, diagnostics, created_at_ms`

// Store writes and reads analysis history through database/sql.
type Store struct {
	db     *sql.DB
	driver string
}

// Open connects to the configured database and verifies it answers.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	if driver != DriverPostgres && driver != DriverSQLite {
		return nil, fmt.Errorf("unsupported history driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	if driver == DriverSQLite {
		// One connection: a :memory: database lives and dies with its connection.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping history database: %w", err)
	}
	return New(db, driver), nil
}

// New wraps an existing handle.
func New(db *sql.DB, driver string) *Store {
	return &Store{db: db, driver: driver}
}

// Migrate creates the schema if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create history table: %w", err)
	}
	for _, stmt := range indexes {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create history index: %w", err)
		}
	}
	return nil
}

// Record appends an analysis. Re-recording the same id is a no-op.
func (s *Store) Record(ctx context.Context, rec domain.AnalysisRecord) error {
	if rec.ID == "" {
		return errors.New("analysis id is required")
	}
	_, err := s.db.ExecContext(ctx, s.rebind(insertRecordSQL),
		rec.ID,
		rec.PropertyID,
		rec.DocumentHash,
		rec.SourceName,
		string(rec.ResultJSON),
		rec.LienCount,
		rec.TotalCeiling,
		rec.Diagnostics,
		rec.CreatedAt.UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("record analysis %s: %w", rec.ID, err)
	}
	return nil
}

// Get returns the analysis with the given id.
func (s *Store) Get(ctx context.Context, id string) (domain.AnalysisRecord, error) {
	query := s.rebind(`SELECT ` + selectColumns + ` FROM registry_analyses WHERE id = ?`)
	rec, err := scanRecord(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.AnalysisRecord{}, ErrNotFound
		}
		return domain.AnalysisRecord{}, fmt.Errorf("get analysis %s: %w", id, err)
	}
	return rec, nil
}

// FindByHash returns the most recent analysis of an identical document.
func (s *Store) FindByHash(ctx context.Context, hash string) (domain.AnalysisRecord, error) {
	query := s.rebind(`SELECT ` + selectColumns + ` FROM registry_analyses WHERE document_hash = ? ORDER BY created_at_ms DESC, id DESC LIMIT 1`)
	rec, err := scanRecord(s.db.QueryRowContext(ctx, query, hash))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.AnalysisRecord{}, ErrNotFound
		}
		return domain.AnalysisRecord{}, fmt.Errorf("find analysis by hash: %w", err)
	}
	return rec, nil
}

// ListByProperty returns a property's analyses, newest first.
func (s *Store) ListByProperty(ctx context.Context, propertyID string, limit int) ([]domain.AnalysisRecord, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query := s.rebind(`SELECT ` + selectColumns + ` FROM registry_analyses WHERE property_id = ? ORDER BY created_at_ms DESC, id DESC LIMIT ?`)
	rows, err := s.db.QueryContext(ctx, query, propertyID, limit)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	defer rows.Close()

	out := make([]domain.AnalysisRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan analysis: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate analyses: %w", err)
	}
	return out, nil
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the handle.
func (s *Store) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (domain.AnalysisRecord, error) {
	var (
		rec       domain.AnalysisRecord
		result    string
		createdMS int64
	)
	err := row.Scan(
		&rec.ID,
		&rec.PropertyID,
		&rec.DocumentHash,
		&rec.SourceName,
		&result,
		&rec.LienCount,
		&rec.TotalCeiling,
		&rec.Diagnostics,
		&createdMS,
	)
	if err != nil {
		return domain.AnalysisRecord{}, err
	}
	rec.ResultJSON = []byte(result)
	rec.CreatedAt = time.UnixMilli(createdMS).UTC()
	return rec, nil
}

// rebind turns ? placeholders into $n for postgres.
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
