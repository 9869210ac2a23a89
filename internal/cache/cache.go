// Package cache stores finished analyses by document hash so identical
// uploads skip the engine.
package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/young626-jang/ltv-flask/internal/registry"
)

// ErrMiss is returned when no entry exists for a hash.
var ErrMiss = errors.New("cache miss")

// Entry is what gets cached for a document.
type Entry struct {
	AnalysisID string          `json:"analysisId"`
	PropertyID string          `json:"propertyId"`
	Result     registry.Result `json:"result"`
	StoredAt   time.Time       `json:"storedAt"`
}

// Cache is the analysis cache.
type Cache interface {
	Get(ctx context.Context, hash string) (Entry, error)
	Set(ctx context.Context, hash string, entry Entry) error
	Ping(ctx context.Context) error
	Close() error
}

// Memory is a process-local cache with per-entry expiry.
type Memory struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryEntry
}

type memoryEntry struct {
	entry     Entry
	expiresAt time.Time
}

// NewMemory builds an in-memory cache. A ttl of zero never expires.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

// WithClock overrides the clock, for tests.
func (m *Memory) WithClock(now func() time.Time) *Memory {
	m.now = now
	return m
}

func (m *Memory) Get(_ context.Context, hash string) (Entry, error) {
	m.mu.RLock()
	item, ok := m.entries[hash]
	m.mu.RUnlock()
	if !ok {
		return Entry{}, ErrMiss
	}
	if !item.expiresAt.IsZero() && !m.now().Before(item.expiresAt) {
		m.mu.Lock()
		delete(m.entries, hash)
		m.mu.Unlock()
		return Entry{}, ErrMiss
	}
	return item.entry, nil
}

func (m *Memory) Set(_ context.Context, hash string, entry Entry) error {
	item := memoryEntry{entry: entry}
	if m.ttl > 0 {
		item.expiresAt = m.now().Add(m.ttl)
	}
	m.mu.Lock()
	m.entries[hash] = item
	m.mu.Unlock()
	return nil
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) Close() error { return nil }

// Len reports the number of stored entries, expired ones included.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
