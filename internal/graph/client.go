package graph

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Client is the contract the repository needs from the property graph.
type Client interface {
	ExecuteWrite(ctx context.Context, cypher string, params map[string]any) (Result, error)
	ExecuteRead(ctx context.Context, cypher string, params map[string]any) (Result, error)
	// ExecuteBatch runs every statement in one write transaction.
	ExecuteBatch(ctx context.Context, statements []Statement) error
	VerifyConnectivity(ctx context.Context) error
	Close(ctx context.Context) error
}

// Statement is one parameterised cypher statement.
type Statement struct {
	Cypher string
	Params map[string]any
}

// Result is a simplified representation of a query response.
type Result struct {
	Records []Record
}

// First returns the first record, or nil when the result is empty.
func (r Result) First() Record {
	if len(r.Records) == 0 {
		return nil
	}
	return r.Records[0]
}

// Record groups key-value pairs returned from the graph engine.
type Record map[string]any

// String reads key as a string. Missing or null values read as "".
func (r Record) String(key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Int reads key as an integer. The driver hands back int64 for every integer.
func (r Record) Int(key string) int64 {
	switch v := r[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}

// Float reads key as a float.
func (r Record) Float(key string) float64 {
	switch v := r[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	default:
		return 0
	}
}

// Bool reads key as a boolean.
func (r Record) Bool(key string) bool {
	v, _ := r[key].(bool)
	return v
}

// Strings reads key as a list of strings, skipping non-string items.
func (r Record) Strings(key string) []string {
	switch v := r[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// Records reads key as a list of nested maps, as returned by collect({...}).
func (r Record) Records(key string) []Record {
	items, ok := r[key].([]any)
	if !ok {
		return nil
	}
	out := make([]Record, 0, len(items))
	for _, item := range items {
		switch m := item.(type) {
		case map[string]any:
			out = append(out, Record(m))
		case Record:
			out = append(out, m)
		}
	}
	return out
}

// Options configures a graph client implementation.
type Options struct {
	URI            string
	Database       string
	Username       string
	Password       string
	MaxConnections int
	// AcquireTimeout bounds the wait for a pooled connection.
	AcquireTimeout time.Duration
	// MaxRetryTime bounds the retries of a managed transaction.
	MaxRetryTime time.Duration
}

// ErrMissingURI indicates the graph URI is not provided.
var ErrMissingURI = errors.New("graph URI is required")
