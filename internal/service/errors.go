package service

import "errors"

var (
	// ErrInvalidInput marks requests the caller must fix.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound marks lookups with no match.
	ErrNotFound = errors.New("not found")
)
