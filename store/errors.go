package store

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by all store adapters. Adapters return these (or the
// typed errors below) so failures classify on type rather than on driver
// message text.
var (
	// ErrNotConnected is returned when an operation runs before Connect or
	// after Disconnect.
	ErrNotConnected = errors.New("store: not connected")

	// ErrPoolExhausted is returned when the adapter's connection pool has no
	// free connections.
	ErrPoolExhausted = errors.New("store: connection pool exhausted")

	// ErrNotFound is returned when a requested document does not exist.
	ErrNotFound = errors.New("store: not found")
)

// DuplicateKeyError reports a unique-constraint violation.
type DuplicateKeyError struct {
	Collection string
	Key        string
	Err        error
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("store: duplicate key %q in %q: %v", e.Key, e.Collection, e.Err)
}

func (e *DuplicateKeyError) Unwrap() error { return e.Err }

// ConflictError reports an optimistic write conflict; the operation may be
// retried.
type ConflictError struct {
	Collection string
	Err        error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("store: write conflict in %q: %v", e.Collection, e.Err)
}

func (e *ConflictError) Unwrap() error { return e.Err }

// DimensionError reports a vector whose dimensionality does not match the
// collection schema.
type DimensionError struct {
	Want int
	Got  int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("store: vector dimension mismatch: want %d, got %d", e.Want, e.Got)
}
