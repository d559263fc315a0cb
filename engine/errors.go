package engine

import "errors"

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================
//
// The computation itself never errors: missing or malformed data degrades
// to documented defaults plus advisory flags (see report.go). These
// sentinels belong to the record store boundary, where genuine failures
// (missing rows, bad input) do exist.

var (
	// ErrNotFound is returned when a referenced record doesn't exist.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidRecord is returned when a record fails basic validation
	// before it reaches the store (empty weekday set, empty staff id, …).
	ErrInvalidRecord = errors.New("invalid record")

	// ErrStoreClosed is returned when a store is used after Close.
	ErrStoreClosed = errors.New("store is closed")
)

// IsNotFound reports whether the error indicates a missing record.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
