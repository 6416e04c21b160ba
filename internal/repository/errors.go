package repository

import "errors"

// Sentinel errors shared by the repositories. Services translate these
// into HTTP-facing failures; raw driver errors are never surfaced.
var (
	// ErrEmailExists is returned when an insert violates the
	// UNIQUE(kind, email) constraint on principals.
	ErrEmailExists = errors.New("email already exists")

	// ErrNotFound is returned when a lookup by id matches no row.
	ErrNotFound = errors.New("record not found")
)
