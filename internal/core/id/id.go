// Package id provides UUIDv7 identifiers for ledger entities.
// UUIDv7 is time-ordered and generated monotonically within a process, so
// comparing two ids reproduces their insertion order.
package id

import (
	"bytes"

	"github.com/google/uuid"
)

// ID is a type alias for UUID, used across all entities.
type ID = uuid.UUID

// New generates a new UUIDv7.
func New() ID {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to V4 if V7 fails (should never happen)
		return uuid.New()
	}
	return id
}

// Parse converts string to ID with validation.
func Parse(s string) (ID, error) {
	return uuid.Parse(s)
}

// MustParse converts string to ID, panics on error.
// Use only for constants and tests.
func MustParse(s string) ID {
	return uuid.MustParse(s)
}

// Nil returns the zero-value ID.
func Nil() ID {
	return uuid.Nil
}

// IsNil checks if ID is zero-value.
func IsNil(id ID) bool {
	return id == uuid.Nil
}

// Compare orders two ids bytewise: -1 if a < b, 0 if equal, +1 if a > b.
// For UUIDv7 the lower id is the one created first.
func Compare(a, b ID) int {
	return bytes.Compare(a[:], b[:])
}
