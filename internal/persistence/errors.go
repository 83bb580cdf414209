package persistence

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate is returned when a record with the same identity already exists.
	ErrDuplicate = errors.New("persistence: duplicate")
	// ErrConstraintViolation is returned when a stored check constraint rejects the record.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
	// ErrForeignKeyViolation is returned when a referenced record is missing.
	ErrForeignKeyViolation = errors.New("persistence: foreign key violation")
)

// OverlapError is returned by booking and span writes when the commit-time
// exclusion guard finds the interval already taken on the resource timeline.
// The store runs this guard inside the writing transaction, so it is the
// final authority even when two requests validated against the same stale
// snapshot.
type OverlapError struct {
	WithID string
	Kind   string
}

// Error implements the error interface.
func (e *OverlapError) Error() string {
	return fmt.Sprintf("persistence: interval overlaps %s %s", e.Kind, e.WithID)
}
