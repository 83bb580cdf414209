package application

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrAlreadyExists is returned when a record with the same id already exists.
	ErrAlreadyExists = errors.New("application: already exists")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// ConflictError reports that a candidate interval overlaps existing occupancy
// on the same resource. Kind identifies what the candidate collided with:
// "booking", "unavailability" or "recurring-unavailability".
type ConflictError struct {
	Kind   string
	WithID string
	Start  time.Time
	End    time.Time
}

// Error implements the error interface.
func (c *ConflictError) Error() string {
	if c == nil {
		return ""
	}
	return fmt.Sprintf("conflict with %s %s", c.Kind, c.WithID)
}
