package ingest

import (
	"errors"
	"fmt"

	"github.com/tribuna-project/tribuna/pkg/repository"
)

// MappingReason classifies why a source record could not be mapped to a
// canonical entity.
type MappingReason int

const (
	// MissingField means a required field was absent or empty.
	MissingField MappingReason = iota
	// TypeMismatch means a field was present but not convertible.
	TypeMismatch
)

func (r MappingReason) String() string {
	switch r {
	case MissingField:
		return "missing_field"
	case TypeMismatch:
		return "type_mismatch"
	default:
		return "unknown"
	}
}

// MappingError reports a single record that could not be mapped. It is
// logged and the record skipped; it never aborts the page and is never
// retried.
type MappingError struct {
	Field  string
	Reason MappingReason
	Err    error
}

func (e *MappingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("map record: %s %s: %v", e.Reason, e.Field, e.Err)
	}
	return fmt.Sprintf("map record: %s %s", e.Reason, e.Field)
}

func (e *MappingError) Unwrap() error {
	return e.Err
}

// FatalPersistence reports whether a persistence failure must abort the run:
// a lost store connection, or a constraint violation that signals a
// natural-key computation bug. Neither is swallowed into per-record counts.
func FatalPersistence(err error) bool {
	return errors.Is(err, repository.ErrConnectionLost) ||
		errors.Is(err, repository.ErrConstraintViolation)
}

// Missing builds a MappingError for an absent required field.
func Missing(field string) *MappingError {
	return &MappingError{Field: field, Reason: MissingField}
}

// Mismatch builds a MappingError for an unconvertible field.
func Mismatch(field string, err error) *MappingError {
	return &MappingError{Field: field, Reason: TypeMismatch, Err: err}
}
