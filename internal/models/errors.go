package models

import (
	"errors"
	"fmt"
)

var (
	// ErrTripNotFound indicates no trip exists for the given trip ID
	ErrTripNotFound = errors.New("trip not found")

	// ErrDuplicateTripID indicates a trip with the same trip ID already exists
	ErrDuplicateTripID = errors.New("trip id already exists")

	// ErrSeatUnavailable indicates the seat is not in the trip's available seats
	ErrSeatUnavailable = errors.New("seat is not available")
)

// ValidationError reports malformed or missing input.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	switch {
	case e.Field != "" && e.Msg != "":
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Field != "":
		return fmt.Sprintf("invalid %s", e.Field)
	default:
		return "validation error"
	}
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Msg: msg}
}

// StorageError wraps an unclassified persistence failure.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
