package models

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by all repos and handlers.
//
// Repos return these (possibly wrapped with %w); handlers map them to
// HTTP status codes: ValidationError -> 400, ErrNotFound -> 404,
// ErrConflict -> 409, ErrStorageUnavailable -> 503.
var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// ValidationError reports malformed or missing input. It is always
// returned before any mutation happens.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
