package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrDuplicateYear = errors.New("year already exists")
	ErrOutOfRange    = errors.New("value out of range")
	ErrUnknownGrade  = errors.New("unknown grade")
	ErrInvalid       = errors.New("invalid value")
)

// ValidationError reports bad user input on a single field.
// Unwrap exposes the sentinel so callers can use errors.Is.
type ValidationError struct {
	Field string
	Err   error
	Msg   string
}

// NewValidationError builds a ValidationError for field
func NewValidationError(field string, err error, format string, args ...any) error {
	return &ValidationError{Field: field, Err: err, Msg: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("%s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err was caused by rejected user input
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
