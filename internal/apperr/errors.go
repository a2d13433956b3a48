// Package apperr defines the error kinds every service operation can be
// rejected with. Callers classify with errors.Is against the sentinels.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound: the entity id does not exist at all.
	ErrNotFound = errors.New("not found")
	// ErrForbidden: the entity exists but is owned by another tenant, or the
	// acting identity has the wrong role for the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrValidation: malformed or rejected input.
	ErrValidation = errors.New("validation failed")
	// ErrUnauthenticated: unknown username or wrong password.
	ErrUnauthenticated = errors.New("invalid credentials")
)

// NotFound reports that entity id does not exist.
func NotFound(entity string, id uint) error {
	return fmt.Errorf("%s %d: %w", entity, id, ErrNotFound)
}

// Forbidden reports that entity id is not accessible to the acting identity.
func Forbidden(entity string, id uint) error {
	return fmt.Errorf("%s %d: %w", entity, id, ErrForbidden)
}

// ValidationError names the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalid builds a *ValidationError.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Kind returns a short label for err, used in logs and metrics.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrUnauthenticated):
		return "unauthenticated"
	default:
		return "internal"
	}
}
