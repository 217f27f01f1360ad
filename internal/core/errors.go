package core

import "errors"

var (
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrNotFound marks a reference to an entity id that does not exist.
	// Callers wrap it with the entity kind and id.
	ErrNotFound = errors.New("not found")
)

// ValidationError reports a malformed field on a create or update input.
// It is always surfaced synchronously and never silently coerced, with the
// single documented exception of the amount sign convention.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid " + e.Field + ": " + e.Reason
}

// IsValidation reports whether err is a field validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
