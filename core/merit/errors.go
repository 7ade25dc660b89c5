package merit

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is wrapped by every ValidationError.
	ErrValidation = errors.New("invalid problem")
	// ErrUnsupportedUnitType is returned for units outside the known kinds.
	ErrUnsupportedUnitType = errors.New("unsupported unit type")
)

// ValidationError reports a missing or malformed input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Unwrap allows errors.Is(err, ErrValidation).
func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
