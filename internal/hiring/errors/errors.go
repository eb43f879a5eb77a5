package errors

import (
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNotFound        = fmt.Errorf("not found")
	ErrDuplicate       = fmt.Errorf("already exists")
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrForbidden       = fmt.Errorf("forbidden")
	ErrUnauthenticated = fmt.Errorf("unauthenticated")
	ErrClosed          = fmt.Errorf("closed")
)

// ValidationError lists the offending fields of a rejected payload.
// It unwraps to ErrInvalidInput.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (v *ValidationError) Error() string {
	keys := make([]string, 0, len(v.Fields))
	for k := range v.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+v.Fields[k])
	}
	return fmt.Sprintf("%v: %s", ErrInvalidInput, strings.Join(parts, "; "))
}

func (v *ValidationError) Unwrap() error {
	return ErrInvalidInput
}
