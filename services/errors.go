package services

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a resource does not exist or is hidden from
// the caller. The two cases are deliberately indistinguishable.
var ErrNotFound = errors.New("resource not found")

// ValidationError rejects a mutation before any persistence side effect.
// Controllers map it to HTTP 422.
type ValidationError struct {
	Detail string
}

func (e *ValidationError) Error() string {
	return e.Detail
}

func newValidationError(format string, args ...any) error {
	return &ValidationError{Detail: fmt.Sprintf(format, args...)}
}
