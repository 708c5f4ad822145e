package apperror

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across layers. Services wrap these with context;
// the HTTP boundary maps them to status codes with errors.Is.
var (
	ErrValidation = errors.New("invalid input")
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrTransient  = errors.New("temporary failure")
	ErrUnknown    = errors.New("internal error")
)

func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
