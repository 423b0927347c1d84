package app

import (
	"errors"
	"fmt"

	"github.com/evanschultz/checklist/internal/domain"
)

// ErrWriterClosed and related errors describe runtime failures.
var (
	ErrWriterClosed       = errors.New("writer closed")
	ErrInvalidSnapshot    = errors.New("invalid snapshot")
	ErrStaleConfirmation  = errors.New("confirmation no longer applies")
	ErrUnknownConfirmKind = errors.New("unknown confirmation kind")
)

// ValidationError is a user-facing rejection of a form submission.
type ValidationError struct {
	Title   string
	Message string
	Err     error
}

// Error renders the validation failure.
func (e *ValidationError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap returns the underlying domain error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// categoryValidationError maps domain field errors to the category form alert.
func categoryValidationError(err error) error {
	if errors.Is(err, domain.ErrInvalidName) || errors.Is(err, domain.ErrInvalidColor) {
		return &ValidationError{
			Title:   "Input error",
			Message: "Enter a category name and choose a color.",
			Err:     err,
		}
	}
	return err
}
