package outreach

import (
	"errors"
	"strings"
)

var (
	// ErrInvalidInput marks requests that fail validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrGenerationFailed wraps every provider failure.
	ErrGenerationFailed = errors.New("generation failed")
)

// ValidationError lists every violated constraint of a request.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, ", ")
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}
