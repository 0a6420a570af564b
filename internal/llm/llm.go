package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Prompt is a single chat-style completion request.
type Prompt struct {
	System      string
	User        string
	Temperature float32
}

// Client abstracts LLM providers that return free-form text.
type Client interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

var (
	// ErrRateLimited is returned when the provider answered 429.
	ErrRateLimited = errors.New("llm rate limited")
	// ErrCreditsExhausted is returned when the provider answered 402.
	ErrCreditsExhausted = errors.New("llm credits exhausted")
)

// StatusError is a non-2xx provider response other than 429 and 402.
type StatusError struct {
	Provider string
	Status   int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d", e.Provider, e.Status)
}

// ClassifyStatus maps a provider HTTP status to the package errors.
// A zero status means the call failed before a response was received.
func ClassifyStatus(provider string, status int, body string, cause error) error {
	switch status {
	case http.StatusTooManyRequests:
		return fmt.Errorf("%s: %w", provider, ErrRateLimited)
	case http.StatusPaymentRequired:
		return fmt.Errorf("%s: %w", provider, ErrCreditsExhausted)
	case 0:
		return fmt.Errorf("%s request: %w", provider, cause)
	default:
		return &StatusError{Provider: provider, Status: status, Body: body}
	}
}
