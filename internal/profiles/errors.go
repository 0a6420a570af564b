package profiles

import "errors"

var (
	// ErrNotFound is returned when the caller has no profile row.
	ErrNotFound = errors.New("profile not found")
	// ErrPaymentRequired is returned when a free profile has no credits left.
	ErrPaymentRequired = errors.New("no credits remaining")
)

// Client-facing messages for the errors above.
const (
	MsgNotFound        = "Profile not found"
	MsgPaymentRequired = "No credits remaining. Please upgrade to Pro."
)
