package payments

import "errors"

var (
	ErrNotFound = errors.New("payment not found")
	// ErrNotPending is returned when reviewing a payment that was already reviewed.
	ErrNotPending = errors.New("payment already reviewed")
	// ErrUnsupportedType is returned for screenshots that are not png, jpeg or webp.
	ErrUnsupportedType = errors.New("unsupported screenshot type")
	ErrTooLarge        = errors.New("screenshot too large")
	ErrInvalidInput    = errors.New("invalid input")
)
