package generations

import "errors"

var (
	// ErrNotFound indicates the record does not exist or belongs to another user.
	ErrNotFound = errors.New("generation not found")

	// ErrInvalidInput indicates a record is missing required fields.
	ErrInvalidInput = errors.New("invalid input")
)
