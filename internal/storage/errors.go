package storage

import "errors"

// Storage errors shared by all backends.
var (
	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
)
