package rugcheck

import "errors"

// Assessment error classes. Callers branch with errors.Is.
var (
	// ErrTimeout indicates the request could not complete within the
	// configured timeout. The mint may be retried later.
	ErrTimeout = errors.New("rugcheck: request timed out")

	// ErrUnavailable indicates the API kept failing after all retries.
	// The mint may be retried later.
	ErrUnavailable = errors.New("rugcheck: service unavailable")

	// ErrRejected indicates the API rejected the request outright.
	// Terminal: retrying the same mint will not help.
	ErrRejected = errors.New("rugcheck: request rejected")
)
