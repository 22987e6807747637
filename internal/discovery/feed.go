package discovery

import (
	"context"
	"errors"

	"solana-token-detector/internal/domain"
)

// ErrTransient marks a feed failure worth retrying on the next tick.
// The cursor returned alongside it is always the one passed in.
var ErrTransient = errors.New("discovery: transient feed failure")

// Cursor is an opaque position in a mint feed. The zero value starts
// from the present.
type Cursor string

// MintFeed yields newly created token mints. Implementations never
// return a mint already returned for the same or an earlier cursor,
// and tolerate gaps: missing a mint is acceptable, repeating one is not.
type MintFeed interface {
	Poll(ctx context.Context, cursor Cursor) ([]*domain.TokenMint, Cursor, error)
}
