package discovery

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strconv"
	"time"

	"solana-token-detector/internal/domain"
	"solana-token-detector/internal/rugcheck"
	"solana-token-detector/internal/solana"
)

// NewTokenLister is the slice of the RugCheck client the feed needs.
type NewTokenLister interface {
	NewTokens(ctx context.Context) ([]rugcheck.NewToken, error)
}

// RugcheckFeed discovers mints from the RugCheck new-tokens listing.
// The cursor is a unix-millisecond watermark over token creation time.
type RugcheckFeed struct {
	lister NewTokenLister
	logger *log.Logger

	// now is swappable for tests
	now func() time.Time
}

// NewRugcheckFeed creates a feed over the given lister. A nil logger
// falls back to log.Default().
func NewRugcheckFeed(lister NewTokenLister, logger *log.Logger) *RugcheckFeed {
	if logger == nil {
		logger = log.Default()
	}
	return &RugcheckFeed{
		lister: lister,
		logger: logger,
		now:    time.Now,
	}
}

var _ MintFeed = (*RugcheckFeed)(nil)

// Poll fetches the listing and returns mints newer than the cursor,
// ordered ascending by creation time.
func (f *RugcheckFeed) Poll(ctx context.Context, cursor Cursor) ([]*domain.TokenMint, Cursor, error) {
	tokens, err := f.lister.NewTokens(ctx)
	if err != nil {
		return nil, cursor, fmt.Errorf("%w: %v", ErrTransient, err)
	}

	watermark := decodeWatermark(cursor)
	next := watermark

	seen := make(map[string]bool, len(tokens))
	var mints []*domain.TokenMint

	for _, t := range tokens {
		if err := solana.ValidateAddress(t.Mint); err != nil {
			f.logger.Printf("[feed] skipping malformed mint %q: %v", t.Mint, err)
			continue
		}
		if seen[t.Mint] {
			continue
		}
		seen[t.Mint] = true

		createdAt := t.CreatedAt
		if createdAt.IsZero() {
			createdAt = f.now()
		}

		ms := createdAt.UnixMilli()
		if ms <= watermark && watermark > 0 {
			continue
		}
		if ms > next {
			next = ms
		}

		mints = append(mints, &domain.TokenMint{
			Mint:       t.Mint,
			Name:       t.Name,
			Symbol:     t.Symbol,
			Creator:    t.Creator,
			DetectedAt: createdAt,
		})
	}

	sort.Slice(mints, func(i, j int) bool {
		return mints[i].DetectedAt.Before(mints[j].DetectedAt)
	})

	return mints, encodeWatermark(next), nil
}

func decodeWatermark(c Cursor) int64 {
	if c == "" {
		return 0
	}
	ms, err := strconv.ParseInt(string(c), 10, 64)
	if err != nil || ms < 0 {
		// Unreadable cursor restarts from the present listing
		return 0
	}
	return ms
}

func encodeWatermark(ms int64) Cursor {
	if ms == 0 {
		return ""
	}
	return Cursor(strconv.FormatInt(ms, 10))
}
