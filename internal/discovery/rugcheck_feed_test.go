package discovery

import (
	"context"
	"errors"
	"testing"
	"time"

	"solana-token-detector/internal/rugcheck"
)

// Valid 32-byte base58 addresses for test fixtures.
const (
	mintA = "So11111111111111111111111111111111111111112"
	mintB = "SysvarRent111111111111111111111111111111111"
	mintC = "Vote111111111111111111111111111111111111111"
)

type stubLister struct {
	tokens []rugcheck.NewToken
	err    error
}

func (s *stubLister) NewTokens(ctx context.Context) ([]rugcheck.NewToken, error) {
	return s.tokens, s.err
}

func TestRugcheckFeed_Poll(t *testing.T) {
	base := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)

	lister := &stubLister{tokens: []rugcheck.NewToken{
		{Mint: mintB, Symbol: "BBB", Creator: "w2", CreatedAt: base.Add(10 * time.Second)},
		{Mint: mintA, Name: "Token A", Symbol: "AAA", Creator: "w1", CreatedAt: base},
	}}

	feed := NewRugcheckFeed(lister, nil)

	mints, cursor, err := feed.Poll(context.Background(), "")
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}

	if len(mints) != 2 {
		t.Fatalf("expected 2 mints, got %d", len(mints))
	}

	// Ascending by creation time
	if mints[0].Mint != mintA || mints[1].Mint != mintB {
		t.Errorf("unexpected order: %s, %s", mints[0].Mint, mints[1].Mint)
	}

	if mints[0].Name != "Token A" || mints[0].Symbol != "AAA" || mints[0].Creator != "w1" {
		t.Errorf("metadata not carried over: %+v", mints[0])
	}

	if cursor == "" {
		t.Error("expected advanced cursor")
	}
}

func TestRugcheckFeed_CursorFiltersReturned(t *testing.T) {
	base := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)

	lister := &stubLister{tokens: []rugcheck.NewToken{
		{Mint: mintA, CreatedAt: base},
		{Mint: mintB, CreatedAt: base.Add(5 * time.Second)},
	}}

	feed := NewRugcheckFeed(lister, nil)
	ctx := context.Background()

	_, cursor, err := feed.Poll(ctx, "")
	if err != nil {
		t.Fatalf("first Poll: %v", err)
	}

	// Same listing again: nothing new
	mints, cursor2, err := feed.Poll(ctx, cursor)
	if err != nil {
		t.Fatalf("second Poll: %v", err)
	}
	if len(mints) != 0 {
		t.Errorf("expected no mints on repeat listing, got %d", len(mints))
	}
	if cursor2 != cursor {
		t.Errorf("cursor moved without new data: %s -> %s", cursor, cursor2)
	}

	// A newer token shows up
	lister.tokens = append(lister.tokens, rugcheck.NewToken{
		Mint: mintC, CreatedAt: base.Add(20 * time.Second),
	})

	mints, _, err = feed.Poll(ctx, cursor2)
	if err != nil {
		t.Fatalf("third Poll: %v", err)
	}
	if len(mints) != 1 || mints[0].Mint != mintC {
		t.Fatalf("expected only the new mint, got %+v", mints)
	}
}

func TestRugcheckFeed_TransientError(t *testing.T) {
	lister := &stubLister{err: errors.New("boom")}
	feed := NewRugcheckFeed(lister, nil)

	mints, cursor, err := feed.Poll(context.Background(), Cursor("1756461600000"))
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("expected ErrTransient, got %v", err)
	}
	if len(mints) != 0 {
		t.Errorf("expected no mints on error, got %d", len(mints))
	}
	if cursor != Cursor("1756461600000") {
		t.Errorf("cursor changed on error: %s", cursor)
	}
}

func TestRugcheckFeed_DropsMalformedAndDuplicates(t *testing.T) {
	base := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)

	lister := &stubLister{tokens: []rugcheck.NewToken{
		{Mint: "not-base58!!", CreatedAt: base},
		{Mint: "", CreatedAt: base},
		{Mint: mintA, CreatedAt: base},
		{Mint: mintA, CreatedAt: base.Add(time.Second)},
	}}

	feed := NewRugcheckFeed(lister, nil)

	mints, _, err := feed.Poll(context.Background(), "")
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}

	if len(mints) != 1 || mints[0].Mint != mintA {
		t.Fatalf("expected single valid mint, got %+v", mints)
	}
}

func TestRugcheckFeed_UnreadableCursorRestarts(t *testing.T) {
	base := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)

	lister := &stubLister{tokens: []rugcheck.NewToken{
		{Mint: mintA, CreatedAt: base},
	}}

	feed := NewRugcheckFeed(lister, nil)

	mints, _, err := feed.Poll(context.Background(), Cursor("garbage"))
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if len(mints) != 1 {
		t.Errorf("expected full listing for unreadable cursor, got %d mints", len(mints))
	}
}
