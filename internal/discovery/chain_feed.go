package discovery

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"solana-token-detector/internal/domain"
	"solana-token-detector/internal/solana"
)

// initializeMintMarker appears in program logs for both InitializeMint
// and InitializeMint2 instructions.
const initializeMintMarker = "Instruction: InitializeMint"

// ChainFeed discovers mints straight from the chain by watching SPL
// token program logs over a WebSocket subscription. Notifications are
// resolved to mint addresses in the background and buffered; Poll
// drains the buffer. The in-process seen set keeps the feed monotonic,
// so the cursor passes through unchanged.
type ChainFeed struct {
	ws     solana.WSClient
	rpc    solana.RPCClient
	logger *log.Logger

	mu      sync.Mutex
	buf     []*domain.TokenMint
	seen    map[string]bool
	started bool
}

// NewChainFeed creates a chain feed. A nil logger falls back to
// log.Default().
func NewChainFeed(ws solana.WSClient, rpc solana.RPCClient, logger *log.Logger) *ChainFeed {
	if logger == nil {
		logger = log.Default()
	}
	return &ChainFeed{
		ws:     ws,
		rpc:    rpc,
		logger: logger,
		seen:   make(map[string]bool),
	}
}

var _ MintFeed = (*ChainFeed)(nil)

// Start subscribes to token program logs and begins buffering sightings.
// Some providers only accept one address per subscription, so each
// program gets its own.
func (f *ChainFeed) Start(ctx context.Context) error {
	f.mu.Lock()
	if f.started {
		f.mu.Unlock()
		return fmt.Errorf("chain feed already started")
	}
	f.started = true
	f.mu.Unlock()

	// The RPC endpoint does the resolution work, so probe it up front.
	slot, err := f.rpc.GetSlot(ctx)
	if err != nil {
		f.mu.Lock()
		f.started = false
		f.mu.Unlock()
		return fmt.Errorf("rpc health check: %w", err)
	}
	f.logger.Printf("[chain] rpc reachable at slot %d", slot)

	for _, program := range []string{solana.TokenProgramID, solana.Token2022ProgramID} {
		ch, err := f.ws.SubscribeLogs(ctx, solana.LogsFilter{Mentions: []string{program}})
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", program, err)
		}
		f.logger.Printf("[chain] subscribed to program %s", program)
		go f.consume(ctx, ch)
	}

	return nil
}

// Poll drains buffered sightings.
func (f *ChainFeed) Poll(ctx context.Context, cursor Cursor) ([]*domain.TokenMint, Cursor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.started {
		return nil, cursor, fmt.Errorf("%w: chain feed not started", ErrTransient)
	}

	mints := f.buf
	f.buf = nil
	return mints, cursor, nil
}

func (f *ChainFeed) consume(ctx context.Context, ch <-chan solana.LogNotification) {
	for {
		select {
		case <-ctx.Done():
			return
		case notif, ok := <-ch:
			if !ok {
				return
			}
			if notif.Err != nil {
				// Failed transaction, nothing was minted
				continue
			}
			if !mentionsInitializeMint(notif.Logs) {
				continue
			}
			f.resolve(ctx, notif)
		}
	}
}

func mentionsInitializeMint(logs []string) bool {
	for _, line := range logs {
		if strings.Contains(line, initializeMintMarker) {
			return true
		}
	}
	return false
}

// resolve fetches the transaction behind a sighting and locates the
// freshly initialized mint account among its keys.
func (f *ChainFeed) resolve(ctx context.Context, notif solana.LogNotification) {
	tx, err := f.rpc.GetTransaction(ctx, notif.Signature)
	if err != nil {
		f.logger.Printf("[chain] fetch transaction %s: %v", notif.Signature, err)
		return
	}
	if tx == nil || tx.Message == nil || len(tx.Message.AccountKeys) == 0 {
		return
	}

	// First account key is the fee payer, best-effort creator
	creator := tx.Message.AccountKeys[0]

	for _, key := range tx.Message.AccountKeys {
		if key == creator || solana.IsTokenProgram(key) {
			continue
		}
		if solana.ValidateAddress(key) != nil {
			continue
		}

		info, err := f.rpc.GetAccountInfo(ctx, key)
		if err != nil {
			f.logger.Printf("[chain] account info %s: %v", key, err)
			continue
		}
		if info == nil || !solana.IsTokenProgram(info.Owner) {
			continue
		}

		mint, err := solana.ParseMintAccount(info.Data)
		if err != nil || !mint.Initialized {
			continue
		}
		if !mint.IsFungible() {
			f.logger.Printf("[chain] skipping non-fungible mint %s", key)
			return
		}

		detectedAt := time.Now()
		if tx.BlockTime > 0 {
			detectedAt = time.Unix(tx.BlockTime, 0)
		}

		f.record(&domain.TokenMint{
			Mint:       key,
			Creator:    creator,
			DetectedAt: detectedAt,
		})
		return
	}
}

func (f *ChainFeed) record(mint *domain.TokenMint) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.seen[mint.Mint] {
		return
	}
	f.seen[mint.Mint] = true
	f.buf = append(f.buf, mint)
}
