package detector

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"solana-token-detector/internal/config"
	"solana-token-detector/internal/decision"
	"solana-token-detector/internal/discovery"
	"solana-token-detector/internal/domain"
	"solana-token-detector/internal/observability"
	"solana-token-detector/internal/rugcheck"
	"solana-token-detector/internal/storage"
)

// State is the loop's externally visible phase.
type State string

const (
	StateIdle       State = "IDLE"
	StatePolling    State = "POLLING"
	StateEvaluating State = "EVALUATING"
	StateAccepting  State = "ACCEPTING"
	StateDisplaying State = "DISPLAYING"
	StateStopped    State = "STOPPED"
)

// Oracle is the slice of the risk client the loop needs.
type Oracle interface {
	Assess(ctx context.Context, mint string) (*domain.RiskReport, error)
}

// DefaultConcurrency bounds in-flight oracle assessments per tick.
const DefaultConcurrency = 4

// Options configures a detection Loop.
type Options struct {
	Feed   discovery.MintFeed
	Oracle Oracle
	Store  storage.RecordStore
	Config config.Config

	// Sink receives detection events. Optional.
	Sink EventSink
	// EvalLog records every assessment outcome. Optional.
	EvalLog storage.EvaluationLog
	// Metrics instruments the loop. Optional.
	Metrics *observability.Metrics
	// Concurrency bounds parallel oracle queries. Defaults to DefaultConcurrency.
	Concurrency int
	// Logger defaults to log.Default().
	Logger *log.Logger
}

// Loop polls a mint feed, scores each unseen mint through the oracle and
// persists tokens judged safe. One goroutine runs the loop; assessments
// within a tick may fan out, but persistence stays serial in discovery
// order.
type Loop struct {
	feed    discovery.MintFeed
	oracle  Oracle
	store   storage.RecordStore
	cfg     config.Config
	sink    EventSink
	evalLog storage.EvaluationLog
	metrics *observability.Metrics
	workers int
	logger  *log.Logger

	cursor discovery.Cursor
	seen   map[string]bool

	stateMu sync.RWMutex
	state   State
}

// NewLoop validates options and creates a detection loop.
func NewLoop(opts Options) (*Loop, error) {
	if opts.Feed == nil {
		return nil, fmt.Errorf("detector: feed is required")
	}
	if opts.Oracle == nil {
		return nil, fmt.Errorf("detector: oracle is required")
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("detector: store is required")
	}
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}

	workers := opts.Concurrency
	if workers <= 0 {
		workers = DefaultConcurrency
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Loop{
		feed:    opts.Feed,
		oracle:  opts.Oracle,
		store:   opts.Store,
		cfg:     opts.Config,
		sink:    opts.Sink,
		evalLog: opts.EvalLog,
		metrics: opts.Metrics,
		workers: workers,
		logger:  logger,
		seen:    make(map[string]bool),
		state:   StateIdle,
	}, nil
}

// State returns the loop's current phase.
func (l *Loop) State() State {
	l.stateMu.RLock()
	defer l.stateMu.RUnlock()
	return l.state
}

func (l *Loop) setState(s State) {
	l.stateMu.Lock()
	l.state = s
	l.stateMu.Unlock()
}

// Run blocks until the context is cancelled. Mints already in the record
// store are never re-evaluated, even across restarts.
func (l *Loop) Run(ctx context.Context) error {
	if err := l.seedSeen(ctx); err != nil {
		return fmt.Errorf("seed seen set: %w", err)
	}

	l.logger.Printf("[detector] starting: threshold=%d interval=%s timeout=%s seeded=%d",
		l.cfg.ScoreThreshold, l.cfg.Interval(), l.cfg.Timeout(), len(l.seen))

	ticker := time.NewTicker(l.cfg.Interval())
	defer ticker.Stop()

	for {
		l.tick(ctx)

		l.setState(StateIdle)
		select {
		case <-ctx.Done():
			l.setState(StateStopped)
			l.logger.Println("[detector] stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// seedSeen loads already-persisted mints so they are skipped forever.
func (l *Loop) seedSeen(ctx context.Context) error {
	records, err := l.store.All(ctx)
	if err != nil {
		return err
	}
	for _, rec := range records {
		l.seen[rec.Mint] = true
	}
	return nil
}

type assessment struct {
	mint   *domain.TokenMint
	report *domain.RiskReport
	err    error
}

func (l *Loop) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	l.setState(StatePolling)

	mints, next, err := l.feed.Poll(ctx, l.cursor)
	if err != nil {
		if errors.Is(err, discovery.ErrTransient) {
			l.logger.Printf("[detector] feed unavailable, skipping tick: %v", err)
		} else {
			l.logger.Printf("[detector] feed poll failed: %v", err)
		}
		l.metrics.FeedError()
		return
	}
	l.cursor = next

	var unseen []*domain.TokenMint
	for _, m := range mints {
		if !l.seen[m.Mint] {
			unseen = append(unseen, m)
		}
	}
	l.metrics.MintDiscovered(len(unseen))

	if len(unseen) == 0 {
		l.metrics.TickCompleted()
		return
	}

	l.logger.Printf("[detector] evaluating %d new mints", len(unseen))
	l.setState(StateEvaluating)

	results := make([]assessment, len(unseen))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)
	for i, m := range unseen {
		i, m := i, m
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(gctx, l.cfg.Timeout())
			defer cancel()

			started := time.Now()
			report, err := l.oracle.Assess(callCtx, m.Mint)
			l.metrics.ObserveOracleLatency(time.Since(started))

			results[i] = assessment{mint: m, report: report, err: err}
			return nil
		})
	}
	// Workers never return errors; outcomes are classified per mint below
	g.Wait()

	if ctx.Err() != nil {
		return
	}

	// Serial processing keeps store writes in discovery order
	for _, res := range results {
		l.process(ctx, res)
	}

	l.metrics.TickCompleted()
}

func (l *Loop) process(ctx context.Context, res assessment) {
	mint := res.mint

	if res.err != nil {
		switch {
		case errors.Is(res.err, rugcheck.ErrRejected):
			// Terminal: treat as unscoreable, classified HIGH
			l.seen[mint.Mint] = true
			l.metrics.RecordOracleError("rejected")
			l.reject(ctx, mint, res.err)
		case errors.Is(res.err, rugcheck.ErrTimeout):
			l.metrics.RecordOracleError("timeout")
			l.logger.Printf("[detector] assessment timed out for %s, will retry on rediscovery", mint.Mint)
		default:
			l.metrics.RecordOracleError("unavailable")
			l.logger.Printf("[detector] assessment failed for %s, will retry on rediscovery: %v", mint.Mint, res.err)
		}
		return
	}

	l.seen[mint.Mint] = true

	report := res.report
	tier := decision.Classify(report.Score, l.cfg.ScoreThreshold)

	l.publish(Event{
		Type:      EventDecision,
		Mint:      mint.Mint,
		Score:     report.Score,
		Threshold: l.cfg.ScoreThreshold,
		Tier:      tier,
	})

	name := mint.Name
	if name == "" {
		name = report.TokenName
	}
	symbol := mint.Symbol
	if symbol == "" {
		symbol = report.TokenSymbol
	}
	creator := mint.Creator
	if creator == "" {
		creator = report.Creator
	}

	event := Event{
		Mint:           mint.Mint,
		Name:           name,
		Symbol:         symbol,
		Creator:        creator,
		DetectedAt:     mint.DetectedAt,
		Score:          report.Score,
		Tier:           tier,
		Recommendation: tier.Recommendation(),
		Reasons:        report.Risks,
	}

	accepted := false
	switch tier {
	case domain.TierLow:
		l.setState(StateAccepting)
		accepted = l.accept(ctx, mint, report, tier, name, symbol, creator)
		if accepted {
			event.Type = EventSaved
			l.publish(event)
		}
	case domain.TierMedium:
		l.setState(StateDisplaying)
		event.Type = EventWarned
		l.publish(event)
	default:
		l.setState(StateDisplaying)
		event.Type = EventDanger
		l.publish(event)
	}

	l.metrics.RecordEvaluation(string(tier))
	l.audit(ctx, mint.Mint, symbol, report.Score, tier, report.Fingerprint, accepted)
}

// accept persists a safe token. Reports whether a new record was written.
func (l *Loop) accept(ctx context.Context, mint *domain.TokenMint, report *domain.RiskReport, tier domain.Tier, name, symbol, creator string) bool {
	rec := &domain.SafeTokenRecord{
		Mint:           mint.Mint,
		Name:           name,
		Symbol:         symbol,
		Creator:        creator,
		DetectedAt:     mint.DetectedAt,
		Score:          report.Score,
		Tier:           tier,
		Recommendation: tier.Recommendation(),
		Risks:          report.Risks,
		Fingerprint:    report.Fingerprint,
		AcceptedAt:     time.Now().UTC(),
	}

	inserted, err := l.store.Append(ctx, rec)
	if err != nil {
		l.metrics.PersistError()
		l.logger.Printf("[detector] persist %s failed: %v", mint.Mint, err)
		return false
	}
	if !inserted {
		l.logger.Printf("[detector] %s already stored", mint.Mint)
		return false
	}

	l.metrics.RecordPersisted()
	l.logger.Printf("[detector] saved %s (%s) score=%d", mint.Mint, symbol, report.Score)
	return true
}

// reject emits a danger event for a mint the oracle refused to score.
func (l *Loop) reject(ctx context.Context, mint *domain.TokenMint, cause error) {
	l.logger.Printf("[detector] oracle rejected %s: %v", mint.Mint, cause)

	l.publish(Event{
		Type:           EventDanger,
		Mint:           mint.Mint,
		Name:           mint.Name,
		Symbol:         mint.Symbol,
		Creator:        mint.Creator,
		DetectedAt:     mint.DetectedAt,
		Tier:           domain.TierHigh,
		Recommendation: domain.TierHigh.Recommendation(),
	})

	l.metrics.RecordEvaluation(string(domain.TierHigh))
	l.audit(ctx, mint.Mint, mint.Symbol, 0, domain.TierHigh, "", false)
}

// audit records the evaluation outcome; failures never fail the tick.
func (l *Loop) audit(ctx context.Context, mint, symbol string, score int, tier domain.Tier, fingerprint string, accepted bool) {
	if l.evalLog == nil {
		return
	}

	e := &domain.Evaluation{
		Mint:           mint,
		Symbol:         symbol,
		Score:          score,
		Threshold:      l.cfg.ScoreThreshold,
		Tier:           tier,
		Recommendation: tier.Recommendation(),
		Fingerprint:    fingerprint,
		Accepted:       accepted,
		EvaluatedAt:    time.Now().UnixMilli(),
	}
	if err := l.evalLog.Insert(ctx, e); err != nil {
		l.logger.Printf("[detector] audit log insert failed for %s: %v", mint, err)
	}
}

func (l *Loop) publish(e Event) {
	if l.sink == nil {
		return
	}
	l.sink.Publish(e)
}
