package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"solana-token-detector/internal/config"
	"solana-token-detector/internal/detector"
	"solana-token-detector/internal/discovery"
	"solana-token-detector/internal/observability"
	"solana-token-detector/internal/rugcheck"
	"solana-token-detector/internal/solana"
	"solana-token-detector/internal/storage"
	chstore "solana-token-detector/internal/storage/clickhouse"
	"solana-token-detector/internal/storage/jsonfile"
	"solana-token-detector/internal/storage/memory"
	"solana-token-detector/internal/storage/migrations"
	pgstore "solana-token-detector/internal/storage/postgres"
)

func main() {
	mode := flag.String("mode", "monitor", "Run mode: monitor, history, or configure")
	configPath := flag.String("config", "config.json", "Path to config file")
	storePath := flag.String("store", "safe_to_buy.json", "Path to the JSON record store")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of a file or PostgreSQL")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string for the record store")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse DSN for the evaluation audit log (optional)")
	source := flag.String("source", "rugcheck", "Mint discovery source: rugcheck or chain")
	rugcheckBase := flag.String("rugcheck-base", "", "RugCheck API base URL (default: public endpoint)")
	rpcEndpoint := flag.String("rpc-endpoint", "", "Solana RPC HTTP endpoint (chain source)")
	wsEndpoint := flag.String("ws-endpoint", "", "Solana WebSocket endpoint (chain source)")
	metricsAddr := flag.String("metrics-addr", ":9090", "Prometheus metrics HTTP address (empty to disable)")
	debug := flag.Bool("debug", false, "Print per-mint decision details")
	setThreshold := flag.Int("set-threshold", -1, "configure mode: new score threshold")
	setInterval := flag.Int("set-interval", -1, "configure mode: new polling interval (seconds)")
	setTimeout := flag.Int("set-timeout", -1, "configure mode: new API timeout (seconds)")

	flag.Parse()

	logger := log.New(os.Stdout, "[detector] ", log.LstdFlags)

	// Optional .env overlay for endpoints and DSNs
	env := config.LoadEnv()
	if *rugcheckBase == "" {
		*rugcheckBase = env.RugcheckBase
	}
	if *rpcEndpoint == "" {
		*rpcEndpoint = env.RPCEndpoint
	}
	if *wsEndpoint == "" {
		*wsEndpoint = env.WSEndpoint
	}
	if *postgresDSN == "" {
		*postgresDSN = env.PostgresDSN
	}
	if *clickhouseDSN == "" {
		*clickhouseDSN = env.ClickhouseDSN
	}

	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan error, 1)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
		}
	}()

	var err error
	switch *mode {
	case "monitor":
		err = runMonitor(ctx, logger, monitorOptions{
			configPath:    *configPath,
			storePath:     *storePath,
			useMemory:     *useMemory,
			postgresDSN:   *postgresDSN,
			clickhouseDSN: *clickhouseDSN,
			source:        *source,
			rugcheckBase:  *rugcheckBase,
			rpcEndpoint:   *rpcEndpoint,
			wsEndpoint:    *wsEndpoint,
			metricsAddr:   *metricsAddr,
			debug:         *debug,
		})
	case "history":
		err = runHistory(ctx, logger, *storePath, *useMemory, *postgresDSN)
	case "configure":
		err = runConfigure(logger, *configPath, *setThreshold, *setInterval, *setTimeout)
	default:
		logger.Fatalf("Unknown mode: %s", *mode)
	}

	done <- err
	cancel()

	if err != nil && err != context.Canceled {
		logger.Fatalf("Error: %v", err)
	}

	logger.Println("Shutdown complete")
}

type monitorOptions struct {
	configPath    string
	storePath     string
	useMemory     bool
	postgresDSN   string
	clickhouseDSN string
	source        string
	rugcheckBase  string
	rpcEndpoint   string
	wsEndpoint    string
	metricsAddr   string
	debug         bool
}

// runMonitor runs the detection loop until cancelled.
func runMonitor(ctx context.Context, logger *log.Logger, opts monitorOptions) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	metrics := observability.NewMetrics("")
	if opts.metricsAddr != "" {
		go serveMetrics(logger, opts.metricsAddr)
	}

	store, closeStore, err := openStore(ctx, opts.storePath, opts.useMemory, opts.postgresDSN)
	if err != nil {
		return err
	}
	defer closeStore()

	var evalLog storage.EvaluationLog
	if opts.clickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, opts.clickhouseDSN)
		if err != nil {
			return fmt.Errorf("clickhouse migrations: %w", err)
		}
		defer conn.Close()
		evalLog = chstore.NewEvaluationStore(conn)
		logger.Println("Evaluation audit log enabled")
	}

	oracle := rugcheck.NewClient(opts.rugcheckBase, rugcheck.WithTimeout(cfg.Timeout()))

	var feed discovery.MintFeed
	switch opts.source {
	case "rugcheck":
		feed = discovery.NewRugcheckFeed(oracle, logger)
	case "chain":
		if opts.rpcEndpoint == "" {
			return fmt.Errorf("-rpc-endpoint is required for the chain source")
		}
		if opts.wsEndpoint == "" {
			return fmt.Errorf("-ws-endpoint is required for the chain source")
		}

		rpc := solana.NewHTTPClient(opts.rpcEndpoint)
		ws, err := solana.NewWSClient(ctx, opts.wsEndpoint, nil)
		if err != nil {
			return fmt.Errorf("create websocket client: %w", err)
		}
		defer ws.Close()

		chainFeed := discovery.NewChainFeed(ws, rpc, logger)
		if err := chainFeed.Start(ctx); err != nil {
			return fmt.Errorf("start chain feed: %w", err)
		}
		feed = chainFeed
	default:
		return fmt.Errorf("unknown source: %s", opts.source)
	}

	loop, err := detector.NewLoop(detector.Options{
		Feed:    feed,
		Oracle:  oracle,
		Store:   store,
		Config:  cfg,
		Sink:    &consoleSink{out: os.Stdout, debug: opts.debug},
		EvalLog: evalLog,
		Metrics: metrics,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	logger.Printf("Monitoring new tokens (source=%s, threshold=%d)", opts.source, cfg.ScoreThreshold)
	return loop.Run(ctx)
}

// runHistory prints every stored record.
func runHistory(ctx context.Context, logger *log.Logger, storePath string, useMemory bool, postgresDSN string) error {
	store, closeStore, err := openStore(ctx, storePath, useMemory, postgresDSN)
	if err != nil {
		return err
	}
	defer closeStore()

	records, err := store.All(ctx)
	if err != nil {
		return fmt.Errorf("read records: %w", err)
	}

	if len(records) == 0 {
		fmt.Println("No tokens saved yet.")
		return nil
	}

	fmt.Printf("Saved tokens (%d):\n\n", len(records))
	for i, rec := range records {
		fmt.Println(formatRecord(i, rec))
	}
	return nil
}

// runConfigure updates config.json from flags. Unset flags keep their
// current values.
func runConfigure(logger *log.Logger, configPath string, threshold, interval, timeout int) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if threshold >= 0 {
		cfg.ScoreThreshold = threshold
	}
	if interval >= 0 {
		cfg.PollingInterval = interval
	}
	if timeout >= 0 {
		cfg.APITimeout = timeout
	}

	if err := config.Save(configPath, cfg); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	logger.Printf("Saved %s: threshold=%d interval=%ds timeout=%ds",
		configPath, cfg.ScoreThreshold, cfg.PollingInterval, cfg.APITimeout)
	return nil
}

// openStore selects the record store backend.
func openStore(ctx context.Context, storePath string, useMemory bool, postgresDSN string) (storage.RecordStore, func(), error) {
	switch {
	case useMemory:
		return memory.NewRecordStore(), func() {}, nil
	case postgresDSN != "":
		pool, err := pgstore.NewPool(ctx, postgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("postgres migrations: %w", err)
		}
		return pgstore.NewRecordStore(pool), pool.Close, nil
	default:
		return jsonfile.NewRecordStore(storePath), func() {}, nil
	}
}

func serveMetrics(logger *log.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	logger.Printf("Starting metrics server on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		logger.Printf("Metrics server error: %v", err)
	}
}
