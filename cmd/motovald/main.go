package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/okhan/motoval/internal/adapters/http/api"
	"github.com/okhan/motoval/internal/adapters/pricing"
	"github.com/okhan/motoval/internal/adapters/repository"
	app "github.com/okhan/motoval/internal/app"
	"github.com/okhan/motoval/internal/config"
	"github.com/okhan/motoval/internal/domain/rules"
	"github.com/okhan/motoval/internal/domain/valuation"
	"github.com/okhan/motoval/pkg/logger"
	"github.com/okhan/motoval/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout            = 10 * time.Second
	writeTimeout           = 10 * time.Second
	idleTimeout            = 60 * time.Second
	readHeaderTimeout      = 5 * time.Second
	shutdownTimeout        = 30 * time.Second
	systemMetricsInterval  = 10 * time.Second
	serviceMetricsInterval = 5 * time.Second
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics;
	// the service exposes its own registry on /healthz.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// Scoring rules: fail fast on an inconsistent rule set rather than
	// silently producing skewed final scores.
	ruleSet := rules.Default()
	if cfg.RulesPath != "" {
		ruleSet, err = rules.LoadFile(cfg.RulesPath)
		if err != nil {
			log.Fatal(ctx, "failed to load scoring rules", logger.String("path", cfg.RulesPath), logger.Error(err))
		}
		log.Info(ctx, "loaded scoring rules", logger.String("path", cfg.RulesPath))
	}

	var priceBook valuation.PriceBook = pricing.Default()
	if cfg.PriceBookPath != "" {
		priceBook, err = pricing.LoadFile(cfg.PriceBookPath)
		if err != nil {
			log.Fatal(ctx, "failed to load price book", logger.String("path", cfg.PriceBookPath), logger.Error(err))
		}
		log.Info(ctx, "loaded price book", logger.String("path", cfg.PriceBookPath))
	}

	var store repository.Store
	if cfg.DBPath != "" {
		store, err = repository.NewSQLiteStore(ctx, cfg.DBPath, repository.WithSQLiteLogger(log.Named("store")))
		if err != nil {
			log.Fatal(ctx, "failed to open inspection store", logger.String("path", cfg.DBPath), logger.Error(err))
		}
		log.Info(ctx, "using sqlite inspection store", logger.String("path", cfg.DBPath))
	} else {
		store = repository.NewMemoryStore()
		log.Info(ctx, "using in-memory inspection store")
	}

	// Create and start the service with configuration options
	svc := app.New(
		app.WithLogger(log),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithStore(store),
		app.WithRules(ruleSet),
		app.WithPriceBook(priceBook),
		app.WithFallbackBaseline(cfg.FallbackBaseline),
		app.WithDepreciation(cfg.DepreciationRate, cfg.DepreciationCap),
	)
	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start service: " + err.Error() + "\n")
		return
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, svc)

	// HTTP mux and routes.
	mux := http.NewServeMux()
	apiServer := api.NewServer(svc, svc, cfg.MaxListLimit)
	apiServer.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			return
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}

// startSystemMetricsUpdater updates process-level gauges periodically.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			var m runtime.MemStats
			runtime.ReadMemStats(&m)
			metrics.UpdateSystemMemoryUsage(m.Alloc)
			metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
		}
	}
}

// startServiceMetricsUpdater refreshes service gauges periodically.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// GetStats refreshes queue and store gauges as a side effect.
			_ = svc.GetStats()
		}
	}
}
