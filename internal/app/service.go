// Package service provides the core business service that implements the
// dependencies required by the HTTP API: idempotent submission intake, the
// async scoring pipeline and read access to persisted inspections.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/okhan/motoval/internal/adapters/http/api"
	submitqueue "github.com/okhan/motoval/internal/adapters/mq/queue"
	workerpool "github.com/okhan/motoval/internal/adapters/mq/worker"
	"github.com/okhan/motoval/internal/adapters/pricing"
	"github.com/okhan/motoval/internal/adapters/repository"
	"github.com/okhan/motoval/internal/domain/dedupe"
	"github.com/okhan/motoval/internal/domain/model"
	"github.com/okhan/motoval/internal/domain/rules"
	"github.com/okhan/motoval/internal/domain/scoring"
	"github.com/okhan/motoval/internal/domain/valuation"
	"github.com/okhan/motoval/pkg/logger"
	"github.com/okhan/motoval/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultWorkerCount = 4
	defaultQueueSize   = 10000
	defaultDedupeSize  = 50000
)

// Service implements the API dependencies for the inspection system.
type Service struct {
	mu sync.RWMutex

	// Core components
	store      repository.Store
	deduper    dedupe.Deduper
	queue      submitqueue.Queue
	engine     scoring.Scorer
	calculator *valuation.Calculator
	pool       *workerpool.Pool

	// Configuration
	workerCount int
	queueSize   int
	dedupeSize  int
	ruleSet     *rules.Set
	priceBook   valuation.PriceBook
	fallback    int64
	depRate     float64
	depCap      float64
	clock       func() time.Time

	// State
	started bool

	// Logging
	log logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of scoring workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the submission queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the idempotency cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithStore sets the inspection store. Defaults to an in-memory store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithRules sets the scoring rule set. The caller validates it first.
func WithRules(set *rules.Set) Option {
	return func(s *Service) {
		if set != nil {
			s.ruleSet = set
		}
	}
}

// WithPriceBook sets the valuation price source.
func WithPriceBook(pb valuation.PriceBook) Option {
	return func(s *Service) {
		if pb != nil {
			s.priceBook = pb
		}
	}
}

// WithFallbackBaseline sets the baseline used on price book misses.
func WithFallbackBaseline(baseline int64) Option {
	return func(s *Service) {
		if baseline > 0 {
			s.fallback = baseline
		}
	}
}

// WithDepreciation sets the yearly depreciation rate and total cap.
func WithDepreciation(rate, cap float64) Option {
	return func(s *Service) {
		if rate > 0 {
			s.depRate = rate
		}
		if cap > 0 {
			s.depCap = cap
		}
	}
}

// WithClock sets the time source used for vehicle age.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.clock = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: defaultWorkerCount,
		queueSize:   defaultQueueSize,
		dedupeSize:  defaultDedupeSize,
		ruleSet:     rules.Default(),
		fallback:    valuation.DefaultFallbackBaseline,
		depRate:     valuation.DefaultDepreciationRate,
		depCap:      valuation.DefaultDepreciationCap,
		clock:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.log == nil {
		s.log = logger.Get()
	}

	s.log.Info(ctx, "starting inspection service...")

	if err := s.ruleSet.Validate(); err != nil {
		return err
	}

	if s.store == nil {
		s.store = repository.NewMemoryStore()
		s.log.Info(ctx, "using in-memory inspection store")
	}
	if s.priceBook == nil {
		s.priceBook = pricing.Default()
		s.log.Info(ctx, "using built-in price book")
	}

	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.queue = submitqueue.NewInMemoryQueue(
		submitqueue.WithCapacity(s.queueSize),
	)
	s.engine = scoring.NewEngine(
		scoring.WithRules(s.ruleSet),
		scoring.WithLogger(s.log.Named("scoring")),
	)
	s.calculator = valuation.NewCalculator(
		valuation.WithRules(s.ruleSet),
		valuation.WithPriceBook(s.priceBook),
		valuation.WithFallbackBaseline(s.fallback),
		valuation.WithDepreciation(s.depRate, s.depCap),
		valuation.WithClock(s.clock),
		valuation.WithLogger(s.log.Named("valuation")),
	)

	s.pool = workerpool.NewPool(s.workerCount, s.queue, s.engine, s.calculator, s.store)
	s.pool.Start(ctx)

	s.started = true
	s.log.Info(ctx, "inspection service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.log.Info(ctx, "stopping inspection service...")

	// Close the queue first so workers drain and exit.
	if s.queue != nil {
		_ = s.queue.Close()
	}
	if s.pool != nil {
		s.pool.Stop()
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.log.Error(ctx, "closing store failed", logger.Error(err))
		}
	}

	s.started = false
	s.log.Info(ctx, "inspection service stopped")
}

// SeenAndRecord atomically checks if a report ID was seen and records it if
// not. Returns true if the report was already seen.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	return s.deduper.SeenAndRecord(ctx, id)
}

// Unrecord removes a report ID from the seen list, allowing a retry.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Submit enqueues a validated submission for asynchronous scoring.
// Returns false on backpressure.
func (s *Service) Submit(ctx context.Context, sub model.Submission) bool {
	ok := s.queue.Enqueue(ctx, sub)
	if !ok {
		s.log.Warn(ctx, "submission rejected by queue",
			logger.String("reportID", sub.ReportID),
		)
		return false
	}
	s.log.Debug(ctx, "submission enqueued",
		logger.String("reportID", sub.ReportID),
		logger.String("brand", sub.Vehicle.Brand),
		logger.String("model", sub.Vehicle.Model),
	)
	return true
}

// Preview scores and values a submission synchronously without persisting
// anything. The result mirrors what the pipeline would store.
func (s *Service) Preview(ctx context.Context, sub model.Submission) (model.InspectionRecord, error) {
	card := s.engine.ScoreAll(sub.Observations)
	card, val := s.calculator.Evaluate(ctx, sub.Vehicle, card)
	return model.InspectionRecord{
		ReportID:  sub.ReportID,
		Vehicle:   sub.Vehicle,
		Scores:    card,
		Valuation: val,
		ScoredAt:  s.clock().UTC(),
	}, nil
}

// Inspection returns the persisted record for a report ID.
func (s *Service) Inspection(ctx context.Context, reportID string) (model.InspectionRecord, error) {
	return s.store.Get(ctx, reportID)
}

// Recent returns up to limit records, most recently scored first.
func (s *Service) Recent(ctx context.Context, limit int) ([]model.InspectionRecord, error) {
	return s.store.List(ctx, limit)
}

// GetStats returns a pipeline snapshot for the stats endpoint and refreshes
// the queue and store gauges as it reads them.
func (s *Service) GetStats() api.ServiceStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := api.ServiceStats{
		Started:        s.started,
		WorkerCount:    s.workerCount,
		QueueCapacity:  s.queueSize,
		DedupeCapacity: s.dedupeSize,
	}

	if s.started {
		ctx := context.Background()
		stats.QueueLength = s.queue.Len(ctx)
		stats.InspectionsStored = s.store.Count(ctx)

		metrics.UpdateQueueSize(stats.QueueLength)
		metrics.UpdateInspectionsStored(stats.InspectionsStored)
	}

	return stats
}

// Size returns the current number of entries in the deduper.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}
