// Package worker runs the scoring pipeline: dequeue a submission, score it,
// derive the valuation, persist the record.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/okhan/motoval/internal/domain/model"
	"github.com/okhan/motoval/pkg/logger"
	"github.com/okhan/motoval/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	workerShutdownTimeout   = 5 * time.Second
	poolShutdownTimeout     = 30 * time.Second
)

// Scorer computes the eight category scores for a submission.
type Scorer interface {
	ScoreAll(obs model.Observations) model.ScoreCard
}

// Valuer fills in the final score and derives the market valuation.
type Valuer interface {
	Evaluate(ctx context.Context, v model.Vehicle, card model.ScoreCard) (model.ScoreCard, model.Valuation)
}

// Saver persists scored inspection records.
type Saver interface {
	Save(ctx context.Context, rec model.InspectionRecord) error
}

// Queue defines how workers receive submissions.
type Queue interface {
	Dequeue(ctx context.Context) <-chan model.Submission
}

// Worker processes submissions until stopped.
type Worker struct {
	queue  Queue
	scorer Scorer
	valuer Valuer
	saver  Saver
	name   string

	shutdown chan struct{}
	done     chan struct{}

	log logger.Logger
}

// NewWorker creates a worker with configuration options.
func NewWorker(queue Queue, scorer Scorer, valuer Valuer, saver Saver, opts ...Option) *Worker {
	w := &Worker{
		queue:    queue,
		scorer:   scorer,
		valuer:   valuer,
		saver:    saver,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		log:      logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.log = w.log.Named(w.name)
	}
	return w
}

// Run starts the worker loop until ctx is cancelled, the queue closes or
// Shutdown is called.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	subs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case sub, ok := <-subs:
			if !ok {
				return
			}
			if err := w.process(ctx, sub); err != nil {
				w.log.Error(ctx, "error processing submission", logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *Worker) Shutdown(ctx context.Context) error {
	close(w.shutdown)
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.log.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// process scores, values and persists a single submission.
func (w *Worker) process(ctx context.Context, sub model.Submission) error {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerLatency(float64(time.Since(start).Milliseconds()))
	}()

	scoreStart := time.Now()
	card := w.scorer.ScoreAll(sub.Observations)
	card, val := w.valuer.Evaluate(ctx, sub.Vehicle, card)
	metrics.RecordScoringDuration(float64(time.Since(scoreStart).Milliseconds()))

	for _, c := range model.Categories {
		metrics.RecordCategoryScore(string(c), card.Category(c))
	}
	metrics.RecordFinalScore(card.Final)

	rec := model.InspectionRecord{
		ReportID:  sub.ReportID,
		Vehicle:   sub.Vehicle,
		Scores:    card,
		Valuation: val,
		ScoredAt:  time.Now().UTC(),
	}
	if err := w.saver.Save(ctx, rec); err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "save_failed")
		w.log.Error(ctx, "persisting inspection failed",
			logger.String("reportID", sub.ReportID),
			logger.Error(err),
		)
		return fmt.Errorf("persist inspection %s: %w", sub.ReportID, err)
	}

	metrics.RecordInspectionScored()
	w.log.Debug(ctx, "inspection scored",
		logger.String("reportID", sub.ReportID),
		logger.Float64("finalScore", card.Final),
		logger.Int("estimatedValue", int(val.EstimatedValue)),
	)
	return nil
}

// Pool manages multiple workers.
type Pool struct {
	workers []*Worker
	queue   Queue

	shutdown chan struct{}

	log logger.Logger
}

// NewPool creates a pool of workerCount workers sharing one queue.
func NewPool(workerCount int, queue Queue, scorer Scorer, valuer Valuer, saver Saver) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	p := &Pool{
		workers:  make([]*Worker, workerCount),
		queue:    queue,
		shutdown: make(chan struct{}),
		log:      logger.Get().Named("worker-pool"),
	}
	for i := 0; i < workerCount; i++ {
		p.workers[i] = NewWorker(
			queue,
			scorer,
			valuer,
			saver,
			WithName("worker-"+strconv.Itoa(i)),
		)
	}

	metrics.UpdateWorkerActiveCount(workerCount)

	return p
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Stop gracefully stops all workers.
func (p *Pool) Stop() {
	close(p.shutdown)
	for _, w := range p.workers {
		select {
		case <-w.done:
		case <-time.After(workerShutdownTimeout):
		}
	}
	metrics.UpdateWorkerActiveCount(0)
}

// Shutdown closes the queue and waits for all workers to drain.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.log.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.log.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	metrics.UpdateWorkerActiveCount(0)
	return nil
}
