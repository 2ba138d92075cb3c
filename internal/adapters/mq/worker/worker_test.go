package worker_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	queue "github.com/okhan/motoval/internal/adapters/mq/queue"
	worker "github.com/okhan/motoval/internal/adapters/mq/worker"
	"github.com/okhan/motoval/internal/domain/model"
	"github.com/okhan/motoval/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// fixedScorer returns the same card for every submission.
type fixedScorer struct {
	card model.ScoreCard
}

func (s *fixedScorer) ScoreAll(_ model.Observations) model.ScoreCard {
	return s.card
}

// fixedValuer fills a fixed final score and valuation.
type fixedValuer struct {
	final float64
	val   model.Valuation
}

func (v *fixedValuer) Evaluate(_ context.Context, _ model.Vehicle, card model.ScoreCard) (model.ScoreCard, model.Valuation) {
	card.Final = v.final
	return card, v.val
}

// captureSaver delivers every saved record on a channel, optionally failing
// specific report IDs.
type captureSaver struct {
	recs    chan model.InspectionRecord
	failIDs map[string]bool
}

func newCaptureSaver() *captureSaver {
	return &captureSaver{
		recs:    make(chan model.InspectionRecord, 64),
		failIDs: make(map[string]bool),
	}
}

func (s *captureSaver) Save(_ context.Context, rec model.InspectionRecord) error {
	if s.failIDs[rec.ReportID] {
		return errors.New("store unavailable")
	}
	s.recs <- rec
	return nil
}

func (s *captureSaver) waitFor(timeout time.Duration) (model.InspectionRecord, bool) {
	select {
	case rec := <-s.recs:
		return rec, true
	case <-time.After(timeout):
		return model.InspectionRecord{}, false
	}
}

func submission(reportID string) model.Submission {
	return model.Submission{
		ReportID:   reportID,
		Vehicle:    model.Vehicle{Brand: "Honda", Model: "CD 70", Year: 2022},
		ReceivedAt: time.Now().UTC(),
	}
}

func TestWorker_Process(t *testing.T) {
	Convey("Given a running worker over an in-memory queue", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(16))
		scorer := &fixedScorer{card: model.ScoreCard{Engine: 8.5, Frame: 10, Suspension: 10, Brakes: 10, Tires: 10, Electricals: 10, Body: 10, Documents: 10}}
		valuer := &fixedValuer{final: 9.4, val: model.Valuation{MarketBaseline: 159900, EstimatedValue: 150306}}
		saver := newCaptureSaver()

		w := worker.NewWorker(q, scorer, valuer, saver, worker.WithName("worker-test"))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		Convey("When a submission arrives", func() {
			So(q.Enqueue(ctx, submission("report-1")), ShouldBeTrue)

			rec, ok := saver.waitFor(2 * time.Second)

			Convey("Then the scored record is persisted", func() {
				So(ok, ShouldBeTrue)
				So(rec.ReportID, ShouldEqual, "report-1")
				So(rec.Scores.Engine, ShouldEqual, 8.5)
				So(rec.Scores.Final, ShouldEqual, 9.4)
				So(rec.Valuation.EstimatedValue, ShouldEqual, 150306)
				So(rec.ScoredAt.IsZero(), ShouldBeFalse)
			})
		})

		Convey("When persisting one submission fails", func() {
			saver.failIDs["report-bad"] = true
			So(q.Enqueue(ctx, submission("report-bad")), ShouldBeTrue)
			So(q.Enqueue(ctx, submission("report-good")), ShouldBeTrue)

			rec, ok := saver.waitFor(2 * time.Second)

			Convey("Then the worker keeps processing later submissions", func() {
				So(ok, ShouldBeTrue)
				So(rec.ReportID, ShouldEqual, "report-good")
			})
		})

		Convey("When the worker is shut down", func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 2*time.Second)
			defer shutdownCancel()

			So(w.Shutdown(shutdownCtx), ShouldBeNil)
		})
	})
}

func TestWorker_StopsWhenQueueCloses(t *testing.T) {
	Convey("Given a running worker", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(4))
		saver := newCaptureSaver()
		w := worker.NewWorker(q, &fixedScorer{}, &fixedValuer{}, saver)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		done := make(chan struct{})
		go func() {
			w.Run(ctx)
			close(done)
		}()

		Convey("When the queue closes", func() {
			So(q.Close(), ShouldBeNil)

			Convey("Then the worker loop exits", func() {
				select {
				case <-done:
				case <-time.After(2 * time.Second):
					So("worker did not exit", ShouldBeEmpty)
				}
			})
		})
	})
}

func TestPool(t *testing.T) {
	Convey("Given a pool of workers sharing one queue", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(64))
		scorer := &fixedScorer{card: model.ScoreCard{Engine: 10, Frame: 10, Suspension: 10, Brakes: 10, Tires: 10, Electricals: 10, Body: 10, Documents: 10}}
		valuer := &fixedValuer{final: 10.0, val: model.Valuation{MarketBaseline: 159900, EstimatedValue: 159900}}
		saver := newCaptureSaver()

		pool := worker.NewPool(3, q, scorer, valuer, saver)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		pool.Start(ctx)

		Convey("When several submissions are enqueued", func() {
			const count = 10
			for i := 0; i < count; i++ {
				So(q.Enqueue(ctx, submission(fmt.Sprintf("report-%d", i))), ShouldBeTrue)
			}

			Convey("Then every submission is processed", func() {
				for i := 0; i < count; i++ {
					_, ok := saver.waitFor(2 * time.Second)
					So(ok, ShouldBeTrue)
				}
			})
		})

		Convey("When the pool shuts down after the queue closes", func() {
			So(q.Close(), ShouldBeNil)
			pool.Stop()

			Convey("Then no further submissions are accepted", func() {
				So(q.Enqueue(ctx, submission("late")), ShouldBeFalse)
			})
		})
	})
}
