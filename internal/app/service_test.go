package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/okhan/motoval/internal/adapters/repository"
	service "github.com/okhan/motoval/internal/app"
	"github.com/okhan/motoval/internal/domain/model"
	"github.com/okhan/motoval/internal/domain/rules"
	"github.com/okhan/motoval/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// fixedClock pins the service clock to January 1 of the given year.
func fixedClock(year int) func() time.Time {
	return func() time.Time {
		return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	}
}

func cleanObservations() model.Observations {
	return model.Observations{
		Engine: model.EngineObservation{
			OilLeaks: model.OilLeakNone,
			Smoke:    model.SmokeNone,
		},
		Brakes: model.BrakeObservation{
			PadRemaining: 100,
			ABSWorking:   true,
		},
		Tires: model.TireObservation{
			TreadRemaining: 100,
		},
		Electricals: model.ElectricalObservation{
			LightsWorking:     true,
			IndicatorsWorking: true,
			HornWorking:       true,
			StarterWorking:    true,
			BatteryCondition:  model.BatteryGood,
		},
		Body: model.BodyObservation{
			FairingCondition: model.FairingExcellent,
		},
		Documents: model.DocumentObservation{
			Registration:   true,
			ImportPapers:   true,
			ServiceRecords: true,
		},
	}
}

func submission(reportID string, year int) model.Submission {
	return model.Submission{
		ReportID:     reportID,
		Vehicle:      model.Vehicle{Brand: "Honda", Model: "CD 70", Year: year},
		Observations: cleanObservations(),
		ReceivedAt:   time.Now().UTC(),
	}
}

// waitForRecord polls the read side until the async pipeline persists the
// report or the retry budget runs out.
func waitForRecord(ctx context.Context, svc *service.Service, reportID string) (model.InspectionRecord, bool) {
	for i := 0; i < 200; i++ {
		rec, err := svc.Inspection(ctx, reportID)
		if err == nil {
			return rec, true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return model.InspectionRecord{}, false
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should be created successfully", func() {
			So(svc, ShouldNotBeNil)
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc := service.New(
			service.WithWorkerCount(2),
			service.WithQueueSize(128),
			service.WithDedupeSize(256),
			service.WithFallbackBaseline(100000),
			service.WithDepreciation(0.1, 0.4),
		)

		Convey("Then it should be created successfully", func() {
			So(svc, ShouldNotBeNil)
		})
	})
}

func TestService_StartStop(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New(service.WithWorkerCount(2))
		defer svc.Stop()

		Convey("When starting the service", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			So(svc.Start(ctx), ShouldBeNil)

			Convey("Then its stats report it started", func() {
				stats := svc.GetStats()
				So(stats.Started, ShouldBeTrue)
				So(stats.WorkerCount, ShouldEqual, 2)
				So(stats.InspectionsStored, ShouldEqual, 0)
			})

			Convey("And starting again is a no-op", func() {
				So(svc.Start(ctx), ShouldBeNil)
			})
		})

		Convey("When stopping a started service", func() {
			ctx := context.Background()
			So(svc.Start(ctx), ShouldBeNil)
			svc.Stop()

			Convey("Then its stats report it stopped", func() {
				So(svc.GetStats().Started, ShouldBeFalse)
			})

			Convey("And stopping again is a no-op", func() {
				svc.Stop()
			})
		})
	})

	Convey("Given a service with an inconsistent rule set", t, func() {
		broken := rules.Default()
		delete(broken.Categories, model.CategoryTires)
		svc := service.New(service.WithRules(broken))

		Convey("When starting", func() {
			err := svc.Start(context.Background())

			Convey("Then startup fails fast", func() {
				So(err, ShouldNotBeNil)
				So(err, ShouldWrap, rules.ErrInvalidRules)
			})
		})
	})
}

func TestService_Pipeline(t *testing.T) {
	Convey("Given a started service with a pinned clock", t, func() {
		ctx := context.Background()
		svc := service.New(
			service.WithWorkerCount(2),
			service.WithClock(fixedClock(2026)),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When submitting an inspection", func() {
			So(svc.SeenAndRecord(ctx, "report-1"), ShouldBeFalse)
			So(svc.Submit(ctx, submission("report-1", 2026)), ShouldBeTrue)

			Convey("Then the scored record becomes readable", func() {
				rec, found := waitForRecord(ctx, svc, "report-1")
				So(found, ShouldBeTrue)
				So(rec.ReportID, ShouldEqual, "report-1")
				So(rec.Scores.Final, ShouldEqual, 10.0)
				So(rec.Valuation.MarketBaseline, ShouldEqual, 159900)
				So(rec.Valuation.EstimatedValue, ShouldEqual, 159900)
			})
		})

		Convey("When submitting the same report ID twice", func() {
			So(svc.SeenAndRecord(ctx, "report-1"), ShouldBeFalse)

			Convey("Then the second check reports a duplicate", func() {
				So(svc.SeenAndRecord(ctx, "report-1"), ShouldBeTrue)
			})

			Convey("And unrecording allows a retry", func() {
				svc.Unrecord(ctx, "report-1")
				So(svc.SeenAndRecord(ctx, "report-1"), ShouldBeFalse)
			})
		})

		Convey("When listing recent inspections", func() {
			So(svc.Submit(ctx, submission("report-a", 2026)), ShouldBeTrue)
			So(svc.Submit(ctx, submission("report-b", 2026)), ShouldBeTrue)
			_, foundA := waitForRecord(ctx, svc, "report-a")
			_, foundB := waitForRecord(ctx, svc, "report-b")
			So(foundA, ShouldBeTrue)
			So(foundB, ShouldBeTrue)

			recs, err := svc.Recent(ctx, 10)
			So(err, ShouldBeNil)
			So(len(recs), ShouldEqual, 2)
		})

		Convey("When fetching an unknown report ID", func() {
			_, err := svc.Inspection(ctx, "missing")
			So(err, ShouldEqual, repository.ErrNotFound)
		})
	})
}

func TestService_Preview(t *testing.T) {
	Convey("Given a started service with a pinned clock", t, func() {
		ctx := context.Background()
		svc := service.New(
			service.WithWorkerCount(1),
			service.WithClock(fixedClock(2026)),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When previewing a flawless current-year vehicle", func() {
			rec, err := svc.Preview(ctx, submission("preview-1", 2026))

			Convey("Then the record mirrors what the pipeline would store", func() {
				So(err, ShouldBeNil)
				So(rec.ReportID, ShouldEqual, "preview-1")
				So(rec.Scores.Final, ShouldEqual, 10.0)
				So(rec.Valuation.MarketBaseline, ShouldEqual, 159900)
				So(rec.Valuation.EstimatedValue, ShouldEqual, 159900)
			})

			Convey("And nothing is persisted", func() {
				_, err := svc.Inspection(ctx, "preview-1")
				So(err, ShouldEqual, repository.ErrNotFound)
			})
		})

		Convey("When previewing a degraded older vehicle", func() {
			sub := submission("preview-2", 2023)
			sub.Observations.Engine.OilLeaks = model.OilLeakMajor
			rec, err := svc.Preview(ctx, sub)

			Convey("Then scores and valuation reflect the findings", func() {
				So(err, ShouldBeNil)
				So(rec.Scores.Engine, ShouldEqual, 8.5)
				So(rec.Scores.Final, ShouldEqual, 9.4)
				// Three years of depreciation, then the 0.94 condition factor.
				So(rec.Valuation.MarketBaseline, ShouldEqual, 121524)
				So(rec.Valuation.EstimatedValue, ShouldEqual, 114233)
			})
		})

		Convey("When previewing an unknown vehicle", func() {
			sub := submission("preview-3", 2026)
			sub.Vehicle = model.Vehicle{Brand: "Kawasaki", Model: "GTO 110", Year: 2026}
			rec, err := svc.Preview(ctx, sub)

			Convey("Then the fallback baseline prices it", func() {
				So(err, ShouldBeNil)
				So(rec.Valuation.MarketBaseline, ShouldEqual, 200000)
			})
		})
	})
}

func TestService_Backpressure(t *testing.T) {
	Convey("Given a service with a tiny queue and no running workers yet", t, func() {
		ctx := context.Background()
		svc := service.New(
			service.WithWorkerCount(1),
			service.WithQueueSize(1),
			service.WithStore(repository.NewMemoryStore()),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When flooding the queue faster than it drains", func() {
			accepted := 0
			for i := 0; i < 200; i++ {
				if svc.Submit(ctx, submission("flood", 2026)) {
					accepted++
				}
			}

			Convey("Then at least one submission is shed, none block", func() {
				So(accepted, ShouldBeGreaterThan, 0)
				So(accepted, ShouldBeLessThan, 200)
			})
		})
	})
}
