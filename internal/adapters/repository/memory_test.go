package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	repository "github.com/okhan/motoval/internal/adapters/repository"
	"github.com/okhan/motoval/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// record builds a fully populated inspection record for store tests.
func record(reportID string, scoredAt time.Time) model.InspectionRecord {
	return model.InspectionRecord{
		ReportID: reportID,
		Vehicle:  model.Vehicle{Brand: "Honda", Model: "CD 70", Year: 2022},
		Scores: model.ScoreCard{
			Engine:      8.5,
			Frame:       10,
			Suspension:  10,
			Brakes:      9.0,
			Tires:       9.3,
			Electricals: 10,
			Body:        7.9,
			Documents:   10,
			Final:       8.9,
		},
		Valuation: model.Valuation{
			MarketBaseline: 121524,
			EstimatedValue: 108156,
		},
		ScoredAt: scoredAt,
	}
}

func TestMemoryStore(t *testing.T) {
	Convey("Given a new in-memory store", t, func() {
		store := repository.NewMemoryStore()
		ctx := context.Background()
		now := time.Now().UTC()

		Convey("When saving and fetching a record", func() {
			rec := record("report-1", now)
			So(store.Save(ctx, rec), ShouldBeNil)

			got, err := store.Get(ctx, "report-1")

			Convey("Then the record round-trips intact", func() {
				So(err, ShouldBeNil)
				So(got.ReportID, ShouldEqual, "report-1")
				So(got.Vehicle.Brand, ShouldEqual, "Honda")
				So(got.Scores.Final, ShouldEqual, 8.9)
				So(got.Valuation.EstimatedValue, ShouldEqual, 108156)
			})
		})

		Convey("When fetching an unknown report ID", func() {
			_, err := store.Get(ctx, "missing")

			So(err, ShouldEqual, repository.ErrNotFound)
		})

		Convey("When saving the same report ID twice", func() {
			So(store.Save(ctx, record("report-1", now)), ShouldBeNil)
			updated := record("report-1", now)
			updated.Scores.Final = 9.9
			So(store.Save(ctx, updated), ShouldBeNil)

			Convey("Then the newer record replaces the older one", func() {
				got, err := store.Get(ctx, "report-1")
				So(err, ShouldBeNil)
				So(got.Scores.Final, ShouldEqual, 9.9)
				So(store.Count(ctx), ShouldEqual, 1)
			})
		})

		Convey("When listing saved records", func() {
			for i := 0; i < 5; i++ {
				So(store.Save(ctx, record(fmt.Sprintf("report-%d", i), now.Add(time.Duration(i)*time.Second))), ShouldBeNil)
			}

			Convey("Then they come back most recent first", func() {
				recs, err := store.List(ctx, 3)
				So(err, ShouldBeNil)
				So(len(recs), ShouldEqual, 3)
				So(recs[0].ReportID, ShouldEqual, "report-4")
				So(recs[1].ReportID, ShouldEqual, "report-3")
				So(recs[2].ReportID, ShouldEqual, "report-2")
			})

			Convey("And a limit larger than the store returns everything", func() {
				recs, err := store.List(ctx, 100)
				So(err, ShouldBeNil)
				So(len(recs), ShouldEqual, 5)
			})
		})

		Convey("When listing with an invalid limit", func() {
			_, err := store.List(ctx, 0)

			So(err, ShouldEqual, repository.ErrInvalidLimit)
		})

		Convey("When counting", func() {
			So(store.Count(ctx), ShouldEqual, 0)
			So(store.Save(ctx, record("report-1", now)), ShouldBeNil)
			So(store.Count(ctx), ShouldEqual, 1)
		})

		Convey("When the store is closed", func() {
			So(store.Close(), ShouldBeNil)

			Convey("Then saves are rejected", func() {
				So(store.Save(ctx, record("report-1", now)), ShouldEqual, repository.ErrStoreClosed)
			})
		})
	})
}
