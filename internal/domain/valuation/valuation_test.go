package valuation_test

import (
	"context"
	"testing"
	"time"

	"github.com/okhan/motoval/internal/domain/model"
	valuation "github.com/okhan/motoval/internal/domain/valuation"
	. "github.com/smartystreets/goconvey/convey"
)

// stubBook is a fixed price book for tests.
type stubBook struct {
	prices map[string]int64
}

func (b *stubBook) Baseline(_ context.Context, brand, mdl string) (int64, bool) {
	p, ok := b.prices[brand+"/"+mdl]
	return p, ok
}

// fixedYear pins the calculator clock to January 1 of the given year.
func fixedYear(year int) func() time.Time {
	return func() time.Time {
		return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	}
}

func perfectCard() model.ScoreCard {
	return model.ScoreCard{
		Engine:      10,
		Frame:       10,
		Suspension:  10,
		Brakes:      10,
		Tires:       10,
		Electricals: 10,
		Body:        10,
		Documents:   10,
	}
}

func TestCalculator_FinalScore(t *testing.T) {
	Convey("Given a calculator with the default weights", t, func() {
		calc := valuation.NewCalculator()

		Convey("When every category is perfect", func() {
			So(calc.FinalScore(perfectCard()), ShouldEqual, 10.0)
		})

		Convey("When every category is zero", func() {
			So(calc.FinalScore(model.ScoreCard{}), ShouldEqual, 0.0)
		})

		Convey("When only the engine lost points", func() {
			card := perfectCard()
			card.Engine = 8.5

			Convey("Then the 40% engine weight dominates the drop", func() {
				// (8.5*40 + 10*60) / 100
				So(calc.FinalScore(card), ShouldEqual, 9.4)
			})
		})

		Convey("When only the documents lost points", func() {
			card := perfectCard()
			card.Documents = 0

			Convey("Then the 2% documents weight barely moves the final", func() {
				So(calc.FinalScore(card), ShouldEqual, 9.8)
			})
		})

		Convey("When several categories lost points", func() {
			card := model.ScoreCard{
				Engine:      8.0,
				Frame:       9.0,
				Suspension:  10,
				Brakes:      9.5,
				Tires:       9.3,
				Electricals: 10,
				Body:        7.9,
				Documents:   10,
			}

			// (320 + 135 + 100 + 95 + 93 + 50 + 63.2 + 20) / 100 = 8.762
			So(calc.FinalScore(card), ShouldEqual, 8.8)
		})
	})
}

func TestCalculator_Value(t *testing.T) {
	Convey("Given a calculator with a known price book and a fixed clock", t, func() {
		ctx := context.Background()
		book := &stubBook{prices: map[string]int64{
			"Honda/CD 70": 159900,
		}}
		calc := valuation.NewCalculator(
			valuation.WithPriceBook(book),
			valuation.WithClock(fixedYear(2026)),
		)

		Convey("When valuing a current-year vehicle with a 9.4 final score", func() {
			v := model.Vehicle{Brand: "Honda", Model: "CD 70", Year: 2026}
			val := calc.Value(ctx, v, 9.4)

			Convey("Then the baseline carries no depreciation", func() {
				So(val.MarketBaseline, ShouldEqual, 159900)
			})

			Convey("And the estimate is the baseline scaled by the condition", func() {
				So(val.EstimatedValue, ShouldEqual, 150306)
			})
		})

		Convey("When the vehicle is three years old", func() {
			v := model.Vehicle{Brand: "Honda", Model: "CD 70", Year: 2023}
			val := calc.Value(ctx, v, 10.0)

			Convey("Then depreciation is 24% of the baseline", func() {
				So(val.MarketBaseline, ShouldEqual, 121524)
				So(val.EstimatedValue, ShouldEqual, 121524)
			})
		})

		Convey("When the vehicle is old enough to hit the depreciation cap", func() {
			seven := calc.Value(ctx, model.Vehicle{Brand: "Honda", Model: "CD 70", Year: 2019}, 10.0)
			twenty := calc.Value(ctx, model.Vehicle{Brand: "Honda", Model: "CD 70", Year: 2006}, 10.0)

			Convey("Then depreciation never exceeds half the baseline", func() {
				So(seven.MarketBaseline, ShouldEqual, 79950)
				So(twenty.MarketBaseline, ShouldEqual, 79950)
			})
		})

		Convey("When the vehicle year is in the future", func() {
			v := model.Vehicle{Brand: "Honda", Model: "CD 70", Year: 2027}
			val := calc.Value(ctx, v, 10.0)

			Convey("Then the age clamps to zero", func() {
				So(val.MarketBaseline, ShouldEqual, 159900)
			})
		})

		Convey("When the final score is zero", func() {
			v := model.Vehicle{Brand: "Honda", Model: "CD 70", Year: 2026}
			val := calc.Value(ctx, v, 0)

			Convey("Then the estimate is zero but the baseline survives", func() {
				So(val.MarketBaseline, ShouldEqual, 159900)
				So(val.EstimatedValue, ShouldEqual, 0)
			})
		})

		Convey("When the final score is out of range", func() {
			v := model.Vehicle{Brand: "Honda", Model: "CD 70", Year: 2026}
			high := calc.Value(ctx, v, 12.0)
			low := calc.Value(ctx, v, -1.0)

			Convey("Then the condition multiplier clamps to [0, 1]", func() {
				So(high.EstimatedValue, ShouldEqual, 159900)
				So(low.EstimatedValue, ShouldEqual, 0)
			})
		})
	})
}

func TestCalculator_Fallback(t *testing.T) {
	Convey("Given a calculator whose price book misses the vehicle", t, func() {
		ctx := context.Background()
		book := &stubBook{prices: map[string]int64{}}

		Convey("When valuing with the default fallback", func() {
			calc := valuation.NewCalculator(
				valuation.WithPriceBook(book),
				valuation.WithClock(fixedYear(2026)),
			)
			val := calc.Value(ctx, model.Vehicle{Brand: "Kawasaki", Model: "GTO 110", Year: 2026}, 10.0)

			Convey("Then the default fallback baseline applies", func() {
				So(val.MarketBaseline, ShouldEqual, valuation.DefaultFallbackBaseline)
			})
		})

		Convey("When valuing with a custom fallback", func() {
			calc := valuation.NewCalculator(
				valuation.WithPriceBook(book),
				valuation.WithFallbackBaseline(100000),
				valuation.WithClock(fixedYear(2026)),
			)
			val := calc.Value(ctx, model.Vehicle{Brand: "Kawasaki", Model: "GTO 110", Year: 2026}, 10.0)

			So(val.MarketBaseline, ShouldEqual, 100000)
		})

		Convey("When no price book is configured at all", func() {
			calc := valuation.NewCalculator(valuation.WithClock(fixedYear(2026)))
			val := calc.Value(ctx, model.Vehicle{Brand: "Honda", Model: "CD 70", Year: 2026}, 10.0)

			Convey("Then the fallback baseline covers every vehicle", func() {
				So(val.MarketBaseline, ShouldEqual, valuation.DefaultFallbackBaseline)
			})
		})
	})
}

func TestCalculator_CustomDepreciation(t *testing.T) {
	Convey("Given a calculator with a custom depreciation schedule", t, func() {
		ctx := context.Background()
		book := &stubBook{prices: map[string]int64{"Honda/CD 70": 100000}}
		calc := valuation.NewCalculator(
			valuation.WithPriceBook(book),
			valuation.WithDepreciation(0.10, 0.30),
			valuation.WithClock(fixedYear(2026)),
		)

		Convey("When the vehicle ages within the cap", func() {
			val := calc.Value(ctx, model.Vehicle{Brand: "Honda", Model: "CD 70", Year: 2024}, 10.0)
			So(val.MarketBaseline, ShouldEqual, 80000)
		})

		Convey("When the vehicle ages past the cap", func() {
			val := calc.Value(ctx, model.Vehicle{Brand: "Honda", Model: "CD 70", Year: 2016}, 10.0)
			So(val.MarketBaseline, ShouldEqual, 70000)
		})
	})
}

func TestCalculator_Evaluate(t *testing.T) {
	Convey("Given a calculator with a known price book and a fixed clock", t, func() {
		ctx := context.Background()
		book := &stubBook{prices: map[string]int64{"Honda/CD 70": 159900}}
		calc := valuation.NewCalculator(
			valuation.WithPriceBook(book),
			valuation.WithClock(fixedYear(2026)),
		)

		Convey("When evaluating a card without a final score", func() {
			card := perfectCard()
			card.Engine = 8.5
			v := model.Vehicle{Brand: "Honda", Model: "CD 70", Year: 2026}

			scored, val := calc.Evaluate(ctx, v, card)

			Convey("Then the final score is filled in", func() {
				So(scored.Final, ShouldEqual, 9.4)
			})

			Convey("And the valuation matches that final score", func() {
				So(val.MarketBaseline, ShouldEqual, 159900)
				So(val.EstimatedValue, ShouldEqual, 150306)
			})

			Convey("And the category scores are untouched", func() {
				So(scored.Engine, ShouldEqual, 8.5)
				So(scored.Frame, ShouldEqual, 10.0)
			})
		})
	})
}
