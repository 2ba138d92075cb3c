// Package valuation turns category scores into a weighted final score and a
// market value estimate. Depreciation and condition are independent
// multiplicative factors so either can be recalibrated without touching the
// other, and so the two intermediate numbers stay individually explainable.
package valuation

import (
	"context"
	"math"
	"time"

	"github.com/okhan/motoval/internal/domain/model"
	"github.com/okhan/motoval/internal/domain/rules"
	"github.com/okhan/motoval/internal/domain/scoring"
	"github.com/okhan/motoval/pkg/logger"
)

// Default valuation constants.
const (
	// DefaultFallbackBaseline is used when a brand/model pair is missing
	// from the price book. A lookup miss always yields a value, never an
	// error.
	DefaultFallbackBaseline int64 = 200000

	// DefaultDepreciationRate is the per-year-of-age depreciation.
	DefaultDepreciationRate = 0.08

	// DefaultDepreciationCap bounds total depreciation.
	DefaultDepreciationCap = 0.5

	maxConditionScore = 10.0
	weightTotal       = 100.0
)

// PriceBook resolves a reference market price for a brand/model pair.
// Lookups must be case-insensitive in both keys.
type PriceBook interface {
	Baseline(ctx context.Context, brand, mdl string) (int64, bool)
}

// Option applies a configuration option to the Calculator.
type Option func(*Calculator)

// WithPriceBook sets the price baseline source.
func WithPriceBook(pb PriceBook) Option {
	return func(c *Calculator) {
		if pb != nil {
			c.prices = pb
		}
	}
}

// WithRules sets the rule set supplying category weights.
func WithRules(set *rules.Set) Option {
	return func(c *Calculator) {
		if set != nil {
			c.rules = set
		}
	}
}

// WithFallbackBaseline sets the baseline used on price book misses.
func WithFallbackBaseline(baseline int64) Option {
	return func(c *Calculator) {
		if baseline > 0 {
			c.fallback = baseline
		}
	}
}

// WithDepreciation sets the per-year rate and the total cap.
func WithDepreciation(ratePerYear, cap float64) Option {
	return func(c *Calculator) {
		if ratePerYear > 0 && ratePerYear <= 1 {
			c.ratePerYear = ratePerYear
		}
		if cap > 0 && cap <= 1 {
			c.cap = cap
		}
	}
}

// WithClock sets the time source used to derive vehicle age.
func WithClock(now func() time.Time) Option {
	return func(c *Calculator) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets a custom logger for the calculator.
func WithLogger(log logger.Logger) Option {
	return func(c *Calculator) {
		if log != nil {
			c.log = log
		}
	}
}

// Calculator combines category scores into a final score and derives the
// market valuation. Pure computation over injected data; safe for
// concurrent use.
type Calculator struct {
	prices      PriceBook
	rules       *rules.Set
	fallback    int64
	ratePerYear float64
	cap         float64
	now         func() time.Time
	log         logger.Logger
}

// NewCalculator creates a calculator with configuration options. Without a
// price book every lookup falls back to the fallback baseline.
func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{
		rules:       rules.Default(),
		fallback:    DefaultFallbackBaseline,
		ratePerYear: DefaultDepreciationRate,
		cap:         DefaultDepreciationCap,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FinalScore is the weight-normalized sum of the eight category scores,
// rounded to one decimal. With weights summing to 100 and category scores in
// [0, 10], the result lands in [0, 10].
func (c *Calculator) FinalScore(card model.ScoreCard) float64 {
	sum := 0.0
	for _, cat := range model.Categories {
		sum += card.Category(cat) * float64(c.rules.Weight(cat))
	}
	return scoring.RoundScore(sum / weightTotal)
}

// Value derives the market valuation for a vehicle at the given final score.
//
// Steps: price book lookup (fallback on miss), age-capped depreciation of
// the baseline, then scaling by the condition multiplier finalScore/10. The
// multiplier is clamped to [0, 1] so an out-of-range score degrades
// gracefully instead of inflating the estimate.
func (c *Calculator) Value(ctx context.Context, v model.Vehicle, finalScore float64) model.Valuation {
	baseline := c.fallback
	if c.prices != nil {
		if b, ok := c.prices.Baseline(ctx, v.Brand, v.Model); ok {
			baseline = b
		} else if c.log != nil {
			c.log.Warn(ctx, "no price baseline for vehicle, using fallback",
				logger.String("brand", v.Brand),
				logger.String("model", v.Model),
				logger.Int("fallback", int(c.fallback)),
			)
		}
	}

	age := c.now().Year() - v.Year
	if age < 0 {
		age = 0 // year in the future: zero depreciation
	}
	rate := float64(age) * c.ratePerYear
	if rate > c.cap {
		rate = c.cap
	}
	adjusted := float64(baseline) * (1 - rate)

	mult := finalScore / maxConditionScore
	if mult < 0 {
		mult = 0
	}
	if mult > 1 {
		mult = 1
	}

	return model.Valuation{
		MarketBaseline: int64(math.Round(adjusted)),
		EstimatedValue: int64(math.Round(adjusted * mult)),
	}
}

// Evaluate fills in the final score on the card and returns it with the
// valuation. This is the single entry point the pipeline uses so that the
// persisted record always carries a consistent score/valuation pair.
func (c *Calculator) Evaluate(ctx context.Context, v model.Vehicle, card model.ScoreCard) (model.ScoreCard, model.Valuation) {
	card.Final = c.FinalScore(card)
	return card, c.Value(ctx, v, card.Final)
}
