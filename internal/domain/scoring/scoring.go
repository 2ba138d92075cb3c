// Package scoring computes category condition scores from inspection
// observations. Every scorer starts from a 10.0 baseline, subtracts the
// penalties the rule set assigns to each triggered condition, clamps at a
// 0.0 floor and rounds half-up to one decimal. The engine is pure: no I/O,
// no shared state, safe for concurrent use.
package scoring

import (
	"context"
	"math"

	"github.com/okhan/motoval/internal/domain/model"
	"github.com/okhan/motoval/internal/domain/rules"
	"github.com/okhan/motoval/pkg/logger"
)

// baselineScore is the score of a category with no adverse findings.
const baselineScore = 10.0

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithRules sets the rule set the engine scores against.
func WithRules(set *rules.Set) Option {
	return func(e *Engine) {
		if set != nil {
			e.rules = set
		}
	}
}

// WithLogger sets a custom logger for the engine.
func WithLogger(log logger.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// Scorer computes category scores from a full set of observations.
type Scorer interface {
	// ScoreAll scores all eight categories. Final is left zero; the
	// valuation calculator owns the weighted aggregate.
	ScoreAll(obs model.Observations) model.ScoreCard
}

// Engine implements Scorer against an injected rule set.
type Engine struct {
	rules *rules.Set
	log   logger.Logger
}

// NewEngine creates an engine with configuration options. Without options it
// scores against the default rule set.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		rules: rules.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ScoreAll scores all eight categories from validated observations.
func (e *Engine) ScoreAll(obs model.Observations) model.ScoreCard {
	var card model.ScoreCard
	for _, c := range model.Categories {
		card.SetCategory(c, e.ScoreCategory(c, obs))
	}
	return card
}

// ScoreCategory scores a single category. Unrecognized conditions or enum
// levels deduct nothing and log a warning; the scorer never fails.
func (e *Engine) ScoreCategory(c model.Category, obs model.Observations) float64 {
	rule, ok := e.rules.Category(c)
	if !ok {
		e.warn(c, "no rule for category")
		return baselineScore
	}

	score := baselineScore
	for _, o := range findings(c, obs) {
		pts, known := rule.Deduct(o)
		if !known {
			e.warn(c, "unrecognized condition "+o.Condition)
			continue
		}
		score -= pts
	}
	if score < 0 {
		score = 0
	}
	return RoundScore(score)
}

func (e *Engine) warn(c model.Category, msg string) {
	if e.log == nil {
		return
	}
	e.log.Warn(context.Background(), msg, logger.String("category", string(c)))
}

// RoundScore rounds a non-negative score half-up to one decimal place.
func RoundScore(s float64) float64 {
	return math.Floor(s*10+0.5) / 10
}

// findings normalizes one category's observation record into the condition
// keys the rule tables are written against. Flags become presence counts so
// a single Deduct path covers all four rule kinds.
func findings(c model.Category, obs model.Observations) []rules.Observed {
	switch c {
	case model.CategoryEngine:
		o := obs.Engine
		return []rules.Observed{
			{Condition: "oil_leaks", Level: o.OilLeaks},
			{Condition: "smoke", Level: o.Smoke},
			flag("abnormal_noise", o.AbnormalNoise),
			flag("hard_start", o.HardStart),
			flag("overheating", o.Overheating),
		}
	case model.CategoryFrame:
		o := obs.Frame
		return []rules.Observed{
			flag("cracks", o.Cracks),
			flag("rust", o.Rust),
			flag("bends", o.Bends),
			flag("repaint_marks", o.RepaintMarks),
		}
	case model.CategorySuspension:
		o := obs.Suspension
		return []rules.Observed{
			flag("leakage", o.Leakage),
			flag("stiffness", o.Stiffness),
			flag("abnormal_sound", o.AbnormalSound),
		}
	case model.CategoryBrakes:
		o := obs.Brakes
		return []rules.Observed{
			{Condition: "pad_remaining", Percent: o.PadRemaining},
			flag("disc_warp", o.DiscWarp),
			flag("fluid_leak", o.FluidLeak),
			flag("abs_fault", !o.ABSWorking),
		}
	case model.CategoryTires:
		o := obs.Tires
		return []rules.Observed{
			{Condition: "tread_remaining", Percent: o.TreadRemaining},
			flag("cracks", o.Cracks),
			flag("mismatched_pair", o.MismatchedPair),
			flag("age_over_five_years", o.AgeOverFive),
		}
	case model.CategoryElectricals:
		o := obs.Electricals
		return []rules.Observed{
			flag("lights_fault", !o.LightsWorking),
			flag("indicators_fault", !o.IndicatorsWorking),
			flag("horn_fault", !o.HornWorking),
			flag("starter_fault", !o.StarterWorking),
			{Condition: "battery_condition", Level: o.BatteryCondition},
		}
	case model.CategoryBody:
		o := obs.Body
		return []rules.Observed{
			{Condition: "minor_scratches", Count: o.MinorScratches},
			{Condition: "big_scratches", Count: o.BigScratches},
			{Condition: "small_dents", Count: o.SmallDents},
			{Condition: "big_dents", Count: o.BigDents},
			flag("cracks", o.Cracks),
			flag("repaint_panels", o.RepaintPanels),
			{Condition: "fairing_condition", Level: o.FairingCondition},
		}
	case model.CategoryDocuments:
		o := obs.Documents
		return []rules.Observed{
			flag("registration_missing", !o.Registration),
			flag("import_papers_missing", !o.ImportPapers),
			flag("service_records_missing", !o.ServiceRecords),
		}
	}
	return nil
}

func flag(condition string, present bool) rules.Observed {
	o := rules.Observed{Condition: condition}
	if present {
		o.Count = 1
	}
	return o
}
