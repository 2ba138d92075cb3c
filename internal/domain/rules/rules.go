// Package rules defines the admin-editable scoring rule set: per-category
// weights and deduction tables. The engine treats a Set as read-only data;
// editing it is the job of the admin-configuration surface.
package rules

import (
	"fmt"
	"sort"

	"github.com/okhan/motoval/internal/domain/model"
)

// Kind discriminates the four deduction rule shapes. Together they cover
// every condition across the eight categories without per-category code.
type Kind string

const (
	// KindFlag deducts fixed points when a boolean condition is present.
	KindFlag Kind = "flag"
	// KindEnum deducts points per named condition level.
	KindEnum Kind = "enum"
	// KindTiered deducts the single lowest matching tier for a
	// remaining-percentage input. Tiers are strict less-than thresholds
	// and are mutually exclusive.
	KindTiered Kind = "tiered"
	// KindCount deducts points multiplied by an observed count, with no
	// cap on the total deduction.
	KindCount Kind = "count"
)

// Tier is one threshold of a tiered deduction: Points apply when the
// observed percentage is strictly below Below.
type Tier struct {
	Below  float64 `yaml:"below" json:"below"`
	Points float64 `yaml:"points" json:"points"`
}

// Deduction describes the penalty for one observable condition. Exactly the
// fields matching Kind are meaningful.
type Deduction struct {
	Kind   Kind               `yaml:"kind" json:"kind"`
	Points float64            `yaml:"points,omitempty" json:"points,omitempty"`
	Levels map[string]float64 `yaml:"levels,omitempty" json:"levels,omitempty"`
	Tiers  []Tier             `yaml:"tiers,omitempty" json:"tiers,omitempty"`
}

// Observed is a single condition as the scorer saw it. Condition names the
// rule table entry; Level, Percent and Count carry the kind-specific value.
// Flags use Count (0 or 1).
type Observed struct {
	Condition string
	Level     string
	Percent   float64
	Count     int
}

// CategoryRule is the weight and deduction table for one category.
type CategoryRule struct {
	Weight     int                  `yaml:"weight" json:"weight"`
	Deductions map[string]Deduction `yaml:"deductions" json:"deductions"`
}

// Deduct returns the penalty points for an observed condition. The second
// return is false when the rule table does not recognize the condition or
// an enum level; unrecognized observations deduct nothing, which is the
// most lenient reading of a stale rule set.
func (r CategoryRule) Deduct(o Observed) (float64, bool) {
	d, ok := r.Deductions[o.Condition]
	if !ok {
		return 0, false
	}
	switch d.Kind {
	case KindFlag:
		if o.Count > 0 {
			return d.Points, true
		}
		return 0, true
	case KindEnum:
		pts, known := d.Levels[o.Level]
		if !known {
			return 0, false
		}
		return pts, true
	case KindTiered:
		// Lowest threshold first; only the first matching tier applies.
		for _, t := range d.Tiers {
			if o.Percent < t.Below {
				return t.Points, true
			}
		}
		return 0, true
	case KindCount:
		if o.Count > 0 {
			return d.Points * float64(o.Count), true
		}
		return 0, true
	}
	return 0, false
}

// Set is a complete rule configuration covering all eight categories.
type Set struct {
	Categories map[model.Category]CategoryRule `yaml:"categories" json:"categories"`
}

// Category returns the rule for one category.
func (s *Set) Category(c model.Category) (CategoryRule, bool) {
	r, ok := s.Categories[c]
	return r, ok
}

// Weight returns the percentage weight of a category, zero when unknown.
func (s *Set) Weight(c model.Category) int {
	return s.Categories[c].Weight
}

// weightTotal is the required sum of all category weights.
const weightTotal = 100

// Validate checks the rule set for the inconsistencies that would silently
// skew scores: missing categories, weights not summing to 100, empty or
// malformed deduction tables. Callers should reject the configuration on
// error rather than score with it.
func (s *Set) Validate() error {
	if s == nil || len(s.Categories) == 0 {
		return fmt.Errorf("%w: no categories", ErrInvalidRules)
	}
	sum := 0
	for _, c := range model.Categories {
		r, ok := s.Categories[c]
		if !ok {
			return fmt.Errorf("%w: missing category %q", ErrInvalidRules, c)
		}
		if r.Weight < 0 {
			return fmt.Errorf("%w: category %q has negative weight", ErrInvalidRules, c)
		}
		if len(r.Deductions) == 0 {
			return fmt.Errorf("%w: category %q has no deductions", ErrInvalidRules, c)
		}
		for name, d := range r.Deductions {
			if err := d.validate(); err != nil {
				return fmt.Errorf("%w: category %q condition %q: %v", ErrInvalidRules, c, name, err)
			}
		}
		sum += r.Weight
	}
	if len(s.Categories) != len(model.Categories) {
		return fmt.Errorf("%w: unknown extra categories present", ErrInvalidRules)
	}
	if sum != weightTotal {
		return fmt.Errorf("%w: weights sum to %d, want %d", ErrInvalidRules, sum, weightTotal)
	}
	return nil
}

func (d Deduction) validate() error {
	switch d.Kind {
	case KindFlag, KindCount:
		if d.Points < 0 {
			return fmt.Errorf("negative points")
		}
	case KindEnum:
		if len(d.Levels) == 0 {
			return fmt.Errorf("enum rule without levels")
		}
	case KindTiered:
		if len(d.Tiers) == 0 {
			return fmt.Errorf("tiered rule without tiers")
		}
		if !sort.SliceIsSorted(d.Tiers, func(i, j int) bool {
			return d.Tiers[i].Below < d.Tiers[j].Below
		}) {
			return fmt.Errorf("tiers not in ascending threshold order")
		}
	default:
		return fmt.Errorf("unknown rule kind %q", d.Kind)
	}
	return nil
}
