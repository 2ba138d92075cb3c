// Package seeder generates randomized inspection submissions and drives
// them through a running service, verifying the read side afterwards.
package seeder

import (
	"math/rand"

	"github.com/google/uuid"

	"github.com/okhan/motoval/internal/domain/model"
)

// Submission is the JSON payload POSTed to /inspections.
type Submission struct {
	ReportID     string             `json:"report_id"`
	Brand        string             `json:"brand"`
	Model        string             `json:"model"`
	Year         int                `json:"year"`
	Observations model.Observations `json:"observations"`
}

// vehicle pool for generated submissions. Mirrors the seed price book plus
// a few unknown models to exercise the fallback baseline.
var vehicles = []struct {
	brand string
	model string
}{
	{"Honda", "CD 70"},
	{"Honda", "CG 125"},
	{"Honda", "CB 150F"},
	{"Yamaha", "YBR 125"},
	{"Suzuki", "GS 150"},
	{"Suzuki", "GD 110S"},
	{"United", "US 70"},
	{"Kawasaki", "GTO 110"}, // not in the seed book
}

var oilLeakLevels = []string{model.OilLeakNone, model.OilLeakNone, model.OilLeakMinor, model.OilLeakMajor}
var smokeLevels = []string{model.SmokeNone, model.SmokeNone, model.SmokeLight, model.SmokeHeavy}
var batteryLevels = []string{model.BatteryGood, model.BatteryGood, model.BatteryFair, model.BatteryPoor}
var fairingLevels = []string{model.FairingExcellent, model.FairingGood, model.FairingFair, model.FairingPoor}

// Generator produces random but valid submissions.
type Generator struct {
	rng     *rand.Rand
	minYear int
	maxYear int
}

// NewGenerator creates a deterministic generator for a seed.
func NewGenerator(seed int64, minYear, maxYear int) *Generator {
	if minYear <= 0 {
		minYear = 2005
	}
	if maxYear < minYear {
		maxYear = minYear
	}
	return &Generator{
		rng:     rand.New(rand.NewSource(seed)), //nolint:gosec // deterministic seed for reproducible runs
		minYear: minYear,
		maxYear: maxYear,
	}
}

// Next returns one randomized submission with a fresh report ID.
func (g *Generator) Next() Submission {
	v := vehicles[g.rng.Intn(len(vehicles))]
	return Submission{
		ReportID: uuid.NewString(),
		Brand:    v.brand,
		Model:    v.model,
		Year:     g.minYear + g.rng.Intn(g.maxYear-g.minYear+1),
		Observations: model.Observations{
			Engine: model.EngineObservation{
				OilLeaks:      pick(g.rng, oilLeakLevels),
				Smoke:         pick(g.rng, smokeLevels),
				AbnormalNoise: g.chance(0.2),
				HardStart:     g.chance(0.2),
				Overheating:   g.chance(0.1),
			},
			Frame: model.FrameObservation{
				Cracks:       g.chance(0.05),
				Rust:         g.chance(0.3),
				Bends:        g.chance(0.1),
				RepaintMarks: g.chance(0.4),
			},
			Suspension: model.SuspensionObservation{
				Leakage:       g.chance(0.15),
				Stiffness:     g.chance(0.2),
				AbnormalSound: g.chance(0.2),
			},
			Brakes: model.BrakeObservation{
				PadRemaining: g.percent(),
				DiscWarp:     g.chance(0.1),
				FluidLeak:    g.chance(0.1),
				ABSWorking:   !g.chance(0.2),
			},
			Tires: model.TireObservation{
				TreadRemaining: g.percent(),
				Cracks:         g.chance(0.2),
				MismatchedPair: g.chance(0.15),
				AgeOverFive:    g.chance(0.25),
			},
			Electricals: model.ElectricalObservation{
				LightsWorking:     !g.chance(0.1),
				IndicatorsWorking: !g.chance(0.15),
				HornWorking:       !g.chance(0.1),
				StarterWorking:    !g.chance(0.1),
				BatteryCondition:  pick(g.rng, batteryLevels),
			},
			Body: model.BodyObservation{
				MinorScratches:   g.rng.Intn(8),
				BigScratches:     g.rng.Intn(3),
				SmallDents:       g.rng.Intn(4),
				BigDents:         g.rng.Intn(2),
				Cracks:           g.chance(0.1),
				RepaintPanels:    g.chance(0.2),
				FairingCondition: pick(g.rng, fairingLevels),
			},
			Documents: model.DocumentObservation{
				Registration:   !g.chance(0.1),
				ImportPapers:   !g.chance(0.3),
				ServiceRecords: !g.chance(0.5),
			},
		},
	}
}

func (g *Generator) chance(p float64) bool {
	return g.rng.Float64() < p
}

func (g *Generator) percent() float64 {
	return float64(g.rng.Intn(101))
}

func pick(rng *rand.Rand, levels []string) string {
	return levels[rng.Intn(len(levels))]
}
