// Package model contains domain models passed between layers.
package model

import "time"

// Category identifies one of the eight inspection domains.
type Category string

// The eight inspection categories.
const (
	CategoryEngine      Category = "engine"
	CategoryFrame       Category = "frame"
	CategorySuspension  Category = "suspension"
	CategoryBrakes      Category = "brakes"
	CategoryTires       Category = "tires"
	CategoryElectricals Category = "electricals"
	CategoryBody        Category = "body"
	CategoryDocuments   Category = "documents"
)

// Categories lists every inspection category in report order.
var Categories = []Category{
	CategoryEngine,
	CategoryFrame,
	CategorySuspension,
	CategoryBrakes,
	CategoryTires,
	CategoryElectricals,
	CategoryBody,
	CategoryDocuments,
}

// Enumerated condition levels recorded by inspectors.
const (
	OilLeakNone  = "none"
	OilLeakMinor = "minor"
	OilLeakMajor = "major"

	SmokeNone  = "none"
	SmokeLight = "light"
	SmokeHeavy = "heavy"

	BatteryGood = "good"
	BatteryFair = "fair"
	BatteryPoor = "poor"

	FairingExcellent = "excellent"
	FairingGood      = "good"
	FairingFair      = "fair"
	FairingPoor      = "poor"
)

// Vehicle identifies the inspected motorcycle.
type Vehicle struct {
	Brand string `json:"brand"`
	Model string `json:"model"`
	Year  int    `json:"year"`
}

// EngineObservation records engine findings.
type EngineObservation struct {
	OilLeaks      string `json:"oil_leaks"` // none, minor, major
	Smoke         string `json:"smoke"`     // none, light, heavy
	AbnormalNoise bool   `json:"abnormal_noise"`
	HardStart     bool   `json:"hard_start"`
	Overheating   bool   `json:"overheating"`
}

// FrameObservation records frame findings.
type FrameObservation struct {
	Cracks       bool `json:"cracks"`
	Rust         bool `json:"rust"`
	Bends        bool `json:"bends"`
	RepaintMarks bool `json:"repaint_marks"`
}

// SuspensionObservation records suspension findings.
type SuspensionObservation struct {
	Leakage       bool `json:"leakage"`
	Stiffness     bool `json:"stiffness"`
	AbnormalSound bool `json:"abnormal_sound"`
}

// BrakeObservation records brake findings. PadRemaining is a percentage.
type BrakeObservation struct {
	PadRemaining float64 `json:"pad_remaining"`
	DiscWarp     bool    `json:"disc_warp"`
	FluidLeak    bool    `json:"fluid_leak"`
	ABSWorking   bool    `json:"abs_working"`
}

// TireObservation records tire findings. TreadRemaining is a percentage.
type TireObservation struct {
	TreadRemaining float64 `json:"tread_remaining"`
	Cracks         bool    `json:"cracks"`
	MismatchedPair bool    `json:"mismatched_pair"`
	AgeOverFive    bool    `json:"age_over_five_years"`
}

// ElectricalObservation records electrical findings. The *Working flags are
// true when the component works; a false value is the adverse condition.
type ElectricalObservation struct {
	LightsWorking     bool   `json:"lights_working"`
	IndicatorsWorking bool   `json:"indicators_working"`
	HornWorking       bool   `json:"horn_working"`
	StarterWorking    bool   `json:"starter_working"`
	BatteryCondition  string `json:"battery_condition"` // good, fair, poor
}

// BodyObservation records bodywork findings. Scratch and dent fields are
// counts, not flags.
type BodyObservation struct {
	MinorScratches   int    `json:"minor_scratches"`
	BigScratches     int    `json:"big_scratches"`
	SmallDents       int    `json:"small_dents"`
	BigDents         int    `json:"big_dents"`
	Cracks           bool   `json:"cracks"`
	RepaintPanels    bool   `json:"repaint_panels"`
	FairingCondition string `json:"fairing_condition"` // excellent, good, fair, poor
}

// DocumentObservation records paperwork presence. A false value means the
// document is missing.
type DocumentObservation struct {
	Registration   bool `json:"registration"`
	ImportPapers   bool `json:"import_papers"`
	ServiceRecords bool `json:"service_records"`
}

// Observations bundles the findings for all eight categories. Every category
// must be populated; partial observations are a caller error caught at the
// validation boundary.
type Observations struct {
	Engine      EngineObservation     `json:"engine"`
	Frame       FrameObservation      `json:"frame"`
	Suspension  SuspensionObservation `json:"suspension"`
	Brakes      BrakeObservation      `json:"brakes"`
	Tires       TireObservation       `json:"tires"`
	Electricals ElectricalObservation `json:"electricals"`
	Body        BodyObservation       `json:"body"`
	Documents   DocumentObservation   `json:"documents"`
}

// Submission is an inspection accepted for scoring.
type Submission struct {
	ReportID     string
	Vehicle      Vehicle
	Observations Observations
	ReceivedAt   time.Time
}

// ScoreCard holds the eight category scores and the weighted final score,
// each rounded to one decimal in [0.0, 10.0].
type ScoreCard struct {
	Engine      float64 `json:"engine"`
	Frame       float64 `json:"frame"`
	Suspension  float64 `json:"suspension"`
	Brakes      float64 `json:"brakes"`
	Tires       float64 `json:"tires"`
	Electricals float64 `json:"electricals"`
	Body        float64 `json:"body"`
	Documents   float64 `json:"documents"`
	Final       float64 `json:"final"`
}

// Category returns the score for a single category.
func (s ScoreCard) Category(c Category) float64 {
	switch c {
	case CategoryEngine:
		return s.Engine
	case CategoryFrame:
		return s.Frame
	case CategorySuspension:
		return s.Suspension
	case CategoryBrakes:
		return s.Brakes
	case CategoryTires:
		return s.Tires
	case CategoryElectricals:
		return s.Electricals
	case CategoryBody:
		return s.Body
	case CategoryDocuments:
		return s.Documents
	}
	return 0
}

// SetCategory stores the score for a single category.
func (s *ScoreCard) SetCategory(c Category, score float64) {
	switch c {
	case CategoryEngine:
		s.Engine = score
	case CategoryFrame:
		s.Frame = score
	case CategorySuspension:
		s.Suspension = score
	case CategoryBrakes:
		s.Brakes = score
	case CategoryTires:
		s.Tires = score
	case CategoryElectricals:
		s.Electricals = score
	case CategoryBody:
		s.Body = score
	case CategoryDocuments:
		s.Documents = score
	}
}

// Valuation is the market value estimate derived from the final score.
// MarketBaseline is the reference price after depreciation; EstimatedValue
// is the baseline scaled by the condition multiplier. Both are whole
// currency units.
type Valuation struct {
	MarketBaseline int64 `json:"market_baseline"`
	EstimatedValue int64 `json:"estimated_value"`
}

// InspectionRecord is the persisted result of a scored inspection. It is
// written once at submission time and never recomputed, so historical
// records keep their original valuation even after rule or price changes.
type InspectionRecord struct {
	ReportID  string    `json:"report_id"`
	Vehicle   Vehicle   `json:"vehicle"`
	Scores    ScoreCard `json:"scores"`
	Valuation Valuation `json:"valuation"`
	ScoredAt  time.Time `json:"scored_at"`
}
