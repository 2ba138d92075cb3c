package rules

import "github.com/okhan/motoval/internal/domain/model"

// Default returns the seed rule set. Deployments normally override it with
// an admin-managed YAML file; the values here are the shipping defaults.
func Default() *Set {
	return &Set{
		Categories: map[model.Category]CategoryRule{
			model.CategoryEngine: {
				Weight: 40,
				Deductions: map[string]Deduction{
					"oil_leaks": {Kind: KindEnum, Levels: map[string]float64{
						model.OilLeakNone:  0,
						model.OilLeakMinor: 0.5,
						model.OilLeakMajor: 1.5,
					}},
					"smoke": {Kind: KindEnum, Levels: map[string]float64{
						model.SmokeNone:  0,
						model.SmokeLight: 0.8,
						model.SmokeHeavy: 2.0,
					}},
					"abnormal_noise": {Kind: KindFlag, Points: 1.0},
					"hard_start":     {Kind: KindFlag, Points: 0.7},
					"overheating":    {Kind: KindFlag, Points: 1.5},
				},
			},
			model.CategoryFrame: {
				Weight: 15,
				Deductions: map[string]Deduction{
					"cracks":        {Kind: KindFlag, Points: 3.0},
					"rust":          {Kind: KindFlag, Points: 1.5},
					"bends":         {Kind: KindFlag, Points: 2.5},
					"repaint_marks": {Kind: KindFlag, Points: 0.5},
				},
			},
			model.CategorySuspension: {
				Weight: 10,
				Deductions: map[string]Deduction{
					"leakage":        {Kind: KindFlag, Points: 2.0},
					"stiffness":      {Kind: KindFlag, Points: 1.5},
					"abnormal_sound": {Kind: KindFlag, Points: 1.0},
				},
			},
			model.CategoryBrakes: {
				Weight: 10,
				Deductions: map[string]Deduction{
					"pad_remaining": {Kind: KindTiered, Tiers: []Tier{
						{Below: 30, Points: 2.0},
						{Below: 50, Points: 1.0},
						{Below: 70, Points: 0.5},
					}},
					"disc_warp":  {Kind: KindFlag, Points: 1.5},
					"fluid_leak": {Kind: KindFlag, Points: 1.0},
					"abs_fault":  {Kind: KindFlag, Points: 0.5},
				},
			},
			model.CategoryTires: {
				Weight: 10,
				Deductions: map[string]Deduction{
					"tread_remaining": {Kind: KindTiered, Tiers: []Tier{
						{Below: 30, Points: 2.5},
						{Below: 50, Points: 1.5},
						{Below: 70, Points: 0.7},
					}},
					"cracks":              {Kind: KindFlag, Points: 1.0},
					"mismatched_pair":     {Kind: KindFlag, Points: 0.8},
					"age_over_five_years": {Kind: KindFlag, Points: 1.2},
				},
			},
			model.CategoryElectricals: {
				Weight: 5,
				Deductions: map[string]Deduction{
					"lights_fault":     {Kind: KindFlag, Points: 1.5},
					"indicators_fault": {Kind: KindFlag, Points: 1.0},
					"horn_fault":       {Kind: KindFlag, Points: 0.5},
					"starter_fault":    {Kind: KindFlag, Points: 2.0},
					"battery_condition": {Kind: KindEnum, Levels: map[string]float64{
						model.BatteryGood: 0,
						model.BatteryFair: 1.0,
						model.BatteryPoor: 2.5,
					}},
				},
			},
			model.CategoryBody: {
				Weight: 8,
				Deductions: map[string]Deduction{
					"minor_scratches": {Kind: KindCount, Points: 0.1},
					"big_scratches":   {Kind: KindCount, Points: 0.3},
					"small_dents":     {Kind: KindCount, Points: 0.2},
					"big_dents":       {Kind: KindCount, Points: 0.5},
					"cracks":          {Kind: KindFlag, Points: 1.5},
					"repaint_panels":  {Kind: KindFlag, Points: 1.0},
					"fairing_condition": {Kind: KindEnum, Levels: map[string]float64{
						model.FairingExcellent: 0,
						model.FairingGood:      0.5,
						model.FairingFair:      1.5,
						model.FairingPoor:      3.0,
					}},
				},
			},
			model.CategoryDocuments: {
				Weight: 2,
				Deductions: map[string]Deduction{
					"registration_missing":    {Kind: KindFlag, Points: 4.0},
					"import_papers_missing":   {Kind: KindFlag, Points: 3.0},
					"service_records_missing": {Kind: KindFlag, Points: 3.0},
				},
			},
		},
	}
}
