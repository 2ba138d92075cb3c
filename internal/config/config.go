// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load() layers defaults, an optional YAML file, and environment vars.
// - External errors are wrapped via this package's error kinds.
package config

import (
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory submission queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of scoring workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the report-id idempotency cache.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxListLimit caps GET /inspections?limit.
	MaxListLimit int `koanf:"max_list_limit"`

	// DBPath locates the sqlite inspection store. Empty selects the
	// in-memory store.
	DBPath string `koanf:"db_path"`

	// RulesPath locates the scoring rule YAML. Empty selects the seed
	// defaults.
	RulesPath string `koanf:"rules_path"`

	// PriceBookPath locates the price book YAML. Empty selects the seed
	// book.
	PriceBookPath string `koanf:"pricebook_path"`

	// FallbackBaseline prices vehicles missing from the price book.
	FallbackBaseline int64 `koanf:"fallback_baseline"`

	// DepreciationRate is the per-year-of-age depreciation fraction.
	DepreciationRate float64 `koanf:"depreciation_rate"`

	// DepreciationCap bounds total depreciation.
	DepreciationCap float64 `koanf:"depreciation_cap"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		Addr:             ":9080",
		QueueSize:        10_000,
		WorkerCount:      runtime.NumCPU() * 2,
		DedupeSize:       50_000,
		MaxListLimit:     100,
		DBPath:           "",
		RulesPath:        "",
		PriceBookPath:    "",
		FallbackBaseline: 200_000,
		DepreciationRate: 0.08,
		DepreciationCap:  0.5,
	}
}
