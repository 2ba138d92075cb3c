package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if MOTOVAL_CONFIG is set
//  3. env (prefix MOTOVAL_)
func Load(_ context.Context) (*Config, error) {
	// Start with defaults
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("MOTOVAL_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// Environment variables: MOTOVAL_ADDR, MOTOVAL_QUEUE_SIZE, ...
	// Map env keys like MOTOVAL_QUEUE_SIZE -> queue_size (flat keys).
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("MOTOVAL_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "motoval_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	// Basic validation
	if cfg.Addr == "" {
		return nil, fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if cfg.DepreciationRate <= 0 || cfg.DepreciationRate > 1 {
		return nil, fmt.Errorf("%w: depreciation_rate must be in (0, 1]", ErrInvalidConfig)
	}
	if cfg.DepreciationCap <= 0 || cfg.DepreciationCap > 1 {
		return nil, fmt.Errorf("%w: depreciation_cap must be in (0, 1]", ErrInvalidConfig)
	}
	if cfg.FallbackBaseline <= 0 {
		return nil, fmt.Errorf("%w: fallback_baseline must be positive", ErrInvalidConfig)
	}
	return &cfg, nil
}
