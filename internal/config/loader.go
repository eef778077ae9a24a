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
//  2. file (YAML) if WORKPULSE_CONFIG is set
//  3. env (prefix WORKPULSE_)
func Load(_ context.Context) (*Config, error) {
	// Start with defaults
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("WORKPULSE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: WORKPULSE_ADDR, WORKPULSE_ROSTER_PATH, ...
	// Map env keys like WORKPULSE_ROSTER_PATH -> roster_path (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("WORKPULSE_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "workpulse_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Basic validation
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.RosterPath == "" {
		return fmt.Errorf("%w: roster_path must not be empty", ErrInvalidConfig)
	}
	if c.ReportsPath == "" {
		return fmt.Errorf("%w: reports_path must not be empty", ErrInvalidConfig)
	}
	if c.ChartTopN <= 0 {
		return fmt.Errorf("%w: chart_top_n must be positive", ErrInvalidConfig)
	}
	if c.HourlyRate <= 0 {
		return fmt.Errorf("%w: hourly_rate must be positive", ErrInvalidConfig)
	}
	for project, caps := range c.SOWCaps {
		for category, capHours := range caps {
			if capHours < 0 {
				return fmt.Errorf("%w: negative sow cap for %s/%s", ErrInvalidConfig, project, category)
			}
		}
	}
	return nil
}
