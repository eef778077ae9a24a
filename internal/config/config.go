// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - Load(ctx) layers a YAML file and WORKPULSE_-prefixed env vars on top.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"github.com/okian/workpulse/internal/domain/billing"
	"github.com/okian/workpulse/internal/domain/perf"
	"github.com/okian/workpulse/internal/domain/team"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// RosterPath locates the employee roster CSV.
	RosterPath string `koanf:"roster_path"`

	// ReportsPath locates the work report CSV.
	ReportsPath string `koanf:"reports_path"`

	// ChartTopN caps ranking-style chart series.
	ChartTopN int `koanf:"chart_top_n"`

	// ProjectAliases maps canonical project tokens to raw spellings seen in
	// report rows, e.g. dataplatr -> [dataplatr, datapltr, "data platr"].
	ProjectAliases map[string][]string `koanf:"project_aliases"`

	// SOWCaps maps project -> category -> max billable hours per day.
	// A project with an empty inner map bills uncapped.
	SOWCaps map[string]map[string]float64 `koanf:"sow_caps"`

	// HourlyRate prices billable hours on generated invoices.
	HourlyRate float64 `koanf:"hourly_rate"`

	// Performance carries the per-employee classification thresholds.
	Performance perf.Policy `koanf:"performance"`

	// Team carries the aggregation thresholds.
	Team team.Policy `koanf:"team"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:    "info",
		Addr:        ":9080",
		RosterPath:  "data/roster.csv",
		ReportsPath: "data/reports.csv",
		ChartTopN:   10,
		ProjectAliases: map[string][]string{
			"lyell":     {"lyell"},
			"dataplatr": {"dataplatr", "datapltr", "data platr"},
		},
		SOWCaps: map[string]map[string]float64{
			"lyell":     {"etl": 4, "reporting": 4},
			"dataplatr": {},
		},
		HourlyRate:  billing.DefaultHourlyRate,
		Performance: perf.DefaultPolicy(),
		Team:        team.DefaultPolicy(),
	}
}
