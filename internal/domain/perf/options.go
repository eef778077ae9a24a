// Package perf computes per-employee performance metrics.
package perf

// Policy carries the classification and workload thresholds. These are
// business policy, reviewed with stakeholders, so they are injected rather
// than hard-coded into the engine.
type Policy struct {
	VeryPoorBelowRate  float64 `koanf:"very_poor_below_rate"`
	PoorBelowRate      float64 `koanf:"poor_below_rate"`
	ExcellentMinRate   float64 `koanf:"excellent_min_rate"`
	InconsistentMinGap int     `koanf:"inconsistent_min_gap"`
	ExcellentMaxGap    int     `koanf:"excellent_max_gap"`
	GoodMinDailyHours  float64 `koanf:"good_min_daily_hours"`
	ExpectedHoursFloor float64 `koanf:"expected_hours_floor"`
	ExpectedHoursCeil  float64 `koanf:"expected_hours_ceil"`
	UnderutilizedHours float64 `koanf:"underutilized_hours"`
	OverloadedHours    float64 `koanf:"overloaded_hours"`
	RecentWindowDays   int     `koanf:"recent_window_days"`
	ExtendedWindowDays int     `koanf:"extended_window_days"`
}

// DefaultPolicy returns the default thresholds.
func DefaultPolicy() Policy {
	return Policy{
		VeryPoorBelowRate:  0.5,
		PoorBelowRate:      0.7,
		ExcellentMinRate:   0.9,
		InconsistentMinGap: 3,
		ExcellentMaxGap:    1,
		GoodMinDailyHours:  6,
		ExpectedHoursFloor: 7,
		ExpectedHoursCeil:  10,
		UnderutilizedHours: 8,
		OverloadedHours:    10,
		RecentWindowDays:   7,
		ExtendedWindowDays: 30,
	}
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithPolicy replaces the default threshold policy.
func WithPolicy(p Policy) Option {
	return func(e *Engine) {
		e.policy = p
	}
}
