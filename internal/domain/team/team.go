// Package team aggregates individual metrics into roster-level views.
package team

import (
	"math"
	"sort"
	"time"

	"github.com/okian/workpulse/internal/domain/perf"
	"github.com/okian/workpulse/internal/domain/types"
)

// Policy carries the team-level thresholds.
type Policy struct {
	HighPerformerMinTasks float64 `koanf:"high_performer_min_tasks"`
	GapAlertMinDays       int     `koanf:"gap_alert_min_days"`
	RankingSize           int     `koanf:"ranking_size"`
}

// DefaultPolicy returns the default team thresholds.
func DefaultPolicy() Policy {
	return Policy{
		HighPerformerMinTasks: 3,
		GapAlertMinDays:       2,
		RankingSize:           5,
	}
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithPolicy replaces the default team policy.
func WithPolicy(p Policy) Option {
	return func(e *Engine) {
		e.policy = p
	}
}

// Ranked is one row in a top/bottom performer listing.
type Ranked struct {
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	SubmissionRate float64 `json:"submission_rate"`
	AvgDailyHours  float64 `json:"avg_daily_hours"`
	AvgTasksPerDay float64 `json:"avg_tasks_per_day"`
	MaxGap         int     `json:"max_gap"`
}

// Metrics is the aggregated team view.
type Metrics struct {
	TotalEmployees           int            `json:"total_employees"`
	TotalWorkingDays         int            `json:"total_working_days"`
	PeriodStart              time.Time      `json:"period_start"`
	PeriodEnd                time.Time      `json:"period_end"`
	StatusDistribution       map[string]int `json:"status_distribution"`
	ConsistentReporters      int            `json:"consistent_reporters"`
	PartialReporters         int            `json:"partial_reporters"`
	FrequentDefaulters       int            `json:"frequent_defaulters"`
	AvgSubmissionRate        float64        `json:"avg_submission_rate"`
	AvgDailyHours            float64        `json:"avg_daily_hours"`
	AvgTasksPerDay           float64        `json:"avg_tasks_per_day"`
	EmployeesWithGaps        int            `json:"employees_with_gaps"`
	UnderutilizedPct         float64        `json:"underutilized_pct"`
	OverloadedPct            float64        `json:"overloaded_pct"`
	TopPerformers            []Ranked       `json:"top_performers"`
	BottomPerformers         []Ranked       `json:"bottom_performers"`
	HighPerformers           []Ranked       `json:"high_performers"`
	CrossProjectContributors []Ranked       `json:"cross_project_contributors"`
}

// Engine aggregates individual metrics.
type Engine struct {
	policy Policy
}

// NewEngine creates a team engine with the default policy unless overridden.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{policy: DefaultPolicy()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Aggregate folds the roster's individual metrics into team metrics.
// Employees with zero submissions count toward the rate average and the
// status distribution, but are excluded from the hour/task averages so they
// do not drag those toward zero.
func (e *Engine) Aggregate(all []perf.Metrics) Metrics {
	m := Metrics{
		TotalEmployees:     len(all),
		StatusDistribution: make(map[string]int),
	}
	if len(all) == 0 {
		return m
	}

	m.PeriodStart = all[0].PeriodStart
	m.PeriodEnd = all[0].PeriodEnd
	m.TotalWorkingDays = all[0].DaysSubmitted + all[0].DaysMissed

	var (
		rateSum       float64
		hourSum       float64
		taskSum       float64
		active        int
		underutilized int
		overloaded    int
		totalReports  int
	)

	for _, im := range all {
		m.StatusDistribution[im.Status.String()]++
		switch im.Status {
		case types.StatusExcellent, types.StatusGood:
			m.ConsistentReporters++
		case types.StatusInconsistent:
			m.PartialReporters++
		case types.StatusPoor, types.StatusVeryPoor, types.StatusNonReporter:
			m.FrequentDefaulters++
		}

		rateSum += im.SubmissionRate
		if im.DaysSubmitted > 0 {
			hourSum += im.AvgDailyHours
			taskSum += im.AvgTasksPerDay
			active++
		}
		if im.MaxGap >= e.policy.GapAlertMinDays {
			m.EmployeesWithGaps++
		}
		underutilized += im.UnderutilizedDays
		overloaded += im.OverloadedDays
		totalReports += im.TotalReports
	}

	m.AvgSubmissionRate = round3(rateSum / float64(len(all)))
	if active > 0 {
		m.AvgDailyHours = round2(hourSum / float64(active))
		m.AvgTasksPerDay = round2(taskSum / float64(active))
	}
	if totalReports > 0 {
		m.UnderutilizedPct = round1(float64(underutilized) / float64(totalReports) * 100)
		m.OverloadedPct = round1(float64(overloaded) / float64(totalReports) * 100)
	}

	ranked := rank(all)
	m.TopPerformers = take(ranked, e.policy.RankingSize)
	m.BottomPerformers = take(reverse(ranked), e.policy.RankingSize)

	for _, im := range all {
		if im.AvgTasksPerDay > e.policy.HighPerformerMinTasks {
			m.HighPerformers = append(m.HighPerformers, toRanked(im))
		}
		if crossProject(im) {
			m.CrossProjectContributors = append(m.CrossProjectContributors, toRanked(im))
		}
	}
	sort.Slice(m.HighPerformers, func(a, b int) bool {
		ha, hb := m.HighPerformers[a], m.HighPerformers[b]
		if ha.AvgTasksPerDay != hb.AvgTasksPerDay {
			return ha.AvgTasksPerDay > hb.AvgTasksPerDay
		}
		return ha.Name < hb.Name
	})
	sort.Slice(m.CrossProjectContributors, func(a, b int) bool {
		return m.CrossProjectContributors[a].Name < m.CrossProjectContributors[b].Name
	})

	return m
}

// crossProject reports whether the employee logged nonzero hours in at
// least two distinct projects.
func crossProject(im perf.Metrics) bool {
	projects := 0
	for _, share := range im.ProjectDistribution {
		if share.Hours > 0 {
			projects++
		}
	}
	return projects >= 2
}

// rank orders employees best-first: submission rate descending, then
// average daily hours descending, then name ascending so ties are
// deterministic.
func rank(all []perf.Metrics) []Ranked {
	out := make([]Ranked, 0, len(all))
	for _, im := range all {
		out = append(out, toRanked(im))
	}
	sort.Slice(out, func(a, b int) bool {
		ra, rb := out[a], out[b]
		if ra.SubmissionRate != rb.SubmissionRate {
			return ra.SubmissionRate > rb.SubmissionRate
		}
		if ra.AvgDailyHours != rb.AvgDailyHours {
			return ra.AvgDailyHours > rb.AvgDailyHours
		}
		return ra.Name < rb.Name
	})
	return out
}

func toRanked(im perf.Metrics) Ranked {
	return Ranked{
		Name:           im.Name,
		Email:          im.Email,
		SubmissionRate: im.SubmissionRate,
		AvgDailyHours:  im.AvgDailyHours,
		AvgTasksPerDay: im.AvgTasksPerDay,
		MaxGap:         im.MaxGap,
	}
}

func take(ranked []Ranked, n int) []Ranked {
	if n > len(ranked) {
		n = len(ranked)
	}
	out := make([]Ranked, n)
	copy(out, ranked[:n])
	return out
}

// reverse returns the worst-first ordering. Ties keep hours-descending and
// name-ascending so the bottom listing is as deterministic as the top one.
func reverse(ranked []Ranked) []Ranked {
	out := make([]Ranked, len(ranked))
	copy(out, ranked)
	sort.Slice(out, func(a, b int) bool {
		ra, rb := out[a], out[b]
		if ra.SubmissionRate != rb.SubmissionRate {
			return ra.SubmissionRate < rb.SubmissionRate
		}
		if ra.AvgDailyHours != rb.AvgDailyHours {
			return ra.AvgDailyHours > rb.AvgDailyHours
		}
		return ra.Name < rb.Name
	})
	return out
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
