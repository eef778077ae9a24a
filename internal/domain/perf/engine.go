package perf

import (
	"math"
	"time"

	"github.com/okian/workpulse/internal/domain/model"
	"github.com/okian/workpulse/internal/domain/submission"
	"github.com/okian/workpulse/internal/domain/types"
)

// ProjectShare describes one project's slice of an employee's hours.
type ProjectShare struct {
	Hours      float64 `json:"hours"`
	Percentage float64 `json:"percentage"`
	Days       int     `json:"days"`
}

// CategoryShare describes how often one category appears in an employee's
// reports.
type CategoryShare struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// Metrics is the derived per-employee performance record. It is a pure
// function of the snapshot inputs and is recomputed, never mutated.
type Metrics struct {
	Name                string                           `json:"name"`
	Email               string                           `json:"email"`
	Status              types.Status                     `json:"-"`
	StatusLabel         string                           `json:"status"`
	DaysSubmitted       int                              `json:"days_submitted"`
	DaysMissed          int                              `json:"days_missed"`
	SubmissionRate      float64                          `json:"submission_rate"`
	MaxGap              int                              `json:"max_gap"`
	AvgDailyHours       float64                          `json:"avg_daily_hours"`
	AvgTasksPerDay      float64                          `json:"avg_tasks_per_day"`
	CompletionRatio     float64                          `json:"completion_ratio"`
	TaskDiversity       float64                          `json:"task_diversity"`
	RecentSubmissions   int                              `json:"recent_submissions"`
	ExtendedSubmissions int                              `json:"extended_submissions"`
	UnderutilizedDays   int                              `json:"underutilized_days"`
	OverloadedDays      int                              `json:"overloaded_days"`
	TotalReports        int                              `json:"total_reports"`
	TotalHours          float64                          `json:"total_hours"`
	PeriodStart         time.Time                        `json:"period_start"`
	PeriodEnd           time.Time                        `json:"period_end"`
	ProjectDistribution map[string]ProjectShare          `json:"project_distribution"`
	PrimaryProject      string                           `json:"primary_project"`
	CategoryBreakdown   map[types.Category]CategoryShare `json:"-"`
}

// Engine computes Metrics under an injected threshold policy.
type Engine struct {
	policy Policy
}

// NewEngine creates an engine with the default policy unless overridden.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{policy: DefaultPolicy()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Policy returns the thresholds the engine classifies with.
func (e *Engine) Policy() Policy {
	return e.policy
}

// Compute derives metrics for one employee. records must already be
// filtered to that employee's resolved records; unresolved records never
// reach here. All divisions are zero-guarded so an empty dataset yields a
// well-defined zero-valued result.
func (e *Engine) Compute(employee model.EmployeeIdentity, records []model.WorkRecord, idx *submission.Index) Metrics {
	m := Metrics{
		Name:                employee.DisplayName,
		Email:               employee.PrimaryEmail,
		ProjectDistribution: make(map[string]ProjectShare),
		CategoryBreakdown:   make(map[types.Category]CategoryShare),
	}
	if start, end, ok := idx.Range(); ok {
		m.PeriodStart, m.PeriodEnd = start, end
	}

	totalDays := idx.TotalDays()
	m.DaysSubmitted = idx.SubmittedCount(employee.PrimaryEmail)
	m.DaysMissed = totalDays - m.DaysSubmitted
	if totalDays > 0 {
		m.SubmissionRate = float64(m.DaysSubmitted) / float64(totalDays)
	}
	m.MaxGap = maxConsecutiveGap(idx.MissedDays(employee.PrimaryEmail))

	e.accumulateWorkload(&m, records, idx)
	m.Status = e.classify(m)
	m.StatusLabel = m.Status.String()
	return m
}

// accumulateWorkload fills the hour/task aggregates from the employee's
// records.
func (e *Engine) accumulateWorkload(m *Metrics, records []model.WorkRecord, idx *submission.Index) {
	var (
		totalHours   float64
		totalTasks   int
		activeDays   = make(map[time.Time]struct{})
		projectHours = make(map[string]float64)
		projectDays  = make(map[string]map[time.Time]struct{})
	)

	latest, hasLatest := idx.LatestDate()
	recentCutoff := latest.AddDate(0, 0, -e.policy.RecentWindowDays)
	extendedCutoff := latest.AddDate(0, 0, -e.policy.ExtendedWindowDays)
	recentDays := make(map[time.Time]struct{})
	extendedDays := make(map[time.Time]struct{})

	for _, rec := range records {
		day := model.DayOf(rec.Date)
		activeDays[day] = struct{}{}
		totalHours += rec.Hours
		totalTasks += rec.TaskCount

		if rec.Hours < e.policy.UnderutilizedHours {
			m.UnderutilizedDays++
		}
		if rec.Hours > e.policy.OverloadedHours {
			m.OverloadedDays++
		}

		if hasLatest && day.After(recentCutoff) {
			recentDays[day] = struct{}{}
		}
		if hasLatest && day.After(extendedCutoff) {
			extendedDays[day] = struct{}{}
		}

		projectHours[rec.Project] += rec.Hours
		if projectDays[rec.Project] == nil {
			projectDays[rec.Project] = make(map[time.Time]struct{})
		}
		projectDays[rec.Project][day] = struct{}{}

		share := m.CategoryBreakdown[rec.Category]
		share.Count++
		m.CategoryBreakdown[rec.Category] = share
	}

	m.TotalReports = len(records)
	m.TotalHours = round2(totalHours)
	m.RecentSubmissions = len(recentDays)
	m.ExtendedSubmissions = len(extendedDays)

	if days := len(activeDays); days > 0 {
		m.AvgDailyHours = round2(totalHours / float64(days))
		m.AvgTasksPerDay = round2(float64(totalTasks) / float64(days))
	}
	if m.TotalReports > 0 {
		m.CompletionRatio = round2(float64(totalTasks) / float64(m.TotalReports))
		diversity := float64(len(m.CategoryBreakdown)) / float64(m.TotalReports)
		m.TaskDiversity = round2(math.Min(1, diversity))

		for category, share := range m.CategoryBreakdown {
			share.Percentage = round1(float64(share.Count) / float64(m.TotalReports) * 100)
			m.CategoryBreakdown[category] = share
		}
	}

	var primary string
	var primaryHours float64
	for project, hours := range projectHours {
		share := ProjectShare{Hours: round2(hours), Days: len(projectDays[project])}
		if totalHours > 0 {
			share.Percentage = round1(hours / totalHours * 100)
		}
		m.ProjectDistribution[project] = share
		if hours > primaryHours || (hours == primaryHours && (primary == "" || project < primary)) {
			primary, primaryHours = project, hours
		}
	}
	m.PrimaryProject = primary
}

// classify applies the status decision table. Rules are evaluated
// worst-first; Excellent is checked before Good because it is strictly
// narrower, and anything clearing rules 1-4 without hitting Excellent
// lands on Good.
func (e *Engine) classify(m Metrics) types.Status {
	switch {
	case m.DaysSubmitted == 0:
		return types.StatusNonReporter
	case m.SubmissionRate < e.policy.VeryPoorBelowRate:
		return types.StatusVeryPoor
	case m.SubmissionRate < e.policy.PoorBelowRate:
		return types.StatusPoor
	case m.MaxGap >= e.policy.InconsistentMinGap:
		return types.StatusInconsistent
	case m.SubmissionRate >= e.policy.ExcellentMinRate &&
		m.AvgDailyHours >= e.policy.ExpectedHoursFloor &&
		m.AvgDailyHours <= e.policy.ExpectedHoursCeil &&
		m.MaxGap <= e.policy.ExcellentMaxGap:
		return types.StatusExcellent
	default:
		return types.StatusGood
	}
}

// maxConsecutiveGap returns the length of the longest run of consecutive
// calendar dates in missed, which must be sorted ascending.
func maxConsecutiveGap(missed []time.Time) int {
	if len(missed) == 0 {
		return 0
	}
	maxGap, current := 1, 1
	for i := 1; i < len(missed); i++ {
		if missed[i].Sub(missed[i-1]) == 24*time.Hour {
			current++
		} else {
			current = 1
		}
		if current > maxGap {
			maxGap = current
		}
	}
	return maxGap
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
