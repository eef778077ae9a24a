// Package billing applies per-project SOW rules to normalized work records.
//
// This engine is the audit-grade source of truth for invoicing: it is purely
// deterministic, independent of any text-generation component, and every
// figure it emits can be traced back to (employee, date, category) buckets.
package billing

import (
	"math"
	"sort"
	"time"

	"github.com/okian/workpulse/internal/domain/model"
	"github.com/okian/workpulse/internal/domain/types"
)

// UnattributedEmployee labels buckets built from records whose reporter
// stayed unresolved. Their hours still bill; they just cannot be attributed.
const UnattributedEmployee = "unresolved"

const fullEfficiencyPct = 100

// CategoryDetail is the cap-applied view of one category within a day.
type CategoryDetail struct {
	ActualHours   float64  `json:"actual_hours"`
	BillableHours float64  `json:"billable_hours"`
	ExtraHours    float64  `json:"extra_hours"`
	CapHours      *float64 `json:"cap_hours,omitempty"`
	CapApplied    bool     `json:"cap_applied"`
}

// DaySummary aggregates one working day across categories and employees.
type DaySummary struct {
	Date          time.Time                         `json:"date"`
	Categories    map[types.Category]CategoryDetail `json:"-"`
	ActualHours   float64                           `json:"actual_hours"`
	BillableHours float64                           `json:"billable_hours"`
	ExtraHours    float64                           `json:"extra_hours"`
	HasExtraHours bool                              `json:"has_extra_hours"`
}

// CategoryTotals aggregates one category across the whole period.
type CategoryTotals struct {
	ActualHours   float64 `json:"actual_hours"`
	BillableHours float64 `json:"billable_hours"`
	ExtraHours    float64 `json:"extra_hours"`
	DaysWorked    int     `json:"days_worked"`
}

// Violation records one day that exceeded a SOW cap, newest first in the
// summary listing.
type Violation struct {
	Date          time.Time          `json:"date"`
	ExtraHours    float64            `json:"extra_hours"`
	ByCategory    map[string]float64 `json:"by_category"`
	ActualHours   float64            `json:"actual_hours"`
	BillableHours float64            `json:"billable_hours"`
}

// EmployeeRollup is the per-employee billing view for one project.
type EmployeeRollup struct {
	EmployeeRef   string  `json:"employee_ref"`
	TotalHours    float64 `json:"total_hours"`
	BillableHours float64 `json:"billable_hours"`
	ExtraHours    float64 `json:"extra_hours"`
	EfficiencyPct float64 `json:"billing_efficiency"`
}

// Summary is the full billing result for one project over a date range.
type Summary struct {
	Project           string                            `json:"project"`
	PeriodStart       time.Time                         `json:"period_start"`
	PeriodEnd         time.Time                         `json:"period_end"`
	TotalDays         int                               `json:"total_days"`
	Days              []DaySummary                      `json:"days"`
	TotalHours        float64                           `json:"total_hours"`
	TotalBillable     float64                           `json:"total_billable_hours"`
	TotalExtra        float64                           `json:"total_extra_hours"`
	DaysWithExtra     int                               `json:"days_with_extra_hours"`
	CategoryBreakdown map[types.Category]CategoryTotals `json:"-"`
	Violations        []Violation                       `json:"sow_violations"`
	HasSOWViolations  bool                              `json:"has_sow_violations"`
	Employees         []EmployeeRollup                  `json:"employees"`
	Records           []model.BillingRecord             `json:"-"`
	RulesApplied      map[string]string                 `json:"rules_applied"`
}

// Engine applies a policy set to normalized records.
type Engine struct {
	policies *PolicySet
}

// NewEngine creates a billing engine over the given policy set.
func NewEngine(policies *PolicySet) *Engine {
	return &Engine{policies: policies}
}

// bucketKey identifies one (employee, date, category) billing bucket.
type bucketKey struct {
	employee string
	day      time.Time
	category types.Category
}

// Bill produces the billing summary for one project. records may span
// projects and dates; the engine filters to the project and the inclusive
// [from, to] range (zero times disable the respective bound). Requesting a
// project with no configured policy returns ErrUnknownProject.
func (e *Engine) Bill(project string, records []model.WorkRecord, from, to time.Time) (Summary, error) {
	policy, err := e.policies.Lookup(project)
	if err != nil {
		return Summary{}, err
	}

	s := Summary{
		Project:           policy.Project,
		CategoryBreakdown: make(map[types.Category]CategoryTotals),
		RulesApplied:      policy.Describe(),
	}

	buckets := make(map[bucketKey]float64)
	for _, rec := range records {
		if rec.Project != policy.Project || rec.Hours <= 0 {
			continue
		}
		day := model.DayOf(rec.Date)
		if !from.IsZero() && day.Before(model.DayOf(from)) {
			continue
		}
		if !to.IsZero() && day.After(model.DayOf(to)) {
			continue
		}
		employee := rec.EmployeeRef
		if employee == model.Unresolved {
			employee = UnattributedEmployee
		}
		buckets[bucketKey{employee: employee, day: day, category: rec.Category}] += rec.Hours
	}
	if len(buckets) == 0 {
		return s, nil
	}

	keys := make([]bucketKey, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(a, b int) bool {
		ka, kb := keys[a], keys[b]
		if !ka.day.Equal(kb.day) {
			return ka.day.Before(kb.day)
		}
		if ka.employee != kb.employee {
			return ka.employee < kb.employee
		}
		return ka.category < kb.category
	})

	days := make(map[time.Time]*DaySummary)
	rollups := make(map[string]*EmployeeRollup)

	for _, key := range keys {
		actual := buckets[key]
		billable, extra, capped := applyCap(policy, key.category, actual)

		s.Records = append(s.Records, model.BillingRecord{
			EmployeeRef:   key.employee,
			Date:          key.day,
			Category:      key.category,
			ActualHours:   round2(actual),
			BillableHours: round2(billable),
			ExtraHours:    round2(extra),
			CapApplied:    capped,
		})

		day, ok := days[key.day]
		if !ok {
			day = &DaySummary{Date: key.day, Categories: make(map[types.Category]CategoryDetail)}
			days[key.day] = day
		}
		detail := day.Categories[key.category]
		detail.ActualHours += actual
		detail.BillableHours += billable
		detail.ExtraHours += extra
		detail.CapApplied = detail.CapApplied || capped
		if capHours, hasCap := policy.CapFor(key.category); hasCap {
			detail.CapHours = &capHours
		}
		day.Categories[key.category] = detail
		day.ActualHours += actual
		day.BillableHours += billable
		day.ExtraHours += extra
		day.HasExtraHours = day.HasExtraHours || extra > 0

		totals := s.CategoryBreakdown[key.category]
		totals.ActualHours += actual
		totals.BillableHours += billable
		totals.ExtraHours += extra
		totals.DaysWorked++
		s.CategoryBreakdown[key.category] = totals

		rollup, ok := rollups[key.employee]
		if !ok {
			rollup = &EmployeeRollup{EmployeeRef: key.employee}
			rollups[key.employee] = rollup
		}
		rollup.TotalHours += actual
		rollup.BillableHours += billable
		rollup.ExtraHours += extra

		s.TotalHours += actual
		s.TotalBillable += billable
		s.TotalExtra += extra
	}

	for _, day := range days {
		day.ActualHours = round2(day.ActualHours)
		day.BillableHours = round2(day.BillableHours)
		day.ExtraHours = round2(day.ExtraHours)
		s.Days = append(s.Days, *day)
	}
	sort.Slice(s.Days, func(a, b int) bool { return s.Days[a].Date.Before(s.Days[b].Date) })
	s.TotalDays = len(s.Days)
	s.PeriodStart = s.Days[0].Date
	s.PeriodEnd = s.Days[len(s.Days)-1].Date
	s.TotalHours = round2(s.TotalHours)
	s.TotalBillable = round2(s.TotalBillable)
	s.TotalExtra = round2(s.TotalExtra)

	for _, day := range s.Days {
		if !day.HasExtraHours {
			continue
		}
		s.DaysWithExtra++
		violation := Violation{
			Date:          day.Date,
			ExtraHours:    day.ExtraHours,
			ByCategory:    make(map[string]float64),
			ActualHours:   day.ActualHours,
			BillableHours: day.BillableHours,
		}
		for category, detail := range day.Categories {
			if detail.ExtraHours > 0 {
				violation.ByCategory[category.String()] = round2(detail.ExtraHours)
			}
		}
		s.Violations = append(s.Violations, violation)
	}
	// Most recent violations first, the order compliance review reads them.
	sort.Slice(s.Violations, func(a, b int) bool { return s.Violations[a].Date.After(s.Violations[b].Date) })
	s.HasSOWViolations = len(s.Violations) > 0

	for _, rollup := range rollups {
		rollup.TotalHours = round2(rollup.TotalHours)
		rollup.BillableHours = round2(rollup.BillableHours)
		rollup.ExtraHours = round2(rollup.ExtraHours)
		rollup.EfficiencyPct = efficiency(rollup.BillableHours, rollup.TotalHours)
		s.Employees = append(s.Employees, *rollup)
	}
	sort.Slice(s.Employees, func(a, b int) bool { return s.Employees[a].EmployeeRef < s.Employees[b].EmployeeRef })

	return s, nil
}

// DailyReport is the single-day billing view for one project.
func (e *Engine) DailyReport(project string, records []model.WorkRecord, day time.Time) (Summary, error) {
	return e.Bill(project, records, day, day)
}

// ProjectOverview summarizes every configured project present in records.
func (e *Engine) ProjectOverview(records []model.WorkRecord) ([]Summary, error) {
	summaries := make([]Summary, 0, len(e.policies.Projects()))
	for _, project := range e.policies.Projects() {
		s, err := e.Bill(project, records, time.Time{}, time.Time{})
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

// applyCap splits actual hours into billable and extra under the policy.
func applyCap(policy Policy, category types.Category, actual float64) (billable, extra float64, capped bool) {
	capHours, hasCap := policy.CapFor(category)
	if !hasCap || actual <= capHours {
		return actual, 0, false
	}
	return capHours, actual - capHours, true
}

// efficiency is billable/total as a percentage, defined as 100 when no
// hours were logged.
func efficiency(billable, total float64) float64 {
	if total == 0 {
		return fullEfficiencyPct
	}
	return round1(billable / total * fullEfficiencyPct)
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
