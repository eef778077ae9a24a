// Package submission derives the per-employee calendar of report coverage.
package submission

import (
	"sort"
	"time"

	"github.com/okian/workpulse/internal/domain/model"
)

// Index is the immutable submission calendar for one snapshot. Working days
// span every calendar day between the dataset's first and last record date,
// inclusive; no weekend or holiday awareness is applied here.
type Index struct {
	minDate     time.Time
	maxDate     time.Time
	workingDays []time.Time
	submitted   map[string]map[time.Time]struct{}
}

// Build constructs the index from normalized records. Unresolved records
// contribute to the global date range but to no employee's submitted set.
func Build(records []model.WorkRecord) *Index {
	idx := &Index{
		submitted: make(map[string]map[time.Time]struct{}),
	}

	first := true
	for _, rec := range records {
		day := model.DayOf(rec.Date)
		if first || day.Before(idx.minDate) {
			idx.minDate = day
		}
		if first || day.After(idx.maxDate) {
			idx.maxDate = day
		}
		first = false

		if !rec.Resolved() {
			continue
		}
		days, ok := idx.submitted[rec.EmployeeRef]
		if !ok {
			days = make(map[time.Time]struct{})
			idx.submitted[rec.EmployeeRef] = days
		}
		days[day] = struct{}{}
	}

	if !first {
		for day := idx.minDate; !day.After(idx.maxDate); day = day.AddDate(0, 0, 1) {
			idx.workingDays = append(idx.workingDays, day)
		}
	}
	return idx
}

// Empty reports whether the index covers no dates at all.
func (i *Index) Empty() bool {
	return len(i.workingDays) == 0
}

// Range returns the inclusive date bounds of the dataset.
func (i *Index) Range() (time.Time, time.Time, bool) {
	if i.Empty() {
		return time.Time{}, time.Time{}, false
	}
	return i.minDate, i.maxDate, true
}

// LatestDate returns the most recent date seen in the dataset. Recency
// windows are measured against this, not against the wall clock, so results
// stay deterministic for a given snapshot.
func (i *Index) LatestDate() (time.Time, bool) {
	if i.Empty() {
		return time.Time{}, false
	}
	return i.maxDate, true
}

// WorkingDays returns the ordered inclusive calendar range.
func (i *Index) WorkingDays() []time.Time {
	out := make([]time.Time, len(i.workingDays))
	copy(out, i.workingDays)
	return out
}

// TotalDays returns the number of working days in scope.
func (i *Index) TotalDays() int {
	return len(i.workingDays)
}

// SubmittedDays returns the sorted days on which the employee filed at
// least one report.
func (i *Index) SubmittedDays(primaryEmail string) []time.Time {
	days := i.submitted[primaryEmail]
	out := make([]time.Time, 0, len(days))
	for day := range days {
		out = append(out, day)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Before(out[b]) })
	return out
}

// SubmittedCount returns how many working days have a report from the
// employee.
func (i *Index) SubmittedCount(primaryEmail string) int {
	return len(i.submitted[primaryEmail])
}

// HasSubmission reports whether the employee filed on the given day.
func (i *Index) HasSubmission(primaryEmail string, day time.Time) bool {
	_, ok := i.submitted[primaryEmail][model.DayOf(day)]
	return ok
}

// MissedDays returns the sorted working days with no report from the
// employee.
func (i *Index) MissedDays(primaryEmail string) []time.Time {
	submitted := i.submitted[primaryEmail]
	var out []time.Time
	for _, day := range i.workingDays {
		if _, ok := submitted[day]; !ok {
			out = append(out, day)
		}
	}
	return out
}
