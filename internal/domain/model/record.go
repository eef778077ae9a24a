// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/okian/workpulse/internal/domain/types"
)

// Unresolved marks a work record whose reporter could not be matched
// against any roster identity.
const Unresolved = ""

// EmployeeIdentity is the canonical record for one person on the roster.
// Identities are created once during roster load and never mutated after.
type EmployeeIdentity struct {
	PrimaryEmail string   // unique key, lowercase and trimmed
	DisplayName  string
	KnownEmails  []string // every alias, lowercase and trimmed; always contains PrimaryEmail
}

// RosterRow is one raw roster entry as supplied by the source.
type RosterRow struct {
	NameEmail              string // combined "Name <email>" or bare-email field
	Mobile                 string
	EmergencyContactNumber string
	EmergencyContactName   string
}

// WorkReportRow is one raw daily report submission as supplied by the source.
type WorkReportRow struct {
	Timestamp     string
	EmailAddress  string
	Name          string
	Date          string // free-text calendar date
	Project       string // optional project tag
	TasksText     string
	TimeSpentText string
}

// WorkRecord is a WorkReportRow after identity resolution and field
// normalization. Hours is never negative; EmployeeRef is either a known
// primary email or Unresolved.
type WorkRecord struct {
	EmployeeRef string // resolved primary email, or Unresolved
	Date        time.Time
	Hours       float64
	TaskCount   int
	Project     string // normalized lowercase token, "unclassified" when absent
	Category    types.Category
	Degraded    bool // at least one field fell back to its parse default
	RawTasks    string
	RawTime     string
}

// Resolved reports whether the record was matched to a roster identity.
func (r WorkRecord) Resolved() bool {
	return r.EmployeeRef != Unresolved
}

// BillingRecord is the cap-applied view of one (employee, date, category)
// bucket within a project.
type BillingRecord struct {
	EmployeeRef   string
	Date          time.Time
	Category      types.Category
	ActualHours   float64
	BillableHours float64
	ExtraHours    float64 // ActualHours - BillableHours, never negative
	CapApplied    bool
}

// DayOf truncates t to a calendar date in UTC. All domain dates pass
// through here so map keys and comparisons stay consistent.
func DayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Day builds a calendar date in UTC.
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
