// Package source provides roster and work report inputs for snapshot builds.
package source

import (
	"context"

	"github.com/okian/workpulse/internal/domain/model"
)

// RosterSource yields the employee roster rows.
type RosterSource interface {
	Roster(ctx context.Context) ([]model.RosterRow, error)
}

// ReportSource yields the raw work report rows.
type ReportSource interface {
	Reports(ctx context.Context) ([]model.WorkReportRow, error)
}

// StaticRoster serves a fixed in-memory roster. Useful for tests and
// generated sample data.
type StaticRoster []model.RosterRow

// Roster returns the fixed rows.
func (s StaticRoster) Roster(_ context.Context) ([]model.RosterRow, error) {
	return s, nil
}

// StaticReports serves fixed in-memory report rows.
type StaticReports []model.WorkReportRow

// Reports returns the fixed rows.
func (s StaticReports) Reports(_ context.Context) ([]model.WorkReportRow, error) {
	return s, nil
}
