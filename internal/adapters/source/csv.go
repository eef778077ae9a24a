package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/okian/workpulse/internal/domain/model"
)

// CSVRoster reads roster rows from a four-column HR export: name/email,
// mobile, emergency contact number, emergency contact name. The first
// row is treated as a header and skipped.
type CSVRoster struct {
	path string
}

// NewCSVRoster creates a roster source backed by the CSV at path.
func NewCSVRoster(path string) *CSVRoster {
	return &CSVRoster{path: path}
}

// Roster reads and returns all roster rows.
func (s *CSVRoster) Roster(ctx context.Context) ([]model.RosterRow, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpenSource, err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	rows := make([]model.RosterRow, 0, 64)
	header := true
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedCSV, err)
		}
		if header {
			header = false
			continue
		}
		rows = append(rows, model.RosterRow{
			NameEmail:              field(rec, 0),
			Mobile:                 field(rec, 1),
			EmergencyContactNumber: field(rec, 2),
			EmergencyContactName:   field(rec, 3),
		})
	}
	return rows, nil
}

// CSVReports reads work report rows from a form-response export. Columns
// are located by header name so the form can reorder or rename them
// within the known variants.
type CSVReports struct {
	path string
}

// NewCSVReports creates a report source backed by the CSV at path.
func NewCSVReports(path string) *CSVReports {
	return &CSVReports{path: path}
}

// Reports reads and returns all work report rows.
func (s *CSVReports) Reports(ctx context.Context) ([]model.WorkReportRow, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpenSource, err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	head, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedCSV, err)
	}
	cols := reportColumns(head)

	rows := make([]model.WorkReportRow, 0, 256)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedCSV, err)
		}
		rows = append(rows, model.WorkReportRow{
			Timestamp:     field(rec, cols.timestamp),
			EmailAddress:  field(rec, cols.email),
			Name:          field(rec, cols.name),
			Date:          field(rec, cols.date),
			Project:       field(rec, cols.project),
			TasksText:     field(rec, cols.tasks),
			TimeSpentText: field(rec, cols.timeSpent),
		})
	}
	return rows, nil
}

type columnIndexes struct {
	timestamp int
	email     int
	name      int
	date      int
	project   int
	tasks     int
	timeSpent int
}

// reportColumns locates each field by header name. Header spellings vary
// across form revisions, e.g. "Enter your name" vs "Name". Missing
// columns resolve to -1 and read as empty fields.
func reportColumns(header []string) columnIndexes {
	return columnIndexes{
		timestamp: headerIndex(header, "timestamp"),
		email:     headerIndex(header, "email address", "email"),
		name:      headerIndex(header, "enter your name", "name"),
		date:      headerIndex(header, "select the date", "date"),
		project:   headerIndex(header, "project"),
		tasks:     headerIndex(header, "tasks completed", "tasks"),
		timeSpent: headerIndex(header, "time spent"),
	}
}

func headerIndex(header []string, names ...string) int {
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		for _, name := range names {
			if h == name {
				return i
			}
		}
	}
	return -1
}

func field(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}
