package sampledata

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

// WriteCSV writes the dataset as roster.csv and reports.csv under dir,
// creating the directory if needed. The files round-trip through the
// source package's CSV readers.
func WriteCSV(ds Dataset, dir string) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	rosterRows := [][]string{{"Name / Email", "Mobile", "Emergency Contact Number", "Emergency Contact Name"}}
	for _, r := range ds.Roster {
		rosterRows = append(rosterRows, []string{r.NameEmail, r.Mobile, r.EmergencyContactNumber, r.EmergencyContactName})
	}
	if err := writeCSVFile(filepath.Join(dir, "roster.csv"), rosterRows); err != nil {
		return err
	}

	reportRows := [][]string{{"Timestamp", "Email Address", "Enter your name", "Select the date", "Project", "Tasks Completed", "Time Spent"}}
	for _, r := range ds.Reports {
		reportRows = append(reportRows, []string{r.Timestamp, r.EmailAddress, r.Name, r.Date, r.Project, r.TasksText, r.TimeSpentText})
	}
	return writeCSVFile(filepath.Join(dir, "reports.csv"), reportRows)
}

func writeCSVFile(path string, rows [][]string) error {
	f, err := os.Create(path) //nolint:gosec // path is operator-provided output
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	w.Flush()
	return w.Error()
}
