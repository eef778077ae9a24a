// Package repository holds the immutable dataset snapshot and its store.
//
// A snapshot is built once per refresh from the raw sources and then only
// read. The store swaps the current snapshot pointer atomically, so every
// in-flight computation sees either the old or the new dataset in full,
// never a partial mix.
package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/okian/workpulse/internal/domain/identity"
	"github.com/okian/workpulse/internal/domain/model"
	"github.com/okian/workpulse/internal/domain/submission"
)

// AuditCounts tracks the rows that degraded or dropped out during a
// refresh. They feed the data-quality metrics; nothing is silently lost.
type AuditCounts struct {
	RosterRows      int `json:"roster_rows"`
	ReportRows      int `json:"report_rows"`
	Unresolved      int `json:"unresolved_rows"`
	DegradedFields  int `json:"degraded_rows"`
	UnparseableDate int `json:"unparseable_date_rows"`
	SkippedRoster   int `json:"skipped_roster_rows"`
}

// UnresolvedRatio is the data-quality signal: unresolved report rows over
// total report rows.
func (a AuditCounts) UnresolvedRatio() float64 {
	if a.ReportRows == 0 {
		return 0
	}
	return float64(a.Unresolved) / float64(a.ReportRows)
}

// Snapshot is one immutable view of the reconciled dataset.
type Snapshot struct {
	Version  uuid.UUID
	LoadedAt time.Time
	Resolver *identity.Resolver
	Records  []model.WorkRecord // normalized, resolved and unresolved alike
	Index    *submission.Index
	Audit    AuditCounts
}

// NewSnapshot stamps a freshly built dataset with a version and load time.
func NewSnapshot(resolver *identity.Resolver, records []model.WorkRecord, idx *submission.Index, audit AuditCounts) *Snapshot {
	return &Snapshot{
		Version:  uuid.New(),
		LoadedAt: time.Now().UTC(),
		Resolver: resolver,
		Records:  records,
		Index:    idx,
		Audit:    audit,
	}
}

// Empty reports whether the snapshot holds no normalized records.
func (s *Snapshot) Empty() bool {
	return len(s.Records) == 0
}

// RecordsFor returns the resolved records belonging to one employee.
func (s *Snapshot) RecordsFor(primaryEmail string) []model.WorkRecord {
	var out []model.WorkRecord
	for _, rec := range s.Records {
		if rec.EmployeeRef == primaryEmail {
			out = append(out, rec)
		}
	}
	return out
}

// ResolvedRecords returns every record attributed to a roster identity.
func (s *Snapshot) ResolvedRecords() []model.WorkRecord {
	out := make([]model.WorkRecord, 0, len(s.Records))
	for _, rec := range s.Records {
		if rec.Resolved() {
			out = append(out, rec)
		}
	}
	return out
}
