// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/okian/workpulse/internal/adapters/repository"
	"github.com/okian/workpulse/internal/adapters/source"
	"github.com/okian/workpulse/internal/domain/billing"
	"github.com/okian/workpulse/internal/domain/chart"
	"github.com/okian/workpulse/internal/domain/identity"
	"github.com/okian/workpulse/internal/domain/model"
	"github.com/okian/workpulse/internal/domain/normalize"
	"github.com/okian/workpulse/internal/domain/perf"
	"github.com/okian/workpulse/internal/domain/submission"
	"github.com/okian/workpulse/internal/domain/team"
	"github.com/okian/workpulse/internal/domain/types"
	"github.com/okian/workpulse/pkg/logger"
	"github.com/okian/workpulse/pkg/metrics"
)

// Service implements the API dependencies for the work report system. It
// owns the ingest pipeline and serves all reads from the current snapshot,
// so queries between two refreshes are mutually consistent.
type Service struct {
	mu sync.RWMutex

	// Core components
	store         *repository.AtomicStore
	roster        source.RosterSource
	reports       source.ReportSource
	projects      *normalize.ProjectNormalizer
	perfEngine    *perf.Engine
	teamEngine    *team.Engine
	billingEngine *billing.Engine
	charts        *chart.Builder

	// Configuration
	projectAliases map[string][]string
	perfPolicy     perf.Policy
	teamPolicy     team.Policy
	sowCaps        map[string]map[string]float64
	hourlyRate     float64
	chartTopN      int

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithRoster sets the roster source.
func WithRoster(src source.RosterSource) Option {
	return func(s *Service) {
		if src != nil {
			s.roster = src
		}
	}
}

// WithReports sets the work report source.
func WithReports(src source.ReportSource) Option {
	return func(s *Service) {
		if src != nil {
			s.reports = src
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithProjectAliases sets the canonical project alias table.
func WithProjectAliases(aliases map[string][]string) Option {
	return func(s *Service) {
		if len(aliases) > 0 {
			s.projectAliases = aliases
		}
	}
}

// WithPerformancePolicy sets the per-employee classification thresholds.
func WithPerformancePolicy(p perf.Policy) Option {
	return func(s *Service) {
		s.perfPolicy = p
	}
}

// WithTeamPolicy sets the team aggregation thresholds.
func WithTeamPolicy(p team.Policy) Option {
	return func(s *Service) {
		s.teamPolicy = p
	}
}

// WithSOWCaps sets the project -> category -> daily cap table.
func WithSOWCaps(caps map[string]map[string]float64) Option {
	return func(s *Service) {
		if len(caps) > 0 {
			s.sowCaps = caps
		}
	}
}

// WithHourlyRate prices billable hours on generated invoices.
func WithHourlyRate(rate float64) Option {
	return func(s *Service) {
		if rate > 0 {
			s.hourlyRate = rate
		}
	}
}

// WithChartTopN caps ranking-style chart series.
func WithChartTopN(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.chartTopN = n
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		store:      repository.NewAtomicStore(),
		perfPolicy: perf.DefaultPolicy(),
		teamPolicy: team.DefaultPolicy(),
		hourlyRate: billing.DefaultHourlyRate,
		chartTopN:  10,
		logger:     nil, // Will be replaced when service starts
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes the engines and loads the first snapshot.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting work report service...")

	var projectOpts []normalize.ProjectOption
	if len(s.projectAliases) > 0 {
		projectOpts = append(projectOpts, normalize.WithProjectAliases(s.projectAliases))
	}
	s.projects = normalize.NewProjectNormalizer(projectOpts...)
	s.perfEngine = perf.NewEngine(perf.WithPolicy(s.perfPolicy))
	s.teamEngine = team.NewEngine(team.WithPolicy(s.teamPolicy))
	s.charts = chart.NewBuilder(chart.WithTopN(s.chartTopN))

	policies := billing.DefaultPolicySet()
	if len(s.sowCaps) > 0 {
		var err error
		policies, err = billing.NewPolicySetFromTable(s.sowCaps)
		if err != nil {
			return fmt.Errorf("build billing policies: %w", err)
		}
	}
	s.billingEngine = billing.NewEngine(policies)

	s.started = true
	if err := s.refresh(ctx); err != nil {
		s.started = false
		return err
	}

	snap := s.store.Current()
	s.logger.Info(ctx, "work report service started",
		logger.Int("records", len(snap.Records)),
		logger.Int("employees", len(snap.Resolver.Identities())),
		logger.Int("unresolved", snap.Audit.Unresolved),
	)
	return nil
}

// Stop marks the service stopped. Reads keep working against the last
// snapshot; only refreshes are rejected.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "work report service stopped")
}

// Refresh re-reads both sources and atomically installs a new snapshot.
func (s *Service) Refresh(ctx context.Context) error {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		return ErrNotStarted
	}
	return s.refresh(ctx)
}

func (s *Service) refresh(ctx context.Context) error {
	begin := time.Now()

	rosterRows, err := s.roster.Roster(ctx)
	if err != nil {
		return fmt.Errorf("read roster: %w", err)
	}
	reportRows, err := s.reports.Reports(ctx)
	if err != nil {
		return fmt.Errorf("read reports: %w", err)
	}

	resolver := identity.NewResolver(rosterRows)
	records, audit := s.normalizeRows(ctx, resolver, reportRows)
	audit.RosterRows = len(rosterRows)
	audit.ReportRows = len(reportRows)
	audit.SkippedRoster = resolver.SkippedRows()

	idx := submission.Build(records)
	snap := repository.NewSnapshot(resolver, records, idx, audit)
	s.store.Swap(snap)

	metrics.RecordRosterRows(audit.RosterRows)
	metrics.RecordReportRows(audit.ReportRows)
	metrics.RecordSkippedRosterRows(audit.SkippedRoster)
	metrics.RecordUnresolvedRecords(audit.Unresolved)
	metrics.RecordDegradedFields(audit.DegradedFields)
	metrics.RecordUnparseableDates(audit.UnparseableDate)
	metrics.RecordSnapshotRebuildDuration(float64(time.Since(begin).Microseconds()) / 1000)

	s.logger.Info(ctx, "snapshot installed",
		logger.String("version", snap.Version.String()),
		logger.Int("records", len(records)),
		logger.Int("unparseableDates", audit.UnparseableDate),
		logger.Int("unresolved", audit.Unresolved),
	)
	return nil
}

// normalizeRows turns raw report rows into normalized work records. Rows
// whose date cannot be parsed are excluded and audited; every other parse
// failure degrades the field to its zero value and keeps the row.
func (s *Service) normalizeRows(ctx context.Context, resolver *identity.Resolver, rows []model.WorkReportRow) ([]model.WorkRecord, repository.AuditCounts) {
	var audit repository.AuditCounts
	records := make([]model.WorkRecord, 0, len(rows))

	for _, row := range rows {
		date := normalize.ParseDate(row.Date)
		if !date.Parsed {
			audit.UnparseableDate++
			s.logger.Debug(ctx, "dropping row with unparseable date",
				logger.String("date", row.Date),
				logger.String("email", row.EmailAddress),
			)
			continue
		}

		hours := normalize.ParseHours(row.TimeSpentText)
		tasks := normalize.CountTasks(row.TasksText)
		if !hours.Parsed {
			audit.DegradedFields++
		}
		if !tasks.Parsed {
			audit.DegradedFields++
		}

		ref, ok := resolver.Resolve(row.EmailAddress, row.Name)
		if !ok {
			audit.Unresolved++
		}

		records = append(records, model.WorkRecord{
			EmployeeRef: ref,
			Date:        date.Date,
			Hours:       hours.Hours,
			TaskCount:   tasks.Count,
			Project:     s.projects.Normalize(row.Project),
			Category:    normalize.ExtractCategory(row.TasksText),
			Degraded:    !hours.Parsed || !tasks.Parsed,
			RawTasks:    row.TasksText,
			RawTime:     row.TimeSpentText,
		})
	}
	return records, audit
}

// snapshot returns the current snapshot or ErrNoSnapshot.
func (s *Service) snapshot() (*repository.Snapshot, error) {
	snap := s.store.Current()
	if snap == nil {
		return nil, repository.ErrNoSnapshot
	}
	return snap, nil
}

// Employees lists the roster identities sorted by display name.
func (s *Service) Employees(_ context.Context) ([]model.EmployeeIdentity, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	ids := snap.Resolver.Identities()
	sort.Slice(ids, func(i, j int) bool {
		if ids[i].DisplayName != ids[j].DisplayName {
			return ids[i].DisplayName < ids[j].DisplayName
		}
		return ids[i].PrimaryEmail < ids[j].PrimaryEmail
	})
	return ids, nil
}

// EmployeeMetrics computes performance metrics for one employee addressed
// by any known email alias or, failing that, by name.
func (s *Service) EmployeeMetrics(_ context.Context, query string) (perf.Metrics, error) {
	snap, err := s.snapshot()
	if err != nil {
		return perf.Metrics{}, err
	}
	emp, err := findEmployee(snap, query)
	if err != nil {
		return perf.Metrics{}, err
	}
	return s.perfEngine.Compute(emp, snap.RecordsFor(emp.PrimaryEmail), snap.Index), nil
}

// CompareEmployees computes metrics for several employees side by side.
func (s *Service) CompareEmployees(ctx context.Context, queries []string) ([]perf.Metrics, error) {
	out := make([]perf.Metrics, 0, len(queries))
	for _, q := range queries {
		m, err := s.EmployeeMetrics(ctx, q)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// EmployeeSummary bundles the identity, metrics, and attendance detail for
// one employee.
type EmployeeSummary struct {
	Identity      model.EmployeeIdentity `json:"identity"`
	Metrics       perf.Metrics           `json:"metrics"`
	SubmittedDays []time.Time            `json:"submitted_days"`
	MissedDays    []time.Time            `json:"missed_days"`
}

// EmployeeSummary returns the full per-employee view.
func (s *Service) EmployeeSummary(_ context.Context, query string) (EmployeeSummary, error) {
	snap, err := s.snapshot()
	if err != nil {
		return EmployeeSummary{}, err
	}
	emp, err := findEmployee(snap, query)
	if err != nil {
		return EmployeeSummary{}, err
	}
	return EmployeeSummary{
		Identity:      emp,
		Metrics:       s.perfEngine.Compute(emp, snap.RecordsFor(emp.PrimaryEmail), snap.Index),
		SubmittedDays: snap.Index.SubmittedDays(emp.PrimaryEmail),
		MissedDays:    snap.Index.MissedDays(emp.PrimaryEmail),
	}, nil
}

// TeamMetrics aggregates the whole roster.
func (s *Service) TeamMetrics(_ context.Context) (team.Metrics, error) {
	snap, err := s.snapshot()
	if err != nil {
		return team.Metrics{}, err
	}
	return s.teamEngine.Aggregate(s.individuals(snap)), nil
}

// BillingSummary bills one project over an inclusive date range. Zero
// times disable the respective bound.
func (s *Service) BillingSummary(_ context.Context, project string, from, to time.Time) (billing.Summary, error) {
	snap, err := s.snapshot()
	if err != nil {
		return billing.Summary{}, err
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return billing.Summary{}, ErrInvalidRange
	}
	sum, err := s.billingEngine.Bill(project, snap.Records, from, to)
	if err != nil {
		return billing.Summary{}, err
	}
	metrics.RecordSOWViolations(sum.Project, len(sum.Violations))
	metrics.UpdateBillingEfficiency(sum.Project, billingEfficiencyPct(sum))
	return sum, nil
}

// DailyBillingReport bills one project for a single day.
func (s *Service) DailyBillingReport(_ context.Context, project string, day time.Time) (billing.Summary, error) {
	snap, err := s.snapshot()
	if err != nil {
		return billing.Summary{}, err
	}
	return s.billingEngine.DailyReport(project, snap.Records, day)
}

// ProjectOverview bills every configured project over the full period.
func (s *Service) ProjectOverview(_ context.Context) ([]billing.Summary, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return s.billingEngine.ProjectOverview(snap.Records)
}

// MonthlyInvoice builds the invoice for one project's calendar month at the
// configured hourly rate.
func (s *Service) MonthlyInvoice(_ context.Context, project string, year int, month time.Month) (billing.Invoice, error) {
	snap, err := s.snapshot()
	if err != nil {
		return billing.Invoice{}, err
	}
	return s.billingEngine.MonthlyInvoice(project, snap.Records, year, month, s.hourlyRate)
}

// InvoicePeriods lists the months with billable data for a project, newest
// first.
func (s *Service) InvoicePeriods(_ context.Context, project string) ([]billing.Period, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return s.billingEngine.InvoicePeriods(project, snap.Records)
}

// Chart resolves one chart descriptor, preferring a valid override.
func (s *Service) Chart(_ context.Context, kind types.ChartKind, override *chart.Descriptor) (chart.Descriptor, error) {
	snap, err := s.snapshot()
	if err != nil {
		return chart.Descriptor{}, err
	}
	individuals := s.individuals(snap)
	summaries, err := s.billingEngine.ProjectOverview(snap.Records)
	if err != nil {
		return chart.Descriptor{}, err
	}
	in := chart.Inputs{
		Team:        s.teamEngine.Aggregate(individuals),
		Individuals: individuals,
		Billing:     summaries,
	}
	return s.charts.Resolve(override, kind, in), nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started": s.started,
	}

	if snap := s.store.Current(); snap != nil {
		stats["snapshotVersion"] = snap.Version.String()
		stats["loadedAt"] = snap.LoadedAt
		stats["records"] = len(snap.Records)
		stats["employees"] = len(snap.Resolver.Identities())
		stats["unresolvedRatio"] = snap.Audit.UnresolvedRatio()
	}

	return stats
}

// individuals computes metrics for the whole roster, sorted by name for
// deterministic output.
func (s *Service) individuals(snap *repository.Snapshot) []perf.Metrics {
	ids := snap.Resolver.Identities()
	sort.Slice(ids, func(i, j int) bool {
		if ids[i].DisplayName != ids[j].DisplayName {
			return ids[i].DisplayName < ids[j].DisplayName
		}
		return ids[i].PrimaryEmail < ids[j].PrimaryEmail
	})
	out := make([]perf.Metrics, 0, len(ids))
	for _, emp := range ids {
		out = append(out, s.perfEngine.Compute(emp, snap.RecordsFor(emp.PrimaryEmail), snap.Index))
	}
	return out
}

// findEmployee resolves a query to a roster identity, by email alias first
// and by fuzzy name second.
func findEmployee(snap *repository.Snapshot, query string) (model.EmployeeIdentity, error) {
	if primary, ok := snap.Resolver.Resolve(query, query); ok {
		if emp, ok := snap.Resolver.Lookup(primary); ok {
			return emp, nil
		}
	}
	if emp, ok := snap.Resolver.FindByName(query); ok {
		return emp, nil
	}
	return model.EmployeeIdentity{}, fmt.Errorf("%w: %s", ErrUnknownEmployee, query)
}

func billingEfficiencyPct(sum billing.Summary) float64 {
	if sum.TotalHours == 0 {
		return 100
	}
	return sum.TotalBillable / sum.TotalHours * 100
}
