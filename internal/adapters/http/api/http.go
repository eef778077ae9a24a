// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/okian/workpulse/internal/adapters/repository"
	service "github.com/okian/workpulse/internal/app"
	"github.com/okian/workpulse/internal/domain/billing"
	"github.com/okian/workpulse/internal/domain/chart"
	"github.com/okian/workpulse/internal/domain/model"
	"github.com/okian/workpulse/internal/domain/perf"
	"github.com/okian/workpulse/internal/domain/team"
	"github.com/okian/workpulse/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Roster and per-employee reads.
	Employees(ctx context.Context) ([]model.EmployeeIdentity, error)
	EmployeeMetrics(ctx context.Context, query string) (perf.Metrics, error)
	CompareEmployees(ctx context.Context, queries []string) ([]perf.Metrics, error)
	EmployeeSummary(ctx context.Context, query string) (service.EmployeeSummary, error)

	// Team-wide reads.
	TeamMetrics(ctx context.Context) (team.Metrics, error)

	// Billing reads.
	BillingSummary(ctx context.Context, project string, from, to time.Time) (billing.Summary, error)
	DailyBillingReport(ctx context.Context, project string, day time.Time) (billing.Summary, error)
	ProjectOverview(ctx context.Context) ([]billing.Summary, error)
	MonthlyInvoice(ctx context.Context, project string, year int, month time.Month) (billing.Invoice, error)
	InvoicePeriods(ctx context.Context, project string) ([]billing.Period, error)

	// Chart resolution.
	Chart(ctx context.Context, kind types.ChartKind, override *chart.Descriptor) (chart.Descriptor, error)

	// Refresh re-reads the sources and installs a new snapshot.
	Refresh(ctx context.Context) error
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	employeesHandler   *EmployeesHandler
	performanceHandler *PerformanceHandler
	teamHandler        *TeamHandler
	billingHandler     *BillingHandler
	chartHandler       *ChartHandler
	refreshHandler     *RefreshHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		employeesHandler:   NewEmployeesHandler(deps),
		performanceHandler: NewPerformanceHandler(deps),
		teamHandler:        NewTeamHandler(deps),
		billingHandler:     NewBillingHandler(deps),
		chartHandler:       NewChartHandler(deps),
		refreshHandler:     NewRefreshHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/employees", MetricsMiddleware(s.employeesHandler.HandleList, "employees"))
	mux.HandleFunc("/performance/", MetricsMiddleware(s.performanceHandler.HandleGetPerformance, "performance"))
	mux.HandleFunc("/compare", MetricsMiddleware(s.performanceHandler.HandleCompare, "compare"))
	mux.HandleFunc("/summary/", MetricsMiddleware(s.performanceHandler.HandleGetSummary, "summary"))
	mux.HandleFunc("/team", MetricsMiddleware(s.teamHandler.HandleGetTeam, "team"))
	mux.HandleFunc("/billing/", MetricsMiddleware(s.billingHandler.HandleGetBilling, "billing"))
	mux.HandleFunc("/projects", MetricsMiddleware(s.billingHandler.HandleGetOverview, "projects"))
	mux.HandleFunc("/invoice/", MetricsMiddleware(s.billingHandler.HandleGetInvoice, "invoice"))
	mux.HandleFunc("/chart/", MetricsMiddleware(s.chartHandler.HandleChart, "chart"))
	mux.HandleFunc("/refresh", MetricsMiddleware(s.refreshHandler.HandleRefresh, "refresh"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeDomainError translates known sentinels into HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrUnknownEmployee):
		writeError(w, http.StatusNotFound, "unknown_employee", err)
	case errors.Is(err, billing.ErrUnknownProject):
		writeError(w, http.StatusNotFound, "unknown_project", err)
	case errors.Is(err, billing.ErrInvalidRate):
		writeError(w, http.StatusInternalServerError, "invalid_rate", err)
	case errors.Is(err, service.ErrInvalidRange):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, repository.ErrNoSnapshot):
		writeError(w, http.StatusServiceUnavailable, "no_snapshot", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
