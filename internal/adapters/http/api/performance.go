// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strings"

	service "github.com/okian/workpulse/internal/app"
	"github.com/okian/workpulse/internal/domain/perf"
)

// PerformanceDependencies defines the interface for per-employee reads.
type PerformanceDependencies interface {
	EmployeeMetrics(ctx context.Context, query string) (perf.Metrics, error)
	CompareEmployees(ctx context.Context, queries []string) ([]perf.Metrics, error)
	EmployeeSummary(ctx context.Context, query string) (service.EmployeeSummary, error)
}

// PerformanceHandler handles per-employee performance requests.
type PerformanceHandler struct {
	deps PerformanceDependencies
}

// NewPerformanceHandler creates a new performance handler.
func NewPerformanceHandler(deps PerformanceDependencies) *PerformanceHandler {
	return &PerformanceHandler{deps: deps}
}

// HandleGetPerformance handles GET /performance/{employee} requests. The
// path segment may be any known email alias or a unique name fragment.
func (h *PerformanceHandler) HandleGetPerformance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	query := pathParam(r.URL.Path, "/performance/")
	if query == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	m, err := h.deps.EmployeeMetrics(r.Context(), query)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// HandleCompare handles GET /compare?employees=a,b requests.
func (h *PerformanceHandler) HandleCompare(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	raw := r.URL.Query().Get("employees")
	queries := splitNonEmpty(raw, ",")
	if len(queries) < 2 {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	all, err := h.deps.CompareEmployees(r.Context(), queries)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, all)
}

// HandleGetSummary handles GET /summary/{employee} requests.
func (h *PerformanceHandler) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	query := pathParam(r.URL.Path, "/summary/")
	if query == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	sum, err := h.deps.EmployeeSummary(r.Context(), query)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// pathParam extracts a single trailing path segment after prefix.
func pathParam(path, prefix string) string {
	p := strings.TrimPrefix(path, prefix)
	if p == "" || strings.Contains(p, "/") {
		return ""
	}
	return p
}

func splitNonEmpty(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
