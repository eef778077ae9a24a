// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/workpulse/internal/domain/chart"
	"github.com/okian/workpulse/internal/domain/types"
)

// ChartDependencies defines the interface for chart resolution.
type ChartDependencies interface {
	Chart(ctx context.Context, kind types.ChartKind, override *chart.Descriptor) (chart.Descriptor, error)
}

// ChartHandler handles chart requests.
type ChartHandler struct {
	deps ChartDependencies
}

// NewChartHandler creates a new chart handler.
func NewChartHandler(deps ChartDependencies) *ChartHandler {
	return &ChartHandler{deps: deps}
}

// HandleChart handles GET and POST /chart/{kind} requests. A POST body may
// carry an externally produced descriptor; it is used only when it decodes
// and passes validation, otherwise the locally built chart is returned.
func (h *ChartHandler) HandleChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	name := pathParam(r.URL.Path, "/chart/")
	if name == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	kind, err := types.ParseChartKind(name)
	if err != nil {
		writeError(w, http.StatusNotFound, "unknown_chart", err)
		return
	}

	var override *chart.Descriptor
	if r.Method == http.MethodPost {
		// A body that does not decode is the same failure class as one
		// that fails validation: the override is dropped, never an error.
		var d chart.Descriptor
		if err := json.NewDecoder(r.Body).Decode(&d); err == nil {
			override = &d
		}
	}

	d, err := h.deps.Chart(r.Context(), kind, override)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}
