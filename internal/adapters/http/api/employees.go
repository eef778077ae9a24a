// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/okian/workpulse/internal/domain/model"
)

// EmployeeDependencies defines the interface for roster listing.
type EmployeeDependencies interface {
	Employees(ctx context.Context) ([]model.EmployeeIdentity, error)
}

// EmployeesHandler handles roster listing requests.
type EmployeesHandler struct {
	deps EmployeeDependencies
}

// NewEmployeesHandler creates a new employees handler.
func NewEmployeesHandler(deps EmployeeDependencies) *EmployeesHandler {
	return &EmployeesHandler{deps: deps}
}

// HandleList handles GET /employees requests.
func (h *EmployeesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	ids, err := h.deps.Employees(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ids)
}
