// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/okian/workpulse/internal/domain/team"
)

// TeamDependencies defines the interface for team-wide reads.
type TeamDependencies interface {
	TeamMetrics(ctx context.Context) (team.Metrics, error)
}

// TeamHandler handles team metrics requests.
type TeamHandler struct {
	deps TeamDependencies
}

// NewTeamHandler creates a new team handler.
func NewTeamHandler(deps TeamDependencies) *TeamHandler {
	return &TeamHandler{deps: deps}
}

// HandleGetTeam handles GET /team requests.
func (h *TeamHandler) HandleGetTeam(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	tm, err := h.deps.TeamMetrics(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tm)
}
