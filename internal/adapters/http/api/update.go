// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/Silverfoe/trueskill-public/internal/domain/model"
)

// UpdateDependencies defines the interface for rebuild operations.
type UpdateDependencies interface {
	Rebuild(ctx context.Context, scope model.Scope) (model.Context, error)
}

// UpdateHandler handles full rebuild requests.
type UpdateHandler struct {
	deps UpdateDependencies
}

// NewUpdateHandler creates a new update handler.
func NewUpdateHandler(deps UpdateDependencies) *UpdateHandler {
	return &UpdateHandler{deps: deps}
}

type updateRequest struct {
	EventKey string `json:"event_key"`
	Year     int    `json:"year"`
}

type updateResponse struct {
	Status       string `json:"status"`
	EventKey     string `json:"event_key,omitempty"`
	Year         int    `json:"year,omitempty"`
	TeamsIndexed int    `json:"teams_indexed"`
}

// HandleUpdate handles POST /update requests: rebuild ratings from match
// history for an event or an entire year.
func (h *UpdateHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req updateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	scope := model.Scope{EventKey: req.EventKey, Year: req.Year}
	rctx, err := h.deps.Rebuild(r.Context(), scope)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updateResponse{
		Status:       "rankings updated",
		EventKey:     req.EventKey,
		Year:         req.Year,
		TeamsIndexed: rctx.TeamsIndexed,
	})
}
