// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/Silverfoe/trueskill-public/internal/domain/model"
)

// PushDependencies defines the interface for incremental result pushes.
type PushDependencies interface {
	Push(ctx context.Context, matches []model.Match) (int, error)
}

// PushHandler handles incremental match-result submissions.
type PushHandler struct {
	deps PushDependencies
}

// NewPushHandler creates a new push handler.
func NewPushHandler(deps PushDependencies) *PushHandler {
	return &PushHandler{deps: deps}
}

// pushMatch mirrors the historical wire shape. Nil or negative scores
// mark a match as unplayed; those entries are skipped and counted out
// rather than failing the batch.
type pushMatch struct {
	Teams1 []string `json:"teams1"`
	Teams2 []string `json:"teams2"`
	Score1 *int     `json:"score1"`
	Score2 *int     `json:"score2"`
}

func (p pushMatch) toMatch() model.Match {
	m := model.Match{Red: p.Teams1, Blue: p.Teams2}
	if p.Score1 != nil && p.Score2 != nil && *p.Score1 >= 0 && *p.Score2 >= 0 {
		m.Played = true
		m.RedScore = *p.Score1
		m.BlueScore = *p.Score2
	}
	return m
}

type pushResponse struct {
	Status  string `json:"status"`
	Applied int    `json:"applied"`
}

// HandlePushResults handles POST /push_results requests: apply a list of
// match results to the ratings, in order.
func (h *PushHandler) HandlePushResults(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req []pushMatch
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	matches := make([]model.Match, 0, len(req))
	for _, p := range req {
		matches = append(matches, p.toMatch())
	}
	applied, err := h.deps.Push(r.Context(), matches)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pushResponse{Status: "results incorporated", Applied: applied})
}
