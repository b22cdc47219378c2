// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/Silverfoe/trueskill-public/internal/domain/types"
)

// LeaderboardDependencies defines the interface for leaderboard operations.
type LeaderboardDependencies interface {
	Leaderboard(ctx context.Context) []types.TeamEntry
}

// LeaderboardHandler handles leaderboard requests.
type LeaderboardHandler struct {
	deps LeaderboardDependencies
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps LeaderboardDependencies) *LeaderboardHandler {
	return &LeaderboardHandler{deps: deps}
}

type leaderboardResponse struct {
	Teams        []types.TeamEntry `json:"teams"`
	TeamsIndexed int               `json:"teams_indexed"`
}

// HandleGetLeaderboard handles GET /leaderboard requests: every indexed
// team, sorted by descending conservative rating.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	teams := h.deps.Leaderboard(r.Context())
	if teams == nil {
		teams = []types.TeamEntry{}
	}
	writeJSON(w, http.StatusOK, leaderboardResponse{Teams: teams, TeamsIndexed: len(teams)})
}
