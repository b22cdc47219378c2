// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/Silverfoe/trueskill-public/internal/domain/rating"
	"github.com/Silverfoe/trueskill-public/internal/domain/types"
)

// PredictDependencies defines the interface for prediction operations.
type PredictDependencies interface {
	TeamRating(ctx context.Context, key string) types.TeamEntry
	PredictMatch(ctx context.Context, teamsA, teamsB []string) (rating.Prediction, error)
}

// PredictHandler handles team and matchup forecast requests.
type PredictHandler struct {
	deps PredictDependencies
}

// NewPredictHandler creates a new predict handler.
func NewPredictHandler(deps PredictDependencies) *PredictHandler {
	return &PredictHandler{deps: deps}
}

type predictTeamResponse struct {
	Team              string  `json:"team"`
	Mu                float64 `json:"mu"`
	Sigma             float64 `json:"sigma"`
	Conservative      float64 `json:"conservative_mu_3sigma"`
	ConfidencePercent float64 `json:"confidence_percent"`
}

// HandlePredictTeam handles GET /predict_team?team=... requests. A team
// never rated returns prior-derived values rather than a 404, so the
// endpoint is total over all keys.
func (h *PredictHandler) HandlePredictTeam(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	team := r.URL.Query().Get("team")
	if team == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	entry := h.deps.TeamRating(r.Context(), team)
	writeJSON(w, http.StatusOK, predictTeamResponse{
		Team:              entry.TeamKey,
		Mu:                entry.Mu,
		Sigma:             entry.Sigma,
		Conservative:      entry.Conservative,
		ConfidencePercent: entry.ConfidencePercent,
	})
}

type matchupRequest struct {
	Teams1 []string `json:"teams1"`
	Teams2 []string `json:"teams2"`
}

type predictMatchResponse struct {
	Team1WinProb      float64 `json:"team1_win_prob"`
	Team2WinProb      float64 `json:"team2_win_prob"`
	ConfidencePercent float64 `json:"prediction_confidence_percent"`
}

// HandlePredictMatch handles POST /predict_match requests: win
// probabilities for one alliance-vs-alliance matchup.
func (h *PredictHandler) HandlePredictMatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req matchupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	pred, err := h.deps.PredictMatch(r.Context(), req.Teams1, req.Teams2)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, predictMatchResponse{
		Team1WinProb:      pred.WinA,
		Team2WinProb:      pred.WinB,
		ConfidencePercent: pred.ConfidencePercent,
	})
}

// batchEntry is one positional result of a batch forecast. Exactly one of
// Error or the probability fields is populated; a bad entry never fails
// the rest of the batch.
type batchEntry struct {
	Teams1       []string `json:"teams1,omitempty"`
	Teams2       []string `json:"teams2,omitempty"`
	Team1WinProb *float64 `json:"team1_win_prob,omitempty"`
	Team2WinProb *float64 `json:"team2_win_prob,omitempty"`
	Error        string   `json:"error,omitempty"`
}

// HandlePredictBatch handles POST /predict_batch requests: one forecast
// per requested matchup, in positional correspondence.
func (h *PredictHandler) HandlePredictBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req []matchupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	results := make([]batchEntry, 0, len(req))
	for _, m := range req {
		pred, err := h.deps.PredictMatch(r.Context(), m.Teams1, m.Teams2)
		if err != nil {
			results = append(results, batchEntry{Error: err.Error()})
			continue
		}
		winA, winB := pred.WinA, pred.WinB
		results = append(results, batchEntry{
			Teams1:       m.Teams1,
			Teams2:       m.Teams2,
			Team1WinProb: &winA,
			Team2WinProb: &winB,
		})
	}
	writeJSON(w, http.StatusOK, results)
}
