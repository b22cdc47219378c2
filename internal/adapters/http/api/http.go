// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"

	"github.com/Silverfoe/trueskill-public/internal/adapters/snapshot"
	"github.com/Silverfoe/trueskill-public/internal/adapters/tba"
	"github.com/Silverfoe/trueskill-public/internal/app"
	"github.com/Silverfoe/trueskill-public/internal/domain/model"
	"github.com/Silverfoe/trueskill-public/internal/domain/rating"
	"github.com/Silverfoe/trueskill-public/internal/domain/types"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Silverfoe/trueskill-public/pkg/metrics"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the engine implementation.
type Dependencies interface {
	Rebuild(ctx context.Context, scope model.Scope) (model.Context, error)
	Push(ctx context.Context, matches []model.Match) (int, error)
	TeamRating(ctx context.Context, key string) types.TeamEntry
	PredictMatch(ctx context.Context, teamsA, teamsB []string) (rating.Prediction, error)
	Leaderboard(ctx context.Context) []types.TeamEntry
	SaveSnapshot(ctx context.Context) (int, error)
	LoadSnapshot(ctx context.Context, path string, adoptEnv bool) (int, model.Context, error)
	Recalculate(ctx context.Context, source string) (int, error)
	Count(ctx context.Context) int
	SnapshotPath() string
}

// StatsProvider exposes service counters for the stats endpoint.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	updateHandler      *UpdateHandler
	pushHandler        *PushHandler
	predictHandler     *PredictHandler
	leaderboardHandler *LeaderboardHandler
	snapshotHandler    *SnapshotHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(deps),
		statsHandler:       NewStatsHandler(statsProvider),
		updateHandler:      NewUpdateHandler(deps),
		pushHandler:        NewPushHandler(deps),
		predictHandler:     NewPredictHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps),
		snapshotHandler:    NewSnapshotHandler(deps),
	}
}

// Register attaches all HTTP routes to mux. Route names match the
// original service so existing clients keep working.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/health", chain(s.healthHandler.HandleHealth, "health"))
	mux.HandleFunc("/stats", chain(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/update", chain(s.updateHandler.HandleUpdate, "update"))
	mux.HandleFunc("/push_results", chain(s.pushHandler.HandlePushResults, "push_results"))
	mux.HandleFunc("/predict_team", chain(s.predictHandler.HandlePredictTeam, "predict_team"))
	mux.HandleFunc("/predict_match", chain(s.predictHandler.HandlePredictMatch, "predict_match"))
	mux.HandleFunc("/predict_batch", chain(s.predictHandler.HandlePredictBatch, "predict_batch"))
	mux.HandleFunc("/recalculate", chain(s.snapshotHandler.HandleRecalculate, "recalculate"))
	mux.HandleFunc("/upload_data", chain(s.snapshotHandler.HandleUpload, "upload_data"))
	mux.HandleFunc("/load_data", chain(s.snapshotHandler.HandleLoad, "load_data"))
	mux.HandleFunc("/leaderboard", chain(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
}

// chain applies the standard middleware stack to a handler.
func chain(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return RequestIDMiddleware(MetricsMiddleware(next, endpoint))
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
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
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

// writeEngineError translates engine error kinds onto HTTP statuses.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, tba.ErrUnauthorized):
		writeError(w, http.StatusBadGateway, "tba_auth", err)
	case errors.Is(err, app.ErrDataSource):
		writeError(w, http.StatusBadGateway, "data_source", err)
	case errors.Is(err, fs.ErrNotExist):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, snapshot.ErrBadFormat):
		writeError(w, http.StatusInternalServerError, "snapshot_format", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

// decodeJSON parses a request body into v, rejecting empty bodies.
func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return ErrBadRequest
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return ErrBadRequest
	}
	return nil
}
