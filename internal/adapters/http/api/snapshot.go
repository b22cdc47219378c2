// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/Silverfoe/trueskill-public/internal/domain/model"
)

// SnapshotDependencies defines the interface for snapshot operations.
type SnapshotDependencies interface {
	SaveSnapshot(ctx context.Context) (int, error)
	LoadSnapshot(ctx context.Context, path string, adoptEnv bool) (int, model.Context, error)
	Recalculate(ctx context.Context, source string) (int, error)
	SnapshotPath() string
}

// SnapshotHandler handles persistence requests.
type SnapshotHandler struct {
	deps SnapshotDependencies
}

// NewSnapshotHandler creates a new snapshot handler.
func NewSnapshotHandler(deps SnapshotDependencies) *SnapshotHandler {
	return &SnapshotHandler{deps: deps}
}

type saveResponse struct {
	Status       string `json:"status"`
	File         string `json:"file"`
	TeamsIndexed int    `json:"teams_indexed"`
}

// HandleUpload handles POST /upload_data requests: persist the current
// rating table to the snapshot file.
func (h *SnapshotHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	n, err := h.deps.SaveSnapshot(r.Context())
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saveResponse{
		Status:       "saved",
		File:         h.deps.SnapshotPath(),
		TeamsIndexed: n,
	})
}

type loadRequest struct {
	Path          string `json:"path"`
	UseEnvFromSnp *bool  `json:"use_env_from_json"`
}

type contextResponse struct {
	EventKey *string `json:"event_key"`
	Year     *int    `json:"year"`
}

type loadResponse struct {
	Status        string          `json:"status"`
	File          string          `json:"file"`
	UseEnvFromSnp bool            `json:"use_env_from_json"`
	TeamsIndexed  int             `json:"teams_indexed"`
	Context       contextResponse `json:"context"`
}

// HandleLoad handles POST /load_data requests: replace the in-memory
// rating table from a snapshot file. The environment recorded in the file
// is adopted unless the request opts out.
func (h *SnapshotHandler) HandleLoad(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	req := loadRequest{}
	// Body is optional; absent means default path + adopt environment.
	_ = decodeJSON(r, &req)

	adoptEnv := true
	if req.UseEnvFromSnp != nil {
		adoptEnv = *req.UseEnvFromSnp
	}
	path := req.Path
	if path == "" {
		path = h.deps.SnapshotPath()
	}

	n, rctx, err := h.deps.LoadSnapshot(r.Context(), path, adoptEnv)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loadResponse{
		Status:        "loaded",
		File:          path,
		UseEnvFromSnp: adoptEnv,
		TeamsIndexed:  n,
		Context:       contextResponse{EventKey: rctx.EventKey, Year: rctx.Year},
	})
}

type recalculateRequest struct {
	Source string `json:"source"`
}

type recalculateResponse struct {
	Status       string `json:"status"`
	Source       string `json:"source"`
	File         string `json:"file"`
	TeamsIndexed int    `json:"teams_indexed"`
}

// HandleRecalculate handles POST /recalculate requests: recompute derived
// metrics for all teams and re-save the snapshot, optionally reloading
// the table from disk first.
func (h *SnapshotHandler) HandleRecalculate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	req := recalculateRequest{}
	_ = decodeJSON(r, &req)
	if req.Source == "" {
		req.Source = "memory"
	}

	n, err := h.deps.Recalculate(r.Context(), req.Source)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recalculateResponse{
		Status:       "recalculated",
		Source:       req.Source,
		File:         h.deps.SnapshotPath(),
		TeamsIndexed: n,
	})
}
