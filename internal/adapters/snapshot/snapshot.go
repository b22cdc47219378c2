// Package snapshot serializes the rating table, skill environment, and
// rebuild context to a single named JSON resource and restores them. The
// file layout interoperates with snapshots written by earlier versions of
// the service, so field names and nesting are a compatibility surface.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/Silverfoe/trueskill-public/internal/adapters/repository"
	"github.com/Silverfoe/trueskill-public/internal/domain/model"
	"github.com/Silverfoe/trueskill-public/internal/domain/rating"
	"github.com/Silverfoe/trueskill-public/internal/domain/types"
)

// Source recorded in every snapshot's metadata.
const Source = "The Blue Alliance (processed locally)"

// Payload is the on-disk snapshot shape.
type Payload struct {
	Meta  Meta              `json:"meta"`
	Teams []types.TeamEntry `json:"teams"`
}

// Meta carries the snapshot's provenance: when it was generated, the
// environment it was computed under, and what the store covered.
type Meta struct {
	GeneratedAt string      `json:"generated_at"`
	Source      string      `json:"source"`
	Env         EnvMeta     `json:"env"`
	Context     ContextMeta `json:"context"`
}

// EnvMeta mirrors rating.Env with the historical field names.
type EnvMeta struct {
	Mu              float64 `json:"mu"`
	Sigma           float64 `json:"sigma"`
	Beta            float64 `json:"beta"`
	Tau             float64 `json:"tau"`
	DrawProbability float64 `json:"draw_probability"`
}

// ContextMeta mirrors model.Context.
type ContextMeta struct {
	EventKey     *string `json:"event_key"`
	Year         *int    `json:"year"`
	TeamsIndexed int     `json:"teams_indexed"`
}

// Build assembles a payload from current state. Derived metrics are
// recomputed here for every team; entries are ordered by descending
// conservative rating, ties broken by key so output is deterministic.
func Build(env rating.Env, rctx model.Context, teams []repository.TeamRating, now time.Time) Payload {
	entries := make([]types.TeamEntry, 0, len(teams))
	for _, t := range teams {
		entries = append(entries, types.TeamEntry{
			TeamKey:           t.Key,
			Mu:                t.Rating.Mu,
			Sigma:             t.Rating.Sigma,
			Conservative:      t.Rating.Conservative(),
			ConfidencePercent: env.Confidence(t.Rating),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Conservative != entries[j].Conservative {
			return entries[i].Conservative > entries[j].Conservative
		}
		return entries[i].TeamKey < entries[j].TeamKey
	})
	return Payload{
		Meta: Meta{
			GeneratedAt: now.UTC().Format(time.RFC3339),
			Source:      Source,
			Env: EnvMeta{
				Mu:              env.Mu0,
				Sigma:           env.Sigma0,
				Beta:            env.Beta,
				Tau:             env.Tau,
				DrawProbability: env.DrawProbability,
			},
			Context: ContextMeta{
				EventKey:     rctx.EventKey,
				Year:         rctx.Year,
				TeamsIndexed: rctx.TeamsIndexed,
			},
		},
		Teams: entries,
	}
}

// Write persists a payload atomically: the JSON is written to a temp file
// in the target directory and renamed into place, so a crash never leaves
// a partial snapshot behind.
func Write(ctx context.Context, path string, p Payload) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create snapshot temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close snapshot temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

// Read parses and validates a snapshot file. Decode failures and
// constraint violations surface as ErrBadFormat; missing files keep their
// os error so callers can distinguish them.
func Read(ctx context.Context, path string) (Payload, error) {
	if err := ctx.Err(); err != nil {
		return Payload{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Payload{}, err
	}
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrBadFormat, err)
	}
	if err := p.Validate(); err != nil {
		return Payload{}, err
	}
	return p, nil
}

// Validate enforces the structural constraints a loadable snapshot must
// satisfy: team keys present, mu/sigma finite, sigma positive, and every
// recorded env field finite. A zero env (legacy files without meta) is
// still accepted; full range checks happen only when the env is adopted.
func (p Payload) Validate() error {
	envFields := []float64{
		p.Meta.Env.Mu, p.Meta.Env.Sigma, p.Meta.Env.Beta,
		p.Meta.Env.Tau, p.Meta.Env.DrawProbability,
	}
	for _, f := range envFields {
		if !finite(f) {
			return fmt.Errorf("%w: meta.env has non-finite field", ErrBadFormat)
		}
	}
	for i, t := range p.Teams {
		if model.NormalizeKey(t.TeamKey) == "" {
			return fmt.Errorf("%w: teams[%d] missing team_key", ErrBadFormat, i)
		}
		if !finite(t.Mu) || !finite(t.Sigma) {
			return fmt.Errorf("%w: teams[%d] has non-finite rating", ErrBadFormat, i)
		}
		if t.Sigma <= 0 {
			return fmt.Errorf("%w: teams[%d] has non-positive sigma", ErrBadFormat, i)
		}
	}
	return nil
}

// Ratings extracts the rating table. Only mu and sigma are trusted from
// disk; derived fields are always recomputed by the caller.
func (p Payload) Ratings() map[string]rating.Rating {
	out := make(map[string]rating.Rating, len(p.Teams))
	for _, t := range p.Teams {
		out[model.NormalizeKey(t.TeamKey)] = rating.Rating{Mu: t.Mu, Sigma: t.Sigma}
	}
	return out
}

// Env reconstructs the environment recorded in the snapshot.
func (p Payload) Env() rating.Env {
	return rating.Env{
		Mu0:             p.Meta.Env.Mu,
		Sigma0:          p.Meta.Env.Sigma,
		Beta:            p.Meta.Env.Beta,
		Tau:             p.Meta.Env.Tau,
		DrawProbability: p.Meta.Env.DrawProbability,
	}
}

// Context reconstructs the rebuild context recorded in the snapshot. The
// indexed count reflects the teams actually present in the file.
func (p Payload) Context() model.Context {
	return model.Context{
		EventKey:     p.Meta.Context.EventKey,
		Year:         p.Meta.Context.Year,
		TeamsIndexed: len(p.Teams),
	}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
