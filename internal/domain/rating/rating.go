// Package rating holds the Gaussian skill model: per-team beliefs, the
// tunable environment constants, and the derived metrics the rest of the
// service exposes.
package rating

import (
	"errors"
	"math"
)

// Sentinel kinds for rating errors.
var (
	ErrInvalidEnv = errors.New("invalid skill environment")
	ErrDegenerate = errors.New("degenerate matchup variance")
)

// Rating is a Gaussian belief over a team's latent skill.
type Rating struct {
	Mu    float64
	Sigma float64
}

// Conservative returns mu - 3*sigma, a pessimistic lower bound on skill.
// The leaderboard and snapshot ordering use it.
func (r Rating) Conservative() float64 {
	return r.Mu - 3.0*r.Sigma
}

// Env carries the skill model constants. It is immutable while the engine
// runs; snapshot restore may swap it wholesale when asked to adopt the
// environment recorded in the file.
type Env struct {
	Mu0             float64
	Sigma0          float64
	Beta            float64
	Tau             float64
	DrawProbability float64
}

// DefaultEnv returns the conventional TrueSkill constants with draws
// disabled, matching the service's historical configuration.
func DefaultEnv() Env {
	return Env{
		Mu0:             25.0,
		Sigma0:          25.0 / 3.0,
		Beta:            25.0 / 6.0,
		Tau:             25.0 / 300.0,
		DrawProbability: 0.0,
	}
}

// Validate reports whether the constants form a usable environment.
func (e Env) Validate() error {
	switch {
	case !isFinite(e.Mu0) || !isFinite(e.Sigma0) || !isFinite(e.Beta) ||
		!isFinite(e.Tau) || !isFinite(e.DrawProbability):
		return ErrInvalidEnv
	case e.Sigma0 <= 0 || e.Beta <= 0 || e.Tau < 0:
		return ErrInvalidEnv
	case e.DrawProbability < 0 || e.DrawProbability >= 1:
		return ErrInvalidEnv
	}
	return nil
}

// Prior is the belief assigned to a team never seen before.
func (e Env) Prior() Rating {
	return Rating{Mu: e.Mu0, Sigma: e.Sigma0}
}

// Confidence reports how much a belief has tightened relative to the prior
// sigma, as a percentage. Sigma can transiently exceed sigma0 after the
// dynamics factor widens a belief, which would push the raw value below
// zero; the result is clamped to [0, 100] so callers always see a
// presentable percentage.
func (e Env) Confidence(r Rating) float64 {
	if e.Sigma0 <= 0 {
		return 0
	}
	frac := 1.0 - (r.Sigma/e.Sigma0)*(r.Sigma/e.Sigma0)
	return 100.0 * math.Min(1.0, math.Max(0.0, frac))
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
