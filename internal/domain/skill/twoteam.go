package skill

import (
	"context"
	"math"

	"github.com/Silverfoe/trueskill-public/internal/domain/rating"
)

// TwoTeam implements Rater with the closed-form two-team update:
// truncated-Gaussian moment matching over the summed performance of each
// alliance. The draw margin comes from the environment's draw probability
// and the dynamics factor tau widens every belief before the update, so a
// team's sigma may grow slightly even as evidence accumulates.
type TwoTeam struct{}

// NewTwoTeam returns the standard two-alliance updater.
func NewTwoTeam() *TwoTeam {
	return &TwoTeam{}
}

// Rate applies one outcome and returns posterior ratings for both sides.
func (t *TwoTeam) Rate(ctx context.Context, env rating.Env, allianceA, allianceB []rating.Rating, outcome Outcome) ([]rating.Rating, []rating.Rating, error) {
	if len(allianceA) == 0 || len(allianceB) == 0 {
		return nil, nil, ErrEmptyAlliance
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	a := widen(allianceA, env.Tau)
	b := widen(allianceB, env.Tau)

	n := len(a) + len(b)
	c := math.Sqrt(sumVar(a) + sumVar(b) + float64(n)*env.Beta*env.Beta)
	margin := drawMargin(env, n)

	muA := sumMu(a)
	muB := sumMu(b)

	var v, w, dirA float64
	switch outcome {
	case AWins:
		v = vExceedsMargin(muA-muB, margin, c)
		w = wExceedsMargin(muA-muB, margin, c)
		dirA = 1
	case BWins:
		v = vExceedsMargin(muB-muA, margin, c)
		w = wExceedsMargin(muB-muA, margin, c)
		dirA = -1
	case Draw:
		// vWithinMargin is antisymmetric in the mean delta, so using
		// A-B with dirA=+1 moves both sides toward each other.
		v = vWithinMargin(muA-muB, margin, c)
		w = wWithinMargin(muA-muB, margin, c)
		dirA = 1
	}

	newA := shift(a, c, v, w, dirA)
	newB := shift(b, c, v, w, -dirA)
	return newA, newB, nil
}

func sumMu(rs []rating.Rating) float64 {
	var total float64
	for _, r := range rs {
		total += r.Mu
	}
	return total
}

func sumVar(rs []rating.Rating) float64 {
	var total float64
	for _, r := range rs {
		total += r.Sigma * r.Sigma
	}
	return total
}

// widen applies the dynamics factor: sigma^2 grows by tau^2 before each
// update, keeping long-lived ratings responsive.
func widen(rs []rating.Rating, tau float64) []rating.Rating {
	out := make([]rating.Rating, len(rs))
	for i, r := range rs {
		out[i] = rating.Rating{
			Mu:    r.Mu,
			Sigma: math.Sqrt(r.Sigma*r.Sigma + tau*tau),
		}
	}
	return out
}

// shift moves each member of an alliance by its share of the surprise v
// and shrinks its uncertainty by w, both weighted by the member's own
// variance.
func shift(rs []rating.Rating, c, v, w, dir float64) []rating.Rating {
	out := make([]rating.Rating, len(rs))
	for i, r := range rs {
		variance := r.Sigma * r.Sigma
		out[i] = rating.Rating{
			Mu:    r.Mu + dir*(variance/c)*v,
			Sigma: math.Sqrt(variance * (1.0 - w*(variance/(c*c)))),
		}
	}
	return out
}

// drawMargin converts the configured draw probability into the
// performance margin inside which a match counts as drawn.
func drawMargin(env rating.Env, totalPlayers int) float64 {
	if env.DrawProbability <= 0 {
		return 0
	}
	return rating.NormPPF((env.DrawProbability+1.0)/2.0) *
		math.Sqrt(float64(totalPlayers)) * env.Beta
}

// Numerically safe floor for truncated-Gaussian denominators.
const denomFloor = 2.222758749e-162

// vExceedsMargin is the additive mean correction for a decisive outcome.
func vExceedsMargin(meanDelta, margin, c float64) float64 {
	t := (meanDelta - margin) / c
	denom := rating.NormCDF(t)
	if denom < denomFloor {
		return -t
	}
	return rating.NormPDF(t) / denom
}

// wExceedsMargin is the multiplicative variance correction for a decisive
// outcome. Always in (0, 1].
func wExceedsMargin(meanDelta, margin, c float64) float64 {
	t := (meanDelta - margin) / c
	denom := rating.NormCDF(t)
	if denom < denomFloor {
		if t < 0 {
			return 1
		}
		return 0
	}
	v := rating.NormPDF(t) / denom
	return v * (v + t)
}

// vWithinMargin is the mean correction when the outcome is a draw.
func vWithinMargin(meanDelta, margin, c float64) float64 {
	t := meanDelta / c
	m := margin / c
	tAbs := math.Abs(t)
	denom := rating.NormCDF(m-tAbs) - rating.NormCDF(-m-tAbs)
	if denom < denomFloor {
		if t < 0 {
			return -t - m
		}
		return -t + m
	}
	v := (rating.NormPDF(-m-tAbs) - rating.NormPDF(m-tAbs)) / denom
	if t < 0 {
		return -v
	}
	return v
}

// wWithinMargin is the variance correction when the outcome is a draw.
func wWithinMargin(meanDelta, margin, c float64) float64 {
	t := meanDelta / c
	m := margin / c
	tAbs := math.Abs(t)
	denom := rating.NormCDF(m-tAbs) - rating.NormCDF(-m-tAbs)
	if denom < denomFloor {
		return 1
	}
	v := (rating.NormPDF(-m-tAbs) - rating.NormPDF(m-tAbs)) / denom
	return v*v + ((m-tAbs)*rating.NormPDF(m-tAbs)-(-m-tAbs)*rating.NormPDF(-m-tAbs))/denom
}
