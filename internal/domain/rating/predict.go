package rating

import "math"

// Prediction is a win-probability forecast for one matchup. WinB is always
// the exact floating-point complement of WinA.
type Prediction struct {
	WinA              float64
	WinB              float64
	ConfidencePercent float64
}

// PredictMatch forecasts an alliance-vs-alliance matchup from the current
// beliefs of every participant. It is a pure function: identical inputs
// always produce identical outputs.
//
// Skill is modeled additively per alliance; uncertainty pools across every
// team on both sides together with one performance-variance term (beta^2)
// per team.
func PredictMatch(env Env, allianceA, allianceB []Rating) (Prediction, error) {
	var muA, muB, varTotal float64
	for _, r := range allianceA {
		muA += r.Mu
		varTotal += r.Sigma * r.Sigma
	}
	for _, r := range allianceB {
		muB += r.Mu
		varTotal += r.Sigma * r.Sigma
	}
	n := float64(len(allianceA) + len(allianceB))
	denom := math.Sqrt(n*env.Beta*env.Beta + varTotal)
	// Cannot happen while sigma > 0 and beta > 0; guarded anyway so a
	// corrupt store surfaces as an error instead of NaN probabilities.
	if !(denom > 0) || math.IsNaN(denom) {
		return Prediction{}, ErrDegenerate
	}
	winA := NormCDF((muA - muB) / denom)
	return Prediction{
		WinA:              winA,
		WinB:              1.0 - winA,
		ConfidencePercent: math.Abs(2.0*winA-1.0) * 100.0,
	}, nil
}
