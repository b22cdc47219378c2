// Package skill wraps the Bayesian inference step that turns one match
// outcome into posterior team ratings. The engine only depends on the
// Rater interface; the factor-graph math lives behind it.
package skill

import (
	"context"
	"errors"

	"github.com/Silverfoe/trueskill-public/internal/domain/rating"
)

// Sentinel kinds for skill-update errors.
var (
	ErrEmptyAlliance = errors.New("skill update requires non-empty alliances")
)

// Outcome is the ranked result of a two-alliance match.
type Outcome int

const (
	// AWins ranks alliance A ahead of alliance B.
	AWins Outcome = iota
	// BWins ranks alliance B ahead of alliance A.
	BWins
	// Draw ranks both alliances equal. Draws carry information and must
	// reach the updater; callers never drop them.
	Draw
)

// Rater applies one ranked outcome and returns the posterior rating for
// every participant, positionally matching the inputs. Implementations
// must not mutate the input slices.
type Rater interface {
	Rate(ctx context.Context, env rating.Env, allianceA, allianceB []rating.Rating, outcome Outcome) (newA, newB []rating.Rating, err error)
}
