// Package repository defines the team rating store interface.
package repository

import (
	"context"

	"github.com/Silverfoe/trueskill-public/internal/domain/rating"
)

// TeamRating pairs a normalized team key with its current belief.
type TeamRating struct {
	Key    string
	Rating rating.Rating
}

// Store provides read/write access to the rating table. All operations
// are total over valid inputs; reads never mutate. Callers are expected
// to normalize keys via model.NormalizeKey before touching the store.
type Store interface {
	// Get returns the current belief for a team. The second result is
	// false when the team has never been rated.
	Get(ctx context.Context, key string) (rating.Rating, bool)

	// Set records a new belief for a team.
	Set(ctx context.Context, key string, r rating.Rating)

	// Reset clears every entry.
	Reset(ctx context.Context)

	// ReplaceAll swaps the whole table for the given contents.
	ReplaceAll(ctx context.Context, ratings map[string]rating.Rating)

	// All returns every entry in ascending key order, so iteration is
	// deterministic across identical stores.
	All(ctx context.Context) []TeamRating

	// Count returns the number of teams tracked.
	Count(ctx context.Context) int
}
