package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/Silverfoe/trueskill-public/internal/domain/rating"
)

// Default sizing for the in-memory table. A full season indexes a few
// thousand teams, so one map with a generous hint is plenty.
const defaultCapacityHint = 4096

// MemStore is the in-memory Store used by the engine. Safe for concurrent
// use; the engine's single-writer discipline sits above it.
type MemStore struct {
	mu      sync.RWMutex
	ratings map[string]rating.Rating
	hint    int
}

// MemOption applies a configuration option to the MemStore.
type MemOption func(*MemStore)

// WithCapacityHint pre-sizes the underlying table.
func WithCapacityHint(hint int) MemOption {
	return func(s *MemStore) {
		if hint > 0 {
			s.hint = hint
		}
	}
}

// NewMemStore creates an empty in-memory store.
func NewMemStore(opts ...MemOption) *MemStore {
	s := &MemStore{hint: defaultCapacityHint}
	for _, opt := range opts {
		opt(s)
	}
	s.ratings = make(map[string]rating.Rating, s.hint)
	return s
}

// Get returns the current belief for a team.
func (s *MemStore) Get(_ context.Context, key string) (rating.Rating, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.ratings[key]
	return r, ok
}

// Set records a new belief for a team.
func (s *MemStore) Set(_ context.Context, key string, r rating.Rating) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ratings[key] = r
}

// Reset clears every entry.
func (s *MemStore) Reset(_ context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ratings = make(map[string]rating.Rating, s.hint)
}

// ReplaceAll swaps the whole table for the given contents.
func (s *MemStore) ReplaceAll(_ context.Context, ratings map[string]rating.Rating) {
	next := make(map[string]rating.Rating, len(ratings))
	for k, r := range ratings {
		next[k] = r
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ratings = next
}

// All returns every entry in ascending key order.
func (s *MemStore) All(_ context.Context) []TeamRating {
	s.mu.RLock()
	out := make([]TeamRating, 0, len(s.ratings))
	for k, r := range s.ratings {
		out = append(out, TeamRating{Key: k, Rating: r})
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Count returns the number of teams tracked.
func (s *MemStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ratings)
}
