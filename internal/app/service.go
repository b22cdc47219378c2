// Package app implements the rating engine service: the single-writer
// orchestration of the team rating store, the skill updater, the match
// history source, and snapshot persistence.
package app

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Silverfoe/trueskill-public/internal/adapters/repository"
	"github.com/Silverfoe/trueskill-public/internal/adapters/snapshot"
	"github.com/Silverfoe/trueskill-public/internal/domain/model"
	"github.com/Silverfoe/trueskill-public/internal/domain/rating"
	"github.com/Silverfoe/trueskill-public/internal/domain/skill"
	"github.com/Silverfoe/trueskill-public/internal/domain/types"
	"github.com/Silverfoe/trueskill-public/pkg/logger"
	"github.com/Silverfoe/trueskill-public/pkg/metrics"
)

// HistorySource is the match-history retrieval boundary the rebuild
// pipeline consumes. The tba package provides the production client.
type HistorySource interface {
	ListEvents(ctx context.Context, year int) ([]string, error)
	ListMatches(ctx context.Context, eventKey string) ([]model.Match, error)
}

// Recalculate source selectors.
const (
	SourceMemory   = "memory"
	SourceSnapshot = "snapshot"
	// sourceJSONAlias is accepted for compatibility with older clients.
	sourceJSONAlias = "json"
)

const defaultDataPath = "trueskill_data.json"

// Service is the rating engine. All mutating operations (rebuild, push,
// snapshot load, recalculate) run under one exclusive lock because skill
// updates are order-sensitive and resets are wholesale; readers take the
// shared lock and only ever observe committed state.
type Service struct {
	mu sync.RWMutex

	env      rating.Env
	store    repository.Store
	rater    skill.Rater
	history  HistorySource
	dataPath string
	rctx     model.Context

	log logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithEnv sets the skill environment constants.
func WithEnv(env rating.Env) Option {
	return func(s *Service) {
		s.env = env
	}
}

// WithStore swaps the rating store implementation.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithRater swaps the skill-update primitive.
func WithRater(r skill.Rater) Option {
	return func(s *Service) {
		if r != nil {
			s.rater = r
		}
	}
}

// WithHistorySource sets the match-history client used by Rebuild.
func WithHistorySource(h HistorySource) Option {
	return func(s *Service) {
		s.history = h
	}
}

// WithDataPath sets the default snapshot file path.
func WithDataPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.dataPath = path
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// New constructs a Service with default configuration: the conventional
// environment, an empty in-memory store, and the two-team updater.
func New(opts ...Option) *Service {
	s := &Service{
		env:      rating.DefaultEnv(),
		store:    repository.NewMemStore(),
		rater:    skill.NewTwoTeam(),
		dataPath: defaultDataPath,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Get()
	}
	return s
}

// Env returns the running environment constants.
func (s *Service) Env(ctx context.Context) rating.Env {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.env
}

// Context returns what the last successful rebuild or load covered.
func (s *Service) Context(ctx context.Context) model.Context {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rctx
}

// Count returns the number of teams currently indexed.
func (s *Service) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.Count(ctx)
}

// SnapshotPath returns the default snapshot location.
func (s *Service) SnapshotPath() string {
	return s.dataPath
}

// Rebuild replaces the whole rating table from the match history of one
// event or one season. Every network call happens before the store is
// touched, and the replay runs against a staging table committed
// wholesale, so neither a data-source failure nor a mid-replay error
// leaves partial state behind.
func (s *Service) Rebuild(ctx context.Context, scope model.Scope) (model.Context, error) {
	if err := scope.Validate(); err != nil {
		return model.Context{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if s.history == nil {
		return model.Context{}, fmt.Errorf("%w: no match history source configured", ErrDataSource)
	}

	start := time.Now()
	matches, err := s.fetchScope(ctx, scope)
	if err != nil {
		return model.Context{}, fmt.Errorf("%w: %w", ErrDataSource, err)
	}

	// Chronological order across the whole scope; stable so same-time
	// matches keep the source order and replay stays deterministic.
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Time < matches[j].Time })

	s.mu.Lock()
	defer s.mu.Unlock()

	st := newStaging(s.env, nil)
	applied, err := s.applyAll(ctx, st, matches)
	if err != nil {
		return model.Context{}, err
	}
	s.store.ReplaceAll(ctx, st.table)
	s.rctx = model.ContextFor(scope, s.store.Count(ctx))

	metrics.RecordRebuildDuration(float64(time.Since(start).Milliseconds()))
	metrics.UpdateTeamsIndexed(s.rctx.TeamsIndexed)
	s.log.Info(ctx, "rebuild complete",
		logger.String("event_key", scope.EventKey),
		logger.Int("year", scope.Year),
		logger.Int("matches_applied", applied),
		logger.Int("teams_indexed", s.rctx.TeamsIndexed))
	return s.rctx, nil
}

// fetchScope resolves the full ordered match list for a scope.
func (s *Service) fetchScope(ctx context.Context, scope model.Scope) ([]model.Match, error) {
	if !scope.IsYear() {
		return s.history.ListMatches(ctx, scope.EventKey)
	}
	eventKeys, err := s.history.ListEvents(ctx, scope.Year)
	if err != nil {
		return nil, err
	}
	var matches []model.Match
	for _, key := range eventKeys {
		ms, err := s.history.ListMatches(ctx, key)
		if err != nil {
			return nil, err
		}
		matches = append(matches, ms...)
	}
	return matches, nil
}

// Push applies additional match results incrementally, in the given
// order. Unplayed or malformed records are skipped and counted out; a
// replay error commits nothing, so the store never holds a partially
// applied batch.
func (s *Service) Push(ctx context.Context, matches []model.Match) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := newStaging(s.env, s.store)
	applied, err := s.applyAll(ctx, st, matches)
	if err != nil {
		return applied, err
	}
	for key, r := range st.table {
		s.store.Set(ctx, key, r)
	}
	metrics.UpdateTeamsIndexed(s.store.Count(ctx))
	return applied, nil
}

// staging accumulates posterior ratings during a replay without touching
// the committed store. Reads check the staged table first, fall through
// to base when one is set, then to the prior.
type staging struct {
	env   rating.Env
	base  repository.Store
	table map[string]rating.Rating
}

func newStaging(env rating.Env, base repository.Store) *staging {
	return &staging{env: env, base: base, table: make(map[string]rating.Rating)}
}

func (st *staging) resolve(ctx context.Context, keys []string) []rating.Rating {
	out := make([]rating.Rating, len(keys))
	for i, key := range keys {
		out[i] = st.get(ctx, key)
	}
	return out
}

func (st *staging) get(ctx context.Context, key string) rating.Rating {
	if r, ok := st.table[key]; ok {
		return r
	}
	if st.base != nil {
		if r, ok := st.base.Get(ctx, key); ok {
			return r
		}
	}
	return st.env.Prior()
}

// applyAll feeds matches through the skill updater strictly in order, one
// at a time, into the staging table. The update is non-commutative, so
// this path never reorders or parallelizes. Callers hold the write lock
// and commit the table themselves on success.
func (s *Service) applyAll(ctx context.Context, st *staging, matches []model.Match) (int, error) {
	applied := 0
	for _, m := range matches {
		if !m.Played {
			continue
		}
		if err := m.Validate(); err != nil {
			s.log.Warn(ctx, "skipping malformed match", logger.Error(err))
			continue
		}
		if err := s.applyMatch(ctx, st, m); err != nil {
			return applied, err
		}
		applied++
	}
	metrics.RecordMatchesApplied(applied)
	return applied, nil
}

// applyMatch runs one outcome through the skill-update primitive and
// stages every participant's posterior. Ties are passed through as
// draws, never dropped.
func (s *Service) applyMatch(ctx context.Context, st *staging, m model.Match) error {
	outcome := skill.Draw
	switch {
	case m.RedScore > m.BlueScore:
		outcome = skill.AWins
	case m.BlueScore > m.RedScore:
		outcome = skill.BWins
	}

	redKeys := normalizeKeys(m.Red)
	blueKeys := normalizeKeys(m.Blue)
	red := st.resolve(ctx, redKeys)
	blue := st.resolve(ctx, blueKeys)

	newRed, newBlue, err := s.rater.Rate(ctx, s.env, red, blue, outcome)
	if err != nil {
		return err
	}
	for i, key := range redKeys {
		st.table[key] = newRed[i]
	}
	for i, key := range blueKeys {
		st.table[key] = newBlue[i]
	}
	return nil
}

// resolve maps keys to current beliefs, assigning the prior to teams
// never seen before. Reads never mutate the store.
func (s *Service) resolve(ctx context.Context, keys []string) []rating.Rating {
	out := make([]rating.Rating, len(keys))
	for i, key := range keys {
		if r, ok := s.store.Get(ctx, key); ok {
			out[i] = r
		} else {
			out[i] = s.env.Prior()
		}
	}
	return out
}

// TeamRating returns a team's current belief with derived metrics. A team
// never rated gets the prior, so this is total over all keys.
func (s *Service) TeamRating(ctx context.Context, key string) types.TeamEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	k := model.NormalizeKey(key)
	r, ok := s.store.Get(ctx, k)
	if !ok {
		r = s.env.Prior()
	}
	return types.TeamEntry{
		TeamKey:           k,
		Mu:                r.Mu,
		Sigma:             r.Sigma,
		Conservative:      r.Conservative(),
		ConfidencePercent: s.env.Confidence(r),
	}
}

// PredictMatch forecasts an alliance-vs-alliance matchup against the
// current committed store state. Pure read; unseen teams get the prior.
func (s *Service) PredictMatch(ctx context.Context, teamsA, teamsB []string) (rating.Prediction, error) {
	keysA := normalizeKeys(teamsA)
	keysB := normalizeKeys(teamsB)
	if len(keysA) == 0 || len(keysB) == 0 {
		return rating.Prediction{}, fmt.Errorf("%w: %w", ErrInvalidInput, model.ErrEmptyAlliance)
	}
	if overlap(keysA, keysB) {
		return rating.Prediction{}, fmt.Errorf("%w: %w", ErrInvalidInput, model.ErrOverlappingKeys)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	pred, err := rating.PredictMatch(s.env, s.resolve(ctx, keysA), s.resolve(ctx, keysB))
	if err != nil {
		return rating.Prediction{}, err
	}
	metrics.RecordPrediction()
	return pred, nil
}

// Leaderboard lists every indexed team with derived metrics, ordered by
// descending conservative rating.
func (s *Service) Leaderboard(ctx context.Context) []types.TeamEntry {
	s.mu.RLock()
	payload := snapshot.Build(s.env, s.rctx, s.store.All(ctx), time.Now())
	s.mu.RUnlock()
	return payload.Teams
}

// SaveSnapshot serializes the current state to the configured snapshot
// path atomically and returns the number of teams written.
func (s *Service) SaveSnapshot(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saveLocked(ctx)
}

// saveLocked builds and writes the snapshot. Callers hold at least the
// read lock.
func (s *Service) saveLocked(ctx context.Context) (int, error) {
	payload := snapshot.Build(s.env, s.rctx, s.store.All(ctx), time.Now())
	if err := snapshot.Write(ctx, s.dataPath, payload); err != nil {
		return 0, err
	}
	metrics.RecordSnapshotSave()
	s.log.Info(ctx, "snapshot saved",
		logger.String("path", s.dataPath),
		logger.Int("teams_indexed", len(payload.Teams)))
	return len(payload.Teams), nil
}

// LoadSnapshot replaces the rating table and context from a snapshot
// file. Only mu/sigma are trusted from disk; derived metrics are always
// recomputed. When adoptEnv is set the recorded environment replaces the
// running one. Parsing and validation complete before any state changes,
// so a bad file leaves everything untouched.
func (s *Service) LoadSnapshot(ctx context.Context, path string, adoptEnv bool) (int, model.Context, error) {
	if path == "" {
		path = s.dataPath
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.loadLocked(ctx, path, adoptEnv)
	if err != nil {
		return 0, model.Context{}, err
	}
	return n, s.rctx, nil
}

// loadLocked parses, validates, then commits a snapshot. Callers hold the
// write lock.
func (s *Service) loadLocked(ctx context.Context, path string, adoptEnv bool) (int, error) {
	payload, err := snapshot.Read(ctx, path)
	if err != nil {
		return 0, err
	}
	if adoptEnv {
		env := payload.Env()
		if err := env.Validate(); err != nil {
			return 0, fmt.Errorf("%w: %v", snapshot.ErrBadFormat, err)
		}
		s.env = env
	}
	s.store.ReplaceAll(ctx, payload.Ratings())
	s.rctx = payload.Context()

	metrics.RecordSnapshotLoad()
	metrics.UpdateTeamsIndexed(s.rctx.TeamsIndexed)
	s.log.Info(ctx, "snapshot loaded",
		logger.String("path", path),
		logger.Int("teams_indexed", s.rctx.TeamsIndexed))
	return s.rctx.TeamsIndexed, nil
}

// Recalculate recomputes every derived metric and re-saves the snapshot.
// With the snapshot source it reloads mu/sigma from disk first (without
// adopting the recorded environment). Idempotent: repeated calls with no
// intervening mutation write identical derived metrics.
func (s *Service) Recalculate(ctx context.Context, source string) (int, error) {
	switch source {
	case SourceMemory:
		s.mu.RLock()
		defer s.mu.RUnlock()
		return s.saveLocked(ctx)
	case SourceSnapshot, sourceJSONAlias:
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, err := s.loadLocked(ctx, s.dataPath, false); err != nil {
			return 0, err
		}
		return s.saveLocked(ctx)
	default:
		return 0, fmt.Errorf("%w: unknown recalculate source %q", ErrInvalidInput, source)
	}
}

// GetStats exposes service counters for the stats endpoint.
func (s *Service) GetStats() map[string]interface{} {
	ctx := context.Background()
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"teams_indexed": s.store.Count(ctx),
		"data_path":     s.dataPath,
		"env": map[string]float64{
			"mu":               s.env.Mu0,
			"sigma":            s.env.Sigma0,
			"beta":             s.env.Beta,
			"tau":              s.env.Tau,
			"draw_probability": s.env.DrawProbability,
		},
	}
	if s.rctx.EventKey != nil {
		stats["event_key"] = *s.rctx.EventKey
	}
	if s.rctx.Year != nil {
		stats["year"] = *s.rctx.Year
	}
	return stats
}

func normalizeKeys(keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if nk := model.NormalizeKey(k); nk != "" {
			out = append(out, nk)
		}
	}
	return out
}

func overlap(a, b []string) bool {
	set := make(map[string]struct{}, len(a))
	for _, k := range a {
		set[k] = struct{}{}
	}
	for _, k := range b {
		if _, ok := set[k]; ok {
			return true
		}
	}
	return false
}
