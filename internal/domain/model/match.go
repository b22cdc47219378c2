// Package model contains domain models passed between layers.
package model

import (
	"errors"
	"strings"
)

// Sentinel kinds for model validation errors.
var (
	ErrEmptyAlliance   = errors.New("alliance must not be empty")
	ErrOverlappingKeys = errors.New("alliances must not share teams")
	ErrInvalidScope    = errors.New("scope must name exactly one of event or year")
)

// Match is one alliance-vs-alliance result. Red/Blue follow the alliance
// naming used by FRC events; scores are only meaningful when Played is
// set. Time is unix seconds and orders matches chronologically during a
// rebuild.
type Match struct {
	Red       []string
	Blue      []string
	RedScore  int
	BlueScore int
	Played    bool
	Time      int64
}

// Validate checks the structural invariants: both alliances non-empty and
// disjoint under key normalization. Keys that normalize away (whitespace
// only) do not count toward an alliance, so a match that would reach the
// updater with an empty side is rejected here.
func (m Match) Validate() error {
	seen := make(map[string]struct{}, len(m.Red))
	redKeys := 0
	for _, k := range m.Red {
		nk := NormalizeKey(k)
		if nk == "" {
			continue
		}
		redKeys++
		seen[nk] = struct{}{}
	}
	blueKeys := 0
	for _, k := range m.Blue {
		nk := NormalizeKey(k)
		if nk == "" {
			continue
		}
		blueKeys++
		if _, ok := seen[nk]; ok {
			return ErrOverlappingKeys
		}
	}
	if redKeys == 0 || blueKeys == 0 {
		return ErrEmptyAlliance
	}
	return nil
}

// NormalizeKey canonicalizes a team key the way the store indexes it.
func NormalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// Scope selects what a rebuild covers: a single event or a whole season.
// Exactly one of the two fields is set.
type Scope struct {
	EventKey string
	Year     int
}

// EventScope builds a single-event scope.
func EventScope(eventKey string) Scope {
	return Scope{EventKey: eventKey}
}

// YearScope builds a whole-season scope.
func YearScope(year int) Scope {
	return Scope{Year: year}
}

// IsYear reports whether the scope spans a season.
func (s Scope) IsYear() bool {
	return s.EventKey == "" && s.Year != 0
}

// Validate rejects scopes that name both or neither granularity.
func (s Scope) Validate() error {
	hasEvent := strings.TrimSpace(s.EventKey) != ""
	hasYear := s.Year != 0
	if hasEvent == hasYear {
		return ErrInvalidScope
	}
	return nil
}

// Context records what the last successful rebuild or snapshot load
// covered. EventKey and Year are mutually exclusive; both nil means no
// rebuild has happened yet.
type Context struct {
	EventKey     *string
	Year         *int
	TeamsIndexed int
}

// ContextFor derives the context recorded after a successful rebuild.
func ContextFor(scope Scope, teamsIndexed int) Context {
	c := Context{TeamsIndexed: teamsIndexed}
	if scope.IsYear() {
		y := scope.Year
		c.Year = &y
	} else if scope.EventKey != "" {
		k := scope.EventKey
		c.EventKey = &k
	}
	return c
}
