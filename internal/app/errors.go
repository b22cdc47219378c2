package app

import "errors"

// Sentinel kinds for engine errors. Handlers map these onto HTTP statuses.
var (
	// ErrInvalidInput marks a malformed or constraint-violating request,
	// rejected before any shared state is touched.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDataSource marks a match-history retrieval failure; the enclosing
	// rebuild aborts with the store untouched.
	ErrDataSource = errors.New("match history source failed")
)
