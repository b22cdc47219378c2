package tba

import "errors"

// Sentinel kinds for Blue Alliance client errors.
var (
	ErrUnauthorized = errors.New("tba auth rejected")
	ErrUnavailable  = errors.New("tba request failed")
	ErrMalformed    = errors.New("tba response malformed")
)
