package snapshot

import "errors"

// Sentinel kinds for snapshot errors.
var (
	ErrBadFormat = errors.New("snapshot format invalid")
)
