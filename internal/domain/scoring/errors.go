package scoring

import "errors"

// Sentinel kinds for replay errors.
var (
	ErrReplay = errors.New("event log replay failed")
)
