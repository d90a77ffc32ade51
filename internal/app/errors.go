package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotStarted = errors.New("service not started")
	ErrNotScoring = errors.New("command is not a scoring event")
	ErrRejected   = errors.New("event not accepted")
	ErrEventsLost = errors.New("queued events not persisted")
)
