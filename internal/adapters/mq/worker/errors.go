package worker

import "errors"

// Sentinel kinds for worker errors.
var (
	ErrShutdownTimeout = errors.New("log writer shutdown timed out")
	ErrWriterFailed    = errors.New("log writer failed")
)
