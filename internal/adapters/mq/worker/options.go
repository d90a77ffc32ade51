package worker

import (
	"time"

	"github.com/okian/scobo/pkg/logger"
)

// Option applies a configuration option to the LogWriter.
type Option func(*LogWriter)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *LogWriter) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(logger logger.Logger) Option {
	return func(w *LogWriter) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithPollInterval sets how long the worker idles on an empty queue.
func WithPollInterval(d time.Duration) Option {
	return func(w *LogWriter) {
		if d > 0 {
			w.pollInterval = d
		}
	}
}

// WithNiceness sets the nice value applied to the worker thread.
// Zero leaves the thread at normal priority.
func WithNiceness(n int) Option {
	return func(w *LogWriter) {
		if n >= 0 {
			w.niceness = n
		}
	}
}

// WithFatalClassifier overrides which append errors stop the worker.
func WithFatalClassifier(fn func(error) bool) Option {
	return func(w *LogWriter) {
		if fn != nil {
			w.isFatal = fn
		}
	}
}
