package scoring

import "github.com/okian/scobo/pkg/logger"

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithLogger sets a custom logger for the aggregator.
func WithLogger(l logger.Logger) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.logger = l
		}
	}
}

// UndoOption applies a configuration option to the UndoResolver.
type UndoOption func(*UndoResolver)

// WithUndoLogger sets a custom logger for the resolver.
func WithUndoLogger(l logger.Logger) UndoOption {
	return func(r *UndoResolver) {
		if l != nil {
			r.logger = l
		}
	}
}
