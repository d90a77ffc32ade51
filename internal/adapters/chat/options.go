package chat

import (
	"math/rand/v2"

	"github.com/okian/scobo/internal/domain/dedupe"
	"github.com/okian/scobo/pkg/logger"
)

// Option applies a configuration option to the Router.
type Option func(*Router)

// WithLogger sets a custom logger for the router.
func WithLogger(l logger.Logger) Option {
	return func(r *Router) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithBotName sets the bot's username. Commands addressed to a different
// bot ("/won@other_bot") are ignored.
func WithBotName(name string) Option {
	return func(r *Router) {
		r.botName = name
	}
}

// WithDeduper sets the tracker used to drop redelivered updates.
func WithDeduper(d dedupe.Deduper) Option {
	return func(r *Router) {
		if d != nil {
			r.deduper = d
		}
	}
}

// WithRand sets the source used to pick celebration texts.
func WithRand(rnd *rand.Rand) Option {
	return func(r *Router) {
		if rnd != nil {
			r.rnd = rnd
		}
	}
}
