package service

import (
	"time"

	"github.com/okian/scobo/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithEventLogPath sets the event log file location.
func WithEventLogPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.eventLogPath = path
		}
	}
}

// WithQueueCapacity bounds the ingest queue. Zero keeps it unbounded.
func WithQueueCapacity(capacity int) Option {
	return func(s *Service) {
		if capacity >= 0 {
			s.queueCapacity = capacity
		}
	}
}

// WithPollInterval sets how long the writer idles on an empty queue.
func WithPollInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.pollInterval = d
		}
	}
}

// WithWriterNiceness sets the nice value of the writer thread.
func WithWriterNiceness(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.writerNiceness = n
		}
	}
}

// WithShutdownGrace bounds how long Stop waits for the queue to drain.
func WithShutdownGrace(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.shutdownGrace = d
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}
