// Package service wires the event log pipeline together and exposes the
// operations used by the chat router, the HTTP API and the CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	eventqueue "github.com/okian/scobo/internal/adapters/mq/queue"
	"github.com/okian/scobo/internal/adapters/mq/worker"
	"github.com/okian/scobo/internal/adapters/repository"
	"github.com/okian/scobo/internal/config"
	"github.com/okian/scobo/internal/domain/model"
	"github.com/okian/scobo/internal/domain/scoring"
	"github.com/okian/scobo/internal/domain/types"
	"github.com/okian/scobo/pkg/logger"
	"github.com/okian/scobo/pkg/metrics"
)

const tracerName = "github.com/okian/scobo/internal/app"

// Default service configuration constants.
const (
	defaultPollInterval   = time.Second
	defaultWriterNiceness = 10
	defaultShutdownGrace  = 30 * time.Second
	writerSettleTimeout   = 5 * time.Second
)

// Service owns the single writer, the ingest queue and the replay
// components for one event log.
type Service struct {
	mu sync.RWMutex

	// Core components
	store      *repository.FileStore
	queue      *eventqueue.InMemoryQueue
	writer     *worker.LogWriter
	aggregator *scoring.Aggregator
	resolver   *scoring.UndoResolver

	// Configuration
	eventLogPath   string
	queueCapacity  int
	pollInterval   time.Duration
	writerNiceness int
	shutdownGrace  time.Duration

	// State
	started   bool
	stopped   bool
	lost      int
	cancelRun context.CancelFunc

	logger logger.Logger
	tracer trace.Tracer
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		eventLogPath:   config.DefaultEventLogPath(config.DefaultBotName),
		pollInterval:   defaultPollInterval,
		writerNiceness: defaultWriterNiceness,
		shutdownGrace:  defaultShutdownGrace,
		tracer:         otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start prepares the event log and launches the writer. The writer runs
// until Stop, independent of ctx.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting scoreboard service...", logger.String("eventLog", s.eventLogPath))

	s.store = repository.NewFileStore(s.eventLogPath)
	if err := s.store.EnsureExists(ctx); err != nil {
		return fmt.Errorf("prepare event log: %w", err)
	}
	s.queue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueCapacity))
	s.writer = worker.NewLogWriter(s.queue, s.store,
		worker.WithLogger(s.logger.Named("log-writer")),
		worker.WithPollInterval(s.pollInterval),
		worker.WithNiceness(s.writerNiceness),
	)
	s.aggregator = scoring.NewAggregator(s.store, scoring.WithLogger(s.logger.Named("aggregator")))
	s.resolver = scoring.NewUndoResolver(s.store, scoring.WithUndoLogger(s.logger.Named("undo-resolver")))

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancelRun = cancel
	go s.writer.Run(runCtx)

	if size, err := s.store.Size(ctx); err == nil {
		s.logger.Info(ctx, "scoreboard service started",
			logger.Int64("logSizeBytes", size),
			logger.Int("queueCapacity", s.queueCapacity),
		)
	}

	s.started = true
	return nil
}

// Stop closes the queue and waits up to the shutdown grace for the writer
// to drain it. Events still queued afterwards are lost; their number is
// logged, counted in metrics and returned via the error.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started || s.stopped {
		return nil
	}

	s.logger.Info(ctx, "stopping scoreboard service...", logger.Int("pending", s.queue.Len(ctx)))
	_ = s.queue.Close()

	shutdownCtx, cancel := context.WithTimeout(ctx, s.shutdownGrace)
	defer cancel()
	err := s.writer.Shutdown(shutdownCtx)
	s.cancelRun()
	if err != nil {
		// Let an in-flight append settle so the lost count matches the log.
		select {
		case <-s.writer.Done():
		case <-time.After(writerSettleTimeout):
			s.logger.Warn(ctx, "log writer did not stop after cancellation")
		}
	}

	s.stopped = true
	s.lost = s.queue.Len(ctx)
	if s.lost > 0 {
		metrics.RecordEventsLost(s.lost)
		s.logger.Error(ctx, "events lost on shutdown",
			logger.Int("lost", s.lost),
			logger.String("writerState", s.writer.State().String()),
		)
		return errors.Join(fmt.Errorf("%w: %d", ErrEventsLost, s.lost), err, s.writer.Err())
	}
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "scoreboard service stopped", logger.Int64("persisted", s.writer.Persisted()))
	return nil
}

// Submit hands a scoring event to the writer. A nil error means the event
// was queued, not that it is already durable.
func (s *Service) Submit(ctx context.Context, rec model.EventRecord) error { //nolint:gocritic // records are small value types
	ctx, span := s.tracer.Start(ctx, "Service.Submit", trace.WithAttributes(
		attribute.Int64("chat.id", rec.ChatID),
		attribute.String("event.kind", string(rec.Kind)),
	))
	defer span.End()

	if !rec.Kind.IsScoring() {
		metrics.RecordEventRejected("not_scoring")
		return spanError(span, ErrNotScoring)
	}

	s.mu.RLock()
	q := s.queue
	started := s.started
	s.mu.RUnlock()
	if !started {
		metrics.RecordEventRejected("not_started")
		return spanError(span, ErrNotStarted)
	}

	if err := q.Offer(ctx, rec); err != nil {
		reason := "context"
		switch {
		case errors.Is(err, eventqueue.ErrClosed):
			reason = "closed"
		case errors.Is(err, eventqueue.ErrFull):
			reason = "full"
		}
		metrics.RecordEventRejected(reason)
		s.logger.Warn(ctx, "event rejected",
			logger.String("eventID", rec.ID),
			logger.String("reason", reason),
		)
		return spanError(span, fmt.Errorf("%w: %w", ErrRejected, err))
	}

	metrics.RecordEventAccepted()
	s.logger.Debug(ctx, "event queued",
		logger.String("eventID", rec.ID),
		logger.Int64("chatID", rec.ChatID),
		logger.String("participant", rec.Participant()),
		logger.String("kind", string(rec.Kind)),
	)
	return nil
}

// Compute replays the log into the scores of chatID.
func (s *Service) Compute(ctx context.Context, chatID int64) (scoring.Scores, error) {
	ctx, span := s.tracer.Start(ctx, "Service.Compute", trace.WithAttributes(attribute.Int64("chat.id", chatID)))
	defer span.End()

	r, err := s.replayers()
	if err != nil {
		return nil, spanError(span, err)
	}
	scores, err := r.aggregator.Compute(ctx, chatID)
	if err != nil {
		return nil, spanError(span, err)
	}
	span.SetAttributes(attribute.Int("participants", len(scores)))
	return scores, nil
}

// FindLastScoringEvent returns the participant an undo in chatID would
// compensate.
func (s *Service) FindLastScoringEvent(ctx context.Context, chatID int64) (string, bool, error) {
	ctx, span := s.tracer.Start(ctx, "Service.FindLastScoringEvent", trace.WithAttributes(attribute.Int64("chat.id", chatID)))
	defer span.End()

	r, err := s.replayers()
	if err != nil {
		return "", false, spanError(span, err)
	}
	p, ok, err := r.resolver.FindLastScoringEvent(ctx, chatID)
	if err != nil {
		return "", false, spanError(span, err)
	}
	span.SetAttributes(attribute.Bool("found", ok))
	return p, ok, nil
}

// Leaderboard returns the ranked scores of chatID.
func (s *Service) Leaderboard(ctx context.Context, chatID int64) ([]types.Entry, error) {
	scores, err := s.Compute(ctx, chatID)
	if err != nil {
		return nil, err
	}
	return scoring.Rank(scores), nil
}

// UndoTarget wraps FindLastScoringEvent in its API shape.
func (s *Service) UndoTarget(ctx context.Context, chatID int64) (types.UndoTarget, error) {
	p, ok, err := s.FindLastScoringEvent(ctx, chatID)
	if err != nil {
		return types.UndoTarget{}, err
	}
	return types.UndoTarget{ChatID: chatID, Participant: p, Found: ok}, nil
}

// Health reports whether queued events are still being persisted.
func (s *Service) Health(ctx context.Context) types.Health {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return types.Health{Status: "degraded", WriterState: worker.StateIdle.String()}
	}

	state := s.writer.State()
	h := types.Health{
		Status:      "ok",
		WriterState: state.String(),
		QueueLength: s.queue.Len(ctx),
		Persisted:   s.writer.Persisted(),
	}
	if state == worker.StateFailed || state == worker.StateStopped {
		h.Status = "degraded"
	}
	if err := s.writer.Err(); err != nil {
		h.WriterError = err.Error()
	}
	return h
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":       s.started,
		"eventLogPath":  s.eventLogPath,
		"queueCapacity": s.queueCapacity,
		"pollInterval":  s.pollInterval.String(),
	}

	if s.started {
		queueLen := s.queue.Len(ctx)
		stats["queueLength"] = queueLen
		stats["writerState"] = s.writer.State().String()
		stats["persisted"] = s.writer.Persisted()
		stats["lostOnShutdown"] = s.lost
		if size, err := s.store.Size(ctx); err == nil {
			stats["logSizeBytes"] = size
		}
		metrics.UpdateQueueSize(queueLen)
	}

	return stats
}

type replayers struct {
	aggregator *scoring.Aggregator
	resolver   *scoring.UndoResolver
}

// replayers returns the read side; it stays usable after Stop so late
// readers still see the durable log.
func (s *Service) replayers() (replayers, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return replayers{}, ErrNotStarted
	}
	return replayers{aggregator: s.aggregator, resolver: s.resolver}, nil
}

func spanError(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
