// Package worker contains the single background writer that drains the
// ingest queue into the event log.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/scobo/internal/adapters/mq/queue"
	"github.com/okian/scobo/internal/adapters/repository"
	"github.com/okian/scobo/pkg/logger"
	"github.com/okian/scobo/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultPollInterval = time.Second
	defaultNiceness     = 10
)

// Event is what the writer reads off the queue.
type Event = queue.Event

// Poller is the consumer side of the ingest queue.
type Poller interface {
	Poll() (Event, bool)
}

// Appender persists one event.
type Appender interface {
	Append(ctx context.Context, rec Event) error
}

// Worker is a long-running background consumer.
type Worker interface {
	// Run starts the worker loop until ctx is canceled, Shutdown completes
	// or a fatal error occurs.
	Run(ctx context.Context)

	// Shutdown stops the worker after everything queued has been handled.
	Shutdown(ctx context.Context) error
}

// LogWriter is the only mutator of the event log. It polls the queue and
// appends one event at a time, idling for the poll interval when there is
// nothing to write.
type LogWriter struct {
	queue        Poller
	store        Appender
	name         string
	pollInterval time.Duration
	niceness     int
	isFatal      func(error) bool

	state     atomic.Int32
	persisted atomic.Int64
	errMu     sync.Mutex
	err       error

	// Shutdown control
	shutdownOnce sync.Once
	shutdown     chan struct{}
	done         chan struct{}

	logger logger.Logger
}

// NewLogWriter creates a writer draining q into store.
func NewLogWriter(q Poller, store Appender, opts ...Option) *LogWriter {
	w := &LogWriter{
		queue:        q,
		store:        store,
		name:         "log-writer",
		pollInterval: defaultPollInterval,
		niceness:     defaultNiceness,
		isFatal:      repository.IsFatal,
		shutdown:     make(chan struct{}),
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run starts the writer loop. It is meant to be called once on its own
// goroutine; later calls return immediately.
func (w *LogWriter) Run(ctx context.Context) {
	if !w.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		return
	}
	defer close(w.done)

	if err := lowerThreadPriority(w.niceness); err != nil {
		w.logger.Warn(ctx, "could not lower writer priority",
			logger.Int("niceness", w.niceness), logger.Error(err))
	}

	metrics.UpdateWriterUp(true)
	w.logger.Info(ctx, "log writer started", logger.String("poll_interval", w.pollInterval.String()))

	timer := time.NewTimer(w.pollInterval)
	defer timer.Stop()

	for {
		// Once the run context is cancelled nothing more is taken off the
		// queue; whatever is left there is reported as lost by the caller.
		if ctx.Err() != nil {
			w.finish(ctx, StateStopped)
			return
		}

		event, ok := w.queue.Poll()
		if ok {
			if err := w.persist(ctx, event); err != nil {
				w.fail(ctx, err)
				return
			}
			continue
		}

		if w.State() == StateDraining {
			w.finish(ctx, StateStopped)
			return
		}

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(w.pollInterval)

		select {
		case <-ctx.Done():
			w.finish(ctx, StateStopped)
			return
		case <-w.shutdown:
			w.state.CompareAndSwap(int32(StateRunning), int32(StateDraining))
		case <-timer.C:
		}
	}
}

// Shutdown asks the writer to drain the queue and stop. It returns
// ErrShutdownTimeout if ctx expires before the drain completes. Callers
// are expected to close the queue first. After a timeout, cancelling the
// context given to Run stops the writer before its next poll; wait on Done
// before counting what is left in the queue.
func (w *LogWriter) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	// Never started: nothing to drain, and Run will refuse to start.
	if w.state.CompareAndSwap(int32(StateIdle), int32(StateStopped)) {
		close(w.done)
		return nil
	}

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("%w: %w", ErrShutdownTimeout, ctx.Err())
	}
}

// Done is closed when Run has returned.
func (w *LogWriter) Done() <-chan struct{} { return w.done }

// State returns the current lifecycle phase.
func (w *LogWriter) State() State { return State(w.state.Load()) }

// Err returns the fatal error that stopped the writer, if any.
func (w *LogWriter) Err() error {
	w.errMu.Lock()
	defer w.errMu.Unlock()
	return w.err
}

// Persisted returns how many events were appended successfully.
func (w *LogWriter) Persisted() int64 { return w.persisted.Load() }

// persist appends one event. Only fatal errors are returned; everything
// else is logged and the event is dropped.
func (w *LogWriter) persist(ctx context.Context, event Event) error { //nolint:gocritic // hugeParam: events are passed by value
	start := time.Now()
	err := w.store.Append(ctx, event)
	if err != nil {
		metrics.RecordErrorLatency("worker", "append", float64(time.Since(start).Microseconds())/1000)
	}

	switch {
	case err == nil:
		w.persisted.Add(1)
		metrics.RecordEventPersisted()
		return nil
	case errors.Is(err, repository.ErrEncode):
		metrics.RecordPersistError("encode")
		metrics.RecordErrorByComponent("worker", "encode_error")
		metrics.RecordErrorByType("encode_error", "medium")
		w.logger.Error(ctx, "event could not be encoded, dropped",
			logger.String("eventID", event.ID),
			logger.Int64("chatID", event.ChatID),
			logger.Error(err),
		)
		return nil
	case w.isFatal(err):
		metrics.RecordPersistError("fatal")
		metrics.RecordErrorByComponent("worker", "fatal_io")
		metrics.RecordErrorByType("fatal_io", "critical")
		return fmt.Errorf("%w: event %s: %w", ErrWriterFailed, event.ID, err)
	default:
		metrics.RecordPersistError("transient")
		metrics.RecordErrorByComponent("worker", "transient_io")
		metrics.RecordErrorByType("transient_io", "high")
		w.logger.Error(ctx, "append failed, event dropped",
			logger.String("eventID", event.ID),
			logger.Int64("chatID", event.ChatID),
			logger.Error(err),
		)
		return nil
	}
}

func (w *LogWriter) fail(ctx context.Context, err error) {
	w.errMu.Lock()
	w.err = err
	w.errMu.Unlock()
	w.state.Store(int32(StateFailed))
	metrics.UpdateWriterUp(false)
	w.logger.Error(ctx, "log writer stopped on unrecoverable error; new events will not be persisted",
		logger.Int64("persisted", w.Persisted()),
		logger.Error(err),
	)
}

func (w *LogWriter) finish(ctx context.Context, s State) {
	w.state.Store(int32(s))
	metrics.UpdateWriterUp(false)
	w.logger.Info(ctx, "log writer stopped", logger.Int64("persisted", w.Persisted()))
}
