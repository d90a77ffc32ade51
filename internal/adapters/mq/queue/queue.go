// Package queue is the hand-off between command ingestion and the single
// log writer.
//
// Producers never block: Enqueue either accepts the event or reports why
// it could not. The consumer polls without blocking and decides for itself
// how long to idle when the queue is empty.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/okian/scobo/internal/domain/model"
	"github.com/okian/scobo/pkg/metrics"
)

const defaultInitialSize = 64

// Event is the payload type flowing through the queue.
type Event = model.EventRecord

// Queue provides non-blocking multi-producer enqueue and single-consumer poll.
type Queue interface {
	// Enqueue adds an event to the tail. It returns false when the event
	// was not accepted.
	Enqueue(ctx context.Context, e Event) bool

	// Offer is Enqueue with the rejection reason.
	Offer(ctx context.Context, e Event) error

	// Poll removes and returns the head, or reports false when empty.
	// Events accepted before Close are still returned after it.
	Poll() (Event, bool)

	// Len returns the current number of queued events.
	Len(ctx context.Context) int

	// Close stops accepting new events. Queued events remain pollable.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue with a mutex-guarded FIFO slice.
type InMemoryQueue struct {
	mu          sync.Mutex
	items       []Event
	head        int
	capacity    int // 0 means unbounded
	initialSize int
	closed      bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{initialSize: defaultInitialSize}
	for _, opt := range opts {
		opt(q)
	}
	q.items = make([]Event, 0, q.initialSize)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)

	return q
}

// Enqueue adds an event to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, e Event) bool { //nolint:gocritic // hugeParam: events are passed by value into the slice
	return q.Offer(ctx, e) == nil
}

// Offer adds an event to the queue, returning ErrClosed, ErrFull or the
// context error on rejection.
func (q *InMemoryQueue) Offer(ctx context.Context, e Event) error { //nolint:gocritic // hugeParam: events are passed by value into the slice
	start := time.Now()
	defer func() {
		metrics.RecordQueueEnqueueLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if err := ctx.Err(); err != nil {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return err
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "closed")
		return ErrClosed
	}
	if q.capacity > 0 && q.lenLocked() >= q.capacity {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "capacity_exceeded")
		return ErrFull
	}

	q.items = append(q.items, e)
	metrics.RecordQueueEnqueue()
	metrics.UpdateQueueSize(q.lenLocked())
	return nil
}

// Poll removes and returns the oldest queued event.
func (q *InMemoryQueue) Poll() (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.head == len(q.items) {
		return Event{}, false
	}
	e := q.items[q.head]
	q.items[q.head] = Event{}
	q.head++

	// Compact once the consumed prefix dominates the backing array.
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	} else if q.head > len(q.items)/2 && q.head >= q.initialSize {
		n := copy(q.items, q.items[q.head:])
		q.items = q.items[:n]
		q.head = 0
	}

	metrics.RecordQueueDequeue()
	metrics.UpdateQueueSize(q.lenLocked())
	return e, true
}

// Len returns the current number of queued events.
func (q *InMemoryQueue) Len(_ context.Context) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.lenLocked()
}

func (q *InMemoryQueue) lenLocked() int { return len(q.items) - q.head }

// Close stops accepting new events. It is safe to call more than once.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}
