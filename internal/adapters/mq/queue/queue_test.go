package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/okian/scobo/internal/domain/model"
)

func event(sender string) model.EventRecord {
	return model.NewEventRecord(1, sender, model.KindWon, "/won")
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue()
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
	if _, ok := q.Poll(); ok {
		t.Error("expected poll on empty queue to report false")
	}

	if !q.Enqueue(ctx, event("alice")) {
		t.Error("expected enqueue to succeed")
	}
	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	e, ok := q.Poll()
	if !ok || e.SenderName != "alice" {
		t.Errorf("expected alice, got %v (ok=%v)", e.SenderName, ok)
	}
	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestInMemoryQueue_FIFO(t *testing.T) {
	q := NewInMemoryQueue(WithInitialSize(2))
	ctx := context.Background()

	for round := 0; round < 3; round++ {
		for i := 0; i < 50; i++ {
			if !q.Enqueue(ctx, event(fmt.Sprintf("u%d", i))) {
				t.Fatalf("enqueue %d failed", i)
			}
		}
		// Interleave partial drains to exercise compaction.
		for i := 0; i < 50; i++ {
			e, ok := q.Poll()
			if !ok {
				t.Fatalf("poll %d: queue unexpectedly empty", i)
			}
			if want := fmt.Sprintf("u%d", i); e.SenderName != want {
				t.Fatalf("round %d: expected %s, got %s", round, want, e.SenderName)
			}
		}
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if !q.Enqueue(ctx, event("a")) || !q.Enqueue(ctx, event("b")) {
		t.Fatal("expected enqueue to succeed")
	}
	if err := q.Offer(ctx, event("c")); !errors.Is(err, ErrFull) {
		t.Errorf("expected ErrFull, got %v", err)
	}
	if l := q.Len(ctx); l != 2 {
		t.Errorf("expected length 2, got %d", l)
	}

	q.Poll()
	if !q.Enqueue(ctx, event("c")) {
		t.Error("expected enqueue to succeed after a poll freed room")
	}
}

func TestInMemoryQueue_UnboundedByDefault(t *testing.T) {
	q := NewInMemoryQueue()
	ctx := context.Background()
	for i := 0; i < 10_000; i++ {
		if !q.Enqueue(ctx, event("x")) {
			t.Fatalf("enqueue %d rejected on unbounded queue", i)
		}
	}
	if l := q.Len(ctx); l != 10_000 {
		t.Errorf("expected 10000, got %d", l)
	}
}

func TestInMemoryQueue_CancelledContext(t *testing.T) {
	q := NewInMemoryQueue()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := q.Offer(ctx, event("a")); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if q.Len(context.Background()) != 0 {
		t.Error("cancelled offer must not enqueue")
	}
}

func TestInMemoryQueue_ConcurrentAccess(t *testing.T) {
	q := NewInMemoryQueue()
	ctx := context.Background()
	numGoroutines := 10
	numEvents := 100

	var wg sync.WaitGroup
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < numEvents; j++ {
				if !q.Enqueue(ctx, event(fmt.Sprintf("p%d_%d", id, j))) {
					t.Errorf("enqueue p%d_%d rejected", id, j)
				}
			}
		}(i)
	}

	seen := make(map[string]bool)
	lastPerProducer := make(map[string]int)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for len(seen) < numGoroutines*numEvents {
			e, ok := q.Poll()
			if !ok {
				continue
			}
			var id, seq int
			if _, err := fmt.Sscanf(e.SenderName, "p%d_%d", &id, &seq); err != nil {
				t.Errorf("bad sender %q", e.SenderName)
				return
			}
			key := fmt.Sprint(id)
			if prev, ok := lastPerProducer[key]; ok && seq <= prev {
				t.Errorf("producer %d out of order: %d after %d", id, seq, prev)
			}
			lastPerProducer[key] = seq
			seen[e.SenderName] = true
		}
	}()

	wg.Wait()
	<-done

	if len(seen) != numGoroutines*numEvents {
		t.Errorf("expected %d distinct events, got %d", numGoroutines*numEvents, len(seen))
	}
	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected final length 0, got %d", l)
	}
}

func TestInMemoryQueue_GracefulShutdown(t *testing.T) {
	q := NewInMemoryQueue()
	ctx := context.Background()

	q.Enqueue(ctx, event("a"))
	q.Enqueue(ctx, event("b"))

	if q.IsClosed() {
		t.Error("expected queue to be open initially")
	}
	if err := q.Close(); err != nil {
		t.Errorf("expected close to succeed, got error: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to be closed after Close()")
	}
	if err := q.Offer(ctx, event("c")); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}

	// Events accepted before Close stay pollable.
	for _, want := range []string{"a", "b"} {
		e, ok := q.Poll()
		if !ok || e.SenderName != want {
			t.Errorf("expected %s after close, got %q (ok=%v)", want, e.SenderName, ok)
		}
	}
	if _, ok := q.Poll(); ok {
		t.Error("expected drained queue to be empty")
	}

	if err := q.Close(); err != nil {
		t.Errorf("expected second close to succeed, got error: %v", err)
	}
}
