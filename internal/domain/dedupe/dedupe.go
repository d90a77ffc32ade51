// Package dedupe suppresses redelivered transport updates.
//
// Chat transports retry webhook deliveries they did not see acknowledged.
// Each update carries a monotonically assigned id; remembering a window of
// recent ids keeps a retried /won from scoring twice.
package dedupe

import (
	"context"
	"sync"
)

const defaultMaxSize = 10_000

// Deduper records seen update ids to ensure at-most-once ingestion.
type Deduper interface {
	// SeenAndRecord atomically checks if id was seen and records it if not.
	// Returns true if id was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, id int64) bool

	// Unrecord forgets id so a redelivery is processed again. Used when an
	// update was recorded but its event could not be queued.
	Unrecord(ctx context.Context, id int64)

	Size() int64
}

type slot struct {
	id  int64
	gen uint64
}

// inMemoryDeduper keeps ids in a map. In bounded mode a ring of slots
// remembers insertion order so the oldest id is evicted first; a generation
// counter makes slots left behind by Unrecord harmless.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[int64]uint64 // id -> generation that recorded it
	ring    []slot
	next    int
	gen     uint64
	maxSize int
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[int64]uint64)
	if d.maxSize > 0 {
		d.ring = make([]slot, 0, d.maxSize)
	}
	return d
}

// SeenAndRecord atomically checks if id was seen and records it if not.
func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, id int64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}

	d.gen++
	d.seen[id] = d.gen
	if d.maxSize <= 0 {
		return false
	}

	if len(d.ring) < d.maxSize {
		d.ring = append(d.ring, slot{id: id, gen: d.gen})
		return false
	}
	old := d.ring[d.next]
	if g, ok := d.seen[old.id]; ok && g == old.gen {
		delete(d.seen, old.id)
	}
	d.ring[d.next] = slot{id: id, gen: d.gen}
	d.next = (d.next + 1) % d.maxSize
	return false
}

// Unrecord removes an id from the seen set.
func (d *inMemoryDeduper) Unrecord(_ context.Context, id int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.seen, id)
}

// Size returns the current number of remembered ids.
func (d *inMemoryDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(len(d.seen))
}
