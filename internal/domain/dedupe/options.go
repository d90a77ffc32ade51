package dedupe

// Option applies a configuration option to the deduper.
type Option func(*inMemoryDeduper)

// WithMaxSize sets how many update ids are remembered.
// If maxSize > 0 the oldest id is forgotten once the window is full.
// If maxSize <= 0 every id is kept for the lifetime of the process.
func WithMaxSize(maxSize int) Option {
	return func(d *inMemoryDeduper) {
		d.maxSize = maxSize
	}
}
