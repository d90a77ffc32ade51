package repository

import "os"

// Option applies a configuration option to the FileStore.
type Option func(*FileStore)

// WithBlockSize sets the chunk size used by reverse scans.
func WithBlockSize(size int) Option {
	return func(s *FileStore) {
		if size > 0 {
			s.blockSize = size
		}
	}
}

// WithFileMode sets the permission bits of a newly created log.
func WithFileMode(mode os.FileMode) Option {
	return func(s *FileStore) {
		if mode != 0 {
			s.fileMode = mode
		}
	}
}

// WithMaxLineSize caps the length of a single record on forward scans.
// Longer lines are skipped.
func WithMaxLineSize(size int) Option {
	return func(s *FileStore) {
		if size > 0 {
			s.maxLineSize = size
		}
	}
}
