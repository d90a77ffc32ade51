package repository

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/okian/scobo/internal/domain/model"
	"github.com/okian/scobo/pkg/metrics"
)

const (
	defaultBlockSize   = 4096
	defaultMaxLineSize = 1 << 20
	defaultFileMode    = 0o644
	defaultDirMode     = 0o755
)

// FileStore is a line-delimited JSON event log on the local filesystem.
// Every append opens the file in append mode, writes the separator and the
// record in one call, syncs and closes. Readers open their own handle per
// scan, so scans never share state with the writer or with each other.
type FileStore struct {
	path        string
	blockSize   int
	maxLineSize int
	fileMode    os.FileMode
}

// NewFileStore creates a store for the log at path.
func NewFileStore(path string, opts ...Option) *FileStore {
	s := &FileStore{
		path:        path,
		blockSize:   defaultBlockSize,
		maxLineSize: defaultMaxLineSize,
		fileMode:    defaultFileMode,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the log file location.
func (s *FileStore) Path() string { return s.path }

// EnsureExists creates the parent directories and an empty log file when
// missing. An existing log is left untouched.
func (s *FileStore) EnsureExists(_ context.Context) error {
	if err := os.MkdirAll(filepath.Dir(s.path), defaultDirMode); err != nil {
		return fmt.Errorf("%w: %w", ErrInit, err)
	}
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, s.fileMode)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInit, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrInit, err)
	}
	return nil
}

// Append writes one record. The record is durable once Append returns nil.
func (s *FileStore) Append(_ context.Context, rec model.EventRecord) error { //nolint:gocritic // records are small value types
	start := time.Now()

	line, err := model.Encode(rec)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEncode, err)
	}
	buf := make([]byte, 0, len(line)+1)
	buf = append(buf, '\n')
	buf = append(buf, line...)

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, s.fileMode)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAppend, err)
	}
	if _, err := f.Write(buf); err != nil {
		_ = f.Close()
		return fmt.Errorf("%w: %w", ErrAppend, err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("%w: %w", ErrAppend, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrAppend, err)
	}

	metrics.RecordAppendLatency(float64(time.Since(start).Microseconds()) / 1000)
	return nil
}

// ReadAllForward yields every non-blank line in append order. A missing log
// yields nothing. Lines longer than the configured maximum are skipped
// without ending the scan. The sequence stops early when ctx is cancelled.
func (s *FileStore) ReadAllForward(ctx context.Context) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		f, err := os.Open(s.path)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				yield("", fmt.Errorf("%w: %w", ErrRead, err))
			}
			return
		}
		defer f.Close()

		br := bufio.NewReaderSize(f, s.blockSize)
		for {
			if err := ctx.Err(); err != nil {
				yield("", err)
				return
			}
			raw, oversized, err := readLine(br, s.maxLineSize)
			if err != nil && !errors.Is(err, io.EOF) {
				yield("", fmt.Errorf("%w: %w", ErrRead, err))
				return
			}
			if oversized {
				metrics.RecordRecordSkipped("read_forward")
			} else if line := strings.TrimSuffix(string(raw), "\r"); strings.TrimSpace(line) != "" {
				if !yield(line, nil) {
					return
				}
			}
			if err != nil {
				return
			}
		}
	}
}

// readLine returns the next line without its newline. A line longer than
// maxLen is consumed up to its newline but not buffered, and reported as
// oversized. At the end of the file the last line comes with io.EOF.
func readLine(br *bufio.Reader, maxLen int) ([]byte, bool, error) {
	var (
		line      []byte
		oversized bool
	)
	for {
		chunk, err := br.ReadSlice('\n')
		if !oversized {
			line = append(line, chunk...)
			if len(line) > maxLen+1 {
				line, oversized = nil, true
			}
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		line = bytes.TrimSuffix(line, []byte{'\n'})
		if len(line) > maxLen {
			line, oversized = nil, true
		}
		return line, oversized, err
	}
}

// ReadAllReverse yields every non-blank line, last appended first. It reads
// fixed-size blocks from the end of the file, so finding recent records does
// not cost a full scan. Records appended after the scan starts are not seen.
func (s *FileStore) ReadAllReverse(ctx context.Context) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		f, err := os.Open(s.path)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				yield("", fmt.Errorf("%w: %w", ErrRead, err))
			}
			return
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			yield("", fmt.Errorf("%w: %w", ErrRead, err))
			return
		}

		r := newReverseLineReader(f, info.Size(), s.blockSize)
		for {
			if err := ctx.Err(); err != nil {
				yield("", err)
				return
			}
			line, ok, err := r.next()
			if err != nil {
				yield("", fmt.Errorf("%w: %w", ErrRead, err))
				return
			}
			if !ok {
				return
			}
			line = strings.TrimSuffix(line, "\r")
			if strings.TrimSpace(line) == "" {
				continue
			}
			if !yield(line, nil) {
				return
			}
		}
	}
}

// Size returns the log size in bytes; a missing log has size zero.
func (s *FileStore) Size(_ context.Context) (int64, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %w", ErrRead, err)
	}
	metrics.UpdateLogSize(info.Size())
	return info.Size(), nil
}
