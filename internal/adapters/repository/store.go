// Package repository implements the append-only event log store.
package repository

import (
	"context"
	"iter"

	"github.com/okian/scobo/internal/domain/model"
)

// Appender durably appends one record per call.
type Appender interface {
	Append(ctx context.Context, rec model.EventRecord) error
}

// ForwardReader yields raw log lines in file order.
type ForwardReader interface {
	ReadAllForward(ctx context.Context) iter.Seq2[string, error]
}

// ReverseReader yields raw log lines last-appended first.
type ReverseReader interface {
	ReadAllReverse(ctx context.Context) iter.Seq2[string, error]
}

// Store is the full event log contract: one writer appends, any number of
// readers scan with independent handles.
type Store interface {
	Appender
	ForwardReader
	ReverseReader

	// EnsureExists creates parent directories and an empty log if absent.
	// It never truncates an existing log.
	EnsureExists(ctx context.Context) error

	// Size returns the current log size in bytes.
	Size(ctx context.Context) (int64, error)
}
