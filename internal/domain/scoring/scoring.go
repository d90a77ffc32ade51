// Package scoring derives scoreboards from the event log.
//
// Nothing here keeps state between calls: every answer is a fresh replay of
// the log, so the log stays the single source of truth.
package scoring

import (
	"context"
	"iter"
	"sort"

	"github.com/okian/scobo/internal/domain/model"
	"github.com/okian/scobo/internal/domain/types"
)

// Scores maps a participant to a non-negative score. Participants that
// never won, or whose score was undone below zero, are absent.
type Scores map[string]int

// ForwardReader yields raw log lines in append order.
type ForwardReader interface {
	ReadAllForward(ctx context.Context) iter.Seq2[string, error]
}

// ReverseReader yields raw log lines last-appended first.
type ReverseReader interface {
	ReadAllReverse(ctx context.Context) iter.Seq2[string, error]
}

// Fold applies one record to scores in place.
//
// Won adds a point. Undo takes one away; if that would go below zero the
// participant is removed instead. A score of exactly zero stays listed.
func Fold(scores Scores, rec model.EventRecord) { //nolint:gocritic // records are small value types
	p := rec.Participant()
	switch rec.Kind {
	case model.KindWon:
		scores[p]++
	case model.KindUndo:
		v := scores[p] - 1
		if v < 0 {
			delete(scores, p)
			return
		}
		scores[p] = v
	}
}

// Rank orders scores for display: highest first, ties broken by name.
// Tied participants share a rank and the next rank skips accordingly.
func Rank(scores Scores) []types.Entry {
	entries := make([]types.Entry, 0, len(scores))
	for p, s := range scores {
		entries = append(entries, types.Entry{Participant: p, Score: s})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Participant < entries[j].Participant
	})
	for i := range entries {
		if i > 0 && entries[i].Score == entries[i-1].Score {
			entries[i].Rank = entries[i-1].Rank
			continue
		}
		entries[i].Rank = i + 1
	}
	return entries
}
