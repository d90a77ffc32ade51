// Package types contains common types used across the application
package types

// Entry represents a leaderboard entry
type Entry struct {
	Rank        int    `json:"rank"`
	Participant string `json:"participant"`
	Score       int    `json:"score"`
}

// UndoTarget is the read shape of an undo resolution for one chat.
type UndoTarget struct {
	ChatID      int64  `json:"chat_id"`
	Participant string `json:"participant,omitempty"`
	Found       bool   `json:"found"`
}

// Health describes the state of the log writer pipeline.
type Health struct {
	Status      string `json:"status"` // "ok" or "degraded"
	WriterState string `json:"writer_state"`
	WriterError string `json:"writer_error,omitempty"`
	QueueLength int    `json:"queue_length"`
	Persisted   int64  `json:"persisted"`
}

// Healthy reports whether the writer can still drain the queue.
func (h Health) Healthy() bool {
	return h.Status == "ok"
}
