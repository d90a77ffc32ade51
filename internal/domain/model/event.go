// Package model contains domain models passed between layers.
package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CommandKind classifies a chat command.
type CommandKind string

// Known command kinds. Only Won and Undo are ever written to the log.
const (
	KindWon     CommandKind = "won"
	KindUndo    CommandKind = "undo"
	KindUnknown CommandKind = "unknown"
)

// IsScoring reports whether records of this kind belong in the event log.
func (k CommandKind) IsScoring() bool {
	return k == KindWon || k == KindUndo
}

// EventRecord is one scoring command as stored in the event log.
// Physical append order is the event order; TS is kept for auditing only.
type EventRecord struct {
	ID         string      `json:"id"`                  // uuid assigned at ingestion
	UpdateID   int64       `json:"update_id,omitempty"` // transport update id
	ChatID     int64       `json:"chat_id"`             // scoreboard scope
	SenderName string      `json:"sender"`              // resolved once, never re-resolved
	Kind       CommandKind `json:"command"`
	Target     string      `json:"target,omitempty"` // undo only: compensated participant
	Text       string      `json:"text,omitempty"`   // raw command text
	TS         time.Time   `json:"ts"`
}

// NewEventRecord builds a record with a fresh id and the current time.
func NewEventRecord(chatID int64, sender string, kind CommandKind, text string) EventRecord {
	return EventRecord{
		ID:         uuid.NewString(),
		ChatID:     chatID,
		SenderName: sender,
		Kind:       kind,
		Text:       text,
		TS:         time.Now().UTC(),
	}
}

// Participant returns whose score the record affects.
// Undo records written before targets existed fall back to the sender.
func (r EventRecord) Participant() string {
	if r.Kind == KindUndo && r.Target != "" {
		return r.Target
	}
	return r.SenderName
}

// ResolveSenderName applies the display identity fallback chain:
// preferred handle first, then first name.
func ResolveSenderName(handle, firstName string) string {
	if h := strings.TrimSpace(handle); h != "" {
		return h
	}
	return strings.TrimSpace(firstName)
}

// Encode serializes a record into a single log line (without separator).
func Encode(r EventRecord) ([]byte, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncodeRecord, err)
	}
	return b, nil
}

// Decode parses one log line. Lines that are not valid JSON, lack a chat id
// or carry a non-scoring command are rejected with ErrMalformedRecord.
func Decode(line []byte) (EventRecord, error) {
	var r EventRecord
	if err := json.Unmarshal(line, &r); err != nil {
		return EventRecord{}, fmt.Errorf("%w: %w", ErrMalformedRecord, err)
	}
	if r.ChatID == 0 {
		return EventRecord{}, fmt.Errorf("%w: missing chat_id", ErrMalformedRecord)
	}
	if !r.Kind.IsScoring() {
		return EventRecord{}, fmt.Errorf("%w: command %q", ErrMalformedRecord, r.Kind)
	}
	return r, nil
}
