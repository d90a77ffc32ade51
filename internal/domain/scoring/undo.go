package scoring

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/scobo/internal/domain/model"
	"github.com/okian/scobo/pkg/logger"
	"github.com/okian/scobo/pkg/metrics"
)

// UndoResolver finds whose point an undo should take back.
type UndoResolver struct {
	src    ReverseReader
	logger logger.Logger
}

// NewUndoResolver creates a resolver reading from src.
func NewUndoResolver(src ReverseReader, opts ...UndoOption) *UndoResolver {
	r := &UndoResolver{src: src}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logger.Get().Named("undo-resolver")
	}
	return r
}

// FindLastScoringEvent returns the participant of the most recent Won in
// chatID. Undo records are passed over, so two undos in a row resolve to the
// same Won. It reports false when the chat has no Won at all.
func (r *UndoResolver) FindLastScoringEvent(ctx context.Context, chatID int64) (string, bool, error) {
	start := time.Now()
	scanned := 0
	defer func() {
		metrics.RecordRecordsScanned("undo", scanned)
		metrics.RecordReplayLatency("undo", float64(time.Since(start).Microseconds())/1000)
	}()

	for line, err := range r.src.ReadAllReverse(ctx) {
		if err != nil {
			metrics.RecordErrorByComponent("undo_resolver", "read_error")
			return "", false, fmt.Errorf("%w: %w", ErrReplay, err)
		}
		scanned++
		rec, err := model.Decode([]byte(line))
		if err != nil {
			metrics.RecordRecordSkipped("undo")
			r.logger.Debug(ctx, "skipping malformed record", logger.Error(err))
			continue
		}
		if rec.ChatID == chatID && rec.Kind == model.KindWon {
			return rec.Participant(), true, nil
		}
	}
	return "", false, nil
}
