package scoring

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/scobo/internal/domain/model"
	"github.com/okian/scobo/pkg/logger"
	"github.com/okian/scobo/pkg/metrics"
)

// Aggregator computes per-chat scores by replaying the whole log.
type Aggregator struct {
	src    ForwardReader
	logger logger.Logger
}

// NewAggregator creates an aggregator reading from src.
func NewAggregator(src ForwardReader, opts ...Option) *Aggregator {
	a := &Aggregator{src: src}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = logger.Get().Named("aggregator")
	}
	return a
}

// Compute returns the scores of chatID. Records of other chats and lines
// that do not decode are skipped. Only failures to read the log itself are
// returned.
func (a *Aggregator) Compute(ctx context.Context, chatID int64) (Scores, error) {
	start := time.Now()
	scores := make(Scores)
	scanned, skipped := 0, 0

	for line, err := range a.src.ReadAllForward(ctx) {
		if err != nil {
			metrics.RecordErrorByComponent("aggregator", "read_error")
			return nil, fmt.Errorf("%w: %w", ErrReplay, err)
		}
		scanned++
		rec, err := model.Decode([]byte(line))
		if err != nil {
			skipped++
			metrics.RecordRecordSkipped("compute")
			a.logger.Debug(ctx, "skipping malformed record", logger.Error(err))
			continue
		}
		if rec.ChatID != chatID {
			continue
		}
		Fold(scores, rec)
	}

	metrics.RecordRecordsScanned("compute", scanned)
	metrics.RecordReplayLatency("compute", float64(time.Since(start).Microseconds())/1000)
	a.logger.Debug(ctx, "scores computed",
		logger.Int64("chatID", chatID),
		logger.Int("scanned", scanned),
		logger.Int("skipped", skipped),
		logger.Int("participants", len(scores)),
	)
	return scores, nil
}
