package chat

import (
	"context"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/okian/scobo/internal/domain/dedupe"
	"github.com/okian/scobo/internal/domain/model"
	"github.com/okian/scobo/internal/domain/scoring"
	"github.com/okian/scobo/pkg/logger"
	"github.com/okian/scobo/pkg/metrics"
)

// Scoreboard is what the router needs from the service layer.
type Scoreboard interface {
	Submit(ctx context.Context, rec model.EventRecord) error
	Compute(ctx context.Context, chatID int64) (scoring.Scores, error)
	FindLastScoringEvent(ctx context.Context, chatID int64) (string, bool, error)
}

// Router dispatches chat commands and builds the replies.
type Router struct {
	board   Scoreboard
	deduper dedupe.Deduper
	botName string
	logger  logger.Logger

	rndMu sync.Mutex
	rnd   *rand.Rand // nil uses the global source
}

// NewRouter creates a router over board.
func NewRouter(board Scoreboard, opts ...Option) *Router {
	r := &Router{board: board}
	for _, opt := range opts {
		opt(r)
	}
	if r.deduper == nil {
		r.deduper = dedupe.NewInMemoryDeduper()
	}
	if r.logger == nil {
		r.logger = logger.Get().Named("router")
	}
	return r
}

// Handle processes one update. The boolean is false when the bot has
// nothing to say: no text, a redelivered update, or a command addressed to
// another bot.
func (r *Router) Handle(ctx context.Context, upd Update) (Reply, bool) {
	msg := upd.Message
	if msg == nil || strings.TrimSpace(msg.Text) == "" {
		return Reply{}, false
	}

	cmd, addressee := ParseCommand(msg.Text)
	if addressee != "" && r.botName != "" && !strings.EqualFold(addressee, r.botName) {
		return Reply{}, false
	}

	chatID := msg.Chat.ID
	sender := ""
	if msg.From != nil {
		sender = model.ResolveSenderName(msg.From.Username, msg.From.FirstName)
	}
	// A win nobody can be credited for is ignored, like a message without text.
	if cmd == CommandWon && sender == "" {
		r.logger.Debug(ctx, "ignoring /won without a resolvable sender", logger.Int64("chatID", chatID))
		return Reply{}, false
	}

	if upd.UpdateID != 0 && r.deduper.SeenAndRecord(ctx, upd.UpdateID) {
		metrics.RecordUpdateDuplicate()
		r.logger.Debug(ctx, "dropping redelivered update", logger.Int64("updateID", upd.UpdateID))
		return Reply{}, false
	}

	metrics.RecordCommand(cmd.String())

	var (
		text string
		err  error
	)
	switch cmd {
	case CommandWon:
		text, err = r.won(ctx, cmd, upd.UpdateID, chatID, sender, msg.Text)
	case CommandUndo:
		text, err = r.undo(ctx, cmd, upd.UpdateID, chatID, sender, msg.Text)
	case CommandBoard:
		text, err = r.scoreboard(ctx, chatID)
	default:
		text = textUnknown
	}

	if err != nil {
		// Let a transport redelivery of this update try again.
		if upd.UpdateID != 0 && cmd != CommandBoard {
			r.deduper.Unrecord(ctx, upd.UpdateID)
		}
		r.logger.Warn(ctx, "command failed",
			logger.String("command", cmd.String()),
			logger.Int64("chatID", chatID),
			logger.Error(err),
		)
		text = textFailed
	}
	return newReply(chatID, text), true
}

func (r *Router) won(ctx context.Context, cmd Command, updateID, chatID int64, sender, text string) (string, error) {
	rec := model.NewEventRecord(chatID, sender, cmd.Kind(), text)
	rec.UpdateID = updateID
	if err := r.board.Submit(ctx, rec); err != nil {
		return "", err
	}
	return wonText(r.pick(successEmojis), r.pick(congratz), sender), nil
}

func (r *Router) undo(ctx context.Context, cmd Command, updateID, chatID int64, sender, text string) (string, error) {
	target, ok, err := r.board.FindLastScoringEvent(ctx, chatID)
	if err != nil {
		return "", err
	}
	if !ok {
		return textNoUndo, nil
	}
	rec := model.NewEventRecord(chatID, sender, cmd.Kind(), text)
	rec.UpdateID = updateID
	rec.Target = target
	if err := r.board.Submit(ctx, rec); err != nil {
		return "", err
	}
	return undoText(target), nil
}

func (r *Router) scoreboard(ctx context.Context, chatID int64) (string, error) {
	scores, err := r.board.Compute(ctx, chatID)
	if err != nil {
		return "", err
	}
	return boardText(scoring.Rank(scores)), nil
}

func (r *Router) pick(options []string) string {
	if r.rnd == nil {
		return options[rand.IntN(len(options))]
	}
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return options[r.rnd.IntN(len(options))]
}
