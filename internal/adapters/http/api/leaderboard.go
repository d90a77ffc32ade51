package api

import (
	"context"
	"net/http"

	"github.com/okian/scobo/internal/domain/types"
)

// LeaderboardDependencies defines the read operations of a chat scoreboard.
type LeaderboardDependencies interface {
	Leaderboard(ctx context.Context, chatID int64) ([]Entry, error)
	UndoTarget(ctx context.Context, chatID int64) (types.UndoTarget, error)
}

// LeaderboardHandler handles per-chat scoreboard requests.
type LeaderboardHandler struct {
	deps LeaderboardDependencies
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps LeaderboardDependencies) *LeaderboardHandler {
	return &LeaderboardHandler{deps: deps}
}

// HandleGetLeaderboard handles GET /chats/{chatID}/leaderboard.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	chatID, err := chatIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	entries, err := h.deps.Leaderboard(r.Context(), chatID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	if entries == nil {
		entries = []Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// HandleGetUndoTarget handles GET /chats/{chatID}/undo-target.
func (h *LeaderboardHandler) HandleGetUndoTarget(w http.ResponseWriter, r *http.Request) {
	chatID, err := chatIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	target, err := h.deps.UndoTarget(r.Context(), chatID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, target)
}
