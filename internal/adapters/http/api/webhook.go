package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/okian/scobo/internal/adapters/chat"
	"github.com/okian/scobo/pkg/logger"
)

const maxUpdateBytes = 1 << 20

// WebhookHandler receives chat transport updates.
type WebhookHandler struct {
	updates UpdateHandler
	logger  logger.Logger
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(updates UpdateHandler, log logger.Logger) *WebhookHandler {
	return &WebhookHandler{updates: updates, logger: log}
}

// HandleUpdate handles POST /webhook. The reply, if any, is returned in the
// response body for the transport to execute; otherwise 204.
func (h *WebhookHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var upd chat.Update
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUpdateBytes)).Decode(&upd); err != nil {
		h.logger.Warn(r.Context(), "undecodable update", logger.Error(err))
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}

	reply, ok := h.updates.Handle(r.Context(), upd)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}
