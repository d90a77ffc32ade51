// Package api wires the HTTP surface: the chat webhook plus read-only
// scoreboard and operational endpoints.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/okian/scobo/internal/adapters/chat"
	"github.com/okian/scobo/internal/domain/types"
	"github.com/okian/scobo/pkg/logger"
)

// Dependencies required by the read handlers. Using an interface bundle
// keeps the handler layer loosely coupled to the service.
type Dependencies interface {
	StatsProvider
	Leaderboard(ctx context.Context, chatID int64) ([]Entry, error)
	UndoTarget(ctx context.Context, chatID int64) (types.UndoTarget, error)
	Health(ctx context.Context) types.Health
}

// UpdateHandler turns a chat update into an optional reply.
type UpdateHandler interface {
	Handle(ctx context.Context, upd chat.Update) (chat.Reply, bool)
}

// Entry mirrors the read shape returned by leaderboard queries.
type Entry = types.Entry

// Server wires HTTP routes for the bot.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	webhookHandler     *WebhookHandler
	leaderboardHandler *LeaderboardHandler
	logger             logger.Logger
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, updates UpdateHandler, log logger.Logger) *Server {
	if log == nil {
		log = logger.Get().Named("http")
	}
	return &Server{
		healthHandler:      NewHealthHandler(deps),
		statsHandler:       NewStatsHandler(deps),
		webhookHandler:     NewWebhookHandler(updates, log),
		leaderboardHandler: NewLeaderboardHandler(deps),
		logger:             log,
	}
}

// Routes returns the chi router serving every endpoint.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(s.logger))

	r.Post("/webhook", MetricsMiddleware(s.webhookHandler.HandleUpdate, "webhook"))
	r.Route("/chats/{chatID}", func(r chi.Router) {
		r.Get("/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
		r.Get("/undo-target", MetricsMiddleware(s.leaderboardHandler.HandleGetUndoTarget, "undo_target"))
	})
	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	r.Method(http.MethodGet, "/metrics", MetricsHandler())

	return r
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// chatIDParam reads the {chatID} path parameter. Group chats have
// negative ids, so only zero is rejected.
func chatIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "chatID"), 10, 64)
	if err != nil || id == 0 {
		return 0, ErrBadChatID
	}
	return id, nil
}
