package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/zkarcade/arena/internal/api/handler"
	"github.com/zkarcade/arena/internal/api/middleware"
	"github.com/zkarcade/arena/internal/games"
	"github.com/zkarcade/arena/internal/live"
	"github.com/zkarcade/arena/internal/services/ranking"
	"github.com/zkarcade/arena/internal/services/session"
	"github.com/zkarcade/arena/internal/services/submission"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger            *slog.Logger
	Verifier          middleware.IdentityVerifier
	Registry          *games.Registry
	SessionController *session.Controller
	SubmissionPipe    *submission.Pipeline
	RankingService    *ranking.Service
	Rooms             *live.RoomManager
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	sessionHandler := handler.NewSessionHandler(cfg.SessionController, cfg.SubmissionPipe)
	leaderboardHandler := handler.NewLeaderboardHandler(cfg.RankingService)
	gamesHandler := handler.NewGamesHandler(cfg.Registry, cfg.RankingService)
	eventsHandler := handler.NewEventsHandler(cfg.Rooms, cfg.Registry)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.Verifier)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Game catalog routes (no auth)
	api.HandleFunc("/games", gamesHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/games/{game_id}", gamesHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/games/{game_id}/stats", gamesHandler.Stats).Methods(http.MethodGet)

	// Leaderboard routes (no auth)
	api.HandleFunc("/leaderboards/global", leaderboardHandler.Global).Methods(http.MethodGet)
	api.HandleFunc("/leaderboards/games/{game_id}", leaderboardHandler.Game).Methods(http.MethodGet)

	// Session routes (all require auth)
	sessions := api.PathPrefix("/sessions").Subrouter()
	sessions.Use(authMiddleware)
	sessions.HandleFunc("", sessionHandler.Start).Methods(http.MethodPost)
	sessions.HandleFunc("/{id}", sessionHandler.Get).Methods(http.MethodGet)
	sessions.HandleFunc("/{id}/score", sessionHandler.Submit).Methods(http.MethodPost)

	// Per-user rank (requires auth)
	rankings := api.PathPrefix("/rankings").Subrouter()
	rankings.Use(authMiddleware)
	rankings.HandleFunc("/me", leaderboardHandler.MyRank).Methods(http.MethodGet)

	// Live event stream (requires auth)
	events := api.PathPrefix("/events").Subrouter()
	events.Use(authMiddleware)
	events.HandleFunc("", eventsHandler.Stream).Methods(http.MethodGet)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
