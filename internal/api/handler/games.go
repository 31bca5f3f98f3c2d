package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/zkarcade/arena/internal/api/response"
	"github.com/zkarcade/arena/internal/games"
	"github.com/zkarcade/arena/internal/model"
	"github.com/zkarcade/arena/internal/services/ranking"
)

// GamesHandler handles game catalog endpoints
type GamesHandler struct {
	registry *games.Registry
	rankings *ranking.Service
}

// NewGamesHandler creates a new games handler
func NewGamesHandler(registry *games.Registry, rankings *ranking.Service) *GamesHandler {
	return &GamesHandler{
		registry: registry,
		rankings: rankings,
	}
}

// List handles GET /api/v1/games
func (h *GamesHandler) List(w http.ResponseWriter, r *http.Request) {
	kinds := h.registry.List()

	resp := make([]response.GameKind, len(kinds))
	for i, k := range kinds {
		resp[i] = response.GameKindFromModel(k)
	}

	response.JSON(w, http.StatusOK, resp)
}

// Get handles GET /api/v1/games/{game_id}
func (h *GamesHandler) Get(w http.ResponseWriter, r *http.Request) {
	gameID := model.GameID(mux.Vars(r)["game_id"])

	kind, err := h.registry.Get(gameID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameKindFromModel(kind))
}

// Stats handles GET /api/v1/games/{game_id}/stats
func (h *GamesHandler) Stats(w http.ResponseWriter, r *http.Request) {
	gameID := model.GameID(mux.Vars(r)["game_id"])

	if _, err := h.registry.Get(gameID); err != nil {
		WriteError(w, err)
		return
	}

	stats, err := h.rankings.GameStats(r.Context(), gameID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, stats)
}
