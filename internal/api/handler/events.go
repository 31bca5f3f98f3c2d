package handler

import (
	"net/http"
	"strings"

	"github.com/zkarcade/arena/internal/api/middleware"
	"github.com/zkarcade/arena/internal/games"
	"github.com/zkarcade/arena/internal/live"
	"github.com/zkarcade/arena/internal/model"
)

// EventsHandler handles the SSE event stream endpoint
type EventsHandler struct {
	rooms    *live.RoomManager
	registry *games.Registry
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(rooms *live.RoomManager, registry *games.Registry) *EventsHandler {
	return &EventsHandler{
		rooms:    rooms,
		registry: registry,
	}
}

// Stream handles GET /api/v1/events.
// The client always joins its own user room; the optional games query
// parameter is a comma-separated list of game rooms to join as well.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	userID := middleware.MustGetUserID(r.Context())

	joined := []model.Room{model.UserRoom(userID)}
	for _, raw := range strings.Split(r.URL.Query().Get("games"), ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		gameID := model.GameID(raw)
		if _, err := h.registry.Get(gameID); err != nil {
			WriteError(w, err)
			return
		}
		joined = append(joined, model.GameRoom(gameID))
	}

	live.ServeSSE(w, r, h.rooms, userID, joined)
}
