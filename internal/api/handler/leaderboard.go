package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/zkarcade/arena/internal/api/middleware"
	"github.com/zkarcade/arena/internal/api/response"
	"github.com/zkarcade/arena/internal/model"
	"github.com/zkarcade/arena/internal/services/ranking"
)

// LeaderboardHandler handles ranking query endpoints
type LeaderboardHandler struct {
	rankings *ranking.Service
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(rankings *ranking.Service) *LeaderboardHandler {
	return &LeaderboardHandler{rankings: rankings}
}

// Global handles GET /api/v1/leaderboards/global
func (h *LeaderboardHandler) Global(w http.ResponseWriter, r *http.Request) {
	period, limit, offset, err := rankingQuery(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	page, err := h.rankings.GlobalLeaderboard(r.Context(), period, limit, offset)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.LeaderboardFromModel(page))
}

// Game handles GET /api/v1/leaderboards/games/{game_id}
func (h *LeaderboardHandler) Game(w http.ResponseWriter, r *http.Request) {
	gameID := model.GameID(mux.Vars(r)["game_id"])

	period, limit, offset, err := rankingQuery(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	page, err := h.rankings.GameLeaderboard(r.Context(), gameID, period, limit, offset)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.LeaderboardFromModel(page))
}

// MyRank handles GET /api/v1/rankings/me
func (h *LeaderboardHandler) MyRank(w http.ResponseWriter, r *http.Request) {
	userID := middleware.MustGetUserID(r.Context())
	gameID := model.GameID(r.URL.Query().Get("game_id"))

	snapshot, err := h.rankings.UserRank(r.Context(), userID, gameID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, snapshot)
}

// rankingQuery parses the shared period/limit/offset query parameters.
// Period defaults to all-time; limit 0 lets the service apply its default.
func rankingQuery(r *http.Request) (model.Period, int, int, error) {
	q := r.URL.Query()

	period := model.PeriodAllTime
	if p := q.Get("period"); p != "" {
		period = model.Period(p)
	}

	limit, err := intParam(q.Get("limit"))
	if err != nil {
		return "", 0, 0, NewInvalidRequestError("limit must be an integer")
	}
	offset, err := intParam(q.Get("offset"))
	if err != nil {
		return "", 0, 0, NewInvalidRequestError("offset must be an integer")
	}

	return period, limit, offset, nil
}

func intParam(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
