package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/zkarcade/arena/internal/api/middleware"
	"github.com/zkarcade/arena/internal/api/request"
	"github.com/zkarcade/arena/internal/api/response"
	"github.com/zkarcade/arena/internal/model"
	"github.com/zkarcade/arena/internal/services/session"
	"github.com/zkarcade/arena/internal/services/submission"
)

// SessionHandler handles session lifecycle endpoints
type SessionHandler struct {
	sessions   *session.Controller
	submission *submission.Pipeline
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions *session.Controller, pipeline *submission.Pipeline) *SessionHandler {
	return &SessionHandler{
		sessions:   sessions,
		submission: pipeline,
	}
}

// Start handles POST /api/v1/sessions
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	userID := middleware.MustGetUserID(r.Context())

	var req request.StartSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.GameID == "" {
		WriteError(w, NewInvalidRequestError("game_id is required"))
		return
	}

	s, err := h.sessions.Start(r.Context(), userID, model.GameID(req.GameID), req.Settings)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.SessionFromModel(s))
}

// Get handles GET /api/v1/sessions/{id}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.MustGetUserID(r.Context())
	id := model.SessionID(mux.Vars(r)["id"])

	s, err := h.sessions.Get(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	// Sessions are visible only to their owner
	if s.UserID != userID {
		WriteError(w, model.ErrSessionNotOwned)
		return
	}

	response.JSON(w, http.StatusOK, response.SessionFromModel(s))
}

// Submit handles POST /api/v1/sessions/{id}/score
func (h *SessionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	userID := middleware.MustGetUserID(r.Context())
	id := model.SessionID(mux.Vars(r)["id"])

	var req request.SubmitScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	result, err := h.submission.Submit(r.Context(), id, userID, req.Score, req.ProofRef)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SubmissionResultFromModel(result))
}
