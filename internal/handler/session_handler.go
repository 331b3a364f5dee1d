package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/tamilprep-backend/internal/middleware"
	"github.com/stemsi/tamilprep-backend/internal/response"
	"github.com/stemsi/tamilprep-backend/internal/service"
)

// SessionHandler opens and closes practice sessions.
type SessionHandler struct {
	practice *service.PracticeService
	log      zerolog.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(practice *service.PracticeService, log zerolog.Logger) *SessionHandler {
	return &SessionHandler{practice: practice, log: log}
}

// Create godoc
// POST /api/v1/sessions
// Starts an empty practice session and returns its bearer token.
func (h *SessionHandler) Create(c *gin.Context) {
	token, state, err := h.practice.CreateSession(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to create session")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"token": token,
		"state": state,
	})
}

// Delete godoc
// DELETE /api/v1/sessions
// Ends the caller's session and drops all of its state.
func (h *SessionHandler) Delete(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	if err := h.practice.EndSession(c.Request.Context(), claims.SessionID); err != nil {
		h.log.Error().Err(err).Msg("Failed to end session")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Session ended."})
}
