package handler

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/tamilprep-backend/internal/middleware"
	"github.com/stemsi/tamilprep-backend/internal/model"
	"github.com/stemsi/tamilprep-backend/internal/response"
	"github.com/stemsi/tamilprep-backend/internal/service"
	"github.com/stemsi/tamilprep-backend/internal/validator"
)

// HeaderLLMAPIKey carries the caller's own generative service key.
const HeaderLLMAPIKey = "X-LLM-API-Key"

// PracticeHandler handles the document, quiz and grading endpoints.
type PracticeHandler struct {
	practice *service.PracticeService
	media    *service.MediaService
	log      zerolog.Logger
}

// NewPracticeHandler creates a new PracticeHandler.
func NewPracticeHandler(practice *service.PracticeService, media *service.MediaService, log zerolog.Logger) *PracticeHandler {
	return &PracticeHandler{practice: practice, media: media, log: log}
}

// GetState godoc
// GET /api/v1/practice/state
// Returns the session state with the exam timer recomputed.
func (h *PracticeHandler) GetState(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	state, err := h.practice.GetState(c.Request.Context(), claims.SessionID)
	if err != nil {
		failWithError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, state)
}

// ProcessDocument godoc
// POST /api/v1/practice/document
// Accepts a PDF (multipart field "file") and extracts its text.
func (h *PracticeHandler) ProcessDocument(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.ProcessDocumentRequest
	if fields := validator.BindForm(c, &req); fields != nil {
		failBinding(c, fields)
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}
	defer file.Close()

	doc, err := h.media.ReadPDF(file, header)
	if err != nil {
		failWithError(c, h.log, err)
		return
	}

	state, err := h.practice.ProcessDocument(c.Request.Context(), claims.SessionID, filepath.Base(header.Filename), doc, req.OCRLanguage, c.GetHeader(HeaderLLMAPIKey))
	if err != nil {
		h.log.Warn().Err(err).Str("session_id", claims.SessionID.String()).Msg("Document processing failed")
		failWithError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, state)
}

// GenerateQuiz godoc
// POST /api/v1/practice/quiz
// Generates a new quiz from the session's text.
func (h *PracticeHandler) GenerateQuiz(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.GenerateQuizRequest
	if fields := validator.Bind(c, &req); fields != nil {
		failBinding(c, fields)
		return
	}

	state, err := h.practice.GenerateQuiz(c.Request.Context(), claims.SessionID, c.GetHeader(HeaderLLMAPIKey), req)
	if err != nil {
		failWithError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, state)
}

// SelectAnswer godoc
// PUT /api/v1/practice/answers
// Records the option selected for one question.
func (h *PracticeHandler) SelectAnswer(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.SelectAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		failBinding(c, fields)
		return
	}

	state, err := h.practice.SelectAnswer(c.Request.Context(), claims.SessionID, *req.Index, req.Option)
	if err != nil {
		failWithError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, state)
}

// Submit godoc
// POST /api/v1/practice/submit
// Grades the quiz and returns the score with per-question verdicts.
func (h *PracticeHandler) Submit(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.SubmitAnswersRequest
	if fields := validator.Bind(c, &req); fields != nil {
		failBinding(c, fields)
		return
	}

	state, err := h.practice.Submit(c.Request.Context(), claims.SessionID, req.Answers)
	if err != nil {
		failWithError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, state)
}

// ReadAloud godoc
// POST /api/v1/practice/audio
// Synthesizes speech for the start of the extracted text.
func (h *PracticeHandler) ReadAloud(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	url, err := h.practice.ReadAloud(c.Request.Context(), claims.SessionID, c.GetHeader(HeaderLLMAPIKey))
	if err != nil {
		h.log.Warn().Err(err).Msg("Read-aloud failed")
		failWithError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"url": url})
}

// History godoc
// GET /api/v1/practice/history
// Lists archived graded attempts of the caller's session.
func (h *PracticeHandler) History(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	attempts, err := h.practice.History(c.Request.Context(), claims.SessionID)
	if err != nil {
		failWithError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attempts": attempts})
}
