package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/tamilprep-backend/internal/llm"
	"github.com/stemsi/tamilprep-backend/internal/quiz"
	"github.com/stemsi/tamilprep-backend/internal/response"
	"github.com/stemsi/tamilprep-backend/internal/service"
	"github.com/stemsi/tamilprep-backend/internal/session"
)

// failWithError maps service and pipeline errors to response codes. Pipeline
// failures carry the underlying message in fields.detail so that provider
// errors (bad key, quota) reach the user.
func failWithError(c *gin.Context, log zerolog.Logger, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrSessionNotFound)

	case errors.Is(err, quiz.ErrExtraction):
		response.FailWithDetail(c, http.StatusUnprocessableEntity, response.ErrExtractionFailed, err)
	case errors.Is(err, quiz.ErrGeneration), errors.Is(err, llm.ErrMissingAPIKey):
		response.FailWithDetail(c, http.StatusBadGateway, response.ErrGenerationFailed, err)
	case errors.Is(err, quiz.ErrParse):
		response.FailWithDetail(c, http.StatusBadGateway, response.ErrParseFailed, err)
	case errors.Is(err, service.ErrSpeech):
		response.FailWithDetail(c, http.StatusUnprocessableEntity, response.ErrSpeechFailed, err)

	case errors.Is(err, service.ErrNoDocument):
		response.Fail(c, http.StatusConflict, response.ErrNoDocument)
	case errors.Is(err, service.ErrNoQuiz):
		response.Fail(c, http.StatusConflict, response.ErrNoQuiz)
	case errors.Is(err, service.ErrAlreadySubmitted):
		response.Fail(c, http.StatusConflict, response.ErrAlreadySubmitted)
	case errors.Is(err, service.ErrTimeUp):
		response.Fail(c, http.StatusConflict, response.ErrTimeUp)
	case errors.Is(err, service.ErrInvalidAnswer):
		response.FailWithDetail(c, http.StatusBadRequest, response.ErrInvalidAnswer, err)
	case errors.Is(err, service.ErrArchiveDisabled):
		response.Fail(c, http.StatusNotImplemented, response.ErrArchiveDisabled)

	case errors.Is(err, service.ErrUnsupportedFileType):
		response.Fail(c, http.StatusBadRequest, response.ErrUnsupportedFile)
	case errors.Is(err, service.ErrFileTooLarge):
		response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)

	default:
		log.Error().Err(err).Str("request_id", response.RequestID(c)).Msg("Unhandled practice error")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// failBinding reports request binding errors. Malformed bodies have only a
// "detail" entry and get INVALID_PAYLOAD instead of per-field errors.
func failBinding(c *gin.Context, fields map[string]string) {
	if _, ok := fields["detail"]; ok && len(fields) == 1 {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidPayload, fields)
		return
	}
	response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
}
