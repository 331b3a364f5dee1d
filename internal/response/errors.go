package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Session ───────────────────────────────────────────────────────
	ErrSessionNotFound    ErrCode = "SESSION_NOT_FOUND"
	ErrSessionInvalidated ErrCode = "SESSION_INVALIDATED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"
	ErrInvalidAnswer  ErrCode = "INVALID_ANSWER"

	// ─── Pipeline ──────────────────────────────────────────────────────
	ErrExtractionFailed ErrCode = "EXTRACTION_FAILED"
	ErrGenerationFailed ErrCode = "GENERATION_FAILED"
	ErrParseFailed      ErrCode = "PARSE_FAILED"
	ErrSpeechFailed     ErrCode = "SPEECH_FAILED"

	// ─── Practice flow ─────────────────────────────────────────────────
	ErrNoDocument       ErrCode = "NO_DOCUMENT"
	ErrNoQuiz           ErrCode = "NO_QUIZ"
	ErrAlreadySubmitted ErrCode = "ALREADY_SUBMITTED"
	ErrTimeUp           ErrCode = "TIME_UP"
	ErrArchiveDisabled  ErrCode = "HISTORY_DISABLED"

	// ─── Media ─────────────────────────────────────────────────────────
	ErrFileRequired    ErrCode = "FILE_REQUIRED"
	ErrUnsupportedFile ErrCode = "UNSUPPORTED_FILE_TYPE"
	ErrFileTooLarge    ErrCode = "FILE_TOO_LARGE"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrNotFound    ErrCode = "NOT_FOUND"
	ErrInternal    ErrCode = "INTERNAL_ERROR"
	ErrUnavailable ErrCode = "SERVICE_UNAVAILABLE"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Session ───────────────────────────────────────────────────────
	case ErrSessionNotFound:
		return "Practice session not found or expired. Start a new session."
	case ErrSessionInvalidated:
		return "This session has been closed. Start a new session."
	case ErrTokenRequired:
		return "Session token is required."
	case ErrTokenInvalid:
		return "Session token is invalid."
	case ErrTokenExpired:
		return "Session token has expired."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Check the fields."
	case ErrInvalidPayload:
		return "Request payload is invalid."
	case ErrInvalidAnswer:
		return "The selected option does not belong to that question."

	// ─── Pipeline ──────────────────────────────────────────────────────
	case ErrExtractionFailed:
		return "No text could be extracted from the document."
	case ErrGenerationFailed:
		return "The quiz service call failed."
	case ErrParseFailed:
		return "The quiz service returned a response that could not be read. Try again."
	case ErrSpeechFailed:
		return "Audio could not be generated."

	// ─── Practice flow ─────────────────────────────────────────────────
	case ErrNoDocument:
		return "Upload and process a document first."
	case ErrNoQuiz:
		return "Generate a quiz first."
	case ErrAlreadySubmitted:
		return "This quiz has already been submitted."
	case ErrTimeUp:
		return "Time is up. Submit the quiz to see your score."
	case ErrArchiveDisabled:
		return "Attempt history is not enabled on this server."

	// ─── Media ─────────────────────────────────────────────────────────
	case ErrFileRequired:
		return "A PDF file is required."
	case ErrUnsupportedFile:
		return "Only PDF documents are supported."
	case ErrFileTooLarge:
		return "The file exceeds the maximum allowed size."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrInternal:
		return "An internal server error occurred."
	case ErrUnavailable:
		return "A backing service is unavailable."

	default:
		return "An unknown error occurred."
	}
}
