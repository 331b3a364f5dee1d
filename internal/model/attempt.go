package model

import (
	"time"

	"github.com/google/uuid"
)

// PracticeAttempt is an archived graded submission. Documents and extracted
// text are never stored, only the outcome.
type PracticeAttempt struct {
	ID           uuid.UUID `json:"id"`
	SessionID    uuid.UUID `json:"session_id"`
	DocumentName string    `json:"document_name"`
	Score        int       `json:"score"`
	Total        int       `json:"total"`
	Timed        bool      `json:"timed"`
	SubmittedAt  time.Time `json:"submitted_at"`
}
