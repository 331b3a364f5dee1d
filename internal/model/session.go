package model

import (
	"time"

	"github.com/google/uuid"
)

// ExtractionMethod records which path produced a session's text.
type ExtractionMethod string

const (
	ExtractionTextLayer ExtractionMethod = "text_layer"
	ExtractionOCR       ExtractionMethod = "ocr"
)

// SessionState is the per-user practice state held between requests.
type SessionState struct {
	ID      uuid.UUID `json:"id"`
	TokenID string    `json:"-"`

	DocumentName     string           `json:"document_name,omitempty"`
	ExtractedText    string           `json:"extracted_text,omitempty"`
	ExtractionMethod ExtractionMethod `json:"extraction_method,omitempty"`

	Quiz      QuizSet      `json:"quiz,omitempty"`
	Answers   AnswerRecord `json:"answers,omitempty"`
	Submitted bool         `json:"submitted"`
	Result    *GradeResult `json:"result,omitempty"`

	// Timed exams only. StartedAt is nil when no timer is running.
	TimerMinutes int        `json:"timer_minutes,omitempty"`
	StartedAt    *time.Time `json:"started_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ResetDocument clears everything derived from a previous document.
func (s *SessionState) ResetDocument() {
	s.DocumentName = ""
	s.ExtractedText = ""
	s.ExtractionMethod = ""
	s.ResetQuiz()
}

// ResetQuiz drops the quiz, answers, submission and timer.
func (s *SessionState) ResetQuiz() {
	s.Quiz = nil
	s.Answers = nil
	s.Submitted = false
	s.Result = nil
	s.TimerMinutes = 0
	s.StartedAt = nil
}

// Remaining returns the time left on the exam timer at now, clamped at zero.
// ok is false when the session is untimed.
func (s *SessionState) Remaining(now time.Time) (remaining time.Duration, ok bool) {
	if s.StartedAt == nil || s.TimerMinutes <= 0 {
		return 0, false
	}
	end := s.StartedAt.Add(time.Duration(s.TimerMinutes) * time.Minute)
	remaining = end.Sub(now)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, true
}

// PracticeState is the read model returned to clients.
type PracticeState struct {
	SessionID        uuid.UUID        `json:"session_id"`
	DocumentName     string           `json:"document_name,omitempty"`
	ExtractedText    string           `json:"extracted_text,omitempty"`
	ExtractionMethod ExtractionMethod `json:"extraction_method,omitempty"`
	Quiz             []PublicQuizItem `json:"quiz,omitempty"`
	Answers          AnswerRecord     `json:"answers,omitempty"`
	Submitted        bool             `json:"submitted"`
	Result           *GradeResult     `json:"result,omitempty"`
	Timed            bool             `json:"timed"`
	RemainingTime    float64          `json:"remaining_time"` // seconds
	TimeUp           bool             `json:"time_up"`
}

// PublicQuizItem hides the answer and explanation until the quiz is submitted.
type PublicQuizItem struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Answer      string   `json:"answer,omitempty"`
	Explanation string   `json:"explanation,omitempty"`
}

// ProcessDocumentRequest carries form fields sent with a PDF upload.
type ProcessDocumentRequest struct {
	OCRLanguage string `form:"ocr_language" binding:"omitempty,max=32,ocrlang"`
}

// GenerateQuizRequest is the payload for generating a quiz.
type GenerateQuizRequest struct {
	QuestionCount int  `json:"question_count" binding:"omitempty,min=1,max=20"`
	MaxChars      int  `json:"max_chars" binding:"omitempty,min=1000,max=10000"`
	QuestionsOnly bool `json:"questions_only"`
	TimerMinutes  int  `json:"timer_minutes" binding:"omitempty,min=1,max=180"`
}

// SelectAnswerRequest records one option selection.
type SelectAnswerRequest struct {
	Index  *int   `json:"index" binding:"required,min=0"`
	Option string `json:"option" binding:"required"`
}

// SubmitAnswersRequest optionally carries a full answer sheet merged before grading.
type SubmitAnswersRequest struct {
	Answers map[int]string `json:"answers"`
}
