package model

// OptionsPerItem is the fixed number of choices every generated question carries.
const OptionsPerItem = 4

// QuizItem is one generated multiple-choice question.
// Answer must equal one of Options byte for byte; grading compares text, not indices.
type QuizItem struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Answer      string   `json:"answer"`
	Explanation string   `json:"explanation,omitempty"`
}

// QuizSet is the ordered list of questions produced by one generation request.
type QuizSet []QuizItem

// AnswerRecord maps a question index to the option text the user selected.
type AnswerRecord map[int]string

// VerdictStatus enumerates per-item grading outcomes.
type VerdictStatus string

const (
	VerdictCorrect   VerdictStatus = "CORRECT"
	VerdictIncorrect VerdictStatus = "INCORRECT"
)

// Verdict is the grading outcome for a single question.
type Verdict struct {
	Index         int           `json:"index"`
	Status        VerdictStatus `json:"status"`
	Selected      string        `json:"selected,omitempty"`
	CorrectAnswer string        `json:"correct_answer,omitempty"`
	Explanation   string        `json:"explanation,omitempty"`
}

// GradeResult is the score and per-item verdicts for one submission.
type GradeResult struct {
	Score    int       `json:"score"`
	Total    int       `json:"total"`
	Verdicts []Verdict `json:"verdicts"`
}
