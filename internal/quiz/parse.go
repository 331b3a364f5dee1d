package quiz

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/stemsi/tamilprep-backend/internal/model"
)

// ParseQuizResponse strips code fences from raw and decodes the remainder as a
// JSON array of quiz items. Every failure is reported as ErrParse wrapped with
// the reason; it never panics on model output.
func ParseQuizResponse(raw string) (model.QuizSet, error) {
	body := StripFences(raw)
	if body == "" {
		return nil, fmt.Errorf("%w: empty response", ErrParse)
	}

	var items []model.QuizItem
	if err := json.Unmarshal([]byte(body), &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: response contains no questions", ErrParse)
	}

	for i, item := range items {
		if err := validateItem(item); err != nil {
			return nil, fmt.Errorf("%w: item %d: %v", ErrParse, i, err)
		}
	}

	return model.QuizSet(items), nil
}

func validateItem(item model.QuizItem) error {
	if strings.TrimSpace(item.Question) == "" {
		return fmt.Errorf("missing question")
	}
	if len(item.Options) != model.OptionsPerItem {
		return fmt.Errorf("expected %d options, got %d", model.OptionsPerItem, len(item.Options))
	}
	if item.Answer == "" {
		return fmt.Errorf("missing answer")
	}
	// Grading is exact text equality, so an answer outside the options could
	// never be scored correct.
	if !slices.Contains(item.Options, item.Answer) {
		return fmt.Errorf("answer %q is not one of the options", item.Answer)
	}
	return nil
}
