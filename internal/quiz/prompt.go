package quiz

import (
	"fmt"
	"strings"
)

const (
	DefaultMaxChars = 10000
	MinMaxChars     = 1000
)

// Truncate returns the first n runes of s. Slicing by rune keeps multi-byte
// Tamil characters intact.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// BuildPrompt renders the generation instruction for count questions over the
// first maxChars runes of source.
func BuildPrompt(source string, count, maxChars int) string {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are a Tamil teacher. Create exactly %d multiple choice questions in Tamil based on the text below.\n", count)
	b.WriteString("Return ONLY a JSON array and nothing else. Each element must have this shape:\n")
	b.WriteString(`{"question": "...", "options": ["A", "B", "C", "D"], "answer": "...", "explanation": "..."}`)
	b.WriteString("\nRules:\n")
	b.WriteString("- exactly 4 options per question\n")
	b.WriteString("- \"answer\" must be copied exactly from one of the options\n")
	b.WriteString("- \"explanation\" is one short sentence in Tamil\n")
	b.WriteString("\nText:\n")
	b.WriteString(Truncate(source, maxChars))
	return b.String()
}

// QuestionSource picks what the prompt is built from. With questionsOnly the
// candidate question lines are used when any exist.
func QuestionSource(text string, questionsOnly bool) string {
	if !questionsOnly {
		return text
	}
	lines := FilterCandidateLines(text)
	if len(lines) == 0 {
		return text
	}
	return strings.Join(lines, "\n")
}
