package quiz

import "strings"

// interrogatives are the Tamil question words that mark a line as a likely question.
var interrogatives = []string{
	"என்ன", "எது", "எவை", "யார்", "யாது",
	"எங்கு", "எங்கே", "எப்போது", "ஏன்",
	"எப்படி", "எவ்வாறு", "எத்தனை", "எந்த", "எவ்வளவு",
}

// FilterCandidateLines returns the trimmed, non-empty lines of text that contain
// a question mark or a Tamil interrogative, in their original order.
func FilterCandidateLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if isCandidate(line) {
			out = append(out, line)
		}
	}
	return out
}

func isCandidate(line string) bool {
	if strings.Contains(line, "?") {
		return true
	}
	for _, w := range interrogatives {
		if strings.Contains(line, w) {
			return true
		}
	}
	return false
}
