package quiz

import "strings"

const (
	fenceJSON = "```json"
	fence     = "```"
)

// StripFences removes every ```json and ``` marker from raw model output and
// trims the surrounding whitespace. Markers are removed until none remain, so
// StripFences(StripFences(s)) == StripFences(s).
func StripFences(raw string) string {
	s := raw
	for strings.Contains(s, fence) {
		s = strings.ReplaceAll(s, fenceJSON, "")
		s = strings.ReplaceAll(s, fence, "")
	}
	return strings.TrimSpace(s)
}
