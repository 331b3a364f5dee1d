package quiz

import "errors"

// Pipeline failure kinds. Callers wrap these with %w and the provider or parser
// detail so that handlers can map them to response codes with errors.Is.
var (
	ErrExtraction = errors.New("text extraction failed")
	ErrGeneration = errors.New("quiz generation failed")
	ErrParse      = errors.New("quiz response could not be parsed")
)
