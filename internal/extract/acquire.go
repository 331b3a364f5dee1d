package extract

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/stemsi/tamilprep-backend/internal/model"
)

// MinTextLayerRunes is the trimmed length below which the text layer is
// treated as missing (scanned or image-only documents) and OCR takes over.
const MinTextLayerRunes = 50

// TextLayer reads the embedded text of a PDF.
type TextLayer interface {
	ExtractText(ctx context.Context, doc []byte) (string, error)
}

// Request carries the per-call inputs of an acquisition.
type Request struct {
	Language string // OCR language, the acquirer default when empty
	APIKey   string // caller's model key for cloud OCR, the configured key when empty
}

// Recognizer produces text for a whole PDF by optical recognition.
type Recognizer interface {
	Name() string
	Recognize(ctx context.Context, doc []byte, req Request) (string, error)
}

// Result is the outcome of one acquisition.
type Result struct {
	Text   string
	Method model.ExtractionMethod
	Engine string
}

// Acquirer turns PDF bytes into text, falling back to OCR for documents without
// a usable text layer. Nothing is cached; each call re-extracts.
type Acquirer struct {
	textLayer  TextLayer
	recognizer Recognizer
	language   string
	log        zerolog.Logger
}

func NewAcquirer(textLayer TextLayer, recognizer Recognizer, defaultLanguage string, log zerolog.Logger) *Acquirer {
	return &Acquirer{
		textLayer:  textLayer,
		recognizer: recognizer,
		language:   defaultLanguage,
		log:        log,
	}
}

// Acquire extracts text from doc. When the text layer yields fewer than
// MinTextLayerRunes trimmed runes the OCR output is returned as is, even if empty.
func (a *Acquirer) Acquire(ctx context.Context, doc []byte, req Request) (Result, error) {
	if req.Language == "" {
		req.Language = a.language
	}

	text, err := a.textLayer.ExtractText(ctx, doc)
	if err != nil {
		a.log.Warn().Err(err).Msg("Text layer unreadable, falling back to OCR")
	} else if utf8.RuneCountInString(strings.TrimSpace(text)) >= MinTextLayerRunes {
		return Result{Text: text, Method: model.ExtractionTextLayer}, nil
	}

	if a.recognizer == nil {
		return Result{}, fmt.Errorf("no OCR engine configured")
	}

	a.log.Info().
		Str("engine", a.recognizer.Name()).
		Str("language", req.Language).
		Msg("Running OCR")

	ocrText, err := a.recognizer.Recognize(ctx, doc, req)
	if err != nil {
		return Result{}, fmt.Errorf("%s ocr: %w", a.recognizer.Name(), err)
	}

	return Result{Text: ocrText, Method: model.ExtractionOCR, Engine: a.recognizer.Name()}, nil
}
