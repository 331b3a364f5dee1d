package extract

import "context"

// DocumentReader is a multimodal model that can transcribe a whole PDF.
type DocumentReader interface {
	ReadDocument(ctx context.Context, doc []byte, language string) (string, error)
}

// ReaderFunc resolves the DocumentReader for a caller's API key.
type ReaderFunc func(apiKey string) (DocumentReader, error)

// VisionEngine delegates OCR to a cloud vision model.
type VisionEngine struct {
	readers ReaderFunc
}

func NewVisionEngine(readers ReaderFunc) *VisionEngine {
	return &VisionEngine{readers: readers}
}

func (e *VisionEngine) Name() string { return "gemini" }

func (e *VisionEngine) Recognize(ctx context.Context, doc []byte, req Request) (string, error) {
	reader, err := e.readers(req.APIKey)
	if err != nil {
		return "", err
	}
	return reader.ReadDocument(ctx, doc, req.Language)
}
