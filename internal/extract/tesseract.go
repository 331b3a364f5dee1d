package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// ocrClient is the part of *gosseract.Client the engine drives.
type ocrClient interface {
	SetLanguage(langs ...string) error
	SetVariable(key gosseract.SettableVariable, value string) error
	SetImageFromBytes(data []byte) error
	Text() (string, error)
	Close() error
}

// TesseractEngine rasterizes a PDF and recognizes every page with Tesseract.
type TesseractEngine struct {
	rasterizer    Rasterizer
	dpi           int
	clientFactory func() ocrClient
}

func NewTesseractEngine(rasterizer Rasterizer, dpi int) *TesseractEngine {
	return &TesseractEngine{
		rasterizer:    rasterizer,
		dpi:           dpi,
		clientFactory: func() ocrClient { return gosseract.NewClient() },
	}
}

func (e *TesseractEngine) Name() string { return "tesseract" }

// Recognize returns the page texts joined with newlines, in page order.
func (e *TesseractEngine) Recognize(ctx context.Context, doc []byte, req Request) (string, error) {
	pages, err := e.rasterizer.Rasterize(ctx, doc, e.dpi)
	if err != nil {
		return "", err
	}

	c := e.clientFactory()
	defer c.Close()

	if req.Language != "" {
		if err := c.SetLanguage(req.Language); err != nil {
			return "", fmt.Errorf("set language: %w", err)
		}
	}
	if e.dpi > 0 {
		if err := c.SetVariable(gosseract.SettableVariable("user_defined_dpi"), fmt.Sprint(e.dpi)); err != nil {
			return "", fmt.Errorf("set dpi: %w", err)
		}
	}

	texts := make([]string, 0, len(pages))
	for _, page := range pages {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}
		if err := c.SetImageFromBytes(page.PNG); err != nil {
			return "", fmt.Errorf("page %d: set image: %w", page.Index+1, err)
		}
		text, err := c.Text()
		if err != nil {
			return "", fmt.Errorf("page %d: recognize: %w", page.Index+1, err)
		}
		texts = append(texts, strings.TrimSpace(text))
	}

	return strings.Join(texts, "\n"), nil
}
