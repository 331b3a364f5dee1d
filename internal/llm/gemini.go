package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const transcribePrompt = `You are an expert Tamil transcriber.
Extract all text from this document into readable Tamil Unicode.
Do NOT summarize or translate. Ignore page numbers, running headers and footers.
Return only the transcribed text.`

const defaultGeminiModel = "gemini-1.5-flash"

// Gemini talks to the Gemini API. A client is opened per call.
type Gemini struct {
	APIKey string
	Model  string
}

func NewGemini(apiKey, model string) *Gemini {
	model = strings.TrimSpace(model)
	if model == "" {
		model = defaultGeminiModel
	}
	return &Gemini{
		APIKey: strings.TrimSpace(apiKey),
		Model:  model,
	}
}

func (g *Gemini) Name() string { return ProviderGemini }

func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	return g.generate(ctx, 0.4, genai.Text(prompt))
}

// ReadDocument transcribes a whole PDF with the multimodal model.
func (g *Gemini) ReadDocument(ctx context.Context, doc []byte, language string) (string, error) {
	return g.generate(ctx, 0,
		genai.Text(transcribeInstruction(language)),
		genai.Blob{MIMEType: "application/pdf", Data: doc},
	)
}

// transcribeInstruction adds the document language when it is not plain Tamil.
func transcribeInstruction(language string) string {
	if language == "" || language == "tam" {
		return transcribePrompt
	}
	return transcribePrompt + "\nDocument language (ISO 639-2, '+' joins several): " + language
}

// VisionFactory resolves the Gemini reader for scanned documents. The request
// key is used only when request keys are Gemini keys, that is when Gemini is
// also the quiz provider.
type VisionFactory struct {
	APIKey         string
	Model          string
	RequestKeyUsed bool
}

func (f *VisionFactory) ForKey(apiKey string) (*Gemini, error) {
	key := f.APIKey
	if f.RequestKeyUsed && strings.TrimSpace(apiKey) != "" {
		key = apiKey
	}
	if strings.TrimSpace(key) == "" {
		return nil, ErrMissingAPIKey
	}
	return NewGemini(key, f.Model), nil
}

func (g *Gemini) generate(ctx context.Context, temperature float32, parts ...genai.Part) (string, error) {
	if g.APIKey == "" {
		return "", ErrMissingAPIKey
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(g.APIKey))
	if err != nil {
		return "", fmt.Errorf("gemini client: %w", err)
	}
	defer cl.Close()

	m := cl.GenerativeModel(g.Model)
	m.SetTemperature(temperature)

	resp, err := m.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}
	txt := firstText(resp)
	if txt == "" {
		return "", errors.New("gemini: empty response")
	}
	return txt, nil
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, c := range resp.Candidates {
		if c == nil || c.Content == nil {
			continue
		}
		var b strings.Builder
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		if s := strings.TrimSpace(b.String()); s != "" {
			return s
		}
	}
	return ""
}
