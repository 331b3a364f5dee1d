package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrMissingAPIKey is returned when neither the request nor the config carries a key.
var ErrMissingAPIKey = errors.New("llm api key is not set")

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Generator sends one prompt to a hosted model and returns its raw text reply.
type Generator interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// Factory builds a Generator for the configured provider. A key supplied by the
// caller takes precedence over the configured one.
type Factory struct {
	Provider    string
	GeminiKey   string
	GeminiModel string
	OpenAIKey   string
	OpenAIModel string
}

func (f *Factory) ForKey(apiKey string) (Generator, error) {
	apiKey = strings.TrimSpace(apiKey)

	switch strings.ToLower(f.Provider) {
	case ProviderGemini, "":
		if apiKey == "" {
			apiKey = f.GeminiKey
		}
		if apiKey == "" {
			return nil, ErrMissingAPIKey
		}
		return NewGemini(apiKey, f.GeminiModel), nil
	case ProviderOpenAI:
		if apiKey == "" {
			apiKey = f.OpenAIKey
		}
		if apiKey == "" {
			return nil, ErrMissingAPIKey
		}
		return NewOpenAI(apiKey, f.OpenAIModel), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", f.Provider)
	}
}
