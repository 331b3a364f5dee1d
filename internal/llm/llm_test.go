package llm

import (
	"errors"
	"strings"
	"testing"
)

func TestFactory_ForKey(t *testing.T) {
	tests := []struct {
		name     string
		factory  Factory
		key      string
		wantName string
		wantErr  error
	}{
		{
			name:     "gemini uses request key",
			factory:  Factory{Provider: ProviderGemini},
			key:      " user-key ",
			wantName: ProviderGemini,
		},
		{
			name:     "gemini falls back to config key",
			factory:  Factory{Provider: ProviderGemini, GeminiKey: "cfg"},
			wantName: ProviderGemini,
		},
		{
			name:     "openai falls back to config key",
			factory:  Factory{Provider: ProviderOpenAI, OpenAIKey: "cfg"},
			wantName: ProviderOpenAI,
		},
		{
			name:    "no key anywhere",
			factory: Factory{Provider: ProviderOpenAI, GeminiKey: "wrong-provider"},
			wantErr: ErrMissingAPIKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen, err := tt.factory.ForKey(tt.key)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if gen.Name() != tt.wantName {
				t.Fatalf("expected %s, got %s", tt.wantName, gen.Name())
			}
		})
	}
}

func TestFactory_UnknownProvider(t *testing.T) {
	f := Factory{Provider: "claude"}
	if _, err := f.ForKey("k"); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestGemini_RequestKeyTrimmed(t *testing.T) {
	f := Factory{Provider: ProviderGemini}
	gen, err := f.ForKey("  abc  ")
	if err != nil {
		t.Fatal(err)
	}
	if g := gen.(*Gemini); g.APIKey != "abc" {
		t.Fatalf("expected trimmed key, got %q", g.APIKey)
	}
}

func TestVisionFactory_ForKey(t *testing.T) {
	tests := []struct {
		name    string
		factory VisionFactory
		key     string
		wantKey string
		wantErr error
	}{
		{
			name:    "request key when gemini is the provider",
			factory: VisionFactory{APIKey: "cfg", RequestKeyUsed: true},
			key:     " user ",
			wantKey: "user",
		},
		{
			name:    "config key when request key is empty",
			factory: VisionFactory{APIKey: "cfg", RequestKeyUsed: true},
			wantKey: "cfg",
		},
		{
			name:    "openai request key is not sent to gemini",
			factory: VisionFactory{APIKey: "cfg"},
			key:     "sk-openai",
			wantKey: "cfg",
		},
		{
			name:    "no key anywhere",
			factory: VisionFactory{RequestKeyUsed: true},
			wantErr: ErrMissingAPIKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := tt.factory.ForKey(tt.key)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if g.APIKey != tt.wantKey || g.Model != defaultGeminiModel {
				t.Fatalf("got key %q model %q", g.APIKey, g.Model)
			}
		})
	}
}

func TestTranscribeInstruction(t *testing.T) {
	if got := transcribeInstruction("tam"); got != transcribePrompt {
		t.Fatalf("plain Tamil should use the base prompt, got %q", got)
	}
	got := transcribeInstruction("tam+eng")
	if !strings.Contains(got, "Document language (ISO 639-2") || !strings.HasSuffix(got, "tam+eng") {
		t.Fatalf("language not described: %q", got)
	}
	if strings.Contains(strings.ToLower(got), "tesseract") {
		t.Fatalf("prompt mentions the OCR engine: %q", got)
	}
}
