package tts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// MaxChars is the prefix of the extracted text that is read aloud.
const MaxChars = 1000

var ErrEmptyText = errors.New("nothing to read aloud")

// Speaker turns text into encoded audio.
type Speaker interface {
	Speak(ctx context.Context, text string) (io.ReadCloser, error)
	ContentType() string
	Extension() string
}

// OpenAISpeaker synthesizes mp3 audio with the OpenAI speech endpoint.
type OpenAISpeaker struct {
	client *openai.Client
	voice  openai.SpeechVoice
}

func NewOpenAISpeaker(apiKey, voice string) *OpenAISpeaker {
	if voice == "" {
		voice = string(openai.VoiceAlloy)
	}
	return &OpenAISpeaker{
		client: openai.NewClient(strings.TrimSpace(apiKey)),
		voice:  openai.SpeechVoice(voice),
	}
}

func (s *OpenAISpeaker) ContentType() string { return "audio/mpeg" }
func (s *OpenAISpeaker) Extension() string   { return ".mp3" }

func (s *OpenAISpeaker) Speak(ctx context.Context, text string) (io.ReadCloser, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	resp, err := s.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.TTSModel1,
		Input:          text,
		Voice:          s.voice,
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return nil, fmt.Errorf("openai speech: %w", err)
	}
	return resp, nil
}

// Factory picks the key for a speech request. The request key is used only
// when the quiz provider is OpenAI, since a Gemini key cannot call the speech endpoint.
type Factory struct {
	APIKey         string
	Voice          string
	RequestKeyUsed bool
}

var ErrMissingAPIKey = errors.New("text-to-speech requires an OpenAI API key")

func (f *Factory) ForKey(apiKey string) (Speaker, error) {
	key := f.APIKey
	if f.RequestKeyUsed && strings.TrimSpace(apiKey) != "" {
		key = apiKey
	}
	if strings.TrimSpace(key) == "" {
		return nil, ErrMissingAPIKey
	}
	return NewOpenAISpeaker(key, f.Voice), nil
}
