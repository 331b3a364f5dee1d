package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/tamilprep-backend/internal/config"
	"github.com/stemsi/tamilprep-backend/internal/extract"
	"github.com/stemsi/tamilprep-backend/internal/llm"
	"github.com/stemsi/tamilprep-backend/internal/logger"
	"github.com/stemsi/tamilprep-backend/internal/model"
	"github.com/stemsi/tamilprep-backend/internal/service"
	"github.com/stemsi/tamilprep-backend/internal/session"
	"github.com/stemsi/tamilprep-backend/internal/storage"
	"github.com/stemsi/tamilprep-backend/internal/tts"
	"golang.org/x/term"
)

const previewRunes = 600

func main() {
	count := flag.Int("count", 0, "number of questions (default from DEFAULT_QUESTION_COUNT)")
	lang := flag.String("lang", "", "tesseract language for scanned pages (default from OCR_LANGUAGE)")
	questionsOnly := flag.Bool("questions-only", false, "build questions only from lines that look like questions")
	timer := flag.Int("timer", 0, "time limit in minutes, 0 for untimed")
	audio := flag.Bool("audio", false, "save a read-aloud mp3 of the text into UPLOAD_DIR")
	flag.Parse()

	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger (stderr, stdout is the quiz) ────────────────
	log := logger.SetupWriter(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Tamil Practice ===")

	// PDF path
	path := flag.Arg(0)
	if path == "" {
		fmt.Print("PDF path: ")
		path, _ = reader.ReadString('\n')
		path = strings.TrimSpace(path)
	}
	doc, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("Error: cannot read %s: %v\n", path, err)
		os.Exit(1)
	}

	// API key, hidden
	apiKey := configuredKey(cfg)
	if apiKey == "" {
		fmt.Printf("%s API key: ", cfg.LLMProvider)
		raw, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			fmt.Println("Error reading API key")
			os.Exit(1)
		}
		apiKey = strings.TrimSpace(string(raw))
	}
	if apiKey == "" {
		fmt.Println("Error: an API key is required")
		os.Exit(1)
	}

	// ─── Wire the in-process pipeline ──────────────────────────────────
	raster := extract.NewPopplerRasterizer()
	var recognizer extract.Recognizer = extract.NewTesseractEngine(raster, cfg.OCRDPI)
	if cfg.OCREngine == "gemini" {
		vision := &llm.VisionFactory{
			APIKey:         cfg.GeminiAPIKey,
			Model:          cfg.GeminiModel,
			RequestKeyUsed: cfg.LLMProvider != llm.ProviderOpenAI,
		}
		recognizer = extract.NewVisionEngine(func(key string) (extract.DocumentReader, error) {
			return vision.ForKey(key)
		})
	}

	practice := service.NewPracticeService(
		session.NewMemoryStore(cfg.SessionTTL),
		service.NewTokenService(cfg),
		extract.NewAcquirer(extract.NewPDFTextLayer(), recognizer, cfg.OCRLanguage, logger.Component(log, "extract")),
		&llm.Factory{
			Provider:    cfg.LLMProvider,
			GeminiKey:   cfg.GeminiAPIKey,
			GeminiModel: cfg.GeminiModel,
			OpenAIKey:   cfg.OpenAIAPIKey,
			OpenAIModel: cfg.OpenAIModel,
		},
		&tts.Factory{
			APIKey:         cfg.OpenAIAPIKey,
			Voice:          cfg.OpenAITTSVoice,
			RequestKeyUsed: cfg.LLMProvider == llm.ProviderOpenAI,
		},
		storage.NewLocalStore(cfg.UploadDir),
		service.PracticeOptions{
			DefaultQuestionCount: cfg.DefaultQuestionCount,
			MaxPromptChars:       cfg.MaxPromptChars,
		},
		log,
	)

	_, state, err := practice.CreateSession(ctx)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	id := state.SessionID
	defer practice.EndSession(ctx, id)

	// ─── Extract ───────────────────────────────────────────────────────
	fmt.Println("Extracting text...")
	state, err = practice.ProcessDocument(ctx, id, filepath.Base(path), doc, *lang, apiKey)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\n--- Extracted text (%s) ---\n%s\n", state.ExtractionMethod, preview(state.ExtractedText))

	if *audio {
		url, err := practice.ReadAloud(ctx, id, apiKey)
		if err != nil {
			fmt.Printf("Read-aloud unavailable: %v\n", err)
		} else {
			fmt.Printf("Read-aloud saved: %s\n", strings.TrimPrefix(url, "/uploads/"))
		}
	}

	// ─── Generate ──────────────────────────────────────────────────────
	fmt.Println("\nGenerating quiz...")
	state, err = practice.GenerateQuiz(ctx, id, apiKey, model.GenerateQuizRequest{
		QuestionCount: *count,
		QuestionsOnly: *questionsOnly,
		TimerMinutes:  *timer,
	})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	// ─── Ask ───────────────────────────────────────────────────────────
	answers := ask(ctx, reader, practice, id, state)

	// ─── Grade ─────────────────────────────────────────────────────────
	state, err = practice.Submit(ctx, id, answers)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	printResult(state)
}

// configuredKey returns the key for the selected provider from the environment.
func configuredKey(cfg *config.Config) string {
	if cfg.LLMProvider == llm.ProviderOpenAI {
		return cfg.OpenAIAPIKey
	}
	return cfg.GeminiAPIKey
}

func ask(ctx context.Context, reader *bufio.Reader, practice *service.PracticeService, id uuid.UUID, state *model.PracticeState) map[int]string {
	answers := make(map[int]string, len(state.Quiz))

	for i, item := range state.Quiz {
		if state.Timed {
			cur, err := practice.GetState(ctx, id)
			if err == nil && cur.TimeUp {
				fmt.Println("\nTime is up.")
				break
			}
			if err == nil {
				fmt.Printf("\n[%s left]", (time.Duration(cur.RemainingTime) * time.Second).Round(time.Second))
			}
		}

		fmt.Printf("\nQ%d. %s\n", i+1, item.Question)
		for j, opt := range item.Options {
			fmt.Printf("   %d) %s\n", j+1, opt)
		}

		for {
			fmt.Printf("Answer 1-%d (blank to skip): ", len(item.Options))
			line, err := reader.ReadString('\n')
			line = strings.TrimSpace(line)
			if line == "" {
				break
			}
			n, convErr := strconv.Atoi(line)
			if convErr != nil || n < 1 || n > len(item.Options) {
				fmt.Println("Invalid choice")
				if err != nil {
					break
				}
				continue
			}
			answers[i] = item.Options[n-1]
			break
		}
	}
	return answers
}

func printResult(state *model.PracticeState) {
	res := state.Result
	if res == nil {
		return
	}

	fmt.Printf("\n=== Score: %d/%d ===\n", res.Score, res.Total)
	for _, v := range res.Verdicts {
		mark := "✗"
		if v.Status == model.VerdictCorrect {
			mark = "✓"
		}
		selected := v.Selected
		if selected == "" {
			selected = "(no answer)"
		}
		fmt.Printf("\n%s Q%d. %s\n", mark, v.Index+1, state.Quiz[v.Index].Question)
		fmt.Printf("   Your answer: %s\n", selected)
		if v.Status != model.VerdictCorrect {
			fmt.Printf("   Correct answer: %s\n", v.CorrectAnswer)
		}
		if v.Explanation != "" {
			fmt.Printf("   %s\n", v.Explanation)
		}
	}
}

func preview(text string) string {
	r := []rune(text)
	if len(r) <= previewRunes {
		return text
	}
	return string(r[:previewRunes]) + fmt.Sprintf("\n... (%d more characters)", len(r)-previewRunes)
}
