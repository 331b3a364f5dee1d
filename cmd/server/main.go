package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/tamilprep-backend/internal/config"
	"github.com/stemsi/tamilprep-backend/internal/database"
	"github.com/stemsi/tamilprep-backend/internal/extract"
	"github.com/stemsi/tamilprep-backend/internal/handler"
	"github.com/stemsi/tamilprep-backend/internal/llm"
	"github.com/stemsi/tamilprep-backend/internal/logger"
	"github.com/stemsi/tamilprep-backend/internal/repository"
	"github.com/stemsi/tamilprep-backend/internal/router"
	"github.com/stemsi/tamilprep-backend/internal/service"
	"github.com/stemsi/tamilprep-backend/internal/session"
	"github.com/stemsi/tamilprep-backend/internal/storage"
	"github.com/stemsi/tamilprep-backend/internal/tts"
	"github.com/stemsi/tamilprep-backend/internal/validator"
	"github.com/stemsi/tamilprep-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("llm_provider", cfg.LLMProvider).
		Str("ocr_engine", cfg.OCREngine).
		Str("session_backend", cfg.SessionBackend).
		Msg("Starting Tamil practice backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to Redis (optional) ───────────────────────────────────
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		var err error
		rdb, err = database.NewRedisClient(ctx, cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()
	}

	// ─── Connect to PostgreSQL (optional, attempt archive) ─────────────
	var pool *pgxpool.Pool
	if cfg.ArchiveEnabled() {
		var err error
		pool, err = database.NewPostgresPool(ctx, cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
		}
		defer pool.Close()
	} else if cfg.DatabaseURL != "" {
		log.Warn().Msg("DATABASE_URL set without REDIS_URL, attempt archive disabled")
	}

	// ─── Background context for workers and sweepers ───────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	// ─── Session Store ─────────────────────────────────────────────────
	var store session.Store
	switch cfg.SessionBackend {
	case "redis":
		if rdb == nil {
			log.Fatal().Msg("SESSION_BACKEND=redis requires REDIS_URL")
		}
		store = session.NewRedisStore(rdb, cfg.SessionTTL)
	default:
		mem := session.NewMemoryStore(cfg.SessionTTL)
		go mem.RunSweeper(workerCtx, time.Minute)
		store = mem
	}

	// ─── Text Acquisition ──────────────────────────────────────────────
	var recognizer extract.Recognizer
	switch cfg.OCREngine {
	case "gemini":
		vision := &llm.VisionFactory{
			APIKey:         cfg.GeminiAPIKey,
			Model:          cfg.GeminiModel,
			RequestKeyUsed: cfg.LLMProvider != llm.ProviderOpenAI,
		}
		recognizer = extract.NewVisionEngine(func(key string) (extract.DocumentReader, error) {
			return vision.ForKey(key)
		})
	default:
		raster := extract.NewPopplerRasterizer()
		if !raster.Available() {
			log.Warn().Msg("pdftoppm not found on PATH, OCR of scanned documents will fail")
		}
		recognizer = extract.NewTesseractEngine(raster, cfg.OCRDPI)
	}
	acquirer := extract.NewAcquirer(extract.NewPDFTextLayer(), recognizer, cfg.OCRLanguage, logger.Component(log, "extract"))

	// ─── Audio Storage ─────────────────────────────────────────────────
	var audioStore storage.AudioStore = storage.NewLocalStore(cfg.UploadDir)
	r2, err := storage.NewR2Store(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure R2")
	}
	if r2 != nil {
		audioStore = r2
		log.Info().Str("bucket", cfg.R2BucketName).Msg("Audio stored in Cloudflare R2")
	}

	// ─── Initialize Services ───────────────────────────────────────────
	tokenService := service.NewTokenService(cfg)
	mediaService := service.NewMediaService(cfg)
	practiceService := service.NewPracticeService(
		store,
		tokenService,
		acquirer,
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
		audioStore,
		service.PracticeOptions{
			DefaultQuestionCount: cfg.DefaultQuestionCount,
			MaxPromptChars:       cfg.MaxPromptChars,
		},
		logger.Component(log, "practice"),
	)

	// ─── Attempt Archive ───────────────────────────────────────────────
	if pool != nil {
		attemptRepo := repository.NewAttemptRepository(pool)
		practiceService.WithArchive(worker.NewResultQueue(rdb), attemptRepo)

		resultWorker := worker.NewResultWorker(attemptRepo, rdb, logger.Component(log, "result_worker"))
		go resultWorker.Start(workerCtx)
	}

	// ─── Initialize Handlers ───────────────────────────────────────────
	checks := map[string]handler.HealthCheck{}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	if pool != nil {
		checks["postgres"] = pool.Ping
	}

	handlers := &router.Handlers{
		Session:  handler.NewSessionHandler(practiceService, log),
		Practice: handler.NewPracticeHandler(practiceService, mediaService, log),
		Health:   handler.NewHealthHandler(checks, log),
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(workerCtx, router.Auth{
		Tokens:    tokenService,
		Sessions:  practiceService,
		Refresher: tokenService,
	}, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests. Generation calls can take a while.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers and let the result worker flush.
	workerCancel()
	if pool != nil {
		time.Sleep(2 * time.Second)
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
