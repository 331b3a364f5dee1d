package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	ServerPort     string
	GinMode        string
	LogLevel       string
	LogFormat      string
	DatabaseURL    string
	MaxDBConns     int32
	RedisURL       string
	SessionBackend string // "memory" or "redis"
	SessionTTL     time.Duration
	SessionSecret  string
	UploadDir      string
	MaxUploadBytes int64
	// AllowedOrigins controls HTTP CORS origin validation.
	// Empty slice means all origins are permitted (dev default).
	AllowedOrigins []string

	// ─── Generative service ──────────────────────────────────────────
	LLMProvider    string // "gemini" or "openai"
	GeminiAPIKey   string
	GeminiModel    string
	OpenAIAPIKey   string
	OpenAIModel    string
	OpenAITTSVoice string

	// ─── Text acquisition ────────────────────────────────────────────
	OCREngine   string // "tesseract" or "gemini"
	OCRLanguage string
	OCRDPI      int

	// ─── Quiz defaults ───────────────────────────────────────────────
	DefaultQuestionCount int
	MaxPromptChars       int

	// ─── Cloudflare R2 (optional audio storage) ──────────────────────
	R2AccountID       string
	R2BucketName      string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2PublicURL       string
}

// Load reads configuration from environment variables with sensible defaults.
// It loads .env file if present but does not fail if missing.
func Load() *Config {
	_ = godotenv.Load() // .env is optional

	return &Config{
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "pretty"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		MaxDBConns:     int32(getEnvInt("MAX_DB_CONNS", 8)),
		RedisURL:       getEnv("REDIS_URL", ""),
		SessionBackend: strings.ToLower(getEnv("SESSION_BACKEND", "memory")),
		SessionTTL:     time.Duration(getEnvInt("SESSION_TTL_MINUTES", 180)) * time.Minute,
		SessionSecret:  getEnv("SESSION_SECRET", "change-this-to-a-secure-random-string"),
		UploadDir:      getEnv("UPLOAD_DIR", "./uploads"),
		MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_SIZE_MB", 20)) * 1024 * 1024,
		AllowedOrigins: parseOrigins(getEnv("ALLOWED_ORIGINS", "")),

		LLMProvider:    strings.ToLower(getEnv("LLM_PROVIDER", "gemini")),
		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		GeminiModel:    getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		OpenAIAPIKey:   getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:    getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAITTSVoice: getEnv("OPENAI_TTS_VOICE", "alloy"),

		OCREngine:   strings.ToLower(getEnv("OCR_ENGINE", "tesseract")),
		OCRLanguage: getEnv("OCR_LANGUAGE", "tam"),
		OCRDPI:      getEnvInt("OCR_DPI", 300),

		DefaultQuestionCount: getEnvInt("DEFAULT_QUESTION_COUNT", 5),
		MaxPromptChars:       getEnvInt("MAX_PROMPT_CHARS", 10000),

		R2AccountID:       getEnv("CLOUDFLARE_ACCOUNT_ID", ""),
		R2BucketName:      getEnv("R2_BUCKET_NAME", ""),
		R2AccessKeyID:     getEnv("R2_ACCESS_KEY_ID", ""),
		R2SecretAccessKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
		R2PublicURL:       getEnv("R2_PUBLIC_URL", ""),
	}
}

// R2Enabled reports whether every Cloudflare R2 setting is present.
func (c *Config) R2Enabled() bool {
	return c.R2AccountID != "" && c.R2BucketName != "" &&
		c.R2AccessKeyID != "" && c.R2SecretAccessKey != "" && c.R2PublicURL != ""
}

// ArchiveEnabled reports whether graded attempts can be queued and persisted.
// Both Redis (queue) and PostgreSQL (sink) are required.
func (c *Config) ArchiveEnabled() bool {
	return c.DatabaseURL != "" && c.RedisURL != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// parseOrigins splits a comma-separated origins string into a trimmed slice.
// Returns nil (allow-all) if the input is empty.
func parseOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
