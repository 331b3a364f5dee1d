package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/stemsi/tamilprep-backend/internal/config"
	"github.com/stemsi/tamilprep-backend/internal/handler"
	"github.com/stemsi/tamilprep-backend/internal/middleware"
	"github.com/stemsi/tamilprep-backend/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Session  *handler.SessionHandler
	Practice *handler.PracticeHandler
	Health   *handler.HealthHandler
}

// Auth bundles what the session middlewares need.
type Auth struct {
	Tokens    middleware.TokenValidator
	Sessions  middleware.SessionAuthorizer
	Refresher middleware.TokenRefresher
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// ctx bounds background helpers such as the rate limiter sweeper.
func SetupRouter(ctx context.Context, auth Auth, handlers *Handlers, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()
	router.MaxMultipartMemory = cfg.MaxUploadBytes

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", response.HeaderRequestID, handler.HeaderLLMAPIKey}
	corsConfig.ExposeHeaders = []string{response.HeaderRequestID, middleware.HeaderSessionToken, "Retry-After"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	router.Use(middleware.Brotli(middleware.DefaultBrotliMinLength))

	// Generated audio is immutable (UUID names), cache for a year.
	uploadsGroup := router.Group("/uploads")
	uploadsGroup.Use(middleware.CacheControl(365 * 24 * time.Hour))
	{
		uploadsGroup.Static("/", cfg.UploadDir)
	}

	router.GET("/health", handlers.Health.Check)

	// Calls to paid external services: OCR, generation, speech.
	expensiveLimiter := middleware.NewRateLimiter(ctx, 6, time.Minute)

	// ─── 1. Sessions ───────────────────────────────────────────────────
	sessions := router.Group("/api/v1/sessions")
	sessions.Use(middleware.NoStore())
	{
		sessions.POST("", handlers.Session.Create)
		sessions.DELETE("",
			middleware.RequireSessionToken(auth.Tokens),
			middleware.RequireLiveSession(auth.Sessions),
			handlers.Session.Delete,
		)
	}

	// ─── 2. Practice (token + live session) ────────────────────────────
	practice := router.Group("/api/v1/practice")
	practice.Use(
		middleware.NoStore(),
		middleware.RequireSessionToken(auth.Tokens),
		middleware.RequireLiveSession(auth.Sessions),
		middleware.RefreshSessionToken(auth.Refresher),
	)
	{
		practice.GET("/state", handlers.Practice.GetState)
		practice.GET("/history", handlers.Practice.History)
		practice.PUT("/answers", handlers.Practice.SelectAnswer)
		practice.POST("/submit", handlers.Practice.Submit)

		practice.POST("/document", expensiveLimiter.Middleware(), handlers.Practice.ProcessDocument)
		practice.POST("/quiz", expensiveLimiter.Middleware(), handlers.Practice.GenerateQuiz)
		practice.POST("/audio", expensiveLimiter.Middleware(), handlers.Practice.ReadAloud)
	}

	router.NoRoute(func(c *gin.Context) {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	})

	return router
}
