package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/tamilprep-backend/internal/response"
)

const healthCheckTimeout = 2 * time.Second

// HealthCheck pings one backing dependency.
type HealthCheck func(ctx context.Context) error

// HealthHandler reports liveness plus the state of optional backends.
type HealthHandler struct {
	checks map[string]HealthCheck
	log    zerolog.Logger
}

// NewHealthHandler creates a HealthHandler. Nil checks are ignored, so
// disabled backends can be passed straight through.
func NewHealthHandler(checks map[string]HealthCheck, log zerolog.Logger) *HealthHandler {
	active := make(map[string]HealthCheck, len(checks))
	for name, check := range checks {
		if check != nil {
			active[name] = check
		}
	}
	return &HealthHandler{checks: active, log: log}
}

// Check godoc
// GET /health
// Returns 200 when every configured backend answers, 503 otherwise.
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	backends := make(map[string]string, len(names))
	failed := map[string]string{}
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			h.log.Warn().Err(err).Str("backend", name).Msg("Health check failed")
			backends[name] = "down"
			failed[name] = err.Error()
			continue
		}
		backends[name] = "up"
	}

	if len(failed) > 0 {
		response.FailWithFields(c, http.StatusServiceUnavailable, response.ErrUnavailable, failed)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "ok", "backends": backends})
}
