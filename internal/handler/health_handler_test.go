package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/tamilprep-backend/internal/handler"
	"github.com/stemsi/tamilprep-backend/internal/response"
)

func TestHealthHandler_Backends(t *testing.T) {
	gin.SetMode(gin.TestMode)

	up := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	cases := []struct {
		name   string
		checks map[string]handler.HealthCheck
		status int
	}{
		{"no backends", nil, http.StatusOK},
		{"all up", map[string]handler.HealthCheck{"redis": up, "postgres": up}, http.StatusOK},
		{"nil check ignored", map[string]handler.HealthCheck{"redis": up, "postgres": nil}, http.StatusOK},
		{"one down", map[string]handler.HealthCheck{"redis": up, "postgres": down}, http.StatusServiceUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/health", handler.NewHealthHandler(tc.checks, zerolog.Nop()).Check)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
			if w.Code != tc.status {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tc.status, w.Body.String())
			}

			var env envelope
			_ = json.Unmarshal(w.Body.Bytes(), &env)
			if tc.status == http.StatusServiceUnavailable {
				if env.Error == nil || env.Error.Code != response.ErrUnavailable || env.Error.Fields["postgres"] == "" {
					t.Fatalf("unexpected error body %+v", env.Error)
				}
			}
		})
	}
}
