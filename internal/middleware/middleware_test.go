package middleware_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stemsi/tamilprep-backend/internal/middleware"
	"github.com/stemsi/tamilprep-backend/internal/response"
	"github.com/stemsi/tamilprep-backend/internal/service"
	"github.com/stemsi/tamilprep-backend/internal/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, body []byte) response.ErrCode {
	t.Helper()
	var env response.Response
	if err := json.Unmarshal(body, &env); err != nil {
		t.Fatalf("decode: %v (%s)", err, body)
	}
	if env.Error == nil {
		t.Fatalf("expected error body, got %s", body)
	}
	return env.Error.Code
}

func TestCacheHeaders(t *testing.T) {
	r := gin.New()
	r.GET("/asset", middleware.CacheControl(time.Hour), func(c *gin.Context) { c.String(http.StatusOK, "x") })
	r.GET("/state", middleware.NoStore(), func(c *gin.Context) { c.String(http.StatusOK, "x") })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/asset", nil))
	if got := w.Header().Get("Cache-Control"); got != "public, max-age=3600, immutable" {
		t.Fatalf("asset Cache-Control = %q", got)
	}

	w = serve(r, httptest.NewRequest(http.MethodGet, "/state", nil))
	if got := w.Header().Get("Cache-Control"); got != "no-store" {
		t.Fatalf("state Cache-Control = %q", got)
	}
}

func TestBrotli(t *testing.T) {
	text := strings.Repeat("தமிழ் மொழி பாடம் ", 200)

	r := gin.New()
	r.Use(middleware.Brotli(middleware.DefaultBrotliMinLength))
	r.GET("/big", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"text": text}) })
	r.GET("/small", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	r.GET("/uploads/a.mp3", func(c *gin.Context) { c.Data(http.StatusOK, "audio/mpeg", bytes.Repeat([]byte{1}, 4096)) })

	t.Run("compresses large JSON", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/big", nil)
		req.Header.Set("Accept-Encoding", "gzip, br;q=1.0")
		w := serve(r, req)

		if w.Header().Get("Content-Encoding") != "br" {
			t.Fatalf("expected br encoding, headers %v", w.Header())
		}
		plain, err := io.ReadAll(brotli.NewReader(w.Body))
		if err != nil {
			t.Fatalf("decompress: %v", err)
		}
		var got map[string]string
		if err := json.Unmarshal(plain, &got); err != nil || got["text"] != text {
			t.Fatalf("round trip mismatch: %v", err)
		}
	})

	t.Run("leaves small bodies alone", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/small", nil)
		req.Header.Set("Accept-Encoding", "br")
		w := serve(r, req)
		if w.Header().Get("Content-Encoding") != "" || !strings.Contains(w.Body.String(), "ok") {
			t.Fatalf("small body altered: %v %q", w.Header(), w.Body.String())
		}
	})

	t.Run("skips uploads", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/uploads/a.mp3", nil)
		req.Header.Set("Accept-Encoding", "br")
		w := serve(r, req)
		if w.Header().Get("Content-Encoding") != "" || w.Body.Len() != 4096 {
			t.Fatalf("audio altered: %v len=%d", w.Header(), w.Body.Len())
		}
	})

	t.Run("no br without Accept-Encoding", func(t *testing.T) {
		w := serve(r, httptest.NewRequest(http.MethodGet, "/big", nil))
		if w.Header().Get("Content-Encoding") != "" {
			t.Fatal("compressed without negotiation")
		}
	})
}

func TestRateLimiter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rl := middleware.NewRateLimiter(ctx, 2, time.Minute)
	r := gin.New()
	r.POST("/quiz", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for i := 0; i < 2; i++ {
		if w := serve(r, httptest.NewRequest(http.MethodPost, "/quiz", nil)); w.Code != http.StatusNoContent {
			t.Fatalf("request %d: status %d", i, w.Code)
		}
	}

	w := serve(r, httptest.NewRequest(http.MethodPost, "/quiz", nil))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") != "60" {
		t.Fatalf("Retry-After = %q", w.Header().Get("Retry-After"))
	}
	if code := errorCode(t, w.Body.Bytes()); code != response.ErrRateLimitExceeded {
		t.Fatalf("code = %s", code)
	}

	other := httptest.NewRequest(http.MethodPost, "/quiz", nil)
	other.RemoteAddr = "198.51.100.7:4000"
	if w := serve(r, other); w.Code != http.StatusNoContent {
		t.Fatalf("other client limited: %d", w.Code)
	}
}

type fakeTokens struct {
	claims *service.SessionClaims
	err    error
}

func (f fakeTokens) Validate(string) (*service.SessionClaims, error) { return f.claims, f.err }

type fakeAuthorizer struct{ err error }

func (f fakeAuthorizer) Authorize(context.Context, *service.SessionClaims) error { return f.err }

type fakeRefresher struct {
	err  error
	seen *service.SessionClaims
}

func (f *fakeRefresher) Refresh(claims *service.SessionClaims) (string, error) {
	f.seen = claims
	return "renewed", f.err
}

func TestRefreshSessionToken(t *testing.T) {
	claims := &service.SessionClaims{SessionID: uuid.New()}

	cases := []struct {
		name      string
		refresher *fakeRefresher
		want      string
	}{
		{"renewed token returned", &fakeRefresher{}, "renewed"},
		{"refresh failure is silent", &fakeRefresher{err: errors.New("sign")}, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/state",
				middleware.RequireSessionToken(fakeTokens{claims: claims}),
				middleware.RefreshSessionToken(tc.refresher),
				func(c *gin.Context) { c.Status(http.StatusNoContent) },
			)
			req := httptest.NewRequest(http.MethodGet, "/state", nil)
			req.Header.Set("Authorization", "Bearer abc")
			w := serve(r, req)

			if w.Code != http.StatusNoContent {
				t.Fatalf("status = %d", w.Code)
			}
			if got := w.Header().Get(middleware.HeaderSessionToken); got != tc.want {
				t.Fatalf("%s = %q, want %q", middleware.HeaderSessionToken, got, tc.want)
			}
			if tc.refresher.seen != claims {
				t.Fatal("refresher did not receive the validated claims")
			}
		})
	}
}

func TestSessionMiddlewares(t *testing.T) {
	claims := &service.SessionClaims{SessionID: uuid.New()}

	cases := []struct {
		name   string
		header string
		tokens fakeTokens
		auth   fakeAuthorizer
		status int
		code   response.ErrCode
	}{
		{"missing header", "", fakeTokens{claims: claims}, fakeAuthorizer{}, http.StatusUnauthorized, response.ErrTokenRequired},
		{"wrong scheme", "Basic abc", fakeTokens{claims: claims}, fakeAuthorizer{}, http.StatusUnauthorized, response.ErrTokenRequired},
		{"invalid", "Bearer abc", fakeTokens{err: jwt.ErrTokenMalformed}, fakeAuthorizer{}, http.StatusUnauthorized, response.ErrTokenInvalid},
		{"expired", "Bearer abc", fakeTokens{err: fmt.Errorf("validate: %w", jwt.ErrTokenExpired)}, fakeAuthorizer{}, http.StatusUnauthorized, response.ErrTokenExpired},
		{"session gone", "Bearer abc", fakeTokens{claims: claims}, fakeAuthorizer{err: session.ErrNotFound}, http.StatusNotFound, response.ErrSessionNotFound},
		{"session replaced", "Bearer abc", fakeTokens{claims: claims}, fakeAuthorizer{err: service.ErrSessionTerminated}, http.StatusUnauthorized, response.ErrSessionInvalidated},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/state",
				middleware.RequireSessionToken(tc.tokens),
				middleware.RequireLiveSession(tc.auth),
				func(c *gin.Context) { c.Status(http.StatusNoContent) },
			)
			req := httptest.NewRequest(http.MethodGet, "/state", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := serve(r, req)
			if w.Code != tc.status {
				t.Fatalf("status = %d, want %d", w.Code, tc.status)
			}
			if code := errorCode(t, w.Body.Bytes()); code != tc.code {
				t.Fatalf("code = %s, want %s", code, tc.code)
			}
		})
	}

	t.Run("passes live session", func(t *testing.T) {
		r := gin.New()
		var seen *service.SessionClaims
		r.GET("/state",
			middleware.RequireSessionToken(fakeTokens{claims: claims}),
			middleware.RequireLiveSession(fakeAuthorizer{}),
			func(c *gin.Context) {
				seen = middleware.GetClaims(c)
				c.Status(http.StatusNoContent)
			},
		)
		req := httptest.NewRequest(http.MethodGet, "/state", nil)
		req.Header.Set("Authorization", "bearer abc")
		if w := serve(r, req); w.Code != http.StatusNoContent {
			t.Fatalf("status = %d", w.Code)
		}
		if seen == nil || seen.SessionID != claims.SessionID {
			t.Fatalf("claims not propagated: %+v", seen)
		}
	})
}
