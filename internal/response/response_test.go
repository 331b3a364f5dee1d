package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ok", func(c *gin.Context) { Success(c, http.StatusOK, gin.H{"a": 1}) })
	r.GET("/fail", func(c *gin.Context) {
		FailWithDetail(c, http.StatusBadGateway, ErrGenerationFailed, errors.New("quota exceeded"))
	})
	return r
}

func TestRequestIDReuseAndReplace(t *testing.T) {
	r := newEngine()

	cases := []struct {
		name   string
		header string
		reused bool
	}{
		{"client id kept", "abc-123", true},
		{"empty replaced", "", false},
		{"spaces replaced", "has space", false},
		{"too long replaced", strings.Repeat("x", 65), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ok", nil)
			if tc.header != "" {
				req.Header.Set(HeaderRequestID, tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			got := w.Header().Get(HeaderRequestID)
			if got == "" {
				t.Fatal("missing request id header")
			}
			if (got == tc.header) != tc.reused {
				t.Fatalf("header %q -> %q", tc.header, got)
			}

			var env Response
			_ = json.Unmarshal(w.Body.Bytes(), &env)
			if env.Metadata.RequestID != got {
				t.Fatalf("metadata id %q != header %q", env.Metadata.RequestID, got)
			}
		})
	}
}

func TestFailWithDetail(t *testing.T) {
	w := httptest.NewRecorder()
	newEngine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail", nil))

	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", w.Code)
	}
	var env Response
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatal(err)
	}
	if env.Data != nil {
		t.Fatalf("data should be null, got %v", env.Data)
	}
	if env.Error == nil || env.Error.Code != ErrGenerationFailed || env.Error.Fields["detail"] != "quota exceeded" {
		t.Fatalf("unexpected error body %+v", env.Error)
	}
	if env.Error.Message != GetMessage(ErrGenerationFailed) {
		t.Fatalf("message = %q", env.Error.Message)
	}
}
