package middleware

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
)

// DefaultBrotliMinLength is the smallest body worth compressing.
const DefaultBrotliMinLength = 1024

// bufferedWriter holds the whole body until the handler returns. API bodies
// are bounded JSON documents (extracted text included), so buffering is fine.
type bufferedWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bufferedWriter) Write(p []byte) (int, error) {
	return w.body.Write(p)
}

func (w *bufferedWriter) WriteString(s string) (int, error) {
	return w.body.WriteString(s)
}

// Brotli compresses JSON responses of at least minLength bytes for clients
// that accept "br". Static files and event streams pass through untouched.
func Brotli(minLength int) gin.HandlerFunc {
	if minLength <= 0 {
		minLength = DefaultBrotliMinLength
	}

	return func(c *gin.Context) {
		if shouldSkip(c) || !acceptsBrotli(c.Request) {
			c.Next()
			return
		}

		orig := c.Writer
		bw := &bufferedWriter{ResponseWriter: orig}
		c.Writer = bw
		c.Next()
		c.Writer = orig

		orig.Header().Add("Vary", "Accept-Encoding")
		body := bw.body.Bytes()
		if len(body) < minLength || !compressible(orig.Header().Get("Content-Type")) {
			if len(body) > 0 {
				_, _ = orig.Write(body)
			}
			return
		}

		orig.Header().Set("Content-Encoding", "br")
		orig.Header().Del("Content-Length")
		enc := brotli.NewWriterLevel(orig, brotli.DefaultCompression)
		if _, err := enc.Write(body); err != nil {
			_ = c.Error(err)
		}
		if err := enc.Close(); err != nil {
			_ = c.Error(err)
		}
	}
}

// shouldSkip returns true for responses that gain nothing from compression or
// must stream unbuffered.
func shouldSkip(c *gin.Context) bool {
	// Stored audio is already compressed.
	if strings.HasPrefix(c.Request.URL.Path, "/uploads/") {
		return true
	}
	return strings.Contains(c.GetHeader("Accept"), "text/event-stream")
}

func compressible(contentType string) bool {
	return strings.HasPrefix(contentType, "application/json") || strings.HasPrefix(contentType, "text/")
}

func acceptsBrotli(r *http.Request) bool {
	for _, enc := range strings.Split(r.Header.Get("Accept-Encoding"), ",") {
		// Drop any quality parameter, e.g. "br;q=1.0".
		name, _, _ := strings.Cut(enc, ";")
		if strings.EqualFold(strings.TrimSpace(name), "br") {
			return true
		}
	}
	return false
}
