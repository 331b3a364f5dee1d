package response

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// ContextKeyRequestID is the Gin context key for the request ID.
	ContextKeyRequestID = "request_id"
	// HeaderRequestID is echoed back on every response.
	HeaderRequestID = "X-Request-ID"

	contextKeyStartedAt = "request_started_at"
	maxRequestIDLen     = 64
)

// RequestIDMiddleware tags every request with an ID and a start time. A
// client-supplied X-Request-ID is reused when it is short and printable.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(HeaderRequestID)
		if !validRequestID(reqID) {
			reqID = uuid.New().String()
		}
		c.Set(ContextKeyRequestID, reqID)
		c.Set(contextKeyStartedAt, time.Now())
		c.Header(HeaderRequestID, reqID)
		c.Next()
	}
}

// RequestID returns the ID assigned by RequestIDMiddleware, or "".
func RequestID(c *gin.Context) string {
	return c.GetString(ContextKeyRequestID)
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}

func elapsedMillis(c *gin.Context) int64 {
	v, ok := c.Get(contextKeyStartedAt)
	if !ok {
		return 0
	}
	started, ok := v.(time.Time)
	if !ok {
		return 0
	}
	return time.Since(started).Milliseconds()
}
