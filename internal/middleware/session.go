package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/tamilprep-backend/internal/response"
	"github.com/stemsi/tamilprep-backend/internal/service"
	"github.com/stemsi/tamilprep-backend/internal/session"
)

// SessionAuthorizer confirms a token still maps to a live session.
type SessionAuthorizer interface {
	Authorize(ctx context.Context, claims *service.SessionClaims) error
}

// HeaderSessionToken carries the session token re-signed with a renewed expiry.
const HeaderSessionToken = "X-Session-Token"

// TokenRefresher re-signs a validated token.
type TokenRefresher interface {
	Refresh(claims *service.SessionClaims) (string, error)
}

// RefreshSessionToken returns a renewed token on every authorized request, so
// an active session is not cut off by the expiry of the token it started with.
func RefreshSessionToken(tokens TokenRefresher) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokens == nil {
			c.Next()
			return
		}
		if claims := GetClaims(c); claims != nil {
			if signed, err := tokens.Refresh(claims); err == nil {
				c.Header(HeaderSessionToken, signed)
			}
		}
		c.Next()
	}
}

// RequireLiveSession rejects tokens whose session expired or was ended.
func RequireLiveSession(auth SessionAuthorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		if err := auth.Authorize(c.Request.Context(), claims); err != nil {
			if errors.Is(err, session.ErrNotFound) {
				response.AbortFail(c, http.StatusNotFound, response.ErrSessionNotFound)
				return
			}
			if errors.Is(err, service.ErrSessionTerminated) {
				response.AbortFail(c, http.StatusUnauthorized, response.ErrSessionInvalidated)
				return
			}
			response.AbortFail(c, http.StatusInternalServerError, response.ErrInternal)
			return
		}

		c.Next()
	}
}
