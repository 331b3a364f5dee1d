package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stemsi/tamilprep-backend/internal/config"
)

// SessionClaims identifies a practice session.
type SessionClaims struct {
	jwt.RegisteredClaims
	SessionID uuid.UUID `json:"sid"`
}

// TokenService signs and validates practice session tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService whose tokens live as long as sessions do.
func NewTokenService(cfg *config.Config) *TokenService {
	return &TokenService{secret: []byte(cfg.SessionSecret), ttl: cfg.SessionTTL}
}

// Issue returns a signed token for sessionID together with its jti.
func (s *TokenService) Issue(sessionID uuid.UUID) (signed string, jti string, err error) {
	jti = uuid.New().String()
	signed, err = s.sign(sessionID, jti)
	if err != nil {
		return "", "", err
	}
	return signed, jti, nil
}

// Refresh re-signs a validated token with a renewed expiry. The jti is kept,
// so the session's current token stays the same.
func (s *TokenService) Refresh(claims *SessionClaims) (string, error) {
	return s.sign(claims.SessionID, claims.ID)
}

func (s *TokenService) sign(sessionID uuid.UUID, jti string) (string, error) {
	now := time.Now()

	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   sessionID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		SessionID: sessionID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate parses and validates a token, returning the claims.
func (s *TokenService) Validate(tokenStr string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.SessionID == uuid.Nil {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}
