package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"redesperanza/web/internal/ids"
)

var ErrInvalidCookie = errors.New("session: invalid cookie")

type cookieClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// EncodeCookie signs a session id into the value stored in the browser cookie.
func (m *Manager) EncodeCookie(sessionID string) (string, error) {
	now := time.Now()
	claims := cookieClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if m.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(m.ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.cookieKey[:])
	if err != nil {
		return "", fmt.Errorf("sign session cookie: %w", err)
	}
	return signed, nil
}

// DecodeCookie returns the session id of a cookie value issued by EncodeCookie.
func (m *Manager) DecodeCookie(value string) (string, error) {
	if value == "" {
		return "", ErrInvalidCookie
	}

	claims := &cookieClaims{}
	token, err := jwt.ParseWithClaims(value, claims, func(*jwt.Token) (interface{}, error) {
		return m.cookieKey[:], nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return "", ErrInvalidCookie
	}
	if !ids.Valid(claims.SessionID) {
		return "", ErrInvalidCookie
	}
	return claims.SessionID, nil
}

// NewSessionID returns a fresh id for a browser without a valid cookie.
func NewSessionID() string {
	return ids.New()
}
