// Package auth provides JWT issuing/validation, password hashing, and the
// HTTP middleware that turns a bearer token into a request principal.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Akshit358/Job-Tracker-CRM/internal/model"
)

const tokenLifetime = 24 * time.Hour

// TokenService signs and verifies JWT access tokens. The same HMAC secret
// is used for both; it should be at least 32 bytes of random data in
// production (openssl rand -hex 32).
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// claims is the token payload: the standard registered claims plus the
// user's role, so the admin gate doesn't need a DB lookup per request.
type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Generate creates and signs an access token for the given user.
func (s *TokenService) Generate(userID string, role model.Role) (string, error) {
	return s.GenerateWithDuration(userID, role, tokenLifetime)
}

// GenerateWithDuration creates a token with a custom expiry. Used by tests
// to mint already-expired tokens.
func (s *TokenService) GenerateWithDuration(userID string, role model.Role, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    "job-tracker",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// Validate parses and verifies a token string, returning the user id and
// role carried in the claims.
func (s *TokenService) Validate(tokenString string) (string, model.Role, error) {
	var c claims

	token, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (any, error) {
		// Reject any algorithm other than the one we sign with; "none"
		// and RS256-substitution attacks both die here.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return "", "", fmt.Errorf("auth: parsing token: %w", err)
	}
	if !token.Valid {
		return "", "", errors.New("auth: invalid token")
	}
	if c.Subject == "" {
		return "", "", errors.New("auth: token missing subject")
	}
	return c.Subject, model.Role(c.Role), nil
}
