// Package auth verifies the signed credential token presented at
// connection time and derives the identity every pipeline call is scoped
// by.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the authenticated user, fixed once per connection. It is
// threaded explicitly through the pipeline, never read from message
// payloads.
type Identity struct {
	UserID string
}

var (
	ErrNoToken      = errors.New("no credential token provided")
	ErrInvalidToken = errors.New("invalid credential token")
)

// Verifier checks HS256-signed tokens.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) (*Verifier, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("auth secret is required")
	}
	return &Verifier{secret: []byte(secret)}, nil
}

// Verify parses and validates a raw token and returns the identity from
// its subject claim.
func (v *Verifier) Verify(raw string) (Identity, error) {
	claims := &jwt.RegisteredClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !tok.Valid || strings.TrimSpace(claims.Subject) == "" {
		return Identity{}, ErrInvalidToken
	}
	return Identity{UserID: claims.Subject}, nil
}

// Sign issues a token for the given user. Used by tests and local tooling;
// production tokens come from the account service.
func (v *Verifier) Sign(userID string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	})
	signed, err := tok.SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// TokenFromRequest extracts the raw credential from the token cookie or,
// failing that, an Authorization bearer header.
func TokenFromRequest(r *http.Request) (string, error) {
	if c, err := r.Cookie("token"); err == nil && c.Value != "" {
		return c.Value, nil
	}
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		if tok := strings.TrimSpace(after); tok != "" {
			return tok, nil
		}
	}
	return "", ErrNoToken
}
