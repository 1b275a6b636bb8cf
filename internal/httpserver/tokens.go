// internal/httpserver/tokens.go
//
// Session handles.
// A session handle is an HS256 JWT whose subject is the session ID. It only
// addresses a session; it carries no user identity. The signing key is
// derived from the configured secret with HKDF-SHA256.

package httpserver

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/hkdf"
)

const (
	tokenIssuer = "wordtiles"
	keyInfo     = "wordtiles session handle v1"
)

var errBadToken = errors.New("invalid session token")

// Tokens signs and parses session handles.
type Tokens struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewTokens derives the signing key from secret. Handles expire after ttl.
func NewTokens(secret string, ttl time.Duration) (*Tokens, error) {
	if secret == "" {
		return nil, errors.New("empty token secret")
	}
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), []byte(tokenIssuer), []byte(keyInfo)), key); err != nil {
		return nil, fmt.Errorf("derive token key: %w", err)
	}
	return &Tokens{key: key, ttl: ttl, now: time.Now}, nil
}

// Sign issues a handle for session id.
func (t *Tokens) Sign(id string) (string, time.Time, error) {
	now := t.now()
	exp := now.Add(t.ttl)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   id,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	ss, err := tok.SignedString(t.key)
	return ss, exp, err
}

// Parse validates a handle and returns its session ID.
func (t *Tokens) Parse(raw string) (string, error) {
	var claims jwt.RegisteredClaims
	tok, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) { return t.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errBadToken, err)
	}
	if !tok.Valid || claims.Subject == "" {
		return "", errBadToken
	}
	return claims.Subject, nil
}
