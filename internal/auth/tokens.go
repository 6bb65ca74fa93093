// internal/auth/tokens.go
//
// Session tokens (HS256 JWT).
//
// Context
// -------
// A successful login yields a bearer token carrying the username as `sub`
// and an expiry.  Verify re-checks signature, algorithm, issuer, and
// expiry; every failure collapses to apperr.ErrUnauthenticated so callers
// cannot tell a forged token from an expired one.
//
// Notes
// -----
// • The secret comes from config (usually a vault: reference).
// • Clock skew tolerance is 30 seconds.

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/joel-cespedes/petit/internal/apperr"
)

const leeway = 30 * time.Second

var ErrShortSecret = errors.New("auth: jwt secret must be at least 32 bytes")

// Session is the verified content of a token.
type Session struct {
	Username string
	Expiry   time.Time
}

// Tokens issues and verifies session tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// NewTokens returns a Tokens signer.  ttl <= 0 defaults to 24h.
func NewTokens(secret string, ttl time.Duration, issuer string) (*Tokens, error) {
	if len(secret) < 32 {
		return nil, ErrShortSecret
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Tokens{secret: []byte(secret), ttl: ttl, issuer: issuer, now: time.Now}, nil
}

// TTL reports the lifetime of issued tokens.
func (t *Tokens) TTL() time.Duration { return t.ttl }

// Issue signs a token for username.
func (t *Tokens) Issue(username string) (string, time.Time, error) {
	now := t.now()
	exp := now.Add(t.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   username,
		Issuer:    t.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, exp, nil
}

// Verify parses raw and returns its session.
func (t *Tokens) Verify(raw string) (Session, error) {
	if raw == "" {
		return Session{}, apperr.ErrUnauthenticated
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(leeway),
		jwt.WithTimeFunc(t.now),
	}
	if t.issuer != "" {
		opts = append(opts, jwt.WithIssuer(t.issuer))
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	}, opts...)
	if err != nil || claims.Subject == "" {
		return Session{}, apperr.ErrUnauthenticated
	}
	return Session{Username: claims.Subject, Expiry: claims.ExpiresAt.Time}, nil
}
