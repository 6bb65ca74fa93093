// internal/auth/middleware.go
//
// Admin Access Gate and the chi middleware that enforces it.

package auth

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/joel-cespedes/petit/internal/apperr"
)

// Verifier is satisfied by *Tokens.
type Verifier interface {
	Verify(raw string) (Session, error)
}

// Gate decides whether a bearer token belongs to a live admin session.
type Gate struct {
	tokens Verifier
}

// NewGate returns a Gate backed by v.
func NewGate(v Verifier) *Gate { return &Gate{tokens: v} }

// Authorize returns the username behind token or apperr.ErrUnauthenticated.
func (g *Gate) Authorize(token string) (string, error) {
	s, err := g.tokens.Verify(token)
	if err != nil {
		return "", apperr.ErrUnauthenticated
	}
	return s.Username, nil
}

// BearerToken extracts the token from an `Authorization: Bearer …` header.
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(h[len(prefix):])
}

// RequireAdmin halts the request with deny unless the bearer token
// authorizes.  It runs before any body is read, so nothing downstream sees
// unauthenticated input.
func RequireAdmin(g *Gate, deny func(http.ResponseWriter, *http.Request, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			name, err := g.Authorize(BearerToken(r))
			if err != nil {
				zap.L().Debug("admin denied", zap.String("path", r.URL.Path))
				deny(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), name)))
		})
	}
}
