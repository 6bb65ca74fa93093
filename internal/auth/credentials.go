// internal/auth/credentials.go
//
// Admin credential lookup.
//
// Context
// -------
// Admin accounts live in one table:
//
//	admin_users (id PK, username UNIQUE, password_hash, created_at)
//
// Login needs one answer: does this username/password pair match a row?
// `Check()` runs one parameterised read through the store and compares the
// bcrypt hash.
//
// Notes
// -----
// • Unknown user and wrong password return the same error.  A compare
//   against a fixed hash runs for unknown users so both paths cost about
//   the same.
// • Store faults pass through classified; they are not login failures.
package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/joel-cespedes/petit/internal/apperr"
	"github.com/joel-cespedes/petit/internal/query"
	"github.com/joel-cespedes/petit/internal/store"
)

// ErrBadCredentials is returned by Check for any login failure.  It
// matches apperr.ErrUnauthenticated.
var ErrBadCredentials = fmt.Errorf("invalid username or password: %w", apperr.ErrUnauthenticated)

// dummyHash is a well-formed cost-10 bcrypt hash that matches no password
// in use.
var dummyHash = []byte("$2a$10$CwTycUXWue0Thq9StjUM0uJ8.5qO1R0KoeVZSdcHaKx2f0KDNSs5y")

// Getter is the read used by Credentials; *store.Store satisfies it.
type Getter interface {
	Get(ctx context.Context, st query.Statement) (store.Record, error)
}

// Credentials checks admin logins against admin_users.
type Credentials struct {
	store Getter
}

// NewCredentials returns a checker reading from s.
func NewCredentials(s Getter) *Credentials { return &Credentials{store: s} }

// Check verifies username/password.
func (c *Credentials) Check(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return ErrBadCredentials
	}
	st := query.Statement{
		Table:  "admin_users",
		Kind:   query.Select,
		Text:   "SELECT password_hash FROM admin_users WHERE username = :username LIMIT 1",
		Params: map[string]any{"username": username},
	}

	rec, err := c.store.Get(ctx, st)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return ErrBadCredentials
	case err != nil:
		return err
	}

	hash, _ := rec["password_hash"].(string)
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return ErrBadCredentials
	}
	return nil
}
