// internal/auth/context.go
//
// Request-context helper for the authenticated admin.
//
// Usage
// -----
//     // RequireAdmin attaches the username after the token verifies.
//     ctx = auth.WithUser(ctx, "admin")
//
//     // Handlers downstream read it back.
//     name, ok := auth.Username(ctx)   // "admin", true
//
// Notes
// -----
// • Stores the username string; there is a single admin role, so no role
//   set travels with it.

package auth

import "context"

// userKey is unexported to avoid context-key collisions.
type userKey struct{}

// WithUser returns a new context carrying username.
func WithUser(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, userKey{}, username)
}

// Username extracts the username from ctx.  It returns ("", false) if none
// is set.
func Username(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(userKey{}).(string)
	return name, ok && name != ""
}
