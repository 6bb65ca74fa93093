// internal/api/session.go
//
// Admin login and token check.
package api

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/joel-cespedes/petit/internal/auth"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}

// login exchanges credentials for a bearer token.
func (s *server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(w, r, s.MaxBodyBytes, &req); err != nil {
		fail(w, r, err)
		return
	}
	req.Username = strings.TrimSpace(req.Username)

	if err := s.Credentials.Check(r.Context(), req.Username, req.Password); err != nil {
		fail(w, r, err)
		return
	}
	token, exp, err := s.Tokens.Issue(req.Username)
	if err != nil {
		fail(w, r, err)
		return
	}
	zap.L().Info("admin login", zap.String("username", req.Username))
	writeJSON(w, http.StatusOK, loginResponse{Token: token, Username: req.Username, ExpiresAt: exp.UTC()})
}

// verify runs behind RequireAdmin, so reaching it means the token is live.
func (s *server) verify(w http.ResponseWriter, r *http.Request) {
	name, _ := auth.Username(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"valid": true, "username": name})
}
