// internal/api/public.go
//
// Public handlers: content reads, form intake, health.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/joel-cespedes/petit/internal/apperr"
	"github.com/joel-cespedes/petit/internal/query"
	"github.com/joel-cespedes/petit/internal/submission"
)

// read serves GET /api/{route}: a page or a whole collection.
func (s *server) read(w http.ResponseWriter, r *http.Request) {
	route := chi.URLParam(r, "route")
	lng := r.URL.Query().Get("lang")

	if t, ok := s.Catalog.Page(route); ok {
		rec, err := s.Resolver.Page(r.Context(), t, lng)
		if err != nil {
			fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
		return
	}
	if t, ok := s.Catalog.Collection(route); ok {
		recs, err := s.Resolver.Collection(r.Context(), t, lng, query.Filter{Tag: r.URL.Query().Get("tag")})
		if err != nil {
			fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, recs)
		return
	}
	fail(w, r, apperr.NotFound("route "+route))
}

// readSingle serves GET /api/{route}/{slug}.
func (s *server) readSingle(w http.ResponseWriter, r *http.Request) {
	route := chi.URLParam(r, "route")
	t, ok := s.Catalog.Collection(route)
	if !ok || t.Slug == "" {
		fail(w, r, apperr.NotFound("route "+route))
		return
	}
	rec, err := s.Resolver.Single(r.Context(), t, r.URL.Query().Get("lang"), chi.URLParam(r, "slug"))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

type created struct {
	Success bool  `json:"success"`
	ID      int64 `json:"id"`
}

func (s *server) createContact(w http.ResponseWriter, r *http.Request) {
	var c submission.Contact
	if err := decode(w, r, s.MaxBodyBytes, &c); err != nil {
		fail(w, r, err)
		return
	}
	id, err := s.Submissions.CreateContact(r.Context(), c)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created{Success: true, ID: id})
}

func (s *server) createServiceRequest(w http.ResponseWriter, r *http.Request) {
	var sr submission.ServiceRequest
	if err := decode(w, r, s.MaxBodyBytes, &sr); err != nil {
		fail(w, r, err)
		return
	}
	id, err := s.Submissions.CreateServiceRequest(r.Context(), sr)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created{Success: true, ID: id})
}

// health answers 200 while the store answers a ping, 503 otherwise.
func (s *server) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.Health.Ping(ctx); err != nil {
		zap.L().Warn("health ping", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "db": "down"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "db": "up"})
}
