// internal/api/router.go
//
// chi router for the public site and the admin panel.
//
/*
Context
--------
One router serves three audiences:

  - The public site: language-aware page and collection reads under
    `/api/<route>`, plus the contact and service-request forms.
  - The admin panel: `/api/admin/*`, gated by auth.RequireAdmin before any
    body is read.
  - Operators: `/api/health` and `/metrics`.

Route names come from schema.Catalog, so a new page or collection only
needs a descriptor.  Static routes (health, auth, submissions, upload)
win over the `{route}` parameters, which is how chi orders matches.

Middleware order
----------------

	RequestID → RealIP → RequestLog → Recoverer → ForceHTTPS → Security →
	CORS → Timeout

RequestLog sits outside Recoverer so a panic is logged with status 500.
*/
package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/joel-cespedes/petit/internal/apperr"
	"github.com/joel-cespedes/petit/internal/auth"
	"github.com/joel-cespedes/petit/internal/content"
	"github.com/joel-cespedes/petit/internal/middleware"
	"github.com/joel-cespedes/petit/internal/schema"
	"github.com/joel-cespedes/petit/internal/submission"
	"github.com/joel-cespedes/petit/internal/upload"
)

// DefaultMaxBody caps JSON request bodies when Deps.MaxBodyBytes is zero.
const DefaultMaxBody = 1 << 20

// Pinger reports store health; *store.Store satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators the router dispatches to.  Every field is
// required except the HTTP tuning knobs and UploadDir.
type Deps struct {
	Catalog     *schema.Catalog
	Resolver    *content.Resolver
	Editor      *content.Editor
	Submissions *submission.Service
	Credentials *auth.Credentials
	Tokens      *auth.Tokens
	Uploads     *upload.Service
	Health      Pinger

	// UploadDir, when set, is served read-only under UploadPrefix.
	UploadDir    string
	UploadPrefix string

	MaxBodyBytes   int64
	MaxUploadBytes int64
	RequestTimeout time.Duration
	AllowedOrigins []string
	ForceHTTPS     bool
}

type server struct {
	Deps
	gate *auth.Gate
}

// NewRouter wires every route.
func NewRouter(d Deps) http.Handler {
	if d.MaxBodyBytes <= 0 {
		d.MaxBodyBytes = DefaultMaxBody
	}
	if d.MaxUploadBytes <= 0 {
		d.MaxUploadBytes = upload.DefaultMaxBytes
	}
	if d.RequestTimeout <= 0 {
		d.RequestTimeout = 30 * time.Second
	}
	s := &server{Deps: d, gate: auth.NewGate(d.Tokens)}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLog)
	r.Use(chimw.Recoverer)
	r.Use(middleware.ForceHTTPS(d.ForceHTTPS))
	r.Use(middleware.Security)
	r.Use(middleware.CORS(d.AllowedOrigins))
	r.Use(chimw.Timeout(d.RequestTimeout))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		fail(w, r, apperr.NotFound("route "+r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, APIError{Code: CodeMethodNotAllowed, Message: "method not allowed"})
	})

	r.Handle("/metrics", promhttp.Handler())
	if d.UploadDir != "" && strings.HasPrefix(d.UploadPrefix, "/") {
		prefix := strings.TrimRight(d.UploadPrefix, "/")
		r.Handle(prefix+"/*", http.StripPrefix(prefix, noListing(http.FileServer(http.Dir(d.UploadDir)))))
	}

	requireAdmin := auth.RequireAdmin(s.gate, fail)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.health)

		r.Post("/auth/login", s.login)
		r.With(requireAdmin).Get("/auth/verify", s.verify)

		r.Post("/contact", s.createContact)
		r.Post("/service-request", s.createServiceRequest)

		r.Get("/{route}", s.read)
		r.Get("/{route}/{slug}", s.readSingle)

		r.Route("/admin", func(r chi.Router) {
			r.Use(requireAdmin)

			r.Get("/contact-submissions", s.listContacts)
			r.Put("/contact-submissions/{id}/read", s.markContactRead)
			r.Get("/service-requests", s.listServiceRequests)
			r.Post("/upload", s.upload)

			r.Get("/{route}", s.adminRead)
			r.Put("/{route}", s.adminUpdatePage)
			r.Post("/{route}", s.adminCreate)
			r.Get("/{route}/{id}", s.adminGet)
			r.Put("/{route}/{id}", s.adminUpdate)
			r.Delete("/{route}/{id}", s.adminDelete)
		})
	})
	return r
}

// noListing hides directory indexes.
func noListing(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			fail(w, r, apperr.NotFound("file"))
			return
		}
		h.ServeHTTP(w, r)
	})
}
