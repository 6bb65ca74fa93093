// internal/api/admin.go
//
// Admin handlers.  Every route here is mounted behind auth.RequireAdmin.
//
// Pages are addressed as /api/admin/{page} (GET, PUT); collections as
// /api/admin/{collection} (GET, POST) and /api/admin/{collection}/{id}
// (GET, PUT, DELETE).  Bodies go to content.Editor untouched; the Field
// Validator is the only gate between request keys and statement text.
package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/joel-cespedes/petit/internal/apperr"
	"github.com/joel-cespedes/petit/internal/auth"
	"github.com/joel-cespedes/petit/internal/query"
	"github.com/joel-cespedes/petit/internal/schema"
)

type done struct {
	Success      bool  `json:"success"`
	RowsAffected int64 `json:"rows_affected"`
}

func (s *server) collection(w http.ResponseWriter, r *http.Request) (*schema.Table, bool) {
	route := chi.URLParam(r, "route")
	t, ok := s.Catalog.Collection(route)
	if !ok {
		fail(w, r, apperr.NotFound("collection "+route))
	}
	return t, ok
}

// adminRead serves GET /api/admin/{route} for pages and collections.
func (s *server) adminRead(w http.ResponseWriter, r *http.Request) {
	route := chi.URLParam(r, "route")
	if t, ok := s.Catalog.Page(route); ok {
		rec, err := s.Editor.GetPage(r.Context(), t)
		if err != nil {
			fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
		return
	}
	t, ok := s.collection(w, r)
	if !ok {
		return
	}
	recs, err := s.Editor.List(r.Context(), t)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *server) adminUpdatePage(w http.ResponseWriter, r *http.Request) {
	route := chi.URLParam(r, "route")
	t, ok := s.Catalog.Page(route)
	if !ok {
		fail(w, r, apperr.NotFound("page "+route))
		return
	}
	body, err := decodeObject(w, r, s.MaxBodyBytes)
	if err != nil {
		fail(w, r, err)
		return
	}
	res, err := s.Editor.UpdatePage(r.Context(), t, body)
	if err != nil {
		fail(w, r, err)
		return
	}
	s.audit(r, "update", t, query.PageID)
	writeJSON(w, http.StatusOK, done{Success: true, RowsAffected: res.RowsAffected})
}

func (s *server) adminCreate(w http.ResponseWriter, r *http.Request) {
	t, ok := s.collection(w, r)
	if !ok {
		return
	}
	body, err := decodeObject(w, r, s.MaxBodyBytes)
	if err != nil {
		fail(w, r, err)
		return
	}
	id, err := s.Editor.Create(r.Context(), t, body)
	if err != nil {
		fail(w, r, err)
		return
	}
	s.audit(r, "create", t, id)
	writeJSON(w, http.StatusCreated, created{Success: true, ID: id})
}

func (s *server) adminGet(w http.ResponseWriter, r *http.Request) {
	t, ok := s.collection(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	rec, err := s.Editor.Get(r.Context(), t, id)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *server) adminUpdate(w http.ResponseWriter, r *http.Request) {
	t, ok := s.collection(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	body, err := decodeObject(w, r, s.MaxBodyBytes)
	if err != nil {
		fail(w, r, err)
		return
	}
	res, err := s.Editor.Update(r.Context(), t, id, body)
	if err != nil {
		fail(w, r, err)
		return
	}
	s.audit(r, "update", t, id)
	writeJSON(w, http.StatusOK, done{Success: true, RowsAffected: res.RowsAffected})
}

// adminDelete succeeds with rows_affected 0 when the row is already gone.
func (s *server) adminDelete(w http.ResponseWriter, r *http.Request) {
	t, ok := s.collection(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	res, err := s.Editor.Delete(r.Context(), t, id)
	if err != nil {
		fail(w, r, err)
		return
	}
	s.audit(r, "delete", t, id)
	writeJSON(w, http.StatusOK, done{Success: true, RowsAffected: res.RowsAffected})
}

//
// submissions
//

func (s *server) listContacts(w http.ResponseWriter, r *http.Request) {
	recs, err := s.Submissions.ListContacts(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *server) listServiceRequests(w http.ResponseWriter, r *http.Request) {
	recs, err := s.Submissions.ListServiceRequests(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *server) markContactRead(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	if err := s.Submissions.MarkContactRead(r.Context(), id); err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, done{Success: true, RowsAffected: 1})
}

//
// upload
//

// upload stores the multipart field "file" and returns its public URL.
func (s *server) upload(w http.ResponseWriter, r *http.Request) {
	// Leave room for multipart framing around the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, s.MaxUploadBytes+64<<10)

	f, hdr, err := r.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			fail(w, r, err)
			return
		}
		fail(w, r, apperr.Invalid("no file uploaded in field \"file\""))
		return
	}
	defer f.Close()

	url, err := s.Uploads.Save(r.Context(), hdr.Filename, f)
	if err != nil {
		fail(w, r, err)
		return
	}
	user, _ := auth.Username(r.Context())
	zap.L().Info("admin upload", zap.String("username", user), zap.String("url", url))
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

// audit logs one admin write.
func (s *server) audit(r *http.Request, action string, t *schema.Table, id int64) {
	user, _ := auth.Username(r.Context())
	zap.L().Info("admin "+action,
		zap.String("username", user),
		zap.String("table", t.Name),
		zap.Int64("id", id),
	)
}
