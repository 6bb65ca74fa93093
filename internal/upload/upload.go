// internal/upload/upload.go
//
// Image upload collaborator.
//
// Context
// -------
// Admins attach images to pages and items.  Save checks the extension
// against a fixed allow-list, discards the client's filename in favour of a
// random UUID, and hands the bytes to a Backend (local directory or S3).
// The returned URL is what the admin stores in an image column.
//
// Notes
// -----
//   - The storage location is injected via Backend; there is no
//     process-wide upload directory.
//   - Size is capped by MaxBytes; the HTTP layer also caps the request body.
package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/joel-cespedes/petit/internal/apperr"
	"github.com/joel-cespedes/petit/internal/metrics"
)

// DefaultMaxBytes caps one upload at 10 MiB.
const DefaultMaxBytes int64 = 10 << 20

var (
	ErrExtensionNotAllowed = fmt.Errorf("%w: file type not allowed", apperr.ErrInvalidPayload)
	ErrTooLarge            = fmt.Errorf("%w: file too large", apperr.ErrInvalidPayload)
	ErrEmpty               = fmt.Errorf("%w: empty file", apperr.ErrInvalidPayload)
)

var allowed = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
}

// Object is one file handed to a backend.
type Object struct {
	Name        string // opaque, e.g. 9f0c….png
	ContentType string
	Size        int64
	Body        io.Reader
}

// Backend persists an Object and returns its public URL.
type Backend interface {
	Name() string
	Put(ctx context.Context, obj Object) (url string, err error)
}

// Service validates and stores uploads.
type Service struct {
	backend  Backend
	maxBytes int64
	newName  func() string
}

// New returns a Service writing to b.  maxBytes <= 0 uses DefaultMaxBytes.
func New(b Backend, maxBytes int64) *Service {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Service{backend: b, maxBytes: maxBytes, newName: func() string { return uuid.NewString() }}
}

// Allowed reports whether filename carries a permitted extension.
func Allowed(filename string) bool {
	_, ok := allowed[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// Save stores r under a fresh name with filename's extension.
func (s *Service) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	ct, ok := allowed[ext]
	if !ok {
		return "", ErrExtensionNotAllowed
	}

	// Read one byte past the cap to detect oversize bodies.
	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("upload: read: %w", err)
	}
	switch {
	case len(data) == 0:
		return "", ErrEmpty
	case int64(len(data)) > s.maxBytes:
		return "", ErrTooLarge
	}

	obj := Object{
		Name:        s.newName() + ext,
		ContentType: ct,
		Size:        int64(len(data)),
		Body:        bytes.NewReader(data),
	}
	url, err := s.backend.Put(ctx, obj)
	if err != nil {
		zap.L().Error("upload put", zap.String("backend", s.backend.Name()), zap.Error(err))
		return "", errors.Join(apperr.ErrStoreUnavailable, err)
	}
	metrics.UploadsTotal.WithLabelValues(s.backend.Name()).Inc()
	zap.L().Info("upload stored", zap.String("name", obj.Name), zap.Int64("bytes", obj.Size))
	return url, nil
}
