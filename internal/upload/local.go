package upload

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/joel-cespedes/petit/internal/routing"
)

// Local writes uploads into Dir and serves them under URLPrefix.
type Local struct {
	Dir       string
	URLPrefix string // e.g. "/uploads" or "https://api.example.com/uploads"
}

func (l Local) Name() string { return "local" }

// Put writes obj to Dir/obj.Name.  The file is created exclusively; a
// name collision is an error.
func (l Local) Put(_ context.Context, obj Object) (string, error) {
	if err := os.MkdirAll(l.Dir, 0o755); err != nil {
		return "", fmt.Errorf("upload: mkdir %s: %w", l.Dir, err)
	}
	dest := filepath.Join(l.Dir, filepath.Base(obj.Name))
	f, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("upload: create %s: %w", dest, err)
	}
	if _, err := io.Copy(f, obj.Body); err != nil {
		_ = f.Close()
		_ = os.Remove(dest)
		return "", fmt.Errorf("upload: write %s: %w", dest, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("upload: close %s: %w", dest, err)
	}
	return l.url(obj.Name), nil
}

func (l Local) url(name string) string {
	if strings.Contains(l.URLPrefix, "://") {
		return strings.TrimRight(l.URLPrefix, "/") + "/" + name
	}
	return routing.BuildPath(l.URLPrefix, name)
}
