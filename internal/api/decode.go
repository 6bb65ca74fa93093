// internal/api/decode.go
//
// Request body and path parameter parsing.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/joel-cespedes/petit/internal/apperr"
)

// decodeObject reads a JSON object body.  Numbers stay json.Number so
// integer ids survive intact.
func decodeObject(w http.ResponseWriter, r *http.Request, limit int64) (map[string]any, error) {
	var raw any
	if err := decode(w, r, limit, &raw); err != nil {
		return nil, err
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, apperr.Invalid("body must be a JSON object")
	}
	return obj, nil
}

// decode reads exactly one JSON value into v.  An empty body is
// apperr.ErrEmptyPayload.
func decode(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		var tooBig *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return apperr.ErrEmptyPayload
		case errors.As(err, &tooBig):
			return err
		default:
			return apperr.Invalid("malformed JSON: %v", err)
		}
	}
	if dec.More() {
		return apperr.Invalid("body must hold a single JSON value")
	}
	return nil
}

// pathID parses the {id} segment as a positive integer.
func pathID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Invalid("id must be a positive integer, got %q", raw)
	}
	return id, nil
}
