// internal/api/respond.go
//
// JSON responses and the error → HTTP mapping.
//
// Context
// -------
// Every failure leaves the API as `{code, message, hint}`.  Code is a
// stable identifier the admin panel switches on; message says what went
// wrong; hint, when present, says how to fix the request.
//
//	400  INVALID_LANGUAGE, UNKNOWN_FIELD, EMPTY_PAYLOAD, INVALID_PAYLOAD
//	401  UNAUTHENTICATED
//	404  NOT_FOUND
//	409  CONSTRAINT_VIOLATION
//	413  PAYLOAD_TOO_LARGE
//	503  STORE_UNAVAILABLE
//	500  INTERNAL_ERROR
//
// Notes
// -----
//   - 5xx bodies carry a fixed message; the wrapped error is logged with
//     the request id and never sent to the caller.
//   - 4xx are logged at DEBUG only.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/joel-cespedes/petit/internal/apperr"
	"github.com/joel-cespedes/petit/internal/lang"
	"github.com/joel-cespedes/petit/internal/upload"
)

// Error codes.
const (
	CodeInvalidLanguage     = "INVALID_LANGUAGE"
	CodeUnknownField        = "UNKNOWN_FIELD"
	CodeEmptyPayload        = "EMPTY_PAYLOAD"
	CodeInvalidPayload      = "INVALID_PAYLOAD"
	CodeUnauthenticated     = "UNAUTHENTICATED"
	CodeNotFound            = "NOT_FOUND"
	CodeMethodNotAllowed    = "METHOD_NOT_ALLOWED"
	CodeConstraintViolation = "CONSTRAINT_VIOLATION"
	CodePayloadTooLarge     = "PAYLOAD_TOO_LARGE"
	CodeStoreUnavailable    = "STORE_UNAVAILABLE"
	CodeInternal            = "INTERNAL_ERROR"
)

// APIError is the body of every error response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("write response", zap.Error(err))
	}
}

// fail writes the response for err.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	status, body := describe(err)
	fields := []zap.Field{
		zap.String("request_id", chimw.GetReqID(r.Context())),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		zap.L().Error("request failed", fields...)
	} else {
		zap.L().Debug("request rejected", fields...)
	}
	writeJSON(w, status, body)
}

func describe(err error) (int, APIError) {
	var tooBig *http.MaxBytesError
	var unknown *apperr.UnknownFieldError

	switch {
	case errors.Is(err, apperr.ErrInvalidLanguage):
		return http.StatusBadRequest, APIError{
			Code: CodeInvalidLanguage, Message: err.Error(),
			Hint: "pass lang as one of " + langList(),
		}
	case errors.As(err, &unknown):
		return http.StatusBadRequest, APIError{
			Code: CodeUnknownField, Message: err.Error(),
			Hint: "remove " + unknown.Field + " from the request body",
		}
	case errors.Is(err, apperr.ErrEmptyPayload):
		return http.StatusBadRequest, APIError{
			Code: CodeEmptyPayload, Message: err.Error(),
			Hint: "send at least one field",
		}
	case errors.As(err, &tooBig), errors.Is(err, upload.ErrTooLarge):
		return http.StatusRequestEntityTooLarge, APIError{
			Code: CodePayloadTooLarge, Message: "request body too large",
		}
	case errors.Is(err, apperr.ErrInvalidPayload):
		return http.StatusBadRequest, APIError{Code: CodeInvalidPayload, Message: err.Error()}
	case errors.Is(err, apperr.ErrUnauthenticated):
		return http.StatusUnauthorized, APIError{
			Code: CodeUnauthenticated, Message: err.Error(),
			Hint: "log in and send Authorization: Bearer <token>",
		}
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound, APIError{Code: CodeNotFound, Message: err.Error()}
	case errors.Is(err, apperr.ErrConstraintViolation):
		return http.StatusConflict, APIError{
			Code: CodeConstraintViolation, Message: "the change conflicts with existing data",
			Hint: "check unique values such as slug and referenced ids",
		}
	case errors.Is(err, apperr.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, APIError{
			Code: CodeStoreUnavailable, Message: "storage is temporarily unavailable",
			Hint: "retry later",
		}
	default:
		return http.StatusInternalServerError, APIError{Code: CodeInternal, Message: "internal error"}
	}
}

func langList() string {
	s := ""
	for i, c := range lang.All() {
		if i > 0 {
			s += ", "
		}
		s += string(c)
	}
	return s
}
