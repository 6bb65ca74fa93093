// internal/apperr/apperr.go
//
// Error taxonomy shared by the data-access core and the HTTP layer.
//
// Context
// -------
// Validation faults (InvalidLanguage, UnknownField, EmptyPayload,
// InvalidPayload) are raised before any store access and are never
// retried.  Unauthenticated halts a request before a data-access component
// runs.  NotFound is an expected outcome of resolution.  ConstraintViolation
// and StoreUnavailable are store faults, always surfaced through *StoreError
// so the driver error stays reachable via errors.Unwrap.
//
// Notes
// -----
//   - Callers test with errors.Is against the sentinels below.
//   - *UnknownFieldError matches ErrUnknownField.
package apperr

import (
	"errors"
	"fmt"
)

// Sentinels.
var (
	ErrInvalidLanguage     = errors.New("invalid language")
	ErrUnknownField        = errors.New("unknown field")
	ErrEmptyPayload        = errors.New("no data provided")
	ErrInvalidPayload      = errors.New("invalid payload")
	ErrUnauthenticated     = errors.New("unauthenticated")
	ErrNotFound            = errors.New("not found")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrStoreUnavailable    = errors.New("store unavailable")
)

// UnknownFieldError names the first field rejected by the allow-list.
type UnknownFieldError struct {
	Table string
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown field %q for %s", e.Field, e.Table)
}

// Is lets errors.Is(err, ErrUnknownField) succeed.
func (e *UnknownFieldError) Is(target error) bool { return target == ErrUnknownField }

// StoreKind classifies a store-level failure.
type StoreKind int

const (
	ConstraintViolation StoreKind = iota + 1
	StoreUnavailable
)

func (k StoreKind) String() string {
	switch k {
	case ConstraintViolation:
		return "constraint_violation"
	case StoreUnavailable:
		return "store_unavailable"
	default:
		return "unknown"
	}
}

// StoreError wraps a driver error with its classification.  Op names the
// logical operation (e.g. "insert services").
type StoreError struct {
	Kind StoreKind
	Op   string
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Is maps the kind onto the matching sentinel.
func (e *StoreError) Is(target error) bool {
	switch target {
	case ErrConstraintViolation:
		return e.Kind == ConstraintViolation
	case ErrStoreUnavailable:
		return e.Kind == StoreUnavailable
	}
	return false
}

// Invalid wraps ErrInvalidPayload with a caller-facing reason.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidPayload, fmt.Sprintf(format, args...))
}

// NotFound wraps ErrNotFound with the missing subject.
func NotFound(what string) error {
	return fmt.Errorf("%s %w", what, ErrNotFound)
}
