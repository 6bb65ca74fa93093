// internal/submission/submission.go
//
// Public form intake: contact messages and service requests.
//
// Context
// -------
// Both forms are append-only from the public side.  Payloads are decoded
// into typed structs, checked with go-playground/validator, and written
// through the same statement builder and commit boundary as admin edits,
// against the descriptor tables in schema.  Admins list them newest first
// and may flag a contact message as read.
//
// Notes
// -----
//   - Validation failures wrap apperr.ErrInvalidPayload and name every
//     offending field.
//   - Nothing here is language-aware.
package submission

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/joel-cespedes/petit/internal/apperr"
	"github.com/joel-cespedes/petit/internal/query"
	"github.com/joel-cespedes/petit/internal/schema"
	"github.com/joel-cespedes/petit/internal/store"
)

//
// payloads
//

// Contact is the public contact-form body.
type Contact struct {
	Name    string `json:"name"    validate:"required,max=200"`
	Email   string `json:"email"   validate:"required,email,max=254"`
	Phone   string `json:"phone"   validate:"omitempty,max=50"`
	Subject string `json:"subject" validate:"omitempty,max=300"`
	Message string `json:"message" validate:"required,max=5000"`
}

// ServiceRequest is the public "request this service" body.
type ServiceRequest struct {
	ServiceID int64  `json:"service_id" validate:"required,gt=0"`
	Name      string `json:"name"       validate:"required,max=200"`
	Email     string `json:"email"      validate:"required,email,max=254"`
	Phone     string `json:"phone"      validate:"omitempty,max=50"`
}

//
// service
//

// Store is the subset of *store.Store used here.
type Store interface {
	Select(ctx context.Context, st query.Statement) ([]store.Record, error)
	Exec(ctx context.Context, st query.Statement) (store.Result, error)
	Builder() query.Builder
}

// Service writes and lists submissions.
type Service struct {
	store    Store
	validate *validator.Validate
}

// New returns a Service over s.
func New(s Store) *Service {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Service{store: s, validate: v}
}

// CreateContact stores one contact message and returns its id.
func (s *Service) CreateContact(ctx context.Context, c Contact) (int64, error) {
	c = Contact{
		Name:    strings.TrimSpace(c.Name),
		Email:   strings.TrimSpace(c.Email),
		Phone:   strings.TrimSpace(c.Phone),
		Subject: strings.TrimSpace(c.Subject),
		Message: strings.TrimSpace(c.Message),
	}
	if err := s.check(c); err != nil {
		return 0, err
	}
	t := schema.ContactSubmissions
	return s.insert(ctx, query.NewFieldSet(t,
		query.Field{Column: "name", Value: c.Name},
		query.Field{Column: "email", Value: c.Email},
		query.Field{Column: "phone", Value: c.Phone},
		query.Field{Column: "subject", Value: c.Subject},
		query.Field{Column: "message", Value: c.Message},
	))
}

// CreateServiceRequest stores one service request and returns its id.
func (s *Service) CreateServiceRequest(ctx context.Context, r ServiceRequest) (int64, error) {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
	if err := s.check(r); err != nil {
		return 0, err
	}
	t := schema.ServiceRequests
	return s.insert(ctx, query.NewFieldSet(t,
		query.Field{Column: "service_id", Value: r.ServiceID},
		query.Field{Column: "name", Value: r.Name},
		query.Field{Column: "email", Value: r.Email},
		query.Field{Column: "phone", Value: r.Phone},
	))
}

// ListContacts returns every contact message, newest first.
func (s *Service) ListContacts(ctx context.Context) ([]store.Record, error) {
	return s.store.Select(ctx, query.SelectAll(schema.ContactSubmissions))
}

// ListServiceRequests returns every service request, newest first.
func (s *Service) ListServiceRequests(ctx context.Context) ([]store.Record, error) {
	return s.store.Select(ctx, query.SelectAll(schema.ServiceRequests))
}

// MarkContactRead flags one contact message as read.
func (s *Service) MarkContactRead(ctx context.Context, id int64) error {
	t := schema.ContactSubmissions
	st, err := s.store.Builder().Build(t, query.Update,
		query.NewFieldSet(t, query.Field{Column: "is_read", Value: true}), &query.Key{ID: id})
	if err != nil {
		return err
	}
	res, err := s.store.Exec(ctx, st)
	if err != nil {
		return err
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("contact submission")
	}
	return nil
}

func (s *Service) insert(ctx context.Context, fs query.FieldSet) (int64, error) {
	st, err := s.store.Builder().Build(fs.Table(), query.Insert, fs, nil)
	if err != nil {
		return 0, err
	}
	res, err := s.store.Exec(ctx, st)
	if err != nil {
		return 0, err
	}
	return res.GeneratedID, nil
}

func (s *Service) check(v any) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Invalid("%v", err)
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
	}
	return apperr.Invalid("invalid fields: %s", strings.Join(parts, ", "))
}
