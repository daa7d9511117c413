// Package service holds business logic orchestration across repositories and handlers.
// Kept intentionally lean: only use-case coordination, validation and domain error shaping.
package service

import (
	"context"
	"errors"

	"github.com/maxviazov/tracker-dashboard/internal/model"
	"github.com/maxviazov/tracker-dashboard/internal/repository"
)

// ErrInvalidInput is the marker error for aggregated validation failures (maps to HTTP 400).
// Field-level details are retrieved via FieldErrors(err).
var ErrInvalidInput = errors.New("invalid input")

// ErrInvalidCredentials is returned by Authenticate for an unknown email or a wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// FieldError describes a single invalid field in a client request.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// invalidInputError aggregates multiple FieldError instances and unwraps to ErrInvalidInput.
type invalidInputError struct {
	fields []FieldError
}

func (e *invalidInputError) Error() string        { return ErrInvalidInput.Error() }
func (e *invalidInputError) Unwrap() error        { return ErrInvalidInput }
func (e *invalidInputError) Fields() []FieldError { return e.fields }

// newInvalidInput builds an aggregated validation error if any field errors are present.
func newInvalidInput(fe []FieldError) error {
	if len(fe) == 0 { // protective case
		return nil
	}
	return &invalidInputError{fields: fe}
}

// InvalidField builds a validation error for a single field.
func InvalidField(field, message string) error {
	return newInvalidInput([]FieldError{{Field: field, Message: message}})
}

// FieldErrors extracts field errors from an aggregated validation error.
func FieldErrors(err error) []FieldError {
	if err == nil {
		return nil
	}
	type feIface interface{ Fields() []FieldError }
	var v feIface
	if errors.As(err, &v) && errors.Is(err, ErrInvalidInput) {
		return v.Fields()
	}
	return nil
}

// describedError attaches the sentence shown to dashboard users to a domain error.
type describedError struct {
	err  error
	desc string
}

func (e *describedError) Error() string { return e.err.Error() + ": " + e.desc }
func (e *describedError) Unwrap() error { return e.err }

func describe(err error, desc string) error {
	return &describedError{err: err, desc: desc}
}

// Description returns the user-facing text carried by err, or "" if it has none.
// Validation errors describe themselves with their first field message.
func Description(err error) string {
	var d *describedError
	if errors.As(err, &d) {
		return d.desc
	}
	if fe := FieldErrors(err); len(fe) > 0 {
		return fe[0].Message
	}
	return ""
}

// TrackerService defines tracker (dynamic object) use cases.
type TrackerService interface {
	// Bootstrap creates the system objects the dashboard relies on.
	Bootstrap(ctx context.Context) error
	CreateTracker(ctx context.Context, schema model.TrackerSchema) error
	DropTracker(ctx context.Context, name string) error
	Insert(ctx context.Context, object string, row model.Row) error
	Update(ctx context.Context, object string, where, values model.Row, page repository.Page) (int, error)
	Delete(ctx context.Context, object string, id any) error
	Select(ctx context.Context, object string, q repository.Query) ([]model.Row, error)
	Trackers(ctx context.Context) ([]model.TrackerInfo, error)
	MonitoredNames(ctx context.Context) ([]string, error)
	Columns(ctx context.Context, object string) ([]model.Column, error)
	Graph(ctx context.Context, object string) (model.GraphData, error)
}

// UserService defines dashboard account use cases.
type UserService interface {
	// EnsureUser creates u unless an account with its email exists.
	EnsureUser(ctx context.Context, u model.User, hidden bool) error
	CreateUser(ctx context.Context, u model.User) error
	DeleteUser(ctx context.Context, email string) error
	Authenticate(ctx context.Context, creds model.Credentials) (model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
}
