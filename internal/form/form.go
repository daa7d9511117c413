// Package form holds the state and submit logic of the dashboard's input
// forms. A form never touches the screen: it returns an Outcome the
// frontend acts on, and returns an error only for transport failures.
package form

import (
	"context"
	"errors"
	"time"

	"github.com/maxviazov/tracker-dashboard/internal/api"
	"github.com/maxviazov/tracker-dashboard/internal/model"
)

// Delays the frontend waits before acting on a successful submit.
const (
	CreateRedirectDelay = 430 * time.Millisecond
	ExampleReloadDelay  = 405 * time.Millisecond
)

// WrongCredentials is the popup text of a rejected login.
const WrongCredentials = "WRONG CREDENTIALS"

// ErrInvalidForm marks a client-side validation failure; no request was sent.
var ErrInvalidForm = errors.New("invalid form")

// ValidationError carries the popup text of a validation failure.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }
func (e *ValidationError) Unwrap() error { return ErrInvalidForm }

func invalid(msg string) error { return &ValidationError{Message: msg} }

// Outcome tells the frontend what to do after a submit.
type Outcome struct {
	Popup    string        // error text to show, empty for none
	Redirect string        // path to navigate to
	Reload   bool          // reload the current view
	Close    bool          // close the form popup
	Delay    time.Duration // wait before Redirect or Reload
	Row      model.Row     // row to append to the current table
}

// popupFor turns a failed status into an outcome.
func popupFor(resp api.StatusResponse) Outcome {
	var se *api.ServerError
	if errors.As(resp.Err(), &se) {
		return Outcome{Popup: se.Message()}
	}
	return Outcome{}
}

// outcomeOf wraps a validation error into a popup outcome.
func outcomeOf(err error) (Outcome, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return Outcome{Popup: ve.Message}, true
	}
	return Outcome{}, false
}

// Creator creates trackers.
type Creator interface {
	Create(ctx context.Context, schema model.TrackerSchema) (api.StatusResponse, error)
}

// Inserter inserts rows.
type Inserter interface {
	Insert(ctx context.Context, object string, row model.Row) (api.StatusResponse, error)
}

// UserCreator registers dashboard accounts.
type UserCreator interface {
	CreateUser(ctx context.Context, u model.User) (api.StatusResponse, error)
}

// Authenticator opens sessions.
type Authenticator interface {
	Login(ctx context.Context, creds model.Credentials) (api.StatusResponse, error)
}
