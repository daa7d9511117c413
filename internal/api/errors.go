package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/maxviazov/tracker-dashboard/internal/model"
)

// ErrUnauthorized is returned when the backend rejects the session (HTTP 401).
var ErrUnauthorized = errors.New("unauthorized")

// StatusResponse is the envelope every write endpoint answers with.
type StatusResponse struct {
	Status      string `json:"status"`
	Description string `json:"status_description,omitempty"`
}

// OK reports whether the backend accepted the request.
func (r StatusResponse) OK() bool { return r.Status == model.StatusSuccess }

// Err converts a failed status into a *ServerError; nil on success.
func (r StatusResponse) Err() error {
	if r.OK() {
		return nil
	}
	return &ServerError{Status: r.Status, Description: r.Description}
}

// ServerError is a failure reported by the backend itself, as opposed to a transport error.
type ServerError struct {
	Code        int // HTTP status code, 0 when the failure came in a 2xx envelope
	Status      string
	Description string
}

func (e *ServerError) Error() string {
	switch {
	case e.Description != "" && e.Code != 0:
		return fmt.Sprintf("server error (%d): %s", e.Code, e.Description)
	case e.Description != "":
		return "server error: " + e.Description
	case e.Code != 0:
		return fmt.Sprintf("server error (%d): %s", e.Code, http.StatusText(e.Code))
	default:
		return "server error: " + e.Status
	}
}

// Message is the text shown to the user for this failure.
func (e *ServerError) Message() string {
	if e.Description != "" {
		return e.Description
	}
	if e.Code != 0 {
		return http.StatusText(e.Code)
	}
	return "Request failed"
}
