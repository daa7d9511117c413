// Package response centralizes HTTP response shapes and helpers.
// Handlers rely on it to keep controllers thin and uniform.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/maxviazov/tracker-dashboard/internal/model"
	"github.com/maxviazov/tracker-dashboard/internal/repository"
	"github.com/maxviazov/tracker-dashboard/internal/service"
)

// StatusPayload is the envelope every write endpoint returns.
// Error is a machine-readable category; Description is shown to users.
type StatusPayload struct {
	Status      string               `json:"status"`
	Description string               `json:"status_description,omitempty"`
	Error       string               `json:"error,omitempty"`
	FieldErrors []service.FieldError `json:"field_errors,omitempty"`
}

// MapError converts a domain / infrastructure error into an HTTP status and payload.
// Extend here as new domain error categories emerge.
func MapError(err error) (int, StatusPayload) {
	if err == nil {
		return http.StatusOK, StatusPayload{Status: model.StatusSuccess}
	}

	fail := func(code int, category, fallback string) (int, StatusPayload) {
		desc := service.Description(err)
		if desc == "" {
			desc = fallback
		}
		return code, StatusPayload{Status: model.StatusFail, Description: desc, Error: category}
	}

	if errors.Is(err, service.ErrInvalidInput) {
		code, p := fail(http.StatusBadRequest, "invalid_input", "One or more fields are invalid.")
		p.FieldErrors = service.FieldErrors(err)
		return code, p
	}

	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return fail(http.StatusUnauthorized, "invalid_credentials", "Wrong credentials.")
	case errors.Is(err, repository.ErrInvalidData):
		return fail(http.StatusBadRequest, "invalid_data", err.Error())
	case errors.Is(err, repository.ErrNotFound):
		return fail(http.StatusNotFound, "not_found", "Not found.")
	case errors.Is(err, repository.ErrAlreadyExists):
		return fail(http.StatusConflict, "already_exists", "Already exists.")
	case errors.Is(err, repository.ErrConflict):
		return fail(http.StatusConflict, "conflict", "Conflict.")
	default:
		return http.StatusInternalServerError, StatusPayload{
			Status:      model.StatusFail,
			Description: "Internal server error.",
			Error:       "internal_error",
		}
	}
}

// WriteError writes an error response and aborts the context.
func WriteError(c *gin.Context, err error) {
	status, payload := MapError(err)
	c.AbortWithStatusJSON(status, payload)
}

// WriteSuccess writes the success envelope.
func WriteSuccess(c *gin.Context) {
	c.JSON(http.StatusOK, StatusPayload{Status: model.StatusSuccess})
}

// WriteData writes a successful JSON response.
func WriteData(c *gin.Context, status int, data any) {
	c.JSON(status, data)
}
