package response_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/maxviazov/tracker-dashboard/internal/repository"
	"github.com/maxviazov/tracker-dashboard/internal/service"
	"github.com/maxviazov/tracker-dashboard/pkg/response"
)

// fakeInvalid mimics service aggregated validation error to test mapping without reaching into internals.
type fakeInvalid struct{ fe []service.FieldError }

func (f *fakeInvalid) Error() string                { return service.ErrInvalidInput.Error() }
func (f *fakeInvalid) Unwrap() error                { return service.ErrInvalidInput }
func (f *fakeInvalid) Fields() []service.FieldError { return f.fe }

func TestMapError(t *testing.T) {
	cases := []struct {
		name     string
		in       error
		wantCode int
		wantErr  string
		wantDesc string
	}{
		{"success", nil, 200, "", ""},
		{"invalid_input", &fakeInvalid{fe: []service.FieldError{{Field: "name", Message: "Tracker name is bad"}}}, 400, "invalid_input", "Tracker name is bad"},
		{"credentials", service.ErrInvalidCredentials, 401, "invalid_credentials", "Wrong credentials."},
		{"invalid_data", fmt.Errorf("%w: column %q may not be null", repository.ErrInvalidData, "page"), 400, "invalid_data", `invalid data: column "page" may not be null`},
		{"not_found", repository.ErrNotFound, 404, "not_found", "Not found."},
		{"already_exists", repository.ErrAlreadyExists, 409, "already_exists", "Already exists."},
		{"conflict", repository.ErrConflict, 409, "conflict", "Conflict."},
		{"internal", errors.New("boom"), 500, "internal_error", "Internal server error."},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, payload := response.MapError(tc.in)
			assert.Equal(t, tc.wantCode, code)
			assert.Equal(t, tc.wantErr, payload.Error)
			assert.Equal(t, tc.wantDesc, payload.Description)
			if tc.in == nil {
				assert.Equal(t, "success", payload.Status)
				return
			}
			assert.Equal(t, "fail", payload.Status)
			if tc.wantErr == "invalid_input" {
				assert.NotEmpty(t, payload.FieldErrors, "expected field errors in payload")
			}
		})
	}
}

func TestWriteError_AbortsWithEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

	response.WriteError(c, repository.ErrNotFound)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"status":"fail","status_description":"Not found.","error":"not_found"}`, w.Body.String())
}
