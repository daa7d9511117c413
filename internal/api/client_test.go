package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/maxviazov/tracker-dashboard/internal/api"
	"github.com/maxviazov/tracker-dashboard/internal/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T, h http.Handler) *api.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := api.New(srv.URL, 2*time.Second, zerolog.New(io.Discard))
	require.NoError(t, err)
	return c
}

func TestNew_RejectsRelativeURL(t *testing.T) {
	_, err := api.New("localhost:5010/x", time.Second, zerolog.New(io.Discard))
	assert.Error(t, err)
}

func TestSelect_SendsWindowAndKeepsNumbers(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tracking/select", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "Login Events", q.Get("object_name"))
		assert.Equal(t, "_id,user", q.Get("column_data"))
		assert.Equal(t, "7", q.Get("limit"))
		assert.Equal(t, "5", q.Get("offset"))
		_, _ = io.WriteString(w, `{"page_data":[{"_id":12,"user":"bob","ok":true}]}`)
	}))

	rows, err := c.Select(context.Background(), api.SelectQuery{
		Object: "Login Events", Columns: []string{"_id", "user"}, Limit: 7, Offset: 5,
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, json.Number("12"), rows[0]["_id"])
	assert.Equal(t, true, rows[0]["ok"])
}

func TestInsert_EscapesObjectInPath(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/tracking/insert/Login Events", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "bob", body["user"])
		_, _ = io.WriteString(w, `{"status":"success"}`)
	}))

	resp, err := c.Insert(context.Background(), "Login Events", model.Row{"user": "bob"})
	require.NoError(t, err)
	assert.True(t, resp.OK())
	assert.NoError(t, resp.Err())
}

func TestDelete_SendsIdentifierUnchanged(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"_id":42}`, string(body))
		_, _ = io.WriteString(w, `{"status":"success"}`)
	}))

	_, err := c.Delete(context.Background(), "t", json.Number("42"))
	require.NoError(t, err)
}

func TestCreate_FailedStatusCarriesDescription(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"status":"fail","status_description":"Attempted to duplicate a tracker!"}`)
	}))

	resp, err := c.Create(context.Background(), model.TrackerSchema{Name: "x"})
	require.NoError(t, err)
	assert.False(t, resp.OK())

	var se *api.ServerError
	require.True(t, errors.As(resp.Err(), &se))
	assert.Equal(t, "Attempted to duplicate a tracker!", se.Message())
}

func TestPostStatus_NonJSONErrorBecomesServerError(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	_, err := c.Drop(context.Background(), "t")
	var se *api.ServerError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusInternalServerError, se.Code)
	assert.Equal(t, "Internal Server Error", se.Message())
}

func TestUnauthorized(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"status":"fail"}`)
	}))

	_, err := c.Trackers(context.Background())
	assert.ErrorIs(t, err, api.ErrUnauthorized)

	resp, err := c.Login(context.Background(), model.Credentials{Email: "a@b.c", Password: "x"})
	require.NoError(t, err, "wrong credentials are a status, not an error")
	assert.False(t, resp.OK())
}

func TestLogin_SessionCookieIsReused(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/login/", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "tok", Path: "/"})
		_, _ = io.WriteString(w, `{"status":"success"}`)
	})
	mux.HandleFunc("/api/tracking/monitored-names", func(w http.ResponseWriter, r *http.Request) {
		ck, err := r.Cookie("session")
		if err != nil || ck.Value != "tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = io.WriteString(w, `{"object_names":["Alert Rules","Login Events"]}`)
	})
	c := newClient(t, mux)

	_, err := c.MonitoredNames(context.Background())
	require.ErrorIs(t, err, api.ErrUnauthorized)

	resp, err := c.Login(context.Background(), model.Credentials{Email: "a@b.c", Password: "x"})
	require.NoError(t, err)
	require.True(t, resp.OK())

	names, err := c.MonitoredNames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Alert Rules", "Login Events"}, names)
}

func TestGraphAndColumns(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/dashboard/graph", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Visits", r.URL.Query().Get("object_name"))
		_, _ = io.WriteString(w, `{"labels":["2026-10-01","2026-10-02"],"values":[3,1]}`)
	})
	mux.HandleFunc("/api/tracking/columns", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"columns":[{"name":"_id","type":"INTEGER"},{"name":"page","type":"VARCHAR"}]}`)
	})
	c := newClient(t, mux)

	g, err := c.Graph(context.Background(), "Visits")
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-10-01", "2026-10-02"}, g.Labels)
	assert.Equal(t, []int{3, 1}, g.Values)

	cols, err := c.Columns(context.Background(), "Visits")
	require.NoError(t, err)
	assert.Equal(t, []model.Column{{Name: "_id", Type: "INTEGER"}, {Name: "page", Type: "VARCHAR"}}, cols)
}

func TestTransportFailureIsPlainError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := api.New(url, time.Second, zerolog.New(io.Discard))
	require.NoError(t, err)

	_, err = c.Users(context.Background())
	require.Error(t, err)
	var se *api.ServerError
	assert.False(t, errors.As(err, &se))
}
