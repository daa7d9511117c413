// Package api is a typed client for the tracking backend's HTTP JSON contract.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/maxviazov/tracker-dashboard/internal/model"
	"github.com/rs/zerolog"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 8 << 20

// Client talks to one backend. The session cookie set by Login is kept in
// the client's cookie jar and sent with every later call.
type Client struct {
	base *url.URL
	http *http.Client
	log  zerolog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client. Its Jar is used for the session.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New builds a client for baseURL. A zero timeout means no client-side deadline.
func New(baseURL string, timeout time.Duration, logger zerolog.Logger, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}
	c := &Client{
		base: u,
		http: &http.Client{Timeout: timeout, Jar: jar},
		log:  logger.With().Str("module", "api").Str("component", "client").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the backend root the client was built for.
func (c *Client) BaseURL() string { return c.base.String() }

// SelectQuery addresses one page window of a tracker.
type SelectQuery struct {
	Object  string
	Columns []string
	Limit   int
	Offset  int
}

// SelectResponse is the body of /api/tracking/select.
type SelectResponse struct {
	PageData []model.Row `json:"page_data"`
}

// Select fetches rows of q.Object in _id order.
func (c *Client) Select(ctx context.Context, q SelectQuery) ([]model.Row, error) {
	v := url.Values{}
	v.Set("object_name", q.Object)
	v.Set("column_data", strings.Join(q.Columns, ","))
	v.Set("limit", fmt.Sprint(q.Limit))
	v.Set("offset", fmt.Sprint(q.Offset))
	var out SelectResponse
	if err := c.getJSON(ctx, "/api/tracking/select", v, &out); err != nil {
		return nil, err
	}
	return out.PageData, nil
}

// Insert appends row to object.
func (c *Client) Insert(ctx context.Context, object string, row model.Row) (StatusResponse, error) {
	return c.postStatus(ctx, "/api/tracking/insert/"+url.PathEscape(object), row)
}

// UpdateRequest changes every row matching Where inside the Limit/Offset window.
type UpdateRequest struct {
	Where  model.Row `json:"where"`
	Update model.Row `json:"update"`
	Limit  int       `json:"limit"`
	Offset int       `json:"offset"`
}

// Update applies req to object.
func (c *Client) Update(ctx context.Context, object string, req UpdateRequest) (StatusResponse, error) {
	return c.postStatus(ctx, "/api/tracking/update/"+url.PathEscape(object), req)
}

// Delete removes the row whose _id equals id. id is sent exactly as it was received.
func (c *Client) Delete(ctx context.Context, object string, id any) (StatusResponse, error) {
	return c.postStatus(ctx, "/api/tracking/delete/"+url.PathEscape(object), map[string]any{model.IDColumn: id})
}

// Drop deletes a whole tracker.
func (c *Client) Drop(ctx context.Context, name string) (StatusResponse, error) {
	return c.postStatus(ctx, "/api/tracking/drop", map[string]string{"name": name})
}

// Create defines a new tracker.
func (c *Client) Create(ctx context.Context, schema model.TrackerSchema) (StatusResponse, error) {
	return c.postStatus(ctx, "/api/tracking/create", schema)
}

// MonitoredNames lists all object names known to the backend.
func (c *Client) MonitoredNames(ctx context.Context) ([]string, error) {
	var out struct {
		ObjectNames []string `json:"object_names"`
	}
	if err := c.getJSON(ctx, "/api/tracking/monitored-names", nil, &out); err != nil {
		return nil, err
	}
	return out.ObjectNames, nil
}

// Trackers lists the user-defined trackers with their row counts.
func (c *Client) Trackers(ctx context.Context) ([]model.TrackerInfo, error) {
	var out struct {
		Trackers []model.TrackerInfo `json:"trackers"`
	}
	if err := c.getJSON(ctx, "/api/tracking/trackers", nil, &out); err != nil {
		return nil, err
	}
	return out.Trackers, nil
}

// Columns returns the column definitions of object in table order.
func (c *Client) Columns(ctx context.Context, object string) ([]model.Column, error) {
	v := url.Values{}
	v.Set("object_name", object)
	var out struct {
		Columns []model.Column `json:"columns"`
	}
	if err := c.getJSON(ctx, "/api/tracking/columns", v, &out); err != nil {
		return nil, err
	}
	return out.Columns, nil
}

// Login opens a session. Wrong credentials come back as a failed status, not an error.
func (c *Client) Login(ctx context.Context, creds model.Credentials) (StatusResponse, error) {
	resp, err := c.postStatus(ctx, model.LoginPath, creds)
	if errors.Is(err, ErrUnauthorized) {
		return StatusResponse{Status: model.StatusFail}, nil
	}
	return resp, err
}

// Logout ends the session.
func (c *Client) Logout(ctx context.Context) error {
	code, data, err := c.send(ctx, http.MethodPost, model.LogoutPath, nil, nil)
	if err != nil {
		return err
	}
	if code >= http.StatusMultipleChoices {
		return serverError(code, data)
	}
	return nil
}

// CreateUser registers a dashboard account.
func (c *Client) CreateUser(ctx context.Context, u model.User) (StatusResponse, error) {
	return c.postStatus(ctx, "/api/user-management/create-user", u)
}

// DeleteUser removes the account with the given email.
func (c *Client) DeleteUser(ctx context.Context, email string) (StatusResponse, error) {
	return c.postStatus(ctx, "/api/user-management/delete-user", map[string]string{"email": email})
}

// Users lists dashboard accounts as rows of name, email and is_admin.
func (c *Client) Users(ctx context.Context) ([]model.Row, error) {
	var out []model.Row
	if err := c.getJSON(ctx, "/api/user-management/all-users", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Graph returns per-day row counts of object.
func (c *Client) Graph(ctx context.Context, object string) (model.GraphData, error) {
	v := url.Values{}
	v.Set("object_name", object)
	var out model.GraphData
	if err := c.getJSON(ctx, "/api/dashboard/graph", v, &out); err != nil {
		return model.GraphData{}, err
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	code, data, err := c.send(ctx, http.MethodGet, path, q, nil)
	if err != nil {
		return err
	}
	if code < http.StatusOK || code >= http.StatusMultipleChoices {
		return serverError(code, data)
	}
	if err := decode(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) postStatus(ctx context.Context, path string, body any) (StatusResponse, error) {
	code, data, err := c.send(ctx, http.MethodPost, path, nil, body)
	if err != nil {
		return StatusResponse{}, err
	}
	var sr StatusResponse
	if derr := decode(data, &sr); derr != nil || sr.Status == "" {
		if code >= http.StatusMultipleChoices {
			return StatusResponse{}, serverError(code, data)
		}
		if derr == nil {
			derr = errors.New("missing status field")
		}
		return StatusResponse{}, fmt.Errorf("decode %s: %w", path, derr)
	}
	return sr, nil
}

// send performs one request and returns the status code with the full body.
func (c *Client) send(ctx context.Context, method, path string, q url.Values, body any) (int, []byte, error) {
	// path is already escaped; JoinPath keeps a trailing slash
	u := c.base.JoinPath(path)
	if len(q) > 0 {
		u.RawQuery = q.Encode()
	}

	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rdr)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("method", method).Str("path", path).Msg("request failed")
		return 0, nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return 0, nil, fmt.Errorf("read %s response: %w", path, err)
	}
	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("api request")

	if resp.StatusCode == http.StatusUnauthorized {
		return resp.StatusCode, data, ErrUnauthorized
	}
	return resp.StatusCode, data, nil
}

// decode keeps numbers as json.Number so identifiers round-trip unchanged.
func decode(data []byte, out any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(out)
}

func serverError(code int, data []byte) error {
	se := &ServerError{Code: code, Status: model.StatusFail}
	var sr StatusResponse
	if decode(data, &sr) == nil {
		se.Description = sr.Description
		if sr.Status != "" {
			se.Status = sr.Status
		}
	}
	return se
}
