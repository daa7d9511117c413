package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/tracker-dashboard/internal/api"
	"github.com/maxviazov/tracker-dashboard/internal/handler"
	"github.com/maxviazov/tracker-dashboard/internal/model"
	"github.com/maxviazov/tracker-dashboard/internal/repository"
	"github.com/maxviazov/tracker-dashboard/internal/service"
	"github.com/maxviazov/tracker-dashboard/pkg/auth"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "correct horse"
)

// newSandbox serves the whole stack over a real listener and returns a logged-out client.
func newSandbox(t *testing.T) *api.Client {
	t.Helper()
	ctx := context.Background()
	log := zerolog.New(io.Discard)

	store := repository.NewMemoryStore(log)
	trackers := service.NewTrackerService(store, log)
	users := service.NewUserService(store, log)
	require.NoError(t, trackers.Bootstrap(ctx))
	require.NoError(t, users.EnsureUser(ctx, model.User{Name: "admin", Email: adminEmail, Password: adminPassword, IsAdmin: true}, true))

	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler.Register(r, handler.Deps{
		Pinger:   store,
		Signer:   auth.NewSigner("sandbox-test-secret"),
		Trackers: trackers,
		Users:    users,
		Logger:   log,
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	c, err := api.New(srv.URL, 5*time.Second, log)
	require.NoError(t, err)
	return c
}

func login(t *testing.T, c *api.Client) {
	t.Helper()
	resp, err := c.Login(context.Background(), model.Credentials{Email: adminEmail, Password: adminPassword})
	require.NoError(t, err)
	require.True(t, resp.OK(), "login: %+v", resp)
}

func TestSandbox_LoginRequired(t *testing.T) {
	c := newSandbox(t)
	ctx := context.Background()

	_, err := c.Trackers(ctx)
	assert.True(t, errors.Is(err, api.ErrUnauthorized), "got %v", err)

	resp, err := c.Login(ctx, model.Credentials{Email: adminEmail, Password: "wrong"})
	require.NoError(t, err)
	assert.False(t, resp.OK())

	login(t, c)
	list, err := c.Trackers(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, c.Logout(ctx))
	_, err = c.Trackers(ctx)
	assert.True(t, errors.Is(err, api.ErrUnauthorized), "got %v", err)
}

func TestSandbox_TrackerLifecycle(t *testing.T) {
	c := newSandbox(t)
	ctx := context.Background()
	login(t, c)

	resp, err := c.Create(ctx, model.TrackerSchema{Name: "Login Events", Properties: []model.Property{
		{Name: "user", Type: model.TypeString},
		{Name: "success", Type: model.TypeBoolean},
	}})
	require.NoError(t, err)
	require.True(t, resp.OK(), "%+v", resp)

	resp, err = c.Create(ctx, model.TrackerSchema{Name: "login events", Properties: []model.Property{{Name: "a", Type: model.TypeString}}})
	require.NoError(t, err)
	assert.Error(t, resp.Err())
	assert.Equal(t, "Attempted to duplicate a tracker!", resp.Description)

	resp, err = c.Create(ctx, model.TrackerSchema{Name: "_hidden", Properties: []model.Property{{Name: "a", Type: model.TypeString}}})
	require.NoError(t, err)
	assert.Equal(t, "Invalid tracker name! Cannot begin with '_'.", resp.Description)

	for _, user := range []string{"ann", "bob", "cid"} {
		resp, err := c.Insert(ctx, "Login Events", model.Row{"user": user, "success": user != "bob"})
		require.NoError(t, err)
		require.True(t, resp.OK(), "%+v", resp)
	}

	rows, err := c.Select(ctx, api.SelectQuery{Object: "login_events", Columns: []string{"_id", "user"}, Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, json.Number("2"), rows[0]["_id"])
	assert.Equal(t, "cid", rows[1]["user"])
	assert.NotContains(t, rows[0], "success")

	cols, err := c.Columns(ctx, "Login Events")
	require.NoError(t, err)
	names := make([]string, 0, len(cols))
	for _, col := range cols {
		names = append(names, col.Name)
	}
	assert.Equal(t, []string{"_id", "user", "success", "_timestamp_created"}, names)

	list, err := c.Trackers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.TrackerInfo{{Name: "Login Events", Count: 3, API: "login_events"}}, list)

	g, err := c.Graph(ctx, "Login Events")
	require.NoError(t, err)
	require.Len(t, g.Labels, 1)
	assert.Equal(t, []int{3}, g.Values)

	resp, err = c.Delete(ctx, "Login Events", rows[0]["_id"])
	require.NoError(t, err)
	assert.True(t, resp.OK(), "%+v", resp)

	resp, err = c.Delete(ctx, "Login Events", rows[0]["_id"])
	require.NoError(t, err)
	assert.Equal(t, "Row not found!", resp.Description)

	resp, err = c.Drop(ctx, "Login Events")
	require.NoError(t, err)
	assert.True(t, resp.OK(), "%+v", resp)

	names, err = c.MonitoredNames(ctx)
	require.NoError(t, err)
	assert.NotContains(t, names, "Login Events")
	assert.Contains(t, names, model.AlertRulesObject)
}

func TestSandbox_AlertRules(t *testing.T) {
	c := newSandbox(t)
	ctx := context.Background()
	login(t, c)

	resp, err := c.Create(ctx, model.TrackerSchema{Name: "Payments", Properties: []model.Property{
		{Name: "amount", Type: model.TypeInteger},
		{Name: "flagged", Type: model.TypeBoolean},
	}})
	require.NoError(t, err)
	require.True(t, resp.OK())

	resp, err = c.Insert(ctx, model.AlertRulesObject, model.Row{
		"name": "flagged payment", "object_name": "Payments", "column_name": "flagged", "column_value": "True",
	})
	require.NoError(t, err)
	require.True(t, resp.OK(), "%+v", resp)

	for _, flagged := range []bool{false, true, true} {
		resp, err := c.Insert(ctx, "Payments", model.Row{"amount": 10, "flagged": flagged})
		require.NoError(t, err)
		require.True(t, resp.OK())
	}

	finds, err := c.Select(ctx, api.SelectQuery{Object: model.AlertFindsObject, Limit: 10})
	require.NoError(t, err)
	require.Len(t, finds, 2)
	assert.Equal(t, "flagged payment", finds[0]["rule_name"])
	assert.Equal(t, "2", finds[0]["found_id"])
	assert.Equal(t, "3", finds[1]["found_id"])

	resp, err = c.Drop(ctx, "Payments")
	require.NoError(t, err)
	require.True(t, resp.OK())
	rules, err := c.Select(ctx, api.SelectQuery{Object: model.AlertRulesObject, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, rules)
}

func TestSandbox_Users(t *testing.T) {
	c := newSandbox(t)
	ctx := context.Background()
	login(t, c)

	users, err := c.Users(ctx)
	require.NoError(t, err)
	assert.Empty(t, users, "bootstrap admin is hidden")

	resp, err := c.CreateUser(ctx, model.User{Name: "Dana", Email: "dana@example.com", Password: "pw", IsAdmin: false})
	require.NoError(t, err)
	require.True(t, resp.OK(), "%+v", resp)

	resp, err = c.CreateUser(ctx, model.User{Name: "Dup", Email: "dana@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "Each user's email address must be unique.", resp.Description)

	users, err = c.Users(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, model.Row{"name": "Dana", "email": "dana@example.com", "is_admin": false}, users[0])

	resp, err = c.DeleteUser(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Equal(t, "User does not exist!", resp.Description)

	resp, err = c.DeleteUser(ctx, "dana@example.com")
	require.NoError(t, err)
	assert.True(t, resp.OK())
}
