package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/tracker-dashboard/internal/api"
	"github.com/maxviazov/tracker-dashboard/internal/form"
	"github.com/maxviazov/tracker-dashboard/internal/model"
	"github.com/maxviazov/tracker-dashboard/internal/ui"
)

var okStatus = api.StatusResponse{Status: model.StatusSuccess}

// fakeBackend keeps rows per object and records every write.
type fakeBackend struct {
	mu       sync.Mutex
	password string
	readErr  error
	trackers []model.TrackerInfo
	columns  map[string][]model.Column
	rows     map[string][]model.Row
	users    []model.Row
	graph    model.GraphData

	selects      []api.SelectQuery
	created      []model.TrackerSchema
	inserted     map[string][]model.Row
	deleted      []any
	dropped      []string
	createdUsers []model.User
	deletedUsers []string
	loggedOut    bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		password: "secret",
		columns:  map[string][]model.Column{},
		rows:     map[string][]model.Row{},
		inserted: map[string][]model.Row{},
	}
}

func (f *fakeBackend) Login(_ context.Context, c model.Credentials) (api.StatusResponse, error) {
	if c.Password != f.password {
		return api.StatusResponse{Status: model.StatusFail}, nil
	}
	return okStatus, nil
}

func (f *fakeBackend) Logout(context.Context) error {
	f.loggedOut = true
	return nil
}

func (f *fakeBackend) Create(_ context.Context, s model.TrackerSchema) (api.StatusResponse, error) {
	f.created = append(f.created, s)
	return okStatus, nil
}

func (f *fakeBackend) Insert(_ context.Context, object string, row model.Row) (api.StatusResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserted[object] = append(f.inserted[object], row)
	return okStatus, nil
}

func (f *fakeBackend) CreateUser(_ context.Context, u model.User) (api.StatusResponse, error) {
	if u.Email == "" {
		return api.StatusResponse{Status: model.StatusFail, Description: "The new user's email address is missing."}, nil
	}
	f.createdUsers = append(f.createdUsers, u)
	return okStatus, nil
}

func (f *fakeBackend) Select(_ context.Context, q api.SelectQuery) ([]model.Row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selects = append(f.selects, q)
	if f.readErr != nil {
		return nil, f.readErr
	}
	all := f.rows[q.Object]
	out := []model.Row{}
	for i := q.Offset; i < len(all) && i < q.Offset+q.Limit; i++ {
		r := model.Row{}
		for _, c := range q.Columns {
			r[c] = all[i][c]
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeBackend) Delete(_ context.Context, object string, id any) (api.StatusResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	kept := f.rows[object][:0]
	for _, r := range f.rows[object] {
		if fmt.Sprint(r[model.IDColumn]) != fmt.Sprint(id) {
			kept = append(kept, r)
		}
	}
	f.rows[object] = kept
	return okStatus, nil
}

func (f *fakeBackend) Drop(_ context.Context, name string) (api.StatusResponse, error) {
	f.dropped = append(f.dropped, name)
	return okStatus, nil
}

func (f *fakeBackend) Trackers(context.Context) ([]model.TrackerInfo, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.trackers, nil
}

func (f *fakeBackend) Columns(_ context.Context, object string) ([]model.Column, error) {
	return f.columns[object], nil
}

func (f *fakeBackend) Graph(context.Context, string) (model.GraphData, error) {
	return f.graph, nil
}

func (f *fakeBackend) Users(context.Context) ([]model.Row, error) { return f.users, nil }

func (f *fakeBackend) DeleteUser(_ context.Context, email string) (api.StatusResponse, error) {
	f.deletedUsers = append(f.deletedUsers, email)
	return okStatus, nil
}

// withEvents seeds a "Login Events" tracker with n rows.
func (f *fakeBackend) withEvents(n int) *fakeBackend {
	f.trackers = []model.TrackerInfo{{Name: "Login Events", Count: n, API: "login_events"}}
	f.columns["login_events"] = []model.Column{
		{Name: "_id", Type: "INTEGER"},
		{Name: "user", Type: "VARCHAR"},
		{Name: "success", Type: "BOOLEAN"},
	}
	rows := make([]model.Row, n)
	for i := range rows {
		rows[i] = model.Row{"_id": json.Number(fmt.Sprint(i + 1)), "user": fmt.Sprintf("u%d", i+1), "success": i%2 == 0}
	}
	f.rows["login_events"] = rows
	return f
}

func newTestApp(b *fakeBackend) *App {
	a := New(Options{
		Backend:   b,
		BaseURL:   "http://dash.test",
		PageLimit: 5,
		Logger:    zerolog.New(io.Discard),
	})
	// deliver popup transition ticks at once
	a.popupShow, a.popupHide = 0, 0
	return a
}

// run executes cmd and feeds every resulting message back into a,
// following the commands those produce.
func run(t *testing.T, a *App, cmd tea.Cmd) {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		require.Less(t, steps, 200, "command loop did not settle")
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case nil, tea.QuitMsg:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			_, next := a.Update(msg)
			queue = append(queue, next)
		}
	}
}

func key(t *testing.T, a *App, k string) {
	t.Helper()
	var msg tea.KeyMsg
	switch k {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "up":
		msg = tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		msg = tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		msg = tea.KeyMsg{Type: tea.KeyRight}
	case "space":
		msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "ctrl+a":
		msg = tea.KeyMsg{Type: tea.KeyCtrlA}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	_, cmd := a.Update(msg)
	run(t, a, cmd)
}

func typeText(t *testing.T, a *App, s string) {
	t.Helper()
	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	run(t, a, cmd)
}

func loggedIn(t *testing.T, b *fakeBackend) *App {
	t.Helper()
	a := newTestApp(b)
	typeText(t, a, "admin@example.com")
	key(t, a, "tab")
	typeText(t, a, b.password)
	key(t, a, "enter")
	require.True(t, a.authed)
	require.False(t, a.popup.IsOpen(), a.popup.Message())
	return a
}

func TestLogin_Success(t *testing.T) {
	b := newFakeBackend().withEvents(3)
	b.graph = model.GraphData{Labels: []string{"2026-10-01"}, Values: []int{3}}
	a := loggedIn(t, b)

	assert.Equal(t, screenDashboard, a.screen)
	assert.Equal(t, []string{"Login Events"}, a.dash.names)
	assert.Equal(t, "Login Events", a.dash.graphFor)
	assert.Equal(t, "", a.login.password.Value(), "password is cleared after login")

	view := a.View()
	assert.Contains(t, view, "2026-10-01")
	assert.Contains(t, view, "Dashboard")
}

func TestLogin_WrongCredentials(t *testing.T) {
	a := newTestApp(newFakeBackend())
	typeText(t, a, "admin@example.com")
	key(t, a, "tab")
	typeText(t, a, "nope")
	key(t, a, "enter")

	assert.False(t, a.authed)
	assert.Equal(t, screenLogin, a.screen)
	require.True(t, a.popup.IsOpen())
	assert.Equal(t, form.WrongCredentials, a.popup.Message())

	key(t, a, "enter")
	assert.False(t, a.popup.IsOpen())
}

func TestAutoLogin(t *testing.T) {
	b := newFakeBackend()
	a := New(Options{Backend: b, Email: "admin@example.com", Password: "secret", Logger: zerolog.New(io.Discard)})
	run(t, a, a.Init())
	assert.True(t, a.authed)
	assert.Equal(t, screenDashboard, a.screen)
}

func TestNavigate_RequiresLogin(t *testing.T) {
	a := newTestApp(newFakeBackend())
	run(t, a, a.navigate(model.AlertsPath))
	assert.Equal(t, screenLogin, a.screen)
}

func TestProfile_Paging(t *testing.T) {
	b := newFakeBackend().withEvents(7)
	a := loggedIn(t, b)
	run(t, a, a.navigate(model.ProfilePrefix+"login_events"))

	require.Equal(t, screenProfile, a.screen)
	p := a.profile
	require.NotNil(t, p.rows)
	assert.Equal(t, "Login Events", p.name)
	assert.Equal(t, []string{"_id", "user", "success"}, p.rows.columns)

	// first page: 5 rendered, next on, previous off
	last := b.selects[len(b.selects)-1]
	assert.Equal(t, api.SelectQuery{Object: "login_events", Columns: []string{"_id", "user", "success"}, Limit: 7, Offset: 0}, last)
	assert.Equal(t, 5, p.rows.table.Filled())
	st := p.rows.pager.State()
	assert.True(t, st.NextEnabled)
	assert.False(t, st.PrevEnabled)

	key(t, a, "right")
	st = p.rows.pager.State()
	assert.Equal(t, 5, st.Offset)
	assert.Equal(t, 2, p.rows.table.Filled())
	assert.Nil(t, p.rows.table.Slot(2))
	assert.False(t, st.NextEnabled)
	assert.True(t, st.PrevEnabled)

	key(t, a, "left")
	st = p.rows.pager.State()
	assert.Equal(t, 0, st.Offset)
	assert.True(t, st.NextEnabled)
	assert.False(t, st.PrevEnabled)

	// previous at offset 0 sends nothing
	n := len(b.selects)
	key(t, a, "left")
	assert.Len(t, b.selects, n)
}

func TestProfile_RendersBooleansAndDeleteMark(t *testing.T) {
	a := loggedIn(t, newFakeBackend().withEvents(2))
	run(t, a, a.navigate(model.ProfilePrefix+"login_events"))

	cells := a.profile.rows.table.Slot(0)
	require.Len(t, cells, 3)
	assert.Equal(t, "×", cells[0].Text)
	assert.Equal(t, "True", cells[2].Text)
	assert.Equal(t, "False", a.profile.rows.table.Slot(1)[2].Text)

	view := a.View()
	assert.Contains(t, view, "×")
	assert.Contains(t, view, "u2")
}

func TestProfile_DeleteLastRowStepsBack(t *testing.T) {
	b := newFakeBackend().withEvents(6)
	a := loggedIn(t, b)
	run(t, a, a.navigate(model.ProfilePrefix+"login_events"))
	key(t, a, "right")
	p := a.profile
	require.Equal(t, 5, p.rows.pager.Offset())
	require.Equal(t, 1, p.rows.table.Filled())

	key(t, a, "x")

	require.Len(t, b.deleted, 1)
	assert.Equal(t, json.Number("6"), b.deleted[0], "identifier is sent as received")
	// the refetch found an empty page and stepped back to the first one
	assert.Equal(t, 0, p.rows.pager.Offset())
	assert.Equal(t, 5, p.rows.table.Filled())
	assert.False(t, p.rows.pager.State().NextEnabled)
}

func TestProfile_StaleResponseDropped(t *testing.T) {
	a := loggedIn(t, newFakeBackend().withEvents(7))
	run(t, a, a.navigate(model.ProfilePrefix+"login_events"))
	tv := a.profile.rows

	old := tv.pager.Refetch()
	newer := tv.pager.Refetch()
	a.Update(pageMsg{table: tv, req: old, rows: []model.Row{{"_id": json.Number("99")}}})
	assert.True(t, tv.pager.Pending())
	id, _ := tv.table.Key(0)
	assert.Equal(t, json.Number("1"), id)

	a.Update(pageMsg{table: tv, req: newer, rows: []model.Row{{"_id": json.Number("42")}}})
	id, _ = tv.table.Key(0)
	assert.Equal(t, json.Number("42"), id)
	assert.Equal(t, 1, tv.table.Filled())
}

// withOther adds an "Other" tracker holding a single row.
func (f *fakeBackend) withOther() *fakeBackend {
	f.trackers = append(f.trackers, model.TrackerInfo{Name: "Other", Count: 1, API: "other"})
	f.columns["other"] = []model.Column{
		{Name: "_id", Type: "INTEGER"},
		{Name: "user", Type: "VARCHAR"},
	}
	f.rows["other"] = []model.Row{{"_id": json.Number("1"), "user": "zed"}}
	return f
}

func TestProfile_ReplyFromPreviousTrackerDropped(t *testing.T) {
	b := newFakeBackend().withEvents(7).withOther()
	a := loggedIn(t, b)

	// open the first profile and hold its page reply
	_, fetchFirst := a.Update(a.navigate(model.ProfilePrefix + "login_events")())
	require.NotNil(t, fetchFirst)
	first := a.profile.rows

	run(t, a, a.navigate(model.ProfilePrefix+"other"))
	second := a.profile.rows
	require.NotSame(t, first, second)
	require.Equal(t, "zed", second.table.Slot(0)[1].Text)

	_, next := a.Update(fetchFirst())
	assert.Nil(t, next)
	assert.Equal(t, "other", a.profile.slug)
	assert.Equal(t, 1, second.table.Filled())
	assert.Equal(t, "zed", second.table.Slot(0)[1].Text)
}

func TestProfile_RefetchForClosedTableIgnored(t *testing.T) {
	b := newFakeBackend().withEvents(3).withOther()
	a := loggedIn(t, b)
	run(t, a, a.navigate(model.ProfilePrefix+"login_events"))
	first := a.profile.rows

	run(t, a, a.navigate(model.ProfilePrefix+"other"))
	selects := len(b.selects)

	_, cmd := a.Update(refetchMsg{table: first})
	assert.Nil(t, cmd)
	assert.Len(t, b.selects, selects)
}

func TestProfile_InsertExample(t *testing.T) {
	b := newFakeBackend().withEvents(1)
	a := loggedIn(t, b)
	run(t, a, a.navigate(model.ProfilePrefix+"login_events"))
	n := len(b.selects)

	key(t, a, "e")

	require.Len(t, b.inserted["login_events"], 1)
	assert.Equal(t, model.Row{"user": "Example String", "success": true}, b.inserted["login_events"][0])
	assert.Greater(t, len(b.selects), n, "page reloaded after insert")
}

func TestProfile_AlertRule(t *testing.T) {
	b := newFakeBackend().withEvents(1)
	a := loggedIn(t, b)
	run(t, a, a.navigate(model.ProfilePrefix+"login_events"))

	key(t, a, "a")
	require.NotNil(t, a.profile.modal)

	// value missing: popup, no request
	typeText(t, a, "failed login")
	key(t, a, "enter")
	require.True(t, a.popup.IsOpen())
	assert.Equal(t, "Missing argument - column_value", a.popup.Message())
	assert.Empty(t, b.inserted[model.AlertRulesObject])
	key(t, a, "esc")

	key(t, a, "tab")
	key(t, a, "right")
	key(t, a, "tab")
	typeText(t, a, "False")
	key(t, a, "enter")

	require.Len(t, b.inserted[model.AlertRulesObject], 1)
	assert.Equal(t, model.Row{
		"name": "failed login", "object_name": "Login Events", "column_name": "success", "column_value": "False",
	}, b.inserted[model.AlertRulesObject][0])
	assert.Nil(t, a.profile.modal)
	assert.Equal(t, "", a.profile.rule.Name)
}

func TestNewTracker_Validation(t *testing.T) {
	b := newFakeBackend()
	a := loggedIn(t, b)
	run(t, a, a.navigate(model.NewTrackerPath))

	key(t, a, "enter")
	require.True(t, a.popup.IsOpen())
	assert.Equal(t, "Tracker name is empty!", a.popup.Message())
	key(t, a, "enter")

	typeText(t, a, "Payments")
	key(t, a, "enter")
	assert.Equal(t, "Property #1 has no name!", a.popup.Message())
	assert.Empty(t, b.created)
}

func TestNewTracker_Create(t *testing.T) {
	b := newFakeBackend()
	a := loggedIn(t, b)
	run(t, a, a.navigate(model.NewTrackerPath))

	typeText(t, a, "Payments")
	key(t, a, "tab")
	typeText(t, a, "amount")
	key(t, a, "tab")
	key(t, a, "right") // Boolean -> DateTime
	key(t, a, "right") // -> Integer
	key(t, a, "tab")
	key(t, a, "space") // nullable
	key(t, a, "ctrl+a")
	typeText(t, a, "note")
	key(t, a, "enter")

	require.Len(t, b.created, 1)
	assert.Equal(t, model.TrackerSchema{Name: "Payments", Properties: []model.Property{
		{Name: "amount", Type: model.TypeInteger, Nullable: true},
		{Name: "note", Type: model.TypeBoolean},
	}}, b.created[0])
	assert.Equal(t, screenTrackers, a.screen, "redirected to the trackers list")
}

func TestTrackers_Drop(t *testing.T) {
	b := newFakeBackend().withEvents(1)
	a := loggedIn(t, b)
	run(t, a, a.navigate(model.TrackersPath))
	require.Len(t, a.trackers.list.rows, 1)
	link := a.trackers.list.table.Slot(0)[0]
	assert.Equal(t, "/trackers/profile/login_events", link.Href)
	assert.Contains(t, a.View(), "Login Events")

	key(t, a, "x")
	assert.Equal(t, []string{"Login Events"}, b.dropped)
	assert.Empty(t, a.trackers.list.rows)
}

func TestAlerts_Tables(t *testing.T) {
	b := newFakeBackend()
	b.rows[model.AlertFindsObject] = []model.Row{
		{"_id": json.Number("1"), "rule_name": "r", "object_name": "Login Events", "column_name": "success", "found_value": "False"},
	}
	a := loggedIn(t, b)

	key(t, a, "esc")
	require.True(t, a.navFocus)
	for i := 0; i < 2; i++ {
		key(t, a, "down") // Trackers, Alerts
	}
	key(t, a, "enter")
	require.Equal(t, screenAlerts, a.screen)

	var objects []string
	for _, q := range b.selects {
		objects = append(objects, q.Object)
	}
	assert.Contains(t, objects, model.AlertFindsObject)
	assert.Contains(t, objects, model.AlertRulesObject)
	assert.Equal(t, 1, a.alerts.findings.table.Filled())
	assert.Equal(t, 0, a.alerts.rules.table.Filled())

	key(t, a, "enter")
	assert.Equal(t, screenProfile, a.screen)
	assert.Equal(t, "login_events", a.profile.slug)
}

func TestUsers_CreateAndDelete(t *testing.T) {
	b := newFakeBackend()
	b.users = []model.Row{{"name": "Dana", "email": "dana@example.com", "is_admin": false}}
	a := loggedIn(t, b)
	run(t, a, a.navigate(model.UserManagementPath))
	require.Len(t, a.users.list.rows, 1)

	key(t, a, "c")
	typeText(t, a, "Eve")
	key(t, a, "tab")
	typeText(t, a, "pw")
	key(t, a, "enter")
	// no email: backend refuses, form stays open
	assert.Equal(t, "The new user's email address is missing.", a.popup.Message())
	key(t, a, "enter")
	require.NotNil(t, a.users.modal)

	key(t, a, "tab")
	typeText(t, a, "eve@example.com")
	key(t, a, "tab")
	key(t, a, "space")
	key(t, a, "enter")

	require.Len(t, b.createdUsers, 1)
	assert.Equal(t, model.User{Name: "Eve", Password: "pw", Email: "eve@example.com", IsAdmin: true}, b.createdUsers[0])
	assert.Nil(t, a.users.modal)
	require.Len(t, a.users.list.rows, 2)
	assert.Equal(t, "True", a.users.list.table.Slot(1)[2].Text)

	key(t, a, "x")
	assert.Equal(t, []string{"dana@example.com"}, b.deletedUsers)
	assert.Len(t, a.users.list.rows, 1)
}

func TestUnauthorized_ReturnsToLogin(t *testing.T) {
	b := newFakeBackend()
	a := loggedIn(t, b)
	b.readErr = api.ErrUnauthorized

	key(t, a, "r")
	assert.Equal(t, screenLogin, a.screen)
	assert.False(t, a.authed)
	assert.True(t, a.popup.IsOpen())
}

func TestServerError_Popup(t *testing.T) {
	b := newFakeBackend()
	a := loggedIn(t, b)
	b.readErr = &api.ServerError{Code: 500, Status: model.StatusFail, Description: "Tracker does not exist!"}

	key(t, a, "r")
	assert.Equal(t, screenDashboard, a.screen)
	assert.Equal(t, "Tracker does not exist!", a.popup.Message())
}

func TestLogout(t *testing.T) {
	b := newFakeBackend()
	a := loggedIn(t, b)
	run(t, a, a.navigate(model.LogoutPath))
	assert.True(t, b.loggedOut)
	assert.Equal(t, screenLogin, a.screen)
	assert.True(t, strings.Contains(a.View(), "Tracker Dashboard"))
}

func TestPopup_Transitions(t *testing.T) {
	a := New(Options{Backend: newFakeBackend(), Logger: zerolog.New(io.Discard)})
	assert.Equal(t, ui.PopupShowDuration, a.popupShow)
	assert.Equal(t, ui.PopupHideDuration, a.popupHide)

	a = loggedIn(t, newFakeBackend().withEvents(1))
	cmd := a.navigate("/nowhere/")
	require.NotNil(t, cmd)
	assert.IsType(t, popupTickMsg{}, cmd())
	assert.Equal(t, ui.PopupShowing, a.popup.Phase(time.Now()))
	assert.Contains(t, a.View(), "Page not found: /nowhere/")
	assert.NotContains(t, a.View(), "enter to dismiss")

	_, cmd = a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.IsType(t, popupTickMsg{}, cmd())
	assert.False(t, a.popup.IsOpen())
	assert.Equal(t, ui.PopupHiding, a.popup.Phase(time.Now()))
	assert.Contains(t, a.View(), "Page not found", "text fades out")
	assert.NotContains(t, a.View(), "enter to dismiss")

	_, cmd = a.Update(popupTickMsg{})
	assert.Nil(t, cmd)
}
