package ui_test

import (
	"testing"
	"time"

	"github.com/maxviazov/tracker-dashboard/internal/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPopup(t *testing.T) {
	var p ui.Popup
	assert.False(t, p.IsOpen())
	assert.Empty(t, p.Message())

	p.Open("Tracker name is empty!")
	assert.True(t, p.IsOpen())
	assert.Equal(t, "Tracker name is empty!", p.Message())
	assert.False(t, p.Shown(time.Now().Add(-time.Second)))
	assert.True(t, p.Shown(time.Now().Add(ui.PopupShowDuration)))

	p.Open("second")
	assert.Equal(t, "second", p.Message())

	p.Close()
	p.Close()
	assert.False(t, p.IsOpen())
	assert.Empty(t, p.Message())
}

func TestPopup_Phases(t *testing.T) {
	var p ui.Popup
	assert.Equal(t, ui.PopupHidden, p.Phase(time.Now()))

	p.Open("Connection error")
	now := time.Now()
	assert.Equal(t, ui.PopupShowing, p.Phase(now))
	assert.Equal(t, ui.PopupShown, p.Phase(now.Add(ui.PopupShowDuration)))

	p.Close()
	now = time.Now()
	assert.Equal(t, ui.PopupHiding, p.Phase(now))
	assert.Equal(t, "Connection error", p.Text(), "text stays while hiding")
	assert.Equal(t, ui.PopupHidden, p.Phase(now.Add(ui.PopupHideDuration)))

	// a second close does not restart the hide transition
	p.Close()
	assert.Equal(t, ui.PopupHidden, p.Phase(now.Add(ui.PopupHideDuration)))

	p.Open("again")
	assert.Equal(t, ui.PopupShowing, p.Phase(time.Now()))
}

func newMenu() *ui.NavMenu {
	return ui.NewNavMenu(
		ui.Item("dashboard", "Dashboard", "/"),
		ui.Group("tracking", "Tracking",
			ui.Item("trackers", "All Trackers", "/trackers/"),
			ui.Item("new_tracker", "New Tracker", "/trackers/new/"),
			ui.Group("profiles", "Profiles",
				ui.Item("visits", "Visits", "/trackers/profile/visits"),
			),
		),
		ui.Item("users", "Users", "/users/"),
	)
}

func names(vis []ui.VisibleNode) []string {
	out := make([]string, len(vis))
	for i, v := range vis {
		out[i] = v.Node.Name
	}
	return out
}

func TestNavMenu_ActivatePinsAncestors(t *testing.T) {
	m := newMenu()
	assert.Equal(t, []string{"dashboard", "tracking", "users"}, names(m.Visible()))

	require.True(t, m.Activate("visits"))
	tracking, _ := m.Find("tracking")
	profiles, _ := m.Find("profiles")
	visits, _ := m.Find("visits")
	assert.True(t, visits.Active())
	assert.True(t, tracking.KeepOpen() && tracking.Expanded())
	assert.True(t, profiles.KeepOpen() && profiles.Expanded())

	vis := m.Visible()
	assert.Equal(t, []string{"dashboard", "tracking", "trackers", "new_tracker", "profiles", "visits", "users"}, names(vis))
	assert.Equal(t, 2, vis[5].Depth)
	assert.Equal(t, 5, m.Cursor())

	assert.False(t, m.Close("tracking"), "pinned groups stay open")
	assert.True(t, tracking.Expanded())

	active, ok := m.ActiveItem()
	require.True(t, ok)
	assert.Equal(t, "visits", active.Name)
}

func TestNavMenu_ActivateReleasesPreviousPins(t *testing.T) {
	m := newMenu()
	m.Activate("trackers")
	m.Activate("users")

	tracking, _ := m.Find("tracking")
	trackers, _ := m.Find("trackers")
	assert.False(t, trackers.Active())
	assert.False(t, tracking.KeepOpen())
	assert.True(t, m.Close("tracking"))
	assert.Equal(t, []string{"dashboard", "tracking", "users"}, names(m.Visible()))
	assert.False(t, m.Activate("missing"))
}

func TestNavMenu_ToggleAndCursor(t *testing.T) {
	m := newMenu()
	m.Down()
	assert.Equal(t, 1, m.Cursor())

	path, ok := m.Select()
	assert.False(t, ok, "groups toggle instead of navigating")
	assert.Empty(t, path)
	tracking, _ := m.Find("tracking")
	assert.True(t, tracking.Expanded())

	m.Down()
	path, ok = m.Select()
	require.True(t, ok)
	assert.Equal(t, "/trackers/", path)

	// collapsing the group while inside it moves the cursor to the group
	assert.True(t, m.Toggle("tracking"))
	assert.False(t, tracking.Expanded())
	assert.Equal(t, 1, m.Cursor())

	for i := 0; i < 10; i++ {
		m.Down()
	}
	assert.Equal(t, 2, m.Cursor())
	for i := 0; i < 10; i++ {
		m.Up()
	}
	assert.Equal(t, 0, m.Cursor())

	assert.False(t, m.Open("dashboard"), "items cannot expand")
}
