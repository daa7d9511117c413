// Package tui is the terminal frontend of the dashboard: one bubbletea
// program with a navigation sidebar and one screen per dashboard page.
// Every backend call runs as a tea.Cmd; results come back as messages.
package tui

import (
	"errors"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/maxviazov/tracker-dashboard/internal/api"
	"github.com/maxviazov/tracker-dashboard/internal/model"
	"github.com/maxviazov/tracker-dashboard/internal/ui"
)

type screen int

const (
	screenLogin screen = iota
	screenDashboard
	screenTrackers
	screenNewTracker
	screenProfile
	screenAlerts
	screenUsers
)

const defaultTimeout = 10 * time.Second

// Options configures an App.
type Options struct {
	Backend      Backend
	BaseURL      string // used to build hyperlinks
	PageLimit    int
	RefreshDelay time.Duration // wait before refetching after a delete
	Timeout      time.Duration // per request
	Email        string        // prefilled login; with Password set, logs in on start
	Password     string
	Logger       zerolog.Logger
}

// App is the root bubbletea model.
type App struct {
	backend      Backend
	baseURL      string
	pageLimit    int
	refreshDelay time.Duration
	timeout      time.Duration
	popupShow    time.Duration
	popupHide    time.Duration
	autoLogin    bool
	log          zerolog.Logger
	theme        Theme

	width, height int
	screen        screen
	authed        bool
	nav           *ui.NavMenu
	navFocus      bool
	popup         ui.Popup

	login    *loginScreen
	dash     *dashboardScreen
	trackers *trackersScreen
	schema   *schemaScreen
	profile  *profileScreen
	alerts   *alertsScreen
	users    *usersScreen
}

func New(o Options) *App {
	if o.PageLimit < 1 {
		o.PageLimit = 5
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	a := &App{
		backend:      o.Backend,
		baseURL:      o.BaseURL,
		pageLimit:    o.PageLimit,
		refreshDelay: o.RefreshDelay,
		timeout:      o.Timeout,
		popupShow:    ui.PopupShowDuration,
		popupHide:    ui.PopupHideDuration,
		log:          o.Logger.With().Str("module", "tui").Logger(),
		theme:        DefaultTheme(),
		nav:          newNav(),
		login:        newLoginScreen(o.Email),
		dash:         &dashboardScreen{},
		trackers:     newTrackersScreen(),
		schema:       newSchemaScreen(),
		alerts:       newAlertsScreen(o.PageLimit),
		users:        newUsersScreen(),
	}
	if o.Email != "" && o.Password != "" {
		a.login.password.SetValue(o.Password)
		a.autoLogin = true
	}
	return a
}

// Nav item names.
const (
	navDashboard   = "dashboard"
	navTrackers    = "trackers"
	navAllTrackers = "all-trackers"
	navNewTracker  = "new-tracker"
	navAlerts      = "alerts"
	navUsers       = "users"
	navLogout      = "logout"
)

func newNav() *ui.NavMenu {
	return ui.NewNavMenu(
		ui.Item(navDashboard, "Dashboard", model.IndexPath),
		ui.Group(navTrackers, "Trackers",
			ui.Item(navAllTrackers, "All Trackers", model.TrackersPath),
			ui.Item(navNewTracker, "New Tracker", model.NewTrackerPath),
		),
		ui.Item(navAlerts, "Alerts", model.AlertsPath),
		ui.Item(navUsers, "User Management", model.UserManagementPath),
		ui.Item(navLogout, "Logout", model.LogoutPath),
	)
}

func (a *App) Init() tea.Cmd {
	if a.autoLogin {
		return a.submitLogin(a.login.credentials())
	}
	return nil
}

// navigate switches to the screen at path and starts loading its data.
func (a *App) navigate(path string) tea.Cmd {
	a.log.Debug().Str("path", path).Msg("navigate")
	if !a.authed && path != model.LoginPath {
		a.screen = screenLogin
		return nil
	}
	a.navFocus = false

	switch {
	case path == model.LoginPath:
		a.authed = false
		a.screen = screenLogin
		a.login.busy = false
		a.login.ring.set(0)
		return nil
	case path == model.LogoutPath:
		return a.logout()
	case path == model.IndexPath:
		a.screen = screenDashboard
		a.nav.Activate(navDashboard)
		return a.loadTrackers()
	case path == model.TrackersPath:
		a.screen = screenTrackers
		a.nav.Activate(navAllTrackers)
		return a.loadTrackers()
	case path == model.NewTrackerPath:
		a.screen = screenNewTracker
		a.nav.Activate(navNewTracker)
		a.schema = newSchemaScreen()
		return nil
	case strings.HasPrefix(path, model.ProfilePrefix):
		slug := strings.Trim(strings.TrimPrefix(path, model.ProfilePrefix), "/")
		if slug == "" {
			return a.navigate(model.TrackersPath)
		}
		a.screen = screenProfile
		a.nav.Activate(navAllTrackers)
		return a.openProfile(slug)
	case path == model.AlertsPath:
		a.screen = screenAlerts
		a.nav.Activate(navAlerts)
		return a.openAlerts()
	case path == model.UserManagementPath:
		a.screen = screenUsers
		a.nav.Activate(navUsers)
		a.users = newUsersScreen()
		return a.loadUsers()
	}
	return a.openPopup("Page not found: " + path)
}

// reload refreshes the data of the current screen.
func (a *App) reload() tea.Cmd {
	switch a.screen {
	case screenDashboard, screenTrackers:
		return a.loadTrackers()
	case screenProfile:
		if tv := a.profile.rows; tv != nil {
			return a.fetch(tv, tv.pager.Refetch())
		}
	case screenAlerts:
		return a.reloadAlerts()
	case screenUsers:
		return a.loadUsers()
	}
	return nil
}

// live reports whether tv is a paged table of the current screen. Tables are
// rebuilt each time a screen opens, so replies addressed to an earlier one
// are dropped here before their sequence numbers are compared.
func (a *App) live(tv *tableView) bool {
	if tv == nil {
		return false
	}
	switch a.screen {
	case screenProfile:
		return a.profile != nil && a.profile.rows == tv
	case screenAlerts:
		return a.alerts != nil && (a.alerts.findings == tv || a.alerts.rules == tv)
	}
	return false
}

// openPopup shows msg and redraws once the show transition is over.
func (a *App) openPopup(msg string) tea.Cmd {
	a.popup.Open(msg)
	return after(a.popupShow, popupTickMsg{})
}

func (a *App) closePopup() tea.Cmd {
	a.popup.Close()
	return after(a.popupHide, popupTickMsg{})
}

// fail reports a failed request. A rejected session goes back to login.
func (a *App) fail(err error) tea.Cmd {
	if errors.Is(err, api.ErrUnauthorized) {
		a.log.Info().Msg("session rejected")
		return tea.Batch(a.openPopup("Session expired, please log in again."), a.navigate(model.LoginPath))
	}
	a.log.Warn().Err(err).Msg("request failed")
	var se *api.ServerError
	if errors.As(err, &se) {
		return a.openPopup(se.Message())
	}
	return a.openPopup("Connection error: " + err.Error())
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		return a, nil
	case tea.KeyMsg:
		return a, a.handleKey(msg)
	case navigateMsg:
		return a, a.navigate(msg.path)
	case reloadMsg:
		return a, a.reload()
	case refetchMsg:
		if !a.live(msg.table) {
			return a, nil
		}
		return a, a.fetch(msg.table, msg.table.pager.Refetch())
	case pageMsg:
		return a, a.handlePage(msg)
	case popupTickMsg:
		// a transition ended; returning redraws the popup in its new phase
		return a, nil
	case trackersMsg:
		return a, a.handleTrackers(msg)
	case graphMsg:
		if msg.err != nil {
			return a, a.fail(msg.err)
		}
		a.dash.graph, a.dash.graphFor = msg.data, msg.object
		return a, nil
	case columnsMsg:
		if a.screen != screenProfile || a.profile == nil || a.profile.slug != msg.slug {
			return a, nil
		}
		if msg.err != nil {
			return a, a.fail(msg.err)
		}
		return a, a.setColumns(msg.cols)
	case usersMsg:
		if msg.err != nil {
			return a, a.fail(msg.err)
		}
		a.users.list.set(msg.rows)
		a.users.loaded = true
		return a, nil
	case outcomeMsg:
		return a, a.handleOutcome(msg)
	case actionMsg:
		return a, a.handleAction(msg)
	case loggedOutMsg:
		if msg.err != nil {
			a.log.Warn().Err(msg.err).Msg("logout failed")
		}
		a.authed = false
		return a, a.navigate(model.LoginPath)
	}
	return a, nil
}

func (a *App) handlePage(msg pageMsg) tea.Cmd {
	tv := msg.table
	if !a.live(tv) {
		a.log.Debug().Str("table", tv.id).Uint64("seq", msg.req.Seq).Msg("page reply for a closed table dropped")
		return nil
	}
	if msg.err != nil {
		tv.pager.Fail(msg.req, msg.err)
		return a.fail(msg.err)
	}
	if next, more := tv.pager.Apply(msg.req, msg.rows); more {
		return a.fetch(tv, next)
	}
	return nil
}

func (a *App) handleTrackers(msg trackersMsg) tea.Cmd {
	if msg.err != nil {
		return a.fail(msg.err)
	}
	a.trackers.set(msg.list)
	a.dash.setTrackers(msg.list)
	if a.screen == screenDashboard {
		if name, ok := a.dash.current(); ok {
			return a.loadGraph(name)
		}
	}
	return nil
}

// handleOutcome acts on a form submit result.
func (a *App) handleOutcome(msg outcomeMsg) tea.Cmd {
	switch msg.source {
	case sourceLogin:
		a.login.busy = false
	case sourceSchema:
		a.schema.busy = false
	case sourceAlertRule:
		if a.profile != nil && a.profile.modal != nil {
			a.profile.modal.busy = false
		}
	case sourceUser:
		if a.users.modal != nil {
			a.users.modal.busy = false
		}
	}
	if msg.err != nil {
		return a.fail(msg.err)
	}

	out := msg.out
	if out.Popup != "" {
		return a.openPopup(out.Popup)
	}
	switch msg.source {
	case sourceLogin:
		a.authed = true
		a.login.password.SetValue("")
		a.log.Info().Str("email", a.login.email.Value()).Msg("logged in")
	case sourceAlertRule:
		if a.profile != nil && out.Close {
			a.profile.rule.Reset()
			a.profile.modal = nil
		}
	case sourceUser:
		if out.Close {
			a.users.form.Clear()
			a.users.modal = nil
		}
		if out.Row != nil {
			a.users.list.append(out.Row)
		}
	}

	var cmds []tea.Cmd
	if out.Redirect != "" {
		cmds = append(cmds, after(out.Delay, navigateMsg{path: out.Redirect}))
	}
	if out.Reload {
		cmds = append(cmds, after(out.Delay, reloadMsg{}))
	}
	return tea.Batch(cmds...)
}

// handleAction logs the result of a write whose view was already updated.
func (a *App) handleAction(msg actionMsg) tea.Cmd {
	if msg.err != nil {
		if errors.Is(msg.err, api.ErrUnauthorized) {
			return a.fail(msg.err)
		}
		a.log.Warn().Err(msg.err).Str("action", msg.action).Str("target", msg.target).Msg("action failed")
		return nil
	}
	if !msg.resp.OK() {
		a.log.Warn().Str("action", msg.action).Str("target", msg.target).Str("description", msg.resp.Description).Msg("action rejected")
		return nil
	}
	a.log.Debug().Str("action", msg.action).Str("target", msg.target).Msg("action applied")
	return nil
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	if key == "ctrl+c" {
		return tea.Quit
	}

	// An open popup takes every key until dismissed.
	if a.popup.IsOpen() {
		if key == "enter" || key == "esc" || key == " " {
			return a.closePopup()
		}
		return nil
	}

	if a.screen == screenLogin {
		return a.handleLoginKey(msg)
	}

	if a.navFocus {
		return a.handleNavKey(key)
	}
	if key == "esc" && !a.modalOpen() {
		a.navFocus = true
		return nil
	}

	switch a.screen {
	case screenDashboard:
		return a.handleDashboardKey(msg)
	case screenTrackers:
		return a.handleTrackersKey(msg)
	case screenNewTracker:
		return a.handleSchemaKey(msg)
	case screenProfile:
		return a.handleProfileKey(msg)
	case screenAlerts:
		return a.handleAlertsKey(msg)
	case screenUsers:
		return a.handleUsersKey(msg)
	}
	return nil
}

func (a *App) modalOpen() bool {
	switch a.screen {
	case screenProfile:
		return a.profile != nil && a.profile.modal != nil
	case screenUsers:
		return a.users.modal != nil
	}
	return false
}

func (a *App) handleNavKey(key string) tea.Cmd {
	switch key {
	case "q":
		return tea.Quit
	case "up", "k":
		a.nav.Up()
	case "down", "j":
		a.nav.Down()
	case "esc", "tab":
		a.navFocus = false
	case "enter", " ":
		if path, ok := a.nav.Select(); ok {
			return a.navigate(path)
		}
	}
	return nil
}

func (a *App) View() string {
	var body string
	if a.screen == screenLogin {
		body = a.viewLogin()
	} else {
		content := lipgloss.JoinVertical(lipgloss.Left,
			a.theme.title().Render(a.screenTitle()),
			"",
			a.viewScreen(),
		)
		body = lipgloss.JoinHorizontal(lipgloss.Top,
			a.viewNav(),
			lipgloss.NewStyle().PaddingLeft(2).Render(content),
		)
	}
	if box := a.viewPopup(); box != "" {
		body = lipgloss.JoinVertical(lipgloss.Left, body, "", box)
	}
	return body
}

// viewPopup draws the popup for its current phase. It fades in and out in
// the muted color and only offers dismissal once fully shown.
func (a *App) viewPopup() string {
	th := a.theme
	switch a.popup.Phase(time.Now()) {
	case ui.PopupShowing:
		return th.box().BorderForeground(th.Muted).Render(th.muted().Render(a.popup.Text()))
	case ui.PopupShown:
		return th.box().BorderForeground(th.Critical).Render(
			lipgloss.NewStyle().Foreground(th.Critical).Render(a.popup.Text()) +
				"\n" + th.muted().Render("enter to dismiss"))
	case ui.PopupHiding:
		return th.muted().Render(a.popup.Text())
	}
	return ""
}

func (a *App) screenTitle() string {
	switch a.screen {
	case screenDashboard:
		return "Dashboard"
	case screenTrackers:
		return "All Trackers"
	case screenNewTracker:
		return "New Tracker"
	case screenProfile:
		return "Tracker Profile"
	case screenAlerts:
		return "Alerts"
	case screenUsers:
		return "User Management"
	}
	return ""
}

func (a *App) viewScreen() string {
	switch a.screen {
	case screenDashboard:
		return a.viewDashboard()
	case screenTrackers:
		return a.viewTrackers()
	case screenNewTracker:
		return a.viewSchema()
	case screenProfile:
		return a.viewProfile()
	case screenAlerts:
		return a.viewAlerts()
	case screenUsers:
		return a.viewUsers()
	}
	return ""
}

func (a *App) viewNav() string {
	th := a.theme
	vis := a.nav.Visible()
	lines := make([]string, 0, len(vis)+2)
	for i, v := range vis {
		text := strings.Repeat("  ", v.Depth) + v.Node.Label
		if v.Node.IsGroup() {
			if v.Node.Expanded() {
				text = "▾ " + text
			} else {
				text = "▸ " + text
			}
		} else {
			text = "  " + text
		}
		style := lipgloss.NewStyle()
		if v.Node.Active() {
			style = style.Foreground(th.Accent).Bold(true)
		}
		if a.navFocus && i == a.nav.Cursor() {
			style = style.Reverse(true)
		}
		lines = append(lines, style.Render(text))
	}
	hint := "esc menu"
	if a.navFocus {
		hint = "enter open · q quit"
	}
	lines = append(lines, "", th.muted().Render(hint))
	box := th.box().Width(24)
	if a.height > 2 {
		box = box.Height(a.height - 2)
	}
	return box.Render(strings.Join(lines, "\n"))
}
