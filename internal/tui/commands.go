package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/maxviazov/tracker-dashboard/internal/api"
	"github.com/maxviazov/tracker-dashboard/internal/form"
	"github.com/maxviazov/tracker-dashboard/internal/model"
	"github.com/maxviazov/tracker-dashboard/internal/pager"
)

// Results of commands. Each carries enough of its request that the
// receiving view can tell whether it is still interested.
type (
	navigateMsg  struct{ path string }
	reloadMsg    struct{}
	popupTickMsg struct{}
	refetchMsg   struct{ table *tableView }

	pageMsg struct {
		table *tableView
		req   pager.Request
		rows  []model.Row
		err   error
	}
	trackersMsg struct {
		list []model.TrackerInfo
		err  error
	}
	graphMsg struct {
		object string
		data   model.GraphData
		err    error
	}
	columnsMsg struct {
		slug string
		cols []model.Column
		err  error
	}
	usersMsg struct {
		rows []model.Row
		err  error
	}
	outcomeMsg struct {
		source string
		out    form.Outcome
		err    error
	}
	actionMsg struct {
		action string
		target string
		resp   api.StatusResponse
		err    error
	}
	loggedOutMsg struct{ err error }
)

// Form sources of outcomeMsg.
const (
	sourceLogin     = "login"
	sourceSchema    = "schema"
	sourceAlertRule = "alert_rule"
	sourceUser      = "user"
	sourceExample   = "example"
)

// call runs fn off the event loop with the request timeout applied.
func (a *App) call(fn func(ctx context.Context) tea.Msg) tea.Cmd {
	timeout := a.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return fn(ctx)
	}
}

// after delivers msg once d has passed.
func after(d time.Duration, msg tea.Msg) tea.Cmd {
	if d <= 0 {
		return func() tea.Msg { return msg }
	}
	return tea.Tick(d, func(time.Time) tea.Msg { return msg })
}

func (a *App) fetch(tv *tableView, req pager.Request) tea.Cmd {
	b, object, cols := a.backend, tv.object, tv.columns
	return a.call(func(ctx context.Context) tea.Msg {
		rows, err := b.Select(ctx, api.SelectQuery{Object: object, Columns: cols, Limit: req.Limit, Offset: req.Offset})
		return pageMsg{table: tv, req: req, rows: rows, err: err}
	})
}

func (a *App) loadTrackers() tea.Cmd {
	b := a.backend
	return a.call(func(ctx context.Context) tea.Msg {
		list, err := b.Trackers(ctx)
		return trackersMsg{list: list, err: err}
	})
}

func (a *App) loadGraph(object string) tea.Cmd {
	b := a.backend
	return a.call(func(ctx context.Context) tea.Msg {
		data, err := b.Graph(ctx, object)
		return graphMsg{object: object, data: data, err: err}
	})
}

func (a *App) loadColumns(slug string) tea.Cmd {
	b := a.backend
	return a.call(func(ctx context.Context) tea.Msg {
		cols, err := b.Columns(ctx, slug)
		return columnsMsg{slug: slug, cols: cols, err: err}
	})
}

func (a *App) loadUsers() tea.Cmd {
	b := a.backend
	return a.call(func(ctx context.Context) tea.Msg {
		rows, err := b.Users(ctx)
		return usersMsg{rows: rows, err: err}
	})
}

// submit runs a form submit and reports its outcome.
func (a *App) submit(source string, fn func(ctx context.Context, b Backend) (form.Outcome, error)) tea.Cmd {
	b := a.backend
	return a.call(func(ctx context.Context) tea.Msg {
		out, err := fn(ctx, b)
		return outcomeMsg{source: source, out: out, err: err}
	})
}

// act sends a fire-and-forget write whose view was already updated.
func (a *App) act(action, target string, fn func(ctx context.Context, b Backend) (api.StatusResponse, error)) tea.Cmd {
	b := a.backend
	return a.call(func(ctx context.Context) tea.Msg {
		resp, err := fn(ctx, b)
		return actionMsg{action: action, target: target, resp: resp, err: err}
	})
}

func (a *App) logout() tea.Cmd {
	b := a.backend
	return a.call(func(ctx context.Context) tea.Msg {
		return loggedOutMsg{err: b.Logout(ctx)}
	})
}
