package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/maxviazov/tracker-dashboard/internal/api"
	"github.com/maxviazov/tracker-dashboard/internal/model"
	"github.com/maxviazov/tracker-dashboard/internal/render"
)

var trackersRenderer = render.Renderer{
	Columns:    []string{"name", "count", "api"},
	LinkColumn: "name",
	LinkPrefix: model.ProfilePrefix,
}

type trackersScreen struct {
	list   *listView
	loaded bool
}

func newTrackersScreen() *trackersScreen {
	return &trackersScreen{list: newListView(trackersRenderer)}
}

func (s *trackersScreen) set(list []model.TrackerInfo) {
	rows := make([]model.Row, len(list))
	for i, t := range list {
		rows[i] = model.Row{"name": t.Name, "count": t.Count, "api": t.API}
	}
	s.list.set(rows)
	s.loaded = true
}

// nameBySlug finds the display name of the tracker at profile slug.
func (s *trackersScreen) nameBySlug(slug string) (string, bool) {
	for _, r := range s.list.rows {
		if s2, _ := r["api"].(string); s2 == slug {
			name, _ := r["name"].(string)
			return name, true
		}
	}
	return "", false
}

func (a *App) handleTrackersKey(msg tea.KeyMsg) tea.Cmd {
	s := a.trackers
	switch msg.String() {
	case "up", "k":
		s.list.up()
	case "down", "j":
		s.list.down()
	case "enter":
		if r, ok := s.list.selected(); ok {
			name, _ := r["name"].(string)
			return a.navigate(model.ProfilePrefix + model.Slug(name))
		}
	case "x", "delete":
		r, ok := s.list.remove()
		if !ok {
			return nil
		}
		name, _ := r["name"].(string)
		return a.act("drop", name, func(ctx context.Context, b Backend) (api.StatusResponse, error) {
			return b.Drop(ctx, name)
		})
	case "n":
		return a.navigate(model.NewTrackerPath)
	case "r":
		return a.loadTrackers()
	}
	return nil
}

func (a *App) viewTrackers() string {
	s, th := a.trackers, a.theme
	if !s.loaded {
		return th.muted().Render("loading…")
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		renderTable(s.list.table, s.list.cursor, !a.navFocus, th, a.baseURL),
		th.muted().Render("enter open · x drop tracker · n new tracker · r refresh"),
	)
}
