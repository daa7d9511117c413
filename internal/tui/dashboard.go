package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/maxviazov/tracker-dashboard/internal/model"
)

// graphWidth is the width of the longest bar.
const graphWidth = 40

type dashboardScreen struct {
	names    []string
	selected int
	graph    model.GraphData
	graphFor string
	loaded   bool
}

func (s *dashboardScreen) current() (string, bool) {
	if s.selected < 0 || s.selected >= len(s.names) {
		return "", false
	}
	return s.names[s.selected], true
}

// setTrackers keeps the selection on the same tracker when it still exists.
func (s *dashboardScreen) setTrackers(list []model.TrackerInfo) {
	prev, _ := s.current()
	s.names = s.names[:0]
	s.selected = 0
	for i, t := range list {
		s.names = append(s.names, t.Name)
		if t.Name == prev {
			s.selected = i
		}
	}
	s.loaded = true
}

func (a *App) handleDashboardKey(msg tea.KeyMsg) tea.Cmd {
	s := a.dash
	switch msg.String() {
	case "left", "h":
		if len(s.names) > 1 {
			s.selected = (s.selected + len(s.names) - 1) % len(s.names)
			return a.loadGraph(s.names[s.selected])
		}
	case "right", "l":
		if len(s.names) > 1 {
			s.selected = (s.selected + 1) % len(s.names)
			return a.loadGraph(s.names[s.selected])
		}
	case "r":
		return a.loadTrackers()
	}
	return nil
}

func (a *App) viewDashboard() string {
	s, th := a.dash, a.theme
	if !s.loaded {
		return th.muted().Render("loading…")
	}
	if len(s.names) == 0 {
		return th.muted().Render("No trackers yet. Create one under Trackers › New Tracker.")
	}

	tabs := make([]string, len(s.names))
	for i, n := range s.names {
		if i == s.selected {
			tabs[i] = th.title().Render("[" + n + "]")
		} else {
			tabs[i] = th.muted().Render(" " + n + " ")
		}
	}
	lines := []string{strings.Join(tabs, " "), ""}

	name, _ := s.current()
	if s.graphFor != name {
		lines = append(lines, th.muted().Render("loading graph…"))
	} else {
		lines = append(lines, renderGraph(s.graph, th))
	}
	lines = append(lines, "", th.muted().Render("←/→ switch tracker · r refresh"))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// renderGraph draws one horizontal bar per day.
func renderGraph(g model.GraphData, th Theme) string {
	if len(g.Labels) == 0 {
		return th.muted().Render("No events recorded.")
	}
	peak := 0
	for _, v := range g.Values {
		if v > peak {
			peak = v
		}
	}
	bar := lipgloss.NewStyle().Foreground(th.Healthy)
	lines := make([]string, 0, len(g.Labels))
	for i, day := range g.Labels {
		v := 0
		if i < len(g.Values) {
			v = g.Values[i]
		}
		n := 0
		if peak > 0 {
			n = v * graphWidth / peak
		}
		if v > 0 && n == 0 {
			n = 1
		}
		lines = append(lines, fmt.Sprintf("%s %s %d", th.muted().Render(day), bar.Render(strings.Repeat("█", n)), v))
	}
	return strings.Join(lines, "\n")
}
