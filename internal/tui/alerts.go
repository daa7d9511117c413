package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/maxviazov/tracker-dashboard/internal/model"
	"github.com/maxviazov/tracker-dashboard/internal/render"
)

const (
	findingsView = "findings"
	rulesView    = "rules"
)

type alertsScreen struct {
	findings *tableView
	rules    *tableView
	focus    int // 0 findings, 1 rules
}

func newAlertsScreen(limit int) *alertsScreen {
	return &alertsScreen{
		findings: newTableView(findingsView, model.AlertFindsObject, render.Renderer{
			Columns:    []string{model.IDColumn, "rule_name", "object_name", "column_name", "found_value"},
			LinkColumn: "object_name",
			LinkPrefix: model.ProfilePrefix,
		}, limit),
		rules: newTableView(rulesView, model.AlertRulesObject, render.Renderer{
			Columns:    []string{model.IDColumn, "name", "object_name", "column_name", "column_value"},
			LinkColumn: "object_name",
			LinkPrefix: model.ProfilePrefix,
		}, limit),
	}
}

func (s *alertsScreen) focused() *tableView {
	if s.focus == 1 {
		return s.rules
	}
	return s.findings
}

func (a *App) openAlerts() tea.Cmd {
	a.alerts = newAlertsScreen(a.pageLimit)
	return a.reloadAlerts()
}

func (a *App) reloadAlerts() tea.Cmd {
	s := a.alerts
	return tea.Batch(
		a.fetch(s.findings, s.findings.pager.Refetch()),
		a.fetch(s.rules, s.rules.pager.Refetch()),
	)
}

func (a *App) handleAlertsKey(msg tea.KeyMsg) tea.Cmd {
	s := a.alerts
	tv := s.focused()
	switch msg.String() {
	case "s":
		s.focus = 1 - s.focus
	case "up", "k":
		tv.up()
	case "down", "j":
		tv.down()
	case "right", "n":
		if req, ok := tv.pager.Next(); ok {
			return a.fetch(tv, req)
		}
	case "left", "p":
		if req, ok := tv.pager.Previous(); ok {
			return a.fetch(tv, req)
		}
	case "enter":
		if cells := tv.table.Slot(tv.cursor); cells != nil {
			for _, c := range cells {
				if c.Kind == render.KindLink && c.Text != "" {
					return a.navigate(c.Href)
				}
			}
		}
	case "r":
		return a.reloadAlerts()
	}
	return nil
}

func (a *App) viewAlerts() string {
	s, th := a.alerts, a.theme
	active := !a.navFocus
	section := func(title string, tv *tableView, focused bool) string {
		t := th.muted().Render(title)
		if focused {
			t = th.title().Render(title)
		}
		return lipgloss.JoinVertical(lipgloss.Left,
			t,
			renderTable(tv.table, tv.cursor, focused, th, a.baseURL),
			tv.footer(th),
		)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		section("Findings", s.findings, active && s.focus == 0),
		"",
		section("Rules", s.rules, active && s.focus == 1),
		th.muted().Render("s switch table · ←/→ page · enter open tracker · r refresh"),
	)
}
