package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/maxviazov/tracker-dashboard/internal/api"
	"github.com/maxviazov/tracker-dashboard/internal/form"
	"github.com/maxviazov/tracker-dashboard/internal/model"
	"github.com/maxviazov/tracker-dashboard/internal/render"
)

const profileView = "profile"

// Alert rule modal fields.
const (
	ruleName = iota
	ruleColumn
	ruleValue
)

type profileScreen struct {
	slug    string
	name    string
	columns []model.Column
	rows    *tableView // nil until the columns are known
	rule    *form.AlertRuleForm
	modal   *ruleModal
}

type ruleModal struct {
	name  textinput.Model
	value textinput.Model
	ring  fieldRing
	busy  bool
}

func newRuleModal() *ruleModal {
	m := &ruleModal{name: newInput("rule name", 64), value: newInput("value", 128)}
	m.ring.inputs = []*textinput.Model{&m.name, nil, &m.value}
	m.ring.set(ruleName)
	return m
}

func (a *App) openProfile(slug string) tea.Cmd {
	name, ok := a.trackers.nameBySlug(slug)
	if !ok {
		name = slug
	}
	a.profile = &profileScreen{slug: slug, name: name}
	return a.loadColumns(slug)
}

// setColumns builds the paged table once the column list arrives.
func (a *App) setColumns(cols []model.Column) tea.Cmd {
	p := a.profile
	p.columns = cols
	names := make([]string, len(cols))
	var ruleCols []string
	for i, c := range cols {
		names[i] = c.Name
		if !model.IsSystemObject(c.Name) {
			ruleCols = append(ruleCols, c.Name)
		}
	}
	p.rule = form.NewAlertRuleForm(p.name, ruleCols)
	rd := render.Renderer{Columns: names, IDColumn: model.IDColumn}
	p.rows = newTableView(profileView, p.slug, rd, a.pageLimit)
	return a.fetch(p.rows, p.rows.pager.Refetch())
}

func (a *App) handleProfileKey(msg tea.KeyMsg) tea.Cmd {
	p := a.profile
	if p.modal != nil {
		return a.handleRuleKey(msg)
	}
	if p.rows == nil {
		return nil
	}
	tv := p.rows
	switch msg.String() {
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
	case "x", "delete":
		return a.deleteRow(tv)
	case "e":
		object, cols := p.slug, p.columns
		return a.submit(sourceExample, func(ctx context.Context, b Backend) (form.Outcome, error) {
			return form.InsertExample(ctx, b, object, cols)
		})
	case "a":
		p.modal = newRuleModal()
		p.rule.Reset()
	case "r":
		return a.fetch(tv, tv.pager.Refetch())
	}
	return nil
}

// deleteRow blanks the row under the cursor, sends the delete and refetches
// the page once the backend had time to apply it.
func (a *App) deleteRow(tv *tableView) tea.Cmd {
	id, ok := tv.table.Key(tv.cursor)
	if !ok {
		return nil
	}
	tv.table.ClearSlot(tv.cursor)
	object := tv.object
	return tea.Batch(
		a.act("delete", object, func(ctx context.Context, b Backend) (api.StatusResponse, error) {
			return b.Delete(ctx, object, id)
		}),
		after(a.refreshDelay, refetchMsg{table: tv}),
	)
}

func (a *App) handleRuleKey(msg tea.KeyMsg) tea.Cmd {
	p := a.profile
	m := p.modal
	if m.busy {
		return nil
	}
	switch msg.String() {
	case "esc":
		p.modal = nil
		return nil
	case "tab", "down":
		m.ring.next()
		return nil
	case "shift+tab", "up":
		m.ring.prev()
		return nil
	case "enter":
		p.rule.Name = m.name.Value()
		p.rule.Value = m.value.Value()
		f := *p.rule
		m.busy = true
		return a.submit(sourceAlertRule, func(ctx context.Context, b Backend) (form.Outcome, error) {
			return f.Submit(ctx, b)
		})
	}
	if m.ring.focus == ruleColumn {
		switch msg.String() {
		case "left", "h":
			p.rule.Column = cycleColumn(p.rule.Columns, p.rule.Column, -1)
		case "right", "l", " ":
			p.rule.Column = cycleColumn(p.rule.Columns, p.rule.Column, 1)
		}
		return nil
	}
	return m.ring.update(msg)
}

func cycleColumn(cols []string, cur string, step int) string {
	n := len(cols)
	if n == 0 {
		return ""
	}
	for i, c := range cols {
		if c == cur {
			return cols[((i+step)%n+n)%n]
		}
	}
	return cols[0]
}

func (a *App) viewProfile() string {
	p, th := a.profile, a.theme
	head := th.title().Render(p.name) + "  " + th.muted().Render(strings.TrimRight(a.baseURL, "/")+"/api/tracking/insert/"+p.slug)
	if p.rows == nil {
		return lipgloss.JoinVertical(lipgloss.Left, head, "", th.muted().Render("loading…"))
	}
	parts := []string{
		head,
		"",
		renderTable(p.rows.table, p.rows.cursor, !a.navFocus && p.modal == nil, th, a.baseURL),
		p.rows.footer(th),
		th.muted().Render("←/→ page · x delete row · e insert example · a new alert rule · r refresh"),
	}
	if p.modal != nil {
		parts = append(parts, "", a.viewRuleModal())
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (a *App) viewRuleModal() string {
	p, th := a.profile, a.theme
	m := p.modal
	column := "‹" + p.rule.Column + "›"
	if p.rule.Column == "" {
		column = th.muted().Render("no columns")
	}
	lines := []string{
		th.title().Render(fmt.Sprintf("New alert rule for %s", p.name)),
		label(th, "Name", m.ring.focus == ruleName),
		"  " + m.name.View(),
		label(th, "Column", m.ring.focus == ruleColumn),
		"  " + column,
		label(th, "Value", m.ring.focus == ruleValue),
		"  " + m.value.View(),
		"",
	}
	if m.busy {
		lines = append(lines, th.muted().Render("saving…"))
	} else {
		lines = append(lines, th.muted().Render("tab next · ←/→ column · enter save · esc cancel"))
	}
	return th.box().Render(strings.Join(lines, "\n"))
}
