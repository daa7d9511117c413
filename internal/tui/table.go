package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/x/ansi"

	"github.com/maxviazov/tracker-dashboard/internal/model"
	"github.com/maxviazov/tracker-dashboard/internal/pager"
	"github.com/maxviazov/tracker-dashboard/internal/render"
)

// maxCellWidth caps a text cell; longer values are cut with an ellipsis.
const maxCellWidth = 28

// tableView is one paged table: its slots, its page window and a row cursor.
type tableView struct {
	id      string
	object  string
	columns []string
	table   *render.Table
	pager   *pager.Controller
	cursor  int
}

func newTableView(id, object string, rd render.Renderer, limit int) *tableView {
	t := render.NewTable(rd, limit)
	return &tableView{
		id:      id,
		object:  object,
		columns: rd.Columns,
		table:   t,
		pager:   pager.New(limit, t),
	}
}

func (tv *tableView) up() {
	if tv.cursor > 0 {
		tv.cursor--
	}
}

func (tv *tableView) down() {
	if tv.cursor < tv.table.Len()-1 {
		tv.cursor++
	}
}

// footer shows the page number and which page controls are enabled.
func (tv *tableView) footer(th Theme) string {
	st := tv.pager.State()
	on := lipgloss.NewStyle().Foreground(th.Accent)
	off := th.muted()
	prev, next := off.Render("← prev"), off.Render("next →")
	if st.PrevEnabled {
		prev = on.Render("← prev")
	}
	if st.NextEnabled {
		next = on.Render("next →")
	}
	page := fmt.Sprintf("page %d", tv.pager.Page())
	if tv.pager.Pending() {
		page += " …"
	}
	return prev + "  " + th.muted().Render(page) + "  " + next
}

// listView is an unpaged table whose rows are all known up front.
type listView struct {
	renderer render.Renderer
	rows     []model.Row
	table    *render.Table
	cursor   int
}

func newListView(rd render.Renderer) *listView {
	l := &listView{renderer: rd}
	l.set(nil)
	return l
}

func (l *listView) set(rows []model.Row) {
	l.rows = rows
	l.table = render.NewTable(l.renderer, len(rows))
	l.table.Fill(rows)
	if l.cursor >= len(rows) {
		l.cursor = len(rows) - 1
	}
	if l.cursor < 0 {
		l.cursor = 0
	}
}

// selected returns the row under the cursor.
func (l *listView) selected() (model.Row, bool) {
	if l.cursor < 0 || l.cursor >= len(l.rows) {
		return nil, false
	}
	return l.rows[l.cursor], true
}

// remove drops the row under the cursor from the view.
func (l *listView) remove() (model.Row, bool) {
	r, ok := l.selected()
	if !ok {
		return nil, false
	}
	rows := make([]model.Row, 0, len(l.rows)-1)
	rows = append(rows, l.rows[:l.cursor]...)
	rows = append(rows, l.rows[l.cursor+1:]...)
	l.set(rows)
	return r, true
}

func (l *listView) append(r model.Row) {
	l.set(append(l.rows, r))
}

func (l *listView) up() {
	if l.cursor > 0 {
		l.cursor--
	}
}

func (l *listView) down() {
	if l.cursor < len(l.rows)-1 {
		l.cursor++
	}
}

// renderTable draws every slot of t, blank slots included. Link cells become
// OSC 8 hyperlinks rooted at linkBase.
func renderTable(t *render.Table, cursor int, focused bool, th Theme, linkBase string) string {
	headers := t.Columns()
	rows := make([][]string, t.Len())
	for i := range rows {
		row := make([]string, len(headers))
		for j, c := range t.Slot(i) {
			row[j] = cellText(c, th, linkBase)
		}
		rows[i] = row
	}

	header := lipgloss.NewStyle().Foreground(th.Accent).Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	selected := cell.Reverse(true)
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(th.Grid)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return header
			case focused && row == cursor:
				return selected
			default:
				return cell
			}
		}).
		String()
}

func cellText(c render.Cell, th Theme, linkBase string) string {
	switch c.Kind {
	case render.KindDelete:
		return lipgloss.NewStyle().Foreground(th.Critical).Render(c.Text)
	case render.KindLink:
		text := ansi.Truncate(c.Text, maxCellWidth, "…")
		return ansi.SetHyperlink(strings.TrimRight(linkBase, "/")+c.Href) + text + ansi.ResetHyperlink()
	default:
		return ansi.Truncate(c.Text, maxCellWidth, "…")
	}
}
