package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/maxviazov/tracker-dashboard/internal/form"
	"github.com/maxviazov/tracker-dashboard/internal/model"
)

// Fields of one property line, in focus order.
const (
	propName = iota
	propType
	propNullable
	propUnique
	propFields
)

type propertyLine struct {
	id   int
	name textinput.Model
}

// schemaScreen edits a form.SchemaForm. Focus 0 is the tracker name; each
// property line then owns propFields positions.
type schemaScreen struct {
	form  *form.SchemaForm
	name  textinput.Model
	lines []*propertyLine
	focus int
	busy  bool
}

func newSchemaScreen() *schemaScreen {
	s := &schemaScreen{form: form.NewSchemaForm(), name: newInput("tracker name", 64)}
	s.addLine()
	s.setFocus(0)
	return s
}

func (s *schemaScreen) addLine() {
	id := s.form.AddRow()
	s.lines = append(s.lines, &propertyLine{id: id, name: newInput("property name", 64)})
}

// removeLine drops property line i.
func (s *schemaScreen) removeLine(i int) {
	if i < 0 || i >= len(s.lines) {
		return
	}
	s.form.RemoveRow(s.lines[i].id)
	s.lines = append(s.lines[:i], s.lines[i+1:]...)
}

func (s *schemaScreen) fields() int { return 1 + len(s.lines)*propFields }

// at maps a focus position to a property line and field; line -1 is the name.
func (s *schemaScreen) at(pos int) (line, field int) {
	if pos == 0 {
		return -1, 0
	}
	return (pos - 1) / propFields, (pos - 1) % propFields
}

func (s *schemaScreen) setFocus(pos int) {
	n := s.fields()
	s.focus = ((pos % n) + n) % n
	s.name.Blur()
	for _, l := range s.lines {
		l.name.Blur()
	}
	line, field := s.at(s.focus)
	switch {
	case line < 0:
		s.name.Focus()
	case field == propName:
		s.lines[line].name.Focus()
	}
}

func (s *schemaScreen) row(line int) *form.PropertyRow {
	r, _ := s.form.Row(s.lines[line].id)
	return r
}

// sync copies the text inputs into the form.
func (s *schemaScreen) sync() {
	s.form.Name = s.name.Value()
	for i, l := range s.lines {
		s.row(i).Name = l.name.Value()
	}
}

func cycleType(t model.PropertyType, step int) model.PropertyType {
	n := len(model.PropertyTypes)
	for i, p := range model.PropertyTypes {
		if p == t {
			return model.PropertyTypes[((i+step)%n+n)%n]
		}
	}
	return model.PropertyTypes[0]
}

func (a *App) handleSchemaKey(msg tea.KeyMsg) tea.Cmd {
	s := a.schema
	if s.busy {
		return nil
	}
	line, field := s.at(s.focus)
	switch msg.String() {
	case "tab", "down":
		s.setFocus(s.focus + 1)
		return nil
	case "shift+tab", "up":
		s.setFocus(s.focus - 1)
		return nil
	case "ctrl+a":
		s.addLine()
		s.setFocus(1 + (len(s.lines)-1)*propFields)
		return nil
	case "ctrl+x":
		if line >= 0 {
			s.removeLine(line)
			s.setFocus(max(0, s.focus-field-propFields))
		}
		return nil
	case "enter":
		s.sync()
		s.busy = true
		f := s.form
		return a.submit(sourceSchema, func(ctx context.Context, b Backend) (form.Outcome, error) {
			return f.Submit(ctx, b)
		})
	}

	if line < 0 {
		var cmd tea.Cmd
		s.name, cmd = s.name.Update(msg)
		return cmd
	}
	r := s.row(line)
	switch field {
	case propName:
		var cmd tea.Cmd
		s.lines[line].name, cmd = s.lines[line].name.Update(msg)
		return cmd
	case propType:
		switch msg.String() {
		case "left", "h":
			r.Type = cycleType(r.Type, -1)
		case "right", "l", " ":
			r.Type = cycleType(r.Type, 1)
		}
	case propNullable:
		if msg.String() == " " || msg.String() == "x" {
			r.Nullable = !r.Nullable
		}
	case propUnique:
		if msg.String() == " " || msg.String() == "x" {
			r.Unique = !r.Unique
		}
	}
	return nil
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}

func (a *App) viewSchema() string {
	s, th := a.schema, a.theme
	focusStyle := lipgloss.NewStyle().Foreground(th.Accent).Reverse(true)
	mark := func(pos int, text string) string {
		if s.focus == pos {
			return focusStyle.Render(text)
		}
		return text
	}

	lines := []string{
		label(th, "Tracker name", s.focus == 0),
		"  " + s.name.View(),
		"",
		th.title().Render("Properties"),
	}
	if len(s.lines) == 0 {
		lines = append(lines, th.muted().Render("  no properties, ctrl+a adds one"))
	}
	for i, l := range s.lines {
		base := 1 + i*propFields
		r := s.row(i)
		lines = append(lines, fmt.Sprintf("%s %s  type %s  nullable %s  unique %s",
			label(th, fmt.Sprintf("#%d", i+1), s.focus >= base && s.focus < base+propFields),
			l.name.View(),
			mark(base+propType, "‹"+string(r.Type)+"›"),
			mark(base+propNullable, checkbox(r.Nullable)),
			mark(base+propUnique, checkbox(r.Unique)),
		))
	}
	help := "tab next field · ←/→ type · space toggle · ctrl+a add · ctrl+x remove · enter create"
	if s.busy {
		help = "creating…"
	}
	lines = append(lines, "", th.muted().Render(help))
	return strings.Join(lines, "\n")
}
