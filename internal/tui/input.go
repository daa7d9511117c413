package tui

import (
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

func newInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = ""
	ti.CharLimit = limit
	ti.Width = 32
	ti.Cursor.SetMode(cursor.CursorStatic)
	return ti
}

func newPasswordInput(placeholder string) textinput.Model {
	ti := newInput(placeholder, 128)
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '•'
	return ti
}

// fieldRing moves focus over a fixed number of fields. Fields that are
// text inputs are focused and blurred with it.
type fieldRing struct {
	inputs []*textinput.Model // nil entries are non-text fields
	focus  int
}

func (r *fieldRing) set(i int) {
	n := len(r.inputs)
	if n == 0 {
		return
	}
	r.focus = ((i % n) + n) % n
	for j, in := range r.inputs {
		if in == nil {
			continue
		}
		if j == r.focus {
			in.Focus()
		} else {
			in.Blur()
		}
	}
}

func (r *fieldRing) next() { r.set(r.focus + 1) }
func (r *fieldRing) prev() { r.set(r.focus - 1) }

// update forwards msg to the focused input, if it is one.
func (r *fieldRing) update(msg tea.Msg) tea.Cmd {
	if r.focus >= len(r.inputs) || r.inputs[r.focus] == nil {
		return nil
	}
	in := r.inputs[r.focus]
	var cmd tea.Cmd
	*in, cmd = in.Update(msg)
	return cmd
}

// label renders a field label, highlighted when focused.
func label(th Theme, text string, focused bool) string {
	if focused {
		return th.title().Render("› " + text)
	}
	return th.muted().Render("  " + text)
}
