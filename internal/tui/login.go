package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/maxviazov/tracker-dashboard/internal/form"
)

type loginScreen struct {
	email    textinput.Model
	password textinput.Model
	ring     fieldRing
	busy     bool
}

func newLoginScreen(email string) *loginScreen {
	s := &loginScreen{
		email:    newInput("email", 128),
		password: newPasswordInput("password"),
	}
	s.email.SetValue(email)
	s.ring.inputs = []*textinput.Model{&s.email, &s.password}
	s.ring.set(0)
	return s
}

func (s *loginScreen) credentials() form.LoginForm {
	return form.LoginForm{Email: strings.TrimSpace(s.email.Value()), Password: s.password.Value()}
}

func (a *App) submitLogin(f form.LoginForm) tea.Cmd {
	a.login.busy = true
	return a.submit(sourceLogin, func(ctx context.Context, b Backend) (form.Outcome, error) {
		return f.Submit(ctx, b)
	})
}

func (a *App) handleLoginKey(msg tea.KeyMsg) tea.Cmd {
	s := a.login
	switch msg.String() {
	case "tab", "down":
		s.ring.next()
		return nil
	case "shift+tab", "up":
		s.ring.prev()
		return nil
	case "enter":
		if s.busy {
			return nil
		}
		return a.submitLogin(s.credentials())
	}
	return s.ring.update(msg)
}

func (a *App) viewLogin() string {
	s, th := a.login, a.theme
	lines := []string{
		th.title().Render("Tracker Dashboard"),
		"",
		label(th, "Email", s.ring.focus == 0),
		"  " + s.email.View(),
		label(th, "Password", s.ring.focus == 1),
		"  " + s.password.View(),
		"",
	}
	if s.busy {
		lines = append(lines, th.muted().Render("signing in…"))
	} else {
		lines = append(lines, th.muted().Render("tab switch field · enter sign in · ctrl+c quit"))
	}
	return th.box().Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
