package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/maxviazov/tracker-dashboard/internal/api"
	"github.com/maxviazov/tracker-dashboard/internal/form"
	"github.com/maxviazov/tracker-dashboard/internal/render"
)

var usersRenderer = render.Renderer{Columns: []string{"name", "email", "is_admin"}}

// New user modal fields.
const (
	userName = iota
	userPassword
	userEmail
	userAdmin
)

type usersScreen struct {
	list   *listView
	form   form.UserForm
	modal  *userModal
	loaded bool
}

type userModal struct {
	name     textinput.Model
	password textinput.Model
	email    textinput.Model
	ring     fieldRing
	busy     bool
}

func newUsersScreen() *usersScreen {
	return &usersScreen{list: newListView(usersRenderer)}
}

func newUserModal() *userModal {
	m := &userModal{
		name:     newInput("name", 64),
		password: newPasswordInput("password"),
		email:    newInput("email", 128),
	}
	m.ring.inputs = []*textinput.Model{&m.name, &m.password, &m.email, nil}
	m.ring.set(userName)
	return m
}

func (a *App) handleUsersKey(msg tea.KeyMsg) tea.Cmd {
	s := a.users
	if s.modal != nil {
		return a.handleUserModalKey(msg)
	}
	switch msg.String() {
	case "up", "k":
		s.list.up()
	case "down", "j":
		s.list.down()
	case "c":
		s.modal = newUserModal()
	case "x", "delete":
		r, ok := s.list.remove()
		if !ok {
			return nil
		}
		email, _ := r["email"].(string)
		return a.act("delete_user", email, func(ctx context.Context, b Backend) (api.StatusResponse, error) {
			return b.DeleteUser(ctx, email)
		})
	case "r":
		return a.loadUsers()
	}
	return nil
}

func (a *App) handleUserModalKey(msg tea.KeyMsg) tea.Cmd {
	s := a.users
	m := s.modal
	if m.busy {
		return nil
	}
	switch msg.String() {
	case "esc":
		s.modal = nil
		s.form.Clear()
		return nil
	case "tab", "down":
		m.ring.next()
		return nil
	case "shift+tab", "up":
		m.ring.prev()
		return nil
	case "enter":
		s.form.Name = m.name.Value()
		s.form.Password = m.password.Value()
		s.form.Email = m.email.Value()
		f := s.form
		m.busy = true
		return a.submit(sourceUser, func(ctx context.Context, b Backend) (form.Outcome, error) {
			return f.Submit(ctx, b)
		})
	}
	if m.ring.focus == userAdmin {
		if msg.String() == " " || msg.String() == "x" {
			s.form.IsAdmin = !s.form.IsAdmin
		}
		return nil
	}
	return m.ring.update(msg)
}

func (a *App) viewUsers() string {
	s, th := a.users, a.theme
	if !s.loaded {
		return th.muted().Render("loading…")
	}
	parts := []string{
		renderTable(s.list.table, s.list.cursor, !a.navFocus && s.modal == nil, th, a.baseURL),
		th.muted().Render("c new user · x delete user · r refresh"),
	}
	if s.modal != nil {
		parts = append(parts, "", a.viewUserModal())
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (a *App) viewUserModal() string {
	s, th := a.users, a.theme
	m := s.modal
	lines := []string{
		th.title().Render("New user"),
		label(th, "Name", m.ring.focus == userName),
		"  " + m.name.View(),
		label(th, "Password", m.ring.focus == userPassword),
		"  " + m.password.View(),
		label(th, "Email", m.ring.focus == userEmail),
		"  " + m.email.View(),
		label(th, "Admin", m.ring.focus == userAdmin),
		"  " + checkbox(s.form.IsAdmin),
		"",
	}
	if m.busy {
		lines = append(lines, th.muted().Render("saving…"))
	} else {
		lines = append(lines, th.muted().Render("tab next · space toggle admin · enter create · esc cancel"))
	}
	return th.box().Render(strings.Join(lines, "\n"))
}
