package form

import (
	"context"
	"fmt"
	"strings"

	"github.com/maxviazov/tracker-dashboard/internal/model"
)

// UserForm registers a dashboard account. The backend validates the fields.
type UserForm struct {
	Name     string
	Password string
	Email    string
	IsAdmin  bool
}

// Clear empties the inputs.
func (f *UserForm) Clear() { *f = UserForm{} }

// Submit creates the user. Success closes and clears the form and returns
// the row to append to the users table.
func (f *UserForm) Submit(ctx context.Context, c UserCreator) (Outcome, error) {
	u := model.User{
		Name:     strings.TrimSpace(f.Name),
		Password: f.Password,
		Email:    strings.TrimSpace(f.Email),
		IsAdmin:  f.IsAdmin,
	}
	resp, err := c.CreateUser(ctx, u)
	if err != nil {
		return Outcome{}, fmt.Errorf("create user: %w", err)
	}
	if !resp.OK() {
		return popupFor(resp), nil
	}
	f.Clear()
	return Outcome{
		Close: true,
		Row:   model.Row{"name": u.Name, "email": u.Email, "is_admin": u.IsAdmin},
	}, nil
}
