package form

import (
	"context"
	"fmt"

	"github.com/maxviazov/tracker-dashboard/internal/model"
)

// LoginForm opens a session.
type LoginForm struct {
	Email    string
	Password string
}

// Submit logs in; success redirects to the dashboard index.
func (f *LoginForm) Submit(ctx context.Context, a Authenticator) (Outcome, error) {
	resp, err := a.Login(ctx, model.Credentials{Email: f.Email, Password: f.Password})
	if err != nil {
		return Outcome{}, fmt.Errorf("login: %w", err)
	}
	if !resp.OK() {
		return Outcome{Popup: WrongCredentials}, nil
	}
	f.Password = ""
	return Outcome{Redirect: model.IndexPath}, nil
}
