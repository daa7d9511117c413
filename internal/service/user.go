package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/maxviazov/tracker-dashboard/internal/model"
	"github.com/maxviazov/tracker-dashboard/internal/repository"
	"github.com/maxviazov/tracker-dashboard/pkg/auth"
	"github.com/rs/zerolog"
)

const (
	msgMissingEmail   = "The new user's email address is missing."
	msgDuplicateEmail = "Each user's email address must be unique."
	msgMissingRemove  = "Missing parameters to remove user"
	msgUnknownUser    = "User does not exist!"
)

// userService stores accounts as rows of the user management object.
type userService struct {
	repo repository.ObjectRepository
	log  zerolog.Logger
}

func NewUserService(repo repository.ObjectRepository, logger zerolog.Logger) UserService {
	l := logger.With().Str("module", "service").Str("component", "user").Logger()
	return &userService{repo: repo, log: l}
}

func (s *userService) EnsureUser(ctx context.Context, u model.User, hidden bool) error {
	email := strings.TrimSpace(u.Email)
	res, err := s.repo.Select(ctx, model.UserManagementObject, repository.Query{
		Columns: []string{"email"},
		Where:   model.Row{"email": email},
	})
	if err != nil {
		return err
	}
	if len(res.Items) > 0 {
		return nil
	}
	return s.create(ctx, u, hidden)
}

func (s *userService) CreateUser(ctx context.Context, u model.User) error {
	return s.create(ctx, u, false)
}

func (s *userService) create(ctx context.Context, u model.User, hidden bool) error {
	start := time.Now()
	u.Name = strings.TrimSpace(u.Name)
	u.Email = strings.TrimSpace(u.Email)

	var ferrs []FieldError
	if u.Email == "" {
		ferrs = append(ferrs, FieldError{Field: "email", Message: msgMissingEmail})
	}
	if u.Password == "" {
		ferrs = append(ferrs, FieldError{Field: "password", Message: "The new user's password is missing."})
	}
	if err := newInvalidInput(ferrs); err != nil {
		s.log.Debug().Interface("field_errors", ferrs).Msg("user validation failed")
		return err
	}

	hash, err := auth.HashPassword(u.Password)
	if err != nil {
		return err
	}
	row := model.Row{
		"name":           u.Name,
		"email":          u.Email,
		"password":       hash,
		"hidden_from_ui": hidden,
		"is_admin":       u.IsAdmin,
	}
	if _, err := s.repo.Insert(ctx, model.UserManagementObject, row); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return describe(err, msgDuplicateEmail)
		}
		s.log.Error().Err(err).Msg("create user failed")
		return err
	}
	s.log.Info().Dur("took", time.Since(start)).Bool("is_admin", u.IsAdmin).Msg("user created")
	return nil
}

func (s *userService) DeleteUser(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return newInvalidInput([]FieldError{{Field: "email", Message: msgMissingRemove}})
	}
	n, err := s.repo.Delete(ctx, model.UserManagementObject, model.Row{"email": email})
	if err != nil {
		return err
	}
	if n == 0 {
		return describe(repository.ErrNotFound, msgUnknownUser)
	}
	s.log.Info().Msg("user deleted")
	return nil
}

func (s *userService) Authenticate(ctx context.Context, creds model.Credentials) (model.User, error) {
	res, err := s.repo.Select(ctx, model.UserManagementObject, repository.Query{
		Where: model.Row{"email": strings.TrimSpace(creds.Email)},
	})
	if err != nil {
		return model.User{}, err
	}
	if len(res.Items) == 0 {
		return model.User{}, ErrInvalidCredentials
	}
	row := res.Items[0]
	hash, _ := row["password"].(string)
	if !auth.CheckPassword(hash, creds.Password) {
		s.log.Debug().Msg("password mismatch")
		return model.User{}, ErrInvalidCredentials
	}
	return userFromRow(row), nil
}

// ListUsers returns the visible accounts without their password hashes.
func (s *userService) ListUsers(ctx context.Context) ([]model.User, error) {
	res, err := s.repo.Select(ctx, model.UserManagementObject, repository.Query{
		Columns: []string{"name", "email", "is_admin"},
		Where:   model.Row{"hidden_from_ui": false},
	})
	if err != nil {
		return nil, err
	}
	out := make([]model.User, 0, len(res.Items))
	for _, r := range res.Items {
		out = append(out, userFromRow(r))
	}
	return out, nil
}

func userFromRow(r model.Row) model.User {
	name, _ := r["name"].(string)
	email, _ := r["email"].(string)
	admin, _ := r["is_admin"].(bool)
	return model.User{Name: name, Email: email, IsAdmin: admin}
}
