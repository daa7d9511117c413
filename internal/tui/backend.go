package tui

import (
	"context"

	"github.com/maxviazov/tracker-dashboard/internal/api"
	"github.com/maxviazov/tracker-dashboard/internal/form"
	"github.com/maxviazov/tracker-dashboard/internal/model"
)

// Backend is the part of the API client the dashboard calls.
type Backend interface {
	form.Creator
	form.Inserter
	form.UserCreator
	form.Authenticator
	Select(ctx context.Context, q api.SelectQuery) ([]model.Row, error)
	Delete(ctx context.Context, object string, id any) (api.StatusResponse, error)
	Drop(ctx context.Context, name string) (api.StatusResponse, error)
	Trackers(ctx context.Context) ([]model.TrackerInfo, error)
	Columns(ctx context.Context, object string) ([]model.Column, error)
	Graph(ctx context.Context, object string) (model.GraphData, error)
	Users(ctx context.Context) ([]model.Row, error)
	DeleteUser(ctx context.Context, email string) (api.StatusResponse, error)
	Logout(ctx context.Context) error
}

var _ Backend = (*api.Client)(nil)
