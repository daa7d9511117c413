package repository

import (
	"context"

	"github.com/maxviazov/tracker-dashboard/internal/model"
)

// Pinger represents a minimal readiness probe capability.
// I use it to decouple health checks from storage implementation details.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ObjectRepository stores dynamic objects: named tables whose columns are
// declared at creation. Every row gets an _id and a _timestamp_created.
// Names are matched exactly first, then by their slug.
type ObjectRepository interface {
	CreateObject(ctx context.Context, schema model.TrackerSchema) error
	DropObject(ctx context.Context, name string) error
	ObjectNames(ctx context.Context) ([]string, error)
	Columns(ctx context.Context, name string) ([]model.Column, error)
	Count(ctx context.Context, name string) (int, error)

	// Insert stores row and returns it as stored, system columns included.
	Insert(ctx context.Context, name string, row model.Row) (model.Row, error)
	Select(ctx context.Context, name string, q Query) (PageResult[model.Row], error)
	// Update sets values on the rows matching where inside the page window
	// and returns how many rows changed.
	Update(ctx context.Context, name string, where, values model.Row, p Page) (int, error)
	// Delete removes the rows matching where and returns how many were removed.
	Delete(ctx context.Context, name string, where model.Row) (int, error)
}
