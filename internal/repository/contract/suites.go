// Package contract holds behaviour suites every ObjectRepository
// implementation must pass. Implementations call them from their own tests
// with a factory that returns a fresh, empty store.
package contract

import (
	"context"
	"errors"
	"testing"

	"github.com/maxviazov/tracker-dashboard/internal/model"
	"github.com/maxviazov/tracker-dashboard/internal/repository"
)

type ObjectFactory func(t *testing.T) (repository.ObjectRepository, func())

type PingerFactory func(t *testing.T) (repository.Pinger, func())

var events = model.TrackerSchema{
	Name: "Contract Events",
	Properties: []model.Property{
		{Name: "kind", Type: model.TypeString},
		{Name: "code", Type: model.TypeUnicode, Nullable: true, Unique: true},
		{Name: "ok", Type: model.TypeBoolean, Nullable: true},
	},
}

func seed(t *testing.T, repo repository.ObjectRepository, n int) []model.Row {
	t.Helper()
	ctx := context.Background()
	if err := repo.CreateObject(ctx, events); err != nil {
		t.Fatalf("create object: %v", err)
	}
	out := make([]model.Row, 0, n)
	for i := 0; i < n; i++ {
		row, err := repo.Insert(ctx, events.Name, model.Row{"kind": "k", "ok": i%2 == 0})
		if err != nil {
			t.Fatalf("seed row %d: %v", i, err)
		}
		out = append(out, row)
	}
	return out
}

func RunObjectRepositoryContract(t *testing.T, makeRepo ObjectFactory) {
	t.Helper()

	t.Run("create_and_columns", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		if err := repo.CreateObject(ctx, events); err != nil {
			t.Fatalf("create failed: %v", err)
		}
		cols, err := repo.Columns(ctx, events.Name)
		if err != nil {
			t.Fatalf("columns failed: %v", err)
		}
		want := []string{model.IDColumn, "kind", "code", "ok", model.CreatedAtColumn}
		if len(cols) != len(want) {
			t.Fatalf("unexpected columns: %+v", cols)
		}
		for i, c := range cols {
			if c.Name != want[i] {
				t.Fatalf("column %d: want %s, got %s", i, want[i], c.Name)
			}
		}
	})

	t.Run("duplicate_by_slug", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		if err := repo.CreateObject(ctx, events); err != nil {
			t.Fatalf("create failed: %v", err)
		}
		dup := model.TrackerSchema{Name: "contract events", Properties: events.Properties}
		if err := repo.CreateObject(ctx, dup); !errors.Is(err, repository.ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("unknown_object", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		if _, err := repo.Columns(ctx, "missing"); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("columns: expected ErrNotFound, got %v", err)
		}
		if _, err := repo.Insert(ctx, "missing", model.Row{}); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("insert: expected ErrNotFound, got %v", err)
		}
		if err := repo.DropObject(ctx, "missing"); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("drop: expected ErrNotFound, got %v", err)
		}
	})

	t.Run("select_pagination_total", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		seed(t, repo, 7)
		ctx := context.Background()
		res, err := repo.Select(ctx, events.Name, repository.Query{Page: repository.Page{Limit: 3}})
		if err != nil {
			t.Fatalf("select: %v", err)
		}
		if len(res.Items) != 3 || res.Total != 7 {
			t.Fatalf("unexpected page: len=%d total=%d", len(res.Items), res.Total)
		}
		res2, err := repo.Select(ctx, events.Name, repository.Query{Page: repository.Page{Limit: 3, Offset: 6}})
		if err != nil {
			t.Fatalf("select2: %v", err)
		}
		if len(res2.Items) != 1 || res2.Total != 7 {
			t.Fatalf("unexpected page2: len=%d total=%d", len(res2.Items), res2.Total)
		}
		past, err := repo.Select(ctx, events.Name, repository.Query{Page: repository.Page{Limit: 3, Offset: 30}})
		if err != nil {
			t.Fatalf("select past end: %v", err)
		}
		if len(past.Items) != 0 {
			t.Fatalf("expected empty page past the end, got %d rows", len(past.Items))
		}
	})

	t.Run("ids_grow_in_insert_order", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		rows := seed(t, repo, 3)
		res, err := repo.Select(context.Background(), events.Name, repository.Query{Columns: []string{model.IDColumn}})
		if err != nil {
			t.Fatalf("select: %v", err)
		}
		for i, r := range res.Items {
			if r[model.IDColumn] != rows[i][model.IDColumn] {
				t.Fatalf("row %d: want id %v, got %v", i, rows[i][model.IDColumn], r[model.IDColumn])
			}
		}
	})

	t.Run("unique_violation", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		seed(t, repo, 0)
		ctx := context.Background()
		if _, err := repo.Insert(ctx, events.Name, model.Row{"kind": "a", "code": "X"}); err != nil {
			t.Fatalf("first insert: %v", err)
		}
		if _, err := repo.Insert(ctx, events.Name, model.Row{"kind": "b", "code": "X"}); !errors.Is(err, repository.ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("delete_by_id", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		rows := seed(t, repo, 3)
		ctx := context.Background()
		n, err := repo.Delete(ctx, events.Name, model.Row{model.IDColumn: rows[1][model.IDColumn]})
		if err != nil || n != 1 {
			t.Fatalf("delete: n=%d err=%v", n, err)
		}
		n, err = repo.Delete(ctx, events.Name, model.Row{model.IDColumn: rows[1][model.IDColumn]})
		if err != nil || n != 0 {
			t.Fatalf("second delete: n=%d err=%v", n, err)
		}
		count, err := repo.Count(ctx, events.Name)
		if err != nil || count != 2 {
			t.Fatalf("count: %d err=%v", count, err)
		}
	})

	t.Run("drop_removes_object", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		seed(t, repo, 1)
		ctx := context.Background()
		if err := repo.DropObject(ctx, events.Name); err != nil {
			t.Fatalf("drop: %v", err)
		}
		names, err := repo.ObjectNames(ctx)
		if err != nil {
			t.Fatalf("names: %v", err)
		}
		for _, n := range names {
			if n == events.Name {
				t.Fatalf("object still listed after drop")
			}
		}
	})
}

func RunPingerContract(t *testing.T, makePinger PingerFactory) {
	t.Helper()
	t.Run("ping_ok", func(t *testing.T) {
		p, cleanup := makePinger(t)
		t.Cleanup(cleanup)
		if err := p.Ping(context.Background()); err != nil {
			t.Fatalf("expected ping ok, got %v", err)
		}
	})
	t.Run("ping_cancelled", func(t *testing.T) {
		p, cleanup := makePinger(t)
		t.Cleanup(cleanup)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if err := p.Ping(ctx); err == nil {
			t.Fatalf("expected error from a cancelled context")
		}
	})
}
