package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/maxviazov/tracker-dashboard/internal/model"
	"github.com/rs/zerolog"
)

// MemoryStore is an in-process ObjectRepository. It keeps rows in _id order
// and enforces the declared column types, nullability and uniqueness.
type MemoryStore struct {
	mu     sync.RWMutex
	tables map[string]*table
	order  []string
	now    func() time.Time
	log    zerolog.Logger
}

type table struct {
	name   string
	props  []model.Property
	rows   []model.Row
	nextID int64
}

// MemoryOption customizes a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithClock sets the time source used for _timestamp_created.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) { s.now = now }
}

// NewMemoryStore returns an empty store.
func NewMemoryStore(logger zerolog.Logger, opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		tables: make(map[string]*table),
		now:    time.Now,
		log:    logger.With().Str("module", "repository").Str("component", "memory").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ping always succeeds; the store lives in the process.
func (s *MemoryStore) Ping(ctx context.Context) error { return ctx.Err() }

func (s *MemoryStore) CreateObject(_ context.Context, schema model.TrackerSchema) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lookup(schema.Name); ok {
		return ErrAlreadyExists
	}
	seen := map[string]bool{model.IDColumn: true, model.CreatedAtColumn: true}
	for _, p := range schema.Properties {
		if seen[p.Name] {
			return fmt.Errorf("%w: duplicate column %q", ErrInvalidData, p.Name)
		}
		if !p.Type.Valid() {
			return fmt.Errorf("%w: column %q has unknown type %q", ErrInvalidData, p.Name, p.Type)
		}
		seen[p.Name] = true
	}

	props := make([]model.Property, len(schema.Properties))
	copy(props, schema.Properties)
	s.tables[schema.Name] = &table{name: schema.Name, props: props, nextID: 1}
	s.order = append(s.order, schema.Name)
	s.log.Debug().Str("object", schema.Name).Int("columns", len(props)).Msg("object created")
	return nil
}

func (s *MemoryStore) DropObject(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.lookup(name)
	if !ok {
		return ErrNotFound
	}
	delete(s.tables, t.name)
	for i, n := range s.order {
		if n == t.name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.log.Debug().Str("object", t.name).Msg("object dropped")
	return nil
}

func (s *MemoryStore) ObjectNames(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out, nil
}

func (s *MemoryStore) Columns(_ context.Context, name string) ([]model.Column, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.lookup(name)
	if !ok {
		return nil, ErrNotFound
	}
	props := t.allProps()
	out := make([]model.Column, len(props))
	for i, p := range props {
		out[i] = model.Column{Name: p.Name, Type: p.Type.SQLType()}
	}
	return out, nil
}

func (s *MemoryStore) Count(_ context.Context, name string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.lookup(name)
	if !ok {
		return 0, ErrNotFound
	}
	return len(t.rows), nil
}

// Insert accepts a time.Time _timestamp_created so callers can backdate
// rows; any other system column in row is ignored.
func (s *MemoryStore) Insert(_ context.Context, name string, row model.Row) (model.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.lookup(name)
	if !ok {
		return nil, ErrNotFound
	}
	stored := model.Row{}
	for k := range row {
		if model.IsSystemObject(k) {
			continue
		}
		if _, ok := t.prop(k); !ok {
			return nil, fmt.Errorf("%w: unknown column %q", ErrInvalidData, k)
		}
	}
	for _, p := range t.props {
		v, err := coerce(p, row[p.Name])
		if err != nil {
			return nil, err
		}
		stored[p.Name] = v
	}
	if err := t.checkUnique(stored, -1); err != nil {
		return nil, err
	}

	created := s.now().UTC()
	if ts, ok := row[model.CreatedAtColumn].(time.Time); ok {
		created = ts.UTC()
	}
	stored[model.IDColumn] = t.nextID
	stored[model.CreatedAtColumn] = created
	t.nextID++
	t.rows = append(t.rows, stored)
	return stored.Copy(), nil
}

func (s *MemoryStore) Select(_ context.Context, name string, q Query) (PageResult[model.Row], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.lookup(name)
	if !ok {
		return PageResult[model.Row]{}, ErrNotFound
	}
	cols := q.Columns
	if len(cols) == 0 {
		for _, p := range t.allProps() {
			cols = append(cols, p.Name)
		}
	}
	for _, c := range cols {
		if _, ok := t.prop(c); !ok {
			return PageResult[model.Row]{}, fmt.Errorf("%w: unknown column %q", ErrInvalidData, c)
		}
	}
	matched, err := t.match(q.Where)
	if err != nil {
		return PageResult[model.Row]{}, err
	}

	res := PageResult[model.Row]{Total: len(matched), Items: []model.Row{}}
	for _, i := range window(len(matched), q.Page) {
		src := t.rows[matched[i]]
		out := make(model.Row, len(cols))
		for _, c := range cols {
			out[c] = src[c]
		}
		res.Items = append(res.Items, out)
	}
	return res, nil
}

func (s *MemoryStore) Update(_ context.Context, name string, where, values model.Row, p Page) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.lookup(name)
	if !ok {
		return 0, ErrNotFound
	}
	set := model.Row{}
	for k, v := range values {
		prop, ok := t.prop(k)
		if !ok || model.IsSystemObject(k) {
			return 0, fmt.Errorf("%w: column %q cannot be updated", ErrInvalidData, k)
		}
		cv, err := coerce(prop, v)
		if err != nil {
			return 0, err
		}
		set[k] = cv
	}
	matched, err := t.match(where)
	if err != nil {
		return 0, err
	}

	targets := window(len(matched), p)
	next := make([]model.Row, len(t.rows))
	copy(next, t.rows)
	for _, i := range targets {
		idx := matched[i]
		row := t.rows[idx].Copy()
		for k, v := range set {
			row[k] = v
		}
		next[idx] = row
	}
	for _, i := range targets {
		if err := t.uniqueIn(next, next[matched[i]], matched[i]); err != nil {
			return 0, err
		}
	}
	t.rows = next
	return len(targets), nil
}

func (s *MemoryStore) Delete(_ context.Context, name string, where model.Row) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.lookup(name)
	if !ok {
		return 0, ErrNotFound
	}
	matched, err := t.match(where)
	if err != nil {
		return 0, err
	}
	if len(matched) == 0 {
		return 0, nil
	}
	drop := make(map[int]bool, len(matched))
	for _, idx := range matched {
		drop[idx] = true
	}
	kept := t.rows[:0]
	for i, r := range t.rows {
		if !drop[i] {
			kept = append(kept, r)
		}
	}
	for i := len(kept); i < len(t.rows); i++ {
		t.rows[i] = nil
	}
	t.rows = kept
	return len(matched), nil
}

// lookup resolves name exactly, then by slug. Callers hold the lock.
func (s *MemoryStore) lookup(name string) (*table, bool) {
	if t, ok := s.tables[name]; ok {
		return t, true
	}
	slug := model.Slug(name)
	for _, n := range s.order {
		if model.Slug(n) == slug {
			return s.tables[n], true
		}
	}
	return nil, false
}

// allProps lists the columns in display order: _id, declared, _timestamp_created.
func (t *table) allProps() []model.Property {
	out := make([]model.Property, 0, len(t.props)+2)
	out = append(out, model.Property{Name: model.IDColumn, Type: model.TypeInteger, Unique: true})
	out = append(out, t.props...)
	out = append(out, model.Property{Name: model.CreatedAtColumn, Type: model.TypeDateTime})
	return out
}

func (t *table) prop(name string) (model.Property, bool) {
	for _, p := range t.allProps() {
		if p.Name == name {
			return p, true
		}
	}
	return model.Property{}, false
}

// match returns the indexes of rows equal to every where value.
func (t *table) match(where model.Row) ([]int, error) {
	conds := make(map[string]any, len(where))
	for k, v := range where {
		p, ok := t.prop(k)
		if !ok {
			return nil, fmt.Errorf("%w: unknown column %q", ErrInvalidData, k)
		}
		p.Nullable = true
		cv, err := coerce(p, v)
		if err != nil {
			return nil, err
		}
		conds[k] = cv
	}
	var out []int
	for i, r := range t.rows {
		ok := true
		for k, v := range conds {
			if !equal(r[k], v) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, i)
		}
	}
	return out, nil
}

// checkUnique verifies row against every unique column, skipping index self.
func (t *table) checkUnique(row model.Row, self int) error {
	return t.uniqueIn(t.rows, row, self)
}

func (t *table) uniqueIn(rows []model.Row, row model.Row, self int) error {
	for _, p := range t.props {
		if !p.Unique || row[p.Name] == nil {
			continue
		}
		for i, other := range rows {
			if i != self && equal(other[p.Name], row[p.Name]) {
				return fmt.Errorf("%w: %s", ErrAlreadyExists, p.Name)
			}
		}
	}
	return nil
}

// window returns the positions of [0,n) that fall inside p.
func window(n int, p Page) []int {
	start := p.Offset
	if start < 0 {
		start = 0
	}
	end := n
	if p.Limit > 0 && start+p.Limit < end {
		end = start + p.Limit
	}
	if start >= end {
		return nil
	}
	out := make([]int, 0, end-start)
	for i := start; i < end; i++ {
		out = append(out, i)
	}
	return out
}

func equal(a, b any) bool {
	ta, aok := a.(time.Time)
	tb, bok := b.(time.Time)
	if aok || bok {
		return aok && bok && ta.Equal(tb)
	}
	return a == b
}
