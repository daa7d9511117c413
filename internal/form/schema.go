package form

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/maxviazov/tracker-dashboard/internal/model"
)

// PropertyRow is one editable property line of the schema builder.
type PropertyRow struct {
	ID       int
	Name     string
	Type     model.PropertyType
	Nullable bool
	Unique   bool
}

// SchemaForm builds a tracker definition from a name and property rows.
// Row ids start at 1, only grow, and are never reused after removal.
type SchemaForm struct {
	Name     string
	rows     map[int]*PropertyRow
	nextID   int
	validate *validator.Validate
}

func NewSchemaForm() *SchemaForm {
	return &SchemaForm{
		rows:     make(map[int]*PropertyRow),
		nextID:   1,
		validate: validator.New(),
	}
}

// AddRow appends an empty property row of the first type and returns its id.
func (f *SchemaForm) AddRow() int {
	id := f.nextID
	f.rows[id] = &PropertyRow{ID: id, Type: model.PropertyTypes[0]}
	f.nextID++
	return id
}

// RemoveRow deletes row id; unknown ids are ignored.
func (f *SchemaForm) RemoveRow(id int) bool {
	if _, ok := f.rows[id]; !ok {
		return false
	}
	delete(f.rows, id)
	return true
}

// Row returns the editable row id.
func (f *SchemaForm) Row(id int) (*PropertyRow, bool) {
	r, ok := f.rows[id]
	return r, ok
}

// Rows returns the current rows in id order.
func (f *SchemaForm) Rows() []*PropertyRow {
	ids := make([]int, 0, len(f.rows))
	for id := range f.rows {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]*PropertyRow, len(ids))
	for i, id := range ids {
		out[i] = f.rows[id]
	}
	return out
}

// Gather assembles the schema or reports the first problem found:
// name, then property count, then property names, then field values.
func (f *SchemaForm) Gather() (model.TrackerSchema, error) {
	name := strings.TrimSpace(f.Name)
	if name == "" {
		return model.TrackerSchema{}, invalid("Tracker name is empty!")
	}
	rows := f.Rows()
	if len(rows) == 0 {
		return model.TrackerSchema{}, invalid("The tracker must have at least one property!")
	}

	schema := model.TrackerSchema{Name: name, Properties: make([]model.Property, 0, len(rows))}
	for i, r := range rows {
		pname := strings.TrimSpace(r.Name)
		if pname == "" {
			return model.TrackerSchema{}, invalid(fmt.Sprintf("Property #%d has no name!", i+1))
		}
		schema.Properties = append(schema.Properties, model.Property{
			Name:     pname,
			Type:     r.Type,
			Nullable: r.Nullable,
			Unique:   r.Unique,
		})
	}

	if err := f.validate.Struct(schema); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			field := strings.TrimPrefix(verrs[0].Namespace(), "TrackerSchema.")
			return model.TrackerSchema{}, invalid(fmt.Sprintf("Invalid value for %s!", field))
		}
		return model.TrackerSchema{}, invalid(err.Error())
	}
	return schema, nil
}

// Submit gathers and sends the schema. On success the frontend goes to the
// trackers list after CreateRedirectDelay.
func (f *SchemaForm) Submit(ctx context.Context, c Creator) (Outcome, error) {
	schema, err := f.Gather()
	if err != nil {
		if out, ok := outcomeOf(err); ok {
			return out, nil
		}
		return Outcome{}, err
	}
	resp, err := c.Create(ctx, schema)
	if err != nil {
		return Outcome{}, fmt.Errorf("create tracker %q: %w", schema.Name, err)
	}
	if !resp.OK() {
		return popupFor(resp), nil
	}
	return Outcome{Redirect: model.TrackersPath, Delay: CreateRedirectDelay}, nil
}
