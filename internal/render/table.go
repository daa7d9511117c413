package render

import "github.com/maxviazov/tracker-dashboard/internal/model"

// Table holds exactly limit row slots. A nil slot is blank.
type Table struct {
	renderer Renderer
	slots    [][]Cell
	keys     []any
}

// NewTable builds a table of limit blank slots.
func NewTable(r Renderer, limit int) *Table {
	if limit < 1 {
		limit = 1
	}
	return &Table{
		renderer: r,
		slots:    make([][]Cell, limit),
		keys:     make([]any, limit),
	}
}

// Fill renders rows into slots 0..n-1 and blanks every slot after them.
// Rows beyond the slot count are ignored.
func (t *Table) Fill(rows []model.Row) {
	for i := range t.slots {
		if i < len(rows) {
			t.slots[i] = t.renderer.Row(rows[i])
			t.keys[i] = rows[i][t.renderer.IDColumn]
			continue
		}
		t.slots[i] = nil
		t.keys[i] = nil
	}
}

// ClearSlot blanks slot i. Out of range indexes are ignored.
func (t *Table) ClearSlot(i int) {
	if i < 0 || i >= len(t.slots) {
		return
	}
	t.slots[i] = nil
	t.keys[i] = nil
}

// Slot returns the cells of slot i, or nil when the slot is blank.
func (t *Table) Slot(i int) []Cell {
	if i < 0 || i >= len(t.slots) {
		return nil
	}
	return t.slots[i]
}

// Key returns the identifier bound to slot i.
func (t *Table) Key(i int) (any, bool) {
	if t.Slot(i) == nil {
		return nil, false
	}
	return t.keys[i], true
}

// Len is the number of slots.
func (t *Table) Len() int { return len(t.slots) }

// Filled counts the non-blank slots.
func (t *Table) Filled() int {
	n := 0
	for _, s := range t.slots {
		if s != nil {
			n++
		}
	}
	return n
}

// Columns returns the header of the table.
func (t *Table) Columns() []string { return t.renderer.Columns }
