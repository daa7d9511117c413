// Package render turns backend rows into display cells and keeps the
// fixed-size slot table a paged view draws from.
package render

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/maxviazov/tracker-dashboard/internal/model"
)

// DeleteGlyph is the text of the delete affordance in the identifier column.
const DeleteGlyph = "×"

// Kind tells the frontend how to draw and bind a cell.
type Kind int

const (
	KindText Kind = iota
	KindLink
	KindDelete
)

func (k Kind) String() string {
	switch k {
	case KindLink:
		return "link"
	case KindDelete:
		return "delete"
	default:
		return "text"
	}
}

// Cell is one rendered value. Href is set for links; Key carries the row
// identifier for the delete action exactly as the backend sent it.
type Cell struct {
	Column string
	Kind   Kind
	Text   string
	Href   string
	Key    any
}

// Renderer maps rows to cells in Columns order.
// IDColumn and LinkColumn are optional; empty disables that affordance.
type Renderer struct {
	Columns    []string
	IDColumn   string
	LinkColumn string
	LinkPrefix string
}

// Row renders every configured column of r. Missing columns render empty.
func (rd Renderer) Row(r model.Row) []Cell {
	cells := make([]Cell, len(rd.Columns))
	for i, col := range rd.Columns {
		cells[i] = rd.Cell(col, r[col])
	}
	return cells
}

// Cell renders a single value of column col.
func (rd Renderer) Cell(col string, v any) Cell {
	switch {
	case rd.IDColumn != "" && col == rd.IDColumn:
		return Cell{Column: col, Kind: KindDelete, Text: DeleteGlyph, Key: v}
	case rd.LinkColumn != "" && col == rd.LinkColumn:
		text := FormatValue(v)
		return Cell{Column: col, Kind: KindLink, Text: text, Href: rd.LinkPrefix + model.Slug(text)}
	default:
		return Cell{Column: col, Kind: KindText, Text: FormatValue(v)}
	}
}

// FormatValue prints a scalar the way the dashboard shows it:
// booleans capitalized, numbers as sent, nil as empty.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case bool:
		if x {
			return "True"
		}
		return "False"
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
