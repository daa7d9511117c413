package form

import (
	"context"
	"fmt"
	"strings"

	"github.com/maxviazov/tracker-dashboard/internal/model"
)

// ExampleRow builds a sample row that fits the common column types.
// System columns and types without a sample value are left out.
func ExampleRow(columns []model.Column) model.Row {
	row := model.Row{}
	for _, c := range columns {
		if model.IsSystemObject(c.Name) {
			continue
		}
		switch strings.ToUpper(c.Type) {
		case "BOOLEAN":
			row[c.Name] = true
		case "VARCHAR", "UNICODE":
			row[c.Name] = "Example String"
		case "INTEGER":
			row[c.Name] = 12345
		}
	}
	return row
}

// InsertExample inserts ExampleRow into object. Success reloads the view
// after ExampleReloadDelay.
func InsertExample(ctx context.Context, ins Inserter, object string, columns []model.Column) (Outcome, error) {
	resp, err := ins.Insert(ctx, object, ExampleRow(columns))
	if err != nil {
		return Outcome{}, fmt.Errorf("insert example into %q: %w", object, err)
	}
	if !resp.OK() {
		return popupFor(resp), nil
	}
	return Outcome{Reload: true, Delay: ExampleReloadDelay}, nil
}
