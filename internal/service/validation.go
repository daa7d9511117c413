package service

import (
	"fmt"
	"strings"

	"github.com/maxviazov/tracker-dashboard/internal/model"
)

// maxTrackerName bounds tracker names to what fits a table identifier.
const maxTrackerName = 63

func validateSchema(schema model.TrackerSchema) []FieldError {
	var ferrs []FieldError
	name := strings.TrimSpace(schema.Name)
	switch {
	case name == "" || model.IsSystemObject(name):
		ferrs = append(ferrs, FieldError{Field: "name", Message: msgInvalidTrackerName})
	case len([]rune(name)) > maxTrackerName:
		ferrs = append(ferrs, FieldError{Field: "name", Message: "Tracker name is too long!"})
	}
	if len(schema.Properties) == 0 {
		ferrs = append(ferrs, FieldError{Field: "properties", Message: "The tracker must have at least one property!"})
	}
	for i, p := range schema.Properties {
		pname := strings.TrimSpace(p.Name)
		if pname == "" || model.IsSystemObject(pname) {
			ferrs = append(ferrs, FieldError{Field: propertyField(i, "name"), Message: "Invalid property name!"})
		}
		if !p.Type.Valid() {
			ferrs = append(ferrs, FieldError{Field: propertyField(i, "type"), Message: "Unknown property type!"})
		}
	}
	return ferrs
}

func propertyField(i int, field string) string {
	return fmt.Sprintf("properties[%d].%s", i, field)
}

// stripSystemColumns drops client-supplied values for backend-managed columns.
func stripSystemColumns(row model.Row) model.Row {
	out := make(model.Row, len(row))
	for k, v := range row {
		if !model.IsSystemObject(k) {
			out[k] = v
		}
	}
	return out
}
