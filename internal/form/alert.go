package form

import (
	"context"
	"fmt"
	"strings"

	"github.com/maxviazov/tracker-dashboard/internal/model"
)

// AlertRuleForm creates an alert rule for one tracker.
type AlertRuleForm struct {
	Object  string
	Columns []string // selectable columns, first is the default
	Name    string
	Column  string
	Value   string
}

func NewAlertRuleForm(object string, columns []string) *AlertRuleForm {
	f := &AlertRuleForm{Object: object, Columns: columns}
	f.Reset()
	return f
}

// Reset clears the inputs and selects the first column again.
func (f *AlertRuleForm) Reset() {
	f.Name = ""
	f.Value = ""
	f.Column = ""
	if len(f.Columns) > 0 {
		f.Column = f.Columns[0]
	}
}

// Gather builds the rule; every field is required.
func (f *AlertRuleForm) Gather() (model.AlertRule, error) {
	rule := model.AlertRule{
		Name:        strings.TrimSpace(f.Name),
		ObjectName:  f.Object,
		ColumnName:  f.Column,
		ColumnValue: f.Value,
	}
	for _, kv := range [...]struct{ key, val string }{
		{"name", rule.Name},
		{"object_name", rule.ObjectName},
		{"column_name", rule.ColumnName},
		{"column_value", rule.ColumnValue},
	} {
		if strings.TrimSpace(kv.val) == "" {
			return model.AlertRule{}, invalid("Missing argument - " + kv.key)
		}
	}
	return rule, nil
}

// Submit stores the rule in the alert rules object. Success closes and resets the form.
func (f *AlertRuleForm) Submit(ctx context.Context, ins Inserter) (Outcome, error) {
	rule, err := f.Gather()
	if err != nil {
		if out, ok := outcomeOf(err); ok {
			return out, nil
		}
		return Outcome{}, err
	}
	resp, err := ins.Insert(ctx, model.AlertRulesObject, alertRuleRow(rule))
	if err != nil {
		return Outcome{}, fmt.Errorf("insert alert rule %q: %w", rule.Name, err)
	}
	if !resp.OK() {
		return popupFor(resp), nil
	}
	f.Reset()
	return Outcome{Close: true}, nil
}

func alertRuleRow(r model.AlertRule) model.Row {
	return model.Row{
		"name":         r.Name,
		"object_name":  r.ObjectName,
		"column_name":  r.ColumnName,
		"column_value": r.ColumnValue,
	}
}
