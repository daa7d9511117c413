package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/maxviazov/tracker-dashboard/internal/model"
	"github.com/maxviazov/tracker-dashboard/internal/repository"
	"github.com/rs/zerolog"
)

const (
	msgInvalidTrackerName = "Invalid tracker name! Cannot begin with '_'."
	msgDuplicateTracker   = "Attempted to duplicate a tracker!"
	msgUnknownTracker     = "Tracker does not exist!"
	msgSystemObject       = "System objects cannot be dropped!"
	msgRowNotFound        = "Row not found!"
)

// graphDayLayout is the label format of graph buckets.
const graphDayLayout = "2006-01-02"

// systemSchemas are created by Bootstrap, in this order.
var systemSchemas = []model.TrackerSchema{
	{Name: model.DynamicAPIsObject, Properties: []model.Property{
		{Name: "object_name", Type: model.TypeUnicode, Unique: true},
		{Name: "api_url", Type: model.TypeUnicode, Unique: true},
	}},
	{Name: model.UserManagementObject, Properties: []model.Property{
		{Name: "name", Type: model.TypeUnicode, Nullable: true},
		{Name: "email", Type: model.TypeUnicode, Unique: true},
		{Name: "password", Type: model.TypeUnicode},
		{Name: "hidden_from_ui", Type: model.TypeBoolean},
		{Name: "is_admin", Type: model.TypeBoolean},
	}},
	{Name: model.AlertRulesObject, Properties: []model.Property{
		{Name: "name", Type: model.TypeUnicode},
		{Name: "object_name", Type: model.TypeUnicode},
		{Name: "column_name", Type: model.TypeUnicode},
		{Name: "column_value", Type: model.TypeUnicode},
	}},
	{Name: model.AlertFindsObject, Properties: []model.Property{
		{Name: "rule_name", Type: model.TypeUnicode},
		{Name: "object_name", Type: model.TypeUnicode},
		{Name: "column_name", Type: model.TypeUnicode},
		{Name: "found_value", Type: model.TypeUnicode, Nullable: true},
		{Name: "found_id", Type: model.TypeUnicode},
	}},
}

// trackerService holds tracker use-case logic: validation + orchestration, no transport details.
type trackerService struct {
	repo repository.ObjectRepository
	log  zerolog.Logger
}

func NewTrackerService(repo repository.ObjectRepository, logger zerolog.Logger) TrackerService {
	l := logger.With().Str("module", "service").Str("component", "tracker").Logger()
	return &trackerService{repo: repo, log: l}
}

func (s *trackerService) Bootstrap(ctx context.Context) error {
	for _, schema := range systemSchemas {
		err := s.repo.CreateObject(ctx, schema)
		if err != nil && !errors.Is(err, repository.ErrAlreadyExists) {
			return fmt.Errorf("create system object %s: %w", schema.Name, err)
		}
	}
	return nil
}

func (s *trackerService) CreateTracker(ctx context.Context, schema model.TrackerSchema) error {
	start := time.Now()
	schema.Name = strings.TrimSpace(schema.Name)
	for i := range schema.Properties {
		schema.Properties[i].Name = strings.TrimSpace(schema.Properties[i].Name)
	}
	if ferrs := validateSchema(schema); len(ferrs) > 0 {
		s.log.Debug().Str("name", schema.Name).Interface("field_errors", ferrs).Msg("tracker validation failed")
		return newInvalidInput(ferrs)
	}

	if err := s.repo.CreateObject(ctx, schema); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return describe(err, msgDuplicateTracker)
		}
		s.log.Error().Err(err).Str("name", schema.Name).Msg("create tracker failed")
		return err
	}
	api := model.Row{"object_name": schema.Name, "api_url": model.Slug(schema.Name)}
	if _, err := s.repo.Insert(ctx, model.DynamicAPIsObject, api); err != nil {
		s.log.Warn().Err(err).Str("name", schema.Name).Msg("register tracker api failed")
	}
	s.log.Info().Dur("took", time.Since(start)).Str("name", schema.Name).Int("properties", len(schema.Properties)).Msg("tracker created")
	return nil
}

func (s *trackerService) DropTracker(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return newInvalidInput([]FieldError{{Field: "name", Message: "Missing tracker name!"}})
	}
	if model.IsSystemObject(name) {
		return newInvalidInput([]FieldError{{Field: "name", Message: msgSystemObject}})
	}
	if err := s.repo.DropObject(ctx, name); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return describe(err, msgUnknownTracker)
		}
		return err
	}

	// registry and rule cleanup is best effort; the tracker is already gone
	if _, err := s.repo.Delete(ctx, model.DynamicAPIsObject, model.Row{"api_url": model.Slug(name)}); err != nil {
		s.log.Warn().Err(err).Str("name", name).Msg("unregister tracker api failed")
	}
	rules, err := s.rulesFor(ctx, name)
	if err == nil {
		for _, r := range rules {
			if _, err := s.repo.Delete(ctx, model.AlertRulesObject, model.Row{model.IDColumn: r[model.IDColumn]}); err != nil {
				s.log.Warn().Err(err).Msg("remove alert rule failed")
			}
		}
	}
	s.log.Info().Str("name", name).Int("rules_removed", len(rules)).Msg("tracker dropped")
	return nil
}

// Insert stores row and records a finding for every alert rule it matches.
func (s *trackerService) Insert(ctx context.Context, object string, row model.Row) error {
	stored, err := s.repo.Insert(ctx, object, stripSystemColumns(row))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return describe(err, msgUnknownTracker)
		}
		s.log.Debug().Err(err).Str("object", object).Msg("insert rejected")
		return err
	}
	if model.IsSystemObject(object) {
		return nil
	}

	rules, err := s.rulesFor(ctx, object)
	if err != nil {
		s.log.Warn().Err(err).Str("object", object).Msg("load alert rules failed")
		return nil
	}
	for _, r := range rules {
		column, _ := r["column_name"].(string)
		want, _ := r["column_value"].(string)
		got, ok := stored[column]
		if !ok || str(got) != want {
			continue
		}
		finding := model.Row{
			"rule_name":   r["name"],
			"object_name": r["object_name"],
			"column_name": column,
			"found_value": str(got),
			"found_id":    str(stored[model.IDColumn]),
		}
		if _, err := s.repo.Insert(ctx, model.AlertFindsObject, finding); err != nil {
			s.log.Error().Err(err).Interface("rule", r["name"]).Msg("record alert finding failed")
			continue
		}
		s.log.Info().Interface("rule", r["name"]).Str("object", object).Msg("alert rule matched")
	}
	return nil
}

func (s *trackerService) Update(ctx context.Context, object string, where, values model.Row, page repository.Page) (int, error) {
	values = stripSystemColumns(values)
	if len(values) == 0 {
		return 0, newInvalidInput([]FieldError{{Field: "update", Message: "Nothing to update!"}})
	}
	n, err := s.repo.Update(ctx, object, where, values, normalizePage(page))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, describe(err, msgUnknownTracker)
		}
		return 0, err
	}
	s.log.Debug().Str("object", object).Int("rows", n).Msg("rows updated")
	return n, nil
}

func (s *trackerService) Delete(ctx context.Context, object string, id any) error {
	if id == nil {
		return newInvalidInput([]FieldError{{Field: model.IDColumn, Message: "Missing row identifier!"}})
	}
	n, err := s.repo.Delete(ctx, object, model.Row{model.IDColumn: id})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return describe(err, msgUnknownTracker)
		}
		return err
	}
	if n == 0 {
		return describe(repository.ErrNotFound, msgRowNotFound)
	}
	return nil
}

func (s *trackerService) Select(ctx context.Context, object string, q repository.Query) ([]model.Row, error) {
	cols := q.Columns[:0:0]
	for _, c := range q.Columns {
		if c = strings.TrimSpace(c); c != "" {
			cols = append(cols, c)
		}
	}
	q.Columns = cols
	q.Page = normalizePage(q.Page)

	res, err := s.repo.Select(ctx, object, q)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, describe(err, msgUnknownTracker)
		}
		s.log.Error().Err(err).Str("object", object).Int("limit", q.Page.Limit).Int("offset", q.Page.Offset).Msg("select failed")
		return nil, err
	}
	return res.Items, nil
}

// Trackers lists user-defined objects with their row counts.
func (s *trackerService) Trackers(ctx context.Context) ([]model.TrackerInfo, error) {
	names, err := s.repo.ObjectNames(ctx)
	if err != nil {
		return nil, err
	}
	out := []model.TrackerInfo{}
	for _, n := range names {
		if model.IsSystemObject(n) {
			continue
		}
		count, err := s.repo.Count(ctx, n)
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", n, err)
		}
		out = append(out, model.TrackerInfo{Name: n, Count: count, API: model.Slug(n)})
	}
	return out, nil
}

// MonitoredNames lists every object, system objects included.
func (s *trackerService) MonitoredNames(ctx context.Context) ([]string, error) {
	return s.repo.ObjectNames(ctx)
}

func (s *trackerService) Columns(ctx context.Context, object string) ([]model.Column, error) {
	cols, err := s.repo.Columns(ctx, object)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, describe(err, msgUnknownTracker)
	}
	return cols, err
}

// Graph counts rows per creation day, days ascending.
func (s *trackerService) Graph(ctx context.Context, object string) (model.GraphData, error) {
	res, err := s.repo.Select(ctx, object, repository.Query{Columns: []string{model.CreatedAtColumn}})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.GraphData{}, describe(err, msgUnknownTracker)
		}
		return model.GraphData{}, err
	}
	counts := map[string]int{}
	for _, r := range res.Items {
		ts, ok := r[model.CreatedAtColumn].(time.Time)
		if !ok {
			continue
		}
		counts[ts.Format(graphDayLayout)]++
	}
	out := model.GraphData{Labels: make([]string, 0, len(counts)), Values: make([]int, 0, len(counts))}
	for day := range counts {
		out.Labels = append(out.Labels, day)
	}
	sort.Strings(out.Labels)
	for _, day := range out.Labels {
		out.Values = append(out.Values, counts[day])
	}
	return out, nil
}

// rulesFor returns the alert rules whose object matches name by slug.
func (s *trackerService) rulesFor(ctx context.Context, name string) ([]model.Row, error) {
	res, err := s.repo.Select(ctx, model.AlertRulesObject, repository.Query{})
	if err != nil {
		return nil, err
	}
	slug := model.Slug(name)
	var out []model.Row
	for _, r := range res.Items {
		if obj, _ := r["object_name"].(string); model.Slug(obj) == slug {
			out = append(out, r)
		}
	}
	return out, nil
}

// str prints a stored value the way rule values are written by users.
func str(v any) string {
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
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case time.Time:
		return x.Format(time.RFC3339)
	default:
		return fmt.Sprint(x)
	}
}

func normalizePage(p repository.Page) repository.Page {
	if p.Limit < 0 {
		p.Limit = 0
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}
