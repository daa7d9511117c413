package repository

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/maxviazov/tracker-dashboard/internal/model"
)

// coerce converts a decoded JSON value to the storage form of column p:
// bool, int64, float64, string or time.Time.
func coerce(p model.Property, v any) (any, error) {
	if v == nil {
		if !p.Nullable {
			return nil, fmt.Errorf("%w: column %q may not be null", ErrInvalidData, p.Name)
		}
		return nil, nil
	}
	bad := func() error {
		return fmt.Errorf("%w: column %q expects %s, got %T", ErrInvalidData, p.Name, p.Type, v)
	}

	switch p.Type {
	case model.TypeBoolean:
		b, ok := v.(bool)
		if !ok {
			return nil, bad()
		}
		return b, nil

	case model.TypeInteger:
		switch x := v.(type) {
		case json.Number:
			n, err := x.Int64()
			if err != nil {
				return nil, bad()
			}
			return n, nil
		case int:
			return int64(x), nil
		case int64:
			return x, nil
		case float64:
			if x != math.Trunc(x) {
				return nil, bad()
			}
			return int64(x), nil
		case string:
			n, err := strconv.ParseInt(x, 10, 64)
			if err != nil {
				return nil, bad()
			}
			return n, nil
		}
		return nil, bad()

	case model.TypeFloat:
		switch x := v.(type) {
		case json.Number:
			f, err := x.Float64()
			if err != nil {
				return nil, bad()
			}
			return f, nil
		case float64:
			return x, nil
		case int:
			return float64(x), nil
		case int64:
			return float64(x), nil
		}
		return nil, bad()

	case model.TypeString, model.TypeUnicode:
		s, ok := v.(string)
		if !ok {
			return nil, bad()
		}
		return s, nil

	case model.TypeDateTime:
		switch x := v.(type) {
		case time.Time:
			return x.UTC(), nil
		case string:
			ts, err := time.Parse(time.RFC3339Nano, x)
			if err != nil {
				return nil, bad()
			}
			return ts.UTC(), nil
		}
		return nil, bad()
	}
	return nil, bad()
}
