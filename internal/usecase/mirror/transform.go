package mirror

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Transform converts a raw document value into a column value. Absent
// sources arrive as nil and must map to the column's zero value.
type Transform func(v any) (any, error)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func AsString(v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return strings.TrimSpace(t), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case json.Number:
		return t.String(), nil
	case fmt.Stringer:
		return t.String(), nil
	}
	return fmt.Sprint(v), nil
}

func toFloat(v any) (float64, error) {
	switch t := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return t, nil
	case float32:
		return float64(t), nil
	case int:
		return float64(t), nil
	case int32:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case json.Number:
		return t.Float64()
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, nil
		}
		return strconv.ParseFloat(s, 64)
	case bool:
		if t {
			return 1, nil
		}
		return 0, nil
	}
	return 0, fmt.Errorf("cannot convert %T to number", v)
}

func AsFloat(v any) (any, error) { return toFloat(v) }

func AsInt(v any) (any, error) {
	f, err := toFloat(v)
	if err != nil {
		return nil, err
	}
	return int(f), nil
}

// DefaultInt maps nil and zero to def.
func DefaultInt(def int) Transform {
	return func(v any) (any, error) {
		n, err := AsInt(v)
		if err != nil {
			return nil, err
		}
		if n.(int) == 0 {
			return def, nil
		}
		return n, nil
	}
}

func DefaultString(def string) Transform {
	return func(v any) (any, error) {
		s, _ := AsString(v)
		if s.(string) == "" {
			return def, nil
		}
		return s, nil
	}
}

// Const ignores the document and always yields v.
func Const(v any) Transform { return func(any) (any, error) { return v, nil } }

// AsTime returns a *time.Time in UTC, or a nil pointer when absent.
func AsTime(v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return (*time.Time)(nil), nil
	case time.Time:
		u := t.UTC()
		return &u, nil
	case *time.Time:
		if t == nil {
			return (*time.Time)(nil), nil
		}
		u := t.UTC()
		return &u, nil
	case float64:
		// epoch milliseconds
		u := time.UnixMilli(int64(t)).UTC()
		return &u, nil
	case int64:
		u := time.UnixMilli(t).UTC()
		return &u, nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return (*time.Time)(nil), nil
		}
		for _, layout := range timeLayouts {
			if p, err := time.Parse(layout, s); err == nil {
				u := p.UTC()
				return &u, nil
			}
		}
		return nil, fmt.Errorf("unrecognised time %q", s)
	}
	return nil, fmt.Errorf("cannot convert %T to time", v)
}
