package table

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ColumnType is the value type of a column. It decides which clauses a
// column can accept and how filter values are coerced.
type ColumnType uint8

const (
	TypeText ColumnType = iota
	TypeNumeric
	TypeBoolean
	TypeDate
)

func (t ColumnType) String() string {
	switch t {
	case TypeNumeric:
		return "numeric"
	case TypeBoolean:
		return "boolean"
	case TypeDate:
		return "date"
	default:
		return "text"
	}
}

// ParseColumnType parses "text", "numeric", "boolean" or "date".
func ParseColumnType(s string) (ColumnType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "string":
		return TypeText, nil
	case "numeric", "number", "integer", "int", "float":
		return TypeNumeric, nil
	case "boolean", "bool":
		return TypeBoolean, nil
	case "date", "datetime", "timestamp":
		return TypeDate, nil
	default:
		return TypeText, fmt.Errorf("unknown column type %q", s)
	}
}

// DefaultClauses returns the clauses a filterable column of this type
// accepts when the definition does not list them explicitly.
func (t ColumnType) DefaultClauses() []Clause {
	switch t {
	case TypeNumeric:
		return []Clause{Equals, NotEquals, GreaterThan, LessThan, Between, In}
	case TypeBoolean:
		return []Clause{Equals, NotEquals}
	case TypeDate:
		return []Clause{Equals, GreaterThan, LessThan, Between}
	default:
		return []Clause{Equals, NotEquals, Contains, In}
	}
}

// Supports reports whether values of this type can be evaluated with c.
func (t ColumnType) Supports(c Clause) bool {
	switch c {
	case Equals, NotEquals:
		return true
	case Contains:
		return t == TypeText
	case GreaterThan, LessThan, Between:
		return t == TypeNumeric || t == TypeDate || t == TypeText
	case In:
		return t == TypeText || t == TypeNumeric
	default:
		return false
	}
}

func (t ColumnType) defaultAlignment() Alignment {
	if t == TypeNumeric {
		return AlignRight
	}
	return AlignLeft
}

// dateLayouts are tried in order when coercing strings to dates.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Coerce converts v to the canonical Go representation of the type:
// string, float64, bool or time.Time. Data sources use it to normalize row
// values before comparing them with filter operands.
func (t ColumnType) Coerce(v any) (any, error) {
	switch t {
	case TypeNumeric:
		return toFloat(v)
	case TypeBoolean:
		return toBool(v)
	case TypeDate:
		return toTime(v)
	default:
		return toText(v)
	}
}

func toText(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case []byte:
		return string(x), nil
	case json.Number:
		return x.String(), nil
	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return fmt.Sprint(x), nil
	case time.Time:
		return x.Format(time.RFC3339), nil
	case fmt.Stringer:
		return x.String(), nil
	default:
		return "", fmt.Errorf("expected a text value, got %T", v)
	}
}

func toFloat(v any) (float64, error) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int8:
		f = float64(x)
	case int16:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case uint:
		f = float64(x)
	case uint8:
		f = float64(x)
	case uint16:
		f = float64(x)
	case uint32:
		f = float64(x)
	case uint64:
		f = float64(x)
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return 0, fmt.Errorf("expected a numeric value, got %q", x.String())
		}
		f = parsed
	case []byte:
		return toFloat(string(x))
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, fmt.Errorf("expected a numeric value, got %q", x)
		}
		f = parsed
	default:
		return 0, fmt.Errorf("expected a numeric value, got %T", v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("expected a finite numeric value")
	}
	return f, nil
}

func toBool(v any) (bool, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case int64:
		return x != 0, nil
	case int:
		return x != 0, nil
	case float64:
		if x == 0 || x == 1 {
			return x == 1, nil
		}
	case json.Number:
		return toBool(x.String())
	case []byte:
		return toBool(string(x))
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "1", "true", "t", "yes", "y", "on":
			return true, nil
		case "0", "false", "f", "no", "n", "off":
			return false, nil
		}
	}
	return false, fmt.Errorf("expected a boolean value, got %v", v)
}

func toTime(v any) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return x.UTC(), nil
	case []byte:
		return toTime(string(x))
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range dateLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts.UTC(), nil
			}
		}
		return time.Time{}, fmt.Errorf("expected a date value, got %q", x)
	default:
		return time.Time{}, fmt.Errorf("expected a date value, got %T", v)
	}
}
