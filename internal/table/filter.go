package table

import (
	"fmt"
	"reflect"
	"strings"

	"tablekit/internal/domain"
)

// RawFilter is a filter tuple exactly as it arrived with the request.
type RawFilter struct {
	Column string `json:"column"`
	Clause string `json:"clause"`
	Value  any    `json:"value"`
}

// Range is the operand of a Between filter. Both bounds are inclusive.
type Range struct {
	Low  any
	High any
}

// Filter is a validated filter. Value holds the coerced operand: a scalar
// of the column type's canonical Go type, a Range, or a []any for In.
type Filter struct {
	Column string
	Type   ColumnType
	Clause Clause
	Value  any
	// Raw is the operand as received, echoed back in the serialized state.
	Raw any
}

func (f Filter) String() string {
	return fmt.Sprintf("%s %s %v", f.Column, f.Clause, f.Raw)
}

// compileFilter validates raw against the definition: the column must
// exist, the clause must be permitted for it, and the value must fit the
// clause's shape and the column's type.
func compileFilter(d *Definition, raw RawFilter) (Filter, error) {
	col, ok := d.Column(raw.Column)
	if !ok {
		return Filter{}, domain.ErrUnknownColumn(raw.Column)
	}
	clause, ok := ParseClause(raw.Clause)
	if !ok || !col.Permits(clause) {
		return Filter{}, &domain.UnsupportedClauseError{Clause: raw.Clause, Column: col.Key}
	}

	value, err := coerceOperand(col.Type, clause, raw.Value)
	if err != nil {
		return Filter{}, domain.ErrValidation("invalid value for filter %s %s: %v", col.Key, clause, err)
	}
	return Filter{
		Column: col.Key,
		Type:   col.Type,
		Clause: clause,
		Value:  value,
		Raw:    raw.Value,
	}, nil
}

func coerceOperand(t ColumnType, clause Clause, raw any) (any, error) {
	switch clause.Shape() {
	case ShapeRange:
		low, high, err := splitRange(raw)
		if err != nil {
			return nil, err
		}
		lo, err := t.Coerce(low)
		if err != nil {
			return nil, fmt.Errorf("lower bound: %w", err)
		}
		hi, err := t.Coerce(high)
		if err != nil {
			return nil, fmt.Errorf("upper bound: %w", err)
		}
		return Range{Low: lo, High: hi}, nil
	case ShapeSet:
		items, err := splitSet(raw)
		if err != nil {
			return nil, err
		}
		out := make([]any, len(items))
		for i, item := range items {
			v, err := t.Coerce(item)
			if err != nil {
				return nil, fmt.Errorf("item %d: %w", i, err)
			}
			out[i] = v
		}
		return out, nil
	default:
		if raw == nil {
			return nil, fmt.Errorf("a value is required")
		}
		if items, ok := asSlice(raw); ok {
			if len(items) != 1 {
				return nil, fmt.Errorf("expected a single value, got %d", len(items))
			}
			raw = items[0]
		}
		return t.Coerce(raw)
	}
}

// splitRange accepts a two-element list, a {"low","high"} or {"from","to"}
// object, a Range, or a "low,high" string.
func splitRange(raw any) (any, any, error) {
	switch x := raw.(type) {
	case Range:
		return x.Low, x.High, nil
	case string:
		lo, hi, ok := strings.Cut(x, ",")
		if !ok {
			return nil, nil, fmt.Errorf("expected \"low,high\", got %q", x)
		}
		return strings.TrimSpace(lo), strings.TrimSpace(hi), nil
	case map[string]any:
		if lo, ok := x["low"]; ok {
			return lo, x["high"], requireBound(x["high"])
		}
		if lo, ok := x["from"]; ok {
			return lo, x["to"], requireBound(x["to"])
		}
		return nil, nil, fmt.Errorf("expected an object with low/high bounds")
	}
	if items, ok := asSlice(raw); ok {
		if len(items) != 2 {
			return nil, nil, fmt.Errorf("expected two bounds, got %d", len(items))
		}
		return items[0], items[1], nil
	}
	return nil, nil, fmt.Errorf("expected a range, got %T", raw)
}

func requireBound(v any) error {
	if v == nil {
		return fmt.Errorf("both bounds are required")
	}
	return nil
}

// splitSet accepts a non-empty list or a comma-separated string.
func splitSet(raw any) ([]any, error) {
	if s, ok := raw.(string); ok {
		parts := strings.Split(s, ",")
		items := make([]any, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				items = append(items, p)
			}
		}
		raw = items
	}
	items, ok := asSlice(raw)
	if !ok {
		return nil, fmt.Errorf("expected a list of values, got %T", raw)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("expected at least one value")
	}
	return items, nil
}

// asSlice converts any slice (other than []byte) to []any.
func asSlice(v any) ([]any, bool) {
	switch x := v.(type) {
	case []any:
		return x, true
	case []byte:
		return nil, false
	case nil:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
