// Package memory provides a table.DataSource over an in-memory slice of
// rows. Filters are evaluated in Go using the column types carried by each
// filter.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"tablekit/internal/table"
)

// Source is an immutable in-memory collection of rows.
type Source struct {
	rows []table.Row
}

// New copies rows into a Source.
func New(rows []table.Row) *Source {
	cp := make([]table.Row, len(rows))
	for i, r := range rows {
		cp[i] = maps.Clone(r)
	}
	return &Source{rows: cp}
}

// Count returns the number of rows matching every filter.
func (s *Source) Count(ctx context.Context, filters []table.Filter) (int64, error) {
	matched, err := s.filter(ctx, filters)
	if err != nil {
		return 0, err
	}
	return int64(len(matched)), nil
}

// Fetch returns one ordered window of matching rows.
func (s *Source) Fetch(ctx context.Context, q table.Query) ([]table.Row, error) {
	matched, err := s.filter(ctx, q.Filters)
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(matched, func(a, b table.Row) int {
		for _, o := range q.Sort {
			c := compareValues(a[o.Column], b[o.Column])
			if o.Direction == table.Desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})

	start := min(q.Offset, len(matched))
	end := len(matched)
	if q.Limit > 0 {
		end = min(start+q.Limit, len(matched))
	}
	out := make([]table.Row, 0, end-start)
	for _, r := range matched[start:end] {
		out = append(out, maps.Clone(r))
	}
	return out, nil
}

func (s *Source) filter(ctx context.Context, filters []table.Filter) ([]table.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]table.Row, 0, len(s.rows))
	for _, r := range s.rows {
		ok, err := matchAll(r, filters)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func matchAll(r table.Row, filters []table.Filter) (bool, error) {
	for _, f := range filters {
		ok, err := match(r, f)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// match evaluates one filter. Missing, null or uncoercible row values never
// match, mirroring SQL NULL comparison semantics.
func match(r table.Row, f table.Filter) (bool, error) {
	raw, ok := r[f.Column]
	if !ok || raw == nil {
		return false, nil
	}
	v, err := f.Type.Coerce(raw)
	if err != nil {
		return false, nil
	}

	switch f.Clause {
	case table.Equals:
		return compareValues(v, f.Value) == 0, nil
	case table.NotEquals:
		return compareValues(v, f.Value) != 0, nil
	case table.Contains:
		return strings.Contains(strings.ToLower(fmt.Sprint(v)), strings.ToLower(fmt.Sprint(f.Value))), nil
	case table.GreaterThan:
		return compareValues(v, f.Value) > 0, nil
	case table.LessThan:
		return compareValues(v, f.Value) < 0, nil
	case table.Between:
		rng, ok := f.Value.(table.Range)
		if !ok {
			return false, fmt.Errorf("between filter on %q has operand %T", f.Column, f.Value)
		}
		return compareValues(v, rng.Low) >= 0 && compareValues(v, rng.High) <= 0, nil
	case table.In:
		set, ok := f.Value.([]any)
		if !ok {
			return false, fmt.Errorf("in filter on %q has operand %T", f.Column, f.Value)
		}
		return slices.ContainsFunc(set, func(item any) bool { return compareValues(v, item) == 0 }), nil
	default:
		return false, table.UnsupportedClause(f.Clause)
	}
}

// compareValues orders two row or operand values. Nil sorts first; values
// of different kinds fall back to comparing their string forms.
func compareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	if fa, ok := number(a); ok {
		if fb, ok := number(b); ok {
			return cmp.Compare(fa, fb)
		}
	}
	switch x := a.(type) {
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y)
		}
	case bool:
		if y, ok := b.(bool); ok {
			switch {
			case x == y:
				return 0
			case !x:
				return -1
			default:
				return 1
			}
		}
	}
	return cmp.Compare(text(a), text(b))
}

func number(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	default:
		return 0, false
	}
}

func text(v any) string {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return fmt.Sprint(v)
}
