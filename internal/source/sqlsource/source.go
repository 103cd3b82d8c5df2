// Package sqlsource implements table.DataSource over database/sql, compiling
// validated filters into SQL predicates with squirrel.
package sqlsource

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"tablekit/internal/table"
)

// Querier is the subset of *sql.DB the source needs.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Source reads rows of one table or view.
type Source struct {
	db      Querier
	dialect Dialect
	table   string
	// exprs maps a column key to its SQL expression. Keys without an entry
	// are plain column references.
	exprs   map[string]string
	columns []string
	builder sq.StatementBuilderType
}

// Option configures a Source.
type Option func(*Source)

// WithColumns limits the SELECT list to the given column keys. Without it
// the source selects every column of the table.
func WithColumns(keys ...string) Option {
	return func(s *Source) { s.columns = append([]string(nil), keys...) }
}

// WithExpression maps a column key to a SQL expression, for computed or
// renamed columns (e.g. "full_name" -> "first_name || ' ' || last_name").
// The expression is trusted configuration, never request input.
func WithExpression(key, expr string) Option {
	return func(s *Source) { s.exprs[key] = expr }
}

// New creates a Source over tableName.
func New(db Querier, dialect Dialect, tableName string, opts ...Option) (*Source, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlsource: database handle is required")
	}
	if err := validateQualified(tableName); err != nil {
		return nil, fmt.Errorf("sqlsource: table name: %w", err)
	}
	s := &Source{
		db:      db,
		dialect: dialect,
		table:   tableName,
		exprs:   map[string]string{},
		builder: sq.StatementBuilder.PlaceholderFormat(dialect.placeholders()),
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, key := range s.columns {
		if _, ok := s.exprs[key]; ok {
			continue
		}
		if err := ValidateIdentifier(key); err != nil {
			return nil, fmt.Errorf("sqlsource: column %q: %w", key, err)
		}
	}
	return s, nil
}

// Count implements table.DataSource.
func (s *Source) Count(ctx context.Context, filters []table.Filter) (int64, error) {
	where, err := s.where(filters)
	if err != nil {
		return 0, err
	}
	query, args, err := s.builder.Select("COUNT(*)").From(s.dialect.Quote(s.table)).Where(where).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}

	var n int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", s.table, err)
	}
	return n, nil
}

// Fetch implements table.DataSource.
func (s *Source) Fetch(ctx context.Context, q table.Query) ([]table.Row, error) {
	where, err := s.where(q.Filters)
	if err != nil {
		return nil, err
	}

	sel := s.builder.Select(s.selectList()...).From(s.dialect.Quote(s.table)).Where(where)
	for _, o := range q.Sort {
		expr, err := s.column(o.Column)
		if err != nil {
			return nil, err
		}
		sel = sel.OrderBy(expr + " " + strings.ToUpper(o.Direction.String()))
	}
	if q.Limit > 0 {
		sel = sel.Limit(uint64(q.Limit))
	}
	if q.Offset > 0 {
		sel = sel.Offset(uint64(q.Offset))
	}

	query, args, err := sel.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", s.table, err)
	}
	defer rows.Close() //nolint:errcheck
	return scanRows(rows)
}

func (s *Source) selectList() []string {
	if len(s.columns) == 0 {
		return []string{"*"}
	}
	out := make([]string, len(s.columns))
	for i, key := range s.columns {
		if expr, ok := s.exprs[key]; ok {
			out[i] = "(" + expr + ") AS " + s.dialect.Quote(key)
		} else {
			out[i] = s.dialect.Quote(key)
		}
	}
	return out
}

// column returns the SQL expression for a column key.
func (s *Source) column(key string) (string, error) {
	if expr, ok := s.exprs[key]; ok {
		return "(" + expr + ")", nil
	}
	if err := ValidateIdentifier(key); err != nil {
		return "", fmt.Errorf("column %q: %w", key, err)
	}
	return s.dialect.Quote(key), nil
}

func (s *Source) where(filters []table.Filter) (sq.And, error) {
	preds := sq.And{}
	for _, f := range filters {
		p, err := s.predicate(f)
		if err != nil {
			return nil, err
		}
		preds = append(preds, p)
	}
	return preds, nil
}

// predicate translates one filter.
func (s *Source) predicate(f table.Filter) (sq.Sqlizer, error) {
	col, err := s.column(f.Column)
	if err != nil {
		return nil, err
	}
	if s.dialect == Postgres && f.Type == table.TypeNumeric && hasFraction(f.Value) {
		// pgx cannot encode 1.5 into an integer parameter.
		col = "CAST(" + col + " AS NUMERIC)"
	}

	switch f.Clause {
	case table.Equals:
		return sq.Eq{col: s.bind(f.Value)}, nil
	case table.NotEquals:
		return sq.NotEq{col: s.bind(f.Value)}, nil
	case table.Contains:
		pattern := "%" + escapeLike(strings.ToLower(fmt.Sprint(f.Value))) + "%"
		return sq.Expr("LOWER("+col+") LIKE ? ESCAPE '!'", pattern), nil
	case table.GreaterThan:
		return sq.Gt{col: s.bind(f.Value)}, nil
	case table.LessThan:
		return sq.Lt{col: s.bind(f.Value)}, nil
	case table.Between:
		rng, ok := f.Value.(table.Range)
		if !ok {
			return nil, fmt.Errorf("between filter on %q has operand %T", f.Column, f.Value)
		}
		return sq.And{sq.GtOrEq{col: s.bind(rng.Low)}, sq.LtOrEq{col: s.bind(rng.High)}}, nil
	case table.In:
		set, ok := f.Value.([]any)
		if !ok || len(set) == 0 {
			return nil, fmt.Errorf("in filter on %q needs a non-empty set", f.Column)
		}
		args := make([]any, len(set))
		for i, v := range set {
			args[i] = s.bind(v)
		}
		return sq.Eq{col: args}, nil
	default:
		return nil, table.UnsupportedClause(f.Clause)
	}
}

// sqliteTimeLayout matches how TIMESTAMP text is stored in SQLite, so that
// string comparison orders the same way as time comparison.
const sqliteTimeLayout = "2006-01-02 15:04:05.999999999"

// bind converts a coerced operand into the argument sent to the driver.
// Whole numbers go out as int64; SQLite dates go out in the stored layout.
func (s *Source) bind(v any) any {
	switch x := v.(type) {
	case float64:
		if x == math.Trunc(x) && x >= math.MinInt64 && x < math.MaxInt64 {
			return int64(x)
		}
	case time.Time:
		if s.dialect == SQLite {
			return x.UTC().Format(sqliteTimeLayout)
		}
	}
	return v
}

// hasFraction reports whether any numeric operand of v is not a whole number.
func hasFraction(v any) bool {
	switch x := v.(type) {
	case float64:
		return x != math.Trunc(x)
	case table.Range:
		return hasFraction(x.Low) || hasFraction(x.High)
	case []any:
		for _, item := range x {
			if hasFraction(item) {
				return true
			}
		}
	}
	return false
}

// escapeLike escapes LIKE wildcards using '!' as the escape character,
// which every supported dialect accepts without string-literal quirks.
func escapeLike(s string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return r.Replace(s)
}

func scanRows(rows *sql.Rows) ([]table.Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	out := []table.Row{}
	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		row := make(table.Row, len(cols))
		for i, c := range cols {
			if b, ok := vals[i].([]byte); ok {
				row[c] = string(b)
			} else {
				row[c] = vals[i]
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}
