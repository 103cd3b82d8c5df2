package table

import (
	"fmt"
	"slices"
	"strings"

	"tablekit/internal/domain"
)

// Direction is a sort direction.
type Direction uint8

const (
	Asc Direction = iota
	Desc
)

func (d Direction) String() string {
	if d == Desc {
		return "desc"
	}
	return "asc"
}

// ParseDirection returns Desc for "desc" (any case) and Asc otherwise.
func ParseDirection(s string) Direction {
	if strings.EqualFold(strings.TrimSpace(s), "desc") {
		return Desc
	}
	return Asc
}

// Sort is a column key plus direction. The zero value means "no explicit
// sort"; rows are then ordered by the tie-break key alone.
type Sort struct {
	Column    string
	Direction Direction
}

// IsZero reports whether no sort column is set.
func (s Sort) IsZero() bool { return s.Column == "" }

func (s Sort) String() string {
	if s.IsZero() {
		return "none"
	}
	return s.Column + " " + s.Direction.String()
}

// Definition is the immutable schema of one table: ordered columns, the data
// source they are read from, default sort and page sizes. It is safe for
// concurrent use once built.
type Definition struct {
	name        string
	columns     []Column
	index       map[string]int
	source      DataSource
	defaultSort Sort
	perPage     int
	maxPerPage  int
	tieBreaker  string
}

// Option configures a Definition.
type Option func(*Definition)

// WithDefaultSort sets the sort applied when a request has none or an
// invalid one.
func WithDefaultSort(column string, dir Direction) Option {
	return func(d *Definition) { d.defaultSort = Sort{Column: column, Direction: dir} }
}

// WithPerPage sets the default page size.
func WithPerPage(n int) Option {
	return func(d *Definition) { d.perPage = n }
}

// WithMaxPerPage sets the largest page size a request may ask for.
func WithMaxPerPage(n int) Option {
	return func(d *Definition) { d.maxPerPage = n }
}

// WithTieBreaker sets the column appended to every ordering. Defaults to
// the first column.
func WithTieBreaker(key string) Option {
	return func(d *Definition) { d.tieBreaker = key }
}

// New builds a Definition, returning a *domain.DefinitionError listing every
// problem found in the declaration.
func New(name string, source DataSource, columns []Column, opts ...Option) (*Definition, error) {
	d := &Definition{
		name:       name,
		source:     source,
		index:      make(map[string]int, len(columns)),
		perPage:    domain.DefaultPerPage,
		maxPerPage: domain.MaxPerPage,
	}
	for _, opt := range opts {
		opt(d)
	}

	var problems []string
	if strings.TrimSpace(name) == "" {
		problems = append(problems, "name is required")
	}
	if source == nil {
		problems = append(problems, "data source is required")
	}
	if len(columns) == 0 {
		problems = append(problems, "at least one column is required")
	}

	d.columns = make([]Column, 0, len(columns))
	for _, col := range columns {
		if col.Key == "" {
			problems = append(problems, "column key is required")
			continue
		}
		if _, dup := d.index[col.Key]; dup {
			problems = append(problems, fmt.Sprintf("duplicate column key %q", col.Key))
			continue
		}
		col = col.normalized()
		for _, cl := range col.Clauses {
			if cl.String() == "" {
				problems = append(problems, fmt.Sprintf("column %q declares an unknown clause", col.Key))
			} else if !col.Type.Supports(cl) {
				problems = append(problems, fmt.Sprintf("column %q (%s) cannot use clause %s", col.Key, col.Type, cl))
			}
		}
		d.index[col.Key] = len(d.columns)
		d.columns = append(d.columns, col)
	}

	if !d.defaultSort.IsZero() {
		col, ok := d.Column(d.defaultSort.Column)
		switch {
		case !ok:
			problems = append(problems, fmt.Sprintf("default sort references unknown column %q", d.defaultSort.Column))
		case !col.Sortable:
			problems = append(problems, fmt.Sprintf("default sort column %q is not sortable", d.defaultSort.Column))
		}
	}
	if d.tieBreaker == "" && len(d.columns) > 0 {
		d.tieBreaker = d.columns[0].Key
	} else if _, ok := d.index[d.tieBreaker]; !ok && d.tieBreaker != "" {
		problems = append(problems, fmt.Sprintf("tie-break column %q is not declared", d.tieBreaker))
	}
	if d.perPage <= 0 {
		problems = append(problems, "per-page size must be positive")
	}
	if d.maxPerPage <= 0 {
		problems = append(problems, "max per-page size must be positive")
	} else if d.perPage > d.maxPerPage {
		problems = append(problems, fmt.Sprintf("per-page size %d exceeds max %d", d.perPage, d.maxPerPage))
	}

	if len(problems) > 0 {
		return nil, &domain.DefinitionError{Table: name, Problems: problems}
	}
	return d, nil
}

// MustNew is like New but panics on a malformed definition. It is meant for
// package-level table factories whose declarations are fixed at compile time.
func MustNew(name string, source DataSource, columns []Column, opts ...Option) *Definition {
	d, err := New(name, source, columns, opts...)
	if err != nil {
		panic(err)
	}
	return d
}

// Name returns the table name.
func (d *Definition) Name() string { return d.name }

// Columns returns a copy of the ordered columns.
func (d *Definition) Columns() []Column {
	out := make([]Column, len(d.columns))
	for i, c := range d.columns {
		c.Clauses = slices.Clone(c.Clauses)
		out[i] = c
	}
	return out
}

// Column looks up a column by key.
func (d *Definition) Column(key string) (Column, bool) {
	i, ok := d.index[key]
	if !ok {
		return Column{}, false
	}
	return d.columns[i], true
}

// Source returns the data source.
func (d *Definition) Source() DataSource { return d.source }

// DefaultSort returns the sort used when a request has none.
func (d *Definition) DefaultSort() Sort { return d.defaultSort }

// PerPage returns the default page size.
func (d *Definition) PerPage() int { return d.perPage }

// MaxPerPage returns the largest accepted page size.
func (d *Definition) MaxPerPage() int { return d.maxPerPage }

// TieBreaker returns the column key appended to every ordering.
func (d *Definition) TieBreaker() string { return d.tieBreaker }

// ToArray serializes the definition's column metadata for a renderer.
func (d *Definition) ToArray() map[string]any {
	var defaultSort any
	if !d.defaultSort.IsZero() {
		defaultSort = sortToMap(d.defaultSort)
	}
	return map[string]any{
		"name":         d.name,
		"columns":      d.columnMaps(),
		"default_sort": defaultSort,
		"per_page":     d.perPage,
		"max_per_page": d.maxPerPage,
	}
}

func (d *Definition) columnMaps() []map[string]any {
	out := make([]map[string]any, len(d.columns))
	for i, c := range d.columns {
		out[i] = c.toMap()
	}
	return out
}

func sortToMap(s Sort) map[string]any {
	return map[string]any{"column": s.Column, "direction": s.Direction.String()}
}
