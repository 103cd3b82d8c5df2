package table

import "slices"

// Column is one displayable, optionally sortable and filterable field of a
// table definition.
type Column struct {
	Key        string
	Label      string
	Type       ColumnType
	Alignment  Alignment
	Sortable   bool
	Filterable bool
	// Clauses is the permitted clause set. Empty on a filterable column
	// means the type's defaults.
	Clauses []Clause
}

// ColumnOption configures a Column built by one of the typed constructors.
type ColumnOption func(*Column)

// Sortable marks the column as a valid sort target.
func Sortable() ColumnOption {
	return func(c *Column) { c.Sortable = true }
}

// Filterable marks the column as filterable with the given clauses, or
// with the type's default clauses when none are given.
func Filterable(clauses ...Clause) ColumnOption {
	return func(c *Column) {
		c.Filterable = true
		c.Clauses = append([]Clause(nil), clauses...)
	}
}

// Align overrides the type's default alignment.
func Align(a Alignment) ColumnOption {
	return func(c *Column) { c.Alignment = a }
}

// TextColumn declares a text column.
func TextColumn(key, label string, opts ...ColumnOption) Column {
	return newColumn(TypeText, key, label, opts)
}

// NumericColumn declares a numeric column.
func NumericColumn(key, label string, opts ...ColumnOption) Column {
	return newColumn(TypeNumeric, key, label, opts)
}

// BooleanColumn declares a boolean column.
func BooleanColumn(key, label string, opts ...ColumnOption) Column {
	return newColumn(TypeBoolean, key, label, opts)
}

// DateColumn declares a date/time column.
func DateColumn(key, label string, opts ...ColumnOption) Column {
	return newColumn(TypeDate, key, label, opts)
}

func newColumn(t ColumnType, key, label string, opts []ColumnOption) Column {
	c := Column{Key: key, Label: label, Type: t}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Permits reports whether clause may be applied to the column.
func (c Column) Permits(clause Clause) bool {
	return c.Filterable && slices.Contains(c.Clauses, clause)
}

// normalized fills in the alignment, label and clause defaults.
func (c Column) normalized() Column {
	if c.Alignment == alignUnset {
		c.Alignment = c.Type.defaultAlignment()
	}
	if c.Label == "" {
		c.Label = c.Key
	}
	if !c.Filterable {
		c.Clauses = nil
	} else if len(c.Clauses) == 0 {
		c.Clauses = c.Type.DefaultClauses()
	} else {
		c.Clauses = slices.Clone(c.Clauses)
	}
	return c
}

func (c Column) toMap() map[string]any {
	clauses := make([]string, len(c.Clauses))
	for i, cl := range c.Clauses {
		clauses[i] = cl.String()
	}
	return map[string]any{
		"key":        c.Key,
		"label":      c.Label,
		"type":       c.Type.String(),
		"alignment":  c.Alignment.String(),
		"sortable":   c.Sortable,
		"filterable": c.Filterable,
		"clauses":    clauses,
	}
}
