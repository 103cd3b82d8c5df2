package table

import (
	"strings"

	"tablekit/internal/domain"
)

// Clause is a filter predicate kind. The set is closed: a Clause value is
// always one of the constants below.
type Clause uint8

const (
	Equals Clause = iota + 1
	NotEquals
	Contains
	GreaterThan
	LessThan
	Between
	In
)

// AllClauses lists every clause in declaration order.
var AllClauses = []Clause{Equals, NotEquals, Contains, GreaterThan, LessThan, Between, In}

var clauseNames = map[Clause]string{
	Equals:      "equals",
	NotEquals:   "not_equals",
	Contains:    "contains",
	GreaterThan: "greater_than",
	LessThan:    "less_than",
	Between:     "between",
	In:          "in",
}

// clauseAliases maps alternative spellings accepted on input.
var clauseAliases = map[string]Clause{
	"eq":     Equals,
	"neq":    NotEquals,
	"ne":     NotEquals,
	"gt":     GreaterThan,
	"lt":     LessThan,
	"in_set": In,
}

// String returns the stable wire value of the clause.
func (c Clause) String() string {
	return clauseNames[c]
}

// ParseClause maps a wire value (or accepted alias) to a Clause. Hyphens are
// treated as underscores, so "not-equals" and "not_equals" are the same.
func ParseClause(s string) (Clause, bool) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for c, name := range clauseNames {
		if name == key {
			return c, true
		}
	}
	c, ok := clauseAliases[key]
	return c, ok
}

// MarshalText implements encoding.TextMarshaler.
func (c Clause) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// ValueShape describes what a clause expects as its operand.
type ValueShape uint8

const (
	ShapeScalar ValueShape = iota
	ShapeRange
	ShapeSet
)

// Shape returns the operand shape of the clause.
func (c Clause) Shape() ValueShape {
	switch c {
	case Between:
		return ShapeRange
	case In:
		return ShapeSet
	default:
		return ShapeScalar
	}
}

// UnsupportedClause builds the error returned when c cannot be applied.
func UnsupportedClause(c Clause) error {
	return domain.ErrUnsupportedClause(c.String())
}
