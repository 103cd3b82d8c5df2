package sqlsource

import (
	"fmt"
	"regexp"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// identifierRe allows alphanumeric + underscores, starting with a letter or underscore.
var identifierRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// maxIdentifierLen is the maximum length allowed for a SQL identifier.
const maxIdentifierLen = 128

// Dialect selects placeholder and quoting rules.
type Dialect string

const (
	SQLite   Dialect = "sqlite3"
	Postgres Dialect = "postgres"
	MySQL    Dialect = "mysql"
	DuckDB   Dialect = "duckdb"
)

// ParseDialect normalizes provider spellings ("sqlite", "postgresql", "pgx", ...).
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sqlite", "sqlite3":
		return SQLite, nil
	case "postgres", "postgresql", "pgx":
		return Postgres, nil
	case "mysql":
		return MySQL, nil
	case "duckdb":
		return DuckDB, nil
	default:
		return "", fmt.Errorf("unsupported SQL dialect %q", s)
	}
}

func (d Dialect) placeholders() sq.PlaceholderFormat {
	if d == Postgres {
		return sq.Dollar
	}
	return sq.Question
}

// ValidateIdentifier checks that name is a safe SQL identifier:
//   - Non-empty
//   - At most 128 characters
//   - Matches [a-zA-Z_][a-zA-Z0-9_]*
func ValidateIdentifier(name string) error {
	if name == "" {
		return fmt.Errorf("name is required")
	}
	if len(name) > maxIdentifierLen {
		return fmt.Errorf("name must be at most %d characters", maxIdentifierLen)
	}
	if !identifierRe.MatchString(name) {
		return fmt.Errorf("name %q must match [a-zA-Z_][a-zA-Z0-9_]*", name)
	}
	return nil
}

// validateQualified validates each dot-separated part of a table name.
func validateQualified(name string) error {
	for _, part := range strings.Split(name, ".") {
		if err := ValidateIdentifier(part); err != nil {
			return err
		}
	}
	return nil
}

// Quote wraps an identifier in the dialect's quote character, doubling any
// embedded quote. Dotted names are quoted part by part.
func (d Dialect) Quote(name string) string {
	q := `"`
	if d == MySQL {
		q = "`"
	}
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = q + strings.ReplaceAll(p, q, q+q) + q
	}
	return strings.Join(parts, ".")
}
