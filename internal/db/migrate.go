package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/pressly/goose/v3"

	"tablekit/internal/source/sqlsource"
)

// ErrMigrationsUnsupported is returned for dialects goose cannot target.
var ErrMigrationsUnsupported = errors.New("migrations are not supported for this dialect")

// gooseDialects maps table dialects to goose dialect names.
var gooseDialects = map[sqlsource.Dialect]string{
	sqlsource.SQLite:   "sqlite3",
	sqlsource.Postgres: "postgres",
	sqlsource.MySQL:    "mysql",
}

// RunMigrations applies all pending embedded migrations.
func RunMigrations(db *sql.DB, dialect sqlsource.Dialect) error {
	name, ok := gooseDialects[dialect]
	if !ok {
		return fmt.Errorf("%s: %w", dialect, ErrMigrationsUnsupported)
	}

	goose.SetBaseFS(EmbedMigrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect(name); err != nil {
		return fmt.Errorf("goose set dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}
