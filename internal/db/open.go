// Package db opens the database handles table sources read from and applies
// the embedded demo migrations.
package db

import (
	"database/sql"
	"fmt"
	"time"

	// Drivers for every supported provider.
	_ "github.com/duckdb/duckdb-go/v2"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"

	"tablekit/internal/source/sqlsource"
)

// driverNames maps a dialect to its database/sql driver name.
var driverNames = map[sqlsource.Dialect]string{
	sqlsource.SQLite:   "sqlite3",
	sqlsource.Postgres: "pgx",
	sqlsource.MySQL:    "mysql",
	sqlsource.DuckDB:   "duckdb",
}

// Open opens a pooled handle for provider ("sqlite3", "postgres", "mysql",
// "duckdb" or an accepted alias) and verifies it with a ping. SQLite files
// get the hardened read pool; use OpenSQLite directly for a write pool.
func Open(provider, dsn string, maxOpen int) (*sql.DB, sqlsource.Dialect, error) {
	dialect, err := sqlsource.ParseDialect(provider)
	if err != nil {
		return nil, "", err
	}
	if dsn == "" {
		return nil, "", fmt.Errorf("database URL is required for provider %s", dialect)
	}

	if dialect == sqlsource.SQLite {
		db, err := OpenSQLite(dsn, ModeRead, maxOpen)
		return db, dialect, err
	}

	db, err := sql.Open(driverNames[dialect], dsn)
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", dialect, err)
	}
	if maxOpen > 0 {
		db.SetMaxOpenConns(maxOpen)
		db.SetMaxIdleConns(maxOpen)
	}
	db.SetConnMaxLifetime(time.Hour)

	if err := ping(db); err != nil {
		_ = db.Close()
		return nil, "", fmt.Errorf("ping %s: %w", dialect, err)
	}
	return db, dialect, nil
}
