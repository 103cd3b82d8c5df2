package db

import (
	"database/sql"
	"path/filepath"
	"testing"

	"tablekit/internal/source/sqlsource"
)

// OpenTestSQLite opens a hardened single-connection SQLite pool in
// t.TempDir(), applies the embedded migrations and registers cleanup.
func OpenTestSQLite(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.sqlite")
	db, err := OpenSQLite(path, ModeWrite, 0)
	if err != nil {
		t.Fatalf("open test sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := RunMigrations(db, sqlsource.SQLite); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return db
}
