package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"tablekit/internal/config"
	"tablekit/internal/db"
	"tablekit/internal/source/sqlsource"
)

// OpenDatabase opens the configured database and, when enabled, applies the
// embedded migrations. The memory provider returns a nil handle. SQLite
// migrations run on a dedicated write pool that is closed afterwards.
func OpenDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*sql.DB, sqlsource.Dialect, error) {
	if strings.EqualFold(cfg.DBProvider, ProviderMemory) {
		logger.InfoContext(ctx, "serving in-memory sample tables")
		return nil, "", nil
	}

	conn, dialect, err := db.Open(cfg.DBProvider, cfg.DatabaseURL, cfg.DBMaxOpenConns)
	if err != nil {
		return nil, "", err
	}
	if !cfg.RunMigrations {
		return conn, dialect, nil
	}

	if err := Migrate(ctx, cfg, conn, dialect, logger); err != nil {
		_ = conn.Close()
		return nil, "", err
	}
	return conn, dialect, nil
}

// Migrate applies the embedded migrations to conn. Dialects without
// migration support are logged and skipped.
func Migrate(ctx context.Context, cfg *config.Config, conn *sql.DB, dialect sqlsource.Dialect, logger *slog.Logger) error {
	target := conn
	if dialect == sqlsource.SQLite {
		w, err := db.OpenSQLite(cfg.DatabaseURL, db.ModeWrite, 0)
		if err != nil {
			return err
		}
		defer w.Close()
		target = w
	}

	err := db.RunMigrations(target, dialect)
	switch {
	case errors.Is(err, db.ErrMigrationsUnsupported):
		logger.WarnContext(ctx, "skipping migrations", "dialect", dialect)
		return nil
	case err != nil:
		return fmt.Errorf("migrate %s: %w", dialect, err)
	}
	logger.InfoContext(ctx, "migrations applied", "dialect", dialect)
	return nil
}
