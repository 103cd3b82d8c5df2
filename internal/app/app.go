// Package app provides application-level wiring and dependency injection
// for the table server and CLI.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"tablekit/internal/config"
	"tablekit/internal/source/sqlsource"
	svctables "tablekit/internal/service/tables"
	"tablekit/internal/table"
	"tablekit/internal/tabledef"
	"tablekit/internal/tables"
)

// ProviderMemory serves the built-in tables from in-memory sample data
// without opening a database.
const ProviderMemory = "memory"

// Deps holds the external dependencies that main() must provide.
type Deps struct {
	Cfg     *config.Config
	DB      *sql.DB // nil with the memory provider
	Dialect sqlsource.Dialect
	Logger  *slog.Logger
}

// App holds the fully-wired application.
type App struct {
	Registry *svctables.Registry
	Tables   *svctables.TableService
	logger   *slog.Logger
	cfg      *config.Config
}

// New registers the built-in users table and every YAML definition found in
// Cfg.TablesDir, and wires the table service over them.
func New(ctx context.Context, deps Deps) (*App, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	reg := svctables.NewRegistry()

	users, err := usersTable(deps)
	if err != nil {
		return nil, fmt.Errorf("users table: %w", err)
	}
	if err := reg.Register(users); err != nil {
		return nil, err
	}

	if dir := deps.Cfg.TablesDir; dir != "" {
		if deps.DB == nil {
			logger.WarnContext(ctx, "TABLES_DIR ignored without a database", "dir", dir)
		} else {
			defs, err := LoadDefinitions(os.DirFS(dir), ".", deps.DB, deps.Dialect, deps.Cfg)
			if err != nil {
				return nil, err
			}
			for _, def := range defs {
				if err := reg.Register(def); err != nil {
					return nil, err
				}
				logger.InfoContext(ctx, "table registered", "table", def.Name(), "dir", dir)
			}
		}
	}

	return &App{
		Registry: reg,
		Tables:   svctables.NewTableService(reg, logger.With("component", "tables")),
		logger:   logger,
		cfg:      deps.Cfg,
	}, nil
}

func usersTable(deps Deps) (*table.Definition, error) {
	if deps.DB == nil {
		return tables.UsersMemory(), nil
	}
	return tables.UsersSQL(deps.DB, deps.Dialect)
}

// LoadDefinitions builds every YAML definition under dir of fsys over db.
// Paging settings a file leaves out come from cfg. All broken files are
// reported together.
func LoadDefinitions(fsys fs.FS, dir string, db sqlsource.Querier, dialect sqlsource.Dialect, cfg *config.Config) ([]*table.Definition, error) {
	files, err := tabledef.LoadDir(fsys, dir)
	if err != nil {
		return nil, err
	}

	defs := make([]*table.Definition, 0, len(files))
	var errs []error
	for _, f := range files {
		applyPagingDefaults(f, cfg)
		def, err := f.Build(db, dialect)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", f.Path, err))
			continue
		}
		defs = append(defs, def)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return defs, nil
}

func applyPagingDefaults(f *tabledef.File, cfg *config.Config) {
	if cfg == nil {
		return
	}
	if f.MaxPerPage == 0 {
		f.MaxPerPage = cfg.MaxPerPage
	}
	if f.PerPage == 0 && cfg.DefaultPerPage > 0 {
		f.PerPage = min(cfg.DefaultPerPage, f.MaxPerPage)
	}
}
