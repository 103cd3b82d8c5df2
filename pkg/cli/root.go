// Package cli implements tablectl, the command-line client that lists,
// describes, queries and validates table definitions against a database.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"tablekit/internal/app"
	"tablekit/internal/config"
)

var (
	version = "dev"
	commit  = "none"
)

// Execute runs the CLI.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		output, _ := rootCmd.PersistentFlags().GetString("output")
		if output == "json" {
			_ = printJSON(os.Stdout, map[string]any{"error": err.Error()})
		} else {
			fmt.Fprintf(os.Stderr, "%s %v\n", color.RedString("Error:"), err)
		}
		return 1
	}
	return 0
}

// settings are resolved from flag > env > tablectl.yaml > default.
type settings struct {
	v *viper.Viper
}

func newRootCmd() *cobra.Command {
	s := &settings{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:           "tablectl",
		Short:         "Inspect and query declarative data tables",
		Version:       version + " (" + commit + ")",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := s.load(cmd); err != nil {
				return err
			}
			if s.v.GetBool("no_color") {
				color.NoColor = true
			}
			return validateOutputFormat(s.output())
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Config file (default ./tablectl.yaml)")
	pf.String("db-provider", "sqlite3", "Database provider (sqlite3, postgres, mysql, duckdb, memory)")
	pf.String("database-url", "tablekit.sqlite", "Database DSN or SQLite file path")
	pf.String("tables-dir", "", "Directory of YAML table definitions")
	pf.StringP("output", "o", "table", "Output format (table, json)")
	pf.Bool("no-color", false, "Disable colored output")

	for key, flag := range map[string]string{
		"db_provider":  "db-provider",
		"database_url": "database-url",
		"tables_dir":   "tables-dir",
		"output":       "output",
		"no_color":     "no-color",
	} {
		_ = s.v.BindPFlag(key, pf.Lookup(flag))
	}
	_ = s.v.BindEnv("db_provider", "DB_PROVIDER")
	_ = s.v.BindEnv("database_url", "DATABASE_URL")
	_ = s.v.BindEnv("tables_dir", "TABLES_DIR")
	_ = s.v.BindEnv("output", "TABLECTL_OUTPUT")
	_ = s.v.BindEnv("no_color", "NO_COLOR")

	rootCmd.AddCommand(newTablesCmd(s))
	rootCmd.AddCommand(newDescribeCmd(s))
	rootCmd.AddCommand(newQueryCmd(s))
	rootCmd.AddCommand(newValidateCmd(s))
	rootCmd.AddCommand(newMigrateCmd(s))

	return rootCmd
}

// load reads the config file. An explicit --config must exist; the default
// tablectl.yaml is optional.
func (s *settings) load(cmd *cobra.Command) error {
	path, _ := cmd.Root().PersistentFlags().GetString("config")
	if path != "" {
		s.v.SetConfigFile(path)
	} else {
		s.v.SetConfigName("tablectl")
		s.v.SetConfigType("yaml")
		s.v.AddConfigPath(".")
	}
	if err := s.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func (s *settings) output() string { return strings.ToLower(s.v.GetString("output")) }

// config maps the resolved settings onto the server configuration so that
// both binaries wire tables the same way.
func (s *settings) config() *config.Config {
	return &config.Config{
		DBProvider:     s.v.GetString("db_provider"),
		DatabaseURL:    s.v.GetString("database_url"),
		TablesDir:      s.v.GetString("tables_dir"),
		DefaultPerPage: 15,
		MaxPerPage:     100,
	}
}

// openApp opens the database and wires the tables. The returned func
// releases the database handle.
func (s *settings) openApp(ctx context.Context, logger *slog.Logger) (*app.App, func(), error) {
	cfg := s.config()
	conn, dialect, err := app.OpenDatabase(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	release := func() {
		if conn != nil {
			_ = conn.Close()
		}
	}
	a, err := app.New(ctx, app.Deps{Cfg: cfg, DB: conn, Dialect: dialect, Logger: logger})
	if err != nil {
		release()
		return nil, nil, err
	}
	return a, release, nil
}

func validateOutputFormat(output string) error {
	if output != "" && output != "table" && output != "json" {
		return fmt.Errorf("unsupported output format %q: use 'table' or 'json'", output)
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func quietLogger() *slog.Logger { return slog.New(slog.DiscardHandler) }
