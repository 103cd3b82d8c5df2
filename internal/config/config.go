// Package config handles application configuration and environment loading.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the configuration for the table server.
type Config struct {
	ListenAddr      string        // HTTP listen address (default ":8080")
	DBProvider      string        // sqlite3, postgres, mysql or duckdb (default "sqlite3")
	DatabaseURL     string        // DSN or SQLite file path (default "tablekit.sqlite")
	DBMaxOpenConns  int           // connection pool size (0 = driver default / 4 for SQLite)
	RunMigrations   bool          // apply embedded demo migrations on startup (default true)
	TablesDir       string        // directory of YAML table definitions (optional)
	LogLevel        string        // log level: debug, info, warn, error (default "info")
	Env             string        // environment: "development" (default) or "production"
	ShutdownTimeout time.Duration // graceful shutdown budget (default 10s)

	// Paging defaults applied to tables that do not set their own.
	DefaultPerPage int
	MaxPerPage     int

	// Rate limiting
	RateLimitRPS   float64 // sustained requests per second (default 100)
	RateLimitBurst int     // burst capacity (default 200)

	// CORS
	CORSAllowedOrigins []string // allowed origins for CORS (default: ["*"])

	// Warnings collects non-fatal warnings generated during config loading.
	// These are logged by the caller after the logger is initialised.
	Warnings []string
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsProduction returns true when the server is running in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// NewLogger builds the process logger: JSON in production, text otherwise.
func (c *Config) NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.SlogLevel()}
	if c.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		ListenAddr:    os.Getenv("LISTEN_ADDR"),
		DBProvider:    os.Getenv("DB_PROVIDER"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		TablesDir:     os.Getenv("TABLES_DIR"),
		LogLevel:      os.Getenv("LOG_LEVEL"),
		Env:           os.Getenv("ENV"),
		RunMigrations: parseBoolEnvDefault("RUN_MIGRATIONS", true),
	}

	var errs []error
	intVar := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				errs = append(errs, fmt.Errorf("%s must be a non-negative integer, got %q", key, v))
				return
			}
			*dst = n
		}
	}
	intVar("DB_MAX_OPEN_CONNS", &cfg.DBMaxOpenConns)
	intVar("DEFAULT_PER_PAGE", &cfg.DefaultPerPage)
	intVar("MAX_PER_PAGE", &cfg.MaxPerPage)
	intVar("RATE_LIMIT_BURST", &cfg.RateLimitBurst)

	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			errs = append(errs, fmt.Errorf("RATE_LIMIT_RPS must be a non-negative number, got %q", v))
		} else {
			cfg.RateLimitRPS = f
		}
	}
	if v := os.Getenv("SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("SHUTDOWN_TIMEOUT: %w", err))
		} else {
			cfg.ShutdownTimeout = d
		}
	}

	// CORS
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.CORSAllowedOrigins = compactNonEmpty(strings.Split(v, ","))
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	// Defaults
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.DBProvider == "" {
		cfg.DBProvider = "sqlite3"
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "tablekit.sqlite"
		cfg.Warnings = append(cfg.Warnings, "DATABASE_URL not set, using local tablekit.sqlite")
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	if cfg.DefaultPerPage == 0 {
		cfg.DefaultPerPage = 15
	}
	if cfg.MaxPerPage == 0 {
		cfg.MaxPerPage = 100
	}
	if cfg.DefaultPerPage > cfg.MaxPerPage {
		return nil, fmt.Errorf("DEFAULT_PER_PAGE (%d) must not exceed MAX_PER_PAGE (%d)", cfg.DefaultPerPage, cfg.MaxPerPage)
	}
	if cfg.RateLimitRPS == 0 {
		cfg.RateLimitRPS = 100
	}
	if cfg.RateLimitBurst == 0 {
		cfg.RateLimitBurst = 200
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = []string{"*"}
	}

	// Production mode: insecure defaults are fatal errors.
	if cfg.IsProduction() {
		if len(cfg.CORSAllowedOrigins) == 1 && cfg.CORSAllowedOrigins[0] == "*" {
			return nil, fmt.Errorf("CORS wildcard (*) is not allowed in production (ENV=production)")
		}
	}

	return cfg, nil
}

func parseBoolEnvDefault(key string, defaultVal bool) bool {
	v := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	if v == "" {
		return defaultVal
	}
	if v == "0" || v == "false" || v == "no" || v == "off" {
		return false
	}
	if v == "1" || v == "true" || v == "yes" || v == "on" {
		return true
	}
	return defaultVal
}

func compactNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// LoadDotEnv reads a .env file and sets any variables not already in the
// environment. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}
