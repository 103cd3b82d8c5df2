package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// SQLite DSN parameters for production hardening.
const (
	defaultBusyTimeout = "5000" // 5 seconds
	defaultSynchronous = "NORMAL"
	defaultJournalMode = "WAL"
)

// Mode selects the pool shape of a SQLite handle.
type Mode string

const (
	// ModeWrite is a single-connection pool with immediate transactions,
	// used for migrations and seeding.
	ModeWrite Mode = "write"
	// ModeRead is a small pool for concurrent table reads.
	ModeRead Mode = "read"
)

// OpenSQLite opens a *sql.DB pool for the given SQLite file path.
//
// Both modes set WAL journal, busy_timeout=5000ms, synchronous=NORMAL and
// foreign_keys=on. ModeRead uses maxOpen connections (0 means 4).
func OpenSQLite(path string, mode Mode, maxOpen int) (*sql.DB, error) {
	if mode != ModeRead && mode != ModeWrite {
		return nil, fmt.Errorf("invalid SQLite mode %q: must be \"read\" or \"write\"", mode)
	}

	db, err := sql.Open("sqlite3", buildDSN(path, mode))
	if err != nil {
		return nil, fmt.Errorf("open sqlite (%s): %w", mode, err)
	}

	switch mode {
	case ModeWrite:
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	case ModeRead:
		if maxOpen <= 0 {
			maxOpen = 4
		}
		db.SetMaxOpenConns(maxOpen)
		db.SetMaxIdleConns(maxOpen)
	}
	db.SetConnMaxLifetime(time.Hour)

	if err := ping(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite (%s): %w", mode, err)
	}
	return db, nil
}

// buildDSN constructs a SQLite DSN with hardened parameters. Parameters
// already present on path are kept.
func buildDSN(path string, mode Mode) string {
	base, query, _ := strings.Cut(path, "?")
	params, err := url.ParseQuery(query)
	if err != nil {
		params = url.Values{}
	}
	setDefault := func(k, v string) {
		if params.Get(k) == "" {
			params.Set(k, v)
		}
	}
	setDefault("_journal_mode", defaultJournalMode)
	setDefault("_busy_timeout", defaultBusyTimeout)
	setDefault("_synchronous", defaultSynchronous)
	setDefault("_foreign_keys", "on")

	if mode == ModeWrite {
		setDefault("_txlock", "immediate")
	}

	return base + "?" + params.Encode()
}

func ping(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return db.PingContext(ctx)
}
