//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tablekit/internal/app"
	"tablekit/internal/config"
)

// testEnv is a running table server over a migrated SQLite file.
type testEnv struct {
	Server *httptest.Server
	App    *app.App
}

func projectRoot() string {
	_, thisFile, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(thisFile), "..", "..")
}

// setupIntegrationServer migrates a fresh SQLite database, registers the
// built-in users table plus the YAML tables shipped in tables/ and serves
// them over HTTP.
func setupIntegrationServer(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{
		DBProvider:         "sqlite3",
		DatabaseURL:        filepath.Join(t.TempDir(), "integration.sqlite"),
		RunMigrations:      true,
		TablesDir:          filepath.Join(projectRoot(), "tables"),
		DefaultPerPage:     15,
		MaxPerPage:         100,
		RateLimitRPS:       1000,
		RateLimitBurst:     1000,
		CORSAllowedOrigins: []string{"*"},
		ShutdownTimeout:    5 * time.Second,
	}
	logger := slog.New(slog.DiscardHandler)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	conn, dialect, err := app.OpenDatabase(ctx, cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	a, err := app.New(ctx, app.Deps{Cfg: cfg, DB: conn, Dialect: dialect, Logger: logger})
	require.NoError(t, err)

	srv := httptest.NewServer(a.Router(ctx))
	t.Cleanup(srv.Close)
	return &testEnv{Server: srv, App: a}
}

// doRequest sends a request with an optional JSON body and decodes the JSON
// response into a map.
func doRequest(t *testing.T, method, url string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

// rowIDs extracts the id column of a rendered table payload.
func rowIDs(t *testing.T, payload map[string]any) []int {
	t.Helper()
	rows, ok := payload["rows"].([]any)
	require.True(t, ok, "rows missing from payload: %v", payload)
	ids := make([]int, len(rows))
	for i, r := range rows {
		ids[i] = int(r.(map[string]any)["id"].(float64))
	}
	return ids
}
