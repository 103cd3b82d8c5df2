package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablekit/internal/table"
)

func TestTablesCmd(t *testing.T) {
	t.Parallel()
	out, err := runCLI(t, memoryArgs("tables")...)
	require.NoError(t, err)
	assert.Equal(t, "users\n", out)
}

func TestTablesCmd_JSON(t *testing.T) {
	t.Parallel()
	out, err := runCLI(t, memoryArgs("tables", "-o", "json")...)
	require.NoError(t, err)

	var body map[string][]string
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.Equal(t, []string{"users"}, body["tables"])
}

func TestDescribeCmd(t *testing.T) {
	t.Parallel()
	out, err := runCLI(t, memoryArgs("describe", "users")...)
	require.NoError(t, err)

	assert.Contains(t, out, "default sort: id asc, 15 per page (max 100)")
	assert.True(t, containsIgnoreCase(out, "clauses"))
	assert.Regexp(t, `name\s+Name\s+text\s+left\s+true\s+contains,equals`, out)
	assert.Regexp(t, `age\s+Age\s+numeric\s+center`, out)
}

func TestDescribeCmd_UnknownTable(t *testing.T) {
	t.Parallel()
	_, err := runCLI(t, memoryArgs("describe", "orders")...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `table "orders" not found`)
}

func TestQueryCmd_Table(t *testing.T) {
	t.Parallel()
	out, err := runCLI(t, memoryArgs("query", "users", "--filter", "name:contains:an", "--sort", "-id", "--per-page", "3")...)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5, out)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.True(t, strings.HasPrefix(lines[1], "10 "))
	assert.True(t, strings.HasPrefix(lines[2], "9 "))
	assert.True(t, strings.HasPrefix(lines[3], "8 "))
	assert.Contains(t, lines[4], "page 1 of 3, 9 rows")
	assert.Contains(t, lines[4], "next cursor")
}

func TestQueryCmd_JSON(t *testing.T) {
	t.Parallel()
	out, err := runCLI(t, memoryArgs("query", "users", "--filter", "age:between:30,40", "--filter", "active:true", "-o", "json")...)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.Len(t, body["rows"], 5)
	filters := body["state"].(map[string]any)["filters"].([]any)
	assert.Equal(t, map[string]any{"column": "active", "clause": "equals", "value": "true"}, filters[1])
}

func TestQueryCmd_UnsupportedClause(t *testing.T) {
	t.Parallel()
	_, err := runCLI(t, memoryArgs("query", "users", "--filter", "email:greater_than:a")...)
	require.Error(t, err)
	assert.Equal(t, "Unsupported clause [greater_than]", err.Error())
}

func TestFilterFlag_Set(t *testing.T) {
	t.Parallel()
	var f filterFlag
	require.NoError(t, f.Set("created_at:greater_than:2024-03-01T00:00:00Z"))
	require.NoError(t, f.Set("active:false"))
	assert.Equal(t, []table.RawFilter{
		{Column: "created_at", Clause: "greater_than", Value: "2024-03-01T00:00:00Z"},
		{Column: "active", Clause: "equals", Value: "false"},
	}, f.filters)
	assert.Equal(t, "filter", f.Type())

	assert.Error(t, f.Set("nocolon"))
	assert.Error(t, f.Set(":equals:x"))
}

func TestRootCmd_RejectsUnknownOutput(t *testing.T) {
	t.Parallel()
	_, err := runCLI(t, memoryArgs("tables", "-o", "yaml")...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format")
}

func TestRootCmd_ReadsConfigFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "tablectl.yaml")
	require.NoError(t, os.WriteFile(path, []byte("db_provider: memory\noutput: json\n"), 0o600))

	out, err := runCLI(t, "--config", path, "tables")
	require.NoError(t, err)
	assert.JSONEq(t, `{"tables":["users"]}`, out)
}

func TestMigrateAndValidateCmd_SQLite(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "cli.sqlite")
	defsDir := filepath.Join(dir, "tables")
	require.NoError(t, os.Mkdir(defsDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(defsDir, "posts.yaml"), []byte(`
name: posts
default_sort: { column: id, direction: desc }
columns:
  - { key: id, type: numeric, sortable: true }
  - { key: status, type: text, clauses: [equals, in] }
`), 0o600))

	base := []string{"--config", "", "--db-provider", "sqlite3", "--database-url", dbPath}

	out, err := runCLI(t, append(base, "migrate")...)
	require.NoError(t, err)
	assert.Contains(t, out, "migrated")

	out, err = runCLI(t, append(base, "validate", defsDir)...)
	require.NoError(t, err)
	assert.Contains(t, out, "ok posts")

	out, err = runCLI(t, append(base, "--tables-dir", defsDir, "query", "posts", "--filter", "status:in:draft,archived", "-o", "json")...)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.Len(t, body["rows"], 2)
}
