package cli

import (
	"bytes"
	"strings"
	"testing"
)

// runCLI executes a fresh root command with args and returns its stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// memoryArgs prefixes args with flags selecting the in-memory sample tables.
func memoryArgs(args ...string) []string {
	return append([]string{"--db-provider", "memory", "--config", ""}, args...)
}

// containsIgnoreCase checks if s contains substr (case-insensitive).
func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
