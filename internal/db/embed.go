package db

import "embed"

// EmbedMigrations contains the SQL migrations that create and seed the demo
// tables served by the bundled table definitions.
//
//go:embed migrations/*.sql
var EmbedMigrations embed.FS
