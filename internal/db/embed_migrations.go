package db

import "embed"

// MigrationFS embeds SQL migration files from internal/db/migrations.
// Applied on startup by the migrate runner.
//
//go:embed migrations/*.sql
var MigrationFS embed.FS
