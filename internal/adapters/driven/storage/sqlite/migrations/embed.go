// Package migrations holds the numbered up/down SQL files applied by the
// SQLite store. Versions are tracked in schema_migrations.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
