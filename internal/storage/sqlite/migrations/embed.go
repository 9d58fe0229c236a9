package migrations

import "embed"

// FS contains embedded SQLite migrations for luck pool storage.
//
//go:embed *.sql
var FS embed.FS
