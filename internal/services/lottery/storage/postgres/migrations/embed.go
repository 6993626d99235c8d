package migrations

import "embed"

// FS contains embedded Postgres migrations for lottery storage.
//
//go:embed *.sql
var FS embed.FS
