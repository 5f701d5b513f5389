// Package migrations embeds the goose SQL migrations of the local store.
//
// Every step is additive: new columns carry defaults so that rows written by
// an older schema are filled in by SQLite itself. Version 0 is an empty file.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS

// CurrentVersion is the schema version a fully migrated store is stamped with.
const CurrentVersion int64 = 3
