package migrations

import "embed"

// FS holds the goose SQL migrations of the cars_bot schema.
//
//go:embed *.sql
var FS embed.FS
