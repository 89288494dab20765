// Package migrations embeds the goose SQL migrations for the plans schema.
package migrations

import "embed"

// FS holds every migration at its root, as db.Migrate expects.
//
//go:embed *.sql
var FS embed.FS
