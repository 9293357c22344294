// Package migrations embeds the goose SQL migrations applied at startup and
// by cmd/migrate.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
