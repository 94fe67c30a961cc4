// Package migrations embeds the identity service's PostgreSQL schema.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
