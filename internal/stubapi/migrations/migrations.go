// Package migrations embeds the stub service's schema migrations.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
