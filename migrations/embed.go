// Package migrations embeds the SQL schema files the server applies on boot
// when a database is configured.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
