// Package migrations embeds the postgres read schema.
package migrations

import "embed"

//go:embed *.sql
var Files embed.FS
