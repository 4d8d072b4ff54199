// Package migrations embeds the SQL files goose applies to bootstrap
// the metrics schema, mirroring the teacher's internal/db/migrations.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
