// Package migrations хранит SQL миграции solver-svc для goose
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
