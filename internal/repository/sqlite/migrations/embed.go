package migrations

import "embed"

// FS holds the ordered *.sql schema files applied by Run.
//
//go:embed *.sql
var FS embed.FS
