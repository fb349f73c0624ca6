// AngelaMos | 2026
// migrations.go

package migrations

import "embed"

// FS holds the schema files applied at startup, in lexical order.
//
//go:embed *.sql
var FS embed.FS
