package migrations

import "embed"

// FS holds the versioned SQL migrations, V<n>__<name>.sql.
//
//go:embed *.sql
var FS embed.FS
