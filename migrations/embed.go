// Package migrations embeds the SQL migration files for every supported
// storage backend. Callers pick a dialect subtree with fs.Sub.
package migrations

import "embed"

//go:embed sqlite postgres
var FS embed.FS
