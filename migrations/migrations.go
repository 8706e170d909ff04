// Package migrations embeds the goose migrations so binaries can migrate
// without the source tree on disk.
package migrations

import "embed"

// Core holds the migrations for the core database, rooted at "core".
//
//go:embed core/*.sql
var Core embed.FS
