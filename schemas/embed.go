// Package schemas provides embedded SQL migration files, one directory per database driver.
package schemas

import "embed"

// Migrations contains migrations/<driver>/<version>_<name>.sql files.
//
//go:embed migrations/*/*.sql
var Migrations embed.FS
