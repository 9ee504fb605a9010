// Package migrations embeds the SQL schema for the facility store so the
// binary can migrate a database without the files on disk.
package migrations

import (
	"embed"

	"github.com/codeshelf/Codeshelf-sub002/internal/infrastructure/database"
)

//go:embed *.sql
var migrationsFS embed.FS

func init() {
	database.MigrationsFS = migrationsFS
	database.MigrationsDir = "."
}
