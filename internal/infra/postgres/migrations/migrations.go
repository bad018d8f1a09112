package migrations

import "github.com/uptrace/bun/migrate"

// Migrations is registered by the timestamped files in this package; bun names each
// migration after the file that registers it.
var Migrations = migrate.NewMigrations()
