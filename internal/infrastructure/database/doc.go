// Package database provides SQLite connectivity for the Codeshelf
// location service.
//
// It owns the connection (WAL mode, busy timeout, single writer) and a
// small forward/backward migration runner. Schema files live in the
// top-level migrations package, which registers them through
// MigrationsFS at init time.
//
// Usage:
//
//	db, err := database.Open(cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
//
// Migration files are named YYYYMMDD_HHMMSS_description.up.sql with a
// matching .down.sql. Each is applied in its own transaction and recorded
// in schema_migrations.
package database
