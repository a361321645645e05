// Package database provides SQLite connection management for RoofSentry.
//
// This package manages:
//   - Opening and configuring the SQLite database (WAL mode, busy timeout)
//   - Embedded schema migrations applied at startup
//   - Health checks and lifecycle management
//
// The database is optional at runtime (database.enabled in config.yaml);
// it stores the safety decision history used for diagnostics and the
// setup page. The authoritative roof status record remains the
// append-only status log owned by internal/safety.
//
// Usage:
//
//	db, err := database.Open(database.Config{Path: "./data/roofsentry.db", WALMode: true, BusyTimeout: 5})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//	if err := db.Migrate(ctx); err != nil {
//	    log.Fatal(err)
//	}
package database
