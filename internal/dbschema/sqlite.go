package dbschema

import (
	_ "modernc.org/sqlite"
)

// newSQLiteConnector creates a connector for a SQLite file.
// Opens in WAL mode with busy timeout for concurrent access.
func newSQLiteConnector(cfg Config) (*sqlConnector, error) {
	dsn := cfg.Host + "?_journal_mode=WAL&_busy_timeout=5000"
	return newSQLConnector(DriverSQLite, dsn)
}
