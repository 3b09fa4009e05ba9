package dbschema

import (
	"context"
	"fmt"
)

// Driver names accepted by the factory.
const (
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverMongoDB  = "mongodb"
)

// Config describes a metadata database to introspect.
type Config struct {
	Driver   string `json:"driver"`
	Host     string `json:"host"` // file path for sqlite, URI or host for mongodb
	Port     int    `json:"port"`
	Database string `json:"database"`
	Username string `json:"username"`
	Password string `json:"-"`
	SSLMode  string `json:"ssl_mode"`
}

// Column describes one column of an introspected table.
type Column struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Nullable   bool   `json:"nullable"`
	PrimaryKey bool   `json:"primary_key"`
	Default    any    `json:"default"`
}

// ForeignKey describes a foreign key constraint of a table.
type ForeignKey struct {
	ConstrainedColumns []string `json:"constrained_columns"`
	ReferredTable      string   `json:"referred_table"`
	ReferredColumns    []string `json:"referred_columns"`
}

// TableSchema is everything known about one table.
type TableSchema struct {
	Columns     []Column     `json:"columns"`
	ForeignKeys []ForeignKey `json:"foreign_keys"`
}

// Schema maps table name to its description.
type Schema map[string]TableSchema

// Connector abstracts schema access to an external database.
type Connector interface {
	// TestConnection verifies connectivity.
	TestConnection(ctx context.Context) error

	// Introspect returns the full table schema of the database.
	Introspect(ctx context.Context) (Schema, error)

	// Close closes the connection.
	Close() error
}

// NewConnector creates a Connector for the given configuration.
func NewConnector(cfg Config) (Connector, error) {
	switch cfg.Driver {
	case DriverSQLite:
		return newSQLiteConnector(cfg)
	case DriverMySQL:
		return newSQLConnector(DriverMySQL, buildMySQLDSN(cfg))
	case DriverPostgres:
		return newSQLConnector(DriverPostgres, buildPostgresDSN(cfg))
	case DriverMongoDB:
		return newMongoConnector(cfg)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", cfg.Driver)
	}
}
