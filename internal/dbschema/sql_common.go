package dbschema

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// sqlConnector is the shared implementation for MySQL, Postgres, and SQLite.
type sqlConnector struct {
	driverName string
	db         *sql.DB
}

// newSQLConnector opens a generic SQL connection.
func newSQLConnector(driverName, dsn string) (*sqlConnector, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driverName, err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(10 * time.Minute)

	return &sqlConnector{driverName: driverName, db: db}, nil
}

func (c *sqlConnector) TestConnection(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return c.db.PingContext(ctx)
}

func (c *sqlConnector) Close() error {
	return c.db.Close()
}

func (c *sqlConnector) Introspect(ctx context.Context) (Schema, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	switch c.driverName {
	case DriverSQLite:
		return c.introspectSQLite(ctx)
	case DriverPostgres:
		return c.introspectPostgres(ctx)
	default:
		return c.introspectMySQL(ctx)
	}
}

// ── SQLite: sqlite_master + PRAGMAs ────────────────────────

func (c *sqlConnector) introspectSQLite(ctx context.Context) (Schema, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var tableNames []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			continue
		}
		tableNames = append(tableNames, name)
	}

	schema := Schema{}
	for _, tbl := range tableNames {
		ts := TableSchema{Columns: []Column{}, ForeignKeys: []ForeignKey{}}

		colRows, err := c.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info('%s')", tbl))
		if err != nil {
			schema[tbl] = ts
			continue
		}
		for colRows.Next() {
			var cid int
			var name, colType string
			var notNull, pk int
			var dfltValue sql.NullString
			if err := colRows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
				continue
			}
			col := Column{
				Name:       name,
				Type:       colType,
				Nullable:   notNull == 0,
				PrimaryKey: pk > 0,
			}
			if dfltValue.Valid {
				col.Default = dfltValue.String
			}
			ts.Columns = append(ts.Columns, col)
		}
		colRows.Close()

		ts.ForeignKeys = c.sqliteForeignKeys(ctx, tbl)
		schema[tbl] = ts
	}

	return schema, nil
}

func (c *sqlConnector) sqliteForeignKeys(ctx context.Context, table string) []ForeignKey {
	rows, err := c.db.QueryContext(ctx, fmt.Sprintf("PRAGMA foreign_key_list('%s')", table))
	if err != nil {
		return []ForeignKey{}
	}
	defer rows.Close()

	// foreign_key_list groups multi-column constraints by id, one row per column.
	byID := map[int]*ForeignKey{}
	var order []int
	for rows.Next() {
		var id, seq int
		var refTable, from, to string
		var onUpdate, onDelete, match string
		if err := rows.Scan(&id, &seq, &refTable, &from, &to, &onUpdate, &onDelete, &match); err != nil {
			continue
		}
		fk, ok := byID[id]
		if !ok {
			fk = &ForeignKey{ReferredTable: refTable}
			byID[id] = fk
			order = append(order, id)
		}
		fk.ConstrainedColumns = append(fk.ConstrainedColumns, from)
		fk.ReferredColumns = append(fk.ReferredColumns, to)
	}

	fks := []ForeignKey{}
	for _, id := range order {
		fks = append(fks, *byID[id])
	}
	return fks
}

// ── MySQL: INFORMATION_SCHEMA ──────────────────────────────

func (c *sqlConnector) introspectMySQL(ctx context.Context) (Schema, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT TABLE_NAME FROM INFORMATION_SCHEMA.TABLES
		 WHERE TABLE_SCHEMA = DATABASE() ORDER BY TABLE_NAME`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var tableNames []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			continue
		}
		tableNames = append(tableNames, name)
	}

	schema := Schema{}
	for _, tbl := range tableNames {
		ts := TableSchema{Columns: []Column{}, ForeignKeys: []ForeignKey{}}

		colRows, err := c.db.QueryContext(ctx,
			`SELECT COLUMN_NAME, DATA_TYPE, IS_NULLABLE, COLUMN_KEY, COLUMN_DEFAULT
			 FROM INFORMATION_SCHEMA.COLUMNS
			 WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ?
			 ORDER BY ORDINAL_POSITION`, tbl)
		if err != nil {
			schema[tbl] = ts
			continue
		}
		for colRows.Next() {
			var name, dataType, isNullable, columnKey string
			var dflt sql.NullString
			if err := colRows.Scan(&name, &dataType, &isNullable, &columnKey, &dflt); err != nil {
				continue
			}
			col := Column{
				Name:       name,
				Type:       dataType,
				Nullable:   isNullable == "YES",
				PrimaryKey: columnKey == "PRI",
			}
			if dflt.Valid {
				col.Default = dflt.String
			}
			ts.Columns = append(ts.Columns, col)
		}
		colRows.Close()

		ts.ForeignKeys = c.mysqlForeignKeys(ctx, tbl)
		schema[tbl] = ts
	}

	return schema, nil
}

func (c *sqlConnector) mysqlForeignKeys(ctx context.Context, table string) []ForeignKey {
	rows, err := c.db.QueryContext(ctx,
		`SELECT CONSTRAINT_NAME, COLUMN_NAME, REFERENCED_TABLE_NAME, REFERENCED_COLUMN_NAME
		 FROM INFORMATION_SCHEMA.KEY_COLUMN_USAGE
		 WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ?
		   AND REFERENCED_TABLE_NAME IS NOT NULL
		 ORDER BY CONSTRAINT_NAME, ORDINAL_POSITION`, table)
	if err != nil {
		return []ForeignKey{}
	}
	defer rows.Close()

	byName := map[string]*ForeignKey{}
	var order []string
	for rows.Next() {
		var constraint, column, refTable, refColumn string
		if err := rows.Scan(&constraint, &column, &refTable, &refColumn); err != nil {
			continue
		}
		fk, ok := byName[constraint]
		if !ok {
			fk = &ForeignKey{ReferredTable: refTable}
			byName[constraint] = fk
			order = append(order, constraint)
		}
		fk.ConstrainedColumns = append(fk.ConstrainedColumns, column)
		fk.ReferredColumns = append(fk.ReferredColumns, refColumn)
	}

	fks := []ForeignKey{}
	for _, name := range order {
		fks = append(fks, *byName[name])
	}
	return fks
}

// ── Postgres: information_schema + constraint joins ────────

func (c *sqlConnector) introspectPostgres(ctx context.Context) (Schema, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT table_name FROM information_schema.tables
		 WHERE table_schema = 'public' AND table_type = 'BASE TABLE'
		 ORDER BY table_name`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var tableNames []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			continue
		}
		tableNames = append(tableNames, name)
	}

	schema := Schema{}
	for _, tbl := range tableNames {
		ts := TableSchema{Columns: []Column{}, ForeignKeys: []ForeignKey{}}

		pks := c.postgresPrimaryKeys(ctx, tbl)

		colRows, err := c.db.QueryContext(ctx,
			`SELECT column_name, data_type, is_nullable, column_default
			 FROM information_schema.columns
			 WHERE table_schema = 'public' AND table_name = $1
			 ORDER BY ordinal_position`, tbl)
		if err != nil {
			schema[tbl] = ts
			continue
		}
		for colRows.Next() {
			var name, dataType, isNullable string
			var dflt sql.NullString
			if err := colRows.Scan(&name, &dataType, &isNullable, &dflt); err != nil {
				continue
			}
			col := Column{
				Name:       name,
				Type:       dataType,
				Nullable:   isNullable == "YES",
				PrimaryKey: pks[name],
			}
			if dflt.Valid {
				col.Default = dflt.String
			}
			ts.Columns = append(ts.Columns, col)
		}
		colRows.Close()

		ts.ForeignKeys = c.postgresForeignKeys(ctx, tbl)
		schema[tbl] = ts
	}

	return schema, nil
}

func (c *sqlConnector) postgresPrimaryKeys(ctx context.Context, table string) map[string]bool {
	pks := map[string]bool{}
	rows, err := c.db.QueryContext(ctx,
		`SELECT kcu.column_name
		 FROM information_schema.table_constraints tc
		 JOIN information_schema.key_column_usage kcu
		   ON tc.constraint_name = kcu.constraint_name
		 WHERE tc.table_schema = 'public' AND tc.table_name = $1
		   AND tc.constraint_type = 'PRIMARY KEY'`, table)
	if err != nil {
		return pks
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if rows.Scan(&name) == nil {
			pks[name] = true
		}
	}
	return pks
}

func (c *sqlConnector) postgresForeignKeys(ctx context.Context, table string) []ForeignKey {
	rows, err := c.db.QueryContext(ctx,
		`SELECT tc.constraint_name, kcu.column_name, ccu.table_name, ccu.column_name
		 FROM information_schema.table_constraints tc
		 JOIN information_schema.key_column_usage kcu
		   ON tc.constraint_name = kcu.constraint_name
		 JOIN information_schema.constraint_column_usage ccu
		   ON tc.constraint_name = ccu.constraint_name
		 WHERE tc.table_schema = 'public' AND tc.table_name = $1
		   AND tc.constraint_type = 'FOREIGN KEY'
		 ORDER BY tc.constraint_name, kcu.ordinal_position`, table)
	if err != nil {
		return []ForeignKey{}
	}
	defer rows.Close()

	byName := map[string]*ForeignKey{}
	var order []string
	for rows.Next() {
		var constraint, column, refTable, refColumn string
		if err := rows.Scan(&constraint, &column, &refTable, &refColumn); err != nil {
			continue
		}
		fk, ok := byName[constraint]
		if !ok {
			fk = &ForeignKey{ReferredTable: refTable}
			byName[constraint] = fk
			order = append(order, constraint)
		}
		fk.ConstrainedColumns = append(fk.ConstrainedColumns, column)
		fk.ReferredColumns = append(fk.ReferredColumns, refColumn)
	}

	fks := []ForeignKey{}
	for _, name := range order {
		fks = append(fks, *byName[name])
	}
	return fks
}
