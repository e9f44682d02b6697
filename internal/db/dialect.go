package db

import (
	"fmt"
	"strings"
)

// ColType is a portable column type mapped to backend types per dialect.
type ColType string

const (
	ColInteger   ColType = "integer"
	ColText      ColType = "text"
	ColReal      ColType = "real"
	ColBlob      ColType = "blob"
	ColBool      ColType = "bool"
	ColTimestamp ColType = "timestamp"
)

// ColumnDef describes one column of a store table.
type ColumnDef struct {
	Name       string
	Type       ColType
	PrimaryKey bool
	AutoIncr   bool
	NotNull    bool
	Default    string
}

// Dialect generates backend-specific SQL.
type Dialect interface {
	Name() string

	// Placeholder returns the parameter marker for the 1-indexed
	// position idx.
	Placeholder(idx int) string

	ColumnType(t ColType) string
	CreateTableSQL(table string, columns []ColumnDef) string
	CreateIndexSQL(table, indexName string, columns []string, unique bool) string

	// UpsertSQL builds an insert with ON CONFLICT handling. A nil
	// updateColumns updates every non-conflict column; an empty one
	// turns conflicts into no-ops.
	UpsertSQL(table string, columns, conflictColumns, updateColumns []string) string

	// InitStatements are run once after opening a connection.
	InitStatements() []string
}

// SQLiteDialect targets SQLite (the modernc driver).
type SQLiteDialect struct{}

func (d *SQLiteDialect) Name() string { return "sqlite" }

func (d *SQLiteDialect) Placeholder(int) string { return "?" }

func (d *SQLiteDialect) ColumnType(t ColType) string {
	switch t {
	case ColInteger, ColBool:
		return "INTEGER"
	case ColReal:
		return "REAL"
	case ColBlob:
		return "BLOB"
	default:
		// Timestamps are stored as ISO-8601 text.
		return "TEXT"
	}
}

func (d *SQLiteDialect) CreateTableSQL(table string, columns []ColumnDef) string {
	defs := make([]string, 0, len(columns))
	for _, col := range columns {
		if col.AutoIncr {
			defs = append(defs, col.Name+" INTEGER PRIMARY KEY AUTOINCREMENT")
			continue
		}
		defs = append(defs, columnDefSQL(d, col))
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", table, strings.Join(defs, ", "))
}

func (d *SQLiteDialect) CreateIndexSQL(table, indexName string, columns []string, unique bool) string {
	return indexSQL(table, indexName, columns, unique)
}

func (d *SQLiteDialect) UpsertSQL(table string, columns, conflictColumns, updateColumns []string) string {
	return upsertSQL(d, table, columns, conflictColumns, updateColumns)
}

func (d *SQLiteDialect) InitStatements() []string {
	return []string{
		"PRAGMA foreign_keys=ON",
		"PRAGMA synchronous=NORMAL",
	}
}

// PostgresDialect targets PostgreSQL via lib/pq.
type PostgresDialect struct{}

func (d *PostgresDialect) Name() string { return "postgres" }

func (d *PostgresDialect) Placeholder(idx int) string { return fmt.Sprintf("$%d", idx) }

func (d *PostgresDialect) ColumnType(t ColType) string {
	switch t {
	case ColInteger:
		return "BIGINT"
	case ColReal:
		return "DOUBLE PRECISION"
	case ColBlob:
		return "BYTEA"
	case ColBool:
		return "BOOLEAN"
	case ColTimestamp:
		return "TIMESTAMPTZ"
	default:
		return "TEXT"
	}
}

func (d *PostgresDialect) CreateTableSQL(table string, columns []ColumnDef) string {
	defs := make([]string, 0, len(columns))
	for _, col := range columns {
		if col.AutoIncr {
			defs = append(defs, col.Name+" BIGSERIAL PRIMARY KEY")
			continue
		}
		defs = append(defs, columnDefSQL(d, col))
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", table, strings.Join(defs, ", "))
}

func (d *PostgresDialect) CreateIndexSQL(table, indexName string, columns []string, unique bool) string {
	return indexSQL(table, indexName, columns, unique)
}

func (d *PostgresDialect) UpsertSQL(table string, columns, conflictColumns, updateColumns []string) string {
	return upsertSQL(d, table, columns, conflictColumns, updateColumns)
}

func (d *PostgresDialect) InitStatements() []string { return nil }

func columnDefSQL(d Dialect, col ColumnDef) string {
	def := col.Name + " " + d.ColumnType(col.Type)
	if col.PrimaryKey {
		def += " PRIMARY KEY"
	}
	if col.NotNull {
		def += " NOT NULL"
	}
	if col.Default != "" {
		def += " DEFAULT " + col.Default
	}
	return def
}

func indexSQL(table, indexName string, columns []string, unique bool) string {
	kind := "INDEX"
	if unique {
		kind = "UNIQUE INDEX"
	}
	return fmt.Sprintf("CREATE %s IF NOT EXISTS %s ON %s (%s)",
		kind, indexName, table, strings.Join(columns, ", "))
}

// upsertSQL builds the shared insert-or-update shape. Both backends
// accept the excluded pseudo-table for conflict updates.
func upsertSQL(d Dialect, table string, columns, conflictColumns, updateColumns []string) string {
	placeholders := make([]string, len(columns))
	for i := range columns {
		placeholders[i] = d.Placeholder(i + 1)
	}
	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(columns, ", "), strings.Join(placeholders, ", "))

	if len(conflictColumns) == 0 {
		return sql
	}

	if updateColumns == nil {
		conflict := make(map[string]bool, len(conflictColumns))
		for _, c := range conflictColumns {
			conflict[c] = true
		}
		for _, c := range columns {
			if !conflict[c] {
				updateColumns = append(updateColumns, c)
			}
		}
	}

	if len(updateColumns) == 0 {
		return sql + fmt.Sprintf(" ON CONFLICT (%s) DO NOTHING", strings.Join(conflictColumns, ", "))
	}

	sets := make([]string, len(updateColumns))
	for i, c := range updateColumns {
		sets[i] = fmt.Sprintf("%s = excluded.%s", c, c)
	}
	return sql + fmt.Sprintf(" ON CONFLICT (%s) DO UPDATE SET %s",
		strings.Join(conflictColumns, ", "), strings.Join(sets, ", "))
}
