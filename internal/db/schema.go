package db

import (
	"context"
	"fmt"
	"strings"
)

// SchemaBuilder renders and executes dialect-specific SQL so the
// bookmark and recent-file stores can be written once against portable
// column definitions.
type SchemaBuilder struct {
	db      DB
	dialect Dialect
}

// NewSchemaBuilder wraps a database handle with a dialect.
func NewSchemaBuilder(db DB, dialect Dialect) *SchemaBuilder {
	return &SchemaBuilder{db: db, dialect: dialect}
}

// Dialect returns the SQL dialect the builder renders for.
func (s *SchemaBuilder) Dialect() Dialect {
	return s.dialect
}

// RunInitStatements executes the dialect's per-connection setup, such
// as SQLite pragmas. Call once right after opening.
func (s *SchemaBuilder) RunInitStatements(ctx context.Context) error {
	for _, stmt := range s.dialect.InitStatements() {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init statement %q: %w", stmt, err)
		}
	}
	return nil
}

// CreateTable creates the table when it does not exist yet.
func (s *SchemaBuilder) CreateTable(ctx context.Context, table string, columns []ColumnDef) error {
	_, err := s.db.ExecContext(ctx, s.dialect.CreateTableSQL(table, columns))
	return err
}

// CreateIndex creates the index when it does not exist yet.
func (s *SchemaBuilder) CreateIndex(ctx context.Context, table, indexName string, columns []string, unique bool) error {
	_, err := s.db.ExecContext(ctx, s.dialect.CreateIndexSQL(table, indexName, columns, unique))
	return err
}

// UpsertBatch inserts every row inside one transaction with the
// dialect's ON CONFLICT handling. conflictColumns define uniqueness; a
// nil updateColumns updates every non-conflict column on collision.
func (s *SchemaBuilder) UpsertBatch(ctx context.Context, table string, columns, conflictColumns, updateColumns []string, rows [][]any) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.Prepare(s.dialect.UpsertSQL(table, columns, conflictColumns, updateColumns))
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, row := range rows {
		if len(row) != len(columns) {
			return fmt.Errorf("row %d: expected %d values, got %d", i, len(columns), len(row))
		}
		if _, err := stmt.Exec(row...); err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// SubstitutePlaceholders rewrites ? markers into the dialect's
// parameter syntax, so store SQL can be written once in the SQLite
// style and still run on Postgres ($1, $2, ...).
func (s *SchemaBuilder) SubstitutePlaceholders(sql string) string {
	if s.dialect.Placeholder(1) == "?" {
		return sql
	}

	var out strings.Builder
	out.Grow(len(sql))
	next := 1
	for _, ch := range sql {
		if ch == '?' {
			out.WriteString(s.dialect.Placeholder(next))
			next++
			continue
		}
		out.WriteRune(ch)
	}
	return out.String()
}

// QueryBuilder assembles a SELECT statement piece by piece. Conditions
// carry raw SQL; run them through SubstitutePlaceholders when they use
// ? markers.
type QueryBuilder struct {
	schema *SchemaBuilder
	table  string
	cols   []string
	where  []string
	args   []any
	order  string
	limit  int
}

// Query starts a SELECT against the given table.
func (s *SchemaBuilder) Query(table string) *QueryBuilder {
	return &QueryBuilder{schema: s, table: table}
}

// Select names the columns to return; the default is every column.
func (q *QueryBuilder) Select(cols ...string) *QueryBuilder {
	q.cols = cols
	return q
}

// Where appends a condition; multiple conditions are ANDed.
func (q *QueryBuilder) Where(condition string, args ...any) *QueryBuilder {
	q.where = append(q.where, condition)
	q.args = append(q.args, args...)
	return q
}

// OrderBy sets the ORDER BY clause.
func (q *QueryBuilder) OrderBy(order string) *QueryBuilder {
	q.order = order
	return q
}

// Limit caps the result rows; zero means unlimited.
func (q *QueryBuilder) Limit(n int) *QueryBuilder {
	q.limit = n
	return q
}

// SQL renders the assembled statement.
func (q *QueryBuilder) SQL() string {
	var sql strings.Builder
	sql.WriteString("SELECT ")
	if len(q.cols) == 0 {
		sql.WriteString("*")
	} else {
		sql.WriteString(strings.Join(q.cols, ", "))
	}
	sql.WriteString(" FROM ")
	sql.WriteString(q.table)

	if len(q.where) > 0 {
		sql.WriteString(" WHERE ")
		sql.WriteString(strings.Join(q.where, " AND "))
	}
	if q.order != "" {
		sql.WriteString(" ORDER BY ")
		sql.WriteString(q.order)
	}
	if q.limit > 0 {
		fmt.Fprintf(&sql, " LIMIT %d", q.limit)
	}
	return sql.String()
}

// Exec runs the query and returns its rows.
func (q *QueryBuilder) Exec(ctx context.Context) (Rows, error) {
	return q.schema.db.QueryContext(ctx, q.SQL(), q.args...)
}

// ExecRow runs the query expecting a single row.
func (q *QueryBuilder) ExecRow(ctx context.Context) Row {
	return q.schema.db.QueryRowContext(ctx, q.SQL(), q.args...)
}
