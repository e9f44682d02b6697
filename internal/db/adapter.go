// Package db is the persistence layer: a thin adapter over database/sql
// with a dialect abstraction so stores written against it run on an
// embedded SQLite file or a shared Postgres instance.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported drivers.
const (
	// DriverModernc is the pure-Go SQLite driver (modernc.org/sqlite).
	DriverModernc = "modernc"
	// DriverPostgres connects to a PostgreSQL server via lib/pq.
	DriverPostgres = "postgres"
)

// Config selects and tunes the backing database.
type Config struct {
	// Driver names the backend; empty means DriverModernc.
	Driver string
	// Path is the SQLite file path, or ":memory:".
	Path string
	// DSN is the Postgres connection string. Ignored by SQLite.
	DSN string
	// EnableWAL switches SQLite journaling to write-ahead mode.
	EnableWAL bool
}

// DefaultConfig returns a SQLite configuration for the given path.
func DefaultConfig(path string) Config {
	return Config{
		Driver:    DriverModernc,
		Path:      path,
		EnableWAL: true,
	}
}

// Dialect returns the SQL dialect matching the configured driver.
func (c Config) Dialect() Dialect {
	if c.Driver == DriverPostgres {
		return &PostgresDialect{}
	}
	return &SQLiteDialect{}
}

// Aliases over database/sql so callers stay on the DB interface.
type (
	Result = sql.Result
	Rows   = *sql.Rows
	Row    = *sql.Row
	Tx     = *sql.Tx
)

// DB is the database handle the stores are written against.
type DB interface {
	Exec(query string, args ...any) (Result, error)
	ExecContext(ctx context.Context, query string, args ...any) (Result, error)
	Query(query string, args ...any) (Rows, error)
	QueryContext(ctx context.Context, query string, args ...any) (Rows, error)
	QueryRow(query string, args ...any) Row
	QueryRowContext(ctx context.Context, query string, args ...any) Row
	Begin() (Tx, error)
	BeginTx(ctx context.Context, opts *sql.TxOptions) (Tx, error)
	Ping() error
	Close() error
}

// Open opens the database selected by cfg.
func Open(cfg Config) (DB, error) {
	switch cfg.Driver {
	case DriverModernc, "":
		return OpenModernc(cfg)
	case DriverPostgres:
		return OpenPostgres(cfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// SQLDB adapts a raw database/sql handle to the DB interface.
type SQLDB struct {
	db *sql.DB
}

// WrapSQL wraps an already-open handle. The caller keeps ownership of
// its lifecycle.
func WrapSQL(db *sql.DB) *SQLDB {
	return &SQLDB{db: db}
}

// Unwrap returns the underlying database/sql handle.
func (s *SQLDB) Unwrap() *sql.DB { return s.db }

func (s *SQLDB) Exec(query string, args ...any) (Result, error) {
	return s.db.Exec(query, args...)
}

func (s *SQLDB) ExecContext(ctx context.Context, query string, args ...any) (Result, error) {
	return s.db.ExecContext(ctx, query, args...)
}

func (s *SQLDB) Query(query string, args ...any) (Rows, error) {
	return s.db.Query(query, args...)
}

func (s *SQLDB) QueryContext(ctx context.Context, query string, args ...any) (Rows, error) {
	return s.db.QueryContext(ctx, query, args...)
}

func (s *SQLDB) QueryRow(query string, args ...any) Row {
	return s.db.QueryRow(query, args...)
}

func (s *SQLDB) QueryRowContext(ctx context.Context, query string, args ...any) Row {
	return s.db.QueryRowContext(ctx, query, args...)
}

func (s *SQLDB) Begin() (Tx, error) { return s.db.Begin() }

func (s *SQLDB) BeginTx(ctx context.Context, opts *sql.TxOptions) (Tx, error) {
	return s.db.BeginTx(ctx, opts)
}

func (s *SQLDB) Ping() error { return s.db.Ping() }

func (s *SQLDB) Close() error { return s.db.Close() }

// ModerncDB is a SQLite handle backed by the pure-Go modernc driver.
type ModerncDB struct {
	SQLDB
}

// OpenModernc opens (creating if needed) a SQLite database at cfg.Path.
// Parent directories are created for file databases.
func OpenModernc(cfg Config) (*ModerncDB, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite path is empty")
	}
	if cfg.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	raw, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	// The modernc driver serializes writers; a single connection avoids
	// SQLITE_BUSY under concurrent store access.
	raw.SetMaxOpenConns(1)

	if err := raw.Ping(); err != nil {
		raw.Close()
		return nil, fmt.Errorf("pinging sqlite database: %w", err)
	}

	if cfg.EnableWAL && cfg.Path != ":memory:" {
		if _, err := raw.Exec("PRAGMA journal_mode=WAL"); err != nil {
			raw.Close()
			return nil, fmt.Errorf("enabling WAL mode: %w", err)
		}
	}

	return &ModerncDB{SQLDB{db: raw}}, nil
}

// OpenPostgres opens a connection pool for cfg.DSN. The connection is
// established lazily; call Ping to verify reachability.
func OpenPostgres(cfg Config) (*SQLDB, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("postgres dsn is empty")
	}
	raw, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("opening postgres database: %w", err)
	}
	return &SQLDB{db: raw}, nil
}
