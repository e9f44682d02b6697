package recent

import (
	"context"
	"fmt"

	"scriptmap/internal/db"
)

const tableRecent = "recent_files"

// Store persists the recent file list.
type Store struct {
	db     db.DB
	schema *db.SchemaBuilder
}

// NewStore returns a store over the given database handle.
func NewStore(database db.DB, dialect db.Dialect) *Store {
	return &Store{
		db:     database,
		schema: db.NewSchemaBuilder(database, dialect),
	}
}

// Init creates the recent_files table when missing.
func (s *Store) Init(ctx context.Context) error {
	cols := []db.ColumnDef{
		{Name: "id", Type: db.ColInteger, AutoIncr: true},
		{Name: "path", Type: db.ColText, NotNull: true},
		{Name: "sort_order", Type: db.ColInteger, NotNull: true},
	}
	if err := s.schema.CreateTable(ctx, tableRecent, cols); err != nil {
		return fmt.Errorf("creating recent_files table: %w", err)
	}
	err := s.schema.CreateIndex(ctx, tableRecent, "idx_recent_files_path",
		[]string{"path"}, true)
	if err != nil {
		return fmt.Errorf("creating recent_files index: %w", err)
	}
	return nil
}

// Save replaces the stored list with paths, preserving their order.
func (s *Store) Save(ctx context.Context, paths []string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM recent_files"); err != nil {
		return fmt.Errorf("clearing recent files: %w", err)
	}
	if len(paths) == 0 {
		return nil
	}

	rows := make([][]any, len(paths))
	for i, p := range paths {
		rows[i] = []any{p, i}
	}
	err := s.schema.UpsertBatch(ctx, tableRecent,
		[]string{"path", "sort_order"}, []string{"path"}, nil, rows)
	if err != nil {
		return fmt.Errorf("saving recent files: %w", err)
	}
	return nil
}

// Load returns the stored list, most recent first.
func (s *Store) Load(ctx context.Context) ([]string, error) {
	rows, err := s.schema.Query(tableRecent).
		Select("path").
		OrderBy("sort_order").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading recent files: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scanning recent file: %w", err)
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}
