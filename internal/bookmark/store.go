package bookmark

import (
	"context"
	"fmt"

	"scriptmap/internal/db"
)

const tableBookmarks = "bookmarks"

// Store persists bookmark lists keyed by document path, so bookmarks
// survive restarts and can live in a shared database.
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

// Init creates the bookmarks table and its index when missing.
func (s *Store) Init(ctx context.Context) error {
	cols := []db.ColumnDef{
		{Name: "id", Type: db.ColInteger, AutoIncr: true},
		{Name: "path", Type: db.ColText, NotNull: true},
		{Name: "line", Type: db.ColInteger, NotNull: true},
		{Name: "content", Type: db.ColText, NotNull: true},
	}
	if err := s.schema.CreateTable(ctx, tableBookmarks, cols); err != nil {
		return fmt.Errorf("creating bookmarks table: %w", err)
	}
	err := s.schema.CreateIndex(ctx, tableBookmarks, "idx_bookmarks_path_line",
		[]string{"path", "line"}, true)
	if err != nil {
		return fmt.Errorf("creating bookmarks index: %w", err)
	}
	return nil
}

// Save replaces the stored bookmarks for path.
func (s *Store) Save(ctx context.Context, path string, items []Item) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	del := s.schema.SubstitutePlaceholders("DELETE FROM bookmarks WHERE path = ?")
	if _, err := tx.ExecContext(ctx, del, path); err != nil {
		return fmt.Errorf("clearing bookmarks: %w", err)
	}

	ins := s.schema.SubstitutePlaceholders("INSERT INTO bookmarks (path, line, content) VALUES (?, ?, ?)")
	for _, it := range items {
		if _, err := tx.ExecContext(ctx, ins, path, it.Line, it.Content); err != nil {
			return fmt.Errorf("inserting bookmark: %w", err)
		}
	}
	return tx.Commit()
}

// Load returns the stored bookmarks for path in saved order.
func (s *Store) Load(ctx context.Context, path string) ([]Item, error) {
	rows, err := s.schema.Query(tableBookmarks).
		Select("line", "content").
		Where(s.schema.SubstitutePlaceholders("path = ?"), path).
		OrderBy("id").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading bookmarks: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.Line, &it.Content); err != nil {
			return nil, fmt.Errorf("scanning bookmark: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// Delete removes every stored bookmark for path.
func (s *Store) Delete(ctx context.Context, path string) error {
	del := s.schema.SubstitutePlaceholders("DELETE FROM bookmarks WHERE path = ?")
	if _, err := s.db.ExecContext(ctx, del, path); err != nil {
		return fmt.Errorf("deleting bookmarks: %w", err)
	}
	return nil
}
