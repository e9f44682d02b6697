package bookmark

import (
	"context"
	"testing"

	"scriptmap/internal/db"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.OpenModernc(db.Config{Driver: db.DriverModernc, Path: ":memory:"})
	if err != nil {
		t.Fatalf("OpenModernc() error = %v", err)
	}
	t.Cleanup(func() { database.Close() })

	store := NewStore(database, &db.SQLiteDialect{})
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	return store
}

func TestStoreRoundTrip(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	saved := []Item{
		{Line: 3, Content: "def first():"},
		{Line: 7, Content: "return 2"},
	}
	if err := store.Save(ctx, "/scripts/a.py", saved); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Load(ctx, "/scripts/a.py")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got) != len(saved) {
		t.Fatalf("expected %d items, got %d", len(saved), len(got))
	}
	for i := range saved {
		if got[i] != saved[i] {
			t.Errorf("item %d: expected %+v, got %+v", i, saved[i], got[i])
		}
	}
}

func TestStoreSaveReplaces(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	first := []Item{{Line: 1, Content: "import os"}, {Line: 3, Content: "def first():"}}
	if err := store.Save(ctx, "/scripts/a.py", first); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	second := []Item{{Line: 6, Content: "def second():"}}
	if err := store.Save(ctx, "/scripts/a.py", second); err != nil {
		t.Fatalf("second Save() error = %v", err)
	}

	got, err := store.Load(ctx, "/scripts/a.py")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got) != 1 || got[0] != second[0] {
		t.Errorf("expected replacement save, got %v", got)
	}
}

func TestStorePathsAreIsolated(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, "/scripts/a.py", []Item{{Line: 1, Content: "import os"}}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Load(ctx, "/scripts/b.py")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no bookmarks for other path, got %v", got)
	}
}

func TestStoreDelete(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, "/scripts/a.py", []Item{{Line: 1, Content: "import os"}}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Delete(ctx, "/scripts/a.py"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	got, err := store.Load(ctx, "/scripts/a.py")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no bookmarks after delete, got %v", got)
	}
}
