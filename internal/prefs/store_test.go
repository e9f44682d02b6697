package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"scriptmap/internal/config"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())

	p := config.DefaultPreferences()
	p.Navigator.CacheSize = 3
	p.Workbench.Recent.Limit = 7
	expanded := []string{"Manager", "Manager.run"}

	if err := store.Save(p, expanded); err != nil {
		t.Fatalf("saving: %v", err)
	}

	backup, err := store.Load()
	if err != nil {
		t.Fatalf("loading: %v", err)
	}
	if backup == nil {
		t.Fatal("expected a backup")
	}
	if backup.Version != BackupVersion {
		t.Errorf("expected version %s, got %s", BackupVersion, backup.Version)
	}
	if backup.Checksum == "" {
		t.Error("expected a checksum")
	}
	if !slices.Equal(backup.Expanded, expanded) {
		t.Errorf("expected expanded %v, got %v", expanded, backup.Expanded)
	}

	merged, count, err := backup.Restore(config.DefaultPreferences())
	if err != nil {
		t.Fatalf("restoring: %v", err)
	}
	if merged.Navigator.CacheSize != 3 {
		t.Errorf("expected cache size 3, got %d", merged.Navigator.CacheSize)
	}
	if merged.Workbench.Recent.Limit != 7 {
		t.Errorf("expected recent limit 7, got %d", merged.Workbench.Recent.Limit)
	}
	if count == 0 {
		t.Error("expected restored key count above zero")
	}
}

func TestLoadMissing(t *testing.T) {
	store := NewStore(t.TempDir())
	backup, err := store.Load()
	if err != nil {
		t.Fatalf("loading: %v", err)
	}
	if backup != nil {
		t.Error("expected no backup for empty directory")
	}
}

func TestRestoreCountsOnlyKnownKeys(t *testing.T) {
	backup := &Backup{
		Preferences: json.RawMessage(`{"workbench": {"recent": {"limit": 9, "bogus_key": true}}}`),
	}

	merged, count, err := backup.Restore(config.DefaultPreferences())
	if err != nil {
		t.Fatalf("restoring: %v", err)
	}
	if merged.Workbench.Recent.Limit != 9 {
		t.Errorf("expected recent limit 9, got %d", merged.Workbench.Recent.Limit)
	}
	if count != 1 {
		t.Errorf("expected 1 restored key, got %d", count)
	}

	// Keys the backup never carried keep their defaults.
	if merged.Workbench.Occurrences.MinLength != config.DefaultOccurrenceConfig().MinLength {
		t.Errorf("expected default min length, got %d", merged.Workbench.Occurrences.MinLength)
	}
}

func TestLoadBarePreferenceFile(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	p := config.DefaultPreferences()
	p.Workbench.Bookmarks.SearchRadius = 11
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshaling: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, BackupFileName), data, 0o644); err != nil {
		t.Fatalf("writing: %v", err)
	}

	backup, err := store.Load()
	if err != nil {
		t.Fatalf("loading: %v", err)
	}
	if backup == nil {
		t.Fatal("expected a backup")
	}
	if backup.Version != "" {
		t.Errorf("expected no version on bare file, got %s", backup.Version)
	}

	merged, _, err := backup.Restore(config.DefaultPreferences())
	if err != nil {
		t.Fatalf("restoring: %v", err)
	}
	if merged.Workbench.Bookmarks.SearchRadius != 11 {
		t.Errorf("expected search radius 11, got %d", merged.Workbench.Bookmarks.SearchRadius)
	}
}

func TestSaveLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	if err := store.Save(config.DefaultPreferences(), nil); err != nil {
		t.Fatalf("saving: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading dir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != BackupFileName {
		t.Errorf("expected only %s in dir, got %v", BackupFileName, entries)
	}
}

func TestLoadTamperedFileStillLoads(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	if err := store.Save(config.DefaultPreferences(), nil); err != nil {
		t.Fatalf("saving: %v", err)
	}

	path := filepath.Join(dir, BackupFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading: %v", err)
	}
	edited := strings.Replace(string(data), `"limit": 30`, `"limit": 31`, 1)
	if edited == string(data) {
		t.Fatal("expected to find the recent limit in the backup")
	}
	if err := os.WriteFile(path, []byte(edited), 0o644); err != nil {
		t.Fatalf("writing: %v", err)
	}

	// A stale checksum warns but does not fail the load.
	backup, err := store.Load()
	if err != nil {
		t.Fatalf("loading: %v", err)
	}
	if backup == nil {
		t.Fatal("expected a backup")
	}
}

func TestDiffers(t *testing.T) {
	store := NewStore(t.TempDir())
	p := config.DefaultPreferences()
	expanded := []string{"Manager"}

	if store.Differs(p, expanded) {
		t.Error("expected no difference without a backup")
	}

	if err := store.Save(p, expanded); err != nil {
		t.Fatalf("saving: %v", err)
	}
	if store.Differs(p, expanded) {
		t.Error("expected saved state to match")
	}

	changed := p
	changed.Navigator.CacheSize++
	if !store.Differs(changed, expanded) {
		t.Error("expected changed preferences to differ")
	}
	if !store.Differs(p, []string{"Manager", "Other"}) {
		t.Error("expected changed expand state to differ")
	}
}

func TestDelete(t *testing.T) {
	store := NewStore(t.TempDir())
	if err := store.Save(config.DefaultPreferences(), nil); err != nil {
		t.Fatalf("saving: %v", err)
	}
	if !store.Exists() {
		t.Fatal("expected backup to exist")
	}
	if err := store.Delete(); err != nil {
		t.Fatalf("deleting: %v", err)
	}
	if store.Exists() {
		t.Error("expected backup to be gone")
	}
	if err := store.Delete(); err != nil {
		t.Errorf("expected deleting a missing backup to succeed, got %v", err)
	}
}

func TestModTime(t *testing.T) {
	store := NewStore(t.TempDir())
	if _, ok := store.ModTime(); ok {
		t.Error("expected no mod time without a backup")
	}

	if err := store.Save(config.DefaultPreferences(), nil); err != nil {
		t.Fatalf("saving: %v", err)
	}
	mod, ok := store.ModTime()
	if !ok {
		t.Fatal("expected a mod time after saving")
	}
	if time.Since(mod) > time.Minute {
		t.Errorf("expected a recent mod time, got %v", mod)
	}
}
