// Package prefs persists preference backups to disk so settings and
// navigation state survive reinstalls and move between machines.
package prefs

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"scriptmap/internal/config"
	"scriptmap/internal/logging"
)

// BackupFileName is the file a preference backup is written to.
const BackupFileName = "preferences_backup.json"

// BackupVersion marks the current backup format.
const BackupVersion = "1.0"

// Backup is the on-disk shape of a preference backup. Preferences stay
// raw JSON so partial and older backups can still be merged over the
// current defaults key by key.
type Backup struct {
	Version     string          `json:"version"`
	Checksum    string          `json:"checksum"`
	Preferences json.RawMessage `json:"preferences"`
	Expanded    []string        `json:"expanded,omitempty"`
}

// Restore merges the backup's preference values over base. Keys absent
// from the backup keep their base values and unknown keys are ignored.
// Returns the merged preferences and how many keys were applied.
func (b *Backup) Restore(base config.Preferences) (config.Preferences, int, error) {
	merged := base
	if err := json.Unmarshal(b.Preferences, &merged); err != nil {
		return base, 0, fmt.Errorf("parsing backup preferences: %w", err)
	}

	var stored map[string]any
	if err := json.Unmarshal(b.Preferences, &stored); err != nil {
		return base, 0, fmt.Errorf("parsing backup preferences: %w", err)
	}
	known := prefTree(merged)

	return merged, countRestored(stored, known), nil
}

// Store reads and writes preference backups in a directory.
type Store struct {
	dir    string
	logger *slog.Logger
}

// NewStore creates a store that persists backups to the given
// directory. The directory is created on first save.
func NewStore(dir string) *Store {
	return &Store{
		dir:    dir,
		logger: logging.Default("prefs"),
	}
}

// Path returns the backup file path.
func (s *Store) Path() string {
	return filepath.Join(s.dir, BackupFileName)
}

// Exists reports whether a backup file is present.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.Path())
	return err == nil
}

// Save writes the preferences and expand state as a backup. The file
// is written atomically using a temp file + rename.
func (s *Store) Save(p config.Preferences, expanded []string) error {
	prefJSON, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshaling preferences: %w", err)
	}

	backup := Backup{
		Version:     BackupVersion,
		Checksum:    checksumJSON(prefJSON),
		Preferences: prefJSON,
		Expanded:    expanded,
	}
	data, err := json.MarshalIndent(backup, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling backup: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating backup directory: %w", err)
	}

	targetPath := s.Path()
	tempPath := targetPath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := os.Rename(tempPath, targetPath); err != nil {
		os.Remove(tempPath) //nolint:errcheck
		return fmt.Errorf("renaming temp file: %w", err)
	}

	s.logger.Debug("preferences backed up", "path", targetPath)
	return nil
}

// Load reads the backup file. Returns nil, nil when no backup exists.
// A file holding a bare preference object, the format before backups
// grew a wrapper, is accepted as a backup with no version or checksum.
func (s *Store) Load() (*Backup, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading backup file: %w", err)
	}

	var backup Backup
	if err := json.Unmarshal(data, &backup); err != nil {
		return nil, fmt.Errorf("unmarshaling backup: %w", err)
	}
	if len(backup.Preferences) == 0 {
		backup = Backup{Preferences: data}
	}

	if backup.Checksum != "" && backup.Checksum != checksumJSON(backup.Preferences) {
		s.logger.Warn("backup checksum mismatch, file was edited after saving", "path", s.Path())
	}
	return &backup, nil
}

// Differs reports whether the given state deviates from the stored
// backup. A missing backup reports false, an unreadable one true.
func (s *Store) Differs(p config.Preferences, expanded []string) bool {
	backup, err := s.Load()
	if err != nil {
		return true
	}
	if backup == nil {
		return false
	}

	prefJSON, err := json.Marshal(p)
	if err != nil {
		return true
	}
	if checksumJSON(prefJSON) != checksumJSON(backup.Preferences) {
		return true
	}
	return !slices.Equal(expanded, backup.Expanded)
}

// Delete removes the backup file. A missing file is not an error.
func (s *Store) Delete() error {
	err := os.Remove(s.Path())
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// ModTime returns when the backup was last written.
func (s *Store) ModTime() (time.Time, bool) {
	info, err := os.Stat(s.Path())
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

// checksumJSON hashes a canonical form of the JSON value: unmarshal
// and re-marshal so key order and formatting stop mattering. Returns
// "" when the bytes are not valid JSON.
func checksumJSON(raw []byte) string {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	canon, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(canon)
	return hex.EncodeToString(sum[:])
}

// prefTree renders preferences as a nested key map, the shape restore
// counting walks.
func prefTree(p config.Preferences) map[string]any {
	data, err := json.Marshal(p)
	if err != nil {
		return nil
	}
	var tree map[string]any
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil
	}
	return tree
}

// countRestored counts the leaf keys of stored that exist in known.
// Keys the current preference set does not carry are not counted, the
// restore ignored them.
func countRestored(stored, known map[string]any) int {
	n := 0
	for key, value := range stored {
		kv, ok := known[key]
		if !ok {
			continue
		}
		storedMap, storedIsMap := value.(map[string]any)
		knownMap, knownIsMap := kv.(map[string]any)
		switch {
		case storedIsMap && knownIsMap:
			n += countRestored(storedMap, knownMap)
		case !storedIsMap && !knownIsMap:
			n++
		}
	}
	return n
}
