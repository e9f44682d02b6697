// Package recent maintains the ordered list of recently opened files,
// most recent first.
package recent

import (
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"scriptmap/internal/config"
	"scriptmap/internal/logging"
)

// Entry pairs a stored path with its display name.
type Entry struct {
	Path string `json:"path"`
	Name string `json:"name"`
}

// List is the recent file list. Paths are stored in absolute clean
// form so the same file never appears twice.
type List struct {
	cfg    config.RecentConfig
	logger *slog.Logger
	paths  []string
}

// New returns an empty list.
func New(cfg config.RecentConfig) *List {
	if cfg.Limit <= 0 {
		cfg.Limit = config.DefaultRecentConfig().Limit
	}
	return &List{
		cfg:    cfg,
		logger: logging.Default("recent"),
	}
}

// Paths returns the listed paths, most recent first.
func (l *List) Paths() []string { return slices.Clone(l.paths) }

// Len returns the number of listed files.
func (l *List) Len() int { return len(l.paths) }

// Contains reports whether path is listed.
func (l *List) Contains(path string) bool {
	return slices.Contains(l.paths, normalize(path))
}

// SetPaths replaces the list wholesale, as when loading a persisted
// list.
func (l *List) SetPaths(paths []string) {
	l.paths = slices.Clone(paths)
}

// Add records a path without disturbing its position when already
// listed. Returns true when the list changed.
func (l *List) Add(path string) bool {
	p := normalize(path)
	if slices.Contains(l.paths, p) {
		return false
	}
	l.insertFront(p)
	return true
}

// Reopen records a path that was just opened. With ReorderOnOpen set,
// an already listed file moves back to the front; otherwise it keeps
// its position. Returns true when the list changed.
func (l *List) Reopen(path string) bool {
	p := normalize(path)
	i := slices.Index(l.paths, p)
	switch {
	case i < 0:
		l.insertFront(p)
		return true
	case !l.cfg.ReorderOnOpen || i == 0:
		return false
	default:
		l.paths = slices.Delete(l.paths, i, i+1)
		l.insertFront(p)
		return true
	}
}

// Remove drops path from the list.
func (l *List) Remove(path string) bool {
	i := slices.Index(l.paths, normalize(path))
	if i < 0 {
		return false
	}
	l.paths = slices.Delete(l.paths, i, i+1)
	return true
}

// PruneMissing drops entries whose file no longer exists and returns
// how many were removed.
func (l *List) PruneMissing() int {
	var kept []string
	removed := 0
	for _, p := range l.paths {
		if fileExists(p) {
			kept = append(kept, p)
		} else {
			removed++
		}
	}
	l.paths = kept
	if removed > 0 {
		l.logger.Debug("pruned missing recent files", "count", removed)
	}
	return removed
}

// Clear empties the list.
func (l *List) Clear() { l.paths = nil }

// Swap exchanges two entries. Returns false when either index is out
// of range.
func (l *List) Swap(i, j int) bool {
	if i < 0 || i >= len(l.paths) || j < 0 || j >= len(l.paths) {
		return false
	}
	l.paths[i], l.paths[j] = l.paths[j], l.paths[i]
	return true
}

// Partition splits the list into entries whose file still exists and
// entries pointing at missing files, preserving order.
func (l *List) Partition() (valid, missing []Entry) {
	for _, p := range l.paths {
		e := Entry{Path: p, Name: l.DisplayName(p)}
		if fileExists(p) {
			valid = append(valid, e)
		} else {
			missing = append(missing, e)
		}
	}
	return valid, missing
}

// DisplayName returns how a path is listed. Package __init__.py files
// show as their folder name (spaces replaced by underscores) when
// configured, so ten add-on entries do not all read "__init__.py".
func (l *List) DisplayName(path string) string {
	name := filepath.Base(path)
	if !l.cfg.ShowFolderName || name != "__init__.py" {
		return name
	}
	folder := strings.ReplaceAll(filepath.Base(filepath.Dir(path)), " ", "_")
	if folder == "" || folder == "." || folder == "/" {
		return name
	}
	return folder + ".py"
}

func (l *List) insertFront(p string) {
	l.paths = append([]string{p}, l.paths...)
	if len(l.paths) > l.cfg.Limit {
		l.paths = l.paths[:l.cfg.Limit]
	}
}

func normalize(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
