// Package watch reloads open documents when their backing files change
// on disk, keeping cached outlines in sync with external editors.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/fsnotify/fsnotify"

	"scriptmap/internal/logging"
	"scriptmap/internal/navigator"
	"scriptmap/internal/session"
)

// Watcher maps files on disk to open documents and feeds filesystem
// events back into the session. Directories are watched rather than
// files, so editors that replace a file on save are still seen.
type Watcher struct {
	session *session.Session
	nav     *navigator.Navigator
	logger  *slog.Logger
	fsw     *fsnotify.Watcher

	mu      sync.Mutex
	tracked map[string]string // file path -> document ID
	dirs    map[string]int    // directory -> tracked file count
}

// New creates a watcher feeding the given session. Changed files are
// reloaded into their documents and their outlines invalidated on nav.
func New(sess *session.Session, nav *navigator.Navigator) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating filesystem watcher: %w", err)
	}
	return &Watcher{
		session: sess,
		nav:     nav,
		logger:  logging.Default("watch"),
		fsw:     fsw,
		tracked: make(map[string]string),
		dirs:    make(map[string]int),
	}, nil
}

// Track associates a file path with an open document. The file's
// directory gains a watch when it has none yet.
func (w *Watcher) Track(path string, doc *session.Document) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	dir := filepath.Dir(abs)
	if _, already := w.tracked[abs]; !already {
		if w.dirs[dir] == 0 {
			if err := w.fsw.Add(dir); err != nil {
				return fmt.Errorf("watching %s: %w", dir, err)
			}
		}
		w.dirs[dir]++
	}
	w.tracked[abs] = doc.ID()

	w.logger.Debug("tracking file", "path", abs, "document", doc.ID())
	return nil
}

// Untrack stops watching a file. The directory watch is dropped once
// no tracked file remains in it. Reports whether the path was tracked.
func (w *Watcher) Untrack(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	return w.untrackLocked(abs)
}

func (w *Watcher) untrackLocked(abs string) bool {
	if _, ok := w.tracked[abs]; !ok {
		return false
	}
	delete(w.tracked, abs)

	dir := filepath.Dir(abs)
	w.dirs[dir]--
	if w.dirs[dir] <= 0 {
		delete(w.dirs, dir)
		w.fsw.Remove(dir) //nolint:errcheck
	}
	return true
}

// Paths returns the tracked file paths in sorted order.
func (w *Watcher) Paths() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]string, 0, len(w.tracked))
	for p := range w.tracked {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Run processes filesystem events until the context is cancelled or
// the watcher is closed.
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

// Close stops the underlying filesystem watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// handle reloads the affected document on writes and creates. A create
// matters because many editors save by writing a new file into place.
func (w *Watcher) handle(ev fsnotify.Event) {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return
	}

	abs := filepath.Clean(ev.Name)
	w.mu.Lock()
	id, ok := w.tracked[abs]
	w.mu.Unlock()
	if !ok {
		return
	}

	doc, ok := w.session.Get(id)
	if !ok {
		// Document was closed while the watch was still active.
		w.mu.Lock()
		w.untrackLocked(abs)
		w.mu.Unlock()
		return
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		w.logger.Warn("reloading changed file failed", "path", abs, "error", err)
		return
	}

	doc.SetText(string(data))
	if w.nav != nil {
		w.nav.Invalidate(doc.Name())
	}
	w.logger.Info("reloaded changed file", "path", abs, "bytes", len(data))
}
