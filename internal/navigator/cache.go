// Package navigator maintains the tree-navigation state for open
// buffers: a bounded cache of built outlines, expand/collapse state
// keyed by node path, and the change-detection protocol a panel
// redraw loop drives.
package navigator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"scriptmap/internal/config"
	"scriptmap/internal/logging"
	"scriptmap/internal/outline"
)

// entry is one cached outline together with the fingerprint of the
// content it was built from.
type entry struct {
	outline     *outline.Outline
	fingerprint string
}

// Navigator owns per-session navigation state. All methods are safe
// for concurrent use.
type Navigator struct {
	cfg    config.NavigatorConfig
	logger *slog.Logger

	mu       sync.Mutex
	outlines *lru.Cache[string, *entry]
	expanded map[string]struct{}

	// Focus tracking for NeedsUpdate: the buffer the panel is showing
	// and the fingerprint of its last-seen content.
	current     string
	currentHash string
}

// New creates a navigator with the given configuration.
func New(cfg config.NavigatorConfig) (*Navigator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating navigator config: %w", err)
	}

	cache, err := lru.New[string, *entry](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating outline cache: %w", err)
	}

	return &Navigator{
		cfg:      cfg,
		logger:   logging.Default("navigator"),
		outlines: cache,
		expanded: make(map[string]struct{}),
	}, nil
}

// Config returns the navigator configuration.
func (n *Navigator) Config() config.NavigatorConfig {
	return n.cfg
}

// NeedsUpdate is the redraw-loop change check. It reports true when
// the focused buffer changed, its content changed, or the buffer
// disappeared while state was held. The check is stateful: once a
// change has been reported and the outline refreshed, the same
// arguments report false.
func (n *Navigator) NeedsUpdate(name, content string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	if name == "" {
		// Buffer vanished. Report the transition once.
		if n.current != "" {
			n.current = ""
			n.currentHash = ""
			return true
		}
		return false
	}

	if n.current != name {
		n.current = name
		n.currentHash = ""
		return true
	}

	if fp := fingerprint(content); fp != n.currentHash {
		n.currentHash = fp
		return true
	}

	return false
}

// Refresh rebuilds the outline for a buffer and caches it under the
// buffer name. The focused fingerprint is updated so a following
// NeedsUpdate with the same content reports false.
func (n *Navigator) Refresh(ctx context.Context, name, content string) *outline.Outline {
	o := outline.Build(ctx, content, n.buildOptions())
	fp := fingerprint(content)

	n.mu.Lock()
	n.outlines.Add(name, &entry{outline: o, fingerprint: fp})
	if n.current == name {
		n.currentHash = fp
	}
	n.mu.Unlock()

	n.logger.Debug("outline rebuilt", "buffer", name, "symbols", len(o.Nodes), "parsed", o.Parsed)
	return o
}

// Outline returns the cached outline for a buffer when its fingerprint
// still matches the content, rebuilding otherwise. An empty name
// yields an empty outline: a missing buffer is not an error.
func (n *Navigator) Outline(ctx context.Context, name, content string) *outline.Outline {
	if name == "" {
		return &outline.Outline{}
	}

	fp := fingerprint(content)
	n.mu.Lock()
	if e, ok := n.outlines.Get(name); ok && e.fingerprint == fp {
		n.mu.Unlock()
		return e.outline
	}
	n.mu.Unlock()

	return n.Refresh(ctx, name, content)
}

// Invalidate drops a buffer's cached outline, forcing the next Outline
// call to rebuild. Used when the backing file changes on disk.
func (n *Navigator) Invalidate(name string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.outlines.Remove(name)
	if n.current == name {
		n.currentHash = ""
	}
}

// CachedCount returns the number of outlines currently held.
func (n *Navigator) CachedCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.outlines.Len()
}

// ToggleExpand flips the expand state of a tree path. Paths are
// dot-joined name chains, so state survives outline rebuilds as long
// as names and nesting are stable. Nodes start collapsed.
func (n *Navigator) ToggleExpand(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, ok := n.expanded[path]; ok {
		delete(n.expanded, path)
	} else {
		n.expanded[path] = struct{}{}
	}
}

// IsExpanded reports whether a tree path is expanded.
func (n *Navigator) IsExpanded(path string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, ok := n.expanded[path]
	return ok
}

// Expanded returns the expanded paths in sorted order.
func (n *Navigator) Expanded() []string {
	n.mu.Lock()
	defer n.mu.Unlock()

	out := make([]string, 0, len(n.expanded))
	for p := range n.expanded {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// SetExpanded replaces the expand state wholesale, for restoring a
// persisted session.
func (n *Navigator) SetExpanded(paths []string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.expanded = make(map[string]struct{}, len(paths))
	for _, p := range paths {
		n.expanded[p] = struct{}{}
	}
}

// snapshotExpanded copies the expand set for lock-free reads during a
// render walk.
func (n *Navigator) snapshotExpanded() map[string]struct{} {
	n.mu.Lock()
	defer n.mu.Unlock()

	out := make(map[string]struct{}, len(n.expanded))
	for p := range n.expanded {
		out[p] = struct{}{}
	}
	return out
}

// buildOptions maps the outline section of the config onto build
// options.
func (n *Navigator) buildOptions() outline.Options {
	return outline.Options{
		MarkerAttribute:  n.cfg.Outline.MarkerAttribute,
		MaxPreviewLength: n.cfg.Outline.MaxPreviewLength,
	}
}

// fingerprint returns the SHA-256 hex digest of buffer content.
func fingerprint(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
