// Package bookmark tracks per-document line bookmarks that survive
// buffer edits. A bookmark remembers its line and the stripped line
// content; after edits the content is what relocates it.
package bookmark

import (
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"

	"scriptmap/internal/config"
	"scriptmap/internal/logging"
	"scriptmap/internal/session"
)

// Item is one bookmarked line: a 1-indexed line number plus the
// stripped content used to find it again.
type Item struct {
	Line    int    `json:"line"`
	Content string `json:"content"`
}

// Label renders the item the way pickers list it.
func (it Item) Label() string {
	content := it.Content
	if runes := []rune(content); len(runes) > 80 {
		content = string(runes[:80])
	}
	return fmt.Sprintf("%d: %s", it.Line, content)
}

// List manages the bookmarks of a single document.
type List struct {
	cfg      config.BookmarkConfig
	logger   *slog.Logger
	items    []Item
	selected int
}

// New returns an empty bookmark list.
func New(cfg config.BookmarkConfig) *List {
	if cfg.SearchRadius < 0 {
		cfg.SearchRadius = 0
	}
	return &List{
		cfg:    cfg,
		logger: logging.Default("bookmark"),
	}
}

// Items returns the bookmarks in list order.
func (l *List) Items() []Item {
	return slices.Clone(l.items)
}

// Len returns the number of bookmarks.
func (l *List) Len() int { return len(l.items) }

// Selected returns the index of the selected bookmark.
func (l *List) Selected() int { return l.selected }

// SetSelected moves the selection. Returns false when out of range.
func (l *List) SetSelected(i int) bool {
	if i < 0 || i >= len(l.items) {
		return false
	}
	l.selected = i
	return true
}

// SetItems replaces the list wholesale, as when loading persisted
// bookmarks.
func (l *List) SetItems(items []Item) {
	l.items = slices.Clone(items)
	l.clampSelection()
}

// Add bookmarks the cursor line and selects it. A line that is already
// bookmarked is left alone.
func (l *List) Add(doc *session.Document) bool {
	line := doc.Cursor().Line
	raw, ok := doc.Line(line)
	if !ok {
		return false
	}
	for _, it := range l.items {
		if it.Line == line {
			return false
		}
	}
	l.items = append(l.items, Item{Line: line, Content: strings.TrimSpace(raw)})
	l.selected = len(l.items) - 1
	return true
}

// Remove deletes the bookmark at index and selects its predecessor.
func (l *List) Remove(index int) bool {
	if index < 0 || index >= len(l.items) {
		return false
	}
	l.items = append(l.items[:index], l.items[index+1:]...)
	l.selected = max(0, index-1)
	return true
}

// MoveUp swaps the selected bookmark with the one above it.
func (l *List) MoveUp() bool {
	i := l.selected
	if i <= 0 || i >= len(l.items) {
		return false
	}
	l.items[i-1], l.items[i] = l.items[i], l.items[i-1]
	l.selected = i - 1
	return true
}

// MoveDown swaps the selected bookmark with the one below it.
func (l *List) MoveDown() bool {
	i := l.selected
	if i < 0 || i >= len(l.items)-1 {
		return false
	}
	l.items[i], l.items[i+1] = l.items[i+1], l.items[i]
	l.selected = i + 1
	return true
}

// Refresh relocates bookmarks after edits. A bookmark whose line still
// holds its content stays put; otherwise the nearby lines are searched
// for it, and bookmarks whose content vanished are dropped. Returns
// true when anything changed.
func (l *List) Refresh(doc *session.Document) bool {
	stripped := strippedLines(doc)

	updated := make([]Item, 0, len(l.items))
	for _, it := range l.items {
		idx := it.Line - 1
		if idx >= 0 && idx < len(stripped) && stripped[idx] == it.Content {
			updated = append(updated, it)
			continue
		}
		if found := l.searchNearby(stripped, idx, it.Content); found >= 0 {
			updated = append(updated, Item{Line: found + 1, Content: it.Content})
		}
	}

	if slices.Equal(updated, l.items) {
		return false
	}
	if dropped := len(l.items) - len(updated); dropped > 0 {
		l.logger.Debug("bookmarks dropped on refresh", "count", dropped)
	}
	l.items = updated
	l.clampSelection()
	return true
}

// Sort rebinds every bookmark to the first line holding its content,
// drops the ones no longer present, and orders the list by line.
// Returns true when anything changed.
func (l *List) Sort(doc *session.Document) bool {
	stripped := strippedLines(doc)

	updated := make([]Item, 0, len(l.items))
	for _, it := range l.items {
		found := -1
		for i, s := range stripped {
			if s == it.Content {
				found = i
				break
			}
		}
		if found >= 0 {
			updated = append(updated, Item{Line: found + 1, Content: it.Content})
		}
	}
	sort.SliceStable(updated, func(i, j int) bool { return updated[i].Line < updated[j].Line })

	if slices.Equal(updated, l.items) {
		return false
	}
	l.items = updated
	l.clampSelection()
	return true
}

// Jump moves the cursor to the selected bookmark. The jump is skipped
// when the bookmark points past the end of the buffer.
func (l *List) Jump(doc *session.Document) bool {
	if l.selected < 0 || l.selected >= len(l.items) {
		return false
	}
	it := l.items[l.selected]
	if it.Line > doc.LineCount() {
		return false
	}
	doc.SetCursor(session.Position{Line: it.Line, Char: 0})
	return true
}

func (l *List) searchNearby(stripped []string, old int, content string) int {
	lo := max(0, old-l.cfg.SearchRadius)
	hi := min(len(stripped), old+l.cfg.SearchRadius+1)
	for i := lo; i < hi; i++ {
		if stripped[i] == content {
			return i
		}
	}
	return -1
}

func (l *List) clampSelection() {
	if l.selected >= len(l.items) {
		l.selected = len(l.items) - 1
	}
	if l.selected < 0 {
		l.selected = 0
	}
}

func strippedLines(doc *session.Document) []string {
	lines := doc.Lines()
	stripped := make([]string, len(lines))
	for i, s := range lines {
		stripped[i] = strings.TrimSpace(s)
	}
	return stripped
}
