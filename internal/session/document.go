package session

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Position addresses a point in a document: a 1-indexed line and a
// 0-indexed character offset within it.
type Position struct {
	Line int `json:"line"`
	Char int `json:"char"`
}

// Before reports whether p precedes q in document order.
func (p Position) Before(q Position) bool {
	if p.Line != q.Line {
		return p.Line < q.Line
	}
	return p.Char < q.Char
}

// Document is one open buffer: its lines, cursor, and selection.
// Documents are single-owner; the enclosing Session serializes access
// to the registry, not to individual documents.
type Document struct {
	id     string
	name   string
	lines  []string
	cursor Position // Selection head; equals anchor when nothing is selected
	anchor Position // Selection tail
}

// newDocument builds a document with the given identity and content.
func newDocument(id, name, text string) *Document {
	d := &Document{
		id:     id,
		name:   name,
		cursor: Position{Line: 1},
		anchor: Position{Line: 1},
	}
	d.lines = strings.Split(text, "\n")
	return d
}

// ID returns the document's stable identifier.
func (d *Document) ID() string { return d.id }

// Name returns the document's display name.
func (d *Document) Name() string { return d.name }

// Rename changes the document's display name.
func (d *Document) Rename(name string) { d.name = name }

// Text returns the full buffer content.
func (d *Document) Text() string {
	return strings.Join(d.lines, "\n")
}

// SetText replaces the buffer content. Cursor and selection are
// clamped to the new bounds.
func (d *Document) SetText(text string) {
	d.lines = strings.Split(text, "\n")
	d.cursor = d.clamp(d.cursor)
	d.anchor = d.clamp(d.anchor)
}

// Lines returns the underlying line slice. Callers must treat it as
// read-only; use SetLine and friends to edit.
func (d *Document) Lines() []string {
	return d.lines
}

// LineCount returns the number of lines in the buffer.
func (d *Document) LineCount() int {
	return len(d.lines)
}

// Line returns the 1-indexed line and whether it exists.
func (d *Document) Line(n int) (string, bool) {
	if n < 1 || n > len(d.lines) {
		return "", false
	}
	return d.lines[n-1], true
}

// Cursor returns the current cursor position.
func (d *Document) Cursor() Position { return d.cursor }

// SetCursor moves the cursor, collapsing any selection. The position
// is clamped to the buffer.
func (d *Document) SetCursor(p Position) {
	d.cursor = d.clamp(p)
	d.anchor = d.cursor
}

// SetSelection selects from one position to another. The cursor lands
// on to, matching how an editor extends a selection.
func (d *Document) SetSelection(from, to Position) {
	d.anchor = d.clamp(from)
	d.cursor = d.clamp(to)
}

// Selection returns the selection bounds in document order.
func (d *Document) Selection() (start, end Position) {
	if d.cursor.Before(d.anchor) {
		return d.cursor, d.anchor
	}
	return d.anchor, d.cursor
}

// HasSelection reports whether any text is selected.
func (d *Document) HasSelection() bool {
	return d.cursor != d.anchor
}

// SelectedText returns the selected text, with lines joined by \n for
// selections spanning multiple lines.
func (d *Document) SelectedText() string {
	if !d.HasSelection() {
		return ""
	}
	start, end := d.Selection()
	if start.Line == end.Line {
		line := d.lines[start.Line-1]
		return line[start.Char:end.Char]
	}

	parts := make([]string, 0, end.Line-start.Line+1)
	parts = append(parts, d.lines[start.Line-1][start.Char:])
	for n := start.Line + 1; n < end.Line; n++ {
		parts = append(parts, d.lines[n-1])
	}
	parts = append(parts, d.lines[end.Line-1][:end.Char])
	return strings.Join(parts, "\n")
}

// WordAt returns the identifier-style word containing or immediately
// preceding the position, or "" when there is none.
func (d *Document) WordAt(p Position) string {
	p = d.clamp(p)
	line := d.lines[p.Line-1]

	i := p.Char
	if i >= len(line) || !isWordByte(line[i]) {
		if i == 0 || !isWordByte(line[i-1]) {
			return ""
		}
		i--
	}

	start, end := i, i+1
	for start > 0 && isWordByte(line[start-1]) {
		start--
	}
	for end < len(line) && isWordByte(line[end]) {
		end++
	}
	return line[start:end]
}

// SetLine replaces the 1-indexed line. Returns false when out of range.
func (d *Document) SetLine(n int, text string) bool {
	if n < 1 || n > len(d.lines) {
		return false
	}
	d.lines[n-1] = text
	return true
}

// InsertLine inserts text so that it becomes line n, shifting later
// lines down. n may be one past the last line to append.
func (d *Document) InsertLine(n int, text string) bool {
	if n < 1 || n > len(d.lines)+1 {
		return false
	}
	d.lines = append(d.lines, "")
	copy(d.lines[n:], d.lines[n-1:])
	d.lines[n-1] = text
	d.cursor = d.clamp(d.cursor)
	d.anchor = d.clamp(d.anchor)
	return true
}

// DeleteLine removes the 1-indexed line. Deleting the only line leaves
// a single empty one, matching editor behavior.
func (d *Document) DeleteLine(n int) bool {
	if n < 1 || n > len(d.lines) {
		return false
	}
	if len(d.lines) == 1 {
		d.lines[0] = ""
	} else {
		d.lines = append(d.lines[:n-1], d.lines[n:]...)
	}
	d.cursor = d.clamp(d.cursor)
	d.anchor = d.clamp(d.anchor)
	return true
}

// Fingerprint returns the SHA-256 hex digest of the buffer content.
func (d *Document) Fingerprint() string {
	sum := sha256.Sum256([]byte(d.Text()))
	return hex.EncodeToString(sum[:])
}

// clamp bounds a position to the buffer.
func (d *Document) clamp(p Position) Position {
	if p.Line < 1 {
		p.Line = 1
	}
	if p.Line > len(d.lines) {
		p.Line = len(d.lines)
	}
	if p.Char < 0 {
		p.Char = 0
	}
	if max := len(d.lines[p.Line-1]); p.Char > max {
		p.Char = max
	}
	return p
}

func isWordByte(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}
