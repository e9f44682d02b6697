package textops

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"scriptmap/internal/session"
)

// Counts summarizes a buffer: totals plus the selected-character count
// when a selection is active. Characters exclude line breaks.
type Counts struct {
	Lines        int  `json:"lines"`
	Characters   int  `json:"characters"`
	Words        int  `json:"words"`
	Selected     int  `json:"selected"`
	HasSelection bool `json:"has_selection"`
	CursorLine   int  `json:"cursor_line"` // 1-indexed
	CursorCol    int  `json:"cursor_col"`  // 1-indexed
}

// Count measures the document and its current selection.
func Count(doc *session.Document) Counts {
	lines := doc.Lines()

	c := Counts{Lines: len(lines)}
	for _, line := range lines {
		c.Characters += utf8.RuneCountInString(line)
		c.Words += len(strings.Fields(line))
	}

	cursor := doc.Cursor()
	c.CursorLine = cursor.Line
	c.CursorCol = cursor.Char + 1

	if doc.HasSelection() {
		c.HasSelection = true
		c.Selected = selectedCount(lines, doc)
	}
	return c
}

// selectedCount totals the characters between the selection bounds,
// excluding line breaks like the overall character count does.
func selectedCount(lines []string, doc *session.Document) int {
	start, end := doc.Selection()
	if start.Line == end.Line {
		return utf8.RuneCountInString(lines[start.Line-1][start.Char:end.Char])
	}

	total := utf8.RuneCountInString(lines[start.Line-1][start.Char:])
	for n := start.Line + 1; n < end.Line; n++ {
		total += utf8.RuneCountInString(lines[n-1])
	}
	total += utf8.RuneCountInString(lines[end.Line-1][:end.Char])
	return total
}

// Position renders the cursor location for a status line.
func (c Counts) Position() string {
	return fmt.Sprintf("Ln %d, Col %d", c.CursorLine, c.CursorCol)
}

// Summary renders the character totals for a status line.
func (c Counts) Summary() string {
	if c.HasSelection {
		return fmt.Sprintf("%d of %d characters", c.Selected, c.Characters)
	}
	return fmt.Sprintf("%d characters", c.Characters)
}
