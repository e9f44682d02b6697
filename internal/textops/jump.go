package textops

import "scriptmap/internal/session"

// JumpToLine moves the cursor to the start of line n. Targets outside
// the buffer are clamped to the nearest valid line. Returns the line
// landed on.
func JumpToLine(doc *session.Document, n int) int {
	if n < 1 {
		n = 1
	}
	if last := doc.LineCount(); n > last {
		n = last
	}
	doc.SetCursor(session.Position{Line: n, Char: 0})
	return n
}
