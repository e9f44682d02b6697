package navigator

import (
	"strings"

	"scriptmap/internal/outline"
	"scriptmap/internal/session"
)

// ActiveFunction returns the arena index of the innermost function or
// method whose line span contains the cursor, or -1. Depth-first order
// guarantees the last containing span is the deepest.
func ActiveFunction(o *outline.Outline, cursorLine int) int {
	best := -1
	o.Walk(func(idx, depth int) bool {
		n := o.Node(idx)
		if (n.Kind == outline.KindFunction || n.Kind == outline.KindMethod) && spanContains(n, cursorLine) {
			best = idx
		}
		return true
	})
	return best
}

// ActiveClass returns the arena index of the innermost class whose
// line span contains the cursor, or -1. Computed independently of the
// active function, so a class and a method inside it can both be
// active at once.
func ActiveClass(o *outline.Outline, cursorLine int) int {
	best := -1
	o.Walk(func(idx, depth int) bool {
		n := o.Node(idx)
		if n.Kind == outline.KindClass && spanContains(n, cursorLine) {
			best = idx
		}
		return true
	})
	return best
}

// spanContains checks [StartLine, EndLine] inclusively. Nodes without
// a resolved end line span their introducer line only.
func spanContains(n *outline.Node, line int) bool {
	end := n.EndLine
	if end == 0 {
		end = n.StartLine
	}
	return n.StartLine <= line && line <= end
}

// Jump moves the document cursor to a node's introducer line, landing
// after the leading whitespace. Jumping to the same node twice leaves
// the cursor unchanged.
func Jump(doc *session.Document, o *outline.Outline, idx int) {
	doc.SetCursor(JumpTarget(doc, o, idx))
}

// JumpTarget computes the cursor position a jump lands on.
func JumpTarget(doc *session.Document, o *outline.Outline, idx int) session.Position {
	n := o.Node(idx)
	return session.Position{Line: n.StartLine, Char: lineIndent(doc, n.StartLine)}
}

// SelectBlock selects a node's whole block: from the first
// non-whitespace column of the introducer line through the end of the
// last line. Selecting the same node twice yields the same selection.
func SelectBlock(doc *session.Document, o *outline.Outline, idx int) {
	start, end := SelectRange(doc, o, idx)
	doc.SetSelection(start, end)
}

// SelectRange computes the selection bounds for a node's block.
// Single-line nodes select from the indent through the end of the
// introducer line. The end line is clamped to the buffer.
func SelectRange(doc *session.Document, o *outline.Outline, idx int) (start, end session.Position) {
	n := o.Node(idx)

	endLine := n.EndLine
	if endLine == 0 {
		endLine = n.StartLine
	}
	if last := doc.LineCount(); endLine > last {
		endLine = last
	}

	start = session.Position{Line: n.StartLine, Char: lineIndent(doc, n.StartLine)}

	if n.StartLine == endLine {
		line, _ := doc.Line(n.StartLine)
		return start, session.Position{Line: n.StartLine, Char: len(line)}
	}

	line, _ := doc.Line(endLine)
	return start, session.Position{Line: endLine, Char: len(line)}
}

// lineIndent returns the column after a line's leading whitespace,
// measured against the live buffer rather than the outline snapshot.
func lineIndent(doc *session.Document, lineNum int) int {
	line, ok := doc.Line(lineNum)
	if !ok {
		return 0
	}
	return len(line) - len(strings.TrimLeft(line, " \t"))
}
