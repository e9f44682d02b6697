// Package findreplace implements buffer search with wrap-around
// navigation, occurrence counting, and one-shot or whole-buffer
// replacement.
package findreplace

import (
	"fmt"
	"strings"

	"scriptmap/internal/session"
)

// MsgNoMatches labels a count with no occurrences.
const MsgNoMatches = "No matches found"

// Options controls matching behavior for a single operation.
type Options struct {
	// MatchCase requires exact case; otherwise matching is folded.
	MatchCase bool

	// Wrap continues the search from the opposite end of the buffer
	// when the first pass finds nothing.
	Wrap bool
}

// Match is one found occurrence: a 1-indexed line and the byte span
// within it.
type Match struct {
	Line  int `json:"line"`
	Start int `json:"start"`
	End   int `json:"end"`
}

// Next finds the first occurrence of needle at or after the search
// origin and selects it with the cursor at the match end. The wrap
// pass restarts from the top and stops before the origin line.
// Returns false when nothing is found; the document is left untouched.
func Next(doc *session.Document, needle string, opts Options) (Match, bool) {
	if doc == nil || needle == "" {
		return Match{}, false
	}

	lines := doc.Lines()
	origin := searchOrigin(doc, true)
	curIdx := origin.Line - 1
	fneedle := fold(needle, opts.MatchCase)

	for i := curIdx; i < len(lines); i++ {
		hay, offset := lines[i], 0
		if i == curIdx {
			hay, offset = hay[origin.Char:], origin.Char
		}
		if idx := strings.Index(fold(hay, opts.MatchCase), fneedle); idx >= 0 {
			return selectForward(doc, i+1, offset+idx, len(needle)), true
		}
	}

	if !opts.Wrap {
		return Match{}, false
	}
	for i := 0; i < curIdx; i++ {
		if idx := strings.Index(fold(lines[i], opts.MatchCase), fneedle); idx >= 0 {
			return selectForward(doc, i+1, idx, len(needle)), true
		}
	}
	return Match{}, false
}

// Previous finds the last occurrence of needle before the search
// origin and selects it backward, leaving the cursor at the match
// start. The wrap pass restarts from the bottom and stops before the
// origin line.
func Previous(doc *session.Document, needle string, opts Options) (Match, bool) {
	if doc == nil || needle == "" {
		return Match{}, false
	}

	lines := doc.Lines()
	origin := searchOrigin(doc, false)
	curIdx := origin.Line - 1
	fneedle := fold(needle, opts.MatchCase)

	for i := curIdx; i >= 0; i-- {
		hay := lines[i]
		if i == curIdx {
			hay = hay[:origin.Char]
		}
		if idx := strings.LastIndex(fold(hay, opts.MatchCase), fneedle); idx >= 0 {
			return selectBackward(doc, i+1, idx, len(needle)), true
		}
	}

	if !opts.Wrap {
		return Match{}, false
	}
	for i := len(lines) - 1; i > curIdx; i-- {
		if idx := strings.LastIndex(fold(lines[i], opts.MatchCase), fneedle); idx >= 0 {
			return selectBackward(doc, i+1, idx, len(needle)), true
		}
	}
	return Match{}, false
}

// Count tallies every occurrence of needle in the buffer, and how many
// of them lie at or before the current position. Counting is
// non-overlapping per line. The current tally includes a selected
// match, so a find sequence reads 1 of N, 2 of N, and so on.
func Count(doc *session.Document, needle string, matchCase bool) (total, current int) {
	if doc == nil || needle == "" {
		return 0, 0
	}

	fneedle := fold(needle, matchCase)
	cur := doc.Cursor()
	curIdx := cur.Line - 1

	endChar := cur.Char
	if _, end := doc.Selection(); end.Line == cur.Line && end.Char > endChar {
		endChar = end.Char
	}

	for i, line := range doc.Lines() {
		fl := fold(line, matchCase)
		n := strings.Count(fl, fneedle)
		total += n

		switch {
		case i < curIdx:
			current += n
		case i == curIdx:
			limit := endChar
			if limit > len(fl) {
				limit = len(fl)
			}
			current += strings.Count(fl[:limit], fneedle)
		}
	}
	return total, current
}

// CountLabel formats a Count result for display.
func CountLabel(total, current int) string {
	if total == 0 {
		return MsgNoMatches
	}
	return fmt.Sprintf("%d of %d", current, total)
}

// ReplaceOne replaces the selection when it equals the needle, then
// advances to the next match. Returns whether a replacement happened,
// so callers can distinguish replacing from merely stepping onto the
// first match.
func ReplaceOne(doc *session.Document, needle, replacement string, opts Options) bool {
	if doc == nil || needle == "" {
		return false
	}

	replaced := false
	start, end := doc.Selection()
	if sel := doc.SelectedText(); sel != "" && start.Line == end.Line &&
		fold(sel, opts.MatchCase) == fold(needle, opts.MatchCase) {
		line, _ := doc.Line(start.Line)
		doc.SetLine(start.Line, line[:start.Char]+replacement+line[end.Char:])
		doc.SetCursor(session.Position{Line: start.Line, Char: start.Char + len(replacement)})
		replaced = true
	}

	Next(doc, needle, opts)
	return replaced
}

// ReplaceAll replaces every occurrence of needle in the buffer and
// returns the number of replacements. Matches are consumed left to
// right without overlap.
func ReplaceAll(doc *session.Document, needle, replacement string, opts Options) int {
	if doc == nil || needle == "" {
		return 0
	}

	count := 0
	for n := 1; n <= doc.LineCount(); n++ {
		line, _ := doc.Line(n)
		if replacedLine, c := replaceLine(line, needle, replacement, opts.MatchCase); c > 0 {
			doc.SetLine(n, replacedLine)
			count += c
		}
	}
	return count
}

// replaceLine rewrites one line, returning it with the replacement
// count. The case-folded path walks the line manually so the original
// casing of unmatched text survives.
func replaceLine(line, needle, replacement string, matchCase bool) (string, int) {
	if matchCase {
		n := strings.Count(line, needle)
		if n == 0 {
			return line, 0
		}
		return strings.ReplaceAll(line, needle, replacement), n
	}

	fline, fneedle := strings.ToLower(line), strings.ToLower(needle)
	var b strings.Builder
	count, pos := 0, 0
	for {
		idx := strings.Index(fline[pos:], fneedle)
		if idx < 0 {
			break
		}
		at := pos + idx
		b.WriteString(line[pos:at])
		b.WriteString(replacement)
		pos = at + len(fneedle)
		count++
	}
	if count == 0 {
		return line, 0
	}
	b.WriteString(line[pos:])
	return b.String(), count
}

// searchOrigin is where a search resumes: the selection's trailing
// bound for forward searches and its leading bound for backward ones,
// so alternating Next and Previous steps between matches instead of
// re-landing on the selected one. Falls back to the cursor when
// nothing is selected.
func searchOrigin(doc *session.Document, forward bool) session.Position {
	if !doc.HasSelection() {
		return doc.Cursor()
	}
	start, end := doc.Selection()
	if forward {
		return end
	}
	return start
}

// selectForward selects a match with the cursor at its end.
func selectForward(doc *session.Document, line, start, length int) Match {
	doc.SetSelection(
		session.Position{Line: line, Char: start},
		session.Position{Line: line, Char: start + length},
	)
	return Match{Line: line, Start: start, End: start + length}
}

// selectBackward selects a match with the cursor at its start.
func selectBackward(doc *session.Document, line, start, length int) Match {
	doc.SetSelection(
		session.Position{Line: line, Char: start + length},
		session.Position{Line: line, Char: start},
	)
	return Match{Line: line, Start: start, End: start + length}
}

func fold(s string, matchCase bool) string {
	if matchCase {
		return s
	}
	return strings.ToLower(s)
}
