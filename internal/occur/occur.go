// Package occur finds every occurrence of a piece of text across a
// buffer. It backs selection highlighting: select a word and every
// other place it appears lights up.
package occur

import (
	"log/slog"
	"regexp"
	"strings"
	"unicode"

	"scriptmap/internal/config"
	"scriptmap/internal/logging"
	"scriptmap/internal/session"
)

// Match is one occurrence: a 1-indexed line and the byte span within it.
type Match struct {
	Line  int `json:"line"`
	Start int `json:"start"`
	End   int `json:"end"`
}

// Highlighter scans buffers for occurrences under the configured
// matching rules.
type Highlighter struct {
	cfg    config.OccurrenceConfig
	logger *slog.Logger
}

// New creates a highlighter. Zero limits fall back to defaults.
func New(cfg config.OccurrenceConfig) *Highlighter {
	if cfg.MaxPerLine <= 0 {
		cfg.MaxPerLine = config.DefaultOccurrenceConfig().MaxPerLine
	}
	return &Highlighter{
		cfg:    cfg,
		logger: logging.Default("occur"),
	}
}

// Pattern builds the regular expression source for a needle. A needle
// made entirely of word characters is bounded with \b so that "cat"
// does not light up inside "concatenate"; a needle carrying any other
// symbol matches literally.
func Pattern(needle string, wholeWord bool) string {
	quoted := regexp.QuoteMeta(needle)
	if !wholeWord {
		return quoted
	}
	for _, r := range needle {
		if !isWordRune(r) {
			return quoted
		}
	}
	return `\b` + quoted + `\b`
}

// FromSelection finds every occurrence of the current selection. The
// selected span itself is carved out so only the other sites light up.
// Selections spanning multiple lines, blank selections, and selections
// shorter than the configured minimum return nothing.
func (h *Highlighter) FromSelection(doc *session.Document) []Match {
	if doc == nil || !doc.HasSelection() {
		return nil
	}
	start, end := doc.Selection()
	if start.Line != end.Line {
		return nil
	}
	needle := doc.SelectedText()
	if strings.TrimSpace(needle) == "" || len(needle) < h.cfg.MinLength {
		return nil
	}
	return h.find(doc, needle, start.Line, start.Char, end.Char)
}

// Find finds every occurrence of needle with no selection carve-out,
// the scan behind highlighting a find-text entry.
func (h *Highlighter) Find(doc *session.Document, needle string) []Match {
	if doc == nil || strings.TrimSpace(needle) == "" || len(needle) < h.cfg.MinLength {
		return nil
	}
	return h.find(doc, needle, 0, 0, 0)
}

// find runs the per-line scan. When selLine is positive, matches on
// that line touching the [selStart, selEnd) span are skipped. A single
// line yielding more than MaxPerLine matches abandons the whole scan,
// returning what earlier lines produced.
func (h *Highlighter) find(doc *session.Document, needle string, selLine, selStart, selEnd int) []Match {
	src := Pattern(needle, h.cfg.WholeWord)
	if !h.cfg.CaseSensitive {
		src = "(?i)" + src
	}
	re, err := regexp.Compile(src)
	if err != nil {
		h.logger.Warn("bad occurrence pattern", "pattern", src, "error", err)
		return nil
	}

	var matches []Match
	for n, line := range doc.Lines() {
		lineNum := n + 1
		spans := re.FindAllStringIndex(line, -1)

		found := make([]Match, 0, len(spans))
		for _, span := range spans {
			if lineNum == selLine && touchesSelection(span[0], span[1], selStart, selEnd) {
				continue
			}
			found = append(found, Match{Line: lineNum, Start: span[0], End: span[1]})
		}

		if len(found) > h.cfg.MaxPerLine {
			h.logger.Debug("occurrence scan abandoned", "line", lineNum, "matches", len(found))
			return matches
		}
		matches = append(matches, found...)
	}
	return matches
}

// touchesSelection reports whether either endpoint of a match falls
// inside the half-open selection span.
func touchesSelection(start, end, selStart, selEnd int) bool {
	return (start >= selStart && start < selEnd) || (end >= selStart && end < selEnd)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
