package textops

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// TrimTrailing returns a copy of lines with trailing whitespace
// stripped, plus how many characters were removed.
func TrimTrailing(lines []string) ([]string, int) {
	out := make([]string, len(lines))
	removed := 0
	for i, line := range lines {
		trimmed := strings.TrimRightFunc(line, unicode.IsSpace)
		if trimmed != line {
			removed += utf8.RuneCountInString(line) - utf8.RuneCountInString(trimmed)
		}
		out[i] = trimmed
	}
	return out, removed
}

// NeedsTrim reports whether any line carries trailing whitespace.
func NeedsTrim(lines []string) bool {
	for _, line := range lines {
		if strings.TrimRightFunc(line, unicode.IsSpace) != line {
			return true
		}
	}
	return false
}
