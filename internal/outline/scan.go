package outline

import (
	"regexp"
	"strings"
	"unicode"
)

// DefaultMaxPreviewLength is the cap on value previews in characters.
const DefaultMaxPreviewLength = 50

// DefaultMarkerAttribute is the class-body attribute whose string literal
// is surfaced as a node's marker value.
const DefaultMarkerAttribute = "bl_idname"

// Declaration introducer patterns, tested in precedence order.
// First match wins; lines matching none are skipped.
var (
	classPattern    = regexp.MustCompile(`^\s*class\s+(\w+)\s*[(:]`)
	functionPattern = regexp.MustCompile(`^\s*def\s+(\w+)\s*\(`)
	propertyPattern = regexp.MustCompile(`^\s*(\w+)\s*:\s*[\w\[\]]+`)
	constantPattern = regexp.MustCompile(`^\s*([A-Z_][A-Z0-9_]*)\s*=`)
	variablePattern = regexp.MustCompile(`^\s*([a-zA-Z_]\w*)\s*=`)
)

// Options controls outline construction.
type Options struct {
	MarkerAttribute  string // Class-body attribute extracted as marker value
	MaxPreviewLength int    // Value preview cap in characters
}

// DefaultOptions returns the default outline options.
func DefaultOptions() Options {
	return Options{
		MarkerAttribute:  DefaultMarkerAttribute,
		MaxPreviewLength: DefaultMaxPreviewLength,
	}
}

// Scan classifies every line of text and assembles the declaration tree
// using indentation depth as the sole nesting signal. End lines are not
// assigned here; Enrich (or its fallback) resolves them.
func Scan(text string, opts Options) *Outline {
	if opts.MaxPreviewLength <= 0 {
		opts.MaxPreviewLength = DefaultMaxPreviewLength
	}

	o := &Outline{}
	lines := strings.Split(text, "\n")

	// Stack of open scopes, as arena indices. Only container kinds
	// (class/function/method) are ever pushed.
	var stack []int

	for i, line := range lines {
		stripped := strings.TrimSpace(line)
		if stripped == "" || strings.HasPrefix(stripped, "#") {
			continue
		}

		indent := indentWidth(line)
		for len(stack) > 0 && o.Nodes[stack[len(stack)-1]].Indent >= indent {
			stack = stack[:len(stack)-1]
		}

		parent := -1
		parentKind := Kind(-1)
		if len(stack) > 0 {
			parent = stack[len(stack)-1]
			parentKind = o.Nodes[parent].Kind
		}

		node, ok := classifyLine(line, i+1, indent, parent, parentKind, opts)
		if !ok {
			continue
		}

		idx := o.add(node)
		if node.Kind.Container() {
			stack = append(stack, idx)
		}
	}

	return o
}

// classifyLine matches one line against the introducer patterns in
// precedence order: class, function, property, then constant/variable
// (the last two at module scope only).
func classifyLine(line string, lineNum, indent, parent int, parentKind Kind, opts Options) (Node, bool) {
	if m := classPattern.FindStringSubmatch(line); m != nil {
		return Node{Name: m[1], Kind: KindClass, StartLine: lineNum, Indent: indent, Parent: parent}, true
	}

	if m := functionPattern.FindStringSubmatch(line); m != nil {
		// A def is a method only when the enclosing scope is a class or a
		// plain function; a def nested inside a method stays a function.
		kind := KindFunction
		if parentKind == KindClass || parentKind == KindFunction {
			kind = KindMethod
		}
		return Node{Name: m[1], Kind: kind, StartLine: lineNum, Indent: indent, Parent: parent}, true
	}

	stripped := strings.TrimSpace(line)
	if m := propertyPattern.FindStringSubmatch(line); m != nil {
		// An annotation without assignment: a colon but no equals sign.
		if strings.Contains(stripped, ":") && !strings.Contains(stripped, "=") {
			return Node{Name: m[1], Kind: KindProperty, StartLine: lineNum, Indent: indent, Parent: parent}, true
		}
	}

	// Constants and variables bind at module scope only.
	if parent == -1 {
		if m := constantPattern.FindStringSubmatch(line); m != nil && isUpperName(m[1]) {
			n := Node{Name: m[1], Kind: KindConstant, StartLine: lineNum, Indent: indent, Parent: parent}
			n.ValuePreview = textPreview(line, opts.MaxPreviewLength)
			return n, true
		}
		if m := variablePattern.FindStringSubmatch(line); m != nil && !isUpperName(m[1]) {
			n := Node{Name: m[1], Kind: KindVariable, StartLine: lineNum, Indent: indent, Parent: parent}
			n.ValuePreview = textPreview(line, opts.MaxPreviewLength)
			return n, true
		}
	}

	return Node{}, false
}

// textPreview captures the text after the first "=" verbatim, truncated
// to max characters with an ellipsis marker when cut.
func textPreview(line string, max int) string {
	_, value, found := strings.Cut(line, "=")
	if !found {
		return ""
	}
	value = strings.TrimSpace(value)
	if len(value) > max {
		return value[:max] + "..."
	}
	return value
}

// indentWidth returns the number of leading whitespace characters on a
// line. Tabs count a single column, not a tab stop.
func indentWidth(line string) int {
	for i, r := range line {
		if r != ' ' && r != '\t' {
			return i
		}
	}
	return len(line)
}

// isUpperName reports whether a name counts as all-uppercase: at least
// one cased letter, and no lowercase letters.
func isUpperName(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			hasLetter = true
		}
	}
	return hasLetter
}
