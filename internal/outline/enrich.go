package outline

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// Build scans text into a declaration tree and enriches it with exact
// block spans from a full parse. When the source does not parse cleanly
// the indentation fallback supplies every end line instead and Parsed
// stays false.
func Build(ctx context.Context, text string, opts Options) *Outline {
	o := Scan(text, opts)
	o.Parsed = Enrich(ctx, text, o, opts)
	fillEndLines(o, strings.Split(text, "\n"))
	return o
}

// Enrich resolves exact end lines, marker values, and literal previews
// by parsing text and matching parse nodes to outline entries by start
// line. It returns false when parsing fails or the tree contains syntax
// errors; unmatched entries are left for fillEndLines to complete.
func Enrich(ctx context.Context, text string, o *Outline, opts Options) bool {
	if opts.MaxPreviewLength <= 0 {
		opts.MaxPreviewLength = DefaultMaxPreviewLength
	}

	src := []byte(text)
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return false
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return false
	}

	// Scan records at most one declaration per line, so start lines
	// index the arena uniquely.
	byLine := make(map[int]int, len(o.Nodes))
	for i, n := range o.Nodes {
		byLine[n.StartLine] = i
	}

	enrichNode(root, src, o, byLine, opts)
	return true
}

// enrichNode walks the parse tree and transfers spans onto outline
// entries whose start line coincides with a definition or assignment.
func enrichNode(n *sitter.Node, src []byte, o *Outline, byLine map[int]int, opts Options) {
	switch n.Type() {
	case "class_definition":
		line := int(n.StartPoint().Row) + 1
		if idx, ok := byLine[line]; ok && o.Nodes[idx].Kind == KindClass {
			o.Nodes[idx].EndLine = nodeEndLine(n)
			if marker := classMarker(n, src, opts.MarkerAttribute); marker != "" {
				o.Nodes[idx].MarkerValue = marker
			}
		}
	case "function_definition":
		line := int(n.StartPoint().Row) + 1
		if idx, ok := byLine[line]; ok {
			if k := o.Nodes[idx].Kind; k == KindFunction || k == KindMethod {
				o.Nodes[idx].EndLine = nodeEndLine(n)
			}
		}
	case "assignment":
		enrichAssignment(n, src, o, byLine, opts)
	}

	for i := 0; i < int(n.ChildCount()); i++ {
		enrichNode(n.Child(i), src, o, byLine, opts)
	}
}

// enrichAssignment pins a matched assignment to its own line and swaps
// the scanned preview for the exact literal source, or clears it when
// the right-hand side is not a plain literal. Annotated assignments
// carry a type field and are skipped.
func enrichAssignment(n *sitter.Node, src []byte, o *Outline, byLine map[int]int, opts Options) {
	if n.ChildByFieldName("type") != nil {
		return
	}
	right := n.ChildByFieldName("right")
	if right == nil {
		return
	}

	line := int(n.StartPoint().Row) + 1
	idx, ok := byLine[line]
	if !ok {
		return
	}

	node := &o.Nodes[idx]
	switch node.Kind {
	case KindProperty, KindConstant, KindVariable:
	default:
		return
	}

	node.EndLine = node.StartLine
	if isLiteral(right.Type()) {
		value := nodeText(right, src)
		if len(value) > opts.MaxPreviewLength {
			value = value[:opts.MaxPreviewLength] + "..."
		}
		node.ValuePreview = value
	} else {
		node.ValuePreview = ""
	}
}

// classMarker returns the unquoted string assigned to the marker
// attribute directly in the class body, or "" when absent.
func classMarker(class *sitter.Node, src []byte, attribute string) string {
	if attribute == "" {
		return ""
	}
	body := class.ChildByFieldName("body")
	if body == nil {
		return ""
	}

	for i := 0; i < int(body.ChildCount()); i++ {
		stmt := body.Child(i)
		if stmt.Type() != "expression_statement" || stmt.ChildCount() == 0 {
			continue
		}
		assign := stmt.Child(0)
		if assign.Type() != "assignment" || assign.ChildByFieldName("type") != nil {
			continue
		}
		left := assign.ChildByFieldName("left")
		right := assign.ChildByFieldName("right")
		if left == nil || right == nil {
			continue
		}
		if left.Type() != "identifier" || nodeText(left, src) != attribute {
			continue
		}
		if right.Type() == "string" {
			return pyUnquote(nodeText(right, src))
		}
	}
	return ""
}

// nodeEndLine converts a node's end point to a 1-indexed inclusive
// line. An end point at column 0 belongs to the previous line.
func nodeEndLine(n *sitter.Node) int {
	endLine := int(n.EndPoint().Row) + 1
	if n.EndPoint().Column == 0 && endLine > int(n.StartPoint().Row)+1 {
		endLine--
	}
	return endLine
}

// nodeText returns the source text covered by a parse node.
func nodeText(n *sitter.Node, src []byte) string {
	return string(src[n.StartByte():n.EndByte()])
}

// isLiteral reports whether a parse node type is a plain literal whose
// source text is safe to surface as a value preview.
func isLiteral(nodeType string) bool {
	switch nodeType {
	case "string", "integer", "float", "true", "false", "none":
		return true
	}
	return false
}

// pyUnquote strips prefix letters and surrounding quotes from a
// source-level string literal. Escape sequences are left untouched.
func pyUnquote(s string) string {
	i := 0
	for i < len(s) && s[i] != '"' && s[i] != '\'' {
		i++
	}
	body := s[i:]
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if len(body) >= 2*len(q) && strings.HasPrefix(body, q) && strings.HasSuffix(body, q) {
			return body[len(q) : len(body)-len(q)]
		}
	}
	return s
}

// fillEndLines assigns an end line to every node that still lacks one.
// Single-line kinds end where they start; container kinds extend until
// the next non-blank line indented no deeper than their own introducer.
func fillEndLines(o *Outline, lines []string) {
	for i := range o.Nodes {
		n := &o.Nodes[i]
		if n.EndLine != 0 {
			continue
		}
		if n.Kind.Container() {
			n.EndLine = guessEndLine(lines, n.StartLine, n.Indent)
		} else {
			n.EndLine = n.StartLine
		}
	}
}

// guessEndLine scans forward from the declaration for the first
// non-blank line indented at or shallower than the declaration itself,
// and ends the block on the line before it. Interior blank lines are
// spanned; a block that runs to EOF ends on the last line.
func guessEndLine(lines []string, startLine, indent int) int {
	for i := startLine; i < len(lines); i++ {
		line := lines[i]
		if strings.TrimSpace(line) == "" {
			continue
		}
		if indentWidth(line) <= indent {
			return i
		}
	}
	return len(lines)
}
