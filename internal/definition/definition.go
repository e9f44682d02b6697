// Package definition resolves where an identifier was bound inside a
// buffer: the jump-to-definition walk behind "go to definition".
package definition

import (
	"context"
	"sort"
	"strings"
	"unicode"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"scriptmap/internal/session"
)

// Kind names how an identifier came to be bound.
type Kind string

const (
	KindFunction      Kind = "function"
	KindAsyncFunction Kind = "async_function"
	KindClass         Kind = "class"
	KindVariable      Kind = "variable"
	KindArgument      Kind = "argument"
	KindVararg        Kind = "vararg"
	KindKwarg         Kind = "kwarg"
	KindImport        Kind = "import"
	KindFromImport    Kind = "from_import"
	KindLoopVariable  Kind = "loop_variable"
	KindContextVar    Kind = "context_variable"
	KindExceptionVar  Kind = "exception_variable"
	KindComprehension Kind = "comprehension_variable"
)

// Site is one place the target identifier is bound: a 1-indexed line
// and a 0-indexed column pointing at the bound name. Parameter sites
// also carry the span of their defining function.
type Site struct {
	Name      string `json:"name"`
	Kind      Kind   `json:"kind"`
	Line      int    `json:"line"`
	Column    int    `json:"column"`
	FuncStart int    `json:"-"`
	FuncEnd   int    `json:"-"`
}

// GoTo resolves the identifier under the cursor and moves the cursor
// to its definition. Returns false when the cursor is not on an
// identifier or no binding site exists.
func GoTo(ctx context.Context, doc *session.Document) (Site, bool) {
	if doc == nil {
		return Site{}, false
	}
	word := doc.WordAt(doc.Cursor())
	if !isIdentifier(word) {
		return Site{}, false
	}

	sites := Collect(ctx, doc.Text(), word)
	best, ok := Resolve(sites, doc.Cursor().Line)
	if !ok {
		return Site{}, false
	}
	doc.SetCursor(session.Position{Line: best.Line, Char: best.Column})
	return best, true
}

// Collect parses text and returns every site binding word, sorted by
// line. Sources that do not parse cleanly yield nothing; a jump should
// not land on a guess.
func Collect(ctx context.Context, text, word string) []Site {
	if word == "" {
		return nil
	}

	src := []byte(text)
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil
	}

	c := &collector{src: src, word: word}
	c.walk(root)
	sort.SliceStable(c.sites, func(i, j int) bool {
		return c.sites[i].Line < c.sites[j].Line
	})
	return c.sites
}

// Resolve picks the jump target for a cursor on the given 1-indexed
// line. Sites at or before the cursor win over forward references;
// parameters count only while the cursor is inside their function
// (unless nothing else remains); among the survivors the nearest line
// wins.
func Resolve(sites []Site, cursorLine int) (Site, bool) {
	if len(sites) == 0 {
		return Site{}, false
	}

	var valid []Site
	for _, s := range sites {
		if s.Line <= cursorLine {
			valid = append(valid, s)
		}
	}
	if len(valid) == 0 {
		// Only forward references exist: take the earliest.
		return sites[0], true
	}

	filtered := make([]Site, 0, len(valid))
	for _, s := range valid {
		if isParameter(s.Kind) && !(s.FuncStart <= cursorLine && cursorLine <= s.FuncEnd) {
			continue
		}
		filtered = append(filtered, s)
	}
	if len(filtered) > 0 {
		valid = filtered
	}

	sort.SliceStable(valid, func(i, j int) bool {
		return abs(cursorLine-valid[i].Line) < abs(cursorLine-valid[j].Line)
	})
	return valid[0], true
}

type collector struct {
	src   []byte
	word  string
	sites []Site
}

func (c *collector) walk(n *sitter.Node) {
	switch n.Type() {
	case "function_definition":
		c.function(n)
	case "class_definition":
		if name := n.ChildByFieldName("name"); name != nil && !strings.HasPrefix(c.text(name), "__") {
			c.add(name, KindClass, nil)
		}
	case "assignment", "augmented_assignment":
		c.targets(n.ChildByFieldName("left"), KindVariable)
	case "import_statement":
		c.imports(n, KindImport)
	case "import_from_statement":
		c.imports(n, KindFromImport)
	case "for_statement":
		c.targets(n.ChildByFieldName("left"), KindLoopVariable)
	case "for_in_clause":
		c.targets(n.ChildByFieldName("left"), KindComprehension)
	case "with_statement":
		c.withItems(n)
	case "except_clause":
		c.exceptAlias(n)
	}

	for i := 0; i < int(n.ChildCount()); i++ {
		c.walk(n.Child(i))
	}
}

// function records the definition itself plus any parameters binding
// the target word. Dunder names are not offered as jump targets, but
// their parameters still are.
func (c *collector) function(n *sitter.Node) {
	kind := KindFunction
	if first := n.Child(0); first != nil && first.Type() == "async" {
		kind = KindAsyncFunction
	}
	if name := n.ChildByFieldName("name"); name != nil && !strings.HasPrefix(c.text(name), "__") {
		c.add(name, kind, nil)
	}

	params := n.ChildByFieldName("parameters")
	if params == nil {
		return
	}
	span := [2]int{int(n.StartPoint().Row) + 1, blockEndLine(n)}
	for i := 0; i < int(params.NamedChildCount()); i++ {
		p := params.NamedChild(i)
		kind := KindArgument
		switch p.Type() {
		case "list_splat_pattern":
			kind = KindVararg
		case "dictionary_splat_pattern":
			kind = KindKwarg
		case "positional_separator", "keyword_separator":
			continue
		}
		if id := firstIdentifier(p); id != nil {
			c.add(id, kind, &span)
		}
	}
}

// targets records every name bound by an assignment target, descending
// through tuple and list unpacking. Attribute and subscript targets
// bind no new name and are skipped.
func (c *collector) targets(n *sitter.Node, kind Kind) {
	if n == nil {
		return
	}
	switch n.Type() {
	case "identifier":
		c.add(n, kind, nil)
	case "pattern_list", "tuple_pattern", "list_pattern":
		for i := 0; i < int(n.NamedChildCount()); i++ {
			c.targets(n.NamedChild(i), kind)
		}
	case "list_splat_pattern":
		c.targets(n.NamedChild(0), kind)
	}
}

// imports records imported names: the alias when present, otherwise
// the name itself (its first dotted segment for plain imports). The
// module in a from-import binds nothing.
func (c *collector) imports(n *sitter.Node, kind Kind) {
	module := n.ChildByFieldName("module_name")

	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if module != nil && child.StartByte() == module.StartByte() {
			continue
		}

		switch child.Type() {
		case "dotted_name":
			name := c.text(child)
			if kind == KindImport {
				name, _, _ = strings.Cut(name, ".")
			}
			if name == c.word {
				c.sites = append(c.sites, Site{
					Name:   name,
					Kind:   kind,
					Line:   int(child.StartPoint().Row) + 1,
					Column: int(child.StartPoint().Column),
				})
			}
		case "aliased_import":
			if alias := child.ChildByFieldName("alias"); alias != nil {
				c.add(alias, kind, nil)
			}
		}
	}
}

func (c *collector) withItems(n *sitter.Node) {
	clause := childOfType(n, "with_clause")
	if clause == nil {
		return
	}
	for i := 0; i < int(clause.NamedChildCount()); i++ {
		item := clause.NamedChild(i)
		if item.Type() != "with_item" {
			continue
		}
		value := item.ChildByFieldName("value")
		if value == nil || value.Type() != "as_pattern" {
			continue
		}
		if alias := value.ChildByFieldName("alias"); alias != nil {
			if id := firstIdentifier(alias); id != nil {
				c.add(id, KindContextVar, nil)
			}
		}
	}
}

func (c *collector) exceptAlias(n *sitter.Node) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() != "as_pattern" {
			continue
		}
		if alias := child.ChildByFieldName("alias"); alias != nil {
			if id := firstIdentifier(alias); id != nil {
				c.add(id, KindExceptionVar, nil)
			}
		}
	}
}

// add appends a site when the node's text is the target word.
func (c *collector) add(n *sitter.Node, kind Kind, span *[2]int) {
	if c.text(n) != c.word {
		return
	}
	s := Site{
		Name:   c.word,
		Kind:   kind,
		Line:   int(n.StartPoint().Row) + 1,
		Column: int(n.StartPoint().Column),
	}
	if span != nil {
		s.FuncStart, s.FuncEnd = span[0], span[1]
	}
	c.sites = append(c.sites, s)
}

func (c *collector) text(n *sitter.Node) string {
	return string(c.src[n.StartByte():n.EndByte()])
}

// firstIdentifier returns the first identifier in the subtree, the
// node itself included.
func firstIdentifier(n *sitter.Node) *sitter.Node {
	if n == nil {
		return nil
	}
	if n.Type() == "identifier" {
		return n
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if id := firstIdentifier(n.NamedChild(i)); id != nil {
			return id
		}
	}
	return nil
}

func childOfType(n *sitter.Node, nodeType string) *sitter.Node {
	for i := 0; i < int(n.ChildCount()); i++ {
		if child := n.Child(i); child.Type() == nodeType {
			return child
		}
	}
	return nil
}

// blockEndLine converts a node's end point to a 1-indexed inclusive
// line. An end point at column 0 belongs to the previous line.
func blockEndLine(n *sitter.Node) int {
	end := int(n.EndPoint().Row) + 1
	if n.EndPoint().Column == 0 && end > int(n.StartPoint().Row)+1 {
		end--
	}
	return end
}

func isParameter(k Kind) bool {
	return k == KindArgument || k == KindVararg || k == KindKwarg
}

// isIdentifier reports whether s is a plausible Python identifier:
// a letter or underscore followed by word characters.
func isIdentifier(s string) bool {
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) {
			continue
		}
		if i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return s != ""
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
