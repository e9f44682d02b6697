package outline

import (
	"fmt"
	"strings"
)

// Kind identifies the declaration category of an outline node.
type Kind int

const (
	KindClass Kind = iota
	KindFunction
	KindMethod
	KindProperty
	KindConstant
	KindVariable
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindFunction:
		return "function"
	case KindMethod:
		return "method"
	case KindProperty:
		return "property"
	case KindConstant:
		return "constant"
	case KindVariable:
		return "variable"
	default:
		return "unknown"
	}
}

// ParseKind resolves a kind name back to its enum value.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "class":
		return KindClass, nil
	case "function":
		return KindFunction, nil
	case "method":
		return KindMethod, nil
	case "property":
		return KindProperty, nil
	case "constant":
		return KindConstant, nil
	case "variable":
		return KindVariable, nil
	default:
		return 0, fmt.Errorf("unknown kind %q", s)
	}
}

// MarshalJSON encodes the kind as its string name.
func (k Kind) MarshalJSON() ([]byte, error) {
	return []byte(`"` + k.String() + `"`), nil
}

// Container reports whether nodes of this kind can own children.
// Only classes, functions, and methods open a nested scope.
func (k Kind) Container() bool {
	switch k {
	case KindClass, KindFunction, KindMethod:
		return true
	case KindProperty, KindConstant, KindVariable:
		return false
	default:
		return false
	}
}

// Node is one recognized declaration. Nodes live in the Outline's flat
// arena; Parent and Children reference other nodes by arena index.
type Node struct {
	Name         string `json:"name"`                    // Declared identifier
	Kind         Kind   `json:"kind"`                    // Declaration category
	StartLine    int    `json:"start_line"`              // 1-indexed introducer line
	EndLine      int    `json:"end_line"`                // 1-indexed last line (inclusive)
	Indent       int    `json:"indent"`                  // Leading whitespace width of the introducer line
	Parent       int    `json:"-"`                       // Arena index of parent, -1 at module scope
	Children     []int  `json:"-"`                       // Arena indices in source order
	MarkerValue  string `json:"marker_value,omitempty"`  // Class-body marker attribute literal
	ValuePreview string `json:"value_preview,omitempty"` // Truncated right-hand-side preview
}

// LineCount returns the number of lines the declaration spans.
func (n *Node) LineCount() int {
	if n.EndLine == 0 {
		return 1
	}
	return n.EndLine - n.StartLine + 1
}

// Label returns the display text for the node: the bare name, or
// "name = preview" for variables and constants carrying a preview.
func (n *Node) Label() string {
	if (n.Kind == KindVariable || n.Kind == KindConstant) && n.ValuePreview != "" {
		return n.Name + " = " + n.ValuePreview
	}
	return n.Name
}

// Outline is the arena-backed declaration tree for one buffer.
type Outline struct {
	Nodes  []Node `json:"nodes"`  // Arena storage; indices are stable node IDs
	Roots  []int  `json:"roots"`  // Module-scope nodes in source order
	Parsed bool   `json:"parsed"` // True when a full parse supplied end lines
}

// Empty reports whether the outline holds no declarations.
func (o *Outline) Empty() bool {
	return o == nil || len(o.Nodes) == 0
}

// Node returns the node at the given arena index.
func (o *Outline) Node(idx int) *Node {
	return &o.Nodes[idx]
}

// add appends a node to the arena and links it to its parent
// (or to the roots when parent is -1). Returns the new index.
func (o *Outline) add(n Node) int {
	idx := len(o.Nodes)
	o.Nodes = append(o.Nodes, n)
	if n.Parent >= 0 {
		o.Nodes[n.Parent].Children = append(o.Nodes[n.Parent].Children, idx)
	} else {
		o.Roots = append(o.Roots, idx)
	}
	return idx
}

// Path returns the dot-joined chain of names from the module root down
// to the node. Paths identify nodes stably across rebuilds as long as
// names and nesting are unchanged.
func (o *Outline) Path(idx int) string {
	var parts []string
	for i := idx; i >= 0; i = o.Nodes[i].Parent {
		parts = append(parts, o.Nodes[i].Name)
	}
	for l, r := 0, len(parts)-1; l < r; l, r = l+1, r-1 {
		parts[l], parts[r] = parts[r], parts[l]
	}
	return strings.Join(parts, ".")
}

// Depth returns the nesting depth of the node (0 for module scope).
func (o *Outline) Depth(idx int) int {
	depth := 0
	for i := o.Nodes[idx].Parent; i >= 0; i = o.Nodes[i].Parent {
		depth++
	}
	return depth
}

// Flatten returns all arena indices in depth-first source order.
func (o *Outline) Flatten() []int {
	out := make([]int, 0, len(o.Nodes))
	var walk func(idx int)
	walk = func(idx int) {
		out = append(out, idx)
		for _, c := range o.Nodes[idx].Children {
			walk(c)
		}
	}
	for _, r := range o.Roots {
		walk(r)
	}
	return out
}

// Walk invokes fn for every node in depth-first source order, passing
// the arena index and nesting depth. Returning false stops the walk.
func (o *Outline) Walk(fn func(idx, depth int) bool) {
	var walk func(idx, depth int) bool
	walk = func(idx, depth int) bool {
		if !fn(idx, depth) {
			return false
		}
		for _, c := range o.Nodes[idx].Children {
			if !walk(c, depth+1) {
				return false
			}
		}
		return true
	}
	for _, r := range o.Roots {
		if !walk(r, 0) {
			return
		}
	}
}
