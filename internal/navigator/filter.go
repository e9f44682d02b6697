package navigator

import (
	"strings"

	"scriptmap/internal/outline"
)

// Empty-state labels for a render that produced no rows.
const (
	MsgNoMatches   = "No matches found"
	MsgNoStructure = "No code structure found"
)

// Row is one visible line of the navigation tree.
type Row struct {
	Index      int          `json:"-"`        // Arena index into the outline
	Label      string       `json:"label"`    // Display text, "name" or "name = preview"
	Kind       outline.Kind `json:"kind"`     // Declaration category
	Depth      int          `json:"depth"`    // Nesting level within the filtered tree
	Line       int          `json:"line"`     // Jump target line
	EndLine    int          `json:"end_line"` // Last line of the block
	Path       string       `json:"path"`     // Dot-joined toggle path
	Expandable bool         `json:"expandable,omitempty"`
	Expanded   bool         `json:"expanded,omitempty"`
	Active     bool         `json:"active,omitempty"` // Carries the cursor indicator
}

// View is one rendering request against an outline.
type View struct {
	Search     string // Case-insensitive name filter; empty keeps everything
	CursorLine int    // 1-indexed cursor line for active indicators; 0 disables them
	ExpandAll  bool   // Render every subtree regardless of expand state
}

// Render produces the visible rows of the tree: kind toggles first,
// then the search filter, then collapse pruning. A hidden container
// hides its whole subtree; an ancestor of a search match stays visible
// as the path to it. Returns nil when nothing survives; EmptyMessage
// names the reason.
func (n *Navigator) Render(o *outline.Outline, v View) []Row {
	if o.Empty() {
		return nil
	}

	keep := n.filterSet(o, v.Search)
	expanded := n.snapshotExpanded()

	activeFn, activeClass := -1, -1
	if v.CursorLine > 0 {
		activeFn = ActiveFunction(o, v.CursorLine)
		activeClass = ActiveClass(o, v.CursorLine)
	}

	var rows []Row
	var walk func(idx, depth int)
	walk = func(idx, depth int) {
		node := o.Node(idx)
		children := keptChildren(o, idx, keep)
		path := o.Path(idx)

		_, isExpanded := expanded[path]
		if v.ExpandAll {
			isExpanded = true
		}

		active := false
		switch node.Kind {
		case outline.KindFunction, outline.KindMethod:
			active = idx == activeFn
		case outline.KindClass:
			// A collapsed class carries the indicator for the cursor
			// inside it; an expanded one lets its children show it.
			active = idx == activeClass && !isExpanded
		}

		rows = append(rows, Row{
			Index:      idx,
			Label:      node.Label(),
			Kind:       node.Kind,
			Depth:      depth,
			Line:       node.StartLine,
			EndLine:    node.EndLine,
			Path:       path,
			Expandable: len(children) > 0,
			Expanded:   isExpanded && len(children) > 0,
			Active:     active,
		})

		if isExpanded {
			for _, c := range children {
				walk(c, depth+1)
			}
		}
	}

	for _, r := range o.Roots {
		if keep[r] {
			walk(r, 0)
		}
	}
	return rows
}

// EmptyMessage names the empty state for a render that produced no
// rows: no matches under an active search, otherwise no declarations
// at all.
func EmptyMessage(search string) string {
	if search != "" {
		return MsgNoMatches
	}
	return MsgNoStructure
}

// filterSet computes which arena indices stay visible under the kind
// toggles and the search filter. A node survives the search when its
// own name matches or any descendant's name does, case-insensitively.
func (n *Navigator) filterSet(o *outline.Outline, search string) map[int]bool {
	search = strings.ToLower(search)
	keep := make(map[int]bool, len(o.Nodes))

	var matches func(idx int) bool
	matches = func(idx int) bool {
		if strings.Contains(strings.ToLower(o.Node(idx).Name), search) {
			return true
		}
		for _, c := range o.Node(idx).Children {
			if matches(c) {
				return true
			}
		}
		return false
	}

	var walk func(idx int)
	walk = func(idx int) {
		if !n.kindVisible(o.Node(idx).Kind) {
			// Hidden kinds drop their whole subtree.
			return
		}
		if search != "" && !matches(idx) {
			return
		}
		keep[idx] = true
		for _, c := range o.Node(idx).Children {
			walk(c)
		}
	}
	for _, r := range o.Roots {
		walk(r)
	}
	return keep
}

// kindVisible applies the Show toggles. Kinds without an entry default
// to visible.
func (n *Navigator) kindVisible(k outline.Kind) bool {
	if v, ok := n.cfg.Show[k.String()]; ok {
		return v
	}
	return true
}

// keptChildren returns a node's children that survived filtering, in
// source order.
func keptChildren(o *outline.Outline, idx int, keep map[int]bool) []int {
	var out []int
	for _, c := range o.Node(idx).Children {
		if keep[c] {
			out = append(out, c)
		}
	}
	return out
}
