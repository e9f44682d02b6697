package bookmark

import (
	"fmt"
	"strings"
	"testing"

	"scriptmap/internal/config"
	"scriptmap/internal/session"
)

func openDoc(t *testing.T) *session.Document {
	t.Helper()
	text := "import os\n\ndef first():\n    return 1\n\ndef second():\n    return 2"
	return session.New().Open("script.py", text)
}

func addAt(t *testing.T, l *List, doc *session.Document, line int) {
	t.Helper()
	doc.SetCursor(session.Position{Line: line, Char: 0})
	if !l.Add(doc) {
		t.Fatalf("Add at line %d failed", line)
	}
}

func lines(items []Item) []int {
	out := make([]int, len(items))
	for i, it := range items {
		out[i] = it.Line
	}
	return out
}

func TestAdd(t *testing.T) {
	doc := openDoc(t)
	l := New(config.DefaultBookmarkConfig())

	addAt(t, l, doc, 3)
	if got := l.Items(); len(got) != 1 || got[0] != (Item{Line: 3, Content: "def first():"}) {
		t.Fatalf("unexpected items after add: %v", got)
	}
	if l.Selected() != 0 {
		t.Errorf("expected selection 0, got %d", l.Selected())
	}

	addAt(t, l, doc, 4)
	if got := l.Items()[1]; got != (Item{Line: 4, Content: "return 1"}) {
		t.Errorf("expected stripped content, got %+v", got)
	}
	if l.Selected() != 1 {
		t.Errorf("expected selection to follow add, got %d", l.Selected())
	}

	doc.SetCursor(session.Position{Line: 4, Char: 6})
	if l.Add(doc) {
		t.Error("expected duplicate line to be rejected")
	}
	if l.Len() != 2 {
		t.Errorf("expected 2 bookmarks, got %d", l.Len())
	}
}

func TestRemove(t *testing.T) {
	doc := openDoc(t)
	l := New(config.DefaultBookmarkConfig())
	addAt(t, l, doc, 1)
	addAt(t, l, doc, 3)
	addAt(t, l, doc, 6)

	if !l.Remove(1) {
		t.Fatal("Remove(1) failed")
	}
	if got := lines(l.Items()); got[0] != 1 || got[1] != 6 {
		t.Errorf("expected lines [1 6], got %v", got)
	}
	if l.Selected() != 0 {
		t.Errorf("expected selection on predecessor, got %d", l.Selected())
	}

	if l.Remove(5) {
		t.Error("expected out-of-range remove to fail")
	}
}

func TestMove(t *testing.T) {
	doc := openDoc(t)
	l := New(config.DefaultBookmarkConfig())
	addAt(t, l, doc, 1)
	addAt(t, l, doc, 3)
	addAt(t, l, doc, 6)

	l.SetSelected(0)
	if l.MoveUp() {
		t.Error("expected MoveUp at top to fail")
	}
	if !l.MoveDown() {
		t.Fatal("MoveDown failed")
	}
	if got := lines(l.Items()); got[0] != 3 || got[1] != 1 {
		t.Errorf("expected lines [3 1 6], got %v", got)
	}
	if l.Selected() != 1 {
		t.Errorf("expected selection to follow move, got %d", l.Selected())
	}

	if !l.MoveDown() {
		t.Fatal("second MoveDown failed")
	}
	if l.MoveDown() {
		t.Error("expected MoveDown at bottom to fail")
	}
	if !l.MoveUp() {
		t.Error("MoveUp failed")
	}
}

func TestRefreshRelocates(t *testing.T) {
	doc := openDoc(t)
	l := New(config.DefaultBookmarkConfig())
	addAt(t, l, doc, 3)
	addAt(t, l, doc, 7)

	doc.InsertLine(1, "# header")

	if !l.Refresh(doc) {
		t.Fatal("expected refresh to report a change")
	}
	want := []Item{
		{Line: 4, Content: "def first():"},
		{Line: 8, Content: "return 2"},
	}
	got := l.Items()
	if len(got) != len(want) {
		t.Fatalf("expected %d items, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("item %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}

	if l.Refresh(doc) {
		t.Error("expected settled refresh to report no change")
	}
}

func TestRefreshDropsVanished(t *testing.T) {
	doc := openDoc(t)
	l := New(config.DefaultBookmarkConfig())
	addAt(t, l, doc, 4)

	doc.SetLine(4, "    return 42")

	if !l.Refresh(doc) {
		t.Fatal("expected refresh to report a change")
	}
	if l.Len() != 0 {
		t.Errorf("expected vanished bookmark to be dropped, got %v", l.Items())
	}
}

func TestRefreshSearchRadius(t *testing.T) {
	t.Run("within radius", func(t *testing.T) {
		doc := openDoc(t)
		l := New(config.DefaultBookmarkConfig())
		addAt(t, l, doc, 1)

		for i := 0; i < 5; i++ {
			doc.InsertLine(1, fmt.Sprintf("# pad %d", i))
		}

		if !l.Refresh(doc) {
			t.Fatal("expected refresh to report a change")
		}
		if got := l.Items(); len(got) != 1 || got[0].Line != 6 {
			t.Errorf("expected relocation to line 6, got %v", got)
		}
	})

	t.Run("beyond radius", func(t *testing.T) {
		doc := openDoc(t)
		l := New(config.DefaultBookmarkConfig())
		addAt(t, l, doc, 1)

		for i := 0; i < 6; i++ {
			doc.InsertLine(1, fmt.Sprintf("# pad %d", i))
		}

		if !l.Refresh(doc) {
			t.Fatal("expected refresh to report a change")
		}
		if l.Len() != 0 {
			t.Errorf("expected bookmark beyond radius to be dropped, got %v", l.Items())
		}
	})
}

func TestSort(t *testing.T) {
	doc := openDoc(t)
	l := New(config.DefaultBookmarkConfig())
	addAt(t, l, doc, 6)
	addAt(t, l, doc, 3)
	addAt(t, l, doc, 1)

	if !l.Sort(doc) {
		t.Fatal("expected sort to report a change")
	}
	if got := lines(l.Items()); got[0] != 1 || got[1] != 3 || got[2] != 6 {
		t.Errorf("expected lines [1 3 6], got %v", got)
	}

	if l.Sort(doc) {
		t.Error("expected second sort to report no change")
	}

	doc.SetLine(1, "import sys")
	if !l.Sort(doc) {
		t.Fatal("expected sort after edit to report a change")
	}
	if got := lines(l.Items()); len(got) != 2 || got[0] != 3 || got[1] != 6 {
		t.Errorf("expected missing content dropped, got %v", got)
	}
}

func TestJump(t *testing.T) {
	doc := openDoc(t)
	l := New(config.DefaultBookmarkConfig())
	addAt(t, l, doc, 6)
	doc.SetCursor(session.Position{Line: 1, Char: 0})

	if !l.Jump(doc) {
		t.Fatal("Jump failed")
	}
	if cur := doc.Cursor(); cur != (session.Position{Line: 6, Char: 0}) {
		t.Errorf("expected cursor at 6:0, got %d:%d", cur.Line, cur.Char)
	}

	l.SetItems([]Item{{Line: 99, Content: "gone"}})
	if l.Jump(doc) {
		t.Error("expected jump past buffer end to fail")
	}
	if cur := doc.Cursor(); cur.Line != 6 {
		t.Errorf("expected cursor unmoved, got line %d", cur.Line)
	}
}

func TestLabel(t *testing.T) {
	it := Item{Line: 12, Content: "def first():"}
	if got := it.Label(); got != "12: def first():" {
		t.Errorf("Label() = %q", got)
	}

	long := Item{Line: 1, Content: strings.Repeat("a", 100)}
	if got := long.Label(); got != "1: "+strings.Repeat("a", 80) {
		t.Errorf("expected 80-rune truncation, got %d bytes", len(got))
	}
}
