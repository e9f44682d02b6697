package outline

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
)

// Helper to find a node by name in the arena.
func findNode(o *Outline, name string) *Node {
	for i := range o.Nodes {
		if o.Nodes[i].Name == name {
			return &o.Nodes[i]
		}
	}
	return nil
}

// =============================================================================
// Scan Tests
// =============================================================================

func TestScanClassAndMethods(t *testing.T) {
	content := `class Greeter:
    def greet(self):
        pass

    def goodbye(self):
        pass
`
	o := Scan(content, DefaultOptions())
	if len(o.Nodes) != 3 {
		t.Fatalf("expected 3 nodes, got %d", len(o.Nodes))
	}

	greeter := findNode(o, "Greeter")
	if greeter == nil || greeter.Kind != KindClass {
		t.Fatalf("expected class node Greeter, got %+v", greeter)
	}
	if greeter.StartLine != 1 || greeter.Indent != 0 {
		t.Errorf("expected Greeter at line 1 indent 0, got line %d indent %d", greeter.StartLine, greeter.Indent)
	}
	if len(greeter.Children) != 2 {
		t.Errorf("expected 2 children, got %d", len(greeter.Children))
	}

	for _, name := range []string{"greet", "goodbye"} {
		n := findNode(o, name)
		if n == nil {
			t.Fatalf("missing node %s", name)
		}
		if n.Kind != KindMethod {
			t.Errorf("expected %s to be a method, got %s", name, n.Kind)
		}
		if o.Nodes[n.Parent].Name != "Greeter" {
			t.Errorf("expected %s parent Greeter, got %s", name, o.Nodes[n.Parent].Name)
		}
	}

	if len(o.Roots) != 1 {
		t.Errorf("expected 1 root, got %d", len(o.Roots))
	}
}

func TestScanKindResolution(t *testing.T) {
	content := `MAX_SIZE = 100
threshold = 0.5

def run():
    def inner():
        pass

class Config:
    name: str

    def load(self):
        def helper():
            pass
`
	o := Scan(content, DefaultOptions())

	wantKinds := map[string]Kind{
		"MAX_SIZE":  KindConstant,
		"threshold": KindVariable,
		"run":       KindFunction,
		"inner":     KindMethod, // enclosed by a plain function
		"Config":    KindClass,
		"name":      KindProperty,
		"load":      KindMethod,
		"helper":    KindFunction, // enclosed by a method, not a class or function
	}
	for name, kind := range wantKinds {
		n := findNode(o, name)
		if n == nil {
			t.Fatalf("missing node %s", name)
		}
		if n.Kind != kind {
			t.Errorf("expected %s kind %s, got %s", name, kind, n.Kind)
		}
	}

	if got := findNode(o, "MAX_SIZE").ValuePreview; got != "100" {
		t.Errorf("expected MAX_SIZE preview \"100\", got %q", got)
	}
	if got := findNode(o, "threshold").ValuePreview; got != "0.5" {
		t.Errorf("expected threshold preview \"0.5\", got %q", got)
	}
}

func TestScanModuleScopeConstants(t *testing.T) {
	content := `class C:
    VALUE = 1
    data = 2

def f():
    local = 3
`
	o := Scan(content, DefaultOptions())
	if len(o.Nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(o.Nodes))
	}
	for _, name := range []string{"VALUE", "data", "local"} {
		if findNode(o, name) != nil {
			t.Errorf("expected no node for nested assignment %s", name)
		}
	}
}

func TestScanUnderscoreNames(t *testing.T) {
	content := `_VERSION = 3
_ = ignore()
`
	o := Scan(content, DefaultOptions())

	if n := findNode(o, "_VERSION"); n == nil || n.Kind != KindConstant {
		t.Errorf("expected _VERSION to be a constant, got %+v", n)
	}
	// A bare underscore has no cased letters and does not count as uppercase.
	if n := findNode(o, "_"); n == nil || n.Kind != KindVariable {
		t.Errorf("expected _ to be a variable, got %+v", n)
	}
}

func TestScanSkipsBlanksAndComments(t *testing.T) {
	content := `class C:

    # helper below
    def m(self):
        pass
# trailing comment
`
	o := Scan(content, DefaultOptions())
	if len(o.Nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(o.Nodes))
	}

	// Blank and comment lines must not pop the enclosing scope.
	m := findNode(o, "m")
	if m == nil || m.Kind != KindMethod {
		t.Fatalf("expected method m, got %+v", m)
	}
	if o.Nodes[m.Parent].Name != "C" {
		t.Errorf("expected m parent C, got %s", o.Nodes[m.Parent].Name)
	}
}

func TestScanPropertyRules(t *testing.T) {
	content := `class Settings:
    name: str
    limit: int = 9
`
	o := Scan(content, DefaultOptions())

	if n := findNode(o, "name"); n == nil || n.Kind != KindProperty {
		t.Errorf("expected property name, got %+v", n)
	}
	// An annotation with an assignment is neither a property nor a variable.
	if findNode(o, "limit") != nil {
		t.Errorf("expected no node for annotated assignment limit")
	}
}

func TestScanPreviewTruncation(t *testing.T) {
	value := strings.Repeat("x", 80)
	o := Scan("greeting = "+value+"\n", DefaultOptions())

	n := findNode(o, "greeting")
	if n == nil {
		t.Fatal("missing node greeting")
	}
	want := value[:DefaultMaxPreviewLength] + "..."
	if n.ValuePreview != want {
		t.Errorf("expected truncated preview %q, got %q", want, n.ValuePreview)
	}
}

func TestIndentWidth(t *testing.T) {
	tests := []struct {
		line string
		want int
	}{
		{"def f():", 0},
		{"    x = 1", 4},
		{"\tx = 1", 1},
		{"\t\t  x", 4},
		{"   ", 3},
	}
	for _, tt := range tests {
		if got := indentWidth(tt.line); got != tt.want {
			t.Errorf("indentWidth(%q) = %d, want %d", tt.line, got, tt.want)
		}
	}
}

func TestIsUpperName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"MAX", true},
		{"__ALL__", true},
		{"HTTP2", true},
		{"_", false},
		{"_123", false},
		{"Mixed", false},
		{"lower", false},
	}
	for _, tt := range tests {
		if got := isUpperName(tt.name); got != tt.want {
			t.Errorf("isUpperName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

// =============================================================================
// Build Tests (full parse)
// =============================================================================

func TestBuildEndLines(t *testing.T) {
	content := `class Greeter:
    def greet(self):
        print("hi")
        return 1

def top():
    pass

MAX = 3
`
	o := Build(context.Background(), content, DefaultOptions())
	if !o.Parsed {
		t.Fatal("expected Parsed to be true")
	}

	wantEnds := map[string]int{
		"Greeter": 4,
		"greet":   4,
		"top":     7,
		"MAX":     9,
	}
	for name, end := range wantEnds {
		n := findNode(o, name)
		if n == nil {
			t.Fatalf("missing node %s", name)
		}
		if n.EndLine != end {
			t.Errorf("expected %s end line %d, got %d", name, end, n.EndLine)
		}
	}

	if got := findNode(o, "MAX").ValuePreview; got != "3" {
		t.Errorf("expected MAX preview \"3\", got %q", got)
	}
}

func TestBuildMarkerValue(t *testing.T) {
	content := `class MoveOperator:
    bl_idname = "object.move"
    bl_label = "Move"

    def execute(self, context):
        pass
`
	o := Build(context.Background(), content, DefaultOptions())

	op := findNode(o, "MoveOperator")
	if op == nil {
		t.Fatal("missing node MoveOperator")
	}
	if op.MarkerValue != "object.move" {
		t.Errorf("expected marker \"object.move\", got %q", op.MarkerValue)
	}
	if op.EndLine != 6 {
		t.Errorf("expected end line 6, got %d", op.EndLine)
	}

	// The marker attribute is configurable.
	opts := DefaultOptions()
	opts.MarkerAttribute = "bl_label"
	o = Build(context.Background(), content, opts)
	if got := findNode(o, "MoveOperator").MarkerValue; got != "Move" {
		t.Errorf("expected marker \"Move\", got %q", got)
	}
}

func TestBuildLiteralPreviews(t *testing.T) {
	content := `name = "blender"
count = 42
ratio = 1.5
flag = True
nothing = None
result = compute()
items = [1, 2]
`
	o := Build(context.Background(), content, DefaultOptions())
	if !o.Parsed {
		t.Fatal("expected Parsed to be true")
	}

	wantPreviews := map[string]string{
		"name":    `"blender"`, // literal source text, quotes kept
		"count":   "42",
		"ratio":   "1.5",
		"flag":    "True",
		"nothing": "None",
		"result":  "", // call expressions carry no preview
		"items":   "",
	}
	for name, preview := range wantPreviews {
		n := findNode(o, name)
		if n == nil {
			t.Fatalf("missing node %s", name)
		}
		if n.ValuePreview != preview {
			t.Errorf("expected %s preview %q, got %q", name, preview, n.ValuePreview)
		}
		if n.EndLine != n.StartLine {
			t.Errorf("expected %s to span one line, got %d-%d", name, n.StartLine, n.EndLine)
		}
	}
}

func TestBuildChainedAssignment(t *testing.T) {
	o := Build(context.Background(), "total = count = 5\n", DefaultOptions())

	n := findNode(o, "total")
	if n == nil || n.Kind != KindVariable {
		t.Fatalf("expected variable total, got %+v", n)
	}
	if n.ValuePreview != "5" {
		t.Errorf("expected preview \"5\", got %q", n.ValuePreview)
	}
}

func TestBuildDecoratedFunction(t *testing.T) {
	content := `@decorator
def wrapped():
    return 1
`
	o := Build(context.Background(), content, DefaultOptions())
	if !o.Parsed {
		t.Fatal("expected Parsed to be true")
	}

	n := findNode(o, "wrapped")
	if n == nil || n.Kind != KindFunction {
		t.Fatalf("expected function wrapped, got %+v", n)
	}
	if n.StartLine != 2 || n.EndLine != 3 {
		t.Errorf("expected span 2-3, got %d-%d", n.StartLine, n.EndLine)
	}
}

func TestBuildSyntaxErrorFallback(t *testing.T) {
	content := `class Broken:
    def method(self):
        pass

def oops(:
    pass
`
	o := Build(context.Background(), content, DefaultOptions())
	if o.Parsed {
		t.Fatal("expected Parsed to be false for invalid source")
	}

	// End lines still resolve through the indentation fallback.
	broken := findNode(o, "Broken")
	if broken == nil || broken.EndLine != 4 {
		t.Fatalf("expected Broken end line 4, got %+v", broken)
	}
	// The block runs to end of file, which the trailing newline makes
	// the empty line 7.
	oops := findNode(o, "oops")
	if oops == nil || oops.EndLine != 7 {
		t.Fatalf("expected oops end line 7, got %+v", oops)
	}
}

func TestBuildEmptySource(t *testing.T) {
	o := Build(context.Background(), "", DefaultOptions())
	if !o.Empty() {
		t.Errorf("expected empty outline, got %d nodes", len(o.Nodes))
	}
	if !o.Parsed {
		t.Error("expected empty source to parse")
	}
}

func TestGuessEndLine(t *testing.T) {
	lines := []string{
		"def f():",
		"    a = 1",
		"",
		"    b = 2",
		"x = 3",
	}
	// Interior blanks are spanned; the block ends before the dedent.
	if got := guessEndLine(lines, 1, 0); got != 4 {
		t.Errorf("expected end line 4, got %d", got)
	}

	// A block running to EOF ends on the last line.
	if got := guessEndLine(lines[:4], 1, 0); got != 4 {
		t.Errorf("expected end line 4 at EOF, got %d", got)
	}
}

// =============================================================================
// Tree and Kind Tests
// =============================================================================

func TestOutlinePaths(t *testing.T) {
	content := `class Config:
    def load(self):
        def helper():
            pass
`
	o := Scan(content, DefaultOptions())

	helper := findNode(o, "helper")
	if helper == nil {
		t.Fatal("missing node helper")
	}
	idx := -1
	for i := range o.Nodes {
		if o.Nodes[i].Name == "helper" {
			idx = i
		}
	}

	if got := o.Path(idx); got != "Config.load.helper" {
		t.Errorf("expected path Config.load.helper, got %q", got)
	}
	if got := o.Depth(idx); got != 2 {
		t.Errorf("expected depth 2, got %d", got)
	}

	flat := o.Flatten()
	if len(flat) != 3 {
		t.Fatalf("expected 3 flattened nodes, got %d", len(flat))
	}
	wantOrder := []string{"Config", "load", "helper"}
	for i, want := range wantOrder {
		if got := o.Nodes[flat[i]].Name; got != want {
			t.Errorf("expected flatten[%d] = %s, got %s", i, want, got)
		}
	}
}

func TestWalkStops(t *testing.T) {
	content := `class A:
    def m(self):
        pass

class B:
    pass
`
	o := Scan(content, DefaultOptions())

	var visited []string
	o.Walk(func(idx, depth int) bool {
		visited = append(visited, o.Nodes[idx].Name)
		return o.Nodes[idx].Name != "m"
	})
	if len(visited) != 2 || visited[1] != "m" {
		t.Errorf("expected walk to stop at m, visited %v", visited)
	}
}

func TestKindRoundTrip(t *testing.T) {
	kinds := []Kind{KindClass, KindFunction, KindMethod, KindProperty, KindConstant, KindVariable}
	for _, k := range kinds {
		parsed, err := ParseKind(k.String())
		if err != nil {
			t.Fatalf("ParseKind(%s) failed: %v", k, err)
		}
		if parsed != k {
			t.Errorf("expected %v, got %v", k, parsed)
		}
	}

	if _, err := ParseKind("module"); err == nil {
		t.Error("expected error for unknown kind")
	}

	data, err := json.Marshal(KindClass)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `"class"` {
		t.Errorf("expected \"class\", got %s", data)
	}
}

func TestNodeLabel(t *testing.T) {
	n := Node{Name: "MAX", Kind: KindConstant, ValuePreview: "100"}
	if got := n.Label(); got != "MAX = 100" {
		t.Errorf("expected label \"MAX = 100\", got %q", got)
	}

	n = Node{Name: "Config", Kind: KindClass}
	if got := n.Label(); got != "Config" {
		t.Errorf("expected label \"Config\", got %q", got)
	}
}

func TestPyUnquote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`"object.move"`, "object.move"},
		{`'object.move'`, "object.move"},
		{`"""doc"""`, "doc"},
		{`r"raw"`, "raw"},
		{`""`, ""},
	}
	for _, tt := range tests {
		if got := pyUnquote(tt.in); got != tt.want {
			t.Errorf("pyUnquote(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
