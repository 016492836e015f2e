package vdom

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/quarkc-go/quark/pkg/dom"
)

func keyedList(keys ...string) *VNode {
	return Ul(Range(keys, func(k string, _ int) *VNode {
		return Li(Key(k), k)
	}))
}

// byText maps each <li> of ul to its text.
func byText(ul *dom.Node) map[string]*dom.Node {
	out := make(map[string]*dom.Node)
	for _, li := range ul.ChildNodes() {
		out[li.TextContent()] = li
	}
	return out
}

func texts(ul *dom.Node) []string {
	var out []string
	for _, li := range ul.ChildNodes() {
		out = append(out, li.TextContent())
	}
	return out
}

func TestKeyedReorderMovesWithoutRemount(t *testing.T) {
	unmounts := 0
	h := newHarness(t, WithHooks(Hooks{OnUnmount: func(*VNode) { unmounts++ }}))

	h.render(keyedList("a", "b", "c", "d"))
	ul := h.root.FirstChild()
	before := byText(ul)

	h.render(keyedList("d", "b", "a", "c"))

	if diff := cmp.Diff([]string{"d", "b", "a", "c"}, texts(ul)); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	for k, n := range byText(ul) {
		if before[k] != n {
			t.Errorf("li %q was recreated", k)
		}
	}
	if unmounts != 0 {
		t.Errorf("unmounts = %d, want 0", unmounts)
	}
	if n := h.count(dom.OpCreate) + h.count(dom.OpRemove); n != 0 {
		t.Errorf("reorder created or removed nodes: %v", h.ops)
	}
	if n := h.count(dom.OpInsert); n == 0 || n > 3 {
		t.Errorf("insert mutations = %d, want 1..3", n)
	}
}

func TestKeyedInsertAndRemove(t *testing.T) {
	h := newHarness(t)
	h.render(keyedList("a", "b", "c"))
	ul := h.root.FirstChild()
	before := byText(ul)

	h.render(keyedList("a", "c", "d"))

	if diff := cmp.Diff([]string{"a", "c", "d"}, texts(ul)); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	after := byText(ul)
	if after["a"] != before["a"] || after["c"] != before["c"] {
		t.Error("kept items were recreated")
	}
	if n := h.count(dom.OpRemove); n != 1 {
		t.Errorf("remove mutations = %d, want 1", n)
	}
	// Only the new <li> and its text are inserted; a and c stay put.
	if n := h.count(dom.OpInsert); n != 2 {
		t.Errorf("insert mutations = %d, want 2: %v", n, h.ops)
	}
}

func TestRemovingFromMiddleDoesNotMove(t *testing.T) {
	h := newHarness(t)
	h.render(keyedList("a", "b", "c", "d"))

	h.render(keyedList("a", "c", "d"))

	if n := h.count(dom.OpInsert); n != 0 {
		t.Errorf("insert mutations = %d, want 0: %v", n, h.ops)
	}
	if diff := cmp.Diff([]string{"remove ul"}, h.ops); diff != "" {
		t.Errorf("mutations mismatch (-want +got):\n%s", diff)
	}
}

func TestUnkeyedMatchesByType(t *testing.T) {
	h := newHarness(t)
	h.render(Div(Span("s"), P("p")))
	div := h.root.FirstChild()
	p := div.LastChild()

	h.render(Div(P("p2")))

	if got, want := h.html(), "<div><p>p2</p></div>"; got != want {
		t.Errorf("html = %q, want %q", got, want)
	}
	if div.FirstChild() != p {
		t.Error("<p> was recreated instead of matched by type")
	}
}

func TestHolesKeepPositions(t *testing.T) {
	view := func(show bool) *VNode {
		return Div(If(show, Span("a")), P("b"))
	}

	h := newHarness(t)
	h.render(view(false))
	p := h.root.FirstChild().FirstChild()

	h.render(view(true))
	if got, want := h.html(), "<div><span>a</span><p>b</p></div>"; got != want {
		t.Errorf("html = %q, want %q", got, want)
	}
	if h.root.FirstChild().LastChild() != p {
		t.Error("<p> was recreated")
	}

	h.render(view(false))
	if got, want := h.html(), "<div><p>b</p></div>"; got != want {
		t.Errorf("html = %q, want %q", got, want)
	}
}

func TestDuplicateKeysMountFresh(t *testing.T) {
	list := func() *VNode {
		return Ul(Li(Key("x"), "1"), Li(Key("x"), "2"))
	}

	h := newHarness(t)
	h.render(list())
	ul := h.root.FirstChild()
	first := ul.FirstChild()

	if diff := cmp.Diff([]string{"1", "2"}, texts(ul)); diff != "" {
		t.Errorf("items mismatch (-want +got):\n%s", diff)
	}
	if !bytes.Contains(h.logs.Bytes(), []byte("Q005")) {
		t.Errorf("missing Q005 diagnostic in %q", h.logs.String())
	}

	h.render(list())
	if diff := cmp.Diff([]string{"1", "2"}, texts(ul)); diff != "" {
		t.Errorf("items mismatch after re-render (-want +got):\n%s", diff)
	}
	if ul.FirstChild() != first {
		t.Error("first occurrence lost its match")
	}
}

func TestNestedFragmentsPlaceChildren(t *testing.T) {
	view := func(order ...string) *VNode {
		return Div(
			Span("start"),
			Range(order, func(k string, _ int) *VNode {
				return Fragment(Key(k), El("b", k), El("i", k))
			}),
			Span("end"),
		)
	}

	h := newHarness(t)
	h.render(view("x", "y"))
	h.render(view("y", "x"))

	want := "<div><span>start</span><b>y</b><i>y</i><b>x</b><i>x</i><span>end</span></div>"
	if got := h.html(); got != want {
		t.Errorf("html = %q, want %q", got, want)
	}
	if n := h.count(dom.OpCreate); n != 0 {
		t.Errorf("reordering fragments created nodes: %v", h.ops)
	}
}

func TestChildrenFromComponentsAndText(t *testing.T) {
	item := func(c *Component) any {
		return []any{c.Prop("label"), "!"}
	}

	h := newHarness(t)
	h.render(Div(Comp(item, Prop("label", "hi")), true, nil, 3.5))

	if got, want := h.html(), "<div>hi!3.5</div>"; got != want {
		t.Errorf("html = %q, want %q", got, want)
	}
}
