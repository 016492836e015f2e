package vdom

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/quarkc-go/quark/pkg/dom"
)

func TestPatcherWritesOnlyChangedProps(t *testing.T) {
	h := newHarness(t)
	h.render(Div(Props{"id": "a", "title": "t", "data-x": "1"}))

	h.render(Div(Props{"id": "a", "title": "u", "data-x": "1"}))
	if diff := cmp.Diff([]string{"setAttribute title=u"}, h.ops); diff != "" {
		t.Errorf("changed subset mismatch (-want +got):\n%s", diff)
	}

	h.render(Div(Props{"id": "a", "title": "u", "data-x": "1"}))
	if len(h.ops) != 0 {
		t.Errorf("identical props wrote %v", h.ops)
	}

	h.render(Div(Props{"id": "a"}))
	want := []string{"removeAttribute data-x", "removeAttribute title"}
	if diff := cmp.Diff(want, h.ops); diff != "" {
		t.Errorf("removed props mismatch (-want +got):\n%s", diff)
	}
}

func TestAttributeValues(t *testing.T) {
	h := newHarness(t)
	h.render(Div(
		Aria("hidden", false),
		Prop("data-on", false),
		Prop("foo", false),
		Prop("bar", true),
		Prop("count", 3),
		Hidden(true),
		Prop("handler", func() {}),
	))
	div := h.root.FirstChild()

	tests := []struct {
		name string
		want string
		ok   bool
	}{
		{"aria-hidden", "false", true},
		{"data-on", "false", true},
		{"foo", "", false},
		{"bar", "true", true},
		{"count", "3", true},
		{"hidden", "", true},
		{"handler", "", false},
	}
	for _, tt := range tests {
		got, ok := div.GetAttribute(tt.name)
		if got != tt.want || ok != tt.ok {
			t.Errorf("GetAttribute(%q) = %q, %v, want %q, %v", tt.name, got, ok, tt.want, tt.ok)
		}
	}
}

func TestStyleDiff(t *testing.T) {
	h := newHarness(t)
	h.render(Div(Style(map[string]string{"color": "red", "width": "1px"})))
	div := h.root.FirstChild()
	if got, want := h.html(), `<div style="color: red; width: 1px;"></div>`; got != want {
		t.Errorf("html = %q, want %q", got, want)
	}

	h.render(Div(Style(map[string]string{"color": "blue"})))
	want := []string{"setStyle width", "setStyle color=blue"}
	if diff := cmp.Diff(want, h.ops); diff != "" {
		t.Errorf("style mutations mismatch (-want +got):\n%s", diff)
	}

	h.render(Div(Style(map[string]any{"color": "blue"})))
	if len(h.ops) != 0 {
		t.Errorf("equal style wrote %v", h.ops)
	}

	h.render(Div(Style("margin: 0")))
	if div.Style("margin") != "0" || div.Style("color") != "" {
		t.Errorf("string style not applied: %q", h.html())
	}
}

func TestEventHandlerSwapDoesNotTouchDOM(t *testing.T) {
	var got []string
	h := newHarness(t)
	h.render(Button(OnClick(func() { got = append(got, "first") })))
	btn := h.root.FirstChild()

	h.render(Button(OnClick(func() { got = append(got, "second") })))
	if len(h.ops) != 0 {
		t.Errorf("handler swap wrote %v", h.ops)
	}
	btn.Click()
	if diff := cmp.Diff([]string{"second"}, got); diff != "" {
		t.Errorf("handler calls mismatch (-want +got):\n%s", diff)
	}

	h.render(Button())
	if btn.ListenerCount("click") != 0 {
		t.Error("listener not removed")
	}
	if h.count(dom.OpUnlisten) != 1 {
		t.Errorf("mutations = %v, want one unlisten", h.ops)
	}
}

func TestEventPhasesAndNames(t *testing.T) {
	var order []string
	h := newHarness(t)
	h.render(Div(
		OnCapture("click", func(*dom.Event) { order = append(order, "capture") }),
		OnClick(func(e *dom.Event) { order = append(order, "bubble") }),
		Button(OnClick(dom.EventListener(func(*dom.Event) { order = append(order, "target") }))),
		On("my-Event", func() {}),
	))
	div := h.root.FirstChild()

	div.FirstChild().Click()
	if diff := cmp.Diff([]string{"capture", "target", "bubble"}, order); diff != "" {
		t.Errorf("dispatch order mismatch (-want +got):\n%s", diff)
	}
	if div.ListenerCount("my-Event") != 1 {
		t.Error("custom event name was not kept as written")
	}
}

func TestPanickingHandlerIsRecovered(t *testing.T) {
	h := newHarness(t)
	h.render(Button(OnClick(func() { panic("handler") })))

	h.root.FirstChild().Click()
}

func TestValueAndCheckedFollowLiveState(t *testing.T) {
	h := newHarness(t)
	h.render(Input(Type("checkbox"), Value("a"), Checked(true)))
	in := h.root.FirstChild()

	in.SetProperty("value", "typed")
	in.SetProperty("checked", false)
	h.render(Input(Type("checkbox"), Value("a"), Checked(true)))

	if got := in.Property("value"); got != "a" {
		t.Errorf("value = %v, want a", got)
	}
	if got := in.Property("checked"); got != true {
		t.Errorf("checked = %v, want true", got)
	}

	h.render(Input(Type("checkbox"), Value("a"), Checked(true)))
	if len(h.ops) != 0 {
		t.Errorf("in-sync value and checked wrote %v", h.ops)
	}
}

func TestProgressZeroIsAlwaysApplied(t *testing.T) {
	h := newHarness(t)
	h.render(Progress(Value(0)))
	h.render(Progress(Value(0)))

	if diff := cmp.Diff([]string{"setProperty value=0"}, h.ops); diff != "" {
		t.Errorf("mutations mismatch (-want +got):\n%s", diff)
	}
}

func TestRawHTML(t *testing.T) {
	h := newHarness(t)
	h.render(Div(HTML("<b>x</b>")))
	if got, want := h.html(), "<div><b>x</b></div>"; got != want {
		t.Errorf("html = %q, want %q", got, want)
	}

	h.render(Div(HTML("<b>x</b>")))
	if len(h.ops) != 0 {
		t.Errorf("unchanged markup wrote %v", h.ops)
	}

	h.render(Div(HTML("<i>y</i>")))
	if h.count(dom.OpSetInnerHTML) != 1 {
		t.Errorf("mutations = %v, want one setInnerHTML", h.ops)
	}

	h.render(Div(Span("z")))
	if got, want := h.html(), "<div><span>z</span></div>"; got != want {
		t.Errorf("html after removing markup = %q, want %q", got, want)
	}

	h.render(Div(HTML("<i>again</i>")))
	if got, want := h.html(), "<div><i>again</i></div>"; got != want {
		t.Errorf("html = %q, want %q", got, want)
	}
}

func TestSVGNamespace(t *testing.T) {
	h := newHarness(t)
	h.render(Svg(Class("icon"), Path(Prop("d", "M0 0")), ForeignObject(Div())))

	svg := h.root.FirstChild()
	if svg.Namespace != dom.SVGNamespace {
		t.Errorf("svg namespace = %q", svg.Namespace)
	}
	if got, _ := svg.GetAttribute("class"); got != "icon" {
		t.Errorf("class = %q, want icon", got)
	}
	path := svg.FirstChild()
	if path.Namespace != dom.SVGNamespace {
		t.Errorf("path namespace = %q", path.Namespace)
	}
	if div := svg.LastChild().FirstChild(); div.Namespace != "" {
		t.Errorf("div inside foreignObject namespace = %q, want html", div.Namespace)
	}
}
