package metrics

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/quarkc-go/quark/pkg/dom"
	"github.com/quarkc-go/quark/pkg/reactive"
	"github.com/quarkc-go/quark/pkg/vdom"
)

func newRenderer(t *testing.T) (*vdom.Renderer, *dom.Node) {
	t.Helper()
	doc := dom.NewDocument()
	container := doc.CreateElement("main")
	if err := doc.Body().AppendChild(container); err != nil {
		t.Fatalf("AppendChild() error: %v", err)
	}
	return vdom.New(doc), container
}

func TestCollectorCountsRenderActivity(t *testing.T) {
	r, container := newRenderer(t)
	c := New(WithRegistry(prometheus.NewRegistry()))
	c.Attach(r)

	count := reactive.NewObservable(r.Runtime(), 0)
	counter := func(*vdom.Component) any { return vdom.Span(count.Get()) }
	r.Render(vdom.Div(vdom.Comp(counter)), container)

	s := c.Stats()
	if s.Renders != 1 {
		t.Errorf("renders = %v, want 1", s.Renders)
	}
	if s.ComponentRenders != 1 {
		t.Errorf("component renders = %v, want 1", s.ComponentRenders)
	}
	if got := s.Mutations["create"]; got != 3 {
		t.Errorf("create mutations = %v, want 3", got)
	}

	r.Runtime().Loop().Do(func() { count.Set(1) })
	s = c.Stats()
	if s.ComponentRenders != 2 {
		t.Errorf("component renders after update = %v, want 2", s.ComponentRenders)
	}
	if s.Renders != 1 {
		t.Errorf("renders after update = %v, want 1", s.Renders)
	}
	if diff := cmp.Diff(map[string]float64{"component": 1}, s.Jobs); diff != "" {
		t.Errorf("jobs mismatch (-want +got):\n%s", diff)
	}
	if s.Flushes != 1 {
		t.Errorf("flushes = %v, want 1", s.Flushes)
	}
	if got := s.Mutations["setData"]; got != 1 {
		t.Errorf("setData mutations = %v, want 1", got)
	}

	r.Unmount(container)
	if got := c.Stats().Unmounts; got != 4 {
		t.Errorf("unmounts = %v, want 4", got)
	}
}

func TestCollectorCountsErrors(t *testing.T) {
	r, container := newRenderer(t)
	c := New(WithRegistry(prometheus.NewRegistry()))
	r.AddHooks(c.Hooks())

	boom := func(*vdom.Component) any { panic("boom") }
	r.Render(vdom.Div(vdom.Comp(boom), vdom.P("ok")), container)

	if got := c.Stats().RenderErrors; got != 1 {
		t.Errorf("render errors = %v, want 1", got)
	}
	if got, want := container.InnerHTML(), "<div><p>ok</p></div>"; got != want {
		t.Errorf("html = %q, want %q", got, want)
	}
}

func TestCollectorsShareRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := New(WithRegistry(reg), WithNamespace("app"))
	b := New(WithRegistry(reg), WithNamespace("app"))

	a.Hooks().AfterRender(vdom.RenderInfo{})
	b.Hooks().AfterRender(vdom.RenderInfo{})

	if got := a.Stats().Renders; got != 2 {
		t.Errorf("renders = %v, want 2", got)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "app_renders_total" {
			found = true
		}
	}
	if !found {
		t.Error("app_renders_total not registered")
	}
}

func TestJobHookCountsPanics(t *testing.T) {
	c := New(WithRegistry(prometheus.NewRegistry()))
	hook := c.JobHook()
	hook(reactive.JobInfo{Kind: "user"})
	hook(reactive.JobInfo{Kind: "user", Panicked: true})

	if diff := cmp.Diff(map[string]float64{"user": 2}, c.Stats().Jobs); diff != "" {
		t.Errorf("jobs mismatch (-want +got):\n%s", diff)
	}
	if got := byLabel(c.jobPanics, "kind")["user"]; got != 1 {
		t.Errorf("panics = %v, want 1", got)
	}
}
