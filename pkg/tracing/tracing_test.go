package tracing

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/quarkc-go/quark/pkg/dom"
	"github.com/quarkc-go/quark/pkg/reactive"
	"github.com/quarkc-go/quark/pkg/vdom"
)

type recordedSpan struct {
	noop.Span
	name   string
	parent trace.Span
	attrs  map[attribute.Key]attribute.Value
	status codes.Code
	errs   int
	events []string
	ended  bool
}

func (s *recordedSpan) SetAttributes(kv ...attribute.KeyValue) {
	for _, a := range kv {
		s.attrs[a.Key] = a.Value
	}
}
func (s *recordedSpan) SetStatus(code codes.Code, _ string) { s.status = code }
func (s *recordedSpan) RecordError(error, ...trace.EventOption) { s.errs++ }
func (s *recordedSpan) AddEvent(name string, _ ...trace.EventOption) { s.events = append(s.events, name) }
func (s *recordedSpan) End(...trace.SpanEndOption) { s.ended = true }
func (s *recordedSpan) IsRecording() bool { return !s.ended }

type recordingTracer struct {
	noop.Tracer
	spans []*recordedSpan
}

func (t *recordingTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	cfg := trace.NewSpanStartConfig(opts...)
	s := &recordedSpan{name: name, attrs: make(map[attribute.Key]attribute.Value)}
	if p, ok := trace.SpanFromContext(ctx).(*recordedSpan); ok {
		s.parent = p
	}
	s.SetAttributes(cfg.Attributes()...)
	t.spans = append(t.spans, s)
	return trace.ContextWithSpan(ctx, s), s
}

func newRenderer(t *testing.T) (*vdom.Renderer, *dom.Node) {
	t.Helper()
	doc := dom.NewDocument()
	container := doc.CreateElement("main")
	if err := doc.Body().AppendChild(container); err != nil {
		t.Fatalf("AppendChild() error: %v", err)
	}
	return vdom.New(doc), container
}

func TestRenderSpan(t *testing.T) {
	r, container := newRenderer(t)
	rec := &recordingTracer{}
	New(WithTracer(rec)).Attach(r)

	r.Render(vdom.Div(vdom.P("a"), vdom.P("b")), container)

	if len(rec.spans) != 1 {
		t.Fatalf("spans = %d, want 1", len(rec.spans))
	}
	s := rec.spans[0]
	if s.name != "quark.render" || !s.ended {
		t.Errorf("span = %q ended=%v, want ended quark.render", s.name, s.ended)
	}
	if got := s.attrs["quark.container"].AsString(); got != "main" {
		t.Errorf("container = %q, want main", got)
	}
	// fragment root, div, two p, two text
	if got := s.attrs["quark.nodes"].AsInt64(); got != 6 {
		t.Errorf("nodes = %d, want 6", got)
	}
	if s.attrs["quark.error"].AsBool() || s.status != codes.Ok {
		t.Errorf("error = %v status = %v, want false Ok", s.attrs["quark.error"].AsBool(), s.status)
	}
}

func TestRenderSpanRecordsPanics(t *testing.T) {
	r, container := newRenderer(t)
	rec := &recordingTracer{}
	r.AddHooks(New(WithTracer(rec)).Hooks())

	boom := func(*vdom.Component) any { panic("boom") }
	r.Render(vdom.Div(vdom.Comp(boom)), container)

	s := rec.spans[0]
	if s.errs != 1 {
		t.Errorf("recorded errors = %d, want 1", s.errs)
	}
	if !s.attrs["quark.error"].AsBool() || s.status != codes.Error {
		t.Errorf("error = %v status = %v, want true Error", s.attrs["quark.error"].AsBool(), s.status)
	}
}

func TestNestedRendersAreChildSpans(t *testing.T) {
	r, container := newRenderer(t)
	rec := &recordingTracer{}
	r.AddHooks(New(WithTracer(rec)).Hooks())

	inner := r.Document().CreateElement("section")
	nested := func(*vdom.Component) any {
		r.Render(vdom.Span("inner"), inner)
		return nil
	}
	r.Render(vdom.Comp(nested), container)

	if len(rec.spans) != 2 {
		t.Fatalf("spans = %d, want 2", len(rec.spans))
	}
	outer, child := rec.spans[0], rec.spans[1]
	if child.parent != outer {
		t.Error("nested render span is not a child of the outer span")
	}
	if got := child.attrs["quark.container"].AsString(); got != "section" {
		t.Errorf("container = %q, want section", got)
	}
	if !outer.ended || !child.ended {
		t.Error("spans not ended")
	}
}

func TestFilterSkipsContainers(t *testing.T) {
	r, container := newRenderer(t)
	rec := &recordingTracer{}
	tr := New(WithTracer(rec), WithFilter(func(n *dom.Node) bool { return n.Tag != "main" }))
	r.AddHooks(tr.Hooks())

	r.Render(vdom.P("x"), container)
	if len(rec.spans) != 0 {
		t.Errorf("spans = %d, want 0", len(rec.spans))
	}
	if tr.Context() != context.Background() {
		t.Error("Context() outside a render is not the parent context")
	}
}

func TestFlushSpan(t *testing.T) {
	rec := &recordingTracer{}
	hook := New(WithTracer(rec)).FlushHook()
	hook(reactive.FlushInfo{Start: time.Now(), Duration: time.Millisecond, Jobs: 3})

	if len(rec.spans) != 1 || rec.spans[0].name != "quark.flush" {
		t.Fatalf("spans = %v, want one quark.flush", rec.spans)
	}
	if got := rec.spans[0].attrs["quark.jobs"].AsInt64(); got != 3 {
		t.Errorf("jobs = %d, want 3", got)
	}

	off := New(WithTracer(rec), WithFlushes(false)).FlushHook()
	off(reactive.FlushInfo{})
	if len(rec.spans) != 1 {
		t.Errorf("spans = %d, want 1 with flushes disabled", len(rec.spans))
	}
}
