package tracing

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/quarkc-go/quark/pkg/dom"
	"github.com/quarkc-go/quark/pkg/reactive"
	"github.com/quarkc-go/quark/pkg/vdom"
)

// Default tracer name.
const defaultTracerName = "quark"

// Config configures a Tracer.
type Config struct {
	// TracerName is the name of the tracer (default: "quark").
	TracerName string

	// Tracer overrides the tracer resolved from the global provider.
	Tracer trace.Tracer

	// Parent is the context spans are started in (default: background).
	Parent context.Context

	// Filter determines which containers are traced. If nil, all are.
	Filter func(container *dom.Node) bool

	// TraceFlushes adds a span for every scheduler flush.
	TraceFlushes bool
}

// Option configures a Tracer.
type Option func(*Config)

// WithTracerName sets the tracer name.
func WithTracerName(name string) Option {
	return func(c *Config) {
		c.TracerName = name
	}
}

// WithTracer sets the tracer directly.
func WithTracer(t trace.Tracer) Option {
	return func(c *Config) {
		c.Tracer = t
	}
}

// WithParent sets the context spans are started in.
func WithParent(ctx context.Context) Option {
	return func(c *Config) {
		c.Parent = ctx
	}
}

// WithFilter sets a filter function for containers.
func WithFilter(filter func(container *dom.Node) bool) Option {
	return func(c *Config) {
		c.Filter = filter
	}
}

// WithFlushes enables or disables scheduler flush spans.
func WithFlushes(enabled bool) Option {
	return func(c *Config) {
		c.TraceFlushes = enabled
	}
}

func defaultConfig() Config {
	return Config{
		TracerName:   defaultTracerName,
		Parent:       context.Background(),
		TraceFlushes: true,
	}
}

// Tracer records OpenTelemetry spans for root renders and scheduler flushes.
//
// A root render span is named "quark.render" and carries the container tag,
// the number of mounted nodes and whether any subtree panicked. Element
// shadow renders that happen inside a root render become child spans.
type Tracer struct {
	config Config
	tracer trace.Tracer

	// open holds one entry per render in progress; a nil span is a
	// filtered-out render.
	open []openSpan
}

type openSpan struct {
	ctx  context.Context
	span trace.Span
}

// New creates a Tracer.
//
// The tracer uses the global OpenTelemetry tracer provider unless WithTracer
// is given. Configure it in main() before rendering:
//
//	otel.SetTracerProvider(tp)
func New(opts ...Option) *Tracer {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.Parent == nil {
		config.Parent = context.Background()
	}
	t := &Tracer{config: config, tracer: config.Tracer}
	if t.tracer == nil {
		t.tracer = otel.Tracer(config.TracerName)
	}
	return t
}

// Context returns the context of the innermost render span in progress,
// or the parent context outside a render.
func (t *Tracer) Context() context.Context {
	for i := len(t.open) - 1; i >= 0; i-- {
		if t.open[i].span != nil {
			return t.open[i].ctx
		}
	}
	return t.config.Parent
}

// Hooks returns renderer hooks that open and close render spans.
func (t *Tracer) Hooks() vdom.Hooks {
	return vdom.Hooks{
		BeforeRender: t.beforeRender,
		AfterRender:  t.afterRender,
		OnError:      t.onError,
		OnRunaway: func(c *vdom.Component) {
			if span := t.current(); span != nil {
				span.AddEvent("runaway render", trace.WithAttributes(
					attribute.String("quark.component", c.Name()),
					attribute.Int("quark.max_passes", vdom.MaxRenderPasses),
				))
			}
		},
	}
}

// FlushHook returns a scheduler hook that records a span per flush.
func (t *Tracer) FlushHook() func(reactive.FlushInfo) {
	return func(info reactive.FlushInfo) {
		if !t.config.TraceFlushes {
			return
		}
		_, span := t.tracer.Start(t.Context(), "quark.flush",
			trace.WithTimestamp(info.Start),
			trace.WithAttributes(
				attribute.Int("quark.jobs", info.Jobs),
				attribute.Int("quark.dropped", info.Dropped),
			),
		)
		span.End(trace.WithTimestamp(info.Start.Add(info.Duration)))
	}
}

// Attach traces r and its runtime's scheduler.
func (t *Tracer) Attach(r *vdom.Renderer) {
	r.AddHooks(t.Hooks())
	r.Runtime().AddFlushHook(t.FlushHook())
}

func (t *Tracer) beforeRender(container *dom.Node) {
	if t.config.Filter != nil && !t.config.Filter(container) {
		t.open = append(t.open, openSpan{})
		return
	}
	ctx, span := t.tracer.Start(t.Context(), "quark.render",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("quark.container", containerName(container))),
		trace.WithTimestamp(time.Now()),
	)
	t.open = append(t.open, openSpan{ctx: ctx, span: span})
}

func (t *Tracer) afterRender(info vdom.RenderInfo) {
	if len(t.open) == 0 {
		return
	}
	top := t.open[len(t.open)-1]
	t.open = t.open[:len(t.open)-1]
	if top.span == nil {
		return
	}
	top.span.SetAttributes(
		attribute.Int("quark.nodes", info.Nodes),
		attribute.Int("quark.errors", info.Errors),
		attribute.Bool("quark.error", info.Errors > 0),
	)
	if info.Errors > 0 {
		top.span.SetStatus(codes.Error, "render recovered from panics")
	} else {
		top.span.SetStatus(codes.Ok, "")
	}
	top.span.End()
}

func (t *Tracer) onError(err error, v *vdom.VNode) {
	span := t.current()
	if span == nil {
		return
	}
	attrs := []attribute.KeyValue{attribute.String("quark.kind", v.Kind.String())}
	if v.Tag != "" {
		attrs = append(attrs, attribute.String("quark.tag", v.Tag))
	}
	span.RecordError(err, trace.WithAttributes(attrs...))
}

func (t *Tracer) current() trace.Span {
	if len(t.open) == 0 {
		return nil
	}
	return t.open[len(t.open)-1].span
}

func containerName(n *dom.Node) string {
	if n == nil {
		return ""
	}
	if n.Tag != "" {
		return n.Tag
	}
	if n.Host() != nil {
		return n.Host().Tag + "#shadow"
	}
	return "#fragment"
}
