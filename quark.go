// Package quark wires the pieces of the runtime into one App: a document
// with a container, a renderer, its reactive runtime and event loop, an
// element registry, and optional metrics and tracing.
//
// Usage:
//
//	app := quark.New(quark.DefaultConfig())
//	app.Define(counterDef)
//	app.Render(vdom.Div(vdom.H("my-counter", vdom.Props{"count": 1})))
//	fmt.Println(app.HTML())
//
// An App is single-threaded. Before Run, call its methods from one
// goroutine; while Run is active, use Call from other goroutines.
package quark

import (
	"context"
	"log/slog"

	qerrors "github.com/quarkc-go/quark/internal/errors"
	"github.com/quarkc-go/quark/pkg/devtools"
	"github.com/quarkc-go/quark/pkg/dom"
	"github.com/quarkc-go/quark/pkg/element"
	"github.com/quarkc-go/quark/pkg/metrics"
	"github.com/quarkc-go/quark/pkg/reactive"
	"github.com/quarkc-go/quark/pkg/snapshot"
	"github.com/quarkc-go/quark/pkg/tracing"
	"github.com/quarkc-go/quark/pkg/vdom"
)

// App is a rendering runtime bound to one container.
type App struct {
	config Config
	logger *slog.Logger

	rt        *reactive.Runtime
	doc       *dom.Document
	container *dom.Node
	renderer  *vdom.Renderer
	registry  *element.Registry

	metrics *metrics.Collector
	tracer  *tracing.Tracer
}

// New creates an App.
func New(cfg Config) *App {
	cfg = cfg.withDefaults()
	a := &App{config: cfg, logger: cfg.Logger}

	a.rt = reactive.NewRuntime(reactive.WithLogger(a.logger), reactive.WithDebug(cfg.Debug))
	a.doc = dom.NewDocument()
	a.container = a.doc.CreateElement(cfg.Container)
	if err := a.doc.Body().AppendChild(a.container); err != nil {
		// A fresh element always fits in the body.
		panic(err)
	}

	a.renderer = vdom.New(a.doc,
		vdom.WithLogger(a.logger),
		vdom.WithDebug(cfg.Debug),
		vdom.WithRuntime(a.rt),
		vdom.WithHooks(vdom.Hooks{OnError: func(err error, _ *vdom.VNode) { a.reportError(err) }}),
	)
	a.registry = element.NewRegistry(a.renderer,
		element.WithLogger(a.logger),
		element.WithDebug(cfg.Debug),
		element.WithErrorHandler(func(err error, _ *element.Element) { a.reportError(err) }),
	)

	if cfg.Metrics {
		opts := append([]metrics.Option{metrics.WithRegistry(cfg.MetricsRegistry)}, cfg.MetricsOptions...)
		a.metrics = metrics.New(opts...)
		a.metrics.Attach(a.renderer)
	}
	if cfg.Tracing {
		a.tracer = tracing.New(cfg.TracingOptions...)
		a.tracer.Attach(a.renderer)
	}
	return a
}

func (a *App) reportError(err error) {
	if a.config.OnError != nil {
		a.config.OnError(err)
	}
}

// Render reconciles v into the container as one task and flushes the
// updates it scheduled.
func (a *App) Render(v any) *vdom.VNode {
	var root *vdom.VNode
	a.rt.Loop().Do(func() { root = a.renderer.Render(v, a.container) })
	return root
}

// Unmount tears down the container's tree.
func (a *App) Unmount() {
	a.rt.Loop().Do(func() { a.renderer.Unmount(a.container) })
}

// Define registers element definitions.
func (a *App) Define(defs ...*element.Definition) error {
	for _, def := range defs {
		if err := a.registry.Define(def); err != nil {
			return err
		}
	}
	return nil
}

// Mount creates an element of a defined tag and appends it to the
// container.
func (a *App) Mount(tag string) (*element.Element, error) {
	e := a.registry.Create(tag)
	if e == nil {
		return nil, qerrors.New("Q043").WithDetail(tag + " has no definition")
	}
	var err error
	a.rt.Loop().Do(func() { err = a.container.AppendChild(e.Node()) })
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Act runs fn as one task and flushes everything it scheduled.
func (a *App) Act(fn func()) { a.rt.Loop().Do(fn) }

// Run processes posted tasks until ctx is done.
func (a *App) Run(ctx context.Context) error { return a.rt.Loop().Run(ctx) }

// Call runs fn on the loop and waits for it. Use it while Run is active.
func (a *App) Call(ctx context.Context, fn func()) error { return a.rt.Loop().Call(ctx, fn) }

// HTML returns the container's inner HTML.
func (a *App) HTML() string { return a.container.InnerHTML() }

// Snapshot stores the container's inner HTML under name.
func (a *App) Snapshot(ctx context.Context, store snapshot.Store, name string) error {
	return store.Put(ctx, name, a.HTML())
}

// Devtools creates a devtools server for the container. When metrics are
// enabled the server exposes them too.
func (a *App) Devtools(opts ...devtools.Option) *devtools.Server {
	base := []devtools.Option{devtools.WithLogger(a.logger)}
	if a.metrics != nil {
		base = append(base, devtools.WithMetrics(a.metrics, a.config.MetricsRegistry))
	}
	return devtools.New(a.rt, a.container, append(base, opts...)...)
}

// Runtime returns the reactive runtime.
func (a *App) Runtime() *reactive.Runtime { return a.rt }

// Document returns the document.
func (a *App) Document() *dom.Document { return a.doc }

// Container returns the element trees are rendered into.
func (a *App) Container() *dom.Node { return a.container }

// Renderer returns the renderer.
func (a *App) Renderer() *vdom.Renderer { return a.renderer }

// Registry returns the element registry.
func (a *App) Registry() *element.Registry { return a.registry }

// Metrics returns the collector, or nil when metrics are disabled.
func (a *App) Metrics() *metrics.Collector { return a.metrics }

// Tracer returns the tracer, or nil when tracing is disabled.
func (a *App) Tracer() *tracing.Tracer { return a.tracer }

// Logger returns the logger.
func (a *App) Logger() *slog.Logger { return a.logger }
