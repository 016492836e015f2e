package vdom

import (
	"fmt"
	"log/slog"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	qerrors "github.com/quarkc-go/quark/internal/errors"
	"github.com/quarkc-go/quark/pkg/dom"
	"github.com/quarkc-go/quark/pkg/reactive"
)

// MaxRenderPasses bounds how many times a component's render function runs
// in one diff when it keeps marking itself dirty during render. Past the
// bound the last output is kept; a component that dirties itself on every
// pass would otherwise never return.
const MaxRenderPasses = 25

// RenderInfo describes one root render.
type RenderInfo struct {
	Container *dom.Node
	Root      *VNode

	// Nodes is the number of mounted nodes after the render.
	Nodes int

	// Errors is the number of subtrees that panicked during the render.
	Errors int

	Duration time.Duration
}

// Hooks observe the renderer. Every field is optional.
type Hooks struct {
	BeforeRender func(container *dom.Node)
	AfterRender  func(info RenderInfo)

	// OnDiffed is called after a component or element node was diffed.
	OnDiffed func(v *VNode)

	// OnUnmount is called for every unmounted component or element node,
	// parents before children.
	OnUnmount func(v *VNode)

	// OnError receives recovered render and ref panics.
	OnError func(err error, v *VNode)

	// OnRunaway is called when a component hits MaxRenderPasses.
	OnRunaway func(c *Component)
}

// Renderer reconciles node descriptions into a document.
type Renderer struct {
	doc    *dom.Document
	rt     *reactive.Runtime
	logger *slog.Logger
	debug  bool
	hooks  []Hooks

	// removing holds DOM nodes that are about to be removed by the current
	// child diff. They are never used as insertion anchors.
	removing mapset.Set[*dom.Node]

	listeners map[*dom.Node]map[string]*proxy

	errors int
}

// RenderOption configures a Renderer.
type RenderOption func(*Renderer)

// WithLogger sets the logger for development diagnostics.
func WithLogger(l *slog.Logger) RenderOption {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithDebug enables development diagnostics.
func WithDebug(debug bool) RenderOption {
	return func(r *Renderer) { r.debug = debug }
}

// WithHooks adds a set of hooks. Hooks added later run later.
func WithHooks(h Hooks) RenderOption {
	return func(r *Renderer) { r.hooks = append(r.hooks, h) }
}

// WithRuntime makes components track observables and schedule updates on rt.
func WithRuntime(rt *reactive.Runtime) RenderOption {
	return func(r *Renderer) { r.rt = rt }
}

// New creates a renderer for doc. Without WithRuntime a runtime with its own
// loop is created.
func New(doc *dom.Document, opts ...RenderOption) *Renderer {
	r := &Renderer{
		doc:       doc,
		logger:    slog.Default(),
		removing:  mapset.NewThreadUnsafeSet[*dom.Node](),
		listeners: make(map[*dom.Node]map[string]*proxy),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.rt == nil {
		r.rt = reactive.NewRuntime(reactive.WithLogger(r.logger), reactive.WithDebug(r.debug))
	}
	return r
}

// Document returns the document the renderer creates nodes in.
func (r *Renderer) Document() *dom.Document { return r.doc }

// Runtime returns the reactive runtime used by components.
func (r *Renderer) Runtime() *reactive.Runtime { return r.rt }

// AddHooks registers hooks after construction.
func (r *Renderer) AddHooks(h Hooks) { r.hooks = append(r.hooks, h) }

// Render reconciles v into container. v is anything a render function may
// return. The previous tree rendered into container is used as the old tree,
// so repeated renders patch in place.
func (r *Renderer) Render(v any, container *dom.Node) *VNode {
	start := time.Now()
	for _, h := range r.hooks {
		if h.BeforeRender != nil {
			h.BeforeRender(container)
		}
	}
	// Elements render their shadow roots from inside an outer render.
	outer := r.errors
	r.errors = 0
	defer func() { r.errors += outer }()

	old, _ := container.RenderRoot().(*VNode)
	root := Fragment(v)
	container.SetRenderRoot(root)

	cursor := container.FirstChild()
	if old != nil {
		cursor = old.dom
	}
	svg := container.Namespace == dom.SVGNamespace
	r.diff(container, root, old, svg, cursor)

	info := RenderInfo{
		Container: container,
		Root:      root,
		Nodes:     root.Count(),
		Errors:    r.errors,
		Duration:  time.Since(start),
	}
	for _, h := range r.hooks {
		if h.AfterRender != nil {
			h.AfterRender(info)
		}
	}
	return root
}

// Unmount tears down the tree rendered into container and removes its DOM.
func (r *Renderer) Unmount(container *dom.Node) {
	old, _ := container.RenderRoot().(*VNode)
	if old == nil {
		return
	}
	container.SetRenderRoot(nil)
	r.unmount(old, false)
}

// recovered converts a recovered panic into an error, logs it in debug mode
// and returns it.
func (r *Renderer) recovered(code string, rec any, args ...any) *qerrors.QuarkError {
	err := qerrors.FromPanic(code, rec)
	if r.debug {
		r.logger.Warn(err.Message, append([]any{"code", code, "panic", rec}, args...)...)
	}
	return err
}

func (r *Renderer) warn(code string, detail string, args ...any) {
	if !r.debug {
		return
	}
	err := qerrors.New(code).WithDetail(detail)
	r.logger.Warn(err.Message, append([]any{"code", code, "error", err}, args...)...)
}

func (r *Renderer) emitError(err error, v *VNode) {
	r.errors++
	for _, h := range r.hooks {
		if h.OnError != nil {
			h.OnError(err, v)
		}
	}
}

func (r *Renderer) emitDiffed(v *VNode) {
	for _, h := range r.hooks {
		if h.OnDiffed != nil {
			h.OnDiffed(v)
		}
	}
}

func (r *Renderer) emitUnmount(v *VNode) {
	for _, h := range r.hooks {
		if h.OnUnmount != nil {
			h.OnUnmount(v)
		}
	}
}

func (r *Renderer) emitRunaway(c *Component) {
	r.warn("Q003", fmt.Sprintf("render ran %d times", MaxRenderPasses), "component", c.Name())
	for _, h := range r.hooks {
		if h.OnRunaway != nil {
			h.OnRunaway(c)
		}
	}
}
