package element

import (
	"log/slog"

	qerrors "github.com/quarkc-go/quark/internal/errors"
	"github.com/quarkc-go/quark/pkg/dom"
	"github.com/quarkc-go/quark/pkg/reactive"
	"github.com/quarkc-go/quark/pkg/vdom"
)

// Registry binds element definitions to a document. Elements of a defined
// tag are upgraded when the document creates them, including when the
// reconciler renders the tag.
type Registry struct {
	doc      *dom.Document
	renderer *vdom.Renderer
	rt       *reactive.Runtime

	defs map[string]*Definition

	logger  *slog.Logger
	debug   bool
	onError func(err error, e *Element)
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger for development diagnostics. The default is
// the runtime's logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Registry) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithDebug overrides the runtime's debug flag.
func WithDebug(debug bool) Option {
	return func(g *Registry) { g.debug = debug }
}

// WithErrorHandler receives panics recovered from hooks, watches, controllers
// and render functions.
func WithErrorHandler(fn func(err error, e *Element)) Option {
	return func(g *Registry) { g.onError = fn }
}

// NewRegistry creates a registry whose elements render with r into r's
// document and track reads on r's runtime.
func NewRegistry(r *vdom.Renderer, opts ...Option) *Registry {
	rt := r.Runtime()
	g := &Registry{
		doc:      r.Document(),
		renderer: r,
		rt:       rt,
		defs:     make(map[string]*Definition),
		logger:   rt.Logger(),
		debug:    rt.Debug(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Define registers def with the document.
func (g *Registry) Define(def *Definition) error {
	if g.doc.Defined(def.Tag) {
		return qerrors.New("Q041").WithDetail("tag " + def.Tag)
	}
	g.defs[def.Tag] = def
	g.doc.Define(def.Tag, func(n *dom.Node) dom.Behavior {
		return newElement(g, def, n)
	})
	return nil
}

// Lookup returns the definition registered for tag.
func (g *Registry) Lookup(tag string) (*Definition, bool) {
	def, ok := g.defs[tag]
	return def, ok
}

// Create creates a detached element of a defined tag.
func (g *Registry) Create(tag string) *Element {
	return From(g.doc.CreateElement(tag))
}

// Renderer returns the renderer elements render with.
func (g *Registry) Renderer() *vdom.Renderer { return g.renderer }

// From returns the element instance behind n, or nil when n is not an
// upgraded element.
func From(n *dom.Node) *Element {
	if n == nil {
		return nil
	}
	e, _ := n.Behavior().(*Element)
	return e
}
