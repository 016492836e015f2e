package vtest

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/quarkc-go/quark/pkg/dom"
	"github.com/quarkc-go/quark/pkg/element"
	"github.com/quarkc-go/quark/pkg/reactive"
	"github.com/quarkc-go/quark/pkg/vdom"
)

// Harness is a document with one container, a renderer, its runtime and an
// element registry, plus logs of what happened.
type Harness struct {
	t testing.TB

	Doc       *dom.Document
	Container *dom.Node
	Renderer  *vdom.Renderer
	Registry  *element.Registry

	// Logs receives the diagnostics of the renderer and runtime.
	Logs *bytes.Buffer

	// Errors collects recovered render, ref and element hook panics.
	Errors []error

	ops []string
}

type config struct {
	container string
	debug     bool
	defs      []*element.Definition
	hooks     []vdom.Hooks
}

// Option configures a Harness.
type Option func(*config)

// WithContainer sets the container tag (default: "main").
func WithContainer(tag string) Option {
	return func(c *config) { c.container = tag }
}

// WithDebug toggles development diagnostics (default: on).
func WithDebug(debug bool) Option {
	return func(c *config) { c.debug = debug }
}

// WithElements defines element types before the first render.
func WithElements(defs ...*element.Definition) Option {
	return func(c *config) { c.defs = append(c.defs, defs...) }
}

// WithHooks adds renderer hooks.
func WithHooks(h vdom.Hooks) Option {
	return func(c *config) { c.hooks = append(c.hooks, h) }
}

// New creates a Harness. It fails the test if an element definition is
// rejected.
//
// Example:
//
//	h := vtest.New(t)
//	h.Render(vdom.P("hi"))
//	vtest.ExpectHTML(t, h, "<p>hi</p>")
func New(t testing.TB, opts ...Option) *Harness {
	t.Helper()
	cfg := config{container: "main", debug: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	doc := dom.NewDocument()
	container := doc.CreateElement(cfg.container)
	if err := doc.Body().AppendChild(container); err != nil {
		t.Fatalf("vtest: append container: %v", err)
	}

	h := &Harness{t: t, Doc: doc, Container: container, Logs: &bytes.Buffer{}}
	logger := slog.New(slog.NewTextHandler(h.Logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	rt := reactive.NewRuntime(reactive.WithLogger(logger), reactive.WithDebug(cfg.debug))

	vopts := []vdom.RenderOption{
		vdom.WithLogger(logger),
		vdom.WithDebug(cfg.debug),
		vdom.WithRuntime(rt),
		vdom.WithHooks(vdom.Hooks{OnError: func(err error, _ *vdom.VNode) { h.Errors = append(h.Errors, err) }}),
	}
	for _, hk := range cfg.hooks {
		vopts = append(vopts, vdom.WithHooks(hk))
	}
	h.Renderer = vdom.New(doc, vopts...)
	h.Registry = element.NewRegistry(h.Renderer, element.WithErrorHandler(func(err error, _ *element.Element) {
		h.Errors = append(h.Errors, err)
	}))
	for _, def := range cfg.defs {
		if err := h.Registry.Define(def); err != nil {
			t.Fatalf("vtest: define %s: %v", def.Tag, err)
		}
	}

	t.Cleanup(doc.Observe(func(m dom.Mutation) { h.ops = append(h.ops, Describe(m)) }))
	return h
}

// Runtime returns the reactive runtime.
func (h *Harness) Runtime() *reactive.Runtime { return h.Renderer.Runtime() }

// Render renders v into the container as one task and resets the mutation
// log first.
func (h *Harness) Render(v any) *vdom.VNode {
	h.ops = nil
	var root *vdom.VNode
	h.Runtime().Loop().Do(func() { root = h.Renderer.Render(v, h.Container) })
	return root
}

// Act runs fn as one task and flushes everything it scheduled. The mutation
// log is reset first.
func (h *Harness) Act(fn func()) {
	h.ops = nil
	h.Runtime().Loop().Do(fn)
}

// Unmount tears down the container's tree.
func (h *Harness) Unmount() {
	h.ops = nil
	h.Renderer.Unmount(h.Container)
}

// Mount creates an element of a defined tag and appends it to the
// container.
func (h *Harness) Mount(tag string) *element.Element {
	h.t.Helper()
	e := h.Registry.Create(tag)
	if e == nil {
		h.t.Fatalf("vtest: %q is not a defined element", tag)
	}
	h.Act(func() {
		if err := h.Container.AppendChild(e.Node()); err != nil {
			h.t.Fatalf("vtest: mount %s: %v", tag, err)
		}
	})
	return e
}

// HTML returns the container's inner HTML.
func (h *Harness) HTML() string { return h.Container.InnerHTML() }

// Ops returns the mutations recorded since the last Render, Act or
// Unmount, one "op name[=value]" line each.
func (h *Harness) Ops() []string { return h.ops }

// Count returns how many recorded mutations have op.
func (h *Harness) Count(op dom.MutationOp) int {
	n := 0
	for _, s := range h.ops {
		if name, _, _ := strings.Cut(s, " "); name == string(op) {
			n++
		}
	}
	return n
}

// Describe formats a mutation the way Ops records it.
func Describe(m dom.Mutation) string {
	if m.Value == "" {
		return fmt.Sprintf("%s %s", m.Op, m.Name)
	}
	return fmt.Sprintf("%s %s=%s", m.Op, m.Name, m.Value)
}

// RenderToString renders v into a fresh document and returns the HTML.
// This is useful for asserting on rendered output.
//
// Example:
//
//	html := vtest.RenderToString(MyList(items))
//	if !strings.Contains(html, "expected text") {
//	    t.Error("missing expected text")
//	}
func RenderToString(v any) string {
	doc := dom.NewDocument()
	container := doc.CreateElement("main")
	r := vdom.New(doc, vdom.WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))))
	r.Runtime().Loop().Do(func() { r.Render(v, container) })
	return container.InnerHTML()
}

// ExpectHTML asserts the container's inner HTML.
func ExpectHTML(t testing.TB, h *Harness, want string) {
	t.Helper()
	if got := h.HTML(); got != want {
		t.Errorf("html = %q, want %q", got, want)
	}
}

// ExpectContains asserts that rendered output contains expected substring.
//
// Example:
//
//	vtest.ExpectContains(t, h, "Welcome")
func ExpectContains(t testing.TB, h *Harness, expected string) {
	t.Helper()
	html := h.HTML()
	if !strings.Contains(html, expected) {
		t.Errorf("expected rendered output to contain %q, got:\n%s", expected, truncate(html, 500))
	}
}

// ExpectNotContains asserts that rendered output does not contain substring.
func ExpectNotContains(t testing.TB, h *Harness, unexpected string) {
	t.Helper()
	html := h.HTML()
	if strings.Contains(html, unexpected) {
		t.Errorf("expected rendered output to NOT contain %q, got:\n%s", unexpected, truncate(html, 500))
	}
}

// ExpectElement asserts that rendered output contains a specific tag.
func ExpectElement(t testing.TB, h *Harness, tag string) {
	t.Helper()
	html := h.HTML()
	if !strings.Contains(html, "<"+tag) {
		t.Errorf("expected rendered output to contain <%s> element, got:\n%s", tag, truncate(html, 500))
	}
}

// ExpectAttribute asserts that rendered output contains an attribute value.
//
// Example:
//
//	vtest.ExpectAttribute(t, h, "class", "btn-primary")
func ExpectAttribute(t testing.TB, h *Harness, attr, value string) {
	t.Helper()
	html := h.HTML()
	needle := attr + `="` + value + `"`
	if !strings.Contains(html, needle) {
		t.Errorf("expected attribute %s=%q not found, got:\n%s", attr, value, truncate(html, 500))
	}
}

// ExpectNoErrors asserts that nothing panicked.
func ExpectNoErrors(t testing.TB, h *Harness) {
	t.Helper()
	for _, err := range h.Errors {
		t.Errorf("unexpected error: %v", err)
	}
}

// truncate truncates a string to max length with ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
