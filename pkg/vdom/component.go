package vdom

import (
	"runtime"
	"strings"

	"github.com/quarkc-go/quark/pkg/dom"
	"github.com/quarkc-go/quark/pkg/reactive"
)

// Component is the instance behind a mounted component node. It lives from
// the first diff of the node until the node is unmounted, and is reused
// while the same render function renders at the same position.
type Component struct {
	id     uint64
	r      *Renderer
	render RenderFunc

	props    Props
	children []*VNode

	vnode     *VNode
	parentDom *dom.Node
	base      *dom.Node

	dirty     bool
	rendering bool
	unmounted bool

	hooks     []any
	hookIndex int
	cleanups  []func()

	// watcher tracks the observables read by render. A change triggers
	// Update instead of running the watcher directly.
	watcher *reactive.Watcher
	job     reactive.Job
}

func newComponent(r *Renderer, v *VNode) *Component {
	c := &Component{
		id:     reactive.NextID(),
		r:      r,
		render: v.Render,
		props:  v.Props,
		dirty:  true,
	}
	c.job = reactive.JobFunc(c.id, "component", func() {
		if c.dirty && !c.unmounted {
			r.renderComponent(c)
		}
	})
	return c
}

// ID returns the instance id. It is also the scheduler job id of Update.
func (c *Component) ID() uint64 { return c.id }

// Name returns the render function's name, for diagnostics.
func (c *Component) Name() string {
	fn := runtime.FuncForPC(funcID(c.render))
	if fn == nil {
		return "component"
	}
	name := fn.Name()
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// Props returns the props of the current render.
func (c *Component) Props() Props { return c.props }

// Prop returns a single prop.
func (c *Component) Prop(name string) any { return c.props[name] }

// Children returns the children passed to the component node.
func (c *Component) Children() []*VNode { return c.children }

// Base returns the first DOM node the component rendered, or nil.
func (c *Component) Base() *dom.Node { return c.base }

// ParentDom returns the DOM node the component renders into.
func (c *Component) ParentDom() *dom.Node { return c.parentDom }

// Runtime returns the reactive runtime the component tracks reads on.
func (c *Component) Runtime() *reactive.Runtime { return c.r.rt }

// Unmounted reports whether the component has been torn down.
func (c *Component) Unmounted() bool { return c.unmounted }

// OnCleanup registers fn to run when the component unmounts.
func (c *Component) OnCleanup(fn func()) {
	c.cleanups = append(c.cleanups, fn)
}

// Update marks the component dirty. During render this causes another
// render pass; otherwise the component re-renders in place, alone, once the
// current task finishes.
func (c *Component) Update() {
	if c.unmounted {
		return
	}
	if c.rendering {
		c.dirty = true
		return
	}
	if c.dirty {
		return
	}
	c.dirty = true
	c.r.rt.Scheduler().Queue(c.job)
}

// renderLoop runs render until it stops marking the component dirty, at
// most MaxRenderPasses times.
func (c *Component) renderLoop() any {
	var out any
	for passes := 1; ; passes++ {
		c.dirty = false
		out = c.run()
		if !c.dirty {
			return out
		}
		if passes >= MaxRenderPasses {
			c.dirty = false
			c.r.emitRunaway(c)
			return out
		}
	}
}

func (c *Component) run() any {
	if c.watcher == nil {
		c.watcher = reactive.NewWatcher(c.r.rt, func() any { return c.render(c) },
			reactive.Render(), reactive.Lazy(), reactive.Trigger(c.Update))
	}
	c.rendering = true
	c.hookIndex = 0
	defer func() { c.rendering = false }()
	return c.watcher.Get()
}

func (c *Component) unmount() {
	c.unmounted = true
	if c.watcher != nil {
		c.watcher.Teardown()
	}
	for i := len(c.cleanups) - 1; i >= 0; i-- {
		c.r.guard(c.vnode, "cleanup of "+c.Name(), c.cleanups[i])
	}
	c.cleanups = nil
	c.base = nil
	c.parentDom = nil
}

// renderComponent re-renders c in place: the component node is diffed
// against a copy of itself with a different token, anchored at its current
// DOM position.
func (r *Renderer) renderComponent(c *Component) {
	v := c.vnode
	parentDom := c.parentDom
	if v == nil || parentDom == nil {
		return
	}

	old := *v
	old.original = v.original + 1

	oldDom := v.dom
	cursor := oldDom
	if cursor == nil {
		cursor = getDomSibling(v, -1)
	}
	svg := parentDom.Namespace == dom.SVGNamespace && parentDom.Tag != "foreignObject"

	r.diff(parentDom, v, &old, svg, cursor)
	if v.dom != oldDom {
		updateParentDomPointers(v)
	}
}

// hook returns the hook slot for the current call, creating it with init on
// the first render.
func hook[T any](c *Component, init func() T) T {
	i := c.hookIndex
	c.hookIndex++
	if i < len(c.hooks) {
		if v, ok := c.hooks[i].(T); ok {
			return v
		}
	}
	v := init()
	if i < len(c.hooks) {
		c.hooks[i] = v
	} else {
		c.hooks = append(c.hooks, v)
	}
	return v
}

// UseState returns a value that persists across renders and a setter. Hooks
// must be called in the same order on every render.
func UseState[T any](c *Component, initial T) (T, func(T)) {
	o := hook(c, func() *reactive.Observable[T] {
		return reactive.NewObservable(c.r.rt, initial)
	})
	return o.Get(), o.Set
}

// UseObservable returns a component-owned observable created on first render.
func UseObservable[T any](c *Component, initial T) *reactive.Observable[T] {
	return hook(c, func() *reactive.Observable[T] {
		return reactive.NewObservable(c.r.rt, initial)
	})
}

// UseRef returns a ref cell that persists across renders.
func UseRef(c *Component) *RefObject {
	return hook(c, CreateRef)
}
