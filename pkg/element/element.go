package element

import (
	"fmt"
	"math"
	"strconv"

	qerrors "github.com/quarkc-go/quark/internal/errors"
	"github.com/quarkc-go/quark/pkg/dom"
	"github.com/quarkc-go/quark/pkg/reactive"
)

// accessor reads and writes one declared field of an instance.
type accessor struct {
	get  func() any
	peek func() any
	set  func(any)
}

// Element is the instance behind an upgraded custom element node. It is
// created once per node and survives disconnects: state set before a
// disconnect is still there after the node is connected again.
type Element struct {
	def  *Definition
	reg  *Registry
	node *dom.Node
	rt   *reactive.Runtime

	shadow *dom.Node

	accessors map[string]accessor

	// slots notify readers of attribute-backed properties, keyed by
	// attribute name.
	slots map[string]*reactive.Slot

	render   *reactive.Watcher
	watchers []*reactive.Watcher

	controllers []Controller

	// updated holds DidUpdate calls queued until the next render finishes.
	updated []func()

	// oldVals keeps the value an attribute had before it was set to "false"
	// and removed, so DidUpdate reports the real previous value.
	oldVals map[string]*string

	mounted  bool
	torndown bool
	offs     []func()
}

var (
	_ dom.Behavior         = (*Element)(nil)
	_ dom.PropertyBehavior = (*Element)(nil)
)

func newElement(reg *Registry, def *Definition, n *dom.Node) *Element {
	e := &Element{
		def:       def,
		reg:       reg,
		node:      n,
		rt:        reg.rt,
		shadow:    n.AttachShadow(),
		accessors: make(map[string]accessor, len(def.fields)),
		slots:     make(map[string]*reactive.Slot),
		oldVals:   make(map[string]*string),
	}
	for _, f := range def.fields {
		e.accessors[f.name] = e.bind(f)
	}
	for _, w := range def.watches {
		e.watchers = append(e.watchers, e.watch(w))
	}
	return e
}

// bind builds the accessor of f for this instance.
func (e *Element) bind(f *field) accessor {
	switch f.kind {
	case fieldProperty:
		slot := reactive.NewSlot(e.rt)
		e.slots[f.attr] = slot
		read := func() any { return f.convert(e.attr(f.attr)) }
		return accessor{
			get: func() any {
				slot.Depend()
				return read()
			},
			peek: read,
			set:  func(v any) { e.writeAttr(f.attr, v) },
		}

	case fieldComputed:
		var w *reactive.Watcher
		watcher := func() *reactive.Watcher {
			if w == nil {
				w = reactive.NewWatcher(e.rt, func() any { return f.compute(e) }, reactive.Lazy())
				e.watchers = append(e.watchers, w)
			}
			return w
		}
		return accessor{
			get: func() any { return watcher().Value() },
			peek: func() (v any) {
				e.rt.Untracked(func() { v = watcher().Value() })
				return v
			},
			set: func(any) {
				e.warn("Q040", fmt.Sprintf("computed field %q is read-only", f.name))
			},
		}

	default:
		slot := reactive.NewSlot(e.rt)
		value := f.initial
		return accessor{
			get: func() any {
				slot.Depend()
				return value
			},
			peek: func() any { return value },
			set: func(v any) {
				old := value
				if reactive.Same(old, v) || e.prevented(f.name, old, v) {
					return
				}
				value = v
				slot.Notify()
				e.queueDidUpdate(f.name, old, v)
			},
		}
	}
}

func (e *Element) watch(w watch) *reactive.Watcher {
	opts := []reactive.WatcherOption{
		reactive.Callback(func(newValue, oldValue any) {
			e.protect("watch "+w.path, func() { w.fn(e, newValue, oldValue) })
		}),
	}
	if w.opts.Immediate {
		opts = append(opts, reactive.Immediate())
	}
	return reactive.NewWatcher(e.rt, func() any { return e.Get(w.path) }, opts...)
}

// Node returns the host node.
func (e *Element) Node() *dom.Node { return e.node }

// Definition returns the element type.
func (e *Element) Definition() *Definition { return e.def }

// ShadowRoot returns the fragment the element renders into.
func (e *Element) ShadowRoot() *dom.Node { return e.shadow }

// Runtime returns the reactive runtime shared with the renderer.
func (e *Element) Runtime() *reactive.Runtime { return e.rt }

// Mounted reports whether the element rendered since it was last connected.
func (e *Element) Mounted() bool { return e.mounted }

// Get returns the value of a declared field and subscribes the active
// watcher to it. Undeclared names return nil.
func (e *Element) Get(name string) any {
	if a, ok := e.accessors[name]; ok {
		return a.get()
	}
	return nil
}

// Peek is Get without subscribing.
func (e *Element) Peek(name string) any {
	if a, ok := e.accessors[name]; ok {
		return a.peek()
	}
	return nil
}

// Set writes a declared field. Properties write their attribute: nil, false
// and "" remove it, true sets it empty, anything else sets its text.
func (e *Element) Set(name string, value any) {
	a, ok := e.accessors[name]
	if !ok {
		e.warn("Q040", fmt.Sprintf("%s has no field %q", e.def.Tag, name))
		return
	}
	a.set(value)
}

// String returns the field as a string. Absent values are "".
func (e *Element) String(name string) string {
	switch v := e.Get(name).(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// Float returns the field as a number. Non-numeric values are NaN.
func (e *Element) Float(name string) float64 {
	switch v := e.Get(name).(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case nil:
		return 0
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

// Bool returns the field as a boolean.
func (e *Element) Bool(name string) bool {
	switch v := e.Get(name).(type) {
	case bool:
		return v
	case nil:
		return false
	case string:
		return v != ""
	case float64:
		return v != 0 && !math.IsNaN(v)
	default:
		return true
	}
}

// HasProperty implements dom.PropertyBehavior.
func (e *Element) HasProperty(name string) bool {
	_, ok := e.accessors[name]
	return ok
}

// Property implements dom.PropertyBehavior.
func (e *Element) Property(name string) any { return e.Get(name) }

// SetProperty implements dom.PropertyBehavior. The reconciler sets declared
// fields through it.
func (e *Element) SetProperty(name string, value any) { e.Set(name, value) }

func (e *Element) attr(name string) *string {
	v, ok := e.node.GetAttribute(name)
	if !ok {
		return nil
	}
	return &v
}

func (e *Element) writeAttr(name string, v any) {
	var text string
	remove := false
	switch x := v.(type) {
	case nil:
		remove = true
	case bool:
		remove = !x
	case string:
		text, remove = x, x == ""
	case float64:
		text = strconv.FormatFloat(x, 'f', -1, 64)
	default:
		text = fmt.Sprint(x)
	}

	cur, had := e.node.GetAttribute(name)
	switch {
	case remove && had:
		e.node.RemoveAttribute(name)
	case !remove && (!had || cur != text):
		e.node.SetAttribute(name, text)
	}
}

func (e *Element) prevented(name string, oldValue, newValue any) bool {
	fn := e.def.hooks.ShouldUpdate
	if fn == nil {
		return false
	}
	allow := true
	e.protect("ShouldUpdate", func() { allow = fn(e, name, oldValue, newValue) })
	return !allow
}

func (e *Element) queueDidUpdate(name string, oldValue, newValue any) {
	fn := e.def.hooks.DidUpdate
	if fn == nil {
		return
	}
	e.updated = append(e.updated, func() { fn(e, name, oldValue, newValue) })
}

// Connected implements dom.Behavior. The first connect renders; later
// connects re-run the mount hooks against the existing rendering.
func (e *Element) Connected() {
	if e.torndown {
		return
	}
	e.syncObserved()
	for _, c := range e.controllers {
		e.protect("HostConnected", c.HostConnected)
	}
	e.renderWatcher()
	if !e.mounted {
		e.postRender()
	}
}

// Disconnected implements dom.Behavior. State, watchers and the rendered
// shadow content are kept; the node may be inserted again.
func (e *Element) Disconnected() {
	if fn := e.def.hooks.WillUnmount; fn != nil {
		e.protect("WillUnmount", func() { fn(e) })
	}
	for _, c := range e.controllers {
		e.protect("HostDisconnected", c.HostDisconnected)
	}
	e.mounted = false
}

// ObservedAttributes implements dom.Behavior.
func (e *Element) ObservedAttributes() []string { return e.def.observed }

// AttributeChanged implements dom.Behavior. It notifies readers of the
// property backed by name and queues DidUpdate.
func (e *Element) AttributeChanged(name string, oldValue, newValue *string) {
	f := e.def.byAttr[name]
	if f == nil || f.kind != fieldProperty {
		return
	}

	// A boolean attribute set to "false" is removed, so it reads as false
	// and stops matching [attr] selectors.
	if f.opts.Type == Boolean && newValue != nil && *newValue == "false" && !sameAttr(oldValue, newValue) {
		if e.def.hooks.DidUpdate != nil {
			e.oldVals[f.name] = oldValue
		}
		e.node.RemoveAttribute(name)
		return
	}

	newProp := f.convert(newValue)
	resolved := oldValue
	if prev, ok := e.oldVals[f.name]; ok {
		delete(e.oldVals, f.name)
		resolved = prev
	}
	oldProp := f.convert(resolved)

	if e.prevented(f.name, oldProp, newProp) {
		return
	}
	e.slots[name].Notify()
	e.queueDidUpdate(f.name, oldProp, newProp)
}

func sameAttr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// syncObserved normalizes observed attributes to their converted values.
func (e *Element) syncObserved() {
	for _, f := range e.def.fields {
		if f.kind != fieldProperty || f.opts.Unobserved {
			continue
		}
		v := e.attr(f.attr)
		if v == nil {
			continue
		}
		e.writeAttr(f.attr, f.opts.converterOrDefault()(v, f.opts.Type))
	}
}

func (o PropertyOptions) converterOrDefault() Converter {
	if o.Converter != nil {
		return o.Converter
	}
	return DefaultConverter
}

// renderWatcher returns the render watcher, creating it and rendering for
// the first time on first call.
func (e *Element) renderWatcher() *reactive.Watcher {
	if e.render == nil {
		e.render = reactive.NewWatcher(e.rt, func() any {
			e.renderShadow()
			e.rt.Untracked(e.postRender)
			return nil
		}, reactive.Render())
	}
	return e.render
}

func (e *Element) renderShadow() {
	var out any
	if fn := e.def.render; fn != nil {
		ok := true
		e.protect("render", func() {
			ok = false
			out = fn(e)
			ok = true
		})
		if !ok {
			return
		}
	}
	e.reg.renderer.Render(out, e.shadow)
}

// postRender runs the mount or update hooks after a render.
func (e *Element) postRender() {
	mounted := e.mounted
	for _, c := range e.controllers {
		if mounted {
			e.protect("HostUpdated", c.HostUpdated)
		} else {
			e.protect("HostMounted", c.HostMounted)
		}
	}

	if !mounted {
		e.mounted = true
		pending := len(e.updated) > 0
		if fn := e.def.hooks.DidMount; fn != nil {
			if pending {
				// Changes made before mounting are covered by DidMount.
				e.updated = nil
			}
			e.protect("DidMount", func() { fn(e) })
			if pending {
				return
			}
		} else if pending && e.reg.debug {
			e.reg.logger.Debug("DidUpdate runs at mount; use DidMount for initialization", "tag", e.def.Tag)
		}
	}

	queued := e.updated
	e.updated = nil
	for _, fn := range queued {
		e.protect("DidUpdate", fn)
	}

	if mounted {
		if fn := e.def.hooks.Updated; fn != nil {
			e.protect("Updated", func() { fn(e) })
		}
	}
}

// RequestUpdate schedules a re-render.
func (e *Element) RequestUpdate() {
	if e.torndown {
		return
	}
	e.renderWatcher().Update()
}

// AddController registers c. A connected element calls HostConnected
// right away.
func (e *Element) AddController(c Controller) {
	for _, x := range e.controllers {
		if x == c {
			return
		}
	}
	e.controllers = append(e.controllers, c)
	if e.node.IsConnected() {
		e.protect("HostConnected", c.HostConnected)
	}
}

// RemoveController unregisters c.
func (e *Element) RemoveController(c Controller) {
	for i, x := range e.controllers {
		if x == c {
			e.controllers = append(e.controllers[:i], e.controllers[i+1:]...)
			return
		}
	}
}

// Teardown permanently stops the element: watchers are torn down, the
// shadow tree is unmounted and listeners added with On are removed. A torn
// down element no longer renders when connected.
func (e *Element) Teardown() {
	if e.torndown {
		return
	}
	e.torndown = true
	if e.render != nil {
		e.render.Teardown()
	}
	for _, w := range e.watchers {
		w.Teardown()
	}
	for _, off := range e.offs {
		off()
	}
	e.offs = nil
	e.reg.renderer.Unmount(e.shadow)
}

// protect runs fn, logging and swallowing a panic.
func (e *Element) protect(what string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			err := qerrors.FromPanic("Q042", r)
			if e.reg.debug {
				e.reg.logger.Warn(err.Message, "code", err.Code, "tag", e.def.Tag, "callback", what, "panic", r)
			}
			if e.reg.onError != nil {
				e.reg.onError(err, e)
			}
		}
	}()
	fn()
}

func (e *Element) warn(code, detail string) {
	if !e.reg.debug {
		return
	}
	err := qerrors.New(code).WithDetail(detail)
	e.reg.logger.Warn(err.Message, "code", code, "error", err, "tag", e.def.Tag)
}
