package reactive

import (
	mapset "github.com/deckarep/golang-set/v2"
)

// Watcher kinds, as reported by Kind.
const (
	KindRender   = "render"
	KindComputed = "computed"
	KindUser     = "user"
	KindSync     = "sync"
)

// Watcher is a computation that subscribes to every slot it reads while
// running and re-collects that set on each run.
type Watcher struct {
	id     uint64
	rt     *Runtime
	getter func() any

	callback  func(newValue, oldValue any)
	trigger   func()
	render    bool
	lazy      bool
	sync      bool
	immediate bool

	active bool
	dirty  bool
	value  any

	deps      []*Slot
	newDeps   []*Slot
	depIDs    mapset.Set[uint64]
	newDepIDs mapset.Set[uint64]

	// slot re-exposes a lazy watcher to whoever reads its value.
	slot *Slot
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// Render marks the watcher as a render watcher.
func Render() WatcherOption {
	return func(w *Watcher) { w.render = true }
}

// Lazy defers evaluation until Value is called. Updates only mark the
// watcher dirty. Lazy watchers back computed values.
func Lazy() WatcherOption {
	return func(w *Watcher) { w.lazy = true }
}

// Sync runs the watcher inline on Update instead of queueing it.
func Sync() WatcherOption {
	return func(w *Watcher) { w.sync = true }
}

// Callback invokes fn after a run whose value changed.
func Callback(fn func(newValue, oldValue any)) WatcherOption {
	return func(w *Watcher) { w.callback = fn }
}

// Immediate invokes the callback once with the initial value.
func Immediate() WatcherOption {
	return func(w *Watcher) { w.immediate = true }
}

// Trigger replaces the default update behavior. fn is called instead of
// queueing the watcher; the owner decides when to call Get.
func Trigger(fn func()) WatcherOption {
	return func(w *Watcher) { w.trigger = fn }
}

// NewWatcher creates a watcher for getter. Unless Lazy is given, getter runs
// once immediately to collect the initial dependencies.
func NewWatcher(rt *Runtime, getter func() any, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		id:        NextID(),
		rt:        rt,
		getter:    getter,
		active:    true,
		depIDs:    mapset.NewThreadUnsafeSet[uint64](),
		newDepIDs: mapset.NewThreadUnsafeSet[uint64](),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.lazy {
		w.dirty = true
		w.slot = NewSlot(rt)
		return w
	}
	w.value = w.Get()
	if w.immediate && w.callback != nil {
		w.callback(w.value, nil)
	}
	return w
}

// ID returns the watcher id. It doubles as the scheduler job id.
func (w *Watcher) ID() uint64 { return w.id }

// Kind returns one of the Kind constants.
func (w *Watcher) Kind() string {
	switch {
	case w.render:
		return KindRender
	case w.lazy:
		return KindComputed
	case w.sync:
		return KindSync
	default:
		return KindUser
	}
}

// Active reports whether the watcher has not been torn down.
func (w *Watcher) Active() bool { return w.active }

// Dirty reports whether a lazy watcher needs re-evaluation.
func (w *Watcher) Dirty() bool { return w.dirty }

// Deps returns the number of slots read during the last run.
func (w *Watcher) Deps() int { return len(w.deps) }

// Get evaluates the getter with w as the active watcher and replaces the
// dependency set with whatever the getter read.
func (w *Watcher) Get() any {
	w.rt.push(w)
	defer func() {
		w.rt.pop()
		w.cleanupDeps()
	}()
	return w.getter()
}

func (w *Watcher) addDep(s *Slot) {
	if !w.newDepIDs.Add(s.id) {
		return
	}
	w.newDeps = append(w.newDeps, s)
	if !w.depIDs.Contains(s.id) {
		s.addSub(w)
	}
}

func (w *Watcher) cleanupDeps() {
	for _, s := range w.deps {
		if !w.newDepIDs.Contains(s.id) {
			s.removeSub(w)
		}
	}
	w.depIDs, w.newDepIDs = w.newDepIDs, w.depIDs
	w.newDepIDs.Clear()
	w.deps, w.newDeps = w.newDeps, w.deps[:0]
	clear(w.newDeps[:cap(w.newDeps)])
}

// Update is called by a slot when one of the dependencies changed.
func (w *Watcher) Update() {
	if !w.active {
		return
	}
	switch {
	case w.trigger != nil:
		w.trigger()
	case w.lazy:
		if !w.dirty {
			w.dirty = true
			w.slot.Notify()
		}
	case w.sync:
		w.Run()
	default:
		w.rt.sched.Queue(w)
	}
}

// Run re-evaluates the watcher and calls the callback when the value changed.
// Run is the scheduler job body.
func (w *Watcher) Run() {
	if !w.active {
		return
	}
	value := w.Get()
	if w.callback == nil {
		w.value = value
		return
	}
	if Same(value, w.value) {
		return
	}
	old := w.value
	w.value = value
	w.callback(value, old)
}

// Value returns the watcher's value, re-evaluating a dirty lazy watcher.
// Readers of a lazy watcher subscribe to it.
func (w *Watcher) Value() any {
	if w.lazy {
		if w.dirty {
			w.value = w.Get()
			w.dirty = false
		}
		w.slot.Depend()
	}
	return w.value
}

// Teardown unsubscribes from every dependency and deactivates the watcher.
func (w *Watcher) Teardown() {
	if !w.active {
		return
	}
	w.active = false
	for _, s := range w.deps {
		s.removeSub(w)
	}
	w.deps = nil
	w.depIDs.Clear()
}

// Computed is a typed lazy watcher.
type Computed[T any] struct {
	w *Watcher
}

// NewComputed creates a computed value evaluated on first Get.
func NewComputed[T any](rt *Runtime, fn func() T) *Computed[T] {
	return &Computed[T]{w: NewWatcher(rt, func() any { return fn() }, Lazy())}
}

// Get returns the cached value, recomputing it when a dependency changed.
func (c *Computed[T]) Get() T {
	v, _ := c.w.Value().(T)
	return v
}

// Watcher returns the underlying lazy watcher.
func (c *Computed[T]) Watcher() *Watcher { return c.w }

// Watch runs source under tracking and calls cb with the new and old values
// whenever a change to its dependencies yields a different value. The
// returned watcher must be kept reachable for as long as the watch should
// stay alive.
func Watch[T any](rt *Runtime, source func() T, cb func(newValue, oldValue T), opts ...WatcherOption) *Watcher {
	wrapped := func(n, o any) {
		nv, _ := n.(T)
		ov, _ := o.(T)
		cb(nv, ov)
	}
	opts = append([]WatcherOption{Callback(wrapped)}, opts...)
	return NewWatcher(rt, func() any { return source() }, opts...)
}
