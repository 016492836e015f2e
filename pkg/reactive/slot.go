package reactive

import (
	"reflect"
	"weak"

	mapset "github.com/deckarep/golang-set/v2"
)

type subscriber struct {
	id uint64
	w  weak.Pointer[Watcher]
}

// Slot is a single observable cell: a subscriber list of watchers that
// read it. Slot does not hold a value; Observable pairs one with a value.
type Slot struct {
	id uint64
	rt *Runtime

	subs   []subscriber
	subIDs mapset.Set[uint64]
}

// NewSlot creates a slot tracked by rt.
func NewSlot(rt *Runtime) *Slot {
	return &Slot{
		id:     NextID(),
		rt:     rt,
		subIDs: mapset.NewThreadUnsafeSet[uint64](),
	}
}

// ID returns the slot id.
func (s *Slot) ID() uint64 { return s.id }

// Depend subscribes the runtime's active watcher, if any.
func (s *Slot) Depend() {
	if w := s.rt.Active(); w != nil {
		w.addDep(s)
	}
}

// Notify calls Update on every live subscriber in subscription order.
// Collected and torn-down watchers are pruned.
func (s *Slot) Notify() {
	live := make([]*Watcher, 0, len(s.subs))
	kept := s.subs[:0]
	for _, sub := range s.subs {
		w := sub.w.Value()
		if w == nil || !w.active {
			s.subIDs.Remove(sub.id)
			continue
		}
		kept = append(kept, sub)
		live = append(live, w)
	}
	clear(s.subs[len(kept):])
	s.subs = kept

	for _, w := range live {
		w.Update()
	}
}

// Subscribers returns the number of subscribers, including any not yet pruned.
func (s *Slot) Subscribers() int {
	return len(s.subs)
}

func (s *Slot) addSub(w *Watcher) {
	if !s.subIDs.Add(w.id) {
		return
	}
	s.subs = append(s.subs, subscriber{id: w.id, w: weak.Make(w)})
}

func (s *Slot) removeSub(w *Watcher) {
	if !s.subIDs.Contains(w.id) {
		return
	}
	s.subIDs.Remove(w.id)
	for i, sub := range s.subs {
		if sub.id == w.id {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			return
		}
	}
}

// Observable is a tracked value.
type Observable[T any] struct {
	slot  *Slot
	value T
	equal func(a, b T) bool
}

// NewObservable creates an observable holding initial.
func NewObservable[T any](rt *Runtime, initial T) *Observable[T] {
	return &Observable[T]{slot: NewSlot(rt), value: initial}
}

// WithEquals replaces the default equality used by Set.
func (o *Observable[T]) WithEquals(fn func(a, b T) bool) *Observable[T] {
	o.equal = fn
	return o
}

// Slot returns the slot backing the observable.
func (o *Observable[T]) Slot() *Slot { return o.slot }

// Get returns the value and subscribes the active watcher.
func (o *Observable[T]) Get() T {
	o.slot.Depend()
	return o.value
}

// Peek returns the value without subscribing.
func (o *Observable[T]) Peek() T {
	return o.value
}

// Set stores v and notifies subscribers. Setting an equal value is a no-op.
func (o *Observable[T]) Set(v T) {
	if o.equals(o.value, v) {
		return
	}
	o.value = v
	o.slot.Notify()
}

// Update sets the value to fn(current).
func (o *Observable[T]) Update(fn func(T) T) {
	o.Set(fn(o.value))
}

func (o *Observable[T]) equals(a, b T) bool {
	if o.equal != nil {
		return o.equal(a, b)
	}
	return Same(a, b)
}

// Same is the default equality: == for comparable values, reference identity
// for maps, slices, funcs and channels, and false for anything else.
func Same(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta.Comparable() {
		return safeEqual(a, b)
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	switch ta.Kind() {
	case reflect.Map, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	}
	return false
}

// safeEqual compares values whose static type is comparable but whose
// dynamic contents (interface fields) may not be.
func safeEqual(a, b any) (eq bool) {
	defer func() {
		if recover() != nil {
			eq = false
		}
	}()
	return a == b
}
