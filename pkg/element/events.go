package element

import "github.com/quarkc-go/quark/pkg/dom"

// Emit dispatches a bubbling event from the host node. It reports whether
// no listener prevented the default action.
func (e *Element) Emit(name string, detail any) bool {
	return e.node.DispatchEvent(dom.NewEvent(name, true, detail))
}

// On listens for name on target, or on the host node when target is nil.
// The listener is removed by off or by Teardown.
func (e *Element) On(name string, fn dom.EventListener, target *dom.Node) (off func()) {
	if target == nil {
		target = e.node
	}
	remove := target.AddEventListener(name, fn, false)
	done := false
	off = func() {
		if !done {
			done = true
			remove()
		}
	}
	e.offs = append(e.offs, off)
	return off
}

// NextTick runs cb after the current batch of updates has been flushed.
// Calls from the same function literal on one element run once per batch.
func (e *Element) NextTick(cb func()) {
	e.rt.NextTick(cb, e)
}
