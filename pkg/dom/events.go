package dom

import "fmt"

// Event is a dispatched DOM event.
type Event struct {
	Type          string
	Target        *Node
	CurrentTarget *Node
	Detail        any
	Bubbles       bool

	stopped          bool
	defaultPrevented bool
}

// NewEvent creates an event of the given type.
func NewEvent(typ string, bubbles bool, detail any) *Event {
	return &Event{Type: typ, Bubbles: bubbles, Detail: detail}
}

// StopPropagation prevents the event from reaching further nodes.
func (e *Event) StopPropagation() { e.stopped = true }

// PreventDefault marks the event's default action as cancelled.
func (e *Event) PreventDefault() { e.defaultPrevented = true }

// DefaultPrevented reports whether PreventDefault was called.
func (e *Event) DefaultPrevented() bool { return e.defaultPrevented }

// EventListener handles a dispatched event.
type EventListener func(e *Event)

type listener struct {
	typ     string
	fn      EventListener
	capture bool
	removed bool
}

// AddEventListener registers fn for events of type typ. The returned func
// removes exactly this registration.
func (n *Node) AddEventListener(typ string, fn EventListener, capture bool) (remove func()) {
	l := &listener{typ: typ, fn: fn, capture: capture}
	n.listeners = append(n.listeners, l)
	n.doc.record(Mutation{Op: OpListen, Target: n, Name: typ, Value: phase(capture)})
	return func() { n.removeListener(l) }
}

// RemoveEventListener removes every registration of typ in the given phase.
// Listener funcs are not comparable, so registrations are matched by type
// and phase only.
func (n *Node) RemoveEventListener(typ string, capture bool) {
	for _, l := range n.listeners {
		if l.typ == typ && l.capture == capture && !l.removed {
			n.removeListener(l)
		}
	}
}

func (n *Node) removeListener(l *listener) {
	if l.removed {
		return
	}
	l.removed = true
	kept := n.listeners[:0]
	for _, x := range n.listeners {
		if x != l {
			kept = append(kept, x)
		}
	}
	n.listeners = kept
	n.doc.record(Mutation{Op: OpUnlisten, Target: n, Name: l.typ, Value: phase(l.capture)})
}

// ListenerCount returns the number of registrations for typ.
func (n *Node) ListenerCount(typ string) int {
	c := 0
	for _, l := range n.listeners {
		if l.typ == typ {
			c++
		}
	}
	return c
}

// DispatchEvent runs the capture phase from the root down to the target's
// parent, the target phase, and, when the event bubbles, the bubble phase
// back up. It reports whether the default action was not prevented.
func (n *Node) DispatchEvent(e *Event) bool {
	e.Target = n
	var path []*Node
	for p := n.parent; p != nil; p = p.parent {
		path = append(path, p)
	}

	for i := len(path) - 1; i >= 0 && !e.stopped; i-- {
		path[i].invoke(e, true, false)
	}
	if !e.stopped {
		n.invoke(e, false, true)
	}
	if e.Bubbles {
		for _, p := range path {
			if e.stopped {
				break
			}
			p.invoke(e, false, false)
		}
	}
	e.CurrentTarget = nil
	return !e.defaultPrevented
}

func (n *Node) invoke(e *Event, capture, atTarget bool) {
	e.CurrentTarget = n
	// Snapshot so listeners added during dispatch do not run.
	ls := append([]*listener(nil), n.listeners...)
	for _, l := range ls {
		if l.removed || l.typ != e.Type {
			continue
		}
		if !atTarget && l.capture != capture {
			continue
		}
		l.fn(e)
	}
}

// Click dispatches a bubbling click event.
func (n *Node) Click() {
	n.DispatchEvent(NewEvent("click", true, nil))
}

func phase(capture bool) string {
	return fmt.Sprintf("capture=%t", capture)
}
