package vtest

import "github.com/quarkc-go/quark/pkg/dom"

// SimulateDisconnect removes n from the document as one task, which runs
// the disconnect reactions of the elements below it. The returned func puts
// n back at the same position as another task.
//
// Example:
//
//	reconnect := h.SimulateDisconnect(e.Node())
//	reconnect()
//	// state set before the disconnect is still there
func (h *Harness) SimulateDisconnect(n *dom.Node) (reconnect func()) {
	h.t.Helper()
	parent, next := n.Parent(), n.NextSibling()
	if parent == nil {
		h.t.Fatalf("vtest: node is not attached")
	}
	h.Act(func() { n.Remove() })
	return func() {
		h.Act(func() {
			var err error
			if next != nil && next.Parent() == parent {
				err = parent.InsertBefore(n, next)
			} else {
				err = parent.AppendChild(n)
			}
			if err != nil {
				h.t.Fatalf("vtest: reconnect: %v", err)
			}
		})
	}
}

// Move re-inserts n before ref under the same parent as one task. Moving a
// connected element disconnects and reconnects it.
func (h *Harness) Move(n, ref *dom.Node) {
	h.t.Helper()
	parent := n.Parent()
	if parent == nil {
		h.t.Fatalf("vtest: node is not attached")
	}
	h.Act(func() {
		var err error
		if ref == nil {
			err = parent.AppendChild(n)
		} else {
			err = parent.InsertBefore(n, ref)
		}
		if err != nil {
			h.t.Fatalf("vtest: move: %v", err)
		}
	})
}
