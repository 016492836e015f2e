// Package vtest provides testing helpers for quark trees and elements.
//
// The vtest package reduces boilerplate by wiring a document, a container,
// a renderer, a runtime and an element registry, and by recording every
// document write.
//
// # Quick Start
//
//	func TestGreeting(t *testing.T) {
//	    h := vtest.New(t)
//	    h.Render(Greeting("bob"))
//	    vtest.ExpectHTML(t, h, "<p>hello bob</p>")
//	}
//
// # Tasks
//
// Render and Act run their work as one task on the runtime's loop, so
// updates scheduled by the task are flushed before they return:
//
//	h.Act(func() { count.Set(2) })
//	vtest.ExpectContains(t, h, "2")
//
// # Mutation Log
//
// Ops lists the writes made by the last Render, Act or Unmount:
//
//	h.Render(vdom.P("b"))
//	// h.Ops() == []string{"setData =b"}
//
// # Elements
//
// Elements are defined up front and mounted by tag:
//
//	h := vtest.New(t, vtest.WithElements(counterDef))
//	e := h.Mount("x-counter")
//	reconnect := h.SimulateDisconnect(e.Node())
//	reconnect()
//
// # Render Assertions
//
// Assert on rendered HTML output:
//
//	vtest.ExpectContains(t, h, "Welcome Admin")
//	vtest.ExpectNotContains(t, h, "Login")
package vtest
