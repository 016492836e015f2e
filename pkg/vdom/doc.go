// Package vdom provides quark's node model and reconciler.
//
// A VNode describes a piece of UI: an element, a text node, a component
// (a RenderFunc) or a fragment. The Renderer diffs a new description against
// the one previously rendered into a container and patches the dom package's
// document with the minimal set of writes.
//
// # Element API
//
// Elements are created using variadic factory functions:
//
//	Div(Class("card"), ID("main"),
//	    H1(Text("Title")),
//	    P(Text("Content")),
//	    OnClick(handler),
//	)
//
// H is the generic form, taking a tag, a RenderFunc or nil for a fragment.
//
// # Identity
//
// Every construction call stamps the node with a fresh identity token.
// Returning the same *VNode (or a Clone of it) from two renders in a row
// tells the reconciler that the subtree is unchanged; its DOM is kept and
// nothing below it is diffed.
//
// # Components
//
// A component's render function receives its *Component. Observables read
// during render are tracked, and a change re-renders only that component,
// in place, once the current task finishes. Component.Update schedules the
// same re-render explicitly; called during render it causes another render
// pass, bounded by MaxRenderPasses.
//
// # Failures
//
// A panic while diffing a node is recovered at that node: its identity token
// is voided, its previous rendering is kept if there was one, and siblings
// render normally. Hooks.OnError receives the error.
package vdom
