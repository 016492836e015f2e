package vdom

import (
	"fmt"

	"github.com/quarkc-go/quark/pkg/dom"
)

// diff reconciles nv against ov and places the resulting DOM before cursor in
// parentDom. It returns the anchor for the next sibling.
//
// A panic anywhere below nv is recovered here: nv's identity token is voided
// and, when nv had a previous rendering, that rendering is kept.
func (r *Renderer) diff(parentDom *dom.Node, nv, ov *VNode, svg bool, cursor *dom.Node) (next *dom.Node) {
	if nv.Constructor != "" {
		r.warn("Q001", fmt.Sprintf("constructor %q", nv.Constructor), "tag", nv.Tag)
		return cursor
	}

	next = cursor
	defer func() {
		if rec := recover(); rec != nil {
			nv.original = 0
			next = r.salvage(parentDom, nv, ov, cursor)
			r.emitError(r.recovered("Q002", rec, "kind", nv.Kind.String(), "tag", nv.Tag), nv)
		}
	}()

	switch nv.Kind {
	case KindComponent:
		return r.diffComponent(parentDom, nv, ov, svg, cursor)

	case KindFragment:
		if reusable(nv, ov) {
			nv.dom, nv.kids = ov.dom, ov.kids
			adopt(nv)
			return r.placeAll(parentDom, nv, cursor)
		}
		var oldKids []*VNode
		if ov != nil {
			oldKids = ov.kids
		}
		return r.diffChildren(parentDom, nv.Children, nv, oldKids, svg, cursor)

	default:
		if reusable(nv, ov) {
			nv.dom, nv.kids = ov.dom, ov.kids
			adopt(nv)
			return r.place(parentDom, nv.dom, cursor)
		}
		var old *dom.Node
		if ov != nil {
			old = ov.dom
		}
		nv.dom = r.diffElementNodes(old, nv, ov, svg)
		r.emitDiffed(nv)
		return r.place(parentDom, nv.dom, cursor)
	}
}

// salvage settles nv after its diff panicked, so every DOM node it or ov
// placed stays reachable from the tree. An element whose diff stopped half
// way keeps its old DOM node; a component or fragment that never reached its
// child diff keeps its old children.
func (r *Renderer) salvage(parentDom *dom.Node, nv, ov *VNode, cursor *dom.Node) *dom.Node {
	same := ov != nil && ov.Kind == nv.Kind

	switch nv.Kind {
	case KindText, KindElement:
		if nv.dom == nil && same && ov.dom != nil {
			nv.dom = ov.dom
			if nv.kids == nil {
				nv.kids = ov.kids
			}
			adopt(nv)
		}
		if nv.dom == nil {
			// A fresh element that never got placed.
			for _, k := range nv.kids {
				if k != nil {
					r.unmount(k, true)
				}
			}
			nv.kids = nil
			return cursor
		}
		return r.place(parentDom, nv.dom, cursor)

	default:
		if nv.kids == nil && same {
			nv.dom, nv.kids = ov.dom, ov.kids
			adopt(nv)
			return r.placeAll(parentDom, nv, cursor)
		}
		nv.dom = firstDom(nv.kids)
		if nv.component != nil {
			nv.component.base = nv.dom
		}
		return cursor
	}
}

// reusable reports whether nv is the same description object as ov, so the
// previous rendering can be taken over unchanged.
func reusable(nv, ov *VNode) bool {
	return ov != nil && nv.original != 0 && nv.original == ov.original
}

// adopt re-parents v's rendered children onto v.
func adopt(v *VNode) {
	for _, k := range v.kids {
		if k != nil {
			k.parent = v
		}
	}
}

func (r *Renderer) diffComponent(parentDom *dom.Node, nv, ov *VNode, svg bool, cursor *dom.Node) *dom.Node {
	var c *Component
	isNew := false
	if ov != nil && ov.component != nil {
		c = ov.component
	} else {
		c = newComponent(r, nv)
		isNew = true
	}
	nv.component = c
	c.vnode = nv

	if !isNew && reusable(nv, ov) {
		nv.dom, nv.kids = ov.dom, ov.kids
		adopt(nv)
		return r.placeAll(parentDom, nv, cursor)
	}

	c.props = nv.Props
	c.children = nv.Children
	c.parentDom = parentDom

	out := c.renderLoop()

	var oldKids []*VNode
	if ov != nil {
		oldKids = ov.kids
	}
	next := r.diffChildren(parentDom, normalize(out), nv, oldKids, svg, cursor)
	c.base = nv.dom
	r.emitDiffed(nv)
	return next
}

// diffElementNodes creates or updates the DOM node for a text or element
// description. d is the old DOM node, or nil to create one.
func (r *Renderer) diffElementNodes(d *dom.Node, nv, ov *VNode, svg bool) *dom.Node {
	if nv.Kind == KindText {
		if d == nil {
			return r.doc.CreateTextNode(nv.Text)
		}
		if ov == nil || ov.Text != nv.Text {
			d.SetData(nv.Text)
		}
		return d
	}

	if nv.Tag == "svg" {
		svg = true
	}
	if d == nil {
		if svg {
			d = r.doc.CreateElementNS(dom.SVGNamespace, nv.Tag)
		} else {
			d = r.doc.CreateElement(nv.Tag)
		}
	}

	var oldProps Props
	var oldKids []*VNode
	if ov != nil {
		oldProps = ov.Props
		oldKids = ov.kids
	}

	newHTML, hasNew := nv.Props[propInnerHTML].(string)
	oldHTML, hasOld := oldProps[propInnerHTML].(string)
	if hasNew || hasOld {
		if !hasNew || ((!hasOld || newHTML != oldHTML) && newHTML != d.InnerHTML()) {
			d.SetInnerHTML(newHTML)
		}
	}

	r.diffProps(d, nv.Props, oldProps, svg)

	if hasNew {
		// The markup replaced whatever the old children rendered.
		for _, k := range oldKids {
			if k != nil {
				r.unmount(k, true)
			}
		}
		nv.kids = nil
	} else {
		r.diffChildren(d, nv.Children, nv, oldKids, svg && nv.Tag != "foreignObject", firstDom(oldKids))
	}

	if v, ok := nv.Props["value"]; ok && v != nil {
		if !liveEqual(v, d.Property("value")) ||
			(nv.Tag == "progress" && isZero(v)) ||
			(nv.Tag == "option" && !propsEqual(v, oldProps["value"])) {
			r.setProperty(d, "value", v, oldProps["value"], false)
		}
	}
	if v, ok := nv.Props["checked"]; ok && v != nil {
		if !liveEqual(v, d.Property("checked")) {
			r.setProperty(d, "checked", v, oldProps["checked"], false)
		}
	}
	return d
}

// place moves d so it sits before cursor in parentDom and returns the anchor
// for the next sibling. Nothing moves when d is already in position.
func (r *Renderer) place(parentDom, d, cursor *dom.Node) *dom.Node {
	if d == nil {
		return cursor
	}
	if d == cursor {
		return r.nextLive(d.NextSibling())
	}
	if d.Parent() == parentDom && d.NextSibling() == cursor {
		return cursor
	}
	if cursor == nil || cursor.Parent() != parentDom {
		_ = parentDom.AppendChild(d)
	} else {
		_ = parentDom.InsertBefore(d, cursor)
	}
	return cursor
}

// placeAll places every top-level DOM node of v in order.
func (r *Renderer) placeAll(parentDom *dom.Node, v *VNode, cursor *dom.Node) *dom.Node {
	eachDom(v, func(d *dom.Node) {
		cursor = r.place(parentDom, d, cursor)
	})
	return cursor
}

// nextLive skips DOM nodes that are about to be removed.
func (r *Renderer) nextLive(n *dom.Node) *dom.Node {
	for n != nil && r.removing.Contains(n) {
		n = n.NextSibling()
	}
	return n
}

// eachDom calls fn for the top-level DOM nodes of v: its own node for text
// and elements, the top-level nodes of its children otherwise.
func eachDom(v *VNode, fn func(*dom.Node)) {
	switch v.Kind {
	case KindText, KindElement:
		if v.dom != nil {
			fn(v.dom)
		}
	default:
		for _, k := range v.kids {
			if k != nil {
				eachDom(k, fn)
			}
		}
	}
}

func firstDom(kids []*VNode) *dom.Node {
	for _, k := range kids {
		if k != nil && k.dom != nil {
			return k.dom
		}
	}
	return nil
}

// getDomSibling returns the first DOM node rendered at or after child index
// i of v. A negative i resumes the search after v itself. The search climbs
// through component and fragment parents, stopping at the first element.
func getDomSibling(v *VNode, i int) *dom.Node {
	if i < 0 {
		p := v.parent
		if p == nil {
			return nil
		}
		idx := -1
		for j, k := range p.kids {
			if k == v {
				idx = j
				break
			}
		}
		return getDomSibling(p, idx+1)
	}
	for ; i < len(v.kids); i++ {
		if k := v.kids[i]; k != nil && k.dom != nil {
			return k.dom
		}
	}
	if v.Kind == KindComponent || v.Kind == KindFragment {
		return getDomSibling(v, -1)
	}
	return nil
}

// updateParentDomPointers refreshes the first-DOM handle of the component and
// fragment ancestors of v after v re-rendered on its own.
func updateParentDomPointers(v *VNode) {
	for p := v.parent; p != nil && (p.Kind == KindComponent || p.Kind == KindFragment); p = p.parent {
		p.dom = firstDom(p.kids)
		if p.component != nil {
			p.component.base = p.dom
		}
	}
}

// unmount tears down v and its subtree. skipRemove is set below an element
// whose DOM node is already being removed.
func (r *Renderer) unmount(v *VNode, skipRemove bool) {
	if ref := v.Ref; ref != nil {
		if cur := ref.current(); cur == nil || cur == v.dom {
			r.applyRef(ref, nil, v)
		}
	}

	if c := v.component; c != nil {
		c.unmount()
		v.component = nil
	}
	if v.Kind != KindFragment {
		r.guard(v, "unmount hook", func() { r.emitUnmount(v) })
	}

	owns := v.Kind == KindElement || v.Kind == KindText
	for _, k := range v.kids {
		if k != nil {
			r.unmount(k, skipRemove || owns)
		}
	}

	if owns && v.dom != nil {
		if !skipRemove {
			v.dom.Remove()
		}
		delete(r.listeners, v.dom)
	}
	v.parent = nil
	v.dom = nil
}

// guard runs fn and reports a panic as Q007 instead of letting it escape.
// Unmounting goes through guard so one failing callback cannot leave the
// rest of a subtree mounted.
func (r *Renderer) guard(v *VNode, what string, fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			err := r.recovered("Q007", rec, "callback", what)
			r.emitError(err.WithDetail(fmt.Sprintf("%s panicked: %v", what, rec)), v)
		}
	}()
	fn()
}

// applyRef sets ref to n. Panicking ref callbacks are swallowed.
func (r *Renderer) applyRef(ref Ref, n *dom.Node, v *VNode) {
	defer func() {
		if rec := recover(); rec != nil {
			r.emitError(r.recovered("Q004", rec, "tag", v.Tag), v)
		}
	}()
	ref.set(n)
}
