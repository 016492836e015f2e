package vdom

import (
	"github.com/quarkc-go/quark/pkg/dom"
)

// diffChildren reconciles children against oldKids, the rendered children of
// the previous version of np. The resulting DOM nodes are placed in
// parentDom starting at cursor; the returned anchor follows the last of them.
//
// Children match by key when keyed, else by type, preferring the same
// index. Unmatched old children are unmounted after every new child has
// been placed, and their DOM nodes are never used as anchors.
func (r *Renderer) diffChildren(parentDom *dom.Node, children []*VNode, np *VNode, oldKids []*VNode, svg bool, cursor *dom.Node) *dom.Node {
	kids := make([]*VNode, len(children))
	for i, c := range children {
		if c == nil {
			continue
		}
		if c.depth > 0 {
			// Already mounted elsewhere: render a copy sharing its token.
			c = c.Clone()
		}
		c.parent = np
		c.depth = np.depth + 1
		kids[i] = c
	}
	np.kids = kids

	matched := r.match(kids, oldKids)

	used := make([]bool, len(oldKids))
	for _, j := range matched {
		if j >= 0 {
			used[j] = true
		}
	}
	var stale []*VNode
	var doomed []*dom.Node
	for j, o := range oldKids {
		if o != nil && !used[j] {
			stale = append(stale, o)
			eachDom(o, func(d *dom.Node) { doomed = append(doomed, d) })
		}
	}
	for _, d := range doomed {
		r.removing.Add(d)
	}
	defer func() {
		for _, d := range doomed {
			r.removing.Remove(d)
		}
	}()

	cursor = r.nextLive(cursor)
	for i, c := range kids {
		if c == nil {
			continue
		}
		var o *VNode
		if j := matched[i]; j >= 0 {
			o = oldKids[j]
		}
		cursor = r.diff(parentDom, c, o, svg, cursor)
	}

	if np.Kind == KindComponent || np.Kind == KindFragment {
		np.dom = firstDom(kids)
	}

	for _, o := range stale {
		r.unmount(o, false)
	}

	for i, c := range kids {
		if c == nil || c.original == 0 {
			continue
		}
		var oldRef Ref
		if j := matched[i]; j >= 0 {
			oldRef = oldKids[j].Ref
		}
		if oldRef == c.Ref {
			continue
		}
		if oldRef != nil {
			r.applyRef(oldRef, nil, c)
		}
		if c.Ref != nil {
			r.applyRef(c.Ref, c.dom, c)
		}
	}
	return cursor
}

// match returns, for every new child, the index of the old child it
// reconciles against, or -1.
func (r *Renderer) match(kids, oldKids []*VNode) []int {
	matched := make([]int, len(kids))
	used := make([]bool, len(oldKids))

	var keyed map[string]int
	for j, o := range oldKids {
		if o == nil || o.Key == "" {
			continue
		}
		if keyed == nil {
			keyed = make(map[string]int)
		}
		if _, dup := keyed[o.Key]; !dup {
			keyed[o.Key] = j
		}
	}

	var seen map[string]bool
	for i, c := range kids {
		matched[i] = -1
		if c == nil {
			continue
		}

		if c.Key != "" {
			if seen[c.Key] {
				r.warn("Q005", "key "+c.Key+" appears more than once", "key", c.Key, "index", i)
				continue
			}
			if seen == nil {
				seen = make(map[string]bool)
			}
			seen[c.Key] = true
			if j, ok := keyed[c.Key]; ok && !used[j] && sameType(c, oldKids[j]) {
				matched[i], used[j] = j, true
			}
			continue
		}

		if i < len(oldKids) {
			if o := oldKids[i]; o != nil && !used[i] && o.Key == "" && sameType(c, o) {
				matched[i], used[i] = i, true
				continue
			}
		}
		for j, o := range oldKids {
			if o != nil && !used[j] && o.Key == "" && sameType(c, o) {
				matched[i], used[j] = j, true
				break
			}
		}
	}
	return matched
}
