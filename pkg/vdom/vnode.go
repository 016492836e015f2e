package vdom

import (
	"reflect"
	"sync/atomic"

	"github.com/quarkc-go/quark/pkg/dom"
)

// VKind is the node type discriminator.
type VKind uint8

const (
	KindText      VKind = iota + 1 // Plain text node
	KindElement                    // <div>, <button>, custom elements
	KindComponent                  // Render function
	KindFragment                   // Grouping without wrapper
)

// String returns the string representation of the VKind.
func (k VKind) String() string {
	switch k {
	case KindText:
		return "Text"
	case KindElement:
		return "Element"
	case KindComponent:
		return "Component"
	case KindFragment:
		return "Fragment"
	default:
		return "Unknown"
	}
}

// RenderFunc renders a component. It returns a node description, a list of
// descriptions, a string or number, or nil/bool for nothing.
type RenderFunc func(c *Component) any

// Props holds attributes, properties and event handlers.
type Props map[string]any

// VNode is a node description. The exported fields describe the node; the
// unexported fields are annotated by the renderer once the node is mounted.
type VNode struct {
	Kind     VKind
	Tag      string     // element tag
	Text     string     // text content
	Render   RenderFunc // component render function
	Props    Props
	Children []*VNode // nil entries are holes
	Key      string
	Ref      Ref

	// Constructor is empty for every node built by this package. A decoded
	// description that names a constructor is rejected by the renderer.
	Constructor string

	renderID uintptr
	original uint64

	parent    *VNode
	dom       *dom.Node
	kids      []*VNode
	depth     int
	component *Component
}

// vnodeID is the process-wide identity counter.
var vnodeID atomic.Uint64

func newVNode(kind VKind) *VNode {
	return &VNode{Kind: kind, original: vnodeID.Add(1)}
}

// Clone returns a copy of the description that shares v's identity token.
// Rendering a clone where v was rendered before is a no-op.
func (v *VNode) Clone() *VNode {
	return &VNode{
		Kind:        v.Kind,
		Tag:         v.Tag,
		Text:        v.Text,
		Render:      v.Render,
		Props:       v.Props,
		Children:    v.Children,
		Key:         v.Key,
		Ref:         v.Ref,
		Constructor: v.Constructor,
		renderID:    v.renderID,
		original:    v.original,
	}
}

// Original returns the identity token. It is zero after a failed render.
func (v *VNode) Original() uint64 { return v.original }

// DOM returns the realized DOM node. For components and fragments it is the
// first DOM node among the rendered children.
func (v *VNode) DOM() *dom.Node { return v.dom }

// Parent returns the parent in the rendered tree.
func (v *VNode) Parent() *VNode { return v.parent }

// Rendered returns the rendered child list. Holes are nil.
func (v *VNode) Rendered() []*VNode { return v.kids }

// Depth returns the depth in the rendered tree, or 0 if v was never mounted.
func (v *VNode) Depth() int { return v.depth }

// Component returns the instance of a mounted component node.
func (v *VNode) Component() *Component { return v.component }

// Count returns the number of mounted nodes in the rendered subtree rooted at v.
func (v *VNode) Count() int {
	n := 1
	for _, k := range v.kids {
		if k != nil {
			n += k.Count()
		}
	}
	return n
}

func funcID(fn RenderFunc) uintptr {
	if fn == nil {
		return 0
	}
	return reflect.ValueOf(fn).Pointer()
}

// sameType reports whether old can be reused for v: same kind, and the same
// tag or render function.
func sameType(v, old *VNode) bool {
	if v.Kind != old.Kind {
		return false
	}
	switch v.Kind {
	case KindElement:
		return v.Tag == old.Tag
	case KindComponent:
		return v.renderID == old.renderID
	default:
		return true
	}
}

// Ref receives the DOM node of the element it is attached to, and nil when
// the element unmounts.
type Ref interface {
	set(n *dom.Node)
	current() *dom.Node
}

// RefObject is a ref cell.
type RefObject struct {
	Current *dom.Node
}

func (r *RefObject) set(n *dom.Node)    { r.Current = n }
func (r *RefObject) current() *dom.Node { return r.Current }

// CreateRef returns an empty ref cell.
func CreateRef() *RefObject { return &RefObject{} }

type refFunc struct {
	fn func(*dom.Node)
}

func (r *refFunc) set(n *dom.Node)    { r.fn(n) }
func (r *refFunc) current() *dom.Node { return nil }

// RefCallback returns a ref that calls fn. Each call returns a distinct ref,
// so a callback created during render is re-applied on every render; keep
// the returned value to apply it once.
func RefCallback(fn func(*dom.Node)) Ref { return &refFunc{fn: fn} }
