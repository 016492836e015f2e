package dom

import (
	"errors"
	"slices"
)

// NodeType is the node kind discriminator.
type NodeType uint8

const (
	ElementNode  NodeType = iota + 1 // <div>, <svg>, custom elements
	TextNode                         // character data
	FragmentNode                     // detached child list, shadow roots
	DocumentNode                     // the document itself
)

// String returns the string representation of the NodeType.
func (t NodeType) String() string {
	switch t {
	case ElementNode:
		return "Element"
	case TextNode:
		return "Text"
	case FragmentNode:
		return "Fragment"
	case DocumentNode:
		return "Document"
	default:
		return "Unknown"
	}
}

// ErrNotChild is returned when a reference node is not a child of the parent.
var ErrNotChild = errors.New("dom: node is not a child of this node")

// ErrHierarchy is returned when an insertion would create a cycle.
var ErrHierarchy = errors.New("dom: insertion would create a cycle")

// Attr is a single attribute in document order.
type Attr struct {
	Name  string
	Value string
}

// Node is a node of the host document.
type Node struct {
	Type      NodeType
	Tag       string
	Namespace string

	id   uint64
	doc  *Document
	data string

	parent      *Node
	firstChild  *Node
	lastChild   *Node
	prevSibling *Node
	nextSibling *Node

	attrs     []Attr
	props     map[string]any
	style     []Attr
	listeners []*listener

	behavior   Behavior
	renderRoot any

	shadow *Node
	host   *Node
}

// ID returns the document-unique node id.
func (n *Node) ID() uint64 { return n.id }

// OwnerDocument returns the document that created the node.
func (n *Node) OwnerDocument() *Document { return n.doc }

// Behavior returns the custom element behavior, or nil.
func (n *Node) Behavior() Behavior { return n.behavior }

// Parent returns the parent node, or nil.
func (n *Node) Parent() *Node { return n.parent }

// FirstChild returns the first child, or nil.
func (n *Node) FirstChild() *Node { return n.firstChild }

// LastChild returns the last child, or nil.
func (n *Node) LastChild() *Node { return n.lastChild }

// NextSibling returns the next sibling, or nil.
func (n *Node) NextSibling() *Node { return n.nextSibling }

// PrevSibling returns the previous sibling, or nil.
func (n *Node) PrevSibling() *Node { return n.prevSibling }

// ChildNodes returns a snapshot of the children.
func (n *Node) ChildNodes() []*Node {
	var out []*Node
	for c := n.firstChild; c != nil; c = c.nextSibling {
		out = append(out, c)
	}
	return out
}

// RenderRoot returns the tree last rendered into this container.
func (n *Node) RenderRoot() any { return n.renderRoot }

// SetRenderRoot stores the tree rendered into this container.
func (n *Node) SetRenderRoot(v any) { n.renderRoot = v }

// Contains reports whether other is n or a descendant of n.
func (n *Node) Contains(other *Node) bool {
	for p := other; p != nil; p = p.parent {
		if p == n {
			return true
		}
	}
	return false
}

// IsConnected reports whether the node is attached to its document. Nodes
// inside a shadow root are connected when the shadow host is.
func (n *Node) IsConnected() bool {
	for p := n; p != nil; {
		if p.Type == DocumentNode {
			return true
		}
		if p.parent == nil && p.host != nil {
			p = p.host
			continue
		}
		p = p.parent
	}
	return false
}

// AttachShadow returns the shadow root of n, creating it on first call.
func (n *Node) AttachShadow() *Node {
	if n.shadow == nil {
		n.shadow = n.doc.CreateDocumentFragment()
		n.shadow.host = n
	}
	return n.shadow
}

// ShadowRoot returns the shadow root attached to n, or nil.
func (n *Node) ShadowRoot() *Node { return n.shadow }

// Host returns the element a shadow root is attached to, or nil.
func (n *Node) Host() *Node { return n.host }

// AppendChild appends child, moving it if it is already attached.
func (n *Node) AppendChild(child *Node) error {
	return n.InsertBefore(child, nil)
}

// InsertBefore inserts child before ref. A nil ref appends. Inserting a
// fragment moves its children instead.
func (n *Node) InsertBefore(child, ref *Node) error {
	if ref != nil && ref.parent != n {
		return ErrNotChild
	}
	if child.Contains(n) {
		return ErrHierarchy
	}
	if child == ref {
		return nil
	}
	if child.Type == FragmentNode {
		for _, c := range child.ChildNodes() {
			if err := n.InsertBefore(c, ref); err != nil {
				return err
			}
		}
		return nil
	}
	if child.parent != nil {
		child.parent.detach(child)
	}
	link(n, child, ref)
	n.doc.record(Mutation{Op: OpInsert, Target: child, Name: n.Tag})
	if n.IsConnected() {
		connectTree(child)
	}
	return nil
}

// RemoveChild removes child from n.
func (n *Node) RemoveChild(child *Node) error {
	if child.parent != n {
		return ErrNotChild
	}
	n.detach(child)
	n.doc.record(Mutation{Op: OpRemove, Target: child, Name: n.Tag})
	return nil
}

// Remove detaches the node from its parent, if any.
func (n *Node) Remove() {
	if n.parent != nil {
		_ = n.parent.RemoveChild(n)
	}
}

func (n *Node) detach(child *Node) {
	wasConnected := n.IsConnected()
	unlink(child)
	if wasConnected {
		disconnectTree(child)
	}
}

func link(parent, child, ref *Node) {
	child.parent = parent
	if ref == nil {
		child.prevSibling = parent.lastChild
		if parent.lastChild != nil {
			parent.lastChild.nextSibling = child
		} else {
			parent.firstChild = child
		}
		parent.lastChild = child
		return
	}
	child.nextSibling = ref
	child.prevSibling = ref.prevSibling
	if ref.prevSibling != nil {
		ref.prevSibling.nextSibling = child
	} else {
		parent.firstChild = child
	}
	ref.prevSibling = child
}

func unlink(child *Node) {
	p := child.parent
	if child.prevSibling != nil {
		child.prevSibling.nextSibling = child.nextSibling
	} else {
		p.firstChild = child.nextSibling
	}
	if child.nextSibling != nil {
		child.nextSibling.prevSibling = child.prevSibling
	} else {
		p.lastChild = child.prevSibling
	}
	child.parent, child.prevSibling, child.nextSibling = nil, nil, nil
}

// connectTree runs the connected reactions of n and its shadow-including
// descendants. Targets are collected first: a reaction may render new
// nodes, which get their own reactions when inserted.
func connectTree(n *Node) {
	for _, c := range upgraded(n) {
		if c.IsConnected() {
			c.behavior.Connected()
		}
	}
}

func disconnectTree(n *Node) {
	for _, c := range upgraded(n) {
		if !c.IsConnected() {
			c.behavior.Disconnected()
		}
	}
}

func upgraded(n *Node) []*Node {
	var out []*Node
	walkComposed(n, func(c *Node) {
		if c.behavior != nil {
			out = append(out, c)
		}
	})
	return out
}

// walk visits n and its descendants in tree order. Shadow content rendered
// into a behavior's own fragment is not part of the light tree.
func walk(n *Node, fn func(*Node)) {
	fn(n)
	for c := n.firstChild; c != nil; {
		next := c.nextSibling
		walk(c, fn)
		c = next
	}
}

// walkComposed is walk including shadow trees, each visited right after
// its host.
func walkComposed(n *Node, fn func(*Node)) {
	fn(n)
	if n.shadow != nil {
		for c := n.shadow.firstChild; c != nil; {
			next := c.nextSibling
			walkComposed(c, fn)
			c = next
		}
	}
	for c := n.firstChild; c != nil; {
		next := c.nextSibling
		walkComposed(c, fn)
		c = next
	}
}

// Data returns the character data of a text node.
func (n *Node) Data() string { return n.data }

// SetData replaces the character data of a text node.
func (n *Node) SetData(s string) {
	n.data = s
	n.doc.record(Mutation{Op: OpSetData, Target: n, Value: s})
}

// Attributes returns a copy of the attributes in document order.
func (n *Node) Attributes() []Attr {
	return slices.Clone(n.attrs)
}

// GetAttribute returns the attribute value and whether it is present.
func (n *Node) GetAttribute(name string) (string, bool) {
	for _, a := range n.attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// HasAttribute reports whether the attribute is present.
func (n *Node) HasAttribute(name string) bool {
	_, ok := n.GetAttribute(name)
	return ok
}

// SetAttribute sets an attribute, preserving its position when it exists.
func (n *Node) SetAttribute(name, value string) {
	n.doc.record(Mutation{Op: OpSetAttribute, Target: n, Name: name, Value: value})
	n.writeAttribute(name, value)
}

// RemoveAttribute removes an attribute. Removing an absent attribute is
// still recorded.
func (n *Node) RemoveAttribute(name string) {
	n.doc.record(Mutation{Op: OpRemoveAttribute, Target: n, Name: name})
	n.deleteAttribute(name)
}

func (n *Node) writeAttribute(name, value string) {
	old, had := n.GetAttribute(name)
	found := false
	for i := range n.attrs {
		if n.attrs[i].Name == name {
			n.attrs[i].Value = value
			found = true
			break
		}
	}
	if !found {
		n.attrs = append(n.attrs, Attr{Name: name, Value: value})
	}
	if name == "style" {
		n.style = parseStyle(value)
	}
	var oldp *string
	if had {
		oldp = &old
	}
	n.attributeChanged(name, oldp, &value)
}

func (n *Node) deleteAttribute(name string) {
	old, had := n.GetAttribute(name)
	if !had {
		return
	}
	n.attrs = slices.DeleteFunc(n.attrs, func(a Attr) bool { return a.Name == name })
	if name == "style" {
		n.style = nil
	}
	n.attributeChanged(name, &old, nil)
}

func (n *Node) attributeChanged(name string, oldValue, newValue *string) {
	if n.behavior == nil {
		return
	}
	if slices.Contains(n.behavior.ObservedAttributes(), name) {
		n.behavior.AttributeChanged(name, oldValue, newValue)
	}
}

// TextContent returns the concatenated text of all descendant text nodes.
func (n *Node) TextContent() string {
	if n.Type == TextNode {
		return n.data
	}
	var b []byte
	walk(n, func(c *Node) {
		if c.Type == TextNode {
			b = append(b, c.data...)
		}
	})
	return string(b)
}
