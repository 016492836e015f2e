package dom

import "strings"

// SVGNamespace is the namespace URI used for <svg> and its descendants.
const SVGNamespace = "http://www.w3.org/2000/svg"

// MutationOp identifies the kind of write recorded in a Mutation.
type MutationOp string

const (
	OpCreate          MutationOp = "create"
	OpInsert          MutationOp = "insert"
	OpRemove          MutationOp = "remove"
	OpSetAttribute    MutationOp = "setAttribute"
	OpRemoveAttribute MutationOp = "removeAttribute"
	OpSetData         MutationOp = "setData"
	OpSetProperty     MutationOp = "setProperty"
	OpSetStyle        MutationOp = "setStyle"
	OpListen          MutationOp = "listen"
	OpUnlisten        MutationOp = "unlisten"
	OpSetInnerHTML    MutationOp = "setInnerHTML"
)

// Mutation is a single recorded write against the document.
type Mutation struct {
	Op     MutationOp `json:"op"`
	Target *Node      `json:"-"`
	NodeID uint64     `json:"node"`
	Name   string     `json:"name,omitempty"`
	Value  string     `json:"value,omitempty"`
}

// Behavior receives custom-element reactions for an upgraded element.
type Behavior interface {
	// Connected is called after the element is inserted into a connected tree.
	Connected()

	// Disconnected is called after the element is removed from a connected tree.
	Disconnected()

	// AttributeChanged is called after an observed attribute is set or removed.
	// A nil value means the attribute is absent.
	AttributeChanged(name string, oldValue, newValue *string)

	// ObservedAttributes lists the attribute names that trigger AttributeChanged.
	ObservedAttributes() []string
}

// PropertyBehavior is implemented by behaviors that expose their own
// properties. SetProperty and Property on the node route through it.
type PropertyBehavior interface {
	HasProperty(name string) bool
	Property(name string) any
	SetProperty(name string, value any)
}

// Upgrader builds the behavior for a freshly created element of a defined tag.
type Upgrader func(n *Node) Behavior

// Document owns a node tree and the registry of custom element upgraders.
type Document struct {
	root *Node
	body *Node

	upgraders map[string]Upgrader

	observers  map[int]func(Mutation)
	observerID int
	mutations  int

	nextID uint64
}

// NewDocument creates an empty document with <html><body></body></html>.
func NewDocument() *Document {
	d := &Document{
		upgraders: make(map[string]Upgrader),
		observers: make(map[int]func(Mutation)),
	}
	d.root = d.newNode(DocumentNode, "#document")
	html := d.newNode(ElementNode, "html")
	d.body = d.newNode(ElementNode, "body")
	link(d.root, html, nil)
	link(html, d.body, nil)
	return d
}

// Root returns the document node.
func (d *Document) Root() *Node { return d.root }

// Body returns the connected <body> element.
func (d *Document) Body() *Node { return d.body }

// Define registers an upgrader for a custom element tag. Elements created
// afterwards with that tag are upgraded on creation.
func (d *Document) Define(tag string, up Upgrader) {
	d.upgraders[strings.ToLower(tag)] = up
}

// Defined reports whether tag has an upgrader.
func (d *Document) Defined(tag string) bool {
	_, ok := d.upgraders[strings.ToLower(tag)]
	return ok
}

// Observe subscribes fn to every mutation. The returned func cancels.
func (d *Document) Observe(fn func(Mutation)) (cancel func()) {
	d.observerID++
	id := d.observerID
	d.observers[id] = fn
	return func() { delete(d.observers, id) }
}

// MutationCount returns the number of writes recorded so far.
func (d *Document) MutationCount() int {
	return d.mutations
}

// CreateElement creates a detached HTML element, upgrading it when the tag
// has been defined.
func (d *Document) CreateElement(tag string) *Node {
	n := d.newNode(ElementNode, strings.ToLower(tag))
	d.record(Mutation{Op: OpCreate, Target: n, Name: n.Tag})
	if up, ok := d.upgraders[n.Tag]; ok {
		n.behavior = up(n)
	}
	return n
}

// CreateElementNS creates a detached element in the given namespace.
// Tag case is preserved outside the HTML namespace.
func (d *Document) CreateElementNS(ns, tag string) *Node {
	if ns == "" {
		return d.CreateElement(tag)
	}
	n := d.newNode(ElementNode, tag)
	n.Namespace = ns
	d.record(Mutation{Op: OpCreate, Target: n, Name: tag, Value: ns})
	return n
}

// CreateTextNode creates a detached text node.
func (d *Document) CreateTextNode(text string) *Node {
	n := d.newNode(TextNode, "#text")
	n.data = text
	d.record(Mutation{Op: OpCreate, Target: n, Name: "#text"})
	return n
}

// CreateDocumentFragment creates a detached fragment node. Fragments serve
// as shadow roots and as containers for detached renders.
func (d *Document) CreateDocumentFragment() *Node {
	return d.newNode(FragmentNode, "#document-fragment")
}

func (d *Document) newNode(t NodeType, tag string) *Node {
	d.nextID++
	return &Node{Type: t, Tag: tag, doc: d, id: d.nextID}
}

func (d *Document) record(m Mutation) {
	d.mutations++
	if m.Target != nil {
		m.NodeID = m.Target.id
	}
	for _, fn := range d.observers {
		fn(m)
	}
}
