package vdom

import (
	"fmt"
	"strconv"
)

// Attr is a single prop passed to an element or component factory.
type Attr struct {
	Key   string
	Value any
}

// EventHandler binds a handler to an event prop ("onclick",
// "onclickCapture", ...). Handlers are func(), func(*dom.Event) or
// dom.EventListener.
type EventHandler struct {
	Event   string
	Handler any
}

// H creates a node description. typ is a tag name, a RenderFunc (or a plain
// func(*Component) any), or nil for a fragment. The "key" and "ref" props are
// lifted onto the node; children are normalized as described on Fragment.
func H(typ any, props Props, children ...any) *VNode {
	var v *VNode
	switch t := typ.(type) {
	case nil:
		v = newVNode(KindFragment)
	case string:
		v = newVNode(KindElement)
		v.Tag = t
	case RenderFunc:
		v = component(t)
	case func(*Component) any:
		v = component(t)
	default:
		panic(fmt.Sprintf("vdom: H: unsupported node type %T", typ))
	}

	if len(props) > 0 {
		v.Props = make(Props, len(props))
		for k, val := range props {
			v.setProp(k, val)
		}
	}
	for _, c := range children {
		v.appendArg(c)
	}
	return v
}

func component(fn RenderFunc) *VNode {
	v := newVNode(KindComponent)
	v.Render = fn
	v.renderID = funcID(fn)
	return v
}

// Text creates a text node.
func Text(content string) *VNode {
	v := newVNode(KindText)
	v.Text = content
	return v
}

// Textf creates a formatted text node.
func Textf(format string, args ...any) *VNode {
	return Text(fmt.Sprintf(format, args...))
}

// Fragment groups children without a wrapper element. Children may be
// *VNode (nil is a hole that keeps sibling positions stable), strings and
// numbers (text nodes), bools (holes), slices (nested fragments) and render
// functions (components without props).
func Fragment(children ...any) *VNode {
	return H(nil, nil, children...)
}

// Comp creates a component node. Args follow the element factory rules:
// Attr, []Attr, Props and EventHandler become props, everything else is a child.
func Comp(fn RenderFunc, args ...any) *VNode {
	v := component(fn)
	for _, a := range args {
		v.appendArg(a)
	}
	return v
}

// createElement builds an element from factory arguments.
func createElement(tag string, args []any) *VNode {
	v := newVNode(KindElement)
	v.Tag = tag
	for _, a := range args {
		v.appendArg(a)
	}
	return v
}

func (v *VNode) setProp(key string, value any) {
	switch key {
	case "key":
		if value != nil {
			v.Key = keyString(value)
		}
		return
	case "ref":
		if r, ok := value.(Ref); ok {
			v.Ref = r
		}
		return
	case "children":
		return
	}
	if v.Props == nil {
		v.Props = make(Props)
	}
	v.Props[key] = value
}

func (v *VNode) appendArg(arg any) {
	switch a := arg.(type) {
	case nil:
		// Untyped nil carries no position.
	case Attr:
		if a.Key != "" {
			v.setProp(a.Key, a.Value)
		}
	case []Attr:
		for _, x := range a {
			if x.Key != "" {
				v.setProp(x.Key, x.Value)
			}
		}
	case Props:
		for k, x := range a {
			v.setProp(k, x)
		}
	case EventHandler:
		v.setProp(a.Event, a.Handler)
	default:
		v.Children = append(v.Children, toChild(arg))
	}
}

// toChild normalizes a child value. It returns nil for holes.
func toChild(c any) *VNode {
	switch x := c.(type) {
	case nil, bool:
		return nil
	case *VNode:
		return x
	case string:
		return Text(x)
	case int:
		return Text(strconv.Itoa(x))
	case int64:
		return Text(strconv.FormatInt(x, 10))
	case float64:
		return Text(strconv.FormatFloat(x, 'f', -1, 64))
	case []*VNode:
		f := newVNode(KindFragment)
		f.Children = append([]*VNode(nil), x...)
		return f
	case []any:
		return Fragment(x...)
	case RenderFunc:
		return component(x)
	case func(*Component) any:
		return component(x)
	case fmt.Stringer:
		return Text(x.String())
	default:
		return Text(fmt.Sprint(x))
	}
}

// normalize turns a render result into a child list.
func normalize(out any) []*VNode {
	switch x := out.(type) {
	case []*VNode:
		return x
	case []any:
		kids := make([]*VNode, len(x))
		for i, c := range x {
			kids[i] = toChild(c)
		}
		return kids
	default:
		return []*VNode{toChild(out)}
	}
}

func keyString(k any) string {
	switch x := k.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	default:
		return fmt.Sprint(x)
	}
}
