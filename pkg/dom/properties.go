package dom

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// reflected maps IDL property names to the content attribute they mirror.
var reflected = map[string]string{
	"className":   "class",
	"htmlFor":     "for",
	"id":          "id",
	"title":       "title",
	"lang":        "lang",
	"dir":         "dir",
	"name":        "name",
	"type":        "type",
	"href":        "href",
	"src":         "src",
	"alt":         "alt",
	"placeholder": "placeholder",
	"tabIndex":    "tabindex",
	"role":        "role",
	"min":         "min",
	"max":         "max",
	"step":        "step",
	"rows":        "rows",
	"cols":        "cols",
	"target":      "target",
	"rel":         "rel",
	"action":      "action",
	"method":      "method",
}

// booleanReflected properties are present-or-absent attributes.
var booleanReflected = map[string]string{
	"hidden":    "hidden",
	"disabled":  "disabled",
	"readOnly":  "readonly",
	"required":  "required",
	"multiple":  "multiple",
	"autofocus": "autofocus",
	"open":      "open",
}

// liveOnly properties hold state that diverges from their attribute.
var liveOnly = map[string]bool{
	"value":       true,
	"checked":     true,
	"selected":    true,
	"innerHTML":   true,
	"textContent": true,
}

// HasProperty reports whether name is a known IDL property of the node.
// SVG elements expose no reflected properties.
func (n *Node) HasProperty(name string) bool {
	if n.Type != ElementNode {
		return false
	}
	if pb, ok := n.behavior.(PropertyBehavior); ok && pb.HasProperty(name) {
		return true
	}
	if n.Namespace != "" {
		return false
	}
	if _, ok := reflected[name]; ok {
		return true
	}
	if _, ok := booleanReflected[name]; ok {
		return true
	}
	return liveOnly[name]
}

// Property returns the current value of an IDL property.
func (n *Node) Property(name string) any {
	if pb, ok := n.behavior.(PropertyBehavior); ok && pb.HasProperty(name) {
		return pb.Property(name)
	}
	if attr, ok := reflected[name]; ok {
		v, _ := n.GetAttribute(attr)
		return v
	}
	if attr, ok := booleanReflected[name]; ok {
		return n.HasAttribute(attr)
	}
	switch name {
	case "innerHTML":
		return n.InnerHTML()
	case "textContent":
		return n.TextContent()
	case "value":
		if v, ok := n.props[name]; ok {
			return v
		}
		if v, ok := n.GetAttribute("value"); ok {
			return v
		}
		if n.Tag == "option" || n.Tag == "textarea" {
			return n.TextContent()
		}
		return ""
	case "checked":
		if v, ok := n.props[name]; ok {
			return v
		}
		return n.HasAttribute("checked")
	case "selected":
		if v, ok := n.props[name]; ok {
			return v
		}
		return n.HasAttribute("selected")
	}
	return n.props[name]
}

// SetProperty assigns an IDL property. Reflected properties write their
// attribute; live-only properties change state without touching attributes.
func (n *Node) SetProperty(name string, value any) {
	if pb, ok := n.behavior.(PropertyBehavior); ok && pb.HasProperty(name) {
		n.doc.record(Mutation{Op: OpSetProperty, Target: n, Name: name, Value: stringify(value)})
		pb.SetProperty(name, value)
		return
	}
	if attr, ok := reflected[name]; ok {
		if value == nil {
			n.RemoveAttribute(attr)
			return
		}
		n.SetAttribute(attr, stringify(value))
		return
	}
	if attr, ok := booleanReflected[name]; ok {
		if truthy(value) {
			n.SetAttribute(attr, "")
		} else {
			n.RemoveAttribute(attr)
		}
		return
	}
	switch name {
	case "innerHTML":
		n.SetInnerHTML(stringify(value))
		return
	case "textContent":
		n.setTextContent(stringify(value))
		return
	case "value":
		value = stringify(value)
	case "checked", "selected":
		value = truthy(value)
	}
	if n.props == nil {
		n.props = make(map[string]any)
	}
	n.props[name] = value
	n.doc.record(Mutation{Op: OpSetProperty, Target: n, Name: name, Value: stringify(value)})
}

func (n *Node) setTextContent(s string) {
	for c := n.firstChild; c != nil; c = n.firstChild {
		_ = n.RemoveChild(c)
	}
	if s != "" {
		_ = n.AppendChild(n.doc.CreateTextNode(s))
	}
}

// Style returns the value of an inline style declaration.
func (n *Node) Style(name string) string {
	for _, d := range n.style {
		if d.Name == name {
			return d.Value
		}
	}
	return ""
}

// SetStyle sets one inline style declaration. An empty value removes it.
func (n *Node) SetStyle(name, value string) {
	if value == "" {
		n.RemoveStyle(name)
		return
	}
	n.doc.record(Mutation{Op: OpSetStyle, Target: n, Name: name, Value: value})
	i := slices.IndexFunc(n.style, func(d Attr) bool { return d.Name == name })
	if i >= 0 {
		n.style[i].Value = value
	} else {
		n.style = append(n.style, Attr{Name: name, Value: value})
	}
	n.reflectStyle()
}

// RemoveStyle removes one inline style declaration.
func (n *Node) RemoveStyle(name string) {
	n.doc.record(Mutation{Op: OpSetStyle, Target: n, Name: name})
	n.style = slices.DeleteFunc(n.style, func(d Attr) bool { return d.Name == name })
	n.reflectStyle()
}

func (n *Node) reflectStyle() {
	// Writes go through the attribute list directly; writeAttribute would
	// re-parse the declarations we just produced.
	text := serializeStyle(n.style)
	i := slices.IndexFunc(n.attrs, func(a Attr) bool { return a.Name == "style" })
	switch {
	case text == "" && i >= 0:
		n.attrs = slices.Delete(n.attrs, i, i+1)
	case text == "":
	case i >= 0:
		n.attrs[i].Value = text
	default:
		n.attrs = append(n.attrs, Attr{Name: "style", Value: text})
	}
}

func parseStyle(s string) []Attr {
	var out []Attr
	for _, decl := range strings.Split(s, ";") {
		name, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		name, value = strings.TrimSpace(name), strings.TrimSpace(value)
		if name == "" {
			continue
		}
		out = append(out, Attr{Name: name, Value: value})
	}
	return out
}

func serializeStyle(decls []Attr) string {
	var b strings.Builder
	for i, d := range decls {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(d.Name)
		b.WriteString(": ")
		b.WriteString(d.Value)
		b.WriteByte(';')
	}
	return b.String()
}

func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case int:
		return x != 0
	case float64:
		return x != 0
	default:
		return true
	}
}

func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
