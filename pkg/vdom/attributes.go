package vdom

import (
	"strings"

	"github.com/quarkc-go/quark/pkg/dom"
)

// Prop sets an arbitrary prop.
func Prop(key string, value any) Attr { return Attr{Key: key, Value: value} }

// Key sets the reconciliation key.
func Key(key any) Attr { return Attr{Key: "key", Value: key} }

// RefAttr attaches a ref.
func RefAttr(r Ref) Attr { return Attr{Key: "ref", Value: r} }

// HTML replaces the element's children with raw markup. The markup is not
// sanitized.
func HTML(markup string) Attr { return Attr{Key: propInnerHTML, Value: markup} }

// ID sets the id property.
func ID(id string) Attr { return Prop("id", id) }

// Class sets the class list through the className property.
func Class(classes ...string) Attr { return Prop("className", strings.Join(classes, " ")) }

// ClassIf adds a class conditionally.
func ClassIf(condition bool, class string) Attr {
	if condition {
		return Class(class)
	}
	return Attr{}
}

// Classes merges class values. Accepts string, []string and map[string]bool.
func Classes(classes ...any) Attr {
	var result []string
	for _, c := range classes {
		switch v := c.(type) {
		case string:
			if v != "" {
				result = append(result, v)
			}
		case []string:
			for _, s := range v {
				if s != "" {
					result = append(result, s)
				}
			}
		case map[string]bool:
			for class, include := range v {
				if include && class != "" {
					result = append(result, class)
				}
			}
		}
	}
	return Class(result...)
}

// Style sets inline styles. It accepts a CSS string or a map of declarations;
// maps are diffed per declaration on update.
func Style(style any) Attr { return Prop("style", style) }

// Data sets a data-* attribute.
func Data(key, value string) Attr { return Prop("data-"+key, value) }

// Aria sets an aria-* attribute. false is written as "false".
func Aria(key string, value any) Attr { return Prop("aria-"+key, value) }

// Role sets the role attribute.
func Role(role string) Attr { return Prop("role", role) }

// TitleAttr sets the title property.
func TitleAttr(title string) Attr { return Prop("title", title) }

// Href sets the href attribute.
func Href(url string) Attr { return Prop("href", url) }

// Src sets the src attribute.
func Src(url string) Attr { return Prop("src", url) }

// Name sets the name property.
func Name(name string) Attr { return Prop("name", name) }

// Type sets the type attribute.
func Type(t string) Attr { return Prop("type", t) }

// Value sets the live value property.
func Value(value any) Attr { return Prop("value", value) }

// Checked sets the live checked property.
func Checked(checked bool) Attr { return Prop("checked", checked) }

// Placeholder sets the placeholder attribute.
func Placeholder(text string) Attr { return Prop("placeholder", text) }

// Disabled sets the disabled property.
func Disabled(disabled bool) Attr { return Prop("disabled", disabled) }

// Hidden sets the hidden property.
func Hidden(hidden bool) Attr { return Prop("hidden", hidden) }

// For sets the htmlFor property.
func For(id string) Attr { return Prop("htmlFor", id) }

// TabIndex sets the tabindex attribute.
func TabIndex(index int) Attr { return Prop("tabIndex", index) }

// AttrIf adds any attribute conditionally.
func AttrIf(condition bool, a Attr) Attr {
	if condition {
		return a
	}
	return Attr{}
}

// Ref helpers for element factories.

// RefTo returns an Attr that stores the element in *target.
func RefTo(target **dom.Node) Attr {
	return RefAttr(RefCallback(func(n *dom.Node) { *target = n }))
}
