package vdom

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/quarkc-go/quark/pkg/dom"
)

// propInnerHTML is the prop set by HTML. It replaces the element's children.
const propInnerHTML = "dangerouslySetInnerHTML"

// diffProps applies the difference between oldProps and newProps to d.
// value and checked are applied after the children are diffed.
func (r *Renderer) diffProps(d *dom.Node, newProps, oldProps Props, svg bool) {
	for _, name := range slices.Sorted(maps.Keys(oldProps)) {
		if name == "children" || name == "key" || name == propInnerHTML {
			continue
		}
		if _, ok := newProps[name]; !ok {
			r.setProperty(d, name, nil, oldProps[name], svg)
		}
	}
	for _, name := range slices.Sorted(maps.Keys(newProps)) {
		switch name {
		case "children", "key", "value", "checked", propInnerHTML:
			continue
		}
		if !propsEqual(newProps[name], oldProps[name]) {
			r.setProperty(d, name, newProps[name], oldProps[name], svg)
		}
	}
}

// setProperty writes a single prop to d.
func (r *Renderer) setProperty(d *dom.Node, name string, value, old any, svg bool) {
	switch {
	case name == "style":
		setStyle(d, value, old)
		return
	case len(name) > 2 && name[0] == 'o' && name[1] == 'n':
		r.setListener(d, name, value)
		return
	}

	if svg {
		// SVG has no className/htmlFor IDL reflection.
		switch name {
		case "className":
			name = "class"
		case "xlinkHref":
			name = "href"
		}
	} else if !attributeOnly[name] && d.HasProperty(name) {
		d.SetProperty(name, value)
		return
	}

	if value != nil && reflect.TypeOf(value).Kind() == reflect.Func {
		return
	}
	if !svg {
		name = strings.ToLower(name)
	}
	if b, ok := value.(bool); value == nil || (ok && !b && !dashed(name)) {
		d.RemoveAttribute(name)
		return
	}
	d.SetAttribute(name, propToString(value))
}

// attributeOnly lists names that have an IDL property which must not be
// assigned directly: the property is read-only or normalizes its value.
var attributeOnly = map[string]bool{
	"href":     true,
	"list":     true,
	"form":     true,
	"tabIndex": true,
	"download": true,
}

// dashed reports aria-* and data-* style names, whose false value is written
// as the string "false" rather than removing the attribute.
func dashed(name string) bool {
	return len(name) > 4 && name[4] == '-'
}

func setStyle(d *dom.Node, value, old any) {
	if s, ok := value.(string); ok {
		d.SetAttribute("style", s)
		return
	}
	decls := styleMap(value)
	prev := styleMap(old)
	if _, ok := old.(string); ok {
		d.RemoveAttribute("style")
		prev = nil
	}
	for _, name := range slices.Sorted(maps.Keys(prev)) {
		if _, ok := decls[name]; !ok {
			d.RemoveStyle(name)
		}
	}
	for _, name := range slices.Sorted(maps.Keys(decls)) {
		if v := decls[name]; v != prev[name] {
			if v == "" {
				d.RemoveStyle(name)
			} else {
				d.SetStyle(name, v)
			}
		}
	}
}

func styleMap(v any) map[string]string {
	switch m := v.(type) {
	case map[string]string:
		return m
	case map[string]any:
		out := make(map[string]string, len(m))
		for k, x := range m {
			if x != nil {
				out[k] = propToString(x)
			}
		}
		return out
	default:
		return nil
	}
}

// proxy is the listener registered with the DOM for one event prop. Swapping
// the handler on re-render replaces proxy.handler without touching the DOM.
type proxy struct {
	r       *Renderer
	event   string
	handler any
	remove  func()
}

func (p *proxy) dispatch(e *dom.Event) {
	defer func() {
		if rec := recover(); rec != nil {
			p.r.recovered("Q007", rec, "event", p.event)
		}
	}()
	switch h := p.handler.(type) {
	case func():
		h()
	case func(*dom.Event):
		h(e)
	case dom.EventListener:
		h(e)
	}
}

func isHandler(v any) bool {
	switch v.(type) {
	case func(), func(*dom.Event), dom.EventListener:
		return true
	}
	return false
}

func (r *Renderer) setListener(d *dom.Node, name string, value any) {
	capture := strings.HasSuffix(name, "Capture")
	if capture {
		name = strings.TrimSuffix(name, "Capture")
	}
	event := name[2:]
	if !strings.ContainsAny(event, "-:") {
		event = strings.ToLower(event)
	}
	key := event
	if capture {
		key += ":capture"
	}

	ls := r.listeners[d]
	p := ls[key]
	if !isHandler(value) {
		if p != nil {
			p.remove()
			delete(ls, key)
		}
		return
	}
	if p != nil {
		p.handler = value
		return
	}
	if ls == nil {
		ls = make(map[string]*proxy)
		r.listeners[d] = ls
	}
	p = &proxy{r: r, event: event, handler: value}
	p.remove = d.AddEventListener(event, p.dispatch, capture)
	ls[key] = p
}

// propsEqual compares two prop values.
func propsEqual(a, b any) bool {
	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return av == bv
		}
		return false
	case int:
		if bv, ok := b.(int); ok {
			return av == bv
		}
		return false
	case int64:
		if bv, ok := b.(int64); ok {
			return av == bv
		}
		return false
	case float64:
		if bv, ok := b.(float64); ok {
			return av == bv
		}
		return false
	case bool:
		if bv, ok := b.(bool); ok {
			return av == bv
		}
		return false
	case nil:
		return b == nil
	}
	return reflect.DeepEqual(a, b)
}

// propToString converts a prop value to its attribute form.
func propToString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// liveEqual compares a prop value with a live DOM property, which may hold
// the string form of the value.
func liveEqual(v, live any) bool {
	if propsEqual(v, live) {
		return true
	}
	return propToString(v) == propToString(live)
}

func isZero(v any) bool {
	switch x := v.(type) {
	case int:
		return x == 0
	case int64:
		return x == 0
	case float64:
		return x == 0
	case string:
		return x == "" || x == "0"
	}
	return false
}
