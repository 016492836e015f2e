package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// voidElements never have children or a closing tag.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// rawTextElements serialize their text children unescaped.
var rawTextElements = map[string]bool{
	"script": true, "style": true,
}

// SetInnerHTML replaces the children of n with the parsed markup. The
// replacement is recorded as a single mutation.
func (n *Node) SetInnerHTML(markup string) {
	connected := n.IsConnected()
	for c := n.firstChild; c != nil; c = n.firstChild {
		unlink(c)
		if connected {
			disconnectTree(c)
		}
	}
	n.doc.record(Mutation{Op: OpSetInnerHTML, Target: n, Value: markup})
	if markup == "" {
		return
	}

	tag := n.Tag
	if n.Type != ElementNode {
		tag = "div"
	}
	ctx := &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
	parsed, err := html.ParseFragment(strings.NewReader(markup), ctx)
	if err != nil {
		// The tokenizer only fails on reader errors; a strings.Reader has none.
		return
	}
	for _, p := range parsed {
		if c := n.doc.adopt(p, n.Namespace); c != nil {
			link(n, c, nil)
			if connected {
				connectTree(c)
			}
		}
	}
}

// adopt converts a parsed html node into a document node without recording.
func (d *Document) adopt(p *html.Node, ns string) *Node {
	var n *Node
	switch p.Type {
	case html.TextNode:
		n = d.newNode(TextNode, "#text")
		n.data = p.Data
		return n
	case html.ElementNode:
		tag := p.Data
		if p.Namespace == "svg" || ns == SVGNamespace {
			n = d.newNode(ElementNode, tag)
			n.Namespace = SVGNamespace
		} else {
			n = d.newNode(ElementNode, tag)
		}
		for _, a := range p.Attr {
			n.attrs = append(n.attrs, Attr{Name: a.Key, Value: a.Val})
			if a.Key == "style" {
				n.style = parseStyle(a.Val)
			}
		}
		if up, ok := d.upgraders[tag]; ok && n.Namespace == "" {
			n.behavior = up(n)
		}
		for c := p.FirstChild; c != nil; c = c.NextSibling {
			if cc := d.adopt(c, n.Namespace); cc != nil {
				link(n, cc, nil)
			}
		}
		return n
	default:
		// Comments and doctypes are dropped.
		return nil
	}
}

// InnerHTML serializes the children of n.
func (n *Node) InnerHTML() string {
	var b strings.Builder
	for c := n.firstChild; c != nil; c = c.nextSibling {
		c.serialize(&b, n)
	}
	return b.String()
}

// OuterHTML serializes n and its descendants. For fragments and the
// document it is the same as InnerHTML.
func (n *Node) OuterHTML() string {
	if n.Type != ElementNode && n.Type != TextNode {
		return n.InnerHTML()
	}
	var b strings.Builder
	n.serialize(&b, n.parent)
	return b.String()
}

func (n *Node) serialize(b *strings.Builder, parent *Node) {
	switch n.Type {
	case TextNode:
		if parent != nil && rawTextElements[parent.Tag] {
			b.WriteString(n.data)
			return
		}
		b.WriteString(escapeText(n.data))
	case ElementNode:
		b.WriteByte('<')
		b.WriteString(n.Tag)
		for _, a := range n.attrs {
			b.WriteByte(' ')
			b.WriteString(a.Name)
			b.WriteString(`="`)
			b.WriteString(escapeAttr(a.Value))
			b.WriteByte('"')
		}
		b.WriteByte('>')
		if voidElements[n.Tag] && n.Namespace == "" {
			return
		}
		if n.shadow != nil {
			b.WriteString(`<template shadowrootmode="open">`)
			for c := n.shadow.firstChild; c != nil; c = c.nextSibling {
				c.serialize(b, n.shadow)
			}
			b.WriteString("</template>")
		}
		for c := n.firstChild; c != nil; c = c.nextSibling {
			c.serialize(b, n)
		}
		b.WriteString("</")
		b.WriteString(n.Tag)
		b.WriteByte('>')
	default:
		for c := n.firstChild; c != nil; c = c.nextSibling {
			c.serialize(b, n)
		}
	}
}

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", "\u00a0", "&nbsp;")
	attrEscaper = strings.NewReplacer("&", "&amp;", `"`, "&quot;", "\u00a0", "&nbsp;")
)

func escapeText(s string) string { return textEscaper.Replace(s) }

func escapeAttr(s string) string { return attrEscaper.Replace(s) }
