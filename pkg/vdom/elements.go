package vdom

// Element factories. Arguments follow createElement: Attr, []Attr, Props and
// EventHandler set props; every other argument is a child.

// Document structure elements

func Head(args ...any) *VNode  { return createElement("head", args) }
func Title(args ...any) *VNode { return createElement("title", args) }
func Meta(args ...any) *VNode  { return createElement("meta", args) }
func Link(args ...any) *VNode  { return createElement("link", args) }
func Script(args ...any) *VNode {
	return createElement("script", args)
}
func StyleEl(args ...any) *VNode { return createElement("style", args) }

// Sectioning elements

func Main(args ...any) *VNode    { return createElement("main", args) }
func Header(args ...any) *VNode  { return createElement("header", args) }
func Footer(args ...any) *VNode  { return createElement("footer", args) }
func Nav(args ...any) *VNode     { return createElement("nav", args) }
func Section(args ...any) *VNode { return createElement("section", args) }
func Article(args ...any) *VNode { return createElement("article", args) }
func Aside(args ...any) *VNode   { return createElement("aside", args) }
func H1(args ...any) *VNode      { return createElement("h1", args) }
func H2(args ...any) *VNode      { return createElement("h2", args) }
func H3(args ...any) *VNode      { return createElement("h3", args) }
func H4(args ...any) *VNode      { return createElement("h4", args) }

// Content grouping

func Div(args ...any) *VNode        { return createElement("div", args) }
func P(args ...any) *VNode          { return createElement("p", args) }
func Pre(args ...any) *VNode        { return createElement("pre", args) }
func Blockquote(args ...any) *VNode { return createElement("blockquote", args) }
func Ul(args ...any) *VNode         { return createElement("ul", args) }
func Ol(args ...any) *VNode         { return createElement("ol", args) }
func Li(args ...any) *VNode         { return createElement("li", args) }
func Hr(args ...any) *VNode         { return createElement("hr", args) }
func Figure(args ...any) *VNode     { return createElement("figure", args) }

// Inline text

func Span(args ...any) *VNode   { return createElement("span", args) }
func A(args ...any) *VNode      { return createElement("a", args) }
func Strong(args ...any) *VNode { return createElement("strong", args) }
func Em(args ...any) *VNode     { return createElement("em", args) }
func Code(args ...any) *VNode   { return createElement("code", args) }
func Small(args ...any) *VNode  { return createElement("small", args) }
func Br(args ...any) *VNode     { return createElement("br", args) }

// Forms

func Form(args ...any) *VNode     { return createElement("form", args) }
func Label(args ...any) *VNode    { return createElement("label", args) }
func Input(args ...any) *VNode    { return createElement("input", args) }
func Button(args ...any) *VNode   { return createElement("button", args) }
func Select(args ...any) *VNode   { return createElement("select", args) }
func Option(args ...any) *VNode   { return createElement("option", args) }
func Textarea(args ...any) *VNode { return createElement("textarea", args) }
func Progress(args ...any) *VNode { return createElement("progress", args) }

// Tables

func Table(args ...any) *VNode { return createElement("table", args) }
func Thead(args ...any) *VNode { return createElement("thead", args) }
func Tbody(args ...any) *VNode { return createElement("tbody", args) }
func Tr(args ...any) *VNode    { return createElement("tr", args) }
func Th(args ...any) *VNode    { return createElement("th", args) }
func Td(args ...any) *VNode    { return createElement("td", args) }

// Embedded content

func Img(args ...any) *VNode    { return createElement("img", args) }
func Slot(args ...any) *VNode   { return createElement("slot", args) }
func Canvas(args ...any) *VNode { return createElement("canvas", args) }

// SVG. Namespacing starts at <svg> and ends at <foreignObject>.

func Svg(args ...any) *VNode           { return createElement("svg", args) }
func G(args ...any) *VNode             { return createElement("g", args) }
func Path(args ...any) *VNode          { return createElement("path", args) }
func Circle(args ...any) *VNode        { return createElement("circle", args) }
func Rect(args ...any) *VNode          { return createElement("rect", args) }
func ForeignObject(args ...any) *VNode { return createElement("foreignObject", args) }

// El creates an element with any tag, including custom elements.
func El(tag string, args ...any) *VNode { return createElement(tag, args) }
