// Package element implements host elements: custom elements declared with
// a Builder and upgraded by the document when it creates a node of the
// declared tag.
//
// A definition declares attribute-backed properties, internal state,
// computed values, watches, a render function and lifecycle hooks:
//
//	def := element.Define("x-counter").
//		Property("count", element.PropertyOptions{Type: element.Number}).
//		Render(func(e *element.Element) any {
//			return vdom.Button(vdom.OnClick(func() {
//				e.Set("count", e.Float("count")+1)
//			}), e.String("count"))
//		}).
//		MustBuild()
//
//	reg := element.NewRegistry(renderer)
//	_ = reg.Define(def)
//
// Each instance gets its own accessor table built from the definition.
// Setting a property writes its attribute; the attribute change notifies
// every watcher that read the property, and the render watcher re-renders
// the element's shadow root once per scheduler flush.
//
// Lifecycle order: properties are initialized when the node is created;
// connecting the node renders it for the first time and runs DidMount;
// attribute changes notify readers and queue DidUpdate; disconnecting runs
// WillUnmount but keeps all state, so a reconnected element does not
// re-initialize. Teardown ends an element for good.
package element
