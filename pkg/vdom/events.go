package vdom

// On binds handler to the named event, including custom events a host
// element emits. The handler is a func(*dom.Event) or func().
func On(name string, handler any) EventHandler {
	return EventHandler{Event: "on" + name, Handler: handler}
}

// OnCapture binds handler to the capture phase of the named event.
func OnCapture(name string, handler any) EventHandler {
	return EventHandler{Event: "on" + name + "Capture", Handler: handler}
}

func OnClick(handler any) EventHandler  { return On("click", handler) }
func OnInput(handler any) EventHandler  { return On("input", handler) }
func OnChange(handler any) EventHandler { return On("change", handler) }
