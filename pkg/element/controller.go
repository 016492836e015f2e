package element

// Controller takes part in the lifecycle of the element it is added to.
type Controller interface {
	HostConnected()
	HostDisconnected()

	// HostMounted runs after the first render following a connect.
	HostMounted()

	// HostUpdated runs after every later render.
	HostUpdated()
}

// ControllerFuncs adapts optional funcs to a Controller. Use a pointer so
// the controller can be removed again.
type ControllerFuncs struct {
	Connected    func()
	Disconnected func()
	Mounted      func()
	Updated      func()
}

func (c *ControllerFuncs) HostConnected() {
	if c.Connected != nil {
		c.Connected()
	}
}

func (c *ControllerFuncs) HostDisconnected() {
	if c.Disconnected != nil {
		c.Disconnected()
	}
}

func (c *ControllerFuncs) HostMounted() {
	if c.Mounted != nil {
		c.Mounted()
	}
}

func (c *ControllerFuncs) HostUpdated() {
	if c.Updated != nil {
		c.Updated()
	}
}
