package gpu

// Context is the device and queue shared by every subsystem constructor.
// It is created once by the surface session and passed by reference; nothing in the engine
// holds a package-level device.
type Context struct {
	Device Device
	Queue  Queue
}

// NewContext pairs a device with its queue.
//
// Parameters:
//   - device: the logical device
//   - queue: the device's queue
//
// Returns:
//   - *Context: the shared context
func NewContext(device Device, queue Queue) *Context {
	return &Context{Device: device, Queue: queue}
}

// Release frees the device. The queue is owned by the device.
func (c *Context) Release() {
	if c == nil || c.Device == nil {
		return
	}
	c.Device.Release()
}
