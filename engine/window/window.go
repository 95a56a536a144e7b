package window

import (
	"fmt"
	"runtime"

	"github.com/Carmen-Shannon/oxy-boids/engine/gpu"
	"github.com/Carmen-Shannon/oxy-boids/engine/ui"
	"github.com/cogentcore/webgpu/wgpu"
)

// Window provides platform windowing and input event handling.
// Every input and resize callback of the platform window is delivered as a single ui.Event stream,
// so the engine can route it through the UI first and then to the camera.
type Window interface {
	gpu.SurfaceTarget

	// SetUpdateCallback sets the function called each message loop iteration.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetUpdateCallback(callback func())

	// SetEventCallback sets the function receiving every input and resize event.
	//
	// Parameters:
	//   - callback: function receiving the event (or nil to drop events)
	SetEventCallback(callback func(ev ui.Event))

	// IsRunning returns true if the window is still active.
	//
	// Returns:
	//   - bool: true if window is running, false if closed
	IsRunning() bool

	// RequestClose asks the message loop to stop after the current iteration.
	RequestClose()

	// Close closes the window and releases platform resources.
	//
	// Returns:
	//   - error: error if close operation fails
	Close() error

	// ProcessMessages runs the window message loop.
	// Blocks until the window is closed. Calls the update callback each iteration.
	ProcessMessages()

	// Width returns the current framebuffer width in pixels.
	//
	// Returns:
	//   - int: width in pixels
	Width() int

	// Height returns the current framebuffer height in pixels.
	//
	// Returns:
	//   - int: height in pixels
	Height() int
}

// engineWindow is the implementation of the Window interface.
// Holds window configuration, GLFW state, and event callbacks.
type engineWindow struct {
	// title is the window title displayed in the title bar.
	title string

	// maxWidth and maxHeight bound the window size during resize.
	maxWidth  int
	maxHeight int

	// minWidth and minHeight bound the window size during resize.
	minWidth  int
	minHeight int

	// width and height are the current framebuffer size in pixels.
	width  int
	height int

	// cursorX and cursorY are the last reported cursor position.
	cursorX float64
	cursorY float64

	// internalWindow holds the platform-specific window data (glfwWindow).
	internalWindow any

	// onUpdate is called each iteration of the message loop (if set).
	onUpdate func()

	// onEvent receives every input and resize event.
	onEvent func(ev ui.Event)
}

var _ Window = &engineWindow{}

// NewWindow creates a new Window with the specified options.
// Applies default values first, then each option in order.
// Panics if the platform window cannot be created.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the spawned window
func NewWindow(options ...WindowBuilderOption) Window {
	w := &engineWindow{
		title:     "oxy-boids",
		maxWidth:  3840,
		maxHeight: 2160,
		minWidth:  320,
		minHeight: 240,
		width:     1280,
		height:    720,
	}
	for _, opt := range options {
		opt(w)
	}
	if err := newPlatformWindow(w); err != nil {
		panic(fmt.Sprintf("failed to create platform window: %v", err))
	}
	return w
}

func (w *engineWindow) SetUpdateCallback(callback func()) {
	w.onUpdate = callback
}

func (w *engineWindow) SetEventCallback(callback func(ev ui.Event)) {
	w.onEvent = callback
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) RequestClose() {
	platformRequestClose(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		if succ := platformProcessMessages(w); !succ {
			break
		}

		if w.onUpdate != nil {
			w.onUpdate()
		}

		runtime.Gosched()
	}
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}

func (w *engineWindow) emit(ev ui.Event) {
	if w.onEvent != nil {
		w.onEvent(ev)
	}
}

func (w *engineWindow) cursorMoved(x, y float64) {
	w.cursorX, w.cursorY = x, y
	w.emit(ui.Event{Kind: ui.EventCursorMoved, X: x, Y: y})
}

// mouseButton reports a press or release at the last known cursor position.
func (w *engineWindow) mouseButton(button int, pressed bool) {
	w.emit(ui.Event{Kind: ui.EventMouseButton, Button: button, Pressed: pressed, X: w.cursorX, Y: w.cursorY})
}

func (w *engineWindow) scrolled(dx, dy float64) {
	w.emit(ui.Event{Kind: ui.EventScroll, ScrollX: dx, ScrollY: dy})
}

func (w *engineWindow) key(key int, pressed bool) {
	w.emit(ui.Event{Kind: ui.EventKey, Key: key, Pressed: pressed})
}

// resized records the new framebuffer size. Minimising reports zero, which is passed on as is.
func (w *engineWindow) resized(width, height int) {
	w.width, w.height = width, height
	w.emit(ui.Event{Kind: ui.EventResize, Width: uint32(max(width, 0)), Height: uint32(max(height, 0))})
}
