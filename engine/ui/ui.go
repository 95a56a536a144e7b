// Package ui defines the immediate-mode UI session the engine drives every frame and the GPU
// recorder that composites its output over the rendered scene.
package ui

import (
	"image"
	"time"
)

// EventKind identifies the kind of an input Event.
type EventKind int

const (
	EventCursorMoved EventKind = iota
	EventMouseButton
	EventScroll
	EventKey
	EventResize
)

// Event is one window input event. Only the fields relevant to its Kind are set.
type Event struct {
	Kind EventKind

	// X and Y are the cursor position in pixels for EventCursorMoved and EventMouseButton.
	X, Y float64

	// Button and Pressed describe EventMouseButton; Key and Pressed describe EventKey.
	Button  int
	Key     int
	Pressed bool

	// ScrollX and ScrollY are the scroll offsets of EventScroll.
	ScrollX, ScrollY float64

	// Width and Height are the new framebuffer size of EventResize.
	Width, Height uint32
}

// PaintList is the output of one UI frame: a screen-sized premultiplied RGBA overlay.
type PaintList struct {
	ScreenSize image.Point
	// Overlay is nil when there is nothing to draw.
	Overlay *image.RGBA
	// Changed reports whether Overlay differs from the previous frame's.
	Changed bool
}

// Empty reports whether the paint list draws nothing.
func (p PaintList) Empty() bool {
	return p.Overlay == nil
}

// Session is an immediate-mode UI. Each frame the engine calls BeginFrame, forwards every input
// event through DispatchInput, and collects the result with EndFrame.
type Session interface {
	// BeginFrame starts a new UI frame.
	//
	// Parameters:
	//   - elapsed: time since the previous frame
	BeginFrame(elapsed time.Duration)

	// DispatchInput offers an event to the UI before anything else sees it.
	//
	// Parameters:
	//   - ev: the input event
	//
	// Returns:
	//   - bool: true if the UI consumed the event
	DispatchInput(ev Event) bool

	// EndFrame lays out and paints the frame.
	//
	// Returns:
	//   - PaintList: the overlay to composite
	EndFrame() PaintList
}

// NopSession is the Session used when the overlay is disabled. It never consumes input and never paints.
type NopSession struct{}

var _ Session = NopSession{}

func (NopSession) BeginFrame(time.Duration) {}
func (NopSession) DispatchInput(Event) bool { return false }
func (NopSession) EndFrame() PaintList      { return PaintList{} }
