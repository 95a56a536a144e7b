package camera

import "github.com/Carmen-Shannon/oxy-boids/engine/ui"

// CameraController turns scroll and middle-drag input into camera motion. Input is accumulated by
// HandleEvent and applied once per tick by Update, so the motion is frame-rate independent.
//
// The controller also satisfies ggui.CameraControls, letting the UI camera panel show and toggle
// its settings.
type CameraController interface {
	// HandleEvent records scroll and middle-button drag input. Events the UI already consumed
	// must not be passed in.
	//
	// Parameters:
	//   - ev: the input event
	//
	// Returns:
	//   - bool: true if the controller used the event
	HandleEvent(ev ui.Event) bool

	// Update applies the accumulated input to the camera and resets the scroll accumulator.
	// Scrolling moves the eye along the view direction and never past the target. Dragging and
	// auto-rotate orbit the eye around the target at a constant distance.
	//
	// Parameters:
	//   - cam: the camera to move
	//   - dt: seconds since the previous update
	Update(cam Camera, dt float32)

	// AutoRotate reports whether the camera orbits on its own every tick.
	AutoRotate() bool

	// SetAutoRotate enables or disables auto-rotation.
	//
	// Parameters:
	//   - enabled: true to orbit on every tick
	SetAutoRotate(enabled bool)

	// ScrollSpeed returns the zoom speed multiplier.
	ScrollSpeed() float32

	// DragSpeed returns the orbit speed per dragged pixel.
	DragSpeed() float32
}
