package camera

// CameraControllerOption is a functional option for configuring a CameraController.
type CameraControllerOption func(*cameraControllerImpl)

// WithScrollSpeed sets the zoom speed multiplier.
//
// Parameters:
//   - speed: distance factor per scroll line per second
//
// Returns:
//   - CameraControllerOption: functional option to set the scroll speed
func WithScrollSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.scrollSpeed = speed
	}
}

// WithDragSpeed sets how far the camera orbits per dragged pixel.
//
// Parameters:
//   - speed: orbit factor per pixel
//
// Returns:
//   - CameraControllerOption: functional option to set the drag speed
func WithDragSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.dragSpeed = speed
	}
}

// WithAutoRotate starts the controller with auto-rotation enabled or disabled.
//
// Parameters:
//   - enabled: true to orbit on every tick
//
// Returns:
//   - CameraControllerOption: functional option to set auto-rotation
func WithAutoRotate(enabled bool) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.autoRotate = enabled
	}
}
