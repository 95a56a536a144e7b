package camera

import (
	"github.com/Carmen-Shannon/oxy-boids/common"
	"github.com/Carmen-Shannon/oxy-boids/engine/ui"
)

// autoRotateStep is the orbit delta added on every tick while auto-rotate is on.
const autoRotateStep = 0.2

type cameraControllerImpl struct {
	autoRotate  bool
	scrollSpeed float32
	dragSpeed   float32

	scrollDelta float32

	dragging bool
	cursorX  float64
	// dragX is the cursor travel since the last Update while the middle button is held.
	dragX float64
}

var _ CameraController = &cameraControllerImpl{}

// NewCameraController creates a controller with scroll speed 6, drag speed 0.025 and
// auto-rotate off.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewCameraController(options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		scrollSpeed: 6,
		dragSpeed:   0.025,
	}
	for _, option := range options {
		option(cc)
	}
	return cc
}

func (cc *cameraControllerImpl) HandleEvent(ev ui.Event) bool {
	switch ev.Kind {
	case ui.EventScroll:
		cc.scrollDelta += float32(ev.ScrollY)
		return true
	case ui.EventMouseButton:
		if ev.Button != common.MouseButtonMiddle {
			return false
		}
		cc.dragging = ev.Pressed
		cc.cursorX = ev.X
		if !ev.Pressed {
			cc.dragX = 0
		}
		return true
	case ui.EventCursorMoved:
		if !cc.dragging {
			cc.cursorX = ev.X
			return false
		}
		cc.dragX += ev.X - cc.cursorX
		cc.cursorX = ev.X
		return true
	}
	return false
}

func (cc *cameraControllerImpl) Update(cam Camera, dt float32) {
	defer func() { cc.scrollDelta = 0 }()

	eye, target := cam.Eye(), cam.Target()
	forward := target.Sub(eye)
	forwardNorm := forward.Normalize()
	forwardMag := forward.Len()

	speed := cc.scrollSpeed * dt
	switch {
	case cc.scrollDelta > 0 && forwardMag > speed:
		eye = eye.Add(forward.Mul(dt * cc.scrollDelta * cc.scrollSpeed))
	case cc.scrollDelta < 0:
		eye = eye.Add(forward.Mul(dt * cc.scrollDelta * cc.scrollSpeed))
	}

	var delta float32
	if cc.dragging {
		delta = float32(cc.dragX)
		cc.dragX = 0
	}
	if cc.autoRotate {
		delta += autoRotateStep
	}

	if delta != 0 {
		right := forwardNorm.Cross(cam.Up())
		forward = target.Sub(eye)
		mag := forward.Len()
		eye = target.Sub(forward.Add(right.Mul(cc.dragSpeed * delta)).Normalize().Mul(mag))
	}

	if eye != cam.Eye() {
		cam.SetEye(eye)
	}
}

func (cc *cameraControllerImpl) AutoRotate() bool {
	return cc.autoRotate
}

func (cc *cameraControllerImpl) SetAutoRotate(enabled bool) {
	cc.autoRotate = enabled
}

func (cc *cameraControllerImpl) ScrollSpeed() float32 {
	return cc.scrollSpeed
}

func (cc *cameraControllerImpl) DragSpeed() float32 {
	return cc.dragSpeed
}
