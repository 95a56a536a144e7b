package camera

import (
	"github.com/Carmen-Shannon/oxy-boids/common"
	"github.com/go-gl/mathgl/mgl32"
)

type cameraImpl struct {
	eye    mgl32.Vec3
	target mgl32.Vec3
	up     mgl32.Vec3

	fovy   float32
	aspect float32
	near   float32
	far    float32

	viewProjection mgl32.Mat4
}

// Camera is a right-handed perspective camera looking from an eye point at a target.
// The view-projection matrix is kept current on every setter and is already corrected
// for WebGPU's [0, 1] clip-space depth range.
type Camera interface {
	// Eye returns the camera position.
	//
	// Returns:
	//   - mgl32.Vec3: world-space eye position
	Eye() mgl32.Vec3

	// Target returns the look-at point.
	//
	// Returns:
	//   - mgl32.Vec3: world-space target position
	Target() mgl32.Vec3

	// Up returns the camera's up vector.
	//
	// Returns:
	//   - mgl32.Vec3: the up vector
	Up() mgl32.Vec3

	// Fovy returns the vertical field of view in degrees.
	Fovy() float32

	// Aspect returns the aspect ratio (width / height).
	Aspect() float32

	// Near returns the near clipping plane distance.
	Near() float32

	// Far returns the far clipping plane distance.
	Far() float32

	// ViewProjectionMatrix returns OpenGLToWGPU * projection * view.
	//
	// Returns:
	//   - mgl32.Mat4: the column-major view-projection matrix
	ViewProjectionMatrix() mgl32.Mat4

	// Uniform returns the GPU camera uniform for the current matrices.
	//
	// Returns:
	//   - []byte: the 64-byte little-endian uniform
	Uniform() []byte

	// SetEye moves the camera.
	//
	// Parameters:
	//   - eye: the new world-space position
	SetEye(eye mgl32.Vec3)

	// SetTarget changes the look-at point.
	//
	// Parameters:
	//   - target: the new world-space target
	SetTarget(target mgl32.Vec3)

	// SetAspect sets the aspect ratio (width / height) and recomputes matrices.
	//
	// Parameters:
	//   - aspect: the aspect ratio
	SetAspect(aspect float32)

	// Resize sets the aspect ratio from a framebuffer size. A zero height leaves the aspect unchanged.
	//
	// Parameters:
	//   - width: framebuffer width in pixels
	//   - height: framebuffer height in pixels
	Resize(width, height uint32)
}

var _ Camera = &cameraImpl{}

// NewCamera creates a Camera at eye (0, 10, 20) looking at the origin with a 60 degree vertical
// field of view, near plane 0.1 and far plane 100.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		eye:    mgl32.Vec3{0, 10, 20},
		target: mgl32.Vec3{0, 0, 0},
		up:     mgl32.Vec3{0, 1, 0},
		fovy:   60,
		aspect: 1,
		near:   0.1,
		far:    100,
	}
	for _, option := range options {
		option(c)
	}
	c.updateMatrices()
	return c
}

func (c *cameraImpl) Eye() mgl32.Vec3 {
	return c.eye
}

func (c *cameraImpl) Target() mgl32.Vec3 {
	return c.target
}

func (c *cameraImpl) Up() mgl32.Vec3 {
	return c.up
}

func (c *cameraImpl) Fovy() float32 {
	return c.fovy
}

func (c *cameraImpl) Aspect() float32 {
	return c.aspect
}

func (c *cameraImpl) Near() float32 {
	return c.near
}

func (c *cameraImpl) Far() float32 {
	return c.far
}

func (c *cameraImpl) ViewProjectionMatrix() mgl32.Mat4 {
	return c.viewProjection
}

func (c *cameraImpl) Uniform() []byte {
	u := GPUCameraUniform{ViewProj: c.viewProjection}
	return u.Marshal()
}

func (c *cameraImpl) SetEye(eye mgl32.Vec3) {
	c.eye = eye
	c.updateMatrices()
}

func (c *cameraImpl) SetTarget(target mgl32.Vec3) {
	c.target = target
	c.updateMatrices()
}

func (c *cameraImpl) SetAspect(aspect float32) {
	c.aspect = aspect
	c.updateMatrices()
}

func (c *cameraImpl) Resize(width, height uint32) {
	if width == 0 || height == 0 {
		return
	}
	c.SetAspect(float32(width) / float32(height))
}

// updateMatrices recalculates the view-projection matrix.
func (c *cameraImpl) updateMatrices() {
	view := mgl32.LookAtV(c.eye, c.target, c.up)
	projection := mgl32.Perspective(mgl32.DegToRad(c.fovy), c.aspect, c.near, c.far)
	c.viewProjection = common.OpenGLToWGPU.Mul4(projection).Mul4(view)
}
