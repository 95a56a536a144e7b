package boids

import "github.com/go-gl/mathgl/mgl32"

// Boid is the transform state of one fish. Models face +X, so Rotation turns +X onto the heading.
type Boid struct {
	Position mgl32.Vec3
	Velocity mgl32.Vec3
	Rotation mgl32.Quat
}

// ModelMatrix returns translation * rotation.
//
// Returns:
//   - mgl32.Mat4: the boid's model matrix
func (b *Boid) ModelMatrix() mgl32.Mat4 {
	return mgl32.Translate3D(b.Position.X(), b.Position.Y(), b.Position.Z()).Mul4(b.Rotation.Mat4())
}

// Instance returns the boid's per-instance GPU data.
func (b *Boid) Instance() GPUInstanceData {
	return GPUInstanceData{Model: b.ModelMatrix()}
}
