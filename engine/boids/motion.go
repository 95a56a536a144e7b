package boids

import "github.com/go-gl/mathgl/mgl32"

// Steering weights of the motion step.
const (
	neighborRadius   = 4.0
	separationRadius = 1.5

	separationWeight  = 1.5
	alignmentWeight   = 0.5
	cohesionWeight    = 0.3
	containmentWeight = 2.0
)

var forward = mgl32.Vec3{1, 0, 0}

// step advances every boid by dt seconds using separation, alignment and cohesion over neighbours,
// plus a pull back toward the origin once a boid leaves the radius. Speeds are clamped to
// [maxSpeed/4, maxSpeed] and each boid is turned to face its velocity.
func step(flock []Boid, dt, radius, maxSpeed float32) {
	accel := make([]mgl32.Vec3, len(flock))
	for i := range flock {
		self := &flock[i]
		var separation, velocitySum, positionSum mgl32.Vec3
		neighbors := 0
		for j := range flock {
			if i == j {
				continue
			}
			offset := self.Position.Sub(flock[j].Position)
			dist := offset.Len()
			if dist >= neighborRadius {
				continue
			}
			neighbors++
			velocitySum = velocitySum.Add(flock[j].Velocity)
			positionSum = positionSum.Add(flock[j].Position)
			if dist > 0 && dist < separationRadius {
				separation = separation.Add(offset.Mul(1 / (dist * dist)))
			}
		}

		a := separation.Mul(separationWeight)
		if neighbors > 0 {
			inv := 1 / float32(neighbors)
			a = a.Add(velocitySum.Mul(inv).Sub(self.Velocity).Mul(alignmentWeight))
			a = a.Add(positionSum.Mul(inv).Sub(self.Position).Mul(cohesionWeight))
		}
		if d := self.Position.Len(); d > radius {
			a = a.Sub(self.Position.Mul((d - radius) / d * containmentWeight))
		}
		accel[i] = a
	}

	minSpeed := maxSpeed / 4
	for i := range flock {
		b := &flock[i]
		b.Velocity = b.Velocity.Add(accel[i].Mul(dt))
		speed := b.Velocity.Len()
		switch {
		case speed == 0:
			b.Velocity = forward.Mul(minSpeed)
		case speed > maxSpeed:
			b.Velocity = b.Velocity.Mul(maxSpeed / speed)
		case speed < minSpeed:
			b.Velocity = b.Velocity.Mul(minSpeed / speed)
		}
		b.Position = b.Position.Add(b.Velocity.Mul(dt))
		b.Rotation = heading(b.Velocity)
	}
}

// heading returns the rotation that turns +X onto v, or identity for a zero vector.
func heading(v mgl32.Vec3) mgl32.Quat {
	if v.Len() == 0 {
		return mgl32.QuatIdent()
	}
	return mgl32.QuatBetweenVectors(forward, v.Normalize())
}
