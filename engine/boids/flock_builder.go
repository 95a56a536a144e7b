package boids

// FlockBuilderOption is a functional option for configuring a Flock via NewFlock.
type FlockBuilderOption func(*flock)

// WithCount sets the number of boids.
//
// Parameters:
//   - count: the number of instances
//
// Returns:
//   - FlockBuilderOption: a function that applies the count option to a flock
func WithCount(count int) FlockBuilderOption {
	return func(f *flock) {
		f.count = count
	}
}

// WithRadius sets the half extent of the cube the boids are scattered in and steered back into.
//
// Parameters:
//   - radius: the half extent in world units
//
// Returns:
//   - FlockBuilderOption: a function that applies the radius option to a flock
func WithRadius(radius float32) FlockBuilderOption {
	return func(f *flock) {
		f.radius = radius
	}
}

// WithSeed makes the initial positions, headings and tints reproducible.
//
// Parameters:
//   - seed: the random seed
//
// Returns:
//   - FlockBuilderOption: a function that applies the seed option to a flock
func WithSeed(seed uint64) FlockBuilderOption {
	return func(f *flock) {
		f.seed = seed
		f.seeded = true
	}
}

// WithMaxSpeed sets the top speed in world units per second. Zero keeps every boid in place with
// an identity rotation.
//
// Parameters:
//   - speed: the top speed
//
// Returns:
//   - FlockBuilderOption: a function that applies the max speed option to a flock
func WithMaxSpeed(speed float32) FlockBuilderOption {
	return func(f *flock) {
		f.maxSpeed = speed
	}
}
