package scene

import (
	"github.com/Carmen-Shannon/oxy-boids/engine/boids"
	"github.com/Carmen-Shannon/oxy-boids/engine/camera"
)

// SceneBuilderOption is a functional option for configuring a Scene via NewScene.
type SceneBuilderOption func(s *scene)

// WithRadius sets the half extent of the cube the fish swim in. The aquarium box is sized from it.
//
// Parameters:
//   - radius: the half extent in world units; non-positive values keep DefaultRadius
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithRadius(radius float32) SceneBuilderOption {
	return func(s *scene) {
		if radius > 0 {
			s.radius = radius
		}
	}
}

// WithFishCount sets the number of fish in the school.
//
// Parameters:
//   - count: the number of fish
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithFishCount(count int) SceneBuilderOption {
	return func(s *scene) {
		s.flockOptions = append(s.flockOptions, boids.WithCount(count))
	}
}

// WithFishSpeed sets the top swimming speed. Zero keeps the school still.
//
// Parameters:
//   - speed: world units per second
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithFishSpeed(speed float32) SceneBuilderOption {
	return func(s *scene) {
		s.flockOptions = append(s.flockOptions, boids.WithMaxSpeed(speed))
	}
}

// WithSeed makes the school's spawn positions and tints reproducible. Zero keeps a random seed.
//
// Parameters:
//   - seed: the random seed
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithSeed(seed uint64) SceneBuilderOption {
	return func(s *scene) {
		if seed != 0 {
			s.flockOptions = append(s.flockOptions, boids.WithSeed(seed))
		}
	}
}

// WithFishTexture loads the fish texture from an image file instead of painting it.
//
// Parameters:
//   - path: a PNG, JPEG, BMP or WebP file; "" paints the built-in texture
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithFishTexture(path string) SceneBuilderOption {
	return func(s *scene) {
		s.fishTexture = path
	}
}

// WithAquariumTexture loads the aquarium wall texture from an image file instead of painting it.
//
// Parameters:
//   - path: a PNG, JPEG, BMP or WebP file; "" paints the built-in texture
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithAquariumTexture(path string) SceneBuilderOption {
	return func(s *scene) {
		s.aquariumTexture = path
	}
}

// WithCameraOptions configures the scene camera. The aspect ratio is taken from the renderer
// unless one of the options sets it.
//
// Parameters:
//   - options: camera options applied after the defaults
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithCameraOptions(options ...camera.CameraBuilderOption) SceneBuilderOption {
	return func(s *scene) {
		s.cameraOptions = append(s.cameraOptions, options...)
	}
}

// WithControllerOptions configures the camera controller.
//
// Parameters:
//   - options: controller options
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithControllerOptions(options ...camera.CameraControllerOption) SceneBuilderOption {
	return func(s *scene) {
		s.controllerOptions = append(s.controllerOptions, options...)
	}
}
