// Package scene composes the aquarium: an inward-facing box drawn as the background, a school of
// instanced fish drawn in front of it, and the orbiting camera looking at both.
package scene

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-boids/common"
	"github.com/Carmen-Shannon/oxy-boids/engine/boids"
	"github.com/Carmen-Shannon/oxy-boids/engine/camera"
	"github.com/Carmen-Shannon/oxy-boids/engine/model"
	"github.com/Carmen-Shannon/oxy-boids/engine/renderer"
	"github.com/Carmen-Shannon/oxy-boids/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-boids/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-boids/engine/renderer/texture"
	"github.com/Carmen-Shannon/oxy-boids/engine/ui"
	"github.com/cogentcore/webgpu/wgpu"
)

const (
	// DefaultRadius is the half extent of the cube the school swims in.
	DefaultRadius float32 = 20

	// aquariumScale sizes the glass box relative to the school's radius.
	aquariumScale float32 = 1.5

	fishName     = "fish"
	aquariumName = "aquarium"
)

// Scene is the aquarium the engine renders every frame.
type Scene interface {
	// Name returns the scene's name.
	//
	// Returns:
	//   - string: the name
	Name() string

	// Camera returns the scene camera.
	//
	// Returns:
	//   - camera.Camera: the camera
	Camera() camera.Camera

	// Controller returns the controller that zooms and orbits the camera.
	//
	// Returns:
	//   - camera.CameraController: the controller
	Controller() camera.CameraController

	// Flock returns the fish school.
	//
	// Returns:
	//   - boids.Flock: the flock
	Flock() boids.Flock

	// Models returns the scene's meshes: the aquarium first, then the fish.
	//
	// Returns:
	//   - []model.Model: the models
	Models() []model.Model

	// HandleEvent offers an input event the UI did not consume to the camera controller.
	//
	// Parameters:
	//   - ev: the input event
	//
	// Returns:
	//   - bool: true if the controller consumed the event
	HandleEvent(ev ui.Event) bool

	// Update advances the camera and the school by dt seconds and writes the camera uniform.
	//
	// Parameters:
	//   - dt: elapsed time in seconds
	//
	// Returns:
	//   - error: error if the camera uniform cannot be written
	Update(dt float32) error

	// FrameInput assembles the renderer input for the current state.
	// Models whose material targets the background pipeline are drawn once; the others are drawn
	// once per fish.
	//
	// Parameters:
	//   - paint: the UI overlay of this frame
	//
	// Returns:
	//   - renderer.FrameInput: uploads, draw items and overlay
	FrameInput(paint ui.PaintList) renderer.FrameInput

	// Release frees the models, their materials and the flock. Pipelines and layouts belong to
	// the renderer.
	Release()
}

type scene struct {
	name     string
	renderer *renderer.FrameRenderer

	cam        camera.Camera
	controller camera.CameraController
	flock      boids.Flock
	aquarium   model.Model
	fish       model.Model

	radius          float32
	fishTexture     string
	aquariumTexture string

	flockOptions      []boids.FlockBuilderOption
	cameraOptions     []camera.CameraBuilderOption
	controllerOptions []camera.CameraControllerOption
}

var _ Scene = &scene{}

// NewScene builds the aquarium on r. It registers the scene pipelines, loads or paints the fish
// and aquarium textures, generates the mip chains of both in one submission, uploads the meshes,
// spawns the school and attaches the camera aspect to the renderer's resize notifications.
//
// Parameters:
//   - name: the scene name
//   - r: the frame renderer that owns the device and the shared layouts
//   - options: variadic list of SceneBuilderOption functions to configure the scene
//
// Returns:
//   - Scene: the scene
//   - error: error if any texture, pipeline or buffer cannot be created
func NewScene(name string, r *renderer.FrameRenderer, options ...SceneBuilderOption) (Scene, error) {
	s := &scene{
		name:     name,
		renderer: r,
		radius:   DefaultRadius,
	}
	for _, option := range options {
		option(s)
	}

	if err := r.RegisterScenePipelines(model.VertexLayout(), boids.InstanceLayout()); err != nil {
		return nil, fmt.Errorf("failed to register scene pipelines: %w", err)
	}
	if err := s.build(); err != nil {
		s.Release()
		return nil, err
	}

	res := r.Resources()
	s.cam = camera.NewCamera(append([]camera.CameraBuilderOption{
		camera.WithAspect(float32(res.Width) / float32(max(res.Height, 1))),
	}, s.cameraOptions...)...)
	s.controller = camera.NewCameraController(s.controllerOptions...)
	r.OnResize(s.cam.Resize)

	common.Logger().Info("scene ready",
		"name", s.name,
		"fish", s.flock.Count(),
		"radius", s.radius,
	)
	return s, nil
}

func (s *scene) build() error {
	ctx := s.renderer.Context()

	fishImage, err := model.LoadOrGenerate(s.fishTexture, model.FishTexture)
	if err != nil {
		return err
	}
	aquariumImage, err := model.LoadOrGenerate(s.aquariumTexture, model.AquariumTexture)
	if err != nil {
		return err
	}

	fishMaterial, err := material.NewMaterial(ctx, s.renderer.TextureLayout(), fishImage,
		material.WithName(fishName),
		material.WithPipelineKey(shader.SceneKey),
	)
	if err != nil {
		return err
	}
	aquariumMaterial, err := material.NewMaterial(ctx, s.renderer.TextureLayout(), aquariumImage,
		material.WithName(aquariumName),
		material.WithPipelineKey(shader.BackgroundKey),
		material.WithSamplerOptions(texture.SamplerOptions{
			AddressModeU: wgpu.AddressModeClampToEdge,
			AddressModeV: wgpu.AddressModeClampToEdge,
			AddressModeW: wgpu.AddressModeClampToEdge,
		}),
	)
	if err != nil {
		fishMaterial.Release()
		return err
	}

	if err := s.renderer.GenerateMipmaps(material.Textures(fishMaterial, aquariumMaterial)); err != nil {
		fishMaterial.Release()
		aquariumMaterial.Release()
		return err
	}

	s.aquarium, err = model.NewModel(ctx, model.AquariumMesh(s.radius*aquariumScale),
		model.WithName(aquariumName),
		model.WithMaterial(aquariumMaterial),
	)
	if err != nil {
		fishMaterial.Release()
		aquariumMaterial.Release()
		return err
	}
	s.fish, err = model.NewModel(ctx, model.FishMesh(),
		model.WithName(fishName),
		model.WithMaterial(fishMaterial),
	)
	if err != nil {
		fishMaterial.Release()
		return err
	}

	flockOptions := append([]boids.FlockBuilderOption{boids.WithRadius(s.radius)}, s.flockOptions...)
	s.flock, err = boids.NewFlock(ctx, s.renderer.TintsLayout(), flockOptions...)
	return err
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) Camera() camera.Camera {
	return s.cam
}

func (s *scene) Controller() camera.CameraController {
	return s.controller
}

func (s *scene) Flock() boids.Flock {
	return s.flock
}

func (s *scene) Models() []model.Model {
	return []model.Model{s.aquarium, s.fish}
}

func (s *scene) HandleEvent(ev ui.Event) bool {
	return s.controller.HandleEvent(ev)
}

func (s *scene) Update(dt float32) error {
	s.controller.Update(s.cam, dt)
	s.flock.Update(dt)
	return s.renderer.Update(s.cam.Uniform())
}

func (s *scene) FrameInput(paint ui.PaintList) renderer.FrameInput {
	in := renderer.FrameInput{
		Uploads: []renderer.Uploader{s.flock},
		UI:      paint,
	}
	for _, m := range s.Models() {
		if m.Material().PipelineKey() == shader.BackgroundKey {
			in.Background = append(in.Background, m.DrawItem())
			continue
		}
		in.Foreground = append(in.Foreground, s.flock.DrawItem(m.DrawItem()))
	}
	return in
}

func (s *scene) Release() {
	if s.flock != nil {
		s.flock.Release()
		s.flock = nil
	}
	if s.fish != nil {
		s.fish.Release()
		s.fish = nil
	}
	if s.aquarium != nil {
		s.aquarium.Release()
		s.aquarium = nil
	}
}
