// Package renderer runs the per-frame GPU sequence: acquire the swapchain image, encode the scene
// pass and the UI pass, submit both in one call, and present.
package renderer

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-boids/common"
	"github.com/Carmen-Shannon/oxy-boids/engine/gpu"
	"github.com/Carmen-Shannon/oxy-boids/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-boids/engine/renderer/frame_resources"
	"github.com/Carmen-Shannon/oxy-boids/engine/renderer/mipmap"
	"github.com/Carmen-Shannon/oxy-boids/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-boids/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-boids/engine/renderer/surface"
	"github.com/Carmen-Shannon/oxy-boids/engine/renderer/texture"
	"github.com/Carmen-Shannon/oxy-boids/engine/ui"
	"github.com/cogentcore/webgpu/wgpu"
)

const (
	CameraLayoutLabel  = "camera_bind_group_layout"
	TextureLayoutLabel = "texture_bind_group_layout"
	TintsLayoutLabel   = "tints_bind_group_layout"

	cameraBufferLabel = "camera_buffer"
	cameraGroupLabel  = "camera_bind_group"

	SceneEncoderLabel = "scene_encoder"
	ScenePassLabel    = "scene_pass"
	UIEncoderLabel    = "ui_encoder"
	UIPassLabel       = "ui_pass"

	sceneCommandLabel = "scene_command_buffer"
	uiCommandLabel    = "ui_command_buffer"
	mipmapSubmitLabel = "mipmap"
)

// CameraUniformSize is the size of the camera uniform: one column-major 4x4 f32 view-projection matrix.
const CameraUniformSize = 64

var (
	// ErrPipelineNotFound is returned when a frame draws items whose pipeline has not been registered.
	ErrPipelineNotFound = errors.New("render pipeline not found")

	// ErrStaleResources is returned by RenderFrame while the frame resources do not match the
	// surface configuration, which happens after a failed Resize. Recover retries the rebuild.
	ErrStaleResources = errors.New("frame resources do not match the surface")
)

// Uploader rewrites a long-lived GPU buffer in place before the frame is encoded.
type Uploader interface {
	// Upload writes the CPU-side state through queue.
	//
	// Parameters:
	//   - queue: the device queue
	//
	// Returns:
	//   - error: error if the write cannot be issued
	Upload(queue gpu.Queue) error
}

// DrawItem is one indexed mesh draw in the scene pass. Background items bind camera and material;
// foreground items also bind the tints group and an instance buffer.
type DrawItem struct {
	VertexBuffer gpu.Buffer
	IndexBuffer  gpu.Buffer
	IndexFormat  wgpu.IndexFormat
	IndexCount   uint32

	Material gpu.BindGroup

	Tints          gpu.BindGroup
	InstanceBuffer gpu.Buffer
	// InstanceCount of zero draws a single instance.
	InstanceCount uint32
}

// FrameInput is everything one call to RenderFrame consumes.
type FrameInput struct {
	Uploads    []Uploader
	Background []DrawItem
	Foreground []DrawItem
	UI         ui.PaintList
}

// OverlayRecorder composites the UI paint list onto the swapchain image inside the UI pass.
type OverlayRecorder interface {
	Prepare(paint ui.PaintList) error
	Draw(pass gpu.RenderPass)
	Resize(width, height uint32)
	Release()
}

var _ OverlayRecorder = &ui.OverlayRenderer{}

// FrameRenderer owns the frame resources, the long-lived layouts and camera group, and the scene
// pipelines, and runs the per-frame state machine over a surface.Session.
type FrameRenderer struct {
	cfg     Config
	session *surface.Session
	ctx     *gpu.Context

	cameraLayout  *bind_group_provider.Layout
	textureLayout *bind_group_provider.Layout
	tintsLayout   *bind_group_provider.Layout
	camera        bind_group_provider.BindGroupProvider

	resources *frame_resources.FrameResources
	pipelines map[string]pipeline.Pipeline

	overlay    OverlayRecorder
	overlaySet bool

	state           State
	observer        func(State)
	resizeListeners []func(width, height uint32)
}

// New creates a FrameRenderer on a configured session. It allocates the camera, texture and tints
// layouts, the camera uniform and group, the frame resources at the session's size, and the UI
// overlay recorder. Scene pipelines are registered separately once vertex layouts are known.
//
// Parameters:
//   - session: the configured surface session
//   - options: variadic list of RendererBuilderOption functions to configure the renderer
//
// Returns:
//   - *FrameRenderer: the renderer
//   - error: error if the config is invalid or any allocation fails
func New(session *surface.Session, options ...RendererBuilderOption) (*FrameRenderer, error) {
	r := &FrameRenderer{
		cfg:       DefaultConfig(),
		session:   session,
		ctx:       session.Context(),
		pipelines: make(map[string]pipeline.Pipeline),
	}
	for _, opt := range options {
		opt(r)
	}
	if err := r.cfg.Validate(); err != nil {
		return nil, err
	}

	if err := r.init(); err != nil {
		r.Release()
		return nil, err
	}
	common.Logger().Info("renderer initialized",
		"msaa", uint32(r.cfg.MSAA),
		"format", session.Config().Format,
	)
	return r, nil
}

func (r *FrameRenderer) init() error {
	device := r.ctx.Device
	var err error

	r.cameraLayout, err = bind_group_provider.NewLayout(device, CameraLayoutLabel, []gpu.BindGroupLayoutEntry{
		{Binding: 0, Visibility: wgpu.ShaderStageVertex, Type: gpu.UniformBuffer()},
	})
	if err != nil {
		return err
	}
	r.textureLayout, err = bind_group_provider.NewLayout(device, TextureLayoutLabel, []gpu.BindGroupLayoutEntry{
		{Binding: 0, Visibility: wgpu.ShaderStageFragment, Type: gpu.SampledTexture2D()},
		{Binding: 1, Visibility: wgpu.ShaderStageFragment, Type: gpu.FilteringSampler()},
	})
	if err != nil {
		return err
	}
	r.tintsLayout, err = bind_group_provider.NewLayout(device, TintsLayoutLabel, []gpu.BindGroupLayoutEntry{
		{Binding: 0, Visibility: wgpu.ShaderStageFragment, Type: gpu.ReadOnlyStorageBuffer()},
	})
	if err != nil {
		return err
	}

	buf, err := device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: cameraBufferLabel,
		Size:  CameraUniformSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("failed to create camera buffer: %w", err)
	}
	r.camera, err = bind_group_provider.NewBindGroupProvider(device,
		r.cameraLayout.DescriptorFor(cameraGroupLabel, gpu.BindingResource{Buffer: buf}),
		bind_group_provider.WithSharedLayout(r.cameraLayout),
		bind_group_provider.WithBuffer(0, buf),
	)
	if err != nil {
		buf.Release()
		return err
	}

	r.resources, err = frame_resources.Rebuild(r.ctx, r.session.Config(), r.cfg.DepthFormat, uint32(r.cfg.MSAA))
	if err != nil {
		return err
	}

	if !r.overlaySet {
		overlay, err := ui.NewOverlayRenderer(r.ctx, r.textureLayout, r.session.Config().Format)
		if err != nil {
			return err
		}
		r.overlay = overlay
	}
	return nil
}

// Config returns the renderer configuration.
func (r *FrameRenderer) Config() Config {
	return r.cfg
}

// Context returns the device context.
func (r *FrameRenderer) Context() *gpu.Context {
	return r.ctx
}

// TextureLayout returns the layout shared by every material group and the mip generator.
func (r *FrameRenderer) TextureLayout() *bind_group_provider.Layout {
	return r.textureLayout
}

// TintsLayout returns the layout of the per-instance tint storage group.
func (r *FrameRenderer) TintsLayout() *bind_group_provider.Layout {
	return r.tintsLayout
}

// State returns the current position in the frame sequence.
func (r *FrameRenderer) State() State {
	return r.state
}

// Resources returns the current frame resources, or nil after a Resize failed to allocate them.
func (r *FrameRenderer) Resources() *frame_resources.FrameResources {
	return r.resources
}

// Pipeline retrieves the registered Pipeline associated with the given key.
// If the Pipeline does not exist, this will return nil.
//
// Parameters:
//   - key: the unique identifier for the Pipeline to retrieve
//
// Returns:
//   - pipeline.Pipeline: the Pipeline associated with the key, or nil if not found
func (r *FrameRenderer) Pipeline(key string) pipeline.Pipeline {
	return r.pipelines[key]
}

// RegisterPipelines builds and caches one pipeline per descriptor. Descriptors whose keys are
// already registered are skipped to avoid duplicate GPU resource creation.
//
// Parameters:
//   - descs: the pipeline descriptors
//
// Returns:
//   - error: an error if pipeline creation fails
func (r *FrameRenderer) RegisterPipelines(descs ...pipeline.Descriptor) error {
	for _, desc := range descs {
		if _, exists := r.pipelines[desc.Key]; exists {
			continue
		}
		p, err := pipeline.Build(r.ctx.Device, desc)
		if err != nil {
			return err
		}
		r.pipelines[desc.Key] = p
		common.Logger().Debug("pipeline registered", "key", desc.Key, "samples", p.SampleCount())
	}
	return nil
}

// RegisterScenePipelines builds the instanced scene pipeline and the background pipeline for the
// surface format, the depth format and the configured sample count.
//
// Parameters:
//   - vertex: the mesh vertex layout
//   - instance: the per-instance layout of the scene pipeline
//
// Returns:
//   - error: error if either shader or pipeline fails to build
func (r *FrameRenderer) RegisterScenePipelines(vertex, instance wgpu.VertexBufferLayout) error {
	sceneShader, err := shader.NewBuiltin(shader.SceneKey)
	if err != nil {
		return err
	}
	backgroundShader, err := shader.NewBuiltin(shader.BackgroundKey)
	if err != nil {
		return err
	}

	format := r.session.Config().Format
	samples := uint32(r.cfg.MSAA)
	layouts := r.groupLayouts()

	scene := pipeline.SceneDescriptor(sceneShader, r.cameraLayout, r.textureLayout, r.tintsLayout,
		vertex, instance, format, r.cfg.DepthFormat, samples)
	scene.BindGroupLayouts = layouts

	background := pipeline.BackgroundDescriptor(backgroundShader, r.cameraLayout, r.textureLayout,
		vertex, format, r.cfg.DepthFormat, samples)
	background.BindGroupLayouts = layouts[:2]

	return r.RegisterPipelines(background, scene)
}

// groupLayouts orders the camera, material and tints layouts by their configured slots.
func (r *FrameRenderer) groupLayouts() []*bind_group_provider.Layout {
	out := make([]*bind_group_provider.Layout, 3)
	out[r.cfg.Slots.Camera] = r.cameraLayout
	out[r.cfg.Slots.Material] = r.textureLayout
	out[r.cfg.Slots.Tints] = r.tintsLayout
	return out
}

// GenerateMipmaps fills the mip chains of textures in a single submission. The textures must use
// texture.DefaultFormat and have every mip level allocated.
//
// Parameters:
//   - textures: the freshly uploaded textures
//
// Returns:
//   - error: error if the blit pipeline or any transient object cannot be created
func (r *FrameRenderer) GenerateMipmaps(textures []*texture.Texture) error {
	g, err := mipmap.NewGenerator(r.ctx, r.textureLayout, texture.DefaultFormat)
	if err != nil {
		return err
	}
	defer g.Release()

	cb, err := g.Generate(textures)
	if err != nil {
		return err
	}
	r.ctx.Queue.Submit(cb)
	cb.Release()
	common.Logger().Debug("mipmaps generated", "textures", len(textures), "submission", mipmapSubmitLabel)
	return nil
}

// Update rewrites the camera uniform in place.
//
// Parameters:
//   - cameraUniform: the CameraUniformSize-byte view-projection matrix
//
// Returns:
//   - error: error if the data overruns the uniform buffer
func (r *FrameRenderer) Update(cameraUniform []byte) error {
	return bind_group_provider.WriteBuffers(r.ctx.Queue, []bind_group_provider.BufferWrite{
		{Provider: r.camera, Binding: 0, Data: cameraUniform},
	})
}

// OnResize registers a function called after every effective Resize, once the frame resources have
// been rebuilt and before the UI overlay is resized. Listeners run in registration order.
//
// Parameters:
//   - fn: receives the new width and height
func (r *FrameRenderer) OnResize(fn func(width, height uint32)) {
	r.resizeListeners = append(r.resizeListeners, fn)
}

// Resize reconfigures the surface and replaces the frame resources. A zero dimension is a no-op.
// If the new resources cannot be allocated the old ones are released anyway, and RenderFrame
// returns ErrStaleResources until a later Resize succeeds.
//
// Parameters:
//   - width: the new width in pixels
//   - height: the new height in pixels
//
// Returns:
//   - error: error if the new frame resources cannot be allocated
func (r *FrameRenderer) Resize(width, height uint32) error {
	if !r.session.Resize(width, height) {
		return nil
	}

	stale := r.resources
	resources, err := frame_resources.Rebuild(r.ctx, r.session.Config(), r.cfg.DepthFormat, uint32(r.cfg.MSAA))
	r.resources = resources
	stale.Release()
	if err != nil {
		return fmt.Errorf("failed to rebuild frame resources at %dx%d: %w", width, height, err)
	}

	for _, fn := range r.resizeListeners {
		fn(width, height)
	}
	if r.overlay != nil {
		r.overlay.Resize(width, height)
	}
	return nil
}

// Recover applies the recovery for a RenderFrame error. A lost surface is resized once at its
// current size, an out-of-memory error is returned to stop the loop, and anything else is logged
// and dropped.
//
// Parameters:
//   - err: the error returned by RenderFrame
//
// Returns:
//   - error: err when the loop must stop, or a reconfiguration failure
func (r *FrameRenderer) Recover(err error) error {
	switch RecoveryFor(err) {
	case RecoveryExit:
		common.Logger().Error("render loop stopped", "error", err)
		return err
	case RecoveryReconfigure:
		cfg := r.session.Config()
		common.Logger().Warn("reconfiguring surface", "error", err, "width", cfg.Width, "height", cfg.Height)
		return r.Resize(cfg.Width, cfg.Height)
	default:
		common.Logger().Warn("frame skipped", "error", err)
		return nil
	}
}

// RenderFrame uploads the frame's per-frame state, acquires the swapchain image, encodes the scene
// pass and the UI pass into two command buffers, submits them as [scene, ui] in one call, and
// presents. A failed acquire returns the classified error before any encoder is created, and
// nothing is acquired while the frame resources are stale.
//
// Parameters:
//   - in: the frame's uploads, draw items and UI paint list
//
// Returns:
//   - error: a *surface.Error if acquiring failed, ErrStaleResources, or an encoding error
func (r *FrameRenderer) RenderFrame(in FrameInput) error {
	defer r.setState(StateIdle)

	if !r.resources.Matches(r.session.Config()) {
		return ErrStaleResources
	}

	for _, u := range in.Uploads {
		if err := u.Upload(r.ctx.Queue); err != nil {
			return err
		}
	}
	if r.overlay != nil {
		if err := r.overlay.Prepare(in.UI); err != nil {
			return err
		}
	}

	r.setState(StateAcquiring)
	frame, err := r.session.AcquireFrame()
	if err != nil {
		return err
	}

	r.setState(StateEncoding)
	scene, err := r.encodeScene(frame.View, in)
	if err != nil {
		frame.Release()
		return err
	}
	uiCommands, err := r.encodeUI(frame.View)
	if err != nil {
		scene.Release()
		frame.Release()
		return err
	}

	r.ctx.Queue.Submit(scene, uiCommands)
	r.setState(StateSubmitted)
	scene.Release()
	uiCommands.Release()

	r.session.Present(frame)
	r.setState(StatePresented)
	return nil
}

func (r *FrameRenderer) encodeScene(swapchain gpu.TextureView, in FrameInput) (gpu.CommandBuffer, error) {
	encoder, err := r.ctx.Device.CreateCommandEncoder(SceneEncoderLabel)
	if err != nil {
		return nil, fmt.Errorf("failed to create scene encoder: %w", err)
	}
	defer encoder.Release()

	// The multisampled color is only needed until it has been resolved into the swapchain image.
	view, resolve := r.resources.ColorTargets(swapchain)
	storeOp := wgpu.StoreOpStore
	if resolve != nil {
		storeOp = wgpu.StoreOpDiscard
	}
	pass := encoder.BeginRenderPass(&gpu.RenderPassDescriptor{
		Label: ScenePassLabel,
		ColorAttachments: []gpu.ColorAttachment{{
			View:          view,
			ResolveTarget: resolve,
			LoadOp:        wgpu.LoadOpClear,
			StoreOp:       storeOp,
			ClearValue:    r.cfg.ClearColor,
		}},
		DepthStencilAttachment: &gpu.DepthAttachment{
			View:            r.resources.Depth.View,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	})

	drawErr := r.drawItems(pass, shader.BackgroundKey, in.Background, false)
	if drawErr == nil {
		drawErr = r.drawItems(pass, shader.SceneKey, in.Foreground, true)
	}
	pass.End()
	if drawErr != nil {
		return nil, drawErr
	}

	return encoder.Finish(sceneCommandLabel)
}

func (r *FrameRenderer) drawItems(pass gpu.RenderPass, key string, items []DrawItem, instanced bool) error {
	if len(items) == 0 {
		return nil
	}
	p, exists := r.pipelines[key]
	if !exists {
		return fmt.Errorf("%w: %q", ErrPipelineNotFound, key)
	}

	pass.SetPipeline(p.Handle())
	pass.SetBindGroup(r.cfg.Slots.Camera, r.camera.BindGroup())
	for _, item := range items {
		pass.SetBindGroup(r.cfg.Slots.Material, item.Material)
		pass.SetVertexBuffer(0, item.VertexBuffer)
		if instanced {
			pass.SetBindGroup(r.cfg.Slots.Tints, item.Tints)
			pass.SetVertexBuffer(1, item.InstanceBuffer)
		}
		pass.SetIndexBuffer(item.IndexBuffer, common.Coalesce(item.IndexFormat, wgpu.IndexFormatUint32))
		pass.DrawIndexed(item.IndexCount, max(item.InstanceCount, 1), 0, 0, 0)
	}
	return nil
}

func (r *FrameRenderer) encodeUI(swapchain gpu.TextureView) (gpu.CommandBuffer, error) {
	encoder, err := r.ctx.Device.CreateCommandEncoder(UIEncoderLabel)
	if err != nil {
		return nil, fmt.Errorf("failed to create ui encoder: %w", err)
	}
	defer encoder.Release()

	pass := encoder.BeginRenderPass(&gpu.RenderPassDescriptor{
		Label: UIPassLabel,
		ColorAttachments: []gpu.ColorAttachment{{
			View:    swapchain,
			LoadOp:  wgpu.LoadOpLoad,
			StoreOp: wgpu.StoreOpStore,
		}},
	})
	if r.overlay != nil {
		r.overlay.Draw(pass)
	}
	pass.End()

	return encoder.Finish(uiCommandLabel)
}

func (r *FrameRenderer) setState(s State) {
	if r.state == s {
		return
	}
	r.state = s
	if r.observer != nil {
		r.observer(s)
	}
}

// Release frees everything the renderer owns. The session is owned by the caller.
func (r *FrameRenderer) Release() {
	for key, p := range r.pipelines {
		p.Release()
		delete(r.pipelines, key)
	}
	if r.overlay != nil {
		r.overlay.Release()
		r.overlay = nil
	}
	r.resources.Release()
	r.resources = nil
	if r.camera != nil {
		r.camera.Release()
		r.camera = nil
	}
	for _, l := range []*bind_group_provider.Layout{r.tintsLayout, r.textureLayout, r.cameraLayout} {
		if l != nil {
			l.Release()
		}
	}
	r.tintsLayout, r.textureLayout, r.cameraLayout = nil, nil, nil
}
