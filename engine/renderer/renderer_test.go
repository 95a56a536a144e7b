package renderer

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/Carmen-Shannon/oxy-boids/engine/gpu"
	"github.com/Carmen-Shannon/oxy-boids/engine/gpu/gputest"
	"github.com/Carmen-Shannon/oxy-boids/engine/renderer/frame_resources"
	"github.com/Carmen-Shannon/oxy-boids/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-boids/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-boids/engine/renderer/surface"
	"github.com/Carmen-Shannon/oxy-boids/engine/ui"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeShader struct{ key string }

func (s fakeShader) Key() string                { return s.key }
func (s fakeShader) Source() string             { return "" }
func (s fakeShader) Bindings() []shader.Binding { return nil }
func (s fakeShader) Module() *gpu.ShaderModuleDescriptor {
	return &gpu.ShaderModuleDescriptor{Label: s.key}
}

type fakeOverlay struct {
	prepared []ui.PaintList
	resizes  [][2]uint32
	released bool
	err      error
}

func (o *fakeOverlay) Prepare(paint ui.PaintList) error {
	o.prepared = append(o.prepared, paint)
	return o.err
}

func (o *fakeOverlay) Draw(pass gpu.RenderPass) { pass.Draw(4, 1, 0, 0) }

func (o *fakeOverlay) Resize(width, height uint32) {
	o.resizes = append(o.resizes, [2]uint32{width, height})
}

func (o *fakeOverlay) Release() { o.released = true }

type uploadFunc func(gpu.Queue) error

func (f uploadFunc) Upload(q gpu.Queue) error { return f(q) }

type harness struct {
	r       *FrameRenderer
	device  *gputest.Device
	queue   *gputest.Queue
	surface *gputest.Surface
	overlay *fakeOverlay
}

func newHarness(t *testing.T, opts ...RendererBuilderOption) *harness {
	t.Helper()
	surf := gputest.NewSurface(wgpu.TextureFormatBGRA8UnormSrgb)
	neg := gputest.NewNegotiator(surf)
	session, err := surface.Initialize(context.Background(), neg, gputest.Target{}, 800, 600)
	require.NoError(t, err)

	overlay := &fakeOverlay{}
	r, err := New(session, append([]RendererBuilderOption{WithOverlayRecorder(overlay)}, opts...)...)
	require.NoError(t, err)
	return &harness{r: r, device: neg.Device, queue: neg.Queue, surface: surf, overlay: overlay}
}

func (h *harness) registerFakePipelines(t *testing.T) {
	t.Helper()
	layouts := h.r.groupLayouts()
	base := pipeline.Descriptor{
		ColorFormat: wgpu.TextureFormatBGRA8UnormSrgb,
		DepthFormat: frame_resources.DepthFormat,
		SampleCount: uint32(h.r.cfg.MSAA),
	}
	background, scene := base, base
	background.Key, background.Shader, background.BindGroupLayouts = shader.BackgroundKey, fakeShader{shader.BackgroundKey}, layouts[:2]
	scene.Key, scene.Shader, scene.BindGroupLayouts = shader.SceneKey, fakeShader{shader.SceneKey}, layouts
	require.NoError(t, h.r.RegisterPipelines(background, scene))
}

func (h *harness) buffer(label string) gpu.Buffer {
	b, _ := h.device.CreateBuffer(&wgpu.BufferDescriptor{Label: label, Size: 256})
	return b
}

func (h *harness) group(label string) gpu.BindGroup {
	g, _ := h.device.CreateBindGroup(&gpu.BindGroupDescriptor{Label: label})
	return g
}

func TestNewAllocatesLongLivedObjects(t *testing.T) {
	h := newHarness(t)

	var labels []string
	for _, l := range h.device.Layouts {
		labels = append(labels, l.Label)
	}
	assert.Equal(t, []string{CameraLayoutLabel, TextureLayoutLabel, TintsLayoutLabel}, labels)

	require.Len(t, h.device.Buffers, 1)
	camera := h.device.Buffers[0]
	assert.Equal(t, uint64(CameraUniformSize), camera.Desc.Size)
	assert.Equal(t, wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst, camera.Desc.Usage)

	fr := h.r.Resources()
	assert.Equal(t, uint32(800), fr.Width)
	assert.Equal(t, uint32(600), fr.Height)
	assert.Equal(t, uint32(4), fr.SampleCount)
	require.NotNil(t, fr.Color)
	assert.Equal(t, StateIdle, h.r.State())
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	surf := gputest.NewSurface(wgpu.TextureFormatBGRA8UnormSrgb)
	neg := gputest.NewNegotiator(surf)
	session, err := surface.Initialize(context.Background(), neg, gputest.Target{}, 800, 600)
	require.NoError(t, err)

	_, err = New(session, WithMSAA(3))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	cfg := DefaultConfig()
	cfg.Slots = Slots{Camera: 2, Material: 1, Tints: 0}
	_, err = New(session, WithConfig(cfg))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	for _, format := range []wgpu.TextureFormat{wgpu.TextureFormatUndefined, wgpu.TextureFormatRGBA8Unorm} {
		cfg = DefaultConfig()
		cfg.DepthFormat = format
		_, err = New(session, WithConfig(cfg))
		assert.ErrorIs(t, err, ErrInvalidConfig, format.String())
	}
}

func TestDepthFormatReachesPipelinesAndResources(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DepthFormat = wgpu.TextureFormatDepth32Float
	h := newHarness(t, WithConfig(cfg))

	vertex := wgpu.VertexBufferLayout{ArrayStride: 32, StepMode: wgpu.VertexStepModeVertex}
	instance := wgpu.VertexBufferLayout{ArrayStride: 64, StepMode: wgpu.VertexStepModeInstance}
	require.NoError(t, h.r.RegisterScenePipelines(vertex, instance))
	assert.Equal(t, wgpu.TextureFormatDepth32Float, h.r.Pipeline(shader.SceneKey).DepthFormat())
	assert.Equal(t, wgpu.TextureFormatDepth32Float, h.r.Pipeline(shader.BackgroundKey).DepthFormat())
	depth := h.r.Resources().Depth.Texture.(*gputest.Texture)
	assert.Equal(t, wgpu.TextureFormatDepth32Float, depth.Desc.Format)

	require.NoError(t, h.r.Resize(1024, 768))
	depth = h.r.Resources().Depth.Texture.(*gputest.Texture)
	assert.Equal(t, wgpu.TextureFormatDepth32Float, depth.Desc.Format)
}

func TestUpdateWritesCameraUniformInPlace(t *testing.T) {
	h := newHarness(t)
	uniform := make([]byte, CameraUniformSize)
	uniform[0] = 1

	require.NoError(t, h.r.Update(uniform))
	require.NoError(t, h.r.Update(uniform))

	writes := h.queue.WritesTo(h.device.Buffers[0])
	require.Len(t, writes, 2)
	assert.Equal(t, uniform, writes[1].Data)
	assert.Len(t, h.device.Groups, 1, "the camera group is never recreated")

	assert.Error(t, h.r.Update(make([]byte, CameraUniformSize+4)))
}

func TestRenderFrameSubmitsSceneThenUI(t *testing.T) {
	var states []State
	h := newHarness(t, WithStateObserver(func(s State) { states = append(states, s) }))
	h.registerFakePipelines(t)

	uploaded := false
	in := FrameInput{
		Uploads: []Uploader{uploadFunc(func(gpu.Queue) error {
			uploaded = true
			return nil
		})},
		Background: []DrawItem{{
			VertexBuffer: h.buffer("aquarium_vertices"),
			IndexBuffer:  h.buffer("aquarium_indices"),
			IndexCount:   36,
			Material:     h.group("aquarium_material"),
		}},
		Foreground: []DrawItem{{
			VertexBuffer:   h.buffer("fish_vertices"),
			IndexBuffer:    h.buffer("fish_indices"),
			IndexCount:     120,
			Material:       h.group("fish_material"),
			Tints:          h.group("fish_tints"),
			InstanceBuffer: h.buffer("fish_instances"),
			InstanceCount:  50,
		}},
		UI: ui.PaintList{ScreenSize: image.Pt(800, 600), Overlay: image.NewRGBA(image.Rect(0, 0, 800, 600)), Changed: true},
	}

	require.NoError(t, h.r.RenderFrame(in))
	assert.True(t, uploaded)
	assert.Equal(t, []State{StateAcquiring, StateEncoding, StateSubmitted, StatePresented, StateIdle}, states)
	assert.Equal(t, StateIdle, h.r.State())

	require.Len(t, h.queue.Submissions, 1, "scene and ui are submitted in one call")
	submitted := h.queue.Submissions[0]
	require.Len(t, submitted, 2)
	assert.Equal(t, SceneEncoderLabel, submitted[0].(*gputest.CommandBuffer).Encoder.Label)
	assert.Equal(t, UIEncoderLabel, submitted[1].(*gputest.CommandBuffer).Encoder.Label)
	for _, cb := range submitted {
		assert.True(t, cb.(*gputest.CommandBuffer).Released)
		assert.True(t, cb.(*gputest.CommandBuffer).Encoder.Released)
	}

	require.Len(t, h.surface.Acquired, 1)
	swapchain := h.surface.Acquired[0].Views[0]
	assert.Equal(t, 1, h.surface.Presented)
	assert.True(t, swapchain.Released)

	scene := h.device.EncoderByLabel(SceneEncoderLabel)
	require.Len(t, scene.Passes, 1)
	pass := scene.Passes[0]
	assert.Equal(t, ScenePassLabel, pass.Desc.Label)
	color := pass.Desc.ColorAttachments[0]
	assert.Same(t, h.r.Resources().Color.View, color.View)
	assert.Same(t, swapchain, color.ResolveTarget)
	assert.Equal(t, wgpu.LoadOpClear, color.LoadOp)
	assert.Equal(t, wgpu.Color{A: 1}, color.ClearValue)
	require.NotNil(t, pass.Desc.DepthStencilAttachment)
	assert.Same(t, h.r.Resources().Depth.View, pass.Desc.DepthStencilAttachment.View)
	assert.Equal(t, wgpu.LoadOpClear, pass.Desc.DepthStencilAttachment.DepthLoadOp)
	assert.Equal(t, float32(1.0), pass.Desc.DepthStencilAttachment.DepthClearValue)

	assert.Equal(t, []string{
		"SetPipeline", "SetBindGroup", "SetBindGroup", "SetVertexBuffer", "SetIndexBuffer", "DrawIndexed",
		"SetPipeline", "SetBindGroup", "SetBindGroup", "SetVertexBuffer", "SetBindGroup", "SetVertexBuffer", "SetIndexBuffer", "DrawIndexed",
	}, pass.Ops())
	assert.Same(t, h.r.Pipeline(shader.BackgroundKey).Handle(), pass.Commands[0].Pipeline, "background is drawn first")
	assert.Same(t, h.r.Pipeline(shader.SceneKey).Handle(), pass.Commands[6].Pipeline)
	draws := pass.Draws()
	assert.Equal(t, uint32(1), draws[0].InstanceCount)
	assert.Equal(t, uint32(50), draws[1].InstanceCount)
	assert.Equal(t, uint32(2), pass.Commands[10].Index, "tints bind at slot 2")
	assert.Equal(t, uint32(1), pass.Commands[11].Index, "instances bind at vertex slot 1")

	uiPass := h.device.EncoderByLabel(UIEncoderLabel).Passes[0]
	assert.Equal(t, UIPassLabel, uiPass.Desc.Label)
	require.Len(t, uiPass.Desc.ColorAttachments, 1)
	assert.Same(t, swapchain, uiPass.Desc.ColorAttachments[0].View)
	assert.Equal(t, wgpu.LoadOpLoad, uiPass.Desc.ColorAttachments[0].LoadOp, "the ui pass keeps the scene")
	assert.Nil(t, uiPass.Desc.ColorAttachments[0].ResolveTarget)
	assert.Nil(t, uiPass.Desc.DepthStencilAttachment)
	assert.Len(t, uiPass.Draws(), 1)
	require.Len(t, h.overlay.prepared, 1)
	assert.True(t, h.overlay.prepared[0].Changed)
}

func TestRenderFrameWithoutMSAADrawsToSwapchain(t *testing.T) {
	h := newHarness(t, WithMSAA(MSAAOff))
	require.Nil(t, h.r.Resources().Color)

	require.NoError(t, h.r.RenderFrame(FrameInput{}))
	color := h.device.EncoderByLabel(SceneEncoderLabel).Passes[0].Desc.ColorAttachments[0]
	assert.Same(t, h.surface.Acquired[0].Views[0], color.View)
	assert.Nil(t, color.ResolveTarget)
	assert.Equal(t, wgpu.StoreOpStore, color.StoreOp)
}

func TestRenderFrameMissingPipeline(t *testing.T) {
	h := newHarness(t)

	err := h.r.RenderFrame(FrameInput{Foreground: []DrawItem{{IndexCount: 3}}})
	assert.ErrorIs(t, err, ErrPipelineNotFound)
	assert.Empty(t, h.queue.Submissions)
	assert.Zero(t, h.surface.Presented)
	assert.True(t, h.surface.Acquired[0].Released, "the acquired image is released")
	assert.Equal(t, StateIdle, h.r.State())
}

func TestLostSurfaceSkipsEncodingAndReconfiguresOnce(t *testing.T) {
	h := newHarness(t)
	h.surface.AcquireErrors = []error{errors.New("Surface lost")}
	configs := len(h.surface.Configs)
	depthBefore := h.r.Resources().Depth

	err := h.r.RenderFrame(FrameInput{})
	require.Error(t, err)
	assert.ErrorIs(t, err, surface.ErrLost)
	assert.Empty(t, h.device.Encoders, "no encoder is created")
	assert.Empty(t, h.queue.Submissions)
	assert.Equal(t, StateIdle, h.r.State())

	assert.Equal(t, RecoveryReconfigure, RecoveryFor(err))
	require.NoError(t, h.r.Recover(err))
	require.Len(t, h.surface.Configs, configs+1, "exactly one reconfiguration")
	last := h.surface.Configs[len(h.surface.Configs)-1]
	assert.Equal(t, uint32(800), last.Width)
	assert.Equal(t, uint32(600), last.Height)
	assert.True(t, depthBefore.Texture.(*gputest.Texture).Released)

	require.NoError(t, h.r.RenderFrame(FrameInput{}))
	assert.Len(t, h.queue.Submissions, 1)
}

func TestRecoveryFor(t *testing.T) {
	assert.Equal(t, RecoveryReconfigure, RecoveryFor(surface.Classify(errors.New("lost"))))
	assert.Equal(t, RecoveryExit, RecoveryFor(surface.Classify(errors.New("out of memory"))))
	assert.Equal(t, RecoveryExit, RecoveryFor(surface.Classify(errors.New("device lost"))))
	assert.Equal(t, RecoveryReconfigure, RecoveryFor(ErrStaleResources))
	assert.Equal(t, RecoverySkip, RecoveryFor(surface.Classify(errors.New("outdated"))))
	assert.Equal(t, RecoverySkip, RecoveryFor(surface.Classify(errors.New("timeout"))))
	assert.Equal(t, RecoverySkip, RecoveryFor(surface.Classify(errors.New("driver hiccup"))))
	assert.Equal(t, RecoverySkip, RecoveryFor(errors.New("unclassified")))
	assert.Equal(t, RecoverySkip, RecoveryFor(nil))
}

func TestRecoverOutOfMemoryStops(t *testing.T) {
	h := newHarness(t)
	h.surface.AcquireErrors = []error{errors.New("OutOfMemory")}
	configs := len(h.surface.Configs)

	err := h.r.RenderFrame(FrameInput{})
	assert.ErrorIs(t, h.r.Recover(err), surface.ErrOutOfMemory)
	assert.Len(t, h.surface.Configs, configs)
}

func TestRecoverTransientSkips(t *testing.T) {
	h := newHarness(t)
	h.surface.AcquireErrors = []error{errors.New("Outdated"), errors.New("Timeout")}
	configs := len(h.surface.Configs)

	for range 2 {
		err := h.r.RenderFrame(FrameInput{})
		require.Error(t, err)
		assert.NoError(t, h.r.Recover(err))
	}
	assert.Len(t, h.surface.Configs, configs)
	assert.Empty(t, h.device.Encoders)
}

func TestResizeZeroIsNoOp(t *testing.T) {
	h := newHarness(t)
	configs := len(h.surface.Configs)
	textures := len(h.device.Textures)
	called := false
	h.r.OnResize(func(uint32, uint32) { called = true })

	require.NoError(t, h.r.Resize(0, 600))
	require.NoError(t, h.r.Resize(800, 0))

	assert.Len(t, h.surface.Configs, configs)
	assert.Len(t, h.device.Textures, textures)
	assert.False(t, called)
	assert.Empty(t, h.overlay.resizes)
}

func TestResizeRebuildsResources(t *testing.T) {
	h := newHarness(t)
	stale := h.r.Resources()
	var order []string
	h.r.OnResize(func(w, hgt uint32) {
		assert.Equal(t, uint32(1024), w)
		assert.Equal(t, uint32(768), hgt)
		assert.Equal(t, uint32(1024), h.r.Resources().Width, "listeners see the rebuilt resources")
		order = append(order, "camera")
	})

	require.NoError(t, h.r.Resize(1024, 768))
	order = append(order, "done")

	cfg := h.surface.Configs[len(h.surface.Configs)-1]
	assert.Equal(t, uint32(1024), cfg.Width)
	assert.Equal(t, uint32(768), cfg.Height)

	fr := h.r.Resources()
	assert.NotSame(t, stale, fr)
	assert.Equal(t, uint32(1024), fr.Width)
	assert.Equal(t, uint32(768), fr.Height)
	assert.Equal(t, uint32(4), fr.SampleCount)
	assert.Equal(t, uint32(1024), fr.Depth.Texture.Width())
	assert.Equal(t, uint32(4), fr.Color.Texture.SampleCount())
	assert.Nil(t, stale.Depth, "stale resources are released")

	assert.Equal(t, []string{"camera", "done"}, order)
	assert.Equal(t, [][2]uint32{{1024, 768}}, h.overlay.resizes)
}

func TestFailedResizeNeverRendersWithStaleResources(t *testing.T) {
	h := newHarness(t)
	stale := h.r.Resources()
	called := false
	h.r.OnResize(func(uint32, uint32) { called = true })

	h.device.Errors["Texture"] = errors.New("out of memory")
	require.Error(t, h.r.Resize(1024, 768))
	assert.Nil(t, h.r.Resources())
	assert.Nil(t, stale.Depth, "the pre-resize resources are released")
	assert.False(t, called)

	acquired := len(h.surface.Acquired)
	err := h.r.RenderFrame(FrameInput{})
	assert.ErrorIs(t, err, ErrStaleResources)
	assert.Len(t, h.surface.Acquired, acquired, "nothing is acquired")
	assert.Empty(t, h.queue.Submissions)
	assert.Equal(t, StateIdle, h.r.State())

	delete(h.device.Errors, "Texture")
	require.NoError(t, h.r.Recover(err))
	fr := h.r.Resources()
	require.NotNil(t, fr)
	assert.Equal(t, uint32(1024), fr.Width)
	assert.Equal(t, uint32(768), fr.Height)
	assert.True(t, called)

	require.NoError(t, h.r.RenderFrame(FrameInput{}))
	assert.Len(t, h.queue.Submissions, 1)
}

func TestRegisterPipelinesSkipsExistingKeys(t *testing.T) {
	h := newHarness(t)
	h.registerFakePipelines(t)
	h.registerFakePipelines(t)
	assert.Len(t, h.device.Pipelines, 2)
}

func TestRegisterScenePipelines(t *testing.T) {
	h := newHarness(t)
	vertex := wgpu.VertexBufferLayout{ArrayStride: 32, StepMode: wgpu.VertexStepModeVertex}
	instance := wgpu.VertexBufferLayout{ArrayStride: 64, StepMode: wgpu.VertexStepModeInstance}

	require.NoError(t, h.r.RegisterScenePipelines(vertex, instance))

	scene := h.r.Pipeline(shader.SceneKey)
	require.NotNil(t, scene)
	assert.Equal(t, uint32(4), scene.SampleCount())
	assert.Equal(t, wgpu.TextureFormatBGRA8UnormSrgb, scene.ColorFormat())
	assert.Equal(t, frame_resources.DepthFormat, scene.DepthFormat())
	require.NotNil(t, h.r.Pipeline(shader.BackgroundKey))
}

func TestReleaseFreesOwnedObjects(t *testing.T) {
	h := newHarness(t)
	h.registerFakePipelines(t)
	depth := h.r.Resources().Depth.Texture.(*gputest.Texture)

	h.r.Release()
	assert.True(t, h.overlay.released)
	assert.True(t, depth.Released)
	assert.True(t, h.device.Buffers[0].Released, "camera buffer")
	for _, l := range h.device.Layouts {
		assert.True(t, l.Released, l.Label)
	}
	for _, p := range h.device.Pipelines {
		assert.True(t, p.Released, p.Label)
	}
}

func TestDefaultOverlayIsBuilt(t *testing.T) {
	surf := gputest.NewSurface(wgpu.TextureFormatBGRA8UnormSrgb)
	neg := gputest.NewNegotiator(surf)
	session, err := surface.Initialize(context.Background(), neg, gputest.Target{}, 640, 480)
	require.NoError(t, err)

	r, err := New(session)
	require.NoError(t, err)
	assert.IsType(t, &ui.OverlayRenderer{}, r.overlay)
	require.Len(t, neg.Device.Pipelines, 1)
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleStrip, neg.Device.Pipelines[0].Desc.Primitive.Topology)
}
