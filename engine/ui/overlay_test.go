package ui

import (
	"image"
	"testing"

	"github.com/Carmen-Shannon/oxy-boids/engine/gpu"
	"github.com/Carmen-Shannon/oxy-boids/engine/gpu/gputest"
	"github.com/Carmen-Shannon/oxy-boids/engine/renderer/bind_group_provider"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOverlay(t *testing.T) (*OverlayRenderer, *gputest.Device, *gputest.Queue) {
	t.Helper()
	ctx, device, queue := gputest.NewContext()
	layout, err := bind_group_provider.NewLayout(device, "texture_bind_group_layout", []gpu.BindGroupLayoutEntry{
		{Binding: 0, Visibility: wgpu.ShaderStageFragment, Type: gpu.SampledTexture2D()},
		{Binding: 1, Visibility: wgpu.ShaderStageFragment, Type: gpu.FilteringSampler()},
	})
	require.NoError(t, err)
	o, err := NewOverlayRenderer(ctx, layout, wgpu.TextureFormatBGRA8UnormSrgb)
	require.NoError(t, err)
	return o, device, queue
}

func paint(w, h int, changed bool) PaintList {
	return PaintList{
		ScreenSize: image.Pt(w, h),
		Overlay:    image.NewRGBA(image.Rect(0, 0, w, h)),
		Changed:    changed,
	}
}

func TestNopSession(t *testing.T) {
	var s Session = NopSession{}
	s.BeginFrame(0)
	assert.False(t, s.DispatchInput(Event{Kind: EventScroll, ScrollY: 1}))
	assert.True(t, s.EndFrame().Empty())
}

func TestOverlayPipeline(t *testing.T) {
	_, device, _ := newOverlay(t)

	require.Len(t, device.Pipelines, 1)
	desc := device.Pipelines[0].Desc
	assert.Nil(t, desc.DepthStencil)
	assert.Equal(t, uint32(1), desc.Multisample.Count)
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleStrip, desc.Primitive.Topology)
	assert.Equal(t, wgpu.BlendFactorOne, desc.Targets[0].Blend.Color.SrcFactor)
	assert.Equal(t, wgpu.BlendFactorOneMinusSrcAlpha, desc.Targets[0].Blend.Color.DstFactor)
}

func TestOverlayEmptyPaintDrawsNothing(t *testing.T) {
	o, device, queue := newOverlay(t)

	require.NoError(t, o.Prepare(PaintList{}))
	pass := &gputest.RenderPass{}
	o.Draw(pass)
	assert.Empty(t, pass.Commands)
	assert.Empty(t, device.Textures)
	assert.Empty(t, queue.TextureWrites)
}

func TestOverlayUploadsOnlyWhenChanged(t *testing.T) {
	o, device, queue := newOverlay(t)

	require.NoError(t, o.Prepare(paint(320, 200, true)))
	require.Len(t, device.Textures, 1)
	assert.Equal(t, uint32(320), device.Textures[0].Width())
	assert.Equal(t, wgpu.TextureFormatRGBA8Unorm, device.Textures[0].Desc.Format, "premultiplied bytes are sampled as written")
	require.Len(t, queue.TextureWrites, 1)
	assert.Equal(t, uint32(320*4), queue.TextureWrites[0].Layout.BytesPerRow)

	require.NoError(t, o.Prepare(paint(320, 200, false)))
	assert.Len(t, queue.TextureWrites, 1)
	assert.Len(t, device.Textures, 1)

	pass := &gputest.RenderPass{}
	o.Draw(pass)
	assert.Equal(t, []string{"SetPipeline", "SetBindGroup", "Draw"}, pass.Ops())
	assert.Equal(t, uint32(4), pass.Draws()[0].Count)
}

func TestOverlayReallocatesOnResize(t *testing.T) {
	o, device, queue := newOverlay(t)

	require.NoError(t, o.Prepare(paint(320, 200, true)))
	o.Resize(640, 400)
	assert.True(t, device.Textures[0].Released)
	assert.True(t, device.Groups[0].Released)

	pass := &gputest.RenderPass{}
	o.Draw(pass)
	assert.Empty(t, pass.Commands, "nothing is drawn until the next paint list is prepared")

	require.NoError(t, o.Prepare(paint(640, 400, false)))
	require.Len(t, device.Textures, 2)
	assert.Equal(t, uint32(640), device.Textures[1].Width())
	assert.Len(t, queue.TextureWrites, 2, "a fresh texture is always uploaded")
}

func TestOverlayRelease(t *testing.T) {
	o, device, _ := newOverlay(t)
	require.NoError(t, o.Prepare(paint(8, 8, true)))

	o.Release()
	assert.True(t, device.Textures[0].Released)
	assert.True(t, device.Pipelines[0].Released)
	assert.True(t, device.Samplers[0].Released)
	assert.False(t, device.Layouts[0].Released)
}
