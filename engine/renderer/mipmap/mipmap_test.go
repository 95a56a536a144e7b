package mipmap

import (
	"image"
	"testing"

	"github.com/Carmen-Shannon/oxy-boids/engine/gpu"
	"github.com/Carmen-Shannon/oxy-boids/engine/gpu/gputest"
	"github.com/Carmen-Shannon/oxy-boids/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-boids/engine/renderer/texture"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGenerator(t *testing.T) (*Generator, *gpu.Context, *gputest.Device) {
	t.Helper()
	ctx, device, _ := gputest.NewContext()
	layout, err := bind_group_provider.NewLayout(device, "texture_bind_group_layout", []gpu.BindGroupLayoutEntry{
		{Binding: 0, Visibility: wgpu.ShaderStageFragment, Type: gpu.SampledTexture2D()},
		{Binding: 1, Visibility: wgpu.ShaderStageFragment, Type: gpu.FilteringSampler()},
	})
	require.NoError(t, err)
	g, err := NewGenerator(ctx, layout, texture.DefaultFormat)
	require.NoError(t, err)
	return g, ctx, device
}

func newTexture(t *testing.T, ctx *gpu.Context, label string, w, h int) *texture.Texture {
	t.Helper()
	tex, err := texture.FromImage(ctx, label, image.NewRGBA(image.Rect(0, 0, w, h)), texture.SamplerOptions{})
	require.NoError(t, err)
	return tex
}

func mipViews(tex *texture.Texture) []*gputest.TextureView {
	var out []*gputest.TextureView
	for _, v := range tex.Handle.(*gputest.Texture).Views {
		if v.Desc.MipLevelCount == 1 && v.Desc.Dimension == wgpu.TextureViewDimension2D {
			out = append(out, v)
		}
	}
	return out
}

func TestNewGeneratorPipeline(t *testing.T) {
	_, _, device := newGenerator(t)

	require.Len(t, device.Pipelines, 1)
	desc := device.Pipelines[0].Desc
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleStrip, desc.Primitive.Topology)
	assert.Nil(t, desc.DepthStencil)
	assert.Equal(t, uint32(1), desc.Multisample.Count)
	assert.Equal(t, texture.DefaultFormat, desc.Targets[0].Format)
	assert.Equal(t, wgpu.BlendStateReplace, *desc.Targets[0].Blend)

	require.Len(t, device.Samplers, 1)
	assert.Equal(t, wgpu.AddressModeClampToEdge, device.Samplers[0].Desc.AddressModeU)
	assert.Equal(t, wgpu.FilterModeLinear, device.Samplers[0].Desc.MinFilter)
}

func TestGenerate512(t *testing.T) {
	g, ctx, device := newGenerator(t)
	tex := newTexture(t, ctx, "fish", 512, 512)

	cb, err := g.Generate([]*texture.Texture{tex})
	require.NoError(t, err)
	require.NotNil(t, cb)

	encoder := device.EncoderByLabel(encoderLabel)
	require.NotNil(t, encoder)
	assert.True(t, encoder.Finished)
	assert.True(t, encoder.Released)
	require.Len(t, encoder.Passes, 9)

	views := mipViews(tex)
	require.Len(t, views, 10)
	for level, v := range views {
		assert.Equal(t, uint32(level), v.Desc.BaseMipLevel)
		assert.True(t, v.Released, "transient view %d is released", level)
	}

	blitGroups := device.Groups
	require.Len(t, blitGroups, 9)

	for i, pass := range encoder.Passes {
		target := i + 1
		require.Len(t, pass.Desc.ColorAttachments, 1)
		att := pass.Desc.ColorAttachments[0]
		assert.Same(t, views[target], att.View)
		assert.Equal(t, wgpu.LoadOpClear, att.LoadOp)
		assert.Equal(t, wgpu.StoreOpStore, att.StoreOp)
		assert.Equal(t, wgpu.Color{R: 0, G: 0, B: 0, A: 1}, att.ClearValue)
		assert.Nil(t, pass.Desc.DepthStencilAttachment)

		assert.Equal(t, []string{"SetPipeline", "SetBindGroup", "Draw"}, pass.Ops())
		draws := pass.Draws()
		require.Len(t, draws, 1)
		assert.Equal(t, uint32(4), draws[0].Count)
		assert.Equal(t, uint32(1), draws[0].InstanceCount)

		group := blitGroups[i]
		assert.Same(t, views[target-1], group.Desc.Entries[0].Resource.TextureView, "level %d samples level %d", target, target-1)
		assert.Same(t, device.Samplers[0], group.Desc.Entries[1].Resource.Sampler)
		assert.Same(t, group, pass.Commands[1].Group)
		assert.True(t, group.Released)
	}
}

func TestGenerateOneByOneHasNoPasses(t *testing.T) {
	g, ctx, device := newGenerator(t)
	tex := newTexture(t, ctx, "dot", 1, 1)

	_, err := g.Generate([]*texture.Texture{tex})
	require.NoError(t, err)
	assert.Empty(t, device.EncoderByLabel(encoderLabel).Passes)
	assert.Len(t, mipViews(tex), 1)
}

func TestGenerateEmptyList(t *testing.T) {
	g, _, device := newGenerator(t)

	cb, err := g.Generate(nil)
	require.NoError(t, err)
	require.NotNil(t, cb)
	assert.Empty(t, device.EncoderByLabel(encoderLabel).Passes)
}

func TestGenerateSharesOneEncoder(t *testing.T) {
	g, ctx, device := newGenerator(t)
	textures := []*texture.Texture{
		newTexture(t, ctx, "fish", 256, 256),
		newTexture(t, ctx, "aquarium", 300, 150),
	}

	_, err := g.Generate(textures)
	require.NoError(t, err)
	require.Len(t, device.Encoders, 1)
	assert.Len(t, device.Encoders[0].Passes, 8+8)
}

func TestGeneratorRelease(t *testing.T) {
	g, _, device := newGenerator(t)
	g.Release()
	assert.True(t, device.Pipelines[0].Released)
	assert.True(t, device.Samplers[0].Released)
	assert.False(t, device.Layouts[0].Released)
}
