package frame_resources

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-boids/engine/gpu"
	"github.com/Carmen-Shannon/oxy-boids/engine/gpu/gputest"
	"github.com/Carmen-Shannon/oxy-boids/engine/renderer/surface"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testConfig = surface.Config{
	Format: wgpu.TextureFormatBGRA8UnormSrgb,
	Width:  800,
	Height: 600,
}

func TestRebuildMultisampled(t *testing.T) {
	ctx, device, _ := gputest.NewContext()

	fr, err := Rebuild(ctx, testConfig, DepthFormat, 4)
	require.NoError(t, err)
	require.Len(t, device.Textures, 2)

	depth := device.TexturesByLabel(depthLabel)[0]
	assert.Equal(t, DepthFormat, depth.Desc.Format)
	assert.Equal(t, uint32(4), depth.Desc.SampleCount)
	assert.Equal(t, uint32(800), depth.Width())
	assert.Equal(t, uint32(600), depth.Height())

	color := device.TexturesByLabel(colorLabel)[0]
	assert.Equal(t, testConfig.Format, color.Desc.Format)
	assert.Equal(t, uint32(4), color.Desc.SampleCount)
	assert.Equal(t, uint32(800), color.Width())

	swapchain := &gputest.TextureView{}
	view, resolve := fr.ColorTargets(swapchain)
	assert.Same(t, fr.Color.View, view)
	assert.Same(t, swapchain, resolve)
	assert.Equal(t, uint32(4), fr.SampleCount)
}

func TestRebuildSingleSampled(t *testing.T) {
	ctx, device, _ := gputest.NewContext()

	fr, err := Rebuild(ctx, testConfig, DepthFormat, 1)
	require.NoError(t, err)
	require.Len(t, device.Textures, 1)
	assert.Nil(t, fr.Color)
	assert.Equal(t, uint32(1), device.Textures[0].Desc.SampleCount)

	swapchain := &gputest.TextureView{}
	view, resolve := fr.ColorTargets(swapchain)
	assert.Same(t, swapchain, view)
	assert.Nil(t, resolve)
}

func TestRebuildNeverReuses(t *testing.T) {
	ctx, device, _ := gputest.NewContext()

	first, err := Rebuild(ctx, testConfig, DepthFormat, 4)
	require.NoError(t, err)
	resized := testConfig
	resized.Width, resized.Height = 1280, 720
	second, err := Rebuild(ctx, resized, DepthFormat, 4)
	require.NoError(t, err)

	assert.NotSame(t, first.Depth.Texture, second.Depth.Texture)
	assert.Equal(t, uint32(1280), second.Width)
	assert.Len(t, device.Textures, 4)

	first.Release()
	assert.True(t, device.Textures[0].Released)
	assert.True(t, device.Textures[1].Released)
	assert.False(t, device.Textures[2].Released)
	assert.False(t, device.Textures[3].Released)
}

func TestRebuildReleasesDepthWhenColorFails(t *testing.T) {
	device := gputest.NewDevice()
	ctx := gpu.NewContext(&failSecondTexture{Device: device}, &gputest.Queue{})

	_, err := Rebuild(ctx, testConfig, DepthFormat, 4)
	require.Error(t, err)
	require.Len(t, device.Textures, 1)
	assert.True(t, device.Textures[0].Released)
	assert.True(t, device.Textures[0].Views[0].Released)
}

type failSecondTexture struct {
	*gputest.Device
}

func (f *failSecondTexture) CreateTexture(desc *wgpu.TextureDescriptor) (gpu.Texture, error) {
	if len(f.Textures) == 1 {
		return nil, errors.New("out of memory")
	}
	return f.Device.CreateTexture(desc)
}

func TestRebuildUsesRequestedDepthFormat(t *testing.T) {
	ctx, device, _ := gputest.NewContext()

	fr, err := Rebuild(ctx, testConfig, wgpu.TextureFormatDepth32Float, 1)
	require.NoError(t, err)
	assert.Equal(t, wgpu.TextureFormatDepth32Float, device.TexturesByLabel(depthLabel)[0].Desc.Format)
	assert.True(t, fr.Matches(testConfig))

	resized := testConfig
	resized.Width = 1024
	assert.False(t, fr.Matches(resized))

	var missing *FrameResources
	assert.False(t, missing.Matches(testConfig))
}
