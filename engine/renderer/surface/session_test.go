package surface

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Carmen-Shannon/oxy-boids/engine/gpu/gputest"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession(t *testing.T, formats ...wgpu.TextureFormat) (*Session, *gputest.Negotiator) {
	t.Helper()
	n := gputest.NewNegotiator(gputest.NewSurface(formats...))
	s, err := Initialize(context.Background(), n, gputest.Target{}, 800, 600)
	require.NoError(t, err)
	return s, n
}

func TestInitializePrefersSRGB(t *testing.T) {
	s, n := newSession(t, wgpu.TextureFormatBGRA8Unorm, wgpu.TextureFormatBGRA8UnormSrgb)

	cfg := s.Config()
	assert.Equal(t, wgpu.TextureFormatBGRA8UnormSrgb, cfg.Format)
	assert.Equal(t, uint32(800), cfg.Width)
	assert.Equal(t, uint32(600), cfg.Height)
	assert.Equal(t, wgpu.PresentModeFifo, cfg.PresentMode)
	assert.Equal(t, wgpu.CompositeAlphaModeOpaque, cfg.AlphaMode)

	require.Len(t, n.Surface.Configs, 1)
	assert.Equal(t, wgpu.TextureUsageRenderAttachment, n.Surface.Configs[0].Usage)
	assert.Equal(t, cfg.Format, n.Surface.Configs[0].Format)
	assert.Equal(t, 1, n.Calls)
	assert.Same(t, n.Device, s.Context().Device)
}

func TestInitializeFallsBackToFirstFormat(t *testing.T) {
	s, _ := newSession(t, wgpu.TextureFormatRGBA16Float, wgpu.TextureFormatBGRA8Unorm)
	assert.Equal(t, wgpu.TextureFormatRGBA16Float, s.Config().Format)
}

func TestInitializeOptions(t *testing.T) {
	n := gputest.NewNegotiator(gputest.NewSurface(wgpu.TextureFormatBGRA8UnormSrgb))
	s, err := Initialize(context.Background(), n, gputest.Target{}, 640, 480,
		WithPresentMode(wgpu.PresentModeImmediate),
		WithForceFallbackAdapter(true),
		WithPowerPreference(wgpu.PowerPreferenceHighPerformance),
	)
	require.NoError(t, err)
	assert.Equal(t, wgpu.PresentModeImmediate, s.Config().PresentMode)
	assert.True(t, n.Options.ForceFallbackAdapter)
	assert.Equal(t, wgpu.PowerPreferenceHighPerformance, n.Options.PowerPreference)

	n = gputest.NewNegotiator(gputest.NewSurface(wgpu.TextureFormatBGRA8UnormSrgb))
	s, err = Initialize(context.Background(), n, gputest.Target{}, 640, 480, WithPresentMode(wgpu.PresentModeMailbox))
	require.NoError(t, err)
	assert.Equal(t, wgpu.PresentModeFifo, s.Config().PresentMode, "unsupported mode falls back to the first supported")
}

func TestInitializeFailures(t *testing.T) {
	n := gputest.NewNegotiator(gputest.NewSurface(wgpu.TextureFormatBGRA8UnormSrgb))
	n.Err = errors.New("no adapter")
	_, err := Initialize(context.Background(), n, gputest.Target{}, 640, 480)
	assert.ErrorIs(t, err, n.Err)

	n = gputest.NewNegotiator(gputest.NewSurface())
	_, err = Initialize(context.Background(), n, gputest.Target{}, 640, 480)
	assert.ErrorIs(t, err, ErrNoCompatibleFormat)
	assert.True(t, n.Surface.Released)
	assert.True(t, n.Device.Released)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	n = gputest.NewNegotiator(gputest.NewSurface(wgpu.TextureFormatBGRA8UnormSrgb))
	_, err = Initialize(ctx, n, gputest.Target{}, 640, 480)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResizeIgnoresZeroDimensions(t *testing.T) {
	s, n := newSession(t, wgpu.TextureFormatBGRA8UnormSrgb)
	before := s.Config()

	assert.False(t, s.Resize(0, 600))
	assert.False(t, s.Resize(800, 0))
	assert.Equal(t, before, s.Config())
	assert.Len(t, n.Surface.Configs, 1)
}

func TestResizeReconfigures(t *testing.T) {
	s, n := newSession(t, wgpu.TextureFormatBGRA8UnormSrgb)

	assert.True(t, s.Resize(1024, 768))
	assert.Equal(t, uint32(1024), s.Config().Width)
	assert.Equal(t, uint32(768), s.Config().Height)
	require.Len(t, n.Surface.Configs, 2)
	assert.Equal(t, uint32(1024), n.Surface.Configs[1].Width)
	assert.Equal(t, uint32(768), n.Surface.Configs[1].Height)
	assert.Equal(t, s.Config().Format, n.Surface.Configs[1].Format)
}

func TestAcquireAndPresent(t *testing.T) {
	s, n := newSession(t, wgpu.TextureFormatBGRA8UnormSrgb)

	frame, err := s.AcquireFrame()
	require.NoError(t, err)
	require.Len(t, n.Surface.Acquired, 1)
	texture := n.Surface.Acquired[0]
	require.Len(t, texture.Views, 1)
	assert.Equal(t, uint32(800), texture.Width())

	s.Present(frame)
	assert.Equal(t, 1, n.Surface.Presented)
	assert.True(t, texture.Released)
	assert.True(t, texture.Views[0].Released)
}

func TestAcquireClassifiesFailures(t *testing.T) {
	s, n := newSession(t, wgpu.TextureFormatBGRA8UnormSrgb)
	n.Surface.AcquireErrors = []error{
		errors.New("Surface texture status: Lost"),
		errors.New("OutOfMemory"),
		ErrOutdated,
		errors.New("timeout waiting for image"),
		errors.New("something else"),
	}

	for _, want := range []error{ErrLost, ErrOutOfMemory, ErrOutdated, ErrTimeout, ErrOther} {
		frame, err := s.AcquireFrame()
		assert.Nil(t, frame)
		assert.ErrorIs(t, err, want)
	}
	assert.Empty(t, n.Surface.Acquired)
}

func TestClassifyKeepsExistingKind(t *testing.T) {
	assert.Nil(t, Classify(nil))

	inner := &Error{Kind: KindTimeout, Err: errors.New("lost in translation")}
	wrapped := fmt.Errorf("frame: %w", inner)
	assert.Same(t, inner, Classify(wrapped))

	kind, ok := KindOf(wrapped)
	assert.True(t, ok)
	assert.Equal(t, KindTimeout, kind)

	_, ok = KindOf(errors.New("plain"))
	assert.False(t, ok)
}

func TestClassifyDeviceLostBeforeSurfaceLost(t *testing.T) {
	for _, msg := range []string{
		"wgpu.(*Surface).GetCurrentTexture(): device lost",
		"Surface texture status: device-lost",
		"DeviceLost",
	} {
		err := Classify(errors.New(msg))
		assert.Equal(t, KindDeviceLost, err.Kind, msg)
		assert.ErrorIs(t, err, ErrDeviceLost)
		assert.NotErrorIs(t, err, ErrLost)
	}
	assert.Equal(t, KindLost, Classify(errors.New("Surface lost")).Kind)
	assert.Equal(t, "device lost", KindDeviceLost.String())
}
