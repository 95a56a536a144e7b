package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-boids/common"
	"github.com/Carmen-Shannon/oxy-boids/engine/config"
	"github.com/Carmen-Shannon/oxy-boids/engine/gpu/gputest"
	"github.com/Carmen-Shannon/oxy-boids/engine/renderer"
	"github.com/Carmen-Shannon/oxy-boids/engine/renderer/surface"
	"github.com/Carmen-Shannon/oxy-boids/engine/ui"
	"github.com/Carmen-Shannon/oxy-boids/engine/ui/ggui"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeWindow runs a scripted message loop: before iteration i it emits script[i], then calls the
// update callback, for at most frames iterations.
type fakeWindow struct {
	gputest.Target
	width, height int
	frames        int
	script        map[int][]ui.Event

	onUpdate   func()
	onEvent    func(ui.Event)
	running    bool
	closed     bool
	iterations int
}

func (w *fakeWindow) SetUpdateCallback(callback func())         { w.onUpdate = callback }
func (w *fakeWindow) SetEventCallback(callback func(ui.Event)) { w.onEvent = callback }
func (w *fakeWindow) IsRunning() bool                          { return w.running }
func (w *fakeWindow) RequestClose()                            { w.running = false }
func (w *fakeWindow) Width() int                               { return w.width }
func (w *fakeWindow) Height() int                              { return w.height }

func (w *fakeWindow) Close() error {
	w.closed = true
	return nil
}

func (w *fakeWindow) ProcessMessages() {
	for w.running && w.iterations < w.frames {
		for _, ev := range w.script[w.iterations] {
			w.onEvent(ev)
		}
		w.iterations++
		w.onUpdate()
	}
}

// consumingSession is a UI that swallows every event.
type consumingSession struct{ ui.NopSession }

func (consumingSession) DispatchInput(ui.Event) bool { return true }

type harness struct {
	engine  Engine
	window  *fakeWindow
	neg     *gputest.Negotiator
	surface *gputest.Surface
}

func newHarness(t *testing.T, cfg config.Config, frames int, options ...EngineBuilderOption) *harness {
	t.Helper()
	surf := gputest.NewSurface(wgpu.TextureFormatBGRA8UnormSrgb)
	neg := gputest.NewNegotiator(surf)
	w := &fakeWindow{width: 800, height: 400, frames: frames, running: true, script: map[int][]ui.Event{}}

	clock := time.Unix(0, 0)
	now := func() time.Time {
		clock = clock.Add(16 * time.Millisecond)
		return clock
	}

	e, err := NewEngine(context.Background(), cfg, append([]EngineBuilderOption{
		WithWindow(w),
		WithNegotiator(neg),
		WithClock(now),
	}, options...)...)
	require.NoError(t, err)
	t.Cleanup(e.Release)
	return &harness{engine: e, window: w, neg: neg, surface: surf}
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Scene.FishCount = 4
	cfg.Scene.Seed = 9
	return cfg
}

func TestNewEngineBuildsFromConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Renderer.ForceFallbackAdapter = true
	h := newHarness(t, cfg, 0)

	assert.Equal(t, 1, h.neg.Calls)
	assert.True(t, h.neg.Options.ForceFallbackAdapter)
	assert.Equal(t, renderer.MSAA4x, h.engine.Renderer().Config().MSAA)
	assert.Equal(t, SceneName, h.engine.Scene().Name())
	assert.Equal(t, 4, h.engine.Scene().Flock().Count())
	assert.IsType(t, &ggui.Session{}, h.engine.UI())
	assert.NotNil(t, h.engine.Profiler())
	assert.NotNil(t, h.window.onUpdate)
	assert.NotNil(t, h.window.onEvent)
}

func TestOverlayNoneUsesNopSession(t *testing.T) {
	cfg := testConfig()
	cfg.UI.Overlay = config.OverlayNone
	h := newHarness(t, cfg, 0)

	assert.Equal(t, ui.NopSession{}, h.engine.UI())
}

func TestNewEngineRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Renderer.MSAA = 3
	neg := gputest.NewNegotiator(gputest.NewSurface(wgpu.TextureFormatBGRA8UnormSrgb))

	_, err := NewEngine(context.Background(), cfg, WithWindow(&fakeWindow{width: 1, height: 1}), WithNegotiator(neg))
	assert.ErrorIs(t, err, config.ErrInvalid)
	assert.Zero(t, neg.Calls)
}

func TestNewEngineReportsNegotiationFailure(t *testing.T) {
	w := &fakeWindow{width: 1, height: 1}
	neg := gputest.NewNegotiator(gputest.NewSurface(wgpu.TextureFormatBGRA8UnormSrgb))
	neg.Err = errors.New("no adapter")

	_, err := NewEngine(context.Background(), testConfig(), WithWindow(w), WithNegotiator(neg))
	assert.ErrorContains(t, err, "no adapter")
	assert.False(t, w.closed, "a supplied window is left to the caller")
}

func TestRunRendersOneFramePerIteration(t *testing.T) {
	h := newHarness(t, testConfig(), 3)
	submissions := len(h.neg.Queue.Submissions)

	require.NoError(t, h.engine.Run())
	assert.Equal(t, 3, h.window.iterations)
	assert.Equal(t, 3, h.surface.Presented)
	assert.Len(t, h.neg.Queue.Submissions, submissions+3)
	for _, s := range h.neg.Queue.Submissions[submissions:] {
		assert.Len(t, s, 2, "scene and UI are submitted together")
	}
}

func TestEscapeClosesWindow(t *testing.T) {
	h := newHarness(t, testConfig(), 5)
	h.window.script[0] = []ui.Event{{Kind: ui.EventKey, Key: common.KeyEscape, Pressed: true}}

	require.NoError(t, h.engine.Run())
	assert.Equal(t, 1, h.window.iterations)
	assert.False(t, h.window.running)
}

func TestSpaceTogglesAutoRotate(t *testing.T) {
	h := newHarness(t, testConfig(), 2)
	h.window.script[0] = []ui.Event{{Kind: ui.EventKey, Key: common.KeySpace, Pressed: true}}
	controller := h.engine.Scene().Controller()
	require.False(t, controller.AutoRotate())

	require.NoError(t, h.engine.Run())
	assert.True(t, controller.AutoRotate())
}

func TestResizeEventResizesRendererAndCamera(t *testing.T) {
	h := newHarness(t, testConfig(), 1)
	h.window.script[0] = []ui.Event{{Kind: ui.EventResize, Width: 300, Height: 300}}

	require.NoError(t, h.engine.Run())
	res := h.engine.Renderer().Resources()
	assert.Equal(t, uint32(300), res.Width)
	assert.Equal(t, uint32(300), res.Height)
	assert.InDelta(t, 1.0, h.engine.Scene().Camera().Aspect(), 1e-6)
}

func TestMinimizedWindowKeepsResources(t *testing.T) {
	h := newHarness(t, testConfig(), 1)
	h.window.script[0] = []ui.Event{{Kind: ui.EventResize, Width: 0, Height: 0}}
	before := h.engine.Renderer().Resources()

	require.NoError(t, h.engine.Run())
	assert.Same(t, before, h.engine.Renderer().Resources())
}

func TestUnconsumedScrollZoomsCamera(t *testing.T) {
	cfg := testConfig()
	cfg.UI.Overlay = config.OverlayNone
	h := newHarness(t, cfg, 1)
	h.window.script[0] = []ui.Event{{Kind: ui.EventScroll, ScrollY: 1}}
	cam := h.engine.Scene().Camera()
	before := cam.Eye().Sub(cam.Target()).Len()

	require.NoError(t, h.engine.Run())
	assert.Less(t, cam.Eye().Sub(cam.Target()).Len(), before)
}

func TestConsumedInputNeverReachesCamera(t *testing.T) {
	h := newHarness(t, testConfig(), 1, WithUISession(consumingSession{}))
	h.window.script[0] = []ui.Event{
		{Kind: ui.EventScroll, ScrollY: 1},
		{Kind: ui.EventKey, Key: common.KeyEscape, Pressed: true},
	}
	cam := h.engine.Scene().Camera()
	before := cam.Eye()

	require.NoError(t, h.engine.Run())
	assert.Equal(t, before, cam.Eye())
	assert.True(t, h.window.running, "escape was consumed by the UI")
}

func TestOutOfMemoryStopsRun(t *testing.T) {
	h := newHarness(t, testConfig(), 5)
	h.surface.AcquireErrors = []error{errors.New("OutOfMemory")}

	err := h.engine.Run()
	assert.ErrorIs(t, err, surface.ErrOutOfMemory)
	assert.Equal(t, 1, h.window.iterations)
	assert.Zero(t, h.surface.Presented)
}

func TestLostSurfaceRecoversAndContinues(t *testing.T) {
	h := newHarness(t, testConfig(), 3)
	h.surface.AcquireErrors = []error{errors.New("Surface lost")}

	require.NoError(t, h.engine.Run())
	assert.Equal(t, 3, h.window.iterations)
	assert.Equal(t, 2, h.surface.Presented)
}

func TestReleaseLeavesSuppliedWindowOpen(t *testing.T) {
	h := newHarness(t, testConfig(), 0)
	h.engine.Release()

	assert.False(t, h.window.closed)
	assert.True(t, h.surface.Released)
}
