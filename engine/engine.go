// Package engine wires the window, the surface session, the frame renderer, the aquarium scene and
// the UI overlay together and drives them from one tick loop on the window's thread.
package engine

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/Carmen-Shannon/oxy-boids/common"
	"github.com/Carmen-Shannon/oxy-boids/engine/config"
	"github.com/Carmen-Shannon/oxy-boids/engine/gpu"
	"github.com/Carmen-Shannon/oxy-boids/engine/profiler"
	"github.com/Carmen-Shannon/oxy-boids/engine/renderer"
	"github.com/Carmen-Shannon/oxy-boids/engine/renderer/surface"
	"github.com/Carmen-Shannon/oxy-boids/engine/scene"
	"github.com/Carmen-Shannon/oxy-boids/engine/ui"
	"github.com/Carmen-Shannon/oxy-boids/engine/ui/ggui"
	"github.com/Carmen-Shannon/oxy-boids/engine/window"
)

// SceneName is the name of the aquarium scene the engine builds.
const SceneName = "aquarium"

// engine implements the Engine interface.
// Every field is owned by the goroutine that runs the window's message loop.
type engine struct {
	window     window.Window
	ownsWindow bool
	negotiator gpu.Negotiator

	session  *surface.Session
	renderer *renderer.FrameRenderer
	scene    scene.Scene
	ui       ui.Session
	profiler *profiler.Profiler

	profilerOptions []profiler.ProfilerOption
	now             func() time.Time
	lastTick        time.Time
	pending         []ui.Event
	err             error
}

// Engine is the main entry point for the application.
// It owns the GPU session and everything rendered on it, and runs the frame loop inside the
// window's message loop.
type Engine interface {
	// Window returns the window the engine presents to.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Renderer returns the frame renderer.
	//
	// Returns:
	//   - *renderer.FrameRenderer: the renderer
	Renderer() *renderer.FrameRenderer

	// Scene returns the aquarium scene.
	//
	// Returns:
	//   - scene.Scene: the scene
	Scene() scene.Scene

	// UI returns the UI session that sees input before the scene does.
	//
	// Returns:
	//   - ui.Session: the session
	UI() ui.Session

	// Profiler returns the frame-rate and memory profiler.
	//
	// Returns:
	//   - *profiler.Profiler: the profiler
	Profiler() *profiler.Profiler

	// Run blocks in the window's message loop, rendering one frame per iteration, until the window
	// closes or the renderer reports an unrecoverable error.
	//
	// Returns:
	//   - error: the error that stopped the loop, or nil when the window was closed
	Run() error

	// Quit asks the message loop to stop after the current iteration.
	Quit()

	// Release frees the scene, the renderer, the UI session and the GPU session, and closes the
	// window if the engine created it.
	Release()
}

var _ Engine = &engine{}

// NewEngine builds the engine from cfg. It creates the window (unless one is supplied), negotiates
// the device against it, builds the renderer and the aquarium scene, and creates the UI session
// selected by cfg.UI.Overlay. Negotiation is the only blocking step and honours ctx.
//
// Parameters:
//   - ctx: cancels device negotiation
//   - cfg: the application configuration
//   - options: variadic list of EngineBuilderOption functions to configure the engine
//
// Returns:
//   - Engine: the engine, ready to Run
//   - error: error if cfg is invalid or any startup step fails
func NewEngine(ctx context.Context, cfg config.Config, options ...EngineBuilderOption) (Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rendererConfig, err := cfg.FrameRendererConfig()
	if err != nil {
		return nil, err
	}

	e := &engine{
		negotiator: gpu.WGPUNegotiator{},
		now:        time.Now,
	}
	for _, opt := range options {
		opt(e)
	}

	if e.window == nil {
		e.window = window.NewWindow(
			window.WithTitle(cfg.Window.Title),
			window.WithSize(cfg.Window.Width, cfg.Window.Height),
			window.WithMinSize(cfg.Window.MinWidth, cfg.Window.MinHeight),
		)
		e.ownsWindow = true
	}

	if err := e.build(ctx, cfg, rendererConfig); err != nil {
		e.Release()
		return nil, err
	}

	e.window.SetEventCallback(e.queueEvent)
	e.window.SetUpdateCallback(e.tick)
	return e, nil
}

func (e *engine) build(ctx context.Context, cfg config.Config, rendererConfig renderer.Config) error {
	width, height := uint32(max(e.window.Width(), 0)), uint32(max(e.window.Height(), 0))

	var err error
	e.session, err = surface.Initialize(ctx, e.negotiator, e.window, width, height,
		surface.WithPresentMode(rendererConfig.PresentMode.WGPU()),
		surface.WithForceFallbackAdapter(cfg.Renderer.ForceFallbackAdapter),
	)
	if err != nil {
		return err
	}

	e.renderer, err = renderer.New(e.session, renderer.WithConfig(rendererConfig))
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}

	e.scene, err = scene.NewScene(SceneName, e.renderer,
		scene.WithRadius(cfg.Scene.AquariumRadius),
		scene.WithFishCount(cfg.Scene.FishCount),
		scene.WithFishSpeed(cfg.Scene.FishSpeed),
		scene.WithSeed(cfg.Scene.Seed),
		scene.WithFishTexture(cfg.Scene.FishTexture),
		scene.WithAquariumTexture(cfg.Scene.AquariumTexture),
	)
	if err != nil {
		return fmt.Errorf("failed to build scene: %w", err)
	}

	e.profiler = profiler.NewProfiler(append([]profiler.ProfilerOption{profiler.WithClock(e.now)}, e.profilerOptions...)...)

	if e.ui == nil {
		e.ui, err = newUISession(cfg.UI, e.window, e.profiler, e.scene)
		if err != nil {
			return err
		}
	}
	return nil
}

// newUISession returns the session selected by the overlay setting.
func newUISession(cfg config.UIConfig, w window.Window, p *profiler.Profiler, s scene.Scene) (ui.Session, error) {
	if cfg.Overlay == config.OverlayNone {
		return ui.NopSession{}, nil
	}
	session, err := ggui.New(w.Width(), w.Height(),
		ggui.WithFontSize(cfg.FontSize),
		ggui.WithFPS(p.FPS),
		ggui.WithCameraControls(s.Controller()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create UI session: %w", err)
	}
	return session, nil
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() *renderer.FrameRenderer {
	return e.renderer
}

func (e *engine) Scene() scene.Scene {
	return e.scene
}

func (e *engine) UI() ui.Session {
	return e.ui
}

func (e *engine) Profiler() *profiler.Profiler {
	return e.profiler
}

func (e *engine) Run() error {
	e.lastTick = e.now()
	common.Logger().Info("engine running", "scene", e.scene.Name())
	e.window.ProcessMessages()
	return e.err
}

func (e *engine) Quit() {
	e.window.RequestClose()
}

func (e *engine) Release() {
	if e.scene != nil {
		e.scene.Release()
		e.scene = nil
	}
	if c, ok := e.ui.(io.Closer); ok {
		if err := c.Close(); err != nil {
			common.Logger().Warn("failed to close UI session", "error", err)
		}
	}
	e.ui = nil
	if e.renderer != nil {
		e.renderer.Release()
		e.renderer = nil
	}
	if e.session != nil {
		e.session.Release()
		e.session = nil
	}
	if e.ownsWindow && e.window != nil {
		if err := e.window.Close(); err != nil {
			common.Logger().Warn("failed to close window", "error", err)
		}
		e.window = nil
	}
}

// queueEvent holds input until the next tick so the UI sees it inside its frame.
func (e *engine) queueEvent(ev ui.Event) {
	e.pending = append(e.pending, ev)
}

// tick runs one frame: UI frame and input routing, scene update, render, recovery and profiling.
func (e *engine) tick() {
	now := e.now()
	elapsed := now.Sub(e.lastTick)
	e.lastTick = now

	e.ui.BeginFrame(elapsed)
	events := e.pending
	e.pending = nil
	for _, ev := range events {
		if err := e.handleEvent(ev); err != nil {
			e.stop(err)
			return
		}
	}
	paint := e.ui.EndFrame()

	if err := e.scene.Update(float32(elapsed.Seconds())); err != nil {
		e.stop(err)
		return
	}
	if err := e.renderer.RenderFrame(e.scene.FrameInput(paint)); err != nil {
		if err := e.renderer.Recover(err); err != nil {
			e.stop(err)
			return
		}
	}
	e.profiler.Tick()
}

// handleEvent offers ev to the UI first. Resizes always reach the renderer; other input the UI
// did not consume goes to the engine's key bindings and then to the scene.
func (e *engine) handleEvent(ev ui.Event) error {
	consumed := e.ui.DispatchInput(ev)
	if ev.Kind == ui.EventResize {
		common.Logger().Info("window resized", "width", ev.Width, "height", ev.Height)
		return e.renderer.Resize(ev.Width, ev.Height)
	}
	if consumed {
		return nil
	}

	if ev.Kind == ui.EventKey && ev.Pressed {
		switch ev.Key {
		case common.KeyEscape:
			e.Quit()
			return nil
		case common.KeySpace:
			controller := e.scene.Controller()
			controller.SetAutoRotate(!controller.AutoRotate())
			return nil
		}
	}
	e.scene.HandleEvent(ev)
	return nil
}

// stop records err as the result of Run and closes the message loop.
func (e *engine) stop(err error) {
	if e.err == nil {
		e.err = err
	}
	e.Quit()
}
