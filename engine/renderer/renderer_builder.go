package renderer

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// RendererBuilderOption is a functional option applied to a FrameRenderer during construction via New.
type RendererBuilderOption func(*FrameRenderer)

// WithConfig replaces the renderer's whole configuration.
//
// Parameters:
//   - cfg: the configuration to use
//
// Returns:
//   - RendererBuilderOption: a function that applies the config option to a renderer
func WithConfig(cfg Config) RendererBuilderOption {
	return func(r *FrameRenderer) {
		r.cfg = cfg
	}
}

// WithMSAA sets the multisample anti-aliasing sample count for the renderer.
// When not specified, the default is MSAA4x. Use MSAAOff to disable MSAA entirely.
// Higher values (MSAA8x, MSAA16x) are adapter-dependent and may not be supported
// by all hardware.
//
// Parameters:
//   - count: the MSAASampleCount to use (MSAAOff, MSAA4x, MSAA8x, or MSAA16x)
//
// Returns:
//   - RendererBuilderOption: a function that applies the MSAA option to a renderer
func WithMSAA(count MSAASampleCount) RendererBuilderOption {
	return func(r *FrameRenderer) {
		r.cfg.MSAA = count
	}
}

// WithClearColor sets the color the scene pass clears to.
//
// Parameters:
//   - c: the clear color
//
// Returns:
//   - RendererBuilderOption: a function that applies the clear color option to a renderer
func WithClearColor(c wgpu.Color) RendererBuilderOption {
	return func(r *FrameRenderer) {
		r.cfg.ClearColor = c
	}
}

// WithOverlayRecorder replaces the UI overlay recorder. Passing nil disables the overlay; the UI pass
// still runs and loads the swapchain image unchanged.
//
// Parameters:
//   - rec: the recorder drawing the UI paint list
//
// Returns:
//   - RendererBuilderOption: a function that applies the overlay option to a renderer
func WithOverlayRecorder(rec OverlayRecorder) RendererBuilderOption {
	return func(r *FrameRenderer) {
		r.overlay = rec
		r.overlaySet = true
	}
}

// WithStateObserver registers a function called on every state transition.
//
// Parameters:
//   - fn: receives each new State
//
// Returns:
//   - RendererBuilderOption: a function that applies the observer option to a renderer
func WithStateObserver(fn func(State)) RendererBuilderOption {
	return func(r *FrameRenderer) {
		r.observer = fn
	}
}
