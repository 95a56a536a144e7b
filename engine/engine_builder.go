package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-boids/engine/gpu"
	"github.com/Carmen-Shannon/oxy-boids/engine/profiler"
	"github.com/Carmen-Shannon/oxy-boids/engine/ui"
	"github.com/Carmen-Shannon/oxy-boids/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithWindow sets a custom configured window for the engine to use rather than allowing the engine
// to create and manage one internally. The caller keeps ownership and closes it.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithNegotiator replaces the wgpu-native device negotiator.
//
// Parameters:
//   - n: the negotiator used to acquire the adapter, device and surface
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithNegotiator(n gpu.Negotiator) EngineBuilderOption {
	return func(e *engine) {
		e.negotiator = n
	}
}

// WithUISession uses s instead of the session selected by the overlay setting.
// The engine closes it on Release if it implements io.Closer.
//
// Parameters:
//   - s: the UI session
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithUISession(s ui.Session) EngineBuilderOption {
	return func(e *engine) {
		e.ui = s
	}
}

// WithClock replaces time.Now as the source of frame timing for the tick loop and the profiler.
//
// Parameters:
//   - now: the clock
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithClock(now func() time.Time) EngineBuilderOption {
	return func(e *engine) {
		e.now = now
	}
}

// WithProfilerInterval sets how often the profiler reports.
//
// Parameters:
//   - interval: the reporting interval (default 1s)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfilerInterval(interval time.Duration) EngineBuilderOption {
	return func(e *engine) {
		e.profilerOptions = append(e.profilerOptions, profiler.WithInterval(interval))
	}
}
