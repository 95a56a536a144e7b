package renderer

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-boids/engine/renderer/frame_resources"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrInvalidConfig is returned by New when the renderer Config is unusable.
var ErrInvalidConfig = errors.New("invalid renderer config")

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// WGPU returns the surface present mode for m.
func (m PresentMode) WGPU() wgpu.PresentMode {
	if m == PresentModeUncapped {
		return wgpu.PresentModeImmediate
	}
	return wgpu.PresentModeFifo
}

func (m PresentMode) String() string {
	if m == PresentModeUncapped {
		return "uncapped"
	}
	return "vsync"
}

// ParsePresentMode maps "vsync" and "uncapped" to a PresentMode.
//
// Parameters:
//   - s: the mode name
//
// Returns:
//   - PresentMode: the parsed mode
//   - error: error if s names no mode
func ParsePresentMode(s string) (PresentMode, error) {
	switch s {
	case "vsync", "":
		return PresentModeVSync, nil
	case "uncapped":
		return PresentModeUncapped, nil
	default:
		return 0, fmt.Errorf("unknown present mode %q", s)
	}
}

// MSAASampleCount controls the number of samples used for multisample anti-aliasing (MSAA).
// Only specific power-of-two values are valid for GPU hardware. WebGPU guarantees support for
// 1 (off) and 4; higher values (8, 16) are adapter-dependent and may not be available.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1).
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4× multisample anti-aliasing. This is the default.
	MSAA4x MSAASampleCount = 4

	// MSAA8x enables 8× multisample anti-aliasing. Adapter-dependent; not all hardware supports this.
	MSAA8x MSAASampleCount = 8

	// MSAA16x enables 16× multisample anti-aliasing. Adapter-dependent; not all hardware supports this.
	MSAA16x MSAASampleCount = 16
)

// Valid reports whether c is one of the supported sample counts.
func (c MSAASampleCount) Valid() bool {
	switch c {
	case MSAAOff, MSAA4x, MSAA8x, MSAA16x:
		return true
	}
	return false
}

// Slots are the bind group indices the scene shaders declare for each long-lived group.
type Slots struct {
	Camera   uint32
	Material uint32
	Tints    uint32
}

// Config is the renderer configuration. It is built once, from options or the config file.
type Config struct {
	MSAA        MSAASampleCount
	DepthFormat wgpu.TextureFormat
	PresentMode PresentMode
	ClearColor  wgpu.Color
	Slots       Slots
}

// DefaultConfig returns 4x MSAA, a Depth24Plus depth buffer, vsync, a black clear color and slots
// camera 0, material 1, tints 2.
func DefaultConfig() Config {
	return Config{
		MSAA:        MSAA4x,
		DepthFormat: frame_resources.DepthFormat,
		PresentMode: PresentModeVSync,
		ClearColor:  wgpu.Color{R: 0, G: 0, B: 0, A: 1},
		Slots:       Slots{Camera: 0, Material: 1, Tints: 2},
	}
}

// Validate checks the sample count, the depth format and the slots. Camera and material occupy
// groups 0 and 1 in either order, because the background pipeline binds only those two; tints is group 2.
//
// Returns:
//   - error: an error wrapping ErrInvalidConfig, or nil
func (c Config) Validate() error {
	if !c.MSAA.Valid() {
		return fmt.Errorf("%w: unsupported MSAA sample count %d", ErrInvalidConfig, c.MSAA)
	}
	switch c.DepthFormat {
	case wgpu.TextureFormatDepth16Unorm, wgpu.TextureFormatDepth24Plus, wgpu.TextureFormatDepth24PlusStencil8,
		wgpu.TextureFormatDepth32Float, wgpu.TextureFormatDepth32FloatStencil8:
	default:
		return fmt.Errorf("%w: %s is not a depth format", ErrInvalidConfig, c.DepthFormat)
	}
	s := c.Slots
	if s.Camera > 1 || s.Material > 1 || s.Camera == s.Material || s.Tints != 2 {
		return fmt.Errorf("%w: bind group slots %+v", ErrInvalidConfig, s)
	}
	return nil
}
