// Package surface owns the device, queue and presentable surface of a window, and keeps the
// swapchain configuration in step with the window size.
package surface

import (
	"context"
	"fmt"
	"slices"

	"github.com/Carmen-Shannon/oxy-boids/common"
	"github.com/Carmen-Shannon/oxy-boids/engine/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

// Config is the current swapchain configuration. Width and Height are always greater than zero.
type Config struct {
	Format      wgpu.TextureFormat
	Width       uint32
	Height      uint32
	PresentMode wgpu.PresentMode
	AlphaMode   wgpu.CompositeAlphaMode
}

func (c Config) surfaceConfiguration() *wgpu.SurfaceConfiguration {
	return &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      c.Format,
		Width:       c.Width,
		Height:      c.Height,
		PresentMode: c.PresentMode,
		AlphaMode:   c.AlphaMode,
	}
}

// Frame is an acquired swapchain image and its view. It is handed back through Session.Present,
// or through Release if the frame is abandoned.
type Frame struct {
	Texture gpu.Texture
	View    gpu.TextureView
}

// Release frees the view and the texture without presenting.
func (f *Frame) Release() {
	if f.View != nil {
		f.View.Release()
		f.View = nil
	}
	if f.Texture != nil {
		f.Texture.Release()
		f.Texture = nil
	}
}

// SessionOption is a functional option applied to a Session during Initialize.
type SessionOption func(*sessionOptions)

type sessionOptions struct {
	presentMode wgpu.PresentMode
	negotiate   gpu.NegotiateOptions
}

// WithPresentMode sets the preferred present mode. It falls back to the first supported mode
// when the surface does not support it.
//
// Parameters:
//   - mode: the preferred present mode
//
// Returns:
//   - SessionOption: a function that applies the present mode option
func WithPresentMode(mode wgpu.PresentMode) SessionOption {
	return func(o *sessionOptions) {
		o.presentMode = mode
	}
}

// WithForceFallbackAdapter requests a software adapter instead of a hardware one.
//
// Parameters:
//   - force: true to force the fallback adapter
//
// Returns:
//   - SessionOption: a function that applies the fallback adapter option
func WithForceFallbackAdapter(force bool) SessionOption {
	return func(o *sessionOptions) {
		o.negotiate.ForceFallbackAdapter = force
	}
}

// WithPowerPreference hints at the kind of adapter to prefer.
//
// Parameters:
//   - pref: the power preference
//
// Returns:
//   - SessionOption: a function that applies the power preference option
func WithPowerPreference(pref wgpu.PowerPreference) SessionOption {
	return func(o *sessionOptions) {
		o.negotiate.PowerPreference = pref
	}
}

// Session owns the device context and the surface, and is the only place the surface is configured.
type Session struct {
	ctx     *gpu.Context
	surface gpu.Surface
	config  Config
}

// Initialize negotiates an adapter and device for target and configures the surface at the
// given size. It is the only blocking call of the renderer.
//
// Parameters:
//   - ctx: cancels the negotiation
//   - negotiator: acquires the adapter, device and surface
//   - target: the window to present to
//   - width: initial surface width in pixels
//   - height: initial surface height in pixels
//   - opts: session options
//
// Returns:
//   - *Session: the configured session
//   - error: error if negotiation fails or the surface has no usable format
func Initialize(ctx context.Context, negotiator gpu.Negotiator, target gpu.SurfaceTarget, width, height uint32, opts ...SessionOption) (*Session, error) {
	o := sessionOptions{presentMode: wgpu.PresentModeFifo}
	for _, opt := range opts {
		opt(&o)
	}

	negotiated, err := negotiator.Negotiate(ctx, target, o.negotiate)
	if err != nil {
		return nil, fmt.Errorf("failed to negotiate device: %w", err)
	}

	caps := negotiated.Surface.Capabilities()
	if len(caps.Formats) == 0 {
		negotiated.Surface.Release()
		negotiated.Context.Release()
		return nil, ErrNoCompatibleFormat
	}

	cfg := Config{
		Format:      PreferredFormat(caps.Formats),
		Width:       max(width, 1),
		Height:      max(height, 1),
		PresentMode: choosePresentMode(o.presentMode, caps.PresentModes),
		AlphaMode:   firstOr(caps.AlphaModes, wgpu.CompositeAlphaModeAuto),
	}
	negotiated.Surface.Configure(cfg.surfaceConfiguration())

	common.Logger().Info("surface configured",
		"format", cfg.Format,
		"width", cfg.Width,
		"height", cfg.Height,
		"presentMode", cfg.PresentMode,
	)

	return &Session{
		ctx:     negotiated.Context,
		surface: negotiated.Surface,
		config:  cfg,
	}, nil
}

// PreferredFormat returns the first sRGB format in formats, or the first format if none is sRGB.
//
// Parameters:
//   - formats: the supported formats in the surface's preference order; must not be empty
//
// Returns:
//   - wgpu.TextureFormat: the chosen format
func PreferredFormat(formats []wgpu.TextureFormat) wgpu.TextureFormat {
	for _, f := range formats {
		if IsSRGB(f) {
			return f
		}
	}
	return formats[0]
}

// IsSRGB reports whether f is one of the sRGB color formats a surface can expose.
func IsSRGB(f wgpu.TextureFormat) bool {
	return f == wgpu.TextureFormatBGRA8UnormSrgb || f == wgpu.TextureFormatRGBA8UnormSrgb
}

func choosePresentMode(preferred wgpu.PresentMode, supported []wgpu.PresentMode) wgpu.PresentMode {
	if len(supported) == 0 || slices.Contains(supported, preferred) {
		return preferred
	}
	return supported[0]
}

func firstOr[T any](values []T, fallback T) T {
	if len(values) == 0 {
		return fallback
	}
	return values[0]
}

// Context returns the device context the session negotiated.
func (s *Session) Context() *gpu.Context {
	return s.ctx
}

// Config returns the current surface configuration.
func (s *Session) Config() Config {
	return s.config
}

// Resize reconfigures the surface at the new size. A zero dimension leaves the configuration
// untouched, which is what a minimized window reports.
//
// Parameters:
//   - width: the new width in pixels
//   - height: the new height in pixels
//
// Returns:
//   - bool: true if the surface was reconfigured
func (s *Session) Resize(width, height uint32) bool {
	if width == 0 || height == 0 {
		return false
	}
	s.config.Width = width
	s.config.Height = height
	s.surface.Configure(s.config.surfaceConfiguration())
	common.Logger().Debug("surface resized", "width", width, "height", height)
	return true
}

// AcquireFrame acquires the next swapchain image and creates its view.
//
// Returns:
//   - *Frame: the acquired frame
//   - error: a classified *Error if the surface could not provide an image
func (s *Session) AcquireFrame() (*Frame, error) {
	texture, err := s.surface.GetCurrentTexture()
	if err != nil {
		return nil, Classify(err)
	}
	view, err := texture.CreateView(nil)
	if err != nil {
		texture.Release()
		return nil, &Error{Kind: KindOther, Err: err}
	}
	return &Frame{Texture: texture, View: view}, nil
}

// Present presents the frame and releases its view and texture.
//
// Parameters:
//   - frame: the frame returned by AcquireFrame
func (s *Session) Present(frame *Frame) {
	s.surface.Present()
	frame.Release()
}

// Release frees the surface and the device context.
func (s *Session) Release() {
	if s.surface != nil {
		s.surface.Release()
		s.surface = nil
	}
	if s.ctx != nil {
		s.ctx.Release()
		s.ctx = nil
	}
}
