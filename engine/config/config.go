// Package config holds the application settings, loaded from a TOML file over built-in defaults.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Carmen-Shannon/oxy-boids/engine/renderer"
	"github.com/pelletier/go-toml/v2"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid config")

// Overlay values of UIConfig.Overlay.
const (
	OverlayGG   = "gg"
	OverlayNone = "none"
)

type WindowConfig struct {
	Title     string `toml:"title"`
	Width     int    `toml:"width"`
	Height    int    `toml:"height"`
	MinWidth  int    `toml:"min_width"`
	MinHeight int    `toml:"min_height"`
}

type RendererConfig struct {
	// MSAA is the sample count: 1, 4, 8 or 16.
	MSAA uint32 `toml:"msaa"`
	// PresentMode is "vsync" or "uncapped".
	PresentMode          string `toml:"present_mode"`
	ForceFallbackAdapter bool   `toml:"force_fallback_adapter"`
}

type SceneConfig struct {
	FishCount      int     `toml:"fish_count"`
	FishSpeed      float32 `toml:"fish_speed"`
	AquariumRadius float32 `toml:"aquarium_radius"`
	// Seed makes the school reproducible; zero picks a random seed.
	Seed uint64 `toml:"seed"`
	// FishTexture and AquariumTexture are image files; empty paints the built-in texture.
	FishTexture     string `toml:"fish_texture"`
	AquariumTexture string `toml:"aquarium_texture"`
}

type UIConfig struct {
	// Overlay is "gg" for the built-in overlay or "none" to disable it.
	Overlay  string  `toml:"overlay"`
	FontSize float64 `toml:"font_size"`
}

type LogConfig struct {
	// Level is a slog level name: debug, info, warn or error.
	Level string `toml:"level"`
}

// Config is the full application configuration.
type Config struct {
	Window   WindowConfig   `toml:"window"`
	Renderer RendererConfig `toml:"renderer"`
	Scene    SceneConfig    `toml:"scene"`
	UI       UIConfig       `toml:"ui"`
	Log      LogConfig      `toml:"log"`
}

// Default returns the built-in configuration.
//
// Returns:
//   - Config: a valid configuration
func Default() Config {
	return Config{
		Window: WindowConfig{
			Title:     "oxy-boids",
			Width:     1280,
			Height:    720,
			MinWidth:  320,
			MinHeight: 240,
		},
		Renderer: RendererConfig{
			MSAA:        uint32(renderer.MSAA4x),
			PresentMode: renderer.PresentModeVSync.String(),
		},
		Scene: SceneConfig{
			FishCount:      50,
			FishSpeed:      4,
			AquariumRadius: 20,
		},
		UI: UIConfig{
			Overlay:  OverlayGG,
			FontSize: 14,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate checks every field. All problems are reported, each wrapping ErrInvalid.
//
// Returns:
//   - error: nil if the configuration is usable
func (c Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		bad("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}
	if c.Window.MinWidth < 0 || c.Window.MinHeight < 0 {
		bad("window min size %dx%d must not be negative", c.Window.MinWidth, c.Window.MinHeight)
	}
	if !renderer.MSAASampleCount(c.Renderer.MSAA).Valid() {
		bad("renderer.msaa %d must be 1, 4, 8 or 16", c.Renderer.MSAA)
	}
	if _, err := renderer.ParsePresentMode(c.Renderer.PresentMode); err != nil {
		bad("renderer.present_mode %q", c.Renderer.PresentMode)
	}
	if c.Scene.FishCount <= 0 {
		bad("scene.fish_count %d must be positive", c.Scene.FishCount)
	}
	if c.Scene.FishSpeed < 0 {
		bad("scene.fish_speed %g must not be negative", c.Scene.FishSpeed)
	}
	if c.Scene.AquariumRadius <= 0 {
		bad("scene.aquarium_radius %g must be positive", c.Scene.AquariumRadius)
	}
	if c.UI.Overlay != OverlayGG && c.UI.Overlay != OverlayNone {
		bad("ui.overlay %q must be %q or %q", c.UI.Overlay, OverlayGG, OverlayNone)
	}
	if c.UI.FontSize <= 0 {
		bad("ui.font_size %g must be positive", c.UI.FontSize)
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		bad("log.level %q", c.Log.Level)
	}
	return errors.Join(errs...)
}

// SlogLevel parses Level.
//
// Returns:
//   - slog.Level: the level
//   - error: error if the name is unknown
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(l.Level))
	return level, err
}

// FrameRendererConfig converts the renderer section into a renderer.Config over renderer.DefaultConfig.
//
// Returns:
//   - renderer.Config: the frame renderer configuration
//   - error: error if the present mode is unknown
func (c Config) FrameRendererConfig() (renderer.Config, error) {
	cfg := renderer.DefaultConfig()
	cfg.MSAA = renderer.MSAASampleCount(c.Renderer.MSAA)
	mode, err := renderer.ParsePresentMode(c.Renderer.PresentMode)
	if err != nil {
		return cfg, err
	}
	cfg.PresentMode = mode
	return cfg, nil
}

// Decode reads TOML from r over the defaults. Keys the Config does not know are rejected.
// The result is validated.
//
// Parameters:
//   - r: the TOML document
//
// Returns:
//   - Config: the decoded configuration
//   - error: a decode, unknown key or validation error
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return cfg, fmt.Errorf("%w: %s", ErrInvalid, strict.String())
		}
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	return cfg, cfg.Validate()
}

// Load reads the TOML file at path over the defaults. An empty path returns the defaults.
//
// Parameters:
//   - path: the config file, or ""
//
// Returns:
//   - Config: the configuration
//   - error: error if the file cannot be read, decoded or validated
func Load(path string) (Config, error) {
	if path == "" {
		cfg := Default()
		return cfg, cfg.Validate()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Default(), fmt.Errorf("load config: %w", err)
	}
	cfg, err := Decode(bytes.NewReader(data))
	if err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Write encodes c as TOML.
//
// Parameters:
//   - w: the destination
//
// Returns:
//   - error: error if encoding or writing fails
func (c Config) Write(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
