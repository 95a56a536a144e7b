package shader

import _ "embed"

// Embedded WGSL sources. Every source exposes vs_main and fs_main.
var (
	//go:embed wgsl/scene.wgsl
	SceneSource string

	//go:embed wgsl/background.wgsl
	BackgroundSource string

	//go:embed wgsl/blit.wgsl
	BlitSource string

	//go:embed wgsl/ui.wgsl
	UISource string
)

const (
	// SceneKey names the instanced foreground shader.
	SceneKey = "scene"

	// BackgroundKey names the non-instanced background shader.
	BackgroundKey = "background"

	// BlitKey names the mip downsampling shader.
	BlitKey = "blit"

	// UIKey names the overlay compositing shader.
	UIKey = "ui"
)

// Builtin returns the embedded source registered under key.
//
// Parameters:
//   - key: one of SceneKey, BackgroundKey, BlitKey or UIKey
//
// Returns:
//   - string: the WGSL source
//   - bool: false if no source is registered under key
func Builtin(key string) (string, bool) {
	switch key {
	case SceneKey:
		return SceneSource, true
	case BackgroundKey:
		return BackgroundSource, true
	case BlitKey:
		return BlitSource, true
	case UIKey:
		return UISource, true
	default:
		return "", false
	}
}
