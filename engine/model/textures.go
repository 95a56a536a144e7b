package model

import (
	"fmt"
	"image"

	"github.com/Carmen-Shannon/oxy-boids/engine/renderer/texture"
	"github.com/gogpu/gg"
)

// DefaultTextureSize is the edge length of the procedural textures.
const DefaultTextureSize = 256

// FishTexture paints the fish skin: a light body with dark vertical stripes, a pale belly and an
// eye near the nose. The body is near-white so per-instance tints dominate.
//
// Parameters:
//   - size: edge length in pixels
//
// Returns:
//   - *image.RGBA: the texture
//   - error: error if a fill fails
func FishTexture(size int) (*image.RGBA, error) {
	dc := gg.NewContext(size, size)
	defer dc.Close()

	s := float64(size)
	dc.ClearWithColor(gg.RGB(0.9, 0.9, 0.88))

	dc.SetRGB(0.98, 0.98, 0.95)
	dc.DrawRectangle(0, s*0.6, s, s*0.4)
	if err := dc.Fill(); err != nil {
		return nil, fmt.Errorf("fish texture: %w", err)
	}

	dc.SetRGB(0.45, 0.45, 0.5)
	for i := range 3 {
		x := s * (0.3 + 0.15*float64(i))
		dc.DrawRectangle(x, 0, s*0.05, s*0.75)
		if err := dc.Fill(); err != nil {
			return nil, fmt.Errorf("fish texture: %w", err)
		}
	}

	dc.SetRGB(0.05, 0.05, 0.05)
	dc.DrawCircle(s*0.88, s*0.4, s*0.04)
	if err := dc.Fill(); err != nil {
		return nil, fmt.Errorf("fish texture: %w", err)
	}

	if err := dc.FlushGPU(); err != nil {
		return nil, fmt.Errorf("fish texture: %w", err)
	}
	return texture.ToRGBA(dc.Image()), nil
}

// AquariumTexture paints one glass pane of the aquarium: deep water with lighter horizontal
// bands and a rounded frame.
//
// Parameters:
//   - size: edge length in pixels
//
// Returns:
//   - *image.RGBA: the texture
//   - error: error if a fill or stroke fails
func AquariumTexture(size int) (*image.RGBA, error) {
	dc := gg.NewContext(size, size)
	defer dc.Close()

	s := float64(size)
	dc.ClearWithColor(gg.Hex("#12355b"))

	for i := range 4 {
		dc.SetRGBA(0.4, 0.7, 0.9, 0.08+0.04*float64(i))
		dc.DrawRectangle(0, s*float64(i)/4, s, s/8)
		if err := dc.Fill(); err != nil {
			return nil, fmt.Errorf("aquarium texture: %w", err)
		}
	}

	dc.SetRGB(0.75, 0.85, 0.9)
	dc.SetLineWidth(s / 64)
	dc.DrawRoundedRectangle(s/32, s/32, s-s/16, s-s/16, s/16)
	if err := dc.Stroke(); err != nil {
		return nil, fmt.Errorf("aquarium texture: %w", err)
	}

	if err := dc.FlushGPU(); err != nil {
		return nil, fmt.Errorf("aquarium texture: %w", err)
	}
	return texture.ToRGBA(dc.Image()), nil
}

// LoadOrGenerate loads the image at path, or paints one with generate when path is empty.
//
// Parameters:
//   - path: an image file (PNG, JPEG, BMP or WebP), or "" for the procedural texture
//   - generate: the procedural fallback
//
// Returns:
//   - *image.RGBA: the pixels
//   - error: error if loading or painting fails
func LoadOrGenerate(path string, generate func(size int) (*image.RGBA, error)) (*image.RGBA, error) {
	if path == "" {
		return generate(DefaultTextureSize)
	}
	return texture.Load(path)
}
