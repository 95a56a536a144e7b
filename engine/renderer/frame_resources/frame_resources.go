// Package frame_resources owns the size-dependent render attachments of the scene pass.
package frame_resources

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-boids/engine/gpu"
	"github.com/Carmen-Shannon/oxy-boids/engine/renderer/surface"
	"github.com/cogentcore/webgpu/wgpu"
)

// DepthFormat is the default format of the scene depth attachment.
const DepthFormat = wgpu.TextureFormatDepth24Plus

const (
	depthLabel = "depth_texture"
	colorLabel = "msaa_color_texture"
)

// Attachment is a render target texture with the view the render pass binds.
type Attachment struct {
	Texture gpu.Texture
	View    gpu.TextureView
}

func (a *Attachment) release() {
	if a == nil {
		return
	}
	if a.View != nil {
		a.View.Release()
		a.View = nil
	}
	if a.Texture != nil {
		a.Texture.Release()
		a.Texture = nil
	}
}

// FrameResources are the depth attachment and, when multisampling, the color attachment the scene
// pass renders into. They match one surface configuration and are replaced wholesale when it changes.
type FrameResources struct {
	Depth       *Attachment
	Color       *Attachment
	Width       uint32
	Height      uint32
	SampleCount uint32
}

// Rebuild allocates attachments for cfg. The depth attachment is always allocated; the color
// attachment only when sampleCount > 1, otherwise the scene pass draws to the swapchain image.
// Nothing is reused from any previous FrameResources, which the caller releases after replacement.
//
// Parameters:
//   - ctx: the device context
//   - cfg: the current surface configuration
//   - depthFormat: the pipelines' depth format
//   - sampleCount: the pipelines' sample count
//
// Returns:
//   - *FrameResources: the new attachments
//   - error: error if any allocation fails, in which case nothing is leaked
func Rebuild(ctx *gpu.Context, cfg surface.Config, depthFormat wgpu.TextureFormat, sampleCount uint32) (*FrameResources, error) {
	sampleCount = max(sampleCount, 1)

	depth, err := newAttachment(ctx.Device, depthLabel, cfg.Width, cfg.Height, depthFormat, sampleCount)
	if err != nil {
		return nil, err
	}

	fr := &FrameResources{
		Depth:       depth,
		Width:       cfg.Width,
		Height:      cfg.Height,
		SampleCount: sampleCount,
	}
	if sampleCount == 1 {
		return fr, nil
	}

	color, err := newAttachment(ctx.Device, colorLabel, cfg.Width, cfg.Height, cfg.Format, sampleCount)
	if err != nil {
		depth.release()
		return nil, err
	}
	fr.Color = color
	return fr, nil
}

func newAttachment(device gpu.Device, label string, width, height uint32, format wgpu.TextureFormat, sampleCount uint32) (*Attachment, error) {
	texture, err := device.CreateTexture(&wgpu.TextureDescriptor{
		Label: label,
		Usage: wgpu.TextureUsageRenderAttachment,
		Size: wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		MipLevelCount: 1,
		SampleCount:   sampleCount,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", label, err)
	}
	view, err := texture.CreateView(nil)
	if err != nil {
		texture.Release()
		return nil, fmt.Errorf("failed to create %s view: %w", label, err)
	}
	return &Attachment{Texture: texture, View: view}, nil
}

// Matches reports whether fr was built for the surface size in cfg.
func (fr *FrameResources) Matches(cfg surface.Config) bool {
	return fr != nil && fr.Width == cfg.Width && fr.Height == cfg.Height
}

// ColorTargets returns the color view and resolve target of the scene pass for a swapchain view.
// With multisampling the MSAA view is rendered and resolved into the swapchain view; without it
// the swapchain view is rendered directly.
//
// Parameters:
//   - swapchain: the view of the acquired swapchain image
//
// Returns:
//   - view: the color attachment view
//   - resolve: the resolve target, or nil
func (fr *FrameResources) ColorTargets(swapchain gpu.TextureView) (view, resolve gpu.TextureView) {
	if fr.Color == nil {
		return swapchain, nil
	}
	return fr.Color.View, swapchain
}

// Release frees every attachment.
func (fr *FrameResources) Release() {
	if fr == nil {
		return
	}
	fr.Color.release()
	fr.Color = nil
	fr.Depth.release()
	fr.Depth = nil
}
