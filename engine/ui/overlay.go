package ui

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-boids/engine/gpu"
	"github.com/Carmen-Shannon/oxy-boids/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-boids/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-boids/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-boids/engine/renderer/texture"
	"github.com/cogentcore/webgpu/wgpu"
)

const (
	overlayTextureLabel = "ui_overlay_texture"
	overlayGroupLabel   = "ui_overlay_bind_group"
	overlaySamplerLabel = "ui_overlay_sampler"
)

// OverlayFormat is the format of the overlay texture. It is linear so the premultiplied bytes
// painted by the UI are sampled unchanged; the composite shader decodes them from sRGB.
const OverlayFormat = wgpu.TextureFormatRGBA8Unorm

// OverlayRenderer uploads a PaintList into a screen-sized texture and draws it as a fullscreen
// quad over whatever the target already holds. It never clears and never uses depth or multisampling.
type OverlayRenderer struct {
	ctx      *gpu.Context
	layout   *bind_group_provider.Layout
	pipeline pipeline.Pipeline
	sampler  gpu.Sampler

	texture gpu.Texture
	view    gpu.TextureView
	group   gpu.BindGroup
	width   uint32
	height  uint32
	visible bool
}

// NewOverlayRenderer builds the compositing pipeline for a surface format. The overlay texture is
// bound through textureLayout, the shared texture-and-sampler layout.
//
// Parameters:
//   - ctx: the device context
//   - textureLayout: the shared sampled texture layout
//   - surfaceFormat: the swapchain format the overlay is drawn onto
//
// Returns:
//   - *OverlayRenderer: the overlay renderer
//   - error: error if the shader, pipeline or sampler cannot be created
func NewOverlayRenderer(ctx *gpu.Context, textureLayout *bind_group_provider.Layout, surfaceFormat wgpu.TextureFormat) (*OverlayRenderer, error) {
	s, err := shader.NewBuiltin(shader.UIKey)
	if err != nil {
		return nil, err
	}
	p, err := pipeline.Build(ctx.Device, pipeline.Descriptor{
		Key:              shader.UIKey,
		Shader:           s,
		BindGroupLayouts: []*bind_group_provider.Layout{textureLayout},
		ColorFormat:      surfaceFormat,
		SampleCount:      1,
	},
		pipeline.WithTopology(wgpu.PrimitiveTopologyTriangleStrip),
		pipeline.WithCullMode(wgpu.CullModeNone),
		pipeline.WithBlendState(pipeline.PremultipliedAlphaBlend),
	)
	if err != nil {
		return nil, err
	}
	sampler, err := ctx.Device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         overlaySamplerLabel,
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeNearest,
		MinFilter:     wgpu.FilterModeNearest,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMaxClamp:   1,
		MaxAnisotropy: 1,
	})
	if err != nil {
		p.Release()
		return nil, fmt.Errorf("failed to create overlay sampler: %w", err)
	}
	return &OverlayRenderer{
		ctx:      ctx,
		layout:   textureLayout,
		pipeline: p,
		sampler:  sampler,
	}, nil
}

// Prepare uploads the overlay pixels when they changed. The overlay texture is reallocated
// whenever the paint list's screen size differs from the current one.
//
// Parameters:
//   - paint: the UI frame output
//
// Returns:
//   - error: error if the overlay texture cannot be allocated
func (o *OverlayRenderer) Prepare(paint PaintList) error {
	if paint.Empty() {
		o.visible = false
		return nil
	}
	width := uint32(paint.Overlay.Rect.Dx())
	height := uint32(paint.Overlay.Rect.Dy())
	if width == 0 || height == 0 {
		o.visible = false
		return nil
	}

	resized := width != o.width || height != o.height || o.texture == nil
	if resized {
		if err := o.allocate(width, height); err != nil {
			o.visible = false
			return err
		}
	}
	if resized || paint.Changed {
		rgba := texture.ToRGBA(paint.Overlay)
		o.ctx.Queue.WriteTexture(
			&gpu.ImageCopyTexture{
				Texture:  o.texture,
				MipLevel: 0,
				Origin:   wgpu.Origin3D{},
				Aspect:   wgpu.TextureAspectAll,
			},
			rgba.Pix,
			&wgpu.TextureDataLayout{
				Offset:       0,
				BytesPerRow:  width * 4,
				RowsPerImage: height,
			},
			&wgpu.Extent3D{
				Width:              width,
				Height:             height,
				DepthOrArrayLayers: 1,
			},
		)
	}
	o.visible = true
	return nil
}

// Draw records the overlay quad into pass. Nothing is recorded when the last prepared paint list was empty.
//
// Parameters:
//   - pass: a pass targeting the swapchain image with its contents loaded
func (o *OverlayRenderer) Draw(pass gpu.RenderPass) {
	if !o.visible {
		return
	}
	pass.SetPipeline(o.pipeline.Handle())
	pass.SetBindGroup(0, o.group)
	pass.Draw(4, 1, 0, 0)
}

// Resize drops the overlay texture so the next Prepare reallocates it at the new size.
//
// Parameters:
//   - width: the new surface width
//   - height: the new surface height
func (o *OverlayRenderer) Resize(width, height uint32) {
	if width == o.width && height == o.height {
		return
	}
	o.releaseTarget()
	o.visible = false
}

func (o *OverlayRenderer) allocate(width, height uint32) error {
	o.releaseTarget()

	t, err := o.ctx.Device.CreateTexture(&wgpu.TextureDescriptor{
		Label: overlayTextureLabel,
		Usage: wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Size: wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
		Dimension:     wgpu.TextureDimension2D,
		Format:        OverlayFormat,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return fmt.Errorf("failed to create overlay texture: %w", err)
	}
	view, err := t.CreateView(nil)
	if err != nil {
		t.Release()
		return fmt.Errorf("failed to create overlay view: %w", err)
	}

	desc := o.layout.DescriptorFor(overlayGroupLabel, gpu.BindingResource{TextureView: view, Sampler: o.sampler})
	group, err := bind_group_provider.CreateGroup(o.ctx.Device, o.layout, desc)
	if err != nil {
		view.Release()
		t.Release()
		return err
	}

	o.texture, o.view, o.group = t, view, group
	o.width, o.height = width, height
	return nil
}

func (o *OverlayRenderer) releaseTarget() {
	if o.group != nil {
		o.group.Release()
		o.group = nil
	}
	if o.view != nil {
		o.view.Release()
		o.view = nil
	}
	if o.texture != nil {
		o.texture.Release()
		o.texture = nil
	}
	o.width, o.height = 0, 0
}

// Release frees every GPU object the overlay owns. The texture layout is not owned.
func (o *OverlayRenderer) Release() {
	o.releaseTarget()
	if o.sampler != nil {
		o.sampler.Release()
		o.sampler = nil
	}
	if o.pipeline != nil {
		o.pipeline.Release()
		o.pipeline = nil
	}
}
