// Package mipmap fills the mip chains of sampled textures by repeatedly blitting each level into the next.
package mipmap

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
	encoderLabel       = "mipmap_encoder"
	commandBufferLabel = "mipmap_command_buffer"
	samplerLabel       = "mip_sampler"
)

// Generator owns the blit pipeline and sampler used to downsample one mip level into the next.
type Generator struct {
	ctx      *gpu.Context
	layout   *bind_group_provider.Layout
	pipeline pipeline.Pipeline
	sampler  gpu.Sampler
}

// NewGenerator builds the blit pipeline for textures of the given format. Source levels are bound
// through textureLayout, the same texture-and-sampler layout the materials use.
//
// Parameters:
//   - ctx: the device context
//   - textureLayout: the shared sampled texture layout
//   - format: the format of the textures to generate mips for
//
// Returns:
//   - *Generator: the generator
//   - error: error if the shader, pipeline or sampler cannot be created
func NewGenerator(ctx *gpu.Context, textureLayout *bind_group_provider.Layout, format wgpu.TextureFormat) (*Generator, error) {
	blit, err := shader.NewBuiltin(shader.BlitKey)
	if err != nil {
		return nil, err
	}

	p, err := pipeline.Build(ctx.Device, pipeline.Descriptor{
		Key:              shader.BlitKey,
		Shader:           blit,
		BindGroupLayouts: []*bind_group_provider.Layout{textureLayout},
		ColorFormat:      format,
		SampleCount:      1,
	},
		pipeline.WithTopology(wgpu.PrimitiveTopologyTriangleStrip),
		pipeline.WithCullMode(wgpu.CullModeNone),
	)
	if err != nil {
		return nil, err
	}

	sampler, err := ctx.Device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         samplerLabel,
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMinClamp:   0,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	})
	if err != nil {
		p.Release()
		return nil, fmt.Errorf("failed to create mip sampler: %w", err)
	}

	return &Generator{
		ctx:      ctx,
		layout:   textureLayout,
		pipeline: p,
		sampler:  sampler,
	}, nil
}

// Generate records the blits filling every level above 0 of every texture into a single command
// buffer. Level n is rendered from level n-1, so the caller submits the buffer after the base
// levels have been written. An empty list yields an empty, valid command buffer.
//
// Parameters:
//   - textures: the textures to generate mips for
//
// Returns:
//   - gpu.CommandBuffer: the recorded blits
//   - error: the device's allocation error, if any
func (g *Generator) Generate(textures []*texture.Texture) (gpu.CommandBuffer, error) {
	encoder, err := g.ctx.Device.CreateCommandEncoder(encoderLabel)
	if err != nil {
		return nil, fmt.Errorf("failed to create mipmap encoder: %w", err)
	}
	defer encoder.Release()

	var transient []gpu.Releaser
	defer func() {
		for _, r := range transient {
			r.Release()
		}
	}()

	for _, t := range textures {
		levels := texture.MipLevelCount(t.Width, t.Height)

		views := make([]gpu.TextureView, 0, levels)
		for level := range levels {
			view, err := t.Handle.CreateView(&wgpu.TextureViewDescriptor{
				Label:           fmt.Sprintf("%s_mip_%d", t.Label, level),
				Format:          t.Format,
				Dimension:       wgpu.TextureViewDimension2D,
				BaseMipLevel:    level,
				MipLevelCount:   1,
				BaseArrayLayer:  0,
				ArrayLayerCount: 1,
				Aspect:          wgpu.TextureAspectAll,
			})
			if err != nil {
				return nil, fmt.Errorf("texture %q mip view %d: %w", t.Label, level, err)
			}
			views = append(views, view)
			transient = append(transient, view)
		}

		for target := 1; target < len(views); target++ {
			group, err := bind_group_provider.CreateGroup(g.ctx.Device, g.layout, g.layout.DescriptorFor(
				fmt.Sprintf("%s_mip_%d_bind_group", t.Label, target),
				gpu.BindingResource{TextureView: views[target-1], Sampler: g.sampler},
			))
			if err != nil {
				return nil, err
			}
			transient = append(transient, group)

			pass := encoder.BeginRenderPass(&gpu.RenderPassDescriptor{
				Label: fmt.Sprintf("%s_mip_%d_pass", t.Label, target),
				ColorAttachments: []gpu.ColorAttachment{
					{
						View:       views[target],
						LoadOp:     wgpu.LoadOpClear,
						StoreOp:    wgpu.StoreOpStore,
						ClearValue: wgpu.Color{R: 0, G: 0, B: 0, A: 1},
					},
				},
			})
			pass.SetPipeline(g.pipeline.Handle())
			pass.SetBindGroup(0, group)
			pass.Draw(4, 1, 0, 0)
			pass.End()
		}
	}

	cb, err := encoder.Finish(commandBufferLabel)
	if err != nil {
		return nil, fmt.Errorf("failed to finish mipmap encoder: %w", err)
	}
	return cb, nil
}

// Release frees the blit pipeline and sampler. The texture layout is not owned.
func (g *Generator) Release() {
	if g.sampler != nil {
		g.sampler.Release()
		g.sampler = nil
	}
	if g.pipeline != nil {
		g.pipeline.Release()
		g.pipeline = nil
	}
}
