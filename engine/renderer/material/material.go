package material

import (
	"fmt"
	"image"

	"github.com/Carmen-Shannon/oxy-boids/engine/gpu"
	"github.com/Carmen-Shannon/oxy-boids/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-boids/engine/renderer/texture"
)

// material is the implementation of the Material interface.
type material struct {
	name              string
	pipelineKey       string
	samplerOptions    texture.SamplerOptions
	diffuse           *texture.Texture
	bindGroupProvider bind_group_provider.BindGroupProvider
}

// Material is a diffuse texture together with the bind group that exposes it to the scene
// shaders at the material slot. Every material's group is created against the renderer's shared
// texture layout, so one pipeline serves them all.
type Material interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// PipelineKey retrieves the key of the pipeline meshes using this material are drawn with.
	//
	// Returns:
	//   - string: the pipeline key
	PipelineKey() string

	// Diffuse retrieves the sampled diffuse texture.
	//
	// Returns:
	//   - *texture.Texture: the texture, with every mip level allocated
	Diffuse() *texture.Texture

	// BindGroupProvider retrieves the provider owning the material's bind group.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the provider
	BindGroupProvider() bind_group_provider.BindGroupProvider

	// BindGroup is a shorthand for BindGroupProvider().BindGroup().
	BindGroup() gpu.BindGroup

	// Release frees the bind group and the texture. The shared layout is left alive.
	Release()
}

var _ Material = &material{}

// NewMaterial uploads img as the material's diffuse texture and binds it against the shared
// texture layout. The texture's upper mip levels are left for the mipmap generator.
//
// Parameters:
//   - ctx: the device context
//   - layout: the shared texture layout (texture at binding 0, sampler at binding 1)
//   - img: the diffuse image
//   - options: variadic list of MaterialBuilderOption functions to configure the material
//
// Returns:
//   - Material: the GPU-ready material
//   - error: error if the upload or the bind group fails
func NewMaterial(ctx *gpu.Context, layout *bind_group_provider.Layout, img image.Image, options ...MaterialBuilderOption) (Material, error) {
	m := &material{name: "material"}
	for _, opt := range options {
		opt(m)
	}

	tex, err := texture.FromImage(ctx, m.name+"_diffuse", img, m.samplerOptions)
	if err != nil {
		return nil, fmt.Errorf("material %q: %w", m.name, err)
	}

	desc := layout.DescriptorFor(m.name+"_bind_group", gpu.BindingResource{
		TextureView: tex.View,
		Sampler:     tex.Sampler,
	})
	provider, err := bind_group_provider.NewBindGroupProvider(ctx.Device, desc, bind_group_provider.WithSharedLayout(layout))
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("material %q: %w", m.name, err)
	}

	m.diffuse = tex
	m.bindGroupProvider = provider
	return m, nil
}

// Textures collects the diffuse textures of materials, in order, for mip generation.
//
// Parameters:
//   - materials: the materials
//
// Returns:
//   - []*texture.Texture: one texture per material
func Textures(materials ...Material) []*texture.Texture {
	out := make([]*texture.Texture, 0, len(materials))
	for _, m := range materials {
		out = append(out, m.Diffuse())
	}
	return out
}

func (m *material) Name() string {
	return m.name
}

func (m *material) PipelineKey() string {
	return m.pipelineKey
}

func (m *material) Diffuse() *texture.Texture {
	return m.diffuse
}

func (m *material) BindGroupProvider() bind_group_provider.BindGroupProvider {
	return m.bindGroupProvider
}

func (m *material) BindGroup() gpu.BindGroup {
	if m.bindGroupProvider == nil {
		return nil
	}
	return m.bindGroupProvider.BindGroup()
}

func (m *material) Release() {
	if m.bindGroupProvider != nil {
		m.bindGroupProvider.Release()
		m.bindGroupProvider = nil
	}
	if m.diffuse != nil {
		m.diffuse.Release()
		m.diffuse = nil
	}
}
