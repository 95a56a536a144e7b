package gpu

import "github.com/cogentcore/webgpu/wgpu"

// BindingKind tags which resource family a BindingType describes.
type BindingKind int

const (
	// BindingKindNone marks a BindingType with no layout set.
	BindingKindNone BindingKind = iota
	BindingKindBuffer
	BindingKindSampler
	BindingKindTexture
)

func (k BindingKind) String() string {
	switch k {
	case BindingKindBuffer:
		return "buffer"
	case BindingKindSampler:
		return "sampler"
	case BindingKindTexture:
		return "texture"
	default:
		return "none"
	}
}

// BindingType is the binding-kind tag of a layout entry. Exactly one of the three layouts is set;
// the others keep their Undefined zero values. The struct is comparable so two entries can be
// checked for the same shape with ==.
type BindingType struct {
	Buffer  wgpu.BufferBindingLayout
	Sampler wgpu.SamplerBindingLayout
	Texture wgpu.TextureBindingLayout
}

// Kind reports which layout of the BindingType is set.
//
// Returns:
//   - BindingKind: the resource family, or BindingKindNone if no layout is set
func (t BindingType) Kind() BindingKind {
	switch {
	case t.Buffer.Type != wgpu.BufferBindingTypeUndefined:
		return BindingKindBuffer
	case t.Sampler.Type != wgpu.SamplerBindingTypeUndefined:
		return BindingKindSampler
	case t.Texture.SampleType != wgpu.TextureSampleTypeUndefined:
		return BindingKindTexture
	default:
		return BindingKindNone
	}
}

// UniformBuffer is the binding type of a uniform buffer.
func UniformBuffer() BindingType {
	return BindingType{Buffer: wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform}}
}

// ReadOnlyStorageBuffer is the binding type of a read-only storage buffer.
func ReadOnlyStorageBuffer() BindingType {
	return BindingType{Buffer: wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeReadOnlyStorage}}
}

// FilteringSampler is the binding type of a filtering sampler.
func FilteringSampler() BindingType {
	return BindingType{Sampler: wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeFiltering}}
}

// SampledTexture2D is the binding type of a filterable, single-sampled 2D float texture.
func SampledTexture2D() BindingType {
	return BindingType{Texture: wgpu.TextureBindingLayout{
		SampleType:    wgpu.TextureSampleTypeFloat,
		ViewDimension: wgpu.TextureViewDimension2D,
		Multisampled:  false,
	}}
}
