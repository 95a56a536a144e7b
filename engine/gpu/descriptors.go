package gpu

import "github.com/cogentcore/webgpu/wgpu"

// BindGroupLayoutEntry describes one binding slot of a layout.
type BindGroupLayoutEntry struct {
	Binding    uint32
	Visibility wgpu.ShaderStage
	Type       BindingType
	// Count is the array arity of the binding; zero means the binding is not an array.
	Count uint32
}

// BindGroupLayoutDescriptor describes a bind group layout.
type BindGroupLayoutDescriptor struct {
	Label   string
	Entries []BindGroupLayoutEntry
}

// BindingResource is the resource bound to a binding slot. Exactly one of Buffer, TextureView or Sampler is set.
type BindingResource struct {
	Buffer Buffer
	Offset uint64
	// Size of the bound range; zero binds the whole buffer.
	Size        uint64
	TextureView TextureView
	Sampler     Sampler
}

// BindGroupEntry pairs a binding number with its resource.
type BindGroupEntry struct {
	Binding  uint32
	Resource BindingResource
}

// BindGroupDescriptor describes a bind group created against Layout.
type BindGroupDescriptor struct {
	Label   string
	Layout  BindGroupLayout
	Entries []BindGroupEntry
}

// ShaderModuleDescriptor describes a WGSL shader module.
type ShaderModuleDescriptor struct {
	Label string
	WGSL  string
}

// PipelineLayoutDescriptor lists the bind group layouts of a pipeline, indexed by group slot.
type PipelineLayoutDescriptor struct {
	Label            string
	BindGroupLayouts []BindGroupLayout
}

// RenderPipelineDescriptor describes a render pipeline with a single shader module holding both stages.
type RenderPipelineDescriptor struct {
	Label              string
	Layout             PipelineLayout
	Module             ShaderModule
	VertexEntryPoint   string
	FragmentEntryPoint string
	VertexBuffers      []wgpu.VertexBufferLayout
	Targets            []wgpu.ColorTargetState
	Primitive          wgpu.PrimitiveState
	DepthStencil       *wgpu.DepthStencilState
	Multisample        wgpu.MultisampleState
}

// ColorAttachment is a color target of a render pass.
type ColorAttachment struct {
	View          TextureView
	ResolveTarget TextureView
	LoadOp        wgpu.LoadOp
	StoreOp       wgpu.StoreOp
	ClearValue    wgpu.Color
}

// DepthAttachment is the depth target of a render pass.
type DepthAttachment struct {
	View            TextureView
	DepthLoadOp     wgpu.LoadOp
	DepthStoreOp    wgpu.StoreOp
	DepthClearValue float32
}

// RenderPassDescriptor describes the attachments of a render pass.
type RenderPassDescriptor struct {
	Label                  string
	ColorAttachments       []ColorAttachment
	DepthStencilAttachment *DepthAttachment
}

// ImageCopyTexture names one subresource of a texture as a copy destination.
type ImageCopyTexture struct {
	Texture  Texture
	MipLevel uint32
	Origin   wgpu.Origin3D
	Aspect   wgpu.TextureAspect
}
