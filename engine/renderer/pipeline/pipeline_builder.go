package pipeline

import (
	"github.com/Carmen-Shannon/oxy-boids/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-boids/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// PipelineBuilderOption is a functional option overriding part of the fixed pipeline policy in Build.
type PipelineBuilderOption func(*pipeline)

// WithDepthWriteEnabled sets whether depth writing is enabled for this pipeline.
//
// Parameters:
//   - enabled: a boolean indicating whether depth writing should be enabled
//
// Returns:
//   - PipelineBuilderOption: a function that sets the depth write enabled state for this pipeline
func WithDepthWriteEnabled(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthWriteEnabled = enabled
	}
}

// WithDepthBias sets the depth bias parameters for this pipeline.
//
// Parameters:
//   - bias: the constant depth bias to apply
//   - slopeScale: the slope scale depth bias to apply
//
// Returns:
//   - PipelineBuilderOption: a function that sets the depth bias parameters for this pipeline
func WithDepthBias(bias int32, slopeScale float32) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthBias = bias
		p.depthBiasSlopeScale = slopeScale
	}
}

// WithCullMode sets the cull mode for this pipeline.
//
// Parameters:
//   - mode: the cull mode to use for this pipeline (e.g., wgpu.CullModeNone, wgpu.CullModeFront, wgpu.CullModeBack)
//
// Returns:
//   - PipelineBuilderOption: a function that sets the cull mode for this pipeline
func WithCullMode(mode wgpu.CullMode) PipelineBuilderOption {
	return func(p *pipeline) {
		p.cullMode = mode
	}
}

// WithTopology sets the primitive topology for this pipeline.
//
// Parameters:
//   - topology: the primitive topology to use for this pipeline (e.g., wgpu.PrimitiveTopologyTriangleList, wgpu.PrimitiveTopologyTriangleStrip)
//
// Returns:
//   - PipelineBuilderOption: a function that sets the primitive topology for this pipeline
func WithTopology(topology wgpu.PrimitiveTopology) PipelineBuilderOption {
	return func(p *pipeline) {
		p.topology = topology
	}
}

// WithFrontFace sets the front face winding order for this pipeline.
//
// Parameters:
//   - frontFace: the front face to use for this pipeline (e.g., wgpu.FrontFaceCCW, wgpu.FrontFaceCW)
//
// Returns:
//   - PipelineBuilderOption: a function that sets the front face for this pipeline
func WithFrontFace(frontFace wgpu.FrontFace) PipelineBuilderOption {
	return func(p *pipeline) {
		p.frontFace = frontFace
	}
}

// WithWriteMask sets the color write mask for this pipeline.
//
// Parameters:
//   - writeMask: the color write mask to use for this pipeline
//
// Returns:
//   - PipelineBuilderOption: a function that sets the color write mask for this pipeline
func WithWriteMask(writeMask wgpu.ColorWriteMask) PipelineBuilderOption {
	return func(p *pipeline) {
		p.writeMask = writeMask
	}
}

// WithBlendState sets the blend state for this pipeline.
//
// Parameters:
//   - blendState: the blend state to use instead of replace blending
//
// Returns:
//   - PipelineBuilderOption: a function that sets the blend state for this pipeline
func WithBlendState(blendState wgpu.BlendState) PipelineBuilderOption {
	return func(p *pipeline) {
		p.blendState = blendState
	}
}

// PremultipliedAlphaBlend composites premultiplied source pixels over the destination.
var PremultipliedAlphaBlend = wgpu.BlendState{
	Color: wgpu.BlendComponent{
		SrcFactor: wgpu.BlendFactorOne,
		DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		Operation: wgpu.BlendOperationAdd,
	},
	Alpha: wgpu.BlendComponent{
		SrcFactor: wgpu.BlendFactorOne,
		DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		Operation: wgpu.BlendOperationAdd,
	},
}

// SceneDescriptor describes the instanced foreground pipeline: depth tested, fed by a per-vertex
// and a per-instance buffer, with the camera, material and tint groups bound in that order.
//
// Parameters:
//   - s: the scene shader
//   - camera: the camera uniform layout
//   - material: the shared material texture layout
//   - tints: the instance tint storage layout
//   - vertex: the per-vertex buffer layout
//   - instance: the per-instance buffer layout
//   - colorFormat: the surface format
//   - depthFormat: the depth attachment format
//   - sampleCount: the scene pass sample count
//
// Returns:
//   - Descriptor: the scene pipeline descriptor
func SceneDescriptor(s shader.Shader, camera, material, tints *bind_group_provider.Layout, vertex, instance wgpu.VertexBufferLayout, colorFormat, depthFormat wgpu.TextureFormat, sampleCount uint32) Descriptor {
	return Descriptor{
		Key:              shader.SceneKey,
		Shader:           s,
		BindGroupLayouts: []*bind_group_provider.Layout{camera, material, tints},
		ColorFormat:      colorFormat,
		DepthFormat:      depthFormat,
		VertexLayouts:    []wgpu.VertexBufferLayout{vertex, instance},
		SampleCount:      sampleCount,
	}
}

// BackgroundDescriptor describes the non-instanced background pipeline: depth tested, fed by a
// per-vertex buffer only, with the camera and material groups bound in that order.
//
// Parameters:
//   - s: the background shader
//   - camera: the camera uniform layout
//   - material: the shared material texture layout
//   - vertex: the per-vertex buffer layout
//   - colorFormat: the surface format
//   - depthFormat: the depth attachment format
//   - sampleCount: the scene pass sample count
//
// Returns:
//   - Descriptor: the background pipeline descriptor
func BackgroundDescriptor(s shader.Shader, camera, material *bind_group_provider.Layout, vertex wgpu.VertexBufferLayout, colorFormat, depthFormat wgpu.TextureFormat, sampleCount uint32) Descriptor {
	return Descriptor{
		Key:              shader.BackgroundKey,
		Shader:           s,
		BindGroupLayouts: []*bind_group_provider.Layout{camera, material},
		ColorFormat:      colorFormat,
		DepthFormat:      depthFormat,
		VertexLayouts:    []wgpu.VertexBufferLayout{vertex},
		SampleCount:      sampleCount,
	}
}
