package pipeline

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-boids/common"
	"github.com/Carmen-Shannon/oxy-boids/engine/gpu"
	"github.com/Carmen-Shannon/oxy-boids/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-boids/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrBindingMismatch is returned when a shader declares a binding the pipeline's layouts do not provide.
var ErrBindingMismatch = errors.New("pipeline: shader binding not provided by layouts")

// Descriptor names everything a render pipeline is bound to. Once built, none of it can change.
type Descriptor struct {
	// Key is the unique pipeline name; it labels every object the pipeline creates.
	Key string
	// Shader provides the vs_main and fs_main entry points.
	Shader shader.Shader
	// BindGroupLayouts are indexed by bind group slot.
	BindGroupLayouts []*bind_group_provider.Layout
	ColorFormat      wgpu.TextureFormat
	// DepthFormat of TextureFormatUndefined builds a pipeline without a depth attachment.
	DepthFormat   wgpu.TextureFormat
	VertexLayouts []wgpu.VertexBufferLayout
	// SampleCount must equal the sample count of the pass attachments. Zero means 1.
	SampleCount uint32
}

// pipeline is the implementation of the Pipeline interface.
type pipeline struct {
	key         string
	colorFormat wgpu.TextureFormat
	depthFormat wgpu.TextureFormat
	sampleCount uint32

	handle gpu.RenderPipeline
	layout gpu.PipelineLayout

	// The following properties are the fixed-function state; the builder options may override them.

	depthWriteEnabled   bool
	depthCompare        wgpu.CompareFunction
	depthBias           int32
	depthBiasSlopeScale float32
	cullMode            wgpu.CullMode
	topology            wgpu.PrimitiveTopology
	frontFace           wgpu.FrontFace
	writeMask           wgpu.ColorWriteMask
	blendState          wgpu.BlendState
}

// Pipeline is an immutable render pipeline bound to one color format, an optional depth format,
// fixed vertex layouts and a sample count.
type Pipeline interface {
	// Key returns the unique key associated with this pipeline.
	//
	// Returns:
	//   - string: the unique key for this pipeline
	Key() string

	// Handle returns the GPU pipeline object to bind in a render pass.
	//
	// Returns:
	//   - gpu.RenderPipeline: the pipeline handle
	Handle() gpu.RenderPipeline

	// ColorFormat returns the format of the single color target.
	//
	// Returns:
	//   - wgpu.TextureFormat: the color target format
	ColorFormat() wgpu.TextureFormat

	// DepthFormat returns the depth attachment format, or TextureFormatUndefined if the pipeline has none.
	//
	// Returns:
	//   - wgpu.TextureFormat: the depth format
	DepthFormat() wgpu.TextureFormat

	// SampleCount returns the multisample count the pipeline was built for.
	//
	// Returns:
	//   - uint32: the sample count
	SampleCount() uint32

	// Topology returns the primitive topology configured for this pipeline.
	//
	// Returns:
	//   - wgpu.PrimitiveTopology: the primitive topology for this pipeline
	Topology() wgpu.PrimitiveTopology

	// Release frees the pipeline and its pipeline layout. The bind group layouts are not owned.
	Release()
}

var _ Pipeline = &pipeline{}

// Build creates a render pipeline for desc under the scene policy: triangle lists, counter-clockwise
// front faces with back faces culled, replace blending with every channel written, a Less depth test
// with depth writes when a depth format is given, no stencil, and a full sample mask. Options override
// individual parts of the policy.
//
// Parameters:
//   - device: the device to allocate on
//   - desc: the pipeline descriptor
//   - opts: a variadic list of PipelineBuilderOption functions overriding the policy
//
// Returns:
//   - Pipeline: the built pipeline
//   - error: ErrBindingMismatch, or the device's allocation error
func Build(device gpu.Device, desc Descriptor, opts ...PipelineBuilderOption) (Pipeline, error) {
	p := &pipeline{
		key:               desc.Key,
		colorFormat:       desc.ColorFormat,
		depthFormat:       desc.DepthFormat,
		sampleCount:       max(desc.SampleCount, 1),
		depthWriteEnabled: true,
		depthCompare:      wgpu.CompareFunctionLess,
		cullMode:          wgpu.CullModeBack,
		topology:          wgpu.PrimitiveTopologyTriangleList,
		frontFace:         wgpu.FrontFaceCCW,
		writeMask:         wgpu.ColorWriteMaskAll,
		blendState:        wgpu.BlendStateReplace,
	}
	for _, opt := range opts {
		opt(p)
	}

	if err := checkBindings(desc); err != nil {
		return nil, err
	}

	module, err := device.CreateShaderModule(desc.Shader.Module())
	if err != nil {
		return nil, fmt.Errorf("pipeline %q shader module: %w", desc.Key, err)
	}
	defer module.Release()

	p.layout, err = device.CreatePipelineLayout(&gpu.PipelineLayoutDescriptor{
		Label: desc.Key + "_pipeline_layout",
		BindGroupLayouts: common.MapRange(len(desc.BindGroupLayouts), func(i int) gpu.BindGroupLayout {
			return desc.BindGroupLayouts[i].Handle()
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("pipeline %q layout: %w", desc.Key, err)
	}

	blend := p.blendState
	p.handle, err = device.CreateRenderPipeline(&gpu.RenderPipelineDescriptor{
		Label:              desc.Key + "_pipeline",
		Layout:             p.layout,
		Module:             module,
		VertexEntryPoint:   shader.VertexEntryPoint,
		FragmentEntryPoint: shader.FragmentEntryPoint,
		VertexBuffers:      desc.VertexLayouts,
		Targets: []wgpu.ColorTargetState{
			{
				Format:    p.colorFormat,
				Blend:     &blend,
				WriteMask: p.writeMask,
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  p.topology,
			FrontFace: p.frontFace,
			CullMode:  p.cullMode,
		},
		DepthStencil: p.depthStencilState(),
		Multisample: wgpu.MultisampleState{
			Count: p.sampleCount,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		p.layout.Release()
		return nil, fmt.Errorf("pipeline %q: %w", desc.Key, err)
	}

	common.Logger().Debug("pipeline built", "key", desc.Key, "samples", p.sampleCount, "depth", p.depthFormat != wgpu.TextureFormatUndefined)
	return p, nil
}

func (p *pipeline) depthStencilState() *wgpu.DepthStencilState {
	if p.depthFormat == wgpu.TextureFormatUndefined {
		return nil
	}
	return &wgpu.DepthStencilState{
		Format:              p.depthFormat,
		DepthWriteEnabled:   p.depthWriteEnabled,
		DepthCompare:        p.depthCompare,
		DepthBias:           p.depthBias,
		DepthBiasSlopeScale: p.depthBiasSlopeScale,
		StencilFront: wgpu.StencilFaceState{
			Compare:     wgpu.CompareFunctionAlways,
			FailOp:      wgpu.StencilOperationKeep,
			DepthFailOp: wgpu.StencilOperationKeep,
			PassOp:      wgpu.StencilOperationKeep,
		},
		StencilBack: wgpu.StencilFaceState{
			Compare:     wgpu.CompareFunctionAlways,
			FailOp:      wgpu.StencilOperationKeep,
			DepthFailOp: wgpu.StencilOperationKeep,
			PassOp:      wgpu.StencilOperationKeep,
		},
	}
}

// checkBindings verifies every binding the shader declares exists, with the same resource kind,
// in the layout of its group.
func checkBindings(desc Descriptor) error {
	for _, b := range desc.Shader.Bindings() {
		if int(b.Group) >= len(desc.BindGroupLayouts) {
			return fmt.Errorf("%w: %q declares %s at group %d, only %d layouts given",
				ErrBindingMismatch, desc.Key, b.Name, b.Group, len(desc.BindGroupLayouts))
		}
		found := false
		for _, e := range desc.BindGroupLayouts[b.Group].Entries() {
			if e.Binding == b.Binding && e.Type.Kind() == b.Kind {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: %q declares %s %s at group %d binding %d",
				ErrBindingMismatch, desc.Key, b.Kind, b.Name, b.Group, b.Binding)
		}
	}
	return nil
}

func (p *pipeline) Key() string {
	return p.key
}

func (p *pipeline) Handle() gpu.RenderPipeline {
	return p.handle
}

func (p *pipeline) ColorFormat() wgpu.TextureFormat {
	return p.colorFormat
}

func (p *pipeline) DepthFormat() wgpu.TextureFormat {
	return p.depthFormat
}

func (p *pipeline) SampleCount() uint32 {
	return p.sampleCount
}

func (p *pipeline) Topology() wgpu.PrimitiveTopology {
	return p.topology
}

func (p *pipeline) Release() {
	if p.handle != nil {
		p.handle.Release()
		p.handle = nil
	}
	if p.layout != nil {
		p.layout.Release()
		p.layout = nil
	}
}
