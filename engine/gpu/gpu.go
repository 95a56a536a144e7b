// Package gpu is the narrow device abstraction the renderer is written against.
// The interfaces mirror the subset of WebGPU the engine actually calls; the wgpu-backed
// implementation lives in wgpu_backend.go and a recording fake lives in gputest.
package gpu

import (
	"context"

	"github.com/cogentcore/webgpu/wgpu"
)

// Releaser is implemented by every GPU object whose lifetime the engine manages explicitly.
type Releaser interface {
	// Release frees the underlying GPU object. Calling Release more than once is a no-op.
	Release()
}

// Buffer is a GPU buffer handle.
type Buffer interface {
	Releaser

	// Size returns the buffer size in bytes as requested at creation.
	//
	// Returns:
	//   - uint64: the buffer size in bytes
	Size() uint64
}

// TextureView is a view into a subset of a texture's subresources.
type TextureView interface{ Releaser }

// Sampler is a GPU sampler handle.
type Sampler interface{ Releaser }

// BindGroupLayout is the GPU-side shape of a bind group.
type BindGroupLayout interface{ Releaser }

// BindGroup is a set of resources bound against a BindGroupLayout.
type BindGroup interface{ Releaser }

// ShaderModule is a compiled shader module.
type ShaderModule interface{ Releaser }

// PipelineLayout lists the bind group layouts consumed by a pipeline.
type PipelineLayout interface{ Releaser }

// RenderPipeline is an immutable render pipeline state object.
type RenderPipeline interface{ Releaser }

// CommandBuffer is a finished, submittable list of GPU commands.
type CommandBuffer interface{ Releaser }

// Texture is a GPU texture handle with the metadata it was created with.
type Texture interface {
	Releaser

	// CreateView creates a view into the texture. A nil descriptor creates the default full view.
	//
	// Parameters:
	//   - desc: the view descriptor, or nil for the default view
	//
	// Returns:
	//   - TextureView: the created view
	//   - error: error if view creation fails
	CreateView(desc *wgpu.TextureViewDescriptor) (TextureView, error)

	// Width returns the width of mip level 0 in texels.
	Width() uint32

	// Height returns the height of mip level 0 in texels.
	Height() uint32

	// MipLevelCount returns the number of mip levels the texture was allocated with.
	MipLevelCount() uint32

	// SampleCount returns the number of samples per texel.
	SampleCount() uint32

	// Format returns the texel format.
	Format() wgpu.TextureFormat
}

// RenderPass records draw commands into a single render pass.
type RenderPass interface {
	SetPipeline(pipeline RenderPipeline)
	SetBindGroup(index uint32, group BindGroup)
	SetVertexBuffer(slot uint32, buffer Buffer)
	SetIndexBuffer(buffer Buffer, format wgpu.IndexFormat)
	Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32)
	DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32)

	// End closes the pass. No further commands may be recorded into it.
	End()
}

// CommandEncoder records render passes into a command buffer.
type CommandEncoder interface {
	Releaser

	// BeginRenderPass opens a render pass. The pass must be ended before Finish is called.
	//
	// Parameters:
	//   - desc: the pass attachments and label
	//
	// Returns:
	//   - RenderPass: the recording pass
	BeginRenderPass(desc *RenderPassDescriptor) RenderPass

	// Finish closes the encoder and returns the recorded command buffer.
	//
	// Parameters:
	//   - label: debug label for the command buffer
	//
	// Returns:
	//   - CommandBuffer: the submittable command buffer
	//   - error: error if the encoder is invalid
	Finish(label string) (CommandBuffer, error)
}

// Device creates GPU objects.
type Device interface {
	Releaser

	CreateBuffer(desc *wgpu.BufferDescriptor) (Buffer, error)
	CreateTexture(desc *wgpu.TextureDescriptor) (Texture, error)
	CreateSampler(desc *wgpu.SamplerDescriptor) (Sampler, error)
	CreateBindGroupLayout(desc *BindGroupLayoutDescriptor) (BindGroupLayout, error)
	CreateBindGroup(desc *BindGroupDescriptor) (BindGroup, error)
	CreateShaderModule(desc *ShaderModuleDescriptor) (ShaderModule, error)
	CreatePipelineLayout(desc *PipelineLayoutDescriptor) (PipelineLayout, error)
	CreateRenderPipeline(desc *RenderPipelineDescriptor) (RenderPipeline, error)
	CreateCommandEncoder(label string) (CommandEncoder, error)
}

// Queue writes data to GPU resources and submits command buffers.
type Queue interface {
	// WriteBuffer copies data into buffer at offset. The data is copied before the call returns.
	WriteBuffer(buffer Buffer, offset uint64, data []byte)

	// WriteTexture copies tightly described texel data into one subresource of a texture.
	WriteTexture(dst *ImageCopyTexture, data []byte, layout *wgpu.TextureDataLayout, size *wgpu.Extent3D)

	// Submit hands the command buffers to the GPU in the given order as a single submission.
	Submit(buffers ...CommandBuffer)
}

// SurfaceCapabilities lists what a surface supports on the negotiated adapter.
type SurfaceCapabilities struct {
	Formats      []wgpu.TextureFormat
	PresentModes []wgpu.PresentMode
	AlphaModes   []wgpu.CompositeAlphaMode
}

// Surface is the presentable target bound to a window.
type Surface interface {
	Releaser

	// Capabilities returns the formats and modes the surface supports on the negotiated adapter.
	Capabilities() SurfaceCapabilities

	// Configure (re)configures the swapchain.
	Configure(cfg *wgpu.SurfaceConfiguration)

	// GetCurrentTexture acquires the next presentable image.
	GetCurrentTexture() (Texture, error)

	// Present hands the acquired image back to the display system.
	Present()
}

// SurfaceTarget is anything that can describe a native surface, typically a window.
type SurfaceTarget interface {
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
}

// NegotiateOptions tunes adapter and device selection.
type NegotiateOptions struct {
	// ForceFallbackAdapter requests a software adapter.
	ForceFallbackAdapter bool
	// PowerPreference hints at the kind of adapter to prefer.
	PowerPreference wgpu.PowerPreference
	// DeviceLabel is the debug label of the logical device.
	DeviceLabel string
}

// Negotiated is the result of a successful adapter/device negotiation.
type Negotiated struct {
	Context *Context
	Surface Surface
}

// Negotiator acquires an adapter compatible with a surface target and opens a device on it.
type Negotiator interface {
	// Negotiate creates the surface for target, requests a compatible adapter and opens a device and queue.
	//
	// Parameters:
	//   - ctx: cancels the negotiation while it is blocked on the driver
	//   - target: the window the surface is created for
	//   - opts: adapter and device options
	//
	// Returns:
	//   - *Negotiated: the device context and surface
	//   - error: error if no compatible adapter or device is available
	Negotiate(ctx context.Context, target SurfaceTarget, opts NegotiateOptions) (*Negotiated, error)
}
