// Package gputest provides a recording implementation of the gpu interfaces for tests.
// Every object created through the fake Device is kept, together with the descriptor it was
// created from, so tests can assert on what the engine asked the GPU to do.
package gputest

import (
	"context"
	"fmt"

	"github.com/Carmen-Shannon/oxy-boids/engine/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

// Handle is the common part of every fake GPU object.
type Handle struct {
	Label    string
	Released bool
}

func (h *Handle) Release() { h.Released = true }

type Buffer struct {
	Handle
	Desc wgpu.BufferDescriptor
}

func (b *Buffer) Size() uint64 { return b.Desc.Size }

type Texture struct {
	Handle
	Desc  wgpu.TextureDescriptor
	Views []*TextureView
}

func (t *Texture) CreateView(desc *wgpu.TextureViewDescriptor) (gpu.TextureView, error) {
	v := &TextureView{Texture: t}
	if desc != nil {
		v.Desc = *desc
		v.Label = desc.Label
	} else {
		v.Desc = wgpu.TextureViewDescriptor{MipLevelCount: t.Desc.MipLevelCount}
	}
	t.Views = append(t.Views, v)
	return v, nil
}

func (t *Texture) Width() uint32              { return t.Desc.Size.Width }
func (t *Texture) Height() uint32             { return t.Desc.Size.Height }
func (t *Texture) MipLevelCount() uint32      { return t.Desc.MipLevelCount }
func (t *Texture) SampleCount() uint32        { return t.Desc.SampleCount }
func (t *Texture) Format() wgpu.TextureFormat { return t.Desc.Format }

type TextureView struct {
	Handle
	Texture *Texture
	Desc    wgpu.TextureViewDescriptor
}

type Sampler struct {
	Handle
	Desc wgpu.SamplerDescriptor
}

type BindGroupLayout struct {
	Handle
	Desc gpu.BindGroupLayoutDescriptor
}

type BindGroup struct {
	Handle
	Desc gpu.BindGroupDescriptor
}

type ShaderModule struct {
	Handle
	Desc gpu.ShaderModuleDescriptor
}

type PipelineLayout struct {
	Handle
	Desc gpu.PipelineLayoutDescriptor
}

type RenderPipeline struct {
	Handle
	Desc gpu.RenderPipelineDescriptor
}

type CommandBuffer struct {
	Handle
	Encoder *CommandEncoder
}

// Command is one call recorded into a RenderPass.
type Command struct {
	Op            string
	Pipeline      gpu.RenderPipeline
	Index         uint32
	Group         gpu.BindGroup
	Buffer        gpu.Buffer
	Count         uint32
	InstanceCount uint32
}

type RenderPass struct {
	Desc     gpu.RenderPassDescriptor
	Commands []Command
	Ended    bool
}

// Ops returns the recorded command names in order.
func (p *RenderPass) Ops() []string {
	ops := make([]string, len(p.Commands))
	for i, c := range p.Commands {
		ops[i] = c.Op
	}
	return ops
}

// Draws returns only the Draw and DrawIndexed commands.
func (p *RenderPass) Draws() []Command {
	var draws []Command
	for _, c := range p.Commands {
		if c.Op == "Draw" || c.Op == "DrawIndexed" {
			draws = append(draws, c)
		}
	}
	return draws
}

func (p *RenderPass) SetPipeline(pipeline gpu.RenderPipeline) {
	p.Commands = append(p.Commands, Command{Op: "SetPipeline", Pipeline: pipeline})
}

func (p *RenderPass) SetBindGroup(index uint32, group gpu.BindGroup) {
	p.Commands = append(p.Commands, Command{Op: "SetBindGroup", Index: index, Group: group})
}

func (p *RenderPass) SetVertexBuffer(slot uint32, buffer gpu.Buffer) {
	p.Commands = append(p.Commands, Command{Op: "SetVertexBuffer", Index: slot, Buffer: buffer})
}

func (p *RenderPass) SetIndexBuffer(buffer gpu.Buffer, _ wgpu.IndexFormat) {
	p.Commands = append(p.Commands, Command{Op: "SetIndexBuffer", Buffer: buffer})
}

func (p *RenderPass) Draw(vertexCount, instanceCount, _, _ uint32) {
	p.Commands = append(p.Commands, Command{Op: "Draw", Count: vertexCount, InstanceCount: instanceCount})
}

func (p *RenderPass) DrawIndexed(indexCount, instanceCount, _ uint32, _ int32, _ uint32) {
	p.Commands = append(p.Commands, Command{Op: "DrawIndexed", Count: indexCount, InstanceCount: instanceCount})
}

func (p *RenderPass) End() { p.Ended = true }

type CommandEncoder struct {
	Handle
	Passes   []*RenderPass
	Finished bool
}

func (e *CommandEncoder) BeginRenderPass(desc *gpu.RenderPassDescriptor) gpu.RenderPass {
	p := &RenderPass{Desc: *desc}
	e.Passes = append(e.Passes, p)
	return p
}

func (e *CommandEncoder) Finish(label string) (gpu.CommandBuffer, error) {
	for i, p := range e.Passes {
		if !p.Ended {
			return nil, fmt.Errorf("gputest: encoder %q finished with pass %d still open", e.Label, i)
		}
	}
	e.Finished = true
	return &CommandBuffer{Handle: Handle{Label: label}, Encoder: e}, nil
}

// Device records every object it creates. Setting an entry in Errors makes the matching
// Create call fail; keys are "Buffer", "Texture", "Sampler", "BindGroupLayout", "BindGroup",
// "ShaderModule", "PipelineLayout", "RenderPipeline" and "CommandEncoder".
type Device struct {
	Handle
	Buffers         []*Buffer
	Textures        []*Texture
	Samplers        []*Sampler
	Layouts         []*BindGroupLayout
	Groups          []*BindGroup
	Modules         []*ShaderModule
	PipelineLayouts []*PipelineLayout
	Pipelines       []*RenderPipeline
	Encoders        []*CommandEncoder
	Errors          map[string]error
}

var _ gpu.Device = &Device{}

// NewDevice creates an empty recording device.
func NewDevice() *Device {
	return &Device{Errors: make(map[string]error)}
}

func (d *Device) CreateBuffer(desc *wgpu.BufferDescriptor) (gpu.Buffer, error) {
	if err := d.Errors["Buffer"]; err != nil {
		return nil, err
	}
	b := &Buffer{Handle: Handle{Label: desc.Label}, Desc: *desc}
	d.Buffers = append(d.Buffers, b)
	return b, nil
}

func (d *Device) CreateTexture(desc *wgpu.TextureDescriptor) (gpu.Texture, error) {
	if err := d.Errors["Texture"]; err != nil {
		return nil, err
	}
	t := &Texture{Handle: Handle{Label: desc.Label}, Desc: *desc}
	d.Textures = append(d.Textures, t)
	return t, nil
}

func (d *Device) CreateSampler(desc *wgpu.SamplerDescriptor) (gpu.Sampler, error) {
	if err := d.Errors["Sampler"]; err != nil {
		return nil, err
	}
	s := &Sampler{Handle: Handle{Label: desc.Label}, Desc: *desc}
	d.Samplers = append(d.Samplers, s)
	return s, nil
}

func (d *Device) CreateBindGroupLayout(desc *gpu.BindGroupLayoutDescriptor) (gpu.BindGroupLayout, error) {
	if err := d.Errors["BindGroupLayout"]; err != nil {
		return nil, err
	}
	l := &BindGroupLayout{Handle: Handle{Label: desc.Label}, Desc: *desc}
	d.Layouts = append(d.Layouts, l)
	return l, nil
}

func (d *Device) CreateBindGroup(desc *gpu.BindGroupDescriptor) (gpu.BindGroup, error) {
	if err := d.Errors["BindGroup"]; err != nil {
		return nil, err
	}
	g := &BindGroup{Handle: Handle{Label: desc.Label}, Desc: *desc}
	d.Groups = append(d.Groups, g)
	return g, nil
}

func (d *Device) CreateShaderModule(desc *gpu.ShaderModuleDescriptor) (gpu.ShaderModule, error) {
	if err := d.Errors["ShaderModule"]; err != nil {
		return nil, err
	}
	m := &ShaderModule{Handle: Handle{Label: desc.Label}, Desc: *desc}
	d.Modules = append(d.Modules, m)
	return m, nil
}

func (d *Device) CreatePipelineLayout(desc *gpu.PipelineLayoutDescriptor) (gpu.PipelineLayout, error) {
	if err := d.Errors["PipelineLayout"]; err != nil {
		return nil, err
	}
	l := &PipelineLayout{Handle: Handle{Label: desc.Label}, Desc: *desc}
	d.PipelineLayouts = append(d.PipelineLayouts, l)
	return l, nil
}

func (d *Device) CreateRenderPipeline(desc *gpu.RenderPipelineDescriptor) (gpu.RenderPipeline, error) {
	if err := d.Errors["RenderPipeline"]; err != nil {
		return nil, err
	}
	p := &RenderPipeline{Handle: Handle{Label: desc.Label}, Desc: *desc}
	d.Pipelines = append(d.Pipelines, p)
	return p, nil
}

func (d *Device) CreateCommandEncoder(label string) (gpu.CommandEncoder, error) {
	if err := d.Errors["CommandEncoder"]; err != nil {
		return nil, err
	}
	e := &CommandEncoder{Handle: Handle{Label: label}}
	d.Encoders = append(d.Encoders, e)
	return e, nil
}

// TexturesByLabel returns every created texture carrying label, in creation order.
func (d *Device) TexturesByLabel(label string) []*Texture {
	var out []*Texture
	for _, t := range d.Textures {
		if t.Label == label {
			out = append(out, t)
		}
	}
	return out
}

// EncoderByLabel returns the last created encoder carrying label, or nil.
func (d *Device) EncoderByLabel(label string) *CommandEncoder {
	for i := len(d.Encoders) - 1; i >= 0; i-- {
		if d.Encoders[i].Label == label {
			return d.Encoders[i]
		}
	}
	return nil
}

type BufferWrite struct {
	Buffer gpu.Buffer
	Offset uint64
	Data   []byte
}

type TextureWrite struct {
	Dst    gpu.ImageCopyTexture
	Data   []byte
	Layout wgpu.TextureDataLayout
	Size   wgpu.Extent3D
}

// Queue records writes and submissions.
type Queue struct {
	BufferWrites  []BufferWrite
	TextureWrites []TextureWrite
	Submissions   [][]gpu.CommandBuffer
}

var _ gpu.Queue = &Queue{}

func (q *Queue) WriteBuffer(buffer gpu.Buffer, offset uint64, data []byte) {
	q.BufferWrites = append(q.BufferWrites, BufferWrite{Buffer: buffer, Offset: offset, Data: append([]byte(nil), data...)})
}

func (q *Queue) WriteTexture(dst *gpu.ImageCopyTexture, data []byte, layout *wgpu.TextureDataLayout, size *wgpu.Extent3D) {
	q.TextureWrites = append(q.TextureWrites, TextureWrite{Dst: *dst, Data: data, Layout: *layout, Size: *size})
}

func (q *Queue) Submit(buffers ...gpu.CommandBuffer) {
	q.Submissions = append(q.Submissions, buffers)
}

// WritesTo returns the buffer writes that targeted buffer, in order.
func (q *Queue) WritesTo(buffer gpu.Buffer) []BufferWrite {
	var out []BufferWrite
	for _, w := range q.BufferWrites {
		if w.Buffer == buffer {
			out = append(out, w)
		}
	}
	return out
}

// Surface is a fake presentable surface. AcquireErrors is consumed one entry per
// GetCurrentTexture call; a nil entry (or an exhausted slice) acquires successfully.
type Surface struct {
	Handle
	Caps          gpu.SurfaceCapabilities
	Configs       []wgpu.SurfaceConfiguration
	AcquireErrors []error
	Acquired      []*Texture
	Presented     int
}

var _ gpu.Surface = &Surface{}

// NewSurface returns a surface supporting the given formats with FIFO presentation and auto alpha.
func NewSurface(formats ...wgpu.TextureFormat) *Surface {
	return &Surface{Caps: gpu.SurfaceCapabilities{
		Formats:      formats,
		PresentModes: []wgpu.PresentMode{wgpu.PresentModeFifo, wgpu.PresentModeImmediate},
		AlphaModes:   []wgpu.CompositeAlphaMode{wgpu.CompositeAlphaModeOpaque},
	}}
}

func (s *Surface) Capabilities() gpu.SurfaceCapabilities { return s.Caps }

func (s *Surface) Configure(cfg *wgpu.SurfaceConfiguration) {
	s.Configs = append(s.Configs, *cfg)
}

func (s *Surface) GetCurrentTexture() (gpu.Texture, error) {
	if len(s.AcquireErrors) > 0 {
		err := s.AcquireErrors[0]
		s.AcquireErrors = s.AcquireErrors[1:]
		if err != nil {
			return nil, err
		}
	}
	var cfg wgpu.SurfaceConfiguration
	if n := len(s.Configs); n > 0 {
		cfg = s.Configs[n-1]
	}
	t := &Texture{
		Handle: Handle{Label: "swapchain"},
		Desc: wgpu.TextureDescriptor{
			Size:          wgpu.Extent3D{Width: cfg.Width, Height: cfg.Height, DepthOrArrayLayers: 1},
			MipLevelCount: 1,
			SampleCount:   1,
			Format:        cfg.Format,
		},
	}
	s.Acquired = append(s.Acquired, t)
	return t, nil
}

func (s *Surface) Present() { s.Presented++ }

// Negotiator hands out a fixed fake device, queue and surface.
type Negotiator struct {
	Device  *Device
	Queue   *Queue
	Surface *Surface
	Err     error
	Calls   int
	Options gpu.NegotiateOptions
}

var _ gpu.Negotiator = &Negotiator{}

// NewNegotiator builds a negotiator around a fresh device and queue and the given surface.
func NewNegotiator(surface *Surface) *Negotiator {
	return &Negotiator{Device: NewDevice(), Queue: &Queue{}, Surface: surface}
}

func (n *Negotiator) Negotiate(ctx context.Context, _ gpu.SurfaceTarget, opts gpu.NegotiateOptions) (*gpu.Negotiated, error) {
	n.Calls++
	n.Options = opts
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if n.Err != nil {
		return nil, n.Err
	}
	return &gpu.Negotiated{
		Context: gpu.NewContext(n.Device, n.Queue),
		Surface: n.Surface,
	}, nil
}

// Target is a SurfaceTarget without a native window.
type Target struct{}

func (Target) SurfaceDescriptor() *wgpu.SurfaceDescriptor { return &wgpu.SurfaceDescriptor{} }

// NewContext returns a context backed by a fresh recording device and queue.
func NewContext() (*gpu.Context, *Device, *Queue) {
	d := NewDevice()
	q := &Queue{}
	return gpu.NewContext(d, q), d, q
}
