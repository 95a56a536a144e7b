package gpu

import (
	"context"
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// ErrBindingArrayUnsupported is returned when a layout entry requests a binding array,
// which the wgpu binding does not expose.
var ErrBindingArrayUnsupported = errors.New("gpu: binding arrays are not supported by the wgpu backend")

type wgpuBuffer struct {
	b    *wgpu.Buffer
	size uint64
}

type wgpuTexture struct {
	t         *wgpu.Texture
	width     uint32
	height    uint32
	mipLevels uint32
	samples   uint32
	format    wgpu.TextureFormat
}

type wgpuTextureView struct{ v *wgpu.TextureView }
type wgpuSampler struct{ s *wgpu.Sampler }
type wgpuBindGroupLayout struct{ l *wgpu.BindGroupLayout }
type wgpuBindGroup struct{ g *wgpu.BindGroup }
type wgpuShaderModule struct{ m *wgpu.ShaderModule }
type wgpuPipelineLayout struct{ l *wgpu.PipelineLayout }
type wgpuRenderPipeline struct{ p *wgpu.RenderPipeline }
type wgpuCommandBuffer struct{ c *wgpu.CommandBuffer }

type wgpuCommandEncoder struct{ e *wgpu.CommandEncoder }
type wgpuRenderPass struct{ p *wgpu.RenderPassEncoder }

type wgpuDevice struct{ d *wgpu.Device }
type wgpuQueue struct{ q *wgpu.Queue }

type wgpuSurface struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	surface  *wgpu.Surface
	config   wgpu.SurfaceConfiguration
}

var (
	_ Buffer          = &wgpuBuffer{}
	_ Texture         = &wgpuTexture{}
	_ TextureView     = &wgpuTextureView{}
	_ Sampler         = &wgpuSampler{}
	_ BindGroupLayout = &wgpuBindGroupLayout{}
	_ BindGroup       = &wgpuBindGroup{}
	_ ShaderModule    = &wgpuShaderModule{}
	_ PipelineLayout  = &wgpuPipelineLayout{}
	_ RenderPipeline  = &wgpuRenderPipeline{}
	_ CommandBuffer   = &wgpuCommandBuffer{}
	_ CommandEncoder  = &wgpuCommandEncoder{}
	_ RenderPass      = &wgpuRenderPass{}
	_ Device          = &wgpuDevice{}
	_ Queue           = &wgpuQueue{}
	_ Surface         = &wgpuSurface{}
	_ Negotiator      = WGPUNegotiator{}
)

// WGPUNegotiator negotiates a real adapter and device through wgpu-native.
type WGPUNegotiator struct{}

type negotiation struct {
	adapter *wgpu.Adapter
	device  *wgpu.Device
	err     error
}

func (WGPUNegotiator) Negotiate(ctx context.Context, target SurfaceTarget, opts NegotiateOptions) (*Negotiated, error) {
	desc := target.SurfaceDescriptor()
	if desc == nil {
		return nil, fmt.Errorf("gpu: surface target has no native surface descriptor")
	}

	instance := wgpu.CreateInstance(nil)
	surface := instance.CreateSurface(desc)
	if surface == nil {
		instance.Release()
		return nil, fmt.Errorf("gpu: failed to create surface")
	}

	label := opts.DeviceLabel
	if label == "" {
		label = "Main Device"
	}

	done := make(chan negotiation, 1)
	go func() {
		a, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
			ForceFallbackAdapter: opts.ForceFallbackAdapter,
			PowerPreference:      opts.PowerPreference,
			CompatibleSurface:    surface,
		})
		if err != nil {
			done <- negotiation{err: fmt.Errorf("gpu: no compatible adapter: %w", err)}
			return
		}
		d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
			Label: label,
			RequiredLimits: &wgpu.RequiredLimits{
				Limits: wgpu.DefaultLimits(),
			},
		})
		if err != nil {
			a.Release()
			done <- negotiation{err: fmt.Errorf("gpu: failed to open device: %w", err)}
			return
		}
		done <- negotiation{adapter: a, device: d}
	}()

	select {
	case <-ctx.Done():
		go func() {
			n := <-done
			if n.device != nil {
				n.device.Release()
			}
			if n.adapter != nil {
				n.adapter.Release()
			}
			surface.Release()
			instance.Release()
		}()
		return nil, ctx.Err()
	case n := <-done:
		if n.err != nil {
			surface.Release()
			instance.Release()
			return nil, n.err
		}
		device := &wgpuDevice{d: n.device}
		return &Negotiated{
			Context: NewContext(device, &wgpuQueue{q: n.device.GetQueue()}),
			Surface: &wgpuSurface{
				instance: instance,
				adapter:  n.adapter,
				device:   n.device,
				surface:  surface,
			},
		}, nil
	}
}

// --- handles ---

func (b *wgpuBuffer) Release() {
	if b.b != nil {
		b.b.Release()
		b.b = nil
	}
}

func (b *wgpuBuffer) Size() uint64 {
	return b.size
}

func (t *wgpuTexture) Release() {
	if t.t != nil {
		t.t.Release()
		t.t = nil
	}
}

func (t *wgpuTexture) CreateView(desc *wgpu.TextureViewDescriptor) (TextureView, error) {
	v, err := t.t.CreateView(desc)
	if err != nil {
		return nil, err
	}
	return &wgpuTextureView{v: v}, nil
}

func (t *wgpuTexture) Width() uint32              { return t.width }
func (t *wgpuTexture) Height() uint32             { return t.height }
func (t *wgpuTexture) MipLevelCount() uint32      { return t.mipLevels }
func (t *wgpuTexture) SampleCount() uint32        { return t.samples }
func (t *wgpuTexture) Format() wgpu.TextureFormat { return t.format }

func (v *wgpuTextureView) Release() {
	if v.v != nil {
		v.v.Release()
		v.v = nil
	}
}

func (s *wgpuSampler) Release() {
	if s.s != nil {
		s.s.Release()
		s.s = nil
	}
}

func (l *wgpuBindGroupLayout) Release() {
	if l.l != nil {
		l.l.Release()
		l.l = nil
	}
}

func (g *wgpuBindGroup) Release() {
	if g.g != nil {
		g.g.Release()
		g.g = nil
	}
}

func (m *wgpuShaderModule) Release() {
	if m.m != nil {
		m.m.Release()
		m.m = nil
	}
}

func (l *wgpuPipelineLayout) Release() {
	if l.l != nil {
		l.l.Release()
		l.l = nil
	}
}

func (p *wgpuRenderPipeline) Release() {
	if p.p != nil {
		p.p.Release()
		p.p = nil
	}
}

func (c *wgpuCommandBuffer) Release() {
	if c.c != nil {
		c.c.Release()
		c.c = nil
	}
}

// --- device ---

func (d *wgpuDevice) Release() {
	if d.d != nil {
		d.d.Release()
		d.d = nil
	}
}

func (d *wgpuDevice) CreateBuffer(desc *wgpu.BufferDescriptor) (Buffer, error) {
	b, err := d.d.CreateBuffer(desc)
	if err != nil {
		return nil, err
	}
	return &wgpuBuffer{b: b, size: desc.Size}, nil
}

func (d *wgpuDevice) CreateTexture(desc *wgpu.TextureDescriptor) (Texture, error) {
	t, err := d.d.CreateTexture(desc)
	if err != nil {
		return nil, err
	}
	return &wgpuTexture{
		t:         t,
		width:     desc.Size.Width,
		height:    desc.Size.Height,
		mipLevels: desc.MipLevelCount,
		samples:   desc.SampleCount,
		format:    desc.Format,
	}, nil
}

func (d *wgpuDevice) CreateSampler(desc *wgpu.SamplerDescriptor) (Sampler, error) {
	s, err := d.d.CreateSampler(desc)
	if err != nil {
		return nil, err
	}
	return &wgpuSampler{s: s}, nil
}

func (d *wgpuDevice) CreateBindGroupLayout(desc *BindGroupLayoutDescriptor) (BindGroupLayout, error) {
	entries := make([]wgpu.BindGroupLayoutEntry, len(desc.Entries))
	for i, e := range desc.Entries {
		if e.Count > 1 {
			return nil, fmt.Errorf("%w: binding %d requests %d elements", ErrBindingArrayUnsupported, e.Binding, e.Count)
		}
		entries[i] = wgpu.BindGroupLayoutEntry{
			Binding:    e.Binding,
			Visibility: e.Visibility,
			Buffer:     e.Type.Buffer,
			Sampler:    e.Type.Sampler,
			Texture:    e.Type.Texture,
		}
	}
	l, err := d.d.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   desc.Label,
		Entries: entries,
	})
	if err != nil {
		return nil, err
	}
	return &wgpuBindGroupLayout{l: l}, nil
}

func (d *wgpuDevice) CreateBindGroup(desc *BindGroupDescriptor) (BindGroup, error) {
	layout, ok := desc.Layout.(*wgpuBindGroupLayout)
	if !ok {
		return nil, fmt.Errorf("gpu: bind group %q: layout was not created by this device", desc.Label)
	}
	entries := make([]wgpu.BindGroupEntry, len(desc.Entries))
	for i, e := range desc.Entries {
		entry := wgpu.BindGroupEntry{Binding: e.Binding}
		switch {
		case e.Resource.Buffer != nil:
			entry.Buffer = e.Resource.Buffer.(*wgpuBuffer).b
			entry.Offset = e.Resource.Offset
			entry.Size = e.Resource.Size
			if entry.Size == 0 {
				entry.Size = wgpu.WholeSize
			}
		case e.Resource.TextureView != nil:
			entry.TextureView = e.Resource.TextureView.(*wgpuTextureView).v
		case e.Resource.Sampler != nil:
			entry.Sampler = e.Resource.Sampler.(*wgpuSampler).s
		default:
			return nil, fmt.Errorf("gpu: bind group %q: binding %d has no resource", desc.Label, e.Binding)
		}
		entries[i] = entry
	}
	g, err := d.d.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   desc.Label,
		Layout:  layout.l,
		Entries: entries,
	})
	if err != nil {
		return nil, err
	}
	return &wgpuBindGroup{g: g}, nil
}

func (d *wgpuDevice) CreateShaderModule(desc *ShaderModuleDescriptor) (ShaderModule, error) {
	m, err := d.d.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: desc.Label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: desc.WGSL,
		},
	})
	if err != nil {
		return nil, err
	}
	return &wgpuShaderModule{m: m}, nil
}

func (d *wgpuDevice) CreatePipelineLayout(desc *PipelineLayoutDescriptor) (PipelineLayout, error) {
	layouts := make([]*wgpu.BindGroupLayout, len(desc.BindGroupLayouts))
	for i, l := range desc.BindGroupLayouts {
		layouts[i] = l.(*wgpuBindGroupLayout).l
	}
	l, err := d.d.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            desc.Label,
		BindGroupLayouts: layouts,
	})
	if err != nil {
		return nil, err
	}
	return &wgpuPipelineLayout{l: l}, nil
}

func (d *wgpuDevice) CreateRenderPipeline(desc *RenderPipelineDescriptor) (RenderPipeline, error) {
	module := desc.Module.(*wgpuShaderModule).m
	p, err := d.d.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  desc.Label,
		Layout: desc.Layout.(*wgpuPipelineLayout).l,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: desc.VertexEntryPoint,
			Buffers:    desc.VertexBuffers,
		},
		Primitive:    desc.Primitive,
		DepthStencil: desc.DepthStencil,
		Multisample:  desc.Multisample,
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: desc.FragmentEntryPoint,
			Targets:    desc.Targets,
		},
	})
	if err != nil {
		return nil, err
	}
	return &wgpuRenderPipeline{p: p}, nil
}

func (d *wgpuDevice) CreateCommandEncoder(label string) (CommandEncoder, error) {
	e, err := d.d.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return nil, err
	}
	return &wgpuCommandEncoder{e: e}, nil
}

// --- queue ---

func (q *wgpuQueue) WriteBuffer(buffer Buffer, offset uint64, data []byte) {
	q.q.WriteBuffer(buffer.(*wgpuBuffer).b, offset, data)
}

func (q *wgpuQueue) WriteTexture(dst *ImageCopyTexture, data []byte, layout *wgpu.TextureDataLayout, size *wgpu.Extent3D) {
	q.q.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  dst.Texture.(*wgpuTexture).t,
			MipLevel: dst.MipLevel,
			Origin:   dst.Origin,
			Aspect:   dst.Aspect,
		},
		data,
		layout,
		size,
	)
}

func (q *wgpuQueue) Submit(buffers ...CommandBuffer) {
	cmds := make([]*wgpu.CommandBuffer, len(buffers))
	for i, b := range buffers {
		cmds[i] = b.(*wgpuCommandBuffer).c
	}
	q.q.Submit(cmds...)
}

// --- encoding ---

func (e *wgpuCommandEncoder) Release() {
	if e.e != nil {
		e.e.Release()
		e.e = nil
	}
}

func (e *wgpuCommandEncoder) BeginRenderPass(desc *RenderPassDescriptor) RenderPass {
	colors := make([]wgpu.RenderPassColorAttachment, len(desc.ColorAttachments))
	for i, c := range desc.ColorAttachments {
		colors[i] = wgpu.RenderPassColorAttachment{
			View:       unwrapView(c.View),
			LoadOp:     c.LoadOp,
			StoreOp:    c.StoreOp,
			ClearValue: c.ClearValue,
		}
		if c.ResolveTarget != nil {
			colors[i].ResolveTarget = unwrapView(c.ResolveTarget)
		}
	}
	pass := &wgpu.RenderPassDescriptor{
		Label:            desc.Label,
		ColorAttachments: colors,
	}
	if d := desc.DepthStencilAttachment; d != nil {
		pass.DepthStencilAttachment = &wgpu.RenderPassDepthStencilAttachment{
			View:            unwrapView(d.View),
			DepthLoadOp:     d.DepthLoadOp,
			DepthStoreOp:    d.DepthStoreOp,
			DepthClearValue: d.DepthClearValue,
		}
	}
	return &wgpuRenderPass{p: e.e.BeginRenderPass(pass)}
}

func (e *wgpuCommandEncoder) Finish(label string) (CommandBuffer, error) {
	c, err := e.e.Finish(&wgpu.CommandBufferDescriptor{Label: label})
	if err != nil {
		return nil, err
	}
	return &wgpuCommandBuffer{c: c}, nil
}

func (p *wgpuRenderPass) SetPipeline(pipeline RenderPipeline) {
	p.p.SetPipeline(pipeline.(*wgpuRenderPipeline).p)
}

func (p *wgpuRenderPass) SetBindGroup(index uint32, group BindGroup) {
	p.p.SetBindGroup(index, group.(*wgpuBindGroup).g, nil)
}

func (p *wgpuRenderPass) SetVertexBuffer(slot uint32, buffer Buffer) {
	p.p.SetVertexBuffer(slot, buffer.(*wgpuBuffer).b, 0, wgpu.WholeSize)
}

func (p *wgpuRenderPass) SetIndexBuffer(buffer Buffer, format wgpu.IndexFormat) {
	p.p.SetIndexBuffer(buffer.(*wgpuBuffer).b, format, 0, wgpu.WholeSize)
}

func (p *wgpuRenderPass) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	p.p.Draw(vertexCount, instanceCount, firstVertex, firstInstance)
}

func (p *wgpuRenderPass) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	p.p.DrawIndexed(indexCount, instanceCount, firstIndex, baseVertex, firstInstance)
}

func (p *wgpuRenderPass) End() {
	p.p.End()
}

// --- surface ---

func (s *wgpuSurface) Release() {
	if s.surface != nil {
		s.surface.Release()
		s.surface = nil
	}
	if s.adapter != nil {
		s.adapter.Release()
		s.adapter = nil
	}
	if s.instance != nil {
		s.instance.Release()
		s.instance = nil
	}
}

func (s *wgpuSurface) Capabilities() SurfaceCapabilities {
	caps := s.surface.GetCapabilities(s.adapter)
	return SurfaceCapabilities{
		Formats:      caps.Formats,
		PresentModes: caps.PresentModes,
		AlphaModes:   caps.AlphaModes,
	}
}

func (s *wgpuSurface) Configure(cfg *wgpu.SurfaceConfiguration) {
	s.config = *cfg
	s.surface.Configure(s.adapter, s.device, cfg)
}

func (s *wgpuSurface) GetCurrentTexture() (Texture, error) {
	t, err := s.surface.GetCurrentTexture()
	if err != nil {
		return nil, err
	}
	return &wgpuTexture{
		t:         t,
		width:     s.config.Width,
		height:    s.config.Height,
		mipLevels: 1,
		samples:   1,
		format:    s.config.Format,
	}, nil
}

func (s *wgpuSurface) Present() {
	s.surface.Present()
}

func unwrapView(v TextureView) *wgpu.TextureView {
	if v == nil {
		return nil
	}
	return v.(*wgpuTextureView).v
}
