package bind_group_provider

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-boids/engine/gpu"
)

// bindGroupProvider is the unexported implementation of BindGroupProvider.
type bindGroupProvider struct {
	// label is a debug label added for convenience.
	label string

	// bindGroup is the GPU bind group created for this provider.
	bindGroup gpu.BindGroup
	// layout is the layout bindGroup was created against.
	layout *Layout
	// ownsLayout is false when the layout is shared and released by someone else.
	ownsLayout bool
	// buffers holds the GPU buffers owned by this provider, keyed by binding index.
	buffers map[uint32]gpu.Buffer
}

// BindGroupProvider owns a bind group, its layout and the buffers bound into it, so that all of them
// are released together. Components (the camera, materials, the boid flock) hold a provider instead of
// loose GPU handles.
//
// Usage pattern:
//  1. Component allocates the buffers it binds
//  2. Component calls NewBindGroupProvider with a Descriptor and WithBuffer for each owned buffer
//  3. The renderer binds BindGroup() at the component's fixed slot
//  4. Component rewrites its buffers in place with WriteBuffers
type BindGroupProvider interface {
	// Release releases the group, the owned buffers and, unless shared, the layout.
	Release()

	// Label returns the debug label for this provider.
	//
	// Returns:
	//   - string: the debug label
	Label() string

	// BindGroup returns the bind group to bind at draw time.
	//
	// Returns:
	//   - gpu.BindGroup: the bind group
	BindGroup() gpu.BindGroup

	// Layout returns the layout the group was created against.
	//
	// Returns:
	//   - *Layout: the layout
	Layout() *Layout

	// Buffer returns the owned buffer at a binding index.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - gpu.Buffer: the buffer, or nil if none is owned at that binding
	Buffer(binding uint32) gpu.Buffer
}

var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates the bind group described by desc. Without WithSharedLayout the layout is
// created alongside the group and owned by the provider; with it the group is created against the shared
// layout and the layout is left alive on Release.
//
// Parameters:
//   - device: the device to allocate on
//   - desc: the group descriptor
//   - options: functional options to configure the provider
//
// Returns:
//   - BindGroupProvider: the provider
//   - error: error if the descriptor is invalid or allocation fails
func NewBindGroupProvider(device gpu.Device, desc Descriptor, options ...BindGroupProviderOption) (BindGroupProvider, error) {
	p := &bindGroupProvider{
		label:   desc.Label,
		buffers: make(map[uint32]gpu.Buffer),
	}
	for _, option := range options {
		option(p)
	}

	if p.layout != nil {
		group, err := CreateGroup(device, p.layout, desc)
		if err != nil {
			return nil, err
		}
		p.bindGroup = group
		return p, nil
	}

	group, layout, err := Create(device, desc)
	if err != nil {
		return nil, fmt.Errorf("bind group provider %q: %w", desc.Label, err)
	}
	p.bindGroup = group
	p.layout = layout
	p.ownsLayout = true
	return p, nil
}

func (p *bindGroupProvider) Release() {
	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
	for binding, buf := range p.buffers {
		buf.Release()
		delete(p.buffers, binding)
	}
	if p.ownsLayout && p.layout != nil {
		p.layout.Release()
	}
	p.layout = nil
}

func (p *bindGroupProvider) Label() string {
	return p.label
}

func (p *bindGroupProvider) BindGroup() gpu.BindGroup {
	return p.bindGroup
}

func (p *bindGroupProvider) Layout() *Layout {
	return p.layout
}

func (p *bindGroupProvider) Buffer(binding uint32) gpu.Buffer {
	return p.buffers[binding]
}
