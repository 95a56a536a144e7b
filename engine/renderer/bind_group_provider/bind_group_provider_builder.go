package bind_group_provider

import "github.com/Carmen-Shannon/oxy-boids/engine/gpu"

// BindGroupProviderOption is a functional option used to configure a BindGroupProvider during construction.
type BindGroupProviderOption func(*bindGroupProvider)

// WithBuffer hands ownership of a buffer bound at binding to the provider. The buffer is released
// together with the bind group.
//
// Parameters:
//   - binding: the binding index for this buffer
//   - buf: the buffer to associate with this binding
//
// Returns:
//   - BindGroupProviderOption: a function that records the buffer on the provider
func WithBuffer(binding uint32, buf gpu.Buffer) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.buffers[binding] = buf
	}
}

// WithSharedLayout creates the group against an existing layout instead of creating a new one.
// The provider does not release a shared layout.
//
// Parameters:
//   - layout: the shared layout; the descriptor must match its shape
//
// Returns:
//   - BindGroupProviderOption: a function that sets the shared layout
func WithSharedLayout(layout *Layout) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.layout = layout
		p.ownsLayout = false
	}
}
