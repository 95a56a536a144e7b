package material

import "github.com/Carmen-Shannon/oxy-boids/engine/renderer/texture"

// MaterialBuilderOption is a functional option for configuring a Material via NewMaterial.
type MaterialBuilderOption func(*material)

// WithName is an option builder that sets the name of the Material.
// The name prefixes the labels of the texture and the bind group.
//
// Parameters:
//   - name: the material identifier
//
// Returns:
//   - MaterialBuilderOption: a function that applies the name option to a material
func WithName(name string) MaterialBuilderOption {
	return func(m *material) {
		m.name = name
	}
}

// WithPipelineKey is an option builder that sets the pipeline the material is drawn with.
//
// Parameters:
//   - key: the pipeline key
//
// Returns:
//   - MaterialBuilderOption: a function that applies the pipeline key option to a material
func WithPipelineKey(key string) MaterialBuilderOption {
	return func(m *material) {
		m.pipelineKey = key
	}
}

// WithSamplerOptions is an option builder that configures the diffuse texture's sampler.
//
// Parameters:
//   - opts: the sampler options
//
// Returns:
//   - MaterialBuilderOption: a function that applies the sampler options to a material
func WithSamplerOptions(opts texture.SamplerOptions) MaterialBuilderOption {
	return func(m *material) {
		m.samplerOptions = opts
	}
}
