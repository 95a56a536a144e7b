// Package shader loads WGSL sources, validates them, and reflects the entry points and
// resource bindings that pipeline creation is checked against.
package shader

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-boids/engine/gpu"
	"github.com/gogpu/naga"
)

const (
	// VertexEntryPoint is the vertex stage entry point every render shader must declare.
	VertexEntryPoint = "vs_main"

	// FragmentEntryPoint is the fragment stage entry point every render shader must declare.
	FragmentEntryPoint = "fs_main"
)

// ErrMissingEntryPoint is returned when a source does not declare both render entry points.
var ErrMissingEntryPoint = errors.New("shader: missing entry point")

// Shader is a validated WGSL render shader.
type Shader interface {
	// Key retrieves the unique identifier for this shader, used for labels and lookups.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source retrieves the WGSL shader source code.
	//
	// Returns:
	//   - string: the WGSL source code of the shader
	Source() string

	// Bindings returns the resource bindings the source declares, ordered by group then binding.
	//
	// Returns:
	//   - []Binding: the declared bindings
	Bindings() []Binding

	// Module returns the descriptor used to create the GPU shader module.
	//
	// Returns:
	//   - *gpu.ShaderModuleDescriptor: the module descriptor labelled with the shader key
	Module() *gpu.ShaderModuleDescriptor
}

type shader struct {
	key      string
	source   string
	bindings []Binding
}

var _ Shader = &shader{}

// New validates source and wraps it as a Shader. Both vs_main and fs_main must be declared
// as @vertex and @fragment functions, and the source must compile.
//
// Parameters:
//   - key: the unique shader key
//   - source: the WGSL source
//
// Returns:
//   - Shader: the validated shader
//   - error: ErrMissingEntryPoint, or the compiler's error
func New(key string, source string) (Shader, error) {
	vs, fs := parseEntryPoints(source)
	if vs != VertexEntryPoint {
		return nil, fmt.Errorf("%w: %q has no @vertex fn %s", ErrMissingEntryPoint, key, VertexEntryPoint)
	}
	if fs != FragmentEntryPoint {
		return nil, fmt.Errorf("%w: %q has no @fragment fn %s", ErrMissingEntryPoint, key, FragmentEntryPoint)
	}
	if _, err := naga.Compile(source); err != nil {
		return nil, fmt.Errorf("shader %q: %w", key, err)
	}
	return &shader{
		key:      key,
		source:   source,
		bindings: parseBindings(source),
	}, nil
}

// NewBuiltin validates the embedded source registered under key.
//
// Parameters:
//   - key: one of SceneKey, BackgroundKey, BlitKey or UIKey
//
// Returns:
//   - Shader: the validated shader
//   - error: error if key is unknown or validation fails
func NewBuiltin(key string) (Shader, error) {
	source, ok := Builtin(key)
	if !ok {
		return nil, fmt.Errorf("shader: no builtin source %q", key)
	}
	return New(key, source)
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) Bindings() []Binding {
	return append([]Binding(nil), s.bindings...)
}

func (s *shader) Module() *gpu.ShaderModuleDescriptor {
	return &gpu.ShaderModuleDescriptor{
		Label: s.key,
		WGSL:  s.source,
	}
}
