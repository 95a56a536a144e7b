package shader

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-boids/engine/gpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinSourcesDeclareEntryPoints(t *testing.T) {
	for _, key := range []string{SceneKey, BackgroundKey, BlitKey, UIKey} {
		t.Run(key, func(t *testing.T) {
			source, ok := Builtin(key)
			require.True(t, ok)
			vs, fs := parseEntryPoints(source)
			assert.Equal(t, VertexEntryPoint, vs)
			assert.Equal(t, FragmentEntryPoint, fs)
		})
	}

	_, ok := Builtin("missing")
	assert.False(t, ok)
}

func TestNewRejectsMissingEntryPoints(t *testing.T) {
	vertexOnly := `
@vertex
fn vs_main() -> @builtin(position) vec4<f32> {
    return vec4<f32>(0.0, 0.0, 0.0, 1.0);
}
`
	_, err := New("vertex_only", vertexOnly)
	assert.ErrorIs(t, err, ErrMissingEntryPoint)

	commentedFragment := vertexOnly + `
// @fragment
// fn fs_main() -> @location(0) vec4<f32> { return vec4<f32>(1.0); }
/* @fragment fn fs_main() {} */
`
	_, err = New("commented", commentedFragment)
	assert.ErrorIs(t, err, ErrMissingEntryPoint)

	renamed := `
@vertex
fn main_vs() -> @builtin(position) vec4<f32> {
    return vec4<f32>(0.0, 0.0, 0.0, 1.0);
}

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0, 1.0, 1.0, 1.0);
}
`
	_, err = New("renamed", renamed)
	assert.ErrorIs(t, err, ErrMissingEntryPoint)
}

func TestNewBuiltinBlit(t *testing.T) {
	s, err := NewBuiltin(BlitKey)
	require.NoError(t, err)

	assert.Equal(t, BlitKey, s.Key())
	assert.Equal(t, BlitSource, s.Source())
	assert.Equal(t, &gpu.ShaderModuleDescriptor{Label: BlitKey, WGSL: BlitSource}, s.Module())
	assert.Equal(t, []Binding{
		{Group: 0, Binding: 0, Name: "t_src", Kind: gpu.BindingKindTexture},
		{Group: 0, Binding: 1, Name: "s_src", Kind: gpu.BindingKindSampler},
	}, s.Bindings())
}

func TestNewBuiltinUnknownKey(t *testing.T) {
	_, err := NewBuiltin("nope")
	assert.Error(t, err)
}

func TestParseBindingsScene(t *testing.T) {
	bindings := parseBindings(SceneSource)
	assert.Equal(t, []Binding{
		{Group: 0, Binding: 0, Name: "camera", Kind: gpu.BindingKindBuffer},
		{Group: 1, Binding: 0, Name: "t_diffuse", Kind: gpu.BindingKindTexture},
		{Group: 1, Binding: 1, Name: "s_diffuse", Kind: gpu.BindingKindSampler},
		{Group: 2, Binding: 0, Name: "tints", Kind: gpu.BindingKindBuffer},
	}, bindings)
}

func TestParseBindingsOrdersAndSkipsComments(t *testing.T) {
	source := `
@group(1) @binding(1) var s: sampler;
// @group(0) @binding(5) var<uniform> ghost: f32;
@group(0) @binding(2) var<storage, read> data: array<f32>;
@group(1) @binding(0) var t: texture_depth_2d;
`
	assert.Equal(t, []Binding{
		{Group: 0, Binding: 2, Name: "data", Kind: gpu.BindingKindBuffer},
		{Group: 1, Binding: 0, Name: "t", Kind: gpu.BindingKindTexture},
		{Group: 1, Binding: 1, Name: "s", Kind: gpu.BindingKindSampler},
	}, parseBindings(source))
}

func TestStripBlockCommentsNested(t *testing.T) {
	assert.Equal(t, "a  b", stripBlockComments("a /* x /* y */ z */ b"))
}
