package boids

import (
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
)

// GPUInstanceData is the GPU-aligned representation of one boid's per-instance vertex data.
// Matches the InstanceInput struct of the scene shader (locations 5 to 8).
// Size: 64 bytes.
type GPUInstanceData struct {
	Model [16]float32 // offset 0, size 64 (mat4x4<f32>, one vec4 column per location)
}

// Size returns the size of the GPUInstanceData struct in bytes.
//
// Returns:
//   - int: The size of the struct in bytes.
func (g *GPUInstanceData) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUInstanceData struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 64-byte buffer ready for GPU upload.
func (g *GPUInstanceData) Marshal() []byte {
	buf := make([]byte, 64)
	g.put(buf)
	return buf
}

func (g *GPUInstanceData) put(buf []byte) {
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[i*4:(i+1)*4], math.Float32bits(g.Model[i]))
	}
}

// GPUTint is one element of the read-only tint storage array.
// RGB is padded to a vec4 to satisfy the storage array stride.
// Size: 16 bytes.
type GPUTint struct {
	Color [4]float32 // offset 0: r, g, b, 1
}

// Size returns the size of the GPUTint struct in bytes.
//
// Returns:
//   - int: The size of the struct in bytes.
func (g *GPUTint) Size() int {
	return int(unsafe.Sizeof(*g))
}

// MarshalTints serializes tints back to back.
//
// Parameters:
//   - tints: the tints to serialize
//
// Returns:
//   - []byte: len(tints) * 16 bytes
func MarshalTints(tints []GPUTint) []byte {
	buf := make([]byte, len(tints)*16)
	for i, t := range tints {
		for j, c := range t.Color {
			binary.LittleEndian.PutUint32(buf[i*16+j*4:], math.Float32bits(c))
		}
	}
	return buf
}

// InstanceLayout returns the per-instance buffer layout of GPUInstanceData: the four model matrix
// columns at locations 5, 6, 7 and 8.
//
// Returns:
//   - wgpu.VertexBufferLayout: the instance buffer layout (stride 64)
func InstanceLayout() wgpu.VertexBufferLayout {
	attrs := make([]wgpu.VertexAttribute, 4)
	for i := range attrs {
		attrs[i] = wgpu.VertexAttribute{
			Format:         wgpu.VertexFormatFloat32x4,
			Offset:         uint64(i * 16),
			ShaderLocation: uint32(5 + i),
		}
	}
	return wgpu.VertexBufferLayout{
		ArrayStride: 64,
		StepMode:    wgpu.VertexStepModeInstance,
		Attributes:  attrs,
	}
}
