package model

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-boids/engine/gpu"
	"github.com/Carmen-Shannon/oxy-boids/engine/renderer"
	"github.com/Carmen-Shannon/oxy-boids/engine/renderer/material"
	"github.com/cogentcore/webgpu/wgpu"
)

// model is the implementation of the Model interface.
type model struct {
	name         string
	mesh         *Mesh
	vertexBuffer gpu.Buffer
	indexBuffer  gpu.Buffer
	material     material.Material
}

// Model is a mesh uploaded to GPU vertex and index buffers, drawn with one material.
// The model owns its material and releases it together with the buffers.
type Model interface {
	// Name retrieves the model identifier.
	//
	// Returns:
	//   - string: the model name
	Name() string

	// Mesh retrieves the CPU-side mesh the buffers were filled from.
	//
	// Returns:
	//   - *Mesh: the mesh
	Mesh() *Mesh

	// VertexBuffer retrieves the GPU vertex buffer.
	VertexBuffer() gpu.Buffer

	// IndexBuffer retrieves the GPU index buffer (uint32 indices).
	IndexBuffer() gpu.Buffer

	// IndexCount returns the number of indices to draw.
	//
	// Returns:
	//   - uint32: the index count
	IndexCount() uint32

	// Material retrieves the material the model is drawn with.
	//
	// Returns:
	//   - material.Material: the material, or nil if not set
	Material() material.Material

	// DrawItem describes one non-instanced draw of the model for the frame renderer.
	//
	// Returns:
	//   - renderer.DrawItem: the draw item
	DrawItem() renderer.DrawItem

	// Release frees the buffers and the material.
	Release()
}

var _ Model = &model{}

// NewModel uploads mesh into freshly allocated vertex and index buffers.
//
// Parameters:
//   - ctx: the device context
//   - mesh: the mesh to upload; it must have at least one index
//   - options: variadic list of ModelBuilderOption functions to configure the model
//
// Returns:
//   - Model: the GPU-ready model
//   - error: error if the mesh is empty or a buffer allocation fails
func NewModel(ctx *gpu.Context, mesh *Mesh, options ...ModelBuilderOption) (Model, error) {
	m := &model{name: mesh.Name, mesh: mesh}
	for _, opt := range options {
		opt(m)
	}
	if len(mesh.Vertices) == 0 || len(mesh.Indices) == 0 {
		return nil, fmt.Errorf("model %q: empty mesh", m.name)
	}

	vertexData := MarshalVertices(mesh.Vertices)
	vb, err := ctx.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: m.name + "_vertex_buffer",
		Size:  uint64(len(vertexData)),
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("model %q vertex buffer: %w", m.name, err)
	}

	indexData := MarshalIndices(mesh.Indices)
	ib, err := ctx.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: m.name + "_index_buffer",
		Size:  uint64(len(indexData)),
		Usage: wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		vb.Release()
		return nil, fmt.Errorf("model %q index buffer: %w", m.name, err)
	}

	ctx.Queue.WriteBuffer(vb, 0, vertexData)
	ctx.Queue.WriteBuffer(ib, 0, indexData)

	m.vertexBuffer = vb
	m.indexBuffer = ib
	return m, nil
}

func (m *model) Name() string {
	return m.name
}

func (m *model) Mesh() *Mesh {
	return m.mesh
}

func (m *model) VertexBuffer() gpu.Buffer {
	return m.vertexBuffer
}

func (m *model) IndexBuffer() gpu.Buffer {
	return m.indexBuffer
}

func (m *model) IndexCount() uint32 {
	return m.mesh.IndexCount()
}

func (m *model) Material() material.Material {
	return m.material
}

func (m *model) DrawItem() renderer.DrawItem {
	item := renderer.DrawItem{
		VertexBuffer: m.vertexBuffer,
		IndexBuffer:  m.indexBuffer,
		IndexFormat:  wgpu.IndexFormatUint32,
		IndexCount:   m.IndexCount(),
	}
	if m.material != nil {
		item.Material = m.material.BindGroup()
	}
	return item
}

func (m *model) Release() {
	if m.vertexBuffer != nil {
		m.vertexBuffer.Release()
		m.vertexBuffer = nil
	}
	if m.indexBuffer != nil {
		m.indexBuffer.Release()
		m.indexBuffer = nil
	}
	if m.material != nil {
		m.material.Release()
		m.material = nil
	}
}
