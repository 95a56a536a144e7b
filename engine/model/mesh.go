package model

import "github.com/go-gl/mathgl/mgl32"

// Mesh is CPU-side indexed triangle data in GPUVertex format. Triangles are counter-clockwise
// when seen from the side their normal points to.
type Mesh struct {
	Name     string
	Vertices []GPUVertex
	Indices  []uint32
}

// IndexCount returns the number of indices in the mesh.
func (m *Mesh) IndexCount() uint32 {
	return uint32(len(m.Indices))
}

// addTriangle appends a flat-shaded triangle; the normal follows the winding of a, b, c.
func (m *Mesh) addTriangle(a, b, c mgl32.Vec3, uv func(mgl32.Vec3) [2]float32) {
	n := b.Sub(a).Cross(c.Sub(a)).Normalize()
	base := uint32(len(m.Vertices))
	for _, p := range []mgl32.Vec3{a, b, c} {
		m.Vertices = append(m.Vertices, GPUVertex{
			Position:  p,
			TexCoords: uv(p),
			Normal:    n,
		})
	}
	m.Indices = append(m.Indices, base, base+1, base+2)
}

// Fish dimensions in model space. The fish is one unit long and swims toward +X.
const (
	fishNose   = 0.6
	fishTail   = -0.4
	fishFinEnd = -0.7
	fishHeight = 0.22
	fishWidth  = 0.12
	fishFin    = 0.18
)

// FishMesh builds the instanced fish: a closed diamond body pointing toward +X and a tail fin
// that is visible from both sides. U runs from the fin (0) to the nose (1), V from the top
// (0) to the bottom (1).
//
// Returns:
//   - *Mesh: the fish mesh
func FishMesh() *Mesh {
	nose := mgl32.Vec3{fishNose, 0, 0}
	tail := mgl32.Vec3{fishTail, 0, 0}
	ring := []mgl32.Vec3{
		{0, fishHeight, 0},
		{0, 0, fishWidth},
		{0, -fishHeight, 0},
		{0, 0, -fishWidth},
	}
	uv := func(p mgl32.Vec3) [2]float32 {
		u := (p.X() - fishFinEnd) / (fishNose - fishFinEnd)
		v := (fishHeight - p.Y()) / (2 * fishHeight)
		return [2]float32{u, mgl32.Clamp(v, 0, 1)}
	}

	m := &Mesh{Name: "fish"}
	for i := range ring {
		a, b := ring[i], ring[(i+1)%len(ring)]
		m.addTriangle(nose, a, b, uv)
		m.addTriangle(tail, b, a, uv)
	}

	top := mgl32.Vec3{fishFinEnd, fishFin, 0}
	bottom := mgl32.Vec3{fishFinEnd, -fishFin, 0}
	m.addTriangle(tail, top, bottom, uv)
	m.addTriangle(tail, bottom, top, uv)
	return m
}

// boxFace is one face of an axis-aligned cube: d is the outward axis, and u x v points inward.
type boxFace struct {
	d, u, v mgl32.Vec3
}

var boxFaces = []boxFace{
	{d: mgl32.Vec3{1, 0, 0}, u: mgl32.Vec3{0, 0, 1}, v: mgl32.Vec3{0, 1, 0}},
	{d: mgl32.Vec3{-1, 0, 0}, u: mgl32.Vec3{0, 1, 0}, v: mgl32.Vec3{0, 0, 1}},
	{d: mgl32.Vec3{0, 1, 0}, u: mgl32.Vec3{1, 0, 0}, v: mgl32.Vec3{0, 0, 1}},
	{d: mgl32.Vec3{0, -1, 0}, u: mgl32.Vec3{0, 0, 1}, v: mgl32.Vec3{1, 0, 0}},
	{d: mgl32.Vec3{0, 0, 1}, u: mgl32.Vec3{0, 1, 0}, v: mgl32.Vec3{1, 0, 0}},
	{d: mgl32.Vec3{0, 0, -1}, u: mgl32.Vec3{1, 0, 0}, v: mgl32.Vec3{0, 1, 0}},
}

// AquariumMesh builds a cube centred on the origin whose faces point inward, so it is visible
// from inside with back-face culling on. Each face maps the full texture once.
//
// Parameters:
//   - halfExtent: half the edge length of the cube
//
// Returns:
//   - *Mesh: the aquarium mesh (24 vertices, 36 indices)
func AquariumMesh(halfExtent float32) *Mesh {
	m := &Mesh{Name: "aquarium"}
	corners := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
	for _, f := range boxFaces {
		base := uint32(len(m.Vertices))
		normal := f.d.Mul(-1)
		for _, c := range corners {
			p := f.d.Add(f.u.Mul(c[0])).Add(f.v.Mul(c[1])).Mul(halfExtent)
			m.Vertices = append(m.Vertices, GPUVertex{
				Position:  p,
				TexCoords: [2]float32{(c[0] + 1) / 2, (1 - c[1]) / 2},
				Normal:    normal,
			})
		}
		m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return m
}
