package scene

import (
	"image"

	"github.com/Faultbox/glbview/pkg/math"
)

// Geometry is an indexed triangle list.
type Geometry struct {
	backing

	Positions []float32 // xyz per vertex
	Normals   []float32 // xyz per vertex, may be empty
	UVs       []float32 // uv per vertex, may be empty
	Indices   []uint32  // may be empty for non-indexed geometry

	bounds math.Box3
}

// NewGeometry creates a geometry and computes its local bounds.
func NewGeometry(positions, normals, uvs []float32, indices []uint32) *Geometry {
	g := &Geometry{
		Positions: positions,
		Normals:   normals,
		UVs:       uvs,
		Indices:   indices,
	}
	g.ComputeBounds()
	return g
}

// ComputeBounds recomputes the local bounding box from Positions.
func (g *Geometry) ComputeBounds() {
	b := math.EmptyBox()
	for i := 0; i+2 < len(g.Positions); i += 3 {
		b = b.ExpandByPoint(math.Vec3{X: g.Positions[i], Y: g.Positions[i+1], Z: g.Positions[i+2]})
	}
	g.bounds = b
}

// Bounds returns the local-space bounding box.
func (g *Geometry) Bounds() math.Box3 {
	return g.bounds
}

// VertexCount returns the number of vertices.
func (g *Geometry) VertexCount() int {
	return len(g.Positions) / 3
}

// TriangleCount returns the number of triangles drawn.
func (g *Geometry) TriangleCount() int {
	if len(g.Indices) > 0 {
		return len(g.Indices) / 3
	}
	return g.VertexCount() / 3
}

// Texture is a decoded image bound to a material slot.
type Texture struct {
	backing

	Name  string
	Image *image.RGBA
}

// Material describes surface appearance. A material owns its textures.
type Material struct {
	backing

	Name        string
	BaseColor   [4]float32
	DoubleSided bool

	BaseColorMap *Texture
	NormalMap    *Texture
	EmissiveMap  *Texture
}

// NewMaterial returns a white opaque material.
func NewMaterial(name string) *Material {
	return &Material{
		Name:      name,
		BaseColor: [4]float32{1, 1, 1, 1},
	}
}

// Textures returns the non-nil textures owned by the material.
func (m *Material) Textures() []*Texture {
	var out []*Texture
	for _, t := range []*Texture{m.BaseColorMap, m.NormalMap, m.EmissiveMap} {
		if t != nil {
			out = append(out, t)
		}
	}
	return out
}

// Mesh pairs a geometry with one material or a list of materials.
type Mesh struct {
	Geometry  *Geometry
	Materials []*Material
}

// Material returns the primary material, or nil.
func (m *Mesh) Material() *Material {
	if len(m.Materials) == 0 {
		return nil
	}
	return m.Materials[0]
}

// VertexStride is the number of floats per interleaved vertex:
// position (3), normal (3), uv (2).
const VertexStride = 8

// Interleaved packs positions, normals and uvs into one buffer of
// VertexStride floats per vertex. Missing attributes are zero.
func (g *Geometry) Interleaved() []float32 {
	n := g.VertexCount()
	out := make([]float32, n*VertexStride)
	for i := 0; i < n; i++ {
		v := out[i*VertexStride:]
		copy(v[0:3], g.Positions[i*3:i*3+3])
		if len(g.Normals) >= (i+1)*3 {
			copy(v[3:6], g.Normals[i*3:i*3+3])
		}
		if len(g.UVs) >= (i+1)*2 {
			copy(v[6:8], g.UVs[i*2:i*2+2])
		}
	}
	return out
}
