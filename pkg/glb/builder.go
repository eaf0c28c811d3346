package glb

import (
	"bytes"
	"math"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// Builder assembles a GLB in memory. Every add call returns the index of
// the object it created.
type Builder struct {
	doc *gltf.Document
}

// NewBuilder returns an empty builder for a glTF 2.0 asset.
func NewBuilder(generator string) *Builder {
	return &Builder{doc: &gltf.Document{
		Asset: gltf.Asset{Version: "2.0", Generator: generator},
	}}
}

// AddPositions stores vertex positions. The accessor carries min/max as
// POSITION requires.
func (b *Builder) AddPositions(v [][3]float32) int {
	return modeler.WritePosition(b.doc, v)
}

// AddNormals stores vertex normals.
func (b *Builder) AddNormals(v [][3]float32) int {
	return modeler.WriteNormal(b.doc, v)
}

// AddTexCoords stores texture coordinates.
func (b *Builder) AddTexCoords(v [][2]float32) int {
	return modeler.WriteTextureCoord(b.doc, v)
}

// AddIndices stores an index accessor, using 16-bit indices when they fit.
func (b *Builder) AddIndices(values []uint32) int {
	for _, v := range values {
		if v > math.MaxUint16 {
			return modeler.WriteIndices(b.doc, values)
		}
	}
	narrow := make([]uint16, len(values))
	for i, v := range values {
		narrow[i] = uint16(v)
	}
	return modeler.WriteIndices(b.doc, narrow)
}

// AddImage embeds encoded image bytes and returns the image index.
func (b *Builder) AddImage(name string, data []byte, mimeType string) (int, error) {
	return modeler.WriteImage(b.doc, name, mimeType, bytes.NewReader(data))
}

// AddTexture adds a texture sampling image.
func (b *Builder) AddTexture(image int) int {
	b.doc.Textures = append(b.doc.Textures, &gltf.Texture{Source: gltf.Index(image)})
	return len(b.doc.Textures) - 1
}

// AddMaterial adds m.
func (b *Builder) AddMaterial(m *gltf.Material) int {
	b.doc.Materials = append(b.doc.Materials, m)
	return len(b.doc.Materials) - 1
}

// AddMesh adds m.
func (b *Builder) AddMesh(m *gltf.Mesh) int {
	b.doc.Meshes = append(b.doc.Meshes, m)
	return len(b.doc.Meshes) - 1
}

// AddNode adds n.
func (b *Builder) AddNode(n *gltf.Node) int {
	b.doc.Nodes = append(b.doc.Nodes, n)
	return len(b.doc.Nodes) - 1
}

// AddScene adds a scene with the given root nodes and makes it the default
// when it is the first one.
func (b *Builder) AddScene(nodes ...int) int {
	b.doc.Scenes = append(b.doc.Scenes, &gltf.Scene{Nodes: nodes})
	idx := len(b.doc.Scenes) - 1
	if b.doc.Scene == nil {
		b.doc.Scene = gltf.Index(idx)
	}
	return idx
}

// Document returns the document built so far.
func (b *Builder) Document() *gltf.Document {
	return b.doc
}

// Bytes encodes the GLB.
func (b *Builder) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, b.doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Cube returns a GLB holding one node with an axis-aligned cube of the
// given edge length centred at center, coloured with rgba.
func Cube(size float32, center [3]float32, rgba [4]float32) ([]byte, error) {
	h := size / 2

	// Six faces, four vertices each, so normals stay flat.
	faces := [6]struct{ n, u, v [3]float32 }{
		{[3]float32{1, 0, 0}, [3]float32{0, 0, -1}, [3]float32{0, 1, 0}},
		{[3]float32{-1, 0, 0}, [3]float32{0, 0, 1}, [3]float32{0, 1, 0}},
		{[3]float32{0, 1, 0}, [3]float32{1, 0, 0}, [3]float32{0, 0, -1}},
		{[3]float32{0, -1, 0}, [3]float32{1, 0, 0}, [3]float32{0, 0, 1}},
		{[3]float32{0, 0, 1}, [3]float32{1, 0, 0}, [3]float32{0, 1, 0}},
		{[3]float32{0, 0, -1}, [3]float32{-1, 0, 0}, [3]float32{0, 1, 0}},
	}
	var pos, nrm [][3]float32
	var idx []uint32
	for _, f := range faces {
		base := uint32(len(pos))
		for _, s := range [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}} {
			var p [3]float32
			for k := 0; k < 3; k++ {
				p[k] = (f.n[k]+s[0]*f.u[k]+s[1]*f.v[k])*h + center[k]
			}
			pos = append(pos, p)
			nrm = append(nrm, f.n)
		}
		idx = append(idx, base, base+1, base+2, base, base+2, base+3)
	}

	color := [4]float64{float64(rgba[0]), float64(rgba[1]), float64(rgba[2]), float64(rgba[3])}
	b := NewBuilder("glbview")
	posAcc := b.AddPositions(pos)
	nrmAcc := b.AddNormals(nrm)
	idxAcc := b.AddIndices(idx)
	mat := b.AddMaterial(&gltf.Material{
		Name:                 "cube",
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{BaseColorFactor: &color},
	})
	mesh := b.AddMesh(&gltf.Mesh{Name: "cube", Primitives: []*gltf.Primitive{{
		Attributes: map[string]int{gltf.POSITION: posAcc, gltf.NORMAL: nrmAcc},
		Indices:    gltf.Index(idxAcc),
		Material:   gltf.Index(mat),
		Mode:       gltf.PrimitiveTriangles,
	}}})
	node := b.AddNode(&gltf.Node{Name: "cube", Mesh: gltf.Index(mesh)})
	b.AddScene(node)
	return b.Bytes()
}
