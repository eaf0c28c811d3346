package loader

import (
	"context"
	"fmt"
	"io"

	"github.com/qmuntal/gltf"
	"go.uber.org/zap"

	"github.com/Faultbox/glbview/internal/engine/scene"
	"github.com/Faultbox/glbview/internal/engine/texture"
	"github.com/Faultbox/glbview/pkg/glb"
	"github.com/Faultbox/glbview/pkg/math"
)

// GLTF loads GLB models from a Source into scene trees.
type GLTF struct {
	Source Source
	Log    *zap.Logger
}

// NewGLTF returns a loader reading from src. A nil logger discards output.
func NewGLTF(src Source, log *zap.Logger) *GLTF {
	if log == nil {
		log = zap.NewNop()
	}
	return &GLTF{Source: src, Log: log}
}

// Load fetches name and builds its default scene. The returned root node is
// named after the model and owns every resource created for it.
func (l *GLTF) Load(ctx context.Context, name string) (*scene.Node, error) {
	rc, err := l.Source.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	f, err := glb.Decode(rc)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Build(f, name, l.Log)
}

// Parse builds a scene tree from GLB bytes already in memory.
func Parse(r io.Reader, name string, log *zap.Logger) (*scene.Node, error) {
	f, err := glb.Decode(r)
	if err != nil {
		return nil, err
	}
	return Build(f, name, log)
}

// Build converts a parsed GLB into a scene tree. On error, anything built so
// far is disposed.
func Build(f *glb.File, name string, log *zap.Logger) (*scene.Node, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := f.CheckExtensions(); err != nil {
		return nil, err
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}

	b := &builder{
		file:      f,
		log:       log.With(zap.String("model", name)),
		materials: make(map[int]*scene.Material),
		textures:  make(map[int]*scene.Texture),
		visiting:  make(map[int]bool),
	}
	root := scene.NewNode(name)

	doc := f.Document
	idx, ok := glb.DefaultScene(doc)
	var roots []int
	if ok && doc.Scenes[idx] != nil {
		roots = doc.Scenes[idx].Nodes
	} else {
		// No scenes: show every node that is nobody's child.
		roots = orphanNodes(doc)
	}

	for _, ni := range roots {
		n, err := b.node(ni)
		if err != nil {
			scene.DisposeNode(root)
			for _, m := range b.materials {
				scene.DisposeMaterial(m)
			}
			return nil, fmt.Errorf("loading %s: %w", name, err)
		}
		root.Add(n)
	}
	return root, nil
}

func orphanNodes(doc *gltf.Document) []int {
	child := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		if n == nil {
			continue
		}
		for _, c := range n.Children {
			if c >= 0 && c < len(child) {
				child[c] = true
			}
		}
	}
	var out []int
	for i, isChild := range child {
		if !isChild {
			out = append(out, i)
		}
	}
	return out
}

type builder struct {
	file      *glb.File
	log       *zap.Logger
	materials map[int]*scene.Material
	textures  map[int]*scene.Texture
	visiting  map[int]bool
}

func (b *builder) node(i int) (*scene.Node, error) {
	doc := b.file.Document
	if i < 0 || i >= len(doc.Nodes) || doc.Nodes[i] == nil {
		return nil, fmt.Errorf("%w: node %d", glb.ErrOutOfRange, i)
	}
	if b.visiting[i] {
		return nil, fmt.Errorf("node %d: cycle in node hierarchy", i)
	}
	b.visiting[i] = true
	defer delete(b.visiting, i)

	src := doc.Nodes[i]
	n := scene.NewNode(src.Name)
	applyTransform(n, src)

	if src.Mesh != nil {
		if err := b.mesh(n, *src.Mesh); err != nil {
			scene.DisposeNode(n)
			return nil, err
		}
	}
	for _, ci := range src.Children {
		c, err := b.node(ci)
		if err != nil {
			scene.DisposeNode(n)
			return nil, err
		}
		n.Add(c)
	}
	return n, nil
}

var identity = [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}

func applyTransform(n *scene.Node, src *gltf.Node) {
	if src.Matrix != identity && src.Matrix != [16]float64{} {
		var m math.Mat4
		for i, v := range src.Matrix {
			m[i] = float32(v)
		}
		n.Matrix = &m
		return
	}
	t := src.TranslationOrDefault()
	r := src.RotationOrDefault()
	s := src.ScaleOrDefault()
	n.Position = math.Vec3{X: float32(t[0]), Y: float32(t[1]), Z: float32(t[2])}
	n.Rotation = math.Quat{X: float32(r[0]), Y: float32(r[1]), Z: float32(r[2]), W: float32(r[3])}
	n.Scale = math.Vec3{X: float32(s[0]), Y: float32(s[1]), Z: float32(s[2])}
}

// mesh adds one child per triangle primitive of mesh mi to n.
func (b *builder) mesh(n *scene.Node, mi int) error {
	doc := b.file.Document
	if mi < 0 || mi >= len(doc.Meshes) || doc.Meshes[mi] == nil {
		return fmt.Errorf("%w: mesh %d", glb.ErrOutOfRange, mi)
	}
	src := doc.Meshes[mi]
	for pi, prim := range src.Primitives {
		if prim == nil {
			continue
		}
		if prim.Mode != gltf.PrimitiveTriangles {
			b.log.Debug("skipping non-triangle primitive",
				zap.Int("mesh", mi), zap.Int("primitive", pi), zap.Int("mode", int(prim.Mode)))
			continue
		}
		geom, err := b.geometry(prim)
		if err != nil {
			return fmt.Errorf("mesh %d primitive %d: %w", mi, pi, err)
		}
		mat, err := b.material(prim.Material)
		if err != nil {
			geom.Dispose()
			return fmt.Errorf("mesh %d primitive %d: %w", mi, pi, err)
		}

		name := src.Name
		if len(src.Primitives) > 1 {
			name = fmt.Sprintf("%s.%d", src.Name, pi)
		}
		n.Add(scene.NewMeshNode(name, &scene.Mesh{Geometry: geom, Materials: []*scene.Material{mat}}))
	}
	return nil
}

func (b *builder) geometry(prim *gltf.Primitive) (*scene.Geometry, error) {
	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, fmt.Errorf("%w: primitive has no POSITION", glb.ErrUnsupportedAccessor)
	}
	positions, err := b.file.ReadPositions(posIdx)
	if err != nil {
		return nil, fmt.Errorf("POSITION: %w", err)
	}

	var normals, uvs []float32
	if i, ok := prim.Attributes[gltf.NORMAL]; ok {
		if normals, err = b.file.ReadNormals(i); err != nil {
			return nil, fmt.Errorf("NORMAL: %w", err)
		}
	}
	if i, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		if uvs, err = b.file.ReadTexCoords(i); err != nil {
			return nil, fmt.Errorf("TEXCOORD_0: %w", err)
		}
	}

	var indices []uint32
	if prim.Indices != nil {
		if indices, err = b.file.ReadIndices(*prim.Indices); err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
		vertices := uint32(len(positions) / 3)
		for _, v := range indices {
			if v >= vertices {
				return nil, fmt.Errorf("%w: index %d with %d vertices", glb.ErrOutOfRange, v, vertices)
			}
		}
	}
	return scene.NewGeometry(positions, normals, uvs, indices), nil
}

// material returns the scene material for glTF material mi, shared between
// primitives that reference the same index. Primitives without a material
// get a fresh default one.
func (b *builder) material(mi *int) (*scene.Material, error) {
	if mi == nil {
		return scene.NewMaterial("default"), nil
	}
	if m, ok := b.materials[*mi]; ok {
		return m, nil
	}
	doc := b.file.Document
	if *mi < 0 || *mi >= len(doc.Materials) || doc.Materials[*mi] == nil {
		return nil, fmt.Errorf("%w: material %d", glb.ErrOutOfRange, *mi)
	}
	src := doc.Materials[*mi]

	m := scene.NewMaterial(src.Name)
	m.DoubleSided = src.DoubleSided
	var err error
	if pbr := src.PBRMetallicRoughness; pbr != nil {
		if f := pbr.BaseColorFactor; f != nil {
			for i, v := range f {
				m.BaseColor[i] = float32(v)
			}
		}
		if m.BaseColorMap, err = b.texture(pbr.BaseColorTexture); err != nil {
			scene.DisposeMaterial(m)
			return nil, err
		}
	}
	if nt := src.NormalTexture; nt != nil && nt.Index != nil {
		m.NormalMap, err = b.texture(&gltf.TextureInfo{Index: *nt.Index})
	}
	if err != nil {
		scene.DisposeMaterial(m)
		return nil, err
	}
	if m.EmissiveMap, err = b.texture(src.EmissiveTexture); err != nil {
		scene.DisposeMaterial(m)
		return nil, err
	}

	b.materials[*mi] = m
	return m, nil
}

func (b *builder) texture(info *gltf.TextureInfo) (*scene.Texture, error) {
	if info == nil {
		return nil, nil
	}
	if t, ok := b.textures[info.Index]; ok {
		return t, nil
	}
	doc := b.file.Document
	src, ok := glb.TextureSource(doc, info.Index)
	if !ok {
		b.log.Warn("texture has no image source", zap.Int("texture", info.Index))
		return nil, nil
	}
	data, mime, err := b.file.ImageData(src)
	if err != nil {
		return nil, fmt.Errorf("texture %d: %w", info.Index, err)
	}
	img, err := texture.Decode(data, mime)
	if err != nil {
		return nil, fmt.Errorf("texture %d: %w", info.Index, err)
	}

	t := &scene.Texture{Name: doc.Images[src].Name, Image: img}
	b.textures[info.Index] = t
	return t, nil
}
