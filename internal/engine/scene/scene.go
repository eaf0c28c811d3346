package scene

import "github.com/Faultbox/glbview/pkg/math"

// Scene is the root of a viewport's graph. Lights added with AddLight stay
// in place across RemoveContent.
type Scene struct {
	root *Node
}

// New creates an empty scene.
func New() *Scene {
	return &Scene{root: NewNode("scene")}
}

// Root returns the root node.
func (s *Scene) Root() *Node {
	return s.root
}

// Add attaches a node to the scene root.
func (s *Scene) Add(n *Node) {
	s.root.Add(n)
}

// Remove detaches a node from the scene root.
func (s *Scene) Remove(n *Node) bool {
	return s.root.Remove(n)
}

// Lights returns the light nodes attached to the root.
func (s *Scene) Lights() []*Node {
	var out []*Node
	for _, c := range s.root.children {
		if c.IsLight() {
			out = append(out, c)
		}
	}
	return out
}

// Content returns the non-light nodes attached to the root.
func (s *Scene) Content() []*Node {
	var out []*Node
	for _, c := range s.root.children {
		if !c.IsLight() {
			out = append(out, c)
		}
	}
	return out
}

// RemoveContent detaches every non-light node from the root and returns
// them. The caller decides whether to dispose them.
func (s *Scene) RemoveContent() []*Node {
	removed := s.Content()
	for _, n := range removed {
		s.root.Remove(n)
	}
	return removed
}

// Traverse walks every node in the scene including the root.
func (s *Scene) Traverse(fn func(*Node)) {
	s.root.Traverse(fn)
}

// Box returns the world-space axis-aligned box enclosing the geometry of n
// and its descendants. Nodes without geometry contribute nothing.
func Box(n *Node) math.Box3 {
	box := math.EmptyBox()
	n.Traverse(func(c *Node) {
		if c.Mesh == nil || c.Mesh.Geometry == nil {
			return
		}
		box = box.Union(c.Mesh.Geometry.Bounds().Transform(c.WorldMatrix()))
	})
	return box
}

// DisposeNode releases every resource owned by n and its descendants:
// geometry buffers, materials and the textures each material owns.
func DisposeNode(n *Node) {
	n.Traverse(func(c *Node) {
		if c.Mesh == nil {
			return
		}
		if c.Mesh.Geometry != nil {
			c.Mesh.Geometry.Dispose()
		}
		for _, m := range c.Mesh.Materials {
			DisposeMaterial(m)
		}
	})
}

// DisposeMaterial releases a material and the textures it owns.
func DisposeMaterial(m *Material) {
	if m == nil {
		return
	}
	m.Dispose()
	for _, t := range m.Textures() {
		t.Dispose()
	}
}

// Stats summarises a subtree.
type Stats struct {
	Nodes     int
	Meshes    int
	Vertices  int
	Triangles int
	Materials int
	Textures  int
}

// Collect counts the nodes and resources under n. Shared materials and
// textures are counted once.
func Collect(n *Node) Stats {
	var st Stats
	materials := make(map[*Material]struct{})
	textures := make(map[*Texture]struct{})
	n.Traverse(func(c *Node) {
		st.Nodes++
		if c.Mesh == nil {
			return
		}
		st.Meshes++
		if g := c.Mesh.Geometry; g != nil {
			st.Vertices += g.VertexCount()
			st.Triangles += g.TriangleCount()
		}
		for _, m := range c.Mesh.Materials {
			materials[m] = struct{}{}
			for _, t := range m.Textures() {
				textures[t] = struct{}{}
			}
		}
	})
	st.Materials = len(materials)
	st.Textures = len(textures)
	return st
}
