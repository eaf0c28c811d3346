package scene

import "github.com/Faultbox/glbview/pkg/math"

// LightKind identifies the light model.
type LightKind int

const (
	LightAmbient LightKind = iota
	LightDirectional
)

// String returns the light kind name.
func (k LightKind) String() string {
	switch k {
	case LightAmbient:
		return "ambient"
	case LightDirectional:
		return "directional"
	default:
		return "unknown"
	}
}

// Light is a light source. For directional lights the owning node's
// Position is the direction the light comes from.
type Light struct {
	Kind      LightKind
	Color     [3]float32
	Intensity float32
}

// Node is an element of the scene graph. A node without Mesh or Light is a
// group.
type Node struct {
	Name string

	Position math.Vec3
	Rotation math.Quat
	Scale    math.Vec3

	// Matrix, when set, replaces the TRS transform.
	Matrix *math.Mat4

	Mesh  *Mesh
	Light *Light

	parent   *Node
	children []*Node
}

// NewNode creates an empty group node with an identity transform.
func NewNode(name string) *Node {
	return &Node{
		Name:     name,
		Rotation: math.QuatIdentity(),
		Scale:    math.Vec3{X: 1, Y: 1, Z: 1},
	}
}

// NewMeshNode creates a node carrying a mesh.
func NewMeshNode(name string, mesh *Mesh) *Node {
	n := NewNode(name)
	n.Mesh = mesh
	return n
}

// NewLightNode creates a node carrying a light.
func NewLightNode(name string, light *Light) *Node {
	n := NewNode(name)
	n.Light = light
	return n
}

// IsMesh reports whether the node renders geometry.
func (n *Node) IsMesh() bool { return n.Mesh != nil }

// IsLight reports whether the node is a light.
func (n *Node) IsLight() bool { return n.Light != nil }

// Parent returns the parent node, or nil for a detached node.
func (n *Node) Parent() *Node { return n.parent }

// Children returns a copy of the child list.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// Add attaches child to n, detaching it from any previous parent.
func (n *Node) Add(child *Node) {
	if child == nil || child == n {
		return
	}
	if child.parent != nil {
		child.parent.Remove(child)
	}
	child.parent = n
	n.children = append(n.children, child)
}

// Remove detaches child from n. It reports whether child was found.
func (n *Node) Remove(child *Node) bool {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.parent = nil
			return true
		}
	}
	return false
}

// Traverse calls fn for n and every descendant, depth first.
func (n *Node) Traverse(fn func(*Node)) {
	fn(n)
	for _, c := range n.children {
		c.Traverse(fn)
	}
}

// LocalMatrix returns the node transform relative to its parent.
func (n *Node) LocalMatrix() math.Mat4 {
	if n.Matrix != nil {
		return *n.Matrix
	}
	return math.Compose(n.Position, n.Rotation, n.Scale)
}

// WorldMatrix returns the node transform relative to the root of its tree.
func (n *Node) WorldMatrix() math.Mat4 {
	m := n.LocalMatrix()
	for p := n.parent; p != nil; p = p.parent {
		m = p.LocalMatrix().Mul(m)
	}
	return m
}
