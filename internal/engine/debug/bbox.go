// Package debug provides overlays and capture helpers for inspecting what a
// viewport shows.
package debug

import "github.com/Faultbox/glbview/pkg/math"

// BoxLineVertexCount is the number of vertices BoxLines returns (12 edges, 2 ends each).
const BoxLineVertexCount = 24

// boxEdges lists corner index pairs in the order of math.Box3.Corners.
var boxEdges = [12][2]int{
	{0, 1}, {1, 3}, {3, 2}, {2, 0}, // min X face
	{4, 5}, {5, 7}, {7, 6}, {6, 4}, // max X face
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

// BoxLines returns xyz line-list vertices outlining box, grown by padding on
// every side. An empty box yields nil.
func BoxLines(box math.Box3, padding float32) []float32 {
	if box.IsEmpty() {
		return nil
	}
	pad := math.Vec3{X: padding, Y: padding, Z: padding}
	box = math.Box3{Min: box.Min.Sub(pad), Max: box.Max.Add(pad)}

	corners := box.Corners()
	out := make([]float32, 0, BoxLineVertexCount*3)
	for _, e := range boxEdges {
		a, b := corners[e[0]], corners[e[1]]
		out = append(out, a.X, a.Y, a.Z, b.X, b.Y, b.Z)
	}
	return out
}

// AxisLines returns line-list vertices for the X, Y and Z axes from origin,
// each of the given length. Colors are the matching per-vertex RGB values.
func AxisLines(origin math.Vec3, length float32) (vertices, colors []float32) {
	axes := [3]math.Vec3{{X: length}, {Y: length}, {Z: length}}
	for i, a := range axes {
		end := origin.Add(a)
		vertices = append(vertices, origin.X, origin.Y, origin.Z, end.X, end.Y, end.Z)
		var c [3]float32
		c[i] = 1
		colors = append(colors, c[0], c[1], c[2], c[0], c[1], c[2])
	}
	return vertices, colors
}
