package math

// Box3 is an axis-aligned bounding box. A box with Min > Max on any axis is
// empty; EmptyBox returns the canonical empty box.
type Box3 struct {
	Min, Max Vec3
}

// EmptyBox returns a box that contains nothing and absorbs the first point
// expanded into it.
func EmptyBox() Box3 {
	return Box3{
		Min: Vec3{1e30, 1e30, 1e30},
		Max: Vec3{-1e30, -1e30, -1e30},
	}
}

// IsEmpty reports whether the box contains no points.
func (b Box3) IsEmpty() bool {
	return b.Max.X < b.Min.X || b.Max.Y < b.Min.Y || b.Max.Z < b.Min.Z
}

// ExpandByPoint grows the box to include p.
func (b Box3) ExpandByPoint(p Vec3) Box3 {
	return Box3{Min: b.Min.Min(p), Max: b.Max.Max(p)}
}

// Union returns the smallest box containing both boxes.
func (b Box3) Union(other Box3) Box3 {
	if other.IsEmpty() {
		return b
	}
	if b.IsEmpty() {
		return other
	}
	return Box3{Min: b.Min.Min(other.Min), Max: b.Max.Max(other.Max)}
}

// Center returns the box midpoint. An empty box has its center at the origin.
func (b Box3) Center() Vec3 {
	if b.IsEmpty() {
		return Vec3{}
	}
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the box extent along each axis. An empty box has zero size.
func (b Box3) Size() Vec3 {
	if b.IsEmpty() {
		return Vec3{}
	}
	return b.Max.Sub(b.Min)
}

// Corners returns the eight box corners.
func (b Box3) Corners() [8]Vec3 {
	return [8]Vec3{
		{b.Min.X, b.Min.Y, b.Min.Z},
		{b.Min.X, b.Min.Y, b.Max.Z},
		{b.Min.X, b.Max.Y, b.Min.Z},
		{b.Min.X, b.Max.Y, b.Max.Z},
		{b.Max.X, b.Min.Y, b.Min.Z},
		{b.Max.X, b.Min.Y, b.Max.Z},
		{b.Max.X, b.Max.Y, b.Min.Z},
		{b.Max.X, b.Max.Y, b.Max.Z},
	}
}

// Transform returns the axis-aligned box enclosing b after applying m.
func (b Box3) Transform(m Mat4) Box3 {
	if b.IsEmpty() {
		return b
	}
	out := EmptyBox()
	for _, c := range b.Corners() {
		out = out.ExpandByPoint(m.TransformVec3(c))
	}
	return out
}

// Translate returns the box moved by offset.
func (b Box3) Translate(offset Vec3) Box3 {
	if b.IsEmpty() {
		return b
	}
	return Box3{Min: b.Min.Add(offset), Max: b.Max.Add(offset)}
}
