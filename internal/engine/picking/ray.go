// Package picking casts rays from viewport pixels into a scene.
package picking

import (
	gomath "math"

	"github.com/Faultbox/glbview/internal/engine/camera"
	"github.com/Faultbox/glbview/internal/engine/scene"
	"github.com/Faultbox/glbview/pkg/math"
)

// Ray is a half-line with a normalized direction.
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) math.Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// FromCamera returns the ray through pixel (x, y) of a width x height
// surface, origin top-left.
func FromCamera(cam *camera.Perspective, x, y float32, width, height int) Ray {
	ndcX := 2*x/float32(width) - 1
	ndcY := 1 - 2*y/float32(height)

	forward := cam.Target().Sub(cam.Position).Normalize()
	right := forward.Cross(cam.Up).Normalize()
	up := right.Cross(forward)

	tanHalf := float32(gomath.Tan(float64(cam.FOVRadians() / 2)))
	dir := forward.
		Add(right.Scale(ndcX * tanHalf * cam.Aspect)).
		Add(up.Scale(ndcY * tanHalf))
	return Ray{Origin: cam.Position, Direction: dir.Normalize()}
}

// IntersectBox returns the distance to the first intersection with box, or
// the exit distance when the ray starts inside it.
func (r Ray) IntersectBox(box math.Box3) (t float32, hit bool) {
	if box.IsEmpty() {
		return 0, false
	}
	tmin := float32(-gomath.MaxFloat32)
	tmax := float32(gomath.MaxFloat32)

	origin, dir := r.Origin.Array(), r.Direction.Array()
	lo, hi := box.Min.Array(), box.Max.Array()
	for k := 0; k < 3; k++ {
		if dir[k] == 0 {
			if origin[k] < lo[k] || origin[k] > hi[k] {
				return 0, false
			}
			continue
		}
		t1 := (lo[k] - origin[k]) / dir[k]
		t2 := (hi[k] - origin[k]) / dir[k]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = max(tmin, t1)
		tmax = min(tmax, t2)
	}

	if tmax < tmin || tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}

// Hit is the result of Pick.
type Hit struct {
	Node     *scene.Node
	Distance float32
	Point    math.Vec3
}

// Pick returns the nearest mesh node whose world box the ray crosses.
func Pick(sc *scene.Scene, r Ray) (Hit, bool) {
	var best Hit
	found := false
	sc.Traverse(func(n *scene.Node) {
		if n.Mesh == nil || n.Mesh.Geometry == nil {
			return
		}
		t, ok := r.IntersectBox(n.Mesh.Geometry.Bounds().Transform(n.WorldMatrix()))
		if !ok || (found && t >= best.Distance) {
			return
		}
		best = Hit{Node: n, Distance: t, Point: r.At(t)}
		found = true
	})
	return best, found
}
