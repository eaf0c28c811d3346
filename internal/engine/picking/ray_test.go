package picking

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/glbview/internal/engine/camera"
	"github.com/Faultbox/glbview/internal/engine/scene"
	"github.com/Faultbox/glbview/pkg/math"
)

func near(a, b float32) bool {
	return gomath.Abs(float64(a-b)) < 1e-4
}

func unitBox(center math.Vec3) math.Box3 {
	h := math.Vec3{X: 0.5, Y: 0.5, Z: 0.5}
	return math.Box3{Min: center.Sub(h), Max: center.Add(h)}
}

func TestIntersectBox(t *testing.T) {
	box := unitBox(math.Vec3{})
	tests := []struct {
		name string
		ray  Ray
		t    float32
		hit  bool
	}{
		{"front", Ray{Origin: math.Vec3{Z: 5}, Direction: math.Vec3{Z: -1}}, 4.5, true},
		{"inside", Ray{Origin: math.Vec3{}, Direction: math.Vec3{X: 1}}, 0.5, true},
		{"behind", Ray{Origin: math.Vec3{Z: 5}, Direction: math.Vec3{Z: 1}}, 0, false},
		{"miss", Ray{Origin: math.Vec3{X: 2, Z: 5}, Direction: math.Vec3{Z: -1}}, 0, false},
		{"parallel outside", Ray{Origin: math.Vec3{Y: 2}, Direction: math.Vec3{X: 1}}, 0, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d, hit := tc.ray.IntersectBox(box)
			if hit != tc.hit {
				t.Fatalf("expected hit=%v, got %v", tc.hit, hit)
			}
			if hit && !near(d, tc.t) {
				t.Errorf("expected t=%f, got %f", tc.t, d)
			}
		})
	}

	if _, hit := (Ray{Direction: math.Vec3{Z: -1}}).IntersectBox(math.EmptyBox()); hit {
		t.Error("expected no hit on empty box")
	}
}

func TestFromCameraCenter(t *testing.T) {
	cam := camera.NewPerspective(75, 4.0/3, 0.1, 1000)
	cam.Position = math.Vec3{Z: 5}
	cam.LookAt(math.Vec3{})

	r := FromCamera(cam, 400, 300, 800, 600)
	if !near(r.Direction.X, 0) || !near(r.Direction.Y, 0) || !near(r.Direction.Z, -1) {
		t.Errorf("expected -Z through the center, got %+v", r.Direction)
	}

	// The top edge is half the field of view above the axis.
	top := FromCamera(cam, 400, 0, 800, 600)
	angle := gomath.Atan2(float64(top.Direction.Y), float64(-top.Direction.Z)) * 180 / gomath.Pi
	if gomath.Abs(angle-37.5) > 1e-3 {
		t.Errorf("expected 37.5 degrees at the top edge, got %f", angle)
	}
}

func TestPickNearest(t *testing.T) {
	sc := scene.New()
	for _, z := range []float32{0, 2} {
		g := scene.NewGeometry([]float32{-0.5, -0.5, -0.5, 0.5, 0.5, 0.5}, nil, nil, nil)
		n := scene.NewMeshNode("box", &scene.Mesh{Geometry: g})
		n.Position = math.Vec3{Z: z}
		if z == 2 {
			n.Name = "front"
		}
		sc.Add(n)
	}

	hit, ok := Pick(sc, Ray{Origin: math.Vec3{Z: 10}, Direction: math.Vec3{Z: -1}})
	if !ok {
		t.Fatal("expected a hit")
	}
	if hit.Node.Name != "front" {
		t.Errorf("expected nearest node 'front', got %q", hit.Node.Name)
	}
	if !near(hit.Point.Z, 2.5) {
		t.Errorf("expected hit at z=2.5, got %f", hit.Point.Z)
	}

	if _, ok := Pick(sc, Ray{Origin: math.Vec3{X: 5, Z: 10}, Direction: math.Vec3{Z: -1}}); ok {
		t.Error("expected miss")
	}
}
