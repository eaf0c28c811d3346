package camera

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/glbview/pkg/math"
)

func near(a, b, eps float32) bool {
	return gomath.Abs(float64(a-b)) <= float64(eps)
}

func newTestControls() (*Perspective, *OrbitControls) {
	cam := NewPerspective(75, 1, 0.1, 1000)
	cam.Position = math.Vec3{Z: 5}
	return cam, NewOrbitControls(cam)
}

func TestSetAspect(t *testing.T) {
	cam := NewPerspective(75, 1, 0.1, 1000)
	cam.SetAspect(800, 400)
	if cam.Aspect != 2 {
		t.Errorf("expected aspect 2, got %v", cam.Aspect)
	}
	p := cam.Projection()
	if !near(p[5]/p[0], 2, 1e-5) {
		t.Errorf("projection should reflect aspect 2, got x=%v y=%v", p[0], p[5])
	}

	cam.SetAspect(0, 400)
	if cam.Aspect != 2 {
		t.Errorf("degenerate size should keep aspect, got %v", cam.Aspect)
	}
}

func TestUpdateWithoutInputKeepsPosition(t *testing.T) {
	cam, ctl := newTestControls()
	ctl.Target = math.Vec3{X: 1, Y: 2, Z: 0}
	cam.Position = math.Vec3{X: 1, Y: 2, Z: 7}

	ctl.Update()

	if cam.Position.Distance(math.Vec3{X: 1, Y: 2, Z: 7}) > 1e-4 {
		t.Errorf("position drifted to %v", cam.Position)
	}
	if cam.Target() != ctl.Target {
		t.Errorf("camera should look at target, got %v", cam.Target())
	}
}

func TestRotatePreservesDistance(t *testing.T) {
	cam, ctl := newTestControls()
	ctl.Rotate(float32(gomath.Pi/2), 0)

	if !ctl.Update() {
		t.Error("Update should report movement")
	}
	if !near(cam.Position.Length(), 5, 1e-4) {
		t.Errorf("orbit should keep distance 5, got %v", cam.Position.Length())
	}
	// Rotating left by 90 degrees from +Z ends on -X.
	if !near(cam.Position.X, -5, 1e-4) {
		t.Errorf("expected camera on -X, got %v", cam.Position)
	}
}

func TestDampingSpreadsRotationOverFrames(t *testing.T) {
	cam, ctl := newTestControls()
	ctl.EnableDamping = true
	ctl.DampingFactor = 0.05
	ctl.Rotate(1, 0)

	ctl.Update()
	first := math.SphericalFromVec3(cam.Position).Theta
	if !near(first, -0.05, 1e-4) {
		t.Errorf("first damped step should apply 5%%, got theta %v", first)
	}

	for i := 0; i < 500; i++ {
		ctl.Update()
	}
	final := math.SphericalFromVec3(cam.Position).Theta
	if !near(final, -1, 1e-3) {
		t.Errorf("damped rotation should converge to -1, got %v", final)
	}
}

func TestZoomAndDistanceLimits(t *testing.T) {
	cam, ctl := newTestControls()

	ctl.HandleZoom(1)
	ctl.Update()
	if !(cam.Position.Length() < 5) {
		t.Errorf("zoom in should move closer, got %v", cam.Position.Length())
	}

	ctl.MaxDistance = 6
	for i := 0; i < 20; i++ {
		ctl.HandleZoom(-1)
	}
	ctl.Update()
	if !near(cam.Position.Length(), 6, 1e-4) {
		t.Errorf("distance should clamp at 6, got %v", cam.Position.Length())
	}
}

func TestPanMovesTargetAndCamera(t *testing.T) {
	cam, ctl := newTestControls()
	ctl.HandlePan(-100, 0, 400)
	ctl.Update()

	if !(ctl.Target.X > 0) {
		t.Errorf("dragging left should pan target toward +X, got %v", ctl.Target)
	}
	if !near(cam.Position.Sub(ctl.Target).Length(), 5, 1e-4) {
		t.Errorf("pan should keep orbit distance, got %v", cam.Position.Sub(ctl.Target).Length())
	}
}

func TestReset(t *testing.T) {
	cam, ctl := newTestControls()
	ctl.Rotate(1, 1)
	ctl.HandleZoom(1)
	ctl.Reset()
	ctl.Update()

	if cam.Position.Distance(math.Vec3{Z: 5}) > 1e-4 {
		t.Errorf("reset should drop queued input, camera at %v", cam.Position)
	}
}
