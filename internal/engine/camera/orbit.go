package camera

import (
	gomath "math"

	"github.com/Faultbox/glbview/pkg/math"
)

// OrbitControls orbits a camera around Target. Input accumulates as deltas
// that Update applies; with damping enabled only DampingFactor of the
// remaining delta is applied per update, which smooths motion over frames.
type OrbitControls struct {
	Camera *Perspective
	Target math.Vec3

	EnableDamping bool
	DampingFactor float32

	MinDistance float32
	MaxDistance float32

	RotateSpeed float32
	ZoomSpeed   float32
	PanSpeed    float32

	sphericalDelta math.Spherical
	panOffset      math.Vec3
	scale          float32
}

// NewOrbitControls binds controls to cam, targeting the origin.
func NewOrbitControls(cam *Perspective) *OrbitControls {
	return &OrbitControls{
		Camera:        cam,
		DampingFactor: 0.05,
		MinDistance:   0,
		MaxDistance:   gomath.MaxFloat32,
		RotateSpeed:   1,
		ZoomSpeed:     1,
		PanSpeed:      1,
		scale:         1,
	}
}

// Rotate queues an orbit by the given angles in radians: left turns around
// the up axis, up tilts toward the pole.
func (o *OrbitControls) Rotate(left, up float32) {
	o.sphericalDelta.Theta -= left
	o.sphericalDelta.Phi -= up
}

// HandleDrag converts a mouse drag in pixels over a surface of the given
// height into an orbit. A drag across the full height is one full turn.
func (o *OrbitControls) HandleDrag(deltaX, deltaY float32, height int) {
	if height <= 0 {
		return
	}
	h := float32(height)
	o.Rotate(2*gomath.Pi*deltaX/h*o.RotateSpeed, 2*gomath.Pi*deltaY/h*o.RotateSpeed)
}

// HandleZoom queues a dolly. Positive delta (wheel up) moves closer.
func (o *OrbitControls) HandleZoom(delta float32) {
	if delta == 0 {
		return
	}
	step := float32(gomath.Pow(0.95, float64(o.ZoomSpeed)))
	if delta > 0 {
		o.scale *= step
	} else {
		o.scale /= step
	}
}

// HandlePan moves the target in the camera plane by a drag in pixels.
func (o *OrbitControls) HandlePan(deltaX, deltaY float32, height int) {
	if height <= 0 {
		return
	}
	offset := o.Camera.Position.Sub(o.Target)
	distance := offset.Length() * float32(gomath.Tan(float64(o.Camera.FOVRadians()/2)))
	h := float32(height)

	forward := offset.Negate().Normalize()
	right := forward.Cross(o.Camera.Up).Normalize()
	up := right.Cross(forward)

	o.panOffset = o.panOffset.
		Add(right.Scale(-2 * deltaX * distance / h * o.PanSpeed)).
		Add(up.Scale(2 * deltaY * distance / h * o.PanSpeed))
}

// Update applies queued input, repositions the camera around Target and
// points it at Target. It must be called once per frame when damping is
// enabled. It reports whether the camera moved noticeably.
func (o *OrbitControls) Update() bool {
	cam := o.Camera
	before := cam.Position

	offset := cam.Position.Sub(o.Target)
	sph := math.SphericalFromVec3(offset)

	f := float32(1)
	if o.EnableDamping {
		f = o.DampingFactor
	}
	sph.Theta += o.sphericalDelta.Theta * f
	sph.Phi += o.sphericalDelta.Phi * f
	sph = sph.MakeSafe()

	sph.Radius *= o.scale
	if sph.Radius < o.MinDistance {
		sph.Radius = o.MinDistance
	}
	if sph.Radius > o.MaxDistance {
		sph.Radius = o.MaxDistance
	}

	o.Target = o.Target.Add(o.panOffset.Scale(f))

	if offset.Length() > 0 {
		cam.Position = o.Target.Add(sph.Vec3())
	} else {
		cam.Position = o.Target
	}
	cam.LookAt(o.Target)

	if o.EnableDamping {
		o.sphericalDelta.Theta *= 1 - f
		o.sphericalDelta.Phi *= 1 - f
		o.panOffset = o.panOffset.Scale(1 - f)
	} else {
		o.sphericalDelta = math.Spherical{}
		o.panOffset = math.Vec3{}
	}
	o.scale = 1

	return cam.Position.Distance(before) > 1e-6
}

// Reset drops any queued input.
func (o *OrbitControls) Reset() {
	o.sphericalDelta = math.Spherical{}
	o.panOffset = math.Vec3{}
	o.scale = 1
}
