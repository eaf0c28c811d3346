// Package camera provides the perspective camera and damped orbit controls
// used by each viewport.
package camera

import (
	gomath "math"

	"github.com/Faultbox/glbview/pkg/math"
)

// Perspective is a perspective projection camera looking at a target point.
type Perspective struct {
	FOV    float32 // Vertical field of view in degrees
	Aspect float32
	Near   float32
	Far    float32

	Position math.Vec3
	Up       math.Vec3

	target     math.Vec3
	projection math.Mat4
}

// NewPerspective creates a camera at the origin looking down -Z.
func NewPerspective(fov, aspect, near, far float32) *Perspective {
	c := &Perspective{
		FOV:    fov,
		Aspect: aspect,
		Near:   near,
		Far:    far,
		Up:     math.Vec3{X: 0, Y: 1, Z: 0},
		target: math.Vec3{X: 0, Y: 0, Z: -1},
	}
	c.UpdateProjection()
	return c
}

// FOVRadians returns the vertical field of view in radians.
func (c *Perspective) FOVRadians() float32 {
	return c.FOV * gomath.Pi / 180
}

// SetAspect updates the aspect ratio from a surface size and rebuilds the
// projection. Degenerate sizes (minimised windows) keep the old aspect.
func (c *Perspective) SetAspect(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.Aspect = float32(width) / float32(height)
	c.UpdateProjection()
}

// UpdateProjection rebuilds the projection matrix after FOV, Aspect, Near
// or Far changed.
func (c *Perspective) UpdateProjection() {
	c.projection = math.Perspective(c.FOVRadians(), c.Aspect, c.Near, c.Far)
}

// Projection returns the projection matrix.
func (c *Perspective) Projection() math.Mat4 {
	return c.projection
}

// LookAt points the camera at target.
func (c *Perspective) LookAt(target math.Vec3) {
	c.target = target
}

// Target returns the point the camera looks at.
func (c *Perspective) Target() math.Vec3 {
	return c.target
}

// View returns the view matrix.
func (c *Perspective) View() math.Mat4 {
	return math.LookAt(c.Position, c.target, c.Up)
}
