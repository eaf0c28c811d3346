package math

import "math"

// Spherical holds spherical coordinates with the polar angle Phi measured
// from +Y and the azimuth Theta measured around +Y from +Z.
type Spherical struct {
	Radius float32
	Phi    float32
	Theta  float32
}

const sphericalEpsilon = 1e-6

// SphericalFromVec3 converts a cartesian offset to spherical coordinates.
func SphericalFromVec3(v Vec3) Spherical {
	s := Spherical{Radius: v.Length()}
	if s.Radius == 0 {
		return s
	}
	s.Theta = float32(math.Atan2(float64(v.X), float64(v.Z)))
	s.Phi = float32(math.Acos(float64(clamp(v.Y/s.Radius, -1, 1))))
	return s
}

// Vec3 converts back to a cartesian offset.
func (s Spherical) Vec3() Vec3 {
	sinPhi := float32(math.Sin(float64(s.Phi)))
	return Vec3{
		X: s.Radius * sinPhi * float32(math.Sin(float64(s.Theta))),
		Y: s.Radius * float32(math.Cos(float64(s.Phi))),
		Z: s.Radius * sinPhi * float32(math.Cos(float64(s.Theta))),
	}
}

// MakeSafe keeps Phi away from the poles so LookAt never degenerates.
func (s Spherical) MakeSafe() Spherical {
	s.Phi = clamp(s.Phi, sphericalEpsilon, math.Pi-sphericalEpsilon)
	return s
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
