package scene

import "github.com/Faultbox/glbview/pkg/math"

// Lighting is the summed light state a forward shader consumes: one ambient
// term and one directional light.
type Lighting struct {
	Ambient   [3]float32
	Direction math.Vec3 // towards the light
	Color     [3]float32
}

// Lighting sums the ambient lights of s and picks the first directional
// light. Without a directional light Color is zero.
func (s *Scene) Lighting() Lighting {
	var l Lighting
	found := false
	for _, n := range s.Lights() {
		switch n.Light.Kind {
		case LightAmbient:
			for k := range l.Ambient {
				l.Ambient[k] += n.Light.Color[k] * n.Light.Intensity
			}
		case LightDirectional:
			if found {
				continue
			}
			found = true
			l.Direction = n.WorldMatrix().TransformVec3(math.Vec3{}).Normalize()
			for k := range l.Color {
				l.Color[k] = n.Light.Color[k] * n.Light.Intensity
			}
		}
	}
	return l
}
