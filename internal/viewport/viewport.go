// Package viewport owns a fixed set of independent model viewports and
// their lifecycle: loading a model, fitting the camera to it, clearing it
// and resetting every viewport.
//
// All methods must be called from one goroutine (the render goroutine).
// Loads run on their own goroutines; their results are applied only when
// that goroutine calls Dispatch, Tick or Await.
package viewport

import (
	"context"
	"math"

	"github.com/Faultbox/glbview/internal/engine/camera"
	"github.com/Faultbox/glbview/internal/engine/scene"
	gmath "github.com/Faultbox/glbview/pkg/math"
)

// Camera and lighting defaults applied to every viewport.
const (
	FOV             = 75
	Near            = 0.1
	Far             = 1000
	DefaultDistance = 5
	DampingFactor   = 0.05
	FitMargin       = 1.5

	AmbientIntensity     = 0.6
	DirectionalIntensity = 0.8
)

// Container is the host area a viewport is laid out in.
type Container interface {
	Size() (width, height int)
}

// Surface is the drawable target of one viewport.
type Surface interface {
	SetSize(width, height int)
	Render(s *scene.Scene, cam *camera.Perspective)
}

// NopSurface draws nothing. It is used when the controller runs headless.
type NopSurface struct{}

func (NopSurface) SetSize(int, int) {}

func (NopSurface) Render(*scene.Scene, *camera.Perspective) {}

// Loader fetches and parses a model. Implementations must honour ctx and
// may be called concurrently.
type Loader interface {
	Load(ctx context.Context, filename string) (*scene.Node, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, filename string) (*scene.Node, error)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context, filename string) (*scene.Node, error) {
	return f(ctx, filename)
}

// State is the lifecycle state of a viewport.
type State int

const (
	Empty State = iota
	Loading
	Populated
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Loading:
		return "loading"
	case Populated:
		return "populated"
	default:
		return "unknown"
	}
}

// Fit is the camera placement computed for a model.
type Fit struct {
	Center   gmath.Vec3 // box center before the model was recentred
	Size     gmath.Vec3
	Distance float32
}

// Viewport is one scene, camera, surface and controls unit.
type Viewport struct {
	Index     int
	Scene     *scene.Scene
	Camera    *camera.Perspective
	Controls  *camera.OrbitControls
	Surface   Surface
	Container Container
	Loader    Loader

	loading bool
	model   string
	content *scene.Node
	fit     Fit

	token  uint64
	cancel context.CancelFunc
}

func newViewport(index int, c Container, s Surface, l Loader) *Viewport {
	vp := &Viewport{
		Index:     index,
		Scene:     scene.New(),
		Container: c,
		Surface:   s,
		Loader:    l,
	}

	w, h := c.Size()
	aspect := float32(1)
	if w > 0 && h > 0 {
		aspect = float32(w) / float32(h)
	}
	vp.Camera = camera.NewPerspective(FOV, aspect, Near, Far)
	vp.Camera.Position = gmath.Vec3{Z: DefaultDistance}
	s.SetSize(w, h)

	vp.Controls = camera.NewOrbitControls(vp.Camera)
	vp.Controls.EnableDamping = true
	vp.Controls.DampingFactor = DampingFactor
	vp.Camera.LookAt(vp.Controls.Target)

	white := [3]float32{1, 1, 1}
	vp.Scene.Add(scene.NewLightNode("ambient", &scene.Light{
		Kind: scene.LightAmbient, Color: white, Intensity: AmbientIntensity,
	}))
	sun := scene.NewLightNode("directional", &scene.Light{
		Kind: scene.LightDirectional, Color: white, Intensity: DirectionalIntensity,
	})
	sun.Position = gmath.Vec3{X: 1, Y: 1, Z: 1}.Normalize()
	vp.Scene.Add(sun)

	return vp
}

// State reports whether the viewport is empty, loading or showing a model.
func (vp *Viewport) State() State {
	switch {
	case vp.loading:
		return Loading
	case vp.content != nil:
		return Populated
	default:
		return Empty
	}
}

// Model returns the model shown or being loaded, or "" when empty.
func (vp *Viewport) Model() string {
	return vp.model
}

// Content returns the root node of the current model, or nil.
func (vp *Viewport) Content() *scene.Node {
	return vp.content
}

// LastFit returns the camera placement of the current model.
func (vp *Viewport) LastFit() Fit {
	return vp.fit
}

// fitCamera recentres root at the origin and places the camera so the
// whole box is in view. It is a pure function of the box and the FOV.
func (vp *Viewport) fitCamera(root *scene.Node) Fit {
	box := scene.Box(root)
	center := box.Center()
	size := box.Size()

	root.Position = root.Position.Sub(center)

	fit := Fit{Center: center, Size: size, Distance: DefaultDistance}
	if maxDim := size.MaxComponent(); maxDim > 0 {
		d := math.Abs(float64(maxDim) / 2 / math.Tan(float64(vp.Camera.FOVRadians())/2))
		fit.Distance = float32(d * FitMargin)
	}

	vp.Camera.Position.Z = fit.Distance
	vp.Controls.Target = center
	vp.Controls.Update()
	return fit
}

// removeContent detaches and disposes the current model. It does not touch
// the loading flag or the camera.
func (vp *Viewport) removeContent() {
	for _, n := range vp.Scene.RemoveContent() {
		scene.DisposeNode(n)
	}
	vp.content = nil
	vp.fit = Fit{}
}

// supersede invalidates any in-flight load and returns the new token.
func (vp *Viewport) supersede() uint64 {
	if vp.cancel != nil {
		vp.cancel()
		vp.cancel = nil
	}
	vp.token++
	return vp.token
}
