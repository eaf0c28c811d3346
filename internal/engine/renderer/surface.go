package renderer

import (
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/glbview/internal/engine/camera"
	"github.com/Faultbox/glbview/internal/engine/debug"
	"github.com/Faultbox/glbview/internal/engine/scene"
	"github.com/Faultbox/glbview/internal/layout"
	"github.com/Faultbox/glbview/pkg/math"
)

// Surface draws one viewport into its layout cell of the shared window.
// It is the native viewer's viewport.Surface; the imgui browser uses Target.
type Surface struct {
	r    *Renderer
	cell *layout.Cell

	width, height int
}

// SetSize records the cell size in window pixels.
func (s *Surface) SetSize(width, height int) {
	s.width, s.height = width, height
}

// Render draws sc as seen by cam, clipped to the cell.
func (s *Surface) Render(sc *scene.Scene, cam *camera.Perspective) {
	r := s.r
	x, y, w, h := s.cell.Framebuffer(r.windowH, r.scale)
	if w <= 0 || h <= 0 {
		return
	}
	gl.Viewport(x, y, w, h)
	gl.Scissor(x, y, w, h)
	c := r.ClearColor
	gl.ClearColor(c[0], c[1], c[2], c[3])
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	r.draw(sc, cam)
}

// draw renders sc into the bound target with the current viewport.
func (r *Renderer) draw(sc *scene.Scene, cam *camera.Perspective) {
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	if r.Wireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
		defer gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}

	view := cam.View()
	proj := cam.Projection()
	r.drawMeshes(sc, view, proj)

	if r.ShowBounds || r.ShowAxes {
		r.drawOverlay(sc, proj.Mul(view))
	}
}

func (r *Renderer) drawMeshes(sc *scene.Scene, view, proj math.Mat4) {
	p := r.mesh
	p.Use()
	gl.UniformMatrix4fv(p.Uniform("uView"), 1, false, view.Ptr())
	gl.UniformMatrix4fv(p.Uniform("uProjection"), 1, false, proj.Ptr())

	light := sc.Lighting()
	gl.Uniform3f(p.Uniform("uAmbient"), light.Ambient[0], light.Ambient[1], light.Ambient[2])
	gl.Uniform3f(p.Uniform("uLightDir"), light.Direction.X, light.Direction.Y, light.Direction.Z)
	gl.Uniform3f(p.Uniform("uLightColor"), light.Color[0], light.Color[1], light.Color[2])

	gl.ActiveTexture(gl.TEXTURE0)
	gl.Uniform1i(p.Uniform("uTexture"), 0)

	sc.Traverse(func(n *scene.Node) {
		if !n.IsMesh() {
			return
		}
		g := r.geometry(n.Mesh.Geometry)
		if g == nil {
			return
		}

		mat := n.Mesh.Material()
		base := [4]float32{1, 1, 1, 1}
		var tex *scene.Texture
		doubleSided := false
		if mat != nil {
			base, tex, doubleSided = mat.BaseColor, mat.BaseColorMap, mat.DoubleSided
		}
		if doubleSided {
			gl.Disable(gl.CULL_FACE)
		} else {
			gl.Enable(gl.CULL_FACE)
		}

		model := n.WorldMatrix()
		gl.UniformMatrix4fv(p.Uniform("uModel"), 1, false, model.Ptr())
		gl.Uniform4f(p.Uniform("uBaseColor"), base[0], base[1], base[2], base[3])
		gl.BindTexture(gl.TEXTURE_2D, r.texture(tex))

		gl.BindVertexArray(g.vao)
		if g.indexed {
			gl.DrawElements(gl.TRIANGLES, g.count, gl.UNSIGNED_INT, nil)
		} else {
			gl.DrawArrays(gl.TRIANGLES, 0, g.count)
		}
	})
	gl.BindVertexArray(0)
	gl.Disable(gl.CULL_FACE)
}

// boundsColor is the bounding box overlay color.
var boundsColor = [3]float32{1, 1, 0}

func (r *Renderer) drawOverlay(sc *scene.Scene, viewProj math.Mat4) {
	var data []float32
	if r.ShowBounds {
		for _, n := range sc.Content() {
			v := debug.BoxLines(scene.Box(n), 0)
			for i := 0; i+2 < len(v); i += 3 {
				data = append(data, v[i], v[i+1], v[i+2], boundsColor[0], boundsColor[1], boundsColor[2])
			}
		}
	}
	if r.ShowAxes {
		v, c := debug.AxisLines(math.Vec3{}, 1)
		for i := 0; i+2 < len(v); i += 3 {
			data = append(data, v[i], v[i+1], v[i+2], c[i], c[i+1], c[i+2])
		}
	}
	if len(data) == 0 {
		return
	}

	r.line.Use()
	gl.UniformMatrix4fv(r.line.Uniform("uViewProj"), 1, false, viewProj.Ptr())
	gl.BindVertexArray(r.lineVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.lineVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, unsafe.Pointer(&data[0]), gl.DYNAMIC_DRAW)
	gl.DrawArrays(gl.LINES, 0, int32(len(data)/6))
	gl.BindVertexArray(0)
}
