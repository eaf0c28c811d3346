// Package renderer draws viewport scenes with OpenGL. One Renderer owns the
// shared programs; each viewport draws through its own Surface.
package renderer

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/glbview/internal/engine/debug"
	"github.com/Faultbox/glbview/internal/engine/renderer/shaders"
	"github.com/Faultbox/glbview/internal/engine/shader"
	"github.com/Faultbox/glbview/internal/layout"
)

// Options toggles renderer overlays and the clear color.
type Options struct {
	ClearColor [4]float32
	ShowBounds bool
	ShowAxes   bool
	Wireframe  bool
}

// DefaultOptions returns the viewer defaults.
func DefaultOptions() Options {
	return Options{ClearColor: [4]float32{0.1, 0.1, 0.15, 1}}
}

// Renderer holds GL state shared by every Surface.
type Renderer struct {
	Options

	log *zap.Logger

	mesh *shader.Program
	line *shader.Program

	lineVAO, lineVBO uint32
	whiteTexture     uint32

	windowW, windowH int
	scale            float32

	uploads int
}

// New initializes OpenGL and compiles the shared programs. It must be
// called after the GL context is current.
func New(opts Options, log *zap.Logger) (*Renderer, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	r := &Renderer{Options: opts, log: log, scale: 1}

	var err error
	if r.mesh, err = shader.New(shaders.MeshVertexShader, shaders.MeshFragmentShader); err != nil {
		return nil, fmt.Errorf("mesh program: %w", err)
	}
	if r.line, err = shader.New(shaders.LineVertexShader, shaders.LineFragmentShader); err != nil {
		r.mesh.Delete()
		return nil, fmt.Errorf("line program: %w", err)
	}

	r.createWhiteTexture()
	r.createLineBuffer()

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.Enable(gl.SCISSOR_TEST)
	return r, nil
}

func (r *Renderer) createWhiteTexture() {
	gl.GenTextures(1, &r.whiteTexture)
	gl.BindTexture(gl.TEXTURE_2D, r.whiteTexture)
	white := []uint8{255, 255, 255, 255}
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, 1, 1, 0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&white[0]))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
}

func (r *Renderer) createLineBuffer() {
	gl.GenVertexArrays(1, &r.lineVAO)
	gl.BindVertexArray(r.lineVAO)
	gl.GenBuffers(1, &r.lineVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.lineVBO)

	// xyz + rgb per vertex
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 6*4, 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, 6*4, 3*4)
	gl.EnableVertexAttribArray(1)
	gl.BindVertexArray(0)
}

// SetWindow records the logical window size and the drawable size so
// surfaces can map cells to framebuffer pixels.
func (r *Renderer) SetWindow(windowW, windowH, drawableW, drawableH int) {
	r.windowW, r.windowH = windowW, windowH
	r.scale = 1
	if windowW > 0 && drawableW > 0 {
		r.scale = float32(drawableW) / float32(windowW)
	}
	r.log.Debug("renderer window",
		zap.Int("width", windowW),
		zap.Int("height", windowH),
		zap.Float32("scale", r.scale),
	)
}

// Begin clears the whole framebuffer, gaps between cells included.
func (r *Renderer) Begin() {
	gl.Disable(gl.SCISSOR_TEST)
	gl.Viewport(0, 0, int32(float32(r.windowW)*r.scale), int32(float32(r.windowH)*r.scale))
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	gl.Enable(gl.SCISSOR_TEST)
}

// Uploads returns the number of GPU uploads performed so far.
func (r *Renderer) Uploads() int {
	return r.uploads
}

// Surface creates the drawable for one layout cell.
func (r *Renderer) Surface(cell *layout.Cell) *Surface {
	return &Surface{r: r, cell: cell}
}

// ReadPixels reads the whole framebuffer as bottom-up RGBA.
func (r *Renderer) ReadPixels() ([]byte, int, int) {
	w := int(float32(r.windowW) * r.scale)
	h := int(float32(r.windowH) * r.scale)
	if w <= 0 || h <= 0 {
		return nil, 0, 0
	}
	pixels := make([]byte, w*h*4)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&pixels[0]))
	return pixels, w, h
}

// Screenshot reads the framebuffer and saves it through s.
func (r *Renderer) Screenshot(s *debug.Screenshot) (string, error) {
	pixels, w, h := r.ReadPixels()
	if pixels == nil {
		return "", fmt.Errorf("empty framebuffer")
	}
	return s.SavePixels(pixels, w, h)
}

// Close releases the shared GL objects. Scene resources are released by
// disposing their nodes.
func (r *Renderer) Close() {
	r.log.Info("closing renderer")
	if r.lineVAO != 0 {
		gl.DeleteVertexArrays(1, &r.lineVAO)
	}
	if r.lineVBO != 0 {
		gl.DeleteBuffers(1, &r.lineVBO)
	}
	if r.whiteTexture != 0 {
		gl.DeleteTextures(1, &r.whiteTexture)
	}
	r.mesh.Delete()
	r.line.Delete()
}
