package renderer

import (
	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/glbview/internal/engine/camera"
	"github.com/Faultbox/glbview/internal/engine/framebuffer"
	"github.com/Faultbox/glbview/internal/engine/scene"
)

// Target draws one viewport into an offscreen framebuffer. The UI shows
// its color texture as an image.
type Target struct {
	r  *Renderer
	fb *framebuffer.Framebuffer
}

// Target creates an offscreen viewport target of the given size.
func (r *Renderer) Target(width, height int) (*Target, error) {
	fb, err := framebuffer.New(width, height)
	if err != nil {
		return nil, err
	}
	return &Target{r: r, fb: fb}, nil
}

// SetSize resizes the framebuffer to the container size.
func (t *Target) SetSize(width, height int) {
	t.fb.Resize(width, height)
}

// Render draws sc as seen by cam into the framebuffer, leaving the previous
// render target bound afterwards.
func (t *Target) Render(sc *scene.Scene, cam *camera.Perspective) {
	restore := t.fb.BindWithViewport()
	defer restore()

	w, h := t.fb.Size()
	gl.Enable(gl.SCISSOR_TEST)
	gl.Scissor(0, 0, w, h)
	t.fb.Clear(t.r.ClearColor)
	t.r.draw(sc, cam)
}

// Texture returns the GL texture holding the last rendered frame.
func (t *Target) Texture() uint32 {
	return t.fb.ColorTexture()
}

// Close releases the framebuffer.
func (t *Target) Close() {
	t.fb.Destroy()
}
