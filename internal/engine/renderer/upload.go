package renderer

import (
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/glbview/internal/engine/scene"
)

// gpuGeometry is the GL side of a scene.Geometry.
type gpuGeometry struct {
	vao, vbo, ebo uint32
	count         int32
	indexed       bool
}

func (g *gpuGeometry) Dispose() {
	if g.vao != 0 {
		gl.DeleteVertexArrays(1, &g.vao)
		g.vao = 0
	}
	if g.vbo != 0 {
		gl.DeleteBuffers(1, &g.vbo)
		g.vbo = 0
	}
	if g.ebo != 0 {
		gl.DeleteBuffers(1, &g.ebo)
		g.ebo = 0
	}
}

// gpuTexture is the GL side of a scene.Texture.
type gpuTexture struct {
	id uint32
}

func (t *gpuTexture) Dispose() {
	if t.id != 0 {
		gl.DeleteTextures(1, &t.id)
		t.id = 0
	}
}

// geometry returns the uploaded form of g, uploading on first use. It
// returns nil for disposed or empty geometry.
func (r *Renderer) geometry(g *scene.Geometry) *gpuGeometry {
	if g == nil || g.Disposed() {
		return nil
	}
	if h, ok := g.Handle().(*gpuGeometry); ok {
		return h
	}
	vertices := g.Interleaved()
	if len(vertices) == 0 {
		return nil
	}

	h := &gpuGeometry{}
	gl.GenVertexArrays(1, &h.vao)
	gl.BindVertexArray(h.vao)

	gl.GenBuffers(1, &h.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, h.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, unsafe.Pointer(&vertices[0]), gl.STATIC_DRAW)

	if len(g.Indices) > 0 {
		gl.GenBuffers(1, &h.ebo)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, h.ebo)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(g.Indices)*4, unsafe.Pointer(&g.Indices[0]), gl.STATIC_DRAW)
		h.count = int32(len(g.Indices))
		h.indexed = true
	} else {
		h.count = int32(g.VertexCount())
	}

	stride := int32(scene.VertexStride * 4)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, 12)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, stride, 24)
	gl.EnableVertexAttribArray(2)

	gl.BindVertexArray(0)

	g.Attach(h)
	r.uploads++
	return h
}

// texture returns the GL texture for t, uploading on first use. Missing
// textures fall back to 1x1 white.
func (r *Renderer) texture(t *scene.Texture) uint32 {
	if t == nil || t.Disposed() || t.Image == nil || len(t.Image.Pix) == 0 {
		return r.whiteTexture
	}
	if h, ok := t.Handle().(*gpuTexture); ok {
		return h.id
	}

	img := t.Image
	h := &gpuTexture{}
	gl.GenTextures(1, &h.id)
	gl.BindTexture(gl.TEXTURE_2D, h.id)
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, int32(img.Stride/4))
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(img.Rect.Dx()), int32(img.Rect.Dy()),
		0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&img.Pix[0]))
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, 0)
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)

	t.Attach(h)
	r.uploads++
	return h.id
}
