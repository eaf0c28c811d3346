// Package scene provides the scene graph shared by every viewport: nodes,
// meshes, lights and the disposable resources (geometry, materials,
// textures) they own.
//
// The package has no GPU dependency. A renderer attaches its backend
// handles to resources with Attach, and Dispose releases them.
package scene

// Disposable is a resource holding memory that is not reclaimed by dropping
// the Go reference (GPU buffers, textures, programs).
type Disposable interface {
	Dispose()
}

// DisposeFunc adapts a function to Disposable.
type DisposeFunc func()

// Dispose calls f.
func (f DisposeFunc) Dispose() { f() }

// backing tracks the backend handle attached to a resource and whether the
// resource has been released. It is embedded by Geometry, Material and
// Texture.
type backing struct {
	handle   Disposable
	disposed bool
}

// Attach stores a backend handle, releasing the previous one if any.
// Attaching to a disposed resource releases the new handle immediately.
func (b *backing) Attach(h Disposable) {
	if b.disposed {
		if h != nil {
			h.Dispose()
		}
		return
	}
	if b.handle != nil {
		b.handle.Dispose()
	}
	b.handle = h
}

// Handle returns the attached backend handle, or nil.
func (b *backing) Handle() Disposable {
	return b.handle
}

// Disposed reports whether Dispose has been called.
func (b *backing) Disposed() bool {
	return b.disposed
}

// Dispose releases the backend handle. Calling it again is a no-op.
func (b *backing) Dispose() {
	if b.disposed {
		return
	}
	b.disposed = true
	if b.handle != nil {
		b.handle.Dispose()
		b.handle = nil
	}
}
