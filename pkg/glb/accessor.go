package glb

import (
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// Buffer view strides must stay within the range glTF allows.
const (
	minStride = 4
	maxStride = 252
)

// Validate checks that every buffer view and accessor stays inside the data
// it refers to. Reads assume a validated document.
func (f *File) Validate() error {
	for i := range f.Document.BufferViews {
		if err := f.checkView(i); err != nil {
			return err
		}
	}
	for i := range f.Document.Accessors {
		if err := f.checkAccessor(i); err != nil {
			return err
		}
	}
	return nil
}

func (f *File) checkView(i int) error {
	doc := f.Document
	if i < 0 || i >= len(doc.BufferViews) || doc.BufferViews[i] == nil {
		return fmt.Errorf("%w: bufferView %d", ErrOutOfRange, i)
	}
	view := doc.BufferViews[i]
	if view.Buffer < 0 || view.Buffer >= len(doc.Buffers) || doc.Buffers[view.Buffer] == nil {
		return fmt.Errorf("%w: bufferView %d buffer %d", ErrOutOfRange, i, view.Buffer)
	}
	if view.ByteOffset < 0 || view.ByteLength < 0 {
		return fmt.Errorf("%w: bufferView %d has offset %d length %d", ErrTruncated, i, view.ByteOffset, view.ByteLength)
	}
	if view.ByteStride != 0 && (view.ByteStride < minStride || view.ByteStride > maxStride) {
		return fmt.Errorf("%w: bufferView %d stride %d", ErrUnsupportedAccessor, i, view.ByteStride)
	}
	data := doc.Buffers[view.Buffer].Data
	if view.ByteOffset > len(data) || view.ByteLength > len(data)-view.ByteOffset {
		return fmt.Errorf("%w: bufferView %d exceeds buffer %d", ErrTruncated, i, view.Buffer)
	}
	return nil
}

func (f *File) checkAccessor(i int) error {
	doc := f.Document
	acc := doc.Accessors[i]
	if acc == nil {
		return fmt.Errorf("%w: accessor %d", ErrOutOfRange, i)
	}
	if acc.Count < 0 {
		return fmt.Errorf("%w: accessor %d count %d", ErrUnsupportedAccessor, i, acc.Count)
	}
	if acc.ByteOffset < 0 {
		return fmt.Errorf("%w: accessor %d offset %d", ErrTruncated, i, acc.ByteOffset)
	}
	if acc.BufferView == nil {
		return nil
	}
	vi := *acc.BufferView
	if err := f.checkView(vi); err != nil {
		return fmt.Errorf("accessor %d: %w", i, err)
	}
	view := doc.BufferViews[vi]

	elem := acc.ComponentType.ByteSize() * acc.Type.Components()
	if elem <= 0 {
		return fmt.Errorf("%w: accessor %d element layout", ErrUnsupportedAccessor, i)
	}
	if acc.Count == 0 {
		if acc.ByteOffset > view.ByteLength {
			return fmt.Errorf("%w: accessor %d offset past bufferView %d", ErrTruncated, i, vi)
		}
		return nil
	}
	stride := view.ByteStride
	if stride == 0 {
		stride = elem
	}
	if stride < elem {
		return fmt.Errorf("%w: accessor %d stride %d below element size %d", ErrUnsupportedAccessor, i, stride, elem)
	}
	// Compare against the room left after the last element instead of
	// multiplying Count by stride, which can overflow.
	avail := view.ByteLength - acc.ByteOffset - elem
	if avail < 0 || acc.Count-1 > avail/stride {
		return fmt.Errorf("%w: accessor %d exceeds bufferView %d", ErrTruncated, i, vi)
	}
	return nil
}

// accessor returns accessor i when it is a dense accessor of the given type.
func (f *File) accessor(i int, typ gltf.AccessorType) (*gltf.Accessor, error) {
	doc := f.Document
	if i < 0 || i >= len(doc.Accessors) {
		return nil, fmt.Errorf("%w: accessor %d", ErrOutOfRange, i)
	}
	if err := f.checkAccessor(i); err != nil {
		return nil, err
	}
	acc := doc.Accessors[i]
	switch {
	case acc.Sparse != nil:
		return nil, fmt.Errorf("%w: accessor %d is sparse", ErrUnsupportedAccessor, i)
	case acc.BufferView == nil:
		return nil, fmt.Errorf("%w: accessor %d has no bufferView", ErrUnsupportedAccessor, i)
	case acc.Type != typ:
		return nil, fmt.Errorf("%w: accessor %d is %s, want %s", ErrUnsupportedAccessor, i, acc.Type, typ)
	}
	return acc, nil
}

// ReadPositions reads a VEC3 position accessor as flat x, y, z floats.
func (f *File) ReadPositions(i int) ([]float32, error) {
	acc, err := f.accessor(i, gltf.AccessorVec3)
	if err != nil {
		return nil, err
	}
	v, err := modeler.ReadPosition(f.Document, acc, nil)
	if err != nil {
		return nil, fmt.Errorf("accessor %d: %w", i, err)
	}
	return flatten3(v), nil
}

// ReadNormals reads a VEC3 normal accessor as flat x, y, z floats.
func (f *File) ReadNormals(i int) ([]float32, error) {
	acc, err := f.accessor(i, gltf.AccessorVec3)
	if err != nil {
		return nil, err
	}
	v, err := modeler.ReadNormal(f.Document, acc, nil)
	if err != nil {
		return nil, fmt.Errorf("accessor %d: %w", i, err)
	}
	return flatten3(v), nil
}

// ReadTexCoords reads a VEC2 texture coordinate accessor as flat u, v
// floats. Normalized integer coordinates are scaled to [0, 1].
func (f *File) ReadTexCoords(i int) ([]float32, error) {
	acc, err := f.accessor(i, gltf.AccessorVec2)
	if err != nil {
		return nil, err
	}
	v, err := modeler.ReadTextureCoord(f.Document, acc, nil)
	if err != nil {
		return nil, fmt.Errorf("accessor %d: %w", i, err)
	}
	out := make([]float32, 0, 2*len(v))
	for _, uv := range v {
		out = append(out, uv[0], uv[1])
	}
	return out, nil
}

// ReadIndices reads a scalar index accessor of any unsigned component type.
func (f *File) ReadIndices(i int) ([]uint32, error) {
	acc, err := f.accessor(i, gltf.AccessorScalar)
	if err != nil {
		return nil, err
	}
	v, err := modeler.ReadIndices(f.Document, acc, nil)
	if err != nil {
		return nil, fmt.Errorf("accessor %d: %w", i, err)
	}
	return v, nil
}

func flatten3(v [][3]float32) []float32 {
	out := make([]float32, 0, 3*len(v))
	for _, p := range v {
		out = append(out, p[0], p[1], p[2])
	}
	return out
}
