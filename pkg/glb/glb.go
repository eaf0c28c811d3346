// Package glb reads and writes binary glTF 2.0 (GLB) containers on top of
// github.com/qmuntal/gltf.
//
// A GLB is a 12-byte header (magic "glTF", version, total length) followed
// by chunks. The first chunk is JSON describing the scene; an optional
// second chunk holds the binary buffer referenced by buffer 0. Parse checks
// the container framing itself so callers get the package's sentinel
// errors, then validates every buffer view and accessor against the data it
// points into before anything is read.
package glb

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/qmuntal/gltf"
)

// GLB format errors.
var (
	ErrInvalidMagic         = errors.New("invalid GLB magic: expected 'glTF'")
	ErrUnsupportedVersion   = errors.New("unsupported GLB version")
	ErrTruncated            = errors.New("truncated GLB data")
	ErrMissingJSON          = errors.New("GLB has no JSON chunk")
	ErrOutOfRange           = errors.New("GLB index out of range")
	ErrUnsupportedAccessor  = errors.New("unsupported accessor layout")
	ErrUnsupportedExtension = errors.New("unsupported required extension")
	ErrExternalResource     = errors.New("external resources are not supported in GLB")
)

const (
	magic       = 0x46546C67 // "glTF"
	version2    = 2
	headerSize  = 12
	chunkJSON   = 0x4E4F534A // "JSON"
	chunkHeader = 8
)

// Extension names the reader understands.
const (
	ExtTextureWebP        = "EXT_texture_webp"
	ExtMaterialsUnlit     = "KHR_materials_unlit"
	ExtTextureTransform   = "KHR_texture_transform"
	ExtEmissiveStrength   = "KHR_materials_emissive_strength"
	ExtMaterialsIOR       = "KHR_materials_ior"
	ExtMaterialsSpecular  = "KHR_materials_specular"
	ExtLightsPunctual     = "KHR_lights_punctual"
	ExtMeshQuantization   = "KHR_mesh_quantization"
	ExtDracoCompression   = "KHR_draco_mesh_compression"
	ExtMeshoptCompression = "EXT_meshopt_compression"
)

// supportedRequired lists extensions that may appear in extensionsRequired
// without stopping the load.
var supportedRequired = map[string]bool{
	ExtTextureWebP:       true,
	ExtMaterialsUnlit:    true,
	ExtTextureTransform:  true,
	ExtEmissiveStrength:  true,
	ExtMaterialsIOR:      true,
	ExtMaterialsSpecular: true,
	ExtLightsPunctual:    true,
	ExtMeshQuantization:  true,
}

// File is a parsed GLB.
type File struct {
	Version  uint32
	Document *gltf.Document
	BIN      []byte
}

// Open reads and parses a GLB file from disk.
func Open(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Decode reads a whole GLB stream and parses it.
func Decode(r io.Reader) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading GLB: %w", err)
	}
	return Parse(data)
}

// Parse parses and validates GLB data.
func Parse(data []byte) (*File, error) {
	version, total, err := checkContainer(data)
	if err != nil {
		return nil, err
	}

	var doc gltf.Document
	if err := gltf.NewDecoder(bytes.NewReader(data[:total])).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding GLB: %w", err)
	}

	f := &File{Version: version, Document: &doc}
	if len(doc.Buffers) > 0 && doc.Buffers[0] != nil && doc.Buffers[0].URI == "" {
		f.BIN = doc.Buffers[0].Data
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// checkContainer verifies the header and chunk framing and returns the
// container version and total length.
func checkContainer(data []byte) (uint32, int, error) {
	if len(data) < headerSize {
		return 0, 0, ErrTruncated
	}
	if binary.LittleEndian.Uint32(data[0:4]) != magic {
		return 0, 0, ErrInvalidMagic
	}
	version := binary.LittleEndian.Uint32(data[4:8])
	if version != version2 {
		return 0, 0, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}
	total := int(binary.LittleEndian.Uint32(data[8:12]))
	if total > len(data) || total < headerSize {
		return 0, 0, ErrTruncated
	}

	hasJSON := false
	for off := headerSize; off < total; {
		if total-off < chunkHeader {
			return 0, 0, ErrTruncated
		}
		length := int(binary.LittleEndian.Uint32(data[off : off+4]))
		kind := binary.LittleEndian.Uint32(data[off+4 : off+8])
		start := off + chunkHeader
		if length > total-start {
			return 0, 0, ErrTruncated
		}
		if kind == chunkJSON {
			hasJSON = true
		}
		off = start + length
	}
	if !hasJSON {
		return 0, 0, ErrMissingJSON
	}
	return version, total, nil
}

// CheckExtensions reports the first required extension the reader cannot
// honour.
func (f *File) CheckExtensions() error {
	for _, ext := range f.Document.ExtensionsRequired {
		if !supportedRequired[ext] {
			return fmt.Errorf("%w: %s", ErrUnsupportedExtension, ext)
		}
	}
	return nil
}

// Encode writes doc as a GLB container. Buffer 0 becomes the BIN chunk.
func Encode(w io.Writer, doc *gltf.Document) error {
	enc := gltf.NewEncoder(w)
	enc.AsBinary = true
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding GLB: %w", err)
	}
	return nil
}

// BufferView returns the bytes covered by buffer view i.
func (f *File) BufferView(i int) ([]byte, error) {
	if err := f.checkView(i); err != nil {
		return nil, err
	}
	view := f.Document.BufferViews[i]
	buf := f.Document.Buffers[view.Buffer].Data
	return buf[view.ByteOffset : view.ByteOffset+view.ByteLength], nil
}

// ImageData returns the encoded bytes and MIME type of image i.
func (f *File) ImageData(i int) ([]byte, string, error) {
	doc := f.Document
	if i < 0 || i >= len(doc.Images) || doc.Images[i] == nil {
		return nil, "", fmt.Errorf("%w: image %d", ErrOutOfRange, i)
	}
	img := doc.Images[i]
	switch {
	case img.BufferView != nil:
		data, err := f.BufferView(*img.BufferView)
		return data, img.MimeType, err
	case img.IsEmbeddedResource():
		data, err := img.MarshalData()
		if err != nil {
			return nil, "", fmt.Errorf("image %d: %w", i, err)
		}
		mime := img.MimeType
		if mime == "" {
			mime = dataURIMime(img.URI)
		}
		return data, mime, nil
	default:
		return nil, "", fmt.Errorf("%w: image %q", ErrExternalResource, img.URI)
	}
}

func dataURIMime(uri string) string {
	head := strings.TrimPrefix(uri, "data:")
	if i := strings.IndexAny(head, ";,"); i >= 0 {
		return head[:i]
	}
	return ""
}
