package glb

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"
)

func parseCube(t *testing.T) *File {
	t.Helper()
	data, err := Cube(2, [3]float32{1, 0, 0}, [4]float32{1, 0, 0, 1})
	if err != nil {
		t.Fatalf("Cube failed: %v", err)
	}
	f, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return f
}

func TestParse_Cube(t *testing.T) {
	f := parseCube(t)
	if f.Version != 2 {
		t.Errorf("expected version 2, got %d", f.Version)
	}
	if f.Document.Asset.Version != "2.0" {
		t.Errorf("expected asset version 2.0, got %q", f.Document.Asset.Version)
	}
	if len(f.Document.Meshes) != 1 || len(f.Document.Nodes) != 1 {
		t.Fatalf("expected 1 mesh and 1 node, got %d and %d", len(f.Document.Meshes), len(f.Document.Nodes))
	}

	prim := f.Document.Meshes[0].Primitives[0]
	pos, err := f.ReadPositions(prim.Attributes[gltf.POSITION])
	if err != nil {
		t.Fatalf("ReadPositions failed: %v", err)
	}
	if len(pos) != 24*3 {
		t.Fatalf("expected 72 position floats, got %d", len(pos))
	}
	for i := 0; i < len(pos); i += 3 {
		if pos[i] < 0 || pos[i] > 2 {
			t.Fatalf("vertex %d x=%v outside [0,2]", i/3, pos[i])
		}
	}

	nrm, err := f.ReadNormals(prim.Attributes[gltf.NORMAL])
	if err != nil || len(nrm) != len(pos) {
		t.Errorf("expected %d normal floats, got %d (%v)", len(pos), len(nrm), err)
	}

	idx, err := f.ReadIndices(*prim.Indices)
	if err != nil {
		t.Fatalf("ReadIndices failed: %v", err)
	}
	if len(idx) != 36 {
		t.Errorf("expected 36 indices, got %d", len(idx))
	}
	for _, v := range idx {
		if v >= 24 {
			t.Fatalf("index %d out of range", v)
		}
	}

	acc := f.Document.Accessors[prim.Attributes[gltf.POSITION]]
	if len(acc.Min) != 3 || acc.Min[0] != 0 || acc.Max[0] != 2 {
		t.Errorf("expected x range [0,2], got %v %v", acc.Min, acc.Max)
	}
}

func TestParse_Errors(t *testing.T) {
	valid, err := Cube(1, [3]float32{}, [4]float32{1, 1, 1, 1})
	if err != nil {
		t.Fatalf("Cube failed: %v", err)
	}

	badMagic := append([]byte(nil), valid...)
	copy(badMagic, "XXXX")

	badVersion := append([]byte(nil), valid...)
	binary.LittleEndian.PutUint32(badVersion[4:], 1)

	noJSON := make([]byte, 12)
	binary.LittleEndian.PutUint32(noJSON[0:], magic)
	binary.LittleEndian.PutUint32(noJSON[4:], 2)
	binary.LittleEndian.PutUint32(noJSON[8:], 12)

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ErrTruncated},
		{"short header", []byte("glTF"), ErrTruncated},
		{"bad magic", badMagic, ErrInvalidMagic},
		{"bad version", badVersion, ErrUnsupportedVersion},
		{"cut chunk", valid[:len(valid)/2], ErrTruncated},
		{"no json", noJSON, ErrMissingJSON},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.data)
			if !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestValidate_MalformedDocuments(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*gltf.Document)
		want   error
	}{
		{"negative count", func(d *gltf.Document) {
			for _, a := range d.Accessors {
				a.Count = -1
			}
		}, ErrUnsupportedAccessor},
		{"huge count", func(d *gltf.Document) { d.Accessors[0].Count = math.MaxInt }, ErrTruncated},
		{"count past view", func(d *gltf.Document) { d.Accessors[0].Count++ }, ErrTruncated},
		{"negative accessor offset", func(d *gltf.Document) { d.Accessors[0].ByteOffset = -4 }, ErrTruncated},
		{"negative offset empty accessor", func(d *gltf.Document) {
			d.Accessors[0].Count = 0
			d.Accessors[0].ByteOffset = -4
		}, ErrTruncated},
		{"offset past view", func(d *gltf.Document) {
			d.Accessors[0].Count = 0
			d.Accessors[0].ByteOffset = 1 << 30
		}, ErrTruncated},
		{"negative view length", func(d *gltf.Document) { d.BufferViews[0].ByteLength = -1 }, ErrTruncated},
		{"negative view offset", func(d *gltf.Document) { d.BufferViews[0].ByteOffset = -8 }, ErrTruncated},
		{"view past buffer", func(d *gltf.Document) { d.BufferViews[0].ByteOffset = 1 << 30 }, ErrTruncated},
		{"negative stride", func(d *gltf.Document) { d.BufferViews[0].ByteStride = -12 }, ErrUnsupportedAccessor},
		{"stride below element", func(d *gltf.Document) { d.BufferViews[0].ByteStride = 4 }, ErrUnsupportedAccessor},
		{"stride above limit", func(d *gltf.Document) { d.BufferViews[0].ByteStride = 256 }, ErrUnsupportedAccessor},
		{"overflowing stride", func(d *gltf.Document) {
			d.BufferViews[0].ByteStride = 252
			d.Accessors[0].Count = math.MaxInt/252 + 2
		}, ErrTruncated},
		{"unknown buffer", func(d *gltf.Document) { d.BufferViews[0].Buffer = 3 }, ErrOutOfRange},
		{"unknown view", func(d *gltf.Document) { d.Accessors[0].BufferView = gltf.Index(40) }, ErrOutOfRange},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := parseCube(t)
			tc.mutate(f.Document)

			if err := f.Validate(); !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
			if _, err := f.ReadPositions(0); err == nil {
				t.Error("expected reading the malformed accessor to fail")
			}
		})
	}
}

func TestOpen(t *testing.T) {
	data, err := Cube(1, [3]float32{}, [4]float32{1, 1, 1, 1})
	if err != nil {
		t.Fatalf("Cube failed: %v", err)
	}
	path := filepath.Join(t.TempDir(), "cube.glb")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	f, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if len(f.BIN) == 0 {
		t.Error("expected BIN chunk")
	}

	if _, err := Open(filepath.Join(t.TempDir(), "missing.glb")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}
}

func TestCheckExtensions(t *testing.T) {
	tests := []struct {
		required []string
		wantErr  bool
	}{
		{nil, false},
		{[]string{ExtTextureWebP}, false},
		{[]string{ExtMeshQuantization, ExtMaterialsUnlit}, false},
		{[]string{ExtDracoCompression}, true},
		{[]string{ExtTextureWebP, ExtMeshoptCompression}, true},
	}

	for _, tc := range tests {
		f := &File{Document: &gltf.Document{ExtensionsRequired: tc.required}}
		err := f.CheckExtensions()
		if (err != nil) != tc.wantErr {
			t.Errorf("CheckExtensions(%v) error = %v, wantErr %v", tc.required, err, tc.wantErr)
		}
		if err != nil && !errors.Is(err, ErrUnsupportedExtension) {
			t.Errorf("expected ErrUnsupportedExtension, got %v", err)
		}
	}
}

func TestRead_WrongLayout(t *testing.T) {
	bin := make([]byte, 8)
	binary.LittleEndian.PutUint32(bin, math.Float32bits(1.5))
	f := &File{
		BIN: bin,
		Document: &gltf.Document{
			Buffers:     []*gltf.Buffer{{ByteLength: 8, Data: bin}},
			BufferViews: []*gltf.BufferView{{ByteLength: 8}},
			Accessors: []*gltf.Accessor{
				{BufferView: gltf.Index(0), ComponentType: gltf.ComponentFloat, Count: 2, Type: gltf.AccessorScalar},
				{BufferView: gltf.Index(0), ComponentType: gltf.ComponentFloat, Count: 1, Type: gltf.AccessorScalar, Sparse: &gltf.Sparse{}},
				{ComponentType: gltf.ComponentFloat, Count: 1, Type: gltf.AccessorVec3},
				{BufferView: gltf.Index(0), ComponentType: gltf.ComponentFloat, Count: 3, Type: gltf.AccessorScalar},
			},
		},
	}

	tests := []struct {
		accessor int
		want     error
	}{
		{0, ErrUnsupportedAccessor},
		{1, ErrUnsupportedAccessor},
		{2, ErrUnsupportedAccessor},
		{3, ErrTruncated},
		{4, ErrOutOfRange},
		{-1, ErrOutOfRange},
	}
	for _, tc := range tests {
		if _, err := f.ReadPositions(tc.accessor); !errors.Is(err, tc.want) {
			t.Errorf("accessor %d: expected %v, got %v", tc.accessor, tc.want, err)
		}
	}
}

func TestReadIndices_ComponentTypes(t *testing.T) {
	tests := []struct {
		name string
		ct   gltf.ComponentType
		bin  []byte
		want []uint32
	}{
		{"ubyte", gltf.ComponentUbyte, []byte{1, 2, 3, 0}, []uint32{1, 2, 3}},
		{"ushort", gltf.ComponentUshort, []byte{1, 0, 0, 1, 3, 0, 0, 0}, []uint32{1, 256, 3}},
		{"uint", gltf.ComponentUint, []byte{1, 0, 0, 0, 0, 0, 1, 0, 3, 0, 0, 0}, []uint32{1, 65536, 3}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := &File{
				BIN: tc.bin,
				Document: &gltf.Document{
					Buffers:     []*gltf.Buffer{{ByteLength: len(tc.bin), Data: tc.bin}},
					BufferViews: []*gltf.BufferView{{ByteLength: len(tc.bin)}},
					Accessors: []*gltf.Accessor{{
						BufferView:    gltf.Index(0),
						ComponentType: tc.ct,
						Count:         3,
						Type:          gltf.AccessorScalar,
					}},
				},
			}
			got, err := f.ReadIndices(0)
			if err != nil {
				t.Fatalf("ReadIndices failed: %v", err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("expected %d indices, got %d", len(tc.want), len(got))
			}
			for i := range tc.want {
				if got[i] != tc.want[i] {
					t.Errorf("index %d: expected %d, got %d", i, tc.want[i], got[i])
				}
			}
		})
	}
}

func TestBuilder_IndexWidth(t *testing.T) {
	b := NewBuilder("test")
	narrow := b.AddIndices([]uint32{0, 1, 2})
	wide := b.AddIndices([]uint32{0, 70000})
	doc := b.Document()
	if ct := doc.Accessors[narrow].ComponentType; ct != gltf.ComponentUshort {
		t.Errorf("expected ushort indices, got %v", ct)
	}
	if ct := doc.Accessors[wide].ComponentType; ct != gltf.ComponentUint {
		t.Errorf("expected uint indices for values above 65535, got %v", ct)
	}
}

func TestImageData(t *testing.T) {
	payload := []byte("not really a png")
	b := NewBuilder("test")
	img, err := b.AddImage("skin", payload, "image/png")
	if err != nil {
		t.Fatalf("AddImage failed: %v", err)
	}
	data, err := b.Bytes()
	if err != nil {
		t.Fatalf("Bytes failed: %v", err)
	}
	f, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	got, mime, err := f.ImageData(img)
	if err != nil {
		t.Fatalf("ImageData failed: %v", err)
	}
	if !bytes.Equal(got, payload) || mime != "image/png" {
		t.Errorf("expected %q image/png, got %q %s", payload, got, mime)
	}

	f.Document.Images = append(f.Document.Images,
		&gltf.Image{URI: "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(payload)},
		&gltf.Image{URI: "texture.png"},
	)
	got, mime, err = f.ImageData(1)
	if err != nil || !bytes.Equal(got, payload) || mime != "image/jpeg" {
		t.Errorf("data URI: got %q %q %v", got, mime, err)
	}
	if _, _, err := f.ImageData(2); !errors.Is(err, ErrExternalResource) {
		t.Errorf("expected ErrExternalResource, got %v", err)
	}
	if _, _, err := f.ImageData(9); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}
}

func TestTextureSource_PrefersWebP(t *testing.T) {
	png, webp := 0, 1
	doc := &gltf.Document{Textures: []*gltf.Texture{
		{Source: gltf.Index(png)},
		{Source: gltf.Index(png), Extensions: gltf.Extensions{ExtTextureWebP: json.RawMessage(`{"source":1}`)}},
		{Extensions: gltf.Extensions{ExtTextureWebP: map[string]any{"source": float64(webp)}}},
		{},
	}}

	tests := []struct {
		texture int
		want    int
		ok      bool
	}{
		{0, png, true},
		{1, webp, true},
		{2, webp, true},
		{3, 0, false},
		{5, 0, false},
	}
	for _, tc := range tests {
		src, ok := TextureSource(doc, tc.texture)
		if src != tc.want || ok != tc.ok {
			t.Errorf("texture %d: expected (%d, %v), got (%d, %v)", tc.texture, tc.want, tc.ok, src, ok)
		}
	}
}

func TestDefaultScene(t *testing.T) {
	two := []*gltf.Scene{{}, {}}
	tests := []struct {
		name  string
		doc   gltf.Document
		want  int
		found bool
	}{
		{"none", gltf.Document{}, 0, false},
		{"first", gltf.Document{Scenes: two}, 0, true},
		{"declared", gltf.Document{Scene: gltf.Index(1), Scenes: two}, 1, true},
		{"invalid declared", gltf.Document{Scene: gltf.Index(7), Scenes: two}, 0, true},
	}
	for _, tc := range tests {
		got, ok := DefaultScene(&tc.doc)
		if got != tc.want || ok != tc.found {
			t.Errorf("%s: expected (%d, %v), got (%d, %v)", tc.name, tc.want, tc.found, got, ok)
		}
	}
}
