package texture

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestDecodePNG(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	src.SetNRGBA(1, 0, color.NRGBA{G: 255, A: 128})

	for _, mime := range []string{"", MimePNG, "IMAGE/PNG"} {
		rgba, err := Decode(encodePNG(t, src), mime)
		if err != nil {
			t.Fatalf("Decode(%q): %v", mime, err)
		}
		if rgba.Bounds().Dx() != 2 || rgba.Bounds().Dy() != 1 {
			t.Fatalf("unexpected size %v", rgba.Bounds())
		}
		if got := rgba.RGBAAt(0, 0); got != (color.RGBA{R: 255, A: 255}) {
			t.Errorf("pixel 0 = %v", got)
		}
		// Alpha stays straight, colour is not premultiplied.
		if got := rgba.RGBAAt(1, 0); got.G != 255 || got.A != 128 {
			t.Errorf("pixel 1 = %v, want straight alpha", got)
		}
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		mime string
	}{
		{"empty", nil, MimePNG},
		{"garbage", []byte("not an image"), MimePNG},
		{"unsupported mime", []byte{1, 2, 3}, "image/ktx2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(tt.data, tt.mime); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestImageToRGBAMovesOrigin(t *testing.T) {
	src := image.NewRGBA(image.Rect(5, 5, 7, 6))
	src.SetRGBA(5, 5, color.RGBA{B: 255, A: 255})

	out := ImageToRGBA(src)
	if out.Bounds().Min != (image.Point{}) {
		t.Fatalf("origin should be (0,0), got %v", out.Bounds())
	}
	if got := out.RGBAAt(0, 0); got.B != 255 {
		t.Errorf("pixel moved incorrectly: %v", got)
	}
}
