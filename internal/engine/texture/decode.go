// Package texture provides image decoding for embedded model textures.
package texture

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg" // JPEG decoder
	_ "image/png"  // PNG decoder
	"strings"

	_ "golang.org/x/image/webp" // WebP decoder (EXT_texture_webp)
)

// Supported image MIME types.
const (
	MimePNG  = "image/png"
	MimeJPEG = "image/jpeg"
	MimeWebP = "image/webp"
)

// Decode decodes an embedded image and converts it to RGBA. mimeType may be
// empty, in which case the format is sniffed from the data.
func Decode(data []byte, mimeType string) (*image.RGBA, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image data")
	}
	switch strings.ToLower(mimeType) {
	case "", MimePNG, MimeJPEG, MimeWebP:
	default:
		return nil, fmt.Errorf("unsupported image type %q", mimeType)
	}

	// Exporters sometimes mislabel images, so the data decides the format.
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return ImageToRGBA(img), nil
}

// ImageToRGBA converts any image to straight-alpha 8-bit RGBA with its
// origin at (0,0), the layout uploaded to GL.
func ImageToRGBA(img image.Image) *image.RGBA {
	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			rgba.SetRGBA(x-bounds.Min.X, y-bounds.Min.Y, color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A})
		}
	}

	return rgba
}
