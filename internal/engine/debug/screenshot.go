package debug

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"
)

// Screenshot writes framebuffer captures as PNG files named
// <Prefix>_<timestamp>.png inside Dir.
type Screenshot struct {
	Dir    string
	Prefix string

	now func() time.Time
}

// NewScreenshot creates a screenshot writer.
func NewScreenshot(dir, prefix string) *Screenshot {
	return &Screenshot{Dir: dir, Prefix: prefix, now: time.Now}
}

// Filename returns the path the next capture would be written to.
func (s *Screenshot) Filename() string {
	name := fmt.Sprintf("%s_%s.png", s.Prefix, s.now().Format("2006-01-02_15-04-05.000"))
	if s.Dir != "" {
		name = filepath.Join(s.Dir, name)
	}
	return name
}

// FlipRows converts bottom-up RGBA pixels, as read back from GL, into a
// top-down image.
func FlipRows(pixels []byte, width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 || len(pixels) != width*height*4 {
		return nil, fmt.Errorf("pixel data size mismatch: expected %d, got %d", width*height*4, len(pixels))
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	row := width * 4
	for y := 0; y < height; y++ {
		src := (height - 1 - y) * row
		copy(img.Pix[y*img.Stride:y*img.Stride+row], pixels[src:src+row])
	}
	return img, nil
}

// SavePixels flips and saves bottom-up RGBA pixels. It returns the written
// path.
func (s *Screenshot) SavePixels(pixels []byte, width, height int) (string, error) {
	img, err := FlipRows(pixels, width, height)
	if err != nil {
		return "", err
	}
	return s.Save(img)
}

// Save writes img and returns the written path.
func (s *Screenshot) Save(img image.Image) (string, error) {
	if s.Dir != "" {
		if err := os.MkdirAll(s.Dir, 0o755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}
	name := s.Filename()
	f, err := os.Create(name)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return "", fmt.Errorf("encoding PNG: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", name, err)
	}
	return name, nil
}
