// Package page renders the static HTML viewer served by glbserve.
package page

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"math"
	"os"
	"strings"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// Layout selects the page variant.
type Layout string

const (
	// Multi is a grid of viewports with a search bar and a reset button.
	Multi Layout = "multi"
	// Single is one full-window viewport showing a fixed model.
	Single Layout = "single"
)

// DefaultThreeVersion is the three.js release the page is written against.
// Later releases dropped the examples/js scripts it loads.
const DefaultThreeVersion = "0.146.0"

// Options configures the generated page.
type Options struct {
	Layout        Layout
	Viewports     int
	DefaultModels []string
	Extension     string
	ThreeVersion  string
	Title         string
}

// DefaultOptions returns the settings of the given layout.
func DefaultOptions(layout Layout) Options {
	opts := Options{
		Layout:       layout,
		Viewports:    4,
		Extension:    ".glb",
		ThreeVersion: DefaultThreeVersion,
		Title:        "GLB Model Viewer with Multi-Search",
	}
	if layout == Single {
		opts.Viewports = 1
		opts.DefaultModels = []string{"model1.glb"}
		opts.Title = "View GLB Model"
	}
	return opts
}

type multiData struct {
	Options
	Indices         []int
	Columns, Rows   int
	ScriptBase      string
	Placeholder     string
	EmptyMessage    string
	InvalidMessage  string
	TruncateMessage string
}

type singleData struct {
	Title      string
	ScriptBase string
	Model      string
}

// Render writes the page for opts to w.
func Render(w io.Writer, opts Options) error {
	if opts.ThreeVersion == "" {
		opts.ThreeVersion = DefaultThreeVersion
	}
	if opts.Extension == "" {
		opts.Extension = ".glb"
	}
	opts.Extension = strings.ToLower(opts.Extension)
	base := "https://cdn.jsdelivr.net/npm/three@" + opts.ThreeVersion

	switch opts.Layout {
	case Multi:
		if opts.Viewports < 1 {
			return fmt.Errorf("page needs at least one viewport, got %d", opts.Viewports)
		}
		return templates.ExecuteTemplate(w, "multi.html.tmpl", newMultiData(opts, base))
	case Single:
		data := singleData{Title: opts.Title, ScriptBase: base}
		if len(opts.DefaultModels) > 0 {
			data.Model = opts.DefaultModels[0]
		}
		return templates.ExecuteTemplate(w, "single.html.tmpl", data)
	default:
		return fmt.Errorf("unknown page layout %q", opts.Layout)
	}
}

func newMultiData(opts Options, base string) multiData {
	n := opts.Viewports
	cols := int(math.Ceil(math.Sqrt(float64(n))))
	rows := (n + cols - 1) / cols

	models := make([]string, 0, len(opts.DefaultModels))
	for i, m := range opts.DefaultModels {
		if i >= n {
			break
		}
		models = append(models, m)
	}
	opts.DefaultModels = models

	label := strings.ToUpper(strings.TrimPrefix(opts.Extension, "."))
	d := multiData{
		Options:         opts,
		Columns:         cols,
		Rows:            rows,
		ScriptBase:      base,
		Placeholder:     fmt.Sprintf("Enter %s filenames (e.g., model1%s, model2%s)", label, opts.Extension, opts.Extension),
		EmptyMessage:    "Please enter at least one filename.",
		InvalidMessage:  fmt.Sprintf("Please enter valid %s filenames ending with %s", label, opts.Extension),
		TruncateMessage: fmt.Sprintf("Only the first %d models will be loaded.", n),
	}
	for i := 1; i <= n; i++ {
		d.Indices = append(d.Indices, i)
	}
	return d
}

// WriteFile renders the page to path.
func WriteFile(path string, opts Options) error {
	var buf bytes.Buffer
	if err := Render(&buf, opts); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing page: %w", err)
	}
	return nil
}
