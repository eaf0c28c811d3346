package config

import (
	"flag"
	"strings"
)

// Flags holds the command-line overrides shared by the glbview commands.
// Zero values leave the loaded setting untouched.
type Flags struct {
	Config     string
	Debug      bool
	Viewports  int
	Models     string
	ModelDir   string
	ModelURL   string
	Addr       string
	Dir        string
	Layout     string
	Width      int
	Height     int
	Windowed   bool
	Fullscreen bool
	Bounds     bool
}

// RegisterFlags binds the override flags on fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.Config, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.IntVar(&f.Viewports, "viewports", 0, "Number of viewports")
	fs.StringVar(&f.Models, "models", "", "Comma-separated default models")
	fs.StringVar(&f.ModelDir, "model-dir", "", "Directory models are loaded from")
	fs.StringVar(&f.ModelURL, "model-url", "", "Base URL models are loaded from")
	fs.StringVar(&f.Addr, "addr", "", "HTTP listen address")
	fs.StringVar(&f.Dir, "dir", "", "Directory served over HTTP")
	fs.StringVar(&f.Layout, "layout", "", "Page layout: multi or single")
	fs.IntVar(&f.Width, "width", 0, "Window width")
	fs.IntVar(&f.Height, "height", 0, "Window height")
	fs.BoolVar(&f.Windowed, "windowed", false, "Run in windowed mode")
	fs.BoolVar(&f.Fullscreen, "fullscreen", false, "Run in fullscreen mode")
	fs.BoolVar(&f.Bounds, "bounds", false, "Draw model bounding boxes")
	return f
}

// apply applies flag overrides to cfg.
func (f *Flags) apply(cfg *Config) {
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.Viewports > 0 {
		cfg.Viewer.Viewports = f.Viewports
	}
	if f.Models != "" {
		cfg.Viewer.DefaultModels = splitList(f.Models)
	}
	if f.ModelDir != "" {
		cfg.Viewer.ModelDir = f.ModelDir
	}
	if f.ModelURL != "" {
		cfg.Viewer.ModelURL = f.ModelURL
	}
	if f.Bounds {
		cfg.Viewer.ShowBounds = true
	}
	if f.Addr != "" {
		cfg.Server.Addr = f.Addr
	}
	if f.Dir != "" {
		cfg.Server.Dir = f.Dir
	}
	if f.Layout != "" {
		cfg.Server.Layout = f.Layout
	}
	if f.Windowed {
		cfg.Window.Fullscreen = false
	}
	if f.Fullscreen {
		cfg.Window.Fullscreen = true
	}
	if f.Width > 0 {
		cfg.Window.Width = f.Width
	}
	if f.Height > 0 {
		cfg.Window.Height = f.Height
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
