// Package config loads glbview settings from defaults, a YAML file and
// command-line flags.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/Faultbox/glbview/internal/logger"
)

// MaxViewports bounds the viewer grid.
const MaxViewports = 16

// Config holds all glbview settings.
type Config struct {
	Viewer  ViewerConfig  `yaml:"viewer"`
	Server  ServerConfig  `yaml:"server"`
	Window  WindowConfig  `yaml:"window"`
	Logging LoggingConfig `yaml:"logging"`
}

// ViewerConfig holds viewport and model loading settings.
type ViewerConfig struct {
	Viewports     int           `yaml:"viewports"`
	DefaultModels []string      `yaml:"default_models"`
	Extension     string        `yaml:"extension"`
	LoadTimeout   time.Duration `yaml:"load_timeout"`
	ShowBounds    bool          `yaml:"show_bounds"`
	ModelDir      string        `yaml:"model_dir"` // Local directory models are read from
	ModelURL      string        `yaml:"model_url"` // Base URL; replaces ModelDir when set
}

// ServerConfig holds the static page server settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	Dir             string        `yaml:"dir"`
	Page            string        `yaml:"page"`
	Layout          string        `yaml:"layout"` // "multi" or "single"
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	ThreeVersion    string        `yaml:"three_version"`
}

// WindowConfig holds native window settings.
type WindowConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
	Samples    int  `yaml:"samples"`

	// RememberSize stores the window size in the user config on exit.
	RememberSize bool `yaml:"remember_size"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with the viewer's default values.
func Default() *Config {
	return &Config{
		Viewer: ViewerConfig{
			Viewports:     4,
			DefaultModels: []string{"model1.glb", "model2.glb", "model3.glb", "model4.glb"},
			Extension:     ".glb",
			LoadTimeout:   30 * time.Second,
			ModelDir:      ".",
		},
		Server: ServerConfig{
			Addr:            ":8000",
			Dir:             ".",
			Page:            "index.html",
			Layout:          "multi",
			ShutdownTimeout: 5 * time.Second,
			ThreeVersion:    "0.146.0",
		},
		Window: WindowConfig{
			Width:        1280,
			Height:       720,
			VSync:        true,
			Samples:      4,
			RememberSize: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	if c.Viewer.Viewports < 1 || c.Viewer.Viewports > MaxViewports {
		return fmt.Errorf("viewer.viewports must be between 1 and %d, got %d", MaxViewports, c.Viewer.Viewports)
	}
	if !strings.HasPrefix(c.Viewer.Extension, ".") || len(c.Viewer.Extension) < 2 {
		return fmt.Errorf("viewer.extension must start with a dot, got %q", c.Viewer.Extension)
	}
	if c.Viewer.LoadTimeout < 0 {
		return fmt.Errorf("viewer.load_timeout must not be negative, got %v", c.Viewer.LoadTimeout)
	}
	switch c.Server.Layout {
	case "multi", "single":
	default:
		return fmt.Errorf("server.layout must be multi or single, got %q", c.Server.Layout)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}
	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	return nil
}
