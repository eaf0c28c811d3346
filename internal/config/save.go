package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Save writes the config to ConfigDir.
func (c *Config) Save() error {
	return c.SaveTo(filepath.Join(ConfigDir(), FileName))
}

// SaveTo writes the config to path, creating parent directories.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// RememberWindow records the window size in the user config file so the
// next start opens at that size. Other settings in the file are kept.
func RememberWindow(width, height int) error {
	cfg := Default()
	path := filepath.Join(ConfigDir(), FileName)
	if err := loadFromFile(cfg, path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if cfg.Window.Width == width && cfg.Window.Height == height {
		return nil
	}
	cfg.Window.Width, cfg.Window.Height = width, height
	return cfg.Save()
}
