package glb

import (
	"encoding/json"

	"github.com/qmuntal/gltf"
)

// DefaultScene returns the index of the scene to display: the declared
// default when valid, else the first scene. It reports false when the
// document has no scenes.
func DefaultScene(doc *gltf.Document) (int, bool) {
	if len(doc.Scenes) == 0 {
		return 0, false
	}
	if doc.Scene != nil && *doc.Scene >= 0 && *doc.Scene < len(doc.Scenes) {
		return *doc.Scene, true
	}
	return 0, true
}

// TextureSource returns the image texture i samples, preferring an
// EXT_texture_webp source over the core one.
func TextureSource(doc *gltf.Document, i int) (int, bool) {
	if i < 0 || i >= len(doc.Textures) || doc.Textures[i] == nil {
		return 0, false
	}
	tex := doc.Textures[i]
	if ext, ok := tex.Extensions[ExtTextureWebP]; ok {
		if src, ok := webpSource(ext); ok {
			return src, true
		}
	}
	if tex.Source == nil {
		return 0, false
	}
	return *tex.Source, true
}

func webpSource(ext any) (int, bool) {
	switch v := ext.(type) {
	case json.RawMessage:
		var body struct {
			Source *int `json:"source"`
		}
		if err := json.Unmarshal(v, &body); err != nil || body.Source == nil {
			return 0, false
		}
		return *body.Source, true
	case map[string]any:
		if src, ok := v["source"].(float64); ok {
			return int(src), true
		}
	}
	return 0, false
}
