package gui

import (
	"fmt"

	"github.com/AllenDang/cimgui-go/backend"
	"github.com/AllenDang/cimgui-go/backend/sdlbackend"
	"github.com/AllenDang/cimgui-go/imgui"
)

// Window is the SDL window and imgui context of the browser. It owns the GL
// context, so create it before any renderer.
type Window struct {
	backend backend.Backend[sdlbackend.SDLWindowFlags]
	title   string
}

// NewWindow opens the browser window. It must run on the locked main
// thread.
func NewWindow(title string, width, height int) (*Window, error) {
	b, err := backend.CreateBackend(sdlbackend.NewSDLBackend())
	if err != nil {
		return nil, fmt.Errorf("failed to create imgui backend: %w", err)
	}
	b.SetBgColor(imgui.NewVec4(0.1, 0.1, 0.12, 1.0))
	b.CreateWindow(title, width, height)
	return &Window{backend: b, title: title}, nil
}

// Run calls frame once per frame until the window closes.
func (w *Window) Run(frame func()) {
	w.backend.Run(frame)
}

// SetTitle updates the window title when it changed.
func (w *Window) SetTitle(title string) {
	if title == w.title {
		return
	}
	w.title = title
	w.backend.SetWindowTitle(title)
}
