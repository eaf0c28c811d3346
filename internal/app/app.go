// Package app runs the native multi-viewport viewer: an SDL window split
// into a grid of viewports, each driven by the viewport controller.
package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sqweek/dialog"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/glbview/internal/config"
	"github.com/Faultbox/glbview/internal/engine/debug"
	"github.com/Faultbox/glbview/internal/engine/input"
	"github.com/Faultbox/glbview/internal/engine/picking"
	"github.com/Faultbox/glbview/internal/engine/renderer"
	"github.com/Faultbox/glbview/internal/engine/window"
	"github.com/Faultbox/glbview/internal/layout"
	"github.com/Faultbox/glbview/internal/loader"
	"github.com/Faultbox/glbview/internal/prompt"
	"github.com/Faultbox/glbview/internal/shell"
	"github.com/Faultbox/glbview/internal/viewport"
)

// Title is the window title prefix.
const Title = "View GLB Models"

// cellGap is the spacing between viewports in window pixels.
const cellGap = 2

// pick is a file chosen in the open dialog for one viewport.
type pick struct {
	index int
	path  string
}

// App is the viewer instance.
type App struct {
	cfg *config.Config
	log *zap.Logger

	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	grid     *layout.Grid
	ctrl     *viewport.Controller
	reporter *shell.Reporter
	shell    *shell.Shell
	shots    *debug.Screenshot

	out   io.Writer
	picks chan pick

	running  bool
	focused  int
	dragging uint8 // mouse button held, 0 when idle
	title    string
}

// New opens the window and creates one viewport per grid cell.
func New(cfg *config.Config, out io.Writer, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log.Info("initializing viewer",
		zap.Int("viewports", cfg.Viewer.Viewports),
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height),
	)

	a := &App{
		cfg:   cfg,
		log:   log,
		out:   out,
		picks: make(chan pick, 1),
		shots: debug.NewScreenshot("screenshots", "glbview"),
	}

	src, err := loader.NewSource(cfg.Viewer.ModelURL, cfg.Viewer.ModelDir, cfg.Viewer.LoadTimeout)
	if err != nil {
		return nil, err
	}

	// The GL context must exist before the renderer.
	a.window, err = window.New(window.Config{
		Title:      Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
		Samples:    cfg.Window.Samples,
	}, log.Named("window"))
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	opts := renderer.DefaultOptions()
	opts.ShowBounds = cfg.Viewer.ShowBounds
	a.renderer, err = renderer.New(opts, log.Named("renderer"))
	if err != nil {
		a.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	w, h := a.window.Size()
	a.grid = layout.NewGrid(cfg.Viewer.Viewports, w, h, cellGap)
	a.syncWindow()

	containers := make([]viewport.Container, a.grid.Len())
	for i := range containers {
		containers[i] = a.grid.Cell(i)
	}
	a.reporter = shell.NewReporter(out, log.Named("viewport"))
	a.ctrl, err = viewport.New(a.grid.Len(), viewport.Config{
		Containers: containers,
		NewSurface: func(i int, _ viewport.Container) viewport.Surface {
			return a.renderer.Surface(a.grid.Cell(i))
		},
		NewLoader: func(int) viewport.Loader {
			return loader.NewGLTF(src, log.Named("loader"))
		},
		Listener:    a.reporter,
		Logger:      log.Named("controller"),
		LoadTimeout: cfg.Viewer.LoadTimeout,
	})
	if err != nil {
		a.renderer.Close()
		a.window.Close()
		return nil, err
	}
	a.ctrl.Resize()
	a.shell = shell.New(a.ctrl, out, log.Named("shell"))
	a.input = input.New()

	log.Info("viewer initialized", zap.String("source", fmt.Sprint(src)))
	return a, nil
}

// Run loads the default models and runs the frame loop until the window
// closes, Esc is pressed, a quit command arrives or ctx is done. Commands
// are read from stdin when it is not nil.
func (a *App) Run(ctx context.Context, stdin io.Reader) error {
	a.running = true

	if err := a.ctrl.LoadDefaults(a.cfg.Viewer.DefaultModels); err != nil {
		return fmt.Errorf("loading defaults: %w", err)
	}

	var requests chan shell.Request
	if stdin != nil {
		requests = make(chan shell.Request)
		go func() {
			p := prompt.Parser{Ext: a.cfg.Viewer.Extension, Max: a.ctrl.Len()}
			if err := shell.Read(ctx, stdin, p, requests); err != nil && ctx.Err() == nil {
				a.log.Warn("stdin closed", zap.Error(err))
			}
		}()
		fmt.Fprintf(a.out, "Enter up to %d %s filenames separated by commas (help for commands).\n",
			a.ctrl.Len(), a.cfg.Viewer.Extension)
	}

	frames := 0
	fpsTimer := time.Now()
	a.log.Info("starting frame loop")

	for a.running {
		if ctx.Err() != nil {
			break
		}
		if a.input.Update() {
			break
		}
		for _, ev := range a.input.Events() {
			a.handleEvent(ev)
		}

		select {
		case req, ok := <-requests:
			if !ok {
				requests = nil
			} else if a.shell.Exec(req) {
				a.running = false
			}
		case p := <-a.picks:
			a.loadInto(p.index, p.path)
		default:
		}

		a.renderer.Begin()
		a.ctrl.Tick()
		a.window.SwapBuffers()
		a.updateTitle()

		frames++
		if time.Since(fpsTimer) >= time.Second {
			a.log.Debug("fps", zap.Int("count", frames), zap.Int("pending", a.ctrl.Pending()))
			frames = 0
			fpsTimer = time.Now()
		}
	}

	a.running = false
	return nil
}

func (a *App) handleEvent(ev input.Event) {
	switch ev.Type {
	case input.EventWindowResize:
		a.grid.Resize(ev.Width, ev.Height)
		a.syncWindow()
		a.ctrl.Resize()

	case input.EventKeyDown:
		a.handleKey(ev)

	case input.EventMouseDown:
		if i, ok := a.grid.CellAt(ev.MouseX, ev.MouseY); ok {
			a.focused = i
			a.dragging = ev.Button
			if ev.Button == input.ButtonMiddle {
				a.retarget(i, ev.MouseX, ev.MouseY)
			}
		}

	case input.EventMouseUp:
		a.dragging = 0

	case input.EventMouseMove:
		if a.dragging == 0 {
			return
		}
		vp, err := a.ctrl.Viewport(a.focused)
		if err != nil {
			return
		}
		_, h := vp.Container.Size()
		dx, dy := float32(ev.DeltaX), float32(ev.DeltaY)
		if a.dragging == input.ButtonLeft {
			vp.Controls.HandleDrag(dx, dy, h)
		} else {
			vp.Controls.HandlePan(dx, dy, h)
		}

	case input.EventMouseWheel:
		if i, ok := a.grid.CellAt(ev.MouseX, ev.MouseY); ok {
			vp, _ := a.ctrl.Viewport(i)
			vp.Controls.HandleZoom(ev.Wheel)
		}

	case input.EventFileDrop:
		i, ok := a.grid.CellAt(ev.MouseX, ev.MouseY)
		if !ok {
			i = a.focused
		}
		a.loadInto(i, ev.Path)
	}
}

// retarget moves the orbit target of viewport i to the model point under
// the window position (x, y).
func (a *App) retarget(i, x, y int) {
	vp, err := a.ctrl.Viewport(i)
	if err != nil {
		return
	}
	cell := a.grid.Cell(i)
	ray := picking.FromCamera(vp.Camera, float32(x-cell.X), float32(y-cell.Y), cell.W, cell.H)
	hit, ok := picking.Pick(vp.Scene, ray)
	if !ok {
		return
	}
	vp.Controls.Target = hit.Point
	a.log.Debug("orbit target moved",
		zap.Int("viewport", i+1),
		zap.String("node", hit.Node.Name),
		zap.Float32("distance", hit.Distance))
}

func (a *App) handleKey(ev input.Event) {
	switch ev.Key {
	case sdl.SCANCODE_ESCAPE:
		a.running = false
	case sdl.SCANCODE_R:
		a.ctrl.ResetAll()
		fmt.Fprintln(a.out, "All viewports cleared.")
	case sdl.SCANCODE_C:
		_ = a.ctrl.ClearViewport(a.focused)
	case sdl.SCANCODE_O:
		a.openFileDialog(a.focused)
	case sdl.SCANCODE_B:
		a.renderer.ShowBounds = !a.renderer.ShowBounds
	case sdl.SCANCODE_X:
		a.renderer.ShowAxes = !a.renderer.ShowAxes
	case sdl.SCANCODE_W:
		a.renderer.Wireframe = !a.renderer.Wireframe
	case sdl.SCANCODE_F12:
		path, err := a.renderer.Screenshot(a.shots)
		if err != nil {
			a.log.Warn("screenshot failed", zap.Error(err))
			return
		}
		a.log.Info("screenshot saved", zap.String("path", path))
	case sdl.SCANCODE_1, sdl.SCANCODE_2, sdl.SCANCODE_3, sdl.SCANCODE_4,
		sdl.SCANCODE_5, sdl.SCANCODE_6, sdl.SCANCODE_7, sdl.SCANCODE_8, sdl.SCANCODE_9:
		if i := int(ev.Key - sdl.SCANCODE_1); i < a.ctrl.Len() {
			a.focused = i
		}
	}
}

// loadInto loads a file chosen by path into viewport i, checking the
// extension like typed input.
func (a *App) loadInto(i int, path string) {
	names, _, err := prompt.ParseFilenames(path, a.cfg.Viewer.Extension, 1)
	if err != nil {
		fmt.Fprintln(a.out, err)
		return
	}
	a.focused = i
	if err := a.ctrl.LoadModel(i, names[0]); err != nil {
		a.log.Warn("load rejected", zap.Int("viewport", i+1), zap.Error(err))
	}
}

// openFileDialog shows a native file dialog off the main thread. The choice
// is applied by the frame loop.
func (a *App) openFileDialog(i int) {
	ext := a.cfg.Viewer.Extension
	go func() {
		filename, err := dialog.File().
			Filter("GLB Models", ext[1:]).
			Filter("All Files", "*").
			Title(fmt.Sprintf("Open model for viewport %d", i+1)).
			Load()
		if err != nil {
			if err != dialog.ErrCancelled {
				a.log.Warn("file dialog failed", zap.Error(err))
			}
			return
		}
		select {
		case a.picks <- pick{index: i, path: filename}:
		default:
			a.log.Debug("dropping dialog choice, another is pending")
		}
	}()
}

// saveWindowSize keeps a windowed session's final size for the next start.
func (a *App) saveWindowSize() {
	if a.window == nil || !a.cfg.Window.RememberSize || a.cfg.Window.Fullscreen {
		return
	}
	w, h := a.window.Size()
	if err := config.RememberWindow(w, h); err != nil {
		a.log.Warn("failed to save window size", zap.Error(err))
		return
	}
	a.log.Debug("window size saved", zap.Int("width", w), zap.Int("height", h))
}

func (a *App) syncWindow() {
	w, h := a.window.Size()
	dw, dh := a.window.DrawableSize()
	a.renderer.SetWindow(w, h, dw, dh)
}

func (a *App) updateTitle() {
	title := shell.Title(Title, a.ctrl.Snapshot())
	if title != a.title {
		a.title = title
		a.window.SetTitle(title)
	}
}

// Close disposes every viewport and releases the window.
func (a *App) Close() {
	a.log.Info("closing viewer")
	a.saveWindowSize()
	if a.ctrl != nil {
		a.ctrl.Close()
	}
	if a.renderer != nil {
		a.renderer.Close()
	}
	if a.window != nil {
		a.window.Close()
	}
}
