// glbbrowser is the imgui model browser: a filename bar with Load and Reset
// buttons above a grid of viewports.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"

	"go.uber.org/zap"

	"github.com/Faultbox/glbview/internal/config"
	"github.com/Faultbox/glbview/internal/engine/renderer"
	"github.com/Faultbox/glbview/internal/gui"
	"github.com/Faultbox/glbview/internal/layout"
	"github.com/Faultbox/glbview/internal/loader"
	"github.com/Faultbox/glbview/internal/logger"
	"github.com/Faultbox/glbview/internal/prompt"
	"github.com/Faultbox/glbview/internal/shell"
	"github.com/Faultbox/glbview/internal/viewport"
)

const title = "View GLB Models"

func main() {
	runtime.LockOSThread()

	fs := flag.NewFlagSet("glbbrowser", flag.ExitOnError)
	flags := config.RegisterFlags(fs)
	_ = fs.Parse(os.Args[1:])

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if fs.NArg() > 0 {
		cfg.Viewer.DefaultModels = fs.Args()
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	logger.Info("=== glbbrowser ===")

	b, err := newBrowser(cfg, logger.Log)
	if err != nil {
		logger.Error("failed to create browser", zap.Error(err))
		os.Exit(1)
	}
	defer b.Close()

	if err := b.ctrl.LoadDefaults(cfg.Viewer.DefaultModels); err != nil {
		logger.Error("failed to load default models", zap.Error(err))
	}
	b.window.Run(b.frame)
	logger.Info("browser closed normally")
}

// browser wires the imgui window to the viewport controller.
type browser struct {
	log *zap.Logger

	window   *gui.Window
	renderer *renderer.Renderer
	targets  []*renderer.Target
	ctrl     *viewport.Controller
	view     *gui.View
}

func newBrowser(cfg *config.Config, log *zap.Logger) (*browser, error) {
	src, err := loader.NewSource(cfg.Viewer.ModelURL, cfg.Viewer.ModelDir, cfg.Viewer.LoadTimeout)
	if err != nil {
		return nil, err
	}

	b := &browser{log: log}
	// The window owns the GL context, so it comes first.
	b.window, err = gui.NewWindow(title, cfg.Window.Width, cfg.Window.Height)
	if err != nil {
		return nil, err
	}

	opts := renderer.DefaultOptions()
	opts.ShowBounds = cfg.Viewer.ShowBounds
	b.renderer, err = renderer.New(opts, log.Named("renderer"))
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	n := cfg.Viewer.Viewports
	grid := layout.NewGrid(n, cfg.Window.Width, cfg.Window.Height, 2)
	containers := make([]viewport.Container, grid.Len())
	b.targets = make([]*renderer.Target, grid.Len())
	for i := range containers {
		cell := grid.Cell(i)
		containers[i] = cell
		if b.targets[i], err = b.renderer.Target(cell.W, cell.H); err != nil {
			b.Close()
			return nil, fmt.Errorf("viewport %d target: %w", i+1, err)
		}
	}

	form := gui.NewForm(prompt.Parser{Ext: cfg.Viewer.Extension, Max: grid.Len()}, grid.Len(), log.Named("form"))
	b.ctrl, err = viewport.New(grid.Len(), viewport.Config{
		Containers: containers,
		NewSurface: func(i int, _ viewport.Container) viewport.Surface { return b.targets[i] },
		NewLoader: func(int) viewport.Loader {
			return loader.NewGLTF(src, log.Named("loader"))
		},
		Listener:    form,
		Logger:      log.Named("controller"),
		LoadTimeout: cfg.Viewer.LoadTimeout,
	})
	if err != nil {
		b.Close()
		return nil, err
	}
	form.Bind(b.ctrl)

	b.view = gui.NewView(form, b.ctrl, grid, b.targets)
	b.view.Quit = b.quit

	log.Info("browser initialized", zap.Int("viewports", grid.Len()), zap.String("source", fmt.Sprint(src)))
	return b, nil
}

func (b *browser) frame() {
	b.view.Frame()
	b.window.SetTitle(shell.Title(title, b.ctrl.Snapshot()))
}

// quit exits from inside the frame loop, which has no way to stop itself.
func (b *browser) quit() {
	b.Close()
	logger.Info("browser closed normally")
	logger.Sync()
	os.Exit(0)
}

// Close disposes every viewport and its GL resources.
func (b *browser) Close() {
	if b.ctrl != nil {
		b.ctrl.Close()
		b.ctrl = nil
	}
	for i, t := range b.targets {
		if t != nil {
			t.Close()
			b.targets[i] = nil
		}
	}
	if b.renderer != nil {
		b.renderer.Close()
		b.renderer = nil
	}
}
