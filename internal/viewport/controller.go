package viewport

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/glbview/internal/engine/scene"
	gmath "github.com/Faultbox/glbview/pkg/math"
)

// Listener receives viewport events. Callbacks run on the goroutine that
// drives the controller.
type Listener interface {
	LoadingChanged(index int, loading bool)
	Loaded(index int, filename string, fit Fit)
	LoadFailed(err *LoadError)
}

// NopListener ignores every event. Embed it to implement part of Listener.
type NopListener struct{}

func (NopListener) LoadingChanged(int, bool) {}

func (NopListener) Loaded(int, string, Fit) {}

func (NopListener) LoadFailed(*LoadError) {}

// Config describes the viewports to create.
type Config struct {
	// Containers holds one entry per viewport. A short slice or a nil entry
	// fails New with ErrContainerMissing.
	Containers []Container

	// NewSurface creates the surface for viewport i. Nil means NopSurface.
	NewSurface func(index int, c Container) Surface

	// NewLoader creates the loader instance for viewport i.
	NewLoader func(index int) Loader

	Listener Listener
	Logger   *zap.Logger

	// LoadTimeout bounds each load. Zero means no timeout.
	LoadTimeout time.Duration
}

// Controller owns the viewports.
type Controller struct {
	viewports   []*Viewport
	listener    Listener
	log         *zap.Logger
	loadTimeout time.Duration

	ctx     context.Context
	stop    context.CancelFunc
	results chan result
	pending int

	closeOnce sync.Once
}

var errNoModel = errors.New("loader returned no model")

type result struct {
	index    int
	token    uint64
	filename string
	root     *scene.Node
	err      error
}

// New creates n viewports, where n is the number of containers.
func New(n int, cfg Config) (*Controller, error) {
	if n < 1 {
		return nil, fmt.Errorf("viewport count must be positive, got %d", n)
	}
	if cfg.NewLoader == nil {
		return nil, ErrNoLoader
	}
	for i := 0; i < n; i++ {
		if i >= len(cfg.Containers) || cfg.Containers[i] == nil {
			return nil, fmt.Errorf("%w: viewport %d", ErrContainerMissing, i+1)
		}
	}

	c := &Controller{
		listener:    cfg.Listener,
		log:         cfg.Logger,
		loadTimeout: cfg.LoadTimeout,
		results:     make(chan result, n),
	}
	if c.listener == nil {
		c.listener = NopListener{}
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	c.ctx, c.stop = context.WithCancel(context.Background())

	c.viewports = make([]*Viewport, n)
	for i := range c.viewports {
		var s Surface = NopSurface{}
		if cfg.NewSurface != nil {
			s = cfg.NewSurface(i, cfg.Containers[i])
		}
		c.viewports[i] = newViewport(i, cfg.Containers[i], s, cfg.NewLoader(i))
	}

	c.log.Debug("viewports initialized", zap.Int("count", n))
	return c, nil
}

// Len returns the number of viewports.
func (c *Controller) Len() int {
	return len(c.viewports)
}

// Viewport returns viewport i.
func (c *Controller) Viewport(i int) (*Viewport, error) {
	if i < 0 || i >= len(c.viewports) {
		return nil, fmt.Errorf("%w: %d (have %d)", ErrIndexOutOfRange, i, len(c.viewports))
	}
	return c.viewports[i], nil
}

// Pending returns the number of issued loads whose results have not been
// dispatched yet, stale ones included.
func (c *Controller) Pending() int {
	return c.pending
}

// LoadModel replaces the content of viewport i with filename. The previous
// model is removed and disposed immediately; the new one appears once its
// load result is dispatched. A load still in flight for the viewport is
// cancelled and its result discarded.
func (c *Controller) LoadModel(i int, filename string) error {
	vp, err := c.Viewport(i)
	if err != nil {
		return err
	}
	if c.ctx.Err() != nil {
		return ErrClosed
	}

	vp.removeContent()
	token := vp.supersede()

	vp.loading = true
	vp.model = filename
	c.listener.LoadingChanged(i, true)

	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if c.loadTimeout > 0 {
		ctx, cancel = context.WithTimeout(c.ctx, c.loadTimeout)
	} else {
		ctx, cancel = context.WithCancel(c.ctx)
	}
	vp.cancel = cancel
	c.pending++

	c.log.Debug("loading model", zap.Int("viewport", i+1), zap.String("file", filename), zap.Uint64("token", token))

	go func(l Loader) {
		root, err := safeLoad(ctx, l, filename)
		r := result{index: i, token: token, filename: filename, root: root, err: err}
		select {
		case c.results <- r:
		case <-c.ctx.Done():
			if root != nil {
				scene.DisposeNode(root)
			}
		}
	}(vp.Loader)
	return nil
}

// safeLoad runs l.Load and turns a panic into a load error so a malformed
// model cannot take the process down.
func safeLoad(ctx context.Context, l Loader, filename string) (root *scene.Node, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			root, err = nil, fmt.Errorf("%w: %v", ErrLoaderPanic, rec)
		}
	}()
	return l.Load(ctx, filename)
}

// LoadModels loads filenames[i] into viewport i and clears every viewport
// without a name. Names beyond the viewport count are ignored.
func (c *Controller) LoadModels(filenames []string) error {
	for i := range c.viewports {
		var err error
		if i < len(filenames) {
			err = c.LoadModel(i, filenames[i])
		} else {
			err = c.ClearViewport(i)
		}
		if err != nil {
			return err
		}
	}
	if len(filenames) > len(c.viewports) {
		c.log.Warn("ignoring extra models", zap.Strings("files", filenames[len(c.viewports):]))
	}
	return nil
}

// LoadDefaults loads the startup models. Failures are reported like any
// other load failure.
func (c *Controller) LoadDefaults(filenames []string) error {
	for i, name := range filenames {
		if i >= len(c.viewports) {
			break
		}
		if err := c.LoadModel(i, name); err != nil {
			return err
		}
	}
	return nil
}

// ClearViewport removes and disposes the content of viewport i, drops any
// in-flight load and puts the camera back at its default place. Clearing
// an empty viewport is a no-op apart from the camera reset.
func (c *Controller) ClearViewport(i int) error {
	vp, err := c.Viewport(i)
	if err != nil {
		return err
	}
	c.clear(vp)
	return nil
}

func (c *Controller) clear(vp *Viewport) {
	vp.removeContent()
	vp.supersede()
	vp.model = ""
	vp.loading = false
	c.listener.LoadingChanged(vp.Index, false)

	vp.Camera.Position.Z = DefaultDistance
	vp.Controls.Target = gmath.Vec3{}
	vp.Controls.Reset()
	vp.Controls.Update()
}

// ResetAll clears every viewport.
func (c *Controller) ResetAll() {
	for _, vp := range c.viewports {
		c.clear(vp)
	}
	c.log.Debug("all viewports reset")
}

// FitCamera recentres root at the origin and frames it in viewport i.
func (c *Controller) FitCamera(i int, root *scene.Node) (Fit, error) {
	vp, err := c.Viewport(i)
	if err != nil {
		return Fit{}, err
	}
	return vp.fitCamera(root), nil
}

// Resize re-reads every container size and updates cameras and surfaces.
func (c *Controller) Resize() {
	for _, vp := range c.viewports {
		w, h := vp.Container.Size()
		vp.Camera.SetAspect(w, h)
		vp.Surface.SetSize(w, h)
	}
}

// Dispatch applies every load result that has arrived and returns how many
// were taken off the queue. It never blocks.
func (c *Controller) Dispatch() int {
	n := 0
	for {
		select {
		case r := <-c.results:
			c.apply(r)
			n++
		default:
			return n
		}
	}
}

// Tick runs one frame: dispatch results, update controls, render.
func (c *Controller) Tick() {
	c.Dispatch()
	for _, vp := range c.viewports {
		vp.Controls.Update()
		vp.Surface.Render(vp.Scene, vp.Camera)
	}
}

// Await dispatches results until no load is outstanding or ctx is done.
func (c *Controller) Await(ctx context.Context) error {
	for c.pending > 0 {
		select {
		case r := <-c.results:
			c.apply(r)
		case <-ctx.Done():
			return ctx.Err()
		case <-c.ctx.Done():
			return ErrClosed
		}
	}
	return nil
}

func (c *Controller) apply(r result) {
	c.pending--
	vp := c.viewports[r.index]

	if r.token != vp.token {
		c.log.Debug("discarding stale load",
			zap.Int("viewport", r.index+1), zap.String("file", r.filename), zap.Uint64("token", r.token))
		if r.root != nil {
			scene.DisposeNode(r.root)
		}
		return
	}
	if vp.cancel != nil {
		vp.cancel()
		vp.cancel = nil
	}

	if r.err == nil && r.root == nil {
		r.err = errNoModel
	}
	if r.err != nil {
		vp.loading = false
		vp.model = ""
		c.listener.LoadingChanged(r.index, false)

		lerr := &LoadError{Index: r.index, Filename: r.filename, Err: r.err}
		c.log.Warn("model load failed", zap.Int("viewport", r.index+1), zap.String("file", r.filename), zap.Error(r.err))
		c.listener.LoadFailed(lerr)
		return
	}

	vp.Scene.Add(r.root)
	vp.content = r.root
	vp.fit = vp.fitCamera(r.root)
	vp.loading = false
	c.listener.LoadingChanged(r.index, false)

	c.log.Info("model loaded",
		zap.Int("viewport", r.index+1),
		zap.String("file", r.filename),
		zap.Float32("distance", vp.fit.Distance))
	c.listener.Loaded(r.index, r.filename, vp.fit)
}

// Status describes one viewport.
type Status struct {
	Index int
	State State
	Model string
}

// Snapshot returns the status of every viewport.
func (c *Controller) Snapshot() []Status {
	out := make([]Status, len(c.viewports))
	for i, vp := range c.viewports {
		out[i] = Status{Index: i, State: vp.State(), Model: vp.model}
	}
	return out
}

// Close cancels in-flight loads and disposes every viewport's content.
// The controller cannot be used afterwards.
func (c *Controller) Close() {
	c.closeOnce.Do(func() {
		c.stop()
		for _, vp := range c.viewports {
			vp.removeContent()
			vp.supersede()
			vp.loading = false
		}
		for {
			select {
			case r := <-c.results:
				if r.root != nil {
					scene.DisposeNode(r.root)
				}
			default:
				return
			}
		}
	})
}
