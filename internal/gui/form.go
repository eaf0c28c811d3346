// Package gui is the imgui front end of the model browser: a filename bar
// with Load and Reset buttons above a grid of viewport images.
package gui

import (
	"bytes"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/glbview/internal/prompt"
	"github.com/Faultbox/glbview/internal/shell"
	"github.com/Faultbox/glbview/internal/viewport"
)

// Form holds the state behind the input bar: the typed filenames, the line
// shown under the bar and which viewports are loading. It is a
// viewport.Listener, so bind it to the controller it listens to.
type Form struct {
	Query   string
	Message string
	IsError bool

	parser  prompt.Parser
	shell   *shell.Shell
	out     bytes.Buffer
	loading []bool
	log     *zap.Logger
}

// NewForm creates a form for n viewports. Call Bind before Submit or Reset.
func NewForm(parser prompt.Parser, n int, log *zap.Logger) *Form {
	if log == nil {
		log = zap.NewNop()
	}
	return &Form{parser: parser, loading: make([]bool, n), log: log}
}

// Bind attaches the controller that Submit and Reset drive.
func (f *Form) Bind(ctrl shell.Controller) {
	f.shell = shell.New(ctrl, &f.out, f.log)
}

// Submit runs the query as a command line, the same way a line typed on
// stdin is run. It reports whether the query asked to quit.
func (f *Form) Submit() bool {
	cmd, err := f.parser.Parse(f.Query)
	quit := f.exec(shell.Request{Command: cmd, Err: err})
	f.IsError = err != nil
	return quit
}

// Reset clears every viewport and the input bar.
func (f *Form) Reset() {
	f.Query = ""
	f.exec(shell.Request{Command: prompt.Command{Kind: prompt.Reset}})
	f.IsError = false
}

func (f *Form) exec(req shell.Request) bool {
	f.out.Reset()
	quit := f.shell.Exec(req)
	f.Message = strings.TrimSpace(f.out.String())
	return quit
}

// Loading reports whether viewport i shows its loading overlay and the
// overlay text.
func (f *Form) Loading(i int) (string, bool) {
	if i < 0 || i >= len(f.loading) || !f.loading[i] {
		return "", false
	}
	return fmt.Sprintf("Loading Model %d...", i+1), true
}

// LoadingChanged toggles the overlay of viewport index.
func (f *Form) LoadingChanged(index int, loading bool) {
	if index >= 0 && index < len(f.loading) {
		f.loading[index] = loading
	}
}

// Loaded logs a finished load.
func (f *Form) Loaded(index int, filename string, fit viewport.Fit) {
	f.log.Debug("viewport ready",
		zap.Int("viewport", index+1),
		zap.String("file", filename),
		zap.Float32("distance", fit.Distance))
}

// LoadFailed shows the failure under the input bar.
func (f *Form) LoadFailed(err *viewport.LoadError) {
	f.log.Warn("load failed", zap.Error(err))
	f.Message = err.Error()
	f.IsError = true
}
