// Package shell drives a viewport controller from text commands and reports
// viewport events back to the user as text.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/glbview/internal/prompt"
	"github.com/Faultbox/glbview/internal/viewport"
)

// Request is one line read from the user: a command or the reason it was
// rejected.
type Request struct {
	Command prompt.Command
	Err     error
}

// Read parses lines from r and sends them on ch until r is exhausted or ctx
// is done. ch is closed on return. Read blocks on r; run it on its own
// goroutine.
func Read(ctx context.Context, r io.Reader, p prompt.Parser, ch chan<- Request) error {
	defer close(ch)
	reader := prompt.NewReader(r, p)
	for {
		cmd, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil && !errors.Is(err, prompt.ErrInvalidInput) {
			return err
		}
		select {
		case ch <- Request{Command: cmd, Err: err}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Controller is the part of viewport.Controller the shell drives.
type Controller interface {
	LoadModels(filenames []string) error
	ResetAll()
}

// Shell executes requests against a controller.
type Shell struct {
	ctrl Controller
	out  io.Writer
	log  *zap.Logger
}

// New creates a shell writing user messages to out.
func New(ctrl Controller, out io.Writer, log *zap.Logger) *Shell {
	if log == nil {
		log = zap.NewNop()
	}
	return &Shell{ctrl: ctrl, out: out, log: log}
}

// Exec runs one request. It reports whether the user asked to quit.
func (s *Shell) Exec(req Request) bool {
	if req.Err != nil {
		var ierr *prompt.InputError
		if errors.As(req.Err, &ierr) {
			fmt.Fprintln(s.out, ierr.Message)
		} else {
			fmt.Fprintln(s.out, req.Err)
		}
		return false
	}

	cmd := req.Command
	s.log.Debug("command", zap.Stringer("kind", cmd.Kind), zap.Strings("files", cmd.Files))
	switch cmd.Kind {
	case prompt.Load:
		if cmd.Warning != "" {
			fmt.Fprintln(s.out, cmd.Warning)
		}
		if err := s.ctrl.LoadModels(cmd.Files); err != nil {
			fmt.Fprintf(s.out, "Cannot load models: %v\n", err)
		}
	case prompt.Reset:
		s.ctrl.ResetAll()
		fmt.Fprintln(s.out, "All viewports cleared.")
	case prompt.Help:
		fmt.Fprintln(s.out, prompt.HelpText)
	case prompt.Quit:
		return true
	}
	return false
}

// Reporter is a viewport.Listener that writes failures to the user and logs
// every event.
type Reporter struct {
	out io.Writer
	log *zap.Logger

	failures int
}

// NewReporter creates a Reporter.
func NewReporter(out io.Writer, log *zap.Logger) *Reporter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reporter{out: out, log: log}
}

// LoadingChanged logs loading indicator changes.
func (r *Reporter) LoadingChanged(index int, loading bool) {
	r.log.Debug("loading indicator", zap.Int("viewport", index+1), zap.Bool("visible", loading))
}

// Loaded logs a finished load.
func (r *Reporter) Loaded(index int, filename string, fit viewport.Fit) {
	r.log.Debug("viewport ready",
		zap.Int("viewport", index+1),
		zap.String("file", filename),
		zap.Float32("distance", fit.Distance))
}

// LoadFailed shows the failure to the user.
func (r *Reporter) LoadFailed(err *viewport.LoadError) {
	r.failures++
	fmt.Fprintln(r.out, err.Error())
}

// Failures returns the number of failed loads reported.
func (r *Reporter) Failures() int {
	return r.failures
}

// Title renders a window title summarizing every viewport.
func Title(prefix string, status []viewport.Status) string {
	parts := make([]string, len(status))
	for i, st := range status {
		label := "-"
		switch st.State {
		case viewport.Loading:
			label = st.Model + " (loading)"
		case viewport.Populated:
			label = st.Model
		}
		parts[i] = fmt.Sprintf("[%d] %s", st.Index+1, label)
	}
	if len(parts) == 0 {
		return prefix
	}
	return prefix + " - " + strings.Join(parts, " | ")
}
