package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/Faultbox/glbview/internal/engine/scene"
	"github.com/Faultbox/glbview/internal/prompt"
	"github.com/Faultbox/glbview/internal/viewport"
)

type fakeController struct {
	loads  [][]string
	resets int
	err    error
}

func (c *fakeController) LoadModels(filenames []string) error {
	c.loads = append(c.loads, filenames)
	return c.err
}

func (c *fakeController) ResetAll() { c.resets++ }

func collect(t *testing.T, input string, p prompt.Parser) []Request {
	t.Helper()
	ch := make(chan Request)
	errc := make(chan error, 1)
	go func() { errc <- Read(context.Background(), strings.NewReader(input), p, ch) }()

	var out []Request
	for req := range ch {
		out = append(out, req)
	}
	if err := <-errc; err != nil {
		t.Fatalf("Read: %v", err)
	}
	return out
}

func TestRead(t *testing.T) {
	reqs := collect(t, "a.glb, b.glb\n\nreset\nnotes.txt\nquit\n", prompt.Parser{Ext: ".glb", Max: 4})
	if len(reqs) != 5 {
		t.Fatalf("expected 5 requests, got %d", len(reqs))
	}

	if reqs[0].Err != nil || strings.Join(reqs[0].Command.Files, ",") != "a.glb,b.glb" {
		t.Errorf("unexpected first request %+v", reqs[0])
	}
	if !errors.Is(reqs[1].Err, prompt.ErrEmptyInput) {
		t.Errorf("expected ErrEmptyInput, got %v", reqs[1].Err)
	}
	if reqs[2].Command.Kind != prompt.Reset {
		t.Errorf("expected reset, got %v", reqs[2].Command.Kind)
	}
	if !errors.Is(reqs[3].Err, prompt.ErrNoValidFilenames) {
		t.Errorf("expected ErrNoValidFilenames, got %v", reqs[3].Err)
	}
	if reqs[4].Command.Kind != prompt.Quit {
		t.Errorf("expected quit, got %v", reqs[4].Command.Kind)
	}
}

func TestReadStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan Request) // never drained
	errc := make(chan error, 1)
	go func() { errc <- Read(ctx, strings.NewReader("a.glb\n"), prompt.Parser{Ext: ".glb"}, ch) }()
	cancel()

	select {
	case err := <-errc:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Read did not return after cancel")
	}
	if _, ok := <-ch; ok {
		t.Error("expected channel closed")
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }

func TestReadReturnsReaderError(t *testing.T) {
	ch := make(chan Request, 1)
	if err := Read(context.Background(), failingReader{}, prompt.Parser{Ext: ".glb"}, ch); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("expected io.ErrUnexpectedEOF, got %v", err)
	}
}

func TestExec(t *testing.T) {
	tests := []struct {
		name   string
		req    Request
		quit   bool
		output string
		loads  int
		resets int
	}{
		{
			name:   "load with warning",
			req:    Request{Command: prompt.Command{Kind: prompt.Load, Files: []string{"a.glb"}, Warning: "Only the first 1 models will be loaded."}},
			output: "Only the first 1 models will be loaded.\n",
			loads:  1,
		},
		{
			name:   "reset",
			req:    Request{Command: prompt.Command{Kind: prompt.Reset}},
			output: "All viewports cleared.\n",
			resets: 1,
		},
		{
			name:   "help",
			req:    Request{Command: prompt.Command{Kind: prompt.Help}},
			output: prompt.HelpText + "\n",
		},
		{
			name: "quit",
			req:  Request{Command: prompt.Command{Kind: prompt.Quit}},
			quit: true,
		},
		{
			name:   "input error shows message",
			req:    Request{Err: &prompt.InputError{Kind: prompt.ErrEmptyInput, Message: "Please enter at least one filename."}},
			output: "Please enter at least one filename.\n",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			ctrl := &fakeController{}
			quit := New(ctrl, &out, nil).Exec(tc.req)
			if quit != tc.quit {
				t.Errorf("expected quit=%v, got %v", tc.quit, quit)
			}
			if out.String() != tc.output {
				t.Errorf("expected output %q, got %q", tc.output, out.String())
			}
			if len(ctrl.loads) != tc.loads || ctrl.resets != tc.resets {
				t.Errorf("expected %d loads and %d resets, got %d and %d", tc.loads, tc.resets, len(ctrl.loads), ctrl.resets)
			}
		})
	}
}

func TestExecReportsControllerError(t *testing.T) {
	var out bytes.Buffer
	ctrl := &fakeController{err: viewport.ErrClosed}
	New(ctrl, &out, nil).Exec(Request{Command: prompt.Command{Kind: prompt.Load, Files: []string{"a.glb"}}})
	if !strings.HasPrefix(out.String(), "Cannot load models:") {
		t.Errorf("unexpected output %q", out.String())
	}
}

type fixedContainer struct{}

func (fixedContainer) Size() (int, int) { return 400, 300 }

func TestReporterWithController(t *testing.T) {
	var out bytes.Buffer
	rep := NewReporter(&out, nil)

	load := viewport.LoaderFunc(func(ctx context.Context, name string) (*scene.Node, error) {
		if name == "missing.glb" {
			return nil, errors.New("not found")
		}
		root := scene.NewNode(name)
		geom := scene.NewGeometry([]float32{-1, -1, -1, 1, 1, 1, 1, -1, 1}, nil, nil, nil)
		root.Add(scene.NewMeshNode("mesh", &scene.Mesh{Geometry: geom}))
		return root, nil
	})
	ctrl, err := viewport.New(2, viewport.Config{
		Containers: []viewport.Container{fixedContainer{}, fixedContainer{}},
		NewLoader:  func(int) viewport.Loader { return load },
		Listener:   rep,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer ctrl.Close()

	sh := New(ctrl, &out, nil)
	sh.Exec(Request{Command: prompt.Command{Kind: prompt.Load, Files: []string{"a.glb", "missing.glb"}}})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := ctrl.Await(ctx); err != nil {
		t.Fatalf("Await: %v", err)
	}

	if rep.Failures() != 1 {
		t.Errorf("expected 1 failure, got %d", rep.Failures())
	}
	want := "Failed to load model: missing.glb in viewport 2: not found\n"
	if out.String() != want {
		t.Errorf("expected %q, got %q", want, out.String())
	}

	if title := Title("glbview", ctrl.Snapshot()); title != "glbview - [1] a.glb | [2] -" {
		t.Errorf("unexpected title %q", title)
	}
}

func TestTitle(t *testing.T) {
	status := []viewport.Status{
		{Index: 0, State: viewport.Populated, Model: "a.glb"},
		{Index: 1, State: viewport.Loading, Model: "b.glb"},
		{Index: 2, State: viewport.Empty},
	}
	want := "View GLB - [1] a.glb | [2] b.glb (loading) | [3] -"
	if got := Title("View GLB", status); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	if got := Title("View GLB", nil); got != "View GLB" {
		t.Errorf("expected bare prefix, got %q", got)
	}
}
