// glbtool is a CLI utility for inspecting and generating GLB models.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Faultbox/glbview/internal/engine/scene"
	"github.com/Faultbox/glbview/internal/loader"
	"github.com/Faultbox/glbview/internal/page"
	"github.com/Faultbox/glbview/internal/viewport"
	"github.com/Faultbox/glbview/pkg/glb"
)

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stdout)
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "info":
		err = cmdInfo(os.Stdout, args)
	case "inspect", "fit":
		err = cmdInspect(os.Stdout, args)
	case "cube":
		err = cmdCube(os.Stdout, args)
	case "page":
		err = cmdPage(os.Stdout, args)
	case "help", "-h", "--help":
		printUsage(os.Stdout)
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage(os.Stderr)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `glbtool - GLB model utility

Usage:
  glbtool <command> [options]

Commands:
  info <file.glb>                     Show container and document summary
  inspect [-timeout d] <file.glb>...  Load models into viewports and show fit
  cube [-size s] [-color r,g,b,a] [-center x,y,z] <out.glb>
                                      Write a single-cube test model
  page [-layout multi|single] [-n N] [-models a,b] <out.html>
                                      Write the browser viewer page

Examples:
  glbtool info model1.glb
  glbtool inspect model1.glb model2.glb
  glbtool cube -size 2 -color 1,0,0,1 model1.glb
  glbtool page -n 4 index.html`)
}

func cmdInfo(w io.Writer, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: glbtool info <file.glb>")
	}
	f, err := glb.Open(args[0])
	if err != nil {
		return err
	}
	doc := f.Document

	fmt.Fprintf(w, "File:        %s\n", args[0])
	fmt.Fprintf(w, "Container:   v%d, %d BIN bytes\n", f.Version, len(f.BIN))
	fmt.Fprintf(w, "glTF:        %s\n", doc.Asset.Version)
	if doc.Asset.Generator != "" {
		fmt.Fprintf(w, "Generator:   %s\n", doc.Asset.Generator)
	}
	fmt.Fprintf(w, "Scenes:      %d\n", len(doc.Scenes))
	fmt.Fprintf(w, "Nodes:       %d\n", len(doc.Nodes))
	fmt.Fprintf(w, "Meshes:      %d\n", len(doc.Meshes))
	fmt.Fprintf(w, "Materials:   %d\n", len(doc.Materials))
	fmt.Fprintf(w, "Textures:    %d\n", len(doc.Textures))
	if len(doc.ExtensionsUsed) > 0 {
		fmt.Fprintf(w, "Extensions:  %s\n", strings.Join(doc.ExtensionsUsed, ", "))
	}
	if err := f.CheckExtensions(); err != nil {
		fmt.Fprintf(w, "Unsupported: %v\n", err)
	}
	return nil
}

// inspectContainer is the fixed surface size used for headless fitting.
type inspectContainer struct{}

func (inspectContainer) Size() (int, int) { return 800, 600 }

// inspectReport collects controller events for printing.
type inspectReport struct {
	viewport.NopListener
	fits   map[int]viewport.Fit
	errors map[int]*viewport.LoadError
}

func (r *inspectReport) Loaded(i int, _ string, fit viewport.Fit) { r.fits[i] = fit }

func (r *inspectReport) LoadFailed(err *viewport.LoadError) { r.errors[err.Index] = err }

func cmdInspect(w io.Writer, args []string) error {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	fs.SetOutput(w)
	timeout := fs.Duration("timeout", 30*time.Second, "Per-model load timeout")
	dir := fs.String("dir", ".", "Directory relative names are read from")
	if err := fs.Parse(args); err != nil {
		return err
	}
	files := fs.Args()
	if len(files) == 0 {
		return fmt.Errorf("usage: glbtool inspect <file.glb>...")
	}

	containers := make([]viewport.Container, len(files))
	for i := range containers {
		containers[i] = inspectContainer{}
	}
	report := &inspectReport{fits: map[int]viewport.Fit{}, errors: map[int]*viewport.LoadError{}}
	ctrl, err := viewport.New(len(files), viewport.Config{
		Containers: containers,
		NewLoader: func(int) viewport.Loader {
			return loader.NewGLTF(loader.LocalSource{Root: *dir}, nil)
		},
		Listener:    report,
		LoadTimeout: *timeout,
	})
	if err != nil {
		return err
	}
	defer ctrl.Close()

	if err := ctrl.LoadModels(files); err != nil {
		return err
	}
	if err := ctrl.Await(context.Background()); err != nil {
		return err
	}

	failed := 0
	for i, name := range files {
		fmt.Fprintf(w, "[%d] %s\n", i+1, name)
		if lerr, ok := report.errors[i]; ok {
			fmt.Fprintf(w, "    error:     %v\n", lerr.Err)
			failed++
			continue
		}
		vp, _ := ctrl.Viewport(i)
		st := scene.Collect(vp.Content())
		fit := report.fits[i]
		fmt.Fprintf(w, "    meshes:    %d (%d vertices, %d triangles)\n", st.Meshes, st.Vertices, st.Triangles)
		fmt.Fprintf(w, "    materials: %d, textures: %d\n", st.Materials, st.Textures)
		fmt.Fprintf(w, "    center:    %.3f %.3f %.3f\n", fit.Center.X, fit.Center.Y, fit.Center.Z)
		fmt.Fprintf(w, "    size:      %.3f %.3f %.3f\n", fit.Size.X, fit.Size.Y, fit.Size.Z)
		fmt.Fprintf(w, "    distance:  %.3f\n", fit.Distance)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d models failed to load", failed, len(files))
	}
	return nil
}

func cmdCube(w io.Writer, args []string) error {
	fs := flag.NewFlagSet("cube", flag.ContinueOnError)
	fs.SetOutput(w)
	size := fs.Float64("size", 1, "Edge length")
	color := fs.String("color", "1,1,1,1", "Base color as r,g,b,a")
	center := fs.String("center", "0,0,0", "Center as x,y,z")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: glbtool cube [options] <out.glb>")
	}

	rgba, err := parseFloats(*color, 4)
	if err != nil {
		return fmt.Errorf("color: %w", err)
	}
	c, err := parseFloats(*center, 3)
	if err != nil {
		return fmt.Errorf("center: %w", err)
	}
	data, err := glb.Cube(float32(*size), [3]float32{c[0], c[1], c[2]}, [4]float32{rgba[0], rgba[1], rgba[2], rgba[3]})
	if err != nil {
		return err
	}
	if err := os.WriteFile(fs.Arg(0), data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(w, "Wrote %s (%d bytes)\n", fs.Arg(0), len(data))
	return nil
}

func cmdPage(w io.Writer, args []string) error {
	fs := flag.NewFlagSet("page", flag.ContinueOnError)
	fs.SetOutput(w)
	layout := fs.String("layout", "multi", "Page layout: multi or single")
	n := fs.Int("n", 4, "Number of viewports (multi layout)")
	models := fs.String("models", "", "Comma-separated default models")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: glbtool page [options] <out.html>")
	}

	opts := page.DefaultOptions(page.Layout(*layout))
	if opts.Layout == page.Multi {
		opts.Viewports = *n
	}
	if *models != "" {
		opts.DefaultModels = strings.Split(*models, ",")
	}
	if err := page.WriteFile(fs.Arg(0), opts); err != nil {
		return err
	}
	fmt.Fprintf(w, "Wrote %s\n", fs.Arg(0))
	return nil
}

// parseFloats parses exactly n comma-separated numbers.
func parseFloats(s string, n int) ([]float32, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("expected %d comma-separated values, got %d", n, len(parts))
	}
	out := make([]float32, n)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return nil, err
		}
		out[i] = float32(v)
	}
	return out, nil
}
