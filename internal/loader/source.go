// Package loader fetches GLB models and turns them into scene trees.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// ErrInvalidPath is returned for names that are absolute or escape the
// source root.
var ErrInvalidPath = errors.New("invalid model path")

// Source opens a model by its relative name.
type Source interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// cleanName validates a slash-separated relative name.
func cleanName(name string) (string, error) {
	if name == "" || strings.HasPrefix(name, "/") || strings.Contains(name, `\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, name)
	}
	clean := path.Clean(name)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, name)
	}
	return clean, nil
}

// DirSource reads models from a local directory.
type DirSource struct {
	Root string
}

// Open opens root/name. Names may not leave the root.
func (s DirSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	clean, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.Open(filepath.Join(s.Root, filepath.FromSlash(clean)))
}

func (s DirSource) String() string {
	return s.Root
}

// LocalSource opens absolute paths as given and relative names under Root.
// Files dropped on the window or picked in a dialog arrive as absolute
// paths.
type LocalSource struct {
	Root string
}

// Open opens name.
func (s LocalSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if !filepath.IsAbs(name) {
		return DirSource{Root: s.Root}.Open(ctx, name)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.Open(filepath.Clean(name))
}

func (s LocalSource) String() string {
	return s.Root
}

// StatusError is returned by HTTPSource for non-200 responses.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// HTTPSource fetches models relative to a base URL.
type HTTPSource struct {
	Base   *url.URL
	Client *http.Client
}

// NewHTTPSource parses base and returns a source using a client with the
// given timeout (0 = none).
func NewHTTPSource(base string, timeout time.Duration) (*HTTPSource, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parsing model URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("model URL %q: scheme must be http or https", base)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return &HTTPSource{Base: u, Client: &http.Client{Timeout: timeout}}, nil
}

// Open issues GET base/name. Only 200 responses are accepted.
func (s *HTTPSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	clean, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	target := s.Base.ResolveReference(&url.URL{Path: clean})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, err
	}
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &StatusError{URL: target.String(), StatusCode: resp.StatusCode}
	}
	return resp.Body, nil
}

func (s *HTTPSource) String() string {
	return s.Base.String()
}

// NewSource picks where models are read from: baseURL when set, the local
// directory dir otherwise.
func NewSource(baseURL, dir string, timeout time.Duration) (Source, error) {
	if baseURL != "" {
		return NewHTTPSource(baseURL, timeout)
	}
	return LocalSource{Root: dir}, nil
}
