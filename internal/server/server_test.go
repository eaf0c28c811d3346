package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRouter_ServesFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "index.html", "<!DOCTYPE html>")
	writeFile(t, dir, "model1.glb", "glTF")
	writeFile(t, dir, "UPPER.GLB", "glTF")

	srv := httptest.NewServer(NewRouter(dir, nil))
	defer srv.Close()

	tests := []struct {
		path        string
		status      int
		contentType string
		body        string
	}{
		{"/index.html", http.StatusOK, "text/html; charset=utf-8", "<!DOCTYPE html>"},
		{"/model1.glb", http.StatusOK, ModelContentType, "glTF"},
		{"/UPPER.GLB", http.StatusOK, ModelContentType, "glTF"},
		{"/missing.glb", http.StatusNotFound, "", ""},
		{"/../etc/passwd", http.StatusNotFound, "", ""},
	}

	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			resp, err := http.Get(srv.URL + tc.path)
			if err != nil {
				t.Fatalf("GET failed: %v", err)
			}
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)

			if resp.StatusCode != tc.status {
				t.Fatalf("expected status %d, got %d", tc.status, resp.StatusCode)
			}
			if tc.contentType != "" && resp.Header.Get("Content-Type") != tc.contentType {
				t.Errorf("expected content type %q, got %q", tc.contentType, resp.Header.Get("Content-Type"))
			}
			if tc.body != "" && string(body) != tc.body {
				t.Errorf("expected body %q, got %q", tc.body, body)
			}
		})
	}
}

func TestRouter_RejectsWrites(t *testing.T) {
	srv := httptest.NewServer(NewRouter(t.TempDir(), nil))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/model1.glb", "application/octet-stream", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", resp.StatusCode)
	}
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	dir := t.TempDir()
	writeFile(t, dir, "a.glb", "x")
	h := NewRouter(dir, zap.New(core))

	for _, p := range []string{"/a.glb", "/b.glb"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, p, nil))
	}

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 log entries, got %d", len(entries))
	}
	if entries[0].Level != zap.DebugLevel || entries[0].ContextMap()["status"] != int64(200) {
		t.Errorf("unexpected entry for hit: %v %v", entries[0].Level, entries[0].ContextMap())
	}
	if entries[1].Level != zap.WarnLevel || entries[1].ContextMap()["status"] != int64(404) {
		t.Errorf("unexpected entry for miss: %v %v", entries[1].Level, entries[1].ContextMap())
	}
	if _, ok := entries[0].ContextMap()["request_id"]; !ok {
		t.Error("expected request_id field")
	}
}

func TestRunReturnsErrorWhenHandlerNil(t *testing.T) {
	err := Run(context.Background(), nil, Config{}, nil)
	if err == nil || err.Error() != "http handler must not be nil" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunGracefulShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dir := t.TempDir()
	writeFile(t, dir, "model1.glb", "glTF")

	addrCh := make(chan net.Addr, 1)
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, NewRouter(dir, nil), Config{
			Addr:            "localhost:0",
			ShutdownTimeout: 500 * time.Millisecond,
			Ready:           func(a net.Addr) { addrCh <- a },
		}, zap.NewNop())
	}()

	var addr net.Addr
	select {
	case addr = <-addrCh:
	case err := <-done:
		t.Fatalf("Run exited early: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not start")
	}

	resp, err := http.Get("http://" + addr.String() + "/model1.glb")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestRunAddressInUse(t *testing.T) {
	ln, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	if err := Run(context.Background(), h, Config{Addr: ln.Addr().String()}, nil); err == nil {
		t.Error("expected error for address in use")
	}
}
