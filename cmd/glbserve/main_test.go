package main

import (
	"net"
	"testing"

	"github.com/Faultbox/glbview/internal/config"
	"github.com/Faultbox/glbview/internal/page"
)

func TestPageOptions(t *testing.T) {
	cfg := config.Default()
	cfg.Viewer.Viewports = 2
	cfg.Viewer.DefaultModels = []string{"a.glb", "b.glb", "c.glb"}

	opts := pageOptions(cfg)
	if opts.Layout != page.Multi || opts.Viewports != 2 {
		t.Errorf("expected multi with 2 viewports, got %s with %d", opts.Layout, opts.Viewports)
	}
	if len(opts.DefaultModels) != 3 {
		t.Errorf("expected models passed through, got %v", opts.DefaultModels)
	}

	cfg.Server.Layout = "single"
	opts = pageOptions(cfg)
	if opts.Layout != page.Single || opts.Viewports != 1 {
		t.Errorf("expected single with 1 viewport, got %s with %d", opts.Layout, opts.Viewports)
	}
	if len(opts.DefaultModels) != 1 || opts.DefaultModels[0] != "a.glb" {
		t.Errorf("expected first model only, got %v", opts.DefaultModels)
	}
}

func TestDisplayAddr(t *testing.T) {
	tests := []struct {
		addr net.Addr
		want string
	}{
		{&net.TCPAddr{IP: net.IPv4zero, Port: 8000}, "localhost:8000"},
		{&net.TCPAddr{IP: net.IPv6unspecified, Port: 8000}, "localhost:8000"},
		{&net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 9000}, "127.0.0.1:9000"},
	}
	for _, tc := range tests {
		if got := displayAddr(tc.addr); got != tc.want {
			t.Errorf("displayAddr(%v): expected %s, got %s", tc.addr, tc.want, got)
		}
	}
}
