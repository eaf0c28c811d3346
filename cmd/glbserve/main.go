// glbserve writes the three.js viewer page into a directory and serves that
// directory over HTTP, models included.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/glbview/internal/config"
	"github.com/Faultbox/glbview/internal/logger"
	"github.com/Faultbox/glbview/internal/page"
	"github.com/Faultbox/glbview/internal/server"
)

func main() {
	fs := flag.NewFlagSet("glbserve", flag.ExitOnError)
	flags := config.RegisterFlags(fs)
	noPage := fs.Bool("no-page", false, "Serve the directory without writing the page")
	_ = fs.Parse(os.Args[1:])

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Named("server")

	if !*noPage {
		path := filepath.Join(cfg.Server.Dir, cfg.Server.Page)
		if err := page.WriteFile(path, pageOptions(cfg)); err != nil {
			log.Error("failed to write page", zap.Error(err))
			os.Exit(1)
		}
		log.Info("page written", zap.String("path", path), zap.String("layout", cfg.Server.Layout))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = server.Run(ctx, server.NewRouter(cfg.Server.Dir, log), server.Config{
		Addr:            cfg.Server.Addr,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		Ready: func(addr net.Addr) {
			fmt.Printf("Serving %s at http://%s/%s\n", cfg.Server.Dir, displayAddr(addr), cfg.Server.Page)
		},
	}, log)
	if err != nil {
		log.Error("server error", zap.Error(err))
		os.Exit(1)
	}
}

// pageOptions maps the config onto the page generator.
func pageOptions(cfg *config.Config) page.Options {
	opts := page.DefaultOptions(page.Layout(cfg.Server.Layout))
	opts.Extension = cfg.Viewer.Extension
	opts.ThreeVersion = cfg.Server.ThreeVersion
	if opts.Layout == page.Multi {
		opts.Viewports = cfg.Viewer.Viewports
		opts.DefaultModels = cfg.Viewer.DefaultModels
	} else if len(cfg.Viewer.DefaultModels) > 0 {
		opts.DefaultModels = cfg.Viewer.DefaultModels[:1]
	}
	return opts
}

// displayAddr replaces an unspecified host with localhost.
func displayAddr(addr net.Addr) string {
	tcp, ok := addr.(*net.TCPAddr)
	if !ok || !tcp.IP.IsUnspecified() {
		return addr.String()
	}
	return fmt.Sprintf("localhost:%d", tcp.Port)
}
