// glbview is the native multi-viewport GLB model viewer.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/glbview/internal/app"
	"github.com/Faultbox/glbview/internal/config"
	"github.com/Faultbox/glbview/internal/logger"
)

func main() {
	fs := flag.NewFlagSet("glbview", flag.ExitOnError)
	flags := config.RegisterFlags(fs)
	noStdin := fs.Bool("no-stdin", false, "Do not read commands from stdin")
	_ = fs.Parse(os.Args[1:])

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	// Models named on the command line replace the defaults.
	if fs.NArg() > 0 {
		cfg.Viewer.DefaultModels = fs.Args()
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== glbview ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(cfg, os.Stdout, logger.Log)
	if err != nil {
		logger.Error("failed to create viewer", zap.Error(err))
		os.Exit(1)
	}
	defer a.Close()

	var stdin io.Reader = os.Stdin
	if *noStdin {
		stdin = nil
	}
	if err := a.Run(ctx, stdin); err != nil {
		logger.Error("viewer error", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("viewer closed normally")
}
