package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Config controls how the HTTP server behaves.
type Config struct {
	Addr            string
	ShutdownTimeout time.Duration

	// Ready, if set, is called with the bound address once the server
	// accepts connections.
	Ready func(addr net.Addr)
}

// DefaultAddr is the default listen address.
const DefaultAddr = ":8000"

// Run serves handler until ctx is cancelled, then shuts down gracefully
// within the configured timeout.
func Run(ctx context.Context, handler http.Handler, cfg Config, log *zap.Logger) error {
	if handler == nil {
		return errors.New("http handler must not be nil")
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server starting", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	if cfg.Ready != nil {
		cfg.Ready(ln.Addr())
	}

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		log.Info("http server shutting down", zap.Duration("timeout", cfg.ShutdownTimeout))
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
