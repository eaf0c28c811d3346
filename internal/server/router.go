// Package server serves the generated viewer page and the model files next
// to it.
package server

import (
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// ModelContentType is the registered media type for GLB files.
const ModelContentType = "model/gltf-binary"

// NewRouter returns a handler serving files under root. Directories without
// an index.html get a listing.
func NewRouter(root string, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(log))
	r.Use(middleware.Recoverer)

	files := modelTypes(http.FileServer(http.Dir(root)))
	r.Get("/*", files.ServeHTTP)
	r.Head("/*", files.ServeHTTP)
	return r
}

// modelTypes sets the GLB media type, which Go's mime table lacks.
func modelTypes(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.EqualFold(path.Ext(r.URL.Path), ".glb") {
			w.Header().Set("Content-Type", ModelContentType)
		}
		next.ServeHTTP(w, r)
	})
}

// RequestLogger logs one line per request through log.
func RequestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				fields := []zap.Field{
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
				}
				if id := middleware.GetReqID(r.Context()); id != "" {
					fields = append(fields, zap.String("request_id", id))
				}
				if ww.Status() >= http.StatusBadRequest {
					log.Warn("request", fields...)
					return
				}
				log.Debug("request", fields...)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
