// Package server provides the HTTP preview and control surface of the
// handglow light painter.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"net/http"
	"sync"
	"time"

	"github.com/ayusman/handglow/internal/app"
	"github.com/ayusman/handglow/internal/detector"
	"github.com/ayusman/handglow/internal/server/api"
	"github.com/ayusman/handglow/internal/store"
)

// Painter is the part of *app.App the server exposes.
type Painter interface {
	Canvas() *image.RGBA
	Fingertips() []detector.Fingertip
	ParticleCount() int
	Status() app.Status
	Export() (*store.Export, error)
	SetPalette(p app.Palette)
}

// Config holds the server configuration.
type Config struct {
	Store   *store.Store
	Painter Painter
	// StreamFPS is the MJPEG preview rate. Zero uses DefaultStreamFPS.
	StreamFPS int
}

// Server represents the HTTP server for the painter.
type Server struct {
	config     Config
	mux        *http.ServeMux
	start      time.Time
	fingertips *FingertipsHandler

	mu   sync.Mutex
	http *http.Server
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	if config.StreamFPS <= 0 {
		config.StreamFPS = DefaultStreamFPS
	}

	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Store != nil {
		exports := api.NewExportHandler(s.config.Store, s.config.Painter)
		s.mux.Handle("/api/exports", exports)
		s.mux.Handle("/api/exports/", exports)

		palette := api.NewPaletteHandler(s.config.Store, s.config.Painter)
		s.mux.Handle("/api/palette", palette)
		s.mux.Handle("/api/palette/", palette)
	}

	if s.config.Painter != nil {
		interval := time.Second / time.Duration(s.config.StreamFPS)
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Painter, interval))

		s.fingertips = NewFingertipsHandler(s.config.Painter, interval)
		s.mux.Handle("/api/fingertips", s.fingertips)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(s.start)

	response := map[string]interface{}{
		"status": "ok",
		"uptime": uptime.String(),
	}
	if p := s.config.Painter; p != nil {
		status := p.Status()
		response["ready"] = status != app.StatusLoading
		response["hand"] = status.String()
		response["particles"] = p.ParticleCount()
	} else {
		response["ready"] = false
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address. It returns
// nil after Shutdown.
func (s *Server) ListenAndServe(addr string) error {
	s.mu.Lock()
	srv := &http.Server{Addr: addr, Handler: s}
	s.http = srv
	s.mu.Unlock()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the listener and the fingertip broadcaster.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.fingertips != nil {
		s.fingertips.Close()
	}

	s.mu.Lock()
	srv := s.http
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
