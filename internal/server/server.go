// Package server exposes a read-only status API over the workbook
// directory and the database archive, for the dashboards the audit team
// keeps open during a sweep.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ChaXxl/LysToolBox/internal/dataset"
	"github.com/ChaXxl/LysToolBox/internal/store"
)

// Options configures the status server.
type Options struct {
	Port       int
	DatasetDir string
	Store      store.Store // optional; nil disables the /api/store routes
}

// Server serves the status API.
type Server struct {
	opts Options
	log  *zap.Logger
}

// New builds a status server.
func New(opts Options) *Server {
	return &Server{
		opts: opts,
		log:  zap.L().With(zap.String("component", "server")),
	}
}

// Router assembles the chi route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet},
	}))

	r.Get("/healthz", s.handleHealth)
	r.Get("/api/files", s.handleFiles)
	r.Get("/api/stats", s.handleStats)
	if s.opts.Store != nil {
		r.Get("/api/store/counts", s.handleStoreCounts)
	}
	return r
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.opts.Port),
		Handler: s.Router(),
	}

	go func() {
		<-ctx.Done()
		s.log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	s.log.Info("starting server", zap.Int("port", s.opts.Port))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return eris.Wrap(err, "server listen")
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleFiles(w http.ResponseWriter, r *http.Request) {
	files, err := dataset.ListFiles(s.opts.DatasetDir)
	if err != nil {
		s.fail(w, "list files", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"files": files})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := dataset.Stats(s.opts.DatasetDir)
	if err != nil {
		s.fail(w, "stats", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"stats": stats})
}

func (s *Server) handleStoreCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := s.opts.Store.CountByPlatform(r.Context())
	if err != nil {
		s.fail(w, "store counts", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"counts": counts})
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	s.log.Error("request failed", zap.String("op", op), zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": op + " failed"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
