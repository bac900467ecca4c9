// Package server implements the treerings HTTP API.
//
// Timelines are computed on POST and kept in a [store.Store]; frames are
// then served as layout JSON or rendered on request:
//
//	GET    /healthz
//	GET    /version
//	POST   /timelines
//	GET    /timelines
//	GET    /timelines/{id}
//	DELETE /timelines/{id}
//	GET    /timelines/{id}/frames/{index}          layout JSON
//	GET    /timelines/{id}/frames/{index}.{format} svg, png, pdf or json
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/treerings/pkg/pipeline"
	"github.com/matzehuels/treerings/pkg/store"
)

// Defaults for [Options].
const (
	DefaultAddr           = ":8080"
	DefaultRequestTimeout = 2 * time.Minute
	shutdownTimeout       = 10 * time.Second
	maxBodyBytes          = 64 << 20
)

// Options configures a [Server].
type Options struct {
	Runner         *pipeline.Runner
	Store          store.Store
	Defaults       pipeline.Options // applied under every request's options
	RequestTimeout time.Duration
	Logger         *log.Logger
}

// Server serves the HTTP API.
type Server struct {
	runner   *pipeline.Runner
	store    store.Store
	defaults pipeline.Options
	timeout  time.Duration
	logger   *log.Logger
}

// New returns a server. A nil Runner gets an uncached one and a nil
// Store a [store.MemoryStore].
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	runner := opts.Runner
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, logger)
	}
	st := opts.Store
	if st == nil {
		st = store.NewMemoryStore()
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &Server{
		runner:   runner,
		store:    st,
		defaults: opts.Defaults,
		timeout:  timeout,
		logger:   logger,
	}
}

// Handler returns the routed API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.timeout))

	r.Get("/healthz", s.health)
	r.Get("/version", s.version)

	r.Route("/timelines", func(r chi.Router) {
		r.Post("/", s.createTimeline)
		r.Get("/", s.listTimelines)
		r.Get("/{id}", s.getTimeline)
		r.Delete("/{id}", s.deleteTimeline)
		r.Get("/{id}/frames/{frame}", s.getFrame)
	})
	return r
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// requestLogger logs one line per request with the charm logger.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
