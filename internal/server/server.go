// Package server wires the request router, the messaging bridge and the
// small management API into one chi router.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ziadkadry99/webgl-serve/internal/bridge"
	"github.com/ziadkadry99/webgl-serve/internal/logging"
	"github.com/ziadkadry99/webgl-serve/internal/router"
)

// Config holds server configuration.
type Config struct {
	Listen         string
	Source         string
	AllowedOrigins []string
}

// Server serves one game build.
type Server struct {
	cfg        Config
	env        *router.Env
	hub        *bridge.Hub
	logger     *slog.Logger
	router     chi.Router
	httpServer *http.Server
	listener   net.Listener
}

// New creates a server for env. hub may be nil when the build is not
// served through the bridge.
func New(cfg Config, env *router.Env, hub *bridge.Hub, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:    cfg,
		env:    env,
		hub:    hub,
		logger: logger,
	}
	s.router = s.buildRouter()
	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger(s.logger))
	r.Use(middleware.Recoverer)

	origins := s.cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:*", "http://127.0.0.1:*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "HEAD", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	h := &apiHandler{env: s.env, hub: s.hub, source: s.cfg.Source, logger: s.logger}
	r.Route("/api", func(r chi.Router) {
		r.Get("/status", h.status)
		r.Get("/files", h.listFiles)
		r.Delete("/files", h.clearFiles)
	})

	if s.hub != nil {
		r.Handle("/bridge", s.hub)
	}

	rt := router.New(s.env)
	prefix := s.env.Prefix()
	r.Handle(prefix+"*", rt)
	if prefix != "/" {
		r.Handle(strings.TrimSuffix(prefix, "/"), rt)
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, prefix, http.StatusFound)
		})
	}

	return r
}

// Router returns the chi router.
func (s *Server) Router() chi.Router { return s.router }

// Addr returns the bound address once Listen succeeded.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.cfg.Listen
	}
	return s.listener.Addr().String()
}

// URL returns the launcher URL of the served game.
func (s *Server) URL() string {
	return "http://" + s.Addr() + s.env.Prefix()
}

// Listen binds the configured address.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return err
	}
	s.listener = ln
	return nil
}

// Start serves until Shutdown. It binds the address first if Listen was
// not called.
func (s *Server) Start() error {
	if s.listener == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}
	s.logger.Info("webglserve listening", slog.String("addr", s.Addr()), slog.String("url", s.URL()))
	if err := s.httpServer.Serve(s.listener); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server and disconnects bridge agents.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.hub != nil {
		s.hub.Close()
	}
	return s.httpServer.Shutdown(ctx)
}
