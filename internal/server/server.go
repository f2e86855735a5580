package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ziadkadry99/umlgen/internal/history"
	"github.com/ziadkadry99/umlgen/internal/logger"
	"github.com/ziadkadry99/umlgen/internal/pipeline"
	"github.com/ziadkadry99/umlgen/internal/render"
	"github.com/ziadkadry99/umlgen/internal/web"
)

// Config holds server configuration.
type Config struct {
	Port     int
	AllowAll bool // allow all CORS origins (dev mode)
}

// Server exposes a diagram session over HTTP.
type Server struct {
	cfg        Config
	session    *pipeline.Session
	fetcher    *render.Fetcher
	history    *history.Store
	log        *logger.Logger
	router     chi.Router
	httpServer *http.Server
}

// New creates a server for session. hist may be nil.
func New(cfg Config, session *pipeline.Session, fetcher *render.Fetcher, hist *history.Store, log *logger.Logger) *Server {
	if fetcher == nil {
		fetcher = render.NewFetcher(nil, log)
	}
	s := &Server{
		cfg:     cfg,
		session: session,
		fetcher: fetcher,
		history: hist,
		log:     log,
	}

	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// The websocket lives outside the timeout group.
	web.New(s.session.Viewer(), s.log).RegisterRoutes(r)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(120 * time.Second))

		r.Route("/api/templates", func(r chi.Router) {
			r.Get("/", s.handleTemplates)
			r.Get("/{type}", s.handleTemplate)
		})

		r.Route("/api/diagrams", func(r chi.Router) {
			r.Post("/generate", s.handleGenerate)
			r.Post("/encode", s.handleEncode)
			r.Get("/decode/{token}", s.handleDecode)
			r.Get("/current", s.handleCurrent)
			r.Get("/export", s.handleExport)
			r.Get("/report", s.handleReport)
		})

		r.Route("/api/viewer", func(r chi.Router) {
			r.Get("/", s.handleViewerState)
			r.Post("/zoom-in", s.handleZoomIn)
			r.Post("/zoom-out", s.handleZoomOut)
			r.Post("/reset", s.handleReset)
			r.Post("/pan", s.handlePan)
			r.Post("/image", s.handleImage)
		})

		if s.history != nil {
			history.RegisterRoutes(r, s.history)
		}
	})

	return r
}

// requestLogger logs each request through the structured logger.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			s.log.WithFields(map[string]any{
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     ww.Status(),
				"bytes":      ww.BytesWritten(),
				"duration":   time.Since(start).String(),
				"request_id": middleware.GetReqID(r.Context()),
			}).Debug("http request")
		}()
		next.ServeHTTP(ww, r)
	})
}

// Router returns the chi router for registering additional routes.
func (s *Server) Router() chi.Router { return s.router }

// Session returns the diagram session served.
func (s *Server) Session() *pipeline.Session { return s.session }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.log.WithFields(map[string]any{"addr": addr}).Info("umlgen server listening")
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
