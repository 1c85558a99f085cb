package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/terra-clan/portfolio-intel/internal/config"
	"github.com/terra-clan/portfolio-intel/internal/dashboard"
	"github.com/terra-clan/portfolio-intel/internal/events"
)

// Server represents the HTTP API server
type Server struct {
	config    config.ServerConfig
	router    *chi.Mux
	dashboard *dashboard.Service
	bus       events.Bus
}

// NewServer creates a new API server
func NewServer(cfg config.ServerConfig, svc *dashboard.Service, bus events.Bus) *Server {
	s := &Server{
		config:    cfg,
		dashboard: svc,
		bus:       bus,
	}
	s.setupRouter()
	return s
}

// Router returns the configured router
func (s *Server) Router() http.Handler {
	return s.router
}

// setupRouter configures all routes and middleware
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.config.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", DatasetVersionHeader},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	r.Route("/api/v1", func(r chi.Router) {
		// Catalog is static and served without a dataset
		r.Get("/pillars", s.handleListPillars)
		r.Get("/pillars/{pillarId}/products", s.handleListPillarProducts)
		r.Get("/products", s.handleListProducts)

		r.Post("/dataset/reload", s.handleReloadDataset)

		// Websocket upgrades must not run under a write timeout
		r.Get("/stream", s.handleStream)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(30 * time.Second))
			r.Use(s.datasetMiddleware)

			r.Get("/dataset", s.handleGetDataset)

			r.Route("/markets", func(r chi.Router) {
				r.Get("/", s.handleListMarkets)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetMarket)
					r.Get("/pillars/{pillarId}", s.handleGetPillarDetail)
				})
			})

			r.Get("/compare", s.handleCompare)
			r.Get("/heatmap", s.handleHeatmap)
		})
	})

	s.router = r
}

// loggingMiddleware logs HTTP requests using slog
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			slog.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
				"dataset_version", ww.Header().Get(DatasetVersionHeader),
				"remote_addr", r.RemoteAddr,
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
