package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/aristath/turnips/internal/database"
	"github.com/aristath/turnips/internal/events"
	"github.com/aristath/turnips/internal/modules/ingestion"
	ingestionhandlers "github.com/aristath/turnips/internal/modules/ingestion/handlers"
	"github.com/aristath/turnips/internal/modules/patterns"
	patternhandlers "github.com/aristath/turnips/internal/modules/patterns/handlers"
	"github.com/aristath/turnips/internal/modules/records"
	recordhandlers "github.com/aristath/turnips/internal/modules/records/handlers"
	"github.com/aristath/turnips/internal/scheduler"
	"github.com/aristath/turnips/internal/sources"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// Config holds server configuration
type Config struct {
	Log        zerolog.Logger
	DB         *database.DB
	Records    *records.Repository
	Ingestion  *ingestion.Service
	Classifier *patterns.Classifier
	EventBus   *events.Bus
	Scheduler  *scheduler.Scheduler // optional, enables manual job triggers
	Jobs       []scheduler.Job
	Source     sources.RowSource // optional configured spreadsheet
	Layout     ingestion.Layout
	MinPrices  int
	Port       int
	DevMode    bool
}

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	cfg            Config
	db             *database.DB
	systemHandlers *SystemHandlers
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router: chi.NewRouter(),
		log:    cfg.Log.With().Str("component", "server").Logger(),
		cfg:    cfg,
		db:     cfg.DB,
		systemHandlers: NewSystemHandlers(
			cfg.Log,
			cfg.DB,
			cfg.Records,
			cfg.Scheduler,
			cfg.Jobs,
		),
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the router
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		// The event stream is long-lived, so it sits outside the timeout and
		// compression middleware applied to the rest of the API.
		if s.cfg.EventBus != nil {
			r.Get("/events/ws", NewEventsStreamHandler(s.cfg.EventBus, s.log).ServeHTTP)
		}

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))
			if !s.cfg.DevMode {
				r.Use(middleware.Compress(5))
			}

			r.Route("/system", func(r chi.Router) {
				r.Get("/status", s.systemHandlers.HandleSystemStatus)
				r.Get("/database", s.systemHandlers.HandleDatabaseStats)
				r.Get("/jobs", s.systemHandlers.HandleListJobs)
				r.Post("/jobs/{name}", s.systemHandlers.HandleTriggerJob)
			})

			if s.cfg.Classifier != nil {
				patternhandlers.NewHandlers(s.cfg.Classifier, s.log).RegisterRoutes(r)
			}

			if s.cfg.Records != nil {
				recordhandlers.NewHandlers(s.cfg.Records, s.cfg.MinPrices, s.log).RegisterRoutes(r)
			}

			if s.cfg.Ingestion != nil && s.cfg.Records != nil {
				ingestionhandlers.NewHandlers(
					s.cfg.Ingestion,
					s.cfg.Records,
					s.cfg.Source,
					s.cfg.Layout,
					s.log,
				).RegisterRoutes(r)
			}
		})
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
