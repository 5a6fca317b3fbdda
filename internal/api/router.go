package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"riskforge/internal/api/handlers"
	apimiddleware "riskforge/internal/api/middleware"
	"riskforge/internal/config"
	"riskforge/internal/infrastructure/cache"
	"riskforge/internal/streaming"
	"riskforge/pkg/logger"
)

// Router holds dependencies for the API router
type Router struct {
	config   config.Config
	handlers *handlers.Handlers
	cache    *cache.RedisCache
	hub      *streaming.WebSocketHub
	logger   *logger.Logger
}

// NewRouter creates a new Router instance
func NewRouter(cfg config.Config, h *handlers.Handlers, c *cache.RedisCache, hub *streaming.WebSocketHub, log *logger.Logger) *Router {
	return &Router{
		config:   cfg,
		handlers: h,
		cache:    c,
		hub:      hub,
		logger:   log.WithComponent("router"),
	}
}

// Setup sets up the Chi router with all routes and middleware
func (r *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Core middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(apimiddleware.Logger(r.logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// CORS
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   r.config.CORS.AllowedOrigins,
		AllowedMethods:   r.config.CORS.AllowedMethods,
		AllowedHeaders:   r.config.CORS.AllowedHeaders,
		AllowCredentials: r.config.CORS.AllowCredentials,
		MaxAge:           r.config.CORS.MaxAge,
	}))

	// Rate limiting
	if r.config.RateLimit.Enabled && r.cache != nil {
		router.Use(apimiddleware.RateLimiter(r.cache, r.config.RateLimit))
	}

	// Public routes
	router.Group(func(pub chi.Router) {
		pub.Get("/health", r.handlers.Health.Check)
		pub.Get("/ready", r.handlers.Health.Ready)
	})

	// API v1 routes (authenticated)
	router.Route("/api/v1", func(api chi.Router) {
		api.Use(apimiddleware.APIKeyAuth(r.config.Auth.APIKey))

		// Threat model management
		api.Route("/models", func(m chi.Router) {
			m.Get("/", r.handlers.Models.List)
			m.Post("/", r.handlers.Models.Create)
			m.Get("/{id}", r.handlers.Models.Get)
			m.Delete("/{id}", r.handlers.Models.Delete)

			// Analysis runs over a stored model
			m.Post("/{id}/analyze/stride", r.handlers.Analysis.RunStride)
			m.Post("/{id}/analyze/pasta", r.handlers.Analysis.RunPasta)

			// Latest cached results per methodology
			m.Get("/{id}/results/{methodology}", r.handlers.Analysis.LatestResult)
		})

		// Run results
		api.Get("/runs/{id}", r.handlers.Analysis.GetRun)

		// Threat triage
		api.Patch("/threats/{id}/status", r.handlers.Analysis.UpdateThreatStatus)

		// Standalone DREAD scoring
		api.Route("/dread", func(d chi.Router) {
			d.Post("/score", r.handlers.Dread.Score)
			d.Post("/assess", r.handlers.Dread.Assess)
			d.Post("/assess/batch", r.handlers.Dread.AssessBatch)
			d.Post("/compare", r.handlers.Dread.Compare)

			// Static reference data
			d.Get("/worksheet", r.handlers.Dread.Worksheet)
			d.Get("/calibration", r.handlers.Dread.CalibrationExamples)
		})
	})

	// WebSocket streaming endpoint (real-time run events for the editor UI)
	if r.hub != nil {
		router.Get("/ws/analysis", r.hub.ServeWebSocket)
	}

	return router
}
