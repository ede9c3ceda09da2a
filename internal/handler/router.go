package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gforma/lead-assistant/internal/middleware"
	"github.com/gforma/lead-assistant/internal/service"
	"github.com/gforma/lead-assistant/pkg/logger"
)

// RouterConfig carries the dependencies and settings of the HTTP surface.
type RouterConfig struct {
	Sessions  *service.SessionService
	Leads     *service.LeadService
	Broker    ConnectionChecker
	Inference InferenceStatus
	Logger    *logger.Logger

	AdminPassword     string
	JWTSecret         string
	JWTExpiration     time.Duration
	RateLimitRequests int
	RateLimitWindow   time.Duration
	AllowedOrigins    []string
}

// NewRouter builds the API router.
func NewRouter(cfg RouterConfig) http.Handler {
	log := cfg.Logger

	healthHandler := NewHealthHandler(cfg.Broker, cfg.Inference, cfg.Sessions)
	sessionHandler := NewSessionHandler(cfg.Sessions, log)
	messageHandler := NewMessageHandler(cfg.Sessions, log)
	streamHandler := NewStreamHandler(cfg.Sessions, log)
	adminHandler := NewAdminHandler(cfg.Leads, cfg.AdminPassword, cfg.JWTSecret, cfg.JWTExpiration, log)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", sessionHandler.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", sessionHandler.Get)
				r.Delete("/", sessionHandler.Delete)
				r.Post("/messages", messageHandler.Send)
				r.Post("/actions", messageHandler.Act)
				r.Post("/stream", streamHandler.StreamWithMessage)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", adminHandler.Login)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(cfg.JWTSecret))
				r.Use(middleware.RequireScope(middleware.ScopeLeadsRead))
				r.Get("/leads", adminHandler.ListLeads)
				r.Get("/leads/export", adminHandler.ExportLeads)
			})
		})
	})

	return r
}
