package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gct-et/assistant/internal/middleware"
	"github.com/gct-et/assistant/pkg/logger"
)

// Handlers groups the endpoint handlers mounted by NewRouter.
type Handlers struct {
	Health        *HealthHandler
	Conversations *ConversationHandler
	Messages      *MessageHandler
	Stream        *StreamHandler
	Assist        *AssistHandler
	Profile       *ProfileHandler
}

// RouterConfig holds the cross-cutting HTTP settings.
type RouterConfig struct {
	JWTSecret         string
	RateLimitRequests int
	RateLimitWindow   time.Duration
	AllowedOrigins    []string
	Logger            *logger.Logger
}

// NewRouter builds the API router.
func NewRouter(h Handlers, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	// Health endpoints (no auth required)
	r.Get("/health", h.Health.Health)
	r.Get("/ready", h.Health.Ready)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret))
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		r.Route("/conversations", func(r chi.Router) {
			r.Post("/", h.Conversations.Create)
			r.Get("/", h.Conversations.List)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.Conversations.Get)
				r.Delete("/", h.Conversations.Delete)

				r.Get("/messages", h.Messages.List)
				r.Post("/messages", h.Messages.Submit)

				r.Get("/stream", h.Stream.Stream)
			})
		})

		r.Post("/translate", h.Assist.Translate)
		r.Post("/speech", h.Assist.Speech)

		r.Get("/profile", h.Profile.Get)
		r.Put("/profile", h.Profile.Put)
		r.Delete("/profile", h.Profile.Delete)

		r.Get("/languages", Languages)
		r.Get("/templates", Templates)
	})

	return r
}
