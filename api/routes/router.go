package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/avpro-events/avpro-backend/api/controllers"
	"github.com/avpro-events/avpro-backend/api/middleware"
	article "github.com/avpro-events/avpro-backend/internal/articles"
	"github.com/avpro-events/avpro-backend/internal/assistant"
	"github.com/avpro-events/avpro-backend/internal/availability"
	"github.com/avpro-events/avpro-backend/internal/dashboard"
	event "github.com/avpro-events/avpro-backend/internal/events"
	"github.com/avpro-events/avpro-backend/pkg/config"
	"github.com/avpro-events/avpro-backend/pkg/db"
	"github.com/avpro-events/avpro-backend/pkg/logger"
	"github.com/avpro-events/avpro-backend/pkg/metrics"
	"github.com/avpro-events/avpro-backend/pkg/redis"
)

// Dependencies carries everything the router wires into handlers.
type Dependencies struct {
	Config       *config.Config
	Logger       *logger.Logger
	DB           db.Pinger
	Redis        *redis.Client
	Metrics      *metrics.LedgerMetrics
	Registry     *prometheus.Registry
	Articles     article.Service
	Events       event.Service
	Availability availability.Service
	Dashboard    dashboard.Service
	Assistant    assistant.Service
}

// NewRouter assembles the API surface with the shared middleware chain.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Keep the interfaces nil when the concrete client is absent so the
	// middleware and health checks skip the dependency cleanly.
	var idempotencyStore redis.IdempotencyStore
	var cachePinger redis.Pinger
	if deps.Redis != nil {
		idempotencyStore = deps.Redis
		cachePinger = deps.Redis
	}

	r.Use(
		middleware.Recoverer(deps.Logger),
		middleware.RequestID(deps.Logger),
		middleware.Logging(deps.Logger),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(deps.Config))
		r.Get("/ready", controllers.HealthReady(deps.Config, deps.Logger, deps.DB, cachePinger))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Metrics(deps.Metrics))
		r.Use(middleware.Idempotency(idempotencyStore, deps.Logger))

		r.Route("/articulos", func(r chi.Router) {
			r.Get("/", controllers.ArticleList(deps.Articles, deps.Logger))
			r.Post("/", controllers.ArticleCreate(deps.Articles, deps.Logger))
			r.Get("/{articuloId}", controllers.ArticleGet(deps.Articles, deps.Logger))
			r.Patch("/{articuloId}", controllers.ArticleUpdate(deps.Articles, deps.Logger))
			r.Delete("/{articuloId}", controllers.ArticleDelete(deps.Articles, deps.Logger))
		})

		r.Route("/eventos", func(r chi.Router) {
			r.Get("/", controllers.EventList(deps.Events, deps.Logger))
			r.Post("/", controllers.EventCreate(deps.Events, deps.Logger))
			r.Get("/{eventoId}", controllers.EventGet(deps.Events, deps.Logger))
			r.Patch("/{eventoId}", controllers.EventUpdate(deps.Events, deps.Logger))
			r.Delete("/{eventoId}", controllers.EventDelete(deps.Events, deps.Logger))
		})

		r.Get("/disponibilidad", controllers.AvailabilityCheck(deps.Availability, deps.Logger))
		r.Get("/dashboard", controllers.DashboardSummary(deps.Dashboard, deps.Logger))
		r.Post("/assistant/chat", controllers.AssistantChat(deps.Assistant, deps.Logger))
	})

	return r
}
