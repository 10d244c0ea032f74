package server

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/userprojects/userprojects/internal/handler"
	"github.com/userprojects/userprojects/internal/middleware"
	"github.com/userprojects/userprojects/internal/repository"
	"github.com/userprojects/userprojects/internal/service"
)

// maxRequestBody caps request bodies; every route is a read.
const maxRequestBody = 1 << 10

// RouterDeps are the collaborators the HTTP routes need.
type RouterDeps struct {
	Logger    *slog.Logger
	Connector repository.Connector
	Service   *service.UserProjectsService

	// Cache is nil when Redis is not configured.
	Cache handler.HealthChecker

	// Exporter is nil when metrics are disabled.
	Exporter handler.MetricsExporter

	RateLimit middleware.RateLimitConfig
	Security  middleware.SecurityConfig
	CORS      middleware.CORSConfig

	// PrintPanicStack also writes recovered panic stacks to stderr.
	PrintPanicStack bool
}

// NewRouter configures the chi router with all routes and middleware.
func NewRouter(deps RouterDeps) *chi.Mux {
	h := handler.New()
	healthHandler := handler.NewHealthHandler(deps.Connector, deps.Cache, deps.Logger)
	userHandler := handler.NewUserHandler(deps.Service, deps.Logger)

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Recoverer(deps.Logger, deps.PrintPanicStack))
	r.Use(middleware.Security(deps.Security))
	r.Use(middleware.CORS(deps.CORS))
	r.Use(middleware.MaxBodySize(maxRequestBody))

	// Health endpoints
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)

	// Root info endpoint
	r.Get("/", h.Hello)

	if deps.Exporter != nil {
		metricsHandler := handler.NewMetricsHandler(deps.Exporter)
		r.Get("/metrics", metricsHandler.Metrics)
	}

	r.Route("/api/user", func(r chi.Router) {
		r.Use(middleware.RateLimitIP(deps.RateLimit))
		r.Get("/{user_id}", userHandler.GetUserProjects)
	})

	// 404 and 405 handlers
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}
