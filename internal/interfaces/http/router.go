package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/turtacn/lexclock/internal/config"
	"github.com/turtacn/lexclock/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/lexclock/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/lexclock/internal/interfaces/http/handlers"
	"github.com/turtacn/lexclock/internal/interfaces/http/middleware"
)

// RouterConfig aggregates all handler and middleware dependencies required
// to construct the complete HTTP route tree.
type RouterConfig struct {
	// Handlers
	DeadlineHandler *handlers.DeadlineHandler
	CalendarHandler *handlers.CalendarHandler
	HealthHandler   *handlers.HealthHandler

	// CORSAllowedOrigins enables CORS for the listed origins. Empty disables it.
	CORSAllowedOrigins []string

	// Infrastructure
	Logger           logging.Logger
	Metrics          *prometheus.AppMetrics
	MetricsCollector prometheus.MetricsCollector
	MetricsPath      string
}

// NewRouter constructs the complete HTTP route tree from the given configuration.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// --- Global middleware (applied to every request) ---
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogging(cfg.Logger, middleware.DefaultLoggingConfig()))
	r.Use(middleware.RequestMetrics(cfg.Metrics))
	r.Use(chimw.Recoverer)

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
			ExposedHeaders: []string{"X-Request-Id"},
			MaxAge:         300,
		}))
	}

	// --- Probes ---
	if cfg.HealthHandler != nil {
		r.Get("/healthz", cfg.HealthHandler.Liveness)
		r.Get("/readyz", cfg.HealthHandler.Readiness)
	}

	if cfg.MetricsCollector != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = config.DefaultMetricsPath
		}
		r.Handle(path, cfg.MetricsCollector.Handler())
	}

	// --- API v1 ---
	r.Route("/api/v1", func(api chi.Router) {
		registerDeadlineRoutes(api, cfg.DeadlineHandler)
		registerCalendarRoutes(api, cfg.CalendarHandler)
	})

	return r
}

// registerDeadlineRoutes mounts deadline computation endpoints.
func registerDeadlineRoutes(r chi.Router, h *handlers.DeadlineHandler) {
	if h == nil {
		return
	}
	r.Route("/deadlines", func(dr chi.Router) {
		dr.Post("/compute", h.Compute)
		dr.Get("/status", h.Status)
	})
	r.Get("/rules", h.ListRules)
}

// registerCalendarRoutes mounts holiday and day lookup endpoints.
func registerCalendarRoutes(r chi.Router, h *handlers.CalendarHandler) {
	if h == nil {
		return
	}
	r.Get("/holidays/{year}", h.Holidays)
	r.Get("/days/{date}", h.Day)
}
