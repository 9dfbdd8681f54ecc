package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"skyline/flightsync/internal/api"
	"skyline/flightsync/internal/auth"
	"skyline/flightsync/internal/logging"
	"skyline/flightsync/internal/middleware"
)

// RouterOptions carries what the router needs beyond the dependency graph
type RouterOptions struct {
	UpSince  time.Time
	Signer   *auth.TokenSigner
	Gatherer prometheus.Gatherer
	// RateLimiter may be nil to disable per-IP limiting
	RateLimiter *middleware.IPRateLimiter
}

func RegisterRoutes(deps *api.Dependencies, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	// global middleware
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.MetricsMiddleware(deps.Metrics))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://localhost:8081"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthCheck", api.HealthCheckHandler(deps.HealthChecks, opts.UpSince))
	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	RegisterFlightRoutes(r, deps, opts)

	logging.Info("Router initialized with metrics and logging middleware")
	return r
}

// RegisterFlightRoutes mounts the authenticated /flights endpoints
func RegisterFlightRoutes(r chi.Router, deps *api.Dependencies, opts RouterOptions) {
	// a nil *KeysRepo must not reach the middleware as a non-nil interface
	var keys middleware.APIKeyLookup
	if deps.Repo.Keys != nil {
		keys = deps.Repo.Keys
	}

	flights := api.NewFlightsHandler(
		deps.CollectionJob,
		deps.Services.Collector,
		deps.Services.Query,
		deps.SupportedAirports,
	)

	r.Route("/flights", func(fr chi.Router) {
		if opts.RateLimiter != nil {
			fr.Use(opts.RateLimiter.Middleware)
		}
		fr.Use(middleware.AuthMiddleware(opts.Signer, keys))

		fr.Post("/collect-month", flights.CollectMonth())
		fr.Post("/collect", flights.CollectUnit())
		fr.Get("/collect/status", flights.CollectionStatus())
		fr.Get("/schedules", flights.GetSchedules())
	})
}
