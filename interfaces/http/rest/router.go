package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"library-gateway/infrastructure/config"
	"library-gateway/interfaces/http/rest/handlers"
	"library-gateway/interfaces/http/rest/middleware"
	"library-gateway/pkg/observability"
)

// Router creates and configures the HTTP router
type Router struct {
	config       *config.Config
	libraries    *handlers.LibraryHandler
	rating       *handlers.RatingHandler
	reservations *handlers.ReservationHandler
	collector    *observability.Collector
	ready        func() bool
	logger       *zap.Logger
}

// NewRouter creates a new router instance. The ready callback reports
// whether the retry worker is running; nil means always ready.
func NewRouter(
	cfg *config.Config,
	libraries *handlers.LibraryHandler,
	rating *handlers.RatingHandler,
	reservations *handlers.ReservationHandler,
	collector *observability.Collector,
	ready func() bool,
	logger *zap.Logger,
) *Router {
	return &Router{
		config:       cfg,
		libraries:    libraries,
		rating:       rating,
		reservations: reservations,
		collector:    collector,
		ready:        ready,
		logger:       logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	if rt.config.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-User-Name", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	if rt.config.EnableMetrics && rt.collector != nil {
		router.Handle("/metrics", rt.collector.Handler())
	}

	// API v1 routes
	router.Route("/api/v1", func(r chi.Router) {
		if rt.config.EnableMetrics && rt.collector != nil {
			r.Use(middleware.Metrics(rt.collector))
		}
		if rt.config.EnableInboundBreaker {
			r.Use(middleware.CircuitBreaker(
				middleware.DefaultCircuitBreakerConfig("gateway"),
				rt.logger,
			))
		}
		r.Use(middleware.Username(rt.logger))

		r.Route("/libraries", func(r chi.Router) {
			r.Get("/", rt.libraries.ListLibraries)
			r.Get("/{libraryUid}/books", rt.libraries.ListLibraryBooks)
		})

		r.Get("/rating", rt.rating.GetRating)

		r.Route("/reservations", func(r chi.Router) {
			r.Get("/", rt.reservations.ListReservations)
			r.Post("/", rt.reservations.TakeBook)
			r.Post("/{reservationUid}/return", rt.reservations.ReturnBook)
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if rt.ready != nil && !rt.ready() {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":"not ready"}`))
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
