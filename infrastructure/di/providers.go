package di

import (
	"go.uber.org/zap"

	"library-gateway/application/resilience"
	"library-gateway/application/retry"
	"library-gateway/application/sagas"
	"library-gateway/infrastructure/clients"
	"library-gateway/infrastructure/config"
	"library-gateway/interfaces/http/rest"
	"library-gateway/interfaces/http/rest/handlers"
	"library-gateway/pkg/observability"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideCollector creates the prometheus metrics collector
func ProvideCollector() *observability.Collector {
	return observability.NewCollector("library_gateway")
}

// ProvideBreaker creates the per-downstream circuit breaker, reporting
// state transitions to the metrics collector.
func ProvideBreaker(cfg *config.Config, collector *observability.Collector, logger *zap.Logger) *resilience.Breaker {
	breaker := resilience.NewBreaker(resilience.BreakerConfig{
		FailureThreshold: cfg.BreakerFailureThreshold,
		BreakDuration:    cfg.BreakerBreakDuration,
	}, logger)
	breaker.OnStateChange(collector.BreakerStateChanged)
	return breaker
}

// ProvideClientConfig maps gateway configuration onto the downstream
// client settings.
func ProvideClientConfig(cfg *config.Config) clients.Config {
	return clients.Config{
		LibraryBaseURL:     cfg.LibraryBaseURL,
		ReservationBaseURL: cfg.ReservationBaseURL,
		RatingBaseURL:      cfg.RatingBaseURL,
		RequestTimeout:     cfg.RequestTimeout,
	}
}

// ProvideLibraryClient creates the Library service client
func ProvideLibraryClient(clientCfg clients.Config, breaker *resilience.Breaker, logger *zap.Logger) *clients.LibraryClient {
	return clients.NewLibraryClient(clientCfg, breaker, logger)
}

// ProvideReservationClient creates the Reservation service client
func ProvideReservationClient(clientCfg clients.Config, breaker *resilience.Breaker, logger *zap.Logger) *clients.ReservationClient {
	return clients.NewReservationClient(clientCfg, breaker, logger)
}

// ProvideRatingClient creates the Rating service client
func ProvideRatingClient(clientCfg clients.Config, breaker *resilience.Breaker, logger *zap.Logger) *clients.RatingClient {
	return clients.NewRatingClient(clientCfg, breaker, logger)
}

// ProvideSideEffects binds the deferred operation executor to the clients.
// Queued retries flow through the same breaker-guarded calls as request-time
// attempts.
func ProvideSideEffects(library *clients.LibraryClient, rating *clients.RatingClient) *clients.SideEffects {
	return clients.NewSideEffects(library, rating)
}

// ProvideQueue creates the retry queue
func ProvideQueue(
	cfg *config.Config,
	sideEffects *clients.SideEffects,
	collector *observability.Collector,
	logger *zap.Logger,
) *retry.Queue {
	return retry.NewQueue(retry.QueueConfig{
		TaskTimeout:    cfg.QueueTaskTimeout,
		AttemptTimeout: cfg.QueueAttemptTimeout,
		RetryBackoff:   cfg.QueueRetryBackoff,
		DrainGrace:     cfg.QueueDrainGrace,
	}, sideEffects, logger, collector)
}

// ProvideOrchestrator creates the borrow/return workflow orchestrator
func ProvideOrchestrator(
	reservation *clients.ReservationClient,
	library *clients.LibraryClient,
	rating *clients.RatingClient,
	queue *retry.Queue,
	collector *observability.Collector,
	logger *zap.Logger,
) *sagas.Orchestrator {
	return sagas.NewOrchestrator(reservation, library, rating, queue, logger, collector)
}

// ProvideLibraryHandler creates the library handler
func ProvideLibraryHandler(library *clients.LibraryClient, logger *zap.Logger) *handlers.LibraryHandler {
	return handlers.NewLibraryHandler(library, logger)
}

// ProvideRatingHandler creates the rating handler
func ProvideRatingHandler(rating *clients.RatingClient, logger *zap.Logger) *handlers.RatingHandler {
	return handlers.NewRatingHandler(rating, logger)
}

// ProvideReservationHandler creates the reservation handler
func ProvideReservationHandler(orchestrator *sagas.Orchestrator, logger *zap.Logger) *handlers.ReservationHandler {
	return handlers.NewReservationHandler(orchestrator, logger)
}

// ProvideRouter creates the HTTP router. Readiness reflects the retry
// worker being up.
func ProvideRouter(
	cfg *config.Config,
	libraryHandler *handlers.LibraryHandler,
	ratingHandler *handlers.RatingHandler,
	reservationHandler *handlers.ReservationHandler,
	collector *observability.Collector,
	queue *retry.Queue,
	logger *zap.Logger,
) *rest.Router {
	return rest.NewRouter(cfg, libraryHandler, ratingHandler, reservationHandler, collector, queue.Running, logger)
}
