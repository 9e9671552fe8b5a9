// Package di wires the gateway's dependencies with google/wire.
package di

import (
	"go.uber.org/zap"

	"library-gateway/application/resilience"
	"library-gateway/application/retry"
	"library-gateway/application/sagas"
	"library-gateway/infrastructure/config"
	"library-gateway/interfaces/http/rest"
	"library-gateway/pkg/observability"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logger       *zap.Logger
	Collector    *observability.Collector
	Breaker      *resilience.Breaker
	Queue        *retry.Queue
	Orchestrator *sagas.Orchestrator
	Router       *rest.Router
}
