//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"library-gateway/infrastructure/config"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideCollector,
	ProvideBreaker,
	ProvideClientConfig,
	ProvideLibraryClient,
	ProvideReservationClient,
	ProvideRatingClient,
	ProvideSideEffects,
	ProvideQueue,
	ProvideOrchestrator,
	ProvideLibraryHandler,
	ProvideRatingHandler,
	ProvideReservationHandler,
	ProvideRouter,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
