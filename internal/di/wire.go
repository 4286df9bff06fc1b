//go:build wireinject
// +build wireinject

package di

import (
	"TradeGate/pkg/config"
	"TradeGate/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire generates the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,
		ProvideLocation,

		// Infrastructure clients
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideEventPublisher,
		ProvideSnapshotStore,

		// Market data
		ProvideRESTClient,
		ProvideTickStream,
		ProvideCandleSource,
		ProvideAdvisor,

		// Engine
		ProvideOrchestrator,
		ProvideEngine,
		ProvideKafkaHandlers,
		ProvideScheduler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
