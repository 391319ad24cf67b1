//go:build wireinject
// +build wireinject

package di

import (
	"CoinSage/pkg/config"
	"CoinSage/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Observability
		ProvideLogger,
		ProvideMetricsRecorder,

		// Infrastructure
		ProvideMarketBackend,
		ProvidePublisher,
		ProvideCache,

		// Remote capabilities
		ProvidePredictor,
		ProvideTextService,

		// Domain services
		ProvideStabilizer,
		ProvideSentimentAggregator,

		// Use cases
		ProvideTechnicalUseCase,
		ProvideSentimentUseCase,
		ProvidePredictionUseCase,
		ProvideTrainingUseCase,
		ProvideRecommendUseCase,

		// HTTP surface
		ProvideAdvisorHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
