package repository

import (
	"context"

	"CoinSage/internal/domain/models"
)

// MarketData abstracts the bar, price and ticker source. Implementations
// exist for the Binance REST API and for a ClickHouse bar warehouse.
type MarketData interface {
	// GetKlines returns up to limit most recent bars in ascending time order.
	GetKlines(ctx context.Context, symbol, interval string, limit int) ([]models.Bar, error)
	GetCurrentPrice(ctx context.Context, symbol string) (*models.Price, error)
	GetTicker24h(ctx context.Context, symbol string) (*models.Ticker, error)
	Health(ctx context.Context) error
}

// RecommendationPublisher emits finalized recommendations to downstream
// consumers. Implementations must be safe for concurrent use.
type RecommendationPublisher interface {
	Publish(ctx context.Context, rec *models.Recommendation) error
	Close() error
}
