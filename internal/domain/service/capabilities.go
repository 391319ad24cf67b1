package service

import (
	"context"

	"CoinSage/internal/domain/models"
)

// Predictor produces a next-close forecast from a scaled feature window.
// Implementations wrap the external model service.
type Predictor interface {
	// Predict takes a feature window (rows oldest first, already scaled)
	// and returns the predicted close in scaled space.
	Predict(ctx context.Context, symbol, timeframe string, window [][]float64) (float64, error)
	// Fit trains or retrains the model for the symbol and timeframe.
	Fit(ctx context.Context, symbol, timeframe string, bars []models.Bar) error
	// Status reports which models are loaded and their training metadata.
	Status(ctx context.Context) (map[string]any, error)
}

// TextScorer assigns a compound polarity in [-1, 1] to a piece of text.
type TextScorer interface {
	Score(ctx context.Context, text string) (float64, error)
}

// TextProvider fetches recent texts about a symbol, keyed by source name.
type TextProvider interface {
	Fetch(ctx context.Context, symbol string, sources []string) (map[string][]string, error)
}
