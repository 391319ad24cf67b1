package models

import "time"

// Forecast is a stabilized point forecast for the next close of a
// (symbol, timeframe) pair. PredictedPrice is always derived from, and
// dampened toward, CurrentPrice, never the raw unscaled model output.
type Forecast struct {
	Symbol          string    `json:"symbol"`
	Timeframe       string    `json:"timeframe"`
	CurrentPrice    float64   `json:"current_price"`
	PredictedPrice  float64   `json:"predicted_price"`
	Change          float64   `json:"prediction_change"`
	ChangePercent   float64   `json:"prediction_change_percent"`
	Confidence      float64   `json:"confidence"`
	DampeningFactor float64   `json:"volatility_dampening"`
	FeaturesUsed    []string  `json:"features_used"`
	GeneratedAt     time.Time `json:"generated_at"`
}
