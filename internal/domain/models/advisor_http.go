package models

// Requests for advisor HTTP endpoints. Defined in domain for consistency and reuse.

type TechnicalRequest struct {
	Symbol   string `param:"symbol" query:"symbol" json:"symbol" validate:"required"`
	Interval string `query:"interval" json:"interval" default:"1h" validate:"oneof=1m 3m 5m 15m 30m 1h 2h 4h 6h 8h 12h 1d"`
	Period   string `query:"period" json:"period" default:"30d"`
}

type PredictionRequest struct {
	Symbols   string `query:"symbols" json:"symbols" validate:"required"`
	Timeframe string `query:"timeframe" json:"timeframe" default:"1d" validate:"oneof=1h 4h 1d 7d"`
}

type SentimentRequest struct {
	Symbols string `query:"symbols" json:"symbols" validate:"required"`
	Sources string `query:"sources" json:"sources" default:"news,social"`
}

type RecommendationRequest struct {
	Symbols   string `query:"symbols" json:"symbols" validate:"required"`
	RiskLevel string `query:"risk_level" json:"risk_level" default:"medium" validate:"oneof=low medium high"`
}

type TrainRequest struct {
	ModelType  string                 `json:"model_type" validate:"required,oneof=price_prediction sentiment technical_analysis recommendation"`
	Symbols    []string               `json:"symbols" validate:"required,min=1"`
	Parameters map[string]interface{} `json:"parameters"`
}
