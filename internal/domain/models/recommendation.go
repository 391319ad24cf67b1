package models

import "time"

// Recommendation actions.
const (
	ActionBuy  = "buy"
	ActionSell = "sell"
	ActionHold = "hold"
)

// Time horizons.
const (
	HorizonShortTerm  = "short-term"
	HorizonMediumTerm = "medium-term"
)

// ComponentScores are the per-signal scores feeding the weighted fusion.
type ComponentScores struct {
	Sentiment  float64 `json:"sentiment_score"`
	Technical  float64 `json:"technical_score"`
	Prediction float64 `json:"prediction_score"`
	Overall    float64 `json:"overall_score"`
}

// Recommendation is a fused trading recommendation. TargetPrice, StopLoss
// and RiskRewardRatio are nil when the inputs needed to compute them were
// unavailable, never defaulted to zero.
type Recommendation struct {
	Symbol          string          `json:"symbol"`
	Action          string          `json:"action"`
	Confidence      float64         `json:"confidence"`
	TargetPrice     *float64        `json:"target_price,omitempty"`
	StopLoss        *float64        `json:"stop_loss,omitempty"`
	Reasoning       string          `json:"reasoning"`
	RiskLevel       string          `json:"risk_level"`
	TimeHorizon     string          `json:"time_horizon"`
	Scores          ComponentScores `json:"scores"`
	RiskRewardRatio *float64        `json:"risk_reward_ratio,omitempty"`
	Market24h       *Ticker         `json:"market_24h,omitempty"`
	GeneratedAt     time.Time       `json:"generated_at"`
}
