package usecase

import (
	"fmt"
	"math"
	"strings"

	"CoinSage/internal/domain/models"
	"CoinSage/pkg/config"
)

// Action thresholds on the overall weighted score.
const (
	buyThreshold  = 0.3
	sellThreshold = -0.3
)

// sentimentScore folds aggregate sentiment into a single score weighted by
// how consistent the underlying texts were.
func sentimentScore(s *models.SentimentRecord) float64 {
	if s == nil {
		return 0
	}
	return s.Score * s.Confidence
}

// technicalScore averages the categorical signal buckets into [-1, 1].
// Volume is a confirmation adjustment on top of the averaged factors:
// high volume amplifies the direction the other signals agree on, low
// volume weakens it.
func technicalScore(t *models.TechnicalResult) float64 {
	if t == nil {
		return 0
	}
	sig := t.Signals
	score := 0.0
	factors := 0

	switch sig.RSI {
	case models.SignalOversold:
		score += 0.3
	case models.SignalOverbought:
		score -= 0.3
	}
	factors++

	switch sig.MACD {
	case models.SignalBullish:
		score += 0.2
	case models.SignalBearish:
		score -= 0.2
	}
	factors++

	switch sig.MATrend {
	case models.SignalStrongBullish:
		score += 0.4
	case models.SignalWeakBullish:
		score += 0.2
	case models.SignalWeakBearish:
		score -= 0.2
	case models.SignalStrongBearish:
		score -= 0.4
	}
	factors++

	switch sig.Bollinger {
	case models.SignalOversold:
		score += 0.2
	case models.SignalOverbought:
		score -= 0.2
	}
	factors++

	strongTrend := sig.TrendStrength == models.SignalStrong || sig.TrendStrength == models.SignalVeryStrong
	if strongTrend && t.Trend.Trend == models.TrendBullish {
		score += 0.3
	} else if strongTrend && t.Trend.Trend == models.TrendBearish {
		score -= 0.3
	}
	factors++

	switch {
	case score > 0 && sig.Volume == models.SignalVolumeHigh:
		score += 0.1
	case score > 0 && sig.Volume == models.SignalVolumeLow:
		score -= 0.1
	case score < 0 && sig.Volume == models.SignalVolumeHigh:
		score -= 0.1
	case score < 0 && sig.Volume == models.SignalVolumeLow:
		score += 0.1
	}

	return score / float64(factors)
}

// predictionScore squashes the forecast move through tanh so a 10% change
// lands near 0.76, then discounts by the forecast confidence.
func predictionScore(f *models.Forecast) float64 {
	if f == nil {
		return 0
	}
	return math.Tanh(f.ChangePercent/10) * f.Confidence
}

// fuseScores computes the weighted overall score for a risk profile.
func fuseScores(scores models.ComponentScores, w config.Weights) float64 {
	return scores.Sentiment*w.Sentiment +
		scores.Technical*w.Technical +
		scores.Prediction*w.Prediction
}

// decideAction maps the overall score to an action with its confidence.
// When confidence falls under the profile minimum the action collapses to
// hold at a flat 0.5.
func decideAction(overall float64, profile config.RiskProfile) (action string, confidence float64) {
	switch {
	case overall > buyThreshold:
		action = models.ActionBuy
	case overall < sellThreshold:
		action = models.ActionSell
	default:
		action = models.ActionHold
	}

	confidence = math.Min(0.95, math.Abs(overall)+0.1)
	if confidence < profile.MinConfidence {
		return models.ActionHold, 0.5
	}
	return action, confidence
}

// priceTargets derives target and stop prices for directional actions.
func priceTargets(action string, price *models.Price, profile config.RiskProfile) (target, stop *float64) {
	if price == nil || price.Price == 0 {
		return nil, nil
	}
	p := price.Price
	switch action {
	case models.ActionBuy:
		t := p * (1 + profile.TakeProfit)
		s := p * (1 - profile.StopLoss)
		return &t, &s
	case models.ActionSell:
		t := p * (1 - profile.TakeProfit)
		s := p * (1 + profile.StopLoss)
		return &t, &s
	}
	return nil, nil
}

// riskReward is |target-price| / |price-stop|, nil when undefined.
func riskReward(price *models.Price, target, stop *float64) *float64 {
	if price == nil || target == nil || stop == nil {
		return nil
	}
	risk := math.Abs(price.Price - *stop)
	if risk == 0 {
		return nil
	}
	rr := math.Abs(*target-price.Price) / risk
	return &rr
}

// buildReasoning renders the recommendation rationale as ordered clauses.
func buildReasoning(sent *models.SentimentRecord, tech *models.TechnicalResult, forecast *models.Forecast, overall float64, action string) string {
	var parts []string

	if sent != nil {
		switch sent.Label {
		case models.SentimentPositive:
			parts = append(parts, fmt.Sprintf("Market sentiment is positive (%.2f)", sent.Score))
		case models.SentimentNegative:
			parts = append(parts, fmt.Sprintf("Market sentiment is negative (%.2f)", sent.Score))
		default:
			parts = append(parts, "Market sentiment is neutral")
		}
	}

	if tech != nil {
		parts = append(parts, fmt.Sprintf("Technical trend is %s", tech.Trend.Trend))

		switch tech.Signals.RSI {
		case models.SignalOversold:
			parts = append(parts, "RSI indicates oversold conditions")
		case models.SignalOverbought:
			parts = append(parts, "RSI indicates overbought conditions")
		}
		switch tech.Signals.MACD {
		case models.SignalBullish:
			parts = append(parts, "MACD shows bullish momentum")
		case models.SignalBearish:
			parts = append(parts, "MACD shows bearish momentum")
		}
	}

	if forecast != nil && math.Abs(forecast.ChangePercent) > 2 {
		direction := "upward"
		if forecast.ChangePercent < 0 {
			direction = "downward"
		}
		parts = append(parts, fmt.Sprintf("Price prediction suggests %s movement (%.1f%%)", direction, forecast.ChangePercent))
	}

	switch action {
	case models.ActionBuy:
		parts = append(parts, fmt.Sprintf("Overall analysis suggests buying opportunity (score: %.2f)", overall))
	case models.ActionSell:
		parts = append(parts, fmt.Sprintf("Overall analysis suggests selling opportunity (score: %.2f)", overall))
	default:
		parts = append(parts, fmt.Sprintf("Analysis suggests holding position (score: %.2f)", overall))
	}

	return strings.Join(parts, ". ") + "."
}

// timeHorizon picks short-term unless the technical picture or sentiment
// consistency argues for a longer hold.
func timeHorizon(sent *models.SentimentRecord, tech *models.TechnicalResult) string {
	horizon := models.HorizonShortTerm

	if tech != nil {
		strongTrend := tech.Signals.TrendStrength == models.SignalStrong ||
			tech.Signals.TrendStrength == models.SignalVeryStrong
		if strongTrend && tech.Trend.Trend != models.TrendSideways {
			horizon = models.HorizonMediumTerm
		}
		if tech.Signals.StrongCount() >= 2 {
			horizon = models.HorizonMediumTerm
		}
	}

	if sent != nil && sent.Confidence > 0.8 {
		horizon = models.HorizonMediumTerm
	}
	return horizon
}
