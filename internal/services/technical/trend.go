package technical

import (
	"math"

	"CoinSage/internal/domain/models"
)

const (
	momentumLookback  = 10
	momentumThreshold = 0.02
	trendRatioBound   = 0.6
)

// AssessTrend aggregates directional votes into a single trend label with
// a 0..1 strength. Each factor votes +1 or -1; the momentum factor may
// abstain but still counts toward the denominator.
func AssessTrend(bars []models.Bar, ind models.IndicatorSet) models.TrendAssessment {
	price := ind.CurrentPrice
	score, factors := 0, 0

	if ind.SMA20 != nil && ind.SMA50 != nil {
		if price > *ind.SMA20 {
			score++
		} else {
			score--
		}
		factors++

		if *ind.SMA20 > *ind.SMA50 {
			score++
		} else {
			score--
		}
		factors++
	}

	if orDefault(ind.MACD, 0) > orDefault(ind.MACDSignal, 0) {
		score++
	} else {
		score--
	}
	factors++

	if orDefault(ind.ADXPos, 25) > orDefault(ind.ADXNeg, 25) {
		score++
	} else {
		score--
	}
	factors++

	if len(bars) >= momentumLookback {
		base := bars[len(bars)-momentumLookback].Close
		if base != 0 {
			change := (price - base) / base
			if change > momentumThreshold {
				score++
			} else if change < -momentumThreshold {
				score--
			}
		}
		factors++
	}

	if factors == 0 {
		return models.TrendAssessment{Trend: models.TrendUnknown, Strength: 0}
	}

	ratio := float64(score) / float64(factors)
	trend := models.TrendSideways
	switch {
	case ratio > trendRatioBound:
		trend = models.TrendBullish
	case ratio < -trendRatioBound:
		trend = models.TrendBearish
	}
	return models.TrendAssessment{Trend: trend, Strength: math.Abs(ratio)}
}
