package technical

import "CoinSage/internal/domain/models"

// Signal thresholds. Changing these shifts every downstream score, so
// they stay package constants rather than config.
const (
	rsiOverbought   = 70.0
	rsiOversold     = 30.0
	stochOverbought = 80.0
	stochOversold   = 20.0
	adxVeryStrong   = 50.0
	adxStrong       = 25.0
	volumeHighRatio = 1.5
	volumeLowRatio  = 0.5
)

func orDefault(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

// DeriveSignals maps the indicator set onto categorical signals. Signals
// whose inputs are absent are left empty, except where a neutral default
// is the established convention (RSI, MACD, stochastic, trend strength).
func DeriveSignals(ind models.IndicatorSet, lastVolume float64) models.SignalSet {
	var out models.SignalSet
	price := ind.CurrentPrice

	switch r := orDefault(ind.RSI, 50); {
	case r > rsiOverbought:
		out.RSI = models.SignalOverbought
	case r < rsiOversold:
		out.RSI = models.SignalOversold
	default:
		out.RSI = models.SignalNeutral
	}

	if orDefault(ind.MACD, 0) > orDefault(ind.MACDSignal, 0) {
		out.MACD = models.SignalBullish
	} else {
		out.MACD = models.SignalBearish
	}

	if ind.SMA20 != nil && ind.SMA50 != nil {
		sma20, sma50 := *ind.SMA20, *ind.SMA50
		switch {
		case price > sma20 && sma20 > sma50:
			out.MATrend = models.SignalStrongBullish
		case price > sma20 && sma20 < sma50:
			out.MATrend = models.SignalWeakBullish
		case price < sma20 && sma20 < sma50:
			out.MATrend = models.SignalStrongBearish
		default:
			out.MATrend = models.SignalWeakBearish
		}
	}

	if ind.BBUpper != nil && ind.BBLower != nil {
		switch {
		case price > *ind.BBUpper:
			out.Bollinger = models.SignalOverbought
		case price < *ind.BBLower:
			out.Bollinger = models.SignalOversold
		default:
			out.Bollinger = models.SignalNeutral
		}
	}

	k, d := orDefault(ind.StochK, 50), orDefault(ind.StochD, 50)
	switch {
	case k > stochOverbought && d > stochOverbought:
		out.Stochastic = models.SignalOverbought
	case k < stochOversold && d < stochOversold:
		out.Stochastic = models.SignalOversold
	default:
		out.Stochastic = models.SignalNeutral
	}

	switch a := orDefault(ind.ADX, 25); {
	case a > adxVeryStrong:
		out.TrendStrength = models.SignalVeryStrong
	case a > adxStrong:
		out.TrendStrength = models.SignalStrong
	default:
		out.TrendStrength = models.SignalWeak
	}

	switch {
	case ind.VolumeSMA != nil && lastVolume > *ind.VolumeSMA*volumeHighRatio:
		out.Volume = models.SignalVolumeHigh
	case ind.VolumeSMA != nil && lastVolume < *ind.VolumeSMA*volumeLowRatio:
		out.Volume = models.SignalVolumeLow
	default:
		out.Volume = models.SignalVolumeNormal
	}

	return out
}
