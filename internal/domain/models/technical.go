package models

// IndicatorSet holds the indicator values computed from the trailing window
// ending at the most recent bar. Pointer fields are nil when the series is
// shorter than the indicator's window. Missing means absent, not zero.
type IndicatorSet struct {
	SMA20         *float64 `json:"sma_20"`
	SMA50         *float64 `json:"sma_50"`
	SMA200        *float64 `json:"sma_200"`
	EMA12         *float64 `json:"ema_12"`
	EMA26         *float64 `json:"ema_26"`
	MACD          *float64 `json:"macd"`
	MACDSignal    *float64 `json:"macd_signal"`
	MACDHistogram *float64 `json:"macd_histogram"`
	RSI           *float64 `json:"rsi"`
	StochK        *float64 `json:"stoch_k"`
	StochD        *float64 `json:"stoch_d"`
	BBUpper       *float64 `json:"bb_upper"`
	BBLower       *float64 `json:"bb_lower"`
	BBMiddle      *float64 `json:"bb_middle"`
	BBWidth       *float64 `json:"bb_width"`
	VolumeSMA     *float64 `json:"volume_sma"`
	VWAP          *float64 `json:"vwap"`
	ADX           *float64 `json:"adx"`
	ADXPos        *float64 `json:"adx_pos"`
	ADXNeg        *float64 `json:"adx_neg"`
	WilliamsR     *float64 `json:"williams_r"`
	CCI           *float64 `json:"cci"`
	ATR           *float64 `json:"atr"`
	OBV           *float64 `json:"obv"`
	CurrentPrice  float64  `json:"current_price"`
}

// Signal is a categorical label derived from a continuous indicator via
// fixed thresholds.
type Signal string

const (
	SignalOverbought Signal = "overbought"
	SignalOversold   Signal = "oversold"
	SignalNeutral    Signal = "neutral"

	SignalBullish Signal = "bullish"
	SignalBearish Signal = "bearish"

	SignalStrongBullish Signal = "strong_bullish"
	SignalWeakBullish   Signal = "weak_bullish"
	SignalWeakBearish   Signal = "weak_bearish"
	SignalStrongBearish Signal = "strong_bearish"

	SignalVeryStrong Signal = "very_strong"
	SignalStrong     Signal = "strong"
	SignalWeak       Signal = "weak"

	SignalVolumeHigh   Signal = "high"
	SignalVolumeLow    Signal = "low"
	SignalVolumeNormal Signal = "normal"
)

// SignalSet maps each signal family to its current label. Empty values mean
// the signal was not evaluable (its inputs were absent).
type SignalSet struct {
	RSI           Signal `json:"rsi,omitempty"`
	MACD          Signal `json:"macd,omitempty"`
	MATrend       Signal `json:"ma_trend,omitempty"`
	Bollinger     Signal `json:"bollinger,omitempty"`
	Stochastic    Signal `json:"stochastic,omitempty"`
	TrendStrength Signal `json:"trend_strength,omitempty"`
	Volume        Signal `json:"volume,omitempty"`
}

// StrongCount reports how many signals sit in a "strong" bucket. Used to
// escalate the recommendation time horizon.
func (s SignalSet) StrongCount() int {
	n := 0
	for _, sig := range []Signal{s.RSI, s.MACD, s.MATrend, s.Bollinger, s.Stochastic, s.TrendStrength, s.Volume} {
		switch sig {
		case SignalStrongBullish, SignalStrongBearish, SignalVeryStrong:
			n++
		}
	}
	return n
}

// Trend labels for the overall market direction.
const (
	TrendBullish  = "bullish"
	TrendBearish  = "bearish"
	TrendSideways = "sideways"
	TrendUnknown  = "unknown"
)

// TrendAssessment is the majority-vote trend over a fixed factor list.
// Strength is in [0,1].
type TrendAssessment struct {
	Trend    string  `json:"trend"`
	Strength float64 `json:"strength"`
}

// TechnicalResult is the full output of a technical analysis pass.
type TechnicalResult struct {
	Symbol           string          `json:"symbol,omitempty"`
	Indicators       IndicatorSet    `json:"indicators"`
	Signals          SignalSet       `json:"signals"`
	SupportLevels    []float64       `json:"support_levels"`
	ResistanceLevels []float64       `json:"resistance_levels"`
	Trend            TrendAssessment `json:"trend"`
}
