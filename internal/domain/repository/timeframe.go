package repository

import (
	"time"

	"CoinSage/internal/domain/models"
)

// Timeframe is a forecast horizon key.
type Timeframe string

const (
	TF1h Timeframe = "1h"
	TF4h Timeframe = "4h"
	TF1d Timeframe = "1d"
	TF7d Timeframe = "7d"
)

// TimeframeSpec bundles the per-timeframe stabilizer constants. The factor
// values are empirically chosen and deliberately not tuned here; longer
// horizons are dampened harder and smoothed more.
type TimeframeSpec struct {
	Interval  string        // bar interval requested from the market data source
	Validity  time.Duration // cached forecast validity window
	Dampening float64       // multiplier on the raw forecast delta
	Smoothing float64       // weight of the previous cached forecast on refresh
	Boosted   bool          // confidence x1.1 for dampened horizons
}

var timeframeSpecs = map[Timeframe]TimeframeSpec{
	TF1h: {Interval: "1h", Validity: 2 * time.Minute, Dampening: 1.0, Smoothing: 0.3},
	TF4h: {Interval: "4h", Validity: 10 * time.Minute, Dampening: 0.6, Smoothing: 0.6, Boosted: true},
	TF1d: {Interval: "1d", Validity: 30 * time.Minute, Dampening: 0.4, Smoothing: 0.8, Boosted: true},
	TF7d: {Interval: "1w", Validity: 60 * time.Minute, Dampening: 0.3, Smoothing: 0.8, Boosted: true},
}

// SpecFor returns the stabilization parameters for tf, or UnknownTimeframeError.
func SpecFor(tf Timeframe) (TimeframeSpec, error) {
	spec, ok := timeframeSpecs[tf]
	if !ok {
		return TimeframeSpec{}, &models.UnknownTimeframeError{Timeframe: string(tf)}
	}
	return spec, nil
}

// Timeframes lists the supported forecast horizons.
func Timeframes() []Timeframe {
	return []Timeframe{TF1h, TF4h, TF1d, TF7d}
}

// IsValidTimeframe returns true if tf is a supported timeframe.
func IsValidTimeframe(tf Timeframe) bool {
	_, ok := timeframeSpecs[tf]
	return ok
}
