package technical

import (
	"math"

	"CoinSage/internal/domain/models"
)

// Indicator windows. These match the defaults of the classic TA formulas
// and are not configurable on purpose: the signal thresholds downstream
// are calibrated against them.
const (
	smaShortWindow  = 20
	smaMidWindow    = 50
	smaLongWindow   = 200
	emaFastSpan     = 12
	emaSlowSpan     = 26
	macdSignalSpan  = 9
	rsiWindow       = 14
	stochWindow     = 14
	stochSmooth     = 3
	bollingerWindow = 20
	bollingerK      = 2.0
	volumeSMAWindow = 20
	vwapWindow      = 14
	adxWindow       = 14
	williamsWindow  = 14
	cciWindow       = 20
	atrWindow       = 14
)

func fptr(v float64) *float64 { return &v }

// lastSMA returns the simple moving average over the trailing window, or
// nil when the series is shorter than the window.
func lastSMA(vals []float64, window int) *float64 {
	if len(vals) < window {
		return nil
	}
	sum := 0.0
	for _, v := range vals[len(vals)-window:] {
		sum += v
	}
	return fptr(sum / float64(window))
}

// emaSeries computes an exponential moving average seeded with the first
// value (recursive form, no adjust). The full series is returned because
// MACD needs it end to end.
func emaSeries(vals []float64, span int) []float64 {
	if len(vals) == 0 {
		return nil
	}
	alpha := 2.0 / (float64(span) + 1.0)
	out := make([]float64, len(vals))
	out[0] = vals[0]
	for i := 1; i < len(vals); i++ {
		out[i] = alpha*vals[i] + (1-alpha)*out[i-1]
	}
	return out
}

// macdSeries returns the MACD difference series (line minus signal) and the
// signal line series. The "line minus signal" form is what callers report
// as the MACD value; the raw line itself is never exposed.
func macdSeries(closes []float64) (diff, signal []float64) {
	if len(closes) == 0 {
		return nil, nil
	}
	fast := emaSeries(closes, emaFastSpan)
	slow := emaSeries(closes, emaSlowSpan)
	line := make([]float64, len(closes))
	for i := range line {
		line[i] = fast[i] - slow[i]
	}
	signal = emaSeries(line, macdSignalSpan)
	diff = make([]float64, len(closes))
	for i := range diff {
		diff[i] = line[i] - signal[i]
	}
	return diff, signal
}

// rsi computes the Wilder relative strength index using exponentially
// smoothed average gain and loss seeded from the first delta.
func rsi(closes []float64, window int) *float64 {
	if len(closes) < window+1 {
		return nil
	}
	alpha := 1.0 / float64(window)
	var avgGain, avgLoss float64
	for i := 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if delta > 0 {
			gain = delta
		} else {
			loss = -delta
		}
		if i == 1 {
			avgGain, avgLoss = gain, loss
			continue
		}
		avgGain = alpha*gain + (1-alpha)*avgGain
		avgLoss = alpha*loss + (1-alpha)*avgLoss
	}
	if avgLoss == 0 {
		return fptr(100)
	}
	rs := avgGain / avgLoss
	return fptr(100 - 100/(1+rs))
}

// stochastic returns the last %K and %D (SMA of %K) values.
func stochastic(bars []models.Bar, window, smooth int) (k, d *float64) {
	if len(bars) < window {
		return nil, nil
	}
	kSeries := make([]float64, 0, len(bars)-window+1)
	for i := window - 1; i < len(bars); i++ {
		hh, ll := highLowRange(bars[i-window+1 : i+1])
		if hh == ll {
			kSeries = append(kSeries, 0)
			continue
		}
		kSeries = append(kSeries, 100*(bars[i].Close-ll)/(hh-ll))
	}
	k = fptr(kSeries[len(kSeries)-1])
	d = lastSMA(kSeries, smooth)
	return k, d
}

func highLowRange(bars []models.Bar) (hh, ll float64) {
	hh, ll = bars[0].High, bars[0].Low
	for _, b := range bars[1:] {
		if b.High > hh {
			hh = b.High
		}
		if b.Low < ll {
			ll = b.Low
		}
	}
	return hh, ll
}

// bollinger returns upper, lower, middle band and band width percent.
// The standard deviation is the population one.
func bollinger(closes []float64, window int, k float64) (upper, lower, middle, width *float64) {
	if len(closes) < window {
		return nil, nil, nil, nil
	}
	tail := closes[len(closes)-window:]
	mean := 0.0
	for _, v := range tail {
		mean += v
	}
	mean /= float64(window)
	variance := 0.0
	for _, v := range tail {
		variance += (v - mean) * (v - mean)
	}
	sigma := math.Sqrt(variance / float64(window))
	up := mean + k*sigma
	lo := mean - k*sigma
	var w float64
	if mean != 0 {
		w = (up - lo) / mean * 100
	}
	return fptr(up), fptr(lo), fptr(mean), fptr(w)
}

// vwap is the rolling volume weighted average of the typical price.
func vwap(bars []models.Bar, window int) *float64 {
	if len(bars) < window {
		return nil
	}
	var pv, vol float64
	for _, b := range bars[len(bars)-window:] {
		tp := (b.High + b.Low + b.Close) / 3
		pv += tp * b.Volume
		vol += b.Volume
	}
	if vol == 0 {
		return nil
	}
	return fptr(pv / vol)
}

// adx computes the Wilder average directional index and the positive and
// negative directional indicators.
func adx(bars []models.Bar, window int) (adxVal, diPos, diNeg *float64) {
	if len(bars) < 2*window+1 {
		return nil, nil, nil
	}
	n := len(bars)
	tr := make([]float64, n)
	pdm := make([]float64, n)
	ndm := make([]float64, n)
	for i := 1; i < n; i++ {
		cur, prev := bars[i], bars[i-1]
		tr[i] = math.Max(cur.High-cur.Low,
			math.Max(math.Abs(cur.High-prev.Close), math.Abs(cur.Low-prev.Close)))
		up := cur.High - prev.High
		down := prev.Low - cur.Low
		if up > down && up > 0 {
			pdm[i] = up
		}
		if down > up && down > 0 {
			ndm[i] = down
		}
	}

	var smTR, smPDM, smNDM float64
	for i := 1; i <= window; i++ {
		smTR += tr[i]
		smPDM += pdm[i]
		smNDM += ndm[i]
	}
	dx := func() float64 {
		if smTR == 0 {
			return 0
		}
		dip := 100 * smPDM / smTR
		din := 100 * smNDM / smTR
		if dip+din == 0 {
			return 0
		}
		return 100 * math.Abs(dip-din) / (dip + din)
	}

	dxVals := []float64{dx()}
	for i := window + 1; i < n; i++ {
		smTR = smTR - smTR/float64(window) + tr[i]
		smPDM = smPDM - smPDM/float64(window) + pdm[i]
		smNDM = smNDM - smNDM/float64(window) + ndm[i]
		dxVals = append(dxVals, dx())
	}

	// First ADX is the plain mean of the first window of DX values.
	sum := 0.0
	for _, v := range dxVals[:window] {
		sum += v
	}
	a := sum / float64(window)
	for _, v := range dxVals[window:] {
		a = (a*float64(window-1) + v) / float64(window)
	}

	var dip, din float64
	if smTR != 0 {
		dip = 100 * smPDM / smTR
		din = 100 * smNDM / smTR
	}
	return fptr(a), fptr(dip), fptr(din)
}

// williamsR returns the last Williams %R value in [-100, 0].
func williamsR(bars []models.Bar, window int) *float64 {
	if len(bars) < window {
		return nil
	}
	hh, ll := highLowRange(bars[len(bars)-window:])
	if hh == ll {
		return fptr(0)
	}
	return fptr(-100 * (hh - bars[len(bars)-1].Close) / (hh - ll))
}

// cci is the commodity channel index over the typical price with the
// conventional 0.015 scaling constant.
func cci(bars []models.Bar, window int) *float64 {
	if len(bars) < window {
		return nil
	}
	tp := make([]float64, window)
	mean := 0.0
	for i, b := range bars[len(bars)-window:] {
		tp[i] = (b.High + b.Low + b.Close) / 3
		mean += tp[i]
	}
	mean /= float64(window)
	dev := 0.0
	for _, v := range tp {
		dev += math.Abs(v - mean)
	}
	dev /= float64(window)
	if dev == 0 {
		return fptr(0)
	}
	return fptr((tp[window-1] - mean) / (0.015 * dev))
}

// atr is the Wilder average true range, seeded with the mean of the first
// window of true ranges.
func atr(bars []models.Bar, window int) *float64 {
	if len(bars) < window+1 {
		return nil
	}
	trSum := 0.0
	trueRange := func(i int) float64 {
		cur, prev := bars[i], bars[i-1]
		return math.Max(cur.High-cur.Low,
			math.Max(math.Abs(cur.High-prev.Close), math.Abs(cur.Low-prev.Close)))
	}
	for i := 1; i <= window; i++ {
		trSum += trueRange(i)
	}
	a := trSum / float64(window)
	for i := window + 1; i < len(bars); i++ {
		a = (a*float64(window-1) + trueRange(i)) / float64(window)
	}
	return fptr(a)
}

// obv is the cumulative on-balance volume. A close at or above the prior
// close adds volume, a lower close subtracts it.
func obv(bars []models.Bar) *float64 {
	if len(bars) == 0 {
		return nil
	}
	total := bars[0].Volume
	for i := 1; i < len(bars); i++ {
		if bars[i].Close < bars[i-1].Close {
			total -= bars[i].Volume
		} else {
			total += bars[i].Volume
		}
	}
	return fptr(total)
}

// Compute evaluates the full indicator set over the bar history. Fields
// whose window exceeds the history stay nil.
func Compute(bars []models.Bar) models.IndicatorSet {
	closes := models.Closes(bars)
	volumes := models.Volumes(bars)

	var ind models.IndicatorSet
	ind.SMA20 = lastSMA(closes, smaShortWindow)
	ind.SMA50 = lastSMA(closes, smaMidWindow)
	ind.SMA200 = lastSMA(closes, smaLongWindow)

	if len(closes) >= emaFastSpan {
		fast := emaSeries(closes, emaFastSpan)
		ind.EMA12 = fptr(fast[len(fast)-1])
	}
	if len(closes) >= emaSlowSpan {
		slow := emaSeries(closes, emaSlowSpan)
		ind.EMA26 = fptr(slow[len(slow)-1])
	}

	if len(closes) >= emaSlowSpan+macdSignalSpan {
		diff, signal := macdSeries(closes)
		ind.MACD = fptr(diff[len(diff)-1])
		ind.MACDSignal = fptr(signal[len(signal)-1])
		ind.MACDHistogram = fptr(diff[len(diff)-1] - signal[len(signal)-1])
	}

	ind.RSI = rsi(closes, rsiWindow)
	ind.StochK, ind.StochD = stochastic(bars, stochWindow, stochSmooth)
	ind.BBUpper, ind.BBLower, ind.BBMiddle, ind.BBWidth = bollinger(closes, bollingerWindow, bollingerK)
	ind.VolumeSMA = lastSMA(volumes, volumeSMAWindow)
	ind.VWAP = vwap(bars, vwapWindow)
	ind.ADX, ind.ADXPos, ind.ADXNeg = adx(bars, adxWindow)
	ind.WilliamsR = williamsR(bars, williamsWindow)
	ind.CCI = cci(bars, cciWindow)
	ind.ATR = atr(bars, atrWindow)
	ind.OBV = obv(bars)
	if len(closes) > 0 {
		ind.CurrentPrice = closes[len(closes)-1]
	}
	return ind
}
