package features

import (
	"math"

	"CoinSage/internal/domain/models"
)

// Columns lists the model input features in training order. The close
// price sits at CloseIndex; the scaler's inverse transform depends on it.
var Columns = []string{
	"open", "high", "low", "close", "volume",
	"price_change", "high_low_ratio", "volume_change",
	"sma_20", "sma_50", "ema_12", "ema_26", "macd", "rsi",
	"bb_position", "volume_sma", "vwap", "volatility",
}

const CloseIndex = 3

const (
	smaShortWindow   = 20
	smaMidWindow     = 50
	emaFastSpan      = 12
	emaSlowSpan      = 26
	macdSignalSpan   = 9
	rsiWindow        = 14
	bbWindow         = 20
	vwapWindow       = 14
	volatilityWindow = 20
)

// Matrix derives the feature matrix from a bar history. Warmup rows that
// contain an undefined feature are dropped, so the output is shorter than
// the input by at least the longest indicator window.
func Matrix(bars []models.Bar) [][]float64 {
	n := len(bars)
	if n == 0 {
		return nil
	}
	closes := models.Closes(bars)
	volumes := models.Volumes(bars)

	cols := make([][]float64, len(Columns))
	for i := range cols {
		cols[i] = make([]float64, n)
	}
	for i, b := range bars {
		cols[0][i] = b.Open
		cols[1][i] = b.High
		cols[2][i] = b.Low
		cols[3][i] = b.Close
		cols[4][i] = b.Volume
	}
	cols[5] = pctChange(closes)
	cols[6] = ratioSeries(bars)
	cols[7] = pctChange(volumes)
	cols[8] = smaSeries(closes, smaShortWindow)
	cols[9] = smaSeries(closes, smaMidWindow)
	cols[10] = emaSeriesMasked(closes, emaFastSpan)
	cols[11] = emaSeriesMasked(closes, emaSlowSpan)
	cols[12] = macdDiffSeries(closes)
	cols[13] = rsiSeries(closes, rsiWindow)
	cols[14] = bbPositionSeries(closes, bbWindow)
	cols[15] = smaSeries(volumes, smaShortWindow)
	cols[16] = vwapSeries(bars, vwapWindow)
	cols[17] = rollingStdSeries(closes, volatilityWindow)

	rows := make([][]float64, 0, n)
	for i := 0; i < n; i++ {
		row := make([]float64, len(cols))
		ok := true
		for c := range cols {
			v := cols[c][i]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				ok = false
				break
			}
			row[c] = v
		}
		if ok {
			rows = append(rows, row)
		}
	}
	return rows
}

func pctChange(vals []float64) []float64 {
	out := make([]float64, len(vals))
	if len(vals) > 0 {
		out[0] = math.NaN()
	}
	for i := 1; i < len(vals); i++ {
		if vals[i-1] == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = (vals[i] - vals[i-1]) / vals[i-1]
	}
	return out
}

func ratioSeries(bars []models.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		if b.Low == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = b.High / b.Low
	}
	return out
}

func smaSeries(vals []float64, window int) []float64 {
	out := make([]float64, len(vals))
	sum := 0.0
	for i, v := range vals {
		sum += v
		if i >= window {
			sum -= vals[i-window]
		}
		if i < window-1 {
			out[i] = math.NaN()
			continue
		}
		out[i] = sum / float64(window)
	}
	return out
}

// emaSeriesMasked is the recursive EMA with the warmup prefix masked out,
// matching the convention that an EMA is undefined before a full span.
func emaSeriesMasked(vals []float64, span int) []float64 {
	out := make([]float64, len(vals))
	if len(vals) == 0 {
		return out
	}
	alpha := 2.0 / (float64(span) + 1.0)
	ema := vals[0]
	for i, v := range vals {
		if i > 0 {
			ema = alpha*v + (1-alpha)*ema
		}
		if i < span-1 {
			out[i] = math.NaN()
		} else {
			out[i] = ema
		}
	}
	return out
}

// macdDiffSeries is the MACD line minus its signal line, undefined until
// both the slow EMA and the signal EMA have a full warmup.
func macdDiffSeries(closes []float64) []float64 {
	out := make([]float64, len(closes))
	if len(closes) == 0 {
		return out
	}
	alphaFast := 2.0 / (float64(emaFastSpan) + 1.0)
	alphaSlow := 2.0 / (float64(emaSlowSpan) + 1.0)
	alphaSig := 2.0 / (float64(macdSignalSpan) + 1.0)
	fast, slow := closes[0], closes[0]
	signal := 0.0
	warmup := emaSlowSpan + macdSignalSpan - 2
	for i, c := range closes {
		if i > 0 {
			fast = alphaFast*c + (1-alphaFast)*fast
			slow = alphaSlow*c + (1-alphaSlow)*slow
		}
		line := fast - slow
		if i == 0 {
			signal = line
		} else {
			signal = alphaSig*line + (1-alphaSig)*signal
		}
		if i < warmup {
			out[i] = math.NaN()
		} else {
			out[i] = line - signal
		}
	}
	return out
}

func rsiSeries(closes []float64, window int) []float64 {
	out := make([]float64, len(closes))
	if len(closes) == 0 {
		return out
	}
	out[0] = math.NaN()
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
		} else {
			avgGain = alpha*gain + (1-alpha)*avgGain
			avgLoss = alpha*loss + (1-alpha)*avgLoss
		}
		if i < window {
			out[i] = math.NaN()
			continue
		}
		if avgLoss == 0 {
			out[i] = 100
			continue
		}
		rs := avgGain / avgLoss
		out[i] = 100 - 100/(1+rs)
	}
	return out
}

// bbPositionSeries places the close inside its Bollinger band as a 0..1
// fraction. Population standard deviation, two sigmas.
func bbPositionSeries(closes []float64, window int) []float64 {
	out := make([]float64, len(closes))
	for i := range closes {
		if i < window-1 {
			out[i] = math.NaN()
			continue
		}
		tail := closes[i-window+1 : i+1]
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
		upper := mean + 2*sigma
		lower := mean - 2*sigma
		if upper == lower {
			out[i] = math.NaN()
			continue
		}
		out[i] = (closes[i] - lower) / (upper - lower)
	}
	return out
}

func vwapSeries(bars []models.Bar, window int) []float64 {
	out := make([]float64, len(bars))
	for i := range bars {
		if i < window-1 {
			out[i] = math.NaN()
			continue
		}
		var pv, vol float64
		for _, b := range bars[i-window+1 : i+1] {
			tp := (b.High + b.Low + b.Close) / 3
			pv += tp * b.Volume
			vol += b.Volume
		}
		if vol == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = pv / vol
	}
	return out
}

// rollingStdSeries is the sample standard deviation over a trailing window.
func rollingStdSeries(vals []float64, window int) []float64 {
	out := make([]float64, len(vals))
	for i := range vals {
		if i < window-1 {
			out[i] = math.NaN()
			continue
		}
		tail := vals[i-window+1 : i+1]
		mean := 0.0
		for _, v := range tail {
			mean += v
		}
		mean /= float64(window)
		variance := 0.0
		for _, v := range tail {
			variance += (v - mean) * (v - mean)
		}
		out[i] = math.Sqrt(variance / float64(window-1))
	}
	return out
}
