package forecast

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"CoinSage/internal/domain/models"
	"CoinSage/internal/domain/repository"
	"CoinSage/internal/domain/service"
	"CoinSage/internal/services/features"
	"CoinSage/pkg/logger"
)

// SequenceLength is the model input window in bars.
const SequenceLength = 60

// historyLimit returns how many bars to fetch for one prediction pass.
func historyLimit(seqLen int) int {
	if n := 2 * seqLen; n > 200 {
		return n
	}
	return 200
}

// Stabilizer turns raw model outputs into stable forecasts. Raw predictions
// jump between calls, so each (symbol, timeframe) pair gets a cached
// forecast with a validity window, a dampening factor on the predicted
// move and exponential smoothing against the previously published value.
type Stabilizer struct {
	market    repository.MarketData
	predictor service.Predictor
	log       *logger.Logger
	seqLen    int

	mu      sync.Mutex
	entries map[string]*entry

	now func() time.Time
}

// entry serializes refreshes per (symbol, timeframe) key. Concurrent
// callers for the same key block on the inner mutex and all but the first
// are then served from the cache.
type entry struct {
	mu  sync.Mutex
	rec *models.Forecast
	at  time.Time
}

func NewStabilizer(market repository.MarketData, predictor service.Predictor, log *logger.Logger) *Stabilizer {
	return &Stabilizer{
		market:    market,
		predictor: predictor,
		log:       log,
		seqLen:    SequenceLength,
		entries:   make(map[string]*entry),
		now:       time.Now,
	}
}

func (s *Stabilizer) entryFor(key string) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		e = &entry{}
		s.entries[key] = e
	}
	return e
}

// Predict returns the stabilized forecast for the pair, refreshing it only
// when the cached one has aged past the timeframe's validity window.
func (s *Stabilizer) Predict(ctx context.Context, symbol, timeframe string) (*models.Forecast, error) {
	spec, err := repository.SpecFor(repository.Timeframe(timeframe))
	if err != nil {
		return nil, err
	}

	e := s.entryFor(symbol + "_" + timeframe)
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.rec != nil && s.now().Sub(e.at) < spec.Validity {
		cached := *e.rec
		return &cached, nil
	}

	rec, err := s.refresh(ctx, symbol, timeframe, spec, e.rec)
	if err != nil {
		return nil, err
	}
	e.rec, e.at = rec, s.now()
	out := *rec
	return &out, nil
}

func (s *Stabilizer) refresh(ctx context.Context, symbol, timeframe string, spec repository.TimeframeSpec, prev *models.Forecast) (*models.Forecast, error) {
	bars, err := s.market.GetKlines(ctx, symbol, spec.Interval, historyLimit(s.seqLen))
	if err != nil {
		return nil, fmt.Errorf("fetch history for %s: %w", symbol, err)
	}
	if len(bars) < s.seqLen {
		return nil, &models.InsufficientDataError{Symbol: symbol, Need: s.seqLen, Have: len(bars)}
	}

	matrix := features.Matrix(bars)
	if len(matrix) < s.seqLen {
		return nil, &models.InsufficientDataError{Symbol: symbol, Need: s.seqLen, Have: len(matrix)}
	}

	var scaler features.MinMaxScaler
	scaler.Fit(matrix)
	scaled := scaler.Transform(matrix)
	window := scaled[len(scaled)-s.seqLen:]

	predScaled, err := s.predictor.Predict(ctx, symbol, timeframe, window)
	if err != nil {
		return nil, err
	}
	raw := scaler.InverseClose(predScaled)
	current := bars[len(bars)-1].Close

	// Dampen the raw move, then pull toward the previously published
	// forecast so consecutive refreshes do not whipsaw.
	predicted := current + (raw-current)*spec.Dampening
	if prev != nil {
		predicted = predicted*(1-spec.Smoothing) + prev.PredictedPrice*spec.Smoothing
	}

	change := predicted - current
	changePct := 0.0
	if current != 0 {
		changePct = change / current * 100
	}

	conf := confidence(matrix)
	if spec.Boosted {
		conf = math.Min(0.95, conf*1.1)
	}

	s.log.Debug("forecast refreshed",
		logger.String("symbol", symbol),
		logger.String("timeframe", timeframe),
		logger.Float64("predicted", predicted),
		logger.Float64("confidence", conf))

	return &models.Forecast{
		Symbol:          symbol,
		Timeframe:       timeframe,
		CurrentPrice:    current,
		PredictedPrice:  predicted,
		Change:          change,
		ChangePercent:   changePct,
		Confidence:      conf,
		DampeningFactor: spec.Dampening,
		FeaturesUsed:    features.Columns,
		GeneratedAt:     s.now().UTC(),
	}, nil
}

// confidence grades a forecast by history depth, recent volatility and
// trend consistency. Bounded to [0.1, 0.95].
func confidence(matrix [][]float64) float64 {
	conf := 0.7

	switch {
	case len(matrix) >= 200:
		conf += 0.1
	case len(matrix) < 100:
		conf -= 0.2
	}

	closes := make([]float64, 0, len(matrix))
	for _, row := range matrix {
		closes = append(closes, row[features.CloseIndex])
	}

	if len(closes) >= 2 {
		tail := closes
		if len(tail) > 20 {
			tail = tail[len(tail)-20:]
		}
		mean, std := meanStd(tail)
		if mean != 0 {
			switch cov := std / mean; {
			case cov < 0.02:
				conf += 0.1
			case cov > 0.1:
				conf -= 0.2
			}
		}
	}

	recent := closes
	if len(recent) > 10 {
		recent = recent[len(recent)-10:]
	}
	conf += (math.Abs(trendCorrelation(recent)) - 0.5) * 0.2

	return math.Max(0.1, math.Min(0.95, conf))
}

// meanStd returns the mean and sample standard deviation.
func meanStd(vals []float64) (mean, std float64) {
	for _, v := range vals {
		mean += v
	}
	mean /= float64(len(vals))
	if len(vals) < 2 {
		return mean, 0
	}
	variance := 0.0
	for _, v := range vals {
		variance += (v - mean) * (v - mean)
	}
	return mean, math.Sqrt(variance / float64(len(vals)-1))
}

// trendCorrelation is the Pearson correlation of the series against its
// index. Zero when undefined (constant series).
func trendCorrelation(vals []float64) float64 {
	n := float64(len(vals))
	if n < 2 {
		return 0
	}
	var sumX, sumY, sumXY, sumXX, sumYY float64
	for i, v := range vals {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumXX += x * x
		sumYY += v * v
	}
	num := n*sumXY - sumX*sumY
	den := math.Sqrt((n*sumXX - sumX*sumX) * (n*sumYY - sumY*sumY))
	if den == 0 {
		return 0
	}
	return num / den
}
