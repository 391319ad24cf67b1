package technical

import (
	"CoinSage/internal/domain/models"
	"CoinSage/pkg/logger"
)

// MinBars is the smallest history the analyzer accepts. Below this the
// longer-window indicators degrade into noise.
const MinBars = 50

// Analyzer runs the full rule-based analysis over a bar history.
type Analyzer struct {
	log *logger.Logger
}

func NewAnalyzer(log *logger.Logger) *Analyzer {
	return &Analyzer{log: log}
}

// Analyze computes indicators, categorical signals, support/resistance
// levels and the overall trend for the given history. Bars must be in
// ascending time order.
func (a *Analyzer) Analyze(symbol string, bars []models.Bar) (*models.TechnicalResult, error) {
	if len(bars) < MinBars {
		return nil, &models.InsufficientDataError{Symbol: symbol, Need: MinBars, Have: len(bars)}
	}

	ind := Compute(bars)
	signals := DeriveSignals(ind, bars[len(bars)-1].Volume)
	support, resistance := SupportResistance(bars)
	trend := AssessTrend(bars, ind)

	a.log.Debug("technical analysis complete",
		logger.String("symbol", symbol),
		logger.Int("bars", len(bars)),
		logger.String("trend", trend.Trend),
		logger.Float64("strength", trend.Strength))

	return &models.TechnicalResult{
		Symbol:           symbol,
		Indicators:       ind,
		Signals:          signals,
		SupportLevels:    support,
		ResistanceLevels: resistance,
		Trend:            trend,
	}, nil
}
