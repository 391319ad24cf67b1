package sentiment

import (
	"context"
	"math"

	"CoinSage/internal/domain/models"
	"CoinSage/internal/domain/service"
	"CoinSage/pkg/logger"
)

// Label thresholds on the mean compound score.
const (
	positiveThreshold = 0.05
	negativeThreshold = -0.05
)

// DefaultSources are queried when the caller does not name any.
var DefaultSources = []string{"news", "social"}

// Aggregator collects recent texts about a symbol and folds per-text
// polarity scores into a single sentiment record.
type Aggregator struct {
	texts  service.TextProvider
	scorer service.TextScorer
	log    *logger.Logger
}

func NewAggregator(texts service.TextProvider, scorer service.TextScorer, log *logger.Logger) *Aggregator {
	return &Aggregator{texts: texts, scorer: scorer, log: log}
}

// Analyze fetches texts from the requested sources, scores each one and
// aggregates. No texts at all yields a neutral record with confidence
// zero, not an error.
func (a *Aggregator) Analyze(ctx context.Context, symbol string, sources []string) (*models.SentimentRecord, error) {
	if len(sources) == 0 {
		sources = DefaultSources
	}

	bySource, err := a.texts.Fetch(ctx, symbol, sources)
	if err != nil {
		return nil, err
	}

	breakdown := make(map[string]int, len(sources))
	for _, src := range sources {
		breakdown[src] = len(bySource[src])
	}

	var scores []float64
	for _, src := range sources {
		for _, text := range bySource[src] {
			score, err := a.scorer.Score(ctx, text)
			if err != nil {
				return nil, err
			}
			scores = append(scores, score)
		}
	}

	rec := aggregate(scores)
	rec.Symbol = symbol
	rec.SourceBreakdown = breakdown

	a.log.Debug("sentiment aggregated",
		logger.String("symbol", symbol),
		logger.Int("texts", rec.SourcesAnalyzed),
		logger.String("label", rec.Label),
		logger.Float64("score", rec.Score))

	return rec, nil
}

// aggregate folds compound scores into a record. Confidence comes from
// score consistency: the higher the spread, the lower the confidence.
func aggregate(scores []float64) *models.SentimentRecord {
	if len(scores) == 0 {
		return &models.SentimentRecord{Label: models.SentimentNeutral}
	}

	mean := 0.0
	for _, s := range scores {
		mean += s
	}
	mean /= float64(len(scores))

	variance := 0.0
	for _, s := range scores {
		variance += (s - mean) * (s - mean)
	}
	std := math.Sqrt(variance / float64(len(scores)))

	rec := &models.SentimentRecord{
		Score:           mean,
		Confidence:      math.Max(0, 1-std/2),
		SourcesAnalyzed: len(scores),
	}

	switch {
	case mean >= positiveThreshold:
		rec.Label = models.SentimentPositive
	case mean <= negativeThreshold:
		rec.Label = models.SentimentNegative
	default:
		rec.Label = models.SentimentNeutral
	}

	for _, s := range scores {
		switch {
		case s >= positiveThreshold:
			rec.PositiveCount++
		case s <= negativeThreshold:
			rec.NegativeCount++
		default:
			rec.NeutralCount++
		}
	}
	return rec
}
