package usecase

import (
	"context"

	"CoinSage/internal/domain/models"
	"CoinSage/internal/services/sentiment"
	"CoinSage/pkg/config"
	"CoinSage/pkg/logger"
)

// SentimentUseCase runs sentiment aggregation per symbol. A failing symbol
// degrades to a neutral record instead of failing the batch.
type SentimentUseCase struct {
	agg      *sentiment.Aggregator
	defaults []string
	log      *logger.Logger
}

func NewSentimentUseCase(agg *sentiment.Aggregator, cfg *config.Config, log *logger.Logger) *SentimentUseCase {
	return &SentimentUseCase{agg: agg, defaults: cfg.Texts.Sources, log: log}
}

// Analyze aggregates sentiment for one symbol.
func (uc *SentimentUseCase) Analyze(ctx context.Context, symbol string, sources []string) (*models.SentimentRecord, error) {
	if len(sources) == 0 {
		sources = uc.defaults
	}
	return uc.agg.Analyze(ctx, symbol, sources)
}

// AnalyzeMany aggregates sentiment for each symbol. Failures are logged
// and replaced with a neutral record so one dead source cannot blank the
// whole response.
func (uc *SentimentUseCase) AnalyzeMany(ctx context.Context, symbols []string, sources []string) []*models.SentimentRecord {
	out := make([]*models.SentimentRecord, 0, len(symbols))
	for _, symbol := range symbols {
		rec, err := uc.Analyze(ctx, symbol, sources)
		if err != nil {
			uc.log.Error("sentiment analysis failed",
				logger.String("symbol", symbol),
				logger.Error(err))
			rec = &models.SentimentRecord{Symbol: symbol, Label: models.SentimentNeutral}
		}
		out = append(out, rec)
	}
	return out
}
