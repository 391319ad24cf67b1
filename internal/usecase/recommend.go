package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"CoinSage/internal/domain/models"
	"CoinSage/internal/domain/repository"
	"CoinSage/internal/services/forecast"
	"CoinSage/internal/services/sentiment"
	"CoinSage/pkg/config"
	"CoinSage/pkg/logger"
)

// Fusion input fixed points: the forecast leg always looks one day ahead
// and the technical leg reads hourly bars over the trailing week.
const (
	fusionForecastTimeframe = "1d"
	fusionTechnicalInterval = "1h"
	fusionTechnicalPeriod   = "7d"
)

// RecommendUseCase fuses sentiment, technical and forecast signals into a
// trading recommendation per risk profile.
type RecommendUseCase struct {
	market    repository.MarketData
	stab      *forecast.Stabilizer
	sentiment *sentiment.Aggregator
	technical *TechnicalUseCase
	publisher repository.RecommendationPublisher
	profiles  map[string]config.RiskProfile
	log       *logger.Logger
	timeout   time.Duration
}

func NewRecommendUseCase(
	market repository.MarketData,
	stab *forecast.Stabilizer,
	sentimentAgg *sentiment.Aggregator,
	technical *TechnicalUseCase,
	publisher repository.RecommendationPublisher,
	cfg *config.Config,
	log *logger.Logger,
) *RecommendUseCase {
	return &RecommendUseCase{
		market:    market,
		stab:      stab,
		sentiment: sentimentAgg,
		technical: technical,
		publisher: publisher,
		profiles:  cfg.Risk,
		log:       log,
		timeout:   30 * time.Second,
	}
}

// analysisData carries whatever the concurrent gather managed to fetch.
// A nil field means that collaborator was unavailable; fusion degrades
// around it.
type analysisData struct {
	sentiment *models.SentimentRecord
	forecast  *models.Forecast
	technical *models.TechnicalResult
	price     *models.Price
	ticker    *models.Ticker
}

// Generate builds a recommendation for one symbol. Collaborator outages
// degrade the relevant component score to zero; any other failure aborts.
func (uc *RecommendUseCase) Generate(ctx context.Context, symbol, riskLevel string) (*models.Recommendation, error) {
	profile, ok := uc.profiles[riskLevel]
	if !ok {
		return nil, &models.UnknownRiskLevelError{Level: riskLevel}
	}

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	data, err := uc.gather(ctx, symbol)
	if err != nil {
		return nil, err
	}

	scores := models.ComponentScores{
		Sentiment:  sentimentScore(data.sentiment),
		Technical:  technicalScore(data.technical),
		Prediction: predictionScore(data.forecast),
	}
	scores.Overall = fuseScores(scores, profile.Weights)

	action, confidence := decideAction(scores.Overall, profile)
	target, stop := priceTargets(action, data.price, profile)

	rec := &models.Recommendation{
		Symbol:          symbol,
		Action:          action,
		Confidence:      confidence,
		TargetPrice:     target,
		StopLoss:        stop,
		Reasoning:       buildReasoning(data.sentiment, data.technical, data.forecast, scores.Overall, action),
		RiskLevel:       riskLevel,
		TimeHorizon:     timeHorizon(data.sentiment, data.technical),
		Scores:          scores,
		RiskRewardRatio: riskReward(data.price, target, stop),
		Market24h:       data.ticker,
		GeneratedAt:     time.Now().UTC(),
	}

	if uc.publisher != nil {
		if err := uc.publisher.Publish(ctx, rec); err != nil {
			uc.log.Warn("recommendation publish failed",
				logger.String("symbol", symbol),
				logger.Error(err))
		}
	}

	uc.log.Info("recommendation generated",
		logger.String("symbol", symbol),
		logger.String("action", rec.Action),
		logger.String("risk_level", riskLevel),
		logger.Float64("confidence", rec.Confidence))

	return rec, nil
}

// GenerateMany runs Generate per symbol, failing fast on the first error.
func (uc *RecommendUseCase) GenerateMany(ctx context.Context, symbols []string, riskLevel string) ([]*models.Recommendation, error) {
	out := make([]*models.Recommendation, 0, len(symbols))
	for _, symbol := range symbols {
		rec, err := uc.Generate(ctx, symbol, riskLevel)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (uc *RecommendUseCase) gather(ctx context.Context, symbol string) (*analysisData, error) {
	type item struct {
		name string
		val  interface{}
		err  error
	}
	ch := make(chan item, 5)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := uc.sentiment.Analyze(ctx, symbol, nil)
		ch <- item{"sentiment", v, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := uc.stab.Predict(ctx, symbol, fusionForecastTimeframe)
		ch <- item{"forecast", v, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := uc.technical.Analyze(ctx, symbol, fusionTechnicalInterval, fusionTechnicalPeriod)
		ch <- item{"technical", v, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := uc.market.GetCurrentPrice(ctx, symbol)
		ch <- item{"price", v, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := uc.market.GetTicker24h(ctx, symbol)
		ch <- item{"ticker", v, err}
	}()

	go func() { wg.Wait(); close(ch) }()

	data := &analysisData{}
	for it := range ch {
		if it.err != nil {
			var collabErr *models.CollaboratorError
			if errors.As(it.err, &collabErr) {
				uc.log.Warn("collaborator unavailable, degrading",
					logger.String("symbol", symbol),
					logger.String("component", it.name),
					logger.Error(it.err))
				continue
			}
			return nil, it.err
		}
		switch it.name {
		case "sentiment":
			data.sentiment = it.val.(*models.SentimentRecord)
		case "forecast":
			data.forecast = it.val.(*models.Forecast)
		case "technical":
			data.technical = it.val.(*models.TechnicalResult)
		case "price":
			data.price = it.val.(*models.Price)
		case "ticker":
			data.ticker = it.val.(*models.Ticker)
		}
	}
	return data, nil
}
