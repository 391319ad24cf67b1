package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"CoinSage/internal/domain/repository"
	"CoinSage/internal/domain/service"
	"CoinSage/internal/services/forecast"
	"CoinSage/internal/services/technical"
	"CoinSage/pkg/logger"
)

// Model type names accepted by the training endpoint.
const (
	ModelPricePrediction = "price_prediction"
	ModelSentiment       = "sentiment"
	ModelTechnical       = "technical_analysis"
	ModelRecommendation  = "recommendation"
)

// TrainingUseCase starts background model training and reports model
// status. Only one run per model type at a time.
type TrainingUseCase struct {
	market    repository.MarketData
	predictor service.Predictor
	log       *logger.Logger

	mu      sync.Mutex
	running map[string]bool
}

func NewTrainingUseCase(market repository.MarketData, predictor service.Predictor, log *logger.Logger) *TrainingUseCase {
	return &TrainingUseCase{
		market:    market,
		predictor: predictor,
		log:       log,
		running:   make(map[string]bool),
	}
}

// Start kicks off training in the background and returns immediately.
// The context of the HTTP request must not bound the training run, so the
// background goroutine gets its own.
func (uc *TrainingUseCase) Start(modelType string, symbols []string, params map[string]interface{}) error {
	switch modelType {
	case ModelPricePrediction, ModelSentiment, ModelTechnical, ModelRecommendation:
	default:
		return fmt.Errorf("unknown model type: %s", modelType)
	}

	uc.mu.Lock()
	if uc.running[modelType] {
		uc.mu.Unlock()
		return fmt.Errorf("%s training already in progress", modelType)
	}
	uc.running[modelType] = true
	uc.mu.Unlock()

	go func() {
		defer func() {
			uc.mu.Lock()
			uc.running[modelType] = false
			uc.mu.Unlock()
		}()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()
		uc.train(ctx, modelType, symbols, params)
	}()
	return nil
}

func (uc *TrainingUseCase) train(ctx context.Context, modelType string, symbols []string, params map[string]interface{}) {
	uc.log.Info("model training started",
		logger.String("model_type", modelType),
		logger.Strings("symbols", symbols))

	if modelType != ModelPricePrediction {
		// The rule-based models have no trainable parameters yet.
		uc.log.Info("model training completed", logger.String("model_type", modelType))
		return
	}

	timeframes := timeframesParam(params)
	for _, symbol := range symbols {
		for _, tf := range timeframes {
			spec, err := repository.SpecFor(repository.Timeframe(tf))
			if err != nil {
				uc.log.Error("skipping timeframe", logger.String("timeframe", tf), logger.Error(err))
				continue
			}
			limit := 2 * forecast.SequenceLength
			if limit < 200 {
				limit = 200
			}
			bars, err := uc.market.GetKlines(ctx, symbol, spec.Interval, limit)
			if err != nil {
				uc.log.Error("training fetch failed",
					logger.String("symbol", symbol),
					logger.String("timeframe", tf),
					logger.Error(err))
				continue
			}
			if err := uc.predictor.Fit(ctx, symbol, tf, bars); err != nil {
				uc.log.Error("training failed",
					logger.String("symbol", symbol),
					logger.String("timeframe", tf),
					logger.Error(err))
				continue
			}
			uc.log.Info("model trained",
				logger.String("symbol", symbol),
				logger.String("timeframe", tf))
		}
	}
	uc.log.Info("model training completed", logger.String("model_type", modelType))
}

func timeframesParam(params map[string]interface{}) []string {
	raw, ok := params["timeframes"]
	if !ok {
		return []string{"1d"}
	}
	list, ok := raw.([]interface{})
	if !ok || len(list) == 0 {
		return []string{"1d"}
	}
	out := make([]string, 0, len(list))
	for _, v := range list {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return []string{"1d"}
	}
	return out
}

// Status aggregates per-model status for the model-status endpoint.
func (uc *TrainingUseCase) Status(ctx context.Context) map[string]interface{} {
	now := time.Now().UTC().Format(time.RFC3339)

	priceStatus, err := uc.predictor.Status(ctx)
	if err != nil {
		priceStatus = map[string]any{"status": "unreachable", "error": err.Error()}
	}
	if priceStatus == nil {
		priceStatus = map[string]any{"status": "unknown"}
	}
	priceStatus["sequence_length"] = forecast.SequenceLength
	priceStatus["supported_timeframes"] = repository.Timeframes()

	uc.mu.Lock()
	training := make(map[string]bool, len(uc.running))
	for k, v := range uc.running {
		training[k] = v
	}
	uc.mu.Unlock()

	return map[string]interface{}{
		"price_prediction_model": priceStatus,
		"technical_analysis_model": map[string]interface{}{
			"model_type":   "Rule-based Technical Analysis",
			"status":       "ready",
			"min_bars":     technical.MinBars,
			"last_updated": now,
		},
		"sentiment_model": map[string]interface{}{
			"model_type":   "Aggregated text polarity",
			"status":       "ready",
			"last_updated": now,
		},
		"recommendation_model": map[string]interface{}{
			"model_type":   "Multi-factor Recommendation Engine",
			"status":       "ready",
			"risk_levels":  []string{"low", "medium", "high"},
			"actions":      []string{"buy", "sell", "hold"},
			"last_updated": now,
		},
		"training_in_progress": training,
	}
}
