package usecase

import (
	"context"
	"fmt"

	"CoinSage/internal/domain/models"
	"CoinSage/internal/services/forecast"
)

// PredictionUseCase exposes stabilized forecasts over symbol batches.
type PredictionUseCase struct {
	stab *forecast.Stabilizer
}

func NewPredictionUseCase(stab *forecast.Stabilizer) *PredictionUseCase {
	return &PredictionUseCase{stab: stab}
}

// Predict returns the stabilized forecast for one symbol.
func (uc *PredictionUseCase) Predict(ctx context.Context, symbol, timeframe string) (*models.Forecast, error) {
	return uc.stab.Predict(ctx, symbol, timeframe)
}

// PredictMany forecasts every symbol in order, failing fast: a prediction
// batch with holes is worse than an explicit error.
func (uc *PredictionUseCase) PredictMany(ctx context.Context, symbols []string, timeframe string) ([]*models.Forecast, error) {
	out := make([]*models.Forecast, 0, len(symbols))
	for _, symbol := range symbols {
		f, err := uc.stab.Predict(ctx, symbol, timeframe)
		if err != nil {
			return nil, fmt.Errorf("predict %s: %w", symbol, err)
		}
		out = append(out, f)
	}
	return out, nil
}
