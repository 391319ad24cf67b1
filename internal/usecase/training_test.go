package usecase

import (
	"context"
	"testing"

	"CoinSage/internal/domain/models"
	"CoinSage/internal/services/forecast"
)

// nilStatusPredictor mimics a model service that answers null: nil map,
// nil error.
type nilStatusPredictor struct{ stubPredictor }

func (p *nilStatusPredictor) Status(context.Context) (map[string]any, error) {
	return nil, nil
}

func TestStatusToleratesNilPredictorStatus(t *testing.T) {
	uc := NewTrainingUseCase(&stubMarket{}, &nilStatusPredictor{}, testLogger(t))

	status := uc.Status(context.Background())

	price, ok := status["price_prediction_model"].(map[string]any)
	if !ok {
		t.Fatalf("price_prediction_model missing or wrong type: %v", status["price_prediction_model"])
	}
	if price["status"] != "unknown" {
		t.Errorf("status = %v, want unknown", price["status"])
	}
	if price["sequence_length"] != forecast.SequenceLength {
		t.Errorf("sequence_length = %v, want %d", price["sequence_length"], forecast.SequenceLength)
	}
}

// downPredictor mimics an unreachable model service.
type downPredictor struct{ stubPredictor }

func (p *downPredictor) Status(context.Context) (map[string]any, error) {
	return nil, models.Collaborator("fetch status", context.DeadlineExceeded)
}

func TestStatusReportsUnreachablePredictor(t *testing.T) {
	uc := NewTrainingUseCase(&stubMarket{}, &downPredictor{}, testLogger(t))

	status := uc.Status(context.Background())

	price, ok := status["price_prediction_model"].(map[string]any)
	if !ok {
		t.Fatalf("price_prediction_model missing or wrong type: %v", status["price_prediction_model"])
	}
	if price["status"] != "unreachable" {
		t.Errorf("status = %v, want unreachable", price["status"])
	}
	if price["sequence_length"] != forecast.SequenceLength {
		t.Errorf("sequence_length = %v, want %d", price["sequence_length"], forecast.SequenceLength)
	}
}
