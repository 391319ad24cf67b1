package remote

import (
	"context"

	"CoinSage/internal/domain/models"
	domsvc "CoinSage/internal/domain/service"
	"CoinSage/pkg/config"
)

// HTTPPredictor calls the external model service for next-close forecasts
// and for (re)training. Failures come back as CollaboratorError so the
// fusion path can degrade instead of failing the whole recommendation.
type HTTPPredictor struct {
	base *httpBase
}

func NewHTTPPredictor(cfg *config.Config) *HTTPPredictor {
	return &HTTPPredictor{base: newHTTPBase(cfg.Model.ServiceURL, cfg.Model.Timeout)}
}

type predictReq struct {
	Symbol    string      `json:"symbol"`
	Timeframe string      `json:"timeframe"`
	Window    [][]float64 `json:"window"`
}

type predictResp struct {
	Prediction float64 `json:"prediction"`
}

func (p *HTTPPredictor) Predict(ctx context.Context, symbol, timeframe string, window [][]float64) (float64, error) {
	var pr predictResp
	err := p.base.postJSON(ctx, "/predict", predictReq{
		Symbol:    symbol,
		Timeframe: timeframe,
		Window:    window,
	}, &pr)
	if err != nil {
		return 0, models.Collaborator("model predict", err)
	}
	return pr.Prediction, nil
}

type fitReq struct {
	Symbol    string       `json:"symbol"`
	Timeframe string       `json:"timeframe"`
	Bars      []models.Bar `json:"bars"`
}

func (p *HTTPPredictor) Fit(ctx context.Context, symbol, timeframe string, bars []models.Bar) error {
	err := p.base.postJSON(ctx, "/train", fitReq{
		Symbol:    symbol,
		Timeframe: timeframe,
		Bars:      bars,
	}, nil)
	if err != nil {
		return models.Collaborator("model fit", err)
	}
	return nil
}

func (p *HTTPPredictor) Status(ctx context.Context) (map[string]any, error) {
	var status map[string]any
	if err := p.base.getJSON(ctx, "/status", &status); err != nil {
		return nil, models.Collaborator("model status", err)
	}
	return status, nil
}

var _ domsvc.Predictor = (*HTTPPredictor)(nil)
