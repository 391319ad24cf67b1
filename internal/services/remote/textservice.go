package remote

import (
	"context"

	"CoinSage/internal/domain/models"
	domsvc "CoinSage/internal/domain/service"
	"CoinSage/pkg/config"
)

// HTTPTextService fronts the external text service, which crawls news and
// social feeds and scores individual texts.
type HTTPTextService struct {
	base *httpBase
}

func NewHTTPTextService(cfg *config.Config) *HTTPTextService {
	return &HTTPTextService{base: newHTTPBase(cfg.Texts.ServiceURL, cfg.Texts.Timeout)}
}

type fetchReq struct {
	Symbol  string   `json:"symbol"`
	Sources []string `json:"sources"`
}

type fetchResp struct {
	Texts map[string][]string `json:"texts"`
}

func (t *HTTPTextService) Fetch(ctx context.Context, symbol string, sources []string) (map[string][]string, error) {
	var fr fetchResp
	err := t.base.postJSON(ctx, "/texts", fetchReq{Symbol: symbol, Sources: sources}, &fr)
	if err != nil {
		return nil, models.Collaborator("fetch texts", err)
	}
	return fr.Texts, nil
}

type scoreReq struct {
	Text string `json:"text"`
}

type scoreResp struct {
	Compound float64 `json:"compound"`
}

func (t *HTTPTextService) Score(ctx context.Context, text string) (float64, error) {
	var sr scoreResp
	if err := t.base.postJSON(ctx, "/score", scoreReq{Text: text}, &sr); err != nil {
		return 0, models.Collaborator("score text", err)
	}
	return sr.Compound, nil
}

var (
	_ domsvc.TextProvider = (*HTTPTextService)(nil)
	_ domsvc.TextScorer   = (*HTTPTextService)(nil)
)
