package usecase

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"CoinSage/internal/domain/models"
	"CoinSage/internal/services/forecast"
	"CoinSage/internal/services/sentiment"
	"CoinSage/internal/services/technical"
	"CoinSage/pkg/config"
	"CoinSage/pkg/logger"
)

type stubMarket struct {
	bars      []models.Bar
	klinesErr error
	price     *models.Price
	priceErr  error
	ticker    *models.Ticker
	tickerErr error
}

func (m *stubMarket) GetKlines(context.Context, string, string, int) ([]models.Bar, error) {
	return m.bars, m.klinesErr
}

func (m *stubMarket) GetCurrentPrice(context.Context, string) (*models.Price, error) {
	return m.price, m.priceErr
}

func (m *stubMarket) GetTicker24h(context.Context, string) (*models.Ticker, error) {
	return m.ticker, m.tickerErr
}

func (m *stubMarket) Health(context.Context) error { return nil }

type stubPredictor struct {
	out float64
	err error
}

func (p *stubPredictor) Predict(context.Context, string, string, [][]float64) (float64, error) {
	return p.out, p.err
}

func (p *stubPredictor) Fit(context.Context, string, string, []models.Bar) error { return nil }

func (p *stubPredictor) Status(context.Context) (map[string]any, error) {
	return map[string]any{}, nil
}

type stubTexts struct {
	data map[string][]string
	err  error
}

func (s *stubTexts) Fetch(context.Context, string, []string) (map[string][]string, error) {
	return s.data, s.err
}

type stubScorer struct {
	score float64
}

func (s *stubScorer) Score(context.Context, string) (float64, error) { return s.score, nil }

type recordingPublisher struct {
	mu   sync.Mutex
	recs []*models.Recommendation
	err  error
}

func (p *recordingPublisher) Publish(_ context.Context, rec *models.Recommendation) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.recs = append(p.recs, rec)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Risk = config.DefaultRiskProfiles()
	cfg.Texts.Sources = []string{"news", "social"}
	return cfg
}

func trendingBars(n int) []models.Bar {
	out := make([]models.Bar, n)
	for i := range out {
		c := 100 + 10*math.Sin(float64(i)/9)
		out[i] = models.Bar{
			OpenTime: int64(i) * 3_600_000,
			Open:     c * 0.999,
			High:     c * 1.01,
			Low:      c * 0.99,
			Close:    c,
			Volume:   1000 + 10*float64(i%7),
		}
	}
	return out
}

func newRecommendUC(t *testing.T, market *stubMarket, pred *stubPredictor, texts *stubTexts, scorer *stubScorer, pub *recordingPublisher) *RecommendUseCase {
	t.Helper()
	log := testLogger(t)
	cfg := testConfig()
	stab := forecast.NewStabilizer(market, pred, log)
	agg := sentiment.NewAggregator(texts, scorer, log)
	tech := NewTechnicalUseCase(market, technical.NewAnalyzer(log), log)

	// A typed nil would defeat the publisher == nil guard, so wire the
	// interface only when a recorder is supplied.
	uc := NewRecommendUseCase(market, stab, agg, tech, nil, cfg, log)
	if pub != nil {
		uc.publisher = pub
	}
	return uc
}

func TestGenerateUnknownRiskLevel(t *testing.T) {
	uc := newRecommendUC(t,
		&stubMarket{bars: trendingBars(250), price: &models.Price{Symbol: "BTCUSDT", Price: 100}},
		&stubPredictor{out: 0.5},
		&stubTexts{data: map[string][]string{}},
		&stubScorer{},
		nil)

	_, err := uc.Generate(context.Background(), "BTCUSDT", "reckless")
	var riskErr *models.UnknownRiskLevelError
	if !errors.As(err, &riskErr) {
		t.Fatalf("expected UnknownRiskLevelError, got %v", err)
	}
}

func TestGenerateDegradesOnCollaboratorFailure(t *testing.T) {
	market := &stubMarket{
		klinesErr: models.Collaborator("fetch klines", errors.New("upstream down")),
		price:     &models.Price{Symbol: "BTCUSDT", Price: 100},
		ticker:    &models.Ticker{Symbol: "BTCUSDT"},
	}
	texts := &stubTexts{data: map[string][]string{"news": {"great outlook"}}}

	uc := newRecommendUC(t, market, &stubPredictor{out: 0.5}, texts, &stubScorer{score: 0.8}, nil)

	rec, err := uc.Generate(context.Background(), "BTCUSDT", "medium")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	// Only sentiment survived: 0.8 score at full confidence.
	if !almostEqual(rec.Scores.Sentiment, 0.8, 1e-9) {
		t.Fatalf("unexpected sentiment score %v", rec.Scores.Sentiment)
	}
	if rec.Scores.Technical != 0 || rec.Scores.Prediction != 0 {
		t.Fatalf("degraded components must score zero, got %+v", rec.Scores)
	}
	if !almostEqual(rec.Scores.Overall, 0.8*0.3, 1e-9) {
		t.Fatalf("unexpected overall score %v", rec.Scores.Overall)
	}
	// 0.24 overall means hold, and 0.34 confidence is under the medium
	// profile minimum, so the flat fallback applies.
	if rec.Action != models.ActionHold || rec.Confidence != 0.5 {
		t.Fatalf("expected hold/0.5, got %s/%v", rec.Action, rec.Confidence)
	}
	if rec.TargetPrice != nil || rec.StopLoss != nil || rec.RiskRewardRatio != nil {
		t.Fatalf("hold must carry no price targets")
	}
	if rec.Market24h == nil || rec.Market24h.Symbol != "BTCUSDT" {
		t.Fatalf("24h snapshot should survive a klines outage, got %+v", rec.Market24h)
	}
}

func TestGeneratePropagatesHardErrors(t *testing.T) {
	market := &stubMarket{
		bars:     trendingBars(250),
		priceErr: errors.New("database corrupt"),
		ticker:   &models.Ticker{},
	}
	texts := &stubTexts{data: map[string][]string{}}

	uc := newRecommendUC(t, market, &stubPredictor{out: 0.5}, texts, &stubScorer{}, nil)

	_, err := uc.Generate(context.Background(), "BTCUSDT", "medium")
	if err == nil {
		t.Fatalf("expected hard error to propagate")
	}
	var collabErr *models.CollaboratorError
	if errors.As(err, &collabErr) {
		t.Fatalf("error should not be a collaborator error: %v", err)
	}
}

func TestGenerateFullPipeline(t *testing.T) {
	market := &stubMarket{
		bars:   trendingBars(250),
		price:  &models.Price{Symbol: "ETHUSDT", Price: 100},
		ticker: &models.Ticker{Symbol: "ETHUSDT"},
	}
	texts := &stubTexts{data: map[string][]string{"news": {"solid"}, "social": {"nice"}}}
	pub := &recordingPublisher{}

	uc := newRecommendUC(t, market, &stubPredictor{out: 0.9}, texts, &stubScorer{score: 0.6}, pub)

	rec, err := uc.Generate(context.Background(), "ETHUSDT", "high")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if rec.Symbol != "ETHUSDT" || rec.RiskLevel != "high" {
		t.Fatalf("unexpected identity fields %+v", rec)
	}
	if rec.GeneratedAt.IsZero() {
		t.Fatalf("GeneratedAt must be set")
	}
	if rec.Reasoning == "" {
		t.Fatalf("reasoning must not be empty")
	}
	if rec.Market24h == nil || rec.Market24h.Symbol != "ETHUSDT" {
		t.Fatalf("expected the 24h snapshot in the payload, got %+v", rec.Market24h)
	}

	high := config.DefaultRiskProfiles()["high"]
	want := rec.Scores.Sentiment*high.Weights.Sentiment +
		rec.Scores.Technical*high.Weights.Technical +
		rec.Scores.Prediction*high.Weights.Prediction
	if !almostEqual(rec.Scores.Overall, want, 1e-9) {
		t.Fatalf("overall score not the weighted sum: %v vs %v", rec.Scores.Overall, want)
	}

	pub.mu.Lock()
	published := len(pub.recs)
	pub.mu.Unlock()
	if published != 1 {
		t.Fatalf("expected one published recommendation, got %d", published)
	}
}

func TestGenerateManyFailsFast(t *testing.T) {
	market := &stubMarket{
		bars:     trendingBars(250),
		priceErr: errors.New("boom"),
		ticker:   &models.Ticker{},
	}
	uc := newRecommendUC(t, market, &stubPredictor{out: 0.5}, &stubTexts{data: map[string][]string{}}, &stubScorer{}, nil)

	_, err := uc.GenerateMany(context.Background(), []string{"BTCUSDT", "ETHUSDT"}, "medium")
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestBarLimitDerivation(t *testing.T) {
	cases := []struct {
		interval, period string
		want             int
	}{
		{"1h", "7d", 168},
		{"1h", "30d", 720},
		{"4h", "30d", 180},
		{"1d", "30d", 30},
		{"5m", "30d", 1000}, // capped
		{"1w", "30d", 200},  // unknown interval falls back
		{"1h", "4w", 672},
		{"1h", "1m", 720},
		{"1h", "garbage", 720}, // bad period defaults to 30 days
	}
	for _, tc := range cases {
		if got := barLimit(tc.interval, tc.period); got != tc.want {
			t.Fatalf("%s/%s: expected %d, got %d", tc.interval, tc.period, tc.want, got)
		}
	}
}
