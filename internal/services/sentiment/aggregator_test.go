package sentiment

import (
	"context"
	"errors"
	"math"
	"testing"

	"CoinSage/internal/domain/models"
	"CoinSage/pkg/logger"
)

type stubTexts struct {
	data map[string][]string
	err  error
}

func (s *stubTexts) Fetch(_ context.Context, _ string, _ []string) (map[string][]string, error) {
	return s.data, s.err
}

type stubScorer struct {
	scores map[string]float64
	err    error
}

func (s *stubScorer) Score(_ context.Context, text string) (float64, error) {
	if s.err != nil {
		return 0, s.err
	}
	return s.scores[text], nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func TestAnalyzeNoTexts(t *testing.T) {
	a := NewAggregator(&stubTexts{data: map[string][]string{}}, &stubScorer{}, testLogger(t))
	rec, err := a.Analyze(context.Background(), "BTC", nil)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if rec.Label != models.SentimentNeutral || rec.Score != 0 || rec.Confidence != 0 {
		t.Fatalf("expected empty neutral record, got %+v", rec)
	}
	if rec.SourcesAnalyzed != 0 || rec.PositiveCount != 0 || rec.NegativeCount != 0 || rec.NeutralCount != 0 {
		t.Fatalf("expected zero counts, got %+v", rec)
	}
	// default sources still show up in the breakdown
	if rec.SourceBreakdown["news"] != 0 || rec.SourceBreakdown["social"] != 0 {
		t.Fatalf("unexpected breakdown %v", rec.SourceBreakdown)
	}
}

func TestAnalyzeAggregation(t *testing.T) {
	texts := &stubTexts{data: map[string][]string{
		"news":   {"a", "b"},
		"social": {"c", "d"},
	}}
	scorer := &stubScorer{scores: map[string]float64{
		"a": 0.8, "b": 0.4, "c": -0.2, "d": 0.0,
	}}
	a := NewAggregator(texts, scorer, testLogger(t))

	rec, err := a.Analyze(context.Background(), "BTC", []string{"news", "social"})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if !almostEqual(rec.Score, 0.25, 1e-9) {
		t.Fatalf("expected mean 0.25, got %v", rec.Score)
	}
	// population std of {0.8, 0.4, -0.2, 0.0} around 0.25
	std := math.Sqrt((0.55*0.55 + 0.15*0.15 + 0.45*0.45 + 0.25*0.25) / 4)
	if !almostEqual(rec.Confidence, 1-std/2, 1e-9) {
		t.Fatalf("unexpected confidence %v", rec.Confidence)
	}
	if rec.Label != models.SentimentPositive {
		t.Fatalf("expected positive label, got %s", rec.Label)
	}
	if rec.PositiveCount != 2 || rec.NegativeCount != 1 || rec.NeutralCount != 1 {
		t.Fatalf("unexpected counts %+v", rec)
	}
	if rec.SourcesAnalyzed != 4 {
		t.Fatalf("expected 4 analyzed, got %d", rec.SourcesAnalyzed)
	}
	if rec.SourceBreakdown["news"] != 2 || rec.SourceBreakdown["social"] != 2 {
		t.Fatalf("unexpected breakdown %v", rec.SourceBreakdown)
	}
}

func TestAnalyzeLabelBoundaries(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{0.05, models.SentimentPositive},
		{0.049, models.SentimentNeutral},
		{-0.05, models.SentimentNegative},
		{-0.049, models.SentimentNeutral},
	}
	for _, tc := range cases {
		texts := &stubTexts{data: map[string][]string{"news": {"x"}}}
		scorer := &stubScorer{scores: map[string]float64{"x": tc.score}}
		a := NewAggregator(texts, scorer, testLogger(t))
		rec, err := a.Analyze(context.Background(), "BTC", []string{"news"})
		if err != nil {
			t.Fatalf("analyze: %v", err)
		}
		if rec.Label != tc.want {
			t.Fatalf("score %v: expected %s, got %s", tc.score, tc.want, rec.Label)
		}
	}
}

func TestAnalyzeSingleTextFullConfidence(t *testing.T) {
	texts := &stubTexts{data: map[string][]string{"news": {"x"}}}
	scorer := &stubScorer{scores: map[string]float64{"x": 0.9}}
	a := NewAggregator(texts, scorer, testLogger(t))
	rec, err := a.Analyze(context.Background(), "BTC", []string{"news"})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if rec.Confidence != 1 {
		t.Fatalf("single text should have confidence 1, got %v", rec.Confidence)
	}
}

func TestAnalyzeProviderError(t *testing.T) {
	provErr := models.Collaborator("fetch texts", errors.New("timeout"))
	a := NewAggregator(&stubTexts{err: provErr}, &stubScorer{}, testLogger(t))
	_, err := a.Analyze(context.Background(), "BTC", nil)
	var collabErr *models.CollaboratorError
	if !errors.As(err, &collabErr) {
		t.Fatalf("expected CollaboratorError, got %v", err)
	}
}
