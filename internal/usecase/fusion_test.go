package usecase

import (
	"math"
	"strings"
	"testing"

	"CoinSage/internal/domain/models"
	"CoinSage/pkg/config"
)

func mediumProfile() config.RiskProfile {
	return config.DefaultRiskProfiles()["medium"]
}

func TestSentimentScore(t *testing.T) {
	if got := sentimentScore(nil); got != 0 {
		t.Fatalf("nil sentiment should score 0, got %v", got)
	}
	rec := &models.SentimentRecord{Score: 0.5, Confidence: 0.8}
	if got := sentimentScore(rec); !almostEqual(got, 0.4, 1e-9) {
		t.Fatalf("expected 0.4, got %v", got)
	}
}

func TestTechnicalScoreBullishStack(t *testing.T) {
	res := &models.TechnicalResult{
		Signals: models.SignalSet{
			RSI:           models.SignalOversold,
			MACD:          models.SignalBullish,
			MATrend:       models.SignalStrongBullish,
			Bollinger:     models.SignalOversold,
			TrendStrength: models.SignalStrong,
			Volume:        models.SignalVolumeNormal,
		},
		Trend: models.TrendAssessment{Trend: models.TrendBullish, Strength: 1},
	}
	// (0.3 + 0.2 + 0.4 + 0.2 + 0.3) / 5
	if got := technicalScore(res); !almostEqual(got, 0.28, 1e-9) {
		t.Fatalf("expected 0.28, got %v", got)
	}
}

func TestTechnicalScoreVolumeConfirmation(t *testing.T) {
	base := models.SignalSet{
		RSI:           models.SignalNeutral,
		MACD:          models.SignalBullish,
		MATrend:       models.SignalWeakBullish,
		Bollinger:     models.SignalNeutral,
		TrendStrength: models.SignalWeak,
	}
	mk := func(vol models.Signal) *models.TechnicalResult {
		sig := base
		sig.Volume = vol
		return &models.TechnicalResult{
			Signals: sig,
			Trend:   models.TrendAssessment{Trend: models.TrendSideways},
		}
	}
	// positive stack: high volume amplifies, low volume weakens
	if got := technicalScore(mk(models.SignalVolumeHigh)); !almostEqual(got, 0.5/5, 1e-9) {
		t.Fatalf("high volume: expected 0.1, got %v", got)
	}
	if got := technicalScore(mk(models.SignalVolumeLow)); !almostEqual(got, 0.3/5, 1e-9) {
		t.Fatalf("low volume: expected 0.06, got %v", got)
	}

	// mirrored for a bearish stack
	bear := models.SignalSet{
		RSI:           models.SignalNeutral,
		MACD:          models.SignalBearish,
		MATrend:       models.SignalWeakBearish,
		Bollinger:     models.SignalNeutral,
		TrendStrength: models.SignalWeak,
		Volume:        models.SignalVolumeHigh,
	}
	res := &models.TechnicalResult{Signals: bear, Trend: models.TrendAssessment{Trend: models.TrendSideways}}
	if got := technicalScore(res); !almostEqual(got, -0.5/5, 1e-9) {
		t.Fatalf("bearish high volume: expected -0.1, got %v", got)
	}
}

func TestPredictionScoreTanh(t *testing.T) {
	f := &models.Forecast{ChangePercent: 10, Confidence: 1}
	if got := predictionScore(f); !almostEqual(got, math.Tanh(1), 1e-9) {
		t.Fatalf("expected tanh(1), got %v", got)
	}
	f = &models.Forecast{ChangePercent: 5, Confidence: 0.8}
	if got := predictionScore(f); !almostEqual(got, math.Tanh(0.5)*0.8, 1e-9) {
		t.Fatalf("expected tanh(0.5)*0.8, got %v", got)
	}
	if got := predictionScore(nil); got != 0 {
		t.Fatalf("nil forecast should score 0, got %v", got)
	}
}

func TestDecideActionBoundaries(t *testing.T) {
	profile := config.RiskProfile{MinConfidence: 0.1}

	action, _ := decideAction(0.3, profile)
	if action != models.ActionHold {
		t.Fatalf("score exactly 0.3 must hold, got %s", action)
	}
	action, conf := decideAction(0.31, profile)
	if action != models.ActionBuy || !almostEqual(conf, 0.41, 1e-9) {
		t.Fatalf("expected buy/0.41, got %s/%v", action, conf)
	}
	action, _ = decideAction(-0.31, profile)
	if action != models.ActionSell {
		t.Fatalf("expected sell, got %s", action)
	}
	_, conf = decideAction(0.9, profile)
	if conf != 0.95 {
		t.Fatalf("confidence must cap at 0.95, got %v", conf)
	}
}

func TestDecideActionMinConfidenceCollapse(t *testing.T) {
	// low risk demands 0.8 confidence; a buy score of 0.5 only yields 0.6
	low := config.DefaultRiskProfiles()["low"]
	action, conf := decideAction(0.5, low)
	if action != models.ActionHold || conf != 0.5 {
		t.Fatalf("expected forced hold/0.5, got %s/%v", action, conf)
	}
}

func TestPriceTargets(t *testing.T) {
	profile := mediumProfile()
	price := &models.Price{Price: 100}

	target, stop := priceTargets(models.ActionBuy, price, profile)
	if target == nil || stop == nil {
		t.Fatalf("expected targets for buy")
	}
	if !almostEqual(*target, 115, 1e-9) || !almostEqual(*stop, 92, 1e-9) {
		t.Fatalf("unexpected buy targets %v/%v", *target, *stop)
	}

	target, stop = priceTargets(models.ActionSell, price, profile)
	if !almostEqual(*target, 85, 1e-9) || !almostEqual(*stop, 108, 1e-9) {
		t.Fatalf("unexpected sell targets %v/%v", *target, *stop)
	}

	target, stop = priceTargets(models.ActionHold, price, profile)
	if target != nil || stop != nil {
		t.Fatalf("hold must not produce targets")
	}
	target, stop = priceTargets(models.ActionBuy, nil, profile)
	if target != nil || stop != nil {
		t.Fatalf("missing price must not produce targets")
	}
}

func TestRiskReward(t *testing.T) {
	price := &models.Price{Price: 100}
	target, stop := 115.0, 92.0
	rr := riskReward(price, &target, &stop)
	if rr == nil || !almostEqual(*rr, 15.0/8.0, 1e-9) {
		t.Fatalf("unexpected risk reward %v", rr)
	}
	same := 100.0
	if rr := riskReward(price, &target, &same); rr != nil {
		t.Fatalf("zero risk must yield nil ratio")
	}
	if rr := riskReward(nil, &target, &stop); rr != nil {
		t.Fatalf("missing price must yield nil ratio")
	}
}

func TestBuildReasoningOrder(t *testing.T) {
	sent := &models.SentimentRecord{Score: 0.42, Label: models.SentimentPositive, Confidence: 0.9}
	tech := &models.TechnicalResult{
		Signals: models.SignalSet{RSI: models.SignalOversold, MACD: models.SignalBullish},
		Trend:   models.TrendAssessment{Trend: models.TrendBullish},
	}
	f := &models.Forecast{ChangePercent: 3.14}

	got := buildReasoning(sent, tech, f, 0.45, models.ActionBuy)
	want := "Market sentiment is positive (0.42). " +
		"Technical trend is bullish. " +
		"RSI indicates oversold conditions. " +
		"MACD shows bullish momentum. " +
		"Price prediction suggests upward movement (3.1%). " +
		"Overall analysis suggests buying opportunity (score: 0.45)."
	if got != want {
		t.Fatalf("reasoning mismatch:\n got: %s\nwant: %s", got, want)
	}
}

func TestBuildReasoningDegraded(t *testing.T) {
	got := buildReasoning(nil, nil, nil, 0.0, models.ActionHold)
	if got != "Analysis suggests holding position (score: 0.00)." {
		t.Fatalf("unexpected reasoning: %s", got)
	}
	// small forecast moves stay out of the reasoning
	f := &models.Forecast{ChangePercent: 1.5}
	got = buildReasoning(nil, nil, f, 0.0, models.ActionHold)
	if strings.Contains(got, "Price prediction") {
		t.Fatalf("sub-2%% move must not be mentioned: %s", got)
	}
}

func TestTimeHorizon(t *testing.T) {
	if got := timeHorizon(nil, nil); got != models.HorizonShortTerm {
		t.Fatalf("default horizon must be short-term, got %s", got)
	}

	tech := &models.TechnicalResult{
		Signals: models.SignalSet{TrendStrength: models.SignalStrong},
		Trend:   models.TrendAssessment{Trend: models.TrendBullish},
	}
	if got := timeHorizon(nil, tech); got != models.HorizonMediumTerm {
		t.Fatalf("strong directional trend must extend horizon, got %s", got)
	}

	sideways := &models.TechnicalResult{
		Signals: models.SignalSet{TrendStrength: models.SignalStrong},
		Trend:   models.TrendAssessment{Trend: models.TrendSideways},
	}
	if got := timeHorizon(nil, sideways); got != models.HorizonShortTerm {
		t.Fatalf("sideways trend must stay short-term, got %s", got)
	}

	twoStrong := &models.TechnicalResult{
		Signals: models.SignalSet{
			MATrend:       models.SignalStrongBearish,
			TrendStrength: models.SignalVeryStrong,
		},
		Trend: models.TrendAssessment{Trend: models.TrendSideways},
	}
	if got := timeHorizon(nil, twoStrong); got != models.HorizonMediumTerm {
		t.Fatalf("two strong signals must extend horizon, got %s", got)
	}

	confident := &models.SentimentRecord{Confidence: 0.81}
	if got := timeHorizon(confident, nil); got != models.HorizonMediumTerm {
		t.Fatalf("confident sentiment must extend horizon, got %s", got)
	}
}

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}
