package technical

import (
	"errors"
	"testing"

	"CoinSage/internal/domain/models"
	"CoinSage/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func TestAnalyzeInsufficientData(t *testing.T) {
	a := NewAnalyzer(testLogger(t))
	closes := make([]float64, MinBars-1)
	for i := range closes {
		closes[i] = 100
	}
	_, err := a.Analyze("BTCUSDT", barsFromCloses(closes))
	var insErr *models.InsufficientDataError
	if !errors.As(err, &insErr) {
		t.Fatalf("expected InsufficientDataError, got %v", err)
	}
	if insErr.Need != MinBars || insErr.Have != MinBars-1 {
		t.Fatalf("unexpected bounds %d/%d", insErr.Need, insErr.Have)
	}
}

func TestDeriveSignalsRSIBoundaries(t *testing.T) {
	cases := []struct {
		rsi  float64
		want models.Signal
	}{
		{69.9, models.SignalNeutral},
		{70.0, models.SignalNeutral},
		{70.1, models.SignalOverbought},
		{30.1, models.SignalNeutral},
		{30.0, models.SignalNeutral},
		{29.9, models.SignalOversold},
	}
	for _, tc := range cases {
		ind := models.IndicatorSet{RSI: fptr(tc.rsi)}
		got := DeriveSignals(ind, 0).RSI
		if got != tc.want {
			t.Fatalf("rsi %v: expected %s, got %s", tc.rsi, tc.want, got)
		}
	}
}

func TestDeriveSignalsMATrendBuckets(t *testing.T) {
	cases := []struct {
		price, sma20, sma50 float64
		want                models.Signal
	}{
		{110, 105, 100, models.SignalStrongBullish},
		{110, 105, 108, models.SignalWeakBullish},
		{90, 95, 100, models.SignalStrongBearish},
		{90, 95, 92, models.SignalWeakBearish},
		// price above sma20 with equal averages falls through to weak bearish
		{110, 105, 105, models.SignalWeakBearish},
	}
	for _, tc := range cases {
		ind := models.IndicatorSet{
			CurrentPrice: tc.price,
			SMA20:        fptr(tc.sma20),
			SMA50:        fptr(tc.sma50),
		}
		got := DeriveSignals(ind, 0).MATrend
		if got != tc.want {
			t.Fatalf("price %v sma20 %v sma50 %v: expected %s, got %s",
				tc.price, tc.sma20, tc.sma50, tc.want, got)
		}
	}
}

func TestDeriveSignalsVolume(t *testing.T) {
	ind := models.IndicatorSet{VolumeSMA: fptr(100)}
	if got := DeriveSignals(ind, 151).Volume; got != models.SignalVolumeHigh {
		t.Fatalf("expected high, got %s", got)
	}
	if got := DeriveSignals(ind, 49).Volume; got != models.SignalVolumeLow {
		t.Fatalf("expected low, got %s", got)
	}
	if got := DeriveSignals(ind, 100).Volume; got != models.SignalVolumeNormal {
		t.Fatalf("expected normal, got %s", got)
	}
	// absent volume baseline defaults to normal
	if got := DeriveSignals(models.IndicatorSet{}, 1e9).Volume; got != models.SignalVolumeNormal {
		t.Fatalf("expected normal without baseline, got %s", got)
	}
}

func TestSupportResistancePeakAndDip(t *testing.T) {
	bars := make([]models.Bar, 61)
	for i := range bars {
		bars[i] = models.Bar{High: 100, Low: 95, Close: 98, Volume: 1}
	}
	bars[30].High = 110
	bars[35].Low = 80

	support, resistance := SupportResistance(bars)
	if len(resistance) == 0 || resistance[0] != 110 {
		t.Fatalf("expected peak as top resistance, got %v", resistance)
	}
	if len(support) == 0 || support[0] != 80 {
		t.Fatalf("expected dip as lowest support, got %v", support)
	}
}

func TestSupportResistanceShortHistory(t *testing.T) {
	bars := make([]models.Bar, 2*levelWindow)
	for i := range bars {
		bars[i] = models.Bar{High: 100, Low: 95}
	}
	support, resistance := SupportResistance(bars)
	if len(support) != 0 || len(resistance) != 0 {
		t.Fatalf("expected empty levels, got %v / %v", support, resistance)
	}
}

func TestAssessTrendUnanimous(t *testing.T) {
	closes := make([]float64, 10)
	for i := range closes {
		closes[i] = 100
	}
	closes[9] = 110 // +10% over the lookback
	bars := barsFromCloses(closes)

	ind := models.IndicatorSet{
		CurrentPrice: 110,
		SMA20:        fptr(105),
		SMA50:        fptr(100),
		MACD:         fptr(1),
		MACDSignal:   fptr(0),
		ADXPos:       fptr(30),
		ADXNeg:       fptr(10),
	}
	got := AssessTrend(bars, ind)
	if got.Trend != models.TrendBullish || got.Strength != 1 {
		t.Fatalf("expected unanimous bullish, got %+v", got)
	}

	ind = models.IndicatorSet{
		CurrentPrice: 90,
		SMA20:        fptr(95),
		SMA50:        fptr(100),
		MACD:         fptr(-1),
		MACDSignal:   fptr(0),
		ADXPos:       fptr(10),
		ADXNeg:       fptr(30),
	}
	bars[9].Close = 80
	ind.CurrentPrice = 80
	got = AssessTrend(bars, ind)
	if got.Trend != models.TrendBearish || got.Strength != 1 {
		t.Fatalf("expected unanimous bearish, got %+v", got)
	}
}

func TestAssessTrendAbstainingMomentum(t *testing.T) {
	// Momentum inside the 2% band abstains but still dilutes strength:
	// four +1 votes over five factors is 0.8.
	closes := make([]float64, 10)
	for i := range closes {
		closes[i] = 100
	}
	bars := barsFromCloses(closes)
	ind := models.IndicatorSet{
		CurrentPrice: 100.5,
		SMA20:        fptr(100),
		SMA50:        fptr(99),
		MACD:         fptr(1),
		MACDSignal:   fptr(0),
		ADXPos:       fptr(30),
		ADXNeg:       fptr(10),
	}
	got := AssessTrend(bars, ind)
	if got.Trend != models.TrendBullish {
		t.Fatalf("expected bullish, got %+v", got)
	}
	if !almostEqual(got.Strength, 0.8, 1e-9) {
		t.Fatalf("expected strength 0.8, got %v", got.Strength)
	}
}

func TestAnalyzeEndToEnd(t *testing.T) {
	closes := make([]float64, 120)
	for i := range closes {
		closes[i] = 100 + float64(i)*0.5
	}
	a := NewAnalyzer(testLogger(t))
	res, err := a.Analyze("ETHUSDT", barsFromCloses(closes))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if res.Symbol != "ETHUSDT" {
		t.Fatalf("unexpected symbol %s", res.Symbol)
	}
	if res.Indicators.SMA20 == nil || res.Indicators.RSI == nil {
		t.Fatalf("core indicators missing")
	}
	if res.Signals.MATrend != models.SignalStrongBullish {
		t.Fatalf("expected strong bullish ma trend, got %s", res.Signals.MATrend)
	}
	if res.Trend.Trend == models.TrendUnknown {
		t.Fatalf("trend should be determinable")
	}
	if res.SupportLevels == nil || res.ResistanceLevels == nil {
		t.Fatalf("levels must be non-nil slices")
	}
}
