package features

import (
	"math"
	"testing"

	"CoinSage/internal/domain/models"
)

func syntheticBars(n int) []models.Bar {
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

func TestMatrixShapeAndWarmup(t *testing.T) {
	bars := syntheticBars(120)
	rows := Matrix(bars)
	if len(rows) == 0 {
		t.Fatalf("expected rows")
	}
	for _, row := range rows {
		if len(row) != len(Columns) {
			t.Fatalf("expected %d columns, got %d", len(Columns), len(row))
		}
		for c, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("column %s not finite: %v", Columns[c], v)
			}
		}
	}
	// The 50-bar SMA dominates the warmup, so exactly its window minus
	// one leading rows must be gone.
	if got, want := len(rows), 120-(smaMidWindow-1); got != want {
		t.Fatalf("expected %d rows after warmup, got %d", want, got)
	}
}

func TestMatrixCloseColumn(t *testing.T) {
	bars := syntheticBars(80)
	rows := Matrix(bars)
	last := rows[len(rows)-1]
	if last[CloseIndex] != bars[len(bars)-1].Close {
		t.Fatalf("close column mismatch: %v vs %v", last[CloseIndex], bars[len(bars)-1].Close)
	}
}

func TestMatrixTooShort(t *testing.T) {
	if rows := Matrix(syntheticBars(30)); len(rows) != 0 {
		t.Fatalf("expected no rows for short history, got %d", len(rows))
	}
	if rows := Matrix(nil); rows != nil {
		t.Fatalf("expected nil for empty history")
	}
}

func TestScalerRoundTrip(t *testing.T) {
	rows := [][]float64{
		{1, 2, 3, 100, 5},
		{2, 4, 6, 200, 10},
		{3, 6, 9, 150, 15},
	}
	var s MinMaxScaler
	s.Fit(rows)
	scaled := s.Transform(rows)
	for _, row := range scaled {
		for c, v := range row {
			if v < 0 || v > 1 {
				t.Fatalf("column %d out of range: %v", c, v)
			}
		}
	}
	// close column, index 3: 100 -> 0, 200 -> 1, 150 -> 0.5
	if scaled[0][3] != 0 || scaled[1][3] != 1 || scaled[2][3] != 0.5 {
		t.Fatalf("unexpected close scaling: %v %v %v", scaled[0][3], scaled[1][3], scaled[2][3])
	}
	if got := s.InverseClose(0.5); got != 150 {
		t.Fatalf("inverse close: expected 150, got %v", got)
	}
}

func TestScalerConstantColumn(t *testing.T) {
	rows := [][]float64{{5, 1}, {5, 2}}
	var s MinMaxScaler
	s.Fit(rows)
	scaled := s.Transform(rows)
	if scaled[0][0] != 0 || scaled[1][0] != 0 {
		t.Fatalf("constant column should scale to zero, got %v %v", scaled[0][0], scaled[1][0])
	}
}
