package models

import "time"

// Bar is one OHLCV candle for a fixed interval. Bars are immutable once
// fetched; sequences are ordered by strictly increasing OpenTime.
type Bar struct {
	OpenTime    int64   `json:"openTime"` // ms epoch
	Open        float64 `json:"open"`
	High        float64 `json:"high"`
	Low         float64 `json:"low"`
	Close       float64 `json:"close"`
	Volume      float64 `json:"volume"`
	CloseTime   int64   `json:"closeTime"`
	QuoteVolume float64 `json:"quoteVolume,omitempty"`
	TradeCount  int64   `json:"trades,omitempty"`
}

// Price is a point-in-time price snapshot for a symbol.
type Price struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	Timestamp time.Time `json:"timestamp"`
}

// Ticker is a 24h rolling statistics snapshot.
type Ticker struct {
	Symbol        string  `json:"symbol"`
	LastPrice     float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	Volume        float64 `json:"volume"`
	QuoteVolume   float64 `json:"quoteVolume"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	OpenPrice     float64 `json:"openPrice"`
	OpenTime      int64   `json:"openTime"`
	CloseTime     int64   `json:"closeTime"`
}

// Closes extracts the close series from a bar sequence.
func Closes(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

// Volumes extracts the volume series from a bar sequence.
func Volumes(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Volume
	}
	return out
}
