package repository

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"CoinSage/internal/domain/models"
)

func binanceTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v3/klines", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("symbol") != "BTCUSDT" {
			http.Error(w, "unknown symbol", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
            [1700000000000,"100.5","101.2","99.8","100.9","1200.5",1700003599999,"121000.0",350,"600.0","60500.0","0"],
            [1700003600000,"100.9","102.0","100.1","101.7","900.0",1700007199999,"91500.0",280,"450.0","45800.0","0"]
        ]`))
	})
	mux.HandleFunc("/api/v3/ticker/price", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"symbol":"BTCUSDT","price":"101.70"}`))
	})
	mux.HandleFunc("/api/v3/ticker/24hr", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
            "symbol":"BTCUSDT","lastPrice":"101.7","priceChange":"1.2","priceChangePercent":"1.19",
            "volume":"2100.5","quoteVolume":"212500.0","highPrice":"102.0","lowPrice":"99.8",
            "openPrice":"100.5","openTime":1700000000000,"closeTime":1700086399999
        }`))
	})
	mux.HandleFunc("/api/v3/ping", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestGetKlinesParsesRows(t *testing.T) {
	srv := binanceTestServer(t)
	md := NewBinanceMarketData(srv.URL, 5*time.Second)

	bars, err := md.GetKlines(context.Background(), "BTCUSDT", "1h", 2)
	if err != nil {
		t.Fatalf("get klines: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(bars))
	}
	first := bars[0]
	if first.OpenTime != 1700000000000 || first.Open != 100.5 || first.Close != 100.9 {
		t.Fatalf("unexpected first bar %+v", first)
	}
	if first.Volume != 1200.5 || first.QuoteVolume != 121000.0 || first.TradeCount != 350 {
		t.Fatalf("unexpected volume fields %+v", first)
	}
}

func TestGetKlinesUpstreamErrorIsCollaborator(t *testing.T) {
	srv := binanceTestServer(t)
	md := NewBinanceMarketData(srv.URL, 5*time.Second)

	_, err := md.GetKlines(context.Background(), "NOPEUSDT", "1h", 10)
	var collabErr *models.CollaboratorError
	if !errors.As(err, &collabErr) {
		t.Fatalf("expected collaborator error, got %v", err)
	}
}

func TestGetCurrentPriceRESTFallback(t *testing.T) {
	srv := binanceTestServer(t)
	md := NewBinanceMarketData(srv.URL, 5*time.Second)

	p, err := md.GetCurrentPrice(context.Background(), "BTCUSDT")
	if err != nil {
		t.Fatalf("get price: %v", err)
	}
	if p.Symbol != "BTCUSDT" || p.Price != 101.70 {
		t.Fatalf("unexpected price %+v", p)
	}
}

type fixedPrices map[string]float64

func (f fixedPrices) LastPrice(symbol string) (float64, bool) {
	p, ok := f[symbol]
	return p, ok
}

func TestGetCurrentPricePrefersStream(t *testing.T) {
	srv := binanceTestServer(t)
	md := NewBinanceMarketData(srv.URL, 5*time.Second)
	md.SetStream(fixedPrices{"BTCUSDT": 250.25})

	p, err := md.GetCurrentPrice(context.Background(), "BTCUSDT")
	if err != nil {
		t.Fatalf("get price: %v", err)
	}
	if p.Price != 250.25 {
		t.Fatalf("expected streamed price, got %v", p.Price)
	}

	// symbols missing from the stream fall back to REST
	p, err = md.GetCurrentPrice(context.Background(), "ETHUSDT")
	if err != nil {
		t.Fatalf("get price fallback: %v", err)
	}
	if p.Price != 101.70 {
		t.Fatalf("expected REST price, got %v", p.Price)
	}
}

func TestGetTicker24hParsesFields(t *testing.T) {
	srv := binanceTestServer(t)
	md := NewBinanceMarketData(srv.URL, 5*time.Second)

	tick, err := md.GetTicker24h(context.Background(), "BTCUSDT")
	if err != nil {
		t.Fatalf("get ticker: %v", err)
	}
	if tick.LastPrice != 101.7 || tick.ChangePercent != 1.19 || tick.OpenTime != 1700000000000 {
		t.Fatalf("unexpected ticker %+v", tick)
	}
}

func TestHealthPing(t *testing.T) {
	srv := binanceTestServer(t)
	md := NewBinanceMarketData(srv.URL, 5*time.Second)
	if err := md.Health(context.Background()); err != nil {
		t.Fatalf("health: %v", err)
	}
}
