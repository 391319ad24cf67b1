package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"CoinSage/internal/domain/models"
	domrepo "CoinSage/internal/domain/repository"
	xhttp "CoinSage/pkg/http"
	applogger "CoinSage/pkg/logger"
)

// PriceSource provides last-seen streamed prices. Optional; the REST
// endpoint is the fallback.
type PriceSource interface {
	LastPrice(symbol string) (float64, bool)
}

// BinanceMarketData implements MarketData over the Binance spot REST API.
type BinanceMarketData struct {
	baseURL string
	client  *xhttp.Client
	stream  PriceSource
	l       *applogger.Logger
}

func NewBinanceMarketData(baseURL string, timeout time.Duration) *BinanceMarketData {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &BinanceMarketData{
		baseURL: baseURL,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

// SetStream wires a live price stream consulted before the REST fallback.
func (b *BinanceMarketData) SetStream(s PriceSource) { b.stream = s }

// SetLogger injects a structured logger.
func (b *BinanceMarketData) SetLogger(l *applogger.Logger) { b.l = l }

// kline rows arrive as mixed-type JSON arrays with numeric strings.
type rawKline []interface{}

func (b *BinanceMarketData) GetKlines(ctx context.Context, symbol, interval string, limit int) ([]models.Bar, error) {
	if limit <= 0 {
		limit = 500
	}
	var raw []rawKline
	err := b.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    b.baseURL + "/api/v3/klines",
		QueryParams: map[string][]string{
			"symbol":   {symbol},
			"interval": {interval},
			"limit":    {strconv.Itoa(limit)},
		},
	}, &raw)
	if err != nil {
		return nil, models.Collaborator("fetch klines", err)
	}

	bars := make([]models.Bar, 0, len(raw))
	for _, k := range raw {
		bar, err := parseKline(k)
		if err != nil {
			return nil, models.Collaborator("fetch klines", err)
		}
		bars = append(bars, bar)
	}
	if b.l != nil {
		b.l.Debug("binance klines fetched",
			applogger.String("symbol", symbol),
			applogger.String("interval", interval),
			applogger.Int("bars", len(bars)))
	}
	return bars, nil
}

func (b *BinanceMarketData) GetCurrentPrice(ctx context.Context, symbol string) (*models.Price, error) {
	if b.stream != nil {
		if p, ok := b.stream.LastPrice(symbol); ok {
			return &models.Price{Symbol: symbol, Price: p, Timestamp: time.Now().UTC()}, nil
		}
	}

	var resp struct {
		Symbol string `json:"symbol"`
		Price  string `json:"price"`
	}
	err := b.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         b.baseURL + "/api/v3/ticker/price",
		QueryParams: map[string][]string{"symbol": {symbol}},
	}, &resp)
	if err != nil {
		return nil, models.Collaborator("fetch price", err)
	}
	price, err := strconv.ParseFloat(resp.Price, 64)
	if err != nil {
		return nil, models.Collaborator("fetch price", fmt.Errorf("parse price %q: %w", resp.Price, err))
	}
	return &models.Price{Symbol: resp.Symbol, Price: price, Timestamp: time.Now().UTC()}, nil
}

func (b *BinanceMarketData) GetTicker24h(ctx context.Context, symbol string) (*models.Ticker, error) {
	var resp struct {
		Symbol             string `json:"symbol"`
		LastPrice          string `json:"lastPrice"`
		PriceChange        string `json:"priceChange"`
		PriceChangePercent string `json:"priceChangePercent"`
		Volume             string `json:"volume"`
		QuoteVolume        string `json:"quoteVolume"`
		HighPrice          string `json:"highPrice"`
		LowPrice           string `json:"lowPrice"`
		OpenPrice          string `json:"openPrice"`
		OpenTime           int64  `json:"openTime"`
		CloseTime          int64  `json:"closeTime"`
	}
	err := b.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         b.baseURL + "/api/v3/ticker/24hr",
		QueryParams: map[string][]string{"symbol": {symbol}},
	}, &resp)
	if err != nil {
		return nil, models.Collaborator("fetch ticker", err)
	}

	t := &models.Ticker{Symbol: resp.Symbol, OpenTime: resp.OpenTime, CloseTime: resp.CloseTime}
	fields := []struct {
		src string
		dst *float64
	}{
		{resp.LastPrice, &t.LastPrice},
		{resp.PriceChange, &t.Change},
		{resp.PriceChangePercent, &t.ChangePercent},
		{resp.Volume, &t.Volume},
		{resp.QuoteVolume, &t.QuoteVolume},
		{resp.HighPrice, &t.High},
		{resp.LowPrice, &t.Low},
		{resp.OpenPrice, &t.OpenPrice},
	}
	for _, f := range fields {
		v, err := strconv.ParseFloat(f.src, 64)
		if err != nil {
			return nil, models.Collaborator("fetch ticker", fmt.Errorf("parse %q: %w", f.src, err))
		}
		*f.dst = v
	}
	return t, nil
}

func (b *BinanceMarketData) Health(ctx context.Context) error {
	err := b.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    b.baseURL + "/api/v3/ping",
	}, nil)
	if err != nil {
		return models.Collaborator("ping market data", err)
	}
	return nil
}

func parseKline(k rawKline) (models.Bar, error) {
	if len(k) < 9 {
		return models.Bar{}, fmt.Errorf("kline row too short: %d fields", len(k))
	}
	num := func(v interface{}) (float64, error) {
		switch x := v.(type) {
		case string:
			return strconv.ParseFloat(x, 64)
		case float64:
			return x, nil
		default:
			return 0, fmt.Errorf("unexpected kline field type %T", v)
		}
	}

	var bar models.Bar
	var err error
	if v, ok := k[0].(float64); ok {
		bar.OpenTime = int64(v)
	} else {
		return models.Bar{}, fmt.Errorf("unexpected open time type %T", k[0])
	}
	if bar.Open, err = num(k[1]); err != nil {
		return models.Bar{}, err
	}
	if bar.High, err = num(k[2]); err != nil {
		return models.Bar{}, err
	}
	if bar.Low, err = num(k[3]); err != nil {
		return models.Bar{}, err
	}
	if bar.Close, err = num(k[4]); err != nil {
		return models.Bar{}, err
	}
	if bar.Volume, err = num(k[5]); err != nil {
		return models.Bar{}, err
	}
	if v, ok := k[6].(float64); ok {
		bar.CloseTime = int64(v)
	}
	if v, err := num(k[7]); err == nil {
		bar.QuoteVolume = v
	}
	if v, ok := k[8].(float64); ok {
		bar.TradeCount = int64(v)
	}
	return bar, nil
}

var _ domrepo.MarketData = (*BinanceMarketData)(nil)
