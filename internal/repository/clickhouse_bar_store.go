package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"CoinSage/internal/domain/models"
	domrepo "CoinSage/internal/domain/repository"
	pkgch "CoinSage/pkg/clickhouse"
	applogger "CoinSage/pkg/logger"
)

// CHBarStore implements MarketData on top of a ClickHouse bar archive.
// It serves deployments that mirror exchange history locally instead of
// hitting the exchange API per request.
type CHBarStore struct {
	db *sql.DB
	l  *applogger.Logger
}

func NewCHBarStore(ch *pkgch.Client) *CHBarStore {
	return &CHBarStore{db: ch.DB()}
}

// SetLogger injects a structured logger.
func (s *CHBarStore) SetLogger(l *applogger.Logger) { s.l = l }

// Schema returns idempotent DDL for the bar archive.
func Schema() []string {
	return []string{
		`CREATE DATABASE IF NOT EXISTS coinsage`,
		`CREATE TABLE IF NOT EXISTS coinsage.bars (
            symbol       LowCardinality(String),
            interval     LowCardinality(String),
            open_time    Int64,
            open         Float64,
            high         Float64,
            low          Float64,
            close        Float64,
            volume       Float64,
            close_time   Int64,
            quote_volume Float64,
            trades       Int64
        ) ENGINE = ReplacingMergeTree
        ORDER BY (symbol, interval, open_time)`,
	}
}

func (s *CHBarStore) GetKlines(ctx context.Context, symbol, interval string, limit int) ([]models.Bar, error) {
	start := time.Now()
	if limit <= 0 {
		limit = 500
	}
	const q = `
        SELECT open_time, open, high, low, close, volume, close_time, quote_volume, trades
        FROM coinsage.bars
        WHERE symbol = ? AND interval = ?
        ORDER BY open_time DESC
        LIMIT ?
    `
	rows, err := s.db.QueryContext(ctx, q, symbol, interval, limit)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse get_klines query error",
				applogger.String("symbol", symbol),
				applogger.String("interval", interval),
				applogger.Error(err))
		}
		return nil, models.Collaborator("fetch klines", err)
	}
	defer rows.Close()

	tmp := make([]models.Bar, 0, limit)
	for rows.Next() {
		var b models.Bar
		if err := rows.Scan(&b.OpenTime, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume, &b.CloseTime, &b.QuoteVolume, &b.TradeCount); err != nil {
			return nil, models.Collaborator("fetch klines", fmt.Errorf("scan bar: %w", err))
		}
		tmp = append(tmp, b)
	}
	if err := rows.Err(); err != nil {
		return nil, models.Collaborator("fetch klines", err)
	}
	// reverse to ASC
	for i, j := 0, len(tmp)-1; i < j; i, j = i+1, j-1 {
		tmp[i], tmp[j] = tmp[j], tmp[i]
	}
	if s.l != nil {
		s.l.Debug("clickhouse get_klines ok",
			applogger.String("symbol", symbol),
			applogger.String("interval", interval),
			applogger.Int("rows", len(tmp)),
			applogger.Duration("duration_ms", time.Since(start)))
	}
	return tmp, nil
}

func (s *CHBarStore) GetCurrentPrice(ctx context.Context, symbol string) (*models.Price, error) {
	const q = `
        SELECT close, close_time
        FROM coinsage.bars
        WHERE symbol = ?
        ORDER BY open_time DESC
        LIMIT 1
    `
	var lastClose float64
	var closeTime int64
	if err := s.db.QueryRowContext(ctx, q, symbol).Scan(&lastClose, &closeTime); err != nil {
		if err == sql.ErrNoRows {
			return nil, models.Collaborator("fetch price", fmt.Errorf("no bars archived for %s", symbol))
		}
		return nil, models.Collaborator("fetch price", err)
	}
	return &models.Price{
		Symbol:    symbol,
		Price:     lastClose,
		Timestamp: time.UnixMilli(closeTime).UTC(),
	}, nil
}

func (s *CHBarStore) GetTicker24h(ctx context.Context, symbol string) (*models.Ticker, error) {
	since := time.Now().Add(-24 * time.Hour).UnixMilli()
	const q = `
        SELECT
            max(high), min(low), sum(volume), sum(quote_volume),
            argMin(open, open_time), argMax(close, open_time),
            min(open_time), max(close_time)
        FROM coinsage.bars
        WHERE symbol = ? AND interval = '1h' AND open_time >= ?
    `
	t := &models.Ticker{Symbol: symbol}
	err := s.db.QueryRowContext(ctx, q, symbol, since).Scan(
		&t.High, &t.Low, &t.Volume, &t.QuoteVolume,
		&t.OpenPrice, &t.LastPrice, &t.OpenTime, &t.CloseTime)
	if err != nil {
		return nil, models.Collaborator("fetch ticker", err)
	}
	t.Change = t.LastPrice - t.OpenPrice
	if t.OpenPrice != 0 {
		t.ChangePercent = t.Change / t.OpenPrice * 100
	}
	return t, nil
}

func (s *CHBarStore) Health(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return models.Collaborator("ping market data", err)
	}
	return nil
}

// InsertBars archives a batch of bars, chunked to bound statement size.
func (s *CHBarStore) InsertBars(ctx context.Context, symbol, interval string, bars []models.Bar) error {
	if len(bars) == 0 {
		return nil
	}
	const chunkSize = 2000
	for start := 0; start < len(bars); start += chunkSize {
		end := start + chunkSize
		if end > len(bars) {
			end = len(bars)
		}
		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*11)
		for _, b := range bars[start:end] {
			values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
			args = append(args, symbol, interval, b.OpenTime, b.Open, b.High, b.Low, b.Close, b.Volume, b.CloseTime, b.QuoteVolume, b.TradeCount)
		}
		q := "INSERT INTO coinsage.bars (symbol, interval, open_time, open, high, low, close, volume, close_time, quote_volume, trades) VALUES " + strings.Join(values, ",")
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("insert bars: %w", err)
		}
	}
	return nil
}

var (
	_ domrepo.MarketData = (*CHBarStore)(nil)
	_ BarArchiver        = (*CHBarStore)(nil)
)
