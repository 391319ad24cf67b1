package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"CoinSage/internal/domain/models"
	"CoinSage/internal/domain/repository"
	"CoinSage/internal/services/technical"
	"CoinSage/pkg/logger"
)

const maxBarsPerRequest = 1000

// TechnicalUseCase fetches bar history and runs the rule-based analysis.
type TechnicalUseCase struct {
	market   repository.MarketData
	analyzer *technical.Analyzer
	log      *logger.Logger
}

func NewTechnicalUseCase(market repository.MarketData, analyzer *technical.Analyzer, log *logger.Logger) *TechnicalUseCase {
	return &TechnicalUseCase{market: market, analyzer: analyzer, log: log}
}

// Analyze runs the full technical pass for a symbol over the requested
// interval and lookback period.
func (uc *TechnicalUseCase) Analyze(ctx context.Context, symbol, interval, period string) (*models.TechnicalResult, error) {
	if symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}
	if interval == "" {
		interval = "1h"
	}
	if period == "" {
		period = "30d"
	}

	limit := barLimit(interval, period)
	bars, err := uc.market.GetKlines(ctx, symbol, interval, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch history for %s: %w", symbol, err)
	}
	return uc.analyzer.Analyze(symbol, bars)
}

// periodDays parses a lookback period like "30d", "4w" or "3m" into days.
// Unparseable input falls back to 30 days.
func periodDays(period string) int {
	numeric := func(s string) (int, bool) {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			return 0, false
		}
		return n, true
	}
	switch {
	case strings.HasSuffix(period, "d"):
		if n, ok := numeric(strings.TrimSuffix(period, "d")); ok {
			return n
		}
	case strings.HasSuffix(period, "w"):
		if n, ok := numeric(strings.TrimSuffix(period, "w")); ok {
			return n * 7
		}
	case strings.HasSuffix(period, "m"):
		if n, ok := numeric(strings.TrimSuffix(period, "m")); ok {
			return n * 30
		}
	}
	return 30
}

// barLimit converts an (interval, period) pair into a bar count, capped at
// what one upstream request can return.
func barLimit(interval, period string) int {
	days := periodDays(period)

	clamp := func(n int) int {
		if n > maxBarsPerRequest {
			return maxBarsPerRequest
		}
		return n
	}

	switch interval {
	case "1m", "3m", "5m", "15m", "30m":
		mins, _ := strconv.Atoi(strings.TrimSuffix(interval, "m"))
		return clamp(days * 24 * 60 / mins)
	case "1h", "2h", "4h", "6h", "8h", "12h":
		hours, _ := strconv.Atoi(strings.TrimSuffix(interval, "h"))
		return clamp(days * 24 / hours)
	case "1d":
		return clamp(days)
	default:
		return 200
	}
}
