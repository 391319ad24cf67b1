package repository

import (
	"context"

	"CoinSage/internal/domain/models"
	domrepo "CoinSage/internal/domain/repository"
	applogger "CoinSage/pkg/logger"
)

// BarArchiver persists fetched bars for later replay.
type BarArchiver interface {
	InsertBars(ctx context.Context, symbol, interval string, bars []models.Bar) error
}

// ArchivingMarketData mirrors every successful klines fetch into a bar
// archive. Archive failures are logged and never fail the read path.
type ArchivingMarketData struct {
	inner   domrepo.MarketData
	archive BarArchiver
	l       *applogger.Logger
}

func NewArchivingMarketData(inner domrepo.MarketData, archive BarArchiver, l *applogger.Logger) *ArchivingMarketData {
	return &ArchivingMarketData{inner: inner, archive: archive, l: l}
}

func (a *ArchivingMarketData) GetKlines(ctx context.Context, symbol, interval string, limit int) ([]models.Bar, error) {
	bars, err := a.inner.GetKlines(ctx, symbol, interval, limit)
	if err != nil {
		return nil, err
	}
	if len(bars) > 0 {
		if aerr := a.archive.InsertBars(ctx, symbol, interval, bars); aerr != nil {
			if a.l != nil {
				a.l.Warn("bar archive write failed",
					applogger.String("symbol", symbol),
					applogger.String("interval", interval),
					applogger.Error(aerr))
			}
		}
	}
	return bars, nil
}

func (a *ArchivingMarketData) GetCurrentPrice(ctx context.Context, symbol string) (*models.Price, error) {
	return a.inner.GetCurrentPrice(ctx, symbol)
}

func (a *ArchivingMarketData) GetTicker24h(ctx context.Context, symbol string) (*models.Ticker, error) {
	return a.inner.GetTicker24h(ctx, symbol)
}

func (a *ArchivingMarketData) Health(ctx context.Context) error {
	return a.inner.Health(ctx)
}

var _ domrepo.MarketData = (*ArchivingMarketData)(nil)
