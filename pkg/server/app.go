package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"CoinSage/internal/domain/repository"
	"CoinSage/internal/service/binance"
	pkgch "CoinSage/pkg/clickhouse"
	"CoinSage/pkg/config"
	xhttp "CoinSage/pkg/http"
	applogger "CoinSage/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	handler    xhttp.Handler
	stream     *binance.Stream
	chClient   *pkgch.Client
	publisher  repository.RecommendationPublisher
	log        *applogger.Logger
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies. stream, chClient
// and publisher may be nil depending on the configured backends.
func New(
	cfg *config.Config,
	handler xhttp.Handler,
	stream *binance.Stream,
	chClient *pkgch.Client,
	publisher repository.RecommendationPublisher,
	log *applogger.Logger,
) *App {
	return &App{
		cfg:       cfg,
		handler:   handler,
		stream:    stream,
		chClient:  chClient,
		publisher: publisher,
		log:       log,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithRequestLogger(a.log),
	)

	if a.stream != nil {
		go a.stream.Run(ctx)
		a.log.Info("price stream started", applogger.Strings("symbols", a.cfg.Binance.Symbols))
	}

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	cancel()
	return a.shutdown(context.Background())
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.log.Warn("publisher close error", applogger.Error(err))
		}
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
