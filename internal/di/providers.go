package di

import (
	"context"
	"fmt"
	"time"

	"CoinSage/internal/domain/repository"
	domsvc "CoinSage/internal/domain/service"
	"CoinSage/internal/handler/api"
	internalrepo "CoinSage/internal/repository"
	"CoinSage/internal/service/binance"
	icache "CoinSage/internal/service/cache"
	"CoinSage/internal/services/forecast"
	"CoinSage/internal/services/remote"
	"CoinSage/internal/services/sentiment"
	"CoinSage/internal/services/technical"
	"CoinSage/internal/usecase"
	pkgch "CoinSage/pkg/clickhouse"
	"CoinSage/pkg/config"
	pkgkafka "CoinSage/pkg/kafka"
	applogger "CoinSage/pkg/logger"
	pkgmetrics "CoinSage/pkg/metrics"
	"CoinSage/pkg/server"
)

// MarketBackend bundles the configured market data source with its
// optional infrastructure (stream or ClickHouse client) for lifecycle
// management.
type MarketBackend struct {
	Data   repository.MarketData
	Stream *binance.Stream
	CH     *pkgch.Client
}

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetricsRecorder creates a Prometheus metrics recorder.
func ProvideMetricsRecorder() *pkgmetrics.Recorder {
	return pkgmetrics.New()
}

// newBarStore builds the ClickHouse client and applies the bar schema.
func newBarStore(cfg *config.Config, l *applogger.Logger) (*internalrepo.CHBarStore, *pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.InitSchema(ctx, internalrepo.Schema()); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	store := internalrepo.NewCHBarStore(client)
	store.SetLogger(l)
	return store, client, nil
}

// ProvideMarketBackend builds the configured market data source.
func ProvideMarketBackend(cfg *config.Config, l *applogger.Logger, rec *pkgmetrics.Recorder) (*MarketBackend, error) {
	switch cfg.MarketData.Backend {
	case "clickhouse":
		store, client, err := newBarStore(cfg, l)
		if err != nil {
			return nil, err
		}
		return &MarketBackend{Data: store, CH: client}, nil

	case "binance":
		data := internalrepo.NewBinanceMarketData(cfg.Binance.BaseURL, cfg.Binance.Timeout)
		data.SetLogger(l)

		mb := &MarketBackend{Data: data}
		if cfg.Binance.StreamEnabled {
			stream := binance.NewStream(
				cfg.Binance.WebSocketURL,
				cfg.Binance.Symbols,
				cfg.Binance.ReconnectDelay,
				cfg.Binance.PingInterval,
				l,
			)
			stream.SetRecorder(rec)
			data.SetStream(stream)
			mb.Stream = stream
		}
		if cfg.MarketData.Archive {
			store, client, err := newBarStore(cfg, l)
			if err != nil {
				return nil, err
			}
			mb.Data = internalrepo.NewArchivingMarketData(data, store, l)
			mb.CH = client
		}
		return mb, nil

	default:
		return nil, fmt.Errorf("unknown market data backend: %s", cfg.MarketData.Backend)
	}
}

// ProvidePredictor creates the HTTP model service client.
func ProvidePredictor(cfg *config.Config) domsvc.Predictor {
	return remote.NewHTTPPredictor(cfg)
}

// ProvideTextService creates the HTTP text service client.
func ProvideTextService(cfg *config.Config) *remote.HTTPTextService {
	return remote.NewHTTPTextService(cfg)
}

// ProvideStabilizer creates the forecast stabilizer.
func ProvideStabilizer(mb *MarketBackend, predictor domsvc.Predictor, l *applogger.Logger) *forecast.Stabilizer {
	return forecast.NewStabilizer(mb.Data, predictor, l)
}

// ProvideSentimentAggregator creates the sentiment aggregator.
func ProvideSentimentAggregator(texts *remote.HTTPTextService, l *applogger.Logger) *sentiment.Aggregator {
	return sentiment.NewAggregator(texts, texts, l)
}

// ProvidePublisher creates the Kafka recommendation publisher, or nil
// when Kafka is disabled.
func ProvidePublisher(cfg *config.Config) (repository.RecommendationPublisher, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaRecommendationPublisher(producer, cfg.Kafka.Topic), nil
}

// ProvideTechnicalUseCase creates the technical analysis use case.
func ProvideTechnicalUseCase(mb *MarketBackend, l *applogger.Logger) *usecase.TechnicalUseCase {
	return usecase.NewTechnicalUseCase(mb.Data, technical.NewAnalyzer(l), l)
}

// ProvideSentimentUseCase creates the sentiment use case.
func ProvideSentimentUseCase(agg *sentiment.Aggregator, cfg *config.Config, l *applogger.Logger) *usecase.SentimentUseCase {
	return usecase.NewSentimentUseCase(agg, cfg, l)
}

// ProvidePredictionUseCase creates the prediction use case.
func ProvidePredictionUseCase(stab *forecast.Stabilizer) *usecase.PredictionUseCase {
	return usecase.NewPredictionUseCase(stab)
}

// ProvideTrainingUseCase creates the training use case.
func ProvideTrainingUseCase(mb *MarketBackend, predictor domsvc.Predictor, l *applogger.Logger) *usecase.TrainingUseCase {
	return usecase.NewTrainingUseCase(mb.Data, predictor, l)
}

// ProvideRecommendUseCase creates the recommendation use case.
func ProvideRecommendUseCase(
	mb *MarketBackend,
	stab *forecast.Stabilizer,
	agg *sentiment.Aggregator,
	tech *usecase.TechnicalUseCase,
	publisher repository.RecommendationPublisher,
	cfg *config.Config,
	l *applogger.Logger,
) *usecase.RecommendUseCase {
	return usecase.NewRecommendUseCase(mb.Data, stab, agg, tech, publisher, cfg, l)
}

// ProvideCache creates the response cache backend.
func ProvideCache(cfg *config.Config) icache.BytesCache {
	if cfg.Cache.Backend == "redis" {
		return icache.NewRedisCache(icache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
	}
	return icache.NewTTLCache()
}

// ProvideAdvisorHandler creates the HTTP handler with cache wired in.
func ProvideAdvisorHandler(
	l *applogger.Logger,
	mb *MarketBackend,
	sentimentUC *usecase.SentimentUseCase,
	predictionUC *usecase.PredictionUseCase,
	technicalUC *usecase.TechnicalUseCase,
	recommendUC *usecase.RecommendUseCase,
	trainingUC *usecase.TrainingUseCase,
	cache icache.BytesCache,
) *api.AdvisorHandler {
	h := api.NewAdvisorHandler(l, mb.Data, sentimentUC, predictionUC, technicalUC, recommendUC, trainingUC)
	h.SetCache(cache)
	return h
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	handler *api.AdvisorHandler,
	mb *MarketBackend,
	publisher repository.RecommendationPublisher,
	l *applogger.Logger,
) *server.App {
	return server.New(cfg, handler, mb.Stream, mb.CH, publisher, l)
}
