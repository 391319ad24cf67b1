package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"CoinSage/internal/domain/models"
	"CoinSage/internal/domain/repository"
	icache "CoinSage/internal/service/cache"
	"CoinSage/internal/service/metrics"
	"CoinSage/internal/service/ratelimit"
	"CoinSage/internal/usecase"
	xhttp "CoinSage/pkg/http"
	xlogger "CoinSage/pkg/logger"

	"github.com/labstack/echo/v4"
)

// AdvisorHandler exposes the advisory API over Echo.
type AdvisorHandler struct {
	logger     *xlogger.Logger
	market     repository.MarketData
	sentiment  *usecase.SentimentUseCase
	prediction *usecase.PredictionUseCase
	technical  *usecase.TechnicalUseCase
	recommend  *usecase.RecommendUseCase
	training   *usecase.TrainingUseCase
	cache      icache.BytesCache
	rl         *ratelimit.Limiter
}

func NewAdvisorHandler(
	logger *xlogger.Logger,
	market repository.MarketData,
	sentimentUC *usecase.SentimentUseCase,
	predictionUC *usecase.PredictionUseCase,
	technicalUC *usecase.TechnicalUseCase,
	recommendUC *usecase.RecommendUseCase,
	trainingUC *usecase.TrainingUseCase,
) *AdvisorHandler {
	metrics.Register()
	return &AdvisorHandler{
		logger:     logger,
		market:     market,
		sentiment:  sentimentUC,
		prediction: predictionUC,
		technical:  technicalUC,
		recommend:  recommendUC,
		training:   trainingUC,
		rl:         ratelimit.New(),
	}
}

// SetCache injects a response cache for the read endpoints.
func (h *AdvisorHandler) SetCache(c icache.BytesCache) { h.cache = c }

func (h *AdvisorHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)

	g := e.Group("/api")
	g.GET("/sentiment", h.Sentiment)
	g.GET("/predictions", h.Predictions)
	g.GET("/technical-analysis/:symbol", h.Technical)
	g.GET("/recommendations", h.Recommendations)
	g.POST("/train", h.Train)
	g.GET("/model-status", h.ModelStatus)
}

// Health reports liveness plus the reachability of the market data backend.
func (h *AdvisorHandler) Health(c echo.Context) error {
	services := map[string]string{
		"sentiment":      "ok",
		"prediction":     "ok",
		"recommendation": "ok",
		"market_data":    "ok",
	}
	status := "healthy"
	if err := h.market.Health(c.Request().Context()); err != nil {
		services["market_data"] = err.Error()
		status = "degraded"
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"status":    status,
		"services":  services,
		"timestamp": time.Now().UTC(),
	})
}

// Sentiment analyzes sentiment for one or more symbols. Per-symbol analysis
// failures yield a neutral record instead of failing the batch.
func (h *AdvisorHandler) Sentiment(c echo.Context) error {
	start := time.Now()
	endpoint := "sentiment"
	defer h.observe(endpoint, start)

	req := &models.SentimentRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.allow(c, endpoint, 5, 2) {
		return h.rateLimited(c, endpoint)
	}

	symbols := splitSymbols(req.Symbols)
	sources := splitList(req.Sources)

	cacheKey := "sentiment:" + strings.Join(symbols, ",") + ":" + strings.Join(sources, ",")
	if b, ok := h.cacheGet(endpoint, cacheKey); ok {
		return xhttp.SuccessResponse(c, json.RawMessage(b))
	}

	records := h.sentiment.AnalyzeMany(c.Request().Context(), symbols, sources)
	h.cacheSet(endpoint, cacheKey, records, 60*time.Second)
	return xhttp.SuccessResponse(c, records)
}

// Predictions returns stabilized forecasts. The batch fails as a whole on
// the first symbol that cannot be forecast.
func (h *AdvisorHandler) Predictions(c echo.Context) error {
	start := time.Now()
	endpoint := "predictions"
	defer h.observe(endpoint, start)

	req := &models.PredictionRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.allow(c, endpoint, 5, 2) {
		return h.rateLimited(c, endpoint)
	}

	forecasts, err := h.prediction.PredictMany(c.Request().Context(), splitSymbols(req.Symbols), req.Timeframe)
	if err != nil {
		return h.fail(c, endpoint, err)
	}
	return xhttp.SuccessResponse(c, forecasts)
}

// Technical runs the indicator/signal/level analysis for one symbol.
func (h *AdvisorHandler) Technical(c echo.Context) error {
	start := time.Now()
	endpoint := "technical"
	defer h.observe(endpoint, start)

	req := &models.TechnicalRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.allow(c, endpoint, 5, 2) {
		return h.rateLimited(c, endpoint)
	}

	symbol := strings.ToUpper(req.Symbol)
	cacheKey := "technical:" + symbol + ":" + req.Interval + ":" + req.Period
	if b, ok := h.cacheGet(endpoint, cacheKey); ok {
		return xhttp.SuccessResponse(c, json.RawMessage(b))
	}

	res, err := h.technical.Analyze(c.Request().Context(), symbol, req.Interval, req.Period)
	if err != nil {
		return h.fail(c, endpoint, err)
	}
	h.cacheSet(endpoint, cacheKey, res, 30*time.Second)
	return xhttp.SuccessResponse(c, res)
}

// Recommendations fuses all signal sources into per-symbol recommendations.
func (h *AdvisorHandler) Recommendations(c echo.Context) error {
	start := time.Now()
	endpoint := "recommendations"
	defer h.observe(endpoint, start)

	req := &models.RecommendationRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.allow(c, endpoint, 3, 1) {
		return h.rateLimited(c, endpoint)
	}

	recs, err := h.recommend.GenerateMany(c.Request().Context(), splitSymbols(req.Symbols), req.RiskLevel)
	if err != nil {
		return h.fail(c, endpoint, err)
	}
	return xhttp.SuccessResponse(c, recs)
}

// Train kicks off a background training run for a model type.
func (h *AdvisorHandler) Train(c echo.Context) error {
	start := time.Now()
	endpoint := "train"
	defer h.observe(endpoint, start)

	req := &models.TrainRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	if err := h.training.Start(req.ModelType, req.Symbols, req.Parameters); err != nil {
		return h.fail(c, endpoint, err)
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"status":     "training_started",
		"model_type": req.ModelType,
		"symbols":    req.Symbols,
		"started_at": time.Now().UTC(),
	})
}

// ModelStatus aggregates the state of every model behind the advisor.
func (h *AdvisorHandler) ModelStatus(c echo.Context) error {
	start := time.Now()
	endpoint := "model_status"
	defer h.observe(endpoint, start)

	return xhttp.SuccessResponse(c, h.training.Status(c.Request().Context()))
}

func (h *AdvisorHandler) observe(endpoint string, start time.Time) {
	metrics.AdvisorLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}

func (h *AdvisorHandler) allow(c echo.Context, endpoint string, capacity, refill float64) bool {
	return h.rl.Allow(c.RealIP()+":"+endpoint, capacity, refill)
}

func (h *AdvisorHandler) rateLimited(c echo.Context, endpoint string) error {
	h.logger.Warn("advisor rate_limited",
		xlogger.String("endpoint", endpoint),
		xlogger.String("remote", c.RealIP()))
	appErr := xhttp.NewAppError("ERR_RATE_LIMITED", "", "rate limited", http.StatusTooManyRequests)
	return xhttp.AppErrorResponse(c, appErr)
}

// fail maps domain errors onto HTTP statuses: bad input is 400, a dead
// collaborator is 503, everything else is 500.
func (h *AdvisorHandler) fail(c echo.Context, endpoint string, err error) error {
	metrics.AdvisorErrors.WithLabelValues(endpoint).Inc()
	h.logger.Error("advisor usecase error",
		xlogger.String("endpoint", endpoint),
		xlogger.Error(err))

	var insufficientErr *models.InsufficientDataError
	var timeframeErr *models.UnknownTimeframeError
	var riskErr *models.UnknownRiskLevelError
	var collabErr *models.CollaboratorError
	switch {
	case errors.As(err, &insufficientErr), errors.As(err, &timeframeErr), errors.As(err, &riskErr):
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()))
	case errors.As(err, &collabErr):
		metrics.CollaboratorOutages.WithLabelValues(collabErr.Op).Inc()
		appErr := xhttp.NewAppError("ERR_UPSTREAM", "", err.Error(), http.StatusServiceUnavailable)
		return xhttp.AppErrorResponse(c, appErr)
	default:
		return xhttp.AppErrorResponse(c, xhttp.InternalError(err.Error()))
	}
}

func (h *AdvisorHandler) cacheGet(endpoint, key string) ([]byte, bool) {
	if h.cache == nil {
		return nil, false
	}
	b, ok, err := h.cache.GetBytes(key)
	if err != nil {
		h.logger.Warn("advisor cache_get_error",
			xlogger.String("endpoint", endpoint),
			xlogger.Error(err))
		return nil, false
	}
	if ok {
		h.logger.Debug("advisor cache_hit", xlogger.String("key", key))
	}
	return b, ok
}

func (h *AdvisorHandler) cacheSet(endpoint, key string, v interface{}, ttl time.Duration) {
	if h.cache == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := h.cache.SetBytes(key, b, ttl); err != nil {
		h.logger.Warn("advisor cache_set_error",
			xlogger.String("endpoint", endpoint),
			xlogger.Error(err))
	}
}

// splitSymbols parses a comma separated symbol list, upper-casing entries.
func splitSymbols(s string) []string {
	parts := splitList(s)
	for i, p := range parts {
		parts[i] = strings.ToUpper(p)
	}
	return parts
}

func splitList(s string) []string {
	out := make([]string, 0, 4)
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
