package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Weights split the overall recommendation score between the three signal
// components. They should sum to 1.
type Weights struct {
	Sentiment  float64 `yaml:"sentiment"`
	Technical  float64 `yaml:"technical"`
	Prediction float64 `yaml:"prediction"`
}

// RiskProfile tunes the recommendation engine per risk appetite.
type RiskProfile struct {
	MinConfidence   float64 `yaml:"min_confidence"`
	MaxPositionSize float64 `yaml:"max_position_size"`
	StopLoss        float64 `yaml:"stop_loss"`
	TakeProfit      float64 `yaml:"take_profit"`
	Weights         Weights `yaml:"weights"`
}

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"log"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	MarketData struct {
		Backend string `yaml:"backend"` // binance or clickhouse
		Archive bool   `yaml:"archive"` // mirror fetched bars into ClickHouse (binance backend only)
	} `yaml:"market_data"`
	Binance struct {
		BaseURL        string        `yaml:"base_url"`
		WebSocketURL   string        `yaml:"websocket_url"`
		StreamEnabled  bool          `yaml:"stream_enabled"`
		Symbols        []string      `yaml:"symbols"`
		Timeout        time.Duration `yaml:"timeout"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay"`
		PingInterval   time.Duration `yaml:"ping_interval"`
	} `yaml:"binance"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Model struct {
		ServiceURL string        `yaml:"service_url"`
		Timeout    time.Duration `yaml:"timeout"`
	} `yaml:"model"`
	Texts struct {
		ServiceURL string        `yaml:"service_url"`
		Timeout    time.Duration `yaml:"timeout"`
		Sources    []string      `yaml:"sources"`
	} `yaml:"texts"`
	Cache struct {
		Backend string        `yaml:"backend"` // memory or redis
		TTL     time.Duration `yaml:"ttl"`
		Redis   struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	RateLimit struct {
		Enabled bool    `yaml:"enabled"`
		RPS     float64 `yaml:"rps"`
		Burst   int     `yaml:"burst"`
	} `yaml:"rate_limit"`
	Risk map[string]RiskProfile `yaml:"risk"`
}

// DefaultRiskProfiles returns the built in low/medium/high profiles.
func DefaultRiskProfiles() map[string]RiskProfile {
	return map[string]RiskProfile{
		"low": {
			MinConfidence:   0.8,
			MaxPositionSize: 0.1,
			StopLoss:        0.05,
			TakeProfit:      0.1,
			Weights:         Weights{Sentiment: 0.2, Technical: 0.5, Prediction: 0.3},
		},
		"medium": {
			MinConfidence:   0.6,
			MaxPositionSize: 0.2,
			StopLoss:        0.08,
			TakeProfit:      0.15,
			Weights:         Weights{Sentiment: 0.3, Technical: 0.4, Prediction: 0.3},
		},
		"high": {
			MinConfidence:   0.4,
			MaxPositionSize: 0.3,
			StopLoss:        0.12,
			TakeProfit:      0.25,
			Weights:         Weights{Sentiment: 0.4, Technical: 0.3, Prediction: 0.3},
		},
	}
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	// Validate required fields
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	// Override with environment variables
	if v := os.Getenv("MARKET_BACKEND"); v != "" {
		c.MarketData.Backend = v
	}
	if v := os.Getenv("BINANCE_BASE_URL"); v != "" {
		c.Binance.BaseURL = v
	}
	if v := os.Getenv("SYMBOLS"); v != "" {
		c.Binance.Symbols = strings.Split(v, ",")
	}
	if v := os.Getenv("MODEL_SERVICE_URL"); v != "" {
		c.Model.ServiceURL = v
	}
	if v := os.Getenv("TEXT_SERVICE_URL"); v != "" {
		c.Texts.ServiceURL = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.MarketData.Backend == "" {
		c.MarketData.Backend = "binance"
	}
	if c.Binance.BaseURL == "" {
		c.Binance.BaseURL = "https://api.binance.com"
	}
	if c.Binance.WebSocketURL == "" {
		c.Binance.WebSocketURL = "wss://stream.binance.com:9443/ws"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Log.Output == "" {
		c.Log.Output = "stdout"
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = "memory"
	}
	if c.Cache.TTL <= 0 {
		c.Cache.TTL = 30 * time.Second
	}
	if len(c.Texts.Sources) == 0 {
		c.Texts.Sources = []string{"news", "social"}
	}

	// Built in profiles fill any level the file does not override.
	defaults := DefaultRiskProfiles()
	if c.Risk == nil {
		c.Risk = defaults
		return
	}
	for level, profile := range defaults {
		if _, ok := c.Risk[level]; !ok {
			c.Risk[level] = profile
		}
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.MarketData.Backend != "binance" && c.MarketData.Backend != "clickhouse" {
		return fmt.Errorf("market_data.backend must be 'binance' or 'clickhouse', got '%s'", c.MarketData.Backend)
	}
	if c.Model.ServiceURL == "" {
		return fmt.Errorf("model.service_url is required")
	}
	if c.Texts.ServiceURL == "" {
		return fmt.Errorf("texts.service_url is required")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Binance.StreamEnabled && len(c.Binance.Symbols) == 0 {
		return fmt.Errorf("binance.symbols cannot be empty when the stream is enabled")
	}
	if c.MarketData.Archive && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required when market_data.archive is enabled")
	}
	for level, profile := range c.Risk {
		sum := profile.Weights.Sentiment + profile.Weights.Technical + profile.Weights.Prediction
		if sum < 0.99 || sum > 1.01 {
			return fmt.Errorf("risk.%s weights must sum to 1, got %.2f", level, sum)
		}
	}
	return nil
}
