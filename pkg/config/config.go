package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/creasty/defaults"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"StockLens/pkg/util"
)

type Config struct {
	Environment string           `yaml:"environment" default:"development"`
	Log         LogConfig        `yaml:"log"`
	Server      ServerConfig     `yaml:"server"`
	Metrics     MetricsConfig    `yaml:"metrics"`
	Indicators  IndicatorsConfig `yaml:"indicators"`
	History     HistoryConfig    `yaml:"history"`
	Yahoo       YahooConfig      `yaml:"yahoo"`
	Finnhub     FinnhubConfig    `yaml:"finnhub"`
	OpenAI      OpenAIConfig     `yaml:"openai"`
	Cache       CacheConfig      `yaml:"cache"`
	ClickHouse  ClickHouseConfig `yaml:"clickhouse"`
	Kafka       KafkaConfig      `yaml:"kafka"`
}

type LogConfig struct {
	Level     string `yaml:"level" default:"info"`
	Format    string `yaml:"format" default:"json"`
	Output    string `yaml:"output" default:"stdout"`
	Collector struct {
		Enabled   bool          `yaml:"enabled"`
		Topic     string        `yaml:"topic" default:"stocklens.logs"`
		Interval  time.Duration `yaml:"interval" default:"30s"`
		Threshold int           `yaml:"threshold" default:"100"`
	} `yaml:"collector"`
}

type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	RequestTimeout  time.Duration `yaml:"request_timeout" default:"15s"`
	SlowThreshold   time.Duration `yaml:"slow_threshold" default:"2s"`
	CORSOrigins     []string      `yaml:"cors_origins" default:"[\"*\"]"`
	RateLimit       struct {
		Enabled         bool    `yaml:"enabled" default:"true"`
		Capacity        float64 `yaml:"capacity" default:"5"`
		RefillPerSecond float64 `yaml:"refill_per_second" default:"0.2"`
	} `yaml:"rate_limit"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" default:"true"`
	Path    string `yaml:"path" default:"/metrics"`
}

type IndicatorsConfig struct {
	SMAWindow  int `yaml:"sma_window" default:"20"`
	EMASpan    int `yaml:"ema_span" default:"20"`
	MACDFast   int `yaml:"macd_fast" default:"12"`
	MACDSlow   int `yaml:"macd_slow" default:"26"`
	MACDSignal int `yaml:"macd_signal" default:"9"`
	RSIWindow  int `yaml:"rsi_window" default:"14"`
	MinPoints  int `yaml:"min_points" default:"30"`
}

type HistoryConfig struct {
	// Source is yahoo or clickhouse.
	Source  string `yaml:"source" default:"yahoo"`
	Archive bool   `yaml:"archive"`
}

type YahooConfig struct {
	ChartURL  string        `yaml:"chart_url" default:"https://query1.finance.yahoo.com"`
	QuoteURL  string        `yaml:"quote_url" default:"https://query2.finance.yahoo.com"`
	CookieURL string        `yaml:"cookie_url" default:"https://fc.yahoo.com"`
	UserAgent string        `yaml:"user_agent" default:"Mozilla/5.0"`
	Timeout   time.Duration `yaml:"timeout" default:"10s"`
	Attempts  int           `yaml:"attempts" default:"2"`
}

type FinnhubConfig struct {
	APIKey  string        `yaml:"api_key"`
	BaseURL string        `yaml:"base_url" default:"https://finnhub.io/api/v1"`
	Timeout time.Duration `yaml:"timeout" default:"10s"`
}

type OpenAIConfig struct {
	APIKey      string        `yaml:"api_key"`
	BaseURL     string        `yaml:"base_url"`
	Model       string        `yaml:"model" default:"gpt-3.5-turbo"`
	Temperature float64       `yaml:"temperature" default:"0.7"`
	Timeout     time.Duration `yaml:"timeout" default:"30s"`
	MaxRetries  int           `yaml:"max_retries" default:"2"`
}

type CacheConfig struct {
	Enabled         bool          `yaml:"enabled"`
	Backend         string        `yaml:"backend" default:"memory"`
	MemoryMaxSize   int           `yaml:"memory_max_size" default:"1000"`
	MemoryTTL       time.Duration `yaml:"memory_ttl" default:"1m"`
	HistoryTTL      time.Duration `yaml:"history_ttl" default:"5m"`
	FundamentalsTTL time.Duration `yaml:"fundamentals_ttl" default:"1h"`
	OptionsTTL      time.Duration `yaml:"options_ttl" default:"5m"`
	Redis           struct {
		Addr     string `yaml:"addr" default:"localhost:6379"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		PoolSize int    `yaml:"pool_size" default:"10"`
		Prefix   string `yaml:"prefix" default:"stocklens"`
	} `yaml:"redis"`
}

type ClickHouseConfig struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port" default:"9000"`
	Database         string        `yaml:"database" default:"stocklens"`
	User             string        `yaml:"user" default:"default"`
	Password         string        `yaml:"password"`
	UseHTTP          bool          `yaml:"use_http"`
	DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
	ReadTimeout      time.Duration `yaml:"read_timeout" default:"10s"`
	MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"30s"`
}

type KafkaConfig struct {
	Enabled      bool     `yaml:"enabled"`
	Brokers      []string `yaml:"brokers"`
	Topic        string   `yaml:"topic" default:"stocklens.signals"`
	RequiredAcks int      `yaml:"required_acks" default:"-1"`
	Compression  string   `yaml:"compression" default:"gzip"`
	Producer     struct {
		MaxAttempts  int           `yaml:"max_attempts" default:"3"`
		Linger       time.Duration `yaml:"linger" default:"100ms"`
		BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
		BatchSize    int           `yaml:"batch_size" default:"100"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
		ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
		Async        bool          `yaml:"async" default:"true"`
	} `yaml:"producer"`
}

// Default returns a configuration made only of default values.
func Default() (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	return &c, nil
}

// Load reads a YAML configuration file over the defaults. An empty path
// yields the defaults.
func Load(path string) (*Config, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML, then .env files (missing ones are
// ignored), then overrides with environment variables.
func LoadWithEnv(path string, envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("FINNHUB_API_KEY"); v != "" {
		c.Finnhub.APIKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.OpenAI.APIKey = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = util.SplitList(v)
		c.Kafka.Enabled = true
	}
	if v := os.Getenv("PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT=%q: %w", v, err)
		}
		c.Server.Port = p
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("HISTORY_SOURCE"); v != "" {
		c.History.Source = v
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535, got %d", c.Server.Port)
	}

	ind := c.Indicators
	if ind.SMAWindow < 1 || ind.EMASpan < 1 || ind.MACDFast < 1 || ind.MACDSignal < 1 || ind.RSIWindow < 1 {
		return fmt.Errorf("indicators windows must be positive")
	}
	if ind.MACDSlow <= ind.MACDFast {
		return fmt.Errorf("indicators.macd_slow (%d) must exceed macd_fast (%d)", ind.MACDSlow, ind.MACDFast)
	}
	if ind.MinPoints < 2 {
		return fmt.Errorf("indicators.min_points must be at least 2, got %d", ind.MinPoints)
	}

	switch c.History.Source {
	case "yahoo":
	case "clickhouse":
		if c.ClickHouse.Host == "" {
			return fmt.Errorf("clickhouse.host is required when history.source is clickhouse")
		}
	default:
		return fmt.Errorf("history.source must be 'yahoo' or 'clickhouse', got '%s'", c.History.Source)
	}
	if c.History.Archive && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required when history.archive is set")
	}

	if c.Cache.Enabled {
		switch c.Cache.Backend {
		case "memory", "redis", "layered":
		default:
			return fmt.Errorf("cache.backend must be 'memory', 'redis' or 'layered', got '%s'", c.Cache.Backend)
		}
	}

	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Log.Collector.Enabled && !c.Kafka.Enabled {
		return fmt.Errorf("log.collector requires kafka to be enabled")
	}
	return nil
}
