package di

import (
	"context"
	"fmt"
	"time"

	"StockLens/internal/domain/repository"
	"StockLens/internal/domain/service"
	"StockLens/internal/handler/api"
	internalrepo "StockLens/internal/repository"
	"StockLens/internal/service/finnhub"
	"StockLens/internal/service/ratelimit"
	"StockLens/internal/service/yahoo"
	"StockLens/internal/services/narrative"
	"StockLens/internal/services/technical"
	"StockLens/internal/usecase"
	"StockLens/pkg/cache"
	pkgch "StockLens/pkg/clickhouse"
	"StockLens/pkg/config"
	"StockLens/pkg/http/middleware"
	pkgkafka "StockLens/pkg/kafka"
	applogger "StockLens/pkg/logger"
	"StockLens/pkg/metrics"
	"StockLens/pkg/server"
)

// ProvideKafkaProducer creates a Kafka producer, or nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
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
	return producer, nil
}

// ProvideLogger creates the application logger. Error logs are aggregated to
// Kafka when the collector is enabled.
func ProvideLogger(cfg *config.Config, producer *pkgkafka.Producer) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Output:  cfg.Log.Output,
		Service: "stocklens",
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	if cfg.Log.Collector.Enabled && producer != nil {
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   cfg.Log.Collector.Interval,
			CountThreshold: cfg.Log.Collector.Threshold,
			Topic:          cfg.Log.Collector.Topic,
			Publisher:      producer,
		})
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(cfg *config.Config) repository.Metrics {
	if !cfg.Metrics.Enabled {
		return metrics.Noop{}
	}
	return metrics.New()
}

// ProvideClickHouseClient connects to ClickHouse when it serves or archives
// history, and nil otherwise.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if cfg.History.Source != "clickhouse" && !cfg.History.Archive {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithPool(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, internalrepo.HistorySchema(client.Database())); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideCacheStore builds the upstream response cache, or nil when caching
// is disabled.
func ProvideCacheStore(cfg *config.Config) (cache.Store, error) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}
	if cfg.Cache.Backend == "memory" {
		return cache.NewMemoryCache(cache.WithMemoryMaxSize(cfg.Cache.MemoryMaxSize)), nil
	}

	rc, err := cache.NewRedisCache(
		cache.WithRedisAddr(cfg.Cache.Redis.Addr),
		cache.WithRedisPassword(cfg.Cache.Redis.Password),
		cache.WithRedisDB(cfg.Cache.Redis.DB),
		cache.WithRedisPool(cfg.Cache.Redis.PoolSize, 2, 30*time.Second),
		cache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	if cfg.Cache.Backend == "redis" {
		return rc, nil
	}
	return cache.NewLayeredCache(rc,
		cache.WithLayeredMemorySize(cfg.Cache.MemoryMaxSize),
		cache.WithLayeredMemoryTTL(cfg.Cache.MemoryTTL),
	), nil
}

// ProvideMarketData assembles the market data chain: Yahoo, optionally
// archived to or replaced by ClickHouse for history, behind the cache.
func ProvideMarketData(
	cfg *config.Config,
	ch *pkgch.Client,
	store cache.Store,
	m repository.Metrics,
	l *applogger.Logger,
) repository.MarketData {
	var md repository.MarketData = yahoo.NewClient(yahoo.Config{
		ChartURL:  cfg.Yahoo.ChartURL,
		QuoteURL:  cfg.Yahoo.QuoteURL,
		CookieURL: cfg.Yahoo.CookieURL,
		UserAgent: cfg.Yahoo.UserAgent,
		Timeout:   cfg.Yahoo.Timeout,
		Attempts:  cfg.Yahoo.Attempts,
	}, yahoo.WithMetrics(m))

	if ch != nil {
		hs := internalrepo.NewCHHistoryStore(ch, "")
		hs.SetLogger(l)
		if cfg.History.Archive {
			md = internalrepo.WithHistoryArchive(md, hs, l)
		}
		if cfg.History.Source == "clickhouse" {
			md = internalrepo.WithHistorySource(md, hs)
		}
	}

	if store != nil {
		md = internalrepo.NewCachedMarketData(md, store, internalrepo.CacheTTL{
			History:      cfg.Cache.HistoryTTL,
			Fundamentals: cfg.Cache.FundamentalsTTL,
			Options:      cfg.Cache.OptionsTTL,
		}, l)
	}
	return md
}

// ProvideNewsProvider creates the Finnhub REST client.
func ProvideNewsProvider(cfg *config.Config, m repository.Metrics) repository.NewsProvider {
	return finnhub.New(cfg.Finnhub.APIKey, cfg.Finnhub.BaseURL, cfg.Finnhub.Timeout, m)
}

// ProvideNarrator creates the OpenAI narrator. It is disabled without an API key.
func ProvideNarrator(cfg *config.Config, l *applogger.Logger) service.Narrator {
	return narrative.NewOpenAINarrator(narrative.Config{
		APIKey:      cfg.OpenAI.APIKey,
		BaseURL:     cfg.OpenAI.BaseURL,
		Model:       cfg.OpenAI.Model,
		Temperature: cfg.OpenAI.Temperature,
		Timeout:     cfg.OpenAI.Timeout,
		MaxRetries:  cfg.OpenAI.MaxRetries,
	}, narrative.WithLogger(l))
}

// ProvideSignalPublisher forwards signals to Kafka, or drops them when Kafka
// is disabled.
func ProvideSignalPublisher(cfg *config.Config, producer *pkgkafka.Producer) repository.SignalPublisher {
	if producer == nil {
		return internalrepo.NoopPublisher{}
	}
	return internalrepo.NewKafkaSignalPublisher(producer, cfg.Kafka.Topic)
}

// ProvideRateLimiter creates the per-client limiter of the analysis
// endpoint, or nil when rate limiting is disabled.
func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	if !cfg.Server.RateLimit.Enabled {
		return nil
	}
	return ratelimit.New(cfg.Server.RateLimit.Capacity, cfg.Server.RateLimit.RefillPerSecond)
}

// ProvideStockUseCase creates the quote, indicator, history, fundamentals
// and analysis use case.
func ProvideStockUseCase(
	cfg *config.Config,
	md repository.MarketData,
	narrator service.Narrator,
	pub repository.SignalPublisher,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.StockUseCase {
	return usecase.NewStockUseCase(md, narrator, pub, m, usecase.StockConfig{
		Indicators: technicalConfig(cfg),
		MinPoints:  cfg.Indicators.MinPoints,
		Timeout:    cfg.Server.RequestTimeout,
	}, l)
}

// ProvideSentimentUseCase creates the sentiment fan-out use case.
func ProvideSentimentUseCase(
	cfg *config.Config,
	md repository.MarketData,
	news repository.NewsProvider,
	l *applogger.Logger,
) *usecase.SentimentUseCase {
	return usecase.NewSentimentUseCase(md, news, cfg.Server.RequestTimeout, l)
}

// ProvideStockHandler creates the HTTP handler.
func ProvideStockHandler(
	l *applogger.Logger,
	stock *usecase.StockUseCase,
	sentiment *usecase.SentimentUseCase,
	limiter *ratelimit.Limiter,
) *api.StockEchoHandler {
	var allower middleware.Allower
	if limiter != nil {
		allower = limiter
	}
	return api.NewStockEchoHandler(l, stock, sentiment, allower)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	h *api.StockEchoHandler,
	stock *usecase.StockUseCase,
	limiter *ratelimit.Limiter,
	pub repository.SignalPublisher,
	store cache.Store,
	ch *pkgch.Client,
) *server.App {
	return server.New(cfg, l, h, server.Resources{
		Stock:      stock,
		Limiter:    limiter,
		Publisher:  pub,
		Cache:      store,
		ClickHouse: ch,
	})
}

func technicalConfig(cfg *config.Config) technical.Config {
	return technical.Config{
		SMAWindow:  cfg.Indicators.SMAWindow,
		EMASpan:    cfg.Indicators.EMASpan,
		MACDFast:   cfg.Indicators.MACDFast,
		MACDSlow:   cfg.Indicators.MACDSlow,
		MACDSignal: cfg.Indicators.MACDSignal,
		RSIWindow:  cfg.Indicators.RSIWindow,
	}
}
