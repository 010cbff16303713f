package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	domrepo "StockLens/internal/domain/repository"
	"StockLens/internal/service/ratelimit"
	"StockLens/internal/usecase"
	"StockLens/pkg/cache"
	pkgch "StockLens/pkg/clickhouse"
	"StockLens/pkg/config"
	xhttp "StockLens/pkg/http"
	applogger "StockLens/pkg/logger"
)

// limiterIdle is how long a client bucket may sit unused before it is pruned.
const limiterIdle = 10 * time.Minute

// Resources are the long-lived dependencies App drains and closes on shutdown.
// Nil members are skipped.
type Resources struct {
	Stock      *usecase.StockUseCase
	Limiter    *ratelimit.Limiter
	Publisher  domrepo.SignalPublisher
	Cache      cache.Store
	ClickHouse *pkgch.Client
}

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	l          *applogger.Logger
	handler    xhttp.Handler
	res        Resources
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(cfg *config.Config, l *applogger.Logger, h xhttp.Handler, res Resources) *App {
	if l == nil {
		l = applogger.Nop()
	}
	return &App{cfg: cfg, l: l, handler: h, res: res}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metricsPath := ""
	if a.cfg.Metrics.Enabled {
		metricsPath = a.cfg.Metrics.Path
	}
	a.httpServer = xhttp.NewServer([]xhttp.Handler{a.handler},
		xhttp.WithHost(a.cfg.Server.Host),
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(a.cfg.Server.CORSOrigins),
		xhttp.WithMetricsPath(metricsPath),
		xhttp.WithSlowThreshold(a.cfg.Server.SlowThreshold),
		xhttp.WithLogger(a.l),
	)

	if a.res.Limiter != nil {
		go a.pruneLimiter(ctx)
	}

	if err := a.httpServer.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		return err
	}
	a.l.Info("stocklens started",
		applogger.String("env", a.cfg.Environment),
		applogger.String("history_source", a.cfg.History.Source),
		applogger.Bool("cache", a.cfg.Cache.Enabled),
		applogger.Bool("kafka", a.cfg.Kafka.Enabled),
	)

	<-ctx.Done()
	a.l.Info("shutdown signal received")
	return a.shutdown()
}

func (a *App) pruneLimiter(ctx context.Context) {
	t := time.NewTicker(time.Minute)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := a.res.Limiter.Prune(limiterIdle); n > 0 {
				a.l.Debug("rate limiter pruned", applogger.Int("buckets", n))
			}
		}
	}
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	a.l.Info("shutting down...")

	if err := a.httpServer.Stop(context.Background()); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
	}

	// in-flight signal publications still need the producer
	if a.res.Stock != nil {
		a.res.Stock.Wait()
	}
	// flush aggregated error logs before the producer goes away
	a.l.RemoveCollector()

	if a.res.Publisher != nil {
		if err := a.res.Publisher.Close(); err != nil {
			a.l.Warn("signal publisher close error", applogger.Error(err))
		}
	}
	if a.res.Cache != nil {
		if err := a.res.Cache.Close(); err != nil {
			a.l.Warn("cache close error", applogger.Error(err))
		}
	}
	if a.res.ClickHouse != nil {
		if err := a.res.ClickHouse.Close(); err != nil {
			a.l.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.l.Info("shutdown complete")
	return nil
}
