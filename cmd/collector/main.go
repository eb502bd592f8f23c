// Command collector receives the click events posted by the ad SDK, stores
// them in ClickHouse and keeps per-pattern daily counters in Redis.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/patrickwarner/adsdk/internal/analytics"
	"github.com/patrickwarner/adsdk/internal/api"
	"github.com/patrickwarner/adsdk/internal/config"
	"github.com/patrickwarner/adsdk/internal/db"
	"github.com/patrickwarner/adsdk/internal/geoip"
	"github.com/patrickwarner/adsdk/internal/logic/ratelimit"
	"github.com/patrickwarner/adsdk/internal/observability"
)

const limiterIdle = 10 * time.Minute

func main() {
	cfg := config.Load()

	logger, err := observability.InitLoggerWithService(cfg.ServiceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}

	defer func() {
		if err := logger.Sync(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to sync logger: %v\n", err)
		}
	}()

	if err := run(logger, cfg); err != nil {
		logger.Error("collector error", zap.Error(err))
		os.Exit(1)
	}
}

func run(logger *zap.Logger, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.TracingEnabled {
		shutdown, err := observability.InitTracing(ctx, logger, cfg.ServiceName, cfg.TempoEndpoint, cfg.TracingSampleRate)
		if err != nil {
			return fmt.Errorf("init tracing: %w", err)
		}
		defer shutdown()
	}

	metricsRegistry := observability.NewPrometheusRegistry()

	clicks, err := analytics.InitClickHouse(cfg.ClickHouseDSN,
		cfg.CHMaxOpenConns, cfg.CHMaxIdleConns, cfg.CHConnMaxLifetime, cfg.CHConnMaxIdleTime)
	if err != nil {
		return fmt.Errorf("failed to connect clickhouse: %w", err)
	}
	defer clicks.Close()

	// Counters only back /stats, so the collector runs without them.
	var counters api.PatternCounter
	store, err := db.InitRedis(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, pattern stats disabled", zap.Error(err))
	} else {
		defer store.Close()
		counters = store
	}

	geoSvc, err := geoip.Init(cfg.GeoIPDB)
	if err != nil {
		logger.Warn("geoip database unavailable, country lookup disabled",
			zap.String("path", cfg.GeoIPDB), zap.Error(err))
	}
	defer func() { _ = geoSvc.Close() }()

	limiter := ratelimit.NewKeyedLimiter(ratelimit.Config{
		Capacity:   cfg.RateLimitCapacity,
		RefillRate: cfg.RateLimitRefillRate,
		Enabled:    cfg.RateLimitEnabled,
	}, ratelimit.ScopeDevice, metricsRegistry)

	srvDeps := api.NewServer(logger, clicks, counters, geoSvc, limiter, metricsRegistry)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      otelhttp.NewHandler(srvDeps.Router(), "collector"),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	logger.Info("Click collector running",
		zap.String("addr", srv.Addr),
		zap.Bool("rate_limit", cfg.RateLimitEnabled))

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("listen: %w", err)
		}
	}()

	ticker := time.NewTicker(time.Minute)
	go func() {
		for {
			select {
			case <-ticker.C:
				if n := limiter.Evict(limiterIdle); n > 0 {
					logger.Debug("evicted idle rate limit buckets", zap.Int("count", n))
				}
				observability.LogSamplingStats(logger)
				observability.ResetSamplingStats()
			case <-ctx.Done():
				ticker.Stop()
				return
			}
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}
