// Package adsdk shows configurable ad surfaces whose content comes from a
// catalog of attack patterns and reports every tap to a click collector.
//
// An application initializes the SDK once, creates ad instances from the
// handle and drives each instance through LoadAd, Show and Click. Ad
// instances are not safe for concurrent use: run all operations on one
// goroutine, typically through SDK.Do, which is also where tracking callbacks
// are delivered.
package adsdk

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/patrickwarner/adsdk/internal/catalog"
	"github.com/patrickwarner/adsdk/internal/foreground"
	"github.com/patrickwarner/adsdk/internal/logic"
	"github.com/patrickwarner/adsdk/internal/models"
	"github.com/patrickwarner/adsdk/internal/observability"
	"github.com/patrickwarner/adsdk/internal/tracking"
)

// SDK is an initialized SDK handle. It owns the pattern catalog, the click
// dispatcher and the foreground loop.
type SDK struct {
	cfg        Config
	logger     *zap.Logger
	metrics    observability.MetricsRegistry
	catalog    *catalog.Catalog
	resolver   *logic.Resolver
	dispatcher *tracking.Dispatcher
	executor   Executor
	loop       *foreground.Loop // nil when the executor was supplied
	now        func() time.Time

	// inForeground counts SDK tasks and tracking callbacks currently running
	// on the executor.
	inForeground atomic.Int32

	mu     sync.Mutex
	closed bool
}

// foregroundExecutor marks work posted through it as running on the SDK's
// foreground context.
type foregroundExecutor struct{ s *SDK }

func (e foregroundExecutor) Post(fn func()) bool {
	return e.s.executor.Post(e.s.foregroundTask(fn))
}

func (s *SDK) foregroundTask(fn func()) func() {
	return func() {
		s.inForeground.Add(1)
		defer s.inForeground.Add(-1)
		fn()
	}
}

var (
	globalMu sync.Mutex
	global   *SDK
)

// Initialize creates the process-wide SDK. Calling it again while an SDK is
// running returns the existing handle and ignores cfg.
func Initialize(ctx context.Context, cfg Config, opts ...Option) (*SDK, error) {
	globalMu.Lock()
	defer globalMu.Unlock()

	if global != nil && !global.isClosed() {
		global.logger.Warn("ad sdk already initialized")
		return global, nil
	}
	sdk, err := New(ctx, cfg, opts...)
	if err != nil {
		return nil, err
	}
	global = sdk
	return sdk, nil
}

// Default returns the process-wide SDK, or nil if Initialize has not run or
// the SDK was shut down.
func Default() *SDK {
	globalMu.Lock()
	defer globalMu.Unlock()
	if global == nil || global.isClosed() {
		return nil
	}
	return global
}

// IsInitialized reports whether the process-wide SDK is available.
func IsInitialized() bool { return Default() != nil }

// Shutdown stops the process-wide SDK, if any.
func Shutdown() {
	if s := Default(); s != nil {
		s.Shutdown()
	}
}

// GetAttackPattern returns pattern i of the process-wide SDK's catalog.
func GetAttackPattern(i int) (models.AttackPattern, bool) {
	s := Default()
	if s == nil {
		return models.AttackPattern{}, false
	}
	return s.AttackPattern(i)
}

// AttackPatternCount returns the number of patterns in the process-wide SDK's
// catalog, or 0 when it is not initialized.
func AttackPatternCount() int {
	s := Default()
	if s == nil {
		return 0
	}
	return s.AttackPatternCount()
}

// New creates an SDK handle that is independent of the process-wide one.
// The pattern catalog is read synchronously before New returns. An unusable
// pattern document is logged and leaves the catalog empty; it is not an error.
func New(ctx context.Context, cfg Config, opts ...Option) (*SDK, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sdk config: %w", err)
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger
	if logger == nil {
		logger = zap.NewNop()
		if cfg.LoggingEnabled {
			l, err := observability.NewLogger(observability.LevelFromEnv(), "adsdk")
			if err != nil {
				return nil, fmt.Errorf("init logger: %w", err)
			}
			logger = l
		}
	}
	metrics := o.metrics
	if metrics == nil {
		metrics = observability.NewNoOpRegistry()
	}
	now := o.now
	if now == nil {
		now = time.Now
	}

	cat := o.catalog
	if cat == nil {
		var err error
		if o.document != nil {
			cat, err = catalog.Load(o.document, logger, metrics)
		} else {
			cat, err = catalog.LoadFile(cfg.PatternConfigPath, logger, metrics)
		}
		var ce *catalog.ConfigError
		if errors.As(err, &ce) {
			logger.Warn("pattern configuration unusable, using built-in content", zap.Error(err))
		}
	}

	s := &SDK{
		cfg:      cfg,
		logger:   logger,
		metrics:  metrics,
		catalog:  cat,
		resolver: logic.NewResolver(cat, logger, metrics),
		executor: o.executor,
		now:      now,
	}
	if s.executor == nil {
		s.loop = foreground.New(logger)
		s.executor = s.loop
	}

	d, err := tracking.NewDispatcher(tracking.Options{
		Endpoint:       cfg.ClickTrackingEndpoint,
		ConnectTimeout: cfg.ConnectTimeout,
		ReadTimeout:    cfg.ReadTimeout,
		Client:         o.httpClient,
		Executor:       foregroundExecutor{s},
		Logger:         logger,
		Metrics:        metrics,
	})
	if err != nil {
		if s.loop != nil {
			s.loop.Close()
		}
		return nil, err
	}
	s.dispatcher = d

	logger.Info("ad sdk initialized",
		zap.String("endpoint", cfg.ClickTrackingEndpoint),
		zap.Int("patterns", cat.PatternCount()),
		zap.Duration("connect_timeout", cfg.ConnectTimeout),
		zap.Duration("read_timeout", cfg.ReadTimeout),
	)
	return s, nil
}

// Shutdown waits for in-flight click deliveries, runs their callbacks and
// stops the foreground loop. Ads created from this handle can no longer load.
// Called from an SDK task or tracking callback, it stops the loop without
// waiting for it; callbacks still queued run after Shutdown returns.
func (s *SDK) Shutdown() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.dispatcher.Close()
	if s.loop != nil {
		if s.inForeground.Load() > 0 {
			s.loop.Stop()
		} else {
			s.loop.Close()
		}
	}
	s.logger.Info("ad sdk shut down")
	_ = s.logger.Sync()
}

func (s *SDK) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Config returns the configuration the SDK was created with.
func (s *SDK) Config() Config { return s.cfg }

// Logger returns the SDK logger.
func (s *SDK) Logger() *zap.Logger { return s.logger }

// AttackPattern returns the catalog pattern at index i.
func (s *SDK) AttackPattern(i int) (models.AttackPattern, bool) {
	return s.catalog.Pattern(i)
}

// AttackPatternCount returns the number of catalog patterns.
func (s *SDK) AttackPatternCount() int { return s.catalog.PatternCount() }

// AttackPatterns returns every catalog pattern in index order.
func (s *SDK) AttackPatterns() []models.AttackPattern { return s.catalog.Patterns() }

// DefaultContent returns the catalog's configured default for a surface type.
func (s *SDK) DefaultContent(surface SurfaceType) (ContentVariant, bool) {
	return s.catalog.Default(surface)
}

// Resolve runs content resolution without creating an ad.
func (s *SDK) Resolve(surface SurfaceType, explicitIndex *int, packageName string) Resolution {
	return s.resolver.Resolve(surface, explicitIndex, packageName)
}

// Post queues fn on the foreground executor.
func (s *SDK) Post(fn func()) bool { return s.executor.Post(s.foregroundTask(fn)) }

// Do runs fn on the SDK's foreground loop and waits for it. With a custom
// executor, fn is posted and Do waits for it in the same way.
func (s *SDK) Do(fn func()) bool {
	if s.loop != nil {
		return s.loop.Do(s.foregroundTask(fn))
	}
	done := make(chan struct{})
	if !s.executor.Post(s.foregroundTask(func() {
		defer close(done)
		fn()
	})) {
		return false
	}
	<-done
	return true
}

// Flush waits for queued foreground work, including tracking callbacks
// already handed to the executor.
func (s *SDK) Flush() {
	s.Do(func() {})
}

// WaitForDeliveries blocks until all click deliveries started so far have
// completed and their callbacks have run.
func (s *SDK) WaitForDeliveries() {
	s.dispatcher.Wait()
	s.Flush()
}

// NewBanner creates a banner ad bound to s.
func (s *SDK) NewBanner() *Ad { return newAd(s, Banner) }

// NewInterstitial creates an interstitial ad bound to s.
func (s *SDK) NewInterstitial() *Ad { return newAd(s, Interstitial) }

// NewAppOpen creates an app-open ad bound to s.
func (s *SDK) NewAppOpen() *Ad { return newAd(s, AppOpen) }

// NewAd creates an ad of the given surface type bound to s.
func (s *SDK) NewAd(surface SurfaceType) *Ad { return newAd(s, surface) }
