package adsdk

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/patrickwarner/adsdk/internal/catalog"
	"github.com/patrickwarner/adsdk/internal/observability"
)

// Executor runs callbacks on the application's foreground context.
type Executor interface {
	Post(fn func()) bool
}

type options struct {
	logger     *zap.Logger
	metrics    observability.MetricsRegistry
	catalog    *catalog.Catalog
	document   []byte
	executor   Executor
	now        func() time.Time
	httpClient *http.Client
}

// Option customizes SDK construction.
type Option func(*options)

// WithLogger sets the logger, overriding Config.LoggingEnabled.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMetrics sets the metrics registry. The default records nothing.
func WithMetrics(m observability.MetricsRegistry) Option {
	return func(o *options) { o.metrics = m }
}

// WithPrometheusMetrics records SDK metrics in the default Prometheus registry.
func WithPrometheusMetrics() Option {
	return WithMetrics(observability.NewPrometheusRegistry())
}

// WithConfigDocument parses doc instead of reading Config.PatternConfigPath.
func WithConfigDocument(doc []byte) Option {
	return func(o *options) { o.document = doc }
}

// WithCatalog uses an already loaded catalog.
func WithCatalog(c *catalog.Catalog) Option {
	return func(o *options) { o.catalog = c }
}

// WithExecutor delivers tracking callbacks through e instead of the SDK's own
// foreground loop.
func WithExecutor(e Executor) Option {
	return func(o *options) { o.executor = e }
}

// WithClock replaces time.Now for expiry checks and click timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithHTTPClient replaces the client built from the configured timeouts.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}
