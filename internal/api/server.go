// Package api serves the click collector: the HTTP endpoint that receives
// the events posted by the SDK's click dispatcher.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/patrickwarner/adsdk/internal/analytics"
	"github.com/patrickwarner/adsdk/internal/geoip"
	"github.com/patrickwarner/adsdk/internal/logic/ratelimit"
	"github.com/patrickwarner/adsdk/internal/middleware"
	"github.com/patrickwarner/adsdk/internal/observability"
)

var tracer = observability.Tracer("api")

// maxClickBody bounds the size of a posted click event.
const maxClickBody = 64 << 10

// PatternCounter keeps per-day click counts for each attack pattern.
type PatternCounter interface {
	IncrementPatternClick(ctx context.Context, pattern string, at time.Time) (int64, error)
	PatternClickCounts(ctx context.Context, day time.Time) (map[string]int64, error)
}

// Server groups dependencies for HTTP handlers.
type Server struct {
	Logger   *zap.Logger
	Clicks   analytics.ClickStore
	Counters PatternCounter // optional
	GeoIP    *geoip.GeoIP   // optional
	Limiter  *ratelimit.KeyedLimiter
	Metrics  observability.MetricsRegistry

	now func() time.Time
}

// NewServer constructs a Server. A nil limiter disables rate limiting and a
// nil metrics registry records nothing.
func NewServer(logger *zap.Logger, clicks analytics.ClickStore, counters PatternCounter, geo *geoip.GeoIP, limiter *ratelimit.KeyedLimiter, metrics observability.MetricsRegistry) *Server {
	if metrics == nil {
		metrics = observability.NewNoOpRegistry()
	}
	if limiter == nil {
		limiter = ratelimit.NewKeyedLimiter(ratelimit.Config{}, ratelimit.ScopeDevice, metrics)
	}
	return &Server{
		Logger:   logger,
		Clicks:   clicks,
		Counters: counters,
		GeoIP:    geo,
		Limiter:  limiter,
		Metrics:  metrics,
		now:      time.Now,
	}
}

// Router returns the collector routes with request logging middleware.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.WithRequestID)
	r.Use(middleware.WithTraceLogger(s.Logger))

	r.HandleFunc("/click", s.ClickHandler).Methods("POST")
	r.HandleFunc("/stats", s.StatsHandler).Methods("GET")
	r.HandleFunc("/health", s.HealthHandler).Methods("GET")
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// record finishes the request metrics for one handler invocation.
func (s *Server) record(endpoint, method string, status int, start time.Time) {
	s.Metrics.IncrementRequests(endpoint, method, strconv.Itoa(status))
	s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
}

// helper function to write JSON response
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
