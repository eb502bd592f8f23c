package api

import (
	"encoding/json"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/patrickwarner/adsdk/internal/analytics"
	"github.com/patrickwarner/adsdk/internal/logic"
	"github.com/patrickwarner/adsdk/internal/middleware"
	"github.com/patrickwarner/adsdk/internal/observability"
	"github.com/patrickwarner/adsdk/internal/tracking"
)

// ClickHandler handles POST /click requests carrying one click event in the
// SDK wire format.
func (s *Server) ClickHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "ClickHandler",
		trace.WithAttributes(
			attribute.String("http.method", "POST"),
			attribute.String("http.route", "/click"),
		))
	defer span.End()

	logger := middleware.LoggerFromRequest(r, s.Logger)

	start := time.Now()
	const endpoint = "/click"
	const method = "POST"

	if s.Clicks == nil {
		span.SetStatus(codes.Error, "click store unavailable")
		logger.Error("click store unavailable")
		s.record(endpoint, method, http.StatusInternalServerError, start)
		http.Error(w, "click store unavailable", http.StatusInternalServerError)
		return
	}

	var ev tracking.ClickEvent
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxClickBody)).Decode(&ev); err != nil {
		logger.Warn("invalid click body", zap.Error(err))
		s.record(endpoint, method, http.StatusBadRequest, start)
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if err := ev.Validate(); err != nil {
		logger.Warn("invalid click event", zap.Error(err))
		s.record(endpoint, method, http.StatusBadRequest, start)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	span.SetAttributes(
		attribute.String("ad_id", ev.AdID),
		attribute.String("ad_type", ev.AdType),
		attribute.String("pattern", ev.AdditionalData.Pattern),
	)

	if !s.Limiter.Allow(ev.DeviceID) {
		logger.Warn("click rate limited", zap.String("ad_id", ev.AdID))
		s.record(endpoint, method, http.StatusTooManyRequests, start)
		http.Error(w, "rate limited", http.StatusTooManyRequests)
		return
	}

	receivedAt := s.now()
	client := logic.ClassifyRequest(r, s.GeoIP)
	rec := analytics.NewClickRecord(ev, middleware.RequestIDFromContext(ctx), receivedAt)
	rec.DeviceType = client.DeviceType
	rec.OS = client.OS
	rec.Country = client.Country

	if err := s.Clicks.RecordClick(ctx, rec); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "record click")
		logger.Error("record click", zap.Error(err))
		s.Metrics.IncrementClickStoreErrors("clickhouse")
		s.record(endpoint, method, http.StatusInternalServerError, start)
		http.Error(w, "click store error", http.StatusInternalServerError)
		return
	}

	// The click is stored; a counter failure only degrades /stats.
	if s.Counters != nil {
		if _, err := s.Counters.IncrementPatternClick(ctx, ev.AdditionalData.Pattern, receivedAt); err != nil {
			logger.Warn("increment pattern counter", zap.Error(err))
			s.Metrics.IncrementClickStoreErrors("redis")
		}
	}

	if observability.ShouldSample(observability.GetSamplingRate()) {
		logger.Info("click",
			zap.String("ad_id", ev.AdID),
			zap.String("ad_type", ev.AdType),
			zap.String("pattern", ev.AdditionalData.Pattern),
			zap.String("style", ev.AdditionalData.Style),
			zap.String("device_type", client.DeviceType),
			zap.String("country", client.Country),
		)
	}
	s.Metrics.IncrementClicksReceived(ev.AdType)

	s.record(endpoint, method, http.StatusOK, start)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
