package observability

import "time"

// MetricsRegistry provides an interface for recording SDK and collector metrics.
// Components receive it by injection instead of touching the Prometheus globals.
type MetricsRegistry interface {
	// Catalog metrics
	IncrementCatalogEntries(section, outcome string)

	// Resolution metrics
	IncrementResolutions(source string)

	// Lifecycle metrics
	IncrementLifecycleTransitions(surface, state string)
	IncrementClicks(adType, outcome string)

	// Click delivery metrics
	IncrementClickDeliveries(outcome string)
	RecordClickDeliveryLatency(duration time.Duration)

	// HTTP Request metrics
	IncrementRequests(endpoint, method, status string)
	RecordRequestLatency(endpoint, method string, duration time.Duration)

	// Collector metrics
	IncrementClicksReceived(adType string)
	IncrementClickStoreErrors(store string)

	// Rate limiting metrics
	IncrementRateLimitRequests(scope string)
	IncrementRateLimitHits(scope string)
}

// PrometheusRegistry implements MetricsRegistry using the global Prometheus metrics
type PrometheusRegistry struct{}

// NewPrometheusRegistry creates a new PrometheusRegistry
func NewPrometheusRegistry() *PrometheusRegistry {
	return &PrometheusRegistry{}
}

func (r *PrometheusRegistry) IncrementCatalogEntries(section, outcome string) {
	CatalogEntries.WithLabelValues(section, outcome).Inc()
}

func (r *PrometheusRegistry) IncrementResolutions(source string) {
	Resolutions.WithLabelValues(source).Inc()
}

func (r *PrometheusRegistry) IncrementLifecycleTransitions(surface, state string) {
	LifecycleTransitions.WithLabelValues(surface, state).Inc()
}

func (r *PrometheusRegistry) IncrementClicks(adType, outcome string) {
	Clicks.WithLabelValues(adType, outcome).Inc()
}

func (r *PrometheusRegistry) IncrementClickDeliveries(outcome string) {
	ClickDeliveries.WithLabelValues(outcome).Inc()
}

func (r *PrometheusRegistry) RecordClickDeliveryLatency(duration time.Duration) {
	ClickDeliveryLatency.Observe(duration.Seconds())
}

// HTTP Request metrics
func (r *PrometheusRegistry) IncrementRequests(endpoint, method, status string) {
	RequestCount.WithLabelValues(endpoint, method, status).Inc()
}

func (r *PrometheusRegistry) RecordRequestLatency(endpoint, method string, duration time.Duration) {
	RequestLatency.WithLabelValues(endpoint, method).Observe(duration.Seconds())
}

func (r *PrometheusRegistry) IncrementClicksReceived(adType string) {
	ClicksReceived.WithLabelValues(adType).Inc()
}

func (r *PrometheusRegistry) IncrementClickStoreErrors(store string) {
	ClickStoreErrors.WithLabelValues(store).Inc()
}

// Rate limiting metrics
func (r *PrometheusRegistry) IncrementRateLimitRequests(scope string) {
	RateLimitRequests.WithLabelValues(scope).Inc()
}

func (r *PrometheusRegistry) IncrementRateLimitHits(scope string) {
	RateLimitHits.WithLabelValues(scope).Inc()
}

// NoOpRegistry implements MetricsRegistry with no-op methods
type NoOpRegistry struct{}

// NewNoOpRegistry creates a new NoOpRegistry
func NewNoOpRegistry() *NoOpRegistry {
	return &NoOpRegistry{}
}

func (r *NoOpRegistry) IncrementCatalogEntries(section, outcome string)     {}
func (r *NoOpRegistry) IncrementResolutions(source string)                  {}
func (r *NoOpRegistry) IncrementLifecycleTransitions(surface, state string) {}
func (r *NoOpRegistry) IncrementClicks(adType, outcome string)              {}
func (r *NoOpRegistry) IncrementClickDeliveries(outcome string)             {}
func (r *NoOpRegistry) RecordClickDeliveryLatency(duration time.Duration)   {}

// HTTP Request metrics
func (r *NoOpRegistry) IncrementRequests(endpoint, method, status string)                    {}
func (r *NoOpRegistry) RecordRequestLatency(endpoint, method string, duration time.Duration) {}

func (r *NoOpRegistry) IncrementClicksReceived(adType string)  {}
func (r *NoOpRegistry) IncrementClickStoreErrors(store string) {}

// Rate limiting metrics
func (r *NoOpRegistry) IncrementRateLimitRequests(scope string) {}
func (r *NoOpRegistry) IncrementRateLimitHits(scope string)     {}
