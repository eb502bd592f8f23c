package observability

import (
	"strings"
	"sync"
	"time"
)

// MockMetricsRegistry records counter increments in memory so tests can assert
// on them. Keys are the metric name followed by its label values joined with
// "|", e.g. "clicks|banner|dispatched". Latency observations are counted only.
type MockMetricsRegistry struct {
	mu     sync.Mutex
	counts map[string]int
}

// NewMockMetricsRegistry returns an empty MockMetricsRegistry.
func NewMockMetricsRegistry() *MockMetricsRegistry {
	return &MockMetricsRegistry{counts: make(map[string]int)}
}

func (m *MockMetricsRegistry) inc(name string, labels ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.counts == nil {
		m.counts = make(map[string]int)
	}
	m.counts[strings.Join(append([]string{name}, labels...), "|")]++
}

// Count returns how many times the metric with the given labels was recorded.
func (m *MockMetricsRegistry) Count(name string, labels ...string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[strings.Join(append([]string{name}, labels...), "|")]
}

func (m *MockMetricsRegistry) IncrementCatalogEntries(section, outcome string) {
	m.inc("catalog_entries", section, outcome)
}

func (m *MockMetricsRegistry) IncrementResolutions(source string) {
	m.inc("resolutions", source)
}

func (m *MockMetricsRegistry) IncrementLifecycleTransitions(surface, state string) {
	m.inc("lifecycle_transitions", surface, state)
}

func (m *MockMetricsRegistry) IncrementClicks(adType, outcome string) {
	m.inc("clicks", adType, outcome)
}

func (m *MockMetricsRegistry) IncrementClickDeliveries(outcome string) {
	m.inc("click_deliveries", outcome)
}

func (m *MockMetricsRegistry) RecordClickDeliveryLatency(duration time.Duration) {
	m.inc("click_delivery_latency")
}

// HTTP Request metrics
func (m *MockMetricsRegistry) IncrementRequests(endpoint, method, status string) {
	m.inc("requests", endpoint, method, status)
}

func (m *MockMetricsRegistry) RecordRequestLatency(endpoint, method string, duration time.Duration) {
	m.inc("request_latency", endpoint, method)
}

func (m *MockMetricsRegistry) IncrementClicksReceived(adType string) {
	m.inc("clicks_received", adType)
}

func (m *MockMetricsRegistry) IncrementClickStoreErrors(store string) {
	m.inc("store_errors", store)
}

// Rate limiting metrics
func (m *MockMetricsRegistry) IncrementRateLimitRequests(scope string) {
	m.inc("ratelimit_requests", scope)
}

func (m *MockMetricsRegistry) IncrementRateLimitHits(scope string) {
	m.inc("ratelimit_hits", scope)
}

var (
	_ MetricsRegistry = (*PrometheusRegistry)(nil)
	_ MetricsRegistry = (*NoOpRegistry)(nil)
	_ MetricsRegistry = (*MockMetricsRegistry)(nil)
)
