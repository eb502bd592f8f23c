package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// pattern configuration entries seen at load, by section and outcome
	CatalogEntries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adsdk_catalog_entries_total",
			Help: "Pattern configuration entries processed at load",
		},
		[]string{"section", "outcome"},
	)

	// content resolutions labelled by the precedence step that produced them
	Resolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adsdk_resolutions_total",
			Help: "Total content resolutions by source",
		},
		[]string{"source"},
	)

	// lifecycle transitions per surface type and target state
	LifecycleTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adsdk_lifecycle_transitions_total",
			Help: "Total ad lifecycle transitions",
		},
		[]string{"surface", "state"},
	)

	// taps handled by the SDK labelled by outcome (dispatched, rejected, no_device)
	Clicks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adsdk_clicks_total",
			Help: "Total ad taps handled",
		},
		[]string{"ad_type", "outcome"},
	)

	// click event deliveries labelled by outcome
	ClickDeliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adsdk_click_deliveries_total",
			Help: "Total click event deliveries",
		},
		[]string{"outcome"},
	)

	// latency of click event deliveries
	ClickDeliveryLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "adsdk_click_delivery_duration_seconds",
			Help:    "Duration of click event deliveries",
			Buckets: prometheus.DefBuckets,
		},
	)

	// total collector requests per endpoint, method and status code
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clickcollector_requests_total",
			Help: "Total API requests received",
		},
		[]string{"endpoint", "method", "status"},
	)

	// collector request latency in seconds per endpoint/method
	RequestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "clickcollector_request_duration_seconds",
			Help:    "Histogram of request latencies",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method"},
	)

	// click events accepted by the collector
	ClicksReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clickcollector_clicks_received_total",
			Help: "Total click events accepted",
		},
		[]string{"ad_type"},
	)

	// rate limit hits per scope
	RateLimitHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clickcollector_ratelimit_hits_total",
			Help: "Total rate limit hits",
		},
		[]string{"scope"},
	)

	// rate limit checks per scope
	RateLimitRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clickcollector_ratelimit_requests_total",
			Help: "Total rate limit checks",
		},
		[]string{"scope"},
	)

	// errors writing clicks to a backing store
	ClickStoreErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clickcollector_store_errors_total",
			Help: "Total click persistence errors",
		},
		[]string{"store"},
	)
)

func init() {
	// register all metrics
	prometheus.MustRegister(
		CatalogEntries,
		Resolutions,
		LifecycleTransitions,
		Clicks,
		ClickDeliveries,
		ClickDeliveryLatency,
		RequestCount,
		RequestLatency,
		ClicksReceived,
		RateLimitHits,
		RateLimitRequests,
		ClickStoreErrors,
	)
}
