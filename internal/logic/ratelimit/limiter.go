package ratelimit

import (
	"fmt"
	"sync"
	"time"

	"github.com/patrickwarner/adsdk/internal/observability"
)

// Scope labels the rate limiting metrics of a limiter. Device IDs are never
// used as metric labels.
const ScopeDevice = "device"

// KeyedLimiter gives every key, typically a device ID, its own token bucket,
// created lazily on first access.
//
// Example usage:
//
//	limiter := NewKeyedLimiter(Config{Capacity: 20, RefillRate: 2, Enabled: true}, ScopeDevice, metrics)
//	if !limiter.Allow(event.DeviceID) {
//	    // reply 429
//	}
type KeyedLimiter struct {
	buckets map[string]*TokenBucket
	mu      sync.RWMutex // Protects the buckets map
	config  Config
	scope   string
	metrics observability.MetricsRegistry
	now     func() time.Time
}

// Config holds the configuration for rate limiting.
type Config struct {
	Capacity   int  // Token bucket capacity (burst allowance)
	RefillRate int  // Tokens added per second (sustained rate)
	Enabled    bool // Whether rate limiting is active
}

// NewKeyedLimiter creates a limiter that records metrics under scope.
func NewKeyedLimiter(config Config, scope string, metrics observability.MetricsRegistry) *KeyedLimiter {
	if metrics == nil {
		metrics = observability.NewNoOpRegistry()
	}
	return &KeyedLimiter{
		buckets: make(map[string]*TokenBucket),
		config:  config,
		scope:   scope,
		metrics: metrics,
		now:     time.Now,
	}
}

// Allow reports whether a request for key should be processed. It always
// returns true when rate limiting is disabled.
func (l *KeyedLimiter) Allow(key string) bool {
	if !l.config.Enabled {
		return true
	}

	l.metrics.IncrementRateLimitRequests(l.scope)

	l.mu.RLock()
	bucket, exists := l.buckets[key]
	l.mu.RUnlock()

	if !exists {
		// Double-checked locking pattern to avoid race conditions
		l.mu.Lock()
		bucket, exists = l.buckets[key]
		if !exists {
			bucket = newTokenBucket(l.config.Capacity, l.config.RefillRate, l.now)
			l.buckets[key] = bucket
		}
		l.mu.Unlock()
	}

	allowed := bucket.Allow()
	if !allowed {
		l.metrics.IncrementRateLimitHits(l.scope)
	}
	return allowed
}

// Evict drops buckets that have not been used for idle and returns how many
// were removed. Devices come and go, so the collector evicts periodically.
func (l *KeyedLimiter) Evict(idle time.Duration) int {
	cutoff := l.now().Add(-idle)
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for key, bucket := range l.buckets {
		if bucket.idleSince().Before(cutoff) {
			delete(l.buckets, key)
			n++
		}
	}
	return n
}

// Len returns the number of tracked keys.
func (l *KeyedLimiter) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.buckets)
}

// GetStats returns rate limiting statistics for all tracked keys.
func (l *KeyedLimiter) GetStats() map[string]RateLimitStats {
	l.mu.RLock()
	defer l.mu.RUnlock()

	stats := make(map[string]RateLimitStats, len(l.buckets))
	for key, bucket := range l.buckets {
		hits, total := bucket.Stats()
		hitRate := 0.0
		if total > 0 {
			hitRate = float64(hits) / float64(total)
		}
		stats[key] = RateLimitStats{
			Key:     key,
			Hits:    hits,
			Total:   total,
			HitRate: hitRate,
		}
	}
	return stats
}

// RateLimitStats contains statistics about rate limiting for a single key.
type RateLimitStats struct {
	Key     string  `json:"key"`
	Hits    int64   `json:"hits"`     // Number of rate limited requests
	Total   int64   `json:"total"`    // Total number of requests processed
	HitRate float64 `json:"hit_rate"` // Share of requests rate limited (0.0-1.0)
}

// String returns a human-readable representation of the rate limit statistics.
func (s RateLimitStats) String() string {
	return fmt.Sprintf("%s: %d/%d hits (%.2f%%)", s.Key, s.Hits, s.Total, s.HitRate*100)
}
