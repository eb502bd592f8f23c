package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/patrickwarner/adsdk/internal/observability"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func TestTokenBucket_Allow(t *testing.T) {
	bucket := NewTokenBucket(5, 1) // 5 tokens, refill 1 per second

	for i := 0; i < 5; i++ {
		if !bucket.Allow() {
			t.Errorf("Expected request %d to be allowed", i+1)
		}
	}

	if bucket.Allow() {
		t.Error("Expected 6th request to be blocked")
	}

	hits, total := bucket.Stats()
	if hits != 1 {
		t.Errorf("Expected 1 hit, got %d", hits)
	}
	if total != 6 {
		t.Errorf("Expected 6 total requests, got %d", total)
	}
}

func TestTokenBucket_Refill(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	bucket := newTokenBucket(2, 10, clock.Now)

	bucket.Allow()
	bucket.Allow()
	assert.False(t, bucket.Allow())

	clock.Advance(200 * time.Millisecond) // 0.2s * 10 tokens/sec = 2 tokens
	assert.True(t, bucket.Allow())
	assert.True(t, bucket.Allow())
	assert.False(t, bucket.Allow())

	// Refill never exceeds capacity.
	clock.Advance(time.Hour)
	assert.True(t, bucket.Allow())
	assert.True(t, bucket.Allow())
	assert.False(t, bucket.Allow())
}

func TestKeyedLimiter_PerKeyBuckets(t *testing.T) {
	metrics := observability.NewMockMetricsRegistry()
	l := NewKeyedLimiter(Config{Capacity: 2, RefillRate: 1, Enabled: true}, ScopeDevice, metrics)
	clock := &fakeClock{t: time.Unix(1000, 0)}
	l.now = clock.Now

	assert.True(t, l.Allow("dev-a"))
	assert.True(t, l.Allow("dev-a"))
	assert.False(t, l.Allow("dev-a"))
	assert.True(t, l.Allow("dev-b"))

	assert.Equal(t, 4, metrics.Count("ratelimit_requests", ScopeDevice))
	assert.Equal(t, 1, metrics.Count("ratelimit_hits", ScopeDevice))

	stats := l.GetStats()
	assert.Equal(t, int64(1), stats["dev-a"].Hits)
	assert.Equal(t, int64(3), stats["dev-a"].Total)
	assert.InDelta(t, 1.0/3.0, stats["dev-a"].HitRate, 1e-9)
	assert.Equal(t, "dev-a: 1/3 hits (33.33%)", stats["dev-a"].String())
}

func TestKeyedLimiter_Disabled(t *testing.T) {
	metrics := observability.NewMockMetricsRegistry()
	l := NewKeyedLimiter(Config{Capacity: 1, RefillRate: 1, Enabled: false}, ScopeDevice, metrics)
	for i := 0; i < 10; i++ {
		assert.True(t, l.Allow("dev"))
	}
	assert.Equal(t, 0, l.Len())
	assert.Equal(t, 0, metrics.Count("ratelimit_requests", ScopeDevice))
}

func TestKeyedLimiter_Evict(t *testing.T) {
	l := NewKeyedLimiter(Config{Capacity: 1, RefillRate: 1, Enabled: true}, ScopeDevice, nil)
	clock := &fakeClock{t: time.Unix(1000, 0)}
	l.now = clock.Now

	l.Allow("old")
	clock.Advance(10 * time.Minute)
	l.Allow("fresh")

	assert.Equal(t, 1, l.Evict(5*time.Minute))
	assert.Equal(t, 1, l.Len())
	_, ok := l.GetStats()["fresh"]
	assert.True(t, ok)
}

func TestKeyedLimiter_Concurrent(t *testing.T) {
	l := NewKeyedLimiter(Config{Capacity: 50, RefillRate: 0, Enabled: true}, ScopeDevice, nil)
	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow("shared") {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, allowed)
}
