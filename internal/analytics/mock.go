package analytics

import (
	"context"
	"sync"
)

var _ ClickStore = (*MockAnalytics)(nil)

// MockAnalytics is an in-memory ClickStore for testing
type MockAnalytics struct {
	mu     sync.Mutex
	clicks []ClickRecord
	// Err, when set, is returned from every call.
	Err error
}

// NewMockAnalytics creates a new mock analytics instance
func NewMockAnalytics() *MockAnalytics {
	return &MockAnalytics{}
}

// RecordClick stores rec in memory.
func (m *MockAnalytics) RecordClick(ctx context.Context, rec ClickRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.clicks = append(m.clicks, rec)
	return nil
}

// ClicksByPattern returns stored clicks for pattern, newest first.
func (m *MockAnalytics) ClicksByPattern(ctx context.Context, pattern string, limit int) ([]ClickRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var out []ClickRecord
	for i := len(m.clicks) - 1; i >= 0; i-- {
		if m.clicks[i].Pattern != pattern {
			continue
		}
		out = append(out, m.clicks[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// Clicks returns a copy of every stored click.
func (m *MockAnalytics) Clicks() []ClickRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ClickRecord(nil), m.clicks...)
}
