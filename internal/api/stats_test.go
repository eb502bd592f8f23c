package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/patrickwarner/adsdk/internal/db"
	"github.com/patrickwarner/adsdk/internal/logic/ratelimit"
)

func (e *testEnv) get(target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestStatsHandler_Today(t *testing.T) {
	env := newTestEnv(t, ratelimit.Config{})
	require.Equal(t, http.StatusOK, env.post(clickBody(t, "banner_1", "dev-1", "Direct Harm Attack")).Code)
	require.Equal(t, http.StatusOK, env.post(clickBody(t, "banner_2", "dev-2", "Direct Harm Attack")).Code)
	require.Equal(t, http.StatusOK, env.post(clickBody(t, "banner_3", "dev-3", "Benign Control")).Code)

	rec := env.get("/stats")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp StatsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "2026-05-04", resp.Date)
	assert.Equal(t, map[string]int64{"Direct Harm Attack": 2, "Benign Control": 1}, resp.Patterns)
	assert.Equal(t, int64(3), resp.Total)
}

func TestStatsHandler_Date(t *testing.T) {
	env := newTestEnv(t, ratelimit.Config{})
	env.redis.HSet(db.DailyKey(testNow.AddDate(0, 0, -1)), "Benign Control", "4")

	rec := env.get("/stats?date=2026-05-03")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp StatsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(4), resp.Total)

	assert.Equal(t, http.StatusBadRequest, env.get("/stats?date=yesterday").Code)
}

func TestStatsHandler_Unavailable(t *testing.T) {
	s := NewServer(zaptest.NewLogger(t), nil, nil, nil, nil, nil)
	rec := httptest.NewRecorder()
	s.StatsHandler(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	env := newTestEnv(t, ratelimit.Config{})
	env.redis.Close()
	assert.Equal(t, http.StatusInternalServerError, env.get("/stats").Code)
}

func TestHealthHandler(t *testing.T) {
	env := newTestEnv(t, ratelimit.Config{})
	rec := env.get("/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Equal(t, 1, env.metrics.Count("requests", "/health", "GET", "200"))
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, ratelimit.Config{})
	rec := env.get("/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
}
