package api

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/patrickwarner/adsdk/internal/middleware"
)

// StatsResponse is the body of GET /stats.
type StatsResponse struct {
	Date     string           `json:"date"`
	Patterns map[string]int64 `json:"patterns"`
	Total    int64            `json:"total"`
}

// StatsHandler returns the per-pattern click counts for one UTC day, today
// unless ?date=YYYY-MM-DD is given.
func (s *Server) StatsHandler(w http.ResponseWriter, r *http.Request) {
	logger := middleware.LoggerFromRequest(r, s.Logger)
	start := time.Now()
	const endpoint = "/stats"
	const method = "GET"

	day := s.now().UTC()
	if v := r.URL.Query().Get("date"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			s.record(endpoint, method, http.StatusBadRequest, start)
			http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		day = d
	}

	if s.Counters == nil {
		s.record(endpoint, method, http.StatusServiceUnavailable, start)
		http.Error(w, "stats unavailable", http.StatusServiceUnavailable)
		return
	}
	counts, err := s.Counters.PatternClickCounts(r.Context(), day)
	if err != nil {
		logger.Error("read pattern counters", zap.Error(err))
		s.Metrics.IncrementClickStoreErrors("redis")
		s.record(endpoint, method, http.StatusInternalServerError, start)
		http.Error(w, "stats error", http.StatusInternalServerError)
		return
	}

	resp := StatsResponse{Date: day.Format("2006-01-02"), Patterns: counts}
	for _, n := range counts {
		resp.Total += n
	}
	s.record(endpoint, method, http.StatusOK, start)
	writeJSON(w, http.StatusOK, resp)
}
