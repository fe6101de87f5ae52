package middleware

import (
	"net/http"
	"time"

	"github.com/HammerMeetNail/combohub/internal/metrics"
)

// RequestMetrics records request latency labelled by the matched route
// pattern. It must wrap the ServeMux directly so the pattern is visible on
// the request after routing.
type RequestMetrics struct {
	metrics *metrics.Metrics
}

func NewRequestMetrics(m *metrics.Metrics) *RequestMetrics {
	return &RequestMetrics{metrics: m}
}

func (rm *RequestMetrics) Apply(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		rm.metrics.ObserveRequest(r.Method, route, rec.statusCode(), time.Since(start))
	})
}
