package middleware

import (
	"net/http"
	"time"

	"github.com/hitoshi/todosync/internal/metrics"
)

// NewMetricsMiddleware はステータスコードとルート別レイテンシを記録するミドルウェアを返す。
func NewMetricsMiddleware(collector metrics.MetricsCollector) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := newStatusRecorder(w)

			next.ServeHTTP(rec, r)

			collector.RecordHTTPStatus(rec.statusCode)
			collector.RecordRequestLatency(routePattern(r), time.Since(start))
		})
	}
}
