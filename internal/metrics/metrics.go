// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hitoshi/todosync/internal/model"
)

// MetricsCollector はメトリクス収集のインターフェース。
// HTTPブリッジと認証状態の購読から利用する。
type MetricsCollector interface {
	RecordUseCase(name string, err error)
	RecordAuthStateChange(signedIn bool)
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(route string, duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	useCases       *prometheus.CounterVec
	authState      *prometheus.CounterVec
	httpStatus     *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		useCases: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "todosync_usecase_total",
			Help: "ユースケース実行数（結果別）",
		}, []string{"usecase", "outcome"}),
		authState: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "todosync_auth_state_changes_total",
			Help: "認証状態の変化通知数",
		}, []string{"state"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "todosync_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "todosync_request_latency_seconds",
			Help:    "HTTPリクエストのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}

	reg.MustRegister(
		c.useCases,
		c.authState,
		c.httpStatus,
		c.requestLatency,
	)

	return c
}

// RecordUseCase はユースケースの実行結果を記録する。
// outcomeはsuccess、またはエラーコードを小文字にしたもの。
func (c *Collector) RecordUseCase(name string, err error) {
	c.useCases.WithLabelValues(name, Outcome(err)).Inc()
}

// RecordAuthStateChange は認証状態の変化通知を記録する。
func (c *Collector) RecordAuthStateChange(signedIn bool) {
	state := "signed_out"
	if signedIn {
		state = "signed_in"
	}
	c.authState.WithLabelValues(state).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はルートパターンごとのレイテンシを記録する。
func (c *Collector) RecordRequestLatency(route string, duration time.Duration) {
	c.requestLatency.WithLabelValues(route).Observe(duration.Seconds())
}

// Outcome はエラーをメトリクスのラベル値に変換する。
func Outcome(err error) string {
	if err == nil {
		return "success"
	}
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		return strings.ToLower(apiErr.Code)
	}
	return "internal_error"
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// compile-time interface check
var _ MetricsCollector = (*Collector)(nil)
