// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// オーケストレーション層とミドルウェアから利用する。
type MetricsCollector interface {
	RecordLookupSuccess()
	RecordLookupNotFound()
	RecordLookupFailure()
	RecordHTTPStatus(statusCode int)
	RecordRequestDuration(duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	lookupSuccess   prometheus.Counter
	lookupNotFound  prometheus.Counter
	lookupFail      prometheus.Counter
	httpStatus      *prometheus.CounterVec
	requestDuration prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		lookupSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "moviweb_omdb_lookup_success_total",
			Help: "OMDbメタデータ解決成功の合計数",
		}),
		lookupNotFound: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "moviweb_omdb_lookup_not_found_total",
			Help: "OMDbでタイトルが解決できなかった合計数",
		}),
		lookupFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "moviweb_omdb_lookup_fail_total",
			Help: "OMDb呼び出し失敗（接続・ステータス・パース）の合計数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "moviweb_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "moviweb_request_duration_seconds",
			Help:    "HTTPリクエスト処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.lookupSuccess,
		c.lookupNotFound,
		c.lookupFail,
		c.httpStatus,
		c.requestDuration,
	)

	return c
}

// RecordLookupSuccess はメタデータ解決成功を記録する。
func (c *Collector) RecordLookupSuccess() {
	c.lookupSuccess.Inc()
}

// RecordLookupNotFound はタイトル未解決を記録する。
func (c *Collector) RecordLookupNotFound() {
	c.lookupNotFound.Inc()
}

// RecordLookupFailure はOMDb呼び出し失敗を記録する。
func (c *Collector) RecordLookupFailure() {
	c.lookupFail.Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestDuration はリクエスト処理時間を記録する。
func (c *Collector) RecordRequestDuration(duration time.Duration) {
	c.requestDuration.Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
