// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// AuthMetricsCollector は認証フローのメトリクス収集インターフェース。
// ハンドラー層から利用する。
type AuthMetricsCollector interface {
	RecordLoginInitiated()
	RecordCallbackSuccess()
	RecordCallbackFailure(reason string)
	RecordCallbackLatency(duration time.Duration)
	RecordSessionCreated()
}

// コールバック失敗理由のラベル値。
const (
	FailureReasonStateMismatch = "state_mismatch"
	FailureReasonMissingParams = "missing_params"
	FailureReasonProvider      = "provider"
	FailureReasonStore         = "store"
)

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	loginInitiated  prometheus.Counter
	callbackSuccess prometheus.Counter
	callbackFailure *prometheus.CounterVec
	callbackLatency prometheus.Histogram
	sessionsCreated prometheus.Counter
	httpStatus      *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		loginInitiated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "resenia_login_initiated_total",
			Help: "ログイン開始（IdPへのリダイレクト発行）の合計数",
		}),
		callbackSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "resenia_callback_success_total",
			Help: "OAuthコールバック成功の合計数",
		}),
		callbackFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "resenia_callback_failure_total",
			Help: "OAuthコールバック失敗の理由別合計数",
		}, []string{"reason"}),
		callbackLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "resenia_callback_latency_seconds",
			Help:    "OAuthコールバック処理のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		sessionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "resenia_sessions_created_total",
			Help: "発行されたセッションの合計数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "resenia_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.loginInitiated,
		c.callbackSuccess,
		c.callbackFailure,
		c.callbackLatency,
		c.sessionsCreated,
		c.httpStatus,
	)

	return c
}

// RecordLoginInitiated はログイン開始を記録する。
func (c *Collector) RecordLoginInitiated() {
	c.loginInitiated.Inc()
}

// RecordCallbackSuccess はコールバック成功を記録する。
func (c *Collector) RecordCallbackSuccess() {
	c.callbackSuccess.Inc()
}

// RecordCallbackFailure はコールバック失敗を理由付きで記録する。
func (c *Collector) RecordCallbackFailure(reason string) {
	c.callbackFailure.WithLabelValues(reason).Inc()
}

// RecordCallbackLatency はコールバック処理のレイテンシを記録する。
func (c *Collector) RecordCallbackLatency(duration time.Duration) {
	c.callbackLatency.Observe(duration.Seconds())
}

// RecordSessionCreated はセッション発行を記録する。
func (c *Collector) RecordSessionCreated() {
	c.sessionsCreated.Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
// ロギングミドルウェアのStatusObserverとして使用される。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// APIサーバーとは別ポートで待ち受けることを想定している。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
