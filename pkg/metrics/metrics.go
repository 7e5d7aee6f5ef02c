package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 服务级 Prometheus 指标
// 所有方法对 nil 接收者安全，测试中可直接传 nil
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
	authEvents   *prometheus.CounterVec
	moderation   *prometheus.CounterVec
}

// New 在独立 Registry 上注册全部指标
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kutechnest",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "kutechnest",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		authEvents: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kutechnest",
			Name:      "auth_events_total",
			Help:      "Authentication events by kind and outcome.",
		}, []string{"event", "outcome"}),
		moderation: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kutechnest",
			Name:      "moderation_verdicts_total",
			Help:      "Content moderation verdicts by subject and outcome.",
		}, []string{"subject", "outcome"}),
	}
}

// ObserveHTTP 记录一次 HTTP 请求
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpLatency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// AuthEvent 记录认证事件，event 如 login/register/google/refresh/logout
func (m *Metrics) AuthEvent(event string, ok bool) {
	if m == nil {
		return
	}
	m.authEvents.WithLabelValues(event, outcome(ok, "success", "failure")).Inc()
}

// ModerationVerdict 记录审核结论，subject 为 post/company
func (m *Metrics) ModerationVerdict(subject string, accepted bool) {
	if m == nil {
		return
	}
	m.moderation.WithLabelValues(subject, outcome(accepted, "accepted", "rejected")).Inc()
}

// Handler /metrics 端点
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func outcome(ok bool, yes, no string) string {
	if ok {
		return yes
	}
	return no
}
