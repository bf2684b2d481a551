// Package metrics Prometheus 指标
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry 应用自己的指标注册表
var Registry = prometheus.NewRegistry()

var (
	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "lunaura",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lunaura",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lunaura",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "path"},
	)

	queueOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lunaura",
			Subsystem: "queue",
			Name:      "operations_total",
			Help:      "Queue operations by type and result.",
		},
		[]string{"op", "result"},
	)

	queueLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lunaura",
			Subsystem: "queue",
			Name:      "operation_duration_seconds",
			Help:      "Duration of queue operations.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"op"},
	)

	queueWait = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "lunaura",
			Subsystem: "queue",
			Name:      "wait_seconds",
			Help:      "Time a task spent waiting in the queue.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		},
	)

	generations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lunaura",
			Subsystem: "generation",
			Name:      "runs_total",
			Help:      "Reading generations by product and result.",
		},
		[]string{"product", "result"},
	)

	generationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lunaura",
			Subsystem: "generation",
			Name:      "duration_seconds",
			Help:      "Duration of reading generations.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 9),
		},
		[]string{"product"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		queueOps,
		queueLatency,
		queueWait,
		generations,
		generationDuration,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler 暴露 /metrics
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RequestStarted 请求开始
func RequestStarted() {
	httpInFlight.Inc()
}

// RequestFinished 请求结束，path 使用路由模板避免标签爆炸
func RequestFinished(method, path, status string, elapsed time.Duration) {
	httpInFlight.Dec()
	httpRequests.WithLabelValues(method, path, status).Inc()
	httpDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

// QueueOp 队列操作计数与耗时
func QueueOp(op string, err error, elapsed time.Duration) {
	queueOps.WithLabelValues(op, result(err)).Inc()
	queueLatency.WithLabelValues(op).Observe(elapsed.Seconds())
}

// QueueWait 任务排队时长
func QueueWait(d time.Duration) {
	queueWait.Observe(d.Seconds())
}

// Generation 生成任务计数与耗时
func Generation(product string, err error, elapsed time.Duration) {
	generations.WithLabelValues(product, result(err)).Inc()
	generationDuration.WithLabelValues(product).Observe(elapsed.Seconds())
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
