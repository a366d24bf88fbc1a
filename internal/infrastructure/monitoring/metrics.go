// Package monitoring 请求计数、连接数等运行指标，以 Prometheus 格式暴露
package monitoring

import (
	"fmt"
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"room_chat_server/internal/dto/respond"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "room_chat"

// Metrics 服务运行指标
// 每个实例持有独立的 Registry，测试中可以重复创建
type Metrics struct {
	registry *prometheus.Registry
	start    time.Time

	requests    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	connections prometheus.Gauge
	dropped     prometheus.Counter

	totalRequests atomic.Uint64
	errorRequests atomic.Uint64
}

// New 创建并注册所有指标
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		start:    time.Now(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ws_connections",
			Help:      "Open WebSocket connections.",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ws_dropped_events_total",
			Help:      "Outbound events dropped because a connection buffer was full.",
		}),
	}
	m.registry.MustRegister(
		m.requests,
		m.duration,
		m.connections,
		m.dropped,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Middleware 统计每个 HTTP 请求，状态码 >= 400 计为错误
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		m.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		m.duration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())

		m.totalRequests.Add(1)
		if status >= http.StatusBadRequest {
			m.errorRequests.Add(1)
		}
	}
}

// Handler /metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ConnectionOpened 实现 websocket.ConnectionObserver
func (m *Metrics) ConnectionOpened() { m.connections.Inc() }

// ConnectionClosed 实现 websocket.ConnectionObserver
func (m *Metrics) ConnectionClosed() { m.connections.Dec() }

// EventDropped 实现 websocket.ConnectionObserver
func (m *Metrics) EventDropped() { m.dropped.Inc() }

// Uptime 进程启动至今
func (m *Metrics) Uptime() time.Duration {
	return time.Since(m.start)
}

// Snapshot /health 使用的计数与内存占用
func (m *Metrics) Snapshot() respond.HealthMetrics {
	total := m.totalRequests.Load()
	errs := m.errorRequests.Load()
	rate := 0.0
	if total > 0 {
		rate = float64(errs) / float64(total) * 100
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return respond.HealthMetrics{
		Requests:  total,
		Errors:    errs,
		ErrorRate: fmt.Sprintf("%.2f%%", rate),
		Memory: respond.MemoryMetric{
			HeapAlloc: toMB(mem.HeapAlloc),
			HeapSys:   toMB(mem.HeapSys),
			Sys:       toMB(mem.Sys),
		},
	}
}

func toMB(b uint64) string {
	return fmt.Sprintf("%.2f MB", float64(b)/1024/1024)
}
