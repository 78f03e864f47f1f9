package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 每个引擎一套独立 registry：用户端 / 管理端（以及测试里的临时引擎）
// 计数互不串，也不会在全局 registry 上撞名
type Metrics struct {
	reg      *prometheus.Registry
	reqTotal *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	m := &Metrics{reg: prometheus.NewRegistry()}
	m.reqTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ttech",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Count of HTTP requests",
		}, []string{"path", "method", "status"},
	)
	m.latency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ttech",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency of HTTP requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path", "method"},
	)
	m.reg.MustRegister(m.reqTotal, m.latency)
	return m
}

func (m *Metrics) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		// 按路由模板聚合，未匹配的请求退回原始路径
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		m.reqTotal.WithLabelValues(path, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.latency.WithLabelValues(path, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

// Exporter /metrics 抓取端点，只暴露本引擎的 registry
func (m *Metrics) Exporter() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
