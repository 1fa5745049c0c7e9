package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/petlink/pkg/prometheus"
	prom "github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics HTTP 服务指标
type HTTPMetrics struct {
	RequestsTotal   *prom.CounterVec
	RequestDuration *prom.HistogramVec
}

// NewHTTPMetrics 在给定客户端上注册 HTTP 指标
func NewHTTPMetrics(c *prometheus.Client) *HTTPMetrics {
	return &HTTPMetrics{
		RequestsTotal: c.MustNewCounter("http_requests_total",
			"Total number of HTTP requests.", []string{"path", "method", "status"}),
		RequestDuration: c.MustNewHistogram("http_request_duration_seconds",
			"HTTP request latency in seconds.", []string{"path", "method"}, prom.DefBuckets),
	}
}

// Metrics 接口监控中间件
func Metrics(m *HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath() // 路由定义的路径，避免高基数
		if path == "" {
			path = "unknown"
		}
		status := strconv.Itoa(c.Writer.Status())
		m.RequestsTotal.WithLabelValues(path, c.Request.Method, status).Inc()
		m.RequestDuration.WithLabelValues(path, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}
