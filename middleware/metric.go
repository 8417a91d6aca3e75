package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HttpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HttpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)

	SalesRecordedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sales_recorded_total",
			Help: "Sales successfully recorded with stock deducted",
		},
	)

	SalesReversedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sales_reversed_total",
			Help: "Sales deleted with stock restored",
		},
	)

	InsufficientStockTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "insufficient_stock_total",
			Help: "Sale attempts rejected because stock did not cover the recipe",
		},
	)
)

func InitMetrics() {
	prometheus.MustRegister(HttpRequestsTotal, HttpRequestDuration,
		SalesRecordedTotal, SalesReversedTotal, InsufficientStockTotal)
}

func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)

		path := c.FullPath()
		if path == "" {
			path = "undefined"
		}

		HttpRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		HttpRequestDuration.WithLabelValues(path).Observe(duration.Seconds())
	}
}
