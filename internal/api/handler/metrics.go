package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "invoicehub_requests_total",
		Help: "Total HTTP requests by method, path, and response status.",
	}, []string{"method", "path", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "invoicehub_request_duration_seconds",
		Help:    "Request duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	authAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "invoicehub_auth_attempts_total",
		Help: "Authentication attempts by method and outcome.",
	}, []string{"method", "result"})

	healthChecksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "invoicehub_health_checks_total",
		Help: "Total health check probes by result.",
	}, []string{"result"})

	invoiceWritesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "invoicehub_invoice_writes_total",
		Help: "Successful invoice writes by operation.",
	}, []string{"op"})
)

// PrometheusMiddleware returns a Gin middleware that records per-request metrics.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())
		method := c.Request.Method
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		requestsTotal.WithLabelValues(method, path, status).Inc()
		requestDuration.WithLabelValues(method, path).Observe(duration)
	}
}

// MetricsHandler returns a Gin handler that serves Prometheus metrics.
func MetricsHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// RecordHealthCheck records a health check probe result.
func RecordHealthCheck(success bool) {
	healthChecksTotal.WithLabelValues(outcome(success)).Inc()
}

func recordAuthAttempt(method string, success bool) {
	authAttemptsTotal.WithLabelValues(method, outcome(success)).Inc()
}

func recordInvoiceWrite(op string) {
	invoiceWritesTotal.WithLabelValues(op).Inc()
}

func outcome(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
