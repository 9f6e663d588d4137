package resources

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// HTTPMetrics counts requests and records their latency per route template.
type HTTPMetrics struct {
	reqs    metric.Int64Counter
	latency metric.Float64Histogram
}

func NewHTTPMetrics(name string) *HTTPMetrics {
	return newHTTPMetrics(otel.Meter(name))
}

func newHTTPMetrics(meter metric.Meter) *HTTPMetrics {
	reqs, _ := meter.Int64Counter(
		"http.server.requests",
		metric.WithDescription("HTTP requests"),
	)
	latency, _ := meter.Float64Histogram(
		"http.server.duration.ms",
		metric.WithDescription("HTTP request duration in milliseconds"),
		metric.WithUnit("ms"),
	)

	return &HTTPMetrics{reqs: reqs, latency: latency}
}

func (m *HTTPMetrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		attrs := metric.WithAttributes(routeAttributes(c)...)

		m.reqs.Add(c.Request.Context(), 1, attrs)
		m.latency.Record(c.Request.Context(), float64(time.Since(start).Milliseconds()), attrs)
	}
}

func routeAttributes(c *gin.Context) []attribute.KeyValue {
	route := c.FullPath()
	if route == "" {
		route = "unmatched"
	}

	status := c.Writer.Status()

	return []attribute.KeyValue{
		attribute.String("http.route", route),
		attribute.String("http.method", c.Request.Method),
		attribute.Int("http.status_code", status),
		attribute.String("http.status_class", strconv.Itoa(status/100)+"xx"),
	}
}
