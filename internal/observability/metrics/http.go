package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// HTTPMetrics holds inbound request instruments.
type HTTPMetrics struct {
	requests   metric.Int64Counter
	durationMs metric.Int64Histogram
}

// NewHTTPMetrics configures the inbound HTTP instruments.
func NewHTTPMetrics(cfg Config, provider metric.MeterProvider) (*HTTPMetrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "drivevalue"
	}
	meter := provider.Meter(name)

	requests, err := meter.Int64Counter("drivevalue_http_requests_total")
	if err != nil {
		return nil, err
	}
	durationMs, err := meter.Int64Histogram("drivevalue_http_request_duration_ms")
	if err != nil {
		return nil, err
	}

	return &HTTPMetrics{requests: requests, durationMs: durationMs}, nil
}

// GinMiddleware records request counts and latency per route.
func GinMiddleware(m *HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		attrs := metric.WithAttributes(
			attribute.String("method", c.Request.Method),
			attribute.String("route", route),
			attribute.String("status", strconv.Itoa(c.Writer.Status())),
		)
		ctx := c.Request.Context()
		m.requests.Add(ctx, 1, attrs)
		m.durationMs.Record(ctx, time.Since(start).Milliseconds(), attrs)
	}
}
