package http

import (
	"time"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const meterName = "github.com/fyrsmithlabs/policybot/internal/http"

// requestMetrics records per-route OpenTelemetry instruments. Instruments
// that fail to register stay nil and are skipped.
type requestMetrics struct {
	requests    metric.Int64Counter
	latency     metric.Float64Histogram
	uploadBytes metric.Int64Histogram
	inFlight    metric.Int64UpDownCounter
}

func newRequestMetrics(meter metric.Meter, logger *zap.Logger) *requestMetrics {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &requestMetrics{}
	warn := func(name string, err error) {
		if err != nil {
			logger.Warn("failed to create http instrument", zap.String("instrument", name), zap.Error(err))
		}
	}

	var err error
	m.requests, err = meter.Int64Counter("policybot.http.requests_total",
		metric.WithDescription("HTTP requests by method, route and status."),
		metric.WithUnit("{request}"),
	)
	warn("requests_total", err)

	// Queries wait on the generator, so the buckets reach well past a second.
	m.latency, err = meter.Float64Histogram("policybot.http.request_duration_seconds",
		metric.WithDescription("HTTP request latency by method, route and status."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30),
	)
	warn("request_duration_seconds", err)

	m.uploadBytes, err = meter.Int64Histogram("policybot.http.upload_size_bytes",
		metric.WithDescription("Declared body size of upload requests."),
		metric.WithUnit("By"),
		metric.WithExplicitBucketBoundaries(10e3, 100e3, 1e6, 5e6, 10e6, 25e6, 50e6),
	)
	warn("upload_size_bytes", err)

	m.inFlight, err = meter.Int64UpDownCounter("policybot.http.in_flight_requests",
		metric.WithDescription("Requests currently being served."),
		metric.WithUnit("{request}"),
	)
	warn("in_flight_requests", err)

	return m
}

// middleware records the instruments around every request.
func (m *requestMetrics) middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			start := time.Now()
			if m.inFlight != nil {
				m.inFlight.Add(ctx, 1)
				defer m.inFlight.Add(ctx, -1)
			}

			err := next(c)
			// Errors returned past this point are rendered by echo's handler,
			// so read the status it will write.
			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok && !c.Response().Committed {
				status = he.Code
			}

			route := routeLabel(c.Path())
			attrs := metric.WithAttributes(
				attribute.String("method", c.Request().Method),
				attribute.String("route", route),
				attribute.Int("status", status),
			)
			if m.requests != nil {
				m.requests.Add(ctx, 1, attrs)
			}
			if m.latency != nil {
				m.latency.Record(ctx, time.Since(start).Seconds(), attrs)
			}
			if m.uploadBytes != nil && route == "/upload" && c.Request().ContentLength > 0 {
				m.uploadBytes.Record(ctx, c.Request().ContentLength)
			}
			return err
		}
	}
}

// routeLabel returns the matched route, or "unmatched" for requests echo
// could not route, keeping label cardinality bounded.
func routeLabel(path string) string {
	if path == "" {
		return "unmatched"
	}
	return path
}

// defaultRequestMetrics binds the instruments to the global meter provider.
func defaultRequestMetrics(logger *zap.Logger) *requestMetrics {
	return newRequestMetrics(otel.Meter(meterName), logger)
}
