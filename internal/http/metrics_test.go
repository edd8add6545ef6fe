package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestRequestMetrics_Middleware(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m := newRequestMetrics(mp.Meter(meterName), zap.NewNop())

	e := echo.New()
	e.Use(m.middleware())
	e.GET("/health", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.POST("/upload", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.POST("/query", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusBadRequest, "no question")
	})

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/health", nil),
		httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("0123456789")),
		httptest.NewRequest(http.MethodPost, "/query", nil),
	} {
		e.ServeHTTP(httptest.NewRecorder(), req)
	}

	metrics := collect(t, reader)

	requests, ok := metrics["policybot.http.requests_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	byRoute := map[string]int64{}
	statuses := map[string]int64{}
	for _, dp := range requests.DataPoints {
		route, _ := dp.Attributes.Value("route")
		status, _ := dp.Attributes.Value("status")
		byRoute[route.AsString()] += dp.Value
		statuses[route.AsString()] = status.AsInt64()
	}
	assert.Equal(t, map[string]int64{"/health": 1, "/upload": 1, "/query": 1}, byRoute)
	assert.Equal(t, int64(http.StatusBadRequest), statuses["/query"])

	latency, ok := metrics["policybot.http.request_duration_seconds"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	var count uint64
	for _, dp := range latency.DataPoints {
		count += dp.Count
	}
	assert.Equal(t, uint64(3), count)

	uploads, ok := metrics["policybot.http.upload_size_bytes"].Data.(metricdata.Histogram[int64])
	require.True(t, ok)
	require.Len(t, uploads.DataPoints, 1)
	assert.Equal(t, int64(10), uploads.DataPoints[0].Sum)
}

func TestRouteLabel(t *testing.T) {
	assert.Equal(t, "unmatched", routeLabel(""))
	assert.Equal(t, "/query", routeLabel("/query"))
}
