package middleware

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestHTTPMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	mw, err := HTTPMetrics(provider.Meter("test"))
	require.NoError(t, err)

	r := gin.New()
	r.Use(mw)
	r.GET("/transactions/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	get(r, "/transactions/1", "")
	get(r, "/transactions/2", "")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	var total int64
	for _, m := range rm.ScopeMetrics[0].Metrics {
		if m.Name != "http_server_request_total" {
			continue
		}
		sum, ok := m.Data.(metricdata.Sum[int64])
		require.True(t, ok)
		require.Len(t, sum.DataPoints, 1, "route pattern keeps one series")
		route, _ := sum.DataPoints[0].Attributes.Value("http.route")
		assert.Equal(t, "/transactions/:id", route.AsString())
		total = sum.DataPoints[0].Value
	}
	assert.Equal(t, int64(2), total)
}

func TestHTTPMetrics_NilMeter(t *testing.T) {
	mw, err := HTTPMetrics(nil)
	require.NoError(t, err)
	assert.NotNil(t, mw)
}

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "2xx", StatusClass(201))
	assert.Equal(t, "4xx", StatusClass(409))
	assert.Equal(t, "5xx", StatusClass(503))
	assert.Equal(t, "unknown", StatusClass(42))
}
