package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/memodb-io/assetbucket/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestParseCollector(t *testing.T) {
	tests := []struct {
		raw  string
		want collector
	}{
		{"otel-collector:4317", collector{hostPort: "otel-collector:4317"}},
		{"http://otel-collector:4317", collector{hostPort: "otel-collector:4317"}},
		{"https://otlp.example.com:443/", collector{hostPort: "otlp.example.com:443", tls: true}},
		{" http://localhost:4317/ ", collector{hostPort: "localhost:4317"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseCollector(tt.raw), tt.raw)
	}
}

func TestSampler(t *testing.T) {
	assert.Equal(t, sdktrace.AlwaysSample().Description(), sampler(0).Description())
	assert.Equal(t, sdktrace.AlwaysSample().Description(), sampler(1.5).Description())
	assert.Equal(t, sdktrace.TraceIDRatioBased(0.25).Description(), sampler(0.25).Description())
}

func TestSetup_Disabled(t *testing.T) {
	cfg := &config.Config{Telemetry: config.TelemetryCfg{Enabled: true}}

	tp, err := SetupTracing(cfg)
	require.NoError(t, err)
	assert.Nil(t, tp)
	mp, err := SetupMetrics(cfg)
	require.NoError(t, err)
	assert.Nil(t, mp)

	assert.NoError(t, Shutdown(context.Background()))
	assert.NoError(t, ShutdownMetrics(context.Background()))
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	r := gin.New()
	r.Use(GinMiddleware("assetbucket-test"), TraceIDMiddleware())
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	r.GET("/health", ok)
	r.GET("/asset/:base_name", ok)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get(TraceIDHeader))
	assert.Empty(t, sr.Ended())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/asset/abc", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, sr.Ended(), 1)
	assert.Equal(t, sr.Ended()[0].SpanContext().TraceID().String(), w.Header().Get(TraceIDHeader))
}
