package telemetry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/memodb-io/assetbucket/internal/config"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	serviceVersion = "0.0.1"
	exportTimeout  = 5 * time.Second
	TraceIDHeader  = "X-Trace-Id"
)

var tracerProvider *sdktrace.TracerProvider

// collector is where OTLP data is sent. An https:// endpoint turns TLS on;
// anything else is dialed in plaintext.
type collector struct {
	hostPort string
	tls      bool
}

func parseCollector(raw string) collector {
	raw = strings.TrimSpace(raw)
	if rest, ok := strings.CutPrefix(raw, "https://"); ok {
		return collector{hostPort: strings.TrimSuffix(rest, "/"), tls: true}
	}
	return collector{hostPort: strings.TrimSuffix(strings.TrimPrefix(raw, "http://"), "/")}
}

func enabled(cfg *config.Config) bool {
	return cfg.Telemetry.Enabled && cfg.Telemetry.OtlpEndpoint != ""
}

func serviceResource(cfg *config.Config) (*resource.Resource, error) {
	res, err := resource.New(context.Background(), resource.WithAttributes(
		semconv.ServiceName(cfg.App.Name),
		semconv.ServiceVersion(serviceVersion),
		semconv.DeploymentEnvironment(cfg.App.Env),
	))
	if err != nil {
		return nil, fmt.Errorf("otel resource: %w", err)
	}
	return res, nil
}

// sampler clamps ratio to (0, 1]; a non-positive ratio samples everything.
func sampler(ratio float64) sdktrace.Sampler {
	if ratio <= 0 || ratio >= 1 {
		return sdktrace.AlwaysSample()
	}
	return sdktrace.TraceIDRatioBased(ratio)
}

// SetupTracing installs the global tracer provider and W3C propagators. It
// returns nil when telemetry is off.
func SetupTracing(cfg *config.Config) (*sdktrace.TracerProvider, error) {
	if !enabled(cfg) {
		return nil, nil
	}
	res, err := serviceResource(cfg)
	if err != nil {
		return nil, err
	}

	c := parseCollector(cfg.Telemetry.OtlpEndpoint)
	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(c.hostPort)}
	if !c.tls {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
	defer cancel()
	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("otlp trace exporter: %w", err)
	}

	tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(cfg.Telemetry.SampleRatio)),
	)
	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return tracerProvider, nil
}

// Shutdown flushes and stops the tracer provider.
func Shutdown(ctx context.Context) error {
	if tracerProvider == nil {
		return nil
	}
	return tracerProvider.Shutdown(ctx)
}

// GinMiddleware traces API requests. Health checks and swagger are skipped.
func GinMiddleware(serviceName string) gin.HandlerFunc {
	traced := otelgin.Middleware(serviceName)
	return func(c *gin.Context) {
		p := c.Request.URL.Path
		if p == "/health" || strings.HasPrefix(p, "/swagger/") {
			c.Next()
			return
		}
		traced(c)
	}
}

// TraceIDMiddleware echoes the active trace id so clients can quote it.
func TraceIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if sc := trace.SpanContextFromContext(c.Request.Context()); sc.IsValid() {
			c.Header(TraceIDHeader, sc.TraceID().String())
		}
		c.Next()
	}
}
