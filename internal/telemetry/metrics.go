package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/memodb-io/assetbucket/internal/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const metricInterval = 10 * time.Second

var meterProvider *sdkmetric.MeterProvider

// SetupMetrics installs the global meter provider exporting to the same
// collector as traces. It returns nil when telemetry is off.
func SetupMetrics(cfg *config.Config) (*sdkmetric.MeterProvider, error) {
	if !enabled(cfg) {
		return nil, nil
	}
	res, err := serviceResource(cfg)
	if err != nil {
		return nil, err
	}

	c := parseCollector(cfg.Telemetry.OtlpEndpoint)
	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(c.hostPort)}
	if !c.tls {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
	defer cancel()
	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("otlp metric exporter: %w", err)
	}

	meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(metricInterval))),
	)
	otel.SetMeterProvider(meterProvider)
	return meterProvider, nil
}

// ShutdownMetrics flushes and stops the meter provider.
func ShutdownMetrics(ctx context.Context) error {
	if meterProvider == nil {
		return nil
	}
	return meterProvider.Shutdown(ctx)
}
