package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	assetUploadCounter  metric.Int64Counter
	assetUploadDuration metric.Float64Histogram
	assetVariantErrors  metric.Int64Counter
	assetDeleteCounter  metric.Int64Counter
	assetScanRejections metric.Int64Counter
)

// InitAssetMetrics registers the ingestion and deletion instruments on the
// global meter provider.
func InitAssetMetrics() error {
	meter := otel.Meter("assetbucket.asset")

	var err error

	assetUploadCounter, err = meter.Int64Counter(
		"asset.upload.count",
		metric.WithDescription("Number of upload attempts"),
		metric.WithUnit("{upload}"),
	)
	if err != nil {
		return err
	}

	assetUploadDuration, err = meter.Float64Histogram(
		"asset.upload.duration",
		metric.WithDescription("Duration of upload ingestion"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	assetVariantErrors, err = meter.Int64Counter(
		"asset.variant.errors",
		metric.WithDescription("Number of image variants that failed to encode"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return err
	}

	assetDeleteCounter, err = meter.Int64Counter(
		"asset.delete.count",
		metric.WithDescription("Number of asset deletions"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return err
	}

	assetScanRejections, err = meter.Int64Counter(
		"asset.scan.rejections",
		metric.WithDescription("Uploads rejected by the content scanner"),
		metric.WithUnit("{upload}"),
	)
	if err != nil {
		return err
	}

	return nil
}

// RecordUpload records one finished upload attempt. status is "success" or
// the error kind that rejected it.
func RecordUpload(ctx context.Context, category, status string, durationMs float64) {
	attrs := metric.WithAttributes(
		attribute.String("category", category),
		attribute.String("status", status),
	)
	if assetUploadCounter != nil {
		assetUploadCounter.Add(ctx, 1, attrs)
	}
	if assetUploadDuration != nil {
		assetUploadDuration.Record(ctx, durationMs, attrs)
	}
}

func RecordVariantError(ctx context.Context, variant string) {
	if assetVariantErrors != nil {
		assetVariantErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("variant", variant)))
	}
}

// RecordScanRejection counts an upload refused by the scanner; verdict is
// "unsafe" or "unavailable".
func RecordScanRejection(ctx context.Context, verdict string) {
	if assetScanRejections != nil {
		assetScanRejections.Add(ctx, 1, metric.WithAttributes(attribute.String("verdict", verdict)))
	}
}

func RecordDelete(ctx context.Context, status string) {
	if assetDeleteCounter != nil {
		assetDeleteCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
	}
}
