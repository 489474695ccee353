package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricFiles           = "vue2inula.files"
	metricFileDuration    = "vue2inula.file.duration.seconds"
	metricDiagnostics     = "vue2inula.diagnostics"
	metricStylesheetFiles = "vue2inula.stylesheets"

	attrCode = "code"
)

// File outcome labels.
const (
	StatusConverted = "converted"
	StatusSkipped   = "skipped"
	StatusFailed    = "failed"
)

// ConversionMetrics holds the per-file conversion instruments.
type ConversionMetrics struct {
	files        metric.Int64Counter
	fileDuration metric.Float64Histogram
	diagnostics  metric.Int64Counter
	stylesheets  metric.Int64Counter
}

// NewConversionMetrics creates conversion instruments from the given meter.
func NewConversionMetrics(mt metric.Meter) (*ConversionMetrics, error) {
	files, err := mt.Int64Counter(metricFiles,
		metric.WithDescription("Component files processed, by outcome"),
		metric.WithUnit("{file}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricFiles, err)
	}

	dur, err := mt.Float64Histogram(metricFileDuration,
		metric.WithDescription("Per-file conversion duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricFileDuration, err)
	}

	diags, err := mt.Int64Counter(metricDiagnostics,
		metric.WithDescription("Conversion warnings, by code"),
		metric.WithUnit("{warning}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricDiagnostics, err)
	}

	styles, err := mt.Int64Counter(metricStylesheetFiles,
		metric.WithDescription("Stylesheet files written"),
		metric.WithUnit("{file}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricStylesheetFiles, err)
	}

	return &ConversionMetrics{
		files:        files,
		fileDuration: dur,
		diagnostics:  diags,
		stylesheets:  styles,
	}, nil
}

// RecordFile records one file outcome with its duration and the codes of
// any warnings it produced. Safe to call on a nil receiver.
func (cm *ConversionMetrics) RecordFile(ctx context.Context, status string, duration time.Duration, codes []string) {
	if cm == nil {
		return
	}

	cm.files.Add(ctx, 1, metric.WithAttributes(attribute.String(attrStatus, status)))

	if status != StatusSkipped {
		cm.fileDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.String(attrStatus, status)))
	}

	for _, code := range codes {
		cm.diagnostics.Add(ctx, 1, metric.WithAttributes(attribute.String(attrCode, code)))
	}
}

// RecordStylesheets counts stylesheet files written for one component.
func (cm *ConversionMetrics) RecordStylesheets(ctx context.Context, n int) {
	if cm == nil || n == 0 {
		return
	}

	cm.stylesheets.Add(ctx, int64(n))
}
