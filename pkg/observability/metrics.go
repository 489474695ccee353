package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricToolCalls       = "vue2inula.mcp.calls"
	metricToolDuration    = "vue2inula.mcp.call.duration.seconds"
	metricToolActive      = "vue2inula.mcp.calls.active"
	metricToolSourceBytes = "vue2inula.mcp.source.bytes"
	metricToolWarnings    = "vue2inula.mcp.warnings"

	attrStatus  = "status"
	attrTool    = "tool"
	attrOutcome = "outcome"
)

// Tool call outcomes.
const (
	// OutcomeOK is a call that produced a result.
	OutcomeOK = "ok"
	// OutcomeRejected is a call answered with an error result, such as an
	// oversized source or a component that failed to convert.
	OutcomeRejected = "rejected"
	// OutcomeFailed is a call whose handler returned a protocol error.
	OutcomeFailed = "failed"
)

// durationBucketBoundaries covers 1ms to 60s, from a single small SFC
// to a full project migration.
var durationBucketBoundaries = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60}

// sourceBucketBoundaries covers 256B to the 1MiB inline source limit.
var sourceBucketBoundaries = []float64{256, 1024, 4096, 16384, 65536, 262144, 1048576}

// ToolMetrics holds the instruments recorded per MCP tool call.
type ToolMetrics struct {
	calls       metric.Int64Counter
	duration    metric.Float64Histogram
	active      metric.Int64UpDownCounter
	sourceBytes metric.Int64Histogram
	warnings    metric.Int64Counter
}

// NewToolMetrics creates the MCP tool instruments from the given meter.
func NewToolMetrics(mt metric.Meter) (*ToolMetrics, error) {
	calls, err := mt.Int64Counter(metricToolCalls,
		metric.WithDescription("MCP tool calls, by tool and outcome"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricToolCalls, err)
	}

	duration, err := mt.Float64Histogram(metricToolDuration,
		metric.WithDescription("MCP tool call duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricToolDuration, err)
	}

	active, err := mt.Int64UpDownCounter(metricToolActive,
		metric.WithDescription("MCP tool calls in progress"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricToolActive, err)
	}

	sourceBytes, err := mt.Int64Histogram(metricToolSourceBytes,
		metric.WithDescription("Size of component sources submitted to MCP tools"),
		metric.WithUnit("By"),
		metric.WithExplicitBucketBoundaries(sourceBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricToolSourceBytes, err)
	}

	warnings, err := mt.Int64Counter(metricToolWarnings,
		metric.WithDescription("Conversion warnings returned by MCP tools, by code"),
		metric.WithUnit("{warning}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricToolWarnings, err)
	}

	return &ToolMetrics{
		calls:       calls,
		duration:    duration,
		active:      active,
		sourceBytes: sourceBytes,
		warnings:    warnings,
	}, nil
}

// ToolCall is one in-progress tool invocation. End must be called once.
type ToolCall struct {
	metrics *ToolMetrics
	tool    string
	start   time.Time
}

// Begin marks a tool call as active. Safe to call on a nil receiver; the
// returned call is then a no-op.
func (tm *ToolMetrics) Begin(ctx context.Context, tool string, sourceBytes int) *ToolCall {
	if tm == nil {
		return nil
	}

	attrs := metric.WithAttributes(attribute.String(attrTool, tool))
	tm.active.Add(ctx, 1, attrs)

	if sourceBytes > 0 {
		tm.sourceBytes.Record(ctx, int64(sourceBytes), attrs)
	}

	return &ToolCall{metrics: tm, tool: tool, start: time.Now()}
}

// End records the call outcome and the codes of any conversion warnings
// returned to the client.
func (c *ToolCall) End(ctx context.Context, outcome string, codes []string) {
	if c == nil {
		return
	}

	tool := attribute.String(attrTool, c.tool)

	c.metrics.active.Add(ctx, -1, metric.WithAttributes(tool))
	c.metrics.calls.Add(ctx, 1, metric.WithAttributes(tool, attribute.String(attrOutcome, outcome)))
	c.metrics.duration.Record(ctx, time.Since(c.start).Seconds(),
		metric.WithAttributes(tool, attribute.String(attrOutcome, outcome)))

	for _, code := range codes {
		c.metrics.warnings.Add(ctx, 1, metric.WithAttributes(tool, attribute.String(attrCode, code)))
	}
}
